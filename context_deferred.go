package dxvk

import "log/slog"

// DeferredContext records calls into a command list for later execution on
// the immediate context.
//
// Every call is captured with its arguments and owned references to the
// objects it names, and is also applied to the context's own shadow state so
// Get calls behave as on the immediate context. Nothing is flushed to a sink.
// Deferred contexts are independent of each other and may record on
// different goroutines.
type DeferredContext struct {
	deviceChild
	commonContext[*copyForwarder]
	reserve int
}

func newDeferredContext(dev *Device) *DeferredContext {
	d := &DeferredContext{reserve: dev.config.D3D11.CommandListReserve}
	d.initContext(dev, &copyForwarder{list: newCommandList(d.reserve)}, nil)
	d.init(nil, d.destroy)
	return d
}

// FinishCommandList closes the current recording and starts a new one.
//
// With restoreDeferredContextState the context keeps its state and the new
// list starts by re-establishing it, so that state carries across lists.
// Otherwise the context is reset to defaults.
func (d *DeferredContext) FinishCommandList(restoreDeferredContextState bool) *CommandList {
	list := d.fwd.list
	d.fwd.list = newCommandList(d.reserve)
	if restoreDeferredContextState {
		snap := d.state.clone()
		d.fwd.list.keep(snap)
		d.fwd.list.append(&RestoreStateCommand{state: snap})
	} else {
		d.clearState()
	}
	Logger().Debug("dxvk: finished command list",
		slog.Uint64("list", list.ObjectID()),
		slog.Int("commands", list.Len()),
		slog.Bool("restore", restoreDeferredContextState))
	return list
}

// Pending returns the number of commands recorded since the last
// FinishCommandList.
func (d *DeferredContext) Pending() int { return d.fwd.list.Len() }

func (d *DeferredContext) destroy() {
	d.fwd.list.Release()
	d.destroyContext()
}
