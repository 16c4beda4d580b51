package dxvk

import "github.com/jamestiotio/dxvk/gpucore"

// ImmediateContext executes calls against the device sink as they are made.
//
// Bindings are applied in place; state is flushed to the sink lazily before
// each draw or dispatch. The context is owned by its Device and is not safe
// for concurrent use.
type ImmediateContext struct {
	commonContext[moveForwarder]
}

func newImmediateContext(dev *Device, sink gpucore.Sink) *ImmediateContext {
	c := &ImmediateContext{}
	c.initContext(dev, moveForwarder{}, sink)
	return c
}

// Sink returns the low-level sink the context flushes to.
func (c *ImmediateContext) Sink() gpucore.Sink { return c.sink }

// Flush emits all dirty graphics and compute state without drawing.
func (c *ImmediateContext) Flush() {
	c.applyGraphicsState()
	c.applyComputeState()
}
