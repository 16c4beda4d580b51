package dxvk

import (
	"log/slog"
	"runtime"

	"github.com/jamestiotio/dxvk/internal/parallel"
)

// RecordCommandLists records one command list per function, each on its own
// deferred context, with up to Config().D3D11.RecordWorkers functions running
// at once.
//
// Lists are returned in the order of fns and each carries one reference owned
// by the caller. The functions must not retain their context.
func (d *Device) RecordCommandLists(fns ...func(*DeferredContext)) []*CommandList {
	lists := make([]*CommandList, len(fns))
	if len(fns) == 0 {
		return lists
	}

	workers := d.config.D3D11.RecordWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool := parallel.NewWorkerPool(min(workers, len(fns)))
	defer pool.Close()

	work := make([]func(), len(fns))
	for i, fn := range fns {
		work[i] = func() {
			dc := d.CreateDeferredContext()
			fn(dc)
			lists[i] = dc.FinishCommandList(false)
			dc.Release()
		}
	}
	pool.ExecuteAll(work)

	Logger().Debug("dxvk: recorded command lists",
		slog.Int("lists", len(lists)),
		slog.Int("workers", pool.Workers()))
	return lists
}
