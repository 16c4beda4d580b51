package recording

import (
	"io"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Backends are gpucore.Sink implementations created by name through the
// registry. A backend receives the minimal low-level command stream the
// state applier derives from context state and translates it to its target
// (a trace, a GPU command encoder, ...).
//
// # Implementation Contract
//
// Each backend must:
//  1. Register in init() using recording.Register()
//  2. Handle all gpucore.Sink methods (even if no-op for some)
//  3. Copy any slice it keeps past the call that passed it
//
// Optional capabilities are discovered with type assertions on the
// interfaces below.

// WriterSink extends gpucore.Sink with the ability to write what it
// received to an io.Writer.
type WriterSink interface {
	gpucore.Sink

	// WriteTo writes the captured stream to the given writer.
	// Returns the number of bytes written and any error.
	WriteTo(w io.Writer) (int64, error)
}

// FinishingSink extends gpucore.Sink with an explicit end of work. Backends
// that batch commands submit them in Finish.
type FinishingSink interface {
	gpucore.Sink

	// Finish submits pending work. The sink may be reused afterwards.
	Finish() error
}

var _ WriterSink = (*Recorder)(nil)
