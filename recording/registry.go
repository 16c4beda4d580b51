package recording

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Errors returned by this package.
var (
	// ErrUnknownBackend is returned by NewSink for unregistered names.
	ErrUnknownBackend = errors.New("recording: unknown backend")

	// ErrNilSink is returned by Playback when given a nil sink.
	ErrNilSink = errors.New("recording: nil sink")

	// ErrUnknownCommand is returned by Playback for a command type it
	// cannot replay.
	ErrUnknownCommand = errors.New("recording: unknown command")
)

// SinkFactory is a function that creates a new sink instance.
// Factories are registered via Register() and called by NewSink().
type SinkFactory func() gpucore.Sink

// Backend names in order of preference. A hardware backend is preferred over
// the recorder when both are linked in.
const (
	BackendWGPU      = "wgpu"
	BackendRecording = "recording"
)

// registerMu serializes duplicate checks with registration. Lookups go
// straight to the registry, which has its own lock.
var (
	registerMu sync.Mutex
	sinks      = gpucontext.NewRegistry[gpucore.Sink](
		gpucontext.WithPriority(BackendWGPU, BackendRecording),
	)
)

func init() {
	Register(BackendRecording, func() gpucore.Sink {
		return NewRecorder()
	})
}

// Register registers a sink factory with the given name.
// This function is typically called from init() in backend packages,
// following the database/sql driver pattern:
//
//	func init() {
//	    recording.Register("wgpu", func() gpucore.Sink {
//	        return NewSink(nil, nil)
//	    })
//	}
//
// Register panics if:
//   - factory is nil
//   - a backend with the same name is already registered
//
// This ensures that duplicate registrations are caught early during
// program initialization rather than silently overwriting backends.
func Register(name string, factory SinkFactory) {
	registerMu.Lock()
	defer registerMu.Unlock()

	if factory == nil {
		panic("recording: Register factory is nil")
	}
	if sinks.Has(name) {
		panic("recording: Register called twice for " + name)
	}
	sinks.Register(name, factory)
}

// Unregister removes a backend from the registry.
// This is primarily useful for testing to clean up between tests.
// If the backend is not registered, this is a no-op.
func Unregister(name string) {
	registerMu.Lock()
	defer registerMu.Unlock()
	sinks.Unregister(name)
}

// NewSink creates a new sink instance by name.
// The name must match a previously registered backend.
//
// Example:
//
//	import _ "github.com/jamestiotio/dxvk/recording/backends/wgpu"
//
//	sink, err := recording.NewSink("wgpu")
//	if err != nil {
//	    // Handle error - backend not registered
//	}
//
// The error message includes a hint about forgotten imports.
func NewSink(name string) (gpucore.Sink, error) {
	if !sinks.Has(name) {
		return nil, fmt.Errorf("%w %q (forgotten import?)", ErrUnknownBackend, name)
	}
	s := sinks.Get(name)
	if s == nil {
		return nil, fmt.Errorf("recording: backend %q returned a nil sink", name)
	}
	return s, nil
}

// MustSink creates a new sink instance by name, panicking on error.
// This is useful when backend availability is guaranteed.
//
// Example:
//
//	rec := recording.MustSink("recording").(*recording.Recorder)
func MustSink(name string) gpucore.Sink {
	s, err := NewSink(name)
	if err != nil {
		panic(err)
	}
	return s
}

// BestSink creates an instance of the most preferred registered backend and
// returns it with its name. It returns a nil sink when nothing is registered.
func BestSink() (gpucore.Sink, string) {
	name := sinks.BestName()
	if name == "" {
		return nil, ""
	}
	s := sinks.Get(name)
	Logger().Debug("recording: selected backend", slog.String("name", name))
	return s, name
}

// Sinks returns a sorted list of registered backend names.
// The list is sorted alphabetically for consistent output.
func Sinks() []string {
	names := sinks.Available()
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	return sinks.Has(name)
}

// Count returns the number of registered backends.
func Count() int {
	return sinks.Count()
}
