package dxvk

import (
	"github.com/jamestiotio/dxvk/config"
	"github.com/jamestiotio/dxvk/gpucore"
)

// DeviceOption configures a Device during creation.
// Use functional options to customize Device behavior.
//
// Example:
//
//	// Default: best registered sink, default options
//	dev, err := dxvk.NewDevice()
//
//	// Explicit sink and options file
//	opts, _ := config.Load("dxvk.toml")
//	dev, err := dxvk.NewDevice(dxvk.WithSink(rec), dxvk.WithConfig(opts))
type DeviceOption func(*deviceOptions)

// deviceOptions holds optional configuration for Device creation.
type deviceOptions struct {
	sink      gpucore.Sink
	allocator gpucore.Allocator
	tiles     TileManager
	config    config.Options
}

// defaultOptions returns the default device options.
func defaultOptions() deviceOptions {
	return deviceOptions{
		sink:   nil, // Resolved from the recording registry if nil
		config: config.Default(),
	}
}

// WithSink sets the low-level command sink of the immediate context.
func WithSink(s gpucore.Sink) DeviceOption {
	return func(o *deviceOptions) {
		o.sink = s
	}
}

// WithAllocator sets the allocator that creates native resource handles.
// Without one, resources carry no native handle.
func WithAllocator(a gpucore.Allocator) DeviceOption {
	return func(o *deviceOptions) {
		o.allocator = a
	}
}

// WithTileManager enables tiled-resource operations.
func WithTileManager(tm TileManager) DeviceOption {
	return func(o *deviceOptions) {
		o.tiles = tm
	}
}

// WithConfig applies runtime options. The Sink field is consulted only when
// no sink was given with WithSink.
func WithConfig(c config.Options) DeviceOption {
	return func(o *deviceOptions) {
		o.config = c
	}
}
