// Package dxvk tracks Direct3D 11 device context state and turns it into a
// minimal stream of low-level binding and draw commands.
//
// # Overview
//
// A [Device] creates resources, views, state objects and shaders, and owns
// one [ImmediateContext]. Binding calls on a context update a binding table
// and mark what changed; draws and dispatches flush only the changed state
// to a [gpucore.Sink]. Deferred contexts record the same calls into a
// [CommandList] that the immediate context executes later.
//
// # Quick Start
//
//	import "github.com/jamestiotio/dxvk"
//
//	dev, err := dxvk.NewDevice()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	ctx := dev.ImmediateContext()
//	ctx.PSSetShaderResources(0, []*dxvk.ShaderResourceView{srv})
//	ctx.OMSetRenderTargets([]*dxvk.RenderTargetView{rtv}, nil)
//	ctx.Draw(3, 0)
//
// # Binding Rules
//
// Binding calls never fail. Slots outside the D3D11 limits are ignored, nil
// unbinds, and rebinding the object already in a slot changes nothing.
// Every bound object holds one reference for as long as it stays bound.
//
// A resource bound both as a shader input and as an output is a hazard.
// The newest binding wins and the older one is unbound, except that
// render targets and output-merger UAVs set in one call are rejected as a
// whole when they alias each other.
//
// # Flushing
//
// The context keeps a set of [DirtyFlags]. A draw emits only dirty
// categories for the graphics pipeline, a dispatch only those for compute,
// and within a stage only the slots the bound shader reads, coalesced into
// contiguous runs.
//
// # Sinks
//
// Sinks register with the recording package the way database/sql drivers
// do. Importing recording/backends/wgpu links a sink over wgpu HAL pass
// encoders; the recording sink captures commands for inspection and replay.
//
// # Logging
//
// dxvk is silent by default. See [SetLogger].
package dxvk

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
