// Package recording captures and replays the low-level command stream
// produced by dxvk contexts.
//
// A dxvk context tracks D3D11-style bindings and, before each draw or
// dispatch, emits the minimal set of changes to a gpucore.Sink. This package
// provides sinks that do something useful with that stream, plus a registry
// to select one by name.
//
// # Architecture
//
// The system follows a Command Pattern with three main components:
//
//   - Recorder: a Sink that captures every call as a typed command
//   - Recording: the captured commands and the objects they reference
//   - Backends: Sinks registered by name, selected by configuration
//
// Commands reference device objects through ObjectRef handles into a
// ResourcePool, so an object bound many times is stored once.
//
// # Basic Usage
//
//	rec := recording.NewRecorder()
//	dev, _ := dxvk.NewDevice(dxvk.WithSink(rec))
//	ctx := dev.ImmediateContext()
//	ctx.VSSetShader(vs, nil)
//	ctx.Draw(3, 0)
//
//	r := rec.FinishRecording()
//	fmt.Println(r.Count(recording.CmdBindShader))
//	r.WriteTo(os.Stdout) // text trace
//
// # Playback
//
// A Recording replays to any Sink:
//
//	import _ "github.com/jamestiotio/dxvk/recording/backends/wgpu"
//
//	gpu, _ := recording.NewSink("wgpu")
//	r.Playback(gpu)
//
// # Backend Registration
//
// Backends register in init(), following the database/sql driver pattern.
// The recorder itself is registered as "recording". BestSink prefers "wgpu"
// over "recording" when both are linked in.
//
// # Thread Safety
//
// The registry is safe for concurrent use. Recorder, Recording and
// ResourcePool are not.
package recording
