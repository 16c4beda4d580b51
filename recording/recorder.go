package recording

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Recorder is a gpucore.Sink that captures the low-level command stream as
// typed commands instead of executing it. Use FinishRecording to obtain
// a Recording that can be replayed to another sink.
//
// Example:
//
//	rec := recording.NewRecorder()
//	dev, _ := dxvk.NewDevice(dxvk.WithSink(rec))
//	// ... bind state and draw ...
//	r := rec.FinishRecording()
//	r.Playback(otherSink)
//
// Slices passed to the sink are copied, so callers may reuse them.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	commands  []Command
	resources *ResourcePool
}

var _ gpucore.Sink = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		commands:  make([]Command, 0, 256),
		resources: NewResourcePool(),
	}
}

// FinishRecording returns a Recording holding every command captured so far
// and resets the Recorder for reuse.
func (r *Recorder) FinishRecording() *Recording {
	rec := &Recording{
		commands:  r.commands,
		resources: r.resources,
	}
	r.commands = make([]Command, 0, cap(r.commands))
	r.resources = NewResourcePool()
	Logger().Debug("recording: finished", slog.Int("commands", len(rec.commands)))
	return rec
}

// Commands returns the commands captured so far. The slice is owned by the
// Recorder.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Resources returns the pool of the current recording.
func (r *Recorder) Resources() *ResourcePool {
	return r.resources
}

// Len returns the number of captured commands.
func (r *Recorder) Len() int {
	return len(r.commands)
}

// Count returns the number of captured commands of type t.
func (r *Recorder) Count(t CommandType) int {
	return countType(r.commands, t)
}

// Reset discards all captured commands.
func (r *Recorder) Reset() {
	clear(r.commands)
	r.commands = r.commands[:0]
	r.resources.Clear()
}

// WriteTo writes a text trace of the captured commands, one per line.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	return writeTrace(w, r.commands)
}

func (r *Recorder) add(cmd Command) {
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) ref(o gpucore.Object) ObjectRef {
	return r.resources.AddObject(o)
}

func (r *Recorder) refs(objs []gpucore.Object) []ObjectRef {
	out := make([]ObjectRef, len(objs))
	for i, o := range objs {
		out[i] = r.ref(o)
	}
	return out
}

// --------------------------------------------------------------------------
// gpucore.Sink
// --------------------------------------------------------------------------

// BindShader implements gpucore.Sink.
func (r *Recorder) BindShader(stage gpucore.Stage, shader gpucore.Object) {
	r.add(BindShaderCommand{Stage: stage, Shader: r.ref(shader)})
}

// BindConstantBuffers implements gpucore.Sink.
func (r *Recorder) BindConstantBuffers(stage gpucore.Stage, start uint32, ranges []gpucore.ConstantBufferRange) {
	out := make([]ConstantBufferRef, len(ranges))
	for i, cb := range ranges {
		out[i] = ConstantBufferRef{
			Buffer:        r.ref(cb.Buffer),
			FirstConstant: cb.FirstConstant,
			NumConstants:  cb.NumConstants,
		}
	}
	r.add(BindConstantBuffersCommand{Stage: stage, Start: start, Ranges: out})
}

// BindShaderResources implements gpucore.Sink.
func (r *Recorder) BindShaderResources(stage gpucore.Stage, start uint32, views []gpucore.Object) {
	r.add(BindShaderResourcesCommand{Stage: stage, Start: start, Views: r.refs(views)})
}

// BindSamplers implements gpucore.Sink.
func (r *Recorder) BindSamplers(stage gpucore.Stage, start uint32, samplers []gpucore.Object) {
	r.add(BindSamplersCommand{Stage: stage, Start: start, Samplers: r.refs(samplers)})
}

// BindUnorderedAccessViews implements gpucore.Sink.
func (r *Recorder) BindUnorderedAccessViews(stage gpucore.Stage, start uint32, views []gpucore.UnorderedAccessBinding) {
	out := make([]UnorderedAccessRef, len(views))
	for i, v := range views {
		out[i] = UnorderedAccessRef{View: r.ref(v.View), Counter: v.Counter}
	}
	r.add(BindUnorderedAccessViewsCommand{Stage: stage, Start: start, Views: out})
}

// BindVertexBuffers implements gpucore.Sink.
func (r *Recorder) BindVertexBuffers(start uint32, buffers []gpucore.VertexBufferRange) {
	out := make([]VertexBufferRef, len(buffers))
	for i, b := range buffers {
		out[i] = VertexBufferRef{Buffer: r.ref(b.Buffer), Stride: b.Stride, Offset: b.Offset}
	}
	r.add(BindVertexBuffersCommand{Start: start, Buffers: out})
}

// BindIndexBuffer implements gpucore.Sink.
func (r *Recorder) BindIndexBuffer(buffer gpucore.IndexBufferRange) {
	r.add(BindIndexBufferCommand{Buffer: r.ref(buffer.Buffer), Format: buffer.Format, Offset: buffer.Offset})
}

// BindStreamOutBuffers implements gpucore.Sink.
func (r *Recorder) BindStreamOutBuffers(targets []gpucore.StreamOutRange) {
	out := make([]StreamOutRef, len(targets))
	for i, t := range targets {
		out[i] = StreamOutRef{Buffer: r.ref(t.Buffer), Offset: t.Offset}
	}
	r.add(BindStreamOutBuffersCommand{Targets: out})
}

// BindFramebuffer implements gpucore.Sink.
func (r *Recorder) BindFramebuffer(fb gpucore.Framebuffer) {
	r.add(BindFramebufferCommand{
		Colors:       r.refs(fb.Colors),
		ColorFormats: slices.Clone(fb.ColorFormats),
		Depth:        r.ref(fb.Depth),
		DepthFormat:  fb.DepthFormat,
		SampleCount:  fb.SampleCount,
	})
}

// SetInputLayout implements gpucore.Sink.
func (r *Recorder) SetInputLayout(layouts []gputypes.VertexBufferLayout) {
	out := make([]gputypes.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		out[i] = l
		out[i].Attributes = slices.Clone(l.Attributes)
	}
	r.add(SetInputLayoutCommand{Layouts: out})
}

// SetInputAssembly implements gpucore.Sink.
func (r *Recorder) SetInputAssembly(ia gpucore.InputAssembly) {
	r.add(SetInputAssemblyCommand{State: ia})
}

// SetBlendState implements gpucore.Sink.
func (r *Recorder) SetBlendState(targets []gputypes.ColorTargetState, ms gputypes.MultisampleState) {
	out := make([]gputypes.ColorTargetState, len(targets))
	for i, t := range targets {
		out[i] = t
		if t.Blend != nil {
			blend := *t.Blend
			out[i].Blend = &blend
		}
	}
	r.add(SetBlendStateCommand{Targets: out, Multisample: ms})
}

// SetBlendConstant implements gpucore.Sink.
func (r *Recorder) SetBlendConstant(c gputypes.Color) {
	r.add(SetBlendConstantCommand{Color: c})
}

// SetDepthStencilState implements gpucore.Sink.
func (r *Recorder) SetDepthStencilState(ds gputypes.DepthStencilState) {
	r.add(SetDepthStencilStateCommand{State: ds})
}

// SetStencilReference implements gpucore.Sink.
func (r *Recorder) SetStencilReference(ref uint32) {
	r.add(SetStencilReferenceCommand{Reference: ref})
}

// SetRasterizerState implements gpucore.Sink.
func (r *Recorder) SetRasterizerState(rs gpucore.RasterizerState) {
	r.add(SetRasterizerStateCommand{State: rs})
}

// SetViewports implements gpucore.Sink.
func (r *Recorder) SetViewports(viewports []gpucore.Viewport, scissors []gpucore.Rect) {
	r.add(SetViewportsCommand{Viewports: slices.Clone(viewports), Scissors: slices.Clone(scissors)})
}

// SetPredicate implements gpucore.Sink.
func (r *Recorder) SetPredicate(predicate gpucore.Object, value bool) {
	r.add(SetPredicateCommand{Predicate: r.ref(predicate), Value: value})
}

// Draw implements gpucore.Sink.
func (r *Recorder) Draw(args gpucore.DrawArgs) {
	r.add(DrawCommand{Args: args})
}

// DrawIndexed implements gpucore.Sink.
func (r *Recorder) DrawIndexed(args gpucore.DrawIndexedArgs) {
	r.add(DrawIndexedCommand{Args: args})
}

// DrawIndirect implements gpucore.Sink.
func (r *Recorder) DrawIndirect(buffer gpucore.Object, offset uint32, indexed bool) {
	r.add(DrawIndirectCommand{Buffer: r.ref(buffer), Offset: offset, Indexed: indexed})
}

// DrawAuto implements gpucore.Sink.
func (r *Recorder) DrawAuto(buffer gpucore.Object, offset, stride uint32) {
	r.add(DrawAutoCommand{Buffer: r.ref(buffer), Offset: offset, Stride: stride})
}

// Dispatch implements gpucore.Sink.
func (r *Recorder) Dispatch(x, y, z uint32) {
	r.add(DispatchCommand{X: x, Y: y, Z: z})
}

// DispatchIndirect implements gpucore.Sink.
func (r *Recorder) DispatchIndirect(buffer gpucore.Object, offset uint32) {
	r.add(DispatchIndirectCommand{Buffer: r.ref(buffer), Offset: offset})
}

// --------------------------------------------------------------------------
// Recording
// --------------------------------------------------------------------------

// Recording is an immutable container for a captured command stream.
// It can be replayed to any gpucore.Sink.
type Recording struct {
	commands  []Command
	resources *ResourcePool
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool {
	return r.resources
}

// Len returns the number of recorded commands.
func (r *Recording) Len() int {
	return len(r.commands)
}

// Count returns the number of recorded commands of type t.
func (r *Recording) Count(t CommandType) int {
	return countType(r.commands, t)
}

// WriteTo writes a text trace of the recording, one command per line.
func (r *Recording) WriteTo(w io.Writer) (int64, error) {
	return writeTrace(w, r.commands)
}

// Playback replays the recording to the given sink.
func (r *Recording) Playback(sink gpucore.Sink) error {
	if sink == nil {
		return ErrNilSink
	}
	get := r.resources.GetObject
	for i, cmd := range r.commands {
		switch c := cmd.(type) {
		case BindShaderCommand:
			sink.BindShader(c.Stage, get(c.Shader))
		case BindConstantBuffersCommand:
			ranges := make([]gpucore.ConstantBufferRange, len(c.Ranges))
			for j, cb := range c.Ranges {
				ranges[j] = gpucore.ConstantBufferRange{
					Buffer:        get(cb.Buffer),
					FirstConstant: cb.FirstConstant,
					NumConstants:  cb.NumConstants,
				}
			}
			sink.BindConstantBuffers(c.Stage, c.Start, ranges)
		case BindShaderResourcesCommand:
			sink.BindShaderResources(c.Stage, c.Start, r.objects(c.Views))
		case BindSamplersCommand:
			sink.BindSamplers(c.Stage, c.Start, r.objects(c.Samplers))
		case BindUnorderedAccessViewsCommand:
			views := make([]gpucore.UnorderedAccessBinding, len(c.Views))
			for j, v := range c.Views {
				views[j] = gpucore.UnorderedAccessBinding{View: get(v.View), Counter: v.Counter}
			}
			sink.BindUnorderedAccessViews(c.Stage, c.Start, views)
		case BindVertexBuffersCommand:
			vbs := make([]gpucore.VertexBufferRange, len(c.Buffers))
			for j, b := range c.Buffers {
				vbs[j] = gpucore.VertexBufferRange{Buffer: get(b.Buffer), Stride: b.Stride, Offset: b.Offset}
			}
			sink.BindVertexBuffers(c.Start, vbs)
		case BindIndexBufferCommand:
			sink.BindIndexBuffer(gpucore.IndexBufferRange{Buffer: get(c.Buffer), Format: c.Format, Offset: c.Offset})
		case BindStreamOutBuffersCommand:
			targets := make([]gpucore.StreamOutRange, len(c.Targets))
			for j, t := range c.Targets {
				targets[j] = gpucore.StreamOutRange{Buffer: get(t.Buffer), Offset: t.Offset}
			}
			sink.BindStreamOutBuffers(targets)
		case BindFramebufferCommand:
			sink.BindFramebuffer(gpucore.Framebuffer{
				Colors:       r.objects(c.Colors),
				ColorFormats: c.ColorFormats,
				Depth:        get(c.Depth),
				DepthFormat:  c.DepthFormat,
				SampleCount:  c.SampleCount,
			})
		case SetInputLayoutCommand:
			sink.SetInputLayout(c.Layouts)
		case SetInputAssemblyCommand:
			sink.SetInputAssembly(c.State)
		case SetBlendStateCommand:
			sink.SetBlendState(c.Targets, c.Multisample)
		case SetBlendConstantCommand:
			sink.SetBlendConstant(c.Color)
		case SetDepthStencilStateCommand:
			sink.SetDepthStencilState(c.State)
		case SetStencilReferenceCommand:
			sink.SetStencilReference(c.Reference)
		case SetRasterizerStateCommand:
			sink.SetRasterizerState(c.State)
		case SetViewportsCommand:
			sink.SetViewports(c.Viewports, c.Scissors)
		case SetPredicateCommand:
			sink.SetPredicate(get(c.Predicate), c.Value)
		case DrawCommand:
			sink.Draw(c.Args)
		case DrawIndexedCommand:
			sink.DrawIndexed(c.Args)
		case DrawIndirectCommand:
			sink.DrawIndirect(get(c.Buffer), c.Offset, c.Indexed)
		case DrawAutoCommand:
			sink.DrawAuto(get(c.Buffer), c.Offset, c.Stride)
		case DispatchCommand:
			sink.Dispatch(c.X, c.Y, c.Z)
		case DispatchIndirectCommand:
			sink.DispatchIndirect(get(c.Buffer), c.Offset)
		default:
			return fmt.Errorf("%w: %T at index %d", ErrUnknownCommand, cmd, i)
		}
	}
	return nil
}

func (r *Recording) objects(refs []ObjectRef) []gpucore.Object {
	out := make([]gpucore.Object, len(refs))
	for i, ref := range refs {
		out[i] = r.resources.GetObject(ref)
	}
	return out
}

func countType(cmds []Command, t CommandType) int {
	n := 0
	for _, c := range cmds {
		if c.Type() == t {
			n++
		}
	}
	return n
}

// writeTrace prints one line per command: the command type followed by its
// fields.
func writeTrace(w io.Writer, cmds []Command) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	for i, c := range cmds {
		if _, err := fmt.Fprintf(bw, "%4d %s %+v\n", i, c.Type(), c); err != nil {
			return cw.n, err
		}
	}
	err := bw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
