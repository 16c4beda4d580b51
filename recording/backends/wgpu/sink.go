// Package wgpu provides a sink backend that drives wgpu HAL pass encoders.
//
// The sink translates the low-level command stream of a dxvk context into
// hal.RenderPassEncoder and hal.ComputePassEncoder calls:
//
//   - vertex and index buffers, viewports, scissors, the blend constant and
//     the stencil reference map directly onto encoder calls
//   - shader, blend, depth-stencil, rasterizer and input state accumulate in
//     a RenderPipelineKey; the pipeline is resolved through a
//     PipelineCompiler on the next draw after any of them changed
//   - draws and dispatches are forwarded as is
//
// Resource handles come from Allocator: objects whose Native value is a
// hal.Buffer can be bound, other objects are skipped.
//
// # Example
//
//	// Import to register the backend
//	import _ "github.com/jamestiotio/dxvk/recording/backends/wgpu"
//
//	// Or create directly around live pass encoders
//	sink := wgpu.NewSink(renderPass, computePass, compiler)
//	dev, _ := dxvk.NewDevice(dxvk.WithSink(sink), dxvk.WithAllocator(wgpu.NewAllocator(halDevice)))
//
// The registered factory creates a sink over noop encoders; attach real
// encoders with SetEncoders.
package wgpu

import (
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/recording"
)

func init() {
	recording.Register(recording.BackendWGPU, func() gpucore.Sink {
		return NewSink(nil, nil, nil)
	})
}

// RenderPipelineKey is the state a render pipeline is compiled from.
type RenderPipelineKey struct {
	Shaders      [len(gpucore.GraphicsStages)]gpucore.Object
	Layouts      []gputypes.VertexBufferLayout
	Assembly     gpucore.InputAssembly
	Targets      []gputypes.ColorTargetState
	Multisample  gputypes.MultisampleState
	DepthStencil gputypes.DepthStencilState
	Rasterizer   gpucore.RasterizerState
}

// PipelineCompiler creates pipelines for the sink. Implementations usually
// cache by key.
type PipelineCompiler interface {
	RenderPipeline(key *RenderPipelineKey) (hal.RenderPipeline, error)
	ComputePipeline(shader gpucore.Object) (hal.ComputePipeline, error)
}

// Stats counts what the sink forwarded.
type Stats struct {
	Draws            int
	Dispatches       int
	RenderPipelines  int
	ComputePipelines int
	Skipped          int

	// DroppedBindings counts shader resource, sampler and unordered access
	// bindings the sink did not forward. They belong to bind groups the
	// pipeline compiler builds.
	DroppedBindings int
}

// Sink forwards a command stream to wgpu HAL pass encoders.
// It implements gpucore.Sink and recording.FinishingSink.
//
// Sink is not safe for concurrent use.
type Sink struct {
	render   hal.RenderPassEncoder
	compute  hal.ComputePassEncoder
	compiler PipelineCompiler

	key           RenderPipelineKey
	computeShader gpucore.Object
	renderDirty   bool
	computeDirty  bool

	predicate gpucore.Object
	predValue bool

	stats Stats
}

// Ensure Sink implements the required interfaces.
var (
	_ gpucore.Sink            = (*Sink)(nil)
	_ recording.FinishingSink = (*Sink)(nil)
)

// NewSink creates a sink. Nil encoders are replaced by noop encoders; a nil
// compiler leaves pipelines unset.
func NewSink(render hal.RenderPassEncoder, compute hal.ComputePassEncoder, compiler PipelineCompiler) *Sink {
	s := &Sink{compiler: compiler}
	s.SetEncoders(render, compute)
	return s
}

// SetEncoders attaches pass encoders. Pipelines are re-resolved on the next
// draw and dispatch.
func (s *Sink) SetEncoders(render hal.RenderPassEncoder, compute hal.ComputePassEncoder) {
	if render == nil {
		render = &noop.RenderPassEncoder{}
	}
	if compute == nil {
		compute = &noop.ComputePassEncoder{}
	}
	s.render = render
	s.compute = compute
	s.renderDirty = true
	s.computeDirty = true
}

// Stats returns the forwarding counters.
func (s *Sink) Stats() Stats { return s.stats }

// Predicate returns the predicate set by the last SetPredicate call.
func (s *Sink) Predicate() (gpucore.Object, bool) { return s.predicate, s.predValue }

// PipelineKey returns the current render pipeline key.
func (s *Sink) PipelineKey() RenderPipelineKey { return s.key }

// Finish ends both passes.
func (s *Sink) Finish() error {
	s.render.End()
	s.compute.End()
	recording.Logger().Debug("wgpu: passes finished",
		slog.Int("draws", s.stats.Draws),
		slog.Int("dispatches", s.stats.Dispatches))
	return nil
}

// halBuffer returns the HAL buffer behind o, if any.
func halBuffer(o gpucore.Object) (hal.Buffer, bool) {
	if o == nil {
		return nil, false
	}
	switch h := o.Native().(type) {
	case hal.Texture:
		return nil, false
	case hal.Buffer:
		return h, h != nil
	}
	return nil, false
}

// --------------------------------------------------------------------------
// Bindings
// --------------------------------------------------------------------------

// BindShader records the shader in the pipeline key.
func (s *Sink) BindShader(stage gpucore.Stage, shader gpucore.Object) {
	if stage == gpucore.StageCompute {
		s.computeShader = shader
		s.computeDirty = true
		return
	}
	s.key.Shaders[stage] = shader
	s.renderDirty = true
}

// BindConstantBuffers is resolved through bind groups owned by the
// pipeline compiler; the sink only validates that handles exist.
func (s *Sink) BindConstantBuffers(_ gpucore.Stage, _ uint32, ranges []gpucore.ConstantBufferRange) {
	for _, r := range ranges {
		if _, ok := halBuffer(r.Buffer); r.Buffer != nil && !ok {
			s.stats.Skipped++
		}
	}
}

// BindShaderResources counts the views as dropped bindings; WebGPU binds
// them through bind groups, which this sink does not build.
func (s *Sink) BindShaderResources(_ gpucore.Stage, _ uint32, views []gpucore.Object) {
	s.dropBindings(views)
}

// BindSamplers counts the samplers as dropped bindings.
func (s *Sink) BindSamplers(_ gpucore.Stage, _ uint32, samplers []gpucore.Object) {
	s.dropBindings(samplers)
}

// BindUnorderedAccessViews counts the views as dropped bindings.
func (s *Sink) BindUnorderedAccessViews(_ gpucore.Stage, _ uint32, views []gpucore.UnorderedAccessBinding) {
	for _, v := range views {
		if v.View != nil {
			s.stats.DroppedBindings++
		}
	}
}

func (s *Sink) dropBindings(objects []gpucore.Object) {
	for _, o := range objects {
		if o != nil {
			s.stats.DroppedBindings++
		}
	}
}

// BindVertexBuffers sets each vertex buffer slot with a HAL buffer.
func (s *Sink) BindVertexBuffers(start uint32, buffers []gpucore.VertexBufferRange) {
	for i, b := range buffers {
		hb, ok := halBuffer(b.Buffer)
		if !ok {
			if b.Buffer != nil {
				s.stats.Skipped++
			}
			continue
		}
		s.render.SetVertexBuffer(start+uint32(i), hb, uint64(b.Offset))
	}
}

// BindIndexBuffer sets the index buffer.
func (s *Sink) BindIndexBuffer(ib gpucore.IndexBufferRange) {
	hb, ok := halBuffer(ib.Buffer)
	if !ok {
		return
	}
	s.render.SetIndexBuffer(hb, ib.Format, uint64(ib.Offset))
}

// BindStreamOutBuffers is ignored: WebGPU has no stream output.
func (s *Sink) BindStreamOutBuffers(targets []gpucore.StreamOutRange) {
	for _, t := range targets {
		if t.Buffer != nil {
			s.stats.Skipped++
		}
	}
}

// BindFramebuffer marks the pipeline for re-resolution. The attachments
// belong to the render pass; their formats reach the key through the blend
// and depth-stencil state.
func (s *Sink) BindFramebuffer(gpucore.Framebuffer) {
	s.renderDirty = true
}

// --------------------------------------------------------------------------
// Fixed-function state
// --------------------------------------------------------------------------

// SetInputLayout records vertex buffer layouts.
func (s *Sink) SetInputLayout(layouts []gputypes.VertexBufferLayout) {
	s.key.Layouts = make([]gputypes.VertexBufferLayout, len(layouts))
	for i, l := range layouts {
		s.key.Layouts[i] = l
		s.key.Layouts[i].Attributes = slices.Clone(l.Attributes)
	}
	s.renderDirty = true
}

// SetInputAssembly records primitive assembly state.
func (s *Sink) SetInputAssembly(ia gpucore.InputAssembly) {
	s.key.Assembly = ia
	s.renderDirty = true
}

// SetBlendState records blend targets and multisample state.
func (s *Sink) SetBlendState(targets []gputypes.ColorTargetState, ms gputypes.MultisampleState) {
	s.key.Targets = make([]gputypes.ColorTargetState, len(targets))
	for i, t := range targets {
		s.key.Targets[i] = t
		if t.Blend != nil {
			blend := *t.Blend
			s.key.Targets[i].Blend = &blend
		}
	}
	s.key.Multisample = ms
	s.renderDirty = true
}

// SetBlendConstant sets the blend constant.
func (s *Sink) SetBlendConstant(c gputypes.Color) {
	s.render.SetBlendConstant(&c)
}

// SetDepthStencilState records depth-stencil state.
func (s *Sink) SetDepthStencilState(ds gputypes.DepthStencilState) {
	s.key.DepthStencil = ds
	s.renderDirty = true
}

// SetStencilReference sets the stencil reference.
func (s *Sink) SetStencilReference(ref uint32) {
	s.render.SetStencilReference(ref)
}

// SetRasterizerState records rasterizer state.
func (s *Sink) SetRasterizerState(rs gpucore.RasterizerState) {
	s.key.Rasterizer = rs
	s.renderDirty = true
}

// SetViewports sets the first viewport and scissor. WebGPU render passes
// have a single viewport.
func (s *Sink) SetViewports(viewports []gpucore.Viewport, scissors []gpucore.Rect) {
	if len(viewports) == 0 {
		return
	}
	vp := viewports[0]
	s.render.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	if len(scissors) > 0 {
		r := scissors[0]
		s.render.SetScissorRect(uint32(max(r.Left, 0)), uint32(max(r.Top, 0)), r.Width(), r.Height())
	}
}

// SetPredicate stores the predicate. Draws are forwarded regardless: the
// predicate result lives on the GPU.
func (s *Sink) SetPredicate(predicate gpucore.Object, value bool) {
	s.predicate = predicate
	s.predValue = value
}

// --------------------------------------------------------------------------
// Work
// --------------------------------------------------------------------------

func (s *Sink) flushRender() {
	if !s.renderDirty {
		return
	}
	s.renderDirty = false
	if s.compiler == nil {
		return
	}
	p, err := s.compiler.RenderPipeline(&s.key)
	if err != nil {
		recording.Logger().Warn("wgpu: render pipeline", slog.String("err", err.Error()))
		return
	}
	s.render.SetPipeline(p)
	s.stats.RenderPipelines++
}

func (s *Sink) flushCompute() {
	if !s.computeDirty {
		return
	}
	s.computeDirty = false
	if s.compiler == nil {
		return
	}
	p, err := s.compiler.ComputePipeline(s.computeShader)
	if err != nil {
		recording.Logger().Warn("wgpu: compute pipeline", slog.String("err", err.Error()))
		return
	}
	s.compute.SetPipeline(p)
	s.stats.ComputePipelines++
}

// Draw forwards a non-indexed draw.
func (s *Sink) Draw(args gpucore.DrawArgs) {
	s.flushRender()
	s.render.Draw(args.VertexCount, args.InstanceCount, args.FirstVertex, args.FirstInstance)
	s.stats.Draws++
}

// DrawIndexed forwards an indexed draw.
func (s *Sink) DrawIndexed(args gpucore.DrawIndexedArgs) {
	s.flushRender()
	s.render.DrawIndexed(args.IndexCount, args.InstanceCount, args.FirstIndex, args.BaseVertex, args.FirstInstance)
	s.stats.Draws++
}

// DrawIndirect forwards an indirect draw.
func (s *Sink) DrawIndirect(buffer gpucore.Object, offset uint32, indexed bool) {
	hb, ok := halBuffer(buffer)
	if !ok {
		s.stats.Skipped++
		return
	}
	s.flushRender()
	if indexed {
		s.render.DrawIndexedIndirect(hb, uint64(offset))
	} else {
		s.render.DrawIndirect(hb, uint64(offset))
	}
	s.stats.Draws++
}

// DrawAuto is skipped: WebGPU has no stream output, so there is no vertex
// count to draw from.
func (s *Sink) DrawAuto(gpucore.Object, uint32, uint32) {
	s.stats.Skipped++
}

// Dispatch forwards a compute dispatch.
func (s *Sink) Dispatch(x, y, z uint32) {
	s.flushCompute()
	s.compute.Dispatch(x, y, z)
	s.stats.Dispatches++
}

// DispatchIndirect forwards an indirect dispatch.
func (s *Sink) DispatchIndirect(buffer gpucore.Object, offset uint32) {
	hb, ok := halBuffer(buffer)
	if !ok {
		s.stats.Skipped++
		return
	}
	s.flushCompute()
	s.compute.DispatchIndirect(hb, uint64(offset))
	s.stats.Dispatches++
}
