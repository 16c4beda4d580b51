package dxvk

import (
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/shader"
)

// appliedState caches derived values last emitted to the sink. A change in
// one of them invalidates the low-level state objects derived from it.
type appliedState struct {
	sampleCount   uint32
	depthFormat   gputypes.TextureFormat
	colorFormats  []gputypes.TextureFormat
	strides       [maxVertexBuffers]uint32
	indexFormat   gputypes.IndexFormat
	scissorEnable bool

	cbs  []gpucore.ConstantBufferRange
	objs []gpucore.Object
	uavs []gpucore.UnorderedAccessBinding
}

// applyGraphicsState emits every dirty graphics category before a draw.
func (c *commonContext[F]) applyGraphicsState() {
	if c.sink == nil {
		return
	}
	d := c.dirty & dirtyGraphics
	if d == 0 {
		return
	}
	s := c.state

	// Derived invalidation runs first so dependent categories are emitted
	// in this flush.
	if d&DirtyFramebuffer != 0 {
		fb := s.framebufferInfo()
		c.sink.BindFramebuffer(fb)
		if fb.DepthFormat != c.applied.depthFormat || !slices.Equal(fb.ColorFormats, c.applied.colorFormats) {
			c.applied.depthFormat = fb.DepthFormat
			c.applied.colorFormats = fb.ColorFormats
			d |= DirtyRasterizer | DirtyBlend | DirtyDepthStencil
		}
	}
	if d&(DirtyFramebuffer|DirtyRasterizer) != 0 {
		if n := c.rasterSampleCount(); n != c.applied.sampleCount {
			c.applied.sampleCount = n
			d |= DirtyRasterizer | DirtyBlend
		}
	}
	if d&DirtyVertexBuffers != 0 && s.ia.layout != nil {
		l := s.ia.layout
		for i := l.slots.Next(0); i < gpucore.MaxSlots; i = l.slots.Next(i + 1) {
			if s.ia.vbs.slots[i].stride != c.applied.strides[i] {
				d |= DirtyInputLayout
				break
			}
		}
	}
	if d&DirtyIndexBuffer != 0 && s.ia.topology.IsStrip() && s.ia.index.format != c.applied.indexFormat {
		d |= DirtyTopology
	}
	if d&DirtyRasterizer != 0 {
		if on := c.rasterizerDesc().ScissorEnable; on != c.applied.scissorEnable {
			c.applied.scissorEnable = on
			d |= DirtyViewports
		}
	}

	if d&DirtyInputLayout != 0 {
		c.sink.SetInputLayout(c.vertexLayouts())
	}
	if d&DirtyTopology != 0 {
		c.applied.indexFormat = s.ia.index.format
		c.sink.SetInputAssembly(s.ia.topology.inputAssembly(s.ia.index.format))
	}
	if d&DirtyVertexBuffers != 0 {
		c.applyVertexBuffers()
	}
	if d&DirtyIndexBuffer != 0 {
		ib := s.ia.index
		c.sink.BindIndexBuffer(gpucore.IndexBufferRange{
			Buffer: asObject(ib.buffer),
			Format: ib.format,
			Offset: ib.offset,
		})
	}
	if d&DirtyStreamOut != 0 {
		c.applyStreamOut()
	}
	if d&DirtyBlend != 0 {
		c.sink.SetBlendState(c.blendTargets())
	}
	if d&DirtyBlendFactor != 0 {
		f := s.om.blendFactor
		c.sink.SetBlendConstant(gputypes.Color{R: float64(f[0]), G: float64(f[1]), B: float64(f[2]), A: float64(f[3])})
	}
	if d&DirtyDepthStencil != 0 {
		c.sink.SetDepthStencilState(c.depthStencilState())
	}
	if d&DirtyStencilRef != 0 {
		c.sink.SetStencilReference(s.om.stencilRef)
	}
	if d&DirtyRasterizer != 0 {
		c.sink.SetRasterizerState(c.rasterizerState())
	}
	if d&DirtyViewports != 0 {
		c.applyViewports()
	}
	if d&(DirtyGraphicsUAVs|DirtyShader(gpucore.StagePixel)) != 0 {
		c.applyUAVs(gpucore.StagePixel)
	}
	for _, st := range gpucore.GraphicsStages {
		c.applyStage(st, d)
	}
	if d&DirtyPredication != 0 {
		c.applyPredication()
	}

	c.dirty &^= d
	c.flushes++
	Logger().Debug("dxvk: graphics state flushed", slog.String("dirty", d.String()))
}

// applyComputeState emits every dirty compute category before a dispatch.
func (c *commonContext[F]) applyComputeState() {
	if c.sink == nil {
		return
	}
	d := c.dirty & dirtyCompute
	if d == 0 {
		return
	}
	if d&(DirtyComputeUAVs|DirtyShader(gpucore.StageCompute)) != 0 {
		c.applyUAVs(gpucore.StageCompute)
	}
	c.applyStage(gpucore.StageCompute, d)
	if d&DirtyPredication != 0 {
		c.applyPredication()
	}

	c.dirty &^= d
	c.flushes++
	Logger().Debug("dxvk: compute state flushed", slog.String("dirty", d.String()))
}

// applyStage emits the shader and the dirty resource slots of one stage the
// bound shader reads. Slots the shader does not read stay dirty and are
// emitted once a shader that reads them is bound.
func (c *commonContext[F]) applyStage(stage gpucore.Stage, d DirtyFlags) {
	st := &c.state.stages[stage]
	shaderDirty := d&DirtyShader(stage) != 0
	if shaderDirty {
		c.sink.BindShader(stage, asObject(st.shader))
	}

	if shaderDirty || d&DirtyConstantBuffers(stage) != 0 {
		t := &st.cbs
		emit := t.dirty.And(st.shader.used(shader.ClassConstantBuffer))
		emit.Runs(func(start, n uint32) {
			ranges := c.applied.cbs[:0]
			for i := start; i < start+n; i++ {
				b := t.slots[i]
				ranges = append(ranges, gpucore.ConstantBufferRange{
					Buffer:        asObject(b.buffer),
					FirstConstant: b.first,
					NumConstants:  b.count,
				})
			}
			c.applied.cbs = ranges
			c.sink.BindConstantBuffers(stage, start, ranges)
		})
		t.dirty = t.dirty.AndNot(emit)
	}

	if shaderDirty || d&DirtyShaderResources(stage) != 0 {
		t := &st.srvs
		emit := t.dirty.And(st.shader.used(shader.ClassShaderResource))
		emit.Runs(func(start, n uint32) {
			objs := c.applied.objs[:0]
			for i := start; i < start+n; i++ {
				objs = append(objs, asObject(t.slots[i]))
			}
			c.applied.objs = objs
			c.sink.BindShaderResources(stage, start, objs)
		})
		t.dirty = t.dirty.AndNot(emit)
	}

	if shaderDirty || d&DirtySamplers(stage) != 0 {
		t := &st.samplers
		emit := t.dirty.And(st.shader.used(shader.ClassSampler))
		emit.Runs(func(start, n uint32) {
			objs := c.applied.objs[:0]
			for i := start; i < start+n; i++ {
				objs = append(objs, asObject(t.slots[i]))
			}
			c.applied.objs = objs
			c.sink.BindSamplers(stage, start, objs)
		})
		t.dirty = t.dirty.AndNot(emit)
	}
}

// applyUAVs emits dirty unordered access views. Initial counter values are
// consumed by the emit: afterwards the slots keep their current counters.
func (c *commonContext[F]) applyUAVs(stage gpucore.Stage) {
	st := &c.state.stages[stage]
	t := &st.uavs
	used := gpucore.SlotRange(0, t.len())
	if stage == gpucore.StageCompute {
		used = st.shader.used(shader.ClassUnorderedAccess)
	}
	emit := t.dirty.And(used)
	emit.Runs(func(start, n uint32) {
		uavs := c.applied.uavs[:0]
		for i := start; i < start+n; i++ {
			b := t.slots[i]
			uavs = append(uavs, gpucore.UnorderedAccessBinding{View: asObject(b.view), Counter: b.counter})
			if b.view != nil {
				t.slots[i].counter = KeepCounter
			}
		}
		c.applied.uavs = uavs
		c.sink.BindUnorderedAccessViews(stage, start, uavs)
	})
	t.dirty = t.dirty.AndNot(emit)
}

func (c *commonContext[F]) applyVertexBuffers() {
	t := &c.state.ia.vbs
	t.dirty.Runs(func(start, n uint32) {
		vbs := make([]gpucore.VertexBufferRange, 0, n)
		for i := start; i < start+n; i++ {
			b := t.slots[i]
			vbs = append(vbs, gpucore.VertexBufferRange{Buffer: asObject(b.buffer), Stride: b.stride, Offset: b.offset})
		}
		c.sink.BindVertexBuffers(start, vbs)
	})
	t.dirty = gpucore.SlotMask{}
}

func (c *commonContext[F]) applyStreamOut() {
	t := &c.state.so
	targets := make([]gpucore.StreamOutRange, t.countBound())
	for i := range targets {
		b := t.slots[i]
		targets[i] = gpucore.StreamOutRange{Buffer: asObject(b.buffer), Offset: b.offset}
	}
	c.sink.BindStreamOutBuffers(targets)
	t.dirty = gpucore.SlotMask{}
}

func (c *commonContext[F]) applyViewports() {
	rs := &c.state.rs
	n := rs.numViewports
	scissors := make([]gpucore.Rect, n)
	for i := range scissors {
		switch {
		case !c.applied.scissorEnable:
			scissors[i] = gpucore.Rect{Right: maxScissorExtent, Bottom: maxScissorExtent}
		case uint32(i) < rs.numScissors:
			scissors[i] = rs.scissors[i]
		}
	}
	c.sink.SetViewports(slices.Clone(rs.viewports[:n]), scissors)
}

func (c *commonContext[F]) applyPredication() {
	pr := c.state.pr
	c.sink.SetPredicate(asObject(pr.predicate), pr.value)
}

// rasterSampleCount returns the rasterization sample count: the
// framebuffer's, else the rasterizer's forced count, else one.
func (c *commonContext[F]) rasterSampleCount() uint32 {
	if c.disableMSAA {
		return 1
	}
	fb := c.state.framebufferInfo()
	if fb.SampleCount > 0 {
		return fb.SampleCount
	}
	if n := c.rasterizerDesc().ForcedSampleCount; n > 0 {
		return n
	}
	return 1
}

func (c *commonContext[F]) rasterizerDesc() RasterizerDesc {
	if rs := c.state.rs.state; rs != nil {
		return rs.desc
	}
	return DefaultRasterizerDesc()
}

// vertexLayouts builds one buffer layout per input slot up to the highest
// slot the input layout reads. Strides come from the bound vertex buffers.
func (c *commonContext[F]) vertexLayouts() []gputypes.VertexBufferLayout {
	l := c.state.ia.layout
	if l == nil {
		return nil
	}
	n := uint32(0)
	for i := l.slots.Next(0); i < gpucore.MaxSlots; i = l.slots.Next(i + 1) {
		n = i + 1
	}
	layouts := make([]gputypes.VertexBufferLayout, n)
	for i := range layouts {
		layouts[i].StepMode = gputypes.VertexStepModeVertexBufferNotUsed
	}
	for i, e := range l.elements {
		vl := &layouts[e.InputSlot]
		vl.Attributes = append(vl.Attributes, gputypes.VertexAttribute{
			Format:         e.Format,
			Offset:         uint64(l.offsets[i]),
			ShaderLocation: uint32(i),
		})
		vl.StepMode = gputypes.VertexStepModeVertex
		if e.PerInstance {
			vl.StepMode = gputypes.VertexStepModeInstance
		}
	}
	for i := range layouts {
		stride := c.state.ia.vbs.slots[i].stride
		layouts[i].ArrayStride = uint64(stride)
		c.applied.strides[i] = stride
	}
	return layouts
}

func (c *commonContext[F]) blendTargets() ([]gputypes.ColorTargetState, gputypes.MultisampleState) {
	desc := DefaultBlendDesc()
	if b := c.state.om.blend; b != nil {
		desc = b.desc
	}
	targets := make([]gputypes.ColorTargetState, len(c.applied.colorFormats))
	for i := range targets {
		rt := desc.target(i)
		targets[i] = gputypes.ColorTargetState{
			Format:    c.applied.colorFormats[i],
			WriteMask: rt.WriteMask,
		}
		if rt.BlendEnable {
			blend := rt.Blend
			targets[i].Blend = &blend
		}
	}
	ms := gputypes.MultisampleState{
		Count:                  c.applied.sampleCount,
		Mask:                   uint64(c.state.om.sampleMask),
		AlphaToCoverageEnabled: desc.AlphaToCoverageEnable,
	}
	return targets, ms
}

func (c *commonContext[F]) depthStencilState() gputypes.DepthStencilState {
	desc := DefaultDepthStencilDesc()
	if ds := c.state.om.depthStencil; ds != nil {
		desc = ds.desc
	}
	format := c.applied.depthFormat
	out := gputypes.DepthStencilState{
		Format:       format,
		DepthCompare: gputypes.CompareFunctionAlways,
		StencilFront: gputypes.DefaultStencilFaceState(),
		StencilBack:  gputypes.DefaultStencilFaceState(),
	}
	if desc.DepthEnable && format.HasDepth() {
		out.DepthWriteEnabled = desc.DepthWriteEnable
		out.DepthCompare = desc.DepthFunc
	}
	if desc.StencilEnable && format.HasStencil() {
		out.StencilFront = desc.FrontFace
		out.StencilBack = desc.BackFace
		out.StencilReadMask = uint32(desc.StencilReadMask)
		out.StencilWriteMask = uint32(desc.StencilWriteMask)
	}
	return out
}

// rasterizerState derives the low-level rasterizer state. The primitive
// topology is carried by the input assembly state, not here.
func (c *commonContext[F]) rasterizerState() gpucore.RasterizerState {
	desc := c.rasterizerDesc()
	front := gputypes.FrontFaceCW
	if desc.FrontCounterClockwise {
		front = gputypes.FrontFaceCCW
	}
	rs := gpucore.RasterizerState{
		Primitive: gputypes.PrimitiveState{
			FrontFace:      front,
			CullMode:       desc.CullMode,
			UnclippedDepth: !desc.DepthClipEnable,
		},
		Wireframe:       desc.Wireframe,
		ScissorEnable:   desc.ScissorEnable,
		MultisampleLine: desc.AntialiasedLineEnable && !desc.MultisampleEnable,
		SampleCount:     c.applied.sampleCount,
		DepthFormat:     c.applied.depthFormat,
	}
	if c.applied.depthFormat.HasDepth() {
		rs.DepthBias = desc.DepthBias
		rs.DepthBiasClamp = desc.DepthBiasClamp
		rs.DepthBiasSlopeScale = desc.SlopeScaledDepthBias
	}
	return rs
}
