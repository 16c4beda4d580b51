package dxvk

import (
	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// KeepRenderTargets passed as the render target count leaves the bound
// render targets and depth-stencil view untouched.
const KeepRenderTargets = ^uint32(0)

// KeepUnorderedAccessViews passed as the UAV count leaves the bound
// output-merger unordered access views untouched.
const KeepUnorderedAccessViews = ^uint32(0)

// KeepCounter passed as an initial UAV counter keeps the current counter.
const KeepCounter = gpucore.KeepCounter

// maxScissorExtent bounds the scissor emitted when scissoring is disabled.
const maxScissorExtent = 16384

// commonContext is the binding table, hazard resolver and state applier
// shared by immediate and deferred contexts. F decides whether calls are
// also recorded.
//
// A context is not safe for concurrent use.
type commonContext[F forwarder] struct {
	device *Device
	fwd    F
	sink   gpucore.Sink

	state *contextState
	dirty DirtyFlags

	applied appliedState
	saved   []*contextState

	reportHazards       bool
	dropHazardousInputs bool
	disableMSAA         bool

	hazards uint64
	flushes uint64
}

func (c *commonContext[F]) initContext(dev *Device, fwd F, sink gpucore.Sink) {
	c.device = dev
	c.fwd = fwd
	c.sink = sink
	c.state = newContextState()
	c.dirty = DirtyAll
	c.markAllSlots()
	if dev != nil {
		opts := dev.config.D3D11
		c.reportHazards = opts.ReportHazards
		c.dropHazardousInputs = opts.DropHazardousInputs
		c.disableMSAA = opts.DisableMSAA
	}
}

// destroyContext unbinds everything, dropping every reference the context
// holds.
func (c *commonContext[F]) destroyContext() {
	for len(c.saved) > 0 {
		c.saved[len(c.saved)-1].release()
		c.saved = c.saved[:len(c.saved)-1]
	}
	c.state.release()
}

// Dirty returns the categories changed since the last flush.
func (c *commonContext[F]) Dirty() DirtyFlags { return c.dirty }

// Hazards returns the number of bindings evicted or dropped because of
// read/write hazards.
func (c *commonContext[F]) Hazards() uint64 { return c.hazards }

// Flushes returns the number of state flushes that emitted anything.
func (c *commonContext[F]) Flushes() uint64 { return c.flushes }

func (c *commonContext[F]) markAllSlots() {
	s := c.state
	for i := range s.stages {
		st := &s.stages[i]
		st.cbs.markAll()
		st.srvs.markAll()
		st.samplers.markAll()
		st.uavs.markAll()
	}
	s.ia.vbs.markAll()
	s.om.rtvs.markAll()
	s.so.markAll()
}

// ---------------------------------------------------------------------------
// Shader stages
// ---------------------------------------------------------------------------

func (c *commonContext[F]) setShader(stage gpucore.Stage, sh *Shader, instances []*ClassInstance) {
	st := &c.state.stages[stage]
	changed := swapRef(&st.shader, sh)

	n := min(uint32(len(instances)), maxClassInstances)
	if !equalInstances(st.instances, instances[:n]) {
		for _, inst := range instances[:n] {
			addRef(asObject(inst))
		}
		for _, inst := range st.instances {
			release(asObject(inst))
		}
		st.instances = append(st.instances[:0:0], instances[:n]...)
		changed = true
	}
	if changed {
		c.dirty |= DirtyShader(stage)
	}
}

func equalInstances(a, b []*ClassInstance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// setConstantBuffers binds constant buffer ranges. Nil first or count
// arrays bind each buffer from its start over the full addressable range.
func (c *commonContext[F]) setConstantBuffers(stage gpucore.Stage, start uint32, bufs []*Buffer, first, count []uint32) {
	t := &c.state.stages[stage].cbs
	n := clampRange(start, uint32(len(bufs)), t.len())
	changed := false
	for i := uint32(0); i < n; i++ {
		b := cbBinding{buffer: bufs[i]}
		if b.buffer != nil {
			if first != nil && count != nil && int(i) < len(first) && int(i) < len(count) {
				b.first, b.count = first[i], count[i]
			} else {
				b.count = b.buffer.constantCount()
			}
		}
		changed = t.set(start+i, b) || changed
	}
	if changed {
		c.dirty |= DirtyConstantBuffers(stage)
	}
}

func (c *commonContext[F]) setShaderResources(stage gpucore.Stage, start uint32, views []*ShaderResourceView) {
	t := &c.state.stages[stage].srvs
	n := clampRange(start, uint32(len(views)), t.len())
	changed := false
	for i := uint32(0); i < n; i++ {
		v := views[i]
		if t.get(start+i) == v {
			continue
		}
		if !c.resolveSrvHazards(stage, v) {
			v = nil
		}
		changed = t.set(start+i, v) || changed
	}
	if changed {
		c.dirty |= DirtyShaderResources(stage)
	}
}

func (c *commonContext[F]) setSamplers(stage gpucore.Stage, start uint32, samplers []*SamplerState) {
	t := &c.state.stages[stage].samplers
	n := clampRange(start, uint32(len(samplers)), t.len())
	changed := false
	for i := uint32(0); i < n; i++ {
		changed = t.set(start+i, samplers[i]) || changed
	}
	if changed {
		c.dirty |= DirtySamplers(stage)
	}
}

// newUAVBinding normalizes a view and optional initial counter.
func newUAVBinding(v *UnorderedAccessView, counts []uint32, i uint32) uavBinding {
	if v == nil {
		return uavBinding{}
	}
	b := uavBinding{view: v, counter: KeepCounter}
	if int(i) < len(counts) {
		b.counter = counts[i]
	}
	return b
}

func (c *commonContext[F]) setUnorderedAccessViews(start uint32, uavs []*UnorderedAccessView, counts []uint32) {
	t := &c.state.stages[gpucore.StageCompute].uavs
	n := clampRange(start, uint32(len(uavs)), t.len())
	changed := false
	for i := uint32(0); i < n; i++ {
		b := newUAVBinding(uavs[i], counts, i)
		old := t.get(start + i)
		if old == b {
			continue
		}
		if b.view != nil && old.view != b.view {
			c.resolveCsUavHazards(b.view.resourceID())
		}
		changed = t.set(start+i, b) || changed
	}
	if changed {
		c.dirty |= DirtyComputeUAVs
	}
}

// ---------------------------------------------------------------------------
// Input assembler
// ---------------------------------------------------------------------------

func (c *commonContext[F]) setInputLayout(l *InputLayout) {
	if swapRef(&c.state.ia.layout, l) {
		c.dirty |= DirtyInputLayout
	}
}

func (c *commonContext[F]) setPrimitiveTopology(t Topology) {
	if c.state.ia.topology != t {
		c.state.ia.topology = t
		c.dirty |= DirtyTopology
	}
}

func (c *commonContext[F]) setVertexBuffers(start uint32, bufs []*Buffer, strides, offsets []uint32) {
	t := &c.state.ia.vbs
	n := clampRange(start, uint32(len(bufs)), t.len())
	changed := false
	for i := uint32(0); i < n; i++ {
		b := vbBinding{buffer: bufs[i]}
		if b.buffer != nil {
			if int(i) < len(strides) {
				b.stride = strides[i]
			}
			if int(i) < len(offsets) {
				b.offset = offsets[i]
			}
		}
		changed = t.set(start+i, b) || changed
	}
	if changed {
		c.dirty |= DirtyVertexBuffers
	}
}

func (c *commonContext[F]) setIndexBuffer(buf *Buffer, format gputypes.IndexFormat, offset uint32) {
	ib := &c.state.ia.index
	next := indexBinding{buffer: buf, format: format, offset: offset}
	if *ib == next {
		return
	}
	swapRef(&ib.buffer, buf)
	*ib = next
	c.dirty |= DirtyIndexBuffer
}

// ---------------------------------------------------------------------------
// Output merger
// ---------------------------------------------------------------------------

// setRenderTargetsAndUAVs binds render targets, the depth-stencil view and
// output-merger UAVs. A non-keep update replaces every slot of its class.
// Render targets are bound before UAVs. Calls whose own render targets and
// UAVs alias, or whose render targets disagree in size or sample count, are
// dropped.
func (c *commonContext[F]) setRenderTargetsAndUAVs(numRTVs uint32, rtvs []*RenderTargetView, dsv *DepthStencilView,
	uavStart, numUAVs uint32, uavs []*UnorderedAccessView, counts []uint32,
) {
	keepRTVs := numRTVs == KeepRenderTargets
	keepUAVs := numUAVs == KeepUnorderedAccessViews

	if !keepRTVs {
		rtvs = rtvs[:min(uint32(len(rtvs)), numRTVs, maxRenderTargets)]
		if !validateRenderTargets(rtvs, dsv) {
			Logger().Warn("dxvk: render targets have mismatched dimensions, ignoring bind")
			return
		}
	}
	if !keepUAVs {
		uavs = uavs[:min(uint32(len(uavs)), numUAVs)]
	}
	if !keepRTVs && !keepUAVs && testRtvUavHazards(rtvs, dsv, uavs) {
		c.reportHazard("render target", gpucore.StagePixel, 0, 0)
		return
	}

	if !keepRTVs {
		t := &c.state.om.rtvs
		changed := false
		for i := uint32(0); i < t.len(); i++ {
			var rtv *RenderTargetView
			if int(i) < len(rtvs) {
				rtv = rtvs[i]
			}
			if t.get(i) == rtv {
				continue
			}
			if rtv != nil {
				c.resolveRtvHazards(rtv.resourceID())
			}
			changed = t.set(i, rtv) || changed
		}
		if dsv != c.state.om.dsv {
			if dsv != nil {
				c.resolveRtvHazards(dsv.resourceID())
			}
			changed = swapRef(&c.state.om.dsv, dsv) || changed
		}
		if changed {
			c.dirty |= DirtyFramebuffer
		}
	}

	if !keepUAVs {
		t := &c.state.stages[gpucore.StagePixel].uavs
		changed := false
		for i := uint32(0); i < t.len(); i++ {
			var b uavBinding
			if i >= uavStart && i-uavStart < uint32(len(uavs)) {
				b = newUAVBinding(uavs[i-uavStart], counts, i-uavStart)
			}
			old := t.get(i)
			if old == b {
				continue
			}
			if b.view != nil && old.view != b.view {
				c.resolveOmUavHazards(b.view.resourceID())
			}
			changed = t.set(i, b) || changed
		}
		if changed {
			c.dirty |= DirtyGraphicsUAVs
		}
	}
}

// validateRenderTargets reports whether all bound outputs share one mip
// extent and sample count.
func validateRenderTargets(rtvs []*RenderTargetView, dsv *DepthStencilView) bool {
	var (
		set            bool
		w, h, nSamples uint32
	)
	check := func(v *view) bool {
		tex, ok := v.resource.(*Texture)
		if !ok {
			return true
		}
		vw, vh := tex.mipExtent(v.desc.MostDetailedMip)
		vs := max(tex.desc.SampleCount, 1)
		if !set {
			w, h, nSamples, set = vw, vh, vs, true
			return true
		}
		return vw == w && vh == h && vs == nSamples
	}
	for _, rtv := range rtvs {
		if rtv != nil && !check(&rtv.view) {
			return false
		}
	}
	return dsv == nil || check(&dsv.view)
}

// setBlendState sets the blend state. A nil factor means all ones.
func (c *commonContext[F]) setBlendState(s *BlendState, factor *[4]float32, mask uint32) {
	om := &c.state.om
	if swapRef(&om.blend, s) || om.sampleMask != mask {
		om.sampleMask = mask
		c.dirty |= DirtyBlend
	}
	f := [4]float32{1, 1, 1, 1}
	if factor != nil {
		f = *factor
	}
	if om.blendFactor != f {
		om.blendFactor = f
		c.dirty |= DirtyBlendFactor
	}
}

func (c *commonContext[F]) setDepthStencilState(s *DepthStencilState, ref uint32) {
	om := &c.state.om
	if swapRef(&om.depthStencil, s) {
		c.dirty |= DirtyDepthStencil
	}
	if om.stencilRef != ref {
		om.stencilRef = ref
		c.dirty |= DirtyStencilRef
	}
}

// ---------------------------------------------------------------------------
// Rasterizer
// ---------------------------------------------------------------------------

func (c *commonContext[F]) setRasterizerState(s *RasterizerState) {
	if swapRef(&c.state.rs.state, s) {
		c.dirty |= DirtyRasterizer
	}
}

func (c *commonContext[F]) setViewports(vps []gpucore.Viewport) {
	rs := &c.state.rs
	n := min(uint32(len(vps)), maxViewports)
	if n == rs.numViewports && equalSlices(rs.viewports[:n], vps[:n]) {
		return
	}
	copy(rs.viewports[:], vps[:n])
	clear(rs.viewports[n:])
	rs.numViewports = n
	c.dirty |= DirtyViewports
}

func (c *commonContext[F]) setScissorRects(rects []gpucore.Rect) {
	rs := &c.state.rs
	n := min(uint32(len(rects)), maxViewports)
	if n == rs.numScissors && equalSlices(rs.scissors[:n], rects[:n]) {
		return
	}
	copy(rs.scissors[:], rects[:n])
	clear(rs.scissors[n:])
	rs.numScissors = n
	c.dirty |= DirtyViewports
}

func equalSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Stream output and predication
// ---------------------------------------------------------------------------

// setStreamOutTargets replaces every stream-output slot.
func (c *commonContext[F]) setStreamOutTargets(bufs []*Buffer, offsets []uint32) {
	t := &c.state.so
	changed := false
	for i := uint32(0); i < t.len(); i++ {
		var b soBinding
		if int(i) < len(bufs) && bufs[i] != nil {
			b.buffer = bufs[i]
			if int(i) < len(offsets) {
				b.offset = offsets[i]
			}
		}
		if t.get(i) == b {
			continue
		}
		if b.buffer != nil && t.get(i).buffer != b.buffer {
			c.resolveOutputHazards(b.buffer.ObjectID())
		}
		changed = t.set(i, b) || changed
	}
	if changed {
		c.dirty |= DirtyStreamOut
	}
}

func (c *commonContext[F]) setPredication(p *Predicate, value bool) {
	pr := &c.state.pr
	if swapRef(&pr.predicate, p) || pr.value != value {
		pr.value = value
		c.dirty |= DirtyPredication
	}
}

// ---------------------------------------------------------------------------
// Reset
// ---------------------------------------------------------------------------

// clearState unbinds everything, restores fixed-function defaults and marks
// every category dirty.
func (c *commonContext[F]) clearState() {
	c.state.release()
	def := newContextState()
	s := c.state
	s.ia.topology = def.ia.topology
	s.ia.index = indexBinding{}
	s.om.blendFactor = def.om.blendFactor
	s.om.sampleMask = def.om.sampleMask
	s.om.stencilRef = 0
	s.rs = def.rs
	s.pr = def.pr
	c.markAllSlots()
	c.dirty = DirtyAll
}
