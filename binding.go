package dxvk

import (
	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// stageState is the binding table of one shader stage.
type stageState struct {
	shader    *Shader
	instances []*ClassInstance

	cbs      slotTable[cbBinding]
	srvs     slotTable[*ShaderResourceView]
	samplers slotTable[*SamplerState]
	uavs     slotTable[uavBinding]
}

type indexBinding struct {
	buffer *Buffer
	format gputypes.IndexFormat
	offset uint32
}

type iaState struct {
	layout   *InputLayout
	topology Topology
	vbs      slotTable[vbBinding]
	index    indexBinding
}

type omState struct {
	rtvs         slotTable[*RenderTargetView]
	dsv          *DepthStencilView
	blend        *BlendState
	blendFactor  [4]float32
	sampleMask   uint32
	depthStencil *DepthStencilState
	stencilRef   uint32
}

type rsState struct {
	state        *RasterizerState
	viewports    [maxViewports]gpucore.Viewport
	numViewports uint32
	scissors     [maxViewports]gpucore.Rect
	numScissors  uint32
}

type predicationState struct {
	predicate *Predicate
	value     bool
}

// contextState is the complete pipeline state snapshot of a context.
type contextState struct {
	stages [gpucore.StageCount]stageState
	ia     iaState
	om     omState
	rs     rsState
	so     slotTable[soBinding]
	pr     predicationState
}

// newContextState returns the default state.
func newContextState() *contextState {
	s := &contextState{}
	for i := range s.stages {
		st := gpucore.Stage(i)
		s.stages[i] = stageState{
			cbs:      newSlotTable[cbBinding](Limit(st, ClassConstantBuffer)),
			srvs:     newSlotTable[*ShaderResourceView](Limit(st, ClassShaderResource)),
			samplers: newSlotTable[*SamplerState](Limit(st, ClassSampler)),
			uavs:     newSlotTable[uavBinding](Limit(st, ClassUnorderedAccess)),
		}
	}
	s.ia.vbs = newSlotTable[vbBinding](maxVertexBuffers)
	s.om.rtvs = newSlotTable[*RenderTargetView](maxRenderTargets)
	s.so = newSlotTable[soBinding](maxStreamOutTargets)
	s.om.blendFactor = [4]float32{1, 1, 1, 1}
	s.om.sampleMask = 0xFFFFFFFF
	return s
}

// clone returns a deep copy that owns its references.
func (s *contextState) clone() *contextState {
	c := &contextState{}
	for i := range s.stages {
		src := &s.stages[i]
		c.stages[i] = stageState{
			shader:    src.shader,
			instances: append([]*ClassInstance(nil), src.instances...),
			cbs:       src.cbs.clone(),
			srvs:      src.srvs.clone(),
			samplers:  src.samplers.clone(),
			uavs:      src.uavs.clone(),
		}
		addRef(asObject(src.shader))
		for _, inst := range src.instances {
			addRef(asObject(inst))
		}
	}

	c.ia = iaState{
		layout:   s.ia.layout,
		topology: s.ia.topology,
		vbs:      s.ia.vbs.clone(),
		index:    s.ia.index,
	}
	addRef(asObject(s.ia.layout))
	addRef(asObject(s.ia.index.buffer))

	c.om = s.om
	c.om.rtvs = s.om.rtvs.clone()
	addRef(asObject(s.om.dsv))
	addRef(asObject(s.om.blend))
	addRef(asObject(s.om.depthStencil))

	c.rs = s.rs
	addRef(asObject(s.rs.state))

	c.so = s.so.clone()

	c.pr = s.pr
	addRef(asObject(s.pr.predicate))
	return c
}

// release drops every reference held by a cloned snapshot.
func (s *contextState) release() {
	for i := range s.stages {
		st := &s.stages[i]
		release(asObject(st.shader))
		for _, inst := range st.instances {
			release(asObject(inst))
		}
		st.cbs.clear()
		st.srvs.clear()
		st.samplers.clear()
		st.uavs.clear()
		st.shader, st.instances = nil, nil
	}
	release(asObject(s.ia.layout))
	release(asObject(s.ia.index.buffer))
	s.ia.vbs.clear()
	s.om.rtvs.clear()
	release(asObject(s.om.dsv))
	release(asObject(s.om.blend))
	release(asObject(s.om.depthStencil))
	release(asObject(s.rs.state))
	s.so.clear()
	release(asObject(s.pr.predicate))
	s.ia.layout, s.ia.index.buffer = nil, nil
	s.om.dsv, s.om.blend, s.om.depthStencil = nil, nil, nil
	s.rs.state, s.pr.predicate = nil, nil
}

// swapRef replaces *slot with next, acquiring next before releasing the
// previous value. It reports whether the slot changed.
func swapRef[P interface {
	*E
	Object
}, E any](slot *P, next P) bool {
	if *slot == next {
		return false
	}
	addRef(asObject(next))
	prev := *slot
	*slot = next
	release(asObject(prev))
	return true
}

// outputsBound reports whether any output that can alias a shader resource
// is bound.
func (s *contextState) outputsBound() bool {
	return s.om.rtvs.bound.Any() || s.om.dsv != nil || s.so.bound.Any() ||
		s.stages[gpucore.StagePixel].uavs.bound.Any() ||
		s.stages[gpucore.StageCompute].uavs.bound.Any()
}

// inputsBound reports whether any stage has a shader resource bound.
func (s *contextState) inputsBound() bool {
	for st := range gpucore.Stage(gpucore.StageCount) {
		if s.stages[st].srvs.bound.Any() {
			return true
		}
	}
	return false
}

// framebufferInfo derives the framebuffer description from bound outputs.
func (s *contextState) framebufferInfo() gpucore.Framebuffer {
	fb := gpucore.Framebuffer{SampleCount: 0}
	n := s.om.rtvs.countBound()
	fb.Colors = make([]gpucore.Object, n)
	fb.ColorFormats = make([]gputypes.TextureFormat, n)
	for i := uint32(0); i < n; i++ {
		rtv := s.om.rtvs.slots[i]
		if rtv == nil {
			continue
		}
		fb.Colors[i] = rtv
		fb.ColorFormats[i] = viewFormat(rtv)
		if fb.SampleCount == 0 {
			fb.SampleCount = viewSampleCount(rtv)
		}
	}
	if s.om.dsv != nil {
		fb.Depth = s.om.dsv
		fb.DepthFormat = viewFormat(s.om.dsv)
		if fb.SampleCount == 0 {
			fb.SampleCount = viewSampleCount(s.om.dsv)
		}
	}
	return fb
}
