package dxvk

import (
	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/shader"
)

// RenderTargetBlendDesc is the blend state of one render target.
type RenderTargetBlendDesc struct {
	BlendEnable bool
	Blend       gputypes.BlendState
	WriteMask   gputypes.ColorWriteMask
}

// BlendDesc describes a blend state object.
type BlendDesc struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool
	RenderTarget           [maxRenderTargets]RenderTargetBlendDesc
}

// DefaultBlendDesc returns blending disabled with all channels written.
func DefaultBlendDesc() BlendDesc {
	var d BlendDesc
	for i := range d.RenderTarget {
		d.RenderTarget[i] = RenderTargetBlendDesc{
			Blend:     gputypes.BlendStateReplace(),
			WriteMask: gputypes.ColorWriteMaskAll,
		}
	}
	return d
}

// target returns the blend state used for render target i.
func (d *BlendDesc) target(i int) RenderTargetBlendDesc {
	if d.IndependentBlendEnable {
		return d.RenderTarget[i]
	}
	return d.RenderTarget[0]
}

// BlendState is an immutable blend state object.
type BlendState struct {
	deviceChild
	desc BlendDesc
}

// Desc returns the creation description.
func (s *BlendState) Desc() BlendDesc { return s.desc }

// DepthStencilDesc describes a depth-stencil state object.
type DepthStencilDesc struct {
	DepthEnable      bool
	DepthWriteEnable bool
	DepthFunc        gputypes.CompareFunction
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        gputypes.StencilFaceState
	BackFace         gputypes.StencilFaceState
}

// DefaultDepthStencilDesc returns depth testing with a less comparison and
// stencil disabled.
func DefaultDepthStencilDesc() DepthStencilDesc {
	return DepthStencilDesc{
		DepthEnable:      true,
		DepthWriteEnable: true,
		DepthFunc:        gputypes.CompareFunctionLess,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
		FrontFace:        gputypes.DefaultStencilFaceState(),
		BackFace:         gputypes.DefaultStencilFaceState(),
	}
}

// DepthStencilState is an immutable depth-stencil state object.
type DepthStencilState struct {
	deviceChild
	desc DepthStencilDesc
}

// Desc returns the creation description.
func (s *DepthStencilState) Desc() DepthStencilDesc { return s.desc }

// RasterizerDesc describes a rasterizer state object.
type RasterizerDesc struct {
	Wireframe             bool
	CullMode              gputypes.CullMode
	FrontCounterClockwise bool
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       bool
	ScissorEnable         bool
	MultisampleEnable     bool
	AntialiasedLineEnable bool

	// ForcedSampleCount sets the rasterization sample count when no render
	// target is bound. Zero follows the framebuffer.
	ForcedSampleCount uint32
}

// DefaultRasterizerDesc returns solid fill, back-face culling and depth clip.
func DefaultRasterizerDesc() RasterizerDesc {
	return RasterizerDesc{
		CullMode:        gputypes.CullModeBack,
		DepthClipEnable: true,
	}
}

// RasterizerState is an immutable rasterizer state object.
type RasterizerState struct {
	deviceChild
	desc RasterizerDesc
}

// Desc returns the creation description.
func (s *RasterizerState) Desc() RasterizerDesc { return s.desc }

// SamplerState is an immutable sampler object.
type SamplerState struct {
	deviceChild
	desc gputypes.SamplerDescriptor
}

// Desc returns the creation description.
func (s *SamplerState) Desc() gputypes.SamplerDescriptor { return s.desc }

func (s *SamplerState) ref() Object { return asObject(s) }

// AppendAligned places an input element directly after the previous one in
// the same slot.
const AppendAligned = ^uint32(0)

// InputElement describes one vertex attribute.
type InputElement struct {
	SemanticName      string
	SemanticIndex     uint32
	Format            gputypes.VertexFormat
	InputSlot         uint32
	AlignedByteOffset uint32
	PerInstance       bool
}

// InputLayout maps vertex buffer contents to shader inputs.
type InputLayout struct {
	deviceChild
	elements []InputElement
	offsets  []uint32
	slots    gpucore.SlotMask
}

// Elements returns the layout elements.
func (l *InputLayout) Elements() []InputElement { return l.elements }

// Shader is a shader object for one stage.
type Shader struct {
	deviceChild
	stage  gpucore.Stage
	layout *shader.Layout
}

// Stage returns the pipeline stage.
func (s *Shader) Stage() gpucore.Stage { return s.stage }

// Layout returns the reflected bindings, or nil when the shader was created
// without source.
func (s *Shader) Layout() *shader.Layout { return s.layout }

// used returns the slots of class c the shader reads. Without reflection
// every slot counts as used.
func (s *Shader) used(c shader.Class) gpucore.SlotMask {
	if s == nil || s.layout == nil {
		return gpucore.SlotRange(0, gpucore.MaxSlots)
	}
	return s.layout.Used(c)
}

// ClassInstance is a dynamic linkage class instance bound with a shader.
type ClassInstance struct {
	deviceChild
	name string
}

// Name returns the class name.
func (c *ClassInstance) Name() string { return c.name }

// Predicate is an occlusion predicate used for predicated rendering.
type Predicate struct {
	deviceChild
}
