package dxvk

import (
	"github.com/gogpu/gputypes"
)

// BindFlags describe how a resource may be bound.
type BindFlags uint32

// Bind flags.
const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindConstantBuffer
	BindShaderResource
	BindStreamOutput
	BindRenderTarget
	BindDepthStencil
	BindUnorderedAccess
)

// Resource is a buffer or texture. Its ObjectID is the identity used for
// hazard detection: views of different subresources of one resource alias.
type Resource interface {
	Object
	BindFlags() BindFlags
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	ByteWidth           uint32
	BindFlags           BindFlags
	StructureByteStride uint32
}

// Buffer is a linear resource.
type Buffer struct {
	deviceChild
	desc BufferDesc
	data []byte
}

// Desc returns the creation description.
func (b *Buffer) Desc() BufferDesc { return b.desc }

// BindFlags returns the allowed bind points.
func (b *Buffer) BindFlags() BindFlags { return b.desc.BindFlags }

// Data returns the initial contents passed at creation.
func (b *Buffer) Data() []byte { return b.data }

// constantCount returns the number of 16-byte constants, capped at the
// D3D11 limit of 4096 for a full-range binding.
func (b *Buffer) constantCount() uint32 {
	n := b.desc.ByteWidth / 16
	if n > maxConstantsPerBinding {
		n = maxConstantsPerBinding
	}
	return n
}

// TextureDesc describes a texture.
type TextureDesc struct {
	Dimension        gputypes.TextureDimension
	Width            uint32
	Height           uint32
	DepthOrArraySize uint32
	MipLevels        uint32
	SampleCount      uint32
	Format           gputypes.TextureFormat
	BindFlags        BindFlags
}

// Texture is an image resource.
type Texture struct {
	deviceChild
	desc   TextureDesc
	minLOD float32
}

// Desc returns the creation description.
func (t *Texture) Desc() TextureDesc { return t.desc }

// BindFlags returns the allowed bind points.
func (t *Texture) BindFlags() BindFlags { return t.desc.BindFlags }

// mipExtent returns the size of mip level mip.
func (t *Texture) mipExtent(mip uint32) (uint32, uint32) {
	w, h := t.desc.Width>>mip, t.desc.Height>>mip
	return max(w, 1), max(h, 1)
}

// ViewDesc selects the subresources a view covers. Zero counts mean
// "through the end of the resource".
type ViewDesc struct {
	Format          gputypes.TextureFormat
	MostDetailedMip uint32
	MipLevels       uint32
	FirstArraySlice uint32
	ArraySize       uint32
	FirstElement    uint32
	NumElements     uint32
}

// View is a typed window on a resource.
type View interface {
	Object

	// Resource returns the viewed resource. The reference is borrowed:
	// it is valid while the view is alive and must not be released.
	Resource() Resource

	Desc() ViewDesc
}

// view implements View. It holds a reference on its resource.
type view struct {
	deviceChild
	resource Resource
	desc     ViewDesc
}

func (v *view) Resource() Resource { return v.resource }
func (v *view) Desc() ViewDesc     { return v.desc }

func (v *view) resourceID() uint64 { return v.resource.ObjectID() }

func (v *view) initView(res Resource, desc ViewDesc) {
	res.AddRef()
	v.resource = res
	v.desc = desc
	v.init(nil, func() { res.Release() })
}

// ShaderResourceView is a read-only view bound to shader stages.
type ShaderResourceView struct{ view }

// UnorderedAccessView is a read-write view bound to the pixel or compute stage.
type UnorderedAccessView struct{ view }

// RenderTargetView is a color output view.
type RenderTargetView struct{ view }

// DepthStencilView is a depth-stencil output view.
type DepthStencilView struct{ view }

func (v *ShaderResourceView) ref() Object  { return asObject(v) }
func (v *RenderTargetView) ref() Object    { return asObject(v) }
func (v *UnorderedAccessView) ref() Object { return asObject(v) }
func (v *DepthStencilView) ref() Object    { return asObject(v) }

// viewFormat returns the view format, falling back to the texture format.
func viewFormat(v View) gputypes.TextureFormat {
	if f := v.Desc().Format; f != gputypes.TextureFormatUndefined {
		return f
	}
	if t, ok := v.Resource().(*Texture); ok {
		return t.desc.Format
	}
	return gputypes.TextureFormatUndefined
}

// viewSampleCount returns the sample count of the viewed texture.
func viewSampleCount(v View) uint32 {
	if t, ok := v.Resource().(*Texture); ok && t.desc.SampleCount > 0 {
		return t.desc.SampleCount
	}
	return 1
}
