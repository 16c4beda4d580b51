package dxvk

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/config"
	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/internal/statecache"
	"github.com/jamestiotio/dxvk/recording"
	"github.com/jamestiotio/dxvk/shader"
)

// Device creates resources, state objects and contexts.
//
// Object creation is safe for concurrent use. The immediate context is not.
type Device struct {
	sink      gpucore.Sink
	sinkName  string
	allocator gpucore.Allocator
	tiles     TileManager
	config    config.Options

	immediate *ImmediateContext
	clear     clearCache
	states    stateCaches
}

// stateCaches deduplicates state objects by description.
type stateCaches struct {
	blend        *statecache.Cache[BlendDesc, *BlendState]
	depthStencil *statecache.Cache[DepthStencilDesc, *DepthStencilState]
	rasterizer   *statecache.Cache[RasterizerDesc, *RasterizerState]
	sampler      *statecache.Cache[gputypes.SamplerDescriptor, *SamplerState]
}

func newStateCaches() stateCaches {
	return stateCaches{
		blend:        statecache.New[BlendDesc, *BlendState](maxStateObjects),
		depthStencil: statecache.New[DepthStencilDesc, *DepthStencilState](maxStateObjects),
		rasterizer:   statecache.New[RasterizerDesc, *RasterizerState](maxStateObjects),
		sampler:      statecache.New[gputypes.SamplerDescriptor, *SamplerState](maxStateObjects),
	}
}

func tryAcquire[P interface{ tryAddRef() bool }](p P) bool { return p.tryAddRef() }

// NewDevice creates a device.
//
// Without WithSink, the sink named by the configuration is created from the
// recording registry; an empty name selects the best registered sink.
func NewDevice(opts ...DeviceOption) (*Device, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("dxvk: %w", err)
	}
	if o.config.D3D11.CommandListReserve == 0 {
		o.config.D3D11.CommandListReserve = config.DefaultCommandListReserve
	}

	sink, name, err := resolveSink(o)
	if err != nil {
		return nil, err
	}
	d := &Device{
		sink:      sink,
		sinkName:  name,
		allocator: o.allocator,
		tiles:     o.tiles,
		config:    o.config,
		states:    newStateCaches(),
	}
	d.immediate = newImmediateContext(d, sink)
	Logger().Info("dxvk: device created",
		slog.String("sink", name),
		slog.Bool("tiles", d.tiles != nil))
	return d, nil
}

func resolveSink(o deviceOptions) (gpucore.Sink, string, error) {
	if o.sink != nil {
		return o.sink, "custom", nil
	}
	if name := o.config.Sink; name != "" {
		if !recording.IsRegistered(name) {
			return nil, "", fmt.Errorf("%w: %q (forgotten import?)", ErrUnknownSink, name)
		}
		s, err := recording.NewSink(name)
		if err != nil {
			return nil, "", fmt.Errorf("dxvk: %w", err)
		}
		return s, name, nil
	}
	s, name := recording.BestSink()
	if s == nil {
		return nil, "", ErrUnknownSink
	}
	return s, name, nil
}

// SinkName returns the name of the sink backend, or "custom".
func (d *Device) SinkName() string { return d.sinkName }

// Config returns the runtime options in effect.
func (d *Device) Config() config.Options { return d.config }

// ImmediateContext returns the device's immediate context.
func (d *Device) ImmediateContext() *ImmediateContext { return d.immediate }

// CreateDeferredContext creates a context that records command lists.
// The caller owns one reference.
func (d *Device) CreateDeferredContext() *DeferredContext {
	return newDeferredContext(d)
}

// Close unbinds all state of the immediate context, dropping its
// references.
func (d *Device) Close() {
	d.immediate.destroyContext()
}

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

// CreateBuffer creates a buffer. data, if non-nil, is the initial content
// and must not exceed ByteWidth.
func (d *Device) CreateBuffer(desc BufferDesc, data []byte) (*Buffer, error) {
	if desc.ByteWidth == 0 || uint64(len(data)) > uint64(desc.ByteWidth) {
		return nil, fmt.Errorf("%w: buffer size %d with %d bytes of data", ErrInvalidArg, desc.ByteWidth, len(data))
	}
	if desc.BindFlags&BindConstantBuffer != 0 && desc.ByteWidth%gpucore.ConstantSize != 0 {
		return nil, fmt.Errorf("%w: constant buffer size %d is not a multiple of %d", ErrInvalidArg, desc.ByteWidth, gpucore.ConstantSize)
	}
	b := &Buffer{desc: desc, data: append([]byte(nil), data...)}
	native, destroy, err := d.allocate(func(a gpucore.Allocator) (any, error) {
		return a.AllocateBuffer(gpucore.BufferInfo{
			Size:  uint64(desc.ByteWidth),
			Usage: bufferUsage(desc.BindFlags),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("dxvk: create buffer: %w", err)
	}
	b.init(native, destroy)
	return b, nil
}

// CreateTexture creates a texture. Zero mip, sample and depth counts
// default to one; a zero dimension defaults to 2D.
func (d *Device) CreateTexture(desc TextureDesc) (*Texture, error) {
	if desc.Width == 0 || desc.Format == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: texture width %d format %v", ErrInvalidArg, desc.Width, desc.Format)
	}
	if desc.Dimension == gputypes.TextureDimensionUndefined {
		desc.Dimension = gputypes.TextureDimension2D
	}
	desc.Height = max(desc.Height, 1)
	desc.DepthOrArraySize = max(desc.DepthOrArraySize, 1)
	desc.MipLevels = max(desc.MipLevels, 1)
	desc.SampleCount = max(desc.SampleCount, 1)

	t := &Texture{desc: desc}
	native, destroy, err := d.allocate(func(a gpucore.Allocator) (any, error) {
		return a.AllocateTexture(gpucore.TextureInfo{
			Dimension: desc.Dimension,
			Size: gputypes.Extent3D{
				Width:              desc.Width,
				Height:             desc.Height,
				DepthOrArrayLayers: desc.DepthOrArraySize,
			},
			MipLevels:   desc.MipLevels,
			SampleCount: desc.SampleCount,
			Format:      desc.Format,
			Usage:       textureUsage(desc.BindFlags),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("dxvk: create texture: %w", err)
	}
	t.init(native, destroy)
	return t, nil
}

func (d *Device) allocate(alloc func(gpucore.Allocator) (any, error)) (any, func(), error) {
	if d.allocator == nil {
		return nil, nil, nil
	}
	native, err := alloc(d.allocator)
	if err != nil {
		return nil, nil, err
	}
	a := d.allocator
	return native, func() { a.Free(native) }, nil
}

func bufferUsage(f BindFlags) gputypes.BufferUsage {
	u := gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	if f&BindVertexBuffer != 0 {
		u |= gputypes.BufferUsageVertex
	}
	if f&BindIndexBuffer != 0 {
		u |= gputypes.BufferUsageIndex
	}
	if f&BindConstantBuffer != 0 {
		u |= gputypes.BufferUsageUniform
	}
	if f&(BindShaderResource|BindUnorderedAccess|BindStreamOutput) != 0 {
		u |= gputypes.BufferUsageStorage
	}
	return u | gputypes.BufferUsageIndirect
}

func textureUsage(f BindFlags) gputypes.TextureUsage {
	u := gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if f&BindShaderResource != 0 {
		u |= gputypes.TextureUsageTextureBinding
	}
	if f&BindUnorderedAccess != 0 {
		u |= gputypes.TextureUsageStorageBinding
	}
	if f&(BindRenderTarget|BindDepthStencil) != 0 {
		u |= gputypes.TextureUsageRenderAttachment
	}
	return u
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

func checkBindFlag(res Resource, flag BindFlags, kind string) error {
	if res == nil {
		return fmt.Errorf("%w: nil resource for %s", ErrInvalidArg, kind)
	}
	if res.BindFlags()&flag == 0 {
		return fmt.Errorf("%w: resource %d not bindable as %s", ErrInvalidArg, res.ObjectID(), kind)
	}
	return nil
}

func viewDesc(desc *ViewDesc) ViewDesc {
	if desc == nil {
		return ViewDesc{}
	}
	return *desc
}

// CreateShaderResourceView creates a read-only view. A nil desc views the
// whole resource.
func (d *Device) CreateShaderResourceView(res Resource, desc *ViewDesc) (*ShaderResourceView, error) {
	if err := checkBindFlag(res, BindShaderResource, "shader resource"); err != nil {
		return nil, err
	}
	v := &ShaderResourceView{}
	v.initView(res, viewDesc(desc))
	return v, nil
}

// CreateUnorderedAccessView creates a read-write view.
func (d *Device) CreateUnorderedAccessView(res Resource, desc *ViewDesc) (*UnorderedAccessView, error) {
	if err := checkBindFlag(res, BindUnorderedAccess, "unordered access"); err != nil {
		return nil, err
	}
	v := &UnorderedAccessView{}
	v.initView(res, viewDesc(desc))
	return v, nil
}

// CreateRenderTargetView creates a color output view.
func (d *Device) CreateRenderTargetView(res Resource, desc *ViewDesc) (*RenderTargetView, error) {
	if err := checkBindFlag(res, BindRenderTarget, "render target"); err != nil {
		return nil, err
	}
	v := &RenderTargetView{}
	v.initView(res, viewDesc(desc))
	return v, nil
}

// CreateDepthStencilView creates a depth-stencil output view. The view
// format must be a depth or stencil format.
func (d *Device) CreateDepthStencilView(res Resource, desc *ViewDesc) (*DepthStencilView, error) {
	if err := checkBindFlag(res, BindDepthStencil, "depth stencil"); err != nil {
		return nil, err
	}
	v := &DepthStencilView{}
	v.initView(res, viewDesc(desc))
	if f := viewFormat(v); !f.IsDepthStencil() {
		v.Release()
		return nil, fmt.Errorf("%w: %v is not a depth-stencil format", ErrInvalidArg, f)
	}
	return v, nil
}

// ---------------------------------------------------------------------------
// State objects
// ---------------------------------------------------------------------------

// State objects are immutable. Creating one with the description of a live
// object returns that object with an added reference.

// CreateBlendState creates a blend state object.
func (d *Device) CreateBlendState(desc BlendDesc) *BlendState {
	c := d.states.blend
	return c.Lookup(desc, tryAcquire[*BlendState], func() *BlendState {
		s := &BlendState{desc: desc}
		s.init(nil, func() { c.Forget(desc, s) })
		return s
	})
}

// CreateDepthStencilState creates a depth-stencil state object.
func (d *Device) CreateDepthStencilState(desc DepthStencilDesc) *DepthStencilState {
	c := d.states.depthStencil
	return c.Lookup(desc, tryAcquire[*DepthStencilState], func() *DepthStencilState {
		s := &DepthStencilState{desc: desc}
		s.init(nil, func() { c.Forget(desc, s) })
		return s
	})
}

// CreateRasterizerState creates a rasterizer state object.
func (d *Device) CreateRasterizerState(desc RasterizerDesc) *RasterizerState {
	c := d.states.rasterizer
	return c.Lookup(desc, tryAcquire[*RasterizerState], func() *RasterizerState {
		s := &RasterizerState{desc: desc}
		s.init(nil, func() { c.Forget(desc, s) })
		return s
	})
}

// CreateSamplerState creates a sampler object.
func (d *Device) CreateSamplerState(desc gputypes.SamplerDescriptor) *SamplerState {
	c := d.states.sampler
	return c.Lookup(desc, tryAcquire[*SamplerState], func() *SamplerState {
		s := &SamplerState{desc: desc}
		s.init(nil, func() { c.Forget(desc, s) })
		return s
	})
}

// CreateInputLayout creates an input layout. AppendAligned offsets follow
// the previous element of the same slot.
func (d *Device) CreateInputLayout(elements []InputElement) (*InputLayout, error) {
	l := &InputLayout{
		elements: append([]InputElement(nil), elements...),
		offsets:  make([]uint32, len(elements)),
	}
	var next [maxVertexBuffers]uint32
	for i, e := range elements {
		if e.InputSlot >= maxVertexBuffers {
			return nil, fmt.Errorf("%w: input slot %d", ErrInvalidArg, e.InputSlot)
		}
		off := e.AlignedByteOffset
		if off == AppendAligned {
			off = next[e.InputSlot]
		}
		l.offsets[i] = off
		next[e.InputSlot] = off + uint32(e.Format.Size())
		l.slots.Set(e.InputSlot)
	}
	l.init(nil, nil)
	return l, nil
}

// CreateShader creates a shader for stage from WGSL source and reflects its
// bindings. Empty source creates a shader that counts every slot as used.
func (d *Device) CreateShader(stage gpucore.Stage, source string) (*Shader, error) {
	s := &Shader{stage: stage}
	if source != "" {
		layout, err := shader.Reflect(source)
		if err != nil {
			return nil, fmt.Errorf("dxvk: create shader: %w", err)
		}
		switch stage {
		case gpucore.StageVertex, gpucore.StagePixel, gpucore.StageCompute:
			if !layout.HasStage(stage) {
				return nil, fmt.Errorf("%w: %v", ErrStageMismatch, stage)
			}
		}
		s.layout = layout
	}
	s.init(nil, nil)
	return s, nil
}

// CreateClassInstance creates a class instance for dynamic shader linkage.
func (d *Device) CreateClassInstance(name string) *ClassInstance {
	c := &ClassInstance{name: name}
	c.init(nil, nil)
	return c
}

// CreatePredicate creates an occlusion predicate.
func (d *Device) CreatePredicate() *Predicate {
	p := &Predicate{}
	p.init(nil, nil)
	return p
}
