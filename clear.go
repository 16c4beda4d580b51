package dxvk

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Clear shaders. The vertex shaders emit a full-screen triangle; the depth
// variant places it at the depth held in vertex constant buffer slot 0. The
// pixel shaders write the value held in constant buffer slot 0 to render
// target 0 or to output-merger UAV slot 0.
const (
	clearVertexSource = `
@vertex
fn main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    let x = f32((index << 1u) & 2u);
    let y = f32(index & 2u);
    return vec4<f32>(x * 2.0 - 1.0, 1.0 - y * 2.0, 0.0, 1.0);
}
`

	clearDepthVertexSource = `
struct ClearDepth {
    value: vec4<f32>,
}

@group(0) @binding(0) var<uniform> depth: ClearDepth;

@vertex
fn main(@builtin(vertex_index) index: u32) -> @builtin(position) vec4<f32> {
    let x = f32((index << 1u) & 2u);
    let y = f32(index & 2u);
    return vec4<f32>(x * 2.0 - 1.0, 1.0 - y * 2.0, depth.value.x, 1.0);
}
`

	clearTargetSource = `
struct ClearColor {
    value: vec4<f32>,
}

@group(0) @binding(0) var<uniform> color: ClearColor;

@fragment
fn main() -> @location(0) vec4<f32> {
    return color.value;
}
`

	clearStorageSource = `
struct ClearColor {
    value: vec4<f32>,
}

@group(0) @binding(0) var<uniform> color: ClearColor;
@group(1) @binding(0) var target: texture_storage_2d<rgba8unorm, write>;

@fragment
fn main(@builtin(position) pos: vec4<f32>) {
    textureStore(target, vec2<i32>(pos.xy), color.value);
}
`

	clearStorageUintSource = `
struct ClearValue {
    value: vec4<u32>,
}

@group(0) @binding(0) var<uniform> fill: ClearValue;
@group(1) @binding(0) var target: texture_storage_2d<rgba32uint, write>;

@fragment
fn main(@builtin(position) pos: vec4<f32>) {
    textureStore(target, vec2<i32>(pos.xy), fill.value);
}
`
)

// ClearFlags selects the aspects ClearDepthStencilView clears.
type ClearFlags uint32

// Clear flags.
const (
	ClearDepth   ClearFlags = 1 << 0
	ClearStencil ClearFlags = 1 << 1
)

// clearValue is a clear value as raw 32-bit channels.
type clearValue struct {
	bits    [4]uint32
	integer bool
}

func floatClear(color [4]float32) clearValue {
	var v clearValue
	for i, f := range color {
		v.bits[i] = math.Float32bits(f)
	}
	return v
}

func uintClear(values [4]uint32) clearValue {
	return clearValue{bits: values, integer: true}
}

func (v clearValue) bytes() []byte {
	b := make([]byte, 16)
	for i, u := range v.bits {
		binary.LittleEndian.PutUint32(b[i*4:], u)
	}
	return b
}

// clearResources are the device objects used by ClearView.
type clearResources struct {
	vs            *Shader
	vsDepth       *Shader
	psTarget      *Shader
	psStorage     *Shader
	psStorageUint *Shader
	rasterizer    *RasterizerState

	// depthStencil is indexed by the depth and stencil ClearFlags.
	depthStencil [(ClearDepth | ClearStencil) + 1]*DepthStencilState
}

type clearCache struct {
	once sync.Once
	res  *clearResources
	err  error
}

func (d *Device) clearResources() (*clearResources, error) {
	d.clear.once.Do(func() {
		res := &clearResources{}
		var err error
		if res.vs, err = d.CreateShader(gpucore.StageVertex, clearVertexSource); err != nil {
			d.clear.err = fmt.Errorf("dxvk: clear vertex shader: %w", err)
			return
		}
		if res.vsDepth, err = d.CreateShader(gpucore.StageVertex, clearDepthVertexSource); err != nil {
			d.clear.err = fmt.Errorf("dxvk: clear depth shader: %w", err)
			return
		}
		if res.psTarget, err = d.CreateShader(gpucore.StagePixel, clearTargetSource); err != nil {
			d.clear.err = fmt.Errorf("dxvk: clear pixel shader: %w", err)
			return
		}
		if res.psStorage, err = d.CreateShader(gpucore.StagePixel, clearStorageSource); err != nil {
			d.clear.err = fmt.Errorf("dxvk: clear storage shader: %w", err)
			return
		}
		if res.psStorageUint, err = d.CreateShader(gpucore.StagePixel, clearStorageUintSource); err != nil {
			d.clear.err = fmt.Errorf("dxvk: clear integer storage shader: %w", err)
			return
		}
		desc := DefaultRasterizerDesc()
		desc.CullMode = gputypes.CullModeNone
		desc.ScissorEnable = true
		res.rasterizer = d.CreateRasterizerState(desc)
		for flags := ClearDepth; flags <= ClearDepth|ClearStencil; flags++ {
			res.depthStencil[flags] = d.CreateDepthStencilState(clearDepthStencilDesc(flags))
		}
		d.clear.res = res
	})
	return d.clear.res, d.clear.err
}

// clearDepthStencilDesc writes depth, stencil or both unconditionally.
func clearDepthStencilDesc(flags ClearFlags) DepthStencilDesc {
	desc := DepthStencilDesc{
		DepthFunc: gputypes.CompareFunctionAlways,
		FrontFace: gputypes.DefaultStencilFaceState(),
		BackFace:  gputypes.DefaultStencilFaceState(),
	}
	if flags&ClearDepth != 0 {
		desc.DepthEnable = true
		desc.DepthWriteEnable = true
	}
	if flags&ClearStencil != 0 {
		replace := gputypes.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      gputypes.StencilOperationReplace,
			DepthFailOp: gputypes.StencilOperationReplace,
			PassOp:      gputypes.StencilOperationReplace,
		}
		desc.StencilEnable = true
		desc.StencilReadMask = 0xFF
		desc.StencilWriteMask = 0xFF
		desc.FrontFace, desc.BackFace = replace, replace
	}
	return desc
}

// ClearRenderTargetView fills the whole render target with color.
func (c *commonContext[F]) ClearRenderTargetView(rtv *RenderTargetView, color [4]float32) {
	if rtv == nil {
		return
	}
	c.ClearView(rtv, color, nil)
}

// ClearUnorderedAccessViewFloat fills the whole view with floating-point
// values.
func (c *commonContext[F]) ClearUnorderedAccessViewFloat(uav *UnorderedAccessView, values [4]float32) {
	if uav == nil {
		return
	}
	c.ClearView(uav, values, nil)
}

// ClearUnorderedAccessViewUint fills the whole view with integer values.
func (c *commonContext[F]) ClearUnorderedAccessViewUint(uav *UnorderedAccessView, values [4]uint32) {
	if uav == nil {
		return
	}
	if c.fwd.recording() {
		c.fwd.retain(uav)
		c.fwd.record(&ClearUnorderedAccessViewUintCommand{View: uav, Values: values})
	}
	c.clearView(uav, uintClear(values), nil)
}

// ClearDepthStencilView clears the depth, the stencil or both aspects of a
// depth-stencil view, as selected by flags.
func (c *commonContext[F]) ClearDepthStencilView(dsv *DepthStencilView, flags ClearFlags, depth float32, stencil uint8) {
	flags &= ClearDepth | ClearStencil
	if dsv == nil || flags == 0 {
		return
	}
	if c.fwd.recording() {
		c.fwd.retain(dsv)
		c.fwd.record(&ClearDepthStencilViewCommand{View: dsv, Flags: flags, Depth: depth, Stencil: stencil})
	}
	c.clearDepthStencilView(dsv, flags, depth, stencil)
}

// ClearView fills the given rectangles of a render target or unordered
// access view with color. Without rectangles the whole view is cleared.
//
// The clear is drawn with temporary state; every binding visible to the
// application is the same afterwards.
func (c *commonContext[F]) ClearView(v View, color [4]float32, rects []gpucore.Rect) {
	switch v.(type) {
	case *RenderTargetView, *UnorderedAccessView:
	default:
		return
	}
	if c.fwd.recording() {
		c.fwd.retain(v)
		c.fwd.record(&ClearViewCommand{View: v, Color: color, Rects: slices.Clone(rects)})
	}
	c.clearView(v, floatClear(color), rects)
}

// clearSetup returns the clear resources and a constant buffer holding
// value, or false when clears cannot run on this context.
func (c *commonContext[F]) clearSetup(value clearValue) (*clearResources, *Buffer, bool) {
	if c.sink == nil || c.device == nil {
		return nil, nil, false
	}
	res, err := c.device.clearResources()
	if err != nil {
		Logger().Warn("dxvk: clear unavailable", slog.String("err", err.Error()))
		return nil, nil, false
	}
	cb, err := c.device.CreateBuffer(BufferDesc{ByteWidth: 16, BindFlags: BindConstantBuffer}, value.bytes())
	if err != nil {
		Logger().Warn("dxvk: clear constants", slog.String("err", err.Error()))
		return nil, nil, false
	}
	return res, cb, true
}

func (c *commonContext[F]) clearView(v View, value clearValue, rects []gpucore.Rect) {
	res, cb, ok := c.clearSetup(value)
	if !ok {
		return
	}
	defer cb.Release()

	w, h := viewExtent(v)
	if len(rects) == 0 {
		rects = []gpucore.Rect{{Right: int32(w), Bottom: int32(h)}}
	}

	c.saveState()
	c.clearState()
	switch view := v.(type) {
	case *RenderTargetView:
		c.setRenderTargetsAndUAVs(1, []*RenderTargetView{view}, nil, 1, 0, nil, nil)
		c.setShader(gpucore.StagePixel, res.psTarget, nil)
	case *UnorderedAccessView:
		c.setRenderTargetsAndUAVs(0, nil, nil, 0, 1, []*UnorderedAccessView{view}, nil)
		ps := res.psStorage
		if value.integer {
			ps = res.psStorageUint
		}
		c.setShader(gpucore.StagePixel, ps, nil)
	}
	c.setShader(gpucore.StageVertex, res.vs, nil)
	c.setConstantBuffers(gpucore.StagePixel, 0, []*Buffer{cb}, nil, nil)
	c.setPrimitiveTopology(TopologyTriangleList)
	c.setRasterizerState(res.rasterizer)
	c.setViewports([]gpucore.Viewport{{Width: float32(w), Height: float32(h), MaxDepth: 1}})
	for _, r := range rects {
		c.setScissorRects([]gpucore.Rect{r})
		c.draw(gpucore.DrawArgs{VertexCount: 3, InstanceCount: 1})
	}
	c.restoreState()
}

// clearDepthStencilView draws a full-screen triangle at depth with a state
// that writes the selected aspects unconditionally and no pixel shader.
func (c *commonContext[F]) clearDepthStencilView(dsv *DepthStencilView, flags ClearFlags, depth float32, stencil uint8) {
	res, cb, ok := c.clearSetup(floatClear([4]float32{depth}))
	if !ok {
		return
	}
	defer cb.Release()

	w, h := viewExtent(dsv)
	c.saveState()
	c.clearState()
	c.setRenderTargetsAndUAVs(0, nil, dsv, 0, 0, nil, nil)
	c.setShader(gpucore.StageVertex, res.vsDepth, nil)
	c.setConstantBuffers(gpucore.StageVertex, 0, []*Buffer{cb}, nil, nil)
	c.setPrimitiveTopology(TopologyTriangleList)
	c.setRasterizerState(res.rasterizer)
	c.setDepthStencilState(res.depthStencil[flags], uint32(stencil))
	c.setViewports([]gpucore.Viewport{{Width: float32(w), Height: float32(h), MaxDepth: 1}})
	c.setScissorRects([]gpucore.Rect{{Right: int32(w), Bottom: int32(h)}})
	c.draw(gpucore.DrawArgs{VertexCount: 3, InstanceCount: 1})
	c.restoreState()
}

// viewExtent returns the size of the subresource a view addresses.
func viewExtent(v View) (uint32, uint32) {
	desc := v.Desc()
	switch res := v.Resource().(type) {
	case *Texture:
		return res.mipExtent(desc.MostDetailedMip)
	case *Buffer:
		if desc.NumElements > 0 {
			return desc.NumElements, 1
		}
		return res.desc.ByteWidth, 1
	}
	return 0, 0
}
