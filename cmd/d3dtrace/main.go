// Command d3dtrace records a small demo frame through a dxvk device and
// prints the low-level command trace the state tracker emitted.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/jamestiotio/dxvk"
	"github.com/jamestiotio/dxvk/config"
	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/recording"
	"github.com/jamestiotio/dxvk/recording/backends/wgpu"
)

const vertexSource = `
struct Out {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn main(@location(0) pos: vec4<f32>, @location(1) uv: vec4<f32>) -> Out {
    var out: Out;
    out.pos = pos;
    out.uv = uv.xy;
    return out;
}
`

const pixelSource = `
struct Params {
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(1) @binding(0) var tex: texture_2d<f32>;
@group(2) @binding(0) var samp: sampler;

@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv) * params.tint;
}
`

func main() {
	var (
		configPath = flag.String("config", "", "TOML options file (default: $"+config.EnvConfigFile+")")
		deferred   = flag.Bool("deferred", false, "record the frame on a deferred context")
		restore    = flag.Bool("restore", false, "restore immediate state after executing the command list")
		replay     = flag.Bool("replay", false, "replay the trace through the wgpu sink and print its stats")
		lists      = flag.Int("lists", 0, "record the frame into this many command lists in parallel")
	)
	flag.Parse()

	opts, err := loadOptions(*configPath)
	if err != nil {
		log.Fatalf("Failed to load options: %v", err)
	}
	if level, enabled, _ := opts.SlogLevel(); enabled {
		dxvk.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	rec := recording.NewRecorder()
	dev, err := dxvk.NewDevice(
		dxvk.WithSink(rec),
		dxvk.WithConfig(opts),
		dxvk.WithAllocator(wgpu.NewAllocator(&noop.Device{})),
	)
	if err != nil {
		log.Fatalf("Failed to create device: %v", err)
	}
	defer dev.Close()

	scene, err := newScene(dev)
	if err != nil {
		log.Fatalf("Failed to create scene: %v", err)
	}
	defer scene.release()

	ctx := dev.ImmediateContext()
	switch {
	case *lists > 0:
		fns := make([]func(*dxvk.DeferredContext), *lists)
		for i := range fns {
			fns[i] = func(dc *dxvk.DeferredContext) { scene.record(dc) }
		}
		for _, list := range dev.RecordCommandLists(fns...) {
			ctx.ExecuteCommandList(list, *restore)
			list.Release()
		}
	case *deferred:
		dc := dev.CreateDeferredContext()
		scene.record(dc)
		list := dc.FinishCommandList(false)
		ctx.ExecuteCommandList(list, *restore)
		list.Release()
		dc.Release()
	default:
		scene.record(ctx)
	}
	ctx.Flush()

	trace := rec.FinishRecording()
	if _, err := trace.WriteTo(os.Stdout); err != nil {
		log.Fatalf("Failed to write trace: %v", err)
	}
	fmt.Printf("commands=%d flushes=%d hazards=%d\n", trace.Len(), ctx.Flushes(), ctx.Hazards())

	if *replay {
		sink := wgpu.NewSink(nil, nil, nil)
		if err := trace.Playback(sink); err != nil {
			log.Fatalf("Failed to replay: %v", err)
		}
		if err := sink.Finish(); err != nil {
			log.Fatalf("Failed to finish passes: %v", err)
		}
		st := sink.Stats()
		fmt.Printf("wgpu: draws=%d dispatches=%d skipped=%d dropped_bindings=%d\n",
			st.Draws, st.Dispatches, st.Skipped, st.DroppedBindings)
	}
}

func loadOptions(path string) (config.Options, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}

// frameContext is the call surface shared by immediate and deferred contexts.
type frameContext interface {
	IASetInputLayout(l *dxvk.InputLayout)
	IASetPrimitiveTopology(t dxvk.Topology)
	IASetVertexBuffers(start uint32, bufs []*dxvk.Buffer, strides, offsets []uint32)
	VSSetShader(sh *dxvk.Shader, instances []*dxvk.ClassInstance)
	PSSetShader(sh *dxvk.Shader, instances []*dxvk.ClassInstance)
	PSSetShaderResources(start uint32, views []*dxvk.ShaderResourceView)
	PSSetSamplers(start uint32, samplers []*dxvk.SamplerState)
	PSSetConstantBuffers(start uint32, bufs []*dxvk.Buffer)
	OMSetRenderTargets(rtvs []*dxvk.RenderTargetView, dsv *dxvk.DepthStencilView)
	RSSetViewports(vps []gpucore.Viewport)
	ClearRenderTargetView(rtv *dxvk.RenderTargetView, color [4]float32)
	ClearDepthStencilView(dsv *dxvk.DepthStencilView, flags dxvk.ClearFlags, depth float32, stencil uint8)
	Draw(vertexCount, startVertex uint32)
}

// scene holds the objects of the demo frame: a textured triangle drawn into
// an offscreen target, which a second pass then samples.
type scene struct {
	vs, ps    *dxvk.Shader
	layout    *dxvk.InputLayout
	vb, cb    *dxvk.Buffer
	sampler   *dxvk.SamplerState
	albedo    *dxvk.ShaderResourceView
	target    *dxvk.RenderTargetView
	targetSRV *dxvk.ShaderResourceView
	backbuf   *dxvk.RenderTargetView
	depth     *dxvk.DepthStencilView
	objects   []dxvk.Object
}

func newScene(dev *dxvk.Device) (*scene, error) {
	s := &scene{}
	var err error
	keep := func(o dxvk.Object) { s.objects = append(s.objects, o) }

	if s.vs, err = dev.CreateShader(gpucore.StageVertex, vertexSource); err != nil {
		return nil, err
	}
	keep(s.vs)
	if s.ps, err = dev.CreateShader(gpucore.StagePixel, pixelSource); err != nil {
		return nil, err
	}
	keep(s.ps)
	s.layout, err = dev.CreateInputLayout([]dxvk.InputElement{
		{SemanticName: "POSITION", Format: gputypes.VertexFormatFloat32x4, AlignedByteOffset: dxvk.AppendAligned},
		{SemanticName: "TEXCOORD", Format: gputypes.VertexFormatFloat32x4, AlignedByteOffset: dxvk.AppendAligned},
	})
	if err != nil {
		return nil, err
	}
	keep(s.layout)
	if s.vb, err = dev.CreateBuffer(dxvk.BufferDesc{ByteWidth: 96, BindFlags: dxvk.BindVertexBuffer}, nil); err != nil {
		return nil, err
	}
	keep(s.vb)
	if s.cb, err = dev.CreateBuffer(dxvk.BufferDesc{ByteWidth: 16, BindFlags: dxvk.BindConstantBuffer}, nil); err != nil {
		return nil, err
	}
	keep(s.cb)
	s.sampler = dev.CreateSamplerState(gputypes.SamplerDescriptor{
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
	})
	keep(s.sampler)

	texture := func(flags dxvk.BindFlags, format gputypes.TextureFormat) (*dxvk.Texture, error) {
		return dev.CreateTexture(dxvk.TextureDesc{Width: 256, Height: 256, Format: format, BindFlags: flags})
	}
	albedo, err := texture(dxvk.BindShaderResource, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, err
	}
	defer albedo.Release()
	offscreen, err := texture(dxvk.BindShaderResource|dxvk.BindRenderTarget, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return nil, err
	}
	defer offscreen.Release()
	back, err := texture(dxvk.BindRenderTarget, gputypes.TextureFormatBGRA8Unorm)
	if err != nil {
		return nil, err
	}
	defer back.Release()
	depth, err := texture(dxvk.BindDepthStencil, gputypes.TextureFormatDepth24PlusStencil8)
	if err != nil {
		return nil, err
	}
	defer depth.Release()

	if s.albedo, err = dev.CreateShaderResourceView(albedo, nil); err != nil {
		return nil, err
	}
	keep(s.albedo)
	if s.target, err = dev.CreateRenderTargetView(offscreen, nil); err != nil {
		return nil, err
	}
	keep(s.target)
	if s.targetSRV, err = dev.CreateShaderResourceView(offscreen, nil); err != nil {
		return nil, err
	}
	keep(s.targetSRV)
	if s.backbuf, err = dev.CreateRenderTargetView(back, nil); err != nil {
		return nil, err
	}
	keep(s.backbuf)
	if s.depth, err = dev.CreateDepthStencilView(depth, nil); err != nil {
		return nil, err
	}
	keep(s.depth)
	return s, nil
}

func (s *scene) release() {
	for _, o := range s.objects {
		o.Release()
	}
}

func (s *scene) record(ctx frameContext) {
	ctx.IASetInputLayout(s.layout)
	ctx.IASetPrimitiveTopology(dxvk.TopologyTriangleList)
	ctx.IASetVertexBuffers(0, []*dxvk.Buffer{s.vb}, []uint32{32}, []uint32{0})
	ctx.VSSetShader(s.vs, nil)
	ctx.PSSetShader(s.ps, nil)
	ctx.PSSetConstantBuffers(0, []*dxvk.Buffer{s.cb})
	ctx.PSSetSamplers(0, []*dxvk.SamplerState{s.sampler})
	ctx.RSSetViewports([]gpucore.Viewport{{Width: 256, Height: 256, MaxDepth: 1}})

	// Offscreen pass.
	ctx.OMSetRenderTargets([]*dxvk.RenderTargetView{s.target}, nil)
	ctx.ClearRenderTargetView(s.target, [4]float32{0, 0, 0, 1})
	ctx.PSSetShaderResources(0, []*dxvk.ShaderResourceView{s.albedo})
	ctx.Draw(3, 0)

	// Composite pass. Binding the offscreen texture for reading while it is
	// still the render target evicts the render target.
	ctx.PSSetShaderResources(0, []*dxvk.ShaderResourceView{s.targetSRV})
	ctx.OMSetRenderTargets([]*dxvk.RenderTargetView{s.backbuf}, s.depth)
	ctx.ClearDepthStencilView(s.depth, dxvk.ClearDepth|dxvk.ClearStencil, 1, 0)
	ctx.Draw(3, 0)
}
