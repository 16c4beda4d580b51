package dxvk

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/recording"
)

// Pixel shader reading SRV slot 0, sampler slot 3 and constant buffer 2.
const testPixelSource = `
struct Params {
    color: vec4<f32>,
}

@group(0) @binding(2) var<uniform> params: Params;
@group(0) @binding(0) var tex: texture_2d<f32>;
@group(0) @binding(3) var samp: sampler;

@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv) * params.color;
}
`

// newTestDevice creates a device that records into a fresh Recorder.
func newTestDevice(t *testing.T, opts ...DeviceOption) *Device {
	t.Helper()
	opts = append([]DeviceOption{WithSink(recording.NewRecorder())}, opts...)
	dev, err := NewDevice(opts...)
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	t.Cleanup(dev.Close)
	return dev
}

// recorderOf returns the recorder behind the immediate context of dev.
func recorderOf(t *testing.T, dev *Device) *recording.Recorder {
	t.Helper()
	rec, ok := dev.ImmediateContext().Sink().(*recording.Recorder)
	if !ok {
		t.Fatalf("sink is %T, want *recording.Recorder", dev.ImmediateContext().Sink())
	}
	return rec
}

// flushed flushes the immediate context and returns what reached the sink.
func flushed(t *testing.T, dev *Device) *recording.Recording {
	t.Helper()
	rec := recorderOf(t, dev)
	dev.ImmediateContext().Flush()
	return rec.FinishRecording()
}

func newTestTexture(t *testing.T, dev *Device, flags BindFlags) *Texture {
	t.Helper()
	return newTestTextureDesc(t, dev, TextureDesc{
		Width:     64,
		Height:    64,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		BindFlags: flags,
	})
}

func newTestTextureDesc(t *testing.T, dev *Device, desc TextureDesc) *Texture {
	t.Helper()
	tex, err := dev.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	return tex
}

func newTestDepthTexture(t *testing.T, dev *Device) *Texture {
	t.Helper()
	return newTestTextureDesc(t, dev, TextureDesc{
		Width:     64,
		Height:    64,
		Format:    gputypes.TextureFormatDepth24PlusStencil8,
		BindFlags: BindDepthStencil | BindShaderResource,
	})
}

func newTestBuffer(t *testing.T, dev *Device, size uint32, flags BindFlags) *Buffer {
	t.Helper()
	buf, err := dev.CreateBuffer(BufferDesc{ByteWidth: size, BindFlags: flags}, nil)
	if err != nil {
		t.Fatalf("CreateBuffer() error = %v", err)
	}
	return buf
}

func newTestSRV(t *testing.T, dev *Device, res Resource) *ShaderResourceView {
	t.Helper()
	v, err := dev.CreateShaderResourceView(res, nil)
	if err != nil {
		t.Fatalf("CreateShaderResourceView() error = %v", err)
	}
	return v
}

func newTestRTV(t *testing.T, dev *Device, res Resource) *RenderTargetView {
	t.Helper()
	v, err := dev.CreateRenderTargetView(res, nil)
	if err != nil {
		t.Fatalf("CreateRenderTargetView() error = %v", err)
	}
	return v
}

func newTestUAV(t *testing.T, dev *Device, res Resource) *UnorderedAccessView {
	t.Helper()
	v, err := dev.CreateUnorderedAccessView(res, nil)
	if err != nil {
		t.Fatalf("CreateUnorderedAccessView() error = %v", err)
	}
	return v
}

func newTestDSV(t *testing.T, dev *Device, res Resource) *DepthStencilView {
	t.Helper()
	v, err := dev.CreateDepthStencilView(res, nil)
	if err != nil {
		t.Fatalf("CreateDepthStencilView() error = %v", err)
	}
	return v
}

// newTestShader creates a shader without source, which reads every slot.
func newTestShader(t *testing.T, dev *Device, stage gpucore.Stage) *Shader {
	t.Helper()
	sh, err := dev.CreateShader(stage, "")
	if err != nil {
		t.Fatalf("CreateShader() error = %v", err)
	}
	return sh
}

// commandsOf returns the recorded commands of type C in order.
func commandsOf[C recording.Command](r *recording.Recording) []C {
	var out []C
	for _, cmd := range r.Commands() {
		if c, ok := cmd.(C); ok {
			out = append(out, c)
		}
	}
	return out
}

// releaseAll releases every non-nil object returned by a Get call.
func releaseAll[P interface {
	*E
	Object
}, E any](objs []P) {
	for _, o := range objs {
		release(asObject(o))
	}
}

// objectAt resolves a recorded reference.
func objectAt(r *recording.Recording, ref recording.ObjectRef) gpucore.Object {
	if !ref.IsValid() {
		return nil
	}
	return r.Resources().GetObject(ref)
}
