package dxvk

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/config"
	"github.com/jamestiotio/dxvk/gpucore"
)

func TestHazard_ShaderResourceEvictsRenderTarget(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)

	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.Flush()
	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})

	rtvs, _ := ctx.OMGetRenderTargets(1)
	if rtvs[0] != nil {
		t.Errorf("render target 0 = %v, want evicted", rtvs[0])
	}
	views := ctx.PSGetShaderResources(0, 1)
	if views[0] != srv {
		t.Errorf("shader resource 0 = %v, want srv", views[0])
	}
	releaseAll(views)
	if got := ctx.Hazards(); got != 1 {
		t.Errorf("Hazards() = %d, want 1", got)
	}
	if got := ctx.Dirty(); got&DirtyFramebuffer == 0 {
		t.Errorf("Dirty() = %v, want Framebuffer set", got)
	}
	if got := rtv.RefCount(); got != 1 {
		t.Errorf("rtv.RefCount() = %d, want 1", got)
	}
}

func TestHazard_RenderTargetEvictsShaderResources(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)

	ctx.VSSetShaderResources(1, []*ShaderResourceView{srv})
	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.CSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)

	if got := ctx.VSGetShaderResources(1, 1); got[0] != nil {
		t.Errorf("vertex shader resource = %v, want evicted", got[0])
	}
	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("pixel shader resource = %v, want evicted", got[0])
	}
	if got := ctx.CSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("compute shader resource = %v, want evicted", got[0])
	}
	if got := ctx.Dirty(); got&DirtyShaderResources(gpucore.StageCompute) == 0 {
		t.Errorf("Dirty() = %v, want compute ShaderResources set", got)
	}
	if got := ctx.Hazards(); got != 3 {
		t.Errorf("Hazards() = %d, want 3", got)
	}
	if got := srv.RefCount(); got != 1 {
		t.Errorf("srv.RefCount() = %d, want 1", got)
	}
	rtvs, _ := ctx.OMGetRenderTargets(1)
	if rtvs[0] != rtv {
		t.Errorf("render target 0 = %v, want rtv", rtvs[0])
	}
	releaseAll(rtvs)
}

func TestHazard_DropHazardousInputs(t *testing.T) {
	opts := config.Default()
	opts.D3D11.DropHazardousInputs = true
	dev := newTestDevice(t, WithConfig(opts))
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)

	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})

	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("shader resource 0 = %v, want unbound", got[0])
	}
	rtvs, _ := ctx.OMGetRenderTargets(1)
	if rtvs[0] != rtv {
		t.Errorf("render target 0 = %v, want kept", rtvs[0])
	}
	releaseAll(rtvs)
	if got := srv.RefCount(); got != 1 {
		t.Errorf("srv.RefCount() = %d, want 1", got)
	}
	if got := ctx.Hazards(); got != 1 {
		t.Errorf("Hazards() = %d, want 1", got)
	}
}

func TestHazard_ComputeShaderResourceEvictsComputeUAV(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindUnorderedAccess)
	srv := newTestSRV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)

	ctx.CSSetUnorderedAccessViews(2, []*UnorderedAccessView{uav}, nil)
	ctx.CSSetShaderResources(0, []*ShaderResourceView{srv})

	if got := ctx.CSGetUnorderedAccessViews(2, 1); got[0] != nil {
		t.Errorf("compute UAV 2 = %v, want evicted", got[0])
	}
	if got := ctx.Dirty(); got&DirtyComputeUAVs == 0 {
		t.Errorf("Dirty() = %v, want ComputeUAVs set", got)
	}
	if got := ctx.Hazards(); got != 1 {
		t.Errorf("Hazards() = %d, want 1", got)
	}
}

func TestHazard_ComputeUAVEvictsShaderResourcesAtEveryStage(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindUnorderedAccess)
	srv := newTestSRV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.CSSetShaderResources(4, []*ShaderResourceView{srv})
	ctx.CSSetUnorderedAccessViews(0, []*UnorderedAccessView{uav}, nil)

	if got := ctx.CSGetShaderResources(4, 1); got[0] != nil {
		t.Errorf("compute shader resource 4 = %v, want evicted", got[0])
	}
	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("pixel shader resource 0 = %v, want evicted", got[0])
	}
	uavs := ctx.CSGetUnorderedAccessViews(0, 1)
	if uavs[0] != uav {
		t.Errorf("compute UAV 0 = %v, want uav", uavs[0])
	}
	releaseAll(uavs)
	if got := ctx.Hazards(); got != 2 {
		t.Errorf("Hazards() = %d, want 2", got)
	}
}

func TestHazard_ShaderResourceEvictsOutputsOfOtherPipeline(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget|BindUnorderedAccess)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)

	// A compute shader resource evicts a render target.
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.CSSetShaderResources(0, []*ShaderResourceView{srv})
	if got, _ := ctx.OMGetRenderTargets(1); got[0] != nil {
		t.Errorf("render target 0 = %v, want evicted", got[0])
	}

	// A pixel shader resource evicts a compute UAV.
	ctx.CSSetShaderResources(0, []*ShaderResourceView{nil})
	ctx.CSSetUnorderedAccessViews(1, []*UnorderedAccessView{uav}, nil)
	ctx.PSSetShaderResources(2, []*ShaderResourceView{srv})
	if got := ctx.CSGetUnorderedAccessViews(1, 1); got[0] != nil {
		t.Errorf("compute UAV 1 = %v, want evicted", got[0])
	}
	if got := ctx.Dirty(); got&DirtyComputeUAVs == 0 {
		t.Errorf("Dirty() = %v, want ComputeUAVs set", got)
	}
	views := ctx.PSGetShaderResources(2, 1)
	if views[0] != srv {
		t.Errorf("pixel shader resource 2 = %v, want srv", views[0])
	}
	releaseAll(views)
	if got := ctx.Hazards(); got != 2 {
		t.Errorf("Hazards() = %d, want 2", got)
	}
	if rtv.RefCount() != 1 || uav.RefCount() != 1 {
		t.Errorf("RefCount() = (%d, %d), want (1, 1)", rtv.RefCount(), uav.RefCount())
	}
}

func TestHazard_DropHazardousInputsAgainstComputeUAV(t *testing.T) {
	opts := config.Default()
	opts.D3D11.DropHazardousInputs = true
	dev := newTestDevice(t, WithConfig(opts))
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindUnorderedAccess)
	srv := newTestSRV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)

	ctx.CSSetUnorderedAccessViews(0, []*UnorderedAccessView{uav}, nil)
	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})

	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("shader resource 0 = %v, want unbound", got[0])
	}
	uavs := ctx.CSGetUnorderedAccessViews(0, 1)
	if uavs[0] != uav {
		t.Errorf("compute UAV 0 = %v, want kept", uavs[0])
	}
	releaseAll(uavs)
}

func TestHazard_SameCallRenderTargetAndUAVAlias(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindRenderTarget|BindUnorderedAccess)
	rtv := newTestRTV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)
	prev := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))

	ctx.OMSetRenderTargets([]*RenderTargetView{prev}, nil)
	ctx.OMSetRenderTargetsAndUnorderedAccessViews(1, []*RenderTargetView{rtv}, nil, 1, 1, []*UnorderedAccessView{uav}, nil)

	rtvs, _ := ctx.OMGetRenderTargets(1)
	if rtvs[0] != prev {
		t.Errorf("render target 0 = %v, want previous binding kept", rtvs[0])
	}
	releaseAll(rtvs)
	if got := ctx.OMGetUnorderedAccessViews(0, 2); got[1] != nil {
		t.Errorf("UAV 1 = %v, want unbound", got[1])
	}
	if rtv.RefCount() != 1 || uav.RefCount() != 1 {
		t.Errorf("RefCount() = (%d, %d), want (1, 1)", rtv.RefCount(), uav.RefCount())
	}
	if got := ctx.Hazards(); got != 1 {
		t.Errorf("Hazards() = %d, want 1", got)
	}
}

func TestHazard_UAVEvictsRenderTargetAcrossCalls(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindRenderTarget|BindUnorderedAccess)
	rtv := newTestRTV(t, dev, tex)
	uav := newTestUAV(t, dev, tex)

	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.OMSetRenderTargetsAndUnorderedAccessViews(KeepRenderTargets, nil, nil, 0, 1, []*UnorderedAccessView{uav}, nil)

	if got, _ := ctx.OMGetRenderTargets(1); got[0] != nil {
		t.Errorf("render target 0 = %v, want evicted", got[0])
	}
	uavs := ctx.OMGetUnorderedAccessViews(0, 1)
	if uavs[0] != uav {
		t.Errorf("UAV 0 = %v, want uav", uavs[0])
	}
	releaseAll(uavs)

	// A render target bound later wins over the UAV.
	ctx.OMSetRenderTargetsAndUnorderedAccessViews(1, []*RenderTargetView{rtv}, nil, 0, KeepUnorderedAccessViews, nil, nil)
	if got := ctx.OMGetUnorderedAccessViews(0, 1); got[0] != nil {
		t.Errorf("UAV 0 = %v, want evicted", got[0])
	}
	if got := ctx.Hazards(); got != 2 {
		t.Errorf("Hazards() = %d, want 2", got)
	}
}

func TestHazard_DepthStencilEvictsShaderResource(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestDepthTexture(t, dev)
	srv := newTestSRV(t, dev, tex)
	dsv := newTestDSV(t, dev, tex)

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.OMSetRenderTargets(nil, dsv)

	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("shader resource 0 = %v, want evicted", got[0])
	}

	// And the other way round.
	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	if _, got := ctx.OMGetRenderTargets(0); got != nil {
		t.Errorf("depth stencil view = %v, want evicted", got)
	}
	if got := ctx.Hazards(); got != 2 {
		t.Errorf("Hazards() = %d, want 2", got)
	}
}

func TestHazard_StreamOutEvictsShaderResource(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	buf := newTestBuffer(t, dev, 256, BindStreamOutput|BindShaderResource)
	srv := newTestSRV(t, dev, buf)

	ctx.SOSetTargets([]*Buffer{buf}, nil)
	ctx.GSSetShaderResources(0, []*ShaderResourceView{srv})

	if got := ctx.SOGetTargets(1); got[0] != nil {
		t.Errorf("stream-out target 0 = %v, want evicted", got[0])
	}
	if got := ctx.Dirty(); got&DirtyStreamOut == 0 {
		t.Errorf("Dirty() = %v, want StreamOut set", got)
	}

	ctx.SOSetTargets([]*Buffer{buf}, nil)
	if got := ctx.GSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("geometry shader resource 0 = %v, want evicted", got[0])
	}
}

func TestHazard_SubresourcesOfOneResourceConflict(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTextureDesc(t, dev, TextureDesc{
		Width:     64,
		Height:    64,
		MipLevels: 2,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		BindFlags: BindShaderResource | BindRenderTarget,
	})
	srv, err := dev.CreateShaderResourceView(tex, &ViewDesc{MostDetailedMip: 1, MipLevels: 1})
	if err != nil {
		t.Fatalf("CreateShaderResourceView() error = %v", err)
	}
	rtv, err := dev.CreateRenderTargetView(tex, &ViewDesc{MipLevels: 1})
	if err != nil {
		t.Fatalf("CreateRenderTargetView() error = %v", err)
	}

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)

	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("shader resource 0 = %v, want evicted", got[0])
	}
}

func TestHazard_NoConflictBetweenResources(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	srv := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	rtv := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.PSSetShaderResources(1, []*ShaderResourceView{srv})

	if got := ctx.Hazards(); got != 0 {
		t.Errorf("Hazards() = %d, want 0", got)
	}
	views := ctx.PSGetShaderResources(0, 2)
	if views[0] != srv || views[1] != srv {
		t.Errorf("PSGetShaderResources() = %v, want [srv srv]", views)
	}
	releaseAll(views)
}

func TestRenderTargets_MismatchedSizeIgnored(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	a := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))
	small := newTestRTV(t, dev, newTestTextureDesc(t, dev, TextureDesc{
		Width:     32,
		Height:    32,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		BindFlags: BindRenderTarget,
	}))
	msaa := newTestRTV(t, dev, newTestTextureDesc(t, dev, TextureDesc{
		Width:       64,
		Height:      64,
		SampleCount: 4,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		BindFlags:   BindRenderTarget,
	}))

	ctx.OMSetRenderTargets([]*RenderTargetView{a}, nil)
	ctx.Flush()

	for _, other := range []*RenderTargetView{small, msaa} {
		ctx.OMSetRenderTargets([]*RenderTargetView{a, other}, nil)
		rtvs, _ := ctx.OMGetRenderTargets(2)
		if rtvs[0] != a || rtvs[1] != nil {
			t.Errorf("OMGetRenderTargets() = %v, want [a nil]", rtvs)
		}
		releaseAll(rtvs)
		if got := other.RefCount(); got != 1 {
			t.Errorf("RefCount() = %d, want 1", got)
		}
	}
	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() = %v, want 0", got)
	}
}

func TestHazard_CountsPerStageSlot(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)

	for _, st := range gpucore.GraphicsStages {
		ctx.SetShaderResources(st, 0, []*ShaderResourceView{srv, srv})
	}
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)

	want := uint64(2 * len(gpucore.GraphicsStages))
	if got := ctx.Hazards(); got != want {
		t.Errorf("Hazards() = %d, want %d", got, want)
	}
	if got := srv.RefCount(); got != 1 {
		t.Errorf("srv.RefCount() = %d, want 1", got)
	}
}
