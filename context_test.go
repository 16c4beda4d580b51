package dxvk

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

func TestShaderResources_SetGetRoundTrip(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource)
	srv := newTestSRV(t, dev, tex)

	ctx.PSSetShaderResources(3, []*ShaderResourceView{srv})
	if got := srv.RefCount(); got != 2 {
		t.Errorf("RefCount() after bind = %d, want 2", got)
	}

	views := ctx.PSGetShaderResources(2, 3)
	if len(views) != 3 {
		t.Fatalf("len(PSGetShaderResources()) = %d, want 3", len(views))
	}
	if views[0] != nil || views[1] != srv || views[2] != nil {
		t.Errorf("PSGetShaderResources() = %v, want [nil srv nil]", views)
	}
	if got := srv.RefCount(); got != 3 {
		t.Errorf("RefCount() after get = %d, want 3", got)
	}
	releaseAll(views)

	ctx.PSSetShaderResources(3, []*ShaderResourceView{nil})
	if got := srv.RefCount(); got != 1 {
		t.Errorf("RefCount() after unbind = %d, want 1", got)
	}
}

func TestShaderResources_RebindIsNoop(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	srv := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.Flush()
	if got := ctx.Dirty(); got != 0 {
		t.Fatalf("Dirty() after flush = %v, want 0", got)
	}
	refs := srv.RefCount()

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() after rebind = %v, want 0", got)
	}
	if got := srv.RefCount(); got != refs {
		t.Errorf("RefCount() after rebind = %d, want %d", got, refs)
	}
}

func TestShaderResources_OutOfRangeIgnored(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	a := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	b := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	ctx.Flush()

	ctx.PSSetShaderResources(127, []*ShaderResourceView{a, b})
	views := ctx.PSGetShaderResources(127, 1)
	if views[0] != a {
		t.Errorf("slot 127 = %v, want a", views[0])
	}
	releaseAll(views)
	if got := b.RefCount(); got != 1 {
		t.Errorf("b.RefCount() = %d, want 1 (slot past the limit must be ignored)", got)
	}
	ctx.Flush()

	ctx.PSSetShaderResources(200, []*ShaderResourceView{a})
	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() after out-of-range set = %v, want 0", got)
	}
	if got := ctx.PSGetShaderResources(200, 1); got[0] != nil {
		t.Errorf("PSGetShaderResources(200) = %v, want nil", got[0])
	}
}

func TestGet_RangePastLimit(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	srv := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	uav := newTestUAV(t, dev, newTestTexture(t, dev, BindUnorderedAccess))
	buf := newTestBuffer(t, dev, 256, BindConstantBuffer|BindVertexBuffer|BindStreamOutput)

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.CSSetUnorderedAccessViews(0, []*UnorderedAccessView{uav}, nil)
	ctx.PSSetConstantBuffers(0, []*Buffer{buf})
	ctx.IASetVertexBuffers(0, []*Buffer{buf}, []uint32{16}, []uint32{0})

	// Slot indices must not wrap around to slot 0.
	views := ctx.PSGetShaderResources(0xFFFFFFFF, 2)
	if len(views) != 2 || views[0] != nil || views[1] != nil {
		t.Errorf("PSGetShaderResources(0xFFFFFFFF, 2) = %v, want [nil nil]", views)
	}
	if got := ctx.CSGetUnorderedAccessViews(0xFFFFFFFF, 2); got[1] != nil {
		t.Errorf("CSGetUnorderedAccessViews(0xFFFFFFFF, 2)[1] = %v, want nil", got[1])
	}
	if got, _, _ := ctx.PSGetConstantBuffers1(0xFFFFFFFF, 2); got[1] != nil {
		t.Errorf("PSGetConstantBuffers1(0xFFFFFFFF, 2)[1] = %v, want nil", got[1])
	}
	if got, _, _ := ctx.IAGetVertexBuffers(0xFFFFFFFF, 2); got[1] != nil {
		t.Errorf("IAGetVertexBuffers(0xFFFFFFFF, 2)[1] = %v, want nil", got[1])
	}
	if srv.RefCount() != 2 || uav.RefCount() != 2 || buf.RefCount() != 3 {
		t.Errorf("RefCount() = (%d, %d, %d), want (2, 2, 3)", srv.RefCount(), uav.RefCount(), buf.RefCount())
	}

	// Counts are clamped to the slot limit.
	tests := []struct {
		name string
		got  int
		want uint32
	}{
		{"shader resources", len(ctx.PSGetShaderResources(0, 0xFFFFFFFF)), Limit(gpucore.StagePixel, ClassShaderResource)},
		{"samplers", len(ctx.PSGetSamplers(3, 0xFFFFFFFF)), Limit(gpucore.StagePixel, ClassSampler)},
		{"render targets", func() int { v, _ := ctx.OMGetRenderTargets(0xFFFFFFFF); return len(v) }(), 8},
		{"stream-out targets", len(ctx.SOGetTargets(0xFFFFFFFF)), 4},
	}
	for _, tt := range tests {
		if uint32(tt.got) != tt.want {
			t.Errorf("%s: len = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
	all := ctx.PSGetShaderResources(0, 0xFFFFFFFF)
	if all[0] != srv {
		t.Errorf("slot 0 = %v, want srv", all[0])
	}
	releaseAll(all)
}

func TestConstantBuffers_Ranges(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	small := newTestBuffer(t, dev, 256, BindConstantBuffer)
	large := newTestBuffer(t, dev, 131072, BindConstantBuffer)

	ctx.VSSetConstantBuffers1(2, []*Buffer{small}, []uint32{16}, []uint32{4})
	ctx.VSSetConstantBuffers(3, []*Buffer{small, large})

	bufs, first, count := ctx.VSGetConstantBuffers1(2, 3)
	defer releaseAll(bufs)

	tests := []struct {
		slot        int
		buf         *Buffer
		first, cnt  uint32
		description string
	}{
		{0, small, 16, 4, "explicit range"},
		{1, small, 0, 16, "full buffer"},
		{2, large, 0, 4096, "full range capped"},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if bufs[tt.slot] != tt.buf {
				t.Errorf("buffer = %v, want %v", bufs[tt.slot], tt.buf)
			}
			if first[tt.slot] != tt.first || count[tt.slot] != tt.cnt {
				t.Errorf("range = (%d, %d), want (%d, %d)", first[tt.slot], count[tt.slot], tt.first, tt.cnt)
			}
		})
	}
}

func TestConstantBuffers_RangeChangeMarksDirty(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	buf := newTestBuffer(t, dev, 256, BindConstantBuffer)

	ctx.PSSetConstantBuffers1(0, []*Buffer{buf}, []uint32{0}, []uint32{4})
	ctx.Flush()

	ctx.PSSetConstantBuffers1(0, []*Buffer{buf}, []uint32{0}, []uint32{4})
	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() after identical range = %v, want 0", got)
	}
	ctx.PSSetConstantBuffers1(0, []*Buffer{buf}, []uint32{4}, []uint32{4})
	if got := ctx.Dirty(); got != DirtyConstantBuffers(gpucore.StagePixel) {
		t.Errorf("Dirty() after range change = %v, want %v", got, DirtyConstantBuffers(gpucore.StagePixel))
	}
	if got := buf.RefCount(); got != 2 {
		t.Errorf("RefCount() = %d, want 2", got)
	}
}

func TestShader_ClassInstances(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	vs := newTestShader(t, dev, gpucore.StageVertex)
	a := dev.CreateClassInstance("lighting")
	b := dev.CreateClassInstance("shadow")

	ctx.VSSetShader(vs, []*ClassInstance{a, b})
	sh, instances := ctx.VSGetShader()
	if sh != vs {
		t.Errorf("VSGetShader() shader = %v, want vs", sh)
	}
	if len(instances) != 2 || instances[0] != a || instances[1] != b {
		t.Errorf("VSGetShader() instances = %v, want [a b]", instances)
	}
	if got := a.RefCount(); got != 3 {
		t.Errorf("a.RefCount() = %d, want 3", got)
	}
	release(asObject(sh))
	releaseAll(instances)

	ctx.VSSetShader(vs, nil)
	if got := a.RefCount(); got != 1 {
		t.Errorf("a.RefCount() after unbind = %d, want 1", got)
	}
	if got := vs.RefCount(); got != 2 {
		t.Errorf("vs.RefCount() = %d, want 2", got)
	}
}

func TestInputAssembler_RoundTrip(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	vb := newTestBuffer(t, dev, 1024, BindVertexBuffer)
	ib := newTestBuffer(t, dev, 1024, BindIndexBuffer)
	layout, err := dev.CreateInputLayout([]InputElement{
		{SemanticName: "POSITION", Format: gputypes.VertexFormatFloat32x4},
	})
	if err != nil {
		t.Fatalf("CreateInputLayout() error = %v", err)
	}

	ctx.IASetInputLayout(layout)
	ctx.IASetPrimitiveTopology(TopologyTriangleStrip)
	ctx.IASetVertexBuffers(1, []*Buffer{vb}, []uint32{16}, []uint32{64})
	ctx.IASetIndexBuffer(ib, gputypes.IndexFormatUint16, 8)

	if got := ctx.IAGetInputLayout(); got != layout {
		t.Errorf("IAGetInputLayout() = %v, want layout", got)
	} else {
		got.Release()
	}
	if got := ctx.IAGetPrimitiveTopology(); got != TopologyTriangleStrip {
		t.Errorf("IAGetPrimitiveTopology() = %v, want %v", got, TopologyTriangleStrip)
	}
	bufs, strides, offsets := ctx.IAGetVertexBuffers(1, 1)
	if bufs[0] != vb || strides[0] != 16 || offsets[0] != 64 {
		t.Errorf("IAGetVertexBuffers() = (%v, %d, %d), want (vb, 16, 64)", bufs[0], strides[0], offsets[0])
	}
	releaseAll(bufs)
	buf, format, offset := ctx.IAGetIndexBuffer()
	if buf != ib || format != gputypes.IndexFormatUint16 || offset != 8 {
		t.Errorf("IAGetIndexBuffer() = (%v, %v, %d), want (ib, Uint16, 8)", buf, format, offset)
	}
	release(asObject(buf))
}

func TestOutputMerger_RoundTrip(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	rtv := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))
	dsv := newTestDSV(t, dev, newTestDepthTexture(t, dev))
	bs := dev.CreateBlendState(DefaultBlendDesc())
	ds := dev.CreateDepthStencilState(DefaultDepthStencilDesc())

	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, dsv)
	factor := [4]float32{0.25, 0.5, 0.75, 1}
	ctx.OMSetBlendState(bs, &factor, 0xF)
	ctx.OMSetDepthStencilState(ds, 7)

	rtvs, gotDSV := ctx.OMGetRenderTargets(2)
	if rtvs[0] != rtv || rtvs[1] != nil || gotDSV != dsv {
		t.Errorf("OMGetRenderTargets() = (%v, %v), want ([rtv nil], dsv)", rtvs, gotDSV)
	}
	releaseAll(rtvs)
	release(asObject(gotDSV))

	gotBS, gotFactor, mask := ctx.OMGetBlendState()
	if gotBS != bs || gotFactor != factor || mask != 0xF {
		t.Errorf("OMGetBlendState() = (%v, %v, %#x), want (bs, %v, 0xf)", gotBS, gotFactor, mask, factor)
	}
	release(asObject(gotBS))

	gotDS, ref := ctx.OMGetDepthStencilState()
	if gotDS != ds || ref != 7 {
		t.Errorf("OMGetDepthStencilState() = (%v, %d), want (ds, 7)", gotDS, ref)
	}
	release(asObject(gotDS))

	ctx.OMSetBlendState(nil, nil, 0xFFFFFFFF)
	if _, f, _ := ctx.OMGetBlendState(); f != [4]float32{1, 1, 1, 1} {
		t.Errorf("blend factor with nil = %v, want all ones", f)
	}
}

func TestOutputMerger_KeepRenderTargets(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	rtv := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))
	uav := newTestUAV(t, dev, newTestTexture(t, dev, BindUnorderedAccess))

	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.OMSetRenderTargetsAndUnorderedAccessViews(KeepRenderTargets, nil, nil, 1, 1, []*UnorderedAccessView{uav}, nil)

	rtvs, _ := ctx.OMGetRenderTargets(1)
	if rtvs[0] != rtv {
		t.Errorf("render target 0 = %v, want rtv kept", rtvs[0])
	}
	releaseAll(rtvs)
	uavs := ctx.OMGetUnorderedAccessViews(0, 2)
	if uavs[0] != nil || uavs[1] != uav {
		t.Errorf("OMGetUnorderedAccessViews() = %v, want [nil uav]", uavs)
	}
	releaseAll(uavs)

	ctx.OMSetRenderTargets(nil, nil)
	if got := uav.RefCount(); got != 1 {
		t.Errorf("uav.RefCount() after OMSetRenderTargets = %d, want 1", got)
	}
}

func TestOutputMerger_GetRenderTargetsAndUnorderedAccessViews(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	rtv := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))
	dsv := newTestDSV(t, dev, newTestDepthTexture(t, dev))
	uav := newTestUAV(t, dev, newTestTexture(t, dev, BindUnorderedAccess))

	ctx.OMSetRenderTargetsAndUnorderedAccessViews(1, []*RenderTargetView{rtv}, dsv, 2, 1, []*UnorderedAccessView{uav}, nil)

	rtvs, gotDSV, uavs := ctx.OMGetRenderTargetsAndUnorderedAccessViews(1, 1, 2)
	if len(rtvs) != 1 || rtvs[0] != rtv || gotDSV != dsv {
		t.Errorf("outputs = (%v, %v), want ([rtv], dsv)", rtvs, gotDSV)
	}
	if len(uavs) != 2 || uavs[0] != nil || uavs[1] != uav {
		t.Errorf("UAVs = %v, want [nil uav]", uavs)
	}
	for _, o := range []Object{rtv, dsv, uav} {
		if got := o.RefCount(); got != 3 {
			t.Errorf("RefCount(%T) = %d, want 3", o, got)
		}
	}
	releaseAll(rtvs)
	release(asObject(gotDSV))
	releaseAll(uavs)
	if got := rtv.RefCount(); got != 2 {
		t.Errorf("rtv RefCount() after release = %d, want 2", got)
	}
}

func TestRasterizer_Viewports(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()

	vps := make([]gpucore.Viewport, 20)
	for i := range vps {
		vps[i] = gpucore.Viewport{Width: float32(i + 1), Height: 1, MaxDepth: 1}
	}
	ctx.RSSetViewports(vps)
	if got := ctx.RSGetViewports(); len(got) != 16 || got[15].Width != 16 {
		t.Errorf("RSGetViewports() len = %d, want 16", len(got))
	}

	ctx.Flush()
	ctx.RSSetViewports(vps)
	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() after identical viewports = %v, want 0", got)
	}

	rects := []gpucore.Rect{{Left: 1, Top: 2, Right: 3, Bottom: 4}}
	ctx.RSSetScissorRects(rects)
	if got := ctx.RSGetScissorRects(); len(got) != 1 || got[0] != rects[0] {
		t.Errorf("RSGetScissorRects() = %v, want %v", got, rects)
	}
	if got := ctx.Dirty(); got != DirtyViewports {
		t.Errorf("Dirty() = %v, want %v", got, DirtyViewports)
	}
}

func TestStreamOut_Targets(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	a := newTestBuffer(t, dev, 256, BindStreamOutput)
	b := newTestBuffer(t, dev, 256, BindStreamOutput)

	ctx.SOSetTargets([]*Buffer{a, b}, []uint32{4, 8})
	ctx.SOSetTargets([]*Buffer{b}, []uint32{12})

	bufs, offsets := ctx.SOGetTargetsWithOffsets(2)
	if bufs[0] != b || bufs[1] != nil || offsets[0] != 12 || offsets[1] != 0 {
		t.Errorf("SOGetTargetsWithOffsets() = (%v, %v), want ([b nil], [12 0])", bufs, offsets)
	}
	releaseAll(bufs)
	if got := a.RefCount(); got != 1 {
		t.Errorf("a.RefCount() = %d, want 1", got)
	}
}

func TestPredication_RoundTrip(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	p := dev.CreatePredicate()

	ctx.SetPredication(p, true)
	got, value := ctx.GetPredication()
	if got != p || !value {
		t.Errorf("GetPredication() = (%v, %v), want (p, true)", got, value)
	}
	release(asObject(got))
}

func TestResourceMinLOD(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource)

	ctx.SetResourceMinLOD(tex, 2.5)
	if got := ctx.GetResourceMinLOD(tex); got != 2.5 {
		t.Errorf("GetResourceMinLOD() = %v, want 2.5", got)
	}
	if got := ctx.GetResourceMinLOD(nil); got != 0 {
		t.Errorf("GetResourceMinLOD(nil) = %v, want 0", got)
	}
}

func TestClearState(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	srv := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	rtv := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))
	bs := dev.CreateBlendState(DefaultBlendDesc())
	rs := dev.CreateRasterizerState(DefaultRasterizerDesc())
	buf := newTestBuffer(t, dev, 256, BindIndexBuffer)

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.OMSetBlendState(bs, &[4]float32{0, 0, 0, 0}, 1)
	ctx.OMSetDepthStencilState(nil, 3)
	ctx.RSSetState(rs)
	ctx.RSSetViewports([]gpucore.Viewport{{Width: 8, Height: 8}})
	ctx.IASetPrimitiveTopology(TopologyTriangleList)
	ctx.IASetIndexBuffer(buf, gputypes.IndexFormatUint32, 4)
	ctx.Flush()

	ctx.ClearState()

	if got := ctx.Dirty(); got != DirtyAll {
		t.Errorf("Dirty() = %v, want DirtyAll", got)
	}
	for _, o := range []Object{srv, rtv, bs, rs, buf} {
		if got := o.RefCount(); got != 1 {
			t.Errorf("RefCount(%T) = %d, want 1", o, got)
		}
	}
	if got := ctx.PSGetShaderResources(0, 1); got[0] != nil {
		t.Errorf("PSGetShaderResources() = %v, want nil", got[0])
	}
	if got := ctx.IAGetPrimitiveTopology(); got != TopologyUndefined {
		t.Errorf("IAGetPrimitiveTopology() = %v, want %v", got, TopologyUndefined)
	}
	if b, f, _ := ctx.IAGetIndexBuffer(); b != nil || f != 0 {
		t.Errorf("IAGetIndexBuffer() = (%v, %v), want (nil, 0)", b, f)
	}
	gotBS, factor, mask := ctx.OMGetBlendState()
	if gotBS != nil || factor != [4]float32{1, 1, 1, 1} || mask != 0xFFFFFFFF {
		t.Errorf("OMGetBlendState() = (%v, %v, %#x), want (nil, ones, 0xffffffff)", gotBS, factor, mask)
	}
	if _, ref := ctx.OMGetDepthStencilState(); ref != 0 {
		t.Errorf("stencil reference = %d, want 0", ref)
	}
	if got := ctx.RSGetViewports(); len(got) != 0 {
		t.Errorf("RSGetViewports() = %v, want none", got)
	}
}

func TestDirtyFlags_String(t *testing.T) {
	tests := []struct {
		flags DirtyFlags
		want  string
	}{
		{0, "0"},
		{DirtyInputLayout, "InputLayout"},
		{DirtyBlend | DirtyViewports, "Blend|Viewports"},
		{DirtyShader(gpucore.StagePixel), "PixelShader"},
		{DirtySamplers(gpucore.StageCompute) | DirtyComputeUAVs, "ComputeUAVs|ComputeSamplers"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("DirtyFlags(%#x).String() = %q, want %q", uint64(tt.flags), got, tt.want)
		}
	}
}
