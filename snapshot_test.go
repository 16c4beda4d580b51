package dxvk

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
	"github.com/jamestiotio/dxvk/recording"
)

// boundFixture is a set of objects bound across most binding classes.
type boundFixture struct {
	vs    *Shader
	srv   *ShaderResourceView
	cb    *Buffer
	samp  *SamplerState
	rtv   *RenderTargetView
	dsv   *DepthStencilView
	blend *BlendState
	vb    *Buffer
	pred  *Predicate
	vp    gpucore.Viewport
}

func newBoundFixture(t *testing.T, dev *Device) *boundFixture {
	t.Helper()
	return &boundFixture{
		vs:    newTestShader(t, dev, gpucore.StageVertex),
		srv:   newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource)),
		cb:    newTestBuffer(t, dev, 256, BindConstantBuffer),
		samp:  dev.CreateSamplerState(gputypes.SamplerDescriptor{}),
		rtv:   newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget)),
		dsv:   newTestDSV(t, dev, newTestDepthTexture(t, dev)),
		blend: dev.CreateBlendState(DefaultBlendDesc()),
		vb:    newTestBuffer(t, dev, 1024, BindVertexBuffer),
		pred:  dev.CreatePredicate(),
		vp:    gpucore.Viewport{Width: 64, Height: 64, MaxDepth: 1},
	}
}

func (f *boundFixture) objects() []Object {
	return []Object{f.vs, f.srv, f.cb, f.samp, f.rtv, f.dsv, f.blend, f.vb, f.pred}
}

func (f *boundFixture) refCounts() []uint32 {
	objs := f.objects()
	counts := make([]uint32, len(objs))
	for i, o := range objs {
		counts[i] = o.RefCount()
	}
	return counts
}

type bindingContext interface {
	VSSetShader(sh *Shader, instances []*ClassInstance)
	PSSetShaderResources(start uint32, views []*ShaderResourceView)
	PSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32)
	PSSetSamplers(start uint32, samplers []*SamplerState)
	OMSetRenderTargets(rtvs []*RenderTargetView, dsv *DepthStencilView)
	OMSetBlendState(s *BlendState, factor *[4]float32, sampleMask uint32)
	IASetPrimitiveTopology(t Topology)
	IASetVertexBuffers(start uint32, bufs []*Buffer, strides, offsets []uint32)
	RSSetViewports(vps []gpucore.Viewport)
	SetPredication(p *Predicate, value bool)
}

func (f *boundFixture) bind(ctx bindingContext) {
	ctx.VSSetShader(f.vs, nil)
	ctx.PSSetShaderResources(2, []*ShaderResourceView{f.srv})
	ctx.PSSetConstantBuffers1(1, []*Buffer{f.cb}, []uint32{4}, []uint32{8})
	ctx.PSSetSamplers(0, []*SamplerState{f.samp})
	ctx.OMSetRenderTargets([]*RenderTargetView{f.rtv}, f.dsv)
	ctx.OMSetBlendState(f.blend, &[4]float32{0.5, 0.5, 0.5, 1}, 0xFF)
	ctx.IASetPrimitiveTopology(TopologyTriangleStrip)
	ctx.IASetVertexBuffers(3, []*Buffer{f.vb}, []uint32{24}, []uint32{48})
	ctx.RSSetViewports([]gpucore.Viewport{f.vp})
	ctx.SetPredication(f.pred, true)
}

// check verifies that ctx observes the fixture bindings.
func (f *boundFixture) check(t *testing.T, ctx *ImmediateContext) {
	t.Helper()
	if sh, _ := ctx.VSGetShader(); sh != f.vs {
		t.Errorf("vertex shader = %v, want fixture shader", sh)
	} else {
		sh.Release()
	}
	srvs := ctx.PSGetShaderResources(2, 1)
	if srvs[0] != f.srv {
		t.Errorf("shader resource 2 = %v, want fixture view", srvs[0])
	}
	releaseAll(srvs)
	cbs, first, count := ctx.PSGetConstantBuffers1(1, 1)
	if cbs[0] != f.cb || first[0] != 4 || count[0] != 8 {
		t.Errorf("constant buffer 1 = (%v, %d, %d), want (cb, 4, 8)", cbs[0], first[0], count[0])
	}
	releaseAll(cbs)
	samplers := ctx.PSGetSamplers(0, 1)
	if samplers[0] != f.samp {
		t.Errorf("sampler 0 = %v, want fixture sampler", samplers[0])
	}
	releaseAll(samplers)
	rtvs, dsv := ctx.OMGetRenderTargets(1)
	if rtvs[0] != f.rtv || dsv != f.dsv {
		t.Errorf("outputs = (%v, %v), want fixture views", rtvs[0], dsv)
	}
	releaseAll(rtvs)
	release(asObject(dsv))
	bs, factor, mask := ctx.OMGetBlendState()
	if bs != f.blend || factor != [4]float32{0.5, 0.5, 0.5, 1} || mask != 0xFF {
		t.Errorf("blend = (%v, %v, %#x), want fixture blend", bs, factor, mask)
	}
	release(asObject(bs))
	if got := ctx.IAGetPrimitiveTopology(); got != TopologyTriangleStrip {
		t.Errorf("topology = %v, want %v", got, TopologyTriangleStrip)
	}
	vbs, strides, offsets := ctx.IAGetVertexBuffers(3, 1)
	if vbs[0] != f.vb || strides[0] != 24 || offsets[0] != 48 {
		t.Errorf("vertex buffer 3 = (%v, %d, %d), want (vb, 24, 48)", vbs[0], strides[0], offsets[0])
	}
	releaseAll(vbs)
	if vps := ctx.RSGetViewports(); len(vps) != 1 || vps[0] != f.vp {
		t.Errorf("viewports = %v, want [%v]", vps, f.vp)
	}
	p, value := ctx.GetPredication()
	if p != f.pred || !value {
		t.Errorf("predication = (%v, %v), want (pred, true)", p, value)
	}
	release(asObject(p))
}

func TestSaveRestore_RestoresEveryBinding(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	f := newBoundFixture(t, dev)
	f.bind(ctx)
	before := f.refCounts()

	ctx.saveState()
	ctx.clearState()
	other := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	ctx.PSSetShaderResources(2, []*ShaderResourceView{other})
	ctx.IASetPrimitiveTopology(TopologyPointList)
	ctx.restoreState()

	f.check(t, ctx)
	after := f.refCounts()
	for i, o := range f.objects() {
		if after[i] != before[i] {
			t.Errorf("RefCount(%T) = %d, want %d", o, after[i], before[i])
		}
	}
	if got := other.RefCount(); got != 1 {
		t.Errorf("temporary view RefCount() = %d, want 1", got)
	}
}

func TestSaveRestore_UnchangedStateStaysClean(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	f := newBoundFixture(t, dev)
	f.bind(ctx)
	ctx.Flush()

	ctx.saveState()
	ctx.restoreState()

	if got := ctx.Dirty(); got != 0 {
		t.Errorf("Dirty() = %v, want 0", got)
	}
	if got := ctx.Hazards(); got != 0 {
		t.Errorf("Hazards() = %d, want 0", got)
	}
}

func TestSaveRestore_Nested(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()

	ctx.IASetPrimitiveTopology(TopologyLineList)
	ctx.saveState()
	ctx.IASetPrimitiveTopology(TopologyLineStrip)
	ctx.saveState()
	ctx.IASetPrimitiveTopology(TopologyTriangleList)

	ctx.restoreState()
	if got := ctx.IAGetPrimitiveTopology(); got != TopologyLineStrip {
		t.Errorf("after inner restore: topology = %v, want %v", got, TopologyLineStrip)
	}
	ctx.restoreState()
	if got := ctx.IAGetPrimitiveTopology(); got != TopologyLineList {
		t.Errorf("after outer restore: topology = %v, want %v", got, TopologyLineList)
	}
}

func TestRestoreWithoutSavePanics(t *testing.T) {
	dev := newTestDevice(t)
	defer func() {
		if r := recover(); r == nil {
			t.Error("restoreState() without saveState() did not panic")
		}
	}()
	dev.ImmediateContext().restoreState()
}

func TestSaveRestore_InputsWinOverTransientOutputs(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	tex := newTestTexture(t, dev, BindShaderResource|BindRenderTarget)
	srv := newTestSRV(t, dev, tex)
	rtv := newTestRTV(t, dev, tex)

	ctx.PSSetShaderResources(0, []*ShaderResourceView{srv})
	ctx.saveState()
	ctx.OMSetRenderTargets([]*RenderTargetView{rtv}, nil)
	ctx.restoreState()

	views := ctx.PSGetShaderResources(0, 1)
	if views[0] != srv {
		t.Errorf("shader resource 0 = %v, want restored", views[0])
	}
	releaseAll(views)
	if got, _ := ctx.OMGetRenderTargets(1); got[0] != nil {
		t.Errorf("render target 0 = %v, want unbound", got[0])
	}
}

func TestClearView_PreservesState(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	f := newBoundFixture(t, dev)
	f.bind(ctx)
	flushed(t, dev)
	before := f.refCounts()
	target := newTestRTV(t, dev, newTestTexture(t, dev, BindRenderTarget))

	ctx.ClearView(target, [4]float32{1, 0, 0, 1}, []gpucore.Rect{
		{Right: 8, Bottom: 8},
		{Left: 16, Top: 16, Right: 32, Bottom: 32},
	})
	rec := recorderOf(t, dev).FinishRecording()

	if got := rec.Count(recording.CmdDraw); got != 2 {
		t.Fatalf("Count(Draw) = %d, want 2", got)
	}
	fbs := commandsOf[recording.BindFramebufferCommand](rec)
	if len(fbs) == 0 || objectAt(rec, fbs[0].Colors[0]).ObjectID() != target.ObjectID() {
		t.Errorf("clear did not bind the target view")
	}
	vps := commandsOf[recording.SetViewportsCommand](rec)
	if len(vps) != 2 || vps[1].Scissors[0] != (gpucore.Rect{Left: 16, Top: 16, Right: 32, Bottom: 32}) {
		t.Errorf("viewport commands = %+v, want one per rectangle", vps)
	}

	f.check(t, ctx)
	after := f.refCounts()
	for i, o := range f.objects() {
		if after[i] != before[i] {
			t.Errorf("RefCount(%T) = %d, want %d", o, after[i], before[i])
		}
	}
	if got := target.RefCount(); got != 1 {
		t.Errorf("target RefCount() = %d, want 1", got)
	}

	// The next flush re-establishes the application's framebuffer.
	rec = flushed(t, dev)
	fbs = commandsOf[recording.BindFramebufferCommand](rec)
	if len(fbs) != 1 || objectAt(rec, fbs[0].Colors[0]).ObjectID() != f.rtv.ObjectID() {
		t.Errorf("framebuffer after clear = %+v, want the fixture target", fbs)
	}
}

func TestClearView_UnorderedAccessView(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	uav := newTestUAV(t, dev, newTestTexture(t, dev, BindUnorderedAccess))
	flushed(t, dev)

	ctx.ClearView(uav, [4]float32{}, nil)
	rec := recorderOf(t, dev).FinishRecording()

	draws := commandsOf[recording.DrawCommand](rec)
	if len(draws) != 1 || draws[0].Args.VertexCount != 3 {
		t.Fatalf("draw commands = %+v, want one full-screen triangle", draws)
	}
	uavs := commandsOf[recording.BindUnorderedAccessViewsCommand](rec)
	found := false
	for _, c := range uavs {
		if c.Stage != gpucore.StagePixel || c.Start != 0 {
			continue
		}
		if o := objectAt(rec, c.Views[0].View); o != nil && o.ObjectID() == uav.ObjectID() {
			found = true
		}
	}
	if !found {
		t.Error("clear did not bind the view as output-merger UAV 0")
	}
	if got := ctx.OMGetUnorderedAccessViews(0, 1); got[0] != nil {
		t.Errorf("UAV 0 after clear = %v, want unbound", got[0])
	}
}

func TestClearView_IgnoresOtherViews(t *testing.T) {
	dev := newTestDevice(t)
	ctx := dev.ImmediateContext()
	srv := newTestSRV(t, dev, newTestTexture(t, dev, BindShaderResource))
	flushed(t, dev)

	ctx.ClearView(srv, [4]float32{1, 1, 1, 1}, nil)
	if got := recorderOf(t, dev).Len(); got != 0 {
		t.Errorf("recorded %d commands, want 0", got)
	}
}
