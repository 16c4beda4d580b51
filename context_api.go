package dxvk

import (
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Public binding surface shared by ImmediateContext and DeferredContext.
//
// Set calls never fail. Slots past the stage limit are ignored and nil
// elements unbind. Get calls return owned references: every non-nil object
// returned has been AddRef'd and must be released by the caller.

// ---------------------------------------------------------------------------
// Shader stages
// ---------------------------------------------------------------------------

// SetShader binds sh with its class instances to stage.
func (c *commonContext[F]) SetShader(stage gpucore.Stage, sh *Shader, instances []*ClassInstance) {
	if c.fwd.recording() {
		c.fwd.record(&SetShaderCommand{
			Stage:     stage,
			Shader:    captureObject(c.fwd, sh),
			Instances: captureObjects(c.fwd, instances),
		})
	}
	c.setShader(stage, sh, instances)
}

// GetShader returns the shader and class instances bound to stage.
func (c *commonContext[F]) GetShader(stage gpucore.Stage) (*Shader, []*ClassInstance) {
	st := &c.state.stages[stage]
	addRef(asObject(st.shader))
	instances := slices.Clone(st.instances)
	for _, inst := range instances {
		addRef(asObject(inst))
	}
	return st.shader, instances
}

// SetConstantBuffers binds whole buffers starting at slot start.
func (c *commonContext[F]) SetConstantBuffers(stage gpucore.Stage, start uint32, bufs []*Buffer) {
	c.SetConstantBuffers1(stage, start, bufs, nil, nil)
}

// SetConstantBuffers1 binds buffer sub-ranges. first and count are in units
// of 16-byte constants; nil arrays bind full buffers.
func (c *commonContext[F]) SetConstantBuffers1(stage gpucore.Stage, start uint32, bufs []*Buffer, first, count []uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetConstantBuffersCommand{
			Stage:   stage,
			Start:   start,
			Buffers: captureObjects(c.fwd, bufs),
			First:   slices.Clone(first),
			Count:   slices.Clone(count),
		})
	}
	c.setConstantBuffers(stage, start, bufs, first, count)
}

// GetConstantBuffers returns n buffers starting at slot start.
func (c *commonContext[F]) GetConstantBuffers(stage gpucore.Stage, start, n uint32) []*Buffer {
	bufs, _, _ := c.GetConstantBuffers1(stage, start, n)
	return bufs
}

// GetConstantBuffers1 returns n buffers with the ranges recorded at bind
// time.
func (c *commonContext[F]) GetConstantBuffers1(stage gpucore.Stage, start, n uint32) (bufs []*Buffer, first, count []uint32) {
	t := &c.state.stages[stage].cbs
	size, filled := getRange(start, n, t.len())
	bufs = make([]*Buffer, size)
	first = make([]uint32, size)
	count = make([]uint32, size)
	for i := range filled {
		b := t.get(start + i)
		addRef(b.ref())
		bufs[i], first[i], count[i] = b.buffer, b.first, b.count
	}
	return bufs, first, count
}

// SetShaderResources binds shader resource views starting at slot start.
// A view aliasing a bound output resolves the hazard before it is bound.
func (c *commonContext[F]) SetShaderResources(stage gpucore.Stage, start uint32, views []*ShaderResourceView) {
	if c.fwd.recording() {
		c.fwd.record(&SetShaderResourcesCommand{
			Stage: stage,
			Start: start,
			Views: captureObjects(c.fwd, views),
		})
	}
	c.setShaderResources(stage, start, views)
}

// GetShaderResources returns n views starting at slot start.
func (c *commonContext[F]) GetShaderResources(stage gpucore.Stage, start, n uint32) []*ShaderResourceView {
	return getSlots(&c.state.stages[stage].srvs, start, n)
}

// SetSamplers binds samplers starting at slot start.
func (c *commonContext[F]) SetSamplers(stage gpucore.Stage, start uint32, samplers []*SamplerState) {
	if c.fwd.recording() {
		c.fwd.record(&SetSamplersCommand{
			Stage:    stage,
			Start:    start,
			Samplers: captureObjects(c.fwd, samplers),
		})
	}
	c.setSamplers(stage, start, samplers)
}

// GetSamplers returns n samplers starting at slot start.
func (c *commonContext[F]) GetSamplers(stage gpucore.Stage, start, n uint32) []*SamplerState {
	return getSlots(&c.state.stages[stage].samplers, start, n)
}

// getRange returns the length of the result of a Get call for n slots from
// start, and how many of its leading entries name a slot. The length is
// clamped to the table size; entries past the last slot stay empty.
func getRange(start, n, limit uint32) (size, filled uint32) {
	return min(n, limit), clampRange(start, n, limit)
}

// getSlots returns owned references to n slots of a table holding bare
// object pointers.
func getSlots[B binding](t *slotTable[B], start, n uint32) []B {
	size, filled := getRange(start, n, t.len())
	out := make([]B, size)
	for i := range filled {
		b := t.get(start + i)
		addRef(b.ref())
		out[i] = b
	}
	return out
}

// CSSetUnorderedAccessViews binds compute UAVs. counts holds initial
// append/consume counters; KeepCounter or a nil array keeps the current
// counter.
func (c *commonContext[F]) CSSetUnorderedAccessViews(start uint32, uavs []*UnorderedAccessView, counts []uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetUnorderedAccessViewsCommand{
			Start:    start,
			Views:    captureObjects(c.fwd, uavs),
			Counters: slices.Clone(counts),
		})
	}
	c.setUnorderedAccessViews(start, uavs, counts)
}

// CSGetUnorderedAccessViews returns n compute UAVs starting at slot start.
func (c *commonContext[F]) CSGetUnorderedAccessViews(start, n uint32) []*UnorderedAccessView {
	return getUAVs(&c.state.stages[gpucore.StageCompute].uavs, start, n)
}

func getUAVs(t *slotTable[uavBinding], start, n uint32) []*UnorderedAccessView {
	size, filled := getRange(start, n, t.len())
	out := make([]*UnorderedAccessView, size)
	for i := range filled {
		b := t.get(start + i)
		addRef(b.ref())
		out[i] = b.view
	}
	return out
}

// ---------------------------------------------------------------------------
// Input assembler
// ---------------------------------------------------------------------------

// IASetInputLayout binds the input layout.
func (c *commonContext[F]) IASetInputLayout(l *InputLayout) {
	if c.fwd.recording() {
		c.fwd.record(&SetInputLayoutCommand{Layout: captureObject(c.fwd, l)})
	}
	c.setInputLayout(l)
}

// IAGetInputLayout returns the bound input layout.
func (c *commonContext[F]) IAGetInputLayout() *InputLayout {
	l := c.state.ia.layout
	addRef(asObject(l))
	return l
}

// IASetPrimitiveTopology sets the primitive topology.
func (c *commonContext[F]) IASetPrimitiveTopology(t Topology) {
	if c.fwd.recording() {
		c.fwd.record(&SetPrimitiveTopologyCommand{Topology: t})
	}
	c.setPrimitiveTopology(t)
}

// IAGetPrimitiveTopology returns the primitive topology.
func (c *commonContext[F]) IAGetPrimitiveTopology() Topology { return c.state.ia.topology }

// IASetVertexBuffers binds vertex buffers with strides and byte offsets.
func (c *commonContext[F]) IASetVertexBuffers(start uint32, bufs []*Buffer, strides, offsets []uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetVertexBuffersCommand{
			Start:   start,
			Buffers: captureObjects(c.fwd, bufs),
			Strides: slices.Clone(strides),
			Offsets: slices.Clone(offsets),
		})
	}
	c.setVertexBuffers(start, bufs, strides, offsets)
}

// IAGetVertexBuffers returns n vertex buffers with their strides and offsets.
func (c *commonContext[F]) IAGetVertexBuffers(start, n uint32) (bufs []*Buffer, strides, offsets []uint32) {
	t := &c.state.ia.vbs
	size, filled := getRange(start, n, t.len())
	bufs = make([]*Buffer, size)
	strides = make([]uint32, size)
	offsets = make([]uint32, size)
	for i := range filled {
		b := t.get(start + i)
		addRef(b.ref())
		bufs[i], strides[i], offsets[i] = b.buffer, b.stride, b.offset
	}
	return bufs, strides, offsets
}

// IASetIndexBuffer binds the index buffer.
func (c *commonContext[F]) IASetIndexBuffer(buf *Buffer, format gputypes.IndexFormat, offset uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetIndexBufferCommand{Buffer: captureObject(c.fwd, buf), Format: format, Offset: offset})
	}
	c.setIndexBuffer(buf, format, offset)
}

// IAGetIndexBuffer returns the index buffer, its format and byte offset.
func (c *commonContext[F]) IAGetIndexBuffer() (*Buffer, gputypes.IndexFormat, uint32) {
	ib := c.state.ia.index
	addRef(asObject(ib.buffer))
	return ib.buffer, ib.format, ib.offset
}

// ---------------------------------------------------------------------------
// Output merger
// ---------------------------------------------------------------------------

// OMSetRenderTargets binds render targets and a depth-stencil view and
// unbinds every output-merger UAV.
func (c *commonContext[F]) OMSetRenderTargets(rtvs []*RenderTargetView, dsv *DepthStencilView) {
	n := uint32(len(rtvs))
	c.OMSetRenderTargetsAndUnorderedAccessViews(n, rtvs, dsv, n, 0, nil, nil)
}

// OMSetRenderTargetsAndUnorderedAccessViews binds render targets and
// output-merger UAVs in one call. KeepRenderTargets or
// KeepUnorderedAccessViews as a count leaves that class untouched.
func (c *commonContext[F]) OMSetRenderTargetsAndUnorderedAccessViews(numRTVs uint32, rtvs []*RenderTargetView, dsv *DepthStencilView,
	uavStart, numUAVs uint32, uavs []*UnorderedAccessView, counts []uint32,
) {
	if c.fwd.recording() {
		c.fwd.record(&SetRenderTargetsAndUAVsCommand{
			NumRTVs:  numRTVs,
			RTVs:     captureObjects(c.fwd, rtvs),
			DSV:      captureObject(c.fwd, dsv),
			UAVStart: uavStart,
			NumUAVs:  numUAVs,
			UAVs:     captureObjects(c.fwd, uavs),
			Counters: slices.Clone(counts),
		})
	}
	c.setRenderTargetsAndUAVs(numRTVs, rtvs, dsv, uavStart, numUAVs, uavs, counts)
}

// OMGetRenderTargets returns n render targets and the depth-stencil view.
func (c *commonContext[F]) OMGetRenderTargets(n uint32) ([]*RenderTargetView, *DepthStencilView) {
	dsv := c.state.om.dsv
	addRef(asObject(dsv))
	return getSlots(&c.state.om.rtvs, 0, n), dsv
}

// OMGetUnorderedAccessViews returns n output-merger UAVs starting at slot
// start.
func (c *commonContext[F]) OMGetUnorderedAccessViews(start, n uint32) []*UnorderedAccessView {
	return getUAVs(&c.state.stages[gpucore.StagePixel].uavs, start, n)
}

// OMGetRenderTargetsAndUnorderedAccessViews returns numRTVs render targets,
// the depth-stencil view and numUAVs output-merger UAVs starting at uavStart.
func (c *commonContext[F]) OMGetRenderTargetsAndUnorderedAccessViews(numRTVs, uavStart, numUAVs uint32) (
	[]*RenderTargetView, *DepthStencilView, []*UnorderedAccessView) {
	rtvs, dsv := c.OMGetRenderTargets(numRTVs)
	return rtvs, dsv, c.OMGetUnorderedAccessViews(uavStart, numUAVs)
}

// OMSetBlendState sets the blend state, blend factor and sample mask.
// A nil factor means {1, 1, 1, 1}.
func (c *commonContext[F]) OMSetBlendState(s *BlendState, factor *[4]float32, sampleMask uint32) {
	if c.fwd.recording() {
		var f *[4]float32
		if factor != nil {
			v := *factor
			f = &v
		}
		c.fwd.record(&SetBlendStateCommand{State: captureObject(c.fwd, s), Factor: f, SampleMask: sampleMask})
	}
	c.setBlendState(s, factor, sampleMask)
}

// OMGetBlendState returns the blend state, blend factor and sample mask.
func (c *commonContext[F]) OMGetBlendState() (*BlendState, [4]float32, uint32) {
	om := &c.state.om
	addRef(asObject(om.blend))
	return om.blend, om.blendFactor, om.sampleMask
}

// OMSetDepthStencilState sets the depth-stencil state and stencil reference.
func (c *commonContext[F]) OMSetDepthStencilState(s *DepthStencilState, stencilRef uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetDepthStencilStateCommand{State: captureObject(c.fwd, s), StencilRef: stencilRef})
	}
	c.setDepthStencilState(s, stencilRef)
}

// OMGetDepthStencilState returns the depth-stencil state and stencil
// reference.
func (c *commonContext[F]) OMGetDepthStencilState() (*DepthStencilState, uint32) {
	om := &c.state.om
	addRef(asObject(om.depthStencil))
	return om.depthStencil, om.stencilRef
}

// ---------------------------------------------------------------------------
// Rasterizer
// ---------------------------------------------------------------------------

// RSSetState sets the rasterizer state.
func (c *commonContext[F]) RSSetState(s *RasterizerState) {
	if c.fwd.recording() {
		c.fwd.record(&SetRasterizerStateCommand{State: captureObject(c.fwd, s)})
	}
	c.setRasterizerState(s)
}

// RSGetState returns the rasterizer state.
func (c *commonContext[F]) RSGetState() *RasterizerState {
	s := c.state.rs.state
	addRef(asObject(s))
	return s
}

// RSSetViewports replaces the viewport array. Viewports past the limit are
// ignored.
func (c *commonContext[F]) RSSetViewports(vps []gpucore.Viewport) {
	if c.fwd.recording() {
		c.fwd.record(&SetViewportsCommand{Viewports: slices.Clone(vps)})
	}
	c.setViewports(vps)
}

// RSGetViewports returns the bound viewports.
func (c *commonContext[F]) RSGetViewports() []gpucore.Viewport {
	rs := &c.state.rs
	return slices.Clone(rs.viewports[:rs.numViewports])
}

// RSSetScissorRects replaces the scissor rectangle array.
func (c *commonContext[F]) RSSetScissorRects(rects []gpucore.Rect) {
	if c.fwd.recording() {
		c.fwd.record(&SetScissorRectsCommand{Rects: slices.Clone(rects)})
	}
	c.setScissorRects(rects)
}

// RSGetScissorRects returns the bound scissor rectangles.
func (c *commonContext[F]) RSGetScissorRects() []gpucore.Rect {
	rs := &c.state.rs
	return slices.Clone(rs.scissors[:rs.numScissors])
}

// ---------------------------------------------------------------------------
// Stream output, predication, resource LOD
// ---------------------------------------------------------------------------

// SOSetTargets replaces every stream-output target.
func (c *commonContext[F]) SOSetTargets(bufs []*Buffer, offsets []uint32) {
	if c.fwd.recording() {
		c.fwd.record(&SetStreamOutTargetsCommand{
			Buffers: captureObjects(c.fwd, bufs),
			Offsets: slices.Clone(offsets),
		})
	}
	c.setStreamOutTargets(bufs, offsets)
}

// SOGetTargets returns n stream-output buffers.
func (c *commonContext[F]) SOGetTargets(n uint32) []*Buffer {
	bufs, _ := c.SOGetTargetsWithOffsets(n)
	return bufs
}

// SOGetTargetsWithOffsets returns n stream-output buffers with the offsets
// recorded at bind time.
func (c *commonContext[F]) SOGetTargetsWithOffsets(n uint32) ([]*Buffer, []uint32) {
	t := &c.state.so
	size, _ := getRange(0, n, t.len())
	bufs := make([]*Buffer, size)
	offsets := make([]uint32, size)
	for i := range size {
		b := t.get(i)
		addRef(b.ref())
		bufs[i], offsets[i] = b.buffer, b.offset
	}
	return bufs, offsets
}

// SetPredication sets the predicate for predicated rendering.
func (c *commonContext[F]) SetPredication(p *Predicate, value bool) {
	if c.fwd.recording() {
		c.fwd.record(&SetPredicationCommand{Predicate: captureObject(c.fwd, p), Value: value})
	}
	c.setPredication(p, value)
}

// GetPredication returns the predicate and its comparison value.
func (c *commonContext[F]) GetPredication() (*Predicate, bool) {
	pr := c.state.pr
	addRef(asObject(pr.predicate))
	return pr.predicate, pr.value
}

// SetResourceMinLOD clamps the most detailed mip level sampled from tex.
// The clamp is a resource property and takes effect immediately in every
// context.
func (c *commonContext[F]) SetResourceMinLOD(tex *Texture, minLOD float32) {
	if tex != nil {
		tex.minLOD = minLOD
	}
}

// GetResourceMinLOD returns the clamp set by SetResourceMinLOD.
func (c *commonContext[F]) GetResourceMinLOD(tex *Texture) float32 {
	if tex == nil {
		return 0
	}
	return tex.minLOD
}

// ClearState unbinds every slot and restores fixed-function defaults.
func (c *commonContext[F]) ClearState() {
	if c.fwd.recording() {
		c.fwd.record(ClearStateCommand{})
	}
	c.clearState()
}

// ---------------------------------------------------------------------------
// Draws and dispatches
// ---------------------------------------------------------------------------

// Draw draws vertexCount vertices.
func (c *commonContext[F]) Draw(vertexCount, startVertex uint32) {
	c.DrawInstanced(vertexCount, 1, startVertex, 0)
}

// DrawInstanced draws instanced, non-indexed primitives.
func (c *commonContext[F]) DrawInstanced(vertexCount, instanceCount, startVertex, startInstance uint32) {
	args := gpucore.DrawArgs{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   startVertex,
		FirstInstance: startInstance,
	}
	if c.fwd.recording() {
		c.fwd.record(&DrawCommand{Args: args})
	}
	c.draw(args)
}

// DrawIndexed draws indexCount indexed vertices.
func (c *commonContext[F]) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	c.DrawIndexedInstanced(indexCount, 1, startIndex, baseVertex, 0)
}

// DrawIndexedInstanced draws instanced, indexed primitives.
func (c *commonContext[F]) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	args := gpucore.DrawIndexedArgs{
		IndexCount:    indexCount,
		InstanceCount: instanceCount,
		FirstIndex:    startIndex,
		BaseVertex:    baseVertex,
		FirstInstance: startInstance,
	}
	if c.fwd.recording() {
		c.fwd.record(&DrawIndexedCommand{Args: args})
	}
	c.drawIndexed(args)
}

// DrawInstancedIndirect draws with arguments read from buf at offset.
func (c *commonContext[F]) DrawInstancedIndirect(buf *Buffer, offset uint32) {
	c.recordDrawIndirect(buf, offset, false)
}

// DrawIndexedInstancedIndirect draws indexed with arguments read from buf.
func (c *commonContext[F]) DrawIndexedInstancedIndirect(buf *Buffer, offset uint32) {
	c.recordDrawIndirect(buf, offset, true)
}

func (c *commonContext[F]) recordDrawIndirect(buf *Buffer, offset uint32, indexed bool) {
	if c.fwd.recording() {
		c.fwd.record(&DrawIndirectCommand{Buffer: captureObject(c.fwd, buf), Offset: offset, Indexed: indexed})
	}
	c.drawIndirect(buf, offset, indexed)
}

// DrawAuto draws the vertices stream output last wrote to the buffer bound
// at vertex buffer slot 0.
func (c *commonContext[F]) DrawAuto() {
	if c.fwd.recording() {
		c.fwd.record(&DrawAutoCommand{})
	}
	c.drawAuto()
}

// Dispatch runs the compute shader over an x*y*z grid of thread groups.
func (c *commonContext[F]) Dispatch(x, y, z uint32) {
	if c.fwd.recording() {
		c.fwd.record(&DispatchCommand{X: x, Y: y, Z: z})
	}
	c.dispatch(x, y, z)
}

// DispatchIndirect dispatches with group counts read from buf.
func (c *commonContext[F]) DispatchIndirect(buf *Buffer, offset uint32) {
	if c.fwd.recording() {
		c.fwd.record(&DispatchIndirectCommand{Buffer: captureObject(c.fwd, buf), Offset: offset})
	}
	c.dispatchIndirect(buf, offset)
}

func (c *commonContext[F]) draw(args gpucore.DrawArgs) {
	c.applyGraphicsState()
	if c.sink != nil {
		c.sink.Draw(args)
	}
}

func (c *commonContext[F]) drawIndexed(args gpucore.DrawIndexedArgs) {
	c.applyGraphicsState()
	if c.sink != nil {
		c.sink.DrawIndexed(args)
	}
}

func (c *commonContext[F]) drawIndirect(buf *Buffer, offset uint32, indexed bool) {
	if buf == nil {
		return
	}
	c.applyGraphicsState()
	if c.sink != nil {
		c.sink.DrawIndirect(buf, offset, indexed)
	}
}

func (c *commonContext[F]) drawAuto() {
	vb := c.state.ia.vbs.get(0)
	if vb.buffer == nil {
		return
	}
	c.applyGraphicsState()
	if c.sink != nil {
		c.sink.DrawAuto(vb.buffer, vb.offset, vb.stride)
	}
}

func (c *commonContext[F]) dispatch(x, y, z uint32) {
	c.applyComputeState()
	if c.sink != nil {
		c.sink.Dispatch(x, y, z)
	}
}

func (c *commonContext[F]) dispatchIndirect(buf *Buffer, offset uint32) {
	if buf == nil {
		return
	}
	c.applyComputeState()
	if c.sink != nil {
		c.sink.DispatchIndirect(buf, offset)
	}
}

// ---------------------------------------------------------------------------
// Command lists
// ---------------------------------------------------------------------------

// ExecuteCommandList replays list on this context. The list runs on cleared
// state; afterwards the previous state is restored if restoreContextState is
// set, otherwise the context is left cleared.
func (c *commonContext[F]) ExecuteCommandList(list *CommandList, restoreContextState bool) {
	if list == nil {
		return
	}
	if c.fwd.recording() {
		c.fwd.record(&ExecuteCommandListCommand{List: captureObject(c.fwd, list), RestoreContextState: restoreContextState})
	}
	c.executeCommandList(list, restoreContextState)
}

func (c *commonContext[F]) executeCommandList(list *CommandList, restore bool) {
	if restore {
		c.saveState()
	}
	c.clearState()
	for _, cmd := range list.commands {
		cmd.execute(c)
	}
	if restore {
		c.restoreState()
	} else {
		c.clearState()
	}
	Logger().Debug("dxvk: executed command list",
		slog.Int("commands", len(list.commands)),
		slog.Bool("restore", restore))
}
