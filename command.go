package dxvk

import (
	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// CommandType identifies a command recorded by a deferred context.
type CommandType uint8

const (
	// Binding commands
	CmdSetShader                CommandType = iota // Bind a shader and class instances
	CmdSetConstantBuffers                          // Bind constant buffer ranges
	CmdSetShaderResources                          // Bind shader resource views
	CmdSetSamplers                                 // Bind samplers
	CmdSetUnorderedAccessViews                     // Bind compute UAVs
	CmdSetInputLayout                              // Bind an input layout
	CmdSetPrimitiveTopology                        // Set the primitive topology
	CmdSetVertexBuffers                            // Bind vertex buffers
	CmdSetIndexBuffer                              // Bind the index buffer
	CmdSetRenderTargetsAndUAVs                     // Bind output-merger views
	CmdSetBlendState                               // Set blend state, factor and mask
	CmdSetDepthStencilState                        // Set depth-stencil state and reference
	CmdSetRasterizerState                          // Set rasterizer state
	CmdSetViewports                                // Set viewports
	CmdSetScissorRects                             // Set scissor rectangles
	CmdSetStreamOutTargets                         // Bind stream-output buffers
	CmdSetPredication                              // Set the rendering predicate
	CmdClearState                                  // Reset all state

	// Work commands
	CmdDraw                         // Non-indexed draw
	CmdDrawIndexed                  // Indexed draw
	CmdDrawIndirect                 // Draw with arguments from a buffer
	CmdDrawAuto                     // Draw what stream output last wrote
	CmdDispatch                     // Compute dispatch
	CmdDispatchIndirect             // Dispatch with arguments from a buffer
	CmdClearView                    // Clear a render target or UAV
	CmdClearUnorderedAccessViewUint // Clear a UAV with integer values
	CmdClearDepthStencilView        // Clear depth, stencil or both

	// List commands
	CmdExecuteCommandList // Execute a nested command list
	CmdRestoreState       // Re-establish state retained by FinishCommandList
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdSetShader:                    "SetShader",
	CmdSetConstantBuffers:           "SetConstantBuffers",
	CmdSetShaderResources:           "SetShaderResources",
	CmdSetSamplers:                  "SetSamplers",
	CmdSetUnorderedAccessViews:      "SetUnorderedAccessViews",
	CmdSetInputLayout:               "SetInputLayout",
	CmdSetPrimitiveTopology:         "SetPrimitiveTopology",
	CmdSetVertexBuffers:             "SetVertexBuffers",
	CmdSetIndexBuffer:               "SetIndexBuffer",
	CmdSetRenderTargetsAndUAVs:      "SetRenderTargetsAndUAVs",
	CmdSetBlendState:                "SetBlendState",
	CmdSetDepthStencilState:         "SetDepthStencilState",
	CmdSetRasterizerState:           "SetRasterizerState",
	CmdSetViewports:                 "SetViewports",
	CmdSetScissorRects:              "SetScissorRects",
	CmdSetStreamOutTargets:          "SetStreamOutTargets",
	CmdSetPredication:               "SetPredication",
	CmdClearState:                   "ClearState",
	CmdDraw:                         "Draw",
	CmdDrawIndexed:                  "DrawIndexed",
	CmdDrawIndirect:                 "DrawIndirect",
	CmdDrawAuto:                     "DrawAuto",
	CmdDispatch:                     "Dispatch",
	CmdDispatchIndirect:             "DispatchIndirect",
	CmdClearView:                    "ClearView",
	CmdClearUnorderedAccessViewUint: "ClearUnorderedAccessViewUint",
	CmdClearDepthStencilView:        "ClearDepthStencilView",
	CmdExecuteCommandList:           "ExecuteCommandList",
	CmdRestoreState:                 "RestoreState",
}

// String returns the string representation of the command type.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is a recorded context call. Commands hold borrowed pointers; the
// owning CommandList keeps the referenced objects alive.
type Command interface {
	// Type returns the command type for dispatch.
	Type() CommandType

	execute(t commandTarget)
}

// commandTarget is the internal setter surface commands replay onto.
type commandTarget interface {
	setShader(stage gpucore.Stage, sh *Shader, instances []*ClassInstance)
	setConstantBuffers(stage gpucore.Stage, start uint32, bufs []*Buffer, first, count []uint32)
	setShaderResources(stage gpucore.Stage, start uint32, views []*ShaderResourceView)
	setSamplers(stage gpucore.Stage, start uint32, samplers []*SamplerState)
	setUnorderedAccessViews(start uint32, uavs []*UnorderedAccessView, counts []uint32)
	setInputLayout(l *InputLayout)
	setPrimitiveTopology(t Topology)
	setVertexBuffers(start uint32, bufs []*Buffer, strides, offsets []uint32)
	setIndexBuffer(buf *Buffer, format gputypes.IndexFormat, offset uint32)
	setRenderTargetsAndUAVs(numRTVs uint32, rtvs []*RenderTargetView, dsv *DepthStencilView,
		uavStart, numUAVs uint32, uavs []*UnorderedAccessView, counts []uint32)
	setBlendState(s *BlendState, factor *[4]float32, mask uint32)
	setDepthStencilState(s *DepthStencilState, ref uint32)
	setRasterizerState(s *RasterizerState)
	setViewports(vps []gpucore.Viewport)
	setScissorRects(rects []gpucore.Rect)
	setStreamOutTargets(bufs []*Buffer, offsets []uint32)
	setPredication(p *Predicate, value bool)
	clearState()
	draw(args gpucore.DrawArgs)
	drawIndexed(args gpucore.DrawIndexedArgs)
	drawIndirect(buf *Buffer, offset uint32, indexed bool)
	drawAuto()
	dispatch(x, y, z uint32)
	dispatchIndirect(buf *Buffer, offset uint32)
	clearView(v View, value clearValue, rects []gpucore.Rect)
	clearDepthStencilView(dsv *DepthStencilView, flags ClearFlags, depth float32, stencil uint8)
	executeCommandList(list *CommandList, restore bool)
	restoreSnapshot(s *contextState)
}

// ---------------------------------------------------------------------------
// Binding commands
// ---------------------------------------------------------------------------

// SetShaderCommand binds a shader to a stage.
type SetShaderCommand struct {
	Stage     gpucore.Stage
	Shader    *Shader
	Instances []*ClassInstance
}

// Type implements Command.
func (SetShaderCommand) Type() CommandType { return CmdSetShader }

func (c *SetShaderCommand) execute(t commandTarget) {
	t.setShader(c.Stage, c.Shader, c.Instances)
}

// SetConstantBuffersCommand binds constant buffer ranges. Nil First and
// Count bind full buffers.
type SetConstantBuffersCommand struct {
	Stage   gpucore.Stage
	Start   uint32
	Buffers []*Buffer
	First   []uint32
	Count   []uint32
}

// Type implements Command.
func (SetConstantBuffersCommand) Type() CommandType { return CmdSetConstantBuffers }

func (c *SetConstantBuffersCommand) execute(t commandTarget) {
	t.setConstantBuffers(c.Stage, c.Start, c.Buffers, c.First, c.Count)
}

// SetShaderResourcesCommand binds shader resource views.
type SetShaderResourcesCommand struct {
	Stage gpucore.Stage
	Start uint32
	Views []*ShaderResourceView
}

// Type implements Command.
func (SetShaderResourcesCommand) Type() CommandType { return CmdSetShaderResources }

func (c *SetShaderResourcesCommand) execute(t commandTarget) {
	t.setShaderResources(c.Stage, c.Start, c.Views)
}

// SetSamplersCommand binds samplers.
type SetSamplersCommand struct {
	Stage    gpucore.Stage
	Start    uint32
	Samplers []*SamplerState
}

// Type implements Command.
func (SetSamplersCommand) Type() CommandType { return CmdSetSamplers }

func (c *SetSamplersCommand) execute(t commandTarget) {
	t.setSamplers(c.Stage, c.Start, c.Samplers)
}

// SetUnorderedAccessViewsCommand binds compute UAVs.
type SetUnorderedAccessViewsCommand struct {
	Start    uint32
	Views    []*UnorderedAccessView
	Counters []uint32
}

// Type implements Command.
func (SetUnorderedAccessViewsCommand) Type() CommandType { return CmdSetUnorderedAccessViews }

func (c *SetUnorderedAccessViewsCommand) execute(t commandTarget) {
	t.setUnorderedAccessViews(c.Start, c.Views, c.Counters)
}

// SetInputLayoutCommand binds an input layout.
type SetInputLayoutCommand struct {
	Layout *InputLayout
}

// Type implements Command.
func (SetInputLayoutCommand) Type() CommandType { return CmdSetInputLayout }

func (c *SetInputLayoutCommand) execute(t commandTarget) { t.setInputLayout(c.Layout) }

// SetPrimitiveTopologyCommand sets the topology.
type SetPrimitiveTopologyCommand struct {
	Topology Topology
}

// Type implements Command.
func (SetPrimitiveTopologyCommand) Type() CommandType { return CmdSetPrimitiveTopology }

func (c *SetPrimitiveTopologyCommand) execute(t commandTarget) { t.setPrimitiveTopology(c.Topology) }

// SetVertexBuffersCommand binds vertex buffers.
type SetVertexBuffersCommand struct {
	Start   uint32
	Buffers []*Buffer
	Strides []uint32
	Offsets []uint32
}

// Type implements Command.
func (SetVertexBuffersCommand) Type() CommandType { return CmdSetVertexBuffers }

func (c *SetVertexBuffersCommand) execute(t commandTarget) {
	t.setVertexBuffers(c.Start, c.Buffers, c.Strides, c.Offsets)
}

// SetIndexBufferCommand binds the index buffer.
type SetIndexBufferCommand struct {
	Buffer *Buffer
	Format gputypes.IndexFormat
	Offset uint32
}

// Type implements Command.
func (SetIndexBufferCommand) Type() CommandType { return CmdSetIndexBuffer }

func (c *SetIndexBufferCommand) execute(t commandTarget) {
	t.setIndexBuffer(c.Buffer, c.Format, c.Offset)
}

// SetRenderTargetsAndUAVsCommand binds output-merger views.
type SetRenderTargetsAndUAVsCommand struct {
	NumRTVs  uint32
	RTVs     []*RenderTargetView
	DSV      *DepthStencilView
	UAVStart uint32
	NumUAVs  uint32
	UAVs     []*UnorderedAccessView
	Counters []uint32
}

// Type implements Command.
func (SetRenderTargetsAndUAVsCommand) Type() CommandType { return CmdSetRenderTargetsAndUAVs }

func (c *SetRenderTargetsAndUAVsCommand) execute(t commandTarget) {
	t.setRenderTargetsAndUAVs(c.NumRTVs, c.RTVs, c.DSV, c.UAVStart, c.NumUAVs, c.UAVs, c.Counters)
}

// SetBlendStateCommand sets blend state, blend factor and sample mask.
type SetBlendStateCommand struct {
	State      *BlendState
	Factor     *[4]float32
	SampleMask uint32
}

// Type implements Command.
func (SetBlendStateCommand) Type() CommandType { return CmdSetBlendState }

func (c *SetBlendStateCommand) execute(t commandTarget) {
	t.setBlendState(c.State, c.Factor, c.SampleMask)
}

// SetDepthStencilStateCommand sets depth-stencil state and stencil reference.
type SetDepthStencilStateCommand struct {
	State      *DepthStencilState
	StencilRef uint32
}

// Type implements Command.
func (SetDepthStencilStateCommand) Type() CommandType { return CmdSetDepthStencilState }

func (c *SetDepthStencilStateCommand) execute(t commandTarget) {
	t.setDepthStencilState(c.State, c.StencilRef)
}

// SetRasterizerStateCommand sets rasterizer state.
type SetRasterizerStateCommand struct {
	State *RasterizerState
}

// Type implements Command.
func (SetRasterizerStateCommand) Type() CommandType { return CmdSetRasterizerState }

func (c *SetRasterizerStateCommand) execute(t commandTarget) { t.setRasterizerState(c.State) }

// SetViewportsCommand sets viewports.
type SetViewportsCommand struct {
	Viewports []gpucore.Viewport
}

// Type implements Command.
func (SetViewportsCommand) Type() CommandType { return CmdSetViewports }

func (c *SetViewportsCommand) execute(t commandTarget) { t.setViewports(c.Viewports) }

// SetScissorRectsCommand sets scissor rectangles.
type SetScissorRectsCommand struct {
	Rects []gpucore.Rect
}

// Type implements Command.
func (SetScissorRectsCommand) Type() CommandType { return CmdSetScissorRects }

func (c *SetScissorRectsCommand) execute(t commandTarget) { t.setScissorRects(c.Rects) }

// SetStreamOutTargetsCommand binds stream-output buffers.
type SetStreamOutTargetsCommand struct {
	Buffers []*Buffer
	Offsets []uint32
}

// Type implements Command.
func (SetStreamOutTargetsCommand) Type() CommandType { return CmdSetStreamOutTargets }

func (c *SetStreamOutTargetsCommand) execute(t commandTarget) {
	t.setStreamOutTargets(c.Buffers, c.Offsets)
}

// SetPredicationCommand sets the rendering predicate.
type SetPredicationCommand struct {
	Predicate *Predicate
	Value     bool
}

// Type implements Command.
func (SetPredicationCommand) Type() CommandType { return CmdSetPredication }

func (c *SetPredicationCommand) execute(t commandTarget) { t.setPredication(c.Predicate, c.Value) }

// ClearStateCommand resets all state to defaults.
type ClearStateCommand struct{}

// Type implements Command.
func (ClearStateCommand) Type() CommandType { return CmdClearState }

func (ClearStateCommand) execute(t commandTarget) { t.clearState() }

// ---------------------------------------------------------------------------
// Work commands
// ---------------------------------------------------------------------------

// DrawCommand is a non-indexed draw.
type DrawCommand struct {
	Args gpucore.DrawArgs
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

func (c *DrawCommand) execute(t commandTarget) { t.draw(c.Args) }

// DrawIndexedCommand is an indexed draw.
type DrawIndexedCommand struct {
	Args gpucore.DrawIndexedArgs
}

// Type implements Command.
func (DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }

func (c *DrawIndexedCommand) execute(t commandTarget) { t.drawIndexed(c.Args) }

// DrawIndirectCommand draws with arguments read from a buffer.
type DrawIndirectCommand struct {
	Buffer  *Buffer
	Offset  uint32
	Indexed bool
}

// Type implements Command.
func (DrawIndirectCommand) Type() CommandType { return CmdDrawIndirect }

func (c *DrawIndirectCommand) execute(t commandTarget) {
	t.drawIndirect(c.Buffer, c.Offset, c.Indexed)
}

// DrawAutoCommand draws the vertices stream output last wrote to vertex
// buffer 0.
type DrawAutoCommand struct{}

// Type implements Command.
func (DrawAutoCommand) Type() CommandType { return CmdDrawAuto }

func (c *DrawAutoCommand) execute(t commandTarget) { t.drawAuto() }

// DispatchCommand is a compute dispatch.
type DispatchCommand struct {
	X, Y, Z uint32
}

// Type implements Command.
func (DispatchCommand) Type() CommandType { return CmdDispatch }

func (c *DispatchCommand) execute(t commandTarget) { t.dispatch(c.X, c.Y, c.Z) }

// DispatchIndirectCommand dispatches with arguments read from a buffer.
type DispatchIndirectCommand struct {
	Buffer *Buffer
	Offset uint32
}

// Type implements Command.
func (DispatchIndirectCommand) Type() CommandType { return CmdDispatchIndirect }

func (c *DispatchIndirectCommand) execute(t commandTarget) { t.dispatchIndirect(c.Buffer, c.Offset) }

// ClearViewCommand clears a render target or unordered access view.
type ClearViewCommand struct {
	View  View
	Color [4]float32
	Rects []gpucore.Rect
}

// Type implements Command.
func (ClearViewCommand) Type() CommandType { return CmdClearView }

func (c *ClearViewCommand) execute(t commandTarget) {
	t.clearView(c.View, floatClear(c.Color), c.Rects)
}

// ClearUnorderedAccessViewUintCommand clears a UAV with integer values.
type ClearUnorderedAccessViewUintCommand struct {
	View   *UnorderedAccessView
	Values [4]uint32
}

// Type implements Command.
func (ClearUnorderedAccessViewUintCommand) Type() CommandType { return CmdClearUnorderedAccessViewUint }

func (c *ClearUnorderedAccessViewUintCommand) execute(t commandTarget) {
	t.clearView(c.View, uintClear(c.Values), nil)
}

// ClearDepthStencilViewCommand clears aspects of a depth-stencil view.
type ClearDepthStencilViewCommand struct {
	View    *DepthStencilView
	Flags   ClearFlags
	Depth   float32
	Stencil uint8
}

// Type implements Command.
func (ClearDepthStencilViewCommand) Type() CommandType { return CmdClearDepthStencilView }

func (c *ClearDepthStencilViewCommand) execute(t commandTarget) {
	t.clearDepthStencilView(c.View, c.Flags, c.Depth, c.Stencil)
}

// ---------------------------------------------------------------------------
// List commands
// ---------------------------------------------------------------------------

// ExecuteCommandListCommand executes a nested command list.
type ExecuteCommandListCommand struct {
	List                *CommandList
	RestoreContextState bool
}

// Type implements Command.
func (ExecuteCommandListCommand) Type() CommandType { return CmdExecuteCommandList }

func (c *ExecuteCommandListCommand) execute(t commandTarget) {
	t.executeCommandList(c.List, c.RestoreContextState)
}

// RestoreStateCommand re-establishes the state a deferred context had when
// its previous list was finished with state retention.
type RestoreStateCommand struct {
	state *contextState
}

// Type implements Command.
func (RestoreStateCommand) Type() CommandType { return CmdRestoreState }

func (c *RestoreStateCommand) execute(t commandTarget) { t.restoreSnapshot(c.state) }
