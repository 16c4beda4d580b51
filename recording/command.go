package recording

import (
	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// CommandType identifies the type of a command.
// Each command type corresponds to one gpucore.Sink method.
type CommandType uint8

const (
	// Binding commands
	CmdBindShader               CommandType = iota // Bind a stage shader
	CmdBindConstantBuffers                         // Bind constant buffer ranges
	CmdBindShaderResources                         // Bind shader resource views
	CmdBindSamplers                                // Bind samplers
	CmdBindUnorderedAccessViews                    // Bind unordered access views
	CmdBindVertexBuffers                           // Bind vertex buffers
	CmdBindIndexBuffer                             // Bind the index buffer
	CmdBindStreamOutBuffers                        // Bind stream-output targets
	CmdBindFramebuffer                             // Bind render targets

	// Fixed-function state commands
	CmdSetInputLayout       // Set vertex input layout
	CmdSetInputAssembly     // Set primitive assembly
	CmdSetBlendState        // Set blend and multisample state
	CmdSetBlendConstant     // Set blend constant
	CmdSetDepthStencilState // Set depth-stencil state
	CmdSetStencilReference  // Set stencil reference
	CmdSetRasterizerState   // Set rasterizer state
	CmdSetViewports         // Set viewports and scissors
	CmdSetPredicate         // Set predication

	// Work commands
	CmdDraw             // Non-indexed draw
	CmdDrawIndexed      // Indexed draw
	CmdDrawIndirect     // Indirect draw
	CmdDrawAuto         // Draw of stream-output data
	CmdDispatch         // Compute dispatch
	CmdDispatchIndirect // Indirect compute dispatch
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdBindShader:               "BindShader",
	CmdBindConstantBuffers:      "BindConstantBuffers",
	CmdBindShaderResources:      "BindShaderResources",
	CmdBindSamplers:             "BindSamplers",
	CmdBindUnorderedAccessViews: "BindUnorderedAccessViews",
	CmdBindVertexBuffers:        "BindVertexBuffers",
	CmdBindIndexBuffer:          "BindIndexBuffer",
	CmdBindStreamOutBuffers:     "BindStreamOutBuffers",
	CmdBindFramebuffer:          "BindFramebuffer",
	CmdSetInputLayout:           "SetInputLayout",
	CmdSetInputAssembly:         "SetInputAssembly",
	CmdSetBlendState:            "SetBlendState",
	CmdSetBlendConstant:         "SetBlendConstant",
	CmdSetDepthStencilState:     "SetDepthStencilState",
	CmdSetStencilReference:      "SetStencilReference",
	CmdSetRasterizerState:       "SetRasterizerState",
	CmdSetViewports:             "SetViewports",
	CmdSetPredicate:             "SetPredicate",
	CmdDraw:                     "Draw",
	CmdDrawIndexed:              "DrawIndexed",
	CmdDrawIndirect:             "DrawIndirect",
	CmdDrawAuto:                 "DrawAuto",
	CmdDispatch:                 "Dispatch",
	CmdDispatchIndirect:         "DispatchIndirect",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// IsWork reports whether the command consumes the bound state.
func (c CommandType) IsWork() bool {
	return c >= CmdDraw && c <= CmdDispatchIndirect
}

// Command is the interface implemented by all command types.
// Commands are plain values; objects they reference live in the
// ResourcePool of the recording.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Reference Types
// --------------------------------------------------------------------------

// ObjectRef is a reference to an object in the resource pool.
// The zero value is a valid reference to the first object (if any).
type ObjectRef uint32

// InvalidRef is the sentinel value for an invalid reference.
// A nil object is recorded as InvalidRef.
const InvalidRef = ^uint32(0)

// NilRef is the ObjectRef recorded for a nil object.
const NilRef = ObjectRef(InvalidRef)

// IsValid returns true if the reference points to a pooled object.
func (r ObjectRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// --------------------------------------------------------------------------
// Binding Commands
// --------------------------------------------------------------------------

// BindShaderCommand binds the shader of a stage.
type BindShaderCommand struct {
	Stage  gpucore.Stage
	Shader ObjectRef
}

// Type implements Command.
func (BindShaderCommand) Type() CommandType { return CmdBindShader }

// ConstantBufferRef is a recorded constant buffer range.
type ConstantBufferRef struct {
	Buffer        ObjectRef
	FirstConstant uint32
	NumConstants  uint32
}

// BindConstantBuffersCommand binds a run of constant buffer slots.
type BindConstantBuffersCommand struct {
	Stage  gpucore.Stage
	Start  uint32
	Ranges []ConstantBufferRef
}

// Type implements Command.
func (BindConstantBuffersCommand) Type() CommandType { return CmdBindConstantBuffers }

// BindShaderResourcesCommand binds a run of shader resource views.
type BindShaderResourcesCommand struct {
	Stage gpucore.Stage
	Start uint32
	Views []ObjectRef
}

// Type implements Command.
func (BindShaderResourcesCommand) Type() CommandType { return CmdBindShaderResources }

// BindSamplersCommand binds a run of samplers.
type BindSamplersCommand struct {
	Stage    gpucore.Stage
	Start    uint32
	Samplers []ObjectRef
}

// Type implements Command.
func (BindSamplersCommand) Type() CommandType { return CmdBindSamplers }

// UnorderedAccessRef is a recorded unordered access binding.
type UnorderedAccessRef struct {
	View    ObjectRef
	Counter uint32
}

// BindUnorderedAccessViewsCommand binds a run of unordered access views.
type BindUnorderedAccessViewsCommand struct {
	Stage gpucore.Stage
	Start uint32
	Views []UnorderedAccessRef
}

// Type implements Command.
func (BindUnorderedAccessViewsCommand) Type() CommandType { return CmdBindUnorderedAccessViews }

// VertexBufferRef is a recorded vertex buffer binding.
type VertexBufferRef struct {
	Buffer ObjectRef
	Stride uint32
	Offset uint32
}

// BindVertexBuffersCommand binds a run of vertex buffer slots.
type BindVertexBuffersCommand struct {
	Start   uint32
	Buffers []VertexBufferRef
}

// Type implements Command.
func (BindVertexBuffersCommand) Type() CommandType { return CmdBindVertexBuffers }

// BindIndexBufferCommand binds the index buffer.
type BindIndexBufferCommand struct {
	Buffer ObjectRef
	Format gputypes.IndexFormat
	Offset uint32
}

// Type implements Command.
func (BindIndexBufferCommand) Type() CommandType { return CmdBindIndexBuffer }

// StreamOutRef is a recorded stream-output target.
type StreamOutRef struct {
	Buffer ObjectRef
	Offset uint32
}

// BindStreamOutBuffersCommand binds the stream-output targets.
type BindStreamOutBuffersCommand struct {
	Targets []StreamOutRef
}

// Type implements Command.
func (BindStreamOutBuffersCommand) Type() CommandType { return CmdBindStreamOutBuffers }

// BindFramebufferCommand binds render targets and the depth-stencil view.
type BindFramebufferCommand struct {
	Colors       []ObjectRef
	ColorFormats []gputypes.TextureFormat
	Depth        ObjectRef
	DepthFormat  gputypes.TextureFormat
	SampleCount  uint32
}

// Type implements Command.
func (BindFramebufferCommand) Type() CommandType { return CmdBindFramebuffer }

// --------------------------------------------------------------------------
// Fixed-Function State Commands
// --------------------------------------------------------------------------

// SetInputLayoutCommand sets the vertex input layout.
type SetInputLayoutCommand struct {
	Layouts []gputypes.VertexBufferLayout
}

// Type implements Command.
func (SetInputLayoutCommand) Type() CommandType { return CmdSetInputLayout }

// SetInputAssemblyCommand sets primitive assembly state.
type SetInputAssemblyCommand struct {
	State gpucore.InputAssembly
}

// Type implements Command.
func (SetInputAssemblyCommand) Type() CommandType { return CmdSetInputAssembly }

// SetBlendStateCommand sets per-target blend state and multisample state.
type SetBlendStateCommand struct {
	Targets     []gputypes.ColorTargetState
	Multisample gputypes.MultisampleState
}

// Type implements Command.
func (SetBlendStateCommand) Type() CommandType { return CmdSetBlendState }

// SetBlendConstantCommand sets the blend constant.
type SetBlendConstantCommand struct {
	Color gputypes.Color
}

// Type implements Command.
func (SetBlendConstantCommand) Type() CommandType { return CmdSetBlendConstant }

// SetDepthStencilStateCommand sets depth-stencil state.
type SetDepthStencilStateCommand struct {
	State gputypes.DepthStencilState
}

// Type implements Command.
func (SetDepthStencilStateCommand) Type() CommandType { return CmdSetDepthStencilState }

// SetStencilReferenceCommand sets the stencil reference value.
type SetStencilReferenceCommand struct {
	Reference uint32
}

// Type implements Command.
func (SetStencilReferenceCommand) Type() CommandType { return CmdSetStencilReference }

// SetRasterizerStateCommand sets rasterizer state.
type SetRasterizerStateCommand struct {
	State gpucore.RasterizerState
}

// Type implements Command.
func (SetRasterizerStateCommand) Type() CommandType { return CmdSetRasterizerState }

// SetViewportsCommand sets viewports and their scissor rectangles.
type SetViewportsCommand struct {
	Viewports []gpucore.Viewport
	Scissors  []gpucore.Rect
}

// Type implements Command.
func (SetViewportsCommand) Type() CommandType { return CmdSetViewports }

// SetPredicateCommand enables or disables predicated rendering.
type SetPredicateCommand struct {
	Predicate ObjectRef
	Value     bool
}

// Type implements Command.
func (SetPredicateCommand) Type() CommandType { return CmdSetPredicate }

// --------------------------------------------------------------------------
// Work Commands
// --------------------------------------------------------------------------

// DrawCommand is a non-indexed draw.
type DrawCommand struct {
	Args gpucore.DrawArgs
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// DrawIndexedCommand is an indexed draw.
type DrawIndexedCommand struct {
	Args gpucore.DrawIndexedArgs
}

// Type implements Command.
func (DrawIndexedCommand) Type() CommandType { return CmdDrawIndexed }

// DrawIndirectCommand is a draw with arguments read from a buffer.
type DrawIndirectCommand struct {
	Buffer  ObjectRef
	Offset  uint32
	Indexed bool
}

// Type implements Command.
func (DrawIndirectCommand) Type() CommandType { return CmdDrawIndirect }

// DrawAutoCommand draws the vertices stream output last wrote to Buffer.
type DrawAutoCommand struct {
	Buffer ObjectRef
	Offset uint32
	Stride uint32
}

// Type implements Command.
func (DrawAutoCommand) Type() CommandType { return CmdDrawAuto }

// DispatchCommand is a compute dispatch.
type DispatchCommand struct {
	X, Y, Z uint32
}

// Type implements Command.
func (DispatchCommand) Type() CommandType { return CmdDispatch }

// DispatchIndirectCommand is a dispatch with arguments read from a buffer.
type DispatchIndirectCommand struct {
	Buffer ObjectRef
	Offset uint32
}

// Type implements Command.
func (DispatchIndirectCommand) Type() CommandType { return CmdDispatchIndirect }
