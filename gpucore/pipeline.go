package gpucore

import "github.com/gogpu/gputypes"

// InputAssembly is the derived input-assembler state.
type InputAssembly struct {
	Topology gputypes.PrimitiveTopology

	// Adjacency is set for the adjacency variants of list and strip topologies.
	Adjacency bool

	// PatchControlPoints is non-zero for patch lists consumed by tessellation.
	PatchControlPoints uint32

	// StripIndexFormat is the primitive restart format for strip topologies.
	// It follows the bound index buffer and is undefined for list topologies.
	StripIndexFormat gputypes.IndexFormat
}

// RasterizerState is the derived rasterizer state.
//
// SampleCount and DepthFormat are not part of the application state object:
// they follow the bound framebuffer, since depth bias units and multisample
// rasterization depend on it.
type RasterizerState struct {
	Primitive gputypes.PrimitiveState

	Wireframe       bool
	ScissorEnable   bool
	MultisampleLine bool

	DepthBias           int32
	DepthBiasClamp      float32
	DepthBiasSlopeScale float32

	SampleCount uint32
	DepthFormat gputypes.TextureFormat
}

// Sink receives the minimal ordered stream of low-level commands produced by
// the state applier. Slices passed to a Sink are only valid for the duration
// of the call.
type Sink interface {
	// BindShader binds the shader for a stage. A nil shader disables the stage.
	BindShader(stage Stage, shader Object)

	// BindConstantBuffers binds a contiguous run of constant buffer slots.
	BindConstantBuffers(stage Stage, start uint32, ranges []ConstantBufferRange)

	// BindShaderResources binds a contiguous run of shader resource views.
	BindShaderResources(stage Stage, start uint32, views []Object)

	// BindSamplers binds a contiguous run of samplers.
	BindSamplers(stage Stage, start uint32, samplers []Object)

	// BindUnorderedAccessViews binds a contiguous run of unordered access
	// views. Pixel-stage bindings are the output-merger views shared by all
	// graphics stages.
	BindUnorderedAccessViews(stage Stage, start uint32, views []UnorderedAccessBinding)

	BindVertexBuffers(start uint32, buffers []VertexBufferRange)
	BindIndexBuffer(buffer IndexBufferRange)
	BindStreamOutBuffers(targets []StreamOutRange)
	BindFramebuffer(fb Framebuffer)

	// SetInputLayout sets the vertex input layout, one entry per vertex
	// buffer slot up to the highest slot referenced by the layout.
	SetInputLayout(layouts []gputypes.VertexBufferLayout)

	SetInputAssembly(ia InputAssembly)

	// SetBlendState sets per-target blend state together with the
	// multisample state, which carries the sample mask.
	SetBlendState(targets []gputypes.ColorTargetState, ms gputypes.MultisampleState)

	SetBlendConstant(c gputypes.Color)
	SetDepthStencilState(ds gputypes.DepthStencilState)
	SetStencilReference(ref uint32)
	SetRasterizerState(rs RasterizerState)

	// SetViewports sets viewports and their scissor rectangles.
	// Both slices have the same length.
	SetViewports(viewports []Viewport, scissors []Rect)

	// SetPredicate enables predicated rendering. A nil predicate disables it.
	SetPredicate(predicate Object, value bool)

	Draw(args DrawArgs)
	DrawIndexed(args DrawIndexedArgs)
	DrawIndirect(buffer Object, offset uint32, indexed bool)

	// DrawAuto draws the vertices stream output last wrote to buffer, which
	// is bound as vertex buffer 0 at offset with the given stride.
	DrawAuto(buffer Object, offset, stride uint32)

	Dispatch(x, y, z uint32)
	DispatchIndirect(buffer Object, offset uint32)
}

// BufferInfo describes a buffer allocation.
type BufferInfo struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// TextureInfo describes a texture allocation.
type TextureInfo struct {
	Label       string
	Dimension   gputypes.TextureDimension
	Size        gputypes.Extent3D
	MipLevels   uint32
	SampleCount uint32
	Format      gputypes.TextureFormat
	Usage       gputypes.TextureUsage
}

// Allocator creates the native handles behind device resources.
// Resource memory is owned by the allocator; the state tracker only carries
// the returned handle and hands it back to Free when the object is destroyed.
type Allocator interface {
	AllocateBuffer(info BufferInfo) (any, error)
	AllocateTexture(info TextureInfo) (any, error)
	Free(native any)
}
