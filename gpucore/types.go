package gpucore

import "github.com/gogpu/gputypes"

// Stage identifies a programmable pipeline stage.
// Each stage owns independent binding tables; slot numbering is stage-local.
type Stage uint8

// Pipeline stages in pipeline order.
const (
	StageVertex Stage = iota
	StageHull
	StageDomain
	StageGeometry
	StagePixel
	StageCompute
)

// StageCount is the number of pipeline stages.
const StageCount = int(StageCompute) + 1

var stageNames = [...]string{
	StageVertex:   "Vertex",
	StageHull:     "Hull",
	StageDomain:   "Domain",
	StageGeometry: "Geometry",
	StagePixel:    "Pixel",
	StageCompute:  "Compute",
}

// String returns the stage name.
func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "Unknown"
}

// IsGraphics reports whether s belongs to the graphics pipeline.
func (s Stage) IsGraphics() bool {
	return s < StageCompute
}

// GraphicsStages lists the graphics stages in pipeline order.
var GraphicsStages = [...]Stage{StageVertex, StageHull, StageDomain, StageGeometry, StagePixel}

// Object is a device object handed to a Sink.
type Object interface {
	// ObjectID returns a process-unique identifier.
	ObjectID() uint64

	// Native returns the backend handle produced by the Allocator, or nil.
	Native() any
}

// ConstantSize is the size in bytes of one shader constant.
const ConstantSize = 16

// ConstantBufferRange is a constant buffer bound with a sub-range.
// FirstConstant and NumConstants are expressed in units of 16-byte constants.
type ConstantBufferRange struct {
	Buffer        Object
	FirstConstant uint32
	NumConstants  uint32
}

// ByteOffset returns the range start in bytes.
func (r ConstantBufferRange) ByteOffset() uint64 {
	return uint64(r.FirstConstant) * ConstantSize
}

// ByteSize returns the range length in bytes.
func (r ConstantBufferRange) ByteSize() uint64 {
	return uint64(r.NumConstants) * ConstantSize
}

// VertexBufferRange is a vertex buffer binding.
type VertexBufferRange struct {
	Buffer Object
	Stride uint32
	Offset uint32
}

// IndexBufferRange is the index buffer binding.
type IndexBufferRange struct {
	Buffer Object
	Format gputypes.IndexFormat
	Offset uint32
}

// StreamOutRange is a stream-output target binding.
type StreamOutRange struct {
	Buffer Object
	Offset uint32
}

// KeepCounter leaves the hidden counter of an unordered access view unchanged.
const KeepCounter = ^uint32(0)

// UnorderedAccessBinding is an unordered access view with its pending
// initial counter value.
type UnorderedAccessBinding struct {
	View    Object
	Counter uint32
}

// Viewport is a rasterizer viewport.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is a scissor rectangle. Right and Bottom are exclusive.
type Rect struct {
	Left, Top     int32
	Right, Bottom int32
}

// Width returns the rectangle width, or 0 when empty.
func (r Rect) Width() uint32 {
	if r.Right <= r.Left {
		return 0
	}
	return uint32(r.Right - r.Left)
}

// Height returns the rectangle height, or 0 when empty.
func (r Rect) Height() uint32 {
	if r.Bottom <= r.Top {
		return 0
	}
	return uint32(r.Bottom - r.Top)
}

// Framebuffer describes the bound render targets and depth-stencil view.
// Colors has one entry per render target slot up to the highest bound slot;
// unbound slots are nil with an undefined format.
type Framebuffer struct {
	Colors       []Object
	ColorFormats []gputypes.TextureFormat
	Depth        Object
	DepthFormat  gputypes.TextureFormat
	SampleCount  uint32
}

// DrawArgs are the arguments of a non-indexed draw.
type DrawArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// DrawIndexedArgs are the arguments of an indexed draw.
type DrawIndexedArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}
