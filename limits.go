package dxvk

import "github.com/jamestiotio/dxvk/gpucore"

// Class is a binding category.
type Class uint8

// Binding classes.
const (
	ClassConstantBuffer Class = iota
	ClassShaderResource
	ClassSampler
	ClassUnorderedAccess
	ClassRenderTarget
	ClassVertexBuffer
	ClassStreamOut
	ClassViewport
	ClassClassInstance
	classCount
)

var classNames = [...]string{
	ClassConstantBuffer:  "ConstantBuffer",
	ClassShaderResource:  "ShaderResource",
	ClassSampler:         "Sampler",
	ClassUnorderedAccess: "UnorderedAccess",
	ClassRenderTarget:    "RenderTarget",
	ClassVertexBuffer:    "VertexBuffer",
	ClassStreamOut:       "StreamOut",
	ClassViewport:        "Viewport",
	ClassClassInstance:   "ClassInstance",
}

// String returns the class name.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "Unknown"
}

// D3D11 slot counts.
const (
	maxConstantBuffers     = 14
	maxShaderResources     = 128
	maxSamplers            = 16
	maxUnorderedAccess     = 64
	maxRenderTargets       = 8
	maxVertexBuffers       = 32
	maxStreamOutTargets    = 4
	maxViewports           = 16
	maxClassInstances      = 256
	maxConstantsPerBinding = 4096
)

// maxStateObjects is the number of unique state objects of one kind a
// device keeps deduplicated.
const maxStateObjects = 4096

// stageLimits holds the per-stage slot counts of the stage-indexed classes.
var stageLimits = [gpucore.StageCount][ClassUnorderedAccess + 1]uint32{
	gpucore.StageVertex:   {maxConstantBuffers, maxShaderResources, maxSamplers, 0},
	gpucore.StageHull:     {maxConstantBuffers, maxShaderResources, maxSamplers, 0},
	gpucore.StageDomain:   {maxConstantBuffers, maxShaderResources, maxSamplers, 0},
	gpucore.StageGeometry: {maxConstantBuffers, maxShaderResources, maxSamplers, 0},
	gpucore.StagePixel:    {maxConstantBuffers, maxShaderResources, maxSamplers, maxUnorderedAccess},
	gpucore.StageCompute:  {maxConstantBuffers, maxShaderResources, maxSamplers, maxUnorderedAccess},
}

// Limit returns the number of slots of class c at stage s.
// Pixel-stage unordered access views are the output-merger views.
// Classes that are not stage-indexed return the same count for every stage.
func Limit(s gpucore.Stage, c Class) uint32 {
	if int(s) >= gpucore.StageCount {
		return 0
	}
	switch c {
	case ClassConstantBuffer, ClassShaderResource, ClassSampler, ClassUnorderedAccess:
		return stageLimits[s][c]
	case ClassRenderTarget:
		return maxRenderTargets
	case ClassVertexBuffer:
		return maxVertexBuffers
	case ClassStreamOut:
		return maxStreamOutTargets
	case ClassViewport:
		return maxViewports
	case ClassClassInstance:
		return maxClassInstances
	}
	return 0
}

// clampRange clips [start, start+n) to limit and returns the usable count.
func clampRange(start, n, limit uint32) uint32 {
	if start >= limit {
		return 0
	}
	return min(n, limit-start)
}
