package dxvk

import (
	"math/bits"
	"strings"

	"github.com/jamestiotio/dxvk/gpucore"
)

// DirtyFlags is the set of state categories changed since the last flush.
type DirtyFlags uint64

// Fixed-function categories. Per-stage categories follow, see DirtyShader.
const (
	DirtyInputLayout DirtyFlags = 1 << iota
	DirtyTopology
	DirtyVertexBuffers
	DirtyIndexBuffer
	DirtyBlend
	DirtyBlendFactor
	DirtyDepthStencil
	DirtyStencilRef
	DirtyRasterizer
	DirtyViewports
	DirtyFramebuffer
	DirtyStreamOut
	DirtyPredication
	DirtyGraphicsUAVs
	DirtyComputeUAVs

	dirtyStageShift = iota
)

// Per-stage categories, four bits per stage.
const (
	stageShader = iota
	stageConstantBuffers
	stageShaderResources
	stageSamplers
	stageBitCount
)

func stageBit(s gpucore.Stage, kind int) DirtyFlags {
	return 1 << (dirtyStageShift + int(s)*stageBitCount + kind)
}

// DirtyShader is the shader category of stage s.
func DirtyShader(s gpucore.Stage) DirtyFlags { return stageBit(s, stageShader) }

// DirtyConstantBuffers is the constant buffer category of stage s.
func DirtyConstantBuffers(s gpucore.Stage) DirtyFlags { return stageBit(s, stageConstantBuffers) }

// DirtyShaderResources is the shader resource category of stage s.
func DirtyShaderResources(s gpucore.Stage) DirtyFlags { return stageBit(s, stageShaderResources) }

// DirtySamplers is the sampler category of stage s.
func DirtySamplers(s gpucore.Stage) DirtyFlags { return stageBit(s, stageSamplers) }

// dirtyStage returns all categories of stage s.
func dirtyStage(s gpucore.Stage) DirtyFlags {
	return DirtyFlags((1<<stageBitCount)-1) << (dirtyStageShift + int(s)*stageBitCount)
}

// DirtyAll is every category.
const DirtyAll = DirtyFlags(1)<<(dirtyStageShift+gpucore.StageCount*stageBitCount) - 1

var (
	// dirtyGraphics is flushed before draws.
	dirtyGraphics = DirtyAll &^ (dirtyStage(gpucore.StageCompute) | DirtyComputeUAVs)

	// dirtyCompute is flushed before dispatches.
	dirtyCompute = dirtyStage(gpucore.StageCompute) | DirtyComputeUAVs | DirtyPredication
)

var dirtyNames = [...]string{
	"InputLayout", "Topology", "VertexBuffers", "IndexBuffer", "Blend",
	"BlendFactor", "DepthStencil", "StencilRef", "Rasterizer", "Viewports",
	"Framebuffer", "StreamOut", "Predication", "GraphicsUAVs", "ComputeUAVs",
}

var stageKindNames = [...]string{"Shader", "ConstantBuffers", "ShaderResources", "Samplers"}

// String lists the set categories separated by '|'.
func (f DirtyFlags) String() string {
	if f == 0 {
		return "0"
	}
	var sb strings.Builder
	for f != 0 {
		i := bits.TrailingZeros64(uint64(f))
		f &^= 1 << i
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		if i < dirtyStageShift {
			sb.WriteString(dirtyNames[i])
			continue
		}
		j := i - dirtyStageShift
		sb.WriteString(gpucore.Stage(j / stageBitCount).String())
		sb.WriteString(stageKindNames[j%stageBitCount])
	}
	return sb.String()
}
