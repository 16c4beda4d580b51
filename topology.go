package dxvk

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Topology is a D3D11 primitive topology.
type Topology uint32

// Primitive topologies. Patch lists with 1 to 32 control points are
// TopologyPatchList1 + n - 1.
const (
	TopologyUndefined             Topology = 0
	TopologyPointList             Topology = 1
	TopologyLineList              Topology = 2
	TopologyLineStrip             Topology = 3
	TopologyTriangleList          Topology = 4
	TopologyTriangleStrip         Topology = 5
	TopologyLineListAdjacency     Topology = 10
	TopologyLineStripAdjacency    Topology = 11
	TopologyTriangleListAdjacency Topology = 12
	TopologyTriangleStripAdj      Topology = 13
	TopologyPatchList1            Topology = 33
	TopologyPatchList32           Topology = 64
)

// String returns a readable name.
func (t Topology) String() string {
	switch t {
	case TopologyUndefined:
		return "Undefined"
	case TopologyPointList:
		return "PointList"
	case TopologyLineList:
		return "LineList"
	case TopologyLineStrip:
		return "LineStrip"
	case TopologyTriangleList:
		return "TriangleList"
	case TopologyTriangleStrip:
		return "TriangleStrip"
	case TopologyLineListAdjacency:
		return "LineListAdj"
	case TopologyLineStripAdjacency:
		return "LineStripAdj"
	case TopologyTriangleListAdjacency:
		return "TriangleListAdj"
	case TopologyTriangleStripAdj:
		return "TriangleStripAdj"
	}
	if n := t.PatchControlPoints(); n > 0 {
		return fmt.Sprintf("PatchList%d", n)
	}
	return "Unknown"
}

// PatchControlPoints returns the control point count of a patch list, or 0.
func (t Topology) PatchControlPoints() uint32 {
	if t >= TopologyPatchList1 && t <= TopologyPatchList32 {
		return uint32(t-TopologyPatchList1) + 1
	}
	return 0
}

// IsStrip reports whether t is a strip topology using primitive restart.
func (t Topology) IsStrip() bool {
	switch t {
	case TopologyLineStrip, TopologyTriangleStrip, TopologyLineStripAdjacency, TopologyTriangleStripAdj:
		return true
	}
	return false
}

// inputAssembly derives the low-level input assembly state. Undefined and
// unknown topologies map to a point list, which draws nothing useful but is
// valid.
func (t Topology) inputAssembly(indexFormat gputypes.IndexFormat) gpucore.InputAssembly {
	ia := gpucore.InputAssembly{Topology: gputypes.PrimitiveTopologyPointList}
	switch t {
	case TopologyLineList, TopologyLineListAdjacency:
		ia.Topology = gputypes.PrimitiveTopologyLineList
	case TopologyLineStrip, TopologyLineStripAdjacency:
		ia.Topology = gputypes.PrimitiveTopologyLineStrip
	case TopologyTriangleList, TopologyTriangleListAdjacency:
		ia.Topology = gputypes.PrimitiveTopologyTriangleList
	case TopologyTriangleStrip, TopologyTriangleStripAdj:
		ia.Topology = gputypes.PrimitiveTopologyTriangleStrip
	}
	switch t {
	case TopologyLineListAdjacency, TopologyLineStripAdjacency,
		TopologyTriangleListAdjacency, TopologyTriangleStripAdj:
		ia.Adjacency = true
	}
	if n := t.PatchControlPoints(); n > 0 {
		ia.PatchControlPoints = n
	}
	if t.IsStrip() {
		ia.StripIndexFormat = indexFormat
	}
	return ia
}
