package dxvk

import (
	"log/slog"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Hazard resolution.
//
// A resource must never be readable through a shader resource view while it
// is writable through a render target, depth-stencil view, unordered access
// view or stream-output target of the same context. The newest binding wins:
// the older conflicting binding is unbound and its category marked dirty.
// Conflicts are detected per parent resource, so views of different
// subresources of one resource still conflict. Stages do not matter: a
// compute shader resource conflicts with a render target as much as a pixel
// shader resource conflicts with a compute UAV.

// resolveSrvHazards resolves conflicts for a shader resource about to be
// bound at stage. By default the aliasing outputs are evicted and the view is
// bound. With dropHazardousInputs the outputs are kept and the view must not
// be bound; the return value reports whether to bind it.
func (c *commonContext[F]) resolveSrvHazards(stage gpucore.Stage, srv *ShaderResourceView) bool {
	if srv == nil || !c.state.outputsBound() {
		return true
	}
	id := srv.resourceID()
	if c.dropHazardousInputs {
		if c.testSrvHazards(id) {
			c.reportHazard("shader resource", stage, 0, id)
			return false
		}
		return true
	}
	c.evictRenderTargets(id)
	c.evictDepthStencil(id)
	c.evictUAVs(gpucore.StagePixel, id)
	c.evictUAVs(gpucore.StageCompute, id)
	c.evictStreamOut(id)
	return true
}

// testSrvHazards reports whether resource id is bound as any output.
func (c *commonContext[F]) testSrvHazards(id uint64) bool {
	s := c.state
	t := &s.om.rtvs
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].resourceID() == id {
			return true
		}
	}
	if s.om.dsv != nil && s.om.dsv.resourceID() == id {
		return true
	}
	so := &s.so
	for i := so.bound.Next(0); i < gpucore.MaxSlots; i = so.bound.Next(i + 1) {
		if so.slots[i].buffer.ObjectID() == id {
			return true
		}
	}
	return c.uavAliases(gpucore.StagePixel, id) || c.uavAliases(gpucore.StageCompute, id)
}

func (c *commonContext[F]) uavAliases(stage gpucore.Stage, id uint64) bool {
	t := &c.state.stages[stage].uavs
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].view.resourceID() == id {
			return true
		}
	}
	return false
}

// testRtvUavHazards reports whether the render targets and unordered access
// views of one output-merger call alias each other. Such a call is dropped.
func testRtvUavHazards(rtvs []*RenderTargetView, dsv *DepthStencilView, uavs []*UnorderedAccessView) bool {
	for _, uav := range uavs {
		if uav == nil {
			continue
		}
		id := uav.resourceID()
		for _, rtv := range rtvs {
			if rtv != nil && rtv.resourceID() == id {
				return true
			}
		}
		if dsv != nil && dsv.resourceID() == id {
			return true
		}
	}
	return false
}

// resolveOutputHazards evicts shader resources of every stage aliasing a
// newly bound output.
func (c *commonContext[F]) resolveOutputHazards(id uint64) {
	if !c.state.inputsBound() {
		return
	}
	for st := range gpucore.Stage(gpucore.StageCount) {
		c.evictSRVs(st, id)
	}
}

// resolveCsUavHazards evicts shader resources aliasing a newly bound compute
// unordered access view.
func (c *commonContext[F]) resolveCsUavHazards(id uint64) {
	c.resolveOutputHazards(id)
}

// resolveOmUavHazards evicts render targets and the depth-stencil view
// aliasing a newly bound output-merger unordered access view, then shader
// resources.
func (c *commonContext[F]) resolveOmUavHazards(id uint64) {
	c.evictRenderTargets(id)
	c.evictDepthStencil(id)
	c.resolveOutputHazards(id)
}

// resolveRtvHazards evicts output-merger unordered access views aliasing a
// newly bound render target or depth-stencil view, then shader resources.
func (c *commonContext[F]) resolveRtvHazards(id uint64) {
	c.evictUAVs(gpucore.StagePixel, id)
	c.resolveOutputHazards(id)
}

func (c *commonContext[F]) evictSRVs(stage gpucore.Stage, id uint64) {
	t := &c.state.stages[stage].srvs
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].resourceID() == id && t.unbind(i) {
			c.dirty |= DirtyShaderResources(stage)
			c.reportHazard("shader resource", stage, i, id)
		}
	}
}

func (c *commonContext[F]) evictUAVs(stage gpucore.Stage, id uint64) {
	t := &c.state.stages[stage].uavs
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].view.resourceID() == id && t.unbind(i) {
			c.dirty |= uavDirtyFlag(stage)
			c.reportHazard("unordered access view", stage, i, id)
		}
	}
}

func (c *commonContext[F]) evictRenderTargets(id uint64) {
	t := &c.state.om.rtvs
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].resourceID() == id && t.unbind(i) {
			c.dirty |= DirtyFramebuffer
			c.reportHazard("render target", gpucore.StagePixel, i, id)
		}
	}
}

func (c *commonContext[F]) evictDepthStencil(id uint64) {
	if dsv := c.state.om.dsv; dsv != nil && dsv.resourceID() == id {
		swapRef(&c.state.om.dsv, nil)
		c.dirty |= DirtyFramebuffer
		c.reportHazard("depth stencil view", gpucore.StagePixel, 0, id)
	}
}

func (c *commonContext[F]) evictStreamOut(id uint64) {
	t := &c.state.so
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		if t.slots[i].buffer.ObjectID() == id && t.unbind(i) {
			c.dirty |= DirtyStreamOut
			c.reportHazard("stream-out target", gpucore.StageGeometry, i, id)
		}
	}
}

func uavDirtyFlag(stage gpucore.Stage) DirtyFlags {
	if stage == gpucore.StageCompute {
		return DirtyComputeUAVs
	}
	return DirtyGraphicsUAVs
}

func (c *commonContext[F]) reportHazard(kind string, stage gpucore.Stage, slot uint32, id uint64) {
	c.hazards++
	if !c.reportHazards {
		return
	}
	Logger().Warn("dxvk: hazard evicted binding",
		slog.String("binding", kind),
		slog.String("stage", stage.String()),
		slog.Uint64("slot", uint64(slot)),
		slog.Uint64("resource", id))
}
