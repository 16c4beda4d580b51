package dxvk

import "github.com/jamestiotio/dxvk/gpucore"

// Save/restore.
//
// Internal operations that draw with temporary state push a snapshot of the
// complete binding table, mutate live state through the normal setters and
// pop the snapshot afterwards. Restoring also goes through the setters, so
// hazards are resolved and dirty categories set exactly as for application
// calls, and slots that already hold the saved binding stay untouched.

// saveState pushes an owned copy of the current state.
func (c *commonContext[F]) saveState() {
	c.saved = append(c.saved, c.state.clone())
}

// restoreState pops the most recent snapshot and re-establishes it.
// Restoring without a matching save is a programming error and panics.
func (c *commonContext[F]) restoreState() {
	if len(c.saved) == 0 {
		panic("dxvk: restore without matching save")
	}
	s := c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
	c.restoreSnapshot(s)
	s.release()
}

// restoreSnapshot makes the live state equal to s by value. s keeps its
// references.
func (c *commonContext[F]) restoreSnapshot(s *contextState) {
	// Outputs first, so that restored inputs win any transient conflict
	// with outputs bound during the internal operation.
	pixelUAVs, pixelCounts := uavArrays(&s.stages[gpucore.StagePixel].uavs)
	c.setRenderTargetsAndUAVs(maxRenderTargets, s.om.rtvs.slots, s.om.dsv,
		0, uint32(len(pixelUAVs)), pixelUAVs, pixelCounts)

	soBufs := make([]*Buffer, s.so.len())
	soOffsets := make([]uint32, s.so.len())
	for i, b := range s.so.slots {
		soBufs[i], soOffsets[i] = b.buffer, b.offset
	}
	c.setStreamOutTargets(soBufs, soOffsets)

	for i := range s.stages {
		stage := gpucore.Stage(i)
		st := &s.stages[i]
		c.setShader(stage, st.shader, st.instances)

		cbBufs := make([]*Buffer, st.cbs.len())
		cbFirst := make([]uint32, st.cbs.len())
		cbCount := make([]uint32, st.cbs.len())
		for j, b := range st.cbs.slots {
			cbBufs[j], cbFirst[j], cbCount[j] = b.buffer, b.first, b.count
		}
		c.setConstantBuffers(stage, 0, cbBufs, cbFirst, cbCount)
		c.setShaderResources(stage, 0, st.srvs.slots)
		c.setSamplers(stage, 0, st.samplers.slots)
	}
	csUAVs, csCounts := uavArrays(&s.stages[gpucore.StageCompute].uavs)
	c.setUnorderedAccessViews(0, csUAVs, csCounts)

	c.setInputLayout(s.ia.layout)
	c.setPrimitiveTopology(s.ia.topology)
	vbBufs := make([]*Buffer, s.ia.vbs.len())
	vbStrides := make([]uint32, s.ia.vbs.len())
	vbOffsets := make([]uint32, s.ia.vbs.len())
	for i, b := range s.ia.vbs.slots {
		vbBufs[i], vbStrides[i], vbOffsets[i] = b.buffer, b.stride, b.offset
	}
	c.setVertexBuffers(0, vbBufs, vbStrides, vbOffsets)
	c.setIndexBuffer(s.ia.index.buffer, s.ia.index.format, s.ia.index.offset)

	factor := s.om.blendFactor
	c.setBlendState(s.om.blend, &factor, s.om.sampleMask)
	c.setDepthStencilState(s.om.depthStencil, s.om.stencilRef)

	c.setRasterizerState(s.rs.state)
	c.setViewports(s.rs.viewports[:s.rs.numViewports])
	c.setScissorRects(s.rs.scissors[:s.rs.numScissors])

	c.setPredication(s.pr.predicate, s.pr.value)
}

func uavArrays(t *slotTable[uavBinding]) ([]*UnorderedAccessView, []uint32) {
	views := make([]*UnorderedAccessView, t.len())
	counts := make([]uint32, t.len())
	for i, b := range t.slots {
		views[i], counts[i] = b.view, b.counter
	}
	return views, counts
}
