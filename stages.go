package dxvk

import "github.com/jamestiotio/dxvk/gpucore"

// Per-stage entry points. Each forwards to the stage-indexed method of the
// same name.

// Vertex stage.

// VSSetShader binds the vertex shader and its class instances.
func (c *commonContext[F]) VSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StageVertex, sh, instances)
}

// VSGetShader returns the vertex shader and its class instances.
func (c *commonContext[F]) VSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StageVertex) }

// VSSetConstantBuffers binds whole vertex constant buffers starting at slot start.
func (c *commonContext[F]) VSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StageVertex, start, bufs)
}

// VSSetConstantBuffers1 binds vertex constant buffer ranges starting at slot start.
func (c *commonContext[F]) VSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StageVertex, start, bufs, first, count)
}

// VSGetConstantBuffers returns n vertex constant buffers starting at slot start.
func (c *commonContext[F]) VSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StageVertex, start, n)
}

// VSGetConstantBuffers1 returns n vertex constant buffers and their ranges.
func (c *commonContext[F]) VSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StageVertex, start, n)
}

// VSSetShaderResources binds vertex shader resource views starting at slot start.
func (c *commonContext[F]) VSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StageVertex, start, views)
}

// VSGetShaderResources returns n vertex shader resource views starting at slot start.
func (c *commonContext[F]) VSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StageVertex, start, n)
}

// VSSetSamplers binds vertex samplers starting at slot start.
func (c *commonContext[F]) VSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StageVertex, start, samplers)
}

// VSGetSamplers returns n vertex samplers starting at slot start.
func (c *commonContext[F]) VSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StageVertex, start, n)
}

// Hull stage.

// HSSetShader binds the hull shader and its class instances.
func (c *commonContext[F]) HSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StageHull, sh, instances)
}

// HSGetShader returns the hull shader and its class instances.
func (c *commonContext[F]) HSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StageHull) }

// HSSetConstantBuffers binds whole hull constant buffers starting at slot start.
func (c *commonContext[F]) HSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StageHull, start, bufs)
}

// HSSetConstantBuffers1 binds hull constant buffer ranges starting at slot start.
func (c *commonContext[F]) HSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StageHull, start, bufs, first, count)
}

// HSGetConstantBuffers returns n hull constant buffers starting at slot start.
func (c *commonContext[F]) HSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StageHull, start, n)
}

// HSGetConstantBuffers1 returns n hull constant buffers and their ranges.
func (c *commonContext[F]) HSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StageHull, start, n)
}

// HSSetShaderResources binds hull shader resource views starting at slot start.
func (c *commonContext[F]) HSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StageHull, start, views)
}

// HSGetShaderResources returns n hull shader resource views starting at slot start.
func (c *commonContext[F]) HSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StageHull, start, n)
}

// HSSetSamplers binds hull samplers starting at slot start.
func (c *commonContext[F]) HSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StageHull, start, samplers)
}

// HSGetSamplers returns n hull samplers starting at slot start.
func (c *commonContext[F]) HSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StageHull, start, n)
}

// Domain stage.

// DSSetShader binds the domain shader and its class instances.
func (c *commonContext[F]) DSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StageDomain, sh, instances)
}

// DSGetShader returns the domain shader and its class instances.
func (c *commonContext[F]) DSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StageDomain) }

// DSSetConstantBuffers binds whole domain constant buffers starting at slot start.
func (c *commonContext[F]) DSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StageDomain, start, bufs)
}

// DSSetConstantBuffers1 binds domain constant buffer ranges starting at slot start.
func (c *commonContext[F]) DSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StageDomain, start, bufs, first, count)
}

// DSGetConstantBuffers returns n domain constant buffers starting at slot start.
func (c *commonContext[F]) DSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StageDomain, start, n)
}

// DSGetConstantBuffers1 returns n domain constant buffers and their ranges.
func (c *commonContext[F]) DSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StageDomain, start, n)
}

// DSSetShaderResources binds domain shader resource views starting at slot start.
func (c *commonContext[F]) DSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StageDomain, start, views)
}

// DSGetShaderResources returns n domain shader resource views starting at slot start.
func (c *commonContext[F]) DSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StageDomain, start, n)
}

// DSSetSamplers binds domain samplers starting at slot start.
func (c *commonContext[F]) DSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StageDomain, start, samplers)
}

// DSGetSamplers returns n domain samplers starting at slot start.
func (c *commonContext[F]) DSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StageDomain, start, n)
}

// Geometry stage.

// GSSetShader binds the geometry shader and its class instances.
func (c *commonContext[F]) GSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StageGeometry, sh, instances)
}

// GSGetShader returns the geometry shader and its class instances.
func (c *commonContext[F]) GSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StageGeometry) }

// GSSetConstantBuffers binds whole geometry constant buffers starting at slot start.
func (c *commonContext[F]) GSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StageGeometry, start, bufs)
}

// GSSetConstantBuffers1 binds geometry constant buffer ranges starting at slot start.
func (c *commonContext[F]) GSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StageGeometry, start, bufs, first, count)
}

// GSGetConstantBuffers returns n geometry constant buffers starting at slot start.
func (c *commonContext[F]) GSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StageGeometry, start, n)
}

// GSGetConstantBuffers1 returns n geometry constant buffers and their ranges.
func (c *commonContext[F]) GSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StageGeometry, start, n)
}

// GSSetShaderResources binds geometry shader resource views starting at slot start.
func (c *commonContext[F]) GSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StageGeometry, start, views)
}

// GSGetShaderResources returns n geometry shader resource views starting at slot start.
func (c *commonContext[F]) GSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StageGeometry, start, n)
}

// GSSetSamplers binds geometry samplers starting at slot start.
func (c *commonContext[F]) GSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StageGeometry, start, samplers)
}

// GSGetSamplers returns n geometry samplers starting at slot start.
func (c *commonContext[F]) GSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StageGeometry, start, n)
}

// Pixel stage.

// PSSetShader binds the pixel shader and its class instances.
func (c *commonContext[F]) PSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StagePixel, sh, instances)
}

// PSGetShader returns the pixel shader and its class instances.
func (c *commonContext[F]) PSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StagePixel) }

// PSSetConstantBuffers binds whole pixel constant buffers starting at slot start.
func (c *commonContext[F]) PSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StagePixel, start, bufs)
}

// PSSetConstantBuffers1 binds pixel constant buffer ranges starting at slot start.
func (c *commonContext[F]) PSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StagePixel, start, bufs, first, count)
}

// PSGetConstantBuffers returns n pixel constant buffers starting at slot start.
func (c *commonContext[F]) PSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StagePixel, start, n)
}

// PSGetConstantBuffers1 returns n pixel constant buffers and their ranges.
func (c *commonContext[F]) PSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StagePixel, start, n)
}

// PSSetShaderResources binds pixel shader resource views starting at slot start.
func (c *commonContext[F]) PSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StagePixel, start, views)
}

// PSGetShaderResources returns n pixel shader resource views starting at slot start.
func (c *commonContext[F]) PSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StagePixel, start, n)
}

// PSSetSamplers binds pixel samplers starting at slot start.
func (c *commonContext[F]) PSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StagePixel, start, samplers)
}

// PSGetSamplers returns n pixel samplers starting at slot start.
func (c *commonContext[F]) PSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StagePixel, start, n)
}

// Compute stage.

// CSSetShader binds the compute shader and its class instances.
func (c *commonContext[F]) CSSetShader(sh *Shader, instances []*ClassInstance) {
	c.SetShader(gpucore.StageCompute, sh, instances)
}

// CSGetShader returns the compute shader and its class instances.
func (c *commonContext[F]) CSGetShader() (*Shader, []*ClassInstance) { return c.GetShader(gpucore.StageCompute) }

// CSSetConstantBuffers binds whole compute constant buffers starting at slot start.
func (c *commonContext[F]) CSSetConstantBuffers(start uint32, bufs []*Buffer) {
	c.SetConstantBuffers(gpucore.StageCompute, start, bufs)
}

// CSSetConstantBuffers1 binds compute constant buffer ranges starting at slot start.
func (c *commonContext[F]) CSSetConstantBuffers1(start uint32, bufs []*Buffer, first, count []uint32) {
	c.SetConstantBuffers1(gpucore.StageCompute, start, bufs, first, count)
}

// CSGetConstantBuffers returns n compute constant buffers starting at slot start.
func (c *commonContext[F]) CSGetConstantBuffers(start, n uint32) []*Buffer {
	return c.GetConstantBuffers(gpucore.StageCompute, start, n)
}

// CSGetConstantBuffers1 returns n compute constant buffers and their ranges.
func (c *commonContext[F]) CSGetConstantBuffers1(start, n uint32) ([]*Buffer, []uint32, []uint32) {
	return c.GetConstantBuffers1(gpucore.StageCompute, start, n)
}

// CSSetShaderResources binds compute shader resource views starting at slot start.
func (c *commonContext[F]) CSSetShaderResources(start uint32, views []*ShaderResourceView) {
	c.SetShaderResources(gpucore.StageCompute, start, views)
}

// CSGetShaderResources returns n compute shader resource views starting at slot start.
func (c *commonContext[F]) CSGetShaderResources(start, n uint32) []*ShaderResourceView {
	return c.GetShaderResources(gpucore.StageCompute, start, n)
}

// CSSetSamplers binds compute samplers starting at slot start.
func (c *commonContext[F]) CSSetSamplers(start uint32, samplers []*SamplerState) {
	c.SetSamplers(gpucore.StageCompute, start, samplers)
}

// CSGetSamplers returns n compute samplers starting at slot start.
func (c *commonContext[F]) CSGetSamplers(start, n uint32) []*SamplerState {
	return c.GetSamplers(gpucore.StageCompute, start, n)
}
