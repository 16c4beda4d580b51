package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Device is the part of hal.Device the allocator uses.
type Device interface {
	CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error)
	DestroyBuffer(buffer hal.Buffer)
	CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error)
	DestroyTexture(texture hal.Texture)
}

// Allocator creates HAL buffers and textures for device resources.
// It implements gpucore.Allocator.
type Allocator struct {
	dev Device
}

var _ gpucore.Allocator = (*Allocator)(nil)

// NewAllocator creates an allocator over a HAL device.
func NewAllocator(dev Device) *Allocator {
	return &Allocator{dev: dev}
}

// AllocateBuffer creates a HAL buffer.
func (a *Allocator) AllocateBuffer(info gpucore.BufferInfo) (any, error) {
	b, err := a.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: info.Label,
		Size:  info.Size,
		Usage: info.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer: %w", err)
	}
	return b, nil
}

// AllocateTexture creates a HAL texture.
func (a *Allocator) AllocateTexture(info gpucore.TextureInfo) (any, error) {
	t, err := a.dev.CreateTexture(&hal.TextureDescriptor{
		Label: info.Label,
		Size: hal.Extent3D{
			Width:              info.Size.Width,
			Height:             info.Size.Height,
			DepthOrArrayLayers: info.Size.DepthOrArrayLayers,
		},
		MipLevelCount: info.MipLevels,
		SampleCount:   info.SampleCount,
		Dimension:     info.Dimension,
		Format:        info.Format,
		Usage:         info.Usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}
	return t, nil
}

// Free destroys a handle returned by this allocator.
func (a *Allocator) Free(native any) {
	// Textures also satisfy hal.Buffer, so they are matched first.
	switch h := native.(type) {
	case hal.Texture:
		a.dev.DestroyTexture(h)
	case hal.Buffer:
		a.dev.DestroyBuffer(h)
	}
}
