package recording

import "github.com/jamestiotio/dxvk/gpucore"

// ResourcePool stores the objects referenced by recorded commands.
// Objects are deduplicated by ObjectID, so an object bound many times
// occupies one entry.
//
// The pool borrows objects: it takes no reference on them. A Recording is
// only valid while the objects it references are alive.
//
// ResourcePool is not safe for concurrent use. If concurrent access is needed,
// external synchronization must be provided.
type ResourcePool struct {
	objects []gpucore.Object
	index   map[uint64]ObjectRef
}

// NewResourcePool creates an empty resource pool with pre-allocated capacity.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		objects: make([]gpucore.Object, 0, 64),
		index:   make(map[uint64]ObjectRef, 64),
	}
}

// AddObject adds an object to the pool and returns its reference.
// Adding an object already in the pool returns the existing reference.
// A nil object yields NilRef.
func (p *ResourcePool) AddObject(o gpucore.Object) ObjectRef {
	if o == nil {
		return NilRef
	}
	if ref, ok := p.index[o.ObjectID()]; ok {
		return ref
	}
	p.objects = append(p.objects, o)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	ref := ObjectRef(uint32(len(p.objects) - 1))
	p.index[o.ObjectID()] = ref
	return ref
}

// GetObject returns the object for the given reference.
// Returns nil if the reference is invalid.
func (p *ResourcePool) GetObject(ref ObjectRef) gpucore.Object {
	if int(ref) >= len(p.objects) {
		return nil
	}
	return p.objects[ref]
}

// Lookup returns the reference of a pooled object by ID.
func (p *ResourcePool) Lookup(id uint64) (ObjectRef, bool) {
	ref, ok := p.index[id]
	return ref, ok
}

// ObjectCount returns the number of objects in the pool.
func (p *ResourcePool) ObjectCount() int {
	return len(p.objects)
}

// Clear removes all objects from the pool.
// This does not release the underlying memory; use NewResourcePool for that.
func (p *ResourcePool) Clear() {
	clear(p.objects)
	p.objects = p.objects[:0]
	clear(p.index)
}

// Clone creates a copy of the resource pool. Objects are shared.
func (p *ResourcePool) Clone() *ResourcePool {
	clone := &ResourcePool{
		objects: make([]gpucore.Object, len(p.objects)),
		index:   make(map[uint64]ObjectRef, len(p.index)),
	}
	copy(clone.objects, p.objects)
	for id, ref := range p.index {
		clone.index[id] = ref
	}
	return clone
}
