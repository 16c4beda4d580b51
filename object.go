package dxvk

import (
	"sync/atomic"

	"github.com/jamestiotio/dxvk/gpucore"
)

// Object is a reference-counted device child.
//
// Objects are created with one reference owned by the caller. Every binding
// slot holding an object contributes one more reference, as does every
// deferred command that captured it. The object is destroyed when the count
// drops to zero.
type Object interface {
	gpucore.Object

	// AddRef adds a reference and returns the new count.
	AddRef() uint32

	// Release drops a reference and returns the new count.
	// Releasing an object with no references panics.
	Release() uint32

	// RefCount returns the current count.
	RefCount() uint32
}

var nextObjectID atomic.Uint64

// deviceChild implements Object. It is embedded by every device object.
type deviceChild struct {
	id      uint64
	refs    atomic.Int64
	native  any
	destroy func()
}

func (o *deviceChild) init(native any, destroy func()) {
	o.id = nextObjectID.Add(1)
	o.refs.Store(1)
	o.native = native
	o.destroy = destroy
}

// ObjectID returns the process-unique object identifier.
func (o *deviceChild) ObjectID() uint64 { return o.id }

// Native returns the allocator handle, or nil.
func (o *deviceChild) Native() any { return o.native }

// AddRef adds a reference.
func (o *deviceChild) AddRef() uint32 {
	return uint32(o.refs.Add(1))
}

// tryAddRef adds a reference unless the count already dropped to zero.
func (o *deviceChild) tryAddRef() bool {
	for {
		n := o.refs.Load()
		if n <= 0 {
			return false
		}
		if o.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference.
func (o *deviceChild) Release() uint32 {
	n := o.refs.Add(-1)
	if n < 0 {
		panic("dxvk: object released more times than referenced")
	}
	if n == 0 && o.destroy != nil {
		o.destroy()
	}
	return uint32(n)
}

// RefCount returns the current reference count.
func (o *deviceChild) RefCount() uint32 {
	return uint32(o.refs.Load())
}

// asObject converts a possibly nil object pointer to an Object interface
// without producing a typed nil.
func asObject[P interface {
	*E
	Object
}, E any](p P) Object {
	if p == nil {
		return nil
	}
	return p
}

// sameObject reports whether a and b are the same object.
func sameObject(a, b gpucore.Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ObjectID() == b.ObjectID()
}

func addRef(o Object) {
	if o != nil {
		o.AddRef()
	}
}

func release(o Object) {
	if o != nil {
		o.Release()
	}
}
