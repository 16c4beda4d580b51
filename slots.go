package dxvk

import "github.com/jamestiotio/dxvk/gpucore"

// binding is a slot value: an object reference plus the auxiliary fields
// recorded with it. Equal bindings make a Set call a no-op.
type binding interface {
	comparable

	// ref returns the referenced object, or an untyped nil.
	ref() Object
}

// slotTable is a fixed-size run of binding slots of one class.
//
// The table owns one reference per occupied slot. bound tracks occupied
// slots for the hazard early exit; dirty tracks slots changed since the
// state applier last emitted them.
type slotTable[B binding] struct {
	slots []B
	bound gpucore.SlotMask
	dirty gpucore.SlotMask
}

func newSlotTable[B binding](n uint32) slotTable[B] {
	return slotTable[B]{slots: make([]B, n)}
}

func (t *slotTable[B]) len() uint32 { return uint32(len(t.slots)) }

// get returns slot i, or the zero binding when out of range.
func (t *slotTable[B]) get(i uint32) B {
	if i >= t.len() {
		var zero B
		return zero
	}
	return t.slots[i]
}

// set stores b at slot i and reports whether the slot changed.
// The new reference is acquired before the old one is released.
func (t *slotTable[B]) set(i uint32, b B) bool {
	if i >= t.len() {
		return false
	}
	old := t.slots[i]
	if old == b {
		return false
	}
	next := b.ref()
	addRef(next)
	t.slots[i] = b
	if next != nil {
		t.bound.Set(i)
	} else {
		t.bound.Clear(i)
	}
	t.dirty.Set(i)
	release(old.ref())
	return true
}

// unbind clears slot i.
func (t *slotTable[B]) unbind(i uint32) bool {
	var zero B
	return t.set(i, zero)
}

// clear unbinds every slot and reports whether anything changed.
func (t *slotTable[B]) clear() bool {
	changed := false
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		changed = t.unbind(i) || changed
	}
	return changed
}

// markAll marks every slot dirty.
func (t *slotTable[B]) markAll() {
	t.dirty = gpucore.SlotRange(0, t.len())
}

// clone returns a copy holding its own references.
func (t *slotTable[B]) clone() slotTable[B] {
	c := slotTable[B]{
		slots: make([]B, len(t.slots)),
		bound: t.bound,
	}
	copy(c.slots, t.slots)
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		addRef(c.slots[i].ref())
	}
	return c
}

// countBound returns the number of leading slots up to the highest bound one.
func (t *slotTable[B]) countBound() uint32 {
	n := uint32(0)
	for i := t.bound.Next(0); i < gpucore.MaxSlots; i = t.bound.Next(i + 1) {
		n = i + 1
	}
	return n
}

// Slot value types.

type cbBinding struct {
	buffer *Buffer
	first  uint32
	count  uint32
}

func (b cbBinding) ref() Object { return asObject(b.buffer) }

type uavBinding struct {
	view    *UnorderedAccessView
	counter uint32
}

func (b uavBinding) ref() Object { return asObject(b.view) }

type vbBinding struct {
	buffer *Buffer
	stride uint32
	offset uint32
}

func (b vbBinding) ref() Object { return asObject(b.buffer) }

type soBinding struct {
	buffer *Buffer
	offset uint32
}

func (b soBinding) ref() Object { return asObject(b.buffer) }
