package gpucore

import "math/bits"

// MaxSlots is the capacity of a SlotMask.
const MaxSlots = 128

// SlotMask is a set of binding slots in [0, MaxSlots).
// The zero value is the empty set.
type SlotMask [2]uint64

// SlotRange returns the mask covering count slots starting at start,
// clipped to MaxSlots.
func SlotRange(start, count uint32) SlotMask {
	var m SlotMask
	end := uint64(start) + uint64(count)
	if end > MaxSlots {
		end = MaxSlots
	}
	for i := uint64(start); i < end; {
		w := i / 64
		lo := i % 64
		hi := uint64(64)
		if (w+1)*64 > end {
			hi = end - w*64
		}
		m[w] |= bitsBetween(lo, hi)
		i = w*64 + hi
	}
	return m
}

// bitsBetween returns a word with bits [lo, hi) set.
func bitsBetween(lo, hi uint64) uint64 {
	var upper uint64 = ^uint64(0)
	if hi < 64 {
		upper = (uint64(1) << hi) - 1
	}
	return upper &^ ((uint64(1) << lo) - 1)
}

// Set adds slot i.
func (m *SlotMask) Set(i uint32) {
	if i < MaxSlots {
		m[i/64] |= 1 << (i % 64)
	}
}

// Clear removes slot i.
func (m *SlotMask) Clear(i uint32) {
	if i < MaxSlots {
		m[i/64] &^= 1 << (i % 64)
	}
}

// Has reports whether slot i is in the set.
func (m SlotMask) Has(i uint32) bool {
	return i < MaxSlots && m[i/64]&(1<<(i%64)) != 0
}

// Any reports whether the set is non-empty.
func (m SlotMask) Any() bool {
	return m[0]|m[1] != 0
}

// Count returns the number of slots in the set.
func (m SlotMask) Count() int {
	return bits.OnesCount64(m[0]) + bits.OnesCount64(m[1])
}

// And returns the intersection of m and o.
func (m SlotMask) And(o SlotMask) SlotMask {
	return SlotMask{m[0] & o[0], m[1] & o[1]}
}

// Or returns the union of m and o.
func (m SlotMask) Or(o SlotMask) SlotMask {
	return SlotMask{m[0] | o[0], m[1] | o[1]}
}

// AndNot returns the slots of m that are not in o.
func (m SlotMask) AndNot(o SlotMask) SlotMask {
	return SlotMask{m[0] &^ o[0], m[1] &^ o[1]}
}

// Next returns the lowest slot >= from in the set, or MaxSlots if none.
func (m SlotMask) Next(from uint32) uint32 {
	for w := from / 64; w < 2; w++ {
		word := m[w]
		if w == from/64 {
			word &^= (uint64(1) << (from % 64)) - 1
		}
		if word != 0 {
			return w*64 + uint32(bits.TrailingZeros64(word))
		}
	}
	return MaxSlots
}

// Runs calls fn for each maximal run of consecutive slots in ascending order.
func (m SlotMask) Runs(fn func(start, count uint32)) {
	for i := m.Next(0); i < MaxSlots; {
		end := i + 1
		for end < MaxSlots && m.Has(end) {
			end++
		}
		fn(i, end-i)
		if end >= MaxSlots {
			return
		}
		i = m.Next(end)
	}
}
