package gpucore

import (
	"reflect"
	"testing"
)

func TestSlotMaskSetClear(t *testing.T) {
	var m SlotMask
	for _, i := range []uint32{0, 5, 63, 64, 127} {
		m.Set(i)
		if !m.Has(i) {
			t.Errorf("Has(%d) = false after Set", i)
		}
	}
	if got := m.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}
	m.Set(MaxSlots)
	if got := m.Count(); got != 5 {
		t.Errorf("Set(MaxSlots) changed Count() to %d", got)
	}
	m.Clear(63)
	if m.Has(63) {
		t.Error("Has(63) = true after Clear")
	}
	if !m.Any() {
		t.Error("Any() = false, want true")
	}
}

func TestSlotRange(t *testing.T) {
	tests := []struct {
		name         string
		start, count uint32
		want         int
	}{
		{"empty", 3, 0, 0},
		{"low word", 2, 4, 4},
		{"crosses words", 60, 10, 10},
		{"full", 0, 128, 128},
		{"clipped", 120, 20, 8},
		{"out of range", 200, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := SlotRange(tt.start, tt.count)
			if got := m.Count(); got != tt.want {
				t.Errorf("SlotRange(%d, %d).Count() = %d, want %d", tt.start, tt.count, got, tt.want)
			}
			for i := uint32(0); i < MaxSlots; i++ {
				in := i >= tt.start && i < tt.start+tt.count
				if m.Has(i) != in {
					t.Fatalf("SlotRange(%d, %d).Has(%d) = %v, want %v", tt.start, tt.count, i, m.Has(i), in)
				}
			}
		})
	}
}

func TestSlotMaskRuns(t *testing.T) {
	var m SlotMask
	for _, i := range []uint32{0, 1, 2, 5, 63, 64, 65, 127} {
		m.Set(i)
	}

	type run struct{ start, count uint32 }
	var got []run
	m.Runs(func(start, count uint32) {
		got = append(got, run{start, count})
	})

	want := []run{{0, 3}, {5, 1}, {63, 3}, {127, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Runs() = %v, want %v", got, want)
	}
}

func TestSlotMaskRunsEmpty(t *testing.T) {
	var m SlotMask
	calls := 0
	m.Runs(func(uint32, uint32) { calls++ })
	if calls != 0 {
		t.Errorf("Runs() on empty mask called fn %d times", calls)
	}
}

func TestSlotMaskSetOps(t *testing.T) {
	a := SlotRange(0, 8)
	b := SlotRange(4, 8)

	if got := a.And(b); got != SlotRange(4, 4) {
		t.Errorf("And() = %v, want %v", got, SlotRange(4, 4))
	}
	if got := a.Or(b); got != SlotRange(0, 12) {
		t.Errorf("Or() = %v, want %v", got, SlotRange(0, 12))
	}
	if got := a.AndNot(b); got != SlotRange(0, 4) {
		t.Errorf("AndNot() = %v, want %v", got, SlotRange(0, 4))
	}
	if got := b.Next(0); got != 4 {
		t.Errorf("Next(0) = %d, want 4", got)
	}
	if got := b.Next(12); got != MaxSlots {
		t.Errorf("Next(12) = %d, want %d", got, MaxSlots)
	}
}

func TestStageString(t *testing.T) {
	tests := []struct {
		s    Stage
		want string
	}{
		{StageVertex, "Vertex"},
		{StagePixel, "Pixel"},
		{StageCompute, "Compute"},
		{Stage(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Stage(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
	for _, s := range GraphicsStages {
		if !s.IsGraphics() {
			t.Errorf("%v.IsGraphics() = false", s)
		}
	}
	if StageCompute.IsGraphics() {
		t.Error("StageCompute.IsGraphics() = true")
	}
}

func TestConstantBufferRangeBytes(t *testing.T) {
	r := ConstantBufferRange{FirstConstant: 1, NumConstants: 4}
	if got := r.ByteOffset(); got != 16 {
		t.Errorf("ByteOffset() = %d, want 16", got)
	}
	if got := r.ByteSize(); got != 64 {
		t.Errorf("ByteSize() = %d, want 64", got)
	}
}
