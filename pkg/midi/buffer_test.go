package midi

import "testing"

func TestBufferAddAndReset(t *testing.T) {
	b := NewBuffer(4)

	if !b.IsEmpty() {
		t.Error("New buffer should be empty")
	}

	b.Add(NoteOn(10, 0, 60, 100))
	b.Add(NoteOff(20, 0, 60, 0))

	if b.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", b.Len())
	}

	b.Reset()
	if !b.IsEmpty() {
		t.Error("Buffer should be empty after reset")
	}
	if b.Cap() != 4 {
		t.Errorf("Reset should keep capacity 4, got %d", b.Cap())
	}
}

func TestBufferFull(t *testing.T) {
	b := NewBuffer(2)

	if !b.Add(NoteOn(0, 0, 60, 100)) || !b.Add(NoteOn(0, 0, 64, 100)) {
		t.Fatal("Adds within capacity should succeed")
	}
	if b.Add(NoteOn(0, 0, 67, 100)) {
		t.Error("Add past capacity should fail")
	}
	if b.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", b.Dropped())
	}
	if b.Len() != 2 {
		t.Errorf("Expected 2 events, got %d", b.Len())
	}

	b.Reset()
	if b.Dropped() != 0 {
		t.Error("Reset should clear the dropped count")
	}
}

func TestBufferSortIsStable(t *testing.T) {
	b := NewBuffer(8)
	b.Add(NoteOn(300, 0, 1, 100))
	b.Add(NoteOff(0, 0, 2, 0))
	b.Add(NoteOn(100, 0, 3, 100))
	b.Add(NoteOff(0, 0, 4, 0))
	b.Add(NoteOn(100, 0, 5, 100))

	b.Sort()

	wantNotes := []uint8{2, 4, 3, 5, 1}
	for i, e := range b.Events() {
		if e.NoteNumber != wantNotes[i] {
			t.Errorf("Event %d: expected note %d, got %d", i, wantNotes[i], e.NoteNumber)
		}
	}
}

func TestBufferAddDoesNotAllocate(t *testing.T) {
	b := NewBuffer(256)
	allocs := testing.AllocsPerRun(100, func() {
		b.Reset()
		for i := 0; i < 128; i++ {
			b.Add(NoteOff(0, 0, uint8(i), 0))
		}
	})
	if allocs != 0 {
		t.Errorf("Expected zero allocations, got %.1f", allocs)
	}
}
