package ring

import "testing"

func TestNewRoundsCapacityToPowerOfTwo(t *testing.T) {
	b := New(5)
	if len(b.data) != 8 {
		t.Errorf("len(data) = %d, want 8 (next power of two >= 5)", len(b.data))
	}
}

func TestPushPopFIFOOrder(t *testing.T) {
	b := New(4)
	for i := uint64(0); i < 4; i++ {
		if !b.Push(Event{Frame: i}) {
			t.Fatalf("Push(%d) = false, want true", i)
		}
	}
	for i := uint64(0); i < 4; i++ {
		ev, ok := b.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false at index %d", i)
		}
		if ev.Frame != i {
			t.Errorf("Pop() = %+v, want Frame=%d", ev, i)
		}
	}
}

func TestPushRejectsWhenFull(t *testing.T) {
	b := New(2)
	if !b.Push(Event{Frame: 1}) {
		t.Fatalf("Push(1) = false, want true")
	}
	if !b.Push(Event{Frame: 2}) {
		t.Fatalf("Push(2) = false, want true")
	}
	if b.Push(Event{Frame: 3}) {
		t.Errorf("Push into a full buffer = true, want false")
	}
}

func TestPopEmptyReturnsFalse(t *testing.T) {
	b := New(2)
	if _, ok := b.Pop(); ok {
		t.Errorf("Pop() on an empty buffer returned ok=true")
	}
}

func TestLenTracksPushPop(t *testing.T) {
	b := New(4)
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", b.Len())
	}
	b.Push(Event{Frame: 1})
	b.Push(Event{Frame: 2})
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	b.Pop()
	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestWraparound(t *testing.T) {
	b := New(2)
	for round := 0; round < 3; round++ {
		b.Push(Event{Frame: uint64(round)})
		b.Push(Event{Frame: uint64(round) + 100})
		ev1, _ := b.Pop()
		ev2, _ := b.Pop()
		if ev1.Frame != uint64(round) || ev2.Frame != uint64(round)+100 {
			t.Errorf("round %d: got frames %d,%d, want %d,%d", round, ev1.Frame, ev2.Frame, round, round+100)
		}
	}
}
