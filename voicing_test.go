package memol

import (
	"reflect"
	"testing"
)

func TestVoiceClosedWithCenterCount(t *testing.T) {
	notes := []int{0, 4, 7}
	got := VoiceClosedWithCenter(notes, 60)
	if len(got) != len(notes) {
		t.Fatalf("VoiceClosedWithCenter returned %d notes, want %d", len(got), len(notes))
	}
}

func TestVoiceClosedWithCenterIsClosed(t *testing.T) {
	// A closed voicing packs all notes within an octave of each other.
	got := VoiceClosedWithCenter([]int{0, 4, 7}, 60)
	lo, hi := got[0], got[0]
	for _, p := range got {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi-lo > 12 {
		t.Errorf("VoiceClosedWithCenter(%v) = %v, spans %d semitones, want <=12", []int{0, 4, 7}, got, hi-lo)
	}
}

func TestVoiceClosedWithCenterNearCenter(t *testing.T) {
	got := VoiceClosedWithCenter([]int{0, 4, 7}, 0)
	sum := 0
	for _, p := range got {
		sum += p
	}
	mid := sum / len(got)
	if mid < -12 || mid > 12 {
		t.Errorf("VoiceClosedWithCenter(%v, 0) = %v, midpoint %d too far from center", []int{0, 4, 7}, got, mid)
	}
}

func TestVoiceClosedWithCenterPanicsOnShortInput(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("VoiceClosedWithCenter([]int{0}, 0) did not panic")
		}
	}()
	VoiceClosedWithCenter([]int{0}, 0)
}

func TestSplitBassAndChord(t *testing.T) {
	bass, chord := SplitBassAndChord([]int{0, 4, 7}, 2)
	if bass != 0 {
		t.Errorf("SplitBassAndChord bass = %d, want 0", bass)
	}
	if !reflect.DeepEqual(chord, []int{4, 7}) {
		t.Errorf("SplitBassAndChord chord = %v, want [4 7]", chord)
	}
}

func TestSplitBassAndChordBelowMin(t *testing.T) {
	bass, chord := SplitBassAndChord([]int{0, 4}, 3)
	if bass != 0 {
		t.Errorf("SplitBassAndChord bass = %d, want 0", bass)
	}
	if !reflect.DeepEqual(chord, []int{0, 4}) {
		t.Errorf("SplitBassAndChord chord = %v, want [0 4] (bass doubled when below nMin)", chord)
	}
}

func TestSplitBassAndChordPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("SplitBassAndChord(nil, 2) did not panic")
		}
	}()
	SplitBassAndChord(nil, 2)
}
