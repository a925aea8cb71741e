package memol

import "testing"

// Expected outputs are taken from the reference PRNG's own test vector, to
// confirm this port reproduces the exact bit-for-bit stream.
func TestRandomSequence(t *testing.T) {
	r := NewRandom()
	want := []uint64{
		10582614419484085930,
		16147916016143995109,
		5691192622506874316,
		14606526736076162211,
	}
	for i, w := range want {
		if got := r.NextU64(); got != w {
			t.Fatalf("NextU64() #%d = %d, want %d", i, got, w)
		}
	}
	r.Jump()
	if got := r.NextU64(); got != 4275479514889395181 {
		t.Fatalf("NextU64() after Jump = %d, want 4275479514889395181", got)
	}
}

func TestRandomF64Range(t *testing.T) {
	r := NewRandom()
	for i := 0; i < 1000; i++ {
		v := r.NextF64()
		if v < 0 || v >= 1 {
			t.Fatalf("NextF64() = %v, want in [0,1)", v)
		}
	}
}
