package memol

import (
	"math"
	"math/bits"
)

// Random is a Xoroshiro128** PRNG, ported from the reference implementation
// by David Blackman and Sebastiano Vigna
// (http://xoshiro.di.unimi.it/xoroshiro128starstar.c). It is not safe for
// concurrent use.
type Random struct {
	s0, s1 uint64
}

// NewRandom returns a generator seeded with the fixed constants the
// original implementation uses, so that two freshly constructed generators
// always produce the same stream.
func NewRandom() *Random {
	return &Random{
		s0: 0x243f6a8885a308d3, // OEIS A062964.
		s1: 0x93c467e37db0c7a4, // OEIS A170874.
	}
}

// NextU64 advances the generator and returns the next 64-bit output.
func (r *Random) NextU64() uint64 {
	s0, s1 := r.s0, r.s1
	t := s0 ^ s1
	r.s0 = bits.RotateLeft64(s0, 24) ^ t ^ (t << 16)
	r.s1 = bits.RotateLeft64(t, 37)
	return bits.RotateLeft64(s0*5, 7) * 9
}

// NextF64 returns a uniform sample in [0, 1).
func (r *Random) NextF64() float64 {
	return (1.0 / float64(uint64(1)<<53)) * float64(r.NextU64()>>11)
}

// NextGauss returns a standard-normal sample via the Box-Muller transform.
func (r *Random) NextGauss() float64 {
	rr := r.NextF64()
	t := r.NextF64()
	return math.Sqrt(-2.0*math.Log(1.0-rr)) * math.Sin((2.0*math.Pi)*t)
}

// Jump advances the generator state as if NextU64 had been called 2^64
// times, equivalent to creating 2^64 non-overlapping subsequences; useful
// for giving independent streams to parallel generation passes.
func (r *Random) Jump() {
	jump := [2]uint64{0xdf900294d8f554a5, 0x170865df4b3201fc}

	var s0, s1 uint64
	for _, j := range jump {
		for b := 0; b < 64; b++ {
			if j&(uint64(1)<<uint(b)) != 0 {
				s0 ^= r.s0
				s1 ^= r.s1
			}
			r.NextU64()
		}
	}
	r.s0 = s0
	r.s1 = s1
}
