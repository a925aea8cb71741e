package memol

import "fmt"

// Rat is an exact rational number used for musical time. It is always kept
// in reduced form with Den >= 0; Den == 0 represents +infinity (the sign of
// Num in that case is not meaningful beyond non-zero-ness).
type Rat struct {
	Num int64
	Den int64
}

// RatInt returns the integer n as a Rat.
func RatInt(n int64) Rat {
	return Rat{Num: n, Den: 1}
}

// RatZero is the additive identity.
func RatZero() Rat { return Rat{Num: 0, Den: 1} }

// RatOne is the multiplicative identity.
func RatOne() Rat { return Rat{Num: 1, Den: 1} }

// RatInf represents an unbounded upper time bound.
func RatInf() Rat { return Rat{Num: 1, Den: 0} }

// gcd returns a divisor g such that sign(g) == sign(x), matching the Rust
// original's convention of keeping the denominator non-negative after
// reduction.
func gcd(y, x int64) int64 {
	neg := x < 0
	if y < 0 {
		y = -y
	}
	if x < 0 {
		x = -x
	}
	for x != 0 {
		y, x = x, y%x
	}
	if neg {
		return -y
	}
	return y
}

// NewRat builds a reduced Rat from a numerator and denominator.
func NewRat(num, den int64) Rat {
	t := gcd(num, den)
	if t == 0 {
		return Rat{Num: num, Den: den}
	}
	return Rat{Num: num / t, Den: den / t}
}

func (a Rat) Add(b Rat) Rat {
	return NewRat(a.Num*b.Den+a.Den*b.Num, a.Den*b.Den)
}

func (a Rat) Sub(b Rat) Rat {
	return NewRat(a.Num*b.Den-a.Den*b.Num, a.Den*b.Den)
}

func (a Rat) Mul(b Rat) Rat {
	return NewRat(a.Num*b.Num, a.Den*b.Den)
}

func (a Rat) Div(b Rat) Rat {
	return NewRat(a.Num*b.Den, a.Den*b.Num)
}

func (a Rat) Neg() Rat {
	return Rat{Num: -a.Num, Den: a.Den}
}

// MulInt scales a by the integer n.
func (a Rat) MulInt(n int64) Rat {
	return NewRat(a.Num*n, a.Den)
}

// Cmp returns -1, 0, or +1 as a is less than, equal to, or greater than b.
func (a Rat) Cmp(b Rat) int {
	lhs := a.Num * b.Den
	rhs := b.Num * a.Den
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

func (a Rat) Eq(b Rat) bool { return a.Cmp(b) == 0 }
func (a Rat) Lt(b Rat) bool { return a.Cmp(b) < 0 }
func (a Rat) Le(b Rat) bool { return a.Cmp(b) <= 0 }
func (a Rat) Gt(b Rat) bool { return a.Cmp(b) > 0 }
func (a Rat) Ge(b Rat) bool { return a.Cmp(b) >= 0 }

// idiv is floor division for integers, matching misc::idiv in the original.
func idiv(x, y int64) int64 {
	r := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		return r - 1
	}
	return r
}

// imod is the floor-division remainder, matching misc::imod.
func imod(x, y int64) int64 {
	return x - y*idiv(x, y)
}

// Floor returns the greatest integer <= a.
func (a Rat) Floor() int64 { return idiv(a.Num, a.Den) }

// Ceil returns the least integer >= a.
func (a Rat) Ceil() int64 { return idiv(a.Num+a.Den-1, a.Den) }

// Round returns a rounded to the nearest integer, ties toward +infinity
// (round-half-up under floor division), so -1/2 rounds to 0.
func (a Rat) Round() int64 { return idiv(a.Num*2+a.Den, a.Den*2) }

// Float64 converts a to a floating point approximation.
func (a Rat) Float64() float64 {
	return float64(a.Num) / float64(a.Den)
}

func (a Rat) String() string {
	return fmt.Sprintf("%d/%d", a.Num, a.Den)
}

// bsearchBoundary returns the smallest index i in [0, len(xs)] such that
// f(xs[i]) is false, given that f is true on a prefix and false on the
// remaining suffix. It is semantically equivalent to the naive linear scan
// looking for the first index where f fails, but runs in O(log n).
func bsearchBoundary[T any](xs []T, f func(T) bool) int {
	lo, hi := 0, len(xs)
	for lo < hi {
		mi := (lo + hi) / 2
		if f(xs[mi]) {
			lo = mi + 1
		} else {
			hi = mi
		}
	}
	return lo
}
