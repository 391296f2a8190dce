// Package torus implements the discretized torus Z/2^W for W in {32, 64},
// nega-cyclic polynomial arithmetic over it, and the samplers used by
// key generation and encryption.
package torus

import (
	"math"
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Torus is the set of unsigned integer types representing the
// discretized torus. Arithmetic wraps modulo 2^W.
type Torus interface {
	constraints.Unsigned
	uint32 | uint64
}

// Bits returns the bit-width W of T.
func Bits[T Torus]() int {
	var zero T
	return bits.Len64(uint64(^zero))
}

// ToSigned returns the centered lift of x in [-2^(W-1), 2^(W-1)).
func ToSigned[T Torus](x T) int64 {
	if Bits[T]() == 32 {
		return int64(int32(x))
	}
	return int64(x)
}

// FromSigned returns x mod 2^W.
func FromSigned[T Torus](x int64) T {
	return T(x)
}

// ToFloat returns the centered real representative of x in [-1/2, 1/2).
func ToFloat[T Torus](x T) float64 {
	return math.Ldexp(float64(ToSigned(x)), -Bits[T]())
}

// FromFloat returns round(x * 2^W) mod 2^W for any real x.
func FromFloat[T Torus](x float64) T {
	W := Bits[T]()
	frac := x - math.Round(x)
	v := math.Round(math.Ldexp(frac, W))
	if W == 64 && v >= 0x1p63 {
		v -= 0x1p64
	}
	return T(int64(v))
}

// Distance returns the absolute value of the centered lift of a - b.
func Distance[T Torus](a, b T) uint64 {
	d := ToSigned(a - b)
	if d < 0 {
		if d == math.MinInt64 {
			return 1 << 63
		}
		return uint64(-d)
	}
	return uint64(d)
}

// Encode returns m * 2^deltaLog mod 2^W.
func Encode[T Torus](m uint64, deltaLog int) T {
	return T(m) << deltaLog
}

// Decode returns round(x / 2^deltaLog) mod 2^(W-deltaLog).
func Decode[T Torus](x T, deltaLog int) uint64 {
	if deltaLog == 0 {
		return uint64(x)
	}
	W := Bits[T]()
	rounded := (x >> (deltaLog - 1)) + 1
	rounded >>= 1
	if W-deltaLog < 64 {
		return uint64(rounded) & (1<<(W-deltaLog) - 1)
	}
	return uint64(rounded)
}
