package torus

import (
	"fmt"
)

// karatsubaThreshold is the degree below which products are schoolbook.
const karatsubaThreshold = 32

// MulNaive evaluates out = a * b mod X^N+1 with the schoolbook algorithm.
// out must not overlap a or b.
func MulNaive[T Torus](a, b, out []T) {
	clear(out)
	MulNaiveThenAdd(a, b, out)
}

// MulNaiveThenAdd evaluates out = out + a * b mod X^N+1 with the schoolbook algorithm.
// out must not overlap a or b.
func MulNaiveThenAdd[T Torus](a, b, out []T) {

	N := len(out)

	if len(a) != N || len(b) != N {
		panic(fmt.Errorf("invalid inputs: len(a)=%d, len(b)=%d and len(out)=%d must be equal", len(a), len(b), N))
	}

	for i := 0; i < N; i++ {
		ai := a[i]
		for j := 0; j < N-i; j++ {
			out[i+j] += ai * b[j]
		}
		for j := N - i; j < N; j++ {
			out[i+j-N] -= ai * b[j]
		}
	}
}

// MulBufferSize returns the size of the buffer required by [Mul] for
// polynomials of N coefficients.
func MulBufferSize(N int) int {
	return 6 * N
}

// Mul evaluates out = a * b mod X^N+1 with the Karatsuba algorithm,
// exactly over Z/2^W. N must be a power of two. buf must have at least
// [MulBufferSize] elements and is allocated if nil.
// out may overlap a or b.
func Mul[T Torus](a, b, out, buf []T) {

	N := len(out)

	if len(a) != N || len(b) != N {
		panic(fmt.Errorf("invalid inputs: len(a)=%d, len(b)=%d and len(out)=%d must be equal", len(a), len(b), N))
	}

	if N&(N-1) != 0 {
		panic(fmt.Errorf("invalid degree: N=%d must be a power of two", N))
	}

	if buf == nil {
		buf = make([]T, MulBufferSize(N))
	}

	if len(buf) < MulBufferSize(N) {
		panic(fmt.Errorf("invalid buffer: len(buf)=%d < %d", len(buf), MulBufferSize(N)))
	}

	c := buf[:2*N]
	karatsuba(a, b, c, buf[2*N:])

	for i := 0; i < N; i++ {
		out[i] = c[i] - c[i+N]
	}
}

// MulThenAdd evaluates out = out + a * b mod X^N+1, see [Mul].
func MulThenAdd[T Torus](a, b, out, buf []T) {

	N := len(out)

	if buf == nil {
		buf = make([]T, MulBufferSize(N))
	}

	c := buf[:2*N]
	karatsuba(a, b, c, buf[2*N:])

	for i := 0; i < N; i++ {
		out[i] += c[i] - c[i+N]
	}
}

// karatsuba writes the product of a and b, of n coefficients each, on c[:2n].
// buf must have at least 4n elements.
func karatsuba[T Torus](a, b, c, buf []T) {

	n := len(a)

	if n <= karatsubaThreshold {
		clear(c[:2*n])
		for i := 0; i < n; i++ {
			ai := a[i]
			for j := 0; j < n; j++ {
				c[i+j] += ai * b[j]
			}
		}
		return
	}

	h := n >> 1

	// z0 = a0*b0 and z2 = a1*b1
	karatsuba(a[:h], b[:h], c[:n], buf)
	karatsuba(a[h:], b[h:], c[n:2*n], buf)

	sa, sb, z1 := buf[:h], buf[h:n], buf[n:2*n]

	Add(a[:h], a[h:], sa)
	Add(b[:h], b[h:], sb)

	// z1 = (a0+a1)*(b0+b1)
	karatsuba(sa, sb, z1, buf[2*n:])

	// z1 = z1 - z0 - z2
	for i := 0; i < n; i++ {
		z1[i] -= c[i] + c[n+i]
	}

	for i := 0; i < n; i++ {
		c[h+i] += z1[i]
	}
}
