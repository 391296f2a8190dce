package torus

import (
	"fmt"
)

// Add evaluates c = a + b.
func Add[T Torus](a, b, c []T) {
	for i := range c {
		c[i] = a[i] + b[i]
	}
}

// Sub evaluates c = a - b.
func Sub[T Torus](a, b, c []T) {
	for i := range c {
		c[i] = a[i] - b[i]
	}
}

// Neg evaluates b = -a.
func Neg[T Torus](a, b []T) {
	for i := range b {
		b[i] = -a[i]
	}
}

// MulScalar evaluates b = a * s.
func MulScalar[T Torus](a []T, s T, b []T) {
	for i := range b {
		b[i] = a[i] * s
	}
}

// MulScalarThenAdd evaluates b = b + a * s.
func MulScalarThenAdd[T Torus](a []T, s T, b []T) {
	for i := range b {
		b[i] += a[i] * s
	}
}

// MulScalarThenSub evaluates b = b - a * s.
func MulScalarThenSub[T Torus](a []T, s T, b []T) {
	for i := range b {
		b[i] -= a[i] * s
	}
}

// MulByMonomial evaluates out = in * X^e mod X^N+1 for
// any integer e, where N = len(in). in and out must not overlap.
func MulByMonomial[T Torus](in []T, e int, out []T) {

	N := len(in)

	if len(out) != N {
		panic(fmt.Errorf("invalid output: len(out)=%d != len(in)=%d", len(out), N))
	}

	e = reduceExponent(e, N)

	neg := e >= N
	if neg {
		e -= N
	}

	// in[i] * X^(i+e)
	for i := 0; i < N-e; i++ {
		out[i+e] = in[i]
	}

	for i := N - e; i < N; i++ {
		out[i+e-N] = -in[i]
	}

	if neg {
		Neg(out, out)
	}
}

// MulByMonomialInPlace evaluates p = p * X^e mod X^N+1 for any
// integer e, where N = len(p).
func MulByMonomialInPlace[T Torus](p []T, e int) {

	N := len(p)

	e = reduceExponent(e, N)

	if e >= N {
		Neg(p, p)
		e -= N
	}

	if e == 0 {
		return
	}

	// cyclic right rotation by e
	reverse(p)
	reverse(p[:e])
	reverse(p[e:])

	// wrapped coefficients change sign
	Neg(p[:e], p[:e])
}

// reduceExponent returns e mod 2N in [0, 2N).
func reduceExponent(e, N int) int {
	e %= 2 * N
	if e < 0 {
		e += 2 * N
	}
	return e
}

func reverse[T Torus](p []T) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}
