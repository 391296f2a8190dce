// Package fft implements the floating-point Fourier backend of the polynomial
// product over Z_{2^W}[X]/(X^N+1).
//
// A real polynomial a of N coefficients is folded into the complex polynomial
// c(X) = sum_j (a_j + i*a_{j+N/2}) X^j, which is a mod (X^{N/2} - i). The
// nega-cyclic product therefore reduces to a cyclic product of size N/2 after
// twisting c_j by psi^j, psi = exp(i*pi/N), and is evaluated with a radix-2
// FFT of size N/2.
package fft

import (
	"fmt"
	"math"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

const (
	// MinLogN is the base-2 logarithm of the smallest supported polynomial size.
	MinLogN = 9
	// MaxLogN is the base-2 logarithm of the largest supported polynomial size.
	MaxLogN = 14
)

// Supports returns true if the polynomial size N is supported by the backend.
func Supports(N int) bool {
	return utils.IsPowerOfTwo(N) && N >= 1<<MinLogN && N <= 1<<MaxLogN
}

// Transform is the Fourier backend for polynomials of N coefficients.
// The transform domain holds N/2 complex values, in bit-reversed order.
type Transform[T torus.Torus] struct {
	n     int
	half  int
	scale float64

	// psi^j for j in [0, N/2)
	twist []complex128
	// conj(psi^j) / (N/2) for j in [0, N/2)
	untwist []complex128
	// exp(-2*i*pi*j/(N/2)) for j in [0, N/4)
	roots []complex128
}

var _ transform.Transform[uint64, []complex128] = (*Transform[uint64])(nil)

// New returns a new Fourier [Transform] for polynomials of N coefficients.
// Returns [transform.ErrUnsupportedSize] if N is not supported.
func New[T torus.Torus](N int) (*Transform[T], error) {

	if !Supports(N) {
		return nil, fmt.Errorf("%w: N=%d must be a power of two in [2^%d, 2^%d]", transform.ErrUnsupportedSize, N, MinLogN, MaxLogN)
	}

	half := N >> 1

	tr := &Transform[T]{
		n:       N,
		half:    half,
		scale:   math.Ldexp(1, -torus.Bits[T]()),
		twist:   make([]complex128, half),
		untwist: make([]complex128, half),
		roots:   make([]complex128, half>>1),
	}

	for j := 0; j < half; j++ {
		s, c := math.Sincos(math.Pi * float64(j) / float64(N))
		tr.twist[j] = complex(c, s)
		tr.untwist[j] = complex(c/float64(half), -s/float64(half))
	}

	for j := range tr.roots {
		s, c := math.Sincos(-2 * math.Pi * float64(j) / float64(half))
		tr.roots[j] = complex(c, s)
	}

	return tr, nil
}

func (tr *Transform[T]) N() int { return tr.n }

func (tr *Transform[T]) Domain() transform.Domain { return transform.Fourier }

func (tr *Transform[T]) NewPoly() []complex128 { return make([]complex128, tr.half) }

func (tr *Transform[T]) TakePoly(stack *scratch.Stack) []complex128 {
	return scratch.Take[complex128](stack, tr.half)
}

func (tr *Transform[T]) PolyScratch() scratch.Req { return scratch.Of[complex128](tr.half) }

func (tr *Transform[T]) BackwardScratch() scratch.Req { return scratch.Of[complex128](tr.half) }

// ForwardTorus maps p to the Fourier domain, reading each coefficient
// as a real number in [-1/2, 1/2).
func (tr *Transform[T]) ForwardTorus(p []T, out []complex128) {
	tr.forward(p, out, tr.scale)
}

// ForwardInteger maps p to the Fourier domain, reading each coefficient
// as a signed integer.
func (tr *Transform[T]) ForwardInteger(p []T, out []complex128) {
	tr.forward(p, out, 1)
}

func (tr *Transform[T]) forward(p []T, out []complex128, scale float64) {

	half := tr.half

	if len(p) < tr.n || len(out) < half {
		panic(fmt.Errorf("invalid sizes: len(p)=%d < N=%d or len(out)=%d < N/2=%d", len(p), tr.n, len(out), half))
	}

	for j := 0; j < half; j++ {
		re := float64(torus.ToSigned(p[j])) * scale
		im := float64(torus.ToSigned(p[j+half])) * scale
		out[j] = complex(re, im) * tr.twist[j]
	}

	tr.dif(out[:half])
}

// MulAcc evaluates acc = acc + a * b, or acc = a * b if overwrite is true.
func (tr *Transform[T]) MulAcc(a, b, acc []complex128, overwrite bool) {
	a, b, acc = a[:tr.half], b[:tr.half], acc[:tr.half]
	if overwrite {
		for i := range acc {
			acc[i] = a[i] * b[i]
		}
	} else {
		for i := range acc {
			acc[i] += a[i] * b[i]
		}
	}
}

// AddBackwardTorus evaluates out = out + backward(in), keeping the fractional
// part of each coefficient and rounding it to the closest element of the torus.
func (tr *Transform[T]) AddBackwardTorus(in []complex128, out []T, stack *scratch.Stack) {
	tr.backward(in, out, stack, true)
}

// BackwardTorus evaluates out = backward(in), see [Transform.AddBackwardTorus].
func (tr *Transform[T]) BackwardTorus(in []complex128, out []T, stack *scratch.Stack) {
	tr.backward(in, out, stack, false)
}

func (tr *Transform[T]) backward(in []complex128, out []T, stack *scratch.Stack, add bool) {

	half := tr.half

	if len(in) < half || len(out) < tr.n {
		panic(fmt.Errorf("invalid sizes: len(in)=%d < N/2=%d or len(out)=%d < N=%d", len(in), half, len(out), tr.n))
	}

	frame := stack.Mark()
	defer stack.Release(frame)

	tmp := scratch.Take[complex128](stack, half)
	copy(tmp, in[:half])

	tr.dit(tmp)

	if add {
		for j := 0; j < half; j++ {
			v := tmp[j] * tr.untwist[j]
			out[j] += torus.FromFloat[T](real(v))
			out[j+half] += torus.FromFloat[T](imag(v))
		}
	} else {
		for j := 0; j < half; j++ {
			v := tmp[j] * tr.untwist[j]
			out[j] = torus.FromFloat[T](real(v))
			out[j+half] = torus.FromFloat[T](imag(v))
		}
	}
}

// dif is the decimation-in-frequency FFT: natural order input,
// bit-reversed order output.
func (tr *Transform[T]) dif(a []complex128) {
	n := len(a)
	for m := n; m >= 2; m >>= 1 {
		h := m >> 1
		stride := n / m
		for k := 0; k < n; k += m {
			for j := 0; j < h; j++ {
				w := tr.roots[j*stride]
				u, v := a[k+j], a[k+j+h]
				a[k+j] = u + v
				a[k+j+h] = (u - v) * w
			}
		}
	}
}

// dit is the unnormalized decimation-in-time inverse FFT: bit-reversed
// order input, natural order output.
func (tr *Transform[T]) dit(a []complex128) {
	n := len(a)
	for m := 2; m <= n; m <<= 1 {
		h := m >> 1
		stride := n / m
		for k := 0; k < n; k += m {
			for j := 0; j < h; j++ {
				w := tr.roots[j*stride]
				v := a[k+j+h] * complex(real(w), -imag(w))
				u := a[k+j]
				a[k+j] = u + v
				a[k+j+h] = u - v
			}
		}
	}
}
