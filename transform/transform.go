// Package transform defines the contract of the polynomial product backends
// over Z_{2^W}[X]/(X^N+1) and implements the reference (schoolbook) backend.
//
// A backend maps polynomials to a transform domain in which the nega-cyclic
// product is coefficient-wise. The product of a torus polynomial (a key or
// an accumulator) with a small signed integer polynomial (a decomposition
// digit) is obtained by transforming both operands with [Transform.ForwardTorus]
// and [Transform.ForwardInteger], accumulating with [Transform.MulAcc] and
// mapping the result back with [Transform.AddBackwardTorus].
package transform

import (
	"errors"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// ErrUnsupportedSize is returned when a backend does not support a polynomial size.
var ErrUnsupportedSize = errors.New("unsupported polynomial size")

// Domain identifies a transform domain.
type Domain int

const (
	// Coefficient is the identity domain of the reference backend.
	Coefficient = Domain(iota)
	// Fourier is the floating-point complex domain.
	Fourier
	// NumberTheoretic is the exact residue domain.
	NumberTheoretic
)

func (d Domain) String() string {
	switch d {
	case Coefficient:
		return "coefficient"
	case Fourier:
		return "fourier"
	case NumberTheoretic:
		return "ntt"
	default:
		return "unknown"
	}
}

// Transform is a polynomial product backend for polynomials of N coefficients
// of type T, with transform-domain polynomials of type E.
//
// Implementations are safe for concurrent use: all their mutable state
// lives in the arguments.
type Transform[T torus.Torus, E any] interface {
	// N returns the polynomial size.
	N() int

	// Domain returns the transform domain.
	Domain() Domain

	// NewPoly allocates a new transform-domain polynomial.
	NewPoly() E

	// TakePoly takes a transform-domain polynomial from the stack.
	// Its content is arbitrary.
	TakePoly(stack *scratch.Stack) E

	// PolyScratch returns the scratch requirement of [Transform.TakePoly].
	PolyScratch() scratch.Req

	// ForwardTorus maps the torus operand of a product to the transform domain.
	ForwardTorus(p []T, out E)

	// ForwardInteger maps the signed integer operand of a product,
	// stored modulo 2^W, to the transform domain.
	ForwardInteger(p []T, out E)

	// MulAcc evaluates acc = acc + a * b, or acc = a * b if overwrite is true,
	// for a obtained with [Transform.ForwardInteger] and b with [Transform.ForwardTorus].
	// acc must not overlap a or b.
	MulAcc(a, b, acc E, overwrite bool)

	// AddBackwardTorus evaluates out = out + backward(in).
	// in is left unchanged.
	AddBackwardTorus(in E, out []T, stack *scratch.Stack)

	// BackwardTorus evaluates out = backward(in).
	// in is left unchanged.
	BackwardTorus(in E, out []T, stack *scratch.Stack)

	// BackwardScratch returns the scratch requirement of the backward transforms.
	BackwardScratch() scratch.Req
}
