package transform

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Reference is the schoolbook backend: the transform domain is the
// coefficient domain and products are computed with wrapping arithmetic.
// It is exact and slow, and serves as the ground truth of the other backends.
type Reference[T torus.Torus] struct {
	n int
}

// NewReference returns a new [Reference] backend for polynomials of N coefficients.
func NewReference[T torus.Torus](N int) (*Reference[T], error) {
	if N < 2 || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("%w: N=%d must be a power of two greater than one", ErrUnsupportedSize, N)
	}
	return &Reference[T]{n: N}, nil
}

func (r *Reference[T]) N() int { return r.n }

func (r *Reference[T]) Domain() Domain { return Coefficient }

func (r *Reference[T]) NewPoly() []T { return make([]T, r.n) }

func (r *Reference[T]) TakePoly(stack *scratch.Stack) []T {
	return scratch.Take[T](stack, r.n)
}

func (r *Reference[T]) PolyScratch() scratch.Req { return scratch.Of[T](r.n) }

func (r *Reference[T]) ForwardTorus(p, out []T) { copy(out, p) }

func (r *Reference[T]) ForwardInteger(p, out []T) { copy(out, p) }

func (r *Reference[T]) MulAcc(a, b, acc []T, overwrite bool) {
	if overwrite {
		torus.MulNaive(a, b, acc)
	} else {
		torus.MulNaiveThenAdd(a, b, acc)
	}
}

func (r *Reference[T]) AddBackwardTorus(in, out []T, stack *scratch.Stack) {
	torus.Add(out, in, out)
}

func (r *Reference[T]) BackwardTorus(in, out []T, stack *scratch.Stack) {
	copy(out, in)
}

func (r *Reference[T]) BackwardScratch() scratch.Req { return scratch.Req{} }
