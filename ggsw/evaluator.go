package ggsw

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Evaluator evaluates external products and CMUX gates with a transform backend.
// All its temporary buffers are taken from its [scratch.Stack].
//
// An Evaluator is not safe for concurrent use: use [Evaluator.ShallowCopy]
// to obtain one evaluator per goroutine.
type Evaluator[T torus.Torus, E any] struct {
	Transform transform.Transform[T, E]
	Stack     *scratch.Stack

	// headers of the digit and accumulator polynomials, whose
	// coefficients are taken from the stack
	polys *[]E
}

// NewEvaluator creates a new [Evaluator]. If stack is nil, a new one is allocated.
func NewEvaluator[T torus.Torus, E any](tr transform.Transform[T, E], stack *scratch.Stack) *Evaluator[T, E] {
	if stack == nil {
		stack = new(scratch.Stack)
	}
	return &Evaluator[T, E]{Transform: tr, Stack: stack, polys: new([]E)}
}

// ShallowCopy creates a shallow copy of this [Evaluator] sharing the transform
// with the receiver and owning a new stack with the same capacity.
// The receiver and the returned Evaluator can be used concurrently.
func (eval Evaluator[T, E]) ShallowCopy() *Evaluator[T, E] {
	return &Evaluator[T, E]{Transform: eval.Transform, Stack: scratch.NewStack(eval.Stack.Capacity()), polys: new([]E)}
}

// takePolys returns n transform-domain polynomials taken from the stack,
// in a slice owned by the evaluator.
func (eval Evaluator[T, E]) takePolys(n int) (polys []E) {
	if eval.polys == nil {
		polys = make([]E, n)
	} else {
		if cap(*eval.polys) < n {
			*eval.polys = make([]E, n)
		}
		polys = (*eval.polys)[:n]
	}
	for i := range polys {
		polys[i] = eval.Transform.TakePoly(eval.Stack)
	}
	return
}

// ExternalProductScratch returns the scratch requirement of the external product
// of a GLWE ciphertext of dimension K with a GGSW ciphertext of decomposition dd.
func ExternalProductScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters) scratch.Req {
	return scratch.All(
		decomposition.TensorScratch[T]((K+1)*tr.N()),
		tr.PolyScratch().Times(2*(K+1)),
		tr.BackwardScratch(),
	)
}

// ExternalProduct evaluates out = g x in, with g an encryption of m and in an
// encryption of p, so that out is an encryption of m * p. out is overwritten
// and must not alias in.
func (eval Evaluator[T, E]) ExternalProduct(out *glwe.Ciphertext[T], g *Transformed[T, E], in *glwe.Ciphertext[T]) {
	out.Zero()
	eval.AddExternalProduct(out, g, in)
}

// AddExternalProduct evaluates out = out + g x in. out must not alias in.
//
// The cost and the memory accesses of the product depend on the shapes of the
// operands only.
func (eval Evaluator[T, E]) AddExternalProduct(out *glwe.Ciphertext[T], g *Transformed[T, E], in *glwe.Ciphertext[T]) {

	tr := eval.Transform

	K, N := g.K, g.N

	if in.K() != K || out.K() != K || in.N != N || out.N != N || tr.N() != N {
		panic(fmt.Errorf("invalid operands: (K, N) of in=(%d, %d), out=(%d, %d) and g=(%d, %d) must match the transform N=%d", in.K(), in.N, out.K(), out.N, K, N, tr.N()))
	}

	if g.Domain != tr.Domain() {
		panic(fmt.Errorf("invalid GGSW: domain %s != transform domain %s", g.Domain, tr.Domain()))
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	size := (K + 1) * N

	state := scratch.Take[T](stack, size)
	digits := scratch.Take[T](stack, size)

	it := g.Decomposer().DecomposeTensorInto(in.Value, state, digits)

	polys := eval.takePolys(2 * (K + 1))
	dig, acc := polys[:K+1], polys[K+1:]

	overwrite := true
	for level, d, ok := it.Next(); ok; level, d, ok = it.Next() {

		for r := range dig {
			tr.ForwardInteger(d[r*N:(r+1)*N], dig[r])
		}

		for c := range acc {
			for r := range dig {
				tr.MulAcc(dig[r], g.At(level, r, c), acc[c], overwrite && r == 0)
			}
		}

		overwrite = false
	}

	for c := range acc {
		tr.AddBackwardTorus(acc[c], out.Poly(c), stack)
	}
}

// CMUX evaluates ct0 = ct0 + g x (ct1 - ct0), that is an encryption of ct1 if g
// encrypts 1 and of ct0 if g encrypts 0. ct1 is used as a buffer and its content
// is destroyed.
func (eval Evaluator[T, E]) CMUX(ct0, ct1 *glwe.Ciphertext[T], g *Transformed[T, E]) {
	ct1.Sub(ct1, ct0)
	eval.AddExternalProduct(ct0, g, ct1)
}
