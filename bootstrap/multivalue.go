package bootstrap

import (
	"fmt"

	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// MultiValueLUT returns the integer polynomial L_f(X) * (1 - X) used by
// [Evaluator.MultiValueBootstrap] to evaluate f on messages in [0, modulus),
// where L_f holds f(i) on the i-th block of N/modulus coefficients.
// The product is computed exactly.
func MultiValueLUT[T torus.Torus](N, modulus int, f func(m uint64) uint64) (lut []T) {

	if modulus < 1 || N%modulus != 0 {
		panic(fmt.Errorf("invalid modulus: %d must divide N=%d", modulus, N))
	}

	box := N / modulus

	lf := make([]T, N)
	for i := 0; i < modulus; i++ {
		v := T(f(uint64(i)))
		for j := i * box; j < (i+1)*box; j++ {
			lf[j] = v
		}
	}

	// L_f(X) * (1 - X) = L_f(X) - X * L_f(X) mod X^N+1
	lut = make([]T, N)
	lut[0] = lf[0] + lf[N-1]
	for j := 1; j < N; j++ {
		lut[j] = lf[j] - lf[j-1]
	}

	return
}

// MultiValueScratch returns the scratch requirement of [Evaluator.MultiValueBootstrap].
func (eval Evaluator[T, E]) MultiValueScratch() scratch.Req {
	tr, K := eval.Transform, eval.Key.K
	return scratch.All(
		scratch.Of[T]((K+1)*tr.N()),
		scratch.Any(
			BlindRotateScratch(tr, K, eval.Key.Decomposition),
			scratch.All(tr.PolyScratch().Times(K+3), tr.BackwardScratch()),
		),
	)
}

// MultiValueBootstrap evaluates the look-up tables luts, obtained with [MultiValueLUT],
// on the plaintext m * 2^(W-1) / modulus of in, with a single blind rotation, and writes
// an encryption of luts[j](m) * 2^(W-1) / modulus on outs[j], of dimension K*N.
func (eval Evaluator[T, E]) MultiValueBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T) {

	if len(outs) != len(luts) {
		panic(fmt.Errorf("invalid outputs: len(outs)=%d != len(luts)=%d", len(outs), len(luts)))
	}

	tr := eval.Transform
	K, N := eval.Key.K, eval.Key.N

	if modulus < 1 || N%modulus != 0 {
		panic(fmt.Errorf("invalid modulus: %d must divide N=%d", modulus, N))
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	// common accumulator of body delta/2
	acc := takeGLWE[T](stack, K, N)
	clear(acc.Mask())
	halfDelta := (T(1) << (torus.Bits[T]() - 1)) / T(2*modulus)
	body := acc.Body()
	for j := range body {
		body[j] = halfDelta
	}

	eval.BlindRotate(acc, in)

	// centers the blocks
	acc.MulByMonomialInPlace(-N / (2 * modulus))

	fAcc := make([]E, K+1)
	for c := range fAcc {
		fAcc[c] = tr.TakePoly(stack)
		tr.ForwardTorus(acc.Poly(c), fAcc[c])
	}

	fLUT := tr.TakePoly(stack)
	prod := tr.TakePoly(stack)

	for j, lut := range luts {

		if len(lut) != N {
			panic(fmt.Errorf("invalid look-up table: len(luts[%d])=%d != N=%d", j, len(lut), N))
		}

		tr.ForwardInteger(lut, fLUT)

		for c := range fAcc {
			tr.MulAcc(fLUT, fAcc[c], prod, true)
			tr.BackwardTorus(prod, acc.Poly(c), stack)
		}

		glwe.SampleExtract(outs[j], acc, 0)
	}
}
