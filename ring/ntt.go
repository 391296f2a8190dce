package ring

import (
	"fmt"
)

// NTT maps the residues p1 of one CRT prime to the evaluation domain and
// writes them, in bit-reversed order and reduced in [0, Modulus), on p2.
// p1 must be in [0, Modulus). p1 and p2 may alias.
func (r Ring) NTT(p1, p2 []uint64) {
	r.checkLen("NTT", p1, p2)
	src := p1
	for stage := 1; stage < r.N; stage <<= 1 {
		forwardStage(src, p2, r.N, stage, r.Modulus, r.MRedConstant, r.RootsForward)
		src = p2
	}
	// forward butterflies leave values in [0, 6q)
	r.Reduce(p2, p2)
}

// INTT is the inverse of [Ring.NTT]. p1, in bit-reversed order, must be in
// [0, 2*Modulus) and p2 is in [0, Modulus), ready for the CRT recombination.
func (r Ring) INTT(p1, p2 []uint64) {
	r.checkLen("INTT", p1, p2)
	src := p1
	for span := r.N; span > 1; span >>= 1 {
		backwardStage(src, p2, r.N, span, r.Modulus, r.MRedConstant, r.RootsBackward)
		src = p2
	}
	for i := range p2[:r.N] {
		p2[i] = MRed(p2[i], r.NInv, r.Modulus, r.MRedConstant)
	}
}

func (r Ring) checkLen(op string, p1, p2 []uint64) {
	if len(p1) < r.N || len(p2) < r.N {
		panic(fmt.Errorf("invalid %s operands: len(p1)=%d and len(p2)=%d must be at least N=%d", op, len(p1), len(p2), r.N))
	}
}

// forwardStage applies the stage-th layer of Cooley-Tukey butterflies:
// stage blocks of 2*gap coefficients, block i twisted by roots[stage+i].
func forwardStage(src, dst []uint64, N, stage int, q, mredConstant uint64, roots []uint64) {
	gap := N / (2 * stage)
	twoQ, fourQ := 2*q, 4*q
	for i := 0; i < stage; i++ {
		psi := roots[stage+i]
		lo := 2 * i * gap
		for x := lo; x < lo+gap; x++ {
			dst[x], dst[x+gap] = butterfly(src[x], src[x+gap], psi, twoQ, fourQ, q, mredConstant)
		}
	}
}

// backwardStage applies one layer of Gentleman-Sande butterflies on
// blocks of span coefficients, block i twisted by roots[span/2+i].
func backwardStage(src, dst []uint64, N, span int, q, mredConstant uint64, roots []uint64) {
	half := span >> 1
	gap := N / span
	twoQ, fourQ := 2*q, 4*q
	for i := 0; i < half; i++ {
		psi := roots[half+i]
		lo := 2 * i * gap
		for x := lo; x < lo+gap; x++ {
			dst[x], dst[x+gap] = invbutterfly(src[x], src[x+gap], psi, twoQ, fourQ, q, mredConstant)
		}
	}
}
