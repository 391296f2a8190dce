// Package ring implements arithmetic modulo a 64-bit NTT-friendly prime and
// the nega-cyclic number theoretic transform over Z_q[X]/(X^N+1).
// The integer transform of package transform/ntt holds one [Ring] per prime
// of its CRT basis.
package ring

import (
	"fmt"
	"math/bits"

	"github.com/Pro7ech/tfhe/utils"
)

const (
	// MaxLogModulus is the maximum bit-size of a modulus.
	// The lazy butterflies keep values in [0, 6q), which must fit on 64 bits.
	MaxLogModulus = 61

	// MinimumRingDegree is the minimum supported ring degree.
	MinimumRingDegree = 2
)

// Ring is a struct storing precomputation
// for fast modular reduction and NTT for
// a given prime modulus.
type Ring struct {
	// Polynomial nb.Coefficients
	N int

	Modulus uint64

	// Fast reduction constants
	BRedConstant [2]uint64 // Barrett Reduction
	MRedConstant uint64    // Montgomery Reduction

	*NTTTable // NTT related constants
}

// NTTTable store all the constants that are specifically tied to the NTT.
type NTTTable struct {
	NthRoot       uint64   // Nthroot used for the NTT
	PrimitiveRoot uint64   // 2N-th primitive root
	RootsForward  []uint64 //powers of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	RootsBackward []uint64 //powers of the inverse of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	NInv          uint64   //[N^-1] mod Modulus in Montgomery form
}

// NewRing creates a new [Ring] of degree N and prime modulus Modulus = 1 mod 2N,
// along with its NTT tables.
func NewRing(N int, Modulus uint64) (r *Ring, err error) {

	if N < MinimumRingDegree || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("invalid ring degree: must be a power of 2 greater than %d but is %d", MinimumRingDegree, N)
	}

	if bits.Len64(Modulus) > MaxLogModulus {
		return nil, fmt.Errorf("invalid Modulus: Modulus > 2^%d", MaxLogModulus)
	}

	if !IsPrime(Modulus) {
		return nil, fmt.Errorf("invalid modulus: %d is not prime", Modulus)
	}

	NthRoot := uint64(N) << 1

	if Modulus&(NthRoot-1) != 1 {
		return nil, fmt.Errorf("invalid modulus: %d != 1 mod NthRoot=%d", Modulus, NthRoot)
	}

	r = &Ring{
		N:            N,
		Modulus:      Modulus,
		BRedConstant: GetBRedConstant(Modulus),
		MRedConstant: GetMRedConstant(Modulus),
		NTTTable:     &NTTTable{NthRoot: NthRoot},
	}

	return r, r.genNTTTable()
}

// LogN returns log2(N).
func (r Ring) LogN() int {
	return bits.Len64(uint64(r.N) - 1)
}

// NewPoly allocates a new polynomial of N coefficients.
func (r Ring) NewPoly() []uint64 {
	return make([]uint64, r.N)
}

// genNTTTable generates the NTT tables for the target Ring.
func (r *Ring) genNTTTable() (err error) {

	Modulus := r.Modulus
	NthRoot := r.NthRoot

	var Psi uint64
	if Psi, err = PrimitiveNthRoot(Modulus, NthRoot); err != nil {
		return
	}

	r.PrimitiveRoot = Psi

	logNthRoot := bits.Len64(NthRoot>>1) - 1

	// 1.1 Computes N^(-1) mod Q in Montgomery form
	r.NInv = MForm(ModInverse(NthRoot>>1, Modulus), Modulus, r.BRedConstant)

	// 1.2 Computes Psi and PsiInv in Montgomery form
	PsiMont := MForm(Psi, Modulus, r.BRedConstant)
	PsiInvMont := MForm(ModInverse(Psi, Modulus), Modulus, r.BRedConstant)

	r.RootsForward = make([]uint64, NthRoot>>1)
	r.RootsBackward = make([]uint64, NthRoot>>1)

	r.RootsForward[0] = MForm(1, Modulus, r.BRedConstant)
	r.RootsBackward[0] = MForm(1, Modulus, r.BRedConstant)

	// Computes nttPsi[j] = nttPsi[j-1]*Psi and RootsBackward[j] = RootsBackward[j-1]*PsiInv
	for j := uint64(1); j < NthRoot>>1; j++ {

		indexReversePrev := utils.BitReverse64(j-1, logNthRoot)
		indexReverseNext := utils.BitReverse64(j, logNthRoot)

		r.RootsForward[indexReverseNext] = MRed(r.RootsForward[indexReversePrev], PsiMont, Modulus, r.MRedConstant)
		r.RootsBackward[indexReverseNext] = MRed(r.RootsBackward[indexReversePrev], PsiInvMont, Modulus, r.MRedConstant)
	}

	return
}

// PrimitiveNthRoot returns a primitive NthRoot-th root of unity modulo the prime q,
// for NthRoot a power of two dividing q-1.
//
// Candidates g^((q-1)/NthRoot) are tried for g = 2, 3, ...: a candidate psi
// is primitive if and only if psi^(NthRoot/2) = -1 mod q, which does not
// require to factor q-1.
func PrimitiveNthRoot(q, NthRoot uint64) (psi uint64, err error) {

	if NthRoot < 2 || NthRoot&(NthRoot-1) != 0 || (q-1)%NthRoot != 0 {
		return 0, fmt.Errorf("invalid NthRoot: %d must be a power of two dividing q-1=%d", NthRoot, q-1)
	}

	for g := uint64(2); g < q; g++ {
		psi = ModExp(g, (q-1)/NthRoot, q)
		if ModExp(psi, NthRoot>>1, q) == q-1 {
			return psi, nil
		}
	}

	return 0, fmt.Errorf("cannot PrimitiveNthRoot: no primitive %d-th root of unity mod %d", NthRoot, q)
}
