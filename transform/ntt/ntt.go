// Package ntt implements the exact number-theoretic backend of the polynomial
// product over Z_{2^W}[X]/(X^N+1).
//
// Operands are lifted to signed integers and reduced modulo three NTT-friendly
// primes of 58 bits, whose product P exceeds 2^173. Products are computed in
// the NTT domain of each prime and reconstructed with the Garner algorithm,
// centered in (-P/2, P/2), and reduced modulo 2^W. The result is exact as long
// as the coefficients of the integer product are smaller than P/2 in absolute
// value, which holds for every admissible gadget decomposition.
package ntt

import (
	"fmt"
	"math/big"

	"github.com/Pro7ech/tfhe/ring"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/bignum"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

const (
	// MinLogN is the base-2 logarithm of the smallest supported polynomial size.
	MinLogN = 7
	// MaxLogN is the base-2 logarithm of the largest supported polynomial size.
	MaxLogN = 12

	// LogModulus is the bit-size of the residue primes.
	LogModulus = 58

	// Residues is the number of residue primes.
	Residues = 3
)

// Supports returns true if the polynomial size N is supported by the backend.
func Supports(N int) bool {
	return utils.IsPowerOfTwo(N) && N >= 1<<MinLogN && N <= 1<<MaxLogN
}

// Transform is the number-theoretic backend for polynomials of N coefficients.
// The transform domain holds 3N residues, the i-th block of N residues being
// the NTT modulo the i-th prime.
type Transform[T torus.Torus] struct {
	n     int
	rings [Residues]*ring.Ring

	// Garner constants
	p0InvP1, p0InvP2, p1InvP2 uint64

	// Mixed-radix digits of (P-1)/2
	half [Residues]uint64

	// p0 and p0*p1 and P modulo 2^64
	p0, p01, p uint64
}

var _ transform.Transform[uint64, []uint64] = (*Transform[uint64])(nil)

// New returns a new number-theoretic [Transform] for polynomials of N coefficients.
// Returns [transform.ErrUnsupportedSize] if N is not supported.
func New[T torus.Torus](N int) (tr *Transform[T], err error) {

	if !Supports(N) {
		return nil, fmt.Errorf("%w: N=%d must be a power of two in [2^%d, 2^%d]", transform.ErrUnsupportedSize, N, MinLogN, MaxLogN)
	}

	var primes []uint64
	if primes, err = ring.GenerateNTTPrimes(LogModulus, 2*N, Residues); err != nil {
		return nil, fmt.Errorf("ring.GenerateNTTPrimes: %w", err)
	}

	tr = &Transform[T]{n: N}

	for i := range tr.rings {
		if tr.rings[i], err = ring.NewRing(N, primes[i]); err != nil {
			return nil, fmt.Errorf("ring.NewRing: %w", err)
		}
	}

	p0, p1, p2 := primes[0], primes[1], primes[2]

	tr.p0InvP1 = ring.ModInverse(p0%p1, p1)
	tr.p0InvP2 = ring.ModInverse(p0%p2, p2)
	tr.p1InvP2 = ring.ModInverse(p1%p2, p2)

	P := bignum.Product(primes...)
	half := new(big.Int).Sub(P, bignum.NewInt(1))
	half.Rsh(half, 1)
	copy(tr.half[:], bignum.MixedRadix(half, primes...))

	tr.p0 = p0
	tr.p01 = p0 * p1
	tr.p = p0 * p1 * p2

	return
}

// Moduli returns the residue primes.
func (tr *Transform[T]) Moduli() (moduli []uint64) {
	moduli = make([]uint64, Residues)
	for i := range moduli {
		moduli[i] = tr.rings[i].Modulus
	}
	return
}

func (tr *Transform[T]) N() int { return tr.n }

func (tr *Transform[T]) Domain() transform.Domain { return transform.NumberTheoretic }

func (tr *Transform[T]) NewPoly() []uint64 { return make([]uint64, Residues*tr.n) }

func (tr *Transform[T]) TakePoly(stack *scratch.Stack) []uint64 {
	return scratch.Take[uint64](stack, Residues*tr.n)
}

func (tr *Transform[T]) PolyScratch() scratch.Req { return scratch.Of[uint64](Residues * tr.n) }

func (tr *Transform[T]) BackwardScratch() scratch.Req { return scratch.Of[uint64](Residues * tr.n) }

// ModSwitchInto writes on out the residues of the signed lift of p modulo each prime.
func (tr *Transform[T]) ModSwitchInto(p []T, out []uint64) {

	N := tr.n

	if len(p) < N || len(out) < Residues*N {
		panic(fmt.Errorf("invalid sizes: len(p)=%d < N=%d or len(out)=%d < 3N=%d", len(p), N, len(out), Residues*N))
	}

	for i, r := range tr.rings {
		q, brc := r.Modulus, r.BRedConstant
		res := out[i*N : (i+1)*N]
		for j := 0; j < N; j++ {
			if s := torus.ToSigned(p[j]); s >= 0 {
				res[j] = ring.BRedAdd(uint64(s), q, brc)
			} else {
				res[j] = ring.CRed(q-ring.BRedAdd(uint64(-s), q, brc), q)
			}
		}
	}
}

// ForwardInteger maps p, read as signed integers, to the NTT domain.
func (tr *Transform[T]) ForwardInteger(p []T, out []uint64) {
	tr.ModSwitchInto(p, out)
	N := tr.n
	for i, r := range tr.rings {
		res := out[i*N : (i+1)*N]
		r.NTT(res, res)
	}
}

// ForwardTorus maps p, read as signed integers, to the NTT domain
// in Montgomery form.
func (tr *Transform[T]) ForwardTorus(p []T, out []uint64) {
	tr.ForwardInteger(p, out)
	N := tr.n
	for i, r := range tr.rings {
		res := out[i*N : (i+1)*N]
		r.MForm(res, res)
	}
}

// MulAcc evaluates acc = acc + a * b, or acc = a * b if overwrite is true.
func (tr *Transform[T]) MulAcc(a, b, acc []uint64, overwrite bool) {
	N := tr.n
	for i, r := range tr.rings {
		ai, bi, ci := a[i*N:(i+1)*N], b[i*N:(i+1)*N], acc[i*N:(i+1)*N]
		if overwrite {
			r.MulCoeffsMontgomery(ai, bi, ci)
		} else {
			r.MulCoeffsMontgomeryThenAdd(ai, bi, ci)
		}
	}
}

// AddBackwardTorus evaluates out = out + backward(in) mod 2^W.
func (tr *Transform[T]) AddBackwardTorus(in []uint64, out []T, stack *scratch.Stack) {
	tr.backward(in, out, stack, true)
}

// BackwardTorus evaluates out = backward(in) mod 2^W.
func (tr *Transform[T]) BackwardTorus(in []uint64, out []T, stack *scratch.Stack) {
	tr.backward(in, out, stack, false)
}

func (tr *Transform[T]) backward(in []uint64, out []T, stack *scratch.Stack, add bool) {

	N := tr.n

	if len(in) < Residues*N || len(out) < N {
		panic(fmt.Errorf("invalid sizes: len(in)=%d < 3N=%d or len(out)=%d < N=%d", len(in), Residues*N, len(out), N))
	}

	frame := stack.Mark()
	defer stack.Release(frame)

	tmp := scratch.Take[uint64](stack, Residues*N)

	for i, r := range tr.rings {
		r.INTT(in[i*N:(i+1)*N], tmp[i*N:(i+1)*N])
	}

	tr.ModSwitchFrom(tmp, out, add)
}

// ModSwitchFrom reconstructs, from the residues in, the centered integers in
// (-P/2, P/2) and writes (or adds if add is true) their value modulo 2^W on out.
func (tr *Transform[T]) ModSwitchFrom(in []uint64, out []T, add bool) {

	N := tr.n

	r1, r2 := tr.rings[1], tr.rings[2]
	p1, p2 := r1.Modulus, r2.Modulus
	brc1, brc2 := r1.BRedConstant, r2.BRedConstant

	for j := 0; j < N; j++ {

		x0 := in[j]
		x1 := in[N+j]
		x2 := in[2*N+j]

		// t1 = (x1 - x0) / p0 mod p1
		t1 := ring.BRed(ring.CRed(x1+p1-ring.BRedAdd(x0, p1, brc1), p1), tr.p0InvP1, p1, brc1)

		// t2 = ((x2 - x0) / p0 - t1) / p1 mod p2
		t2 := ring.BRed(ring.CRed(x2+p2-ring.BRedAdd(x0, p2, brc2), p2), tr.p0InvP2, p2, brc2)
		t2 = ring.BRed(ring.CRed(t2+p2-ring.BRedAdd(t1, p2, brc2), p2), tr.p1InvP2, p2, brc2)

		// x = x0 + t1 * p0 + t2 * p0 * p1 mod 2^64
		v := x0 + t1*tr.p0 + t2*tr.p01

		if tr.greaterThanHalf(t2, t1, x0) {
			v -= tr.p
		}

		if add {
			out[j] += T(v)
		} else {
			out[j] = T(v)
		}
	}

}

// greaterThanHalf returns true if the integer of mixed-radix
// digits (t2, t1, t0) is greater than (P-1)/2.
func (tr *Transform[T]) greaterThanHalf(t2, t1, t0 uint64) bool {
	if t2 != tr.half[2] {
		return t2 > tr.half[2]
	}
	if t1 != tr.half[1] {
		return t1 > tr.half[1]
	}
	return t0 > tr.half[0]
}
