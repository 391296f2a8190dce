package glwe

import (
	"fmt"
	"math/bits"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/torus"
)

// TensorCiphertext is the rescaled tensor product of two GLWE ciphertexts of
// dimension K. It is a ciphertext under the quadratic key (S_i, S_i * S_j) for
// i <= j, of phase B - sum_i L_i * S_i + sum_{i <= j} Q_{i,j} * S_i * S_j.
type TensorCiphertext[T torus.Torus] struct {
	K, N int
	// Value stores the polynomials in the order [L_0..L_{K-1}][Q_{i,j} for i <= j][B].
	Value []T
}

// NewTensorCiphertext returns a new zero [TensorCiphertext].
func NewTensorCiphertext[T torus.Torus](K, N int) *TensorCiphertext[T] {
	return &TensorCiphertext[T]{K: K, N: N, Value: make([]T, (K+Pairs(K)+1)*N)}
}

// Pairs returns the number K(K+1)/2 of quadratic terms of a GLWE key of dimension K.
func Pairs(K int) int {
	return K * (K + 1) / 2
}

// pairIndex returns the index of the pair (i, j), i <= j, in the row-major order.
func pairIndex(i, j, K int) int {
	return i*K - i*(i-1)/2 + j - i
}

// Linear returns the polynomial multiplying S_i.
func (ct TensorCiphertext[T]) Linear(i int) []T {
	return ct.poly(i)
}

// Quadratic returns the polynomial multiplying S_i * S_j, for i <= j.
func (ct TensorCiphertext[T]) Quadratic(i, j int) []T {
	return ct.poly(ct.K + pairIndex(i, j, ct.K))
}

// Body returns the body polynomial.
func (ct TensorCiphertext[T]) Body() []T {
	return ct.poly(ct.K + Pairs(ct.K))
}

func (ct TensorCiphertext[T]) poly(i int) []T {
	return ct.Value[i*ct.N : (i+1)*ct.N : (i+1)*ct.N]
}

// DecryptTensor writes the phase of ct under the quadratic key derived from sk on pt.
func DecryptTensor[T torus.Torus](sk *SecretKey[T], ct *TensorCiphertext[T], pt []T) {

	if ct.K != sk.K || ct.N != sk.N {
		panic(fmt.Errorf("invalid ciphertext: (K, N)=(%d, %d) != key (K, N)=(%d, %d)", ct.K, ct.N, sk.K, sk.N))
	}

	buf := make([]T, torus.MulBufferSize(sk.N))
	prod := make([]T, sk.N)
	sij := make([]T, sk.N)

	copy(pt, ct.Body())
	for i := 0; i < sk.K; i++ {
		torus.Mul(ct.Linear(i), sk.Poly(i), prod, buf)
		torus.Sub(pt, prod, pt)
		for j := i; j < sk.K; j++ {
			torus.Mul(sk.Poly(i), sk.Poly(j), sij, buf)
			torus.MulThenAdd(ct.Quadratic(i, j), sij, pt, buf)
		}
	}
}

// TensorProduct writes on out the tensor product of a and b divided by 2^deltaLog:
//
//	Q_{i,i} = A_i * A'_i
//	Q_{i,j} = A_i * A'_j + A_j * A'_i, for i < j
//	L_i     = A_i * B' + B * A'_i
//	B       = B * B'
//
// The products are computed over the integers on the centered lifts of the
// coefficients and rounded after the division. For a and b encrypting m and m'
// scaled by 2^deltaLog, out encrypts m * m' scaled by 2^deltaLog.
func TensorProduct[T torus.Torus](out *TensorCiphertext[T], a, b *Ciphertext[T], deltaLog int) {

	K, N := a.K(), a.N

	if b.K() != K || b.N != N || out.K != K || out.N != N {
		panic(fmt.Errorf("invalid ciphertexts: a (K, N)=(%d, %d), b (K, N)=(%d, %d) and out (K, N)=(%d, %d) must match", K, N, b.K(), b.N, out.K, out.N))
	}

	if W := torus.Bits[T](); deltaLog < 0 || deltaLog >= W {
		panic(fmt.Errorf("invalid scaling: deltaLog=%d must be in [0, %d]", deltaLog, W-1))
	}

	acc := make([]wide, N)

	product := func(dst []T, terms ...[]T) {
		clear(acc)
		for t := 0; t < len(terms); t += 2 {
			mulAccWide(terms[t], terms[t+1], acc)
		}
		for k := range dst {
			dst[k] = T(acc[k].roundShift(deltaLog))
		}
	}

	Ba, Bb := a.Body(), b.Body()

	for i := 0; i < K; i++ {
		product(out.Linear(i), a.Poly(i), Bb, Ba, b.Poly(i))
		product(out.Quadratic(i, i), a.Poly(i), b.Poly(i))
		for j := i + 1; j < K; j++ {
			product(out.Quadratic(i, j), a.Poly(i), b.Poly(j), a.Poly(j), b.Poly(i))
		}
	}

	product(out.Body(), Ba, Bb)
}

// wide is an integer modulo 2^128.
type wide struct {
	hi, lo uint64
}

func lift[T torus.Torus](x T) wide {
	s := torus.ToSigned(x)
	return wide{hi: uint64(s >> 63), lo: uint64(s)}
}

func (x wide) add(y wide) (z wide) {
	var carry uint64
	z.lo, carry = bits.Add64(x.lo, y.lo, 0)
	z.hi, _ = bits.Add64(x.hi, y.hi, carry)
	return
}

func (x wide) sub(y wide) (z wide) {
	var borrow uint64
	z.lo, borrow = bits.Sub64(x.lo, y.lo, 0)
	z.hi, _ = bits.Sub64(x.hi, y.hi, borrow)
	return
}

func (x wide) mul(y wide) (z wide) {
	z.hi, z.lo = bits.Mul64(x.lo, y.lo)
	z.hi += x.lo*y.hi + x.hi*y.lo
	return
}

// roundShift returns the low 64 bits of round(x / 2^d), for d in [0, 63].
func (x wide) roundShift(d int) uint64 {
	if d == 0 {
		return x.lo
	}
	x = x.add(wide{lo: 1 << (d - 1)})
	return x.lo>>d | x.hi<<(64-d)
}

// mulAccWide evaluates acc = acc + a * b mod X^N+1 on the centered lifts of a and b.
// The result is exact modulo 2^128.
func mulAccWide[T torus.Torus](a, b []T, acc []wide) {
	N := len(acc)
	for i := 0; i < N; i++ {
		ai := lift(a[i])
		for j := 0; j < N-i; j++ {
			acc[i+j] = acc[i+j].add(ai.mul(lift(b[j])))
		}
		for j := N - i; j < N; j++ {
			acc[i+j-N] = acc[i+j-N].sub(ai.mul(lift(b[j])))
		}
	}
}

// RelinearizationKey switches a [TensorCiphertext] back to a GLWE ciphertext
// under the linear key. For each pair i <= j and each level l in [1, Level], it
// stores a GLWE encryption of S_i * S_j * 2^(W - BaseLog * l).
type RelinearizationKey[T torus.Torus] struct {
	Decomposition decomposition.Parameters
	K, N          int
	// Value stores the rows in the order [Pairs(K)][Level].
	Value []T
}

// NewRelinearizationKey allocates a new zero [RelinearizationKey].
func NewRelinearizationKey[T torus.Torus](dd decomposition.Parameters, K, N int) *RelinearizationKey[T] {
	return &RelinearizationKey[T]{
		Decomposition: dd,
		K:             K,
		N:             N,
		Value:         make([]T, Pairs(K)*dd.Level*(K+1)*N),
	}
}

// Row returns the row of the pair (i, j), i <= j, at the given level.
// The returned ciphertext shares the backing array of the key.
func (rlk RelinearizationKey[T]) Row(i, j, level int) *Ciphertext[T] {
	size := (rlk.K + 1) * rlk.N
	start := (pairIndex(i, j, rlk.K)*rlk.Decomposition.Level + level - 1) * size
	return &Ciphertext[T]{N: rlk.N, Value: rlk.Value[start : start+size : start+size]}
}

// GenerateRelinearizationKey generates a new [RelinearizationKey] for sk.
// The generator is forked into one child per row.
func GenerateRelinearizationKey[T torus.Torus](sk *SecretKey[T], dd decomposition.Parameters, std float64, gen *torus.EncryptionGenerator[T]) (rlk *RelinearizationKey[T], err error) {

	W := torus.Bits[T]()

	if err = dd.Validate(W); err != nil {
		return nil, err
	}

	K, N := sk.K, sk.N

	var children []*torus.EncryptionGenerator[T]
	if children, err = gen.TryForkBudget(Pairs(K)*dd.Level, torus.GLWEBudget[T](K, N)); err != nil {
		return nil, fmt.Errorf("gen.TryForkBudget: %w", err)
	}

	rlk = NewRelinearizationKey[T](dd, K, N)

	enc := NewEncryptor(sk, nil)

	sij := make([]T, N)
	pt := make([]T, N)

	for i := 0; i < K; i++ {
		for j := i; j < K; j++ {
			torus.Mul(sk.Poly(i), sk.Poly(j), sij, enc.buf)
			p := pairIndex(i, j, K)
			for level := 1; level <= dd.Level; level++ {
				torus.MulScalar(sij, T(1)<<dd.ScalingLog(W, level), pt)
				enc.WithGenerator(children[p*dd.Level+level-1]).Encrypt(pt, std, rlk.Row(i, j, level))
			}
		}
	}

	return
}

// Relinearize switches in to the GLWE ciphertext out of the same phase.
// out is overwritten.
//
// out = (L, B) + sum_{i <= j} sum_l D_{i,j,l} * R[i][j][l] with D_{i,j,l} the signed
// decomposition of the closest representable values of the coefficients of Q_{i,j}.
func (rlk RelinearizationKey[T]) Relinearize(out *Ciphertext[T], in *TensorCiphertext[T]) {

	K, N := rlk.K, rlk.N

	if in.K != K || in.N != N || out.K() != K || out.N != N {
		panic(fmt.Errorf("invalid ciphertexts: in (K, N)=(%d, %d) and out (K, N)=(%d, %d) != key (K, N)=(%d, %d)", in.K, in.N, out.K(), out.N, K, N))
	}

	for i := 0; i < K; i++ {
		copy(out.Poly(i), in.Linear(i))
	}
	copy(out.Body(), in.Body())

	decomposer := decomposition.NewSignedDecomposer[T](rlk.Decomposition)
	state, digits := make([]T, N), make([]T, N)
	buf := make([]T, torus.MulBufferSize(N))

	for i := 0; i < K; i++ {
		for j := i; j < K; j++ {
			it := decomposer.DecomposeTensorInto(in.Quadratic(i, j), state, digits)
			for level, d, ok := it.Next(); ok; level, d, ok = it.Next() {
				row := rlk.Row(i, j, level)
				for r := 0; r <= K; r++ {
					torus.MulThenAdd(d, row.Poly(r), out.Poly(r), buf)
				}
			}
		}
	}
}

// Multiply evaluates the leveled product of a and b, encrypting m and m' scaled by
// 2^deltaLog, and writes on out an encryption of m * m' scaled by 2^deltaLog.
func (rlk RelinearizationKey[T]) Multiply(out, a, b *Ciphertext[T], deltaLog int) {
	tensor := NewTensorCiphertext[T](rlk.K, rlk.N)
	TensorProduct(tensor, a, b, deltaLog)
	rlk.Relinearize(out, tensor)
}
