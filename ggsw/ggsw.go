// Package ggsw implements GGSW ciphertexts over the discretized torus, their
// representation in the domain of a [transform.Transform], and the external
// product GGSW x GLWE -> GLWE with the CMUX gate built on top of it.
package ggsw

import (
	"fmt"
	"slices"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Ciphertext is a GGSW ciphertext: for each level l in [1, Level], a matrix
// of K+1 GLWE rows. The row r of level l encrypts m * 2^(W - BaseLog * l)
// times the unit vector in position r, the K-th position being the body.
type Ciphertext[T torus.Torus] struct {
	Decomposition decomposition.Parameters
	K, N          int
	// Value stores the GLWE rows in the order [Level][K+1].
	Value []T
}

// NewCiphertext returns a new zero [Ciphertext].
func NewCiphertext[T torus.Torus](K, N int, dd decomposition.Parameters) (ct *Ciphertext[T]) {
	ct = new(Ciphertext[T])
	ct.FromBuffer(K, N, dd, make([]T, ct.BufferSize(K, N, dd)))
	return
}

// BufferSize returns the minimum buffer size
// to instantiate the receiver through [FromBuffer].
func (ct *Ciphertext[T]) BufferSize(K, N int, dd decomposition.Parameters) int {
	return dd.Level * (K + 1) * (K + 1) * N
}

// FromBuffer assigns new backing array to the receiver.
// Method panics if len(buf) is too small.
// Minimum backing array size can be obtained with [BufferSize].
func (ct *Ciphertext[T]) FromBuffer(K, N int, dd decomposition.Parameters, buf []T) {
	size := ct.BufferSize(K, N, dd)
	if len(buf) < size {
		panic(fmt.Errorf("invalid buffer size: len(buf)=%d < %d", len(buf), size))
	}
	ct.Decomposition = dd
	ct.K, ct.N = K, N
	ct.Value = buf[:size:size]
}

// Row returns the r-th GLWE row of the given level, for level in [1, Level] and r in [0, K].
// The returned ciphertext shares the backing array of the receiver.
func (ct Ciphertext[T]) Row(level, r int) *glwe.Ciphertext[T] {
	size := (ct.K + 1) * ct.N
	start := ((level-1)*(ct.K+1) + r) * size
	return &glwe.Ciphertext[T]{N: ct.N, Value: ct.Value[start : start+size : start+size]}
}

// Equal performs a deep equal.
func (ct Ciphertext[T]) Equal(other *Ciphertext[T]) bool {
	return ct.Decomposition.Equal(other.Decomposition) && ct.K == other.K && ct.N == other.N && slices.Equal(ct.Value, other.Value)
}

// TrivialEncrypt sets ct to the noiseless GGSW encryption of m.
func TrivialEncrypt[T torus.Torus](m T, ct *Ciphertext[T]) {
	clear(ct.Value)
	addGadget(m, ct)
}

// addGadget adds m * 2^(W - BaseLog * l) to the constant coefficient
// of the r-th polynomial of the r-th row of each level l.
func addGadget[T torus.Torus](m T, ct *Ciphertext[T]) {
	W := torus.Bits[T]()
	for level := 1; level <= ct.Decomposition.Level; level++ {
		g := m << ct.Decomposition.ScalingLog(W, level)
		for r := 0; r <= ct.K; r++ {
			ct.Row(level, r).Poly(r)[0] += g
		}
	}
}

// Encryptor is a struct dedicated to the encryption of GGSW ciphertexts.
type Encryptor[T torus.Torus] struct {
	*glwe.Encryptor[T]
}

// NewEncryptor creates a new [Encryptor] under sk drawing its randomness from gen.
func NewEncryptor[T torus.Torus](sk *glwe.SecretKey[T], gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{Encryptor: glwe.NewEncryptor(sk, gen)}
}

// ShallowCopy creates a shallow copy of the receiver with reallocated temporary buffers.
func (enc Encryptor[T]) ShallowCopy() *Encryptor[T] {
	return &Encryptor[T]{Encryptor: enc.Encryptor.ShallowCopy()}
}

// WithGenerator creates a shallow copy of the receiver drawing its randomness from gen.
// The receiver and the returned Encryptor share their temporary buffers and cannot be
// used concurrently.
func (enc Encryptor[T]) WithGenerator(gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{Encryptor: enc.Encryptor.WithGenerator(gen)}
}

// Encrypt encrypts the scalar m on ct: each row is an encryption of zero to
// which the gadget factors of m are added.
// It consumes exactly [torus.GGSWBudget] bytes of the generator.
func (enc Encryptor[T]) Encrypt(m T, std float64, ct *Ciphertext[T]) {
	for level := 1; level <= ct.Decomposition.Level; level++ {
		for r := 0; r <= ct.K; r++ {
			enc.EncryptZero(std, ct.Row(level, r))
		}
	}
	addGadget(m, ct)
}

// Transformed is a GGSW ciphertext whose polynomials are in the domain of a transform.
type Transformed[T torus.Torus, E any] struct {
	Decomposition decomposition.Parameters
	K, N          int
	Domain        transform.Domain
	// Value stores the polynomials in the order [Level][K+1][K+1].
	Value []E

	decomposer *decomposition.SignedDecomposer[T]
}

// NewTransformed allocates a new [Transformed] ciphertext for the transform tr.
func NewTransformed[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters) *Transformed[T, E] {
	value := make([]E, dd.Level*(K+1)*(K+1))
	for i := range value {
		value[i] = tr.NewPoly()
	}
	return &Transformed[T, E]{
		Decomposition: dd,
		K:             K,
		N:             tr.N(),
		Domain:        tr.Domain(),
		Value:         value,
		decomposer:    decomposition.NewSignedDecomposer[T](dd),
	}
}

// TakeTransformed returns a [Transformed] ciphertext backed by the stack.
func TakeTransformed[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters, stack *scratch.Stack) *Transformed[T, E] {
	value := make([]E, dd.Level*(K+1)*(K+1))
	for i := range value {
		value[i] = tr.TakePoly(stack)
	}
	return &Transformed[T, E]{
		Decomposition: dd,
		K:             K,
		N:             tr.N(),
		Domain:        tr.Domain(),
		Value:         value,
		decomposer:    decomposition.NewSignedDecomposer[T](dd),
	}
}

// TransformedScratch returns the scratch requirement of [TakeTransformed].
func TransformedScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters) scratch.Req {
	return tr.PolyScratch().Times(dd.Level * (K + 1) * (K + 1))
}

// Decomposer returns the decomposer of the inputs of the external products with ct.
func (ct *Transformed[T, E]) Decomposer() *decomposition.SignedDecomposer[T] {
	if ct.decomposer == nil {
		return decomposition.NewSignedDecomposer[T](ct.Decomposition)
	}
	return ct.decomposer
}

// At returns the c-th polynomial of the r-th row of the given level.
func (ct Transformed[T, E]) At(level, r, c int) E {
	return ct.Value[((level-1)*(ct.K+1)+r)*(ct.K+1)+c]
}

// TransformCiphertext maps in to the domain of tr and writes the result on out.
func TransformCiphertext[T torus.Torus, E any](tr transform.Transform[T, E], in *Ciphertext[T], out *Transformed[T, E]) {

	if in.K != out.K || in.N != out.N || in.N != tr.N() || !in.Decomposition.Equal(out.Decomposition) {
		panic(fmt.Errorf("invalid ciphertexts: in (K=%d, N=%d, %s), out (K=%d, N=%d, %s) and transform N=%d must match", in.K, in.N, in.Decomposition, out.K, out.N, out.Decomposition, tr.N()))
	}

	for level := 1; level <= in.Decomposition.Level; level++ {
		for r := 0; r <= in.K; r++ {
			row := in.Row(level, r)
			for c := 0; c <= in.K; c++ {
				tr.ForwardTorus(row.Poly(c), out.At(level, r, c))
			}
		}
	}
}
