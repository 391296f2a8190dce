// Package glwe implements GLWE secret keys and ciphertexts over the discretized
// torus, their encryption and decryption, the extraction of LWE samples, the
// private and public functional packing keyswitches from LWE ciphertexts to GLWE
// ciphertexts, and the leveled product of GLWE ciphertexts by tensoring followed
// by relinearization.
package glwe

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/sampling"
)

// SecretKey is a GLWE secret key: K polynomials of N small integer
// coefficients, stored contiguously.
type SecretKey[T torus.Torus] struct {
	Distribution torus.KeyDistribution
	K, N         int
	Value        []T
}

// NewSecretKey returns a new zero [SecretKey] with the [torus.Custom] distribution.
func NewSecretKey[T torus.Torus](K, N int) *SecretKey[T] {
	return &SecretKey[T]{
		Distribution: torus.KeyDistribution{Kind: torus.Custom},
		K:            K,
		N:            N,
		Value:        make([]T, K*N),
	}
}

// GenerateSecretKey samples a new [SecretKey] from the distribution d.
func GenerateSecretKey[T torus.Torus](K, N int, d torus.KeyDistribution, source *sampling.Source) *SecretKey[T] {

	if !utils.IsPowerOfTwo(N) {
		panic(fmt.Errorf("invalid polynomial size: N=%d must be a power of two", N))
	}

	sk := &SecretKey[T]{Distribution: d, K: K, N: N, Value: make([]T, K*N)}
	torus.SampleKey(d, source, sk.Value)
	return sk
}

// Poly returns the i-th polynomial of the key.
func (sk SecretKey[T]) Poly(i int) []T {
	return sk.Value[i*sk.N : (i+1)*sk.N : (i+1)*sk.N]
}

// AsLWEKey returns the LWE key of dimension K*N sharing the storage of the receiver.
// Samples extracted with [SampleExtract] decrypt under this key.
func (sk *SecretKey[T]) AsLWEKey() *lwe.SecretKey[T] {
	return &lwe.SecretKey[T]{Distribution: sk.Distribution, Value: sk.Value}
}

// Destroy zeroes the coefficients of the key.
func (sk *SecretKey[T]) Destroy() {
	clear(sk.Value)
}

// Equal performs a deep equal.
func (sk SecretKey[T]) Equal(other *SecretKey[T]) bool {
	return sk.K == other.K && sk.N == other.N && cmp.Equal(sk.Distribution, other.Distribution) && slices.Equal(sk.Value, other.Value)
}

// Ciphertext is a GLWE ciphertext: K mask polynomials followed
// by the body polynomial, stored contiguously.
type Ciphertext[T torus.Torus] struct {
	N     int
	Value []T
}

// NewCiphertext returns a new zero [Ciphertext].
func NewCiphertext[T torus.Torus](K, N int) (ct *Ciphertext[T]) {
	ct = new(Ciphertext[T])
	ct.FromBuffer(K, N, make([]T, ct.BufferSize(K, N)))
	return
}

// BufferSize returns the minimum buffer size
// to instantiate the receiver through [FromBuffer].
func (ct *Ciphertext[T]) BufferSize(K, N int) int {
	return (K + 1) * N
}

// FromBuffer assigns new backing array to the receiver.
// Method panics if len(buf) is too small.
// Minimum backing array size can be obtained with [BufferSize].
func (ct *Ciphertext[T]) FromBuffer(K, N int, buf []T) {
	size := ct.BufferSize(K, N)
	if len(buf) < size {
		panic(fmt.Errorf("invalid buffer size: len(buf)=%d < %d", len(buf), size))
	}
	ct.N = N
	ct.Value = buf[:size:size]
}

// K returns the number of mask polynomials of the ciphertext.
func (ct Ciphertext[T]) K() int {
	return len(ct.Value)/ct.N - 1
}

// Poly returns the i-th polynomial of the ciphertext, the body being the K-th.
func (ct Ciphertext[T]) Poly(i int) []T {
	return ct.Value[i*ct.N : (i+1)*ct.N : (i+1)*ct.N]
}

// Mask returns the mask polynomials of the ciphertext, stored contiguously.
func (ct Ciphertext[T]) Mask() []T {
	return ct.Value[:len(ct.Value)-ct.N]
}

// Body returns the body polynomial of the ciphertext.
func (ct Ciphertext[T]) Body() []T {
	return ct.Value[len(ct.Value)-ct.N:]
}

// IsTrivial returns true if the mask of the ciphertext is zero.
func (ct Ciphertext[T]) IsTrivial() bool {
	for _, a := range ct.Mask() {
		if a != 0 {
			return false
		}
	}
	return true
}

// CopyNew returns a deep copy of the ciphertext.
func (ct Ciphertext[T]) CopyNew() *Ciphertext[T] {
	return &Ciphertext[T]{N: ct.N, Value: slices.Clone(ct.Value)}
}

// Copy copies other on the receiver.
func (ct *Ciphertext[T]) Copy(other *Ciphertext[T]) {
	copy(ct.Value, other.Value)
}

// Equal performs a deep equal.
func (ct Ciphertext[T]) Equal(other *Ciphertext[T]) bool {
	return ct.N == other.N && slices.Equal(ct.Value, other.Value)
}

// Add evaluates ct = a + b.
func (ct *Ciphertext[T]) Add(a, b *Ciphertext[T]) {
	torus.Add(a.Value, b.Value, ct.Value)
}

// Sub evaluates ct = a - b.
func (ct *Ciphertext[T]) Sub(a, b *Ciphertext[T]) {
	torus.Sub(a.Value, b.Value, ct.Value)
}

// MulByMonomial evaluates ct = a * X^e. ct and a must not alias.
func (ct *Ciphertext[T]) MulByMonomial(a *Ciphertext[T], e int) {
	for i := 0; i <= a.K(); i++ {
		torus.MulByMonomial(a.Poly(i), e, ct.Poly(i))
	}
}

// MulByMonomialInPlace evaluates ct = ct * X^e.
func (ct *Ciphertext[T]) MulByMonomialInPlace(e int) {
	for i := 0; i <= ct.K(); i++ {
		torus.MulByMonomialInPlace(ct.Poly(i), e)
	}
}

// Zero sets the ciphertext to zero.
func (ct *Ciphertext[T]) Zero() {
	clear(ct.Value)
}

// TrivialEncrypt sets ct to the trivial encryption (0, ..., 0, pt) of pt.
func TrivialEncrypt[T torus.Torus](pt []T, ct *Ciphertext[T]) {
	clear(ct.Mask())
	copy(ct.Body(), pt)
}

// Decrypt writes the phase B - sum_i A_i * S_i of ct under sk on pt.
func Decrypt[T torus.Torus](sk *SecretKey[T], ct *Ciphertext[T], pt []T) {

	if ct.K() != sk.K || ct.N != sk.N {
		panic(fmt.Errorf("invalid ciphertext: (K, N)=(%d, %d) != key (K, N)=(%d, %d)", ct.K(), ct.N, sk.K, sk.N))
	}

	buf := make([]T, torus.MulBufferSize(sk.N))
	prod := make([]T, sk.N)

	copy(pt, ct.Body())
	for i := 0; i < sk.K; i++ {
		torus.Mul(ct.Poly(i), sk.Poly(i), prod, buf)
		torus.Sub(pt, prod, pt)
	}
}

// SampleExtract extracts the j-th coefficient of the plaintext of in as an LWE
// ciphertext of dimension K*N, decryptable under [SecretKey.AsLWEKey].
func SampleExtract[T torus.Torus](out *lwe.Ciphertext[T], in *Ciphertext[T], j int) {

	K, N := in.K(), in.N

	if out.Dimension() != K*N {
		panic(fmt.Errorf("invalid output: dimension %d != K*N=%d", out.Dimension(), K*N))
	}

	if j < 0 || j >= N {
		panic(fmt.Errorf("invalid index: j=%d not in [0, %d)", j, N))
	}

	mask := out.Mask()

	for i := 0; i < K; i++ {
		a, m := in.Poly(i), mask[i*N:(i+1)*N]
		for t := 0; t <= j; t++ {
			m[t] = a[j-t]
		}
		for t := j + 1; t < N; t++ {
			m[t] = -a[N+j-t]
		}
	}

	*out.Body() = in.Body()[j]
}
