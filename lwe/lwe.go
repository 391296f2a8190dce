// Package lwe implements LWE secret keys and ciphertexts over the discretized
// torus, their encryption and decryption, and LWE-to-LWE keyswitching.
package lwe

import (
	"fmt"
	"slices"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/sampling"
)

// SecretKey is an LWE secret key: a vector of n small integers stored modulo 2^W.
type SecretKey[T torus.Torus] struct {
	Distribution torus.KeyDistribution
	Value        []T
}

// NewSecretKey returns a new zero [SecretKey] of dimension n with
// the [torus.Custom] distribution, to be filled by the caller.
func NewSecretKey[T torus.Torus](n int) *SecretKey[T] {
	return &SecretKey[T]{
		Distribution: torus.KeyDistribution{Kind: torus.Custom},
		Value:        make([]T, n),
	}
}

// GenerateSecretKey samples a new [SecretKey] of dimension n from the distribution d.
func GenerateSecretKey[T torus.Torus](n int, d torus.KeyDistribution, source *sampling.Source) *SecretKey[T] {
	sk := &SecretKey[T]{Distribution: d, Value: make([]T, n)}
	torus.SampleKey(d, source, sk.Value)
	return sk
}

// Dimension returns the dimension n of the key.
func (sk SecretKey[T]) Dimension() int {
	return len(sk.Value)
}

// IsBinary returns true if every coefficient of the key is 0 or 1.
func (sk SecretKey[T]) IsBinary() bool {
	for _, s := range sk.Value {
		if s > 1 {
			return false
		}
	}
	return true
}

// Destroy zeroes the coefficients of the key.
func (sk *SecretKey[T]) Destroy() {
	clear(sk.Value)
}

// Equal performs a deep equal.
func (sk SecretKey[T]) Equal(other *SecretKey[T]) bool {
	return cmp.Equal(sk.Distribution, other.Distribution) && slices.Equal(sk.Value, other.Value)
}

// Ciphertext is an LWE ciphertext of dimension n: n mask elements
// followed by the body.
type Ciphertext[T torus.Torus] struct {
	Value []T
}

// NewCiphertext returns a new zero [Ciphertext] of dimension n.
func NewCiphertext[T torus.Torus](n int) (ct *Ciphertext[T]) {
	ct = new(Ciphertext[T])
	ct.FromBuffer(n, make([]T, ct.BufferSize(n)))
	return
}

// BufferSize returns the minimum buffer size
// to instantiate the receiver through [FromBuffer].
func (ct *Ciphertext[T]) BufferSize(n int) int {
	return n + 1
}

// FromBuffer assigns new backing array to the receiver.
// Method panics if len(buf) is too small.
// Minimum backing array size can be obtained with [BufferSize].
func (ct *Ciphertext[T]) FromBuffer(n int, buf []T) {
	if size := ct.BufferSize(n); len(buf) < size {
		panic(fmt.Errorf("invalid buffer size: len(buf)=%d < %d", len(buf), size))
	}
	ct.Value = buf[: n+1 : n+1]
}

// Dimension returns the dimension n of the ciphertext.
func (ct Ciphertext[T]) Dimension() int {
	return len(ct.Value) - 1
}

// Mask returns the mask of the ciphertext.
func (ct Ciphertext[T]) Mask() []T {
	return ct.Value[:len(ct.Value)-1]
}

// Body returns a pointer to the body of the ciphertext.
func (ct Ciphertext[T]) Body() *T {
	return &ct.Value[len(ct.Value)-1]
}

// CopyNew returns a deep copy of the ciphertext.
func (ct Ciphertext[T]) CopyNew() *Ciphertext[T] {
	return &Ciphertext[T]{Value: slices.Clone(ct.Value)}
}

// Copy copies other on the receiver.
func (ct *Ciphertext[T]) Copy(other *Ciphertext[T]) {
	copy(ct.Value, other.Value)
}

// Equal performs a deep equal.
func (ct Ciphertext[T]) Equal(other *Ciphertext[T]) bool {
	return slices.Equal(ct.Value, other.Value)
}

// Add evaluates ct = a + b.
func (ct *Ciphertext[T]) Add(a, b *Ciphertext[T]) {
	torus.Add(a.Value, b.Value, ct.Value)
}

// Sub evaluates ct = a - b.
func (ct *Ciphertext[T]) Sub(a, b *Ciphertext[T]) {
	torus.Sub(a.Value, b.Value, ct.Value)
}

// MulScalar evaluates ct = a * s for a cleartext s.
func (ct *Ciphertext[T]) MulScalar(a *Ciphertext[T], s T) {
	torus.MulScalar(a.Value, s, ct.Value)
}

// AddPlaintext evaluates ct = ct + pt.
func (ct *Ciphertext[T]) AddPlaintext(pt T) {
	*ct.Body() += pt
}

// TrivialEncrypt sets ct to the trivial encryption (0, ..., 0, pt) of pt.
func TrivialEncrypt[T torus.Torus](pt T, ct *Ciphertext[T]) {
	clear(ct.Value)
	*ct.Body() = pt
}

// Decrypt returns the phase b - <a, s> of ct under sk.
func Decrypt[T torus.Torus](sk *SecretKey[T], ct *Ciphertext[T]) (pt T) {

	if ct.Dimension() != sk.Dimension() {
		panic(fmt.Errorf("invalid ciphertext: dimension %d != key dimension %d", ct.Dimension(), sk.Dimension()))
	}

	pt = *ct.Body()
	for i, a := range ct.Mask() {
		pt -= a * sk.Value[i]
	}
	return
}
