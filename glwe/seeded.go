package glwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
)

// SeededCiphertext is a GLWE ciphertext whose mask is replaced by the seed of
// the uniform stream it is drawn from. It is expanded to a [Ciphertext] with
// [SeededCiphertext.Expand].
type SeededCiphertext[T torus.Torus] struct {
	K, N int
	Seed torus.MaskSeed
	// Body is the polynomial of size N of the body.
	Body []T
}

// NewSeededCiphertext returns a new zero [SeededCiphertext] of dimension K
// and polynomial size N.
func NewSeededCiphertext[T torus.Torus](K, N int) *SeededCiphertext[T] {
	return &SeededCiphertext[T]{K: K, N: N, Body: make([]T, N)}
}

// Expand regenerates the mask of ct and writes the full ciphertext on out.
func (ct SeededCiphertext[T]) Expand(out *Ciphertext[T]) {
	if out.K() != ct.K || out.N != ct.N {
		panic(fmt.Errorf("invalid ciphertext: (K, N)=(%d, %d) != seeded (K, N)=(%d, %d)", out.K(), out.N, ct.K, ct.N))
	}
	torus.NewMaskSampler[T](ct.Seed).Read(out.Mask())
	copy(out.Body(), ct.Body)
}

// EncryptSeeded encrypts pt on ct as [Encryptor.Encrypt] does, with a mask drawn
// from a new seed of the mask source of the generator. If pt is nil, it encrypts zero.
// It consumes exactly [torus.SeededGLWEBudget] bytes of the generator.
func (enc Encryptor[T]) EncryptSeeded(pt []T, std float64, ct *SeededCiphertext[T]) {

	sk := enc.sk

	if ct.K != sk.K || ct.N != sk.N {
		panic(fmt.Errorf("invalid ciphertext: (K, N)=(%d, %d) != key (K, N)=(%d, %d)", ct.K, ct.N, sk.K, sk.N))
	}

	ct.Seed = enc.gen.NewMaskSeed()

	full := NewCiphertext[T](ct.K, ct.N)
	torus.NewMaskSampler[T](ct.Seed).Read(full.Mask())
	enc.encryptBody(pt, std, full)

	copy(ct.Body, full.Body())
}
