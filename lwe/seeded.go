package lwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
)

// SeededCiphertext is an LWE ciphertext whose mask is replaced by the seed of
// the uniform stream it is drawn from. It is expanded to a [Ciphertext] with
// [SeededCiphertext.Expand].
type SeededCiphertext[T torus.Torus] struct {
	// Dimension is the dimension n of the expanded ciphertext.
	Dimension int
	Seed      torus.MaskSeed
	Body      T
}

// NewSeededCiphertext returns a new zero [SeededCiphertext] of dimension n.
func NewSeededCiphertext[T torus.Torus](n int) *SeededCiphertext[T] {
	return &SeededCiphertext[T]{Dimension: n}
}

// Expand regenerates the mask of ct and writes the full ciphertext on out.
func (ct SeededCiphertext[T]) Expand(out *Ciphertext[T]) {
	if out.Dimension() != ct.Dimension {
		panic(fmt.Errorf("invalid ciphertext: dimension %d != seeded dimension %d", out.Dimension(), ct.Dimension))
	}
	torus.NewMaskSampler[T](ct.Seed).Read(out.Mask())
	*out.Body() = ct.Body
}

// EncryptSeeded encrypts pt on ct as [Encryptor.Encrypt] does, with a mask drawn
// from a new seed of the mask source of the generator.
// It consumes exactly [torus.SeededLWEBudget] bytes of the generator.
func (enc Encryptor[T]) EncryptSeeded(pt T, std float64, ct *SeededCiphertext[T]) {

	if ct.Dimension != enc.sk.Dimension() {
		panic(fmt.Errorf("invalid ciphertext: dimension %d != key dimension %d", ct.Dimension, enc.sk.Dimension()))
	}

	ct.Seed = enc.gen.NewMaskSeed()

	body := make([]T, 1)
	enc.gen.AddNoise(body, std)
	ct.Body = body[0] + pt

	// the mask is streamed in chunks and never stored
	mask := torus.NewMaskSampler[T](ct.Seed)
	var chunk [64]T
	for start := 0; start < ct.Dimension; start += len(chunk) {
		a := chunk[:min(len(chunk), ct.Dimension-start)]
		mask.Read(a)
		for i, ai := range a {
			ct.Body += ai * enc.sk.Value[start+i]
		}
	}
}
