package lwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
)

// Encryptor is a struct dedicated to the encryption of LWE ciphertexts
// under a [SecretKey].
type Encryptor[T torus.Torus] struct {
	sk  *SecretKey[T]
	gen *torus.EncryptionGenerator[T]
}

// NewEncryptor creates a new [Encryptor] drawing its randomness from gen.
func NewEncryptor[T torus.Torus](sk *SecretKey[T], gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{sk: sk, gen: gen}
}

// WithGenerator returns a shallow copy of the receiver drawing
// its randomness from gen.
func (enc Encryptor[T]) WithGenerator(gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{sk: enc.sk, gen: gen}
}

// Encrypt encrypts pt on ct with a Gaussian noise of standard deviation std:
// ct = (a, <a, s> + pt + e).
// It consumes exactly [torus.LWEBudget] bytes of the generator.
func (enc Encryptor[T]) Encrypt(pt T, std float64, ct *Ciphertext[T]) {

	if ct.Dimension() != enc.sk.Dimension() {
		panic(fmt.Errorf("invalid ciphertext: dimension %d != key dimension %d", ct.Dimension(), enc.sk.Dimension()))
	}

	mask := ct.Mask()
	enc.gen.FillMask(mask)

	body := ct.Value[len(mask):]
	body[0] = 0
	enc.gen.AddNoise(body, std)

	body[0] += pt
	for i, a := range mask {
		body[0] += a * enc.sk.Value[i]
	}
}

// EncryptZero encrypts zero on ct.
func (enc Encryptor[T]) EncryptZero(std float64, ct *Ciphertext[T]) {
	enc.Encrypt(0, std, ct)
}
