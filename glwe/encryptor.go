package glwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
)

// Encryptor is a struct dedicated to the encryption of GLWE ciphertexts
// under a [SecretKey].
type Encryptor[T torus.Torus] struct {
	sk  *SecretKey[T]
	gen *torus.EncryptionGenerator[T]
	buf []T
}

// NewEncryptor creates a new [Encryptor] drawing its randomness from gen.
func NewEncryptor[T torus.Torus](sk *SecretKey[T], gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{
		sk:  sk,
		gen: gen,
		buf: make([]T, torus.MulBufferSize(sk.N)),
	}
}

// ShallowCopy creates a shallow copy of this [Encryptor] in which the key is shared
// with the receiver and the temporary buffers are reallocated. The receiver and
// the returned Encryptor can be used concurrently if they draw from distinct generators.
func (enc Encryptor[T]) ShallowCopy() *Encryptor[T] {
	return NewEncryptor(enc.sk, enc.gen)
}

// WithGenerator creates a shallow copy of the receiver drawing its randomness from gen
// and sharing the key and the temporary buffers of the receiver.
// The receiver and the returned Encryptor cannot be used concurrently.
func (enc Encryptor[T]) WithGenerator(gen *torus.EncryptionGenerator[T]) *Encryptor[T] {
	return &Encryptor[T]{sk: enc.sk, gen: gen, buf: enc.buf}
}

// Encrypt encrypts the polynomial pt on ct with a Gaussian noise of standard
// deviation std: ct = (A, sum_i A_i * S_i + pt + E).
// If pt is nil, it encrypts zero.
// It consumes exactly [torus.GLWEBudget] bytes of the generator.
func (enc Encryptor[T]) Encrypt(pt []T, std float64, ct *Ciphertext[T]) {

	sk := enc.sk

	if ct.K() != sk.K || ct.N != sk.N {
		panic(fmt.Errorf("invalid ciphertext: (K, N)=(%d, %d) != key (K, N)=(%d, %d)", ct.K(), ct.N, sk.K, sk.N))
	}

	enc.gen.FillMask(ct.Mask())
	enc.encryptBody(pt, std, ct)
}

// encryptBody sets the body of ct, whose mask is already drawn.
func (enc Encryptor[T]) encryptBody(pt []T, std float64, ct *Ciphertext[T]) {

	sk := enc.sk

	body := ct.Body()
	clear(body)
	enc.gen.AddNoise(body, std)

	if pt != nil {
		torus.Add(body, pt, body)
	}

	for i := 0; i < sk.K; i++ {
		torus.MulThenAdd(ct.Poly(i), sk.Poly(i), body, enc.buf)
	}
}

// EncryptZero encrypts zero on ct.
func (enc Encryptor[T]) EncryptZero(std float64, ct *Ciphertext[T]) {
	enc.Encrypt(nil, std, ct)
}
