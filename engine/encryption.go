package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/utils"
)

// DiscardEncryptLWECiphertext encrypts pt under sk with a noise of standard deviation std and writes the result on out.
func (e *Engine[T]) DiscardEncryptLWECiphertext(sk *lwe.SecretKey[T], out *lwe.Ciphertext[T], pt T, std float64) error {
	if err := checkLWE("output", out, sk.Dimension()); err != nil {
		return err
	}
	e.DiscardEncryptLWECiphertextUnchecked(sk, out, pt, std)
	return nil
}

// DiscardEncryptLWECiphertextUnchecked is the unchecked [Engine.DiscardEncryptLWECiphertext].
func (e *Engine[T]) DiscardEncryptLWECiphertextUnchecked(sk *lwe.SecretKey[T], out *lwe.Ciphertext[T], pt T, std float64) {
	lwe.NewEncryptor(sk, e.gen).Encrypt(pt, std, out)
}

// DecryptLWECiphertext returns the phase of ct under sk.
func (e *Engine[T]) DecryptLWECiphertext(sk *lwe.SecretKey[T], ct *lwe.Ciphertext[T]) (T, error) {
	if err := checkLWE("input", ct, sk.Dimension()); err != nil {
		return 0, err
	}
	return e.DecryptLWECiphertextUnchecked(sk, ct), nil
}

// DecryptLWECiphertextUnchecked is the unchecked [Engine.DecryptLWECiphertext].
func (e *Engine[T]) DecryptLWECiphertextUnchecked(sk *lwe.SecretKey[T], ct *lwe.Ciphertext[T]) T {
	return lwe.Decrypt(sk, ct)
}

// TrivialEncryptLWECiphertext returns the noiseless encryption of pt of dimension n, with a zero mask.
func (e *Engine[T]) TrivialEncryptLWECiphertext(n int, pt T) (*lwe.Ciphertext[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d must be positive", ErrDimensionMismatch, n)
	}
	return e.TrivialEncryptLWECiphertextUnchecked(n, pt), nil
}

// TrivialEncryptLWECiphertextUnchecked is the unchecked [Engine.TrivialEncryptLWECiphertext].
func (e *Engine[T]) TrivialEncryptLWECiphertextUnchecked(n int, pt T) (ct *lwe.Ciphertext[T]) {
	ct = lwe.NewCiphertext[T](n)
	lwe.TrivialEncrypt(pt, ct)
	return
}

func checkGLWE(what string, K, N, wantK, wantN int) error {
	if K != wantK || N != wantN {
		return fmt.Errorf("%w: %s (K, N)=(%d, %d) != (%d, %d)", ErrDimensionMismatch, what, K, N, wantK, wantN)
	}
	return nil
}

// DiscardEncryptGLWECiphertext encrypts the polynomial pt under sk with a noise of standard
// deviation std and writes the result on out.
func (e *Engine[T]) DiscardEncryptGLWECiphertext(sk *glwe.SecretKey[T], out *glwe.Ciphertext[T], pt []T, std float64) error {
	if err := checkGLWE("output", out.K(), out.N, sk.K, sk.N); err != nil {
		return err
	}
	if err := checkLen("len(pt)", len(pt), sk.N); err != nil {
		return err
	}
	e.DiscardEncryptGLWECiphertextUnchecked(sk, out, pt, std)
	return nil
}

// DiscardEncryptGLWECiphertextUnchecked is the unchecked [Engine.DiscardEncryptGLWECiphertext].
func (e *Engine[T]) DiscardEncryptGLWECiphertextUnchecked(sk *glwe.SecretKey[T], out *glwe.Ciphertext[T], pt []T, std float64) {
	glwe.NewEncryptor(sk, e.gen).Encrypt(pt, std, out)
}

// DiscardDecryptGLWECiphertext writes the phase of ct under sk on pt.
func (e *Engine[T]) DiscardDecryptGLWECiphertext(sk *glwe.SecretKey[T], ct *glwe.Ciphertext[T], pt []T) error {
	if err := checkGLWE("input", ct.K(), ct.N, sk.K, sk.N); err != nil {
		return err
	}
	if err := checkLen("len(pt)", len(pt), sk.N); err != nil {
		return err
	}
	e.DiscardDecryptGLWECiphertextUnchecked(sk, ct, pt)
	return nil
}

// DiscardDecryptGLWECiphertextUnchecked is the unchecked [Engine.DiscardDecryptGLWECiphertext].
func (e *Engine[T]) DiscardDecryptGLWECiphertextUnchecked(sk *glwe.SecretKey[T], ct *glwe.Ciphertext[T], pt []T) {
	glwe.Decrypt(sk, ct, pt)
}

// TrivialEncryptGLWECiphertext returns the noiseless encryption of dimension K of the
// polynomial pt, with a zero mask.
func (e *Engine[T]) TrivialEncryptGLWECiphertext(K int, pt []T) (*glwe.Ciphertext[T], error) {
	if K < 1 {
		return nil, fmt.Errorf("%w: K=%d must be positive", ErrDimensionMismatch, K)
	}
	if len(pt) < 2 || !utils.IsPowerOfTwo(len(pt)) {
		return nil, fmt.Errorf("%w: len(pt)=%d must be a power of two", ErrDimensionMismatch, len(pt))
	}
	return e.TrivialEncryptGLWECiphertextUnchecked(K, pt), nil
}

// TrivialEncryptGLWECiphertextUnchecked is the unchecked [Engine.TrivialEncryptGLWECiphertext].
func (e *Engine[T]) TrivialEncryptGLWECiphertextUnchecked(K int, pt []T) (ct *glwe.Ciphertext[T]) {
	ct = glwe.NewCiphertext[T](K, len(pt))
	glwe.TrivialEncrypt(pt, ct)
	return
}

// EncryptScalarGGSWCiphertext returns the GGSW encryption of the scalar m under sk,
// with the decomposition dd and a noise of standard deviation std.
func (e *Engine[T]) EncryptScalarGGSWCiphertext(sk *glwe.SecretKey[T], m T, std float64, dd decomposition.Parameters) (*ggsw.Ciphertext[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return e.EncryptScalarGGSWCiphertextUnchecked(sk, m, std, dd), nil
}

// EncryptScalarGGSWCiphertextUnchecked is the unchecked [Engine.EncryptScalarGGSWCiphertext].
func (e *Engine[T]) EncryptScalarGGSWCiphertextUnchecked(sk *glwe.SecretKey[T], m T, std float64, dd decomposition.Parameters) (ct *ggsw.Ciphertext[T]) {
	ct = ggsw.NewCiphertext[T](sk.K, sk.N, dd)
	ggsw.NewEncryptor(sk, e.gen).Encrypt(m, std, ct)
	return
}

// ConvertGGSWCiphertext maps ct to the transform domain of the backend of the engine.
func (e *Engine[T]) ConvertGGSWCiphertext(ct *ggsw.Ciphertext[T]) (*TransformedGGSWCiphertext[T], error) {
	if _, err := e.kernel(ct.N); err != nil {
		return nil, err
	}
	if err := checkDecomposition[T](ct.Decomposition); err != nil {
		return nil, err
	}
	if err := checkLen("GGSW ciphertext size", len(ct.Value), ct.BufferSize(ct.K, ct.N, ct.Decomposition)); err != nil {
		return nil, err
	}
	return e.ConvertGGSWCiphertextUnchecked(ct), nil
}

// ConvertGGSWCiphertextUnchecked is the unchecked [Engine.ConvertGGSWCiphertext].
func (e *Engine[T]) ConvertGGSWCiphertextUnchecked(ct *ggsw.Ciphertext[T]) *TransformedGGSWCiphertext[T] {
	return &TransformedGGSWCiphertext[T]{
		Backend:       e.Config.Backend,
		K:             ct.K,
		N:             ct.N,
		Decomposition: ct.Decomposition,
		value:         e.mustKernel(ct.N).transformGGSW(ct),
	}
}

// DiscardEncryptSeededLWECiphertext encrypts pt under sk on out, whose mask is kept as a seed
// drawn from the mask source of the engine.
func (e *Engine[T]) DiscardEncryptSeededLWECiphertext(sk *lwe.SecretKey[T], out *lwe.SeededCiphertext[T], pt T, std float64) error {
	if err := checkLen("output dimension", out.Dimension, sk.Dimension()); err != nil {
		return err
	}
	e.DiscardEncryptSeededLWECiphertextUnchecked(sk, out, pt, std)
	return nil
}

// DiscardEncryptSeededLWECiphertextUnchecked is the unchecked [Engine.DiscardEncryptSeededLWECiphertext].
func (e *Engine[T]) DiscardEncryptSeededLWECiphertextUnchecked(sk *lwe.SecretKey[T], out *lwe.SeededCiphertext[T], pt T, std float64) {
	lwe.NewEncryptor(sk, e.gen).EncryptSeeded(pt, std, out)
}

// DiscardExpandSeededLWECiphertext regenerates the mask of in and writes the full ciphertext on out.
func (e *Engine[T]) DiscardExpandSeededLWECiphertext(out *lwe.Ciphertext[T], in *lwe.SeededCiphertext[T]) error {
	if err := checkLWE("output", out, in.Dimension); err != nil {
		return err
	}
	e.DiscardExpandSeededLWECiphertextUnchecked(out, in)
	return nil
}

// DiscardExpandSeededLWECiphertextUnchecked is the unchecked [Engine.DiscardExpandSeededLWECiphertext].
func (e *Engine[T]) DiscardExpandSeededLWECiphertextUnchecked(out *lwe.Ciphertext[T], in *lwe.SeededCiphertext[T]) {
	in.Expand(out)
}

// DiscardEncryptSeededGLWECiphertext encrypts the polynomial pt under sk on out, whose mask
// is kept as a seed drawn from the mask source of the engine.
func (e *Engine[T]) DiscardEncryptSeededGLWECiphertext(sk *glwe.SecretKey[T], out *glwe.SeededCiphertext[T], pt []T, std float64) error {
	if err := checkGLWE("output", out.K, out.N, sk.K, sk.N); err != nil {
		return err
	}
	if err := checkLen("len(pt)", len(pt), sk.N); err != nil {
		return err
	}
	if err := checkLen("len(out.Body)", len(out.Body), sk.N); err != nil {
		return err
	}
	e.DiscardEncryptSeededGLWECiphertextUnchecked(sk, out, pt, std)
	return nil
}

// DiscardEncryptSeededGLWECiphertextUnchecked is the unchecked [Engine.DiscardEncryptSeededGLWECiphertext].
func (e *Engine[T]) DiscardEncryptSeededGLWECiphertextUnchecked(sk *glwe.SecretKey[T], out *glwe.SeededCiphertext[T], pt []T, std float64) {
	glwe.NewEncryptor(sk, e.gen).EncryptSeeded(pt, std, out)
}

// DiscardExpandSeededGLWECiphertext regenerates the mask of in and writes the full ciphertext on out.
func (e *Engine[T]) DiscardExpandSeededGLWECiphertext(out *glwe.Ciphertext[T], in *glwe.SeededCiphertext[T]) error {
	if err := checkGLWE("output", out.K(), out.N, in.K, in.N); err != nil {
		return err
	}
	if err := checkLen("len(in.Body)", len(in.Body), in.N); err != nil {
		return err
	}
	e.DiscardExpandSeededGLWECiphertextUnchecked(out, in)
	return nil
}

// DiscardExpandSeededGLWECiphertextUnchecked is the unchecked [Engine.DiscardExpandSeededGLWECiphertext].
func (e *Engine[T]) DiscardExpandSeededGLWECiphertextUnchecked(out *glwe.Ciphertext[T], in *glwe.SeededCiphertext[T]) {
	in.Expand(out)
}
