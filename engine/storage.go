package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/utils"
)

// CreateLWECiphertextFrom returns the LWE ciphertext of dimension n backed by raw.
// raw must hold exactly n+1 elements: the mask followed by the body.
func (e *Engine[T]) CreateLWECiphertextFrom(raw []T, n int) (*lwe.Ciphertext[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d must be positive", ErrDimensionMismatch, n)
	}
	if err := checkLen("len(raw)", len(raw), new(lwe.Ciphertext[T]).BufferSize(n)); err != nil {
		return nil, err
	}
	return e.CreateLWECiphertextFromUnchecked(raw, n), nil
}

// CreateLWECiphertextFromUnchecked is the unchecked [Engine.CreateLWECiphertextFrom].
func (e *Engine[T]) CreateLWECiphertextFromUnchecked(raw []T, n int) (ct *lwe.Ciphertext[T]) {
	ct = new(lwe.Ciphertext[T])
	ct.FromBuffer(n, raw)
	return
}

// CreateGLWECiphertextFrom returns the GLWE ciphertext of K polynomials of size N backed by raw.
// raw must hold exactly (K+1)*N elements.
func (e *Engine[T]) CreateGLWECiphertextFrom(raw []T, K, N int) (*glwe.Ciphertext[T], error) {
	if K < 1 || N < 2 || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("%w: K=%d must be positive and N=%d a power of two", ErrDimensionMismatch, K, N)
	}
	if err := checkLen("len(raw)", len(raw), new(glwe.Ciphertext[T]).BufferSize(K, N)); err != nil {
		return nil, err
	}
	return e.CreateGLWECiphertextFromUnchecked(raw, K, N), nil
}

// CreateGLWECiphertextFromUnchecked is the unchecked [Engine.CreateGLWECiphertextFrom].
func (e *Engine[T]) CreateGLWECiphertextFromUnchecked(raw []T, K, N int) (ct *glwe.Ciphertext[T]) {
	ct = new(glwe.Ciphertext[T])
	ct.FromBuffer(K, N, raw)
	return
}

// CreateGGSWCiphertextFrom returns the GGSW ciphertext of K polynomials of size N and
// decomposition dd backed by raw. raw must hold exactly Level*(K+1)*(K+1)*N elements.
func (e *Engine[T]) CreateGGSWCiphertextFrom(raw []T, K, N int, dd decomposition.Parameters) (*ggsw.Ciphertext[T], error) {
	if K < 1 || N < 2 || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("%w: K=%d must be positive and N=%d a power of two", ErrDimensionMismatch, K, N)
	}
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	if err := checkLen("len(raw)", len(raw), new(ggsw.Ciphertext[T]).BufferSize(K, N, dd)); err != nil {
		return nil, err
	}
	return e.CreateGGSWCiphertextFromUnchecked(raw, K, N, dd), nil
}

// CreateGGSWCiphertextFromUnchecked is the unchecked [Engine.CreateGGSWCiphertextFrom].
func (e *Engine[T]) CreateGGSWCiphertextFromUnchecked(raw []T, K, N int, dd decomposition.Parameters) (ct *ggsw.Ciphertext[T]) {
	ct = new(ggsw.Ciphertext[T])
	ct.FromBuffer(K, N, dd, raw)
	return
}

// ConsumeLWECiphertext returns the storage of ct. ct must not be used afterwards.
func (e *Engine[T]) ConsumeLWECiphertext(ct *lwe.Ciphertext[T]) (raw []T) {
	raw, ct.Value = ct.Value, nil
	return
}

// ConsumeGLWECiphertext returns the storage of ct. ct must not be used afterwards.
func (e *Engine[T]) ConsumeGLWECiphertext(ct *glwe.Ciphertext[T]) (raw []T) {
	raw, ct.Value = ct.Value, nil
	return
}

// ConsumeGGSWCiphertext returns the storage of ct. ct must not be used afterwards.
func (e *Engine[T]) ConsumeGGSWCiphertext(ct *ggsw.Ciphertext[T]) (raw []T) {
	raw, ct.Value = ct.Value, nil
	return
}

// DestroyLWESecretKey zeroes sk.
func (e *Engine[T]) DestroyLWESecretKey(sk *lwe.SecretKey[T]) {
	sk.Destroy()
}

// DestroyGLWESecretKey zeroes sk.
func (e *Engine[T]) DestroyGLWESecretKey(sk *glwe.SecretKey[T]) {
	sk.Destroy()
}

// DestroyTransformedGGSWCiphertext releases g. g must not be used afterwards.
func (e *Engine[T]) DestroyTransformedGGSWCiphertext(g *TransformedGGSWCiphertext[T]) {
	g.value = nil
}

// DestroyTransformedBootstrapKey releases bsk and its device replicas.
// bsk must not be used afterwards.
func (e *Engine[T]) DestroyTransformedBootstrapKey(bsk *TransformedBootstrapKey[T]) {
	freeReplicas(bsk.replicas)
	bsk.replicas = nil
	bsk.value = nil
}

// DestroyLWEKeyswitchKey releases the device replicas of ksk.
func (e *Engine[T]) DestroyLWEKeyswitchKey(ksk *lwe.KeyswitchKey[T]) {
	for _, a := range e.ksks[ksk] {
		a.Free()
	}
	delete(e.ksks, ksk)
}
