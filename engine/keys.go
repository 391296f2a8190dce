package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils"
)

func checkKeyDistribution(d torus.KeyDistribution) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GenerateLWESecretKey samples a new LWE secret key of dimension n from d.
func (e *Engine[T]) GenerateLWESecretKey(n int, d torus.KeyDistribution) (*lwe.SecretKey[T], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d must be positive", ErrDimensionMismatch, n)
	}
	if err := checkKeyDistribution(d); err != nil {
		return nil, err
	}
	return e.GenerateLWESecretKeyUnchecked(n, d), nil
}

// GenerateLWESecretKeyUnchecked is the unchecked [Engine.GenerateLWESecretKey].
func (e *Engine[T]) GenerateLWESecretKeyUnchecked(n int, d torus.KeyDistribution) *lwe.SecretKey[T] {
	return lwe.GenerateSecretKey[T](n, d, e.secrets)
}

// GenerateGLWESecretKey samples a new GLWE secret key of K polynomials of size N from d.
func (e *Engine[T]) GenerateGLWESecretKey(K, N int, d torus.KeyDistribution) (*glwe.SecretKey[T], error) {
	if K < 1 {
		return nil, fmt.Errorf("%w: K=%d must be positive", ErrDimensionMismatch, K)
	}
	if N < 2 || !utils.IsPowerOfTwo(N) {
		return nil, fmt.Errorf("%w: N=%d must be a power of two", ErrUnsupportedTransformSize, N)
	}
	if err := checkKeyDistribution(d); err != nil {
		return nil, err
	}
	return e.GenerateGLWESecretKeyUnchecked(K, N, d), nil
}

// GenerateGLWESecretKeyUnchecked is the unchecked [Engine.GenerateGLWESecretKey].
func (e *Engine[T]) GenerateGLWESecretKeyUnchecked(K, N int, d torus.KeyDistribution) *glwe.SecretKey[T] {
	return glwe.GenerateSecretKey[T](K, N, d, e.secrets)
}

// GenerateBootstrapKey generates the bootstrap key of lweKey under glweKey, with
// the decomposition dd and a noise of standard deviation std. The GGSW ciphertexts
// of the key are encrypted by [Config.Workers] goroutines.
// Returns an error wrapping [ErrInvalidConfig] if lweKey is not binary.
func (e *Engine[T]) GenerateBootstrapKey(lweKey *lwe.SecretKey[T], glweKey *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*bootstrap.Key[T], error) {
	if !lweKey.IsBinary() {
		return nil, fmt.Errorf("%w: the LWE key of a bootstrap key must be binary, not %s", ErrInvalidConfig, lweKey.Distribution.Kind)
	}
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return bootstrap.GenerateKey(lweKey, glweKey, dd, std, e.gen, e.Config.Workers)
}

// GenerateBootstrapKeyUnchecked is the unchecked [Engine.GenerateBootstrapKey].
func (e *Engine[T]) GenerateBootstrapKeyUnchecked(lweKey *lwe.SecretKey[T], glweKey *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *bootstrap.Key[T] {
	bsk, err := bootstrap.GenerateKey(lweKey, glweKey, dd, std, e.gen, e.Config.Workers)
	if err != nil {
		panic(fmt.Errorf("bootstrap.GenerateKey: %w", err))
	}
	return bsk
}

// ConvertBootstrapKey maps bsk to the transform domain of the backend of the engine.
// With the [Device] backend, a replica of the key is uploaded to every device.
func (e *Engine[T]) ConvertBootstrapKey(bsk *bootstrap.Key[T]) (*TransformedBootstrapKey[T], error) {

	k, err := e.kernel(bsk.N)
	if err != nil {
		return nil, err
	}

	if err = checkDecomposition[T](bsk.Decomposition); err != nil {
		return nil, err
	}

	if err = checkLen("bootstrap key size", len(bsk.Value), bsk.InputDimension*new(ggsw.Ciphertext[T]).BufferSize(bsk.K, bsk.N, bsk.Decomposition)); err != nil {
		return nil, err
	}

	return e.convertBootstrapKey(k, bsk)
}

// ConvertBootstrapKeyUnchecked is the unchecked [Engine.ConvertBootstrapKey].
func (e *Engine[T]) ConvertBootstrapKeyUnchecked(bsk *bootstrap.Key[T]) *TransformedBootstrapKey[T] {
	out, err := e.convertBootstrapKey(e.mustKernel(bsk.N), bsk)
	if err != nil {
		panic(err)
	}
	return out
}

func (e *Engine[T]) convertBootstrapKey(k kernel[T], bsk *bootstrap.Key[T]) (out *TransformedBootstrapKey[T], err error) {

	out = &TransformedBootstrapKey[T]{
		Backend:        e.Config.Backend,
		InputDimension: bsk.InputDimension,
		K:              bsk.K,
		N:              bsk.N,
		Decomposition:  bsk.Decomposition,
		value:          k.transformKey(bsk),
	}

	if e.Config.Backend == Device {
		if out.replicas, err = e.replicateBootstrapKey(k, bsk); err != nil {
			return nil, err
		}
	}

	return
}

// GenerateLWEKeyswitchKey generates the keyswitch key from skIn to skOut, with
// the decomposition dd and a noise of standard deviation std.
func (e *Engine[T]) GenerateLWEKeyswitchKey(skIn, skOut *lwe.SecretKey[T], dd decomposition.Parameters, std float64) (*lwe.KeyswitchKey[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return lwe.GenerateKeyswitchKey(skIn, skOut, dd, std, e.gen)
}

// GenerateLWEKeyswitchKeyUnchecked is the unchecked [Engine.GenerateLWEKeyswitchKey].
func (e *Engine[T]) GenerateLWEKeyswitchKeyUnchecked(skIn, skOut *lwe.SecretKey[T], dd decomposition.Parameters, std float64) *lwe.KeyswitchKey[T] {
	ksk, err := lwe.GenerateKeyswitchKey(skIn, skOut, dd, std, e.gen)
	if err != nil {
		panic(fmt.Errorf("lwe.GenerateKeyswitchKey: %w", err))
	}
	return ksk
}

// GeneratePrivateFunctionalPackingKeyswitchKey generates the private functional packing
// keyswitch key from skIn to skOut for the linear function f and the polynomial P.
func (e *Engine[T]) GeneratePrivateFunctionalPackingKeyswitchKey(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64, f func(T) T, P []T) (*glwe.PrivateFunctionalPackingKeyswitchKey[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	if err := checkLen("len(P)", len(P), skOut.N); err != nil {
		return nil, err
	}
	return glwe.GeneratePrivateFunctionalPackingKeyswitchKey(skIn, skOut, dd, std, f, P, e.gen)
}

// GeneratePrivateFunctionalPackingKeyswitchKeyUnchecked is the unchecked [Engine.GeneratePrivateFunctionalPackingKeyswitchKey].
func (e *Engine[T]) GeneratePrivateFunctionalPackingKeyswitchKeyUnchecked(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64, f func(T) T, P []T) *glwe.PrivateFunctionalPackingKeyswitchKey[T] {
	pfk, err := glwe.GeneratePrivateFunctionalPackingKeyswitchKey(skIn, skOut, dd, std, f, P, e.gen)
	if err != nil {
		panic(fmt.Errorf("glwe.GeneratePrivateFunctionalPackingKeyswitchKey: %w", err))
	}
	return pfk
}

// GenerateCircuitBootstrapKeys generates the K+1 packing keyswitch keys of the circuit
// bootstrap of ciphertexts bootstrapped under sk.
func (e *Engine[T]) GenerateCircuitBootstrapKeys(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (bootstrap.CircuitBootstrapKeys[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return bootstrap.GenerateCircuitBootstrapKeys(sk, dd, std, e.gen)
}

// GenerateCircuitBootstrapKeysUnchecked is the unchecked [Engine.GenerateCircuitBootstrapKeys].
func (e *Engine[T]) GenerateCircuitBootstrapKeysUnchecked(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) bootstrap.CircuitBootstrapKeys[T] {
	keys, err := bootstrap.GenerateCircuitBootstrapKeys(sk, dd, std, e.gen)
	if err != nil {
		panic(fmt.Errorf("bootstrap.GenerateCircuitBootstrapKeys: %w", err))
	}
	return keys
}
