package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
)

// GenerateRelinearizationKey generates the relinearization key of sk, with the
// decomposition dd and a noise of standard deviation std.
func (e *Engine[T]) GenerateRelinearizationKey(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*glwe.RelinearizationKey[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return glwe.GenerateRelinearizationKey(sk, dd, std, e.gen)
}

// GenerateRelinearizationKeyUnchecked is the unchecked [Engine.GenerateRelinearizationKey].
func (e *Engine[T]) GenerateRelinearizationKeyUnchecked(sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *glwe.RelinearizationKey[T] {
	rlk, err := glwe.GenerateRelinearizationKey(sk, dd, std, e.gen)
	if err != nil {
		panic(fmt.Errorf("glwe.GenerateRelinearizationKey: %w", err))
	}
	return rlk
}

// DiscardMultiplyGLWECiphertext evaluates the leveled product of a and b, encrypting
// polynomials scaled by 2^deltaLog, and writes the relinearized result on out.
func (e *Engine[T]) DiscardMultiplyGLWECiphertext(out, a, b *glwe.Ciphertext[T], deltaLog int, rlk *glwe.RelinearizationKey[T]) error {
	if err := checkDeltaLog[T](deltaLog); err != nil {
		return err
	}
	if err := checkDecomposition[T](rlk.Decomposition); err != nil {
		return err
	}
	for _, ct := range []struct {
		what string
		ct   *glwe.Ciphertext[T]
	}{{"output", out}, {"left input", a}, {"right input", b}} {
		if err := checkGLWE(ct.what, ct.ct.K(), ct.ct.N, rlk.K, rlk.N); err != nil {
			return err
		}
	}
	e.DiscardMultiplyGLWECiphertextUnchecked(out, a, b, deltaLog, rlk)
	return nil
}

// DiscardMultiplyGLWECiphertextUnchecked is the unchecked [Engine.DiscardMultiplyGLWECiphertext].
func (e *Engine[T]) DiscardMultiplyGLWECiphertextUnchecked(out, a, b *glwe.Ciphertext[T], deltaLog int, rlk *glwe.RelinearizationKey[T]) {
	rlk.Multiply(out, a, b, deltaLog)
}

// GeneratePackingKeyswitchKey generates the public functional packing keyswitch
// key from skIn to skOut.
func (e *Engine[T]) GeneratePackingKeyswitchKey(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64) (*glwe.PackingKeyswitchKey[T], error) {
	if err := checkDecomposition[T](dd); err != nil {
		return nil, err
	}
	return glwe.GeneratePackingKeyswitchKey(skIn, skOut, dd, std, e.gen)
}

// GeneratePackingKeyswitchKeyUnchecked is the unchecked [Engine.GeneratePackingKeyswitchKey].
func (e *Engine[T]) GeneratePackingKeyswitchKeyUnchecked(skIn *lwe.SecretKey[T], skOut *glwe.SecretKey[T], dd decomposition.Parameters, std float64) *glwe.PackingKeyswitchKey[T] {
	pk, err := glwe.GeneratePackingKeyswitchKey(skIn, skOut, dd, std, e.gen)
	if err != nil {
		panic(fmt.Errorf("glwe.GeneratePackingKeyswitchKey: %w", err))
	}
	return pk
}

// DiscardPublicFunctionalPackingKeyswitchLWECiphertextVector switches ins to out while
// applying the public linear function f, see [glwe.PackingKeyswitchKey.PublicFunctionalKeyswitch].
func (e *Engine[T]) DiscardPublicFunctionalPackingKeyswitchLWECiphertextVector(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], f func(x, poly []T), pk *glwe.PackingKeyswitchKey[T]) error {
	if err := checkDecomposition[T](pk.Decomposition); err != nil {
		return err
	}
	if len(ins) == 0 {
		return fmt.Errorf("%w: no input", ErrDimensionMismatch)
	}
	for i, in := range ins {
		if err := checkLWE(fmt.Sprintf("input %d", i), in, pk.InputDimension); err != nil {
			return err
		}
	}
	if err := checkGLWE("output", out.K(), out.N, pk.K, pk.N); err != nil {
		return err
	}
	e.DiscardPublicFunctionalPackingKeyswitchLWECiphertextVectorUnchecked(out, ins, f, pk)
	return nil
}

// DiscardPublicFunctionalPackingKeyswitchLWECiphertextVectorUnchecked is the unchecked
// [Engine.DiscardPublicFunctionalPackingKeyswitchLWECiphertextVector].
func (e *Engine[T]) DiscardPublicFunctionalPackingKeyswitchLWECiphertextVectorUnchecked(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], f func(x, poly []T), pk *glwe.PackingKeyswitchKey[T]) {
	pk.PublicFunctionalKeyswitch(out, ins, f)
}
