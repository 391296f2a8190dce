package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils"
)

func checkCircuitKeys[T torus.Torus](keys bootstrap.CircuitBootstrapKeys[T], bsk *TransformedBootstrapKey[T], K, N int) error {
	if err := checkLen("len(keys)", len(keys), K+1); err != nil {
		return err
	}
	for r, key := range keys {
		if key.InputDimension != bsk.OutputDimension() || key.K != K || key.N != N {
			return fmt.Errorf("%w: circuit bootstrap key %d (n, K, N)=(%d, %d, %d) != (%d, %d, %d)", ErrDimensionMismatch, r, key.InputDimension, key.K, key.N, bsk.OutputDimension(), K, N)
		}
	}
	return nil
}

// checkLUT checks that lut is a list of 2^p polynomials of size N.
func checkLUT[T torus.Torus](what string, lut [][]T, N int) error {
	if !utils.IsPowerOfTwo(len(lut)) {
		return fmt.Errorf("%w: %s: %d polynomials is not a power of two", ErrDimensionMismatch, what, len(lut))
	}
	for i, p := range lut {
		if err := checkLen(fmt.Sprintf("%s: len(lut[%d])", what, i), len(p), N); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine[T]) checkGGSWs(ggsws []*TransformedGGSWCiphertext[T], K, N int) error {
	for i, g := range ggsws {
		if err := e.checkGGSW(g); err != nil {
			return err
		}
		if err := checkGLWE(fmt.Sprintf("GGSW %d", i), g.K, g.N, K, N); err != nil {
			return err
		}
	}
	return nil
}

func values[T torus.Torus](ggsws []*TransformedGGSWCiphertext[T]) (v []any) {
	v = make([]any, len(ggsws))
	for i, g := range ggsws {
		v[i] = g.value
	}
	return
}

func (e *Engine[T]) checkExtractBits(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], count, deltaLog int, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T]) error {

	if count < 1 {
		return fmt.Errorf("%w: cannot extract %d bits", ErrDimensionMismatch, count)
	}

	if W := torus.Bits[T](); deltaLog < 1 || count+deltaLog > W {
		return fmt.Errorf("%w: cannot extract %d bits from bit %d of a %d-bit torus", ErrScaleFactorOverflow, count, deltaLog, W)
	}

	if err := e.checkBootstrapKey(bsk); err != nil {
		return err
	}

	if err := checkLWE("input", in, bsk.OutputDimension()); err != nil {
		return err
	}

	for i, out := range outs {
		if err := checkLWE(fmt.Sprintf("output %d", i), out, bsk.InputDimension); err != nil {
			return err
		}
	}

	if ksk.InputDimension != bsk.OutputDimension() || ksk.OutputDimension != bsk.InputDimension {
		return fmt.Errorf("%w: keyswitch key (%d -> %d) != bootstrap key (%d -> %d)", ErrDimensionMismatch, ksk.InputDimension, ksk.OutputDimension, bsk.OutputDimension(), bsk.InputDimension)
	}

	return nil
}

// DiscardCMUXTree selects, with the GGSW encryptions of the m bits of an index given from the
// most significant to the least significant, the indexed polynomial among the 2^m look-up
// tables luts, and writes its encryption on out.
func (e *Engine[T]) DiscardCMUXTree(out *glwe.Ciphertext[T], luts [][]T, ggsws []*TransformedGGSWCiphertext[T]) error {
	if err := checkLen("len(luts)", len(luts), 1<<len(ggsws)); err != nil {
		return err
	}
	if err := checkLUT("luts", luts, out.N); err != nil {
		return err
	}
	if err := e.checkGGSWs(ggsws, out.K(), out.N); err != nil {
		return err
	}
	if _, err := e.kernel(out.N); err != nil {
		return err
	}
	e.DiscardCMUXTreeUnchecked(out, luts, ggsws)
	return nil
}

// DiscardCMUXTreeUnchecked is the unchecked [Engine.DiscardCMUXTree].
func (e *Engine[T]) DiscardCMUXTreeUnchecked(out *glwe.Ciphertext[T], luts [][]T, ggsws []*TransformedGGSWCiphertext[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(out.N).cmuxTree(e.stack, out, luts, values(ggsws))
}

// DiscardVerticalPacking evaluates the look-up table lut, a list of 2^p polynomials, on the
// integer whose bits, from the most significant to the least significant, are encrypted
// by ggsws, and writes the result on out, of dimension K*N.
func (e *Engine[T]) DiscardVerticalPacking(out *lwe.Ciphertext[T], lut [][]T, ggsws []*TransformedGGSWCiphertext[T]) error {
	if len(ggsws) == 0 {
		return fmt.Errorf("%w: vertical packing needs at least one GGSW ciphertext", ErrDimensionMismatch)
	}
	K, N := ggsws[0].K, ggsws[0].N
	if err := e.checkGGSWs(ggsws, K, N); err != nil {
		return err
	}
	if err := checkLUT("lut", lut, N); err != nil {
		return err
	}
	if err := checkLWE("output", out, K*N); err != nil {
		return err
	}
	e.DiscardVerticalPackingUnchecked(out, lut, ggsws)
	return nil
}

// DiscardVerticalPackingUnchecked is the unchecked [Engine.DiscardVerticalPacking].
func (e *Engine[T]) DiscardVerticalPackingUnchecked(out *lwe.Ciphertext[T], lut [][]T, ggsws []*TransformedGGSWCiphertext[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(ggsws[0].N).verticalPacking(e.stack, out, lut, values(ggsws))
}

// DiscardExtractBits extracts len(outs) bits of the plaintext of in, of dimension K*N,
// from the bit deltaLog upward, and writes them from the most significant to the least
// significant on outs, each as an encryption of b * 2^(W-1) of the input dimension of bsk.
// ksk switches from the output dimension of bsk to its input dimension.
func (e *Engine[T]) DiscardExtractBits(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T]) error {
	if err := e.checkExtractBits(outs, in, len(outs), deltaLog, ksk, bsk); err != nil {
		return err
	}
	e.DiscardExtractBitsUnchecked(outs, in, deltaLog, ksk, bsk)
	return nil
}

// DiscardExtractBitsUnchecked is the unchecked [Engine.DiscardExtractBits].
func (e *Engine[T]) DiscardExtractBitsUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).extractBits(e.stack, bsk.value, outs, in, ksk, deltaLog)
}

// DiscardWoPBootstrap evaluates the look-up tables luts on the message of bits bits stored
// from the bit deltaLog of in, without padding bit: the bits are extracted, circuit
// bootstrapped to GGSW ciphertexts of decomposition dd, and luts[j] is evaluated on them
// by vertical packing and written on outs[j], of dimension K*N.
// in and ksk are as for [Engine.DiscardExtractBits].
func (e *Engine[T]) DiscardWoPBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, dd decomposition.Parameters, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) error {

	if err := e.checkExtractBits(nil, in, bits, deltaLog, ksk, bsk); err != nil {
		return err
	}

	if err := checkDecomposition[T](dd); err != nil {
		return err
	}

	if err := checkCircuitKeys(keys, bsk, bsk.K, bsk.N); err != nil {
		return err
	}

	if err := checkLen("len(outs)", len(outs), len(luts)); err != nil {
		return err
	}

	for j, lut := range luts {
		if err := checkLUT(fmt.Sprintf("luts[%d]", j), lut, bsk.N); err != nil {
			return err
		}
		if err := checkLWE(fmt.Sprintf("output %d", j), outs[j], bsk.OutputDimension()); err != nil {
			return err
		}
	}

	e.DiscardWoPBootstrapUnchecked(outs, in, luts, bits, deltaLog, dd, ksk, bsk, keys)
	return nil
}

// DiscardWoPBootstrapUnchecked is the unchecked [Engine.DiscardWoPBootstrap].
func (e *Engine[T]) DiscardWoPBootstrapUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, dd decomposition.Parameters, ksk *lwe.KeyswitchKey[T], bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).wopBootstrap(e.stack, bsk.value, outs, in, luts, bits, deltaLog, ksk, dd, keys)
}
