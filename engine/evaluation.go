package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/device"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
)

// DiscardExternalProduct evaluates out = g x in. out is overwritten and must not alias in.
func (e *Engine[T]) DiscardExternalProduct(out *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T], in *glwe.Ciphertext[T]) error {
	if err := e.checkGGSW(g); err != nil {
		return err
	}
	if err := checkGLWE("input", in.K(), in.N, g.K, g.N); err != nil {
		return err
	}
	if err := checkGLWE("output", out.K(), out.N, g.K, g.N); err != nil {
		return err
	}
	e.DiscardExternalProductUnchecked(out, g, in)
	return nil
}

// DiscardExternalProductUnchecked is the unchecked [Engine.DiscardExternalProduct].
func (e *Engine[T]) DiscardExternalProductUnchecked(out *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T], in *glwe.Ciphertext[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(g.N).externalProduct(e.stack, out, g.value, in)
}

// FuseCMUX evaluates ct0 = ct0 + g x (ct1 - ct0), which encrypts the plaintext of ct1
// if g encrypts 1 and the plaintext of ct0 if g encrypts 0. ct1 is clobbered.
func (e *Engine[T]) FuseCMUX(ct0, ct1 *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T]) error {
	if err := e.checkGGSW(g); err != nil {
		return err
	}
	if err := checkGLWE("ct0", ct0.K(), ct0.N, g.K, g.N); err != nil {
		return err
	}
	if err := checkGLWE("ct1", ct1.K(), ct1.N, g.K, g.N); err != nil {
		return err
	}
	e.FuseCMUXUnchecked(ct0, ct1, g)
	return nil
}

// FuseCMUXUnchecked is the unchecked [Engine.FuseCMUX].
func (e *Engine[T]) FuseCMUXUnchecked(ct0, ct1 *glwe.Ciphertext[T], g *TransformedGGSWCiphertext[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(g.N).cmux(e.stack, ct0, ct1, g.value)
}

func (e *Engine[T]) checkBootstrap(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) error {

	if err := e.checkBootstrapKey(bsk); err != nil {
		return err
	}

	for i, in := range ins {
		if err := checkLWE(fmt.Sprintf("input %d", i), in, bsk.InputDimension); err != nil {
			return err
		}
	}

	for i, out := range outs {
		if err := checkLWE(fmt.Sprintf("output %d", i), out, bsk.OutputDimension()); err != nil {
			return err
		}
	}

	for i, acc := range accs {
		if err := checkGLWE(fmt.Sprintf("accumulator %d", i), acc.K(), acc.N, bsk.K, bsk.N); err != nil {
			return err
		}
	}

	return nil
}

// DiscardBootstrapLWECiphertext evaluates the look-up table encoded in the accumulator acc
// on the plaintext of in and writes the result on out.
func (e *Engine[T]) DiscardBootstrapLWECiphertext(out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) error {
	if err := e.checkBootstrap([]*lwe.Ciphertext[T]{out}, []*lwe.Ciphertext[T]{in}, []*glwe.Ciphertext[T]{acc}, bsk); err != nil {
		return err
	}
	e.DiscardBootstrapLWECiphertextUnchecked(out, in, acc, bsk)
	return nil
}

// DiscardBootstrapLWECiphertextUnchecked is the unchecked [Engine.DiscardBootstrapLWECiphertext].
func (e *Engine[T]) DiscardBootstrapLWECiphertextUnchecked(out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).bootstrap(e.stack, bsk.value, out, in, acc)
}

// DiscardBootstrapLWECiphertextVector evaluates outs[i] = Bootstrap(ins[i], accs[i]) for all i.
// With the [Device] backend, the vector is sharded over the devices and the placement is
// returned. The other backends return a nil placement.
func (e *Engine[T]) DiscardBootstrapLWECiphertextVector(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) ([]device.Shard, error) {
	if len(outs) != len(ins) || len(ins) != len(accs) {
		return nil, fmt.Errorf("%w: len(outs)=%d, len(ins)=%d and len(accs)=%d must be equal", ErrDimensionMismatch, len(outs), len(ins), len(accs))
	}
	if err := e.checkBootstrap(outs, ins, accs, bsk); err != nil {
		return nil, err
	}
	return e.bootstrapVector(outs, ins, accs, bsk)
}

// DiscardBootstrapLWECiphertextVectorUnchecked is the unchecked [Engine.DiscardBootstrapLWECiphertextVector].
func (e *Engine[T]) DiscardBootstrapLWECiphertextVectorUnchecked(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) []device.Shard {
	shards, err := e.bootstrapVector(outs, ins, accs, bsk)
	if err != nil {
		panic(err)
	}
	return shards
}

func (e *Engine[T]) bootstrapVector(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T], bsk *TransformedBootstrapKey[T]) ([]device.Shard, error) {

	if e.Config.Backend == Device {
		return e.bootstrapOnDevices(outs, ins, accs, bsk)
	}

	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).bootstrapArray(e.stack, bsk.value, outs, ins, accs)

	return nil, nil
}

// DiscardBootstrapManyLUT evaluates the 2^lutCountLog look-up tables interleaved in acc
// on the plaintext of in with a single blind rotation, and writes the j-th result on outs[j].
func (e *Engine[T]) DiscardBootstrapManyLUT(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int, bsk *TransformedBootstrapKey[T]) error {
	if lutCountLog < 0 || 1<<lutCountLog > bsk.N {
		return fmt.Errorf("%w: 2^lutCountLog=2^%d must be in [1, N=%d]", ErrDimensionMismatch, lutCountLog, bsk.N)
	}
	if err := checkLen("len(outs)", len(outs), 1<<lutCountLog); err != nil {
		return err
	}
	if err := e.checkBootstrap(outs, []*lwe.Ciphertext[T]{in}, []*glwe.Ciphertext[T]{acc}, bsk); err != nil {
		return err
	}
	e.DiscardBootstrapManyLUTUnchecked(outs, in, acc, lutCountLog, bsk)
	return nil
}

// DiscardBootstrapManyLUTUnchecked is the unchecked [Engine.DiscardBootstrapManyLUT].
func (e *Engine[T]) DiscardBootstrapManyLUTUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int, bsk *TransformedBootstrapKey[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).bootstrapManyLUT(e.stack, bsk.value, outs, in, acc, lutCountLog)
}

// DiscardMultiValueBootstrap evaluates the look-up tables luts, obtained with
// [bootstrap.MultiValueLUT], on the plaintext of in with a single blind rotation,
// and writes the j-th result on outs[j].
// Returns an error wrapping [ErrInvalidConfig] if modulus does not divide N.
func (e *Engine[T]) DiscardMultiValueBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T, bsk *TransformedBootstrapKey[T]) error {
	if err := checkLen("len(outs)", len(outs), len(luts)); err != nil {
		return err
	}
	if modulus < 1 || bsk.N%modulus != 0 {
		return fmt.Errorf("%w: modulus=%d must divide N=%d", ErrInvalidConfig, modulus, bsk.N)
	}
	for j, lut := range luts {
		if err := checkLen(fmt.Sprintf("len(luts[%d])", j), len(lut), bsk.N); err != nil {
			return err
		}
	}
	if err := e.checkBootstrap(outs, []*lwe.Ciphertext[T]{in}, nil, bsk); err != nil {
		return err
	}
	e.DiscardMultiValueBootstrapUnchecked(outs, in, modulus, luts, bsk)
	return nil
}

// DiscardMultiValueBootstrapUnchecked is the unchecked [Engine.DiscardMultiValueBootstrap].
func (e *Engine[T]) DiscardMultiValueBootstrapUnchecked(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T, bsk *TransformedBootstrapKey[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).multiValueBootstrap(e.stack, bsk.value, outs, in, modulus, luts)
}

func checkKeyswitch[T torus.Torus](outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) error {

	if err := checkDecomposition[T](ksk.Decomposition); err != nil {
		return err
	}

	for i, in := range ins {
		if err := checkLWE(fmt.Sprintf("input %d", i), in, ksk.InputDimension); err != nil {
			return err
		}
	}

	for i, out := range outs {
		if err := checkLWE(fmt.Sprintf("output %d", i), out, ksk.OutputDimension); err != nil {
			return err
		}
	}

	return nil
}

// DiscardKeyswitchLWECiphertext switches in to the output key of ksk and writes the result on out.
func (e *Engine[T]) DiscardKeyswitchLWECiphertext(out, in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) error {
	if err := checkKeyswitch([]*lwe.Ciphertext[T]{out}, []*lwe.Ciphertext[T]{in}, ksk); err != nil {
		return err
	}
	e.DiscardKeyswitchLWECiphertextUnchecked(out, in, ksk)
	return nil
}

// DiscardKeyswitchLWECiphertextUnchecked is the unchecked [Engine.DiscardKeyswitchLWECiphertext].
func (e *Engine[T]) DiscardKeyswitchLWECiphertextUnchecked(out, in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) {
	ksk.Keyswitch(out, in)
}

// DiscardKeyswitchLWECiphertextVector switches every ins[i] to the output key of ksk and writes
// the result on outs[i]. With the [Device] backend, the vector is sharded over the devices, each
// holding a replica of ksk, and the placement is returned. The other backends return a nil placement.
func (e *Engine[T]) DiscardKeyswitchLWECiphertextVector(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) ([]device.Shard, error) {
	if err := checkLen("len(outs)", len(outs), len(ins)); err != nil {
		return nil, err
	}
	if err := checkKeyswitch(outs, ins, ksk); err != nil {
		return nil, err
	}
	return e.keyswitchVector(outs, ins, ksk)
}

// DiscardKeyswitchLWECiphertextVectorUnchecked is the unchecked [Engine.DiscardKeyswitchLWECiphertextVector].
func (e *Engine[T]) DiscardKeyswitchLWECiphertextVectorUnchecked(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) []device.Shard {
	shards, err := e.keyswitchVector(outs, ins, ksk)
	if err != nil {
		panic(err)
	}
	return shards
}

func (e *Engine[T]) keyswitchVector(outs, ins []*lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T]) ([]device.Shard, error) {
	if e.Config.Backend == Device {
		return e.keyswitchOnDevices(outs, ins, ksk)
	}
	ksk.KeyswitchVector(outs, ins)
	return nil, nil
}

// DiscardPackingKeyswitchLWECiphertextVector evaluates out = sum_t X^t * Keyswitch(ins[t]) with
// the private functional packing keyswitch key pfk.
func (e *Engine[T]) DiscardPackingKeyswitchLWECiphertextVector(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], pfk *glwe.PrivateFunctionalPackingKeyswitchKey[T]) error {
	if err := checkDecomposition[T](pfk.Decomposition); err != nil {
		return err
	}
	if len(ins) > pfk.N {
		return fmt.Errorf("%w: len(ins)=%d > N=%d", ErrDimensionMismatch, len(ins), pfk.N)
	}
	for i, in := range ins {
		if err := checkLWE(fmt.Sprintf("input %d", i), in, pfk.InputDimension); err != nil {
			return err
		}
	}
	if err := checkGLWE("output", out.K(), out.N, pfk.K, pfk.N); err != nil {
		return err
	}
	e.DiscardPackingKeyswitchLWECiphertextVectorUnchecked(out, ins, pfk)
	return nil
}

// DiscardPackingKeyswitchLWECiphertextVectorUnchecked is the unchecked [Engine.DiscardPackingKeyswitchLWECiphertextVector].
func (e *Engine[T]) DiscardPackingKeyswitchLWECiphertextVectorUnchecked(out *glwe.Ciphertext[T], ins []*lwe.Ciphertext[T], pfk *glwe.PrivateFunctionalPackingKeyswitchKey[T]) {
	pfk.PackingKeyswitch(out, ins)
}

// DiscardCircuitBootstrapBoolean maps the LWE encryption in of a bit at the position deltaLog
// to a GGSW encryption of the bit with the decomposition of out.
func (e *Engine[T]) DiscardCircuitBootstrapBoolean(out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) error {

	if err := checkDeltaLog[T](deltaLog); err != nil {
		return err
	}

	if err := checkDecomposition[T](out.Decomposition); err != nil {
		return err
	}

	if err := e.checkBootstrap(nil, []*lwe.Ciphertext[T]{in}, nil, bsk); err != nil {
		return err
	}

	if err := checkCircuitKeys(keys, bsk, out.K, out.N); err != nil {
		return err
	}

	e.DiscardCircuitBootstrapBooleanUnchecked(out, in, deltaLog, bsk, keys)
	return nil
}

// DiscardCircuitBootstrapBooleanUnchecked is the unchecked [Engine.DiscardCircuitBootstrapBoolean].
func (e *Engine[T]) DiscardCircuitBootstrapBooleanUnchecked(out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, bsk *TransformedBootstrapKey[T], keys bootstrap.CircuitBootstrapKeys[T]) {
	defer e.logGrowth(e.stack, e.stack.Capacity().Bytes())
	e.mustKernel(bsk.N).circuitBootstrap(e.stack, bsk.value, out, in, deltaLog, keys)
}

// DiscardExtractLWESample writes on out the LWE encryption, of dimension K*N,
// of the j-th coefficient of the plaintext of in.
func (e *Engine[T]) DiscardExtractLWESample(out *lwe.Ciphertext[T], in *glwe.Ciphertext[T], j int) error {
	if j < 0 || j >= in.N {
		return fmt.Errorf("%w: coefficient %d out of [0, N=%d)", ErrDimensionMismatch, j, in.N)
	}
	if err := checkLWE("output", out, in.K()*in.N); err != nil {
		return err
	}
	e.DiscardExtractLWESampleUnchecked(out, in, j)
	return nil
}

// DiscardExtractLWESampleUnchecked is the unchecked [Engine.DiscardExtractLWESample].
func (e *Engine[T]) DiscardExtractLWESampleUnchecked(out *lwe.Ciphertext[T], in *glwe.Ciphertext[T], j int) {
	glwe.SampleExtract(out, in, j)
}
