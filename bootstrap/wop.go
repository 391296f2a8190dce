package bootstrap

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// WoPBootstrapScratch returns the scratch requirement of [Evaluator.WoPBootstrap]
// for a message of bits bits and circuit bootstrap decomposition dd.
func (eval Evaluator[T, E]) WoPBootstrapScratch(bits int, dd decomposition.Parameters) scratch.Req {
	tr, key := eval.Transform, eval.Key
	return scratch.All(
		scratch.Of[T](bits*(key.InputDimension+1)),
		scratch.Of[T](dd.Level*(key.K+1)*(key.K+1)*key.N),
		ggsw.TransformedScratch(tr, key.K, dd).Times(bits),
		scratch.Any(
			eval.ExtractBitsScratch(),
			eval.CircuitBootstrapScratch(key.InputDimension),
			VerticalPackingScratch(tr, key.K, dd, bits),
		),
	)
}

// WoPBootstrap evaluates the look-up tables luts on the message of bits bits stored
// from the bit deltaLog of in, with no padding bit required. The bits are extracted
// with ksk, each bit is circuit bootstrapped to a GGSW ciphertext of decomposition dd,
// and luts[j], given as for [Evaluator.VerticalPacking], is evaluated on them by
// vertical packing and written on outs[j], of dimension K*N.
// in and ksk are as for [Evaluator.ExtractBits].
func (eval Evaluator[T, E]) WoPBootstrap(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, ksk *lwe.KeyswitchKey[T], dd decomposition.Parameters, keys CircuitBootstrapKeys[T]) {

	if len(outs) != len(luts) {
		panic(fmt.Errorf("invalid outputs: len(outs)=%d != len(luts)=%d", len(outs), len(luts)))
	}

	if bits < 1 {
		panic(fmt.Errorf("invalid message size: bits=%d < 1", bits))
	}

	tr, key := eval.Transform, eval.Key

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	extracted := make([]*lwe.Ciphertext[T], bits)
	for i := range extracted {
		extracted[i] = takeLWE[T](stack, key.InputDimension)
	}

	eval.ExtractBits(extracted, in, ksk, deltaLog)

	ct := new(ggsw.Ciphertext[T])
	ct.FromBuffer(key.K, key.N, dd, scratch.Take[T](stack, ct.BufferSize(key.K, key.N, dd)))

	ggsws := make([]*ggsw.Transformed[T, E], bits)
	for i, bit := range extracted {
		eval.CircuitBootstrapBoolean(ct, bit, torus.Bits[T]()-1, keys)
		ggsws[i] = ggsw.TakeTransformed(tr, key.K, dd, stack)
		ggsw.TransformCiphertext(tr, ct, ggsws[i])
	}

	for j, lut := range luts {
		eval.VerticalPacking(outs[j], lut, ggsws)
	}
}
