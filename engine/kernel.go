package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/bootstrap"
	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/transform/fft"
	"github.com/Pro7ech/tfhe/transform/ntt"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// kernel is the type-erased view of a transform backend for one polynomial size.
// The transform-domain entities it creates and consumes are opaque values whose
// dynamic type depends on the backend.
type kernel[T torus.Torus] interface {
	N() int
	Domain() transform.Domain

	// polyBytes is the size in bytes of a transform-domain polynomial.
	polyBytes() uint64

	transformGGSW(in *ggsw.Ciphertext[T]) any
	transformKey(bsk *bootstrap.Key[T]) any

	externalProduct(stack *scratch.Stack, out *glwe.Ciphertext[T], g any, in *glwe.Ciphertext[T])
	cmux(stack *scratch.Stack, ct0, ct1 *glwe.Ciphertext[T], g any)

	bootstrap(stack *scratch.Stack, bsk any, out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T])
	bootstrapArray(stack *scratch.Stack, bsk any, outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T])
	bootstrapManyLUT(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int)
	multiValueBootstrap(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T)
	circuitBootstrap(stack *scratch.Stack, bsk any, out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, keys bootstrap.CircuitBootstrapKeys[T])
	extractBits(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T], deltaLog int)
	wopBootstrap(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, ksk *lwe.KeyswitchKey[T], dd decomposition.Parameters, keys bootstrap.CircuitBootstrapKeys[T])

	cmuxTree(stack *scratch.Stack, out *glwe.Ciphertext[T], luts [][]T, ggsws []any)
	verticalPacking(stack *scratch.Stack, out *lwe.Ciphertext[T], lut [][]T, ggsws []any)
}

// newKernel instantiates the transform of the backend b for the polynomial size N.
func newKernel[T torus.Torus](b Backend, N int) (kernel[T], error) {
	switch b {
	case Reference:
		tr, err := transform.NewReference[T](N)
		if err != nil {
			return nil, err
		}
		return &transformKernel[T, []T]{tr: tr}, nil
	case Fourier, Device:
		tr, err := fft.New[T](N)
		if err != nil {
			return nil, err
		}
		return &transformKernel[T, []complex128]{tr: tr}, nil
	case NumberTheoretic:
		tr, err := ntt.New[T](N)
		if err != nil {
			return nil, err
		}
		return &transformKernel[T, []uint64]{tr: tr}, nil
	default:
		panic(fmt.Errorf("invalid backend: %s", b))
	}
}

type transformKernel[T torus.Torus, E any] struct {
	tr transform.Transform[T, E]
}

func (k *transformKernel[T, E]) N() int {
	return k.tr.N()
}

func (k *transformKernel[T, E]) Domain() transform.Domain {
	return k.tr.Domain()
}

func (k *transformKernel[T, E]) polyBytes() uint64 {
	return uint64(k.tr.PolyScratch().Bytes())
}

func (k *transformKernel[T, E]) transformGGSW(in *ggsw.Ciphertext[T]) any {
	out := ggsw.NewTransformed(k.tr, in.K, in.Decomposition)
	ggsw.TransformCiphertext(k.tr, in, out)
	return out
}

func (k *transformKernel[T, E]) transformKey(bsk *bootstrap.Key[T]) any {
	out, err := bootstrap.TransformKey(k.tr, bsk)
	if err != nil {
		panic(fmt.Errorf("bootstrap.TransformKey: %w", err))
	}
	return out
}

func (k *transformKernel[T, E]) ggsw(stack *scratch.Stack) *ggsw.Evaluator[T, E] {
	return ggsw.NewEvaluator(k.tr, stack)
}

func (k *transformKernel[T, E]) evaluator(stack *scratch.Stack, bsk any) *bootstrap.Evaluator[T, E] {
	return bootstrap.NewEvaluator(k.tr, bsk.(*bootstrap.TransformedKey[T, E]), stack)
}

func (k *transformKernel[T, E]) externalProduct(stack *scratch.Stack, out *glwe.Ciphertext[T], g any, in *glwe.Ciphertext[T]) {
	eval := k.ggsw(stack)
	eval.Stack.Reserve(ggsw.ExternalProductScratch(k.tr, in.K(), g.(*ggsw.Transformed[T, E]).Decomposition))
	eval.ExternalProduct(out, g.(*ggsw.Transformed[T, E]), in)
}

func (k *transformKernel[T, E]) cmux(stack *scratch.Stack, ct0, ct1 *glwe.Ciphertext[T], g any) {
	eval := k.ggsw(stack)
	eval.Stack.Reserve(ggsw.ExternalProductScratch(k.tr, ct0.K(), g.(*ggsw.Transformed[T, E]).Decomposition))
	eval.CMUX(ct0, ct1, g.(*ggsw.Transformed[T, E]))
}

func (k *transformKernel[T, E]) bootstrap(stack *scratch.Stack, bsk any, out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T]) {
	k.evaluator(stack, bsk).Bootstrap(out, in, acc)
}

func (k *transformKernel[T, E]) bootstrapArray(stack *scratch.Stack, bsk any, outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T]) {
	k.evaluator(stack, bsk).BootstrapArray(outs, ins, accs)
}

func (k *transformKernel[T, E]) bootstrapManyLUT(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int) {
	k.evaluator(stack, bsk).BootstrapManyLUT(outs, in, acc, lutCountLog)
}

func (k *transformKernel[T, E]) multiValueBootstrap(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], modulus int, luts [][]T) {
	eval := k.evaluator(stack, bsk)
	eval.Stack.Reserve(eval.MultiValueScratch())
	eval.MultiValueBootstrap(outs, in, modulus, luts)
}

func (k *transformKernel[T, E]) circuitBootstrap(stack *scratch.Stack, bsk any, out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, keys bootstrap.CircuitBootstrapKeys[T]) {
	eval := k.evaluator(stack, bsk)
	eval.Stack.Reserve(eval.CircuitBootstrapScratch(in.Dimension()))
	eval.CircuitBootstrapBoolean(out, in, deltaLog, keys)
}

func (k *transformKernel[T, E]) extractBits(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T], deltaLog int) {
	eval := k.evaluator(stack, bsk)
	eval.Stack.Reserve(eval.ExtractBitsScratch())
	eval.ExtractBits(outs, in, ksk, deltaLog)
}

func (k *transformKernel[T, E]) wopBootstrap(stack *scratch.Stack, bsk any, outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], luts [][][]T, bits, deltaLog int, ksk *lwe.KeyswitchKey[T], dd decomposition.Parameters, keys bootstrap.CircuitBootstrapKeys[T]) {
	eval := k.evaluator(stack, bsk)
	eval.Stack.Reserve(eval.WoPBootstrapScratch(bits, dd))
	eval.WoPBootstrap(outs, in, luts, bits, deltaLog, ksk, dd, keys)
}

// circuits returns an evaluator without bootstrap key, for the
// operations that only need external products.
func (k *transformKernel[T, E]) circuits(stack *scratch.Stack, ggsws []any) (*bootstrap.Evaluator[T, E], []*ggsw.Transformed[T, E]) {
	gs := make([]*ggsw.Transformed[T, E], len(ggsws))
	for i, g := range ggsws {
		gs[i] = g.(*ggsw.Transformed[T, E])
	}
	return &bootstrap.Evaluator[T, E]{Evaluator: k.ggsw(stack)}, gs
}

func (k *transformKernel[T, E]) cmuxTree(stack *scratch.Stack, out *glwe.Ciphertext[T], luts [][]T, ggsws []any) {
	eval, gs := k.circuits(stack, ggsws)
	var dd decomposition.Parameters
	if len(gs) > 0 {
		dd = gs[0].Decomposition
	}
	eval.Stack.Reserve(bootstrap.CMUXTreeScratch(k.tr, out.K(), dd, len(gs)))
	eval.CMUXTree(out, luts, gs)
}

func (k *transformKernel[T, E]) verticalPacking(stack *scratch.Stack, out *lwe.Ciphertext[T], lut [][]T, ggsws []any) {
	eval, gs := k.circuits(stack, ggsws)
	g := gs[0]
	eval.Stack.Reserve(bootstrap.VerticalPackingScratch(k.tr, g.K, g.Decomposition, min(len(gs), utils.Log2(uint(len(lut))))))
	eval.VerticalPacking(out, lut, gs)
}

// ggswBytes returns the size in bytes of a transform-domain GGSW ciphertext.
func ggswBytes[T torus.Torus](k kernel[T], K int, dd decomposition.Parameters) uint64 {
	return uint64(dd.Level*(K+1)*(K+1)) * k.polyBytes()
}
