package bootstrap

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// CircuitBootstrapKeys are the K+1 private functional packing keyswitch keys used by
// the circuit bootstrap to assemble the rows of a GGSW ciphertext under a GLWE key
// from LWE ciphertexts under the same key viewed as an LWE key. The r-th key, for
// r < K, maps m to -m * S_r(X), and the K-th key maps m to m.
type CircuitBootstrapKeys[T torus.Torus] []*glwe.PrivateFunctionalPackingKeyswitchKey[T]

// GenerateCircuitBootstrapKeys generates the [CircuitBootstrapKeys] of the GLWE key sk.
func GenerateCircuitBootstrapKeys[T torus.Torus](sk *glwe.SecretKey[T], dd decomposition.Parameters, std float64, gen *torus.EncryptionGenerator[T]) (keys CircuitBootstrapKeys[T], err error) {

	skIn := sk.AsLWEKey()

	keys = make(CircuitBootstrapKeys[T], sk.K+1)

	for r := range keys {

		f := func(x T) T { return x }
		P := make([]T, sk.N)

		if r < sk.K {
			f = func(x T) T { return -x }
			copy(P, sk.Poly(r))
		} else {
			P[0] = 1
		}

		if keys[r], err = glwe.GeneratePrivateFunctionalPackingKeyswitchKey(skIn, sk, dd, std, f, P, gen); err != nil {
			return nil, fmt.Errorf("glwe.GeneratePrivateFunctionalPackingKeyswitchKey: %w", err)
		}
	}

	return
}

// HomomorphicShiftBoolean maps an encryption of a bit b at the position deltaLog to an
// encryption, of dimension K*N, of b * 2^(W - BaseLog * level) with a single bootstrap.
func (eval Evaluator[T, E]) HomomorphicShiftBoolean(out, in *lwe.Ciphertext[T], deltaLog int, dd decomposition.Parameters, level int) {

	W := torus.Bits[T]()
	K, N := eval.Key.K, eval.Key.N

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	// moves the bit to the most significant position and adds q/4
	// to center the error in the half of the nega-cyclic look-up table
	shifted := takeLWE[T](stack, in.Dimension())
	shifted.MulScalar(in, T(1)<<(W-deltaLog-1))
	shifted.AddPlaintext(T(1) << (W - 2))

	alpha := T(1) << (W - 1 - dd.BaseLog*level)

	acc := takeGLWE[T](stack, K, N)
	clear(acc.Mask())
	body := acc.Body()
	for j := range body {
		body[j] = -alpha
	}

	eval.Bootstrap(out, shifted, acc)

	out.AddPlaintext(alpha)
}

// CircuitBootstrapBoolean maps an LWE encryption of a bit b at the position deltaLog
// to a GGSW encryption of b with the decomposition parameters of out.
func (eval Evaluator[T, E]) CircuitBootstrapBoolean(out *ggsw.Ciphertext[T], in *lwe.Ciphertext[T], deltaLog int, keys CircuitBootstrapKeys[T]) {

	bsk := eval.Key

	if len(keys) != out.K+1 {
		panic(fmt.Errorf("invalid keys: len(keys)=%d != K+1=%d", len(keys), out.K+1))
	}

	for r, key := range keys {
		if key.InputDimension != bsk.OutputDimension() || key.K != out.K || key.N != out.N {
			panic(fmt.Errorf("invalid key %d: (n, K, N)=(%d, %d, %d) != (%d, %d, %d)", r, key.InputDimension, key.K, key.N, bsk.OutputDimension(), out.K, out.N))
		}
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	pbs := takeLWE[T](stack, bsk.OutputDimension())

	for level := 1; level <= out.Decomposition.Level; level++ {
		eval.HomomorphicShiftBoolean(pbs, in, deltaLog, out.Decomposition, level)
		for r, key := range keys {
			key.Keyswitch(out.Row(level, r), pbs)
		}
	}
}

// CMUXTree selects, with the GGSW encryptions of the m bits of an index given from
// the most significant to the least significant, the indexed polynomial among the
// 2^m look-up tables luts, and writes its encryption on out.
func (eval Evaluator[T, E]) CMUXTree(out *glwe.Ciphertext[T], luts [][]T, ggsws []*ggsw.Transformed[T, E]) {

	if len(luts) != 1<<len(ggsws) {
		panic(fmt.Errorf("invalid look-up tables: len(luts)=%d != 2^len(ggsws)=%d", len(luts), 1<<len(ggsws)))
	}

	K, N := out.K(), out.N

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	layer := make([]*glwe.Ciphertext[T], len(luts))
	for i := range layer {
		layer[i] = takeGLWE[T](stack, K, N)
		glwe.TrivialEncrypt(luts[i], layer[i])
	}

	for j := len(ggsws) - 1; j >= 0; j-- {
		for i := 0; i < len(layer)/2; i++ {
			eval.CMUX(layer[2*i], layer[2*i+1], ggsws[j])
			layer[i] = layer[2*i]
		}
		layer = layer[:len(layer)/2]
	}

	out.Copy(layer[0])
}

// BlindRotateGGSW rotates lut by X^-i, with i the integer whose bits, from the most
// significant to the least significant, are encrypted by ggsws.
func (eval Evaluator[T, E]) BlindRotateGGSW(lut *glwe.Ciphertext[T], ggsws []*ggsw.Transformed[T, E]) {

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	rot := takeGLWE[T](stack, lut.K(), lut.N)

	degree := 1
	for j := len(ggsws) - 1; j >= 0; j-- {
		rot.MulByMonomial(lut, -degree)
		eval.CMUX(lut, rot, ggsws[j])
		degree <<= 1
	}
}

// VerticalPacking evaluates the look-up table lut, given as a list of 2^p polynomials,
// on the integer whose bits, from the most significant to the least significant, are
// encrypted by ggsws. The p most significant bits select the polynomial with a CMUX
// tree and the others select its coefficient with a blind rotation.
// out is of dimension K*N.
func (eval Evaluator[T, E]) VerticalPacking(out *lwe.Ciphertext[T], lut [][]T, ggsws []*ggsw.Transformed[T, E]) {

	if len(ggsws) == 0 || !utils.IsPowerOfTwo(len(lut)) {
		panic(fmt.Errorf("invalid inputs: len(lut)=%d must be a power of two and len(ggsws)=%d must be positive", len(lut), len(ggsws)))
	}

	K, N := ggsws[0].K, ggsws[0].N

	p := utils.Log2(uint(len(lut)))
	if p > len(ggsws) {
		p = 0
		lut = lut[:1]
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	res := takeGLWE[T](stack, K, N)

	eval.CMUXTree(res, lut, ggsws[:p])
	eval.BlindRotateGGSW(res, ggsws[p:])

	glwe.SampleExtract(out, res, 0)
}

// ExtractBits extracts count bits of the plaintext of in, from the bit deltaLog upward.
// The bits are written from the most significant to the least significant on outs, each
// as an encryption of b * 2^(W-1) under the output key of ksk. in is of dimension K*N and
// ksk switches from this dimension to the input dimension of the bootstrap key.
func (eval Evaluator[T, E]) ExtractBits(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], ksk *lwe.KeyswitchKey[T], deltaLog int) {

	W := torus.Bits[T]()
	count := len(outs)
	bsk := eval.Key

	if deltaLog < 1 || count+deltaLog > W {
		panic(fmt.Errorf("invalid extraction: cannot extract %d bits from bit %d of a %d-bit torus", count, deltaLog, W))
	}

	if in.Dimension() != bsk.OutputDimension() || ksk.InputDimension != bsk.OutputDimension() || ksk.OutputDimension != bsk.InputDimension {
		panic(fmt.Errorf("invalid dimensions: input %d and keyswitch key (%d, %d) must match the bootstrap key (%d, %d)", in.Dimension(), ksk.InputDimension, ksk.OutputDimension, bsk.OutputDimension(), bsk.InputDimension))
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	rem := takeLWE[T](stack, in.Dimension())
	rem.Copy(in)

	shifted := takeLWE[T](stack, in.Dimension())
	ks := takeLWE[T](stack, bsk.InputDimension)
	pbs := takeLWE[T](stack, bsk.OutputDimension())

	acc := takeGLWE[T](stack, bsk.K, bsk.N)
	clear(acc.Mask())

	for i := 0; i < count; i++ {

		// moves the i-th bit to the most significant position
		shifted.MulScalar(rem, T(1)<<(W-deltaLog-i-1))
		ksk.Keyswitch(ks, shifted)
		outs[count-1-i].Copy(ks)

		if i == count-1 {
			break
		}

		// adds q/4 to center the error in the half of the nega-cyclic look-up table
		ks.AddPlaintext(T(1) << (W - 2))

		alpha := T(1) << (deltaLog + i - 1)
		body := acc.Body()
		for j := range body {
			body[j] = -alpha
		}

		eval.Bootstrap(pbs, ks, acc)
		pbs.AddPlaintext(alpha)

		// removes the extracted bit from the remainder
		rem.Sub(rem, pbs)
	}
}

// CircuitBootstrapScratch returns the scratch requirement of [Evaluator.CircuitBootstrapBoolean]
// for inputs of dimension n.
func (eval Evaluator[T, E]) CircuitBootstrapScratch(n int) scratch.Req {
	tr, key := eval.Transform, eval.Key
	return scratch.All(
		scratch.Of[T](key.OutputDimension()+1),
		scratch.Of[T](n+1+(key.K+1)*key.N),
		BootstrapScratch(tr, key.K, key.Decomposition),
	)
}

// ExtractBitsScratch returns the scratch requirement of [Evaluator.ExtractBits].
func (eval Evaluator[T, E]) ExtractBitsScratch() scratch.Req {
	tr, key := eval.Transform, eval.Key
	return scratch.All(
		scratch.Of[T](3*(key.OutputDimension()+1)+key.InputDimension+1),
		scratch.Of[T]((key.K+1)*key.N),
		BootstrapScratch(tr, key.K, key.Decomposition),
	)
}

// CMUXTreeScratch returns the scratch requirement of [Evaluator.CMUXTree]
// with bits GGSW ciphertexts of decomposition dd.
func CMUXTreeScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters, bits int) scratch.Req {
	return scratch.All(
		scratch.Of[T]((1<<bits)*(K+1)*tr.N()),
		ggsw.ExternalProductScratch(tr, K, dd),
	)
}

// VerticalPackingScratch returns the scratch requirement of [Evaluator.VerticalPacking]
// for a look-up table of 2^p polynomials.
func VerticalPackingScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters, p int) scratch.Req {
	return scratch.All(
		scratch.Of[T]((K+1)*tr.N()),
		scratch.Any(
			CMUXTreeScratch(tr, K, dd, p),
			scratch.All(scratch.Of[T]((K+1)*tr.N()), ggsw.ExternalProductScratch(tr, K, dd)),
		),
	)
}
