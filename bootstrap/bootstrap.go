// Package bootstrap implements the programmable bootstrapping of LWE ciphertexts:
// bootstrap keys, blind rotation, single, array, many-LUT and multi-value
// bootstrapping, and the circuit bootstrapping of LWE ciphertexts to GGSW
// ciphertexts with its CMUX-tree and vertical-packing applications, composed
// into the bootstrap without padding bit of [Evaluator.WoPBootstrap].
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

// ModulusSwitch maps x from Z_{2^W} to Z_{2N}, with lutCountLog least significant
// bits set to zero. The result is in [0, 2N].
func ModulusSwitch[T torus.Torus](x T, N, lutCountLog int) int {
	x >>= torus.Bits[T]() - utils.Log2(uint(N)) - 2 + lutCountLog
	x += x & 1
	x >>= 1
	x <<= lutCountLog
	return int(x)
}

// Evaluator is a struct dedicated to the evaluation of bootstrapping circuits
// with a [TransformedKey].
//
// An Evaluator is not safe for concurrent use: use [Evaluator.ShallowCopy]
// to obtain one evaluator per goroutine.
type Evaluator[T torus.Torus, E any] struct {
	*ggsw.Evaluator[T, E]
	Key *TransformedKey[T, E]
}

// NewEvaluator creates a new [Evaluator] and reserves its stack for the bootstrap.
// If stack is nil, a new one is allocated.
func NewEvaluator[T torus.Torus, E any](tr transform.Transform[T, E], bsk *TransformedKey[T, E], stack *scratch.Stack) *Evaluator[T, E] {

	if bsk.Domain != tr.Domain() || bsk.N != tr.N() {
		panic(fmt.Errorf("invalid bootstrap key: (domain, N)=(%s, %d) != transform (domain, N)=(%s, %d)", bsk.Domain, bsk.N, tr.Domain(), tr.N()))
	}

	eval := &Evaluator[T, E]{Evaluator: ggsw.NewEvaluator(tr, stack), Key: bsk}
	eval.Stack.Reserve(BootstrapScratch(tr, bsk.K, bsk.Decomposition))
	return eval
}

// ShallowCopy creates a shallow copy of this [Evaluator] sharing the transform and the key
// with the receiver and owning a new stack. The receiver and the returned Evaluator can be
// used concurrently.
func (eval Evaluator[T, E]) ShallowCopy() *Evaluator[T, E] {
	return &Evaluator[T, E]{Evaluator: eval.Evaluator.ShallowCopy(), Key: eval.Key}
}

// WithKey creates a shallow copy of the receiver with a new key, sharing the stack
// of the receiver. The receiver and the returned Evaluator cannot be used concurrently.
func (eval Evaluator[T, E]) WithKey(bsk *TransformedKey[T, E]) *Evaluator[T, E] {
	return &Evaluator[T, E]{Evaluator: eval.Evaluator, Key: bsk}
}

// BlindRotateScratch returns the scratch requirement of [Evaluator.BlindRotate].
func BlindRotateScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters) scratch.Req {
	return scratch.All(
		scratch.Of[T]((K+1)*tr.N()),
		ggsw.ExternalProductScratch(tr, K, dd),
	)
}

// BootstrapScratch returns the scratch requirement of [Evaluator.Bootstrap].
func BootstrapScratch[T torus.Torus, E any](tr transform.Transform[T, E], K int, dd decomposition.Parameters) scratch.Req {
	return scratch.All(
		scratch.Of[T]((K+1)*tr.N()),
		BlindRotateScratch(tr, K, dd),
	)
}

// takeGLWE returns a GLWE ciphertext backed by the stack.
func takeGLWE[T torus.Torus](stack *scratch.Stack, K, N int) *glwe.Ciphertext[T] {
	return &glwe.Ciphertext[T]{N: N, Value: scratch.Take[T](stack, (K+1)*N)}
}

// takeLWE returns an LWE ciphertext backed by the stack.
func takeLWE[T torus.Torus](stack *scratch.Stack, n int) *lwe.Ciphertext[T] {
	return &lwe.Ciphertext[T]{Value: scratch.Take[T](stack, n+1)}
}

// BlindRotate rotates the accumulator acc by X^-phase, with phase the modulus
// switched phase of in. Every element of the mask of in is processed with one
// CMUX, whatever its value.
func (eval Evaluator[T, E]) BlindRotate(acc *glwe.Ciphertext[T], in *lwe.Ciphertext[T]) {
	eval.blindRotate(acc, in, 0)
}

func (eval Evaluator[T, E]) blindRotate(acc *glwe.Ciphertext[T], in *lwe.Ciphertext[T], lutCountLog int) {

	bsk := eval.Key

	if in.Dimension() != bsk.InputDimension {
		panic(fmt.Errorf("invalid input: dimension %d != bootstrap key input dimension %d", in.Dimension(), bsk.InputDimension))
	}

	if acc.K() != bsk.K || acc.N != bsk.N {
		panic(fmt.Errorf("invalid accumulator: (K, N)=(%d, %d) != bootstrap key (K, N)=(%d, %d)", acc.K(), acc.N, bsk.K, bsk.N))
	}

	N := bsk.N

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	rot := takeGLWE[T](stack, bsk.K, N)

	acc.MulByMonomialInPlace(-ModulusSwitch(*in.Body(), N, lutCountLog))

	for i, a := range in.Mask() {
		rot.MulByMonomial(acc, ModulusSwitch(a, N, lutCountLog))
		eval.CMUX(acc, rot, bsk.GGSW[i])
	}
}

// Bootstrap evaluates the look-up table encoded in the accumulator acc on the
// plaintext of in, and writes the result on out, of dimension K*N.
// acc is left unchanged.
func (eval Evaluator[T, E]) Bootstrap(out, in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T]) {

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	local := takeGLWE[T](stack, acc.K(), acc.N)
	local.Copy(acc)

	eval.BlindRotate(local, in)

	glwe.SampleExtract(out, local, 0)
}

// BootstrapArray evaluates outs[i] = Bootstrap(ins[i], accs[i]) for all i,
// with the key and the stack of the receiver.
func (eval Evaluator[T, E]) BootstrapArray(outs, ins []*lwe.Ciphertext[T], accs []*glwe.Ciphertext[T]) {

	if len(outs) != len(ins) || len(ins) != len(accs) {
		panic(fmt.Errorf("invalid vectors: len(outs)=%d, len(ins)=%d and len(accs)=%d must be equal", len(outs), len(ins), len(accs)))
	}

	for i := range ins {
		eval.Bootstrap(outs[i], ins[i], accs[i])
	}
}

// BootstrapManyLUT evaluates the 2^lutCountLog look-up tables interleaved in acc
// (see [ManyLUTAccumulator]) on the plaintext of in with a single blind rotation,
// and writes the j-th result on outs[j].
func (eval Evaluator[T, E]) BootstrapManyLUT(outs []*lwe.Ciphertext[T], in *lwe.Ciphertext[T], acc *glwe.Ciphertext[T], lutCountLog int) {

	if len(outs) != 1<<lutCountLog {
		panic(fmt.Errorf("invalid outputs: len(outs)=%d != 2^lutCountLog=%d", len(outs), 1<<lutCountLog))
	}

	stack := eval.Stack
	frame := stack.Mark()
	defer stack.Release(frame)

	local := takeGLWE[T](stack, acc.K(), acc.N)
	local.Copy(acc)

	eval.blindRotate(local, in, lutCountLog)

	for j, out := range outs {
		glwe.SampleExtract(out, local, j)
	}
}

// Accumulator returns the trivial GLWE encryption of the look-up table f over
// a message space of messages values. The body is split in boxes of N/messages
// coefficients, the box of m holding f(m), and is then multiplied by X^(-box/2)
// so that every box is centred on its message. The last half box holds -f(0):
// a modulus switched phase slightly below 2N, that is a message 0 with a negative
// error, is mapped to -(-f(0)) = f(0).
func Accumulator[T torus.Torus](K, N, messages int, f func(m int) T) (acc *glwe.Ciphertext[T]) {
	return ManyLUTAccumulator(K, N, messages, []func(m int) T{f})
}

// ManyLUTAccumulator returns the trivial GLWE encryption of the len(fs) = 2^lutCountLog
// look-up tables fs over a message space of messages values, to be evaluated with
// [Evaluator.BootstrapManyLUT]. The tables are interleaved: the coefficient
// i*2^lutCountLog + j of the body holds fs[j], and the boxes are centred as in
// [Accumulator]. Half a box must hold a whole number of interleaved groups.
func ManyLUTAccumulator[T torus.Torus](K, N, messages int, fs []func(m int) T) (acc *glwe.Ciphertext[T]) {

	if !utils.IsPowerOfTwo(len(fs)) || len(fs) > N {
		panic(fmt.Errorf("invalid look-up tables: len(fs)=%d must be a power of two smaller than N=%d", len(fs), N))
	}

	if messages < 1 || N%messages != 0 {
		panic(fmt.Errorf("invalid message space: messages=%d must divide N=%d", messages, N))
	}

	box := N / messages

	if box > 1 && (box/2)%len(fs) != 0 {
		panic(fmt.Errorf("invalid look-up tables: half box %d is not a multiple of len(fs)=%d", box/2, len(fs)))
	}

	if box == 1 && len(fs) != 1 {
		panic(fmt.Errorf("invalid look-up tables: len(fs)=%d > 1 requires messages < N", len(fs)))
	}

	acc = glwe.NewCiphertext[T](K, N)
	body := acc.Body()
	for i := 0; i < N; i += len(fs) {
		for j, f := range fs {
			body[i+j] = f(i / box)
		}
	}

	torus.MulByMonomialInPlace(body, -(box / 2))

	return
}
