package ggsw

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/transform/fft"
	"github.com/Pro7ech/tfhe/transform/ntt"
	"github.com/Pro7ech/tfhe/utils/sampling"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

func testString[T torus.Torus](opname string, d transform.Domain, K, N int, dd decomposition.Parameters) string {
	return fmt.Sprintf("%s/%s/W=%d/K=%d/N=%d/%s", opname, d, torus.Bits[T](), K, N, dd)
}

func newTestGenerator[T torus.Torus](label byte) *torus.EncryptionGenerator[T] {
	var maskSeed, noiseSeed [sampling.SeedSize]byte
	maskSeed[0], noiseSeed[0] = label, label+1
	return torus.NewEncryptionGenerator[T](sampling.Blake3, maskSeed, noiseSeed)
}

type testContext[T torus.Torus] struct {
	K, N     int
	dd       decomposition.Parameters
	std      float64
	deltaLog int
	sk       *glwe.SecretKey[T]
	enc      *glwe.Encryptor[T]
	genc     *Encryptor[T]
	prng     *rand.Rand
}

func newTestContext[T torus.Torus](K, N int, dd decomposition.Parameters) *testContext[T] {
	W := torus.Bits[T]()
	sk := glwe.GenerateSecretKey[T](K, N, torus.KeyDistribution{Kind: torus.Binary}, sampling.NewSource([sampling.SeedSize]byte{1}))
	return &testContext[T]{
		K:        K,
		N:        N,
		dd:       dd,
		std:      math.Exp2(-float64(min(W-2, 50))),
		deltaLog: W - 4,
		sk:       sk,
		enc:      glwe.NewEncryptor(sk, newTestGenerator[T](0)),
		genc:     NewEncryptor(sk, newTestGenerator[T](2)),
		prng:     rand.New(rand.NewPCG(1, 2)),
	}
}

// encryptMessage returns an encryption of random 4-bit messages.
func (tc *testContext[T]) encryptMessage() (msg []uint64, ct *glwe.Ciphertext[T]) {
	msg = make([]uint64, tc.N)
	pt := make([]T, tc.N)
	for i := range msg {
		msg[i] = tc.prng.Uint64() & 15
		pt[i] = torus.Encode[T](msg[i], tc.deltaLog)
	}
	ct = glwe.NewCiphertext[T](tc.K, tc.N)
	tc.enc.Encrypt(pt, tc.std, ct)
	return
}

func (tc *testContext[T]) decode(ct *glwe.Ciphertext[T]) (msg []uint64) {
	pt := make([]T, tc.N)
	glwe.Decrypt(tc.sk, ct, pt)
	msg = make([]uint64, tc.N)
	for i := range pt {
		msg[i] = torus.Decode(pt[i], tc.deltaLog)
	}
	return
}

func TestGGSW(t *testing.T) {
	testGGSW[uint32](t, decomposition.Parameters{BaseLog: 7, Level: 3})
	testGGSW[uint64](t, decomposition.Parameters{BaseLog: 10, Level: 4})
}

func testGGSW[T torus.Torus](t *testing.T, dd decomposition.Parameters) {

	W := torus.Bits[T]()
	K, N := 1, 512

	// Floating-point tolerance of the Fourier backend
	fftTol := uint64(1)
	if W == 64 {
		fftTol = 1 << (W - 36)
	}

	tc := newTestContext[T](K, N, dd)

	testEncrypt(t, tc)

	ref, err := transform.NewReference[T](N)
	require.NoError(t, err)
	testEvaluator[T, []T](t, tc, ref, 0)

	f, err := fft.New[T](N)
	require.NoError(t, err)
	testEvaluator[T, []complex128](t, tc, f, fftTol)

	n, err := ntt.New[T](N)
	require.NoError(t, err)
	testEvaluator[T, []uint64](t, tc, n, 0)
}

func testEncrypt[T torus.Torus](t *testing.T, tc *testContext[T]) {
	t.Run(testString[T]("Encrypt", transform.Coefficient, tc.K, tc.N, tc.dd), func(t *testing.T) {

		W := torus.Bits[T]()
		bound := uint64(10 * math.Ldexp(tc.std, W))

		m := T(3)
		ct := NewCiphertext[T](tc.K, tc.N, tc.dd)
		tc.genc.Encrypt(m, tc.std, ct)

		pt := make([]T, tc.N)
		want := make([]T, tc.N)

		for level := 1; level <= tc.dd.Level; level++ {

			g := m << tc.dd.ScalingLog(W, level)

			// body row: m * g
			glwe.Decrypt(tc.sk, ct.Row(level, tc.K), pt)
			clear(want)
			want[0] = g
			for i := range pt {
				require.LessOrEqual(t, torus.Distance(pt[i], want[i]), bound)
			}

			// mask rows: -m * g * s_r
			for r := 0; r < tc.K; r++ {
				glwe.Decrypt(tc.sk, ct.Row(level, r), pt)
				torus.MulScalar(tc.sk.Poly(r), -g, want)
				for i := range pt {
					require.LessOrEqual(t, torus.Distance(pt[i], want[i]), bound)
				}
			}
		}
	})
}

func testEvaluator[T torus.Torus, E any](t *testing.T, tc *testContext[T], tr transform.Transform[T, E], tol uint64) {

	K, N, dd := tc.K, tc.N, tc.dd

	eval := NewEvaluator(tr, scratch.NewStack(ExternalProductScratch(tr, K, dd)))

	t.Run(testString[T]("ExternalProduct/Noiseless", tr.Domain(), K, N, dd), func(t *testing.T) {

		decomposer := decomposition.NewSignedDecomposer[T](dd)

		_, in := tc.encryptMessage()
		for i := range in.Value {
			in.Value[i] = decomposer.ClosestRepresentable(in.Value[i])
		}

		for _, m := range []T{0, 1, 5, ^T(0)} {

			ct := NewCiphertext[T](K, N, dd)
			TrivialEncrypt(m, ct)

			g := NewTransformed(tr, K, dd)
			TransformCiphertext(tr, ct, g)

			out := glwe.NewCiphertext[T](K, N)
			eval.ExternalProduct(out, g, in)

			for i := range out.Value {
				require.LessOrEqual(t, torus.Distance(out.Value[i], m*in.Value[i]), tol, "m=%d i=%d", m, i)
			}
		}

		require.Equal(t, 0, eval.Stack.Growths)
		require.Equal(t, scratch.Req{}, eval.Stack.Used())
	})

	t.Run(testString[T]("ExternalProduct/Buffers", tr.Domain(), K, N, dd), func(t *testing.T) {

		ct := NewCiphertext[T](K, N, dd)
		tc.genc.Encrypt(1, tc.std, ct)

		g := NewTransformed(tr, K, dd)
		TransformCiphertext(tr, ct, g)
		require.NotNil(t, g.decomposer)

		_, in := tc.encryptMessage()
		out := glwe.NewCiphertext[T](K, N)

		eval.ExternalProduct(out, g, in)
		require.Len(t, *eval.polys, 2*(K+1))
		headers := &(*eval.polys)[0]

		eval.ExternalProduct(out, g, in)
		require.Same(t, headers, &(*eval.polys)[0])

		// a GGSW built without its decomposer gives the same product
		bare := &Transformed[T, E]{Decomposition: dd, K: K, N: N, Domain: tr.Domain(), Value: g.Value}
		have := glwe.NewCiphertext[T](K, N)
		eval.ExternalProduct(have, bare, in)
		require.True(t, out.Equal(have))
	})

	t.Run(testString[T]("ExternalProduct", tr.Domain(), K, N, dd), func(t *testing.T) {

		msg, in := tc.encryptMessage()

		for _, m := range []T{0, 1} {

			ct := NewCiphertext[T](K, N, dd)
			tc.genc.Encrypt(m, tc.std, ct)

			g := NewTransformed(tr, K, dd)
			TransformCiphertext(tr, ct, g)

			out := glwe.NewCiphertext[T](K, N)
			eval.ExternalProduct(out, g, in)

			have := tc.decode(out)
			for i := range have {
				require.Equal(t, uint64(m)*msg[i], have[i])
			}

			// accumulating a second time doubles the plaintext
			eval.AddExternalProduct(out, g, in)

			have = tc.decode(out)
			for i := range have {
				require.Equal(t, (2*uint64(m)*msg[i])&15, have[i])
			}
		}
	})

	t.Run(testString[T]("CMUX", tr.Domain(), K, N, dd), func(t *testing.T) {

		msg0, ct0 := tc.encryptMessage()
		msg1, ct1 := tc.encryptMessage()

		for _, bit := range []T{0, 1} {

			ct := NewCiphertext[T](K, N, dd)
			tc.genc.Encrypt(bit, tc.std, ct)

			g := NewTransformed(tr, K, dd)
			TransformCiphertext(tr, ct, g)

			c0 := ct0.CopyNew()
			c1 := ct1.CopyNew()

			eval.CMUX(c0, c1, g)

			want := msg0
			if bit == 1 {
				want = msg1
			}

			require.Equal(t, want, tc.decode(c0))
		}
	})

	t.Run(testString[T]("ExternalProduct/DataIndependence", tr.Domain(), K, N, dd), func(t *testing.T) {

		instr := transform.NewInstrumented(tr)
		eval := NewEvaluator[T, E](instr, scratch.NewStack(ExternalProductScratch(tr, K, dd)))

		ct := NewCiphertext[T](K, N, dd)
		tc.genc.Encrypt(1, tc.std, ct)

		g := NewTransformed(tr, K, dd)
		TransformCiphertext(tr, ct, g)

		out := glwe.NewCiphertext[T](K, N)

		// a random input and the zero input
		_, in := tc.encryptMessage()
		eval.ExternalProduct(out, g, in)
		trace := append([]string{}, instr.Trace...)

		instr.Reset()
		eval.ExternalProduct(out, g, glwe.NewCiphertext[T](K, N))

		require.Equal(t, trace, instr.Trace)
		require.Equal(t, dd.Level*(K+1), instr.Calls["ForwardInteger"])
		require.Equal(t, dd.Level*(K+1)*(K+1), instr.Calls["MulAcc"]+instr.Calls["MulAcc/overwrite"])
		require.Equal(t, K+1, instr.Calls["AddBackwardTorus"])
	})
}
