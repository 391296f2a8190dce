package glwe

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/sampling"
)

func testString[T torus.Torus](opname string, K, N int) string {
	return fmt.Sprintf("%s/W=%d/K=%d/N=%d", opname, torus.Bits[T](), K, N)
}

func newTestGenerator[T torus.Torus](label byte) *torus.EncryptionGenerator[T] {
	var maskSeed, noiseSeed [sampling.SeedSize]byte
	maskSeed[0], noiseSeed[0] = label, label+1
	return torus.NewEncryptionGenerator[T](sampling.Blake3, maskSeed, noiseSeed)
}

func encode[T torus.Torus](msg []uint64, deltaLog int) (pt []T) {
	pt = make([]T, len(msg))
	for i, m := range msg {
		pt[i] = torus.Encode[T](m, deltaLog)
	}
	return
}

func TestGLWE(t *testing.T) {
	for _, K := range []int{1, 2} {
		testGLWE[uint32](t, K, 64)
		testGLWE[uint64](t, K, 64)
	}
}

func testGLWE[T torus.Torus](t *testing.T, K, N int) {

	W := torus.Bits[T]()
	std := math.Exp2(-25)
	deltaLog := W - 4

	source := sampling.NewSource([sampling.SeedSize]byte{1})
	sk := GenerateSecretKey[T](K, N, torus.KeyDistribution{Kind: torus.Binary}, source)
	enc := NewEncryptor(sk, newTestGenerator[T](0))

	msg := make([]uint64, N)
	for i := range msg {
		msg[i] = uint64(i) & 15
	}

	t.Run(testString[T]("Encrypt/Decrypt", K, N), func(t *testing.T) {

		ct := NewCiphertext[T](K, N)
		enc.Encrypt(encode[T](msg, deltaLog), std, ct)
		require.False(t, ct.IsTrivial())

		pt := make([]T, N)
		Decrypt(sk, ct, pt)

		for i := range pt {
			require.Equal(t, msg[i], torus.Decode(pt[i], deltaLog))
		}
	})

	t.Run(testString[T]("EncryptSeeded/Expand", K, N), func(t *testing.T) {

		gen := newTestGenerator[T](2)
		enc := enc.WithGenerator(gen)

		seeded := NewSeededCiphertext[T](K, N)
		mask, noise := gen.Mask.Offset(), gen.Noise.Offset()
		enc.EncryptSeeded(encode[T](msg, deltaLog), std, seeded)

		budget := torus.SeededGLWEBudget(N)
		require.Equal(t, mask+budget.Mask, gen.Mask.Offset())
		require.Equal(t, noise+budget.Noise, gen.Noise.Offset())

		ct := NewCiphertext[T](K, N)
		seeded.Expand(ct)
		require.False(t, ct.IsTrivial())
		require.Equal(t, seeded.Body, ct.Body())

		pt := make([]T, N)
		Decrypt(sk, ct, pt)
		for i := range pt {
			require.Equal(t, msg[i], torus.Decode(pt[i], deltaLog))
		}

		// two seeded encryptions draw distinct masks
		other := NewSeededCiphertext[T](K, N)
		enc.EncryptSeeded(nil, std, other)
		require.NotEqual(t, seeded.Seed, other.Seed)

		zero := NewCiphertext[T](K, N)
		other.Expand(zero)
		Decrypt(sk, zero, pt)
		for i := range pt {
			require.Equal(t, uint64(0), torus.Decode(pt[i], deltaLog))
		}

		require.Panics(t, func() { seeded.Expand(NewCiphertext[T](K+1, N)) })
	})

	t.Run(testString[T]("TrivialEncrypt", K, N), func(t *testing.T) {

		want := encode[T](msg, deltaLog)

		ct := NewCiphertext[T](K, N)
		TrivialEncrypt(want, ct)
		require.True(t, ct.IsTrivial())

		have := make([]T, N)
		Decrypt(sk, ct, have)
		require.Equal(t, want, have)
	})

	t.Run(testString[T]("MulByMonomial", K, N), func(t *testing.T) {

		ct := NewCiphertext[T](K, N)
		enc.Encrypt(encode[T](msg, deltaLog), std, ct)

		rot := NewCiphertext[T](K, N)
		rot.MulByMonomial(ct, 3)
		ct.MulByMonomialInPlace(3)
		require.True(t, ct.Equal(rot))

		pt := make([]T, N)
		Decrypt(sk, ct, pt)

		want := encode[T](msg, deltaLog)
		torus.MulByMonomialInPlace(want, 3)

		for i := range pt {
			require.Equal(t, torus.Decode(want[i], deltaLog), torus.Decode(pt[i], deltaLog))
		}
	})

	t.Run(testString[T]("SampleExtract", K, N), func(t *testing.T) {

		ct := NewCiphertext[T](K, N)
		enc.Encrypt(encode[T](msg, deltaLog), std, ct)

		pt := make([]T, N)
		Decrypt(sk, ct, pt)

		lweKey := sk.AsLWEKey()
		out := lwe.NewCiphertext[T](K * N)

		for j := 0; j < N; j++ {
			SampleExtract(out, ct, j)
			require.Equal(t, pt[j], lwe.Decrypt(lweKey, out))
		}
	})
}

func TestPackingKeyswitch(t *testing.T) {
	testPackingKeyswitch[uint32](t, 1, 64, decomposition.Parameters{BaseLog: 4, Level: 4})
	testPackingKeyswitch[uint64](t, 2, 64, decomposition.Parameters{BaseLog: 8, Level: 4})
}

func testPackingKeyswitch[T torus.Torus](t *testing.T, K, N int, dd decomposition.Parameters) {

	W := torus.Bits[T]()
	nIn := 32
	std := math.Exp2(-float64(min(W, 50)))
	deltaLog := W - 4

	source := sampling.NewSource([sampling.SeedSize]byte{5})
	skIn := lwe.GenerateSecretKey[T](nIn, torus.KeyDistribution{Kind: torus.Binary}, source)
	skOut := GenerateSecretKey[T](K, N, torus.KeyDistribution{Kind: torus.Binary}, source)

	lweEnc := lwe.NewEncryptor(skIn, newTestGenerator[T](2))

	ins := make([]*lwe.Ciphertext[T], 5)
	for i := range ins {
		ins[i] = lwe.NewCiphertext[T](nIn)
		lweEnc.Encrypt(torus.Encode[T](uint64(i+1), deltaLog), std, ins[i])
	}

	pt := make([]T, N)

	t.Run(testString[T]("PackingKeyswitch/Identity", K, N), func(t *testing.T) {

		one := make([]T, N)
		one[0] = 1

		pfk, err := GeneratePrivateFunctionalPackingKeyswitchKey(skIn, skOut, dd, std, func(x T) T { return x }, one, newTestGenerator[T](4))
		require.NoError(t, err)

		out := NewCiphertext[T](K, N)
		pfk.PackingKeyswitch(out, ins)
		Decrypt(skOut, out, pt)

		for i := range pt {
			var want uint64
			if i < len(ins) {
				want = uint64(i + 1)
			}
			require.Equal(t, want, torus.Decode(pt[i], deltaLog), i)
		}
	})

	t.Run(testString[T]("Keyswitch/Functional", K, N), func(t *testing.T) {

		// f(x) = -x and P(X) = X^2
		P := make([]T, N)
		P[2] = 1

		pfk, err := GeneratePrivateFunctionalPackingKeyswitchKey(skIn, skOut, dd, std, func(x T) T { return -x }, P, newTestGenerator[T](6))
		require.NoError(t, err)

		out := NewCiphertext[T](K, N)
		pfk.Keyswitch(out, ins[2])
		Decrypt(skOut, out, pt)

		require.Equal(t, uint64(16-3), torus.Decode(pt[2], deltaLog))
		for i := range pt {
			if i != 2 {
				require.Equal(t, uint64(0), torus.Decode(pt[i], deltaLog), i)
			}
		}
	})

	t.Run(testString[T]("Keyswitch/InvalidPolynomial", K, N), func(t *testing.T) {
		_, err := GeneratePrivateFunctionalPackingKeyswitchKey(skIn, skOut, dd, std, func(x T) T { return x }, make([]T, N/2), newTestGenerator[T](8))
		require.Error(t, err)
	})

	t.Run(testString[T]("PublicFunctionalKeyswitch/Pack", K, N), func(t *testing.T) {

		pk, err := GeneratePackingKeyswitchKey(skIn, skOut, dd, std, newTestGenerator[T](10))
		require.NoError(t, err)

		out := NewCiphertext[T](K, N)
		pk.Pack(out, ins)
		Decrypt(skOut, out, pt)

		for i := range pt {
			var want uint64
			if i < len(ins) {
				want = uint64(i + 1)
			}
			require.Equal(t, want, torus.Decode(pt[i], deltaLog), i)
		}

		require.Panics(t, func() { pk.Pack(out, make([]*lwe.Ciphertext[T], N+1)) })
	})

	t.Run(testString[T]("PublicFunctionalKeyswitch/Linear", K, N), func(t *testing.T) {

		pk, err := GeneratePackingKeyswitchKey(skIn, skOut, dd, std, newTestGenerator[T](12))
		require.NoError(t, err)

		// f(x, y) = (3x - y) * X
		f := func(x, poly []T) {
			poly[1] = 3*x[0] - x[1]
		}

		out := NewCiphertext[T](K, N)
		pk.PublicFunctionalKeyswitch(out, []*lwe.Ciphertext[T]{ins[2], ins[0]}, f)
		Decrypt(skOut, out, pt)

		for i := range pt {
			var want uint64
			if i == 1 {
				want = 3*3 - 1
			}
			require.Equal(t, want, torus.Decode(pt[i], deltaLog), i)
		}

		require.Panics(t, func() { pk.PublicFunctionalKeyswitch(out, []*lwe.Ciphertext[T]{lwe.NewCiphertext[T](nIn + 1)}, f) })
		require.Panics(t, func() { pk.PublicFunctionalKeyswitch(NewCiphertext[T](K+1, N), ins, f) })
	})

	t.Run(testString[T]("PackingKeyswitch/TooManyInputs", K, N), func(t *testing.T) {
		pfk := NewPrivateFunctionalPackingKeyswitchKey[T](dd, nIn, K, N)
		require.Panics(t, func() {
			pfk.PackingKeyswitch(NewCiphertext[T](K, N), make([]*lwe.Ciphertext[T], N+1))
		})
	})
}

func TestLeveledMultiply(t *testing.T) {
	for _, K := range []int{1, 2} {
		testLeveledMultiply[uint32](t, K, 64, decomposition.Parameters{BaseLog: 4, Level: 6})
		testLeveledMultiply[uint64](t, K, 64, decomposition.Parameters{BaseLog: 8, Level: 6})
	}
}

func testLeveledMultiply[T torus.Torus](t *testing.T, K, N int, dd decomposition.Parameters) {

	W := torus.Bits[T]()
	std := math.Exp2(-float64(min(W-7, 50)))

	// four bits of message and one bit of padding
	deltaLog := W - 5

	source := sampling.NewSource([sampling.SeedSize]byte{11})
	sk := GenerateSecretKey[T](K, N, torus.KeyDistribution{Kind: torus.Binary}, source)
	enc := NewEncryptor(sk, newTestGenerator[T](20))

	rlk, err := GenerateRelinearizationKey(sk, dd, std, newTestGenerator[T](22))
	require.NoError(t, err)

	// m0 = 2 + X and m1 = 3 + 2X^(N-1), of product 4 + 3X + 4X^(N-1)
	m0, m1 := make([]uint64, N), make([]uint64, N)
	m0[0], m0[1] = 2, 1
	m1[0], m1[N-1] = 3, 2

	want := make([]uint64, N)
	want[0], want[1], want[N-1] = 4, 3, 4

	a, b := NewCiphertext[T](K, N), NewCiphertext[T](K, N)
	enc.Encrypt(encode[T](m0, deltaLog), std, a)
	enc.Encrypt(encode[T](m1, deltaLog), std, b)

	pt := make([]T, N)

	t.Run(testString[T]("TensorProduct", K, N), func(t *testing.T) {

		tensor := NewTensorCiphertext[T](K, N)
		TensorProduct(tensor, a, b, deltaLog)

		DecryptTensor(sk, tensor, pt)
		for i := range pt {
			require.Equal(t, want[i], torus.Decode(pt[i], deltaLog), i)
		}

		// trivial ciphertexts multiply their plaintexts exactly
		ta, tb := NewCiphertext[T](K, N), NewCiphertext[T](K, N)
		TrivialEncrypt(encode[T](m0, deltaLog), ta)
		TrivialEncrypt(encode[T](m1, deltaLog), tb)
		TensorProduct(tensor, ta, tb, deltaLog)
		require.Equal(t, encode[T](want, deltaLog), tensor.Body())
		require.Equal(t, make([]T, len(tensor.Value)-N), tensor.Value[:len(tensor.Value)-N])

		require.Panics(t, func() { TensorProduct(tensor, a, NewCiphertext[T](K+1, N), deltaLog) })
		require.Panics(t, func() { TensorProduct(tensor, a, b, W) })
	})

	t.Run(testString[T]("Relinearize", K, N), func(t *testing.T) {

		tensor := NewTensorCiphertext[T](K, N)
		TensorProduct(tensor, a, b, deltaLog)

		out := NewCiphertext[T](K, N)
		rlk.Relinearize(out, tensor)

		Decrypt(sk, out, pt)
		for i := range pt {
			require.Equal(t, want[i], torus.Decode(pt[i], deltaLog), i)
		}

		have := NewCiphertext[T](K, N)
		rlk.Multiply(have, a, b, deltaLog)
		require.True(t, out.Equal(have))

		require.Panics(t, func() { rlk.Relinearize(NewCiphertext[T](K, 2*N), tensor) })
	})

	t.Run(testString[T]("Multiply/Depth2", K, N), func(t *testing.T) {

		// (m0 * m1) * 2, with 2 encrypted as a constant
		two := make([]uint64, N)
		two[0] = 2

		c := NewCiphertext[T](K, N)
		enc.Encrypt(encode[T](two, deltaLog), std, c)

		ab, abc := NewCiphertext[T](K, N), NewCiphertext[T](K, N)
		rlk.Multiply(ab, a, b, deltaLog)
		rlk.Multiply(abc, ab, c, deltaLog)

		Decrypt(sk, abc, pt)
		for i := range pt {
			require.Equal(t, (2*want[i])&15, torus.Decode(pt[i], deltaLog), i)
		}
	})

	t.Run(testString[T]("RelinearizationKey/InvalidDecomposition", K, N), func(t *testing.T) {
		_, err := GenerateRelinearizationKey(sk, decomposition.Parameters{BaseLog: W, Level: 1}, std, newTestGenerator[T](24))
		require.Error(t, err)
	})
}
