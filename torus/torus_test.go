package torus

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Pro7ech/tfhe/utils/sampling"
	"github.com/stretchr/testify/require"
)

func testString[T Torus](opname string) string {
	return fmt.Sprintf("%s/W=%d", opname, Bits[T]())
}

func randomPoly[T Torus](prng *rand.Rand, N int) (p []T) {
	p = make([]T, N)
	for i := range p {
		p[i] = T(prng.Uint64())
	}
	return
}

func TestTorus(t *testing.T) {
	testTorus[uint32](t)
	testTorus[uint64](t)
}

func testTorus[T Torus](t *testing.T) {

	prng := rand.New(rand.NewPCG(3, 4))
	W := Bits[T]()

	t.Run(testString[T]("Encoding"), func(t *testing.T) {
		require.Equal(t, T(1)<<(W-2), FromFloat[T](0.25))
		require.Equal(t, T(1)<<(W-2), FromFloat[T](1.25))
		require.Equal(t, -(T(1) << (W - 2)), FromFloat[T](-0.25))
		require.Equal(t, T(1)<<(W-1), FromFloat[T](0.5))
		require.InDelta(t, 0.25, ToFloat(FromFloat[T](0.25)), 0)
		require.Equal(t, int64(-1), ToSigned(^T(0)))
		require.Equal(t, ^T(0), FromSigned[T](-1))
		require.Equal(t, uint64(3), Distance(T(1), T(4)))
		require.Equal(t, uint64(3), Distance(T(4), T(1)))

		for m := uint64(0); m < 16; m++ {
			x := Encode[T](m, W-4) + T(1)<<(W-6) - 1
			require.Equal(t, m, Decode(x, W-4))
		}
	})

	t.Run(testString[T]("MulByMonomial"), func(t *testing.T) {

		N := 16
		p := randomPoly[T](prng, N)

		for _, e := range []int{0, 1, 5, N - 1, N, N + 3, 2*N - 1, 2 * N, -1, -N - 2} {

			X := make([]T, N)
			switch r := reduceExponent(e, N); {
			case r < N:
				X[r] = 1
			default:
				X[r-N] = ^T(0)
			}

			want := make([]T, N)
			MulNaive(p, X, want)

			have := make([]T, N)
			MulByMonomial(p, e, have)
			require.Equal(t, want, have, e)

			copy(have, p)
			MulByMonomialInPlace(have, e)
			require.Equal(t, want, have, e)
		}
	})

	t.Run(testString[T]("Karatsuba"), func(t *testing.T) {
		for _, N := range []int{2, 32, 64, 256} {
			a, b := randomPoly[T](prng, N), randomPoly[T](prng, N)

			want := make([]T, N)
			MulNaive(a, b, want)

			have := make([]T, N)
			Mul(a, b, have, nil)
			require.Equal(t, want, have)

			MulThenAdd(a, b, have, make([]T, MulBufferSize(N)))
			Add(want, want, want)
			require.Equal(t, want, have)

			// in place
			Mul(a, b, a, nil)
			Add(a, a, a)
			require.Equal(t, have, a)
		}
	})

	t.Run(testString[T]("Samplers"), func(t *testing.T) {

		source := sampling.NewSource([32]byte{})

		u := NewUniformSampler[T](source)
		p := make([]T, 1000)
		u.Read(p)
		require.Equal(t, uint64(len(p)*MaskBytesPerCoefficient[T]()), source.Offset())

		g := NewGaussianSampler[T](sampling.NewSource([32]byte{1}))
		std := 0x1p-20
		g.Read(p, std)
		require.Equal(t, uint64(len(p)*NoiseBytesPerCoefficient), g.Offset())

		var mean, variance float64
		for i := range p {
			x := ToFloat(p[i])
			mean += x
			variance += x * x
		}
		mean /= float64(len(p))
		variance /= float64(len(p))

		require.Less(t, math.Abs(mean), 5*std/math.Sqrt(float64(len(p))))
		require.InDelta(t, 1.0, math.Sqrt(variance)/std, 0.15)
	})

	t.Run(testString[T]("SampleKey"), func(t *testing.T) {

		source := sampling.NewSource([32]byte{2})
		p := make([]T, 512)

		SampleKey(KeyDistribution{Kind: Binary}, source, p)
		for i := range p {
			require.LessOrEqual(t, p[i], T(1))
		}

		SampleKey(KeyDistribution{Kind: Ternary}, source, p)
		var neg int
		for i := range p {
			require.LessOrEqual(t, Distance(p[i], 0), uint64(1))
			if ToSigned(p[i]) == -1 {
				neg++
			}
		}
		require.Greater(t, neg, 0)

		SampleKey(KeyDistribution{Kind: Gaussian, Std: 3.2}, source, p)
		for i := range p {
			require.LessOrEqual(t, Distance(p[i], 0), uint64(30))
		}

		require.Panics(t, func() { SampleKey(KeyDistribution{Kind: Custom}, source, p) })
	})

	t.Run(testString[T]("EncryptionGenerator"), func(t *testing.T) {

		k, N := 1, 64
		budget := GLWEBudget[T](k, N)

		ref := NewEncryptionGenerator[T](sampling.Blake3, [32]byte{5}, [32]byte{6})
		gen := NewEncryptionGenerator[T](sampling.Blake3, [32]byte{5}, [32]byte{6})

		children, err := gen.TryForkBudget(3, budget)
		require.NoError(t, err)

		want := make([]T, 3*k*N)
		ref.FillMask(want)

		for i := 2; i >= 0; i-- {
			have := make([]T, k*N)
			children[i].FillMask(have)
			require.Equal(t, want[i*k*N:(i+1)*k*N], have)

			noise := make([]T, N)
			children[i].AddNoise(noise, 0x1p-20)
			require.Zero(t, children[i].Mask.RemainingBytes())
			require.Zero(t, children[i].Noise.RemainingBytes())
		}

		_, err = children[0].TryForkBudget(1, ForkBudget{Mask: 1})
		require.ErrorIs(t, err, sampling.ErrForkBudget)
	})
}
