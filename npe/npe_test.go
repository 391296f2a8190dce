package npe

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

func testString(opname string, W int, kind torus.KeyKind) string {
	return fmt.Sprintf("%s/W=%d/Key=%s", opname, W, kind)
}

func TestDispersion(t *testing.T) {

	t.Run("LogStandardDev", func(t *testing.T) {
		for _, logStd := range []float64{-5, -25.5, -40, -500} {
			d := FromLogStandardDev(logStd)
			require.InDelta(t, logStd, d.LogStandardDev(), 1e-9)
		}
	})

	t.Run("ModularVariance", func(t *testing.T) {
		d := FromModularVariance(16, 32)
		require.Equal(t, math.Ldexp(1, -60), d.Variance)
		require.Equal(t, 16.0, d.ModularVariance(32))
		require.Equal(t, 4.0, d.ModularStandardDev(32))
		require.Equal(t, Dispersion{}, FromModularVariance(0, 64))
	})

	t.Run("Bound", func(t *testing.T) {
		d := FromLogStandardDev(-20)
		require.Equal(t, uint64(10<<12), d.Bound(10, 32))
		require.Equal(t, uint64(1<<31), FromStandardDev(1).Bound(10, 32))
	})

	t.Run("Operators", func(t *testing.T) {
		a, b := FromVariance(1), FromVariance(5)
		require.Equal(t, 6.0, Add(a, b).Variance)
		require.Equal(t, 9.0, MulInteger(a, -3).Variance)
		require.Equal(t, 47.0, WeightedSum([]Dispersion{FromVariance(2), b}, []int64{1, 3}).Variance)
	})
}

func TestMoments(t *testing.T) {
	require.Equal(t, KeyMoments{Mean: 0.5, Variance: 0.25}, Moments(torus.KeyDistribution{Kind: torus.Binary}))
	require.Equal(t, 0.5, Moments(torus.KeyDistribution{Kind: torus.Binary}).SecondMoment())
	require.Equal(t, 2.0/3, Moments(torus.KeyDistribution{Kind: torus.Ternary}).SecondMoment())
	require.InDelta(t, 3.2*3.2, Moments(torus.KeyDistribution{Kind: torus.Gaussian}).Variance, 1e-12)
	require.Equal(t, 4.0, Moments(torus.KeyDistribution{Kind: torus.Gaussian, Std: 2}).Variance)
	require.Panics(t, func() { Moments(torus.KeyDistribution{Kind: torus.Custom}) })
}

func TestMeasure(t *testing.T) {

	t.Run("Gaussian", func(t *testing.T) {
		std := math.Exp2(-20)
		g := torus.NewGaussianSampler[uint64](sampling.NewSource([sampling.SeedSize]byte{7}))
		have := make([]uint64, 1<<14)
		g.Read(have, std)
		s, err := Measure(Errors(have, make([]uint64, len(have))))
		require.NoError(t, err)
		require.Equal(t, len(have), s.Count)
		require.InDelta(t, 0, s.Mean/std, 0.05)
		require.InDelta(t, 1, s.Std/std, 0.05)
		require.Greater(t, s.Max, 3*std)
		require.InDelta(t, -20, s.Dispersion().LogStandardDev(), 0.1)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := Measure(nil)
		require.Error(t, err)
	})

	t.Run("Errors", func(t *testing.T) {
		errs := Errors([]uint32{1 << 30, 0}, []uint32{0, 1 << 30})
		require.Equal(t, []float64{0.25, -0.25}, errs)
		require.Panics(t, func() { Errors([]uint32{0}, nil) })
	})
}

func TestVarianceKeyswitch(t *testing.T) {
	testVarianceKeyswitch[uint64](t, torus.Binary, decomposition.Parameters{BaseLog: 4, Level: 3}, -40)
	testVarianceKeyswitch[uint64](t, torus.Ternary, decomposition.Parameters{BaseLog: 4, Level: 3}, -40)
	testVarianceKeyswitch[uint32](t, torus.Binary, decomposition.Parameters{BaseLog: 2, Level: 5}, -25)
}

// testVarianceKeyswitch compares the predicted dispersion of the keyswitch with
// the one measured over a sample of ciphertexts.
func testVarianceKeyswitch[T torus.Torus](t *testing.T, kind torus.KeyKind, dd decomposition.Parameters, logStd float64) {
	t.Run(testString("Keyswitch", torus.Bits[T](), kind), func(t *testing.T) {

		W := torus.Bits[T]()
		nIn, nOut, samples := 256, 64, 512

		d := torus.KeyDistribution{Kind: kind}
		skIn := lwe.GenerateSecretKey[T](nIn, d, sampling.NewSource([sampling.SeedSize]byte{1}))
		skOut := lwe.GenerateSecretKey[T](nOut, torus.KeyDistribution{Kind: torus.Binary}, sampling.NewSource([sampling.SeedSize]byte{2}))

		var maskSeed, noiseSeed [sampling.SeedSize]byte
		maskSeed[0], noiseSeed[0] = 3, 4
		gen := torus.NewEncryptionGenerator[T](sampling.Blake3, maskSeed, noiseSeed)

		std := math.Exp2(logStd)
		ksk, err := lwe.GenerateKeyswitchKey(skIn, skOut, dd, std, gen)
		require.NoError(t, err)

		enc := lwe.NewEncryptor(skIn, gen)
		ctIn, ctOut := lwe.NewCiphertext[T](nIn), lwe.NewCiphertext[T](nOut)

		have, want := make([]T, samples), make([]T, samples)
		for i := range have {
			enc.EncryptZero(0, ctIn)
			ksk.Keyswitch(ctOut, ctIn)
			have[i] = lwe.Decrypt(skOut, ctOut)
		}

		s, err := Measure(Errors(have, want))
		require.NoError(t, err)

		pred := VarianceKeyswitch(nIn, Dispersion{}, FromStandardDev(std), dd, Moments(d), W)

		ratio := s.Std / pred.StandardDev()
		require.Greater(t, ratio, 0.5, "measured %s, predicted %s", s, pred)
		require.Less(t, ratio, 2.0, "measured %s, predicted %s", s, pred)
	})
}
