package npe

import (
	"math"

	"github.com/Pro7ech/tfhe/decomposition"
)

func square(x float64) float64 {
	return x * x
}

// Add returns the dispersion of the sum of independent errors.
func Add(ds ...Dispersion) (d Dispersion) {
	for _, di := range ds {
		d.Variance += di.Variance
	}
	return
}

// MulInteger returns the dispersion of an error multiplied by the integer n.
func MulInteger(d Dispersion, n int64) Dispersion {
	return Dispersion{Variance: d.Variance * square(float64(n))}
}

// WeightedSum returns the dispersion of sum_i w_i * e_i for independent errors e_i.
func WeightedSum(ds []Dispersion, weights []int64) (d Dispersion) {
	for i := range ds {
		d.Variance += MulInteger(ds[i], weights[i]).Variance
	}
	return
}

// decompositionError returns the modular variance (q^2 - B^2L) / (12 * B^2L) of the
// rounding to the closest representable value of the decomposition dd.
func decompositionError(dd decomposition.Parameters, W int) float64 {
	return (math.Ldexp(1, 2*W-2*dd.BaseLog*dd.Level) - 1) / 12
}

// gadgetError returns the modular variance L * (B^2 + 2) / 12 * v of the sum of
// the products of the digits of a decomposition with errors of modular variance v.
func gadgetError(dd decomposition.Parameters, v float64) float64 {
	return float64(dd.Level) * (math.Ldexp(1, 2*dd.BaseLog) + 2) / 12 * v
}

// VarianceModulusSwitch returns the dispersion after the switch of an LWE ciphertext
// of dimension n, under a binary key, from Z/2^W to Z/2^msb, with msb = log2(2N) for
// the blind rotation.
func VarianceModulusSwitch(n int, msb int, in Dispersion, W int) Dispersion {
	q2w2 := math.Ldexp(1, 2*(W-msb))
	v := in.ModularVariance(W) + q2w2/12 - 1.0/12 + float64(n)*q2w2/24 + float64(n)/48
	return FromModularVariance(v, W)
}

// VarianceKeyswitch returns the dispersion after the keyswitch of an LWE ciphertext
// of dimension n and dispersion in, with a keyswitch key of dispersion ksk and
// decomposition dd, the input key being of moments key.
func VarianceKeyswitch(n int, in, ksk Dispersion, dd decomposition.Parameters, key KeyMoments, W int) Dispersion {
	nf := float64(n)
	v := in.ModularVariance(W)
	v += nf * decompositionError(dd, W) * key.SecondMoment()
	v += nf / 4 * key.Variance
	v += nf * gadgetError(dd, ksk.ModularVariance(W))
	return FromModularVariance(v, W)
}

// VariancePackingKeyswitch returns the dispersion of the constant coefficient after a
// private functional keyswitch of an LWE ciphertext of dimension n and dispersion in,
// with a key of dispersion ksk and decomposition dd, for a function of Lipschitz
// bound lipschitz.
func VariancePackingKeyswitch(n int, in, ksk Dispersion, dd decomposition.Parameters, lipschitz float64, key KeyMoments, W int) Dispersion {
	nf := float64(n)
	r2 := square(lipschitz)
	v := r2 * in.ModularVariance(W)
	v += r2 * nf * decompositionError(dd, W) * key.SecondMoment()
	v += r2 * nf / 4 * key.Variance
	v += r2 * decompositionError(dd, W)
	v += (nf + 1) * gadgetError(dd, ksk.ModularVariance(W))
	return FromModularVariance(v, W)
}

// VarianceExternalProduct returns the dispersion after the external product of a
// GLWE ciphertext of dispersion in with a GGSW encryption of a bit of dispersion g.
// The GLWE key, of dimension K and polynomial size N, is of moments key.
func VarianceExternalProduct(K, N int, in, g Dispersion, dd decomposition.Parameters, key KeyMoments, W int) Dispersion {
	kN := float64(K * N)
	v := float64(K+1) * float64(N) * gadgetError(dd, g.ModularVariance(W))
	v += in.ModularVariance(W) / 2
	v += decompositionError(dd, W) / 2 * (1 + kN*key.SecondMoment())
	v += kN / 8 * key.Variance
	v += square(1-kN*key.Mean) / 16
	return FromModularVariance(v, W)
}

// VarianceCMUX returns the dispersion of CMUX(ct0, ct1, g) for inputs of dispersions
// ct0 and ct1 and a GGSW of dispersion g.
func VarianceCMUX(K, N int, ct0, ct1, g Dispersion, dd decomposition.Parameters, key KeyMoments, W int) Dispersion {
	return Add(VarianceExternalProduct(K, N, Add(ct0, ct1), g, dd, key, W), ct0)
}

// VarianceBootstrap returns the dispersion of the output of a bootstrap with a trivial
// accumulator, for an input dimension n, a GLWE key of dimension K, polynomial size N
// and moments key, and a bootstrap key of dispersion bsk.
func VarianceBootstrap(n, K, N int, bsk Dispersion, dd decomposition.Parameters, key KeyMoments, W int) Dispersion {
	nf, kN := float64(n), float64(K*N)
	v := nf * float64(K+1) * float64(N) * gadgetError(dd, bsk.ModularVariance(W))
	v += nf * decompositionError(dd, W) / 2 * (1 + kN*key.SecondMoment())
	v += nf * kN / 8 * key.Variance
	v += nf / 16 * square(1-kN*key.Mean)
	return FromModularVariance(v, W)
}

// VarianceMultiValueBootstrap returns an approximation of the dispersion of the outputs
// of a multi-value bootstrap with the look-up table lut, obtained as the dispersion of
// the bootstrap multiplied by the squared norm of lut.
func VarianceMultiValueBootstrap(n, K, N int, bsk Dispersion, dd decomposition.Parameters, key KeyMoments, lut []int64, W int) Dispersion {
	var norm float64
	for _, c := range lut {
		norm += square(float64(c))
	}
	v := VarianceBootstrap(n, K, N, bsk, dd, key, W)
	return Dispersion{Variance: v.Variance * norm}
}

// VarianceCircuitBootstrap returns the dispersion of the rows of the GGSW output by a
// circuit bootstrap with the decomposition dd, for a bootstrap key of dispersion bsk
// and packing keyswitch keys of dispersion pfksk.
func VarianceCircuitBootstrap(n, K, N int, bsk, pfksk Dispersion, dd, ddCBS decomposition.Parameters, key KeyMoments, W int) Dispersion {
	pbs := VarianceBootstrap(n, K, N, bsk, dd, key, W)
	return VariancePackingKeyswitch(K*N, pbs, pfksk, ddCBS, 1, key, W)
}

// VarianceVerticalPacking returns the dispersion of the output of a vertical packing
// over count GGSW ciphertexts of dispersion g.
func VarianceVerticalPacking(count, K, N int, g Dispersion, dd decomposition.Parameters, key KeyMoments, W int) Dispersion {
	return VarianceBootstrap(count, K, N, g, dd, key, W)
}
