// Package npe implements the noise propagation estimators of the TFHE
// primitives, the key dispersion moments they depend on, and the empirical
// statistics used to compare them with measured decryption errors.
//
// Dispersions are stored as variances over the real torus [-1/2, 1/2).
// The formulas are evaluated over the modular torus Z/2^W.
package npe

import (
	"fmt"
	"math"
	"math/big"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/bignum"
)

// prec is the precision of the conversions between the real and the modular torus.
const prec = 256

// Dispersion is the dispersion of an error over the real torus.
type Dispersion struct {
	Variance float64
}

// FromVariance returns the [Dispersion] of the given variance.
func FromVariance(v float64) Dispersion {
	return Dispersion{Variance: v}
}

// FromStandardDev returns the [Dispersion] of the given standard deviation.
func FromStandardDev(std float64) Dispersion {
	return Dispersion{Variance: std * std}
}

// FromLogStandardDev returns the [Dispersion] of standard deviation 2^logStd.
func FromLogStandardDev(logStd float64) Dispersion {
	v, _ := bignum.Pow2(2*logStd, prec).Float64()
	return Dispersion{Variance: v}
}

// FromModularVariance returns the [Dispersion] of the variance v over Z/2^W.
func FromModularVariance(v float64, W int) Dispersion {
	if v == 0 {
		return Dispersion{}
	}
	x := bignum.NewFloat(v, prec)
	x.Mul(x, bignum.Pow2(-2*float64(W), prec))
	f, _ := x.Float64()
	return Dispersion{Variance: f}
}

// ModularVariance returns the variance over Z/2^W.
func (d Dispersion) ModularVariance(W int) float64 {
	return math.Ldexp(d.Variance, 2*W)
}

// StandardDev returns the standard deviation over the real torus.
func (d Dispersion) StandardDev() float64 {
	return math.Sqrt(d.Variance)
}

// ModularStandardDev returns the standard deviation over Z/2^W.
func (d Dispersion) ModularStandardDev(W int) float64 {
	return math.Ldexp(d.StandardDev(), W)
}

// LogStandardDev returns log2 of the standard deviation.
// Panics if the dispersion is zero.
func (d Dispersion) LogStandardDev() float64 {
	return bignum.Log2(bignum.NewFloat(d.Variance, prec)) / 2
}

func (d Dispersion) String() string {
	if d.Variance == 0 {
		return "Dispersion{0}"
	}
	return fmt.Sprintf("Dispersion{std=2^%.2f}", d.LogStandardDev())
}

// Bound returns the bound sigmas * std over Z/2^W, saturated to 2^(W-1).
func (d Dispersion) Bound(sigmas float64, W int) uint64 {
	b := new(big.Float).SetPrec(prec).SetFloat64(sigmas * d.StandardDev())
	b.SetMantExp(b, W)
	if half := bignum.Pow2(float64(W-1), prec); b.Cmp(half) > 0 {
		b = half
	}
	u, _ := b.Uint64()
	return u
}

// KeyMoments are the first moments of the coefficients of a secret key,
// over the integers.
type KeyMoments struct {
	Mean     float64
	Variance float64
}

// DefaultGaussianKeyStd is the standard deviation of Gaussian keys whose
// distribution does not specify one.
const DefaultGaussianKeyStd = 3.2

// Moments returns the [KeyMoments] of the distribution d.
// Panics if the kind of d is [torus.Custom].
func Moments(d torus.KeyDistribution) KeyMoments {
	switch d.Kind {
	case torus.Binary:
		return KeyMoments{Mean: 1.0 / 2, Variance: 1.0 / 4}
	case torus.Ternary:
		return KeyMoments{Mean: 0, Variance: 2.0 / 3}
	case torus.Gaussian:
		std := d.Std
		if std == 0 {
			std = DefaultGaussianKeyStd
		}
		return KeyMoments{Mean: 0, Variance: std * std}
	default:
		panic(fmt.Errorf("invalid key kind: no moments for %v", d.Kind))
	}
}

// SecondMoment returns E[s^2].
func (m KeyMoments) SecondMoment() float64 {
	return m.Variance + m.Mean*m.Mean
}
