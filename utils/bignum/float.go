package bignum

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// NewFloat creates a new big.Float element with "prec" bits of precision.
// Valide types for x are: int, int64, uint, uint64, float64, *big.Int or *big.Float.
func NewFloat(x interface{}, prec uint) (y *big.Float) {

	y = new(big.Float)
	y.SetPrec(prec)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case int:
		y.SetInt64(int64(x))
	case int64:
		y.SetInt64(x)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case float64:
		y.SetFloat64(x)
	case *big.Int:
		y.SetInt(x)
	case *big.Float:
		y.Set(x)
	default:
		panic(fmt.Errorf("invalid x.(type): valide types are int, int64, uint, uint64, float64, *big.Int or *big.Float but is %T", x))
	}

	return
}

// Pow returns x^y.
func Pow(x, y *big.Float) (pow *big.Float) {
	return bigfloat.Pow(x, y)
}

// Pow2 returns 2^e with prec bits of precision, for any real e.
// Exponents far below the float64 range are handled exactly.
func Pow2(e float64, prec uint) (y *big.Float) {
	if e == math.Trunc(e) {
		return new(big.Float).SetPrec(prec).SetMantExp(NewFloat(1, prec), int(e))
	}
	return Pow(NewFloat(2, prec), NewFloat(e, prec))
}

// Log2 returns log2(x) as a float64.
// x must be strictly positive.
func Log2(x *big.Float) float64 {

	if x.Sign() <= 0 {
		panic(fmt.Errorf("invalid x: must be strictly positive"))
	}

	mant := new(big.Float)
	exp := x.MantExp(mant)
	m, _ := mant.Float64()

	return float64(exp) + math.Log2(m)
}
