// Package bignum implements arbitrary precision arithmetic helpers for integers and floats.
package bignum

import (
	"fmt"
	"math/big"
)

// NewInt allocates a new *big.Int.
// Accepted types are: string, uint, uint64, uint32, int64, int, *big.Float or *big.Int.
func NewInt(x interface{}) (y *big.Int) {

	y = new(big.Int)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case string:
		y.SetString(x, 0)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case uint32:
		y.SetUint64(uint64(x))
	case int64:
		y.SetInt64(x)
	case int:
		y.SetInt64(int64(x))
	case *big.Float:
		x.Int(y)
	case *big.Int:
		y.Set(x)
	default:
		panic(fmt.Sprintf("cannot NewInt: accepted types are string, uint, uint64, uint32, int, int64, *big.Float, *big.Int, but is %T", x))
	}

	return
}

// Product returns the product of the given moduli as a *big.Int.
func Product(moduli ...uint64) (P *big.Int) {
	P = NewInt(1)
	for _, q := range moduli {
		P.Mul(P, NewInt(q))
	}
	return
}

// MixedRadix returns the mixed-radix digits (d0, d1, ..., dk-1) of x
// with respect to the moduli (q0, q1, ..., qk-1), such that
// x = d0 + d1*q0 + d2*q0*q1 + ... with 0 <= di < qi.
// Panics if x is negative or not smaller than the product of the moduli.
func MixedRadix(x *big.Int, moduli ...uint64) (digits []uint64) {

	if x.Sign() < 0 || x.Cmp(Product(moduli...)) >= 0 {
		panic(fmt.Errorf("invalid x: must be in [0, %v)", Product(moduli...)))
	}

	digits = make([]uint64, len(moduli))

	tmp := new(big.Int).Set(x)
	r := new(big.Int)
	for i, q := range moduli {
		tmp.QuoRem(tmp, NewInt(q), r)
		digits[i] = r.Uint64()
	}

	return
}
