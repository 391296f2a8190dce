package decomposition

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/tfhe/torus"
)

func testString[T torus.Torus](opname string, p Parameters) string {
	return fmt.Sprintf("%s/W=%d/%s", opname, torus.Bits[T](), p)
}

func TestDecomposition(t *testing.T) {
	testDecomposition[uint32](t)
	testDecomposition[uint64](t)
}

func testDecomposition[T torus.Torus](t *testing.T) {

	W := torus.Bits[T]()
	prng := rand.New(rand.NewPCG(5, 6))

	t.Run(testString[T]("Validate", Parameters{}), func(t *testing.T) {
		require.Error(t, Parameters{BaseLog: 0, Level: 1}.Validate(W))
		require.Error(t, Parameters{BaseLog: 4, Level: 0}.Validate(W))
		require.Error(t, Parameters{BaseLog: W / 2, Level: 2}.Validate(W))
		require.NoError(t, Parameters{BaseLog: 7, Level: 3}.Validate(W))
		require.Panics(t, func() { NewSignedDecomposer[T](Parameters{BaseLog: 1, Level: W}) })
		require.True(t, Parameters{BaseLog: 7, Level: 3}.Equal(Parameters{BaseLog: 7, Level: 3}))
	})

	for baseLog := 1; baseLog < W; baseLog += 3 {
		for level := 1; baseLog*level < W; level += 2 {

			p := Parameters{BaseLog: baseLog, Level: level}
			d := NewSignedDecomposer[T](p)
			nrb := W - baseLog*level
			half := uint64(1) << (nrb - 1)
			B := int64(1) << baseLog

			t.Run(testString[T]("Recompose", p), func(t *testing.T) {

				for i := 0; i < 256; i++ {

					x := T(prng.Uint64())

					closest := d.ClosestRepresentable(x)
					require.LessOrEqual(t, torus.Distance(closest, x), half)
					require.Zero(t, closest&(T(1)<<nrb-1))

					it := d.Decompose(x)
					terms := []Term[T]{}
					expected := level
					for term, ok := it.Next(); ok; term, ok = it.Next() {
						require.Equal(t, expected, term.Level)
						digit := torus.ToSigned(term.Digit)
						require.GreaterOrEqual(t, digit, -B/2)
						require.Less(t, digit, B/2)
						terms = append(terms, term)
						expected--
					}

					require.Len(t, terms, level)
					require.Equal(t, closest, d.Recompose(terms))
				}
			})

			t.Run(testString[T]("Tensor", p), func(t *testing.T) {

				x := make([]T, 64)
				for i := range x {
					x[i] = T(prng.Uint64())
				}

				it := d.DecomposeTensor(x)

				recomposed := make([]T, len(x))
				var count int
				for lvl, digits, ok := it.Next(); ok; lvl, digits, ok = it.Next() {
					require.Equal(t, level-count, lvl)
					for i := range digits {
						recomposed[i] += digits[i] << d.ScalingLog(W, lvl)
					}
					count++
				}

				require.Equal(t, level, count)
				require.Zero(t, it.Remaining())

				for i := range x {
					require.Equal(t, d.ClosestRepresentable(x[i]), recomposed[i])
				}

				_, _, ok := it.Next()
				require.False(t, ok)
			})
		}
	}

	t.Run(testString[T]("DigitRange", Parameters{BaseLog: 4, Level: 2}), func(t *testing.T) {
		d := NewSignedDecomposer[T](Parameters{BaseLog: 4, Level: 2})
		// every digit equal to B/2 = 8 must be emitted as -8 with a carry
		x := T(0x78) << (W - 8)
		it := d.Decompose(x)
		var terms []Term[T]
		for term, ok := it.Next(); ok; term, ok = it.Next() {
			require.Equal(t, int64(-8), torus.ToSigned(term.Digit), "level=%d", term.Level)
			terms = append(terms, term)
		}
		require.Len(t, terms, 2)
		require.Equal(t, x, d.Recompose(terms))
	})

	t.Run(testString[T]("Edges", Parameters{BaseLog: 4, Level: 2}), func(t *testing.T) {
		d := NewSignedDecomposer[T](Parameters{BaseLog: 4, Level: 2})
		for _, x := range []T{0, ^T(0), T(1) << (W - 1), T(1)<<(W-1) - 1, T(1) << (W - 9)} {
			it := d.Decompose(x)
			var terms []Term[T]
			for term, ok := it.Next(); ok; term, ok = it.Next() {
				terms = append(terms, term)
			}
			require.Equal(t, d.ClosestRepresentable(x), d.Recompose(terms))
			require.LessOrEqual(t, torus.Distance(d.ClosestRepresentable(x), x), uint64(1)<<(W-9))
		}
	})
}
