package ring

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func testString(opname string, r *Ring) string {
	return fmt.Sprintf("%s/N=%d/Q=%d", opname, r.N, r.Modulus)
}

func testRings(t *testing.T) (rings []*Ring) {
	for _, logN := range []int{1, 4, 8, 10} {
		N := 1 << logN
		primes, err := GenerateNTTPrimes(58, 2*N, 2)
		require.NoError(t, err)
		for _, q := range primes {
			r, err := NewRing(N, q)
			require.NoError(t, err)
			rings = append(rings, r)
		}
	}
	return
}

func randomPoly(r *Ring, prng *rand.Rand) (p []uint64) {
	p = r.NewPoly()
	for i := range p {
		p[i] = prng.Uint64N(r.Modulus)
	}
	return
}

// naiveNegacyclic computes a*b mod (X^N+1, q) with big integers.
func naiveNegacyclic(r *Ring, a, b []uint64) (c []uint64) {
	N := r.N
	Q := new(big.Int).SetUint64(r.Modulus)
	acc := make([]*big.Int, N)
	for i := range acc {
		acc[i] = new(big.Int)
	}
	tmp := new(big.Int)
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			tmp.Mul(new(big.Int).SetUint64(a[i]), new(big.Int).SetUint64(b[j]))
			if i+j < N {
				acc[i+j].Add(acc[i+j], tmp)
			} else {
				acc[i+j-N].Sub(acc[i+j-N], tmp)
			}
		}
	}
	c = make([]uint64, N)
	for i := range c {
		c[i] = acc[i].Mod(acc[i], Q).Uint64()
	}
	return
}

func TestModularReduction(t *testing.T) {

	prng := rand.New(rand.NewPCG(0, 1))

	primes, err := GenerateNTTPrimes(61, 1<<12, 1)
	require.NoError(t, err)

	q := primes[0]
	brc := GetBRedConstant(q)
	mrc := GetMRedConstant(q)
	Q := new(big.Int).SetUint64(q)

	for i := 0; i < 1024; i++ {
		x, y := prng.Uint64N(q), prng.Uint64N(q)

		want := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
		want.Mod(want, Q)

		require.Equal(t, want.Uint64(), BRed(x, y, q, brc))
		require.Equal(t, want.Uint64(), MRed(x, MForm(y, q, brc), q, mrc))
		require.Equal(t, x, IMForm(MForm(x, q, brc), q, mrc))

		z := prng.Uint64()
		require.Equal(t, z%q, BRedAdd(z, q, brc))
	}

	require.Equal(t, uint64(1), BRed(ModInverse(12345, q), 12345, q, brc))
}

func TestPrimes(t *testing.T) {

	primes, err := GenerateNTTPrimes(58, 1<<13, 3)
	require.NoError(t, err)
	require.Len(t, primes, 3)

	for i, q := range primes {
		require.True(t, IsPrime(q))
		require.Equal(t, uint64(1), q%(1<<13))
		require.Less(t, q, uint64(1)<<58)
		if i > 0 {
			require.Less(t, q, primes[i-1])
		}
	}

	next, err := NextNTTPrime(primes[1], 1<<13)
	require.NoError(t, err)
	require.Equal(t, primes[0], next)

	_, err = GenerateNTTPrimes(62, 1<<13, 1)
	require.Error(t, err)
}

func TestRing(t *testing.T) {

	_, err := NewRing(12, 97)
	require.Error(t, err)

	_, err = NewRing(16, 101)
	require.Error(t, err) // 101 = 5 mod 32

	_, err = NewRing(16, 97)
	require.NoError(t, err) // 97 = 1 mod 32

	_, err = NewRing(16, 193*5)
	require.Error(t, err) // not prime

	prng := rand.New(rand.NewPCG(1, 2))

	for _, r := range testRings(t) {

		t.Run(testString("PrimitiveRoot", r), func(t *testing.T) {
			psi := r.PrimitiveRoot
			require.Equal(t, r.Modulus-1, ModExp(psi, uint64(r.N), r.Modulus))
		})

		t.Run(testString("NTT/INTT", r), func(t *testing.T) {
			p := randomPoly(r, prng)
			have := r.NewPoly()
			r.NTT(p, have)
			for _, c := range have {
				require.Less(t, c, r.Modulus)
			}
			r.INTT(have, have)
			require.Equal(t, p, have)
		})

		t.Run(testString("NTT/Operands", r), func(t *testing.T) {
			p := randomPoly(r, prng)
			src := append([]uint64{}, p...)

			out := r.NewPoly()
			r.NTT(p, out)
			require.Equal(t, src, p)

			inPlace := append([]uint64{}, p...)
			r.NTT(inPlace, inPlace)
			require.Equal(t, out, inPlace)

			// the constant 1 evaluates to 1 at every root
			one := r.NewPoly()
			one[0] = 1
			r.NTT(one, one)
			for _, c := range one {
				require.Equal(t, uint64(1), c)
			}

			require.Panics(t, func() { r.NTT(p[:r.N-1], out) })
			require.Panics(t, func() { r.INTT(out, p[:r.N/2]) })
		})

		if r.N <= 256 {
			t.Run(testString("Convolution", r), func(t *testing.T) {
				a, b := randomPoly(r, prng), randomPoly(r, prng)
				want := naiveNegacyclic(r, a, b)

				A, B := r.NewPoly(), r.NewPoly()
				r.NTT(a, A)
				r.NTT(b, B)
				r.MForm(B, B)
				r.MulCoeffsMontgomery(A, B, A)
				r.INTT(A, A)

				require.Equal(t, want, A)

				// Linearity of the accumulation
				C := r.NewPoly()
				r.NTT(a, A)
				r.MulCoeffsMontgomeryThenAdd(A, B, C)
				r.MulCoeffsMontgomeryThenAdd(A, B, C)
				r.INTT(C, C)
				r.Add(want, want, want)
				require.Equal(t, want, C)
			})
		}

		t.Run(testString("VecOps", r), func(t *testing.T) {
			a, b := randomPoly(r, prng), randomPoly(r, prng)
			c := r.NewPoly()
			r.Add(a, b, c)
			r.Sub(c, b, c)
			require.Equal(t, a, c)
			r.Neg(a, c)
			r.Add(a, c, c)
			require.Equal(t, make([]uint64, r.N), c)
			r.MulScalar(a, 3, c)
			r.Sub(c, a, c)
			r.Sub(c, a, c)
			r.Sub(c, a, c)
			require.Equal(t, make([]uint64, r.N), c)
		})
	}
}
