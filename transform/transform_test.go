package transform_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/transform/fft"
	"github.com/Pro7ech/tfhe/transform/ntt"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

func testString[T torus.Torus](opname string, d transform.Domain, N int) string {
	return fmt.Sprintf("%s/%s/W=%d/N=%d", opname, d, torus.Bits[T](), N)
}

func TestTransforms(t *testing.T) {
	testTransforms[uint32](t)
	testTransforms[uint64](t)
}

func testTransforms[T torus.Torus](t *testing.T) {

	W := torus.Bits[T]()

	t.Run("UnsupportedSizes", func(t *testing.T) {
		_, err := fft.New[T](256)
		require.ErrorIs(t, err, transform.ErrUnsupportedSize)
		_, err = fft.New[T](1 << 15)
		require.ErrorIs(t, err, transform.ErrUnsupportedSize)
		_, err = ntt.New[T](8192)
		require.ErrorIs(t, err, transform.ErrUnsupportedSize)
		_, err = ntt.New[T](100)
		require.ErrorIs(t, err, transform.ErrUnsupportedSize)
		_, err = transform.NewReference[T](3)
		require.ErrorIs(t, err, transform.ErrUnsupportedSize)
	})

	// Floating-point tolerance of the Fourier backend
	var fftTol uint64
	if W == 64 {
		fftTol = 1 << (W - 30)
	} else {
		fftTol = 1
	}

	for logN := fft.MinLogN; logN <= fft.MaxLogN; logN++ {
		tr, err := fft.New[T](1 << logN)
		require.NoError(t, err)
		testRoundTrip[T, []complex128](t, tr, fftTol)
		if logN <= 11 {
			testProduct[T, []complex128](t, tr, fftTol)
		}
	}

	for logN := ntt.MinLogN; logN <= ntt.MaxLogN; logN++ {
		tr, err := ntt.New[T](1 << logN)
		require.NoError(t, err)
		testRoundTrip[T, []uint64](t, tr, 0)
		if logN <= 10 {
			testProduct[T, []uint64](t, tr, 0)
		}
	}

	tr, err := transform.NewReference[T](64)
	require.NoError(t, err)
	testRoundTrip[T, []T](t, tr, 0)
	testProduct[T, []T](t, tr, 0)
}

// testRoundTrip checks that p maps back to itself through the product
// with the unit polynomial.
func testRoundTrip[T torus.Torus, E any](t *testing.T, tr transform.Transform[T, E], tol uint64) {
	t.Run(testString[T]("RoundTrip", tr.Domain(), tr.N()), func(t *testing.T) {

		prng := rand.New(rand.NewPCG(7, uint64(tr.N())))
		stack := scratch.NewStack(scratch.All(tr.PolyScratch().Times(3), tr.BackwardScratch()))

		p := make([]T, tr.N())
		for i := range p {
			p[i] = T(prng.Uint64())
		}

		one := make([]T, tr.N())
		one[0] = 1

		P, One, Acc := tr.TakePoly(stack), tr.TakePoly(stack), tr.TakePoly(stack)
		tr.ForwardTorus(p, P)
		tr.ForwardInteger(one, One)
		tr.MulAcc(One, P, Acc, true)

		have := make([]T, tr.N())
		tr.BackwardTorus(Acc, have, stack)

		for i := range p {
			require.LessOrEqual(t, torus.Distance(p[i], have[i]), tol)
		}

		require.Zero(t, stack.Growths)
	})
}

// testProduct checks that sum_i a_i * b_i, for a_i small signed
// polynomials and b_i torus polynomials, matches the schoolbook product.
func testProduct[T torus.Torus, E any](t *testing.T, tr transform.Transform[T, E], tol uint64) {
	t.Run(testString[T]("Product", tr.Domain(), tr.N()), func(t *testing.T) {

		N := tr.N()
		prng := rand.New(rand.NewPCG(8, uint64(N)))
		stack := scratch.NewStack(scratch.All(tr.PolyScratch().Times(3), tr.BackwardScratch()))

		const terms = 4
		const B = 1 << 7

		want := make([]T, N)
		have := make([]T, N)
		for i := range have {
			have[i] = T(prng.Uint64())
			want[i] = have[i]
		}

		A, Bt, Acc := tr.TakePoly(stack), tr.TakePoly(stack), tr.TakePoly(stack)

		for k := 0; k < terms; k++ {

			a := make([]T, N)
			b := make([]T, N)
			for i := range a {
				a[i] = torus.FromSigned[T](int64(prng.IntN(B)) - B/2)
				b[i] = T(prng.Uint64())
			}

			torus.MulThenAdd(a, b, want, nil)

			tr.ForwardInteger(a, A)
			tr.ForwardTorus(b, Bt)
			tr.MulAcc(A, Bt, Acc, k == 0)
		}

		tr.AddBackwardTorus(Acc, have, stack)

		for i := range want {
			require.LessOrEqual(t, torus.Distance(want[i], have[i]), tol)
		}

		require.Zero(t, stack.Growths)
	})
}
