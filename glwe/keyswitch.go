package glwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
)

// PrivateFunctionalPackingKeyswitchKey is a key switching LWE ciphertexts of dimension
// n_in to GLWE ciphertexts, while applying a private linear function f and a private
// polynomial P to their plaintext: a ciphertext of m is switched to a ciphertext of
// f(m) * P(X).
//
// For each of the n_in input key coefficients s_i, followed by the constant -1
// matching the body, and each level l in [1, Level], the key stores a GLWE encryption
// under the output key of f(s_i) * P(X) * 2^(W - BaseLog * l).
type PrivateFunctionalPackingKeyswitchKey[T torus.Torus] struct {
	Decomposition  decomposition.Parameters
	InputDimension int
	K, N           int
	// Value stores the rows in the order [n_in+1][Level].
	Value []T
}

// NewPrivateFunctionalPackingKeyswitchKey allocates a new zero [PrivateFunctionalPackingKeyswitchKey].
func NewPrivateFunctionalPackingKeyswitchKey[T torus.Torus](dd decomposition.Parameters, nIn, K, N int) *PrivateFunctionalPackingKeyswitchKey[T] {
	return &PrivateFunctionalPackingKeyswitchKey[T]{
		Decomposition:  dd,
		InputDimension: nIn,
		K:              K,
		N:              N,
		Value:          make([]T, (nIn+1)*dd.Level*(K+1)*N),
	}
}

// Row returns the row of the i-th input coefficient at the given level, for i in [0, n_in]
// and level in [1, Level]. The returned ciphertext shares the backing array of the key.
func (pfk PrivateFunctionalPackingKeyswitchKey[T]) Row(i, level int) *Ciphertext[T] {
	size := (pfk.K + 1) * pfk.N
	start := (i*pfk.Decomposition.Level + level - 1) * size
	return &Ciphertext[T]{N: pfk.N, Value: pfk.Value[start : start+size : start+size]}
}

// GeneratePrivateFunctionalPackingKeyswitchKey generates a new [PrivateFunctionalPackingKeyswitchKey]
// from the LWE key skIn to the GLWE key skOut for the linear function f and the polynomial P.
// The generator is forked into one child per row.
func GeneratePrivateFunctionalPackingKeyswitchKey[T torus.Torus](skIn *lwe.SecretKey[T], skOut *SecretKey[T], dd decomposition.Parameters, std float64, f func(T) T, P []T, gen *torus.EncryptionGenerator[T]) (pfk *PrivateFunctionalPackingKeyswitchKey[T], err error) {

	W := torus.Bits[T]()

	if err = dd.Validate(W); err != nil {
		return nil, err
	}

	if len(P) != skOut.N {
		return nil, fmt.Errorf("invalid polynomial: len(P)=%d != N=%d", len(P), skOut.N)
	}

	nIn, K, N := skIn.Dimension(), skOut.K, skOut.N

	var children []*torus.EncryptionGenerator[T]
	if children, err = gen.TryForkBudget((nIn+1)*dd.Level, torus.GLWEBudget[T](K, N)); err != nil {
		return nil, fmt.Errorf("gen.TryForkBudget: %w", err)
	}

	pfk = NewPrivateFunctionalPackingKeyswitchKey[T](dd, nIn, K, N)

	enc := NewEncryptor(skOut, nil)

	pt := make([]T, N)

	for i := 0; i <= nIn; i++ {

		// the body is multiplied by the key coefficient -1
		s := ^T(0)
		if i < nIn {
			s = skIn.Value[i]
		}

		fs := f(s)

		for level := 1; level <= dd.Level; level++ {
			torus.MulScalar(P, fs<<dd.ScalingLog(W, level), pt)
			enc.WithGenerator(children[i*dd.Level+level-1]).Encrypt(pt, std, pfk.Row(i, level))
		}
	}

	return
}

// Keyswitch switches the LWE ciphertext in to the GLWE ciphertext out, of plaintext
// f(m) * P(X) for m the plaintext of in. out is overwritten.
//
// out = - sum_{i in [0, n_in]} sum_l d_{i,l} * K[i][l] with d_{i,l} the signed decomposition
// of the closest representable value of the i-th element of in, the body being the last one.
func (pfk PrivateFunctionalPackingKeyswitchKey[T]) Keyswitch(out *Ciphertext[T], in *lwe.Ciphertext[T]) {

	if in.Dimension() != pfk.InputDimension || out.K() != pfk.K || out.N != pfk.N {
		panic(fmt.Errorf("invalid ciphertexts: (n, K, N)=(%d, %d, %d) != key (n, K, N)=(%d, %d, %d)", in.Dimension(), out.K(), out.N, pfk.InputDimension, pfk.K, pfk.N))
	}

	decomposer := decomposition.NewSignedDecomposer[T](pfk.Decomposition)

	out.Zero()

	for i, a := range in.Value {
		it := decomposer.Decompose(a)
		for term, ok := it.Next(); ok; term, ok = it.Next() {
			torus.MulScalarThenSub(pfk.Row(i, term.Level).Value, term.Digit, out.Value)
		}
	}
}

// PackingKeyswitch packs the LWE ciphertexts ins, of at most N elements, in the GLWE
// ciphertext out, of plaintext sum_t f(m_t) * P(X) * X^t. out is overwritten.
func (pfk PrivateFunctionalPackingKeyswitchKey[T]) PackingKeyswitch(out *Ciphertext[T], ins []*lwe.Ciphertext[T]) {

	if len(ins) > pfk.N {
		panic(fmt.Errorf("invalid inputs: len(ins)=%d > N=%d", len(ins), pfk.N))
	}

	tmp := NewCiphertext[T](pfk.K, pfk.N)
	rot := NewCiphertext[T](pfk.K, pfk.N)

	out.Zero()

	for t, in := range ins {
		pfk.Keyswitch(tmp, in)
		rot.MulByMonomial(tmp, t)
		out.Add(out, rot)
	}
}

// PackingKeyswitchKey is a key switching LWE ciphertexts of dimension n_in to GLWE
// ciphertexts while applying a public linear function chosen at evaluation time.
//
// For each of the n_in input key coefficients s_i and each level l in [1, Level],
// the key stores a GLWE encryption under the output key of the constant polynomial
// s_i * 2^(W - BaseLog * l).
type PackingKeyswitchKey[T torus.Torus] struct {
	Decomposition  decomposition.Parameters
	InputDimension int
	K, N           int
	// Value stores the rows in the order [n_in][Level].
	Value []T
}

// NewPackingKeyswitchKey allocates a new zero [PackingKeyswitchKey].
func NewPackingKeyswitchKey[T torus.Torus](dd decomposition.Parameters, nIn, K, N int) *PackingKeyswitchKey[T] {
	return &PackingKeyswitchKey[T]{
		Decomposition:  dd,
		InputDimension: nIn,
		K:              K,
		N:              N,
		Value:          make([]T, nIn*dd.Level*(K+1)*N),
	}
}

// Row returns the row of the i-th input coefficient at the given level.
// The returned ciphertext shares the backing array of the key.
func (pk PackingKeyswitchKey[T]) Row(i, level int) *Ciphertext[T] {
	size := (pk.K + 1) * pk.N
	start := (i*pk.Decomposition.Level + level - 1) * size
	return &Ciphertext[T]{N: pk.N, Value: pk.Value[start : start+size : start+size]}
}

// GeneratePackingKeyswitchKey generates a new [PackingKeyswitchKey] from the LWE key
// skIn to the GLWE key skOut. The generator is forked into one child per row.
func GeneratePackingKeyswitchKey[T torus.Torus](skIn *lwe.SecretKey[T], skOut *SecretKey[T], dd decomposition.Parameters, std float64, gen *torus.EncryptionGenerator[T]) (pk *PackingKeyswitchKey[T], err error) {

	W := torus.Bits[T]()

	if err = dd.Validate(W); err != nil {
		return nil, err
	}

	nIn, K, N := skIn.Dimension(), skOut.K, skOut.N

	var children []*torus.EncryptionGenerator[T]
	if children, err = gen.TryForkBudget(nIn*dd.Level, torus.GLWEBudget[T](K, N)); err != nil {
		return nil, fmt.Errorf("gen.TryForkBudget: %w", err)
	}

	pk = NewPackingKeyswitchKey[T](dd, nIn, K, N)

	enc := NewEncryptor(skOut, nil)

	pt := make([]T, N)

	for i, s := range skIn.Value {
		for level := 1; level <= dd.Level; level++ {
			pt[0] = s << dd.ScalingLog(W, level)
			enc.WithGenerator(children[i*dd.Level+level-1]).Encrypt(pt, std, pk.Row(i, level))
		}
	}

	return
}

// PublicFunctionalKeyswitch switches the LWE ciphertexts ins to the GLWE ciphertext out,
// of plaintext f(m_0, ..., m_{p-1}) for m_t the plaintext of ins[t]. out is overwritten.
//
// f writes on poly the polynomial of the torus elements x, one per input, and must be
// linear over the integers. It is evaluated on the bodies and on each mask coordinate:
//
//	out = (0, f(b)) - sum_{i in [0, n_in)} sum_l D_{i,l} * K[i][l]
//
// with D_{i,l} the signed decomposition of the closest representable values of f(a_i).
func (pk PackingKeyswitchKey[T]) PublicFunctionalKeyswitch(out *Ciphertext[T], ins []*lwe.Ciphertext[T], f func(x, poly []T)) {

	if out.K() != pk.K || out.N != pk.N {
		panic(fmt.Errorf("invalid output: (K, N)=(%d, %d) != key (K, N)=(%d, %d)", out.K(), out.N, pk.K, pk.N))
	}

	for t, in := range ins {
		if in.Dimension() != pk.InputDimension {
			panic(fmt.Errorf("invalid input %d: n=%d != key n=%d", t, in.Dimension(), pk.InputDimension))
		}
	}

	N := pk.N

	x := make([]T, len(ins))
	poly := make([]T, N)

	out.Zero()

	for t, in := range ins {
		x[t] = *in.Body()
	}
	f(x, poly)
	copy(out.Body(), poly)

	decomposer := decomposition.NewSignedDecomposer[T](pk.Decomposition)
	state, digits := make([]T, N), make([]T, N)
	buf := make([]T, torus.MulBufferSize(N))

	for i := 0; i < pk.InputDimension; i++ {

		for t, in := range ins {
			x[t] = in.Value[i]
		}

		clear(poly)
		f(x, poly)

		it := decomposer.DecomposeTensorInto(poly, state, digits)
		for level, d, ok := it.Next(); ok; level, d, ok = it.Next() {
			torus.Neg(d, d)
			row := pk.Row(i, level)
			for r := 0; r <= pk.K; r++ {
				torus.MulThenAdd(d, row.Poly(r), out.Poly(r), buf)
			}
		}
	}
}

// Pack packs the LWE ciphertexts ins, of at most N elements, in the GLWE ciphertext
// out, of plaintext sum_t m_t * X^t. out is overwritten.
func (pk PackingKeyswitchKey[T]) Pack(out *Ciphertext[T], ins []*lwe.Ciphertext[T]) {

	if len(ins) > pk.N {
		panic(fmt.Errorf("invalid inputs: len(ins)=%d > N=%d", len(ins), pk.N))
	}

	pk.PublicFunctionalKeyswitch(out, ins, func(x, poly []T) {
		copy(poly, x)
	})
}
