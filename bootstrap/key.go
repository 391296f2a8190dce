package bootstrap

import (
	"fmt"
	"slices"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/ggsw"
	"github.com/Pro7ech/tfhe/glwe"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/transform"
	"github.com/Pro7ech/tfhe/utils/concurrency"
)

// Key is an LWE bootstrap key: the GGSW encryptions, under a GLWE key,
// of the n coefficients of an LWE key.
type Key[T torus.Torus] struct {
	Decomposition  decomposition.Parameters
	InputDimension int
	K, N           int
	// Value stores the GGSW ciphertexts contiguously.
	Value []T
}

// NewKey allocates a new zero [Key].
func NewKey[T torus.Torus](n, K, N int, dd decomposition.Parameters) *Key[T] {
	return &Key[T]{
		Decomposition:  dd,
		InputDimension: n,
		K:              K,
		N:              N,
		Value:          make([]T, n*new(ggsw.Ciphertext[T]).BufferSize(K, N, dd)),
	}
}

// OutputDimension returns the dimension K*N of the LWE ciphertexts output by the bootstrap.
func (bsk Key[T]) OutputDimension() int {
	return bsk.K * bsk.N
}

// GGSW returns the encryption of the i-th coefficient of the input key.
// The returned ciphertext shares the backing array of the key.
func (bsk Key[T]) GGSW(i int) (ct *ggsw.Ciphertext[T]) {
	ct = new(ggsw.Ciphertext[T])
	size := ct.BufferSize(bsk.K, bsk.N, bsk.Decomposition)
	ct.FromBuffer(bsk.K, bsk.N, bsk.Decomposition, bsk.Value[i*size:(i+1)*size])
	return
}

// Equal performs a deep equal.
func (bsk Key[T]) Equal(other *Key[T]) bool {
	return bsk.Decomposition.Equal(other.Decomposition) &&
		bsk.InputDimension == other.InputDimension &&
		bsk.K == other.K && bsk.N == other.N &&
		slices.Equal(bsk.Value, other.Value)
}

// GenerateKey generates a new bootstrap [Key] from the LWE key lweKey to the GLWE key glweKey.
//
// The generator is forked into one child per GGSW ciphertext, and the ciphertexts
// are encrypted concurrently by the given number of workers: the key only depends
// on the state of gen, regardless of the scheduling.
//
// The blind rotation selects with one CMUX per coefficient of the LWE key: the
// method panics if lweKey is not binary.
func GenerateKey[T torus.Torus](lweKey *lwe.SecretKey[T], glweKey *glwe.SecretKey[T], dd decomposition.Parameters, std float64, gen *torus.EncryptionGenerator[T], workers int) (bsk *Key[T], err error) {

	if !lweKey.IsBinary() {
		panic(fmt.Errorf("invalid LWE key: %s key is not binary", lweKey.Distribution.Kind))
	}

	if err = dd.Validate(torus.Bits[T]()); err != nil {
		return nil, err
	}

	n, K, N := lweKey.Dimension(), glweKey.K, glweKey.N

	var children []*torus.EncryptionGenerator[T]
	if children, err = gen.TryForkBudget(n, torus.GGSWBudget[T](K, N, dd.Level)); err != nil {
		return nil, fmt.Errorf("gen.TryForkBudget: %w", err)
	}

	bsk = NewKey[T](n, K, N, dd)

	encryptors := make([]*ggsw.Encryptor[T], max(1, min(workers, n)))
	encryptors[0] = ggsw.NewEncryptor(glweKey, nil)
	for i := 1; i < len(encryptors); i++ {
		encryptors[i] = encryptors[0].ShallowCopy()
	}

	if err = concurrency.ForEach(encryptors, n, func(i int, enc *ggsw.Encryptor[T]) (err error) {
		enc.WithGenerator(children[i]).Encrypt(lweKey.Value[i], std, bsk.GGSW(i))
		return
	}); err != nil {
		return nil, err
	}

	return
}

// TransformedKey is a bootstrap key whose GGSW ciphertexts are in the domain of a transform.
type TransformedKey[T torus.Torus, E any] struct {
	Decomposition  decomposition.Parameters
	InputDimension int
	K, N           int
	Domain         transform.Domain
	GGSW           []*ggsw.Transformed[T, E]
}

// OutputDimension returns the dimension K*N of the LWE ciphertexts output by the bootstrap.
func (bsk TransformedKey[T, E]) OutputDimension() int {
	return bsk.K * bsk.N
}

// TransformKey maps the bootstrap key bsk to the domain of tr.
func TransformKey[T torus.Torus, E any](tr transform.Transform[T, E], bsk *Key[T]) (*TransformedKey[T, E], error) {

	if tr.N() != bsk.N {
		return nil, fmt.Errorf("%w: transform N=%d != key N=%d", transform.ErrUnsupportedSize, tr.N(), bsk.N)
	}

	out := &TransformedKey[T, E]{
		Decomposition:  bsk.Decomposition,
		InputDimension: bsk.InputDimension,
		K:              bsk.K,
		N:              bsk.N,
		Domain:         tr.Domain(),
		GGSW:           make([]*ggsw.Transformed[T, E], bsk.InputDimension),
	}

	for i := range out.GGSW {
		out.GGSW[i] = ggsw.NewTransformed(tr, bsk.K, bsk.Decomposition)
		ggsw.TransformCiphertext(tr, bsk.GGSW(i), out.GGSW[i])
	}

	return out, nil
}
