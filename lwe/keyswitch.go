package lwe

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/torus"
)

// KeyswitchKey is an LWE keyswitch key from an input key of dimension n_in
// to an output key of dimension n_out. For each input key coefficient s_i
// and each level l in [1, Level], it stores an LWE encryption under the
// output key of s_i * 2^(W - BaseLog * l).
type KeyswitchKey[T torus.Torus] struct {
	Decomposition   decomposition.Parameters
	InputDimension  int
	OutputDimension int
	// Value stores the rows in the order [n_in][Level].
	Value []T
}

// NewKeyswitchKey allocates a new zero [KeyswitchKey].
func NewKeyswitchKey[T torus.Torus](dd decomposition.Parameters, nIn, nOut int) *KeyswitchKey[T] {
	return &KeyswitchKey[T]{
		Decomposition:   dd,
		InputDimension:  nIn,
		OutputDimension: nOut,
		Value:           make([]T, nIn*dd.Level*(nOut+1)),
	}
}

// Row returns the encryption of s_i * 2^(W - BaseLog * level), for level in [1, Level].
// The returned ciphertext shares the backing array of the key.
func (ksk KeyswitchKey[T]) Row(i, level int) *Ciphertext[T] {
	size := ksk.OutputDimension + 1
	start := (i*ksk.Decomposition.Level + level - 1) * size
	return &Ciphertext[T]{Value: ksk.Value[start : start+size : start+size]}
}

// GenerateKeyswitchKey generates a new [KeyswitchKey] from skIn to skOut.
// The generator is forked into one child per row, so that the key only
// depends on the state of gen.
func GenerateKeyswitchKey[T torus.Torus](skIn, skOut *SecretKey[T], dd decomposition.Parameters, std float64, gen *torus.EncryptionGenerator[T]) (ksk *KeyswitchKey[T], err error) {

	W := torus.Bits[T]()

	if err = dd.Validate(W); err != nil {
		return nil, err
	}

	nIn, nOut := skIn.Dimension(), skOut.Dimension()

	var children []*torus.EncryptionGenerator[T]
	if children, err = gen.TryForkBudget(nIn*dd.Level, torus.LWEBudget[T](nOut)); err != nil {
		return nil, fmt.Errorf("gen.TryForkBudget: %w", err)
	}

	ksk = NewKeyswitchKey[T](dd, nIn, nOut)

	enc := NewEncryptor(skOut, nil)

	for i, s := range skIn.Value {
		for level := 1; level <= dd.Level; level++ {
			enc.WithGenerator(children[i*dd.Level+level-1]).Encrypt(s<<dd.ScalingLog(W, level), std, ksk.Row(i, level))
		}
	}

	return
}

// Keyswitch switches ctIn, encrypted under the input key, to ctOut encrypted under the
// output key. ctOut is overwritten and must not alias ctIn.
//
// ctOut = (0, ..., 0, b) - sum_i sum_l d_{i,l} * KSK[i][l] with d_{i,l} the signed
// decomposition of the closest representable value of the i-th mask element.
func (ksk KeyswitchKey[T]) Keyswitch(ctOut, ctIn *Ciphertext[T]) {

	if ctIn.Dimension() != ksk.InputDimension || ctOut.Dimension() != ksk.OutputDimension {
		panic(fmt.Errorf("invalid ciphertexts: dimensions (%d, %d) != key dimensions (%d, %d)", ctIn.Dimension(), ctOut.Dimension(), ksk.InputDimension, ksk.OutputDimension))
	}

	decomposer := decomposition.NewSignedDecomposer[T](ksk.Decomposition)

	TrivialEncrypt(*ctIn.Body(), ctOut)

	for i, a := range ctIn.Mask() {
		it := decomposer.Decompose(a)
		for term, ok := it.Next(); ok; term, ok = it.Next() {
			torus.MulScalarThenSub(ksk.Row(i, term.Level).Value, term.Digit, ctOut.Value)
		}
	}
}

// KeyswitchVector applies [KeyswitchKey.Keyswitch] to each pair of ciphertexts.
func (ksk KeyswitchKey[T]) KeyswitchVector(ctOut, ctIn []*Ciphertext[T]) {

	if len(ctIn) != len(ctOut) {
		panic(fmt.Errorf("invalid vectors: len(ctOut)=%d != len(ctIn)=%d", len(ctOut), len(ctIn)))
	}

	for i := range ctIn {
		ksk.Keyswitch(ctOut[i], ctIn[i])
	}
}
