// Package decomposition implements the signed gadget decomposition of elements
// of the discretized torus: an element is first rounded to the closest value
// representable with Level digits of BaseLog bits, and then split into signed
// digits in [-B/2, B/2) with B = 2^BaseLog.
package decomposition

import (
	"fmt"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Parameters is a struct that stores the parameters of a gadget decomposition.
type Parameters struct {
	// BaseLog is the base-2 logarithm of the decomposition base B.
	BaseLog int
	// Level is the number of digits.
	Level int
}

func (p Parameters) String() string {
	return fmt.Sprintf("BaseLog=%d/Level=%d", p.BaseLog, p.Level)
}

// Equal returns true if both parameters are identical.
func (p Parameters) Equal(other Parameters) bool {
	type parameters Parameters // without methods, cmp.Equal does not call back Equal
	return cmp.Equal(parameters(p), parameters(other))
}

// Validate checks that the parameters are valid for the width W:
// BaseLog and Level must be positive and BaseLog * Level < W.
func (p Parameters) Validate(W int) error {
	if p.BaseLog < 1 {
		return fmt.Errorf("invalid decomposition: BaseLog=%d must be positive", p.BaseLog)
	}
	if p.Level < 1 {
		return fmt.Errorf("invalid decomposition: Level=%d must be positive", p.Level)
	}
	if p.BaseLog*p.Level >= W {
		return fmt.Errorf("invalid decomposition: BaseLog*Level=%d must be smaller than W=%d", p.BaseLog*p.Level, W)
	}
	return nil
}

// ScalingLog returns W - BaseLog * level, the base-2 logarithm
// of the gadget factor of the given level, for level in [1, Level].
func (p Parameters) ScalingLog(W, level int) int {
	return W - p.BaseLog*level
}

// Term is a digit of the decomposition with its level.
// The weight of the digit is 2^(W - BaseLog * Level).
type Term[T torus.Torus] struct {
	Level int
	// Digit is the signed digit, stored modulo 2^W.
	Digit T
}

// SignedDecomposer decomposes elements of the torus for a given [Parameters].
type SignedDecomposer[T torus.Torus] struct {
	Parameters
	// unrepresentable bits
	nrb int
}

// NewSignedDecomposer returns a new [SignedDecomposer].
// Panics if the parameters are invalid for T.
func NewSignedDecomposer[T torus.Torus](p Parameters) *SignedDecomposer[T] {

	W := torus.Bits[T]()

	if err := p.Validate(W); err != nil {
		panic(err)
	}

	return &SignedDecomposer[T]{
		Parameters: p,
		nrb:        W - p.BaseLog*p.Level,
	}
}

// ClosestRepresentable returns the value closest to x that is a multiple
// of 2^(W - BaseLog * Level). Ties are rounded up.
func (d *SignedDecomposer[T]) ClosestRepresentable(x T) T {
	nrb := d.nrb
	return ((x >> nrb) + ((x >> (nrb - 1)) & 1)) << nrb
}

// Recompose returns the sum of the terms, each weighted by its gadget factor.
func (d *SignedDecomposer[T]) Recompose(terms []Term[T]) (x T) {
	W := torus.Bits[T]()
	for _, t := range terms {
		x += t.Digit << d.ScalingLog(W, t.Level)
	}
	return
}

// Decompose returns an [Iterator] over the terms of the decomposition of
// the closest representable value of x.
func (d *SignedDecomposer[T]) Decompose(x T) Iterator[T] {
	return Iterator[T]{
		baseLog: d.BaseLog,
		level:   d.Level,
		mask:    T(1)<<d.BaseLog - 1,
		state:   d.ClosestRepresentable(x) >> d.nrb,
	}
}

// Iterator is an iterator over the terms of a decomposition.
// The terms are yielded from level Level down to level 1, that is,
// from the least significant digit to the most significant one,
// as carries propagate upward.
type Iterator[T torus.Torus] struct {
	baseLog int
	level   int
	mask    T
	state   T
}

// Next returns the next term of the decomposition, or false
// if all the terms have been yielded.
func (it *Iterator[T]) Next() (term Term[T], ok bool) {

	if it.level == 0 {
		return term, false
	}

	term = Term[T]{Level: it.level, Digit: decomposeNext(&it.state, it.mask, it.baseLog)}

	it.level--

	return term, true
}

// decomposeNext extracts the next signed digit of the state, in [-B/2, B/2),
// and propagates its carry into the state.
func decomposeNext[T torus.Torus](state *T, mask T, baseLog int) T {
	res := *state & mask
	*state >>= baseLog
	carry := res >> (baseLog - 1)
	*state += carry
	return res - carry<<baseLog
}

// TensorScratch returns the scratch requirement of [SignedDecomposer.DecomposeTensorInto]
// for a tensor of n elements.
func TensorScratch[T torus.Torus](n int) scratch.Req {
	return scratch.Of[T](2 * n)
}

// DecomposeTensor returns a [TensorIterator] over the decomposition of the
// closest representable values of x, element-wise.
func (d *SignedDecomposer[T]) DecomposeTensor(x []T) *TensorIterator[T] {
	it := d.DecomposeTensorInto(x, make([]T, len(x)), make([]T, len(x)))
	return &it
}

// DecomposeTensorInto is as [SignedDecomposer.DecomposeTensor] but backs
// the iterator with caller-provided buffers, of at least len(x) elements each.
func (d *SignedDecomposer[T]) DecomposeTensorInto(x, state, digits []T) TensorIterator[T] {

	if len(state) < len(x) || len(digits) < len(x) {
		panic(fmt.Errorf("invalid buffers: len(state)=%d and len(digits)=%d must be at least len(x)=%d", len(state), len(digits), len(x)))
	}

	state = state[:len(x)]
	for i := range x {
		state[i] = d.ClosestRepresentable(x[i]) >> d.nrb
	}

	return TensorIterator[T]{
		baseLog: d.BaseLog,
		level:   d.Level,
		mask:    T(1)<<d.BaseLog - 1,
		state:   state,
		digits:  digits[:len(x)],
	}
}

// TensorIterator is a lending iterator over the element-wise decomposition of a tensor.
type TensorIterator[T torus.Torus] struct {
	baseLog int
	level   int
	mask    T
	state   []T
	digits  []T
}

// Remaining returns the number of levels left to yield.
func (it *TensorIterator[T]) Remaining() int {
	return it.level
}

// Next returns the level and the digits of the next level of the decomposition,
// or false once all the levels have been yielded. The returned slice is owned
// by the iterator and is overwritten by the next call.
func (it *TensorIterator[T]) Next() (level int, digits []T, ok bool) {

	if it.level == 0 {
		return 0, nil, false
	}

	for i := range it.state {
		it.digits[i] = decomposeNext(&it.state[i], it.mask, it.baseLog)
	}

	level = it.level
	it.level--

	return level, it.digits, true
}
