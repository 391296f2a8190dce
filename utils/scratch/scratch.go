// Package scratch implements a stack-like scratch arena from which the
// hot-path operations of the library draw their temporary buffers.
//
// Requirements are expressed as a [Req], which can be combined with
// [All] (buffers live at the same time) and [Any] (buffers are
// used one after the other). A [Stack] reserved for a requirement
// serves every [Take] within this requirement without allocating.
package scratch

import (
	"fmt"
)

// Word is the set of element types a [Stack] can serve.
type Word interface {
	uint32 | uint64 | complex128
}

// Req is a scratch requirement, counted in elements per word type.
type Req struct {
	Words32   int
	Words64   int
	Complexes int
}

// Of returns the requirement of n elements of type V.
func Of[V Word](n int) (r Req) {
	var v V
	switch any(v).(type) {
	case uint32:
		r.Words32 = n
	case uint64:
		r.Words64 = n
	case complex128:
		r.Complexes = n
	}
	return
}

// Times returns the requirement of n consecutive buffers of requirement r.
func (r Req) Times(n int) Req {
	return Req{Words32: r.Words32 * n, Words64: r.Words64 * n, Complexes: r.Complexes * n}
}

// Bytes returns the size in bytes of the requirement.
func (r Req) Bytes() int {
	return 4*r.Words32 + 8*r.Words64 + 16*r.Complexes
}

// All returns the requirement of buffers that are all live at the same time.
func All(reqs ...Req) (r Req) {
	for _, x := range reqs {
		r.Words32 += x.Words32
		r.Words64 += x.Words64
		r.Complexes += x.Complexes
	}
	return
}

// Any returns the requirement of buffers that are used one at a time.
func Any(reqs ...Req) (r Req) {
	for _, x := range reqs {
		r.Words32 = max(r.Words32, x.Words32)
		r.Words64 = max(r.Words64, x.Words64)
		r.Complexes = max(r.Complexes, x.Complexes)
	}
	return
}

// Frame is a snapshot of the state of a [Stack].
type Frame struct {
	o32, o64, o128 int
}

// Stack is a bump allocator with one slab per [Word] type.
// Buffers returned by [Take] are not zeroed and stay valid
// until the [Stack] is released to a [Frame] older than them.
//
// A Stack is not safe for concurrent use.
type Stack struct {
	w32  []uint32
	w64  []uint64
	w128 []complex128
	Frame

	// Growths counts how many times a slab had to be reallocated.
	Growths int
}

// NewStack allocates a new [Stack] reserved for the given requirement.
func NewStack(req Req) (s *Stack) {
	s = new(Stack)
	s.Reserve(req)
	return
}

// Reserve ensures that the free space of the stack is at least req.
func (s *Stack) Reserve(req Req) {
	if need := s.o32 + req.Words32; need > len(s.w32) {
		s.w32 = make([]uint32, need)
	}
	if need := s.o64 + req.Words64; need > len(s.w64) {
		s.w64 = make([]uint64, need)
	}
	if need := s.o128 + req.Complexes; need > len(s.w128) {
		s.w128 = make([]complex128, need)
	}
}

// Capacity returns the total capacity of the stack.
func (s *Stack) Capacity() Req {
	return Req{Words32: len(s.w32), Words64: len(s.w64), Complexes: len(s.w128)}
}

// Used returns the amount of scratch currently taken.
func (s *Stack) Used() Req {
	return Req{Words32: s.o32, Words64: s.o64, Complexes: s.o128}
}

// Mark returns the current [Frame] of the stack.
func (s *Stack) Mark() Frame {
	return s.Frame
}

// Release pops every buffer taken after the [Frame] f.
func (s *Stack) Release(f Frame) {
	if f.o32 > s.o32 || f.o64 > s.o64 || f.o128 > s.o128 {
		panic(fmt.Errorf("invalid frame: cannot release to a frame newer than the stack"))
	}
	s.Frame = f
}

// Take returns a buffer of n elements of type V.
// The content of the buffer is arbitrary.
// If the stack does not hold enough free space, the slab is
// reallocated: buffers taken before stay valid.
func Take[V Word](s *Stack, n int) []V {
	var v V
	switch any(v).(type) {
	case uint32:
		return any(take(&s.w32, &s.o32, n, &s.Growths)).([]V)
	case uint64:
		return any(take(&s.w64, &s.o64, n, &s.Growths)).([]V)
	case complex128:
		return any(take(&s.w128, &s.o128, n, &s.Growths)).([]V)
	}
	panic("unreachable")
}

// TakeZero returns a zeroed buffer of n elements of type V.
func TakeZero[V Word](s *Stack, n int) (buf []V) {
	buf = Take[V](s, n)
	clear(buf)
	return
}

func take[V Word](slab *[]V, off *int, n int, growths *int) (buf []V) {
	if n < 0 {
		panic(fmt.Errorf("invalid size: cannot take %d elements", n))
	}
	if *off+n > len(*slab) {
		*slab = make([]V, 2*(*off+n))
		*growths++
	}
	buf = (*slab)[*off : *off+n : *off+n]
	*off += n
	return
}
