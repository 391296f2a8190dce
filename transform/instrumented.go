package transform

import (
	"fmt"

	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Instrumented wraps a [Transform] and records the sequence of calls made to it,
// together with the scratch in use at each call that receives a stack.
// Two evaluations whose control flow does not depend on the data they process
// produce identical traces.
//
// An Instrumented transform is not safe for concurrent use.
type Instrumented[T torus.Torus, E any] struct {
	Transform[T, E]
	Trace []string
	Calls map[string]int
}

// NewInstrumented wraps tr.
func NewInstrumented[T torus.Torus, E any](tr Transform[T, E]) *Instrumented[T, E] {
	return &Instrumented[T, E]{Transform: tr, Calls: map[string]int{}}
}

// Reset clears the recorded trace and counters.
func (in *Instrumented[T, E]) Reset() {
	in.Trace = in.Trace[:0]
	clear(in.Calls)
}

func (in *Instrumented[T, E]) record(op string, stack *scratch.Stack) {
	in.Calls[op]++
	if stack != nil {
		op = fmt.Sprintf("%s@%v", op, stack.Used())
	}
	in.Trace = append(in.Trace, op)
}

func (in *Instrumented[T, E]) TakePoly(stack *scratch.Stack) E {
	in.record("TakePoly", stack)
	return in.Transform.TakePoly(stack)
}

func (in *Instrumented[T, E]) ForwardTorus(p []T, out E) {
	in.record("ForwardTorus", nil)
	in.Transform.ForwardTorus(p, out)
}

func (in *Instrumented[T, E]) ForwardInteger(p []T, out E) {
	in.record("ForwardInteger", nil)
	in.Transform.ForwardInteger(p, out)
}

func (in *Instrumented[T, E]) MulAcc(a, b, acc E, overwrite bool) {
	if overwrite {
		in.record("MulAcc/overwrite", nil)
	} else {
		in.record("MulAcc", nil)
	}
	in.Transform.MulAcc(a, b, acc, overwrite)
}

func (in *Instrumented[T, E]) AddBackwardTorus(p E, out []T, stack *scratch.Stack) {
	in.record("AddBackwardTorus", stack)
	in.Transform.AddBackwardTorus(p, out, stack)
}

func (in *Instrumented[T, E]) BackwardTorus(p E, out []T, stack *scratch.Stack) {
	in.record("BackwardTorus", stack)
	in.Transform.BackwardTorus(p, out, stack)
}
