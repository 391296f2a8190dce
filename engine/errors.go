package engine

import (
	"errors"
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/torus"
)

var (
	// ErrDimensionMismatch is returned when the dimensions (n, K, N or the
	// decomposition parameters) of the operands of a primitive do not agree.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnsupportedTransformSize is returned when the polynomial size is not
	// supported by the transform backend of the engine.
	ErrUnsupportedTransformSize = errors.New("unsupported transform size")

	// ErrScaleFactorOverflow is returned when a decomposition or a scaling factor
	// does not fit the torus width.
	ErrScaleFactorOverflow = errors.New("scale factor overflow")

	// ErrDeviceAllocationFailure is returned when a device does not have enough
	// memory for a shard or a key replica.
	ErrDeviceAllocationFailure = errors.New("device allocation failure")

	// ErrIncompatibleEntity is returned when an entity produced by an engine
	// is used with an engine of another backend.
	ErrIncompatibleEntity = errors.New("incompatible entity")

	// ErrInvalidConfig is returned when a [Config], a [Parameters] or an operation
	// argument such as a message modulus or a key distribution cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")
)

func checkDecomposition[T torus.Torus](dd decomposition.Parameters) error {
	if err := dd.Validate(torus.Bits[T]()); err != nil {
		return fmt.Errorf("%w: %w", ErrScaleFactorOverflow, err)
	}
	return nil
}

func checkDeltaLog[T torus.Torus](deltaLog int) error {
	// the homomorphic shift multiplies by 2^(W-deltaLog-1)
	if W := torus.Bits[T](); deltaLog < 1 || deltaLog > W-1 {
		return fmt.Errorf("%w: deltaLog=%d must be in [1, %d]", ErrScaleFactorOverflow, deltaLog, W-1)
	}
	return nil
}

func checkLen(what string, have, want int) error {
	if have != want {
		return fmt.Errorf("%w: %s: %d != %d", ErrDimensionMismatch, what, have, want)
	}
	return nil
}
