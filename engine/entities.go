package engine

import (
	"fmt"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/device"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
)

// TransformedGGSWCiphertext is a GGSW ciphertext in the transform domain of the
// backend of the engine that converted it. Its content is opaque.
type TransformedGGSWCiphertext[T torus.Torus] struct {
	Backend       Backend
	K, N          int
	Decomposition decomposition.Parameters
	value         any
}

// TransformedBootstrapKey is a bootstrap key in the transform domain of the
// backend of the engine that converted it. Its content is opaque.
//
// With the [Device] backend, every device holds its own replica of the key.
type TransformedBootstrapKey[T torus.Torus] struct {
	Backend        Backend
	InputDimension int
	K, N           int
	Decomposition  decomposition.Parameters
	value          any
	replicas       []replica
}

// OutputDimension returns the dimension K*N of the LWE ciphertexts output by the bootstrap.
func (bsk TransformedBootstrapKey[T]) OutputDimension() int {
	return bsk.K * bsk.N
}

// replica is a copy of a key in the memory of a device.
type replica struct {
	alloc *device.Allocation
	value any
}

func freeReplicas(replicas []replica) {
	for _, r := range replicas {
		r.alloc.Free()
	}
}

func (e *Engine[T]) checkGGSW(g *TransformedGGSWCiphertext[T]) error {
	if g.Backend != e.Config.Backend || g.value == nil {
		return fmt.Errorf("%w: GGSW ciphertext of backend %s used with backend %s", ErrIncompatibleEntity, g.Backend, e.Config.Backend)
	}
	return nil
}

func (e *Engine[T]) checkBootstrapKey(bsk *TransformedBootstrapKey[T]) error {
	if bsk.Backend != e.Config.Backend || bsk.value == nil {
		return fmt.Errorf("%w: bootstrap key of backend %s used with backend %s", ErrIncompatibleEntity, bsk.Backend, e.Config.Backend)
	}
	if e.Config.Backend == Device && len(bsk.replicas) != e.devices.Len() {
		return fmt.Errorf("%w: bootstrap key has %d device replicas for %d devices", ErrIncompatibleEntity, len(bsk.replicas), e.devices.Len())
	}
	return nil
}

func checkLWE[T torus.Torus](what string, ct *lwe.Ciphertext[T], n int) error {
	return checkLen(what+" dimension", ct.Dimension(), n)
}
