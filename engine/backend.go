package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Backend is the implementation of the polynomial products used by an [Engine].
type Backend int

const (
	// Reference is the exact schoolbook backend, for tests.
	Reference = Backend(iota)
	// Fourier is the floating-point negacyclic FFT backend.
	Fourier
	// NumberTheoretic is the exact three-prime NTT backend.
	NumberTheoretic
	// Device shards vectors of ciphertexts over simulated devices,
	// each evaluating its shard with the Fourier backend.
	Device
)

func (b Backend) String() string {
	switch b {
	case Reference:
		return "reference"
	case Fourier:
		return "fourier"
	case NumberTheoretic:
		return "ntt"
	case Device:
		return "device"
	default:
		return fmt.Sprintf("Backend(%d)", int(b))
	}
}

// ParseBackend returns the [Backend] of the given name.
func ParseBackend(name string) (Backend, error) {
	for _, b := range []Backend{Reference, Fourier, NumberTheoretic, Device} {
		if strings.EqualFold(name, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, name)
}

// MarshalJSON encodes the [Backend] as its name.
func (b Backend) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON decodes a [Backend] from its name.
func (b *Backend) UnmarshalJSON(data []byte) (err error) {
	var name string
	if err = json.Unmarshal(data, &name); err != nil {
		return
	}
	*b, err = ParseBackend(name)
	return
}
