package engine

import (
	"fmt"
	"runtime"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/tfhe/utils/sampling"
)

const (
	// DefaultDeviceMemory is the memory of a device when [Config.DeviceMemory] is zero.
	DefaultDeviceMemory = 1 << 30
	// DefaultLabel is the label of an engine when [Config.Label] is empty.
	DefaultLabel = "tfhe"
)

// Config is a literal struct describing an [Engine].
//
// If Seed is empty, the randomness of the engine is drawn from the OS entropy
// source. Otherwise it is derived from Label and Seed, so that two engines of
// the same configuration generate the same keys and ciphertexts.
type Config struct {
	Backend Backend `json:"backend"`

	// Devices is the number of devices of the [Device] backend.
	Devices int `json:"devices,omitempty"`
	// DeviceMemory is the memory of each device, in bytes.
	DeviceMemory uint64 `json:"device_memory,omitempty"`

	// Generator is the name of the pseudo-random generator of the sources: blake3 or chacha20.
	Generator string `json:"generator,omitempty"`
	Seed      []byte `json:"seed,omitempty"`

	// Workers is the number of goroutines of the key generation.
	Workers int    `json:"workers,omitempty"`
	Label   string `json:"label,omitempty"`
}

// Validate fills the zero fields of the receiver with their default
// and returns an error wrapping [ErrInvalidConfig] if it cannot be used.
func (c *Config) Validate() (err error) {

	switch c.Backend {
	case Reference, Fourier, NumberTheoretic:
		if c.Devices != 0 || c.DeviceMemory != 0 {
			return fmt.Errorf("%w: backend %s does not have devices", ErrInvalidConfig, c.Backend)
		}
	case Device:
		if c.Devices < 0 {
			return fmt.Errorf("%w: Devices=%d must be positive", ErrInvalidConfig, c.Devices)
		}
		if c.Devices == 0 {
			c.Devices = 1
		}
		if c.DeviceMemory == 0 {
			c.DeviceMemory = DefaultDeviceMemory
		}
	default:
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidConfig, int(c.Backend))
	}

	var g sampling.Generator
	if g, err = sampling.ParseGenerator(c.Generator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Generator = g.String()

	if c.Workers < 0 {
		return fmt.Errorf("%w: Workers=%d must be positive", ErrInvalidConfig, c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.Label == "" {
		c.Label = DefaultLabel
	}

	return
}

// Equal performs a deep equal.
func (c Config) Equal(other Config) bool {
	type config Config // without methods, cmp.Equal does not call back Equal
	return cmp.Equal(config(c), config(other))
}
