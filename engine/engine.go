// Package engine implements the entity/engine layer of the library: an [Engine]
// bundles a transform backend, the sources of randomness, a scratch arena and,
// for the [Device] backend, a set of simulated devices, and exposes every
// primitive as a pair of methods. The checked method validates its operands and
// returns an error wrapping one of the sentinel errors of the package before any
// mutation. The Unchecked method skips the validation and calls the same core:
// it panics or silently misbehaves on invalid operands.
//
// An Engine is not safe for concurrent use.
package engine

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Pro7ech/tfhe/device"
	"github.com/Pro7ech/tfhe/lwe"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils/sampling"
	"github.com/Pro7ech/tfhe/utils/scratch"
)

// Option is an optional argument of [New].
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger of the engine and of its devices.
// By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Engine evaluates the primitives of the scheme on the torus of type T
// with the backend of its [Config].
type Engine[T torus.Torus] struct {
	Config Config

	logger  *slog.Logger
	secrets *sampling.Source
	gen     *torus.EncryptionGenerator[T]
	stack   *scratch.Stack
	kernels map[int]kernel[T]

	devices  *device.Set
	contexts []*deviceContext[T]
	ksks     map[*lwe.KeyswitchKey[T]][]*device.Allocation
}

// New returns a new [Engine] for the configuration cfg.
// Returns an error wrapping [ErrInvalidConfig] if cfg is invalid.
func New[T torus.Torus](cfg Config, opts ...Option) (e *Engine[T], err error) {

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger.With("engine", cfg.Label, "backend", cfg.Backend.String(), "W", torus.Bits[T]())

	generator, err := sampling.ParseGenerator(cfg.Generator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var seeder sampling.Seeder = sampling.OSSeeder{}
	if len(cfg.Seed) != 0 {
		ts := sampling.NewTranscriptSeeder("tfhe-engine")
		ts.Append("label", []byte(cfg.Label))
		ts.Append("generator", []byte(cfg.Generator))
		ts.Append("width", binary.LittleEndian.AppendUint64(nil, uint64(torus.Bits[T]())))
		ts.Append("seed", cfg.Seed)
		seeder = ts
	}

	secretSeed, maskSeed, noiseSeed := seeder.Seed(), seeder.Seed(), seeder.Seed()

	e = &Engine[T]{
		Config:  cfg,
		logger:  logger,
		secrets: sampling.NewSourceWithGenerator(generator, secretSeed),
		gen:     torus.NewEncryptionGenerator[T](generator, maskSeed, noiseSeed),
		stack:   new(scratch.Stack),
		kernels: map[int]kernel[T]{},
	}

	if cfg.Backend == Device {
		e.devices = device.NewSet(cfg.Devices, cfg.DeviceMemory, logger)
		e.contexts = make([]*deviceContext[T], cfg.Devices)
		for i, d := range e.devices.Devices {
			e.contexts[i] = &deviceContext[T]{Device: d, stack: new(scratch.Stack)}
		}
		e.ksks = map[*lwe.KeyswitchKey[T]][]*device.Allocation{}
	}

	logger.Debug("engine created", "workers", cfg.Workers, "generator", cfg.Generator, "deterministic", len(cfg.Seed) != 0)

	return
}

// Close releases the devices of the engine. The engine must not be used afterwards.
func (e *Engine[T]) Close() {
	if e.devices != nil {
		for _, allocs := range e.ksks {
			for _, a := range allocs {
				a.Free()
			}
		}
		clear(e.ksks)
		e.devices.Close()
	}
}

// Devices returns the devices of the [Device] backend, nil for the other backends.
func (e *Engine[T]) Devices() []*device.Device {
	if e.devices == nil {
		return nil
	}
	return e.devices.Devices
}

// kernel returns the kernel of the backend for the polynomial size N,
// instantiating it on the first call. Returns an error wrapping
// [ErrUnsupportedTransformSize] if the backend does not support N.
func (e *Engine[T]) kernel(N int) (k kernel[T], err error) {

	if k, ok := e.kernels[N]; ok {
		return k, nil
	}

	if k, err = newKernel[T](e.Config.Backend, N); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedTransformSize, err)
	}

	e.kernels[N] = k
	e.logger.Debug("kernel instantiated", "N", N, "domain", k.Domain().String(), "poly", humanize.IBytes(k.polyBytes()))

	return
}

func (e *Engine[T]) mustKernel(N int) kernel[T] {
	k, err := e.kernel(N)
	if err != nil {
		panic(err)
	}
	return k
}

// logGrowth logs the capacity of the scratch arena if it exceeds before, in bytes.
// It is meant to be deferred with the capacity at the start of a primitive.
func (e *Engine[T]) logGrowth(stack *scratch.Stack, before int) {
	if after := stack.Capacity().Bytes(); after > before {
		e.logger.Debug("scratch grew", "from", humanize.IBytes(uint64(before)), "to", humanize.IBytes(uint64(after)))
	}
}
