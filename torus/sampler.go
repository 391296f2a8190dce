package torus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/Pro7ech/tfhe/utils/sampling"
)

const (
	// NoiseBytesPerCoefficient is the number of bytes of randomness
	// consumed by the [GaussianSampler] per coefficient.
	NoiseBytesPerCoefficient = 16
)

// MaskBytesPerCoefficient returns the number of bytes of randomness
// consumed by the [UniformSampler] per coefficient.
func MaskBytesPerCoefficient[T Torus]() int {
	return Bits[T]() >> 3
}

// UniformSampler samples uniform elements of the torus.
type UniformSampler[T Torus] struct {
	*sampling.Source
	buf [512]byte
}

// NewUniformSampler returns a new [UniformSampler] reading from source.
func NewUniformSampler[T Torus](source *sampling.Source) *UniformSampler[T] {
	return &UniformSampler[T]{Source: source}
}

// Read fills p with uniform elements of the torus.
// It consumes exactly [MaskBytesPerCoefficient] bytes per element.
func (u *UniformSampler[T]) Read(p []T) {

	size := MaskBytesPerCoefficient[T]()
	chunk := len(u.buf) / size

	for start := 0; start < len(p); start += chunk {

		end := min(start+chunk, len(p))
		buf := u.buf[:(end-start)*size]

		if _, err := u.Source.Read(buf); err != nil {
			panic(err)
		}

		if size == 4 {
			for i := start; i < end; i++ {
				p[i] = T(binary.LittleEndian.Uint32(buf[(i-start)*4:]))
			}
		} else {
			for i := start; i < end; i++ {
				p[i] = T(binary.LittleEndian.Uint64(buf[(i-start)*8:]))
			}
		}
	}
}

// GaussianSampler samples centered Gaussian errors on the torus.
// Each sample is drawn with the Box-Muller transform from two 64-bit words,
// so that the consumption of randomness does not depend on the values.
type GaussianSampler[T Torus] struct {
	*sampling.Source
}

// NewGaussianSampler returns a new [GaussianSampler] reading from source.
func NewGaussianSampler[T Torus](source *sampling.Source) *GaussianSampler[T] {
	return &GaussianSampler[T]{Source: source}
}

// Normal returns a sample of the standard normal distribution.
// It consumes exactly [NoiseBytesPerCoefficient] bytes.
func (g *GaussianSampler[T]) Normal() float64 {
	// u1 in (0, 1], u2 in [0, 1)
	u1 := float64(g.Uint64()>>11+1) * 0x1p-53
	u2 := float64(g.Uint64()>>11) * 0x1p-53
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Sample returns a Gaussian error of standard deviation std,
// expressed as a fraction of the torus.
func (g *GaussianSampler[T]) Sample(std float64) T {
	return FromFloat[T](g.Normal() * std)
}

// Read fills p with Gaussian errors of standard deviation std.
func (g *GaussianSampler[T]) Read(p []T, std float64) {
	for i := range p {
		p[i] = g.Sample(std)
	}
}

// ReadAndAdd adds Gaussian errors of standard deviation std on p.
func (g *GaussianSampler[T]) ReadAndAdd(p []T, std float64) {
	for i := range p {
		p[i] += g.Sample(std)
	}
}

// KeyKind is the distribution of the coefficients of a secret key.
type KeyKind int

const (
	// Binary keys have coefficients uniform in {0, 1}.
	Binary = KeyKind(iota)
	// Ternary keys have coefficients uniform in {-1, 0, 1}.
	Ternary
	// Gaussian keys have rounded Gaussian integer coefficients.
	Gaussian
	// Custom keys are provided by the caller.
	Custom
)

func (k KeyKind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Ternary:
		return "ternary"
	case Gaussian:
		return "gaussian"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// ParseKeyKind returns the [KeyKind] of the given name.
func ParseKeyKind(name string) (KeyKind, error) {
	for _, k := range []KeyKind{Binary, Ternary, Gaussian, Custom} {
		if strings.EqualFold(name, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("invalid key kind: %q", name)
}

// MarshalJSON encodes the [KeyKind] as its name.
func (k KeyKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a [KeyKind] from its name.
func (k *KeyKind) UnmarshalJSON(b []byte) (err error) {
	var name string
	if err = json.Unmarshal(b, &name); err != nil {
		return
	}
	*k, err = ParseKeyKind(name)
	return
}

// KeyDistribution is the distribution of the coefficients of a secret key.
type KeyDistribution struct {
	Kind KeyKind `json:",omitempty"`
	// Std is the standard deviation of Gaussian keys, in integer units.
	Std float64 `json:",omitempty"`
}

// Validate checks that the distribution can be sampled.
func (d KeyDistribution) Validate() error {
	switch d.Kind {
	case Binary, Ternary:
		return nil
	case Gaussian:
		if d.Std <= 0 {
			return fmt.Errorf("invalid Gaussian key distribution: Std must be positive but is %f", d.Std)
		}
		return nil
	case Custom:
		return fmt.Errorf("invalid key distribution: custom keys cannot be sampled")
	default:
		return fmt.Errorf("invalid key distribution: unknown kind %v", d.Kind)
	}
}

// SampleKey fills p with coefficients sampled from the distribution d
// using the source. Panics if d cannot be sampled.
func SampleKey[T Torus](d KeyDistribution, source *sampling.Source, p []T) {

	if err := d.Validate(); err != nil {
		panic(err)
	}

	r := rand.New(source)

	switch d.Kind {
	case Binary:
		for i := range p {
			p[i] = T(r.Uint64() & 1)
		}
	case Ternary:
		for i := range p {
			p[i] = T(r.Uint64N(3)) - 1
		}
	case Gaussian:
		g := NewGaussianSampler[T](source)
		for i := range p {
			p[i] = FromSigned[T](int64(math.Round(g.Normal() * d.Std)))
		}
	}
}
