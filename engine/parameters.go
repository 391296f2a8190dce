package engine

import (
	"fmt"
	"math"

	"github.com/google/go-cmp/cmp"

	"github.com/Pro7ech/tfhe/decomposition"
	"github.com/Pro7ech/tfhe/torus"
	"github.com/Pro7ech/tfhe/utils"
)

// Parameters is a literal struct of scheme parameters: the dimensions of the
// keys, the decompositions of the keys and the noise of the encryptions.
type Parameters struct {
	LWEDimension   int `json:"lwe_dimension"`
	GLWEDimension  int `json:"glwe_dimension"`
	PolynomialSize int `json:"polynomial_size"`

	Bootstrap decomposition.Parameters `json:"bootstrap"`
	Keyswitch decomposition.Parameters `json:"keyswitch"`
	Packing   decomposition.Parameters `json:"packing"`
	Circuit   decomposition.Parameters `json:"circuit,omitempty"`

	// LogLWEStd is the log2 of the standard deviation of the LWE encryptions
	// and of the keyswitch keys.
	LogLWEStd float64 `json:"log_lwe_std"`
	// LogGLWEStd is the log2 of the standard deviation of the GLWE and GGSW
	// encryptions, of the bootstrap keys and of the packing keyswitch keys.
	LogGLWEStd float64 `json:"log_glwe_std"`

	Key torus.KeyDistribution `json:"key"`
}

// LWEStd returns the standard deviation of the LWE encryptions.
func (p Parameters) LWEStd() float64 {
	return math.Exp2(p.LogLWEStd)
}

// GLWEStd returns the standard deviation of the GLWE encryptions.
func (p Parameters) GLWEStd() float64 {
	return math.Exp2(p.LogGLWEStd)
}

// Validate checks that the parameters can be used on the torus of width W.
func (p Parameters) Validate(W int) error {

	if p.LWEDimension < 1 || p.GLWEDimension < 1 {
		return fmt.Errorf("%w: LWEDimension=%d and GLWEDimension=%d must be positive", ErrInvalidConfig, p.LWEDimension, p.GLWEDimension)
	}

	if p.PolynomialSize < 2 || !utils.IsPowerOfTwo(p.PolynomialSize) {
		return fmt.Errorf("%w: PolynomialSize=%d must be a power of two", ErrInvalidConfig, p.PolynomialSize)
	}

	for _, dd := range []decomposition.Parameters{p.Bootstrap, p.Keyswitch, p.Packing} {
		if err := dd.Validate(W); err != nil {
			return fmt.Errorf("%w: %w", ErrScaleFactorOverflow, err)
		}
	}

	if p.Circuit != (decomposition.Parameters{}) {
		if err := p.Circuit.Validate(W); err != nil {
			return fmt.Errorf("%w: %w", ErrScaleFactorOverflow, err)
		}
	}

	if p.LogLWEStd >= 0 || p.LogGLWEStd >= 0 {
		return fmt.Errorf("%w: LogLWEStd=%f and LogGLWEStd=%f must be negative", ErrInvalidConfig, p.LogLWEStd, p.LogGLWEStd)
	}

	if err := p.Key.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Equal performs a deep equal.
func (p Parameters) Equal(other Parameters) bool {
	type parameters Parameters // without methods, cmp.Equal does not call back Equal
	return cmp.Equal(parameters(p), parameters(other))
}

// TestParameters returns insecure parameters for fast tests on the torus of width
// W = 32 or 64, with a binary key, N = 512 and a circuit bootstrap decomposition.
// The 32-bit set is too noisy for the circuit bootstrap.
func TestParameters[T torus.Torus]() Parameters {
	if torus.Bits[T]() == 32 {
		return Parameters{
			LWEDimension:   64,
			GLWEDimension:  1,
			PolynomialSize: 512,
			Bootstrap:      decomposition.Parameters{BaseLog: 7, Level: 3},
			Keyswitch:      decomposition.Parameters{BaseLog: 3, Level: 5},
			Packing:        decomposition.Parameters{BaseLog: 7, Level: 3},
			Circuit:        decomposition.Parameters{BaseLog: 4, Level: 2},
			LogLWEStd:      -20,
			LogGLWEStd:     -28,
			Key:            torus.KeyDistribution{Kind: torus.Binary},
		}
	}
	return Parameters{
		LWEDimension:   64,
		GLWEDimension:  1,
		PolynomialSize: 512,
		Bootstrap:      decomposition.Parameters{BaseLog: 15, Level: 2},
		Keyswitch:      decomposition.Parameters{BaseLog: 4, Level: 5},
		Packing:        decomposition.Parameters{BaseLog: 15, Level: 2},
		Circuit:        decomposition.Parameters{BaseLog: 4, Level: 3},
		LogLWEStd:      -40,
		LogGLWEStd:     -50,
		Key:            torus.KeyDistribution{Kind: torus.Binary},
	}
}

// ScenarioParameters returns the parameters of the bootstrap scenario with polynomial size N:
// n = 630, K = 1, a bootstrap decomposition of 3 levels of 7 bits and a noise of 2^-29.
func ScenarioParameters(N int) Parameters {
	return Parameters{
		LWEDimension:   630,
		GLWEDimension:  1,
		PolynomialSize: N,
		Bootstrap:      decomposition.Parameters{BaseLog: 7, Level: 3},
		Keyswitch:      decomposition.Parameters{BaseLog: 3, Level: 5},
		Packing:        decomposition.Parameters{BaseLog: 7, Level: 3},
		LogLWEStd:      -29,
		LogGLWEStd:     -29,
		Key:            torus.KeyDistribution{Kind: torus.Binary},
	}
}
