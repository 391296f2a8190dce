package npe

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/Pro7ech/tfhe/torus"
)

// Statistics are the empirical statistics of a sample of errors over the real torus.
type Statistics struct {
	Count  int
	Mean   float64
	Median float64
	Std    float64
	Max    float64
}

// Dispersion returns the empirical [Dispersion] of the sample.
func (s Statistics) Dispersion() Dispersion {
	return FromStandardDev(s.Std)
}

func (s Statistics) String() string {
	return fmt.Sprintf("Statistics{Count=%d, Mean=%e, Median=%e, Std=%e, Max=%e}", s.Count, s.Mean, s.Median, s.Std, s.Max)
}

// Errors returns the centered errors have[i] - want[i] over the real torus.
func Errors[T torus.Torus](have, want []T) (errs []float64) {

	if len(have) != len(want) {
		panic(fmt.Errorf("invalid inputs: len(have)=%d != len(want)=%d", len(have), len(want)))
	}

	errs = make([]float64, len(have))
	for i := range have {
		errs[i] = torus.ToFloat(have[i] - want[i])
	}
	return
}

// Measure returns the [Statistics] of the errors errs.
func Measure(errs []float64) (s Statistics, err error) {

	data := stats.Float64Data(errs)

	s.Count = data.Len()

	if s.Mean, err = data.Mean(); err != nil {
		return s, fmt.Errorf("stats.Mean: %w", err)
	}

	if s.Median, err = data.Median(); err != nil {
		return s, fmt.Errorf("stats.Median: %w", err)
	}

	if s.Std, err = data.StandardDeviation(); err != nil {
		return s, fmt.Errorf("stats.StandardDeviation: %w", err)
	}

	var lo, hi float64
	if lo, err = data.Min(); err != nil {
		return s, fmt.Errorf("stats.Min: %w", err)
	}
	if hi, err = data.Max(); err != nil {
		return s, fmt.Errorf("stats.Max: %w", err)
	}
	s.Max = max(-lo, hi)

	return
}
