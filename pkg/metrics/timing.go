package metrics

import (
	"time"

	"github.com/montanaflynn/stats"

	"github.com/renderlab/renderbench/pkg/errors"
)

// Timing summarizes the wall-clock samples of repeated renderer runs.
// All values are in seconds.
type Timing struct {
	Samples []float64 `json:"samples"`
	Mean    float64   `json:"mean"`
	Stddev  float64   `json:"stddev"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
}

// Summarize computes timing statistics from a set of run durations.
// At least one sample is required. The standard deviation is the population
// standard deviation; with a single sample it is zero.
func Summarize(samples []time.Duration) (Timing, error) {
	if len(samples) == 0 {
		return Timing{}, errors.New(errors.ErrCodeInternal, "no timing samples")
	}

	secs := make([]float64, len(samples))
	for i, d := range samples {
		secs[i] = d.Seconds()
	}

	mean, err := stats.Mean(secs)
	if err != nil {
		return Timing{}, err
	}
	stddev, err := stats.StandardDeviation(secs)
	if err != nil {
		return Timing{}, err
	}
	min, err := stats.Min(secs)
	if err != nil {
		return Timing{}, err
	}
	max, err := stats.Max(secs)
	if err != nil {
		return Timing{}, err
	}

	return Timing{
		Samples: secs,
		Mean:    mean,
		Stddev:  stddev,
		Min:     min,
		Max:     max,
	}, nil
}
