// Package statistics summarises numeric samples from simulation runs.
package statistics

import (
	"fmt"
	"math"
	"slices"
)

// Sample accumulates observations of one quantity, such as hands per game.
type Sample struct {
	Count  int       `json:"count"`
	Sum    float64   `json:"sum"`
	SumSq  float64   `json:"-"` // sum of squares for variance
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Values []float64 `json:"-"`
}

// Add records one observation.
func (s *Sample) Add(v float64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)
}

// Mean returns the arithmetic mean
func (s *Sample) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Variance returns the sample variance
func (s *Sample) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	mean := s.Mean()
	return max(0, (s.SumSq-float64(s.Count)*mean*mean)/float64(s.Count-1))
}

// StdDev returns the sample standard deviation
func (s *Sample) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Sample) StdError() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Count))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Sample) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the middle observation
func (s *Sample) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the linearly interpolated value at p (0.0 to 1.0)
func (s *Sample) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Merge folds other into s.
func (s *Sample) Merge(other Sample) {
	for _, v := range other.Values {
		s.Add(v)
	}
}

// Validate checks the running totals agree with the stored observations.
func (s *Sample) Validate() error {
	if s.Count != len(s.Values) {
		return fmt.Errorf("count %d does not match %d stored values", s.Count, len(s.Values))
	}
	var sum float64
	for _, v := range s.Values {
		sum += v
	}
	if math.Abs(sum-s.Sum) > 1e-6*max(1, math.Abs(sum)) {
		return fmt.Errorf("running sum %.6f does not match %.6f", s.Sum, sum)
	}
	return nil
}

// String renders the usual one-line summary.
func (s *Sample) String() string {
	low, high := s.ConfidenceInterval95()
	return fmt.Sprintf("mean %.2f (95%% CI %.2f-%.2f), median %.1f, p95 %.1f, range %.0f-%.0f",
		s.Mean(), low, high, s.Median(), s.Percentile(0.95), s.Min, s.Max)
}
