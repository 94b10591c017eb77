package stats

import (
	"fmt"

	gometrics "github.com/rcrowley/go-metrics"
)

// reservoir size of the per session rate histogram
const summaryReservoirSize = 1028

// RateSummary collects the sampled rates of one session
type RateSummary struct {
	h gometrics.Histogram
}

// Summary is a snapshot of a RateSummary (all rates in bytes per second)
type Summary struct {
	Count  int64
	Min    int64
	Max    int64
	Mean   float64
	Median float64
}

// NewRateSummary returns an empty summary
func NewRateSummary() *RateSummary {
	return &RateSummary{h: gometrics.NewHistogram(gometrics.NewUniformSample(summaryReservoirSize))}
}

// Update adds one rate sample in bytes per second
func (s *RateSummary) Update(bytesPerSecond float64) {
	s.h.Update(int64(bytesPerSecond))
}

// Snapshot returns the current statistics
func (s *RateSummary) Snapshot() Summary {
	snap := s.h.Snapshot()
	return Summary{
		Count:  snap.Count(),
		Min:    snap.Min(),
		Max:    snap.Max(),
		Mean:   snap.Mean(),
		Median: snap.Percentile(0.5),
	}
}

// Format renders the summary with the given rate formatter
func (s Summary) Format(format func(float64) string) string {
	if s.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("samples=%d min=%s/s mean=%s/s median=%s/s max=%s/s",
		s.Count, format(float64(s.Min)), format(s.Mean), format(s.Median), format(float64(s.Max)))
}
