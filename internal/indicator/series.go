package indicator

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar is a single OHLCV observation. Close is always present; absent
// open/high/low/volume values are represented as NaN.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a time-ordered price series for one asset.
type Series struct {
	Bars []Bar
}

// NewSeries sorts the bars by time, validates close values, and fills
// absent open/high/low columns from close so range-based indicators can
// still run on degenerate inputs.
func NewSeries(bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("series requires at least one bar")
	}

	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	for i := range sorted {
		if math.IsNaN(sorted[i].Close) {
			return nil, fmt.Errorf("bar at %s has no close value", sorted[i].Time.Format(time.RFC3339))
		}
		if math.IsNaN(sorted[i].Open) {
			sorted[i].Open = sorted[i].Close
		}
		if math.IsNaN(sorted[i].High) {
			sorted[i].High = sorted[i].Close
		}
		if math.IsNaN(sorted[i].Low) {
			sorted[i].Low = sorted[i].Close
		}
	}

	return &Series{Bars: sorted}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Times returns the bar timestamps in order.
func (s *Series) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Time
	}
	return out
}

// Closes returns the close column.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s *Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s *Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column.
func (s *Series) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

// HasVolume reports whether at least one bar carries a positive volume.
func (s *Series) HasVolume() bool {
	for _, b := range s.Bars {
		if !math.IsNaN(b.Volume) && b.Volume > 0 {
			return true
		}
	}
	return false
}

// HasTrueRange reports whether the high/low columns carry genuine range
// information, i.e. at least one bar where high, low, and close differ.
// Close-only sources duplicate close into high/low, which defeats
// range-based indicators.
func (s *Series) HasTrueRange() bool {
	for _, b := range s.Bars {
		if b.High != b.Close || b.Low != b.Close {
			return true
		}
	}
	return false
}
