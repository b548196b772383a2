package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// IntervalHours is the duration of one sample expressed in hours. All curves
// in the system are fixed 15-minute series; values are mean power in kW, so
// energy per sample = value * IntervalHours.
const IntervalHours = 0.25

// Interval is the nominal sample spacing.
const Interval = 15 * time.Minute

// Sample is a single point of a load or production curve.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"` // mean power in kW over the interval
}

// Series is an ordered, fixed-interval power curve.
type Series []Sample

// ParseTimestamp parses the two timestamp formats that appear in the data
// files: ISO 8601 ("2023-06-01T12:15:00", optionally with a Z suffix) and
// the space-separated "2023-06-01 12:15:00" form.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	if strings.Contains(s, "T") {
		return time.Parse("2006-01-02T15:04:05", s)
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// Sum returns the sum of sample values (kW).
func (s Series) Sum() float64 {
	total := 0.0
	for _, p := range s {
		total += p.Value
	}
	return total
}

// EnergyKWh returns the total energy of the series.
func (s Series) EnergyKWh() float64 {
	return s.Sum() * IntervalHours
}

// Values returns the raw value column. The slice is freshly allocated.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Clone returns a deep copy. The optimizer mutates its remaining-load curve,
// so it must always work on a clone of the household profile.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Scale returns a new series with every value multiplied by factor.
func (s Series) Scale(factor float64) Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = Sample{Timestamp: p.Timestamp, Value: p.Value * factor}
	}
	return out
}

// Window returns the samples with from <= timestamp <= to.
func (s Series) Window(from, to time.Time) Series {
	var out Series
	for _, p := range s {
		if p.Timestamp.Before(from) || p.Timestamp.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Max returns the largest sample value, or 0 for an empty series.
func (s Series) Max() float64 {
	max := 0.0
	for i, p := range s {
		if i == 0 || p.Value > max {
			max = p.Value
		}
	}
	return max
}

// Align truncates both series to their common length. Curves from different
// files occasionally disagree by a few samples (partial years, DST edges);
// the comparison policy is truncate-to-overlap rather than error.
// It returns the aligned series and the number of samples dropped.
func Align(a, b Series) (Series, Series, int) {
	if len(a) == len(b) {
		return a, b, 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dropped := len(a) + len(b) - 2*n
	return a[:n], b[:n], dropped
}

// String implements fmt.Stringer for log output.
func (s Series) String() string {
	return fmt.Sprintf("Series<%d samples, %.1f kWh>", len(s), s.EnergyKWh())
}
