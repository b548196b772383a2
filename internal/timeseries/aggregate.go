package timeseries

import (
	"math"
	"sort"
	"time"
)

// AggregatePoint is one bucket of an aggregated series. Value is total energy
// in kWh for the bucket, rounded to 2 decimals.
type AggregatePoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// AggregateByMonth buckets a series into calendar months. A zero year means
// no filter. Bucket timestamps are the first day of the month.
func AggregateByMonth(s Series, year int) []AggregatePoint {
	type key struct{ year, month int }
	sums := make(map[key]float64)

	for _, p := range s {
		if year != 0 && p.Timestamp.Year() != year {
			continue
		}
		k := key{p.Timestamp.Year(), int(p.Timestamp.Month())}
		sums[k] += p.Value
	}

	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	out := make([]AggregatePoint, 0, len(keys))
	for _, k := range keys {
		ts := time.Date(k.year, time.Month(k.month), 1, 0, 0, 0, 0, time.UTC)
		out = append(out, AggregatePoint{
			Timestamp: ts.Format("2006-01-02T15:04:05"),
			Value:     round2(sums[k] * IntervalHours),
		})
	}
	return out
}

// AggregateByDay buckets a series into calendar days. Zero year/month means
// no filter. Bucket timestamps are the start of the day.
func AggregateByDay(s Series, year, month int) []AggregatePoint {
	type key struct{ year, month, day int }
	sums := make(map[key]float64)

	for _, p := range s {
		if year != 0 && p.Timestamp.Year() != year {
			continue
		}
		if month != 0 && int(p.Timestamp.Month()) != month {
			continue
		}
		k := key{p.Timestamp.Year(), int(p.Timestamp.Month()), p.Timestamp.Day()}
		sums[k] += p.Value
	}

	keys := make([]key, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].day < keys[j].day
	})

	out := make([]AggregatePoint, 0, len(keys))
	for _, k := range keys {
		ts := time.Date(k.year, time.Month(k.month), k.day, 0, 0, 0, 0, time.UTC)
		out = append(out, AggregatePoint{
			Timestamp: ts.Format("2006-01-02T15:04:05"),
			Value:     round2(sums[k] * IntervalHours),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
