package loadcurve

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
	"github.com/delphienergy/sunshare/pkg/formulas"
)

// rollingWindowDays is the SMA window used for the consumption trend.
const rollingWindowDays = 7

// Service answers load curve queries: raw paginated access, daily and
// monthly aggregation, and profile statistics.
type Service struct {
	store *Store
	log   zerolog.Logger
}

// NewService creates a new load curve service
func NewService(store *Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "loadcurve").Logger(),
	}
}

// RawQuery are the filters accepted by the raw curve endpoint. Date and
// From/To are mutually exclusive; all three are optional.
type RawQuery struct {
	Page     int
	PageSize int
	Date     string // YYYY-MM-DD, single day
	FromDate string // YYYY-MM-DD
	ToDate   string // YYYY-MM-DD
}

// Raw returns one page of the POD's load curve, optionally date-filtered.
func (s *Service) Raw(pod string, q RawQuery) (*Page, error) {
	if q.Page < 1 {
		return nil, fmt.Errorf("page must be >= 1: %w", domain.ErrInvalidInput)
	}
	if q.PageSize < 1 || q.PageSize > 1000 {
		return nil, fmt.Errorf("page size must be between 1 and 1000: %w", domain.ErrInvalidInput)
	}
	if q.Date != "" && (q.FromDate != "" || q.ToDate != "") {
		return nil, fmt.Errorf("cannot use 'date' with 'from_date' or 'to_date': %w", domain.ErrInvalidInput)
	}

	filterStart, filterEnd, err := parseDateFilters(q)
	if err != nil {
		return nil, err
	}

	series, err := s.store.LoadProfile(pod)
	if err != nil {
		return nil, err
	}

	var filtered []Point
	for _, p := range series {
		if filterStart != nil && p.Timestamp.Before(*filterStart) {
			continue
		}
		if filterEnd != nil && p.Timestamp.After(*filterEnd) {
			continue
		}
		filtered = append(filtered, Point{
			Timestamp: p.Timestamp.Format("2006-01-02T15:04:05"),
			Value:     p.Value,
		})
	}

	total := len(filtered)
	totalPages := 1
	if total > 0 {
		totalPages = (total + q.PageSize - 1) / q.PageSize
	}

	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	return &Page{
		Data: filtered[start:end],
		Pagination: Pagination{
			Page:         q.Page,
			PageSize:     q.PageSize,
			TotalRecords: total,
			TotalPages:   totalPages,
			HasNext:      q.Page < totalPages,
			HasPrevious:  q.Page > 1,
		},
	}, nil
}

// Monthly returns the POD's consumption aggregated into monthly kWh totals.
func (s *Service) Monthly(pod string, year int) ([]timeseries.AggregatePoint, error) {
	series, err := s.store.LoadProfile(pod)
	if err != nil {
		return nil, err
	}
	return timeseries.AggregateByMonth(series, year), nil
}

// Daily returns the POD's consumption aggregated into daily kWh totals.
func (s *Service) Daily(pod string, year, month int) ([]timeseries.AggregatePoint, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12: %w", domain.ErrInvalidInput)
	}
	series, err := s.store.LoadProfile(pod)
	if err != nil {
		return nil, err
	}
	return timeseries.AggregateByDay(series, year, month), nil
}

// Stats returns summary statistics for the POD's profile, including a
// 7-day moving average over daily consumption totals.
func (s *Service) Stats(pod string) (*Stats, error) {
	series, err := s.store.LoadProfile(pod)
	if err != nil {
		return nil, err
	}

	values := series.Values()
	daily := timeseries.AggregateByDay(series, 0, 0)

	dailyTotals := make([]float64, len(daily))
	for i, d := range daily {
		dailyTotals[i] = d.Value
	}

	var rolling []float64
	if len(dailyTotals) >= rollingWindowDays {
		sma := talib.Sma(dailyTotals, rollingWindowDays)
		// talib pads the warm-up period with zeros; drop it
		rolling = make([]float64, 0, len(sma)-rollingWindowDays+1)
		for _, v := range sma[rollingWindowDays-1:] {
			rolling = append(rolling, formulas.Round(v, 2))
		}
	}

	return &Stats{
		Pod:               pod,
		Samples:           len(series),
		TotalKWh:          formulas.Round(series.EnergyKWh(), 2),
		AverageKW:         formulas.Round(formulas.Mean(values), 4),
		MaxKW:             formulas.Round(formulas.Max(values), 4),
		StdDevKW:          formulas.Round(formulas.StdDev(values), 4),
		DailyAverageKWh:   formulas.Round(formulas.Mean(dailyTotals), 2),
		RollingWeeklyKWh:  rolling,
		RollingWindowDays: rollingWindowDays,
	}, nil
}

func parseDateFilters(q RawQuery) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if q.Date != "" {
		day, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", domain.ErrInvalidInput)
		}
		dayEnd := day.Add(24*time.Hour - time.Second)
		return &day, &dayEnd, nil
	}

	if q.FromDate != "" {
		from, err := time.Parse("2006-01-02", q.FromDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from_date format, use YYYY-MM-DD: %w", domain.ErrInvalidInput)
		}
		start = &from
	}
	if q.ToDate != "" {
		to, err := time.Parse("2006-01-02", q.ToDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to_date format, use YYYY-MM-DD: %w", domain.ErrInvalidInput)
		}
		toEnd := to.Add(24*time.Hour - time.Second)
		end = &toEnd
	}

	return start, end, nil
}
