package loadcurve

// Point is one raw load curve sample as served by the API. The value is
// kept as parsed from the metering export.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Pagination describes the slice of a paginated raw curve response.
type Pagination struct {
	Page         int  `json:"page"`
	PageSize     int  `json:"page_size"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

// Page is a paginated raw curve response.
type Page struct {
	Data       []Point    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Stats summarises a POD's consumption profile.
type Stats struct {
	Pod               string    `json:"pod"`
	Samples           int       `json:"data_points"`
	TotalKWh          float64   `json:"total_kwh"`
	AverageKW         float64   `json:"average_kw"`
	MaxKW             float64   `json:"max_kw"`
	StdDevKW          float64   `json:"stddev_kw"`
	DailyAverageKWh   float64   `json:"daily_average_kwh"`
	RollingWeeklyKWh  []float64 `json:"rolling_weekly_kwh"` // 7-day SMA of daily totals
	RollingWindowDays int       `json:"rolling_window_days"`
}
