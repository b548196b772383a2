package projects

import (
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

// Project is one catalog entry: a share-priced renewable installation.
// Generation projects (solar, wind) carry a per-share production curve;
// battery projects have none, their benefit is estimated from capacity.
type Project struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Energy           domain.EnergyType `json:"energy"`
	PricePerShare    float64           `json:"price_per_share"`    // EUR
	CapacityPerShare float64           `json:"capacity_per_share"` // kW (generation) or kWh (battery)
	TotalShares      int               `json:"total_shares"`
	AvailableShares  int               `json:"available_shares"`

	// Production is the per-share production curve. Nil for batteries.
	Production timeseries.Series `json:"-"`
}

// CapacityUnit returns "kW" for generation projects and "kWh" for batteries.
func (p Project) CapacityUnit() string {
	return p.Energy.CapacityUnit()
}

// IsBattery reports whether the project is a storage project.
func (p Project) IsBattery() bool {
	return p.Energy.IsBattery()
}

// catalogEntry mirrors the on-disk list.json schema.
type catalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Energy   string `json:"energy"`
	Capacity *struct {
		Value float64 `json:"value"`
	} `json:"capacity"`
	CapacityPerShare *struct {
		Value float64 `json:"value"`
	} `json:"capacity_per_share"`
	Shares struct {
		Price     float64 `json:"price"`
		Total     int     `json:"total"`
		Available int     `json:"available"`
	} `json:"shares"`
}

// productionEntry mirrors one point of a production/<id>.json file.
type productionEntry struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}
