package optimizer

import (
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/modules/projects"
)

// Request are the parameters of one optimization run. Budget nil means
// unlimited.
type Request struct {
	PodID               string
	ElectricityPrice    float64 // EUR/kWh
	FeedInTariff        float64 // EUR/kWh
	Budget              *float64
	MaxSharesPerProject int
}

// Candidate is one evaluated (project, share count) pair. Ephemeral: the
// allocator produces candidates each iteration and commits at most one.
type Candidate struct {
	Project       projects.Project
	Shares        int
	Investment    float64
	AnnualBenefit float64
	PaybackYears  float64 // +Inf when the benefit is not positive
}

// Recommendation is one committed allocation in the API response.
type Recommendation struct {
	ProjectID         string            `json:"project_id"`
	ProjectName       string            `json:"project_name"`
	EnergyType        domain.EnergyType `json:"energy_type"`
	RecommendedShares int               `json:"recommended_shares"`
	InvestmentAmount  float64           `json:"investment_amount"`
	AnnualBenefit     float64           `json:"annual_benefit"`
	PaybackYears      float64           `json:"payback_years"`
	CapacityKW        float64           `json:"capacity_kw"`
	CapacityUnit      string            `json:"capacity_unit"`
}

// EnergyMetrics summarises the energy balance of the recommended mix
// against the household's original load curve.
type EnergyMetrics struct {
	TotalConsumptionKWh float64 `json:"total_consumption_kwh"`
	TotalProductionKWh  float64 `json:"total_production_kwh"`
	SelfConsumedKWh     float64 `json:"self_consumed_kwh"`
	GridImportKWh       float64 `json:"grid_import_kwh"`
	GridExportKWh       float64 `json:"grid_export_kwh"`
	SelfConsumptionRate float64 `json:"self_consumption_rate"`
	AutarkyRate         float64 `json:"autarky_rate"`
}

// TypeSummary aggregates the recommendation list per energy type.
type TypeSummary struct {
	Shares   int     `json:"shares"`
	Capacity float64 `json:"capacity"`
	Unit     string  `json:"unit"`
}

// Summary is the roll-up block of the response.
type Summary struct {
	TotalShares     int                    `json:"total_shares"`
	TotalCapacityKW float64                `json:"total_capacity_kw"`
	ProjectsCount   int                    `json:"projects_count"`
	ByType          map[string]TypeSummary `json:"by_type"`
}

// Result is the complete optimization response. PaybackPeriodYears is nil
// when the aggregate savings are not positive.
type Result struct {
	Recommendations    []Recommendation `json:"recommendations"`
	TotalInvestment    float64          `json:"total_investment"`
	AnnualSavings      float64          `json:"annual_savings"`
	PaybackPeriodYears *float64         `json:"payback_period_years"`
	BaselineAnnualCost float64          `json:"baseline_annual_cost"`
	NewAnnualCost      float64          `json:"new_annual_cost"`
	EnergyMetrics      EnergyMetrics    `json:"energy_metrics"`
	Summary            Summary          `json:"summary"`
}
