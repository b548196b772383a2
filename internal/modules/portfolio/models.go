package portfolio

import (
	"time"

	"github.com/delphienergy/sunshare/internal/domain"
)

// User is an investor account linked to a point of delivery.
type User struct {
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	PodID            string `json:"pod_id,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"` // YYYY-MM-DD
}

// Transaction is one buy or sell of project shares. The share price and the
// current value per share are recorded at transaction time; valuation uses
// the most recent current value.
type Transaction struct {
	ID                   int               `json:"id"`
	UserID               string            `json:"user_id"`
	ProjectID            string            `json:"project_id"`
	ProjectName          string            `json:"project_name"`
	EnergyType           domain.EnergyType `json:"energy_type"`
	Direction            string            `json:"direction"` // buy or sell
	Shares               int               `json:"shares"`
	PricePerShare        float64           `json:"price_per_share"`
	CurrentValuePerShare float64           `json:"current_value_per_share"`
	CapacityPerShare     float64           `json:"capacity_per_share"`
	CapacityUnit         string            `json:"capacity_unit"`
	ExecutedAt           string            `json:"executed_at"` // YYYY-MM-DD
	CreatedAt            time.Time         `json:"created_at"`
}

// TransactionEntry is the per-position transaction history in the report.
type TransactionEntry struct {
	Date          string  `json:"date"`
	Direction     string  `json:"direction"`
	Shares        int     `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
}

// InvestmentFigures is the financial block of one position.
type InvestmentFigures struct {
	AveragePurchasePrice float64 `json:"average_purchase_price"`
	TotalCostBasis       float64 `json:"total_cost_basis"`
	CurrentPricePerShare float64 `json:"current_price_per_share"`
	CurrentValue         float64 `json:"current_value"`
	GainLoss             float64 `json:"gain_loss"`
	GainLossPercentage   float64 `json:"gain_loss_percentage"`
	AnnualizedReturn     float64 `json:"annualized_return"`
}

// ProductionFigures is the production block of one position over the
// requested period.
type ProductionFigures struct {
	TotalKWh   float64 `json:"total_kwh"`
	DataPoints int     `json:"data_points"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
}

// InvestmentDetail is one held position in the report.
type InvestmentDetail struct {
	ProjectID          string             `json:"project_id"`
	ProjectName        string             `json:"project_name"`
	EnergyType         domain.EnergyType  `json:"energy_type"`
	Shares             int                `json:"shares"`
	Capacity           float64            `json:"capacity"`
	CapacityUnit       string             `json:"capacity_unit"`
	FirstPurchaseDate  string             `json:"first_purchase_date,omitempty"`
	DaysHeld           int                `json:"days_held"`
	TransactionHistory []TransactionEntry `json:"transaction_history"`
	Investment         InvestmentFigures  `json:"investment"`
	Production         *ProductionFigures `json:"production,omitempty"`
}

// TypeRollup aggregates the portfolio per energy type.
type TypeRollup struct {
	Shares        int     `json:"shares"`
	Investment    float64 `json:"investment"`
	Capacity      float64 `json:"capacity"`
	ProductionKWh float64 `json:"production_kwh"`
}

// PeriodInfo describes the reporting window.
type PeriodInfo struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

// ReportSummary is the top-level figures of a portfolio report.
type ReportSummary struct {
	TotalProjects           int      `json:"total_projects"`
	TotalShares             int      `json:"total_shares"`
	TotalInvestment         float64  `json:"total_investment"`
	CurrentValue            float64  `json:"current_value"`
	TotalGainLoss           float64  `json:"total_gain_loss"`
	TotalGainLossPercentage float64  `json:"total_gain_loss_percentage"`
	TotalProductionKWh      float64  `json:"total_production_kwh"`
	EstimatedAnnualSavings  float64  `json:"estimated_annual_savings"`
	PaybackYears            *float64 `json:"payback_years"`
}

// ConsumptionInfo is the optional household consumption block, present when
// the user's POD has a load curve on file.
type ConsumptionInfo struct {
	TotalKWh            float64 `json:"total_kwh"`
	AverageKW           float64 `json:"average_kw"`
	MaxKW               float64 `json:"max_kw"`
	DataPoints          int     `json:"data_points"`
	SelfConsumptionRate float64 `json:"self_consumption_rate"`
	AutarkyRate         float64 `json:"autarky_rate"`
}

// Report is the full portfolio report response.
type Report struct {
	UserID           string                `json:"user_id"`
	UserName         string                `json:"user_name"`
	PodID            string                `json:"pod_id,omitempty"`
	RegistrationDate string                `json:"registration_date,omitempty"`
	Period           PeriodInfo            `json:"period"`
	Summary          ReportSummary         `json:"summary"`
	ByEnergyType     map[string]TypeRollup `json:"by_energy_type"`
	Investments      []InvestmentDetail    `json:"investments"`
	Consumption      *ConsumptionInfo      `json:"consumption,omitempty"`
}
