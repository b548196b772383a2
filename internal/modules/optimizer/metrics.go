package optimizer

import (
	"github.com/delphienergy/sunshare/internal/timeseries"
	"github.com/delphienergy/sunshare/pkg/formulas"
)

// Aggregator turns a committed allocation list into the final result:
// financial totals against the original (unmodified) load curve plus the
// energy balance block.
type Aggregator struct {
	electricityPrice float64
}

// NewAggregator creates an aggregator for one optimization run's price.
func NewAggregator(electricityPrice float64) *Aggregator {
	return &Aggregator{electricityPrice: electricityPrice}
}

// Build assembles the optimization result. Self-consumption attribution is
// non-overlapping: commitment order decides which project's production fills
// each slice of the load, mirroring the allocator's own accounting.
func (g *Aggregator) Build(original timeseries.Series, committed []Candidate) *Result {
	recommendations := make([]Recommendation, 0, len(committed))
	totalInvestment := 0.0
	annualSavings := 0.0

	byType := make(map[string]TypeSummary)
	totalShares := 0
	totalCapacity := 0.0

	for _, c := range committed {
		capacity := float64(c.Shares) * c.Project.CapacityPerShare

		recommendations = append(recommendations, Recommendation{
			ProjectID:         c.Project.ID,
			ProjectName:       c.Project.Name,
			EnergyType:        c.Project.Energy,
			RecommendedShares: c.Shares,
			InvestmentAmount:  formulas.Round(c.Investment, 2),
			AnnualBenefit:     formulas.Round(c.AnnualBenefit, 2),
			PaybackYears:      formulas.Round(c.PaybackYears, 2),
			CapacityKW:        formulas.Round(capacity, 2),
			CapacityUnit:      c.Project.CapacityUnit(),
		})

		totalInvestment += c.Investment
		annualSavings += c.AnnualBenefit
		totalShares += c.Shares
		totalCapacity += capacity

		t := byType[string(c.Project.Energy)]
		t.Shares += c.Shares
		t.Capacity = formulas.Round(t.Capacity+capacity, 2)
		t.Unit = c.Project.CapacityUnit()
		byType[string(c.Project.Energy)] = t
	}

	baselineCost := original.EnergyKWh() * g.electricityPrice

	// Reported new cost is clamped at zero; savings beyond the baseline
	// stay visible through annual_savings.
	newCost := baselineCost - annualSavings
	if newCost < 0 {
		newCost = 0
	}

	return &Result{
		Recommendations:    recommendations,
		TotalInvestment:    formulas.Round(totalInvestment, 2),
		AnnualSavings:      formulas.Round(annualSavings, 2),
		PaybackPeriodYears: formulas.PaybackPtr(formulas.PaybackYears(totalInvestment, annualSavings)),
		BaselineAnnualCost: formulas.Round(baselineCost, 2),
		NewAnnualCost:      formulas.Round(newCost, 2),
		EnergyMetrics:      g.energyMetrics(original, committed),
		Summary: Summary{
			TotalShares:     totalShares,
			TotalCapacityKW: formulas.Round(totalCapacity, 2),
			ProjectsCount:   len(recommendations),
			ByType:          byType,
		},
	}
}

// energyMetrics walks the original load once per committed generation
// project, attributing self-consumption in commitment order so no sample is
// counted twice.
func (g *Aggregator) energyMetrics(original timeseries.Series, committed []Candidate) EnergyMetrics {
	remaining := original.Clone()

	totalProductionKW := 0.0
	selfConsumedKW := 0.0

	for _, c := range committed {
		if c.Project.IsBattery() {
			continue
		}
		scale := float64(c.Shares)

		n := len(remaining)
		if len(c.Project.Production) < n {
			n = len(c.Project.Production)
		}
		for i := 0; i < n; i++ {
			prod := c.Project.Production[i].Value * scale
			if prod <= 0 {
				continue
			}
			totalProductionKW += prod

			self := prod
			if remaining[i].Value < self {
				self = remaining[i].Value
			}
			if self < 0 {
				self = 0
			}
			selfConsumedKW += self
			remaining[i].Value -= self
		}
		// Production beyond the load curve's length still counts as produced
		for i := n; i < len(c.Project.Production); i++ {
			if v := c.Project.Production[i].Value * scale; v > 0 {
				totalProductionKW += v
			}
		}
	}

	consumptionKWh := original.EnergyKWh()
	productionKWh := totalProductionKW * timeseries.IntervalHours
	selfConsumedKWh := selfConsumedKW * timeseries.IntervalHours

	return EnergyMetrics{
		TotalConsumptionKWh: formulas.Round(consumptionKWh, 2),
		TotalProductionKWh:  formulas.Round(productionKWh, 2),
		SelfConsumedKWh:     formulas.Round(selfConsumedKWh, 2),
		GridImportKWh:       formulas.Round(formulas.GridImport(consumptionKWh, selfConsumedKWh), 2),
		GridExportKWh:       formulas.Round(formulas.GridExport(productionKWh, selfConsumedKWh), 2),
		SelfConsumptionRate: formulas.Round(formulas.SelfConsumptionRate(selfConsumedKWh, productionKWh), 2),
		AutarkyRate:         formulas.Round(formulas.AutarkyRate(selfConsumedKWh, consumptionKWh), 2),
	}
}
