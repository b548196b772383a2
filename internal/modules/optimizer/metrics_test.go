package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTotals(t *testing.T) {
	load := flatSeries(365, 2)
	p := solarProject("s1", 1000, 100, daylightSeries(365, 1))
	e := NewEstimator(0.30, 0.05, testAssumptions)

	committed := []Candidate{e.Evaluate(p, 2, load)}
	result := NewAggregator(0.30).Build(load, committed)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, "s1", rec.ProjectID)
	assert.Equal(t, 2, rec.RecommendedShares)
	assert.Equal(t, 2000.0, rec.InvestmentAmount)
	assert.Equal(t, "kW", rec.CapacityUnit)

	assert.Equal(t, 2000.0, result.TotalInvestment)
	assert.Equal(t, rec.AnnualBenefit, result.AnnualSavings)
	require.NotNil(t, result.PaybackPeriodYears)
	assert.Greater(t, *result.PaybackPeriodYears, 0.0)

	// Baseline: 2 kW all year at 0.30 EUR/kWh
	assert.InDelta(t, 2*8760*0.30, result.BaselineAnnualCost, 0.01)
	assert.InDelta(t, result.BaselineAnnualCost-result.AnnualSavings, result.NewAnnualCost, 0.01)
}

func TestBuildSummaryByType(t *testing.T) {
	load := flatSeries(365, 5)
	e := NewEstimator(0.30, 0.05, testAssumptions)

	committed := []Candidate{
		e.Evaluate(solarProject("s1", 500, 100, daylightSeries(365, 1)), 4, load),
		e.Evaluate(batteryProject("b1", 750, 100, 2.0), 2, load),
	}
	result := NewAggregator(0.30).Build(load, committed)

	assert.Equal(t, 6, result.Summary.TotalShares)
	assert.Equal(t, 2, result.Summary.ProjectsCount)

	solar := result.Summary.ByType["solar"]
	assert.Equal(t, 4, solar.Shares)
	assert.Equal(t, 2.0, solar.Capacity)
	assert.Equal(t, "kW", solar.Unit)

	battery := result.Summary.ByType["battery"]
	assert.Equal(t, 2, battery.Shares)
	assert.Equal(t, 4.0, battery.Capacity)
	assert.Equal(t, "kWh", battery.Unit)
}

func TestEnergyMetricsRatesInRange(t *testing.T) {
	load := flatSeries(365, 1)
	e := NewEstimator(0.30, 0.05, testAssumptions)

	// Deliberately oversized allocation: production far above consumption
	committed := []Candidate{
		e.Evaluate(solarProject("s1", 100, 1000, daylightSeries(365, 1)), 50, load),
	}
	result := NewAggregator(0.30).Build(load, committed)

	m := result.EnergyMetrics
	assert.GreaterOrEqual(t, m.SelfConsumptionRate, 0.0)
	assert.LessOrEqual(t, m.SelfConsumptionRate, 100.0)
	assert.GreaterOrEqual(t, m.AutarkyRate, 0.0)
	assert.LessOrEqual(t, m.AutarkyRate, 100.0)
	assert.Greater(t, m.GridExportKWh, 0.0)
	assert.InDelta(t, m.TotalConsumptionKWh-m.SelfConsumedKWh, m.GridImportKWh, 0.01)
}

func TestNewAnnualCostClampedAtZero(t *testing.T) {
	// Tiny load, huge benefit: savings exceed the baseline cost
	load := flatSeries(365, 0.1)
	e := NewEstimator(0.30, 0.05, testAssumptions)
	committed := []Candidate{
		e.Evaluate(batteryProject("b1", 100, 1000, 50), 100, load),
	}
	result := NewAggregator(0.30).Build(load, committed)

	assert.Equal(t, 0.0, result.NewAnnualCost)
	assert.Greater(t, result.AnnualSavings, result.BaselineAnnualCost)
}

func TestBuildEmptyCommitments(t *testing.T) {
	load := flatSeries(365, 2)
	result := NewAggregator(0.30).Build(load, nil)

	assert.Empty(t, result.Recommendations)
	assert.Zero(t, result.TotalInvestment)
	assert.Zero(t, result.AnnualSavings)
	assert.Nil(t, result.PaybackPeriodYears)
	assert.Zero(t, result.EnergyMetrics.TotalProductionKWh)
	assert.Zero(t, result.EnergyMetrics.SelfConsumptionRate)
	assert.InDelta(t, result.EnergyMetrics.TotalConsumptionKWh, result.EnergyMetrics.GridImportKWh, 0.01)
}
