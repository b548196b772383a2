package optimizer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/domain"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
)

var testAssumptions = config.Assumptions{
	BatteryDailyCycles:         1,
	BatteryRoundTripEfficiency: 0.8,
	BatteryUtilizationFactor:   0.5,
	SelfConsumptionShare:       0.5,
}

// flatSeries builds a full year of 15-minute samples at a constant kW value.
func flatSeries(days int, kw float64) timeseries.Series {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	n := days * 96
	s := make(timeseries.Series, n)
	for i := 0; i < n; i++ {
		s[i] = timeseries.Sample{Timestamp: start.Add(time.Duration(i) * 15 * time.Minute), Value: kw}
	}
	return s
}

// daylightSeries produces kw between 09:00 and 17:00, zero otherwise.
func daylightSeries(days int, kw float64) timeseries.Series {
	s := flatSeries(days, 0)
	for i := range s {
		h := s[i].Timestamp.Hour()
		if h >= 9 && h < 17 {
			s[i].Value = kw
		}
	}
	return s
}

func solarProject(id string, price float64, available int, production timeseries.Series) projects.Project {
	return projects.Project{
		ID:               id,
		Name:             id,
		Energy:           domain.EnergySolar,
		PricePerShare:    price,
		CapacityPerShare: 0.5,
		TotalShares:      available,
		AvailableShares:  available,
		Production:       production,
	}
}

func batteryProject(id string, price float64, available int, capacityKWh float64) projects.Project {
	return projects.Project{
		ID:               id,
		Name:             id,
		Energy:           domain.EnergyBattery,
		PricePerShare:    price,
		CapacityPerShare: capacityKWh,
		TotalShares:      available,
		AvailableShares:  available,
	}
}

func TestEvaluateZeroShares(t *testing.T) {
	e := NewEstimator(0.30, 0.05, testAssumptions)
	c := e.Evaluate(solarProject("s1", 500, 100, daylightSeries(365, 1)), 0, flatSeries(365, 1))

	assert.Zero(t, c.Investment)
	assert.Zero(t, c.AnnualBenefit)
	assert.True(t, math.IsInf(c.PaybackYears, 1))
}

func TestGenerationBenefitMonotonicInShares(t *testing.T) {
	e := NewEstimator(0.30, 0.05, testAssumptions)
	p := solarProject("s1", 500, 100, daylightSeries(365, 1))
	load := flatSeries(365, 2)

	prev := 0.0
	for n := 1; n <= 20; n++ {
		c := e.Evaluate(p, n, load)
		assert.GreaterOrEqual(t, c.AnnualBenefit, prev, "benefit must not decrease at n=%d", n)
		prev = c.AnnualBenefit
	}
}

func TestGenerationBenefitSaturates(t *testing.T) {
	e := NewEstimator(0.30, 0.05, testAssumptions)
	p := solarProject("s1", 500, 100, daylightSeries(365, 1))
	load := flatSeries(365, 2)

	// Below saturation every share is fully self-consumed; above it, the
	// marginal share only earns the feed-in tariff.
	low := e.Evaluate(p, 1, load).AnnualBenefit
	atCap := e.Evaluate(p, 2, load).AnnualBenefit
	above := e.Evaluate(p, 3, load).AnnualBenefit

	assert.InDelta(t, low*2, atCap, 1e-6)
	marginal := above - atCap
	// Daylight energy of one share at 1 kW over a year, valued at the tariff
	expectedMarginal := 365 * 8.0 * 0.05
	assert.InDelta(t, expectedMarginal, marginal, 1e-6)
}

func TestGenerationSplitAtTariff(t *testing.T) {
	// No load at all: the whole production is exported
	e := NewEstimator(0.30, 0.05, testAssumptions)
	p := solarProject("s1", 500, 100, daylightSeries(365, 1))

	c := e.Evaluate(p, 1, flatSeries(365, 0))
	expected := 365 * 8.0 * 0.05
	assert.InDelta(t, expected, c.AnnualBenefit, 1e-6)
}

func TestBatteryBenefit(t *testing.T) {
	e := NewEstimator(0.30, 0.05, testAssumptions)
	p := batteryProject("b1", 750, 100, 2.0)

	c := e.Evaluate(p, 3, nil)
	// 6 kWh * 365 * 1 cycle * 0.8 efficiency * 0.5 utilization * 0.30 EUR
	expected := 6.0 * 365 * 1 * 0.8 * 0.5 * 0.30
	assert.InDelta(t, expected, c.AnnualBenefit, 1e-6)
	assert.Equal(t, 2250.0, c.Investment)
	assert.InDelta(t, c.Investment/expected, c.PaybackYears, 1e-9)
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	e := NewEstimator(0.30, 0.05, testAssumptions)
	p := solarProject("s1", 500, 100, daylightSeries(2, 1))
	load := flatSeries(2, 2)
	before := load.Sum()

	e.Evaluate(p, 5, load)
	assert.Equal(t, before, load.Sum())
}
