package optimizer

import (
	"github.com/delphienergy/sunshare/internal/config"
	"github.com/delphienergy/sunshare/internal/modules/projects"
	"github.com/delphienergy/sunshare/internal/timeseries"
	"github.com/delphienergy/sunshare/pkg/formulas"
)

// daysPerYear is used by the closed-form battery benefit estimate.
const daysPerYear = 365

// Estimator computes the annual financial benefit of holding n shares of a
// project against the current remaining household load. It is a pure
// function of its inputs: no state, no side effects, deterministic.
type Estimator struct {
	electricityPrice float64 // EUR/kWh
	feedInTariff     float64 // EUR/kWh
	assumptions      config.Assumptions
}

// NewEstimator creates an estimator for one optimization run's tariffs.
func NewEstimator(electricityPrice, feedInTariff float64, a config.Assumptions) *Estimator {
	return &Estimator{
		electricityPrice: electricityPrice,
		feedInTariff:     feedInTariff,
		assumptions:      a,
	}
}

// Evaluate computes the candidate figures for n shares of a project.
// For generation projects the remaining load determines the split between
// avoided grid purchases and exports; battery projects use the closed-form
// shifting estimate and ignore the load curve.
func (e *Estimator) Evaluate(p projects.Project, n int, remaining timeseries.Series) Candidate {
	c := Candidate{
		Project:      p,
		Shares:       n,
		PaybackYears: formulas.PaybackYears(0, 0),
	}
	if n <= 0 {
		return c
	}

	c.Investment = float64(n) * p.PricePerShare

	if p.IsBattery() {
		c.AnnualBenefit = e.batteryBenefit(float64(n) * p.CapacityPerShare)
	} else {
		c.AnnualBenefit = e.generationBenefit(p.Production, float64(n), remaining)
	}

	c.PaybackYears = formulas.PaybackYears(c.Investment, c.AnnualBenefit)
	return c
}

// generationBenefit sums avoided cost plus export revenue over the year.
// Per sample: self-consumed = min(scaled production, remaining load),
// everything above the load is exported at the feed-in tariff.
func (e *Estimator) generationBenefit(perShare timeseries.Series, scale float64, remaining timeseries.Series) float64 {
	production, load, _ := timeseries.Align(perShare, remaining)

	selfKW := 0.0
	exportKW := 0.0
	for i := range production {
		prod := production[i].Value * scale
		if prod <= 0 {
			continue
		}
		self := prod
		if load[i].Value < self {
			self = load[i].Value
		}
		if self < 0 {
			self = 0
		}
		selfKW += self
		exportKW += prod - self
	}

	selfKWh := selfKW * timeseries.IntervalHours
	exportKWh := exportKW * timeseries.IntervalHours
	return selfKWh*e.electricityPrice + exportKWh*e.feedInTariff
}

// batteryBenefit estimates the value of shifting energy through storage.
// Batteries have no production curve, so this is a closed-form estimate:
// the capacity cycles once per day at the configured round-trip efficiency,
// and the utilization factor says how much of the shifted energy displaces
// grid purchases.
func (e *Estimator) batteryBenefit(capacityKWh float64) float64 {
	a := e.assumptions
	shiftedKWh := capacityKWh * daysPerYear * a.BatteryDailyCycles * a.BatteryRoundTripEfficiency
	return shiftedKWh * a.BatteryUtilizationFactor * e.electricityPrice
}
