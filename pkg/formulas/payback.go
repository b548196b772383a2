package formulas

import "math"

// PaybackYears returns the years needed for the annual benefit to repay the
// investment. When the benefit is zero or negative the payback is undefined
// and +Inf is returned; callers rank on it but must never divide by it.
func PaybackYears(investment, annualBenefit float64) float64 {
	if annualBenefit <= 0 {
		return math.Inf(1)
	}
	return investment / annualBenefit
}

// PaybackDefined reports whether a payback value is a real figure rather
// than the undefined sentinel.
func PaybackDefined(payback float64) bool {
	return !math.IsInf(payback, 1) && !math.IsNaN(payback)
}

// PaybackPtr converts a payback value to its JSON representation: nil for
// the undefined sentinel, a rounded pointer otherwise.
func PaybackPtr(payback float64) *float64 {
	if !PaybackDefined(payback) {
		return nil
	}
	v := Round(payback, 2)
	return &v
}

// AnnualizedReturn scales a holding-period gain percentage to a yearly rate.
func AnnualizedReturn(gainPct float64, daysHeld int) float64 {
	if daysHeld <= 0 {
		return 0
	}
	return gainPct / float64(daysHeld) * 365
}
