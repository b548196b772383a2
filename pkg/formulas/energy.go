package formulas

// SelfConsumptionRate returns the percentage of produced energy that was
// consumed locally instead of exported. Returns 0 when nothing was produced.
//
//	Rate = self-consumed / total production * 100
func SelfConsumptionRate(selfConsumedKWh, totalProductionKWh float64) float64 {
	if totalProductionKWh <= 0 {
		return 0
	}
	return clampPct(selfConsumedKWh / totalProductionKWh * 100)
}

// AutarkyRate returns the percentage of consumption covered by local
// production. Returns 0 when nothing was consumed.
//
//	Rate = self-consumed / total consumption * 100
func AutarkyRate(selfConsumedKWh, totalConsumptionKWh float64) float64 {
	if totalConsumptionKWh <= 0 {
		return 0
	}
	return clampPct(selfConsumedKWh / totalConsumptionKWh * 100)
}

// GridImport returns the energy drawn from the grid, floored at zero.
func GridImport(consumptionKWh, selfConsumedKWh float64) float64 {
	v := consumptionKWh - selfConsumedKWh
	if v < 0 {
		return 0
	}
	return v
}

// GridExport returns the energy fed into the grid, floored at zero.
func GridExport(productionKWh, selfConsumedKWh float64) float64 {
	v := productionKWh - selfConsumedKWh
	if v < 0 {
		return 0
	}
	return v
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
