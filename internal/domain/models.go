package domain

// EnergyType classifies a renewable project. The set is closed: the benefit
// estimator dispatches on it, so adding a type means adding an estimator
// branch as well.
type EnergyType string

const (
	EnergySolar   EnergyType = "solar"
	EnergyWind    EnergyType = "wind"
	EnergyBattery EnergyType = "battery"
)

// Valid reports whether t is one of the known energy types.
func (t EnergyType) Valid() bool {
	switch t {
	case EnergySolar, EnergyWind, EnergyBattery:
		return true
	}
	return false
}

// IsBattery reports whether the project stores energy instead of producing it.
// Battery projects have no production curve; their benefit comes from a
// closed-form shifting estimate.
func (t EnergyType) IsBattery() bool {
	return t == EnergyBattery
}

// CapacityUnit returns the unit a share's capacity is quoted in:
// kW for generation, kWh for storage.
func (t EnergyType) CapacityUnit() string {
	if t.IsBattery() {
		return "kWh"
	}
	return "kW"
}
