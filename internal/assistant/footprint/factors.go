// Package footprint computes company carbon emissions from a collected
// session and scores the result.
package footprint

import "github.com/ecotally-core/server/internal/assistant/model"

// --- Emission factors (kg CO2e) ---

// electricityFactors vary by country energy mix, kg CO2e per kWh.
var electricityFactors = map[string]float64{
	"default":   0.385, // approximate global average
	"argentina": 0.310,
	"mexico":    0.494,
	"colombia":  0.199, // mostly renewable grid
	"spain":     0.250,
}

// fuelFactors, kg CO2e per litre (gasoline/diesel) or m3 (natural gas).
// Electricity is accounted for in the electricity category.
var fuelFactors = map[model.FuelType]float64{
	model.FuelGasoline:    2.31,
	model.FuelDiesel:      2.68,
	model.FuelNaturalGas:  2.07,
	model.FuelElectricity: 0,
	model.FuelNone:        0,
}

// Commute, kg CO2e per km per person.
const (
	carFactor    = 0.17
	publicFactor = 0.09
	// green modes (bike, walking) emit nothing
)

// Corporate travel, kg CO2e per km.
const (
	airShortFactor = 0.158 // flights < 1500 km
	airLongFactor  = 0.115 // longer flights, more efficient per km
	railFactor     = 0.035
	busFactor      = 0.068
)

// Waste, kg CO2e per kg.
const (
	landfillFactor = 0.586
	recycledFactor = 0.058 // lower, but not zero
)

const (
	waterFactor = 0.344 // kg CO2e per m3
	paperFactor = 1.50  // kg CO2e per kg
)

// buildingAnnualFactor is kg CO2e per m2 per year; divided by 12 for monthly.
const buildingAnnualFactor = 7.5

// climateAdjustments scale the building factor by climate-control type.
var climateAdjustments = map[model.ClimateType]float64{
	model.ClimateAirConditioning: 1.5,
	model.ClimateGasHeating:      1.3,
	model.ClimateElectricHeating: 1.2,
	model.ClimateHeatPump:        1.1,
	model.ClimateNatural:         0.8,
	model.ClimateNone:            1.0,
}

// workDays is the average number of commuting days per month.
const workDays = 22

// Sustainability score reference bounds, tons CO2e per employee per year.
const (
	minPerEmployeeYear = 0.5  // at or below: score 100
	maxPerEmployeeYear = 10.0 // at or above: score 0
)

// ElectricityFactor returns the factor for a region key, falling back to the
// global default when the key is unknown. Lookup is case-insensitive via the
// caller lowering the key.
func ElectricityFactor(region string) float64 {
	if f, ok := electricityFactors[region]; ok {
		return f
	}
	return electricityFactors["default"]
}
