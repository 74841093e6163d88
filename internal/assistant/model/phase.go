package model

// Phase identifies which handler processes the next user input. The phases
// form a strict total order; the commute percentage step is modelled as three
// explicit phases so progress never has to be inferred from which fields are
// still unset ("explicitly zero" and "unset" stay distinct).
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCompanyName
	PhaseResponsibleName
	PhaseEmployeeCount
	PhaseElectricityKWh
	PhaseFuelType
	PhaseFuelConsumption
	PhaseGasConsumption
	PhaseCommuteDistance
	PhaseCommutePctCar
	PhaseCommutePctPublic
	PhaseCommutePctGreen
	PhaseWasteKg
	PhaseRecyclePct
	PhaseWaterM3
	PhasePaperKg
	PhaseOfficeSqm
	PhaseClimateType
	PhaseAirTravelKm
	PhaseGroundTravelKm
	PhaseComputeFootprint
	PhaseShowResults
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseNone:             "none",
	PhaseCompanyName:      "name_company",
	PhaseResponsibleName:  "name_responsible",
	PhaseEmployeeCount:    "employee_count",
	PhaseElectricityKWh:   "electricity_kwh",
	PhaseFuelType:         "fuel_type",
	PhaseFuelConsumption:  "fuel_consumption",
	PhaseGasConsumption:   "gas_consumption",
	PhaseCommuteDistance:  "commute_distance",
	PhaseCommutePctCar:    "commute_pct_car",
	PhaseCommutePctPublic: "commute_pct_public",
	PhaseCommutePctGreen:  "commute_pct_green",
	PhaseWasteKg:          "waste_kg",
	PhaseRecyclePct:       "recycle_pct",
	PhaseWaterM3:          "water_m3",
	PhasePaperKg:          "paper_kg",
	PhaseOfficeSqm:        "office_sqm",
	PhaseClimateType:      "climate_type",
	PhaseAirTravelKm:      "air_travel_km",
	PhaseGroundTravelKm:   "ground_travel_km",
	PhaseComputeFootprint: "compute_footprint",
	PhaseShowResults:      "show_results",
	PhaseFinished:         "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// FuelType is the primary fuel used by the company.
type FuelType string

const (
	FuelGasoline    FuelType = "gasoline"
	FuelDiesel      FuelType = "diesel"
	FuelNaturalGas  FuelType = "natural_gas"
	FuelElectricity FuelType = "electricity"
	FuelNone        FuelType = "none"
)

// NeedsConsumption reports whether the fuel type requires a consumption value.
// Electricity is accounted for in the electricity category and "none" burns
// nothing, so both skip the consumption question.
func (f FuelType) NeedsConsumption() bool {
	return f != FuelElectricity && f != FuelNone
}

// ClimateType is the primary climate-control system of the facility.
type ClimateType string

const (
	ClimateAirConditioning ClimateType = "air_conditioning"
	ClimateGasHeating      ClimateType = "gas_heating"
	ClimateElectricHeating ClimateType = "electric_heating"
	ClimateHeatPump        ClimateType = "heat_pump"
	ClimateNatural         ClimateType = "natural"
	ClimateNone            ClimateType = "none"
)

// Intent labels the classified intention of a user turn.
type Intent string

const (
	IntentNone             Intent = ""
	IntentExpectedAnswer   Intent = "expected_answer"
	IntentGeneralQuestion  Intent = "general_question"
	IntentGreetingFarewell Intent = "greeting_farewell"
	IntentCorrectValue     Intent = "correct_value"
	IntentUnintelligible   Intent = "unintelligible"
)
