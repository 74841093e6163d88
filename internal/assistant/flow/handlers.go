package flow

import (
	"context"
	"strings"

	"github.com/ecotally-core/server/internal/assistant/extract"
	"github.com/ecotally-core/server/internal/assistant/model"
	logx "github.com/ecotally-core/server/pkg/logger"
)

// Keyword shortcuts, matched as case-insensitive substrings. A "no/none/zero"
// phrasing short-circuits to 0 without invoking the extractor; an
// "unknown" phrasing substitutes a per-employee estimate instead of
// rejecting.
var (
	noValueKeywords = []string{"no", "zero", "none", "nothing", "not applicable", "we don't"}
	unknownKeywords = []string{"don't know", "dont know", "unknown", "no idea", "not sure", "we don't have"}
)

// Per-employee estimates used when the user cannot give a figure.
const (
	waterPerEmployeeM3  = 1.0
	paperPerEmployeeKg  = 1.0
	officePerEmployeeM2 = 10.0
)

// fuelSynonyms maps lower-cased exact inputs to fuel types. Numeric options
// mirror the menu in the prompt.
var fuelSynonyms = map[string]model.FuelType{
	"1": model.FuelGasoline, "gasoline": model.FuelGasoline, "petrol": model.FuelGasoline,
	"2": model.FuelDiesel, "diesel": model.FuelDiesel,
	"3": model.FuelNaturalGas, "natural gas": model.FuelNaturalGas, "gas": model.FuelNaturalGas,
	"4": model.FuelElectricity, "electricity": model.FuelElectricity, "electric": model.FuelElectricity,
	"5": model.FuelNone, "none": model.FuelNone, "no": model.FuelNone, "nothing": model.FuelNone, "not applicable": model.FuelNone,
}

var fuelDisplayNames = map[model.FuelType]string{
	model.FuelGasoline:    "Gasoline",
	model.FuelDiesel:      "Diesel",
	model.FuelNaturalGas:  "Natural gas",
	model.FuelElectricity: "Electricity",
	model.FuelNone:        "No fuel",
}

var fuelUnits = map[model.FuelType]string{
	model.FuelGasoline:    "litres",
	model.FuelDiesel:      "litres",
	model.FuelNaturalGas:  "m³",
	model.FuelElectricity: "kWh",
	model.FuelNone:        "units",
}

var climateSynonyms = map[string]model.ClimateType{
	"1": model.ClimateAirConditioning, "air conditioning": model.ClimateAirConditioning,
	"air con": model.ClimateAirConditioning, "ac": model.ClimateAirConditioning, "a/c": model.ClimateAirConditioning,
	"2": model.ClimateGasHeating, "gas heating": model.ClimateGasHeating, "gas": model.ClimateGasHeating, "boiler": model.ClimateGasHeating,
	"3": model.ClimateElectricHeating, "electric heating": model.ClimateElectricHeating,
	"electric": model.ClimateElectricHeating, "radiators": model.ClimateElectricHeating,
	"4": model.ClimateHeatPump, "heat pump": model.ClimateHeatPump, "pump": model.ClimateHeatPump,
	"5": model.ClimateNatural, "natural": model.ClimateNatural, "natural ventilation": model.ClimateNatural,
	"windows": model.ClimateNatural,
	"none":    model.ClimateNone, "no system": model.ClimateNone,
}

var climateDisplayNames = map[model.ClimateType]string{
	model.ClimateAirConditioning: "Air conditioning",
	model.ClimateGasHeating:      "Gas heating",
	model.ClimateElectricHeating: "Electric heating",
	model.ClimateHeatPump:        "Heat pump",
	model.ClimateNatural:         "Natural ventilation",
	model.ClimateNone:            "No climate control",
}

// Handlers hold the per-phase input processing. Each handler reads the
// transient UserInput, and returns a Patch carrying the fields it owns, the
// reply and the next phase. Rejected input keeps Next equal to the current
// phase so the engine re-prompts indefinitely.
type Handlers struct {
	ex *extract.Extractor
}

func NewHandlers(ex *extract.Extractor) *Handlers {
	return &Handlers{ex: ex}
}

func matchesAny(input string, keywords []string) bool {
	lowered := strings.ToLower(input)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }

// number extracts a non-negative value; ok is false on rejection.
func (h *Handlers) number(ctx context.Context, input, label string) (float64, bool) {
	v, ok := h.ex.Number(ctx, input, label)
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func (h *Handlers) CompanyName(ctx context.Context, s *model.SessionState) model.Patch {
	name := strings.TrimSpace(s.UserInput)
	if name == "" {
		logx.Warn().Str("session_id", s.SessionID).Msg("empty company name input")
		return model.Patch{Reply: companyNameError, Next: model.PhaseCompanyName}
	}
	return model.Patch{
		CompanyName: &name,
		Reply:       confirmCompanyName(name),
		Next:        model.PhaseResponsibleName,
	}
}

func (h *Handlers) ResponsibleName(ctx context.Context, s *model.SessionState) model.Patch {
	name := strings.TrimSpace(s.UserInput)
	if name == "" {
		logx.Warn().Str("session_id", s.SessionID).Msg("empty responsible name input")
		return model.Patch{Reply: responsibleNameError, Next: model.PhaseResponsibleName}
	}
	return model.Patch{
		ResponsibleName: &name,
		Reply:           confirmResponsibleName(name, orCompany(s.CompanyName)),
		Next:            model.PhaseEmployeeCount,
	}
}

func (h *Handlers) EmployeeCount(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.number(ctx, s.UserInput, "number of employees")
	if !ok {
		return model.Patch{Reply: employeeCountError, Next: model.PhaseEmployeeCount}
	}
	count := int(v)
	return model.Patch{
		EmployeeCount: &count,
		Reply:         confirmEmployeeCount(count),
		Next:          model.PhaseElectricityKWh,
	}
}

func (h *Handlers) Electricity(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.number(ctx, s.UserInput, "electricity consumption in kWh")
	if !ok {
		return model.Patch{Reply: electricityError, Next: model.PhaseElectricityKWh}
	}
	return model.Patch{
		ElectricityKWh: &v,
		Reply:          confirmElectricity(v),
		Next:           model.PhaseFuelType,
	}
}

func (h *Handlers) FuelType(ctx context.Context, s *model.SessionState) model.Patch {
	cleaned := strings.ToLower(strings.TrimSpace(s.UserInput))
	fuel, ok := fuelSynonyms[cleaned]
	if !ok {
		logx.Warn().Str("session_id", s.SessionID).Str("input", s.UserInput).Msg("unrecognised fuel type")
		return model.Patch{Reply: fuelTypeError, Next: model.PhaseFuelType}
	}

	// Electricity is already covered and "none" burns nothing, so both skip
	// straight to the gas question.
	if !fuel.NeedsConsumption() {
		return model.Patch{
			FuelType: &fuel,
			Reply:    confirmFuelSkipped(fuelDisplayNames[fuel]),
			Next:     model.PhaseGasConsumption,
		}
	}
	return model.Patch{
		FuelType: &fuel,
		Reply:    confirmFuelType(fuelDisplayNames[fuel], fuelUnits[fuel]),
		Next:     model.PhaseFuelConsumption,
	}
}

func (h *Handlers) FuelConsumption(ctx context.Context, s *model.SessionState) model.Patch {
	fuel := model.FuelGasoline
	if s.FuelType != nil {
		fuel = *s.FuelType
	}
	v, ok := h.number(ctx, s.UserInput, "fuel consumption")
	if !ok {
		return model.Patch{Reply: fuelConsumptionError, Next: model.PhaseFuelConsumption}
	}
	return model.Patch{
		FuelConsumption: &v,
		Reply:           confirmFuelConsumption(v, fuelUnits[fuel], fuelDisplayNames[fuel]),
		Next:            model.PhaseGasConsumption,
	}
}

func (h *Handlers) GasConsumption(ctx context.Context, s *model.SessionState) model.Patch {
	if matchesAny(s.UserInput, noValueKeywords) {
		return model.Patch{
			GasConsumption: ptr(0.0),
			Reply:          confirmGasConsumption(0),
			Next:           model.PhaseCommuteDistance,
		}
	}
	v, ok := h.number(ctx, s.UserInput, "natural gas consumption")
	if !ok {
		return model.Patch{Reply: gasConsumptionError, Next: model.PhaseGasConsumption}
	}
	return model.Patch{
		GasConsumption: &v,
		Reply:          confirmGasConsumption(v),
		Next:           model.PhaseCommuteDistance,
	}
}

func (h *Handlers) CommuteDistance(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.number(ctx, s.UserInput, "commute distance")
	if !ok {
		return model.Patch{Reply: commuteDistanceError, Next: model.PhaseCommuteDistance}
	}
	return model.Patch{
		CommuteDistanceKm: &v,
		Reply:             confirmCommuteDistance(v),
		Next:              model.PhaseCommutePctCar,
	}
}

func clampPct(v float64) int {
	pct := int(v)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (h *Handlers) CommutePctCar(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.ex.Number(ctx, s.UserInput, "percentage commuting by car")
	if !ok {
		return model.Patch{Reply: percentageError, Next: model.PhaseCommutePctCar}
	}
	pct := clampPct(v)
	return model.Patch{
		CommutePctCar: &pct,
		Reply:         confirmCarPct(pct),
		Next:          model.PhaseCommutePctPublic,
	}
}

func (h *Handlers) CommutePctPublic(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.ex.Number(ctx, s.UserInput, "percentage commuting by public transport")
	if !ok {
		return model.Patch{Reply: percentageError, Next: model.PhaseCommutePctPublic}
	}
	pct := clampPct(v)

	// The three shares may never exceed 100 in total; later answers give way.
	car := 0
	if s.CommutePctCar != nil {
		car = *s.CommutePctCar
	}
	if car+pct > 100 {
		logx.Warn().Str("session_id", s.SessionID).Int("car_pct", car).Int("public_pct", pct).Msg("commute shares exceed 100, reducing public share")
		pct = 100 - car
	}
	return model.Patch{
		CommutePctPublic: &pct,
		Reply:            confirmPublicPct(pct),
		Next:             model.PhaseCommutePctGreen,
	}
}

func (h *Handlers) CommutePctGreen(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.ex.Number(ctx, s.UserInput, "percentage commuting sustainably")
	if !ok {
		return model.Patch{Reply: percentageError, Next: model.PhaseCommutePctGreen}
	}
	pct := clampPct(v)

	car, public := 0, 0
	if s.CommutePctCar != nil {
		car = *s.CommutePctCar
	}
	if s.CommutePctPublic != nil {
		public = *s.CommutePctPublic
	}
	if car+public+pct > 100 {
		logx.Warn().Str("session_id", s.SessionID).Int("car_pct", car).Int("public_pct", public).Int("green_pct", pct).Msg("commute shares exceed 100, reducing green share")
		pct = 100 - car - public
		if pct < 0 {
			pct = 0
		}
	}
	return model.Patch{
		CommutePctGreen: &pct,
		Reply:           confirmGreenPct(pct),
		Next:            model.PhaseWasteKg,
	}
}

func (h *Handlers) WasteKg(ctx context.Context, s *model.SessionState) model.Patch {
	v, ok := h.number(ctx, s.UserInput, "waste amount")
	if !ok {
		return model.Patch{Reply: wasteError, Next: model.PhaseWasteKg}
	}
	return model.Patch{
		WasteKg: &v,
		Reply:   confirmWasteKg(v),
		Next:    model.PhaseRecyclePct,
	}
}

func (h *Handlers) RecyclePct(ctx context.Context, s *model.SessionState) model.Patch {
	if matchesAny(s.UserInput, noValueKeywords) {
		return model.Patch{
			RecyclePct: ptr(0),
			Reply:      confirmRecyclePct(0),
			Next:       model.PhaseWaterM3,
		}
	}
	v, ok := h.ex.Number(ctx, s.UserInput, "recycling percentage")
	if !ok {
		return model.Patch{Reply: percentageError, Next: model.PhaseRecyclePct}
	}
	pct := clampPct(v)
	return model.Patch{
		RecyclePct: &pct,
		Reply:      confirmRecyclePct(pct),
		Next:       model.PhaseWaterM3,
	}
}

func (h *Handlers) WaterM3(ctx context.Context, s *model.SessionState) model.Patch {
	if matchesAny(s.UserInput, unknownKeywords) && s.EmployeeCount != nil {
		estimate := float64(*s.EmployeeCount) * waterPerEmployeeM3
		logx.Info().Float64("estimate_m3", estimate).Int("employees", *s.EmployeeCount).Msg("water consumption estimated from headcount")
		return model.Patch{
			WaterM3: &estimate,
			Reply:   estimatedWater(estimate),
			Next:    model.PhasePaperKg,
		}
	}
	v, ok := h.number(ctx, s.UserInput, "water consumption")
	if !ok {
		return model.Patch{Reply: waterError, Next: model.PhaseWaterM3}
	}
	return model.Patch{
		WaterM3: &v,
		Reply:   confirmWater(v),
		Next:    model.PhasePaperKg,
	}
}

func (h *Handlers) PaperKg(ctx context.Context, s *model.SessionState) model.Patch {
	if (matchesAny(s.UserInput, unknownKeywords) || matchesAny(s.UserInput, []string{"very little"})) && s.EmployeeCount != nil {
		estimate := float64(*s.EmployeeCount) * paperPerEmployeeKg
		logx.Info().Float64("estimate_kg", estimate).Int("employees", *s.EmployeeCount).Msg("paper consumption estimated from headcount")
		return model.Patch{
			PaperKg: &estimate,
			Reply:   estimatedPaper(estimate),
			Next:    model.PhaseOfficeSqm,
		}
	}
	v, ok := h.number(ctx, s.UserInput, "paper consumption")
	if !ok {
		return model.Patch{Reply: paperError, Next: model.PhasePaperKg}
	}
	return model.Patch{
		PaperKg: &v,
		Reply:   confirmPaper(v),
		Next:    model.PhaseOfficeSqm,
	}
}

func (h *Handlers) OfficeSqm(ctx context.Context, s *model.SessionState) model.Patch {
	trimmed := strings.TrimSpace(s.UserInput)
	if (trimmed == "" || matchesAny(trimmed, unknownKeywords)) && s.EmployeeCount != nil {
		estimate := float64(*s.EmployeeCount) * officePerEmployeeM2
		logx.Info().Float64("estimate_sqm", estimate).Int("employees", *s.EmployeeCount).Msg("office area estimated from headcount")
		return model.Patch{
			OfficeSqm: &estimate,
			Reply:     estimatedOffice(estimate),
			Next:      model.PhaseClimateType,
		}
	}
	// Office area must be strictly positive; a zero-sized office is a
	// misunderstanding, not a data point.
	v, ok := h.number(ctx, trimmed, "office square metres")
	if !ok || v <= 0 {
		return model.Patch{Reply: officeError, Next: model.PhaseOfficeSqm}
	}
	return model.Patch{
		OfficeSqm: &v,
		Reply:     confirmOffice(v),
		Next:      model.PhaseClimateType,
	}
}

func (h *Handlers) ClimateType(ctx context.Context, s *model.SessionState) model.Patch {
	cleaned := strings.ToLower(strings.TrimSpace(s.UserInput))
	climate, ok := climateSynonyms[cleaned]
	if !ok {
		logx.Warn().Str("session_id", s.SessionID).Str("input", s.UserInput).Msg("unrecognised climate-control type")
		return model.Patch{Reply: climateError, Next: model.PhaseClimateType}
	}
	return model.Patch{
		ClimateType: &climate,
		Reply:       confirmClimate(climateDisplayNames[climate]),
		Next:        model.PhaseAirTravelKm,
	}
}

func (h *Handlers) AirTravelKm(ctx context.Context, s *model.SessionState) model.Patch {
	if matchesAny(s.UserInput, noValueKeywords) {
		return model.Patch{
			AirTravelKm: ptr(0.0),
			Reply:       confirmAirTravel(0),
			Next:        model.PhaseGroundTravelKm,
		}
	}
	v, ok := h.number(ctx, s.UserInput, "kilometres by plane")
	if !ok {
		return model.Patch{Reply: airTravelError, Next: model.PhaseAirTravelKm}
	}
	return model.Patch{
		AirTravelKm: &v,
		Reply:       confirmAirTravel(v),
		Next:        model.PhaseGroundTravelKm,
	}
}

func (h *Handlers) GroundTravelKm(ctx context.Context, s *model.SessionState) model.Patch {
	if matchesAny(s.UserInput, noValueKeywords) {
		return model.Patch{
			GroundTravelKm: ptr(0.0),
			Reply:          confirmGroundTravel(0, orCompany(s.CompanyName)),
			Next:           model.PhaseComputeFootprint,
		}
	}
	v, ok := h.number(ctx, s.UserInput, "kilometres by ground transport")
	if !ok {
		return model.Patch{Reply: groundTravelError, Next: model.PhaseGroundTravelKm}
	}
	return model.Patch{
		GroundTravelKm: &v,
		Reply:          confirmGroundTravel(v, orCompany(s.CompanyName)),
		Next:           model.PhaseComputeFootprint,
	}
}
