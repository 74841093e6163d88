package footprint

import (
	"strings"

	"github.com/ecotally-core/server/internal/assistant/model"
	logx "github.com/ecotally-core/server/pkg/logger"
)

// Result is the outcome of one footprint computation. All emissions are
// monthly tons CO2e, including the per-category Breakdown.
type Result struct {
	TotalTons       float64
	PerEmployeeTons float64
	Breakdown       map[string]float64
	Score           int
}

// Default commute split applied when the company gave no percentages at all.
const (
	defaultPctCar    = 60
	defaultPctPublic = 30
	defaultPctGreen  = 10
)

func f64(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func i64(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Compute derives the monthly footprint from whatever the session collected.
// Unanswered fields count as zero, so a partially filled session still yields
// a valid (if understated) result. Compute is pure: it never mutates the
// session and has no side effects beyond logging.
func Compute(s *model.SessionState, region string) Result {
	breakdown := make(map[string]float64, 9)

	elecFactor := ElectricityFactor(strings.ToLower(strings.TrimSpace(region)))
	breakdown["electricity"] = f64(s.ElectricityKWh) * elecFactor

	var fuelKg float64
	if s.FuelType != nil {
		fuelKg = f64(s.FuelConsumption) * fuelFactors[*s.FuelType]
	}
	breakdown["fuel"] = fuelKg
	breakdown["gas"] = f64(s.GasConsumption) * fuelFactors[model.FuelNaturalGas]

	breakdown["commute"] = commuteEmissions(s)
	breakdown["waste"] = wasteEmissions(f64(s.WasteKg), s.RecyclePct)
	breakdown["water"] = f64(s.WaterM3) * waterFactor
	breakdown["paper"] = f64(s.PaperKg) * paperFactor
	breakdown["building"] = buildingEmissions(f64(s.OfficeSqm), s.ClimateType)
	breakdown["travel"] = travelEmissions(f64(s.AirTravelKm), f64(s.GroundTravelKm))

	var totalKg float64
	for k, v := range breakdown {
		totalKg += v
		breakdown[k] = v / 1000
	}

	res := Result{
		TotalTons: totalKg / 1000,
		Breakdown: breakdown,
	}
	if n := i64(s.EmployeeCount); n > 0 {
		res.PerEmployeeTons = res.TotalTons / float64(n)
	}
	res.Score = Score(res.PerEmployeeTons)

	logx.Info().
		Str("session_id", s.SessionID).
		Float64("total_tons", res.TotalTons).
		Float64("per_employee_tons", res.PerEmployeeTons).
		Int("score", res.Score).
		Msg("footprint computed")
	return res
}

// commuteEmissions models a round trip on each working day. Missing
// percentages fall back to a typical 60/30/10 car/public/green split; a
// partially answered split keeps the answered values and treats the rest as
// zero.
func commuteEmissions(s *model.SessionState) float64 {
	distance := f64(s.CommuteDistanceKm)
	employees := i64(s.EmployeeCount)
	if distance <= 0 || employees <= 0 {
		return 0
	}

	pctCar, pctPublic := i64(s.CommutePctCar), i64(s.CommutePctPublic)
	if s.CommutePctCar == nil && s.CommutePctPublic == nil && s.CommutePctGreen == nil {
		pctCar, pctPublic = defaultPctCar, defaultPctPublic
	}

	perKm := carFactor*float64(pctCar)/100 + publicFactor*float64(pctPublic)/100
	return distance * perKm * float64(employees) * workDays * 2
}

func wasteEmissions(wasteKg float64, recyclePct *int) float64 {
	r := float64(i64(recyclePct))
	return wasteKg * ((100-r)/100*landfillFactor + r/100*recycledFactor)
}

func buildingEmissions(sqm float64, climate *model.ClimateType) float64 {
	adjust := 1.0
	if climate != nil {
		if a, ok := climateAdjustments[*climate]; ok {
			adjust = a
		}
	}
	return sqm * (buildingAnnualFactor / 12) * adjust
}

// travelEmissions assumes an even split between short and long flights and
// between rail and bus; the questions do not ask for that level of detail.
func travelEmissions(airKm, groundKm float64) float64 {
	air := airKm * (0.5*airShortFactor + 0.5*airLongFactor)
	ground := groundKm * (0.5*railFactor + 0.5*busFactor)
	return air + ground
}

// Score maps monthly per-employee tons onto a 0..100 sustainability score by
// linear interpolation between the annualised reference bounds. A
// non-positive per-employee figure means the employee count is unknown, which
// scores a neutral 50 rather than a perfect 100.
func Score(perEmployeeTons float64) int {
	if perEmployeeTons <= 0 {
		return 50
	}
	annual := perEmployeeTons * 12
	switch {
	case annual <= minPerEmployeeYear:
		return 100
	case annual >= maxPerEmployeeYear:
		return 0
	default:
		return int(100 * (maxPerEmployeeYear - annual) / (maxPerEmployeeYear - minPerEmployeeYear))
	}
}

// ScoreCategory names the band a score falls into.
func ScoreCategory(score int) string {
	switch {
	case score >= 81:
		return "Excellent"
	case score >= 61:
		return "Good"
	case score >= 41:
		return "Medium"
	case score >= 21:
		return "Poor"
	default:
		return "Deficient"
	}
}
