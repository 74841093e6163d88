package footprint

import "github.com/ecotally-core/server/internal/assistant/model"

// Per-employee thresholds that trigger targeted recommendations.
const (
	highElectricityPerEmployee = 300 // kWh per month
	highPaperPerEmployee       = 5   // kg per month
	highCarPct                 = 60
	lowRecyclePct              = 30
	minRecommendations         = 3
)

var genericRecommendations = []string{
	"Run an awareness campaign so the whole team knows the company footprint and how daily habits affect it.",
	"Set a yearly reduction target and review the footprint every quarter to track progress against it.",
}

// Recommend produces improvement advice based on the collected data and the
// computed result. Rules are evaluated in a fixed order so the output is
// deterministic; when fewer than three rules fire, generic advice pads the
// list so the user never gets an almost-empty report.
func Recommend(s *model.SessionState, res Result) []string {
	var recs []string

	employees := i64(s.EmployeeCount)
	if employees <= 0 {
		employees = 1
	}

	if res.Score < 50 {
		recs = append(recs, "Your overall footprint is high for your company size. Prioritise an energy audit to find the biggest sources of emissions.")
	}
	if f64(s.ElectricityKWh) > highElectricityPerEmployee*float64(employees) {
		recs = append(recs, "Electricity use is high per employee. Consider switching to a renewable energy supplier or installing solar panels.")
	}
	if i64(s.CommutePctCar) > highCarPct {
		recs = append(recs, "Most of your team commutes by car. Promote carpooling, public transport subsidies or remote work days.")
	}
	if s.RecyclePct == nil || *s.RecyclePct < lowRecyclePct {
		recs = append(recs, "Your recycling rate is low. Introduce separate collection points and a simple recycling policy.")
	}
	if f64(s.PaperKg) > highPaperPerEmployee*float64(employees) {
		recs = append(recs, "Paper use is above typical levels. Move approvals and archiving to digital workflows.")
	}
	if s.ClimateType != nil &&
		(*s.ClimateType == model.ClimateAirConditioning || *s.ClimateType == model.ClimateElectricHeating) {
		recs = append(recs, "Your climate-control system is energy intensive. A heat pump or better insulation can cut building emissions substantially.")
	}

	if len(recs) < minRecommendations {
		recs = append(recs, genericRecommendations...)
	}
	return recs
}
