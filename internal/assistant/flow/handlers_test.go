package flow

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotally-core/server/internal/assistant/extract"
	"github.com/ecotally-core/server/internal/assistant/model"
)

func newTestHandlers() *Handlers {
	return NewHandlers(extract.New(nil, model.ExtractorModelConfig{MaxTokens: 50, Temperature: 0.1}))
}

func sessionAt(phase model.Phase, input string) *model.SessionState {
	s := model.NewSessionState()
	s.CurrentPhase = phase
	s.UserInput = input
	return s
}

func TestCompanyName_EmptyInputReprompts(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseCompanyName, "   ")

	patch := h.CompanyName(context.Background(), s)

	assert.Nil(t, patch.CompanyName)
	assert.Equal(t, model.PhaseCompanyName, patch.Next)
	assert.Equal(t, companyNameError, patch.Reply)
}

func TestCompanyName_Accepted(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseCompanyName, "  Acme Corp  ")

	patch := h.CompanyName(context.Background(), s)
	patch.Apply(s)

	require.NotNil(t, s.CompanyName)
	assert.Equal(t, "Acme Corp", *s.CompanyName)
	assert.Equal(t, model.PhaseResponsibleName, s.CurrentPhase)
	assert.Empty(t, s.UserInput, "transient input is cleared after the turn")
}

func TestEmployeeCount_RejectsNonNumeric(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseEmployeeCount, "a few")

	patch := h.EmployeeCount(context.Background(), s)

	assert.Nil(t, patch.EmployeeCount)
	assert.Equal(t, model.PhaseEmployeeCount, patch.Next)
}

func TestEmployeeCount_ExtractsFromText(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseEmployeeCount, "around 50 people")

	patch := h.EmployeeCount(context.Background(), s)

	require.NotNil(t, patch.EmployeeCount)
	assert.Equal(t, 50, *patch.EmployeeCount)
	assert.Equal(t, model.PhaseElectricityKWh, patch.Next)
}

func TestFuelType_SynonymsAndOptions(t *testing.T) {
	h := newTestHandlers()

	cases := map[string]model.FuelType{
		"1":       model.FuelGasoline,
		"Petrol":  model.FuelGasoline,
		"2":       model.FuelDiesel,
		"diesel":  model.FuelDiesel,
		"3":       model.FuelNaturalGas,
		"gas":     model.FuelNaturalGas,
		"4":       model.FuelElectricity,
		"5":       model.FuelNone,
		"none":    model.FuelNone,
		"NOTHING": model.FuelNone,
	}
	for input, want := range cases {
		s := sessionAt(model.PhaseFuelType, input)
		patch := h.FuelType(context.Background(), s)
		require.NotNil(t, patch.FuelType, "input %q", input)
		assert.Equal(t, want, *patch.FuelType, "input %q", input)
	}
}

func TestFuelType_ElectricityAndNoneSkipConsumption(t *testing.T) {
	h := newTestHandlers()

	for _, input := range []string{"4", "5"} {
		s := sessionAt(model.PhaseFuelType, input)
		patch := h.FuelType(context.Background(), s)
		assert.Equal(t, model.PhaseGasConsumption, patch.Next, "input %q", input)
	}

	s := sessionAt(model.PhaseFuelType, "diesel")
	patch := h.FuelType(context.Background(), s)
	assert.Equal(t, model.PhaseFuelConsumption, patch.Next)
}

func TestFuelType_UnknownRejected(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseFuelType, "plutonium")

	patch := h.FuelType(context.Background(), s)

	assert.Nil(t, patch.FuelType)
	assert.Equal(t, model.PhaseFuelType, patch.Next)
	assert.Equal(t, fuelTypeError, patch.Reply)
}

func TestGasConsumption_NoKeywordShortCircuits(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseGasConsumption, "we don't use gas")

	patch := h.GasConsumption(context.Background(), s)

	require.NotNil(t, patch.GasConsumption)
	assert.Zero(t, *patch.GasConsumption)
	assert.Equal(t, model.PhaseCommuteDistance, patch.Next)
}

func TestCommutePercentages_ClampAndReconcile(t *testing.T) {
	h := newTestHandlers()
	ctx := context.Background()

	s := model.NewSessionState()
	s.CurrentPhase = model.PhaseCommutePctCar

	s.UserInput = "150" // clamped to 100
	h.CommutePctCar(ctx, s).Apply(s)
	require.NotNil(t, s.CommutePctCar)
	assert.Equal(t, 100, *s.CommutePctCar)

	s.UserInput = "30" // 100 already taken, reduced to 0
	h.CommutePctPublic(ctx, s).Apply(s)
	require.NotNil(t, s.CommutePctPublic)
	assert.Equal(t, 0, *s.CommutePctPublic)

	s.UserInput = "25" // still nothing left
	h.CommutePctGreen(ctx, s).Apply(s)
	require.NotNil(t, s.CommutePctGreen)
	assert.Equal(t, 0, *s.CommutePctGreen)

	assert.LessOrEqual(t, *s.CommutePctCar+*s.CommutePctPublic+*s.CommutePctGreen, 100)
}

func TestCommutePercentages_ReconcileLogsSessionID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	h := newTestHandlers()
	ctx := context.Background()

	s := model.NewSessionState()
	s.CommutePctCar = iptrFlow(80)
	s.CurrentPhase = model.PhaseCommutePctPublic
	s.UserInput = "40"
	h.CommutePctPublic(ctx, s).Apply(s)

	assert.Contains(t, buf.String(), "reducing public share")
	assert.Contains(t, buf.String(), `"session_id":"`+s.SessionID+`"`)

	buf.Reset()
	s.UserInput = "30"
	h.CommutePctGreen(ctx, s).Apply(s)

	assert.Contains(t, buf.String(), "reducing green share")
	assert.Contains(t, buf.String(), `"session_id":"`+s.SessionID+`"`)
}

func TestCommutePercentages_SumWithinBudgetIsKept(t *testing.T) {
	h := newTestHandlers()
	ctx := context.Background()

	s := model.NewSessionState()
	s.CurrentPhase = model.PhaseCommutePctCar

	s.UserInput = "60"
	h.CommutePctCar(ctx, s).Apply(s)
	s.UserInput = "30"
	h.CommutePctPublic(ctx, s).Apply(s)
	s.UserInput = "10"
	h.CommutePctGreen(ctx, s).Apply(s)

	assert.Equal(t, 60, *s.CommutePctCar)
	assert.Equal(t, 30, *s.CommutePctPublic)
	assert.Equal(t, 10, *s.CommutePctGreen)
	assert.Equal(t, model.PhaseWasteKg, s.CurrentPhase)
}

func TestRecyclePct_NoKeywordMeansZero(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseRecyclePct, "nothing gets recycled")

	patch := h.RecyclePct(context.Background(), s)

	require.NotNil(t, patch.RecyclePct)
	assert.Zero(t, *patch.RecyclePct)
	assert.Equal(t, model.PhaseWaterM3, patch.Next)
}

func TestWaterM3_UnknownEstimatesFromHeadcount(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseWaterM3, "I don't know, sorry")
	s.EmployeeCount = iptrFlow(40)

	patch := h.WaterM3(context.Background(), s)

	require.NotNil(t, patch.WaterM3)
	assert.Equal(t, 40.0, *patch.WaterM3)
	assert.Equal(t, model.PhasePaperKg, patch.Next)
}

func TestPaperKg_UnknownEstimatesFromHeadcount(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhasePaperKg, "no idea")
	s.EmployeeCount = iptrFlow(15)

	patch := h.PaperKg(context.Background(), s)

	require.NotNil(t, patch.PaperKg)
	assert.Equal(t, 15.0, *patch.PaperKg)
}

func TestOfficeSqm_EmptyInputEstimates(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseOfficeSqm, "")
	s.EmployeeCount = iptrFlow(12)

	patch := h.OfficeSqm(context.Background(), s)

	require.NotNil(t, patch.OfficeSqm)
	assert.Equal(t, 120.0, *patch.OfficeSqm)
	assert.Equal(t, model.PhaseClimateType, patch.Next)
}

func TestOfficeSqm_ZeroRejected(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseOfficeSqm, "0")

	patch := h.OfficeSqm(context.Background(), s)

	assert.Nil(t, patch.OfficeSqm)
	assert.Equal(t, model.PhaseOfficeSqm, patch.Next)
}

func TestClimateType_Synonyms(t *testing.T) {
	h := newTestHandlers()

	cases := map[string]model.ClimateType{
		"1":         model.ClimateAirConditioning,
		"A/C":       model.ClimateAirConditioning,
		"2":         model.ClimateGasHeating,
		"boiler":    model.ClimateGasHeating,
		"3":         model.ClimateElectricHeating,
		"radiators": model.ClimateElectricHeating,
		"4":         model.ClimateHeatPump,
		"heat pump": model.ClimateHeatPump,
		"5":         model.ClimateNatural,
		"windows":   model.ClimateNatural,
		"none":      model.ClimateNone,
	}
	for input, want := range cases {
		s := sessionAt(model.PhaseClimateType, input)
		patch := h.ClimateType(context.Background(), s)
		require.NotNil(t, patch.ClimateType, "input %q", input)
		assert.Equal(t, want, *patch.ClimateType, "input %q", input)
		assert.Equal(t, model.PhaseAirTravelKm, patch.Next)
	}
}

func TestAirTravel_NoKeywordShortCircuits(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseAirTravelKm, "we never fly")

	patch := h.AirTravelKm(context.Background(), s)

	require.NotNil(t, patch.AirTravelKm)
	assert.Zero(t, *patch.AirTravelKm)
	assert.Equal(t, model.PhaseGroundTravelKm, patch.Next)
}

func TestGroundTravel_AdvancesToComputation(t *testing.T) {
	h := newTestHandlers()
	s := sessionAt(model.PhaseGroundTravelKm, "500")

	patch := h.GroundTravelKm(context.Background(), s)

	require.NotNil(t, patch.GroundTravelKm)
	assert.Equal(t, 500.0, *patch.GroundTravelKm)
	assert.Equal(t, model.PhaseComputeFootprint, patch.Next)
}

func iptrFlow(v int) *int { return &v }
