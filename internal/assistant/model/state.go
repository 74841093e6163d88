package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the accumulating record for one data-collection
// conversation. Optional fields stay nil until the owning phase handler sets
// them; result fields are written only by the footprint computation.
type SessionState struct {
	SessionID string

	// Transcript of assistant messages, append-only.
	Messages []string

	// Transient per-turn fields, cleared after each handler run.
	UserInput  string
	LastIntent Intent

	// Identity
	CompanyName     *string
	ResponsibleName *string
	EmployeeCount   *int

	// Energy
	ElectricityKWh  *float64
	FuelType        *FuelType
	FuelConsumption *float64
	GasConsumption  *float64

	// Commute
	CommuteDistanceKm *float64
	CommutePctCar     *int
	CommutePctPublic  *int
	CommutePctGreen   *int

	// Waste
	WasteKg    *float64
	RecyclePct *int

	// Utilities
	WaterM3 *float64
	PaperKg *float64

	// Facility
	OfficeSqm   *float64
	ClimateType *ClimateType

	// Travel
	AirTravelKm    *float64
	GroundTravelKm *float64

	// Results, written by the footprint computation only.
	TotalFootprintTons  *float64
	PerEmployeeTons     *float64
	SustainabilityScore *int
	Breakdown           map[string]float64

	// Control
	CurrentPhase Phase
	Finished     bool
}

// NewSessionState creates an empty session in the initial phase.
func NewSessionState() *SessionState {
	return &SessionState{
		SessionID:    uuid.NewString(),
		CurrentPhase: PhaseNone,
	}
}

// AddMessage appends an assistant message to the transcript.
func (s *SessionState) AddMessage(msg string) {
	s.Messages = append(s.Messages, msg)
}

// Patch is the typed partial update produced by a phase handler. Only the
// fields the handler owns are non-nil; Apply performs total, typed field
// assignment and the bookkeeping every handler shares (append reply, set the
// next phase, clear transient input).
type Patch struct {
	CompanyName     *string
	ResponsibleName *string
	EmployeeCount   *int

	ElectricityKWh  *float64
	FuelType        *FuelType
	FuelConsumption *float64
	GasConsumption  *float64

	CommuteDistanceKm *float64
	CommutePctCar     *int
	CommutePctPublic  *int
	CommutePctGreen   *int

	WasteKg    *float64
	RecyclePct *int

	WaterM3 *float64
	PaperKg *float64

	OfficeSqm   *float64
	ClimateType *ClimateType

	AirTravelKm    *float64
	GroundTravelKm *float64

	TotalFootprintTons  *float64
	PerEmployeeTons     *float64
	SustainabilityScore *int
	Breakdown           map[string]float64

	Reply    string
	Next     Phase
	Finished bool
}

// Apply merges the patch onto the state.
func (p Patch) Apply(s *SessionState) {
	if p.CompanyName != nil {
		s.CompanyName = p.CompanyName
	}
	if p.ResponsibleName != nil {
		s.ResponsibleName = p.ResponsibleName
	}
	if p.EmployeeCount != nil {
		s.EmployeeCount = p.EmployeeCount
	}
	if p.ElectricityKWh != nil {
		s.ElectricityKWh = p.ElectricityKWh
	}
	if p.FuelType != nil {
		s.FuelType = p.FuelType
	}
	if p.FuelConsumption != nil {
		s.FuelConsumption = p.FuelConsumption
	}
	if p.GasConsumption != nil {
		s.GasConsumption = p.GasConsumption
	}
	if p.CommuteDistanceKm != nil {
		s.CommuteDistanceKm = p.CommuteDistanceKm
	}
	if p.CommutePctCar != nil {
		s.CommutePctCar = p.CommutePctCar
	}
	if p.CommutePctPublic != nil {
		s.CommutePctPublic = p.CommutePctPublic
	}
	if p.CommutePctGreen != nil {
		s.CommutePctGreen = p.CommutePctGreen
	}
	if p.WasteKg != nil {
		s.WasteKg = p.WasteKg
	}
	if p.RecyclePct != nil {
		s.RecyclePct = p.RecyclePct
	}
	if p.WaterM3 != nil {
		s.WaterM3 = p.WaterM3
	}
	if p.PaperKg != nil {
		s.PaperKg = p.PaperKg
	}
	if p.OfficeSqm != nil {
		s.OfficeSqm = p.OfficeSqm
	}
	if p.ClimateType != nil {
		s.ClimateType = p.ClimateType
	}
	if p.AirTravelKm != nil {
		s.AirTravelKm = p.AirTravelKm
	}
	if p.GroundTravelKm != nil {
		s.GroundTravelKm = p.GroundTravelKm
	}
	if p.TotalFootprintTons != nil {
		s.TotalFootprintTons = p.TotalFootprintTons
	}
	if p.PerEmployeeTons != nil {
		s.PerEmployeeTons = p.PerEmployeeTons
	}
	if p.SustainabilityScore != nil {
		s.SustainabilityScore = p.SustainabilityScore
	}
	if p.Breakdown != nil {
		s.Breakdown = p.Breakdown
	}

	if p.Reply != "" {
		s.AddMessage(p.Reply)
	}
	s.CurrentPhase = p.Next
	if p.Finished {
		s.Finished = true
	}
	s.UserInput = ""
	s.LastIntent = IntentNone
}

// PersistedRecord is the shape appended to the session log file, one object
// per completed or abandoned session. Result fields are optional depending on
// when the session ended.
type PersistedRecord struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	CompanyName     *string  `json:"company_name"`
	ResponsibleName *string  `json:"responsible_name"`
	EmployeeCount   *int     `json:"employee_count"`
	ElectricityKWh  *float64 `json:"electricity_kwh"`
	FuelType        *FuelType `json:"fuel_type"`
	FuelConsumption *float64 `json:"fuel_consumption"`
	GasConsumption  *float64 `json:"gas_consumption"`

	CommuteDistanceKm *float64 `json:"commute_distance_km"`
	CommutePctCar     *int     `json:"commute_pct_car"`
	CommutePctPublic  *int     `json:"commute_pct_public"`
	CommutePctGreen   *int     `json:"commute_pct_green"`

	WasteKg    *float64 `json:"waste_kg"`
	RecyclePct *int     `json:"recycle_pct"`
	WaterM3    *float64 `json:"water_m3"`
	PaperKg    *float64 `json:"paper_kg"`

	OfficeSqm   *float64     `json:"office_sqm"`
	ClimateType *ClimateType `json:"climate_type"`

	AirTravelKm    *float64 `json:"air_travel_km"`
	GroundTravelKm *float64 `json:"ground_travel_km"`

	TotalFootprintTons  *float64           `json:"total_footprint_tons,omitempty"`
	PerEmployeeTons     *float64           `json:"per_employee_tons,omitempty"`
	SustainabilityScore *int               `json:"sustainability_score,omitempty"`
	Breakdown           map[string]float64 `json:"breakdown,omitempty"`

	// Transcript holds the role-prefixed exchange, attached when a
	// transcript store is configured.
	Transcript []string `json:"transcript,omitempty"`
}

// RecordFromState snapshots a session into its persisted form.
func RecordFromState(s *SessionState) PersistedRecord {
	return PersistedRecord{
		SessionID:           s.SessionID,
		Timestamp:           time.Now().UTC(),
		CompanyName:         s.CompanyName,
		ResponsibleName:     s.ResponsibleName,
		EmployeeCount:       s.EmployeeCount,
		ElectricityKWh:      s.ElectricityKWh,
		FuelType:            s.FuelType,
		FuelConsumption:     s.FuelConsumption,
		GasConsumption:      s.GasConsumption,
		CommuteDistanceKm:   s.CommuteDistanceKm,
		CommutePctCar:       s.CommutePctCar,
		CommutePctPublic:    s.CommutePctPublic,
		CommutePctGreen:     s.CommutePctGreen,
		WasteKg:             s.WasteKg,
		RecyclePct:          s.RecyclePct,
		WaterM3:             s.WaterM3,
		PaperKg:             s.PaperKg,
		OfficeSqm:           s.OfficeSqm,
		ClimateType:         s.ClimateType,
		AirTravelKm:         s.AirTravelKm,
		GroundTravelKm:      s.GroundTravelKm,
		TotalFootprintTons:  s.TotalFootprintTons,
		PerEmployeeTons:     s.PerEmployeeTons,
		SustainabilityScore: s.SustainabilityScore,
		Breakdown:           s.Breakdown,
	}
}
