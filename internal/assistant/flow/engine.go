package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ecotally-core/server/internal/assistant/footprint"
	"github.com/ecotally-core/server/internal/assistant/llm"
	"github.com/ecotally-core/server/internal/assistant/model"
	logx "github.com/ecotally-core/server/pkg/logger"
)

// exitKeywords end the session immediately, whatever the current phase.
var exitKeywords = []string{"exit", "quit", "cancel"}

// SessionStore persists finished or abandoned sessions. Append must be safe
// for concurrent callers.
type SessionStore interface {
	Append(record model.PersistedRecord) error
}

// Engine routes one user turn at a time through the phase handlers. It owns
// no session state itself; the caller holds the SessionState and hands it in
// on every turn, so independent conversations never share anything.
type Engine struct {
	handlers    *Handlers
	classifier  *llm.Classifier
	store       SessionStore
	transcripts model.TranscriptRepository
	region      string
}

// NewEngine wires the routing core. classifier and transcripts may be nil;
// the engine then skips intent detection and transcript persistence.
func NewEngine(handlers *Handlers, classifier *llm.Classifier, store SessionStore, transcripts model.TranscriptRepository, region string) *Engine {
	return &Engine{
		handlers:    handlers,
		classifier:  classifier,
		store:       store,
		transcripts: transcripts,
		region:      region,
	}
}

// Start opens a session: emits the welcome message and arms the first phase.
func (e *Engine) Start(ctx context.Context, s *model.SessionState) string {
	logx.Info().Str("session_id", s.SessionID).Msg("session started")
	s.AddMessage(welcomeMessage)
	s.CurrentPhase = model.PhaseCompanyName
	e.recordAssistant(ctx, s.SessionID, welcomeMessage)
	return welcomeMessage
}

// HandleTurn processes one user input and returns the assistant's reply. The
// reply is always non-empty while the session is live; a finished session
// answers nothing more.
func (e *Engine) HandleTurn(ctx context.Context, s *model.SessionState, input string) string {
	if s.Finished {
		return ""
	}
	e.recordUser(ctx, s.SessionID, input)

	if isExit(input) {
		return e.finishEarly(ctx, s)
	}

	s.UserInput = input
	if e.classifier != nil {
		s.LastIntent = e.classifier.Classify(ctx, input, s.CurrentPhase)
		if s.LastIntent == model.IntentGreetingFarewell && s.CurrentPhase != model.PhaseCompanyName {
			return e.finishEarly(ctx, s)
		}
	}

	patch := e.dispatch(ctx, s)
	patch.Apply(s)

	// Data collection is complete; the footprint is computed in the same
	// turn rather than asking the user to confirm once more.
	if s.CurrentPhase == model.PhaseComputeFootprint {
		resultPatch := e.compute(s)
		resultPatch.Apply(s)
		patch.Reply += "\n" + resultPatch.Reply
		e.recordAssistant(ctx, s.SessionID, patch.Reply)
		e.persist(ctx, s)
		return patch.Reply
	}

	e.recordAssistant(ctx, s.SessionID, patch.Reply)
	return patch.Reply
}

func (e *Engine) dispatch(ctx context.Context, s *model.SessionState) model.Patch {
	switch s.CurrentPhase {
	case model.PhaseCompanyName:
		return e.handlers.CompanyName(ctx, s)
	case model.PhaseResponsibleName:
		return e.handlers.ResponsibleName(ctx, s)
	case model.PhaseEmployeeCount:
		return e.handlers.EmployeeCount(ctx, s)
	case model.PhaseElectricityKWh:
		return e.handlers.Electricity(ctx, s)
	case model.PhaseFuelType:
		return e.handlers.FuelType(ctx, s)
	case model.PhaseFuelConsumption:
		return e.handlers.FuelConsumption(ctx, s)
	case model.PhaseGasConsumption:
		return e.handlers.GasConsumption(ctx, s)
	case model.PhaseCommuteDistance:
		return e.handlers.CommuteDistance(ctx, s)
	case model.PhaseCommutePctCar:
		return e.handlers.CommutePctCar(ctx, s)
	case model.PhaseCommutePctPublic:
		return e.handlers.CommutePctPublic(ctx, s)
	case model.PhaseCommutePctGreen:
		return e.handlers.CommutePctGreen(ctx, s)
	case model.PhaseWasteKg:
		return e.handlers.WasteKg(ctx, s)
	case model.PhaseRecyclePct:
		return e.handlers.RecyclePct(ctx, s)
	case model.PhaseWaterM3:
		return e.handlers.WaterM3(ctx, s)
	case model.PhasePaperKg:
		return e.handlers.PaperKg(ctx, s)
	case model.PhaseOfficeSqm:
		return e.handlers.OfficeSqm(ctx, s)
	case model.PhaseClimateType:
		return e.handlers.ClimateType(ctx, s)
	case model.PhaseAirTravelKm:
		return e.handlers.AirTravelKm(ctx, s)
	case model.PhaseGroundTravelKm:
		return e.handlers.GroundTravelKm(ctx, s)
	default:
		logx.Error().Str("session_id", s.SessionID).Str("phase", s.CurrentPhase.String()).Msg("no handler for phase")
		return model.Patch{
			Reply:    goodbyeMessage,
			Next:     model.PhaseFinished,
			Finished: true,
		}
	}
}

// compute runs the footprint calculation and formats the report. The session
// always terminates here, successfully or not; a panic inside the
// calculation is caught and turned into an apology instead of killing the
// conversation.
func (e *Engine) compute(s *model.SessionState) (patch model.Patch) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("session_id", s.SessionID).Interface("panic", r).Msg("footprint computation panicked")
			patch = model.Patch{
				Reply:    computeFailedMessage,
				Next:     model.PhaseFinished,
				Finished: true,
			}
		}
	}()

	res := footprint.Compute(s, e.region)
	recs := footprint.Recommend(s, res)

	return model.Patch{
		TotalFootprintTons:  &res.TotalTons,
		PerEmployeeTons:     &res.PerEmployeeTons,
		SustainabilityScore: &res.Score,
		Breakdown:           res.Breakdown,
		Reply:               formatResult(orCompany(s.CompanyName), res, recs),
		Next:                model.PhaseFinished,
		Finished:            true,
	}
}

// finishEarly ends the session on an exit keyword or a farewell, keeping
// whatever has been collected so far.
func (e *Engine) finishEarly(ctx context.Context, s *model.SessionState) string {
	logx.Info().Str("session_id", s.SessionID).Str("phase", s.CurrentPhase.String()).Msg("session ended early")
	patch := model.Patch{
		Reply:    goodbyeMessage,
		Next:     model.PhaseFinished,
		Finished: true,
	}
	patch.Apply(s)
	e.recordAssistant(ctx, s.SessionID, goodbyeMessage)
	e.persist(ctx, s)
	return goodbyeMessage
}

// persist appends the session to the store, with the stored transcript
// attached to the record. Losing the record is logged, not fatal; the user
// already has their answer on screen. Once the durable record exists the
// Redis transcript is dropped; the TTL only has to cover sessions that
// crashed before reaching this point.
func (e *Engine) persist(ctx context.Context, s *model.SessionState) {
	if e.store == nil {
		return
	}
	record := model.RecordFromState(s)
	record.Transcript = e.loadTranscriptLines(ctx, s.SessionID)
	if err := e.store.Append(record); err != nil {
		logx.Warn().Err(err).Str("session_id", s.SessionID).Msg("failed to persist session")
		return
	}
	e.dropTranscript(ctx, s.SessionID)
}

// loadTranscriptLines renders the stored exchange as role-prefixed lines.
// Any transcript-store failure yields nil; the record is persisted without
// the exchange rather than not at all.
func (e *Engine) loadTranscriptLines(ctx context.Context, sessionID string) []string {
	if e.transcripts == nil {
		return nil
	}
	count, err := e.transcripts.MessageCount(ctx, sessionID)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to count transcript messages")
		return nil
	}
	if count == 0 {
		return nil
	}

	transcript, err := e.transcripts.LoadTranscript(ctx, sessionID)
	if err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load transcript")
		return nil
	}
	lines := make([]string, 0, len(transcript.Messages))
	for _, m := range transcript.Messages {
		if m == nil || m.Content == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return lines
}

func (e *Engine) dropTranscript(ctx context.Context, sessionID string) {
	if e.transcripts == nil {
		return
	}
	if err := e.transcripts.ClearTranscript(ctx, sessionID); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to clear transcript")
	}
}

func (e *Engine) recordUser(ctx context.Context, sessionID, content string) {
	if e.transcripts == nil || content == "" {
		return
	}
	if err := e.transcripts.AddMessage(ctx, sessionID, schema.UserMessage(content)); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record user message")
	}
}

func (e *Engine) recordAssistant(ctx context.Context, sessionID, content string) {
	if e.transcripts == nil || content == "" {
		return
	}
	if err := e.transcripts.AddMessage(ctx, sessionID, schema.AssistantMessage(content, nil)); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to record assistant message")
	}
}

func isExit(input string) bool {
	lowered := strings.ToLower(strings.TrimSpace(input))
	for _, kw := range exitKeywords {
		if lowered == kw {
			return true
		}
	}
	return false
}
