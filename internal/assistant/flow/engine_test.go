package flow

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotally-core/server/internal/assistant/extract"
	"github.com/ecotally-core/server/internal/assistant/model"
)

// memoryStore captures persisted records for inspection.
type memoryStore struct {
	records []model.PersistedRecord
}

func (m *memoryStore) Append(record model.PersistedRecord) error {
	m.records = append(m.records, record)
	return nil
}

// memoryTranscripts is an in-memory stand-in for the Redis transcript
// repository.
type memoryTranscripts struct {
	messages map[string][]*schema.Message
	cleared  []string
}

func newMemoryTranscripts() *memoryTranscripts {
	return &memoryTranscripts{messages: make(map[string][]*schema.Message)}
}

func (m *memoryTranscripts) AddMessage(ctx context.Context, sessionID string, message *schema.Message) error {
	m.messages[sessionID] = append(m.messages[sessionID], message)
	return nil
}

func (m *memoryTranscripts) LoadTranscript(ctx context.Context, sessionID string) (*model.Transcript, error) {
	return &model.Transcript{SessionID: sessionID, Messages: m.messages[sessionID]}, nil
}

func (m *memoryTranscripts) ClearTranscript(ctx context.Context, sessionID string) error {
	delete(m.messages, sessionID)
	m.cleared = append(m.cleared, sessionID)
	return nil
}

func (m *memoryTranscripts) MessageCount(ctx context.Context, sessionID string) (int, error) {
	return len(m.messages[sessionID]), nil
}

func newTestEngine(store SessionStore) *Engine {
	handlers := NewHandlers(extract.New(nil, model.ExtractorModelConfig{MaxTokens: 50, Temperature: 0.1}))
	return NewEngine(handlers, nil, store, nil, "default")
}

func newTestEngineWithTranscripts(store SessionStore, transcripts model.TranscriptRepository) *Engine {
	handlers := NewHandlers(extract.New(nil, model.ExtractorModelConfig{MaxTokens: 50, Temperature: 0.1}))
	return NewEngine(handlers, nil, store, transcripts, "default")
}

// The full scripted conversation: one answer per phase, computation at the
// end of the ground-travel turn.
var fullScript = []string{
	"Acme Corp",        // company name
	"Jordan",           // responsible
	"50",               // employees
	"1500",             // electricity kWh
	"diesel",           // fuel type
	"200",              // fuel consumption
	"100",              // gas m3
	"10",               // commute distance
	"60",               // car pct
	"30",               // public pct
	"10",               // green pct
	"200",              // waste kg
	"30",               // recycle pct
	"40",               // water m3
	"25",               // paper kg
	"400",              // office sqm
	"air conditioning", // climate
	"2000",             // air travel km
	"500",              // ground travel km
}

func TestEngine_FullConversation(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	engine := newTestEngine(store)
	s := model.NewSessionState()

	welcome := engine.Start(ctx, s)
	assert.Contains(t, welcome, "company name")
	assert.Equal(t, model.PhaseCompanyName, s.CurrentPhase)

	var lastReply string
	for _, input := range fullScript {
		require.False(t, s.Finished, "session ended before the script ran out at input %q", input)
		lastReply = engine.HandleTurn(ctx, s, input)
	}

	assert.True(t, s.Finished)
	assert.Equal(t, model.PhaseFinished, s.CurrentPhase)
	assert.Contains(t, lastReply, "TOTAL CARBON FOOTPRINT")
	assert.Contains(t, lastReply, "Acme Corp")
	assert.Contains(t, lastReply, "RECOMMENDATIONS")

	require.NotNil(t, s.TotalFootprintTons)
	assert.Greater(t, *s.TotalFootprintTons, 0.0)
	require.NotNil(t, s.SustainabilityScore)
	assert.GreaterOrEqual(t, *s.SustainabilityScore, 0)
	assert.LessOrEqual(t, *s.SustainabilityScore, 100)

	// finished session was persisted exactly once, with results attached
	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, s.SessionID, record.SessionID)
	require.NotNil(t, record.TotalFootprintTons)
	assert.Equal(t, *s.TotalFootprintTons, *record.TotalFootprintTons)
	require.NotNil(t, record.EmployeeCount)
	assert.Equal(t, 50, *record.EmployeeCount)
}

func TestEngine_ArchivesTranscriptOnPersist(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	transcripts := newMemoryTranscripts()
	engine := newTestEngineWithTranscripts(store, transcripts)
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "Acme Corp")
	engine.HandleTurn(ctx, s, "Jordan")
	engine.HandleTurn(ctx, s, "exit")

	require.Len(t, store.records, 1)
	record := store.records[0]
	require.NotEmpty(t, record.Transcript)
	assert.Contains(t, record.Transcript, "user: Acme Corp")
	assert.Contains(t, record.Transcript, "user: Jordan")
	assert.Equal(t, "assistant: "+welcomeMessage, record.Transcript[0])
	assert.Equal(t, "assistant: "+goodbyeMessage, record.Transcript[len(record.Transcript)-1])

	// the working copy is dropped once the durable record exists
	assert.Empty(t, transcripts.messages[s.SessionID])
	assert.Equal(t, []string{s.SessionID}, transcripts.cleared)
}

func TestEngine_PersistsWithoutTranscriptStore(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	engine := newTestEngine(store)
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "Acme Corp")
	engine.HandleTurn(ctx, s, "exit")

	require.Len(t, store.records, 1)
	assert.Nil(t, store.records[0].Transcript)
}

func TestEngine_InvalidInputKeepsPhase(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&memoryStore{})
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "Acme Corp")
	require.Equal(t, model.PhaseResponsibleName, s.CurrentPhase)
	engine.HandleTurn(ctx, s, "Jordan")
	require.Equal(t, model.PhaseEmployeeCount, s.CurrentPhase)

	// no usable number, and no collaborator to fall back to
	reply := engine.HandleTurn(ctx, s, "quite a lot of us")
	assert.Equal(t, model.PhaseEmployeeCount, s.CurrentPhase)
	assert.Contains(t, reply, "number")
	assert.Nil(t, s.EmployeeCount)

	// retries are unbounded; the next valid answer still lands
	engine.HandleTurn(ctx, s, "50")
	require.NotNil(t, s.EmployeeCount)
	assert.Equal(t, 50, *s.EmployeeCount)
	assert.Equal(t, model.PhaseElectricityKWh, s.CurrentPhase)
}

func TestEngine_ExitPersistsPartialSession(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	engine := newTestEngine(store)
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "Acme Corp")
	engine.HandleTurn(ctx, s, "Jordan")
	reply := engine.HandleTurn(ctx, s, "exit")

	assert.Equal(t, goodbyeMessage, reply)
	assert.True(t, s.Finished)
	assert.Equal(t, model.PhaseFinished, s.CurrentPhase)

	require.Len(t, store.records, 1)
	record := store.records[0]
	require.NotNil(t, record.CompanyName)
	assert.Equal(t, "Acme Corp", *record.CompanyName)
	assert.Nil(t, record.TotalFootprintTons, "no results on an abandoned session")
}

func TestEngine_FinishedSessionIsInert(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&memoryStore{})
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "quit")
	require.True(t, s.Finished)

	assert.Empty(t, engine.HandleTurn(ctx, s, "hello again"))
}

func TestEngine_FuelSkipShortensScript(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&memoryStore{})
	s := model.NewSessionState()
	engine.Start(ctx, s)

	engine.HandleTurn(ctx, s, "Acme Corp")
	engine.HandleTurn(ctx, s, "Jordan")
	engine.HandleTurn(ctx, s, "10")
	engine.HandleTurn(ctx, s, "800")

	// electricity as fuel type jumps straight to the gas question
	reply := engine.HandleTurn(ctx, s, "electricity")
	assert.Equal(t, model.PhaseGasConsumption, s.CurrentPhase)
	assert.Contains(t, reply, "natural gas")
	assert.Nil(t, s.FuelConsumption)
}
