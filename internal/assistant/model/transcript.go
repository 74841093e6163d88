package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// TranscriptRepository persists the user/assistant message exchange for a
// session. The in-memory SessionState remains the source of truth for the
// conversation itself; the repository exists for audit and review.
type TranscriptRepository interface {
	// AddMessage appends a message to the session transcript.
	AddMessage(ctx context.Context, sessionID string, message *schema.Message) error

	// LoadTranscript retrieves the stored transcript for a session.
	LoadTranscript(ctx context.Context, sessionID string) (*Transcript, error)

	// ClearTranscript removes the stored transcript for a session.
	ClearTranscript(ctx context.Context, sessionID string) error

	// MessageCount returns the number of stored messages for a session.
	MessageCount(ctx context.Context, sessionID string) (int, error)
}

// Transcript is a loaded session transcript.
type Transcript struct {
	SessionID string
	Messages  []*schema.Message
}
