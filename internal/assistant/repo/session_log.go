package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ecotally-core/server/internal/assistant/model"
	errx "github.com/ecotally-core/server/internal/core/error"
	logx "github.com/ecotally-core/server/pkg/logger"
)

// FileSessionStore appends finished (or abandoned) sessions to a JSON file
// holding a single array of records. The whole file is rewritten on every
// append; sessions end rarely enough that this stays cheap, and the file is
// always valid JSON for whoever reads it next.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Append adds one record to the log file, creating the file when missing. A
// corrupt existing file is an error; the store never overwrites data it could
// not read.
func (f *FileSessionStore) Append(record model.PersistedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.readAll()
	if err != nil {
		return err
	}
	records = append(records, record)

	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session log: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		logx.Error().Err(err).Str("path", f.path).Msg("failed to write session log")
		return errx.WrapStore(err)
	}

	logx.Info().Str("path", f.path).Str("session_id", record.SessionID).Msg("session persisted")
	return nil
}

// Load returns every record in the log file, or an empty slice when the file
// does not exist yet.
func (f *FileSessionStore) Load() ([]model.PersistedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readAll()
}

func (f *FileSessionStore) readAll() ([]model.PersistedRecord, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.PersistedRecord{}, nil
		}
		logx.Error().Err(err).Str("path", f.path).Msg("failed to read session log")
		return nil, errx.WrapStore(err)
	}
	if len(b) == 0 {
		return []model.PersistedRecord{}, nil
	}

	var records []model.PersistedRecord
	if err := json.Unmarshal(b, &records); err != nil {
		logx.Error().Err(err).Str("path", f.path).Msg("session log is not valid JSON")
		return nil, fmt.Errorf("unmarshal session log: %w", err)
	}
	return records, nil
}
