// Package history persists analysis sessions and their results. It is the
// only writer to the underlying key-value space: the session list lives under
// one well-known key, each full result under its own per-session key.
package history

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/veriscope/veriscope/internal/detection"
	"github.com/veriscope/veriscope/internal/kv"
)

const historyKey = "analysis_history"

func resultKey(id string) string {
	return "result_" + id
}

// Store reads and writes the session list and per-session results.
type Store struct {
	kv kv.Store
}

func NewStore(backend kv.Store) *Store {
	return &Store{kv: backend}
}

// LoadAll returns the persisted session list, newest first. Missing or
// malformed data is treated as an empty history, never as an error.
func (s *Store) LoadAll() ([]detection.Session, error) {
	raw, ok, err := s.kv.Get(historyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var sessions []detection.Session
	if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
		log.Warn("discarding malformed session history", "error", err)
		return nil, nil
	}
	return sessions, nil
}

// LoadResult returns the stored result for a session id. The second return is
// false when no result exists; malformed stored data counts as absent.
func (s *Store) LoadResult(id string) (*detection.Result, bool, error) {
	raw, ok, err := s.kv.Get(resultKey(id))
	if err != nil {
		return nil, false, fmt.Errorf("failed to read result for %s: %w", id, err)
	}
	if !ok {
		return nil, false, nil
	}

	var result detection.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Warn("discarding malformed stored result", "session", id, "error", err)
		return nil, false, nil
	}
	return &result, true, nil
}

// SaveSession prepends session to the list and stores its result. The result
// is written before the list so a partial failure never leaves a list entry
// pointing at a missing result.
func (s *Store) SaveSession(session detection.Session, result *detection.Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.kv.Set(resultKey(session.ID), string(resultJSON)); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}

	sessions, err := s.LoadAll()
	if err != nil {
		return err
	}
	updated := append([]detection.Session{session}, sessions...)

	listJSON, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("failed to marshal session list: %w", err)
	}
	if err := s.kv.Set(historyKey, string(listJSON)); err != nil {
		return fmt.Errorf("failed to store session list: %w", err)
	}
	return nil
}

// DeleteSession removes the session with the given id from the list and
// cascade-deletes its result. Deleting an unknown id is a no-op.
func (s *Store) DeleteSession(id string) error {
	sessions, err := s.LoadAll()
	if err != nil {
		return err
	}

	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}

	listJSON, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("failed to marshal session list: %w", err)
	}
	if err := s.kv.Set(historyKey, string(listJSON)); err != nil {
		return fmt.Errorf("failed to store session list: %w", err)
	}
	if err := s.kv.Delete(resultKey(id)); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}
