package state

import (
	"fmt"
	"sync"
	"time"
)

// historyLimit caps the number of recent inputs kept.
const historyLimit = 20

// Submission is one completed presentation.
type Submission struct {
	Input    string
	Mode     string
	Fallback bool
	At       time.Time
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Last                Submission
	HasLast             bool
	History             []string // most recent first
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has failed for multiple submissions in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Record stores sub as the latest submission. A non-nil err marks it as a
// failed fetch and bumps the failure streak; success resets the streak.
func (s *Store) Record(sub Submission, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.At.IsZero() {
		sub.At = time.Now()
	}
	s.snapshot.Last = sub
	s.snapshot.HasLast = true
	s.snapshot.History = pushHistory(s.snapshot.History, sub.Input)

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.History = append([]string(nil), s.snapshot.History...)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func pushHistory(history []string, input string) []string {
	if input == "" {
		return history
	}
	out := make([]string, 0, len(history)+1)
	out = append(out, input)
	for _, h := range history {
		if h != input {
			out = append(out, h)
		}
	}
	if len(out) > historyLimit {
		out = out[:historyLimit]
	}
	return out
}
