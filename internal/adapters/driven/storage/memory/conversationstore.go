// Package memory provides in-memory implementations of driven stores.
package memory

import (
	"sync"

	"github.com/docsage/docsage/internal/core/domain"
	"github.com/docsage/docsage/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore keeps per-session chat transcripts in memory.
// Sessions are created on first use and live for the process lifetime.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Transcript
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string]domain.Transcript),
	}
}

// History returns a copy of the session's transcript in order.
// An unknown session has an empty history.
func (s *ConversationStore) History(sessionID string) domain.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transcript := s.sessions[sessionID]
	if len(transcript) == 0 {
		return nil
	}
	out := make(domain.Transcript, len(transcript))
	copy(out, transcript)
	return out
}

// Append adds turns to the end of the session's transcript, creating
// the session if needed.
func (s *ConversationStore) Append(sessionID string, turns ...domain.Turn) {
	if len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turns...)
}

// Len returns the number of turns in the session's transcript.
func (s *ConversationStore) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionID])
}

// Sessions returns the IDs of all known sessions.
func (s *ConversationStore) Sessions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
