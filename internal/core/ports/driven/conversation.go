package driven

import "github.com/docsage/docsage/internal/core/domain"

// ConversationStore maps a session ID to its transcript.
// Transcripts are created on first reference and live for the
// process lifetime. Implementations must be safe for concurrent use
// and must keep sessions isolated from one another.
type ConversationStore interface {
	// History returns a copy of the transcript for the session,
	// creating an empty one if the session is new.
	History(sessionID string) domain.Transcript

	// Append adds turns to the session's transcript in order.
	Append(sessionID string, turns ...domain.Turn)

	// Len returns the number of turns recorded for the session.
	Len(sessionID string) int
}
