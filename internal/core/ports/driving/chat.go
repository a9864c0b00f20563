package driving

import "context"

// ChatService answers questions against the indexed corpus, keeping
// per-session conversation history.
type ChatService interface {
	// Answer runs the reformulate-retrieve-synthesise pipeline for one
	// question and records the exchange in the session's transcript.
	// Concurrent calls for the same session are serialised.
	Answer(ctx context.Context, sessionID, question string) (string, error)
}
