package domain

// Role identifies who produced a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	// Role is who produced the turn.
	Role Role

	// Content is the message text.
	Content string
}

// Transcript is the ordered history of one session.
// Turns only ever get appended; completed exchanges are never rewritten.
type Transcript []Turn
