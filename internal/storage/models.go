package storage

import "time"

// Message roles. Only the user and the assistant write into a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SessionRecord represents one chat session and its model settings.
type SessionRecord struct {
	ID          string // UUID
	Model       string
	Temperature float64
	MaxTokens   int
	CreatedAt   time.Time
}

// MessageRecord represents a single conversation turn. Messages are append-only;
// the only destructive operation is clearing a whole conversation.
type MessageRecord struct {
	ID        string // UUID
	SessionID string // Foreign key to sessions.id
	Seq       int    // Per-session insertion order, starts at 1
	Role      string // RoleUser or RoleAssistant
	Content   string
	CreatedAt time.Time
}
