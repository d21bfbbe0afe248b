package models

import (
	"time"
)

// Message roles accepted on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry of a caller-supplied conversation. It is transient:
// messages arrive in requests and are sent upstream, only Turns are persisted.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is one persisted message in a project's conversation log.
// Turns are append-only: they are created exactly once and never mutated.
// Ordering within a project is by CreatedAt ascending.
type Turn struct {
	ID        string    `json:"id" db:"id"`
	ProjectID string    `json:"project_id" db:"project_id"`
	Role      string    `json:"role" db:"role"` // "user" or "assistant"
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
