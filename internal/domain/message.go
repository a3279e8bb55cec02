package domain

import (
	"time"
)

// Message roles. Matching the wire roles of the completion API keeps
// the transcript usable as-is when assembling a prompt.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one entry of a user's conversation log.
//
// ID is a store-assigned, monotonically increasing sequence number and
// is the identifier pair deletion operates on. CreatedAt is kept for
// display only; ordering always keys on ID so that two tabs appending
// in the same instant cannot collide.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
