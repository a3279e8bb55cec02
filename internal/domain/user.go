// Package domain contains core domain types for the Guardian AI application.
package domain

import (
	"time"
)

// User represents a registered account. The username doubles as the
// primary key across all three stores.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
