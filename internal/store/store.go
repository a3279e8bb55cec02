// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
)

// Repository defines the interface for persisting users, medical
// history, and conversation logs.
type Repository interface {
	// CreateUser inserts a new user row. Returns
	// domain.ErrDuplicateUsername if the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) error

	// GetUser retrieves a user by username. Returns nil, nil when the
	// user does not exist.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// SeedMedicalHistory inserts the demo medical record set for a
	// freshly registered user. Which records are inserted is a fixed
	// lookup keyed on the username.
	SeedMedicalHistory(ctx context.Context, username string) error

	// MedicalHistory returns all medical records for a user in
	// storage order.
	MedicalHistory(ctx context.Context, username string) ([]domain.MedicalRecord, error)

	// AppendMessage inserts one conversation entry and returns the
	// store-assigned message ID.
	AppendMessage(ctx context.Context, username, role, content string) (int64, error)

	// ChatHistory returns a user's conversation in ascending ID order.
	// A positive limit caps the result to the most recent limit
	// entries, still returned oldest-first.
	ChatHistory(ctx context.Context, username string, limit int) ([]domain.ChatMessage, error)

	// DeleteExchange removes the user message with the given ID and
	// the single nearest assistant message after it. A no-op when no
	// matching user message exists.
	DeleteExchange(ctx context.Context, username string, userMsgID int64) error

	// Ping verifies database connectivity and returns an error if the
	// database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
