// Package auth provides credential verification and login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 4
)

// Service handles registration and authentication against the user store.
type Service struct {
	repo store.Repository
	log  *slog.Logger
}

// NewService creates a new credential service.
func NewService(repo store.Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Register validates the credentials, stores a bcrypt digest of the
// password, and seeds the new user's demo medical history.
func (s *Service) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.CreateUser(ctx, username, string(hash)); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}

	if err := s.repo.SeedMedicalHistory(ctx, username); err != nil {
		// The account exists; a failed seed leaves it with an empty
		// history rather than failing registration.
		s.log.Error("failed to seed medical history", "username", username, "error", err)
	}

	s.log.Info("user registered", "username", username)
	return nil
}

// Authenticate verifies a username/password pair. Missing users and
// wrong passwords both return domain.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if user == nil {
		// Burn a comparison anyway so missing users take roughly the
		// same time as wrong passwords.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
		return domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func validateCredentials(username, password string) error {
	if username != strings.TrimSpace(username) {
		return fmt.Errorf("username must not have leading or trailing spaces")
	}
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}
