package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "guardian.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return repo
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.CreateUser(ctx, "alice", "hash-1"); err != nil {
		t.Fatalf("first CreateUser: %v", err)
	}

	err := repo.CreateUser(ctx, "alice", "hash-2")
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	// The original hash must be untouched by the failed re-register.
	user, err := repo.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.PasswordHash != "hash-1" {
		t.Errorf("expected original hash to survive, got %q", user.PasswordHash)
	}
}

func TestGetUserMissing(t *testing.T) {
	repo := newTestStore(t)

	user, err := repo.GetUser(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for missing user, got %+v", user)
	}
}

func TestSeedMedicalHistoryDemoAccounts(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		username   string
		wantCount  int
		wantFirst  string
		wantSecond string
	}{
		{"user1", 2, "Xanax (Alprazolam)", "Alcohol + Xanax"},
		{"USER1", 2, "Xanax (Alprazolam)", "Alcohol + Xanax"}, // case-insensitive match
		{"user2", 2, "Metformin", "Alcohol + Metformin"},
		{"someone-else", 1, "General", ""},
	}

	for _, tt := range tests {
		if err := repo.SeedMedicalHistory(ctx, tt.username); err != nil {
			t.Fatalf("SeedMedicalHistory(%q): %v", tt.username, err)
		}

		records, err := repo.MedicalHistory(ctx, tt.username)
		if err != nil {
			t.Fatalf("MedicalHistory(%q): %v", tt.username, err)
		}
		if len(records) != tt.wantCount {
			t.Fatalf("%q: expected %d records, got %d", tt.username, tt.wantCount, len(records))
		}
		if records[0].Substance != tt.wantFirst {
			t.Errorf("%q: expected first substance %q, got %q", tt.username, tt.wantFirst, records[0].Substance)
		}
		if tt.wantSecond != "" && records[1].Substance != tt.wantSecond {
			t.Errorf("%q: expected second substance %q, got %q", tt.username, tt.wantSecond, records[1].Substance)
		}
	}
}

func TestChatHistoryOrderingAndWindow(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	contents := []string{"one", "two", "three", "four", "five"}
	for i, c := range contents {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		if _, err := repo.AppendMessage(ctx, "alice", role, c); err != nil {
			t.Fatalf("AppendMessage(%q): %v", c, err)
		}
	}

	history, err := repo.ChatHistory(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(history))
	}
	for i := range history {
		if history[i].Content != contents[i] {
			t.Errorf("position %d: expected %q, got %q", i, contents[i], history[i].Content)
		}
		if i > 0 && history[i].ID <= history[i-1].ID {
			t.Errorf("IDs not strictly increasing at position %d", i)
		}
	}

	// A window keeps the most recent entries in chronological order.
	window, err := repo.ChatHistory(ctx, "alice", 2)
	if err != nil {
		t.Fatalf("ChatHistory with limit: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("expected 2 messages in window, got %d", len(window))
	}
	if window[0].Content != "four" || window[1].Content != "five" {
		t.Errorf("expected [four five], got [%s %s]", window[0].Content, window[1].Content)
	}
}

func TestAppendMessageIDsAreUnique(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 10; i++ {
		id, err := repo.AppendMessage(ctx, "alice", domain.RoleUser, "hello")
		if err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate message id %d", id)
		}
		seen[id] = true
	}
}

func TestDeleteExchange(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	// alice: user/assistant pair, then a second pair.
	u1, _ := repo.AppendMessage(ctx, "alice", domain.RoleUser, "q1")
	a1, _ := repo.AppendMessage(ctx, "alice", domain.RoleAssistant, "r1")
	u2, _ := repo.AppendMessage(ctx, "alice", domain.RoleUser, "q2")
	a2, _ := repo.AppendMessage(ctx, "alice", domain.RoleAssistant, "r2")

	// bob's log must never be touched by alice's deletes.
	bobID, _ := repo.AppendMessage(ctx, "bob", domain.RoleUser, "bob-q")

	if err := repo.DeleteExchange(ctx, "alice", u1); err != nil {
		t.Fatalf("DeleteExchange: %v", err)
	}

	history, err := repo.ChatHistory(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 remaining messages, got %d", len(history))
	}
	for _, msg := range history {
		if msg.ID == u1 || msg.ID == a1 {
			t.Errorf("message %d should have been deleted", msg.ID)
		}
	}
	if history[0].ID != u2 || history[1].ID != a2 {
		t.Errorf("later exchange was disturbed: got IDs %d, %d", history[0].ID, history[1].ID)
	}

	bobHistory, err := repo.ChatHistory(ctx, "bob", 0)
	if err != nil {
		t.Fatalf("ChatHistory(bob): %v", err)
	}
	if len(bobHistory) != 1 || bobHistory[0].ID != bobID {
		t.Errorf("bob's log was modified: %+v", bobHistory)
	}
}

func TestDeleteExchangeOnlyNearestAssistant(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	u1, _ := repo.AppendMessage(ctx, "alice", domain.RoleUser, "q1")
	_, _ = repo.AppendMessage(ctx, "alice", domain.RoleAssistant, "r1")
	a2, _ := repo.AppendMessage(ctx, "alice", domain.RoleAssistant, "r2-unrelated")

	if err := repo.DeleteExchange(ctx, "alice", u1); err != nil {
		t.Fatalf("DeleteExchange: %v", err)
	}

	history, err := repo.ChatHistory(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != 1 || history[0].ID != a2 {
		t.Fatalf("expected only the unrelated assistant message to remain, got %+v", history)
	}
}

func TestDeleteExchangeNoMatchIsNoop(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	uID, _ := repo.AppendMessage(ctx, "alice", domain.RoleUser, "q1")
	aID, _ := repo.AppendMessage(ctx, "alice", domain.RoleAssistant, "r1")

	// Unknown ID.
	if err := repo.DeleteExchange(ctx, "alice", 9999); err != nil {
		t.Fatalf("DeleteExchange(unknown): %v", err)
	}
	// Assistant ID must not be deletable as a user message, nor drag
	// a later assistant message with it.
	if err := repo.DeleteExchange(ctx, "alice", aID); err != nil {
		t.Fatalf("DeleteExchange(assistant id): %v", err)
	}
	// Right ID, wrong user.
	if err := repo.DeleteExchange(ctx, "mallory", uID); err != nil {
		t.Fatalf("DeleteExchange(wrong user): %v", err)
	}

	history, err := repo.ChatHistory(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("ChatHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected log untouched, got %d messages", len(history))
	}
}
