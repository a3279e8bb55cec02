package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/llm"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/store"
)

// unavailableMessage is persisted as the assistant reply when the
// completion call fails. The user message stays in the log, so
// retrying is a normal new turn.
const unavailableMessage = "I couldn't reach the analysis service just now. " +
	"Your message has been saved — please try again in a moment."

// notConfiguredMessage is persisted when no completion client is
// configured at all (missing API key at startup).
const notConfiguredMessage = "The AI analysis service is not configured on this server. " +
	"Ask the administrator to set the completion API key."

// Exchange is one completed turn: the persisted user message and the
// persisted assistant reply.
type Exchange struct {
	UserMessage      domain.ChatMessage `json:"user_message"`
	AssistantMessage domain.ChatMessage `json:"assistant_message"`
}

// Service orchestrates conversation turns for authenticated users.
type Service struct {
	repo         store.Repository
	completer    llm.Completer // nil when AI is disabled
	guardrail    *Guardrail
	historyLimit int
	log          *slog.Logger
}

// NewService creates the conversation service. completer may be nil,
// in which case every turn is answered with a configuration notice.
func NewService(repo store.Repository, completer llm.Completer, guardrail *Guardrail, historyLimit int, log *slog.Logger) *Service {
	return &Service{
		repo:         repo,
		completer:    completer,
		guardrail:    guardrail,
		historyLimit: historyLimit,
		log:          log,
	}
}

// AIEnabled reports whether a completion client is configured.
func (s *Service) AIEnabled() bool {
	return s.completer != nil
}

// GuardrailEnabled reports whether the topical guardrail is active.
func (s *Service) GuardrailEnabled() bool {
	return s.guardrail.Enabled()
}

// SendMessage runs one turn: persist the user message, gate it through
// the guardrail, call the completion API when permitted, and persist
// the assistant reply. Completion failures degrade into a persisted
// assistant-visible notice instead of failing the turn.
func (s *Service) SendMessage(ctx context.Context, username, input string) (*Exchange, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	// Snapshot the history before appending so the prompt carries the
	// new input exactly once, as the trailing user message.
	history, err := s.repo.ChatHistory(ctx, username, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	userID, err := s.repo.AppendMessage(ctx, username, domain.RoleUser, input)
	if err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	reply := s.replyFor(ctx, username, history, input)

	assistantID, err := s.repo.AppendMessage(ctx, username, domain.RoleAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	now := time.Now()
	return &Exchange{
		UserMessage:      domain.ChatMessage{ID: userID, Username: username, Role: domain.RoleUser, Content: input, CreatedAt: now},
		AssistantMessage: domain.ChatMessage{ID: assistantID, Username: username, Role: domain.RoleAssistant, Content: reply, CreatedAt: now},
	}, nil
}

// replyFor decides what the assistant says: the guardrail refusal, a
// configuration notice, the completion reply, or a failure notice.
func (s *Service) replyFor(ctx context.Context, username string, history []domain.ChatMessage, input string) string {
	if !s.guardrail.Permits(input) {
		s.log.Info("guardrail blocked message", "username", username)
		return RefusalMessage
	}

	if s.completer == nil {
		return notConfiguredMessage
	}

	records, err := s.repo.MedicalHistory(ctx, username)
	if err != nil {
		s.log.Error("failed to load medical history", "username", username, "error", err)
		return unavailableMessage
	}

	reply, err := s.completer.Complete(ctx, BuildPrompt(records, history, input))
	if err != nil {
		s.log.Error("completion call failed", "username", username, "error", err)
		return unavailableMessage
	}
	return reply
}

// History returns the user's transcript window, oldest-first. limit <= 0
// falls back to the configured window.
func (s *Service) History(ctx context.Context, username string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = s.historyLimit
	}
	return s.repo.ChatHistory(ctx, username, limit)
}

// DeleteExchange removes a user message and its paired assistant reply.
func (s *Service) DeleteExchange(ctx context.Context, username string, userMsgID int64) error {
	return s.repo.DeleteExchange(ctx, username, userMsgID)
}
