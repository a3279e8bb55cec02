//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/auth"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/chat"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/llm"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/store"
	"github.com/go-chi/chi/v5"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

// newTestRouter wires a full API over a temp database and a mock
// completion client.
func newTestRouter(t *testing.T, mock *llm.MockCompleter) http.Handler {
	t.Helper()

	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "guardian.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := auth.NewSessionManager()
	authService := auth.NewService(repo, log)
	chatService := chat.NewService(repo, mock, chat.NewGuardrail(true), 40, log)

	r := chi.NewRouter()
	NewAuthHandler(authService, sessions, true).RegisterRoutes(r)
	chatHandler := NewChatHandler(chatService, repo, sessions)
	chatHandler.RegisterRoutes(r)
	chatHandler.RegisterConfigRoute(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func loginCookies(t *testing.T, router http.Handler, username, password string) []*http.Cookie {
	t.Helper()
	w := postJSON(t, router, "/api/auth/login", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func TestRegisterLoginFlow(t *testing.T) {
	router := newTestRouter(t, &llm.MockCompleter{Reply: "ok"})

	w := postJSON(t, router, "/api/auth/register", `{"username":"user1","password":"hunter2"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	// Duplicate registration is a conflict.
	w = postJSON(t, router, "/api/auth/register", `{"username":"user1","password":"other"}`, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register: expected 409, got %d", w.Code)
	}

	// Wrong password is a generic 401.
	w = postJSON(t, router, "/api/auth/login", `{"username":"user1","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: expected 401, got %d", w.Code)
	}

	cookies := loginCookies(t, router, "user1", "hunter2")

	// /api/me resolves the session.
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/me: expected 200, got %d", rec.Code)
	}
	var me map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode /api/me: %v", err)
	}
	if me["username"] != "user1" {
		t.Errorf("expected username user1, got %q", me["username"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router := newTestRouter(t, &llm.MockCompleter{Reply: "ok"})

	for _, path := range []string{"/api/me", "/api/records", "/api/chat/history"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without session: expected 401, got %d", path, w.Code)
		}
	}
}

func TestChatTurnEndToEnd(t *testing.T) {
	mock := &llm.MockCompleter{Reply: "I am accessing your encrypted medical records..."}
	router := newTestRouter(t, mock)

	if w := postJSON(t, router, "/api/auth/register", `{"username":"user1","password":"hunter2"}`, nil); w.Code != http.StatusCreated {
		t.Fatalf("register: got %d", w.Code)
	}
	cookies := loginCookies(t, router, "user1", "hunter2")

	// Seeded records are visible.
	r := httptest.NewRequest(http.MethodGet, "/api/records", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	var recordsResp struct {
		Records []domain.MedicalRecord `json:"records"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&recordsResp); err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(recordsResp.Records) != 2 {
		t.Fatalf("expected 2 seeded records for user1, got %d", len(recordsResp.Records))
	}

	// One turn.
	w := postJSON(t, router, "/api/chat/message", `{"content":"I drank and feel panicky"}`, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("chat turn: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var exchange chat.Exchange
	if err := json.NewDecoder(w.Body).Decode(&exchange); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if exchange.AssistantMessage.Content != mock.Reply {
		t.Errorf("unexpected assistant reply: %q", exchange.AssistantMessage.Content)
	}
	if len(mock.Prompts) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(mock.Prompts))
	}
	if !strings.Contains(mock.Prompts[0][0].Content, "Alcohol + Xanax") {
		t.Error("prompt missing seeded interaction record")
	}

	// History now holds [user, assistant].
	r = httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	var historyResp struct {
		Messages []domain.ChatMessage `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&historyResp); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(historyResp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(historyResp.Messages))
	}
	if historyResp.Messages[0].Role != domain.RoleUser || historyResp.Messages[1].Role != domain.RoleAssistant {
		t.Errorf("expected [user assistant], got [%s %s]", historyResp.Messages[0].Role, historyResp.Messages[1].Role)
	}

	// Delete the exchange.
	r = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/chat/message/%d", exchange.UserMessage.ID), nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete exchange: expected 200, got %d", rec.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/chat/history", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, r)
	historyResp.Messages = nil
	if err := json.NewDecoder(rec.Body).Decode(&historyResp); err != nil {
		t.Fatalf("decode history after delete: %v", err)
	}
	if len(historyResp.Messages) != 0 {
		t.Errorf("expected empty history after pair deletion, got %d messages", len(historyResp.Messages))
	}
}

func TestGuardrailBlocksOffTopic(t *testing.T) {
	mock := &llm.MockCompleter{Reply: "should not appear"}
	router := newTestRouter(t, mock)

	if w := postJSON(t, router, "/api/auth/register", `{"username":"someone","password":"hunter2"}`, nil); w.Code != http.StatusCreated {
		t.Fatalf("register: got %d", w.Code)
	}
	cookies := loginCookies(t, router, "someone", "hunter2")

	w := postJSON(t, router, "/api/chat/message", `{"content":"what's the weather"}`, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("chat turn: expected 200, got %d", w.Code)
	}

	var exchange chat.Exchange
	if err := json.NewDecoder(w.Body).Decode(&exchange); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if exchange.AssistantMessage.Content != chat.RefusalMessage {
		t.Errorf("expected the fixed refusal, got %q", exchange.AssistantMessage.Content)
	}
	if len(mock.Prompts) != 0 {
		t.Error("blocked input must never reach the completion client")
	}
}

func TestGetConfig(t *testing.T) {
	router := newTestRouter(t, &llm.MockCompleter{Reply: "ok"})

	r := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var cfg map[string]bool
	if err := json.NewDecoder(w.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if !cfg["ai_enabled"] || !cfg["guardrail_enabled"] {
		t.Errorf("unexpected config flags: %v", cfg)
	}
}
