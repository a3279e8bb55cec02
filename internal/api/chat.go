package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/auth"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/chat"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/store"
	"github.com/go-chi/chi/v5"
)

// ChatHandler handles the authenticated conversation endpoints.
type ChatHandler struct {
	service  *chat.Service
	repo     store.Repository
	sessions *auth.SessionManager
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service *chat.Service, repo store.Repository, sessions *auth.SessionManager) *ChatHandler {
	return &ChatHandler{service: service, repo: repo, sessions: sessions}
}

// RegisterRoutes registers the session-protected routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(h.sessions))
		r.Get("/me", h.GetMe)
		r.Get("/records", h.GetRecords)
		r.Get("/chat/history", h.GetHistory)
		r.Post("/chat/message", h.PostMessage)
		r.Delete("/chat/message/{id}", h.DeleteMessage)
	})
}

// RegisterConfigRoute registers the public config endpoint.
func (h *ChatHandler) RegisterConfigRoute(r chi.Router) {
	r.Get("/api/config", h.GetConfig)
}

// GetConfig returns the feature flags the frontend needs.
func (h *ChatHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"ai_enabled":        h.service.AIEnabled(),
		"guardrail_enabled": h.service.GuardrailEnabled(),
	})
}

// GetMe returns the logged-in identity.
func (h *ChatHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"username": auth.UsernameFromContext(r.Context()),
	})
}

// GetRecords returns the caller's medical history.
func (h *ChatHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	records, err := h.repo.MedicalHistory(r.Context(), username)
	if err != nil {
		slog.Error("failed to load medical history", "username", username, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load records")
		return
	}
	if records == nil {
		records = []domain.MedicalRecord{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

// GetHistory returns the transcript window, oldest-first.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	messages, err := h.service.History(r.Context(), username, limit)
	if err != nil {
		slog.Error("failed to load chat history", "username", username, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type messageRequest struct {
	Content string `json:"content"`
}

// PostMessage runs one conversation turn and returns the exchange.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	var req messageRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exchange, err := h.service.SendMessage(r.Context(), username, req.Content)
	if err != nil {
		slog.Error("chat turn failed", "username", username, "error", err)
		Error(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	JSON(w, http.StatusOK, exchange)
}

// DeleteMessage removes a user message and its paired assistant reply.
func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid message id")
		return
	}

	if err := h.service.DeleteExchange(r.Context(), username, id); err != nil {
		slog.Error("pair deletion failed", "username", username, "id", id, "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete exchange")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
