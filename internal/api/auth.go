package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/auth"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize bounds credential and chat request bodies (64KB).
const maxRequestBodySize = 64 << 10

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	service  *auth.Service
	sessions *auth.SessionManager
	isDev    bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *auth.Service, sessions *auth.SessionManager, isDev bool) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions, isDev: isDev}
}

// RegisterRoutes registers the public auth routes. Static paths so
// they take precedence over the mounted session-protected subtree.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/logout", h.Logout)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// Register creates an account and seeds its demo medical history.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	err := h.service.Register(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		JSON(w, http.StatusCreated, map[string]string{
			"status":  "ok",
			"message": "Registration successful! Your 24-month medical history has been synced.",
		})
	case errors.Is(err, domain.ErrDuplicateUsername):
		Error(w, http.StatusConflict, "Username already exists.")
	default:
		slog.Error("registration failed", "username", req.Username, "error", err)
		Error(w, http.StatusBadRequest, err.Error())
	}
}

// Login authenticates and establishes a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := h.service.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			Error(w, http.StatusUnauthorized, "Invalid Username or Password")
			return
		}
		slog.Error("login failed", "username", req.Username, "error", err)
		Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	token := h.sessions.Create(req.Username)
	auth.SetCookie(w, token, h.isDev)
	JSON(w, http.StatusOK, map[string]string{"status": "ok", "username": req.Username})
}

// Logout discards the session. Safe to call while logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.SessionCookieName); err == nil {
		h.sessions.Delete(c.Value)
	}
	auth.ClearCookie(w, h.isDev)
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
