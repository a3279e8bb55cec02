package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/auth"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/chat"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// WebSocketHandler runs conversation turns over a live socket so the
// frontend gets a "thinking" event while the completion call is in
// flight instead of a silent blocked request.
type WebSocketHandler struct {
	service       *chat.Service
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(service *chat.Service, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{service: service, allowedOrigin: allowedOrigin, isDev: isDev}
}

// wsRequest is a client frame: one conversation turn.
type wsRequest struct {
	Type    string `json:"type"` // "message"
	Content string `json:"content,omitempty"`
}

// wsEvent is a server frame.
type wsEvent struct {
	Type     string         `json:"type"` // "thinking", "exchange", "error"
	Exchange *chat.Exchange `json:"exchange,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ServeHTTP upgrades the connection and serves turns until the client
// disconnects. The session middleware has already resolved the user.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())
	slog.Info("WebSocket chat connection", "username", username, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "username", username)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "username", username)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var req wsRequest
		if err := wsjson.Read(ctx, ws, &req); err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return
			}
			slog.Debug("WebSocket read error", "error", err, "username", username)
			return
		}

		if req.Type != "message" {
			h.writeEvent(ctx, ws, username, wsEvent{Type: "error", Error: "unknown message type"})
			continue
		}

		// Let the client show a spinner while the turn blocks on the
		// completion API.
		h.writeEvent(ctx, ws, username, wsEvent{Type: "thinking"})

		exchange, err := h.service.SendMessage(ctx, username, req.Content)
		if err != nil {
			slog.Error("WebSocket chat turn failed", "username", username, "error", err)
			h.writeEvent(ctx, ws, username, wsEvent{Type: "error", Error: "failed to process message"})
			continue
		}

		h.writeEvent(ctx, ws, username, wsEvent{Type: "exchange", Exchange: exchange})
	}
}

func (h *WebSocketHandler) writeEvent(ctx context.Context, ws *websocket.Conn, username string, ev wsEvent) {
	if err := wsjson.Write(ctx, ws, ev); err != nil {
		slog.Debug("WebSocket write error", "error", err, "username", username)
	}
}

// checkOrigin allows same-origin requests, the configured frontend
// origin, and anything in development.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.allowedOrigin != "" && origin == h.allowedOrigin {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return parsed.Host == r.Host
}
