// Guardian AI - medication-interaction chat server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/api"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/auth"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/chat"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/config"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/llm"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/middleware"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/store"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// Initialize the completion client. A missing key is a
	// configuration problem reported once at startup; the server runs
	// with AI disabled rather than failing every turn.
	var completer llm.Completer
	if client, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel); err != nil {
		slog.Warn("AI features disabled", "error", err)
	} else {
		completer = client
		slog.Info("Completion client initialized", "model", cfg.GroqModel)
	}

	// Initialize services.
	sessions := auth.NewSessionManager()
	authService := auth.NewService(repo, logger)
	chatService := chat.NewService(repo, completer, chat.NewGuardrail(cfg.GuardrailEnabled), cfg.HistoryLimit, logger)

	// Initialize handlers.
	authHandler := api.NewAuthHandler(authService, sessions, cfg.IsDevelopment())
	chatHandler := api.NewChatHandler(chatService, repo, sessions)
	wsHandler := api.NewWebSocketHandler(chatService, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	// Public routes.
	authHandler.RegisterRoutes(r)
	chatHandler.RegisterConfigRoute(r)

	// Session-protected routes.
	chatHandler.RegisterRoutes(r)

	// WebSocket endpoint (session cookie flows on the handshake).
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(sessions))
		r.Get("/ws/chat", wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Create server. No WriteTimeout: a chat turn blocks on the
	// completion API and the websocket stays open indefinitely.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
