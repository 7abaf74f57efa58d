package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/dominotrain/internal/api/handler"
	"github.com/mcoot/dominotrain/internal/api/middleware"
	"github.com/mcoot/dominotrain/internal/push"
	"github.com/mcoot/dominotrain/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	GameController game.ControllerInterface
	HubManager     *push.HubManager
	OriginPatterns []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.GameController)
	streamHandler := handler.NewStreamHandler(cfg.GameController, cfg.HubManager, cfg.OriginPatterns, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.GameController, cfg.HubManager)

	// Create middleware
	identityMiddleware := middleware.Identity()
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(recoveryMiddleware)

	// Health check endpoint (no identity)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	// Finished games
	records := api.PathPrefix("/records").Subrouter()
	records.Use(identityMiddleware)
	records.HandleFunc("", sessionHandler.Records).Methods(http.MethodGet)
	records.HandleFunc("/{id}", sessionHandler.Record).Methods(http.MethodGet)

	// Session routes (all require a player id)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(identityMiddleware)
	sessions.HandleFunc("", sessionHandler.Create).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/join", sessionHandler.Join).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/start", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/leave", sessionHandler.Leave).Methods(http.MethodPost)

	// Game requests
	sessions.HandleFunc("/{id}/draw", sessionHandler.Draw).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/select", sessionHandler.Select).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/end-turn", sessionHandler.EndTurn).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/undo", sessionHandler.Undo).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/ready", sessionHandler.Ready).Methods(http.MethodPost)

	// Push channels
	sessions.HandleFunc("/{id}/events", streamHandler.Events).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/ws", streamHandler.WebSocket).Methods(http.MethodGet)

	return r
}
