package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletop-companion/internal/api/events"
	"github.com/mcoot/tabletop-companion/internal/api/handler"
	"github.com/mcoot/tabletop-companion/internal/api/middleware"
	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
	"github.com/mcoot/tabletop-companion/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger   *slog.Logger
	Catalog  *catalog.Service
	Engine   *session.Engine
	Profiles *profile.Service

	// Events publishes session changes to streaming clients (optional)
	Events *events.Publisher
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	catalogHandler := handler.NewCatalogHandler(cfg.Catalog)
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.NewPublisher(events.NewHubManager(cfg.Logger), cfg.Logger)
	}
	sessionHandler := handler.NewSessionHandler(cfg.Engine, cfg.Catalog, cfg.Profiles, publisher)
	cfg.Engine.OnCommit(sessionHandler.Publish)
	profileHandler := handler.NewProfileHandler(cfg.Profiles)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Game catalog
	api.HandleFunc("/games", catalogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", catalogHandler.Get).Methods(http.MethodGet)

	// Saved sessions
	api.HandleFunc("/sessions", sessionHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions", sessionHandler.DeleteAll).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", sessionHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/events", sessionHandler.Events).Methods(http.MethodGet)

	// The session being played
	current := api.PathPrefix("/current").Subrouter()
	current.HandleFunc("", sessionHandler.GetCurrent).Methods(http.MethodGet)
	current.HandleFunc("", sessionHandler.SetCurrent).Methods(http.MethodPut)
	current.HandleFunc("", sessionHandler.ClearCurrent).Methods(http.MethodDelete)
	current.HandleFunc("/next-player", sessionHandler.Step((*session.Engine).NextPlayer)).Methods(http.MethodPost)
	current.HandleFunc("/advance-turn", sessionHandler.Step((*session.Engine).AdvanceTurn)).Methods(http.MethodPost)
	current.HandleFunc("/previous-turn", sessionHandler.Step((*session.Engine).PreviousTurn)).Methods(http.MethodPost)
	current.HandleFunc("/next-turn", sessionHandler.Step((*session.Engine).NextTurn)).Methods(http.MethodPost)
	current.HandleFunc("/advance-round", sessionHandler.Step((*session.Engine).AdvanceRound)).Methods(http.MethodPost)
	current.HandleFunc("/next-phase", sessionHandler.Step((*session.Engine).NextPhase)).Methods(http.MethodPost)
	current.HandleFunc("/previous-phase", sessionHandler.Step((*session.Engine).PreviousPhase)).Methods(http.MethodPost)
	current.HandleFunc("/player", sessionHandler.SetPlayer).Methods(http.MethodPut)
	current.HandleFunc("/scores", sessionHandler.AddScore).Methods(http.MethodPost)
	current.HandleFunc("/scores/{player_id}/{index}", sessionHandler.UndoScore).Methods(http.MethodDelete)
	current.HandleFunc("/resources/{player_id}/{resource_id}", sessionHandler.SetResource).Methods(http.MethodPut)
	current.HandleFunc("/phase", sessionHandler.SetPhase).Methods(http.MethodPut)
	current.HandleFunc("/notes", sessionHandler.SetNotes).Methods(http.MethodPut)
	current.HandleFunc("/end", sessionHandler.End).Methods(http.MethodPost)

	// Player profiles
	api.HandleFunc("/profiles", profileHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/profiles", profileHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/profiles/{id}", profileHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}", profileHandler.Update).Methods(http.MethodPatch)
	api.HandleFunc("/profiles/{id}", profileHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
