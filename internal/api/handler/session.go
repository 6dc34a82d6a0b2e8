package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletop-companion/internal/api/apierr"
	"github.com/mcoot/tabletop-companion/internal/api/events"
	"github.com/mcoot/tabletop-companion/internal/api/request"
	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
	"github.com/mcoot/tabletop-companion/internal/services/session"
)

// SessionHandler handles saved sessions and the session being played
type SessionHandler struct {
	engine   *session.Engine
	catalog  *catalog.Service
	profiles *profile.Service
	events   *events.Publisher
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(engine *session.Engine, catalog *catalog.Service, profiles *profile.Service, publisher *events.Publisher) *SessionHandler {
	return &SessionHandler{
		engine:   engine,
		catalog:  catalog,
		profiles: profiles,
		events:   publisher,
	}
}

func (h *SessionHandler) view(s *model.GameSession) response.Session {
	var name string
	if game, err := h.catalog.Get(s.GameID); err == nil {
		name = game.Name
	}
	return response.SessionFromModel(s, name)
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.engine.Summaries(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summaries)
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.GameID == "" {
		WriteError(w, NewInvalidRequestError("game_id is required"))
		return
	}

	players, err := h.resolvePlayers(r.Context(), req.Players)
	if err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.engine.CreateSession(r.Context(), model.GameID(req.GameID), players)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, h.view(s))
}

// resolvePlayers pre-fills seats linked to a profile. Explicit name and
// colour win over the profile's.
func (h *SessionHandler) resolvePlayers(ctx context.Context, inputs []request.PlayerInput) ([]model.Player, error) {
	players := make([]model.Player, len(inputs))
	for i, in := range inputs {
		p := model.Player{ID: model.PlayerID(in.ID)}
		if in.ProfileID != "" {
			prof, err := h.profiles.Get(ctx, model.ProfileID(in.ProfileID))
			if err != nil {
				return nil, err
			}
			p = profile.PlayerFromProfile(prof)
			p.ID = model.PlayerID(in.ID)
		}
		if in.Name != "" {
			p.Name = in.Name
		}
		if in.Color != "" {
			p.Color = in.Color
		}
		players[i] = p
	}
	return players, nil
}

// DeleteAll handles DELETE /api/v1/sessions
func (h *SessionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeleteAllSessions(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	h.events.AllDeleted()
	response.NoContent(w)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.engine.GetSession(r.Context(), model.SessionID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.view(s))
}

// Update handles PATCH /api/v1/sessions/{id}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSessionRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	s, err := h.engine.UpdateSession(r.Context(), model.SessionID(mux.Vars(r)["id"]), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, h.view(s))
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])
	if err := h.engine.DeleteSession(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	h.events.SessionDeleted(id)
	response.NoContent(w)
}

// Events handles GET /api/v1/sessions/{id}/events. The stream opens with
// the session's state and carries every later change made through the API.
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])
	s, err := h.engine.GetSession(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	initial, err := events.Encode(h.view(s))
	if err != nil {
		WriteError(w, err)
		return
	}
	events.Serve(w, r, h.events.Hubs().GetOrCreateHub(id), initial)
}

// Current session

// writeCurrent responds with the current session
func (h *SessionHandler) writeCurrent(w http.ResponseWriter) {
	s := h.engine.Current()
	if s == nil {
		WriteError(w, apierr.NewNoCurrentSessionError())
		return
	}
	response.JSON(w, http.StatusOK, h.view(s))
}

// Publish forwards a committed session change to the session's watchers.
// The "ended" event goes out only on the change that completes the session.
func (h *SessionHandler) Publish(prev, next *model.GameSession) {
	ended := next.IsCompleted() && (prev == nil || !prev.IsCompleted())
	h.events.SessionChanged(h.view(next), ended)
}

// GetCurrent handles GET /api/v1/current
func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	h.writeCurrent(w)
}

// SetCurrent handles PUT /api/v1/current
func (h *SessionHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req request.SetCurrentRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.SessionID == "" {
		WriteError(w, NewInvalidRequestError("session_id is required"))
		return
	}

	if err := h.engine.SetCurrentSession(r.Context(), model.SessionID(req.SessionID)); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// ClearCurrent handles DELETE /api/v1/current
func (h *SessionHandler) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearCurrentSession(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Step returns a handler for a body-less current-session operation such
// as POST /api/v1/current/next-turn
func (h *SessionHandler) Step(op func(*session.Engine, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := op(h.engine, r.Context()); err != nil {
			WriteError(w, err)
			return
		}
		h.writeCurrent(w)
	}
}

// SetPlayer handles PUT /api/v1/current/player
func (h *SessionHandler) SetPlayer(w http.ResponseWriter, r *http.Request) {
	var req request.SetPlayerRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Index == nil {
		WriteError(w, NewInvalidRequestError("index is required"))
		return
	}

	if err := h.engine.SetCurrentPlayer(r.Context(), *req.Index); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// AddScore handles POST /api/v1/current/scores
func (h *SessionHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	var req request.ScoreRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.PlayerID == "" {
		WriteError(w, NewInvalidRequestError("player_id is required"))
		return
	}

	if err := h.engine.UpdatePlayerScore(r.Context(), model.PlayerID(req.PlayerID), req.Category, req.Points); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// UndoScore handles DELETE /api/v1/current/scores/{player_id}/{index}
func (h *SessionHandler) UndoScore(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("index must be a number"))
		return
	}

	if err := h.engine.UndoPlayerScore(r.Context(), model.PlayerID(vars["player_id"]), index); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// SetResource handles PUT /api/v1/current/resources/{player_id}/{resource_id}
func (h *SessionHandler) SetResource(w http.ResponseWriter, r *http.Request) {
	var req request.ResourceRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Value == nil {
		WriteError(w, NewInvalidRequestError("value is required"))
		return
	}

	vars := mux.Vars(r)
	if err := h.engine.UpdatePlayerResource(r.Context(), model.PlayerID(vars["player_id"]), vars["resource_id"], *req.Value); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// SetPhase handles PUT /api/v1/current/phase
func (h *SessionHandler) SetPhase(w http.ResponseWriter, r *http.Request) {
	var req request.PhaseRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.engine.SetPhase(r.Context(), req.Phase); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// SetNotes handles PUT /api/v1/current/notes
func (h *SessionHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req request.NotesRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.engine.SetNotes(r.Context(), req.Notes); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}

// End handles POST /api/v1/current/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	var req request.EndSessionRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			WriteError(w, err)
			return
		}
	}

	if err := h.engine.EndSession(r.Context(), model.PlayerID(req.Winner)); err != nil {
		WriteError(w, err)
		return
	}
	h.writeCurrent(w)
}
