package events

import (
	"log/slog"

	json "github.com/goccy/go-json"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
)

// Event names
const (
	EventSession = "session"
	EventEnded   = "ended"
	EventDeleted = "deleted"
)

// Publisher turns session changes into events for watching clients
type Publisher struct {
	hubs   *HubManager
	logger *slog.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(hubs *HubManager, logger *slog.Logger) *Publisher {
	return &Publisher{
		hubs:   hubs,
		logger: logger.With(slog.String("component", "event-publisher")),
	}
}

// Hubs returns the hub manager clients attach to
func (p *Publisher) Hubs() *HubManager {
	return p.hubs
}

// Encode renders a session view as event data
func Encode(view response.Session) (string, error) {
	data, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SessionChanged sends the new state of a session to its watchers. ended
// marks the change that completed the session and adds an "ended" event.
func (p *Publisher) SessionChanged(view response.Session, ended bool) {
	hub := p.hubs.GetHub(model.SessionID(view.ID))
	if hub == nil {
		return
	}

	data, err := Encode(view)
	if err != nil {
		p.logger.Error("failed to encode session event",
			slog.String("session_id", view.ID),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventSession, data)
	if ended {
		hub.BroadcastEvent(EventEnded, view.Winner)
	}
}

// SessionDeleted tells watchers the session is gone and closes its hub
func (p *Publisher) SessionDeleted(id model.SessionID) {
	hub := p.hubs.GetHub(id)
	if hub == nil {
		return
	}
	hub.BroadcastEvent(EventDeleted, string(id))
	p.hubs.RemoveHub(id)
}

// AllDeleted closes every hub
func (p *Publisher) AllDeleted() {
	p.hubs.CloseAll()
}

// Close ends every open stream so the server can shut down
func (p *Publisher) Close() {
	p.hubs.CloseAll()
}
