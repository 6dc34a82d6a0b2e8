package catalog

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/textutil"
)

// Service is the read-only game catalog. It is immutable after
// construction and safe for concurrent use. Returned definitions are
// shared and must not be modified.
type Service struct {
	games []*model.GameDefinition
	byID  map[model.GameID]*model.GameDefinition
}

// New builds a catalog from the given definitions, in order.
// Definitions are validated once here.
func New(defs []*model.GameDefinition) (*Service, error) {
	if err := Validate(defs); err != nil {
		return nil, err
	}
	s := &Service{
		games: make([]*model.GameDefinition, len(defs)),
		byID:  make(map[model.GameID]*model.GameDefinition, len(defs)),
	}
	copy(s.games, defs)
	for _, def := range defs {
		s.byID[def.ID] = def
	}
	return s, nil
}

// Load builds the catalog from the built-in games followed by any games
// found in extraDir (skipped when empty)
func Load(logger *slog.Logger, extraDir string) (*Service, error) {
	defs, err := Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in games: %w", err)
	}

	if extraDir != "" {
		extra, err := ReadDir(extraDir)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded extra games",
			slog.String("dir", extraDir),
			slog.Int("count", len(extra)),
		)
		defs = append(defs, extra...)
	}

	svc, err := New(defs)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", slog.Int("games", len(defs)))
	return svc, nil
}

// Get returns the game with the given id
func (s *Service) Get(id model.GameID) (*model.GameDefinition, error) {
	def, ok := s.byID[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return def, nil
}

// All returns every game in catalog order
func (s *Service) All() []*model.GameDefinition {
	out := make([]*model.GameDefinition, len(s.games))
	copy(out, s.games)
	return out
}

// Search returns the games whose name, a category or a mechanic contains
// query, ignoring case. A blank query matches every game.
func (s *Service) Search(query string) []*model.GameDefinition {
	out := make([]*model.GameDefinition, 0, len(s.games))
	for _, def := range s.games {
		if textutil.ContainsFold(def.Name, query) ||
			textutil.AnyContainsFold(def.Categories, query) ||
			textutil.AnyContainsFold(def.Mechanics, query) {
			out = append(out, def)
		}
	}
	return out
}

// Len returns the number of games in the catalog
func (s *Service) Len() int {
	return len(s.games)
}
