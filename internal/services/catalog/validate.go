package catalog

import (
	"fmt"
	"strings"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// Validate checks a set of definitions as a whole. Every violation is
// reported as ErrInvalidGameDefinition.
func Validate(defs []*model.GameDefinition) error {
	seen := make(map[model.GameID]struct{}, len(defs))
	for _, def := range defs {
		if def == nil {
			return fmt.Errorf("%w: nil definition", model.ErrInvalidGameDefinition)
		}
		if err := validateDefinition(def); err != nil {
			return fmt.Errorf("%w: %s: %s", model.ErrInvalidGameDefinition, def.ID, err)
		}
		if _, dup := seen[def.ID]; dup {
			return fmt.Errorf("%w: duplicate game id %q", model.ErrInvalidGameDefinition, def.ID)
		}
		seen[def.ID] = struct{}{}
	}
	return nil
}

type definitionError string

func (e definitionError) Error() string { return string(e) }

func validateDefinition(def *model.GameDefinition) error {
	if strings.TrimSpace(string(def.ID)) == "" {
		return definitionError("missing id")
	}
	if strings.TrimSpace(def.Name) == "" {
		return definitionError("missing name")
	}
	if def.PlayerCount.Min < 1 || def.PlayerCount.Min > def.PlayerCount.Max {
		return definitionError(fmt.Sprintf("invalid player count %d-%d", def.PlayerCount.Min, def.PlayerCount.Max))
	}
	if def.PlayTime.Min < 0 || def.PlayTime.Min > def.PlayTime.Max {
		return definitionError(fmt.Sprintf("invalid play time %d-%d", def.PlayTime.Min, def.PlayTime.Max))
	}

	categories := make([]named, len(def.Scoring.Categories))
	for i, c := range def.Scoring.Categories {
		if c.Step < 0 {
			return definitionError(fmt.Sprintf("scoring category %q: negative step", c.ID))
		}
		if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
			return definitionError(fmt.Sprintf("scoring category %q: min above max", c.ID))
		}
		categories[i] = named{c.ID, c.Name}
	}
	if err := uniqueNamed("scoring category", categories); err != nil {
		return err
	}

	resources := make([]named, len(def.Resources))
	for i, r := range def.Resources {
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return definitionError(fmt.Sprintf("resource %q: min above max", r.ID))
		}
		if r.Min != nil && r.StartingValue < *r.Min {
			return definitionError(fmt.Sprintf("resource %q: starting value below min", r.ID))
		}
		if r.Max != nil && r.StartingValue > *r.Max {
			return definitionError(fmt.Sprintf("resource %q: starting value above max", r.ID))
		}
		resources[i] = named{r.ID, r.Name}
	}
	if err := uniqueNamed("resource", resources); err != nil {
		return err
	}

	phases := make([]named, len(def.Phases))
	for i, p := range def.Phases {
		phases[i] = named{p.ID, p.Name}
	}
	return uniqueNamed("phase", phases)
}

type named struct {
	id   string
	name string
}

func uniqueNamed(kind string, items []named) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.id) == "" {
			return definitionError(kind + " with missing id")
		}
		if strings.TrimSpace(it.name) == "" {
			return definitionError(fmt.Sprintf("%s %q: missing name", kind, it.id))
		}
		if _, dup := seen[it.id]; dup {
			return definitionError(fmt.Sprintf("duplicate %s id %q", kind, it.id))
		}
		seen[it.id] = struct{}{}
	}
	return nil
}
