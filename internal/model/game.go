package model

// GameID uniquely identifies a game definition in the catalog
type GameID string

// Range is an inclusive integer range
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether n lies within the range
func (r Range) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// GameDefinition is the static, read-only description of a board game
type GameDefinition struct {
	ID         GameID  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Publisher  string  `json:"publisher,omitempty" yaml:"publisher"`
	BGGID      int     `json:"bgg_id,omitempty" yaml:"bgg_id"`
	Complexity float64 `json:"complexity,omitempty" yaml:"complexity"`

	PlayerCount Range `json:"player_count" yaml:"player_count"`
	PlayTime    Range `json:"play_time" yaml:"play_time"` // minutes

	Categories []string `json:"categories,omitempty" yaml:"categories"`
	Mechanics  []string `json:"mechanics,omitempty" yaml:"mechanics"`

	// Rule content, opaque to the core
	Rules          []RuleSection  `json:"rules,omitempty" yaml:"rules"`
	QuickReference []QuickRefCard `json:"quick_reference,omitempty" yaml:"quick_reference"`
	FAQ            []FAQItem      `json:"faq,omitempty" yaml:"faq"`
	TurnStructure  []TurnStep     `json:"turn_structure,omitempty" yaml:"turn_structure"`
	Phases         []Phase        `json:"phases,omitempty" yaml:"phases"`

	// Companion configuration
	Scoring   ScoringConfig        `json:"scoring" yaml:"scoring"`
	Resources []ResourceDefinition `json:"resources,omitempty" yaml:"resources"`
}

// RuleSection is one section of a rulebook (markdown content)
type RuleSection struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Order       int           `json:"order" yaml:"order"`
	Content     string        `json:"content" yaml:"content"`
	Tags        []string      `json:"tags,omitempty" yaml:"tags"`
	Subsections []RuleSection `json:"subsections,omitempty" yaml:"subsections"`
}

// QuickRefCard is a short at-a-glance reference card
type QuickRefCard struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	Content  string `json:"content" yaml:"content"`
}

// FAQItem is a frequently asked rules question
type FAQItem struct {
	ID       string   `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Tags     []string `json:"tags,omitempty" yaml:"tags"`
	Source   string   `json:"source,omitempty" yaml:"source"`
}

// TurnStep is one step of a player's turn
type TurnStep struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Order       int      `json:"order" yaml:"order"`
	Optional    bool     `json:"optional,omitempty" yaml:"optional"`
	Actions     []string `json:"actions,omitempty" yaml:"actions"`
}

// Phase is a named stage of a game's round structure
type Phase struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Order       int    `json:"order" yaml:"order"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// ScoringConfig describes how points are recorded for a game
type ScoringConfig struct {
	Categories       []ScoringCategory `json:"categories" yaml:"categories"`
	FinalScoringOnly bool              `json:"final_scoring_only" yaml:"final_scoring_only"`
	TrackDuringGame  bool              `json:"track_during_game" yaml:"track_during_game"`
}

// ScoringCategory is a named bucket of points
type ScoringCategory struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
	Step        int    `json:"step,omitempty" yaml:"step"` // 0 means 1
	Min         *int   `json:"min,omitempty" yaml:"min"`
	Max         *int   `json:"max,omitempty" yaml:"max"`
}

// StepOrDefault returns the increment used by score steppers
func (c ScoringCategory) StepOrDefault() int {
	if c.Step <= 0 {
		return 1
	}
	return c.Step
}

// ResourceDefinition is a per-player counter defined by a game
type ResourceDefinition struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Color         string `json:"color,omitempty" yaml:"color"`
	StartingValue int    `json:"starting_value" yaml:"starting_value"`
	Min           *int   `json:"min,omitempty" yaml:"min"`
	Max           *int   `json:"max,omitempty" yaml:"max"`
	PerPlayer     bool   `json:"per_player" yaml:"per_player"`
}

// SupportsPlayerCount reports whether n players may play this game
func (g *GameDefinition) SupportsPlayerCount(n int) bool {
	return g.PlayerCount.Contains(n)
}

// HasResources reports whether the game defines any resource counters
func (g *GameDefinition) HasResources() bool {
	return len(g.Resources) > 0
}

// Phase returns the phase with the given id, or nil
func (g *GameDefinition) Phase(id string) *Phase {
	for i := range g.Phases {
		if g.Phases[i].ID == id {
			return &g.Phases[i]
		}
	}
	return nil
}

// ScoringCategory returns the scoring category with the given id, or nil
func (g *GameDefinition) ScoringCategory(id string) *ScoringCategory {
	for i := range g.Scoring.Categories {
		if g.Scoring.Categories[i].ID == id {
			return &g.Scoring.Categories[i]
		}
	}
	return nil
}

// Resource returns the resource definition with the given id, or nil
func (g *GameDefinition) Resource(id string) *ResourceDefinition {
	for i := range g.Resources {
		if g.Resources[i].ID == id {
			return &g.Resources[i]
		}
	}
	return nil
}

// StartingResources returns the seeded resource counters for one player
func (g *GameDefinition) StartingResources() map[string]int {
	values := make(map[string]int, len(g.Resources))
	for _, r := range g.Resources {
		values[r.ID] = r.StartingValue
	}
	return values
}
