package model

// PlayerID identifies a player within a single session
type PlayerID string

// Player is a session-scoped snapshot of a participant
type Player struct {
	ID    PlayerID `json:"id"`
	Name  string   `json:"name"`
	Color string   `json:"color"`

	// ProfileID links the snapshot to a reusable profile for stats roll-up.
	// Deleting the profile leaves the snapshot untouched.
	ProfileID ProfileID `json:"profile_id,omitempty"`
}

// PlayerColor is one of the palette colours offered at setup
type PlayerColor string

const (
	ColorRed    PlayerColor = "red"
	ColorBlue   PlayerColor = "blue"
	ColorGreen  PlayerColor = "green"
	ColorYellow PlayerColor = "yellow"
	ColorPurple PlayerColor = "purple"
	ColorOrange PlayerColor = "orange"
	ColorPink   PlayerColor = "pink"
	ColorTeal   PlayerColor = "teal"
	ColorWhite  PlayerColor = "white"
	ColorBlack  PlayerColor = "black"
)

// PlayerColors lists the palette in display order
var PlayerColors = []PlayerColor{
	ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple,
	ColorOrange, ColorPink, ColorTeal, ColorWhite, ColorBlack,
}

var playerColorHex = map[PlayerColor]string{
	ColorRed:    "#E53935",
	ColorBlue:   "#1E88E5",
	ColorGreen:  "#43A047",
	ColorYellow: "#FDD835",
	ColorPurple: "#8E24AA",
	ColorOrange: "#FB8C00",
	ColorPink:   "#D81B60",
	ColorTeal:   "#00897B",
	ColorWhite:  "#F5F5F5",
	ColorBlack:  "#424242",
}

// Hex returns the display colour, or "" for colours outside the palette
func (c PlayerColor) Hex() string {
	return playerColorHex[c]
}

// DefaultColor picks a palette colour for the player at the given seat
func DefaultColor(seat int) PlayerColor {
	if seat < 0 {
		seat = 0
	}
	return PlayerColors[seat%len(PlayerColors)]
}
