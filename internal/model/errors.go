package model

import "errors"

// Common errors used across the application
var (
	// Catalog errors
	ErrGameNotFound          = errors.New("game not found")
	ErrInvalidGameDefinition = errors.New("invalid game definition")

	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrCorruptSession     = errors.New("session record is corrupt")
	ErrInvalidPlayerCount = errors.New("player count outside the game's bounds")
	ErrInvalidPlayer      = errors.New("invalid player")
	ErrDuplicatePlayer    = errors.New("duplicate player id")
	ErrInvalidPlayerIndex = errors.New("player index out of range")
	ErrInvalidUpdate      = errors.New("invalid session update")

	// Profile errors
	ErrProfileNotFound    = errors.New("profile not found")
	ErrCorruptProfile     = errors.New("profile record is corrupt")
	ErrInvalidProfileName = errors.New("profile name must not be blank")
)
