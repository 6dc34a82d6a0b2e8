package apierr

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/mcoot/tabletop-companion/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeSessionNotFound    = "SESSION_NOT_FOUND"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeNoCurrentSession   = "NO_CURRENT_SESSION"
	CodeInvalidPlayerCount = "INVALID_PLAYER_COUNT"
	CodeInvalidPlayer      = "INVALID_PLAYER"
	CodeDuplicatePlayer    = "DUPLICATE_PLAYER"
	CodeInvalidPlayerIndex = "INVALID_PLAYER_INDEX"
	CodeInvalidUpdate      = "INVALID_UPDATE"
	CodeInvalidProfileName = "INVALID_PROFILE_NAME"
	CodeCorruptRecord      = "CORRUPT_RECORD"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Validation errors carry their detail in the message
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProfileNotFound, "Profile not found"}}
	case errors.Is(err, model.ErrInvalidPlayerCount):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidPlayerCount, err.Error()}}
	case errors.Is(err, model.ErrInvalidPlayer):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidPlayer, err.Error()}}
	case errors.Is(err, model.ErrDuplicatePlayer):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeDuplicatePlayer, err.Error()}}
	case errors.Is(err, model.ErrInvalidPlayerIndex):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidPlayerIndex, err.Error()}}
	case errors.Is(err, model.ErrInvalidUpdate):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidUpdate, err.Error()}}
	case errors.Is(err, model.ErrInvalidProfileName):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidProfileName, "Profile name must not be blank"}}
	case errors.Is(err, model.ErrCorruptSession), errors.Is(err, model.ErrCorruptProfile):
		return &httpError{http.StatusInternalServerError, APIError{CodeCorruptRecord, "Stored record could not be read"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNoCurrentSessionError reports that no session is being played
func NewNoCurrentSessionError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNoCurrentSession, "No session in progress"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
