package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/auth"
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
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInvalidDisplayName    = "INVALID_DISPLAY_NAME"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeGameInProgress        = "GAME_IN_PROGRESS"
	CodeNotGameOwner          = "NOT_GAME_OWNER"
	CodeInvalidTransition     = "INVALID_TRANSITION"
	CodeInvalidAnswerKey      = "INVALID_ANSWER_KEY"
	CodeInvalidHelpKind       = "INVALID_HELP_KIND"
	CodeHelpAlreadyUsed       = "HELP_ALREADY_USED"
	CodeInsufficientQuestions = "INSUFFICIENT_QUESTIONS"
	CodeOutOfQuestions        = "OUT_OF_QUESTIONS"
	CodeInternalError         = "INTERNAL_ERROR"
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

// StatusFor returns the HTTP status an error is reported with
func StatusFor(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrGameInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameInProgress, "Finish your current game first"}}
	case errors.Is(err, model.ErrNotGameOwner):
		return &httpError{http.StatusForbidden, APIError{CodeNotGameOwner, "Game belongs to another player"}}
	case errors.Is(err, model.ErrInvalidTransition):
		return &httpError{http.StatusConflict, APIError{CodeInvalidTransition, err.Error()}}
	case errors.Is(err, model.ErrInvalidAnswerKey):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidAnswerKey, "Answer key must be one of a, b, c, d"}}
	case errors.Is(err, model.ErrInvalidHelpKind):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidHelpKind, "Help must be one of fifty_fifty, audience_help, friend_call"}}
	case errors.Is(err, model.ErrHelpAlreadyUsed):
		return &httpError{http.StatusConflict, APIError{CodeHelpAlreadyUsed, "Help has already been used in this game"}}
	case errors.Is(err, model.ErrInsufficientQuestions):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeInsufficientQuestions, "Not enough questions to start a game"}}
	case errors.Is(err, model.ErrOutOfQuestions), errors.Is(err, model.ErrQuestionOrder):
		return &httpError{http.StatusInternalServerError, APIError{CodeOutOfQuestions, "Game has no question for its current level"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrInvalidDisplayName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDisplayName, "Display name must be 1-32 characters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
