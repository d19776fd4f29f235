package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zn-har/Bingo/internal/model"
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
	CodeInvalidPhone       = "INVALID_PHONE"
	CodeInvalidName        = "INVALID_NAME"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeInvalidMaxWinners  = "INVALID_MAX_WINNERS"
	CodeGameEnded          = "GAME_ENDED"
	CodeSelfScan           = "SELF_SCAN"
	CodeScannerNotFound    = "SCANNER_NOT_FOUND"
	CodeTargetNotFound     = "TARGET_NOT_FOUND"
	CodeTaskNotFound       = "TASK_NOT_FOUND"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeScanNotFound       = "SCAN_NOT_FOUND"
	CodeDuplicateTarget    = "DUPLICATE_TARGET"
	CodeDuplicateTask      = "DUPLICATE_TASK"
	CodePhoneTaken         = "PHONE_TAKEN"
	CodeBoardIncomplete    = "BOARD_INCOMPLETE"
	CodeRateLimited        = "RATE_LIMITED"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
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

// StatusOf returns the HTTP status WriteError would use for err
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// CodeOf returns the error code WriteError would use for err
func CodeOf(err error) string {
	return toHTTPError(err).apiError.Code
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Scan rejections
	case errors.Is(err, model.ErrGameEnded):
		return &httpError{http.StatusForbidden, APIError{CodeGameEnded, "The game has ended"}}
	case errors.Is(err, model.ErrSelfScan):
		return &httpError{http.StatusBadRequest, APIError{CodeSelfScan, "You cannot scan your own code"}}
	case errors.Is(err, model.ErrScannerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScannerNotFound, "Scanner not found"}}
	case errors.Is(err, model.ErrTargetNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTargetNotFound, "Target player not found"}}
	case errors.Is(err, model.ErrTaskNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeTaskNotFound, "Task not found"}}
	case errors.Is(err, model.ErrDuplicateTarget):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateTarget, "You have already scanned this player"}}
	case errors.Is(err, model.ErrDuplicateTask):
		return &httpError{http.StatusConflict, APIError{CodeDuplicateTask, "You have already completed this task"}}

	// Lookups
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrScanNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScanNotFound, "Scan not found"}}

	// Validation
	case errors.Is(err, model.ErrInvalidPhone):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPhone, "Phone number must be exactly 10 digits"}}
	case errors.Is(err, model.ErrInvalidName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidName, "Name is required"}}
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStatus, "Status must be pending, approved or rejected"}}
	case errors.Is(err, model.ErrInvalidMaxWinners):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMaxWinners, "Max winners must be at least 1"}}
	case errors.Is(err, model.ErrPhoneTaken):
		return &httpError{http.StatusConflict, APIError{CodePhoneTaken, "Phone number already registered"}}

	// Misconfiguration
	case errors.Is(err, model.ErrBoardIncomplete):
		return &httpError{http.StatusInternalServerError, APIError{CodeBoardIncomplete, "The task set does not cover the whole board"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewRateLimitedError creates a too many requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests, slow down"}}
}

// NewNotFoundError creates an error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Resource not found"}}
}

// NewMethodNotAllowedError creates an error for a known route with the wrong method
func NewMethodNotAllowedError() error {
	return &httpError{http.StatusMethodNotAllowed, APIError{CodeMethodNotAllowed, "Method not allowed"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
