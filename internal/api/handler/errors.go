package handler

import (
	"net/http"

	"github.com/zn-har/Bingo/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest    = apierr.CodeInvalidRequest
	CodeInvalidPhone      = apierr.CodeInvalidPhone
	CodeInvalidName       = apierr.CodeInvalidName
	CodeInvalidStatus     = apierr.CodeInvalidStatus
	CodeInvalidMaxWinners = apierr.CodeInvalidMaxWinners
	CodeGameEnded         = apierr.CodeGameEnded
	CodeSelfScan          = apierr.CodeSelfScan
	CodeScannerNotFound   = apierr.CodeScannerNotFound
	CodeTargetNotFound    = apierr.CodeTargetNotFound
	CodeTaskNotFound      = apierr.CodeTaskNotFound
	CodePlayerNotFound    = apierr.CodePlayerNotFound
	CodeScanNotFound      = apierr.CodeScanNotFound
	CodeDuplicateTarget   = apierr.CodeDuplicateTarget
	CodeDuplicateTask     = apierr.CodeDuplicateTask
	CodeBoardIncomplete   = apierr.CodeBoardIncomplete
	CodeRateLimited       = apierr.CodeRateLimited
	CodeInternalError     = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
