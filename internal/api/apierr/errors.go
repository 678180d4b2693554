package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/metaloot/registry/internal/model"
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

// Codes only the API produces; everything else comes from model.ErrorCode
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
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

// statuses maps model error codes to HTTP statuses
var statuses = map[string]int{
	model.CodeRecordNotFound:    http.StatusNotFound,
	model.CodeAccountNotFound:   http.StatusNotFound,
	model.CodeCustodyNotFound:   http.StatusNotFound,
	model.CodeMintNotFound:      http.StatusNotFound,
	model.CodeAlreadyExists:     http.StatusConflict,
	model.CodeDuplicate:         http.StatusConflict,
	model.CodeConflict:          http.StatusConflict,
	model.CodeAuthorityMismatch: http.StatusForbidden,
	model.CodeInvalidSignature:  http.StatusForbidden,
	model.CodeMissingSignature:  http.StatusForbidden,
	model.CodeInvalidSeeds:      http.StatusForbidden,
	model.CodeFaucetDisabled:    http.StatusForbidden,
	model.CodeInvalidField:      http.StatusBadRequest,
	model.CodeInvalidAmount:     http.StatusBadRequest,
	model.CodeInvalidOwner:      http.StatusBadRequest,
	model.CodeInvalidData:       http.StatusBadRequest,
	model.CodeMintMismatch:      http.StatusBadRequest,
	model.CodeUnknown:           http.StatusBadRequest,
	model.CodeNoValidNonce:      http.StatusBadRequest,
	model.CodeInsufficientFunds: http.StatusUnprocessableEntity,
	model.CodeOverflow:          http.StatusUnprocessableEntity,
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	code := model.ErrorCode(err)
	status, ok := statuses[code]
	if !ok {
		// Internal details stay in the logs
		return &httpError{http.StatusInternalServerError, APIError{model.CodeInternal, "Internal server error"}}
	}
	return &httpError{status, APIError{code, err.Error()}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{model.CodeInternal, "Internal server error"}}
}
