package dto

import (
	"net/http"

	"github.com/stocker/backend/internal/domain/shared"
)

// Error codes returned in the error envelope. Domain codes are passed
// through unchanged; the remaining codes originate in the HTTP layer.
const (
	ErrCodeNotFound            = shared.CodeNotFound
	ErrCodeAlreadyExists       = shared.CodeAlreadyExists
	ErrCodeInvalidInput        = shared.CodeInvalidInput
	ErrCodeInvalidState        = shared.CodeInvalidState
	ErrCodeConcurrencyConflict = shared.CodeConcurrencyConflict
	ErrCodePersistence         = shared.CodePersistence
	ErrCodeNotification        = shared.CodeNotification
	ErrCodeUnauthorized        = shared.CodeUnauthorized
	ErrCodeForbidden           = shared.CodeForbidden

	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for errors of unknown type
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeTokenInvalid is used when a bearer token cannot be verified
	ErrCodeTokenInvalid = "TOKEN_INVALID"
	// ErrCodeTokenExpired is used when a bearer token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodePersistence:         http.StatusInternalServerError,
	ErrCodeNotification:        http.StatusInternalServerError,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// legacyErrorCodeMapping accepts the prefixed spellings some clients and
// older handlers used
var legacyErrorCodeMapping = map[string]string{
	"ERR_NOT_FOUND":            ErrCodeNotFound,
	"ERR_INVALID_INPUT":        ErrCodeInvalidInput,
	"ERR_INVALID_STATE":        ErrCodeInvalidState,
	"ERR_VALIDATION":           ErrCodeValidation,
	"ERR_CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"ERR_UNAUTHORIZED":         ErrCodeUnauthorized,
	"ERR_FORBIDDEN":            ErrCodeForbidden,
	"ERR_INTERNAL":             ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the canonical one.
// Codes with no known status collapse to INTERNAL_ERROR so internals never
// leak through the envelope.
func NormalizeErrorCode(code string) string {
	if c, ok := legacyErrorCodeMapping[code]; ok {
		return c
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
