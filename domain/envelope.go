package domain

import "fmt"

// Error codes carried in the normalized envelope.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeInternalError  = "INTERNAL_SERVER_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
	CodeUnknown        = "UNKNOWN_ERROR"
	CodeSessionExpired = "SESSION_EXPIRED"
)

// User-facing messages for failures whose raw detail must never surface.
const (
	msgServerError  = "Something went wrong on our end. Please try again in a few moments. If the problem persists, contact support."
	msgNetworkError = "Unable to connect to the server. Please check your internet connection and try again."
)

// Envelope is the single error shape every layer above the gateway consumes,
// regardless of what the backend actually returned. Field names follow the
// IdentityX AppErrorResponse wire contract.
type Envelope struct {
	Message          string            `json:"errorMessage"`
	Code             string            `json:"errorCode"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
	Path             string            `json:"apiPath"`
	StatusCode       int               `json:"statusCode"`
}

// Error implements the error interface.
func (e *Envelope) Error() string {
	return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.StatusCode)
}

// Unauthorized reports whether the envelope represents a 401.
func (e *Envelope) Unauthorized() bool {
	return e.StatusCode == 401
}

// Forbidden reports whether the envelope represents a 403.
func (e *Envelope) Forbidden() bool {
	return e.StatusCode == 403
}

// NewEnvelope builds an envelope from backend-supplied fields, replacing
// messages for server errors so raw 5xx detail never reaches a caller.
func NewEnvelope(message, code, path string, status int, validationErrors map[string]string) *Envelope {
	return &Envelope{
		Message:          FriendlyMessage(message, code, status),
		Code:             code,
		ValidationErrors: validationErrors,
		Path:             path,
		StatusCode:       status,
	}
}

// NewNetworkError builds the envelope for a transport-level failure where no
// response was received at all.
func NewNetworkError(path string) *Envelope {
	return &Envelope{
		Message:    msgNetworkError,
		Code:       CodeNetworkError,
		Path:       path,
		StatusCode: 0,
	}
}

// NewValidationError builds the envelope for client-side validation failures.
// No network call is made for these.
func NewValidationError(path string, fields map[string]string) *Envelope {
	return &Envelope{
		Message:          "Validation failed",
		Code:             CodeValidation,
		ValidationErrors: fields,
		Path:             path,
		StatusCode:       400,
	}
}

// FriendlyMessage maps raw backend messages to user-facing ones. Server
// errors and network errors get generic text; anything else is passed
// through (backend messages are already user-facing).
func FriendlyMessage(message, code string, status int) string {
	if status == 500 || code == CodeInternalError {
		return msgServerError
	}
	if code == CodeNetworkError {
		return msgNetworkError
	}
	return message
}
