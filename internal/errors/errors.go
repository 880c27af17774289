package errors

// ErrorResponse is the JSON envelope returned on any failure. Success is
// always false; NeedsAuth marks OAuth failures that require the user to
// re-authorize calendar access.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	NeedsAuth bool   `json:"needs_auth,omitempty"`
}

// New creates an error response with the given message.
func New(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// NewNeedsAuth creates an error response flagged for re-authorization.
func NewNeedsAuth(message string) ErrorResponse {
	return ErrorResponse{Error: message, NeedsAuth: true}
}
