package youtube

import (
	"fmt"
	"net/http"
)

// ErrorDetail is one entry of the "errors" array in an API error body.
type ErrorDetail struct {
	Message string `json:"message"`
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
}

// ErrorBody is the structured error YouTube returns with non-2xx responses.
type ErrorBody struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Errors  []ErrorDetail `json:"errors"`
}

// APIError is returned for any non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       ErrorBody
}

func (e *APIError) Error() string {
	msg := e.Body.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("YouTube API error (status %d): %s", e.StatusCode, msg)
}

// IsQuotaExceeded reports whether the credential's daily quota is exhausted.
func (e *APIError) IsQuotaExceeded() bool {
	return e.StatusCode == http.StatusForbidden &&
		len(e.Body.Errors) > 0 &&
		e.Body.Errors[0].Reason == "quotaExceeded"
}

// Reason returns the first reported sub-error reason, if any.
func (e *APIError) Reason() string {
	if len(e.Body.Errors) == 0 {
		return ""
	}
	return e.Body.Errors[0].Reason
}
