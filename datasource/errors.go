package datasource

import (
	"fmt"
	"net/http"
)

// UpstreamError is a failure reported by the provider itself, either through the
// payload's "cod" field or through the HTTP status of its response.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Message)
}

// HTTPStatus returns the status to forward to callers. Codes that cannot be written
// as an HTTP status are reported as 502.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode < 100 || e.StatusCode > 599 {
		return http.StatusBadGateway
	}
	return e.StatusCode
}
