package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Detail is the FastAPI "detail" message, empty when the body had none.
	Detail string

	// RequestID is the X-Request-ID sent with the failed request.
	RequestID string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// ServerDetail returns the backend's message for display.
func (e *APIError) ServerDetail() string {
	return e.Detail
}

// IsAuth reports whether the status means the credential was rejected.
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Is maps the status onto the shared error kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case shared.ErrAuthFailure:
		return e.IsAuth()
	case shared.ErrExternalService:
		return !e.IsAuth()
	}
	return false
}

// extractDetail reads FastAPI's {"detail": ...}. A string is returned as
// is; a validation error list is flattened to its "msg" entries.
func extractDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists():
		return ""
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := m.String(); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	default:
		return detail.Raw
	}
}

// outcomeOf classifies err for metrics labels.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case shared.IsAuthFailure(err):
		return "auth"
	case errors.Is(err, shared.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, shared.ErrNetworkFailure):
		return "network"
	default:
		return "status"
	}
}
