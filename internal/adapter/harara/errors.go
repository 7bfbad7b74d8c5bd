package harara

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/harara-heat/harara-dashboard/internal/domain"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx backend response.
type APIError struct {
	Operation string
	Status    int
	Detail    string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("harara API error: %s: status %d", e.Operation, e.Status)
	}
	return fmt.Sprintf("harara API error: %s: status %d: %s", e.Operation, e.Status, e.Detail)
}

// Unwrap exposes domain.ErrUnauthorized for 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return domain.ErrUnauthorized
	}
	return nil
}

func newAPIError(op string, resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{Operation: op, Status: resp.StatusCode, Detail: errorDetail(body)}
}

// errorDetail extracts FastAPI's "detail" field, falling back to the raw body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		var s string
		if len(payload.Detail) > 0 && json.Unmarshal(payload.Detail, &s) == nil {
			return s
		}
		if len(payload.Detail) > 0 {
			return string(payload.Detail)
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// Detail returns the backend's message for err, if it came from the backend.
func Detail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
