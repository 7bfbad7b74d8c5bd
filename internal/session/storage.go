package session

import (
	"context"
	"net/http"
	"time"
)

// Persisted keys of an operator session.
const (
	KeyToken       = "harara_token"
	KeyTokenExpiry = "harara_token_expiry"
)

// Storage is the per-browser persisted key/value state.
type Storage interface {
	// Get returns the value for key, or "" when absent.
	Get(ctx context.Context, key string) (string, error)
	// Set writes values, keeping them for at most ttl.
	Set(ctx context.Context, values map[string]string, ttl time.Duration) error
	// Remove deletes keys.
	Remove(ctx context.Context, keys ...string) error
}

// Store opens the Storage belonging to the browser behind a request. Writes
// must happen before the response body is written.
type Store interface {
	Open(w http.ResponseWriter, r *http.Request) Storage
}
