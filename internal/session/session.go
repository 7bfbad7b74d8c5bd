package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Session is an authenticated operator session. It is the credential object
// bound to API clients: once invalidated, bound clients stop sending a token.
type Session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	operator  string
	storage   Storage
	logger    *slog.Logger
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// ExpiresAt is the instant the token stops being accepted.
func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Operator is the operator name carried by the token, if any.
func (s *Session) Operator() string {
	return s.operator
}

// Authenticated reports whether the session still holds a token.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Invalidate uninstalls the token and clears persisted state. Storage errors
// are logged; the in-memory token is dropped regardless.
func (s *Session) Invalidate(ctx context.Context) {
	if err := s.clear(ctx); err != nil {
		s.logger.Error("clear session storage", "error", err)
	}
}

func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	already := s.token == ""
	s.token = ""
	s.mu.Unlock()
	if already {
		return nil
	}
	return s.storage.Remove(ctx, KeyToken, KeyTokenExpiry)
}
