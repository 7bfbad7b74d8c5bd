package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/session"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const sessionKey ctxKey = iota

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests tags each request with an id and logs it once served. Probe
// and scrape traffic is logged at debug.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := s.logger.Info
		switch r.URL.Path {
		case "/healthz", "/readyz", "/metrics":
			level = s.logger.Debug
		}
		level("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", id,
		)
	})
}

// requireSession restores the operator session and sends anyone without one
// to the login page.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.auth.Restore(r.Context(), s.sessions.Open(w, r))
		if err != nil {
			if !errors.Is(err, domain.ErrNoSession) {
				s.logger.Error("restore session", "error", err)
			}
			toLogin(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// returnPath resolves a form's "next" field to a dashboard page, falling back
// when it names anything else.
func returnPath(r *http.Request, fallback string) string {
	next := r.PostFormValue("next")
	for _, item := range widgets.Nav("") {
		if item.Href == next {
			return next
		}
	}
	return fallback
}
