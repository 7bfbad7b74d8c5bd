package http

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
)

const (
	csrfCookieName = "harara_csrf"
	csrfFieldName  = "gorilla.csrf.Token"
)

// protectForms rejects unsafe requests that lack the form token issued with
// the page, or that come from another origin. Without secure cookies the
// dashboard is served over plain HTTP, where the Referer check cannot apply.
func (s *Server) protectForms(key []byte, secure bool) mux.MiddlewareFunc {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.FieldName(csrfFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(s.rejectForm)),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func (s *Server) rejectForm(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("form rejected", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Form expired or sent from another site. Reload the page and try again.", http.StatusForbidden)
}
