package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/mux"
	"github.com/harara-heat/harara-dashboard/internal/session"
	"github.com/harara-heat/harara-dashboard/internal/views"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker = sharedobs.ReadinessChecker

// ReadinessFunc adapts a probe function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

func (f ReadinessFunc) CheckReadiness(ctx context.Context) error { return f(ctx) }

// Readiness combines checkers; the first failure wins.
func Readiness(checkers ...ReadinessChecker) ReadinessChecker {
	return ReadinessFunc(func(ctx context.Context) error {
		for _, c := range checkers {
			if err := c.CheckReadiness(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Options wires the dashboard's collaborators into the server.
type Options struct {
	Sessions        session.Store
	Auth            *session.Controller
	Views           *views.Service
	Ready           ReadinessChecker
	FlashSecret     []byte // signs the flash and form token cookies
	SecureCookies   bool
	RefreshInterval time.Duration
}

// Server serves the operator dashboard plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	sessions   session.Store
	auth       *session.Controller
	views      *views.Service
	flashes    *flashStore
	pages      pages
	refresh    time.Duration
	logger     *slog.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, opts Options, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		sessions: opts.Sessions,
		auth:     opts.Auth,
		views:    opts.Views,
		flashes:  newFlashStore(opts.FlashSecret, opts.SecureCookies),
		pages:    parsePages(),
		refresh:  opts.RefreshInterval,
		logger:   logger,
	}

	r.Use(s.logRequests)
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(opts.Ready)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	site := r.NewRoute().Subrouter()
	site.Use(s.protectForms(opts.FlashSecret, opts.SecureCookies))
	site.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	site.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	site.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	app := site.NewRoute().Subrouter()
	app.Use(s.requireSession)
	app.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	app.HandleFunc("/predictions", s.handlePredictions).Methods(http.MethodGet)
	app.HandleFunc("/predictions/run", s.handleRunPredictions).Methods(http.MethodPost)
	app.HandleFunc("/predictions/chart.png", s.handleChart).Methods(http.MethodGet)
	app.HandleFunc("/alerts", s.handleAlerts).Methods(http.MethodGet)
	app.HandleFunc("/alerts", s.handleSendAlert).Methods(http.MethodPost)
	app.HandleFunc("/alerts/demo", s.handleDemoAlert).Methods(http.MethodPost)
	app.HandleFunc("/users", s.handleUsers).Methods(http.MethodGet)
	app.HandleFunc("/users", s.handleRegisterUser).Methods(http.MethodPost)
	app.HandleFunc("/export", s.handleExportPage).Methods(http.MethodGet)
	app.HandleFunc("/export/{kind}", s.handleExport).Methods(http.MethodGet)
	app.HandleFunc("/settings", s.handleSettings).Methods(http.MethodGet)
	app.HandleFunc("/settings/scheduler/run", s.handleRunScheduler).Methods(http.MethodPost)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
