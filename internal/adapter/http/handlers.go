package http

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/session"
	"github.com/harara-heat/harara-dashboard/internal/views"
)

type loginPage struct {
	Username string
	Error    string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auth.Restore(r.Context(), s.sessions.Open(w, r)); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, http.StatusOK, loginPage{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds := domain.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	_, err := s.auth.Login(r.Context(), s.sessions.Open(w, r), creds)
	if !errors.Is(err, domain.ErrMissingField) {
		s.views.Record(r.Context(), creds.Username, domain.ActionLogin, "", err)
	}
	if err != nil {
		page := loginPage{Username: creds.Username, Error: session.FailureMessage(err)}
		s.renderLogin(w, r, http.StatusUnauthorized, page)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderLogin shows the login form without the navigation shell.
func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	data := s.newPageData(w, r, "Login", page)
	data.Nav = nil
	s.render(w, "login", status, data)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := s.auth.Restore(r.Context(), s.sessions.Open(w, r))
	if err == nil {
		err = s.auth.Logout(r.Context(), sess)
		s.views.Record(r.Context(), sess.Operator(), domain.ActionLogout, "", err)
		if err != nil {
			s.logger.Error("logout", "error", err)
		}
	}
	toLogin(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	page, err := s.views.Dashboard(r.Context(), s.auth.API(sess))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, "dashboard", http.StatusOK, s.newPageData(w, r, "Dashboard Overview", page))
}

func (s *Server) handleRunPredictions(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	n, err := s.views.RunPredictions(r.Context(), s.auth.API(sess), sess.Operator())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.notify(w, r, returnPath(r, "/"), n)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	days := s.views.HistoryWindow(r.URL.Query().Get("days"))
	page, err := s.views.Predictions(r.Context(), s.auth.API(sess), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, "predictions", http.StatusOK, s.newPageData(w, r, "Predictions Management", page))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	chart, err := s.views.TodayChart(r.Context(), s.auth.API(sess))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			toLogin(w, r)
			return
		}
		s.logger.Warn("chart unavailable", "error", err)
		http.Error(w, "chart unavailable", http.StatusBadGateway)
		return
	}
	contentType := chart.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(chart.Data)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	page, err := s.views.Alerts(r.Context(), s.auth.API(sess))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, "alerts", http.StatusOK, s.newPageData(w, r, "Alert Management", page))
}

func (s *Server) handleSendAlert(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	severity, _ := domain.ParseLevel(r.PostFormValue("severity"))
	alert := domain.ManualAlert{
		Town:     r.PostFormValue("town"),
		Message:  strings.TrimSpace(r.PostFormValue("message")),
		Severity: severity,
	}
	n, err := s.views.SendManualAlert(r.Context(), s.auth.API(sess), sess.Operator(), alert)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.notify(w, r, "/alerts", n)
}

func (s *Server) handleDemoAlert(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	n, err := s.views.TriggerDemoAlert(r.Context(), s.auth.API(sess), sess.Operator())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.notify(w, r, "/alerts", n)
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	page, err := s.views.Users(r.Context(), s.auth.API(sess))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.render(w, "users", http.StatusOK, s.newPageData(w, r, "User Management", page))
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	reg := domain.Registration{
		Phone: strings.TrimSpace(r.PostFormValue("phone")),
		Town:  r.PostFormValue("town"),
		Name:  strings.TrimSpace(r.PostFormValue("name")),
	}
	n, err := s.views.RegisterUser(r.Context(), s.auth.API(sess), sess.Operator(), reg)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.notify(w, r, "/users", n)
}

func (s *Server) handleExportPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "export", http.StatusOK, s.newPageData(w, r, "Data Export", s.views.Exports()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseExportKind(mux.Vars(r)["kind"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess := sessionFrom(r.Context())
	dl, err := s.views.Export(r.Context(), s.auth.API(sess), sess.Operator(), kind)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			toLogin(w, r)
			return
		}
		s.notify(w, r, "/export", views.ExportFailure(kind))
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	_, _ = w.Write(dl.Data)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	page, err := s.views.Settings(r.Context(), s.auth.API(sess), s.refresh)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data := s.newPageData(w, r, "System Settings", page)
	data.Refresh = int(s.refresh.Seconds())
	s.render(w, "settings", http.StatusOK, data)
}

func (s *Server) handleRunScheduler(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	n, err := s.views.RunSchedulerNow(r.Context(), s.auth.API(sess), sess.Operator())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.notify(w, r, "/settings", n)
}
