package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/harara-heat/harara-dashboard/internal/domain"
)

const maxHistoryDays = 30

type mockAPI struct {
	fx       *fixtures
	username string
	password string
	secret   []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

func (m *mockAPI) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", m.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/auth/login", m.handleLogin).Methods(http.MethodPost)

	api := r.NewRoute().Subrouter()
	api.Use(m.authenticate)
	api.HandleFunc("/auth/verify", m.handleVerify).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", m.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/stats", m.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/predict/run", m.handleRun).Methods(http.MethodPost)
	api.HandleFunc("/firestore/predictions/today", m.handleToday).Methods(http.MethodGet)
	api.HandleFunc("/firestore/history/{days:[0-9]+}", m.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/firestore/alerts/latest", m.handleAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/manual", m.handleManualAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/trigger-demo", m.handleDemoAlert).Methods(http.MethodPost)
	api.HandleFunc("/users/town/{town}", m.handleTownUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/register", m.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/scheduler/status", m.handleScheduler).Methods(http.MethodGet)
	api.HandleFunc("/scheduler/run-now", m.handleRun).Methods(http.MethodPost)
	api.HandleFunc("/viz/today.png", m.handleChart).Methods(http.MethodGet)
	api.HandleFunc("/api/export/{kind}", m.handleExport).Methods(http.MethodGet)
	return r
}

type subjectKey struct{}

func subjectFrom(r *http.Request) string {
	sub, _ := r.Context().Value(subjectKey{}).(string)
	return sub
}

// authenticate accepts only bearer tokens this server signed.
func (m *mockAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return m.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(domain.Now))
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, claims.Subject)))
	})
}

func (m *mockAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if creds.Username != m.username || creds.Password != m.password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	now := domain.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   creds.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
	}).SignedString(m.secret)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	m.logger.Info("operator logged in", "username", creds.Username)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int64(m.tokenTTL.Seconds()),
	})
}

func (m *mockAPI) handleVerify(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"valid": true, "username": subjectFrom(r)})
}

func (m *mockAPI) handleMe(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Operator{Username: subjectFrom(r), Role: "admin"})
}

func (m *mockAPI) health() map[string]any {
	return map[string]any{
		"status":          "ok",
		"ee_ready":        true,
		"firestore_ready": true,
		"model_loaded":    true,
		"timestamp":       domain.Now().UTC().Format(time.RFC3339),
	}
}

func (m *mockAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, m.health())
}

func (m *mockAPI) handleStats(w http.ResponseWriter, _ *http.Request) {
	var alerts, highRisk int
	for _, p := range m.fx.todayPredictions() {
		if p.Alert {
			alerts++
		}
		if p.Risk() == domain.LevelHigh {
			highRisk++
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"active_alerts":   alerts,
		"high_risk_towns": highRisk,
		"total_users":     m.fx.totalUsers(),
		"system_status":   m.health(),
		"last_updated":    domain.Now().UTC().Format(time.RFC3339),
	})
}

func (m *mockAPI) handleRun(w http.ResponseWriter, _ *http.Request) {
	m.fx.rerun(domain.Now())
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"status": "success", "predictions": m.fx.todayPredictions()})
}

func (m *mockAPI) handleToday(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"predictions": m.fx.todayPredictions()})
}

func (m *mockAPI) handleHistory(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(mux.Vars(r)["days"])
	if err != nil || days < 1 || days > maxHistoryDays {
		writeDetail(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxHistoryDays))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"records": m.fx.historySince(days)})
}

func (m *mockAPI) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"latest_alerts": m.fx.latestAlerts(20)})
}

func (m *mockAPI) handleManualAlert(w http.ResponseWriter, r *http.Request) {
	var in domain.ManualAlert
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	now := domain.Now().UTC()
	m.fx.addAlert(domain.Alert{
		Town:      in.Town,
		Message:   in.Message,
		Severity:  in.Severity,
		Timestamp: domain.Timestamp{Time: now},
		Date:      now.Format(time.DateOnly),
		Alert:     true,
	})
	m.logger.Info("manual alert", "town", in.Town, "severity", in.Severity.String(), "operator", subjectFrom(r))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"status": "sent", "recipients": len(m.fx.townUsers(in.Town))})
}

func (m *mockAPI) handleDemoAlert(w http.ResponseWriter, _ *http.Request) {
	now := domain.Now().UTC()
	m.fx.addAlert(domain.Alert{
		Town:      "Juba",
		Message:   "DEMO: Extreme heat expected in Juba. Stay indoors between 12:00 and 16:00.",
		Severity:  domain.LevelHigh,
		Timestamp: domain.Timestamp{Time: now},
		Date:      now.Format(time.DateOnly),
		Alert:     true,
	})
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"status": "demo alert sent"})
}

func (m *mockAPI) handleTownUsers(w http.ResponseWriter, r *http.Request) {
	town := mux.Vars(r)["town"]
	if _, ok := domain.LookupTown(town); !ok {
		writeDetail(w, http.StatusNotFound, "Unknown town "+town)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"town": town, "users": m.fx.townUsers(town)})
}

// handleRegister reads the query string, as the production backend does.
func (m *mockAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reg := domain.Registration{Phone: q.Get("phone"), Town: q.Get("town"), Name: q.Get("name")}
	if err := reg.Validate(); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	m.fx.addUser(domain.User{
		Name:      reg.Name,
		Phone:     reg.Phone,
		Town:      reg.Town,
		Active:    true,
		CreatedAt: domain.Timestamp{Time: domain.Now().UTC()},
	})
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"status": "registered", "phone_number": reg.Phone})
}

func (m *mockAPI) handleScheduler(w http.ResponseWriter, _ *http.Request) {
	now := domain.Now().UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 5, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	sharedobs.WriteJSON(w, http.StatusOK, domain.SchedulerStatus{
		Enabled: true,
		Jobs: []domain.SchedulerJob{{
			ID:          "daily_predictions",
			NextRunTime: next.Format("2006-01-02 15:04:05-07:00"),
			Trigger:     "cron[hour='5', minute='0']",
		}},
	})
}

func (m *mockAPI) handleChart(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, renderChart(m.fx.todayPredictions())); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (m *mockAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseExportKind(mux.Vars(r)["kind"])
	if err != nil {
		writeDetail(w, http.StatusNotFound, err.Error())
		return
	}

	var rows [][]string
	switch kind {
	case domain.ExportPredictions:
		rows = append(rows, []string{"date", "town", "probability", "risk", "alert"})
		for _, day := range m.fx.historySince(maxHistoryDays).Days() {
			for _, p := range day.Predictions {
				rows = append(rows, []string{day.Date, p.Town, strconv.FormatFloat(p.Probability, 'f', 3, 64), p.Risk().String(), strconv.FormatBool(p.Alert)})
			}
		}
	case domain.ExportLogs:
		rows = append(rows, []string{"timestamp", "town", "severity", "message"})
		for _, a := range m.fx.latestAlerts(1000) {
			rows = append(rows, []string{a.When().Format(time.RFC3339), a.Town, a.Severity.String(), a.Message})
		}
	case domain.ExportReport:
		writeDetail(w, http.StatusNotImplemented, "Report generation is not available on the mock API")
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not write export")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	_, _ = w.Write(buf.Bytes())
}

// renderChart draws one bar per town, coloured by risk level.
func renderChart(preds []domain.Prediction) image.Image {
	const (
		barWidth = 48
		gap      = 16
		height   = 240
	)
	width := gap + len(preds)*(barWidth+gap)
	img := image.NewRGBA(image.Rect(0, 0, max(width, 1), height))
	fill(img, img.Bounds(), color.RGBA{0xff, 0xff, 0xff, 0xff})

	for i, p := range preds {
		barHeight := int(p.Probability * float64(height-gap))
		x := gap + i*(barWidth+gap)
		fill(img, image.Rect(x, height-barHeight, x+barWidth, height), hexColor(p.Risk().Color()))
	}
	threshold := height - int(domain.HighRiskThreshold*float64(height-gap))
	fill(img, image.Rect(0, threshold, width, threshold+1), color.RGBA{0x7c, 0x2d, 0x12, 0xff})
	return img
}

func fill(img *image.RGBA, rect image.Rectangle, c color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

// hexColor parses "#rrggbb".
func hexColor(s string) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.RGBA{0x6b, 0x72, 0x80, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	sharedobs.WriteJSON(w, status, map[string]string{"detail": detail})
}
