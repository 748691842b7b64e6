package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finagent/expense-pipeline/internal/config"
	"github.com/finagent/expense-pipeline/internal/core/ports"
)

// maxUploadBytes bounds receipt uploads; anything larger than this is
// not a receipt image.
const maxUploadBytes = 16 << 20

type Router struct {
	cfg       config.Config
	processor ports.ExpenseProcessor
	storage   ports.ArtifactStorage
	subs      ports.SubmissionReader
	alerts    ports.AlertStore
	forecasts ports.ForecastRepository

	metricsHandler http.Handler
}

func NewRouter(
	cfg config.Config,
	processor ports.ExpenseProcessor,
	storage ports.ArtifactStorage,
	subs ports.SubmissionReader,
	alerts ports.AlertStore,
	forecasts ports.ForecastRepository,
) *Router {
	return &Router{
		cfg:       cfg,
		processor: processor,
		storage:   storage,
		subs:      subs,
		alerts:    alerts,
		forecasts: forecasts,
	}
}

// WithMetricsHandler mounts a /metrics endpoint on the router.
func (rt *Router) WithMetricsHandler(h http.Handler) *Router {
	rt.metricsHandler = h
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/expenses", rt.expenses)
	mux.HandleFunc("/v1/expenses/", rt.getExpenseByID)
	mux.HandleFunc("/v1/fraud/alerts", rt.listAlerts)
	mux.HandleFunc("/v1/fraud/alerts/", rt.resolveAlert)
	mux.HandleFunc("/v1/forecast", rt.getForecast)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}

	var handler http.Handler = mux
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 50*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) expenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.submitExpense(w, r)
	case http.MethodGet:
		rt.listExpenses(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) submitExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "form field 'user_id' is required"})
		return
	}

	artifactRef := artifactKey(userID, fileHeader.Filename)
	if err := rt.storage.Save(r.Context(), artifactRef, file); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("store receipt: %v", err)})
		return
	}

	sub, err := rt.processor.Process(r.Context(), userID, artifactRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (rt *Router) listExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := queryInt(q.Get("limit"), 50)
	offset := queryInt(q.Get("offset"), 0)

	subs, err := rt.subs.List(r.Context(), strings.TrimSpace(q.Get("user_id")), limit, offset, strings.TrimSpace(q.Get("category")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": subs, "count": len(subs)})
}

func (rt *Router) getExpenseByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "submission id is required"})
		return
	}

	sub, err := rt.subs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (rt *Router) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	alerts, err := rt.alerts.List(r.Context(), strings.TrimSpace(q.Get("user_id")), queryInt(q.Get("limit"), 50), strings.TrimSpace(q.Get("severity")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts, "count": len(alerts)})
}

func (rt *Router) resolveAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/fraud/alerts/")
	alertID, ok := strings.CutSuffix(rest, "/resolve")
	if !ok || alertID == "" || strings.Contains(alertID, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	action := strings.TrimSpace(req.Action)
	if action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "action is required"})
		return
	}

	if err := rt.alerts.Resolve(r.Context(), alertID, action); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"alert_id": alertID, "action": action, "status": "resolved"})
}

func (rt *Router) getForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	snaps, err := rt.forecasts.Snapshots(r.Context(), strings.TrimSpace(r.URL.Query().Get("user_id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
}

func artifactKey(userID, filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "receipt"
	}
	return userID + "/" + uuid.NewString() + "_" + base
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
