// Package api provides the HTTP surface of fleetwatch.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/fleet"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/darshan-rambhia/fleetwatch/docs/swagger"
)

// APIKeyHeader carries the webhook key.
const APIKeyHeader = "X-API-Key"

// maxPayloadBytes bounds a single webhook body.
const maxPayloadBytes = 10 << 20

// Options configures a Server.
type Options struct {
	// APIKeyHash is the bcrypt hash of the webhook key. Empty disables the check.
	APIKeyHash         string
	DefaultWindowHours int
	ShutdownTimeout    time.Duration
}

// Server is the HTTP server for fleetwatch.
type Server struct {
	fleet           *fleet.Service
	apiKeyHash      []byte
	defaultHours    int
	shutdownTimeout time.Duration
	mux             *http.ServeMux
	server          *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(addr string, svc *fleet.Service, opts Options) *Server {
	if opts.DefaultWindowHours == 0 {
		opts.DefaultWindowHours = 24
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	srv := &Server{
		fleet:           svc,
		defaultHours:    opts.DefaultWindowHours,
		shutdownTimeout: opts.ShutdownTimeout,
		mux:             http.NewServeMux(),
	}
	if opts.APIKeyHash != "" {
		srv.apiKeyHash = []byte(opts.APIKeyHash)
	}

	srv.registerRoutes()

	srv.server = &http.Server{
		Addr:         addr,
		Handler:      SecurityHeadersMiddleware(RecoveryMiddleware(LoggingMiddleware(srv.mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return srv
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("HTTP server starting", "addr", s.server.Addr, "webhook_auth", s.apiKeyHash != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("HTTP server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	// Ingestion
	s.mux.HandleFunc("POST /webhook/metrics", s.handleWebhook)

	// Systems and per-system views
	s.mux.HandleFunc("GET /systems", s.handleSystems)
	s.mux.HandleFunc("GET /systems/{id}", s.handleSystem)
	s.mux.HandleFunc("GET /systems/{id}/metrics", s.handleSystemMetrics)
	s.mux.HandleFunc("GET /systems/{id}/disks", s.handleEntities(model.KindDisk))
	s.mux.HandleFunc("GET /systems/{id}/pools", s.handleEntities(model.KindPool, model.KindPoolHealth))
	s.mux.HandleFunc("GET /systems/{id}/replication", s.handleEntities(model.KindReplication))
	s.mux.HandleFunc("GET /systems/{id}/latest/{kind}", s.handleLatest)
	s.mux.HandleFunc("GET /systems/{id}/history/{kind}", s.handleHistory)

	// Health summaries
	s.mux.HandleFunc("GET /disks/summary", s.handleSummary(model.KindDisk))
	s.mux.HandleFunc("GET /pools/summary", s.handleSummary(model.KindPool))
	s.mux.HandleFunc("GET /replication/summary", s.handleSummary(model.KindReplication))
	s.mux.HandleFunc("GET /dashboard/summary", s.handleDashboard)

	// Alerts
	s.mux.HandleFunc("GET /alerts", s.handleAlerts)
	s.mux.HandleFunc("POST /alerts/{id}/acknowledge", s.handleAcknowledge)
	s.mux.HandleFunc("POST /alerts/{id}/create-ticket", s.handleCreateTicket)

	// Operations
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger UI
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON marshals v to JSON into a buffer first, then writes it to the
// response. This ensures marshalling errors can be returned as a proper 500.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	writeJSONStatus(w, r, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding JSON response", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Debug("writing JSON response", "path", r.URL.Path, "error", err)
	}
}

// writeError maps core errors onto HTTP status codes. Only server-side
// failures are logged; their details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case fleet.IsClientError(err):
		writeJSONStatus(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeJSONStatus(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		slog.Debug("request cancelled", "path", r.URL.Path, "request_id", RequestID(r.Context()))
	default:
		slog.Error("handling request", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeJSONStatus(w, r, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

// hours reads the optional hours query parameter. Range checks are left to
// the fleet service.
func (s *Server) hours(r *http.Request) (int, error) {
	v := r.URL.Query().Get("hours")
	if v == "" {
		return s.defaultHours, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.Invalid("hours", "%q is not an integer", v)
	}
	return n, nil
}

func alertID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, model.Invalid("alert_id", "%q is not an integer", v)
	}
	return id, nil
}

// authorized reports whether the request carries the configured webhook key.
func (s *Server) authorized(r *http.Request) bool {
	if s.apiKeyHash == nil {
		return true
	}
	key := r.Header.Get(APIKeyHeader)
	if key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(key)) == nil
}

// webhookPayload is the batch pushed by a collector.
type webhookPayload struct {
	System  model.SystemInfo   `json:"system"`
	Metrics []model.MetricFact `json:"metrics"`
	Alerts  []model.AlertFact  `json:"alerts"`
}

type webhookResponse struct {
	Status string `json:"status"`
	fleet.IngestResult
}

// @Summary Ingest a metric batch
// @Description Records the system, metrics and alerts of one collector push atomically. Requires X-API-Key when a webhook key is configured.
// @Accept json
// @Produce json
// @Param X-API-Key header string false "Webhook key"
// @Param payload body webhookPayload true "Batch"
// @Success 200 {object} webhookResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /webhook/metrics [post]
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		slog.Warn("webhook rejected", "reason", "invalid or missing api key", "remote", r.RemoteAddr)
		writeJSONStatus(w, r, http.StatusUnauthorized, errorResponse{Error: "Invalid or missing API key"})
		return
	}

	var payload webhookPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&payload); err != nil {
		writeError(w, r, model.Invalid("body", "invalid JSON: %v", err))
		return
	}

	res, err := s.fleet.Ingest(r.Context(), payload.System, payload.Metrics, payload.Alerts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, webhookResponse{Status: "ok", IngestResult: res})
}

// @Summary List systems
// @Description Returns all monitored systems ordered by name
// @Produce json
// @Success 200 {array} model.System
// @Router /systems [get]
func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	systems, err := s.fleet.Systems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, systems)
}

// @Summary Get a system
// @Produce json
// @Param id path string true "System id"
// @Success 200 {object} model.System
// @Failure 404 {object} errorResponse
// @Router /systems/{id} [get]
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	sys, err := s.fleet.System(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, sys)
}

// @Summary Raw metrics of a system
// @Description Returns the undecoded metric log rows of a system within the window, newest first
// @Produce json
// @Param id path string true "System id"
// @Param metric_type query string false "Resource kind filter"
// @Param hours query int false "Window in hours (1-8760)" default(24)
// @Success 200 {array} model.MetricPoint
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /systems/{id}/metrics [get]
func (s *Server) handleSystemMetrics(w http.ResponseWriter, r *http.Request) {
	hours, err := s.hours(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	points, err := s.fleet.RawMetrics(r.Context(), r.PathValue("id"), r.URL.Query().Get("metric_type"), hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, points)
}

// handleEntities serves the per-entity views of /systems/{id}/disks, pools
// and replication.
//
// @Summary Entities of a system
// @Description Latest value of every attribute plus history, one entry per disk, pool or replication task
// @Produce json
// @Param id path string true "System id"
// @Param hours query int false "Window in hours (1-8760)" default(24)
// @Success 200 {array} model.EntitySnapshot
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /systems/{id}/disks [get]
// @Router /systems/{id}/pools [get]
// @Router /systems/{id}/replication [get]
func (s *Server) handleEntities(kinds ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours, err := s.hours(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		entities, err := s.fleet.Entities(r.Context(), r.PathValue("id"), kinds, hours)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, entities)
	}
}

// @Summary Latest snapshot
// @Description Current value of each attribute of each entity of one kind
// @Produce json
// @Param id path string true "System id"
// @Param kind path string true "Resource kind"
// @Param hours query int false "Window in hours (1-8760)" default(24)
// @Success 200 {array} model.EntitySnapshot
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /systems/{id}/latest/{kind} [get]
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	hours, err := s.hours(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entities, err := s.fleet.Latest(r.Context(), r.PathValue("id"), r.PathValue("kind"), hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, entities)
}

// @Summary Entity history
// @Description Points of each entity of one kind, newest first
// @Produce json
// @Param id path string true "System id"
// @Param kind path string true "Resource kind"
// @Param hours query int false "Window in hours (1-8760)" default(24)
// @Success 200 {object} map[string][]model.HistoryPoint
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /systems/{id}/history/{kind} [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours, err := s.hours(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	history, err := s.fleet.History(r.Context(), r.PathValue("id"), r.PathValue("kind"), hours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, history)
}

// @Summary Health summary
// @Description Classifies one resource kind for the fleet, or for one system when system_id is given
// @Produce json
// @Param system_id query string false "Restrict to one system"
// @Success 200 {object} model.SummaryReport
// @Failure 404 {object} errorResponse
// @Router /disks/summary [get]
// @Router /pools/summary [get]
// @Router /replication/summary [get]
func (s *Server) handleSummary(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.fleet.Summary(r.Context(), kind, r.URL.Query().Get("system_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, report)
	}
}

// @Summary Fleet overview
// @Produce json
// @Success 200 {object} model.DashboardSummary
// @Router /dashboard/summary [get]
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.fleet.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, summary)
}

// @Summary List alerts
// @Description Alerts newest first, optionally filtered
// @Produce json
// @Param acknowledged query bool false "Filter by acknowledgment"
// @Param system_id query string false "Filter by system"
// @Param limit query int false "Maximum number of alerts"
// @Success 200 {array} model.Alert
// @Failure 400 {object} errorResponse
// @Router /alerts [get]
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var acknowledged *bool
	if v := q.Get("acknowledged"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, model.Invalid("acknowledged", "%q is not a boolean", v))
			return
		}
		acknowledged = &b
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, model.Invalid("limit", "%q is not a non-negative integer", v))
			return
		}
		limit = n
	}

	list, err := s.fleet.Alerts(r.Context(), q.Get("system_id"), acknowledged, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, list)
}

type ackResponse struct {
	Status  string      `json:"status"`
	AlertID int64       `json:"alert_id"`
	Alert   model.Alert `json:"alert"`
}

// @Summary Acknowledge an alert
// @Description Idempotent; acknowledging twice succeeds
// @Produce json
// @Param id path int true "Alert id"
// @Success 200 {object} ackResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /alerts/{id}/acknowledge [post]
func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := alertID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.fleet.Acknowledge(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, ackResponse{Status: "ok", AlertID: id, Alert: a})
}

type ticketRequest struct {
	PSA string `json:"psa"`
}

type ticketResponse struct {
	Status string `json:"status"`
	model.Ticket
}

// @Summary Create a PSA ticket
// @Description Opens a ticket for the alert and acknowledges it
// @Accept json
// @Produce json
// @Param id path int true "Alert id"
// @Param request body ticketRequest true "Target PSA"
// @Success 200 {object} ticketResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /alerts/{id}/create-ticket [post]
func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := alertID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ticketRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeError(w, r, model.Invalid("body", "invalid JSON: %v", err))
		return
	}
	t, err := s.fleet.CreateTicket(r.Context(), id, req.PSA)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, ticketResponse{Status: "ok", Ticket: t})
}

// @Summary Health check
// @Description Returns service health and database reachability
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status"
// @Failure 503 {object} map[string]interface{} "Database unreachable"
// @Router /healthz [get]
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	body := map[string]any{"timestamp": s.fleet.Now().Unix()}
	if err := s.fleet.Ping(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
		body["error"] = fmt.Sprintf("database: %v", err)
	}
	body["status"] = status
	writeJSONStatus(w, r, code, body)
}
