// Package fleet is the entry point of the monitoring core: batch ingestion,
// windowed entity queries, health summaries and alert transitions.
package fleet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/alerts"
	"github.com/darshan-rambhia/fleetwatch/internal/health"
	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/darshan-rambhia/fleetwatch/internal/metrics"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/projection"
	"github.com/darshan-rambhia/fleetwatch/internal/store"
)

// Window bounds, in hours.
const (
	MinWindowHours = 1
	MaxWindowHours = 8760
)

// IngestResult reports how many facts a batch stored.
type IngestResult struct {
	AcceptedMetrics int `json:"accepted_metrics"`
	AcceptedAlerts  int `json:"accepted_alerts"`
}

// Service wires the store, projector, classifier and alert log together.
type Service struct {
	store  *store.Store
	proj   *projection.Projector
	health *health.Classifier
	alerts *alerts.Service
	now    func() time.Time
}

// New creates a fleet service. dec decodes legacy metric names for the
// latest/history views.
func New(st *store.Store, dec keydecode.Decoder) *Service {
	return newService(st, projection.New(st, dec), time.Now)
}

func newService(st *store.Store, proj *projection.Projector, now func() time.Time) *Service {
	proj = proj.WithClock(now)
	return &Service{
		store:  st,
		proj:   proj,
		health: health.New(proj, st),
		alerts: alerts.New(st),
		now:    now,
	}
}

// WithClock returns a service whose reads and ingestion timestamps use now.
func (s *Service) WithClock(now func() time.Time) *Service {
	return newService(s.store, s.proj, now)
}

// Window converts window_hours into a duration, rejecting values outside
// [MinWindowHours, MaxWindowHours].
func Window(hours int) (time.Duration, error) {
	if hours < MinWindowHours || hours > MaxWindowHours {
		return 0, &model.RangeError{Field: "window_hours", Value: hours, Min: MinWindowHours, Max: MaxWindowHours}
	}
	return time.Duration(hours) * time.Hour, nil
}

// Ingest validates and records one batch atomically. Any invalid fact
// rejects the whole batch before anything is written.
func (s *Service) Ingest(ctx context.Context, sys model.SystemInfo, facts []model.MetricFact, alertFacts []model.AlertFact) (IngestResult, error) {
	start := time.Now()
	defer func() { metrics.IngestLatency.Observe(time.Since(start).Seconds()) }()

	sys.ID = strings.TrimSpace(sys.ID)
	if err := validate(sys, facts, alertFacts); err != nil {
		metrics.BatchesTotal.WithLabelValues("invalid").Inc()
		slog.Warn("batch rejected", "system_id", sys.ID, "error", err)
		return IngestResult{}, err
	}

	res, err := s.store.IngestBatch(ctx, store.Batch{
		System:     sys,
		Metrics:    facts,
		Alerts:     alertFacts,
		ReceivedAt: s.now().UTC(),
	})
	if err != nil {
		metrics.BatchesTotal.WithLabelValues("error").Inc()
		return IngestResult{}, fmt.Errorf("ingesting batch from %s: %w", sys.ID, err)
	}

	metrics.BatchesTotal.WithLabelValues("accepted").Inc()
	for _, f := range facts {
		metrics.MetricsIngestedTotal.WithLabelValues(kindLabel(f.ResourceKind)).Inc()
	}
	for _, a := range alertFacts {
		metrics.AlertsIngestedTotal.WithLabelValues(a.Severity).Inc()
	}
	slog.Debug("batch ingested", "system_id", sys.ID, "metrics", res.Metrics, "alerts", res.Alerts)

	return IngestResult{AcceptedMetrics: res.Metrics, AcceptedAlerts: res.Alerts}, nil
}

func validate(sys model.SystemInfo, facts []model.MetricFact, alertFacts []model.AlertFact) error {
	if sys.ID == "" {
		return model.Invalid("system.id", "must not be empty")
	}
	if strings.TrimSpace(sys.Name) == "" {
		return model.Invalid("system.name", "must not be empty")
	}

	for i, f := range facts {
		field := fmt.Sprintf("metrics[%d]", i)
		if f.SystemID != "" && f.SystemID != sys.ID {
			return model.Invalid(field+".system_id", "%q does not match batch system %q", f.SystemID, sys.ID)
		}
		if strings.TrimSpace(f.ResourceKind) == "" {
			return model.Invalid(field+".metric_type", "must not be empty")
		}
		if (f.EntityID == "") != (f.Attribute == "") {
			return model.Invalid(field, "entity_id and attribute must be set together")
		}
		if f.Name == "" && !f.Typed() {
			return model.Invalid(field+".metric_name", "must not be empty")
		}
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return model.Invalid(field+".value", "must be a finite number")
		}
		if f.Timestamp != nil && !storable(*f.Timestamp) {
			return model.Invalid(field+".timestamp", "%s is outside the supported range", f.Timestamp.Format(time.RFC3339Nano))
		}
	}

	for i, a := range alertFacts {
		field := fmt.Sprintf("alerts[%d]", i)
		if a.SystemID != "" && a.SystemID != sys.ID {
			return model.Invalid(field+".system_id", "%q does not match batch system %q", a.SystemID, sys.ID)
		}
		if !model.ValidSeverity(a.Severity) {
			return model.Invalid(field+".severity", "%q is not one of critical, warning, info", a.Severity)
		}
		if strings.TrimSpace(a.Message) == "" {
			return model.Invalid(field+".message", "must not be empty")
		}
	}
	return nil
}

// storable reports whether ts survives the nanosecond encoding of the log.
// The zero time is what collectors send for an unset clock.
func storable(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return time.Unix(0, ts.UnixNano()).Equal(ts)
}

// kindLabel keeps the ingest counter's label set bounded; kinds are chosen by
// the collector.
func kindLabel(kind string) string {
	if kind == model.KindPoolHealth || slices.Contains(health.Kinds(), kind) {
		return kind
	}
	return "other"
}

func observe(op string) func() {
	start := time.Now()
	return func() {
		metrics.QueryLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Systems lists all known systems.
func (s *Service) Systems(ctx context.Context) ([]model.System, error) {
	systems, err := s.store.ListSystems(ctx)
	if err != nil {
		return nil, err
	}
	if systems == nil {
		systems = []model.System{}
	}
	return systems, nil
}

// System returns one system or model.ErrNotFound.
func (s *Service) System(ctx context.Context, id string) (model.System, error) {
	return s.store.GetSystem(ctx, id)
}

// target validates a system-scoped windowed query.
func (s *Service) target(ctx context.Context, systemID string, hours int) (time.Duration, error) {
	window, err := Window(hours)
	if err != nil {
		return 0, err
	}
	if _, err := s.store.GetSystem(ctx, systemID); err != nil {
		return 0, err
	}
	return window, nil
}

// RawMetrics returns the undecoded log rows of a system within the window,
// newest first. An empty kind matches every kind.
func (s *Service) RawMetrics(ctx context.Context, systemID, kind string, hours int) ([]model.MetricPoint, error) {
	defer observe("raw")()
	window, err := s.target(ctx, systemID, hours)
	if err != nil {
		return nil, err
	}
	now := s.now()
	f := store.MetricFilter{SystemID: systemID, Since: now.Add(-window), Until: now}
	if kind != "" {
		f.Kinds = []string{kind}
	}
	points, err := s.store.RawMetrics(ctx, f)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []model.MetricPoint{}
	}
	return points, nil
}

// Latest returns the current value of each attribute of each entity.
func (s *Service) Latest(ctx context.Context, systemID, kind string, hours int) ([]model.EntitySnapshot, error) {
	defer observe("latest")()
	window, err := s.target(ctx, systemID, hours)
	if err != nil {
		return nil, err
	}
	snap, err := s.proj.Latest(ctx, systemID, kind, window)
	if err != nil {
		return nil, err
	}
	return snap.Entities(systemID), nil
}

// History returns the points of each entity, newest first.
func (s *Service) History(ctx context.Context, systemID, kind string, hours int) (projection.History, error) {
	defer observe("history")()
	window, err := s.target(ctx, systemID, hours)
	if err != nil {
		return nil, err
	}
	return s.proj.History(ctx, systemID, kind, window)
}

// Entities returns the combined latest and history view used by the
// per-system disk, pool and replication pages.
func (s *Service) Entities(ctx context.Context, systemID string, kinds []string, hours int) ([]model.EntitySnapshot, error) {
	defer observe("entities")()
	window, err := s.target(ctx, systemID, hours)
	if err != nil {
		return nil, err
	}
	return s.proj.Entities(ctx, systemID, kinds, window)
}

// Summary classifies one kind for one system, or for the whole fleet when
// systemID is empty.
func (s *Service) Summary(ctx context.Context, kind, systemID string) (model.SummaryReport, error) {
	defer observe("summary")()
	if systemID == "" {
		return s.health.Fleet(ctx, kind)
	}
	if _, err := s.store.GetSystem(ctx, systemID); err != nil {
		return model.SummaryReport{}, err
	}
	return s.health.System(ctx, kind, systemID)
}

// Dashboard returns the fleet overview.
func (s *Service) Dashboard(ctx context.Context) (model.DashboardSummary, error) {
	defer observe("dashboard")()
	return s.health.Dashboard(ctx)
}

// Alerts lists alerts newest first.
func (s *Service) Alerts(ctx context.Context, systemID string, acknowledged *bool, limit int) ([]model.Alert, error) {
	return s.alerts.List(ctx, systemID, acknowledged, limit)
}

// Acknowledge acknowledges an alert; repeating it is a no-op.
func (s *Service) Acknowledge(ctx context.Context, id int64) (model.Alert, error) {
	a, err := s.alerts.Acknowledge(ctx, id)
	if err == nil {
		metrics.AlertTransitionsTotal.WithLabelValues("acknowledge").Inc()
	}
	return a, err
}

// CreateTicket opens a stub PSA ticket for an alert.
func (s *Service) CreateTicket(ctx context.Context, id int64, psa string) (model.Ticket, error) {
	t, err := s.alerts.CreateTicket(ctx, id, psa)
	if err == nil {
		metrics.AlertTransitionsTotal.WithLabelValues("ticket").Inc()
	}
	return t, err
}

// IsClientError reports whether err is caused by the request rather than
// the service.
func IsClientError(err error) bool {
	return errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrRange)
}
