package fleet

import (
	"context"
	"math"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, keydecode.Positional{}).WithClock(func() time.Time { return now }), s
}

func sysInfo(id string) model.SystemInfo {
	return model.SystemInfo{ID: id, Name: "nas-" + id}
}

func metric(kind, name string, v float64) model.MetricFact {
	return model.MetricFact{ResourceKind: kind, Name: name, Value: v}
}

func stamped(ts time.Time) model.MetricFact {
	f := metric(model.KindDisk, "ada9_temperature", 99)
	f.Timestamp = &ts
	return f
}

func TestWindow(t *testing.T) {
	tests := []struct {
		hours   int
		want    time.Duration
		wantErr bool
	}{
		{1, time.Hour, false},
		{24, 24 * time.Hour, false},
		{8760, 8760 * time.Hour, false},
		{0, 0, true},
		{-5, 0, true},
		{8761, 0, true},
	}
	for _, tt := range tests {
		got, err := Window(tt.hours)
		if tt.wantErr {
			assert.ErrorIs(t, err, model.ErrRange, "hours=%d", tt.hours)
			var re *model.RangeError
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.hours, re.Value)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestIngest(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, sysInfo("S1"),
		[]model.MetricFact{
			metric(model.KindPool, "tank_used", 5200),
			metric(model.KindPool, "tank_total", 8000),
		},
		[]model.AlertFact{{Severity: model.SeverityInfo, Message: "scrub finished"}},
	)
	require.NoError(t, err)
	assert.Equal(t, IngestResult{AcceptedMetrics: 2, AcceptedAlerts: 1}, res)

	sys, err := svc.System(ctx, "S1")
	require.NoError(t, err)
	assert.True(t, sys.LastSeen.Equal(now))

	points, err := s.RawMetrics(ctx, store.MetricFilter{})
	require.NoError(t, err)
	for _, p := range points {
		assert.True(t, p.Timestamp.Equal(now), "missing timestamp defaults to ingestion time")
	}
}

func TestIngest_Validation(t *testing.T) {
	ts := now.Add(-time.Minute)
	tests := []struct {
		name    string
		sys     model.SystemInfo
		metrics []model.MetricFact
		alerts  []model.AlertFact
	}{
		{"empty system id", model.SystemInfo{ID: " ", Name: "x"}, nil, nil},
		{"empty system name", model.SystemInfo{ID: "S1"}, nil, nil},
		{"metric for another system", sysInfo("S1"), []model.MetricFact{{SystemID: "S2", ResourceKind: "disk", Name: "ada0_temperature"}}, nil},
		{"missing kind", sysInfo("S1"), []model.MetricFact{{Name: "ada0_temperature", Timestamp: &ts}}, nil},
		{"missing name", sysInfo("S1"), []model.MetricFact{{ResourceKind: "disk"}}, nil},
		{"half typed key", sysInfo("S1"), []model.MetricFact{{ResourceKind: "disk", Name: "x", EntityID: "ada0"}}, nil},
		{"nan value", sysInfo("S1"), []model.MetricFact{metric("disk", "ada0_temperature", math.NaN())}, nil},
		{"inf value", sysInfo("S1"), []model.MetricFact{metric("disk", "ada0_temperature", math.Inf(1))}, nil},
		{"zero timestamp", sysInfo("S1"), []model.MetricFact{stamped(time.Time{})}, nil},
		{"timestamp before nanosecond range", sysInfo("S1"), []model.MetricFact{stamped(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC))}, nil},
		{"timestamp after nanosecond range", sysInfo("S1"), []model.MetricFact{stamped(time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC))}, nil},
		{"timestamp wrapping onto now", sysInfo("S1"), []model.MetricFact{stamped(now.Add(time.Duration(math.MaxInt64)).Add(time.Duration(math.MaxInt64)).Add(2))}, nil},
		{"bad severity", sysInfo("S1"), nil, []model.AlertFact{{Severity: "fatal", Message: "x"}}},
		{"empty message", sysInfo("S1"), nil, []model.AlertFact{{Severity: "info"}}},
		{"alert for another system", sysInfo("S1"), nil, []model.AlertFact{{SystemID: "S9", Severity: "info", Message: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			_, err := svc.Ingest(context.Background(), tt.sys, tt.metrics, tt.alerts)
			assert.ErrorIs(t, err, model.ErrValidation)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestIngest_OutOfRangeTimestampNotVisible(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	wrapped := now.Add(time.Duration(math.MaxInt64)).Add(time.Duration(math.MaxInt64)).Add(2)
	_, err := svc.Ingest(ctx, sysInfo("S1"), []model.MetricFact{stamped(wrapped)}, nil)
	require.ErrorIs(t, err, model.ErrValidation)

	points, err := s.RawMetrics(ctx, store.MetricFilter{})
	require.NoError(t, err)
	assert.Empty(t, points)

	disks, err := svc.Summary(ctx, model.KindDisk, "")
	require.NoError(t, err)
	assert.Equal(t, 0, disks.Disks.TotalDisks)
	assert.Equal(t, 0, disks.Disks.TempCritical)
}

func TestIngest_BoundaryTimestampsAccepted(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, sysInfo("S1"), []model.MetricFact{
		stamped(time.Unix(0, 1).UTC()),
		stamped(time.Date(2262, 1, 1, 0, 0, 0, 0, time.UTC)),
	}, nil)
	require.NoError(t, err)

	points, err := s.RawMetrics(ctx, store.MetricFilter{})
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestKindLabel(t *testing.T) {
	tests := map[string]string{
		model.KindDisk:        model.KindDisk,
		model.KindPool:        model.KindPool,
		model.KindPoolHealth:  model.KindPoolHealth,
		model.KindReplication: model.KindReplication,
		"network":             "other",
		"":                    "other",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kindLabel(kind), kind)
	}
}

func TestIngest_RejectsWholeBatch(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, sysInfo("S1"),
		[]model.MetricFact{
			metric(model.KindDisk, "ada0_temperature", 38),
			metric(model.KindDisk, "ada1_temperature", math.NaN()),
		},
		[]model.AlertFact{{Severity: model.SeverityWarning, Message: "warm"}},
	)
	require.ErrorIs(t, err, model.ErrValidation)

	systems, err := svc.Systems(ctx)
	require.NoError(t, err)
	assert.Empty(t, systems)
	points, err := s.RawMetrics(ctx, store.MetricFilter{})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestIngest_AcceptsUnknownKindsAndOddNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, sysInfo("S1"), []model.MetricFact{
		metric("network", "eth0_rx_bytes", 1),
		metric(model.KindDisk, "noseparator", 1),
		{SystemID: "S1", ResourceKind: model.KindDisk, EntityID: "ada0", Attribute: "smart_status", Value: 1},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.AcceptedMetrics)

	r, err := svc.Summary(ctx, "network", "S1")
	require.NoError(t, err)
	assert.Zero(t, r.Total)
}

func TestQueries_NotFoundAndRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Latest(ctx, "ghost", model.KindDisk, 24)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.History(ctx, "ghost", model.KindDisk, 24)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.Entities(ctx, "ghost", []string{model.KindDisk}, 24)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.Summary(ctx, model.KindDisk, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = svc.Ingest(ctx, sysInfo("S1"), nil, nil)
	require.NoError(t, err)
	_, err = svc.Latest(ctx, "S1", model.KindDisk, 0)
	assert.ErrorIs(t, err, model.ErrRange)
	_, err = svc.RawMetrics(ctx, "S1", "", 9000)
	assert.ErrorIs(t, err, model.ErrRange)
}

func TestLatest_PoolUsedAndTotalUnderCapacity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, sysInfo("S1"), []model.MetricFact{
		metric(model.KindPool, "tank_used", 5200),
		metric(model.KindPool, "tank_total", 8000),
	}, nil)
	require.NoError(t, err)

	entities, err := svc.Latest(ctx, "S1", model.KindPool, 24)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	tank := entities[0]
	assert.Equal(t, "tank", tank.EntityID)
	assert.Equal(t, 5200.0, tank.Attributes["used"].Value)
	assert.Equal(t, 8000.0, tank.Attributes["total"].Value)

	pools, err := svc.Summary(ctx, model.KindPool, "")
	require.NoError(t, err)
	assert.Equal(t, 0, pools.Pools.CapacityWarnings)
	assert.Equal(t, 1, pools.Pools.HealthyPools)
}

func TestHistoryAndEntities(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, temp := range []float64{38, 41, 44} {
		ts := now.Add(-time.Duration(3-i) * time.Minute)
		_, err := svc.Ingest(ctx, sysInfo("S1"), []model.MetricFact{
			{ResourceKind: model.KindDisk, Name: "ada0_temperature", Value: temp, Timestamp: &ts},
		}, nil)
		require.NoError(t, err)
	}

	hist, err := svc.History(ctx, "S1", model.KindDisk, 1)
	require.NoError(t, err)
	require.Len(t, hist["ada0"], 3)
	assert.Equal(t, 44.0, hist["ada0"][0].Value)

	entities, err := svc.Entities(ctx, "S1", []string{model.KindDisk}, 1)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, 44.0, entities[0].Attributes["temperature"].Value)
	assert.Len(t, entities[0].History, 3)

	raw, err := svc.RawMetrics(ctx, "S1", model.KindDisk, 1)
	require.NoError(t, err)
	assert.Len(t, raw, 3)
}

func TestAlertsFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, sysInfo("S1"), nil, []model.AlertFact{
		{Severity: model.SeverityCritical, Message: "pool degraded"},
	})
	require.NoError(t, err)

	list, err := svc.Alerts(ctx, "", new(false), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	_, err = svc.Acknowledge(ctx, id)
	require.NoError(t, err)
	ticket, err := svc.CreateTicket(ctx, id, "halo")
	require.NoError(t, err)
	assert.Equal(t, "HALO-"+strconv.FormatInt(id, 10)+"-001", ticket.TicketID)

	_, err = svc.Acknowledge(ctx, id+100)
	assert.ErrorIs(t, err, model.ErrNotFound)

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AlertCounts{}, d.Alerts)
	assert.Equal(t, 1, d.TotalSystems)
}
