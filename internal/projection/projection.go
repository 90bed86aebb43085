// Package projection derives current values and trend histories from the
// append-only metric log at query time.
//
// Every view goes through the same row filter and the same resolve step, so
// the latest snapshot, the history and the per-entity view always agree on
// which rows belong to which entity.
package projection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/store"
)

// AllTime disables the lower window bound.
const AllTime time.Duration = 0

// Reader is the read side of the metric log.
type Reader interface {
	ScanMetrics(ctx context.Context, f store.MetricFilter, fn func(model.MetricPoint) error) error
	LatestMetrics(ctx context.Context, f store.MetricFilter) ([]model.MetricPoint, error)
}

// Snapshot maps entity → attribute → current value.
type Snapshot map[string]map[string]model.AttributeValue

// History maps entity → points, newest first.
type History map[string][]model.HistoryPoint

// Scope selects the rows a projection reads. An empty SystemID spans the
// whole fleet.
type Scope struct {
	SystemID string
	Kinds    []string
}

// Projector answers windowed latest/history queries.
type Projector struct {
	reader  Reader
	decoder keydecode.Decoder
	now     func() time.Time
}

// New returns a projector decoding legacy names with d. A nil decoder means
// the positional one.
func New(r Reader, d keydecode.Decoder) *Projector {
	if d == nil {
		d = keydecode.Positional{}
	}
	return &Projector{reader: r, decoder: d, now: time.Now}
}

// WithClock returns a copy of p that reads the current time from now.
func (p *Projector) WithClock(now func() time.Time) *Projector {
	cp := *p
	cp.now = now
	return &cp
}

// WithDecoder returns a copy of p using d for legacy names.
func (p *Projector) WithDecoder(d keydecode.Decoder) *Projector {
	cp := *p
	cp.decoder = d
	return &cp
}

// Now returns the projector's current time.
func (p *Projector) Now() time.Time { return p.now() }

// Decoder returns the decoder used for legacy names.
func (p *Projector) Decoder() keydecode.Decoder { return p.decoder }

// resolve returns the key of a point: the typed key when it was ingested with
// one, otherwise the decoded raw name.
func (p *Projector) resolve(pt model.MetricPoint) keydecode.Key {
	if pt.EntityID != "" && pt.Attribute != "" {
		return keydecode.Key{EntityID: pt.EntityID, Attribute: pt.Attribute}
	}
	return p.decoder.Decode(pt.ResourceKind, pt.RawName)
}

// filter bounds a scope to [now-window, now].
func filter(sc Scope, window time.Duration, now time.Time) store.MetricFilter {
	f := store.MetricFilter{SystemID: sc.SystemID, Kinds: sc.Kinds, Until: now}
	if window > AllTime {
		f.Since = now.Add(-window)
	}
	return f
}

// newer reports whether pt orders after the value already projected.
func newer(pt model.MetricPoint, cur model.AttributeValue) bool {
	if !pt.Timestamp.Equal(cur.Timestamp) {
		return pt.Timestamp.After(cur.Timestamp)
	}
	return pt.Seq > cur.Seq()
}

func (s Snapshot) put(key keydecode.Key, pt model.MetricPoint) {
	attrs, ok := s[key.EntityID]
	if !ok {
		attrs = make(map[string]model.AttributeValue)
		s[key.EntityID] = attrs
	}
	if cur, ok := attrs[key.Attribute]; ok && !newer(pt, cur) {
		return
	}
	attrs[key.Attribute] = model.NewAttributeValue(pt)
}

// Latest returns the current value of every attribute of every entity of kind
// on one system within the window.
func (p *Projector) Latest(ctx context.Context, systemID, kind string, window time.Duration) (Snapshot, error) {
	bySystem, err := p.LatestBySystem(ctx, Scope{SystemID: systemID, Kinds: []string{kind}}, window)
	if err != nil {
		return nil, err
	}
	if snap, ok := bySystem[systemID]; ok {
		return snap, nil
	}
	return Snapshot{}, nil
}

// LatestBySystem projects the scope and partitions the result per system.
// The store pre-collapses rows per raw name; the final collapse happens here
// after decoding since two raw names may resolve to the same key.
func (p *Projector) LatestBySystem(ctx context.Context, sc Scope, window time.Duration) (map[string]Snapshot, error) {
	points, err := p.reader.LatestMetrics(ctx, filter(sc, window, p.now()))
	if err != nil {
		return nil, fmt.Errorf("projecting latest values: %w", err)
	}

	out := make(map[string]Snapshot)
	for _, pt := range points {
		snap, ok := out[pt.SystemID]
		if !ok {
			snap = make(Snapshot)
			out[pt.SystemID] = snap
		}
		snap.put(p.resolve(pt), pt)
	}
	return out, nil
}

// History returns every point of every entity of kind on one system within
// the window, newest first.
func (p *Projector) History(ctx context.Context, systemID, kind string, window time.Duration) (History, error) {
	bySystem, err := p.HistoryBySystem(ctx, Scope{SystemID: systemID, Kinds: []string{kind}}, window)
	if err != nil {
		return nil, err
	}
	if h, ok := bySystem[systemID]; ok {
		return h, nil
	}
	return History{}, nil
}

// HistoryBySystem assembles histories for the scope, partitioned per system.
func (p *Projector) HistoryBySystem(ctx context.Context, sc Scope, window time.Duration) (map[string]History, error) {
	out := make(map[string]History)
	err := p.reader.ScanMetrics(ctx, filter(sc, window, p.now()), func(pt model.MetricPoint) error {
		h, ok := out[pt.SystemID]
		if !ok {
			h = make(History)
			out[pt.SystemID] = h
		}
		key := p.resolve(pt)
		h[key.EntityID] = append(h[key.EntityID], model.NewHistoryPoint(key.Attribute, pt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assembling history: %w", err)
	}
	return out, nil
}

// Entities builds the per-entity view of one system: the latest value of each
// attribute plus the full history, from a single pass over the window.
// Entities are ordered by id.
func (p *Projector) Entities(ctx context.Context, systemID string, kinds []string, window time.Duration) ([]model.EntitySnapshot, error) {
	snap := make(Snapshot)
	hist := make(History)

	f := filter(Scope{SystemID: systemID, Kinds: kinds}, window, p.now())
	err := p.reader.ScanMetrics(ctx, f, func(pt model.MetricPoint) error {
		key := p.resolve(pt)
		snap.put(key, pt)
		hist[key.EntityID] = append(hist[key.EntityID], model.NewHistoryPoint(key.Attribute, pt))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building entity view: %w", err)
	}

	entities := snap.Entities(systemID)
	for i := range entities {
		entities[i].History = hist[entities[i].EntityID]
	}
	return entities, nil
}

// Entities flattens a snapshot into entity views ordered by id, without
// history.
func (s Snapshot) Entities(systemID string) []model.EntitySnapshot {
	out := make([]model.EntitySnapshot, 0, len(s))
	for id, attrs := range s {
		var last time.Time
		for _, v := range attrs {
			if v.Timestamp.After(last) {
				last = v.Timestamp
			}
		}
		out = append(out, model.EntitySnapshot{
			EntityID:    id,
			SystemID:    systemID,
			LastUpdated: last,
			Attributes:  attrs,
			History:     []model.HistoryPoint{},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out
}
