// Package health turns projected metric snapshots into per-kind health
// summaries for a single system or the whole fleet.
package health

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/keydecode"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/projection"
	"golang.org/x/sync/errgroup"
)

// Stats supplies the system and alert counters of the dashboard.
type Stats interface {
	CountSystems(ctx context.Context, since time.Time) (total, seen int, err error)
	CountUnacknowledged(ctx context.Context) (model.AlertCounts, error)
}

// Classifier evaluates the rule table. It always decodes legacy names with
// the vocabulary decoder since the rules address multi-word attributes such
// as smart_status and last_run.
type Classifier struct {
	proj  *projection.Projector
	stats Stats
	rules Rules

	// systems not seen within this window count as stale on the dashboard
	systemStaleAfter time.Duration
}

// New creates a classifier reading through proj.
func New(proj *projection.Projector, stats Stats) *Classifier {
	return &Classifier{
		proj:             proj.WithDecoder(keydecode.NewVocabulary(keydecode.DefaultVocabulary())),
		stats:            stats,
		rules:            DefaultRules(),
		systemStaleAfter: time.Hour,
	}
}

// Kinds lists the summary kinds the classifier knows, in dashboard order.
func Kinds() []string {
	return []string{model.KindDisk, model.KindPool, model.KindReplication}
}

// sources returns the log kinds a summary kind reads, or nil when the kind has
// no rule table.
func sources(kind string) []string {
	switch kind {
	case model.KindDisk:
		return []string{model.KindDisk}
	case model.KindPool, model.KindPoolHealth:
		return []string{model.KindPool, model.KindPoolHealth}
	case model.KindReplication:
		return []string{model.KindReplication}
	}
	return nil
}

func (c *Classifier) fresh(kind string) tally {
	switch kind {
	case model.KindDisk:
		return newDiskTally()
	case model.KindPool, model.KindPoolHealth:
		return &poolTally{}
	case model.KindReplication:
		return &replicationTally{}
	}
	return nil
}

func (c *Classifier) evaluate(kind string, in input) tally {
	switch kind {
	case model.KindDisk:
		return c.rules.Disk.evaluate(in)
	case model.KindPool, model.KindPoolHealth:
		return c.rules.Pool.evaluate(in)
	case model.KindReplication:
		return c.rules.Replication.evaluate(in)
	}
	return nil
}

// tallies runs the rule table once per system. An empty systemID covers the
// whole fleet.
func (c *Classifier) tallies(ctx context.Context, kind, systemID string) (map[string]tally, error) {
	kinds := sources(kind)
	if kinds == nil {
		return nil, nil
	}

	// every read of one summary sees the same clock
	now := c.proj.Now()
	proj := c.proj.WithClock(func() time.Time { return now })
	scope := projection.Scope{SystemID: systemID, Kinds: kinds}

	latest, err := proj.LatestBySystem(ctx, scope, projection.AllTime)
	if err != nil {
		return nil, fmt.Errorf("classifying %s: %w", kind, err)
	}

	var history map[string]projection.History
	if kind == model.KindReplication {
		history, err = proj.HistoryBySystem(ctx, scope, c.rules.Replication.LastSuccess.Window)
		if err != nil {
			return nil, fmt.Errorf("classifying %s: %w", kind, err)
		}
	}

	out := make(map[string]tally, len(latest))
	for sys, snap := range latest {
		out[sys] = c.evaluate(kind, input{
			systemID: sys,
			latest:   snap,
			history:  history[sys],
			now:      now,
		})
	}
	return out, nil
}

// System returns the summary of one kind for one system. Unknown kinds and
// systems without data yield an all-zero report.
func (c *Classifier) System(ctx context.Context, kind, systemID string) (model.SummaryReport, error) {
	ts, err := c.tallies(ctx, kind, systemID)
	if err != nil {
		return model.SummaryReport{}, err
	}
	t, ok := ts[systemID]
	if !ok {
		t = c.fresh(kind)
	}
	if t == nil {
		return model.SummaryReport{Kind: kind, SystemID: systemID}, nil
	}
	return t.report(systemID), nil
}

// BySystem returns the summary of one kind for every system that has data.
func (c *Classifier) BySystem(ctx context.Context, kind string) (map[string]model.SummaryReport, error) {
	ts, err := c.tallies(ctx, kind, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.SummaryReport, len(ts))
	for sys, t := range ts {
		out[sys] = t.report(sys)
	}
	return out, nil
}

// Fleet returns the summary of one kind across all systems: the per-system
// tallies summed, with call-outs taking the fleet-wide extreme.
func (c *Classifier) Fleet(ctx context.Context, kind string) (model.SummaryReport, error) {
	ts, err := c.tallies(ctx, kind, "")
	if err != nil {
		return model.SummaryReport{}, err
	}
	acc := c.fresh(kind)
	if acc == nil {
		return model.SummaryReport{Kind: kind}, nil
	}

	systems := make([]string, 0, len(ts))
	for sys := range ts {
		systems = append(systems, sys)
	}
	slices.Sort(systems)
	for _, sys := range systems {
		if err := acc.merge(ts[sys]); err != nil {
			return model.SummaryReport{}, fmt.Errorf("merging %s summary of %s: %w", kind, sys, err)
		}
	}
	return acc.report(""), nil
}

// Dashboard assembles the fleet overview. Its parts are independent reads, so
// a concurrent ingestion may be visible in some parts and not in others.
func (c *Classifier) Dashboard(ctx context.Context) (model.DashboardSummary, error) {
	var d model.DashboardSummary
	now := c.proj.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, seen, err := c.stats.CountSystems(gctx, now.Add(-c.systemStaleAfter))
		if err != nil {
			return err
		}
		d.TotalSystems = total
		d.HealthySystems = seen
		d.StaleSystems = total - seen
		return nil
	})
	g.Go(func() error {
		counts, err := c.stats.CountUnacknowledged(gctx)
		if err != nil {
			return err
		}
		d.Alerts = counts
		return nil
	})
	g.Go(func() error {
		r, err := c.Fleet(gctx, model.KindDisk)
		d.Disks = r
		return err
	})
	g.Go(func() error {
		r, err := c.Fleet(gctx, model.KindPool)
		if r.Pools != nil {
			d.TotalStorageTB = r.Pools.TotalCapacityTB
		}
		d.Pools = r
		return err
	})
	g.Go(func() error {
		r, err := c.Fleet(gctx, model.KindReplication)
		d.Replication = r
		return err
	})

	if err := g.Wait(); err != nil {
		return model.DashboardSummary{}, fmt.Errorf("building dashboard: %w", err)
	}
	return d, nil
}
