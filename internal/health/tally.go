package health

import (
	"fmt"
	"math"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/projection"
)

const (
	sketchAccuracy = 0.01
	gbPerTB        = 1024
)

// tally is the running count of one kind for one system, or for several
// systems once merged. Fleet reports are always built by merging per-system
// tallies, so the two views cannot disagree. The healthy count is clamped per
// system when the tally is evaluated and only summed afterwards.
type tally interface {
	merge(other tally) error
	report(systemID string) model.SummaryReport
}

// input is everything a rule table needs for one system.
type input struct {
	systemID string
	latest   projection.Snapshot
	history  projection.History
	now      time.Time
}

// Disks

type diskTally struct {
	total         int
	healthy       int
	warnings      int
	tempCritical  int
	smartFailures int

	tempSum   float64
	tempCount int
	sketch    *ddsketch.DDSketch
	hottest   *model.HottestDisk
}

func newDiskTally() *diskTally {
	t := &diskTally{}
	sketch, err := ddsketch.NewDefaultDDSketch(sketchAccuracy)
	if err == nil {
		t.sketch = sketch
	}
	return t
}

func (r DiskRules) evaluate(in input) *diskTally {
	t := newDiskTally()
	for disk, attrs := range in.latest {
		if !seenWithin(attrs, r.Discovery, in.now) {
			continue
		}
		t.total++

		// critical is a superset of warning; both counters move
		if _, ok := r.TempWarning.exceeds(attrs, in.now); ok {
			t.warnings++
		}
		if _, ok := r.TempCritical.exceeds(attrs, in.now); ok {
			t.tempCritical++
		}
		if r.SmartFailure.matches(attrs, in.now) {
			t.smartFailures++
		}

		if v, ok := r.Distribution.current(attrs, in.now); ok {
			t.observe(v.Value)
		}
		if v, ok := r.Hottest.current(attrs, in.now); ok {
			t.consider(model.HottestDisk{Disk: disk, Temperature: v.Value, SystemID: in.systemID})
		}
	}
	// a disk that is both hot and failing is subtracted twice
	t.healthy = max(0, t.total-t.warnings-t.smartFailures)
	return t
}

func (t *diskTally) observe(temp float64) {
	t.tempSum += temp
	t.tempCount++
	if t.sketch != nil {
		t.sketch.Add(temp)
	}
}

func (t *diskTally) consider(d model.HottestDisk) {
	if t.hottest == nil || hotter(d, *t.hottest) {
		t.hottest = &d
	}
}

func hotter(a, b model.HottestDisk) bool {
	if a.Temperature != b.Temperature {
		return a.Temperature > b.Temperature
	}
	if a.SystemID != b.SystemID {
		return a.SystemID < b.SystemID
	}
	return a.Disk < b.Disk
}

func (t *diskTally) merge(other tally) error {
	o := other.(*diskTally)
	t.total += o.total
	t.healthy += o.healthy
	t.warnings += o.warnings
	t.tempCritical += o.tempCritical
	t.smartFailures += o.smartFailures
	t.tempSum += o.tempSum
	t.tempCount += o.tempCount
	if t.sketch != nil && o.sketch != nil {
		if err := t.sketch.MergeWith(o.sketch); err != nil {
			return fmt.Errorf("merging temperature sketch: %w", err)
		}
	}
	if o.hottest != nil {
		t.consider(*o.hottest)
	}
	return nil
}

func (t *diskTally) report(systemID string) model.SummaryReport {
	ds := &model.DiskSummary{
		TotalDisks:    t.total,
		HealthyDisks:  t.healthy,
		Warnings:      t.warnings,
		TempCritical:  t.tempCritical,
		Critical:      t.tempCritical + t.smartFailures,
		SmartFailures: t.smartFailures,
		HottestDisk:   t.hottest,
	}
	if t.tempCount > 0 {
		ds.AvgTemperature = new(round(t.tempSum/float64(t.tempCount), 1))
	}
	if t.sketch != nil && !t.sketch.IsEmpty() {
		if q, err := t.sketch.GetValueAtQuantile(0.95); err == nil {
			ds.P95Temperature = new(round(q, 1))
		}
	}
	return model.SummaryReport{
		Kind:     model.KindDisk,
		SystemID: systemID,
		Total:    ds.TotalDisks,
		Healthy:  ds.HealthyDisks,
		Warning:  ds.Warnings,
		Critical: ds.Critical,
		Disks:    ds,
	}
}

// Pools

type poolTally struct {
	total            int
	healthy          int
	degraded         int
	needsScrub       int
	activeResilvers  int
	capacityWarnings int
	totalGB          float64
	usedGB           float64
}

func (r PoolRules) evaluate(in input) *poolTally {
	t := &poolTally{}
	for _, attrs := range in.latest {
		if v, ok := r.Discovery.current(attrs, in.now); ok {
			t.total++
			t.totalGB += v.Value
		}
		if v, ok := r.Usage.current(attrs, in.now); ok {
			t.usedGB += v.Value
		}
		if r.Degraded.matches(attrs, in.now) {
			t.degraded++
		}
		if _, ok := r.NeedsScrub.stale(attrs, in.now); ok {
			t.needsScrub++
		}
		if r.ActiveResilver.matches(attrs, in.now) {
			t.activeResilvers++
		}
		if r.overCapacity(attrs, in.now) {
			t.capacityWarnings++
		}
	}
	t.healthy = max(0, t.total-t.degraded-t.needsScrub)
	return t
}

// overCapacity compares the latest used value inside the capacity window with
// the latest total of any age. The two may come from different batches.
func (r PoolRules) overCapacity(attrs map[string]model.AttributeValue, now time.Time) bool {
	used, ok := r.Capacity.current(attrs, now)
	if !ok {
		return false
	}
	total, ok := attrs[r.CapacityTotal]
	if !ok || total.Value <= 0 {
		return false
	}
	return used.Value/total.Value > r.Capacity.Threshold
}

func (t *poolTally) merge(other tally) error {
	o := other.(*poolTally)
	t.total += o.total
	t.healthy += o.healthy
	t.degraded += o.degraded
	t.needsScrub += o.needsScrub
	t.activeResilvers += o.activeResilvers
	t.capacityWarnings += o.capacityWarnings
	t.totalGB += o.totalGB
	t.usedGB += o.usedGB
	return nil
}

func (t *poolTally) report(systemID string) model.SummaryReport {
	ps := &model.PoolSummary{
		TotalPools:       t.total,
		HealthyPools:     t.healthy,
		DegradedPools:    t.degraded,
		NeedsScrub:       t.needsScrub,
		ActiveResilvers:  t.activeResilvers,
		CapacityWarnings: t.capacityWarnings,
		TotalCapacityTB:  round(t.totalGB/gbPerTB, 2),
		UsedCapacityTB:   round(t.usedGB/gbPerTB, 2),
	}
	return model.SummaryReport{
		Kind:     model.KindPool,
		SystemID: systemID,
		Total:    ps.TotalPools,
		Healthy:  ps.HealthyPools,
		Warning:  ps.NeedsScrub + ps.CapacityWarnings,
		Critical: ps.DegradedPools,
		Pools:    ps,
	}
}

// Replication

type replicationTally struct {
	total       int
	healthy     int
	failed      int
	stale       int
	lastSuccess *time.Time
	oldestStale *model.StaleTask
	oldestAge   time.Duration
}

func (r ReplicationRules) evaluate(in input) *replicationTally {
	t := &replicationTally{}
	for task, attrs := range in.latest {
		if _, ok := r.Discovery.current(attrs, in.now); ok {
			t.total++
		}
		if r.Failed.matches(attrs, in.now) {
			t.failed++
		}
		if age, ok := r.Stale.stale(attrs, in.now); ok {
			t.stale++
			t.considerStale(model.StaleTask{Task: task, SystemID: in.systemID}, age)
		}
	}

	// history is newest first, so the first success per task is its latest
	cutoff := in.now.Add(-r.LastSuccess.Window)
	for _, points := range in.history {
		for _, p := range points {
			if p.Attribute != r.LastSuccess.Attribute || p.Value != r.LastSuccess.Threshold {
				continue
			}
			if !p.Timestamp.Before(cutoff) {
				t.considerSuccess(p.Timestamp)
			}
			break
		}
	}
	t.healthy = max(0, t.total-t.failed-t.stale)
	return t
}

func (t *replicationTally) considerSuccess(ts time.Time) {
	if t.lastSuccess == nil || ts.After(*t.lastSuccess) {
		t.lastSuccess = &ts
	}
}

func (t *replicationTally) considerStale(task model.StaleTask, age time.Duration) {
	if t.oldestStale != nil {
		if age < t.oldestAge {
			return
		}
		if age == t.oldestAge && (task.SystemID > t.oldestStale.SystemID ||
			(task.SystemID == t.oldestStale.SystemID && task.Task > t.oldestStale.Task)) {
			return
		}
	}
	task.HoursAgo = round(age.Hours(), 1)
	t.oldestStale = &task
	t.oldestAge = age
}

func (t *replicationTally) merge(other tally) error {
	o := other.(*replicationTally)
	t.total += o.total
	t.healthy += o.healthy
	t.failed += o.failed
	t.stale += o.stale
	if o.lastSuccess != nil {
		t.considerSuccess(*o.lastSuccess)
	}
	if o.oldestStale != nil {
		t.considerStale(*o.oldestStale, o.oldestAge)
	}
	return nil
}

func (t *replicationTally) report(systemID string) model.SummaryReport {
	rs := &model.ReplicationSummary{
		TotalTasks:   t.total,
		HealthyTasks: t.healthy,
		FailedTasks:  t.failed,
		StaleTasks:   t.stale,
		LastSuccess:  t.lastSuccess,
		OldestStale:  t.oldestStale,
	}
	return model.SummaryReport{
		Kind:        model.KindReplication,
		SystemID:    systemID,
		Total:       rs.TotalTasks,
		Healthy:     rs.HealthyTasks,
		Warning:     rs.StaleTasks,
		Critical:    rs.FailedTasks,
		Replication: rs,
	}
}

func seenWithin(attrs map[string]model.AttributeValue, window time.Duration, now time.Time) bool {
	cutoff := now.Add(-window)
	for _, v := range attrs {
		if !v.Timestamp.Before(cutoff) {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
