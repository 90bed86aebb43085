package health

import (
	"math"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
)

// Rule is one row of a kind's rule table. Window bounds how old the latest
// point of Attribute may be for the rule to see it; a zero Window means the
// latest point counts regardless of age. MaxAge is set on staleness rules,
// whose value is an epoch timestamp in seconds.
type Rule struct {
	Attribute string
	Window    time.Duration
	Threshold float64
	MaxAge    time.Duration
}

// DiskRules holds the disk rule table.
type DiskRules struct {
	Discovery    time.Duration
	TempWarning  Rule
	TempCritical Rule
	SmartFailure Rule
	Distribution Rule
	Hottest      Rule
}

// PoolRules holds the pool rule table. Pools read both the pool and
// pool_health kinds.
type PoolRules struct {
	Discovery      Rule
	Degraded       Rule
	NeedsScrub     Rule
	ActiveResilver Rule
	Capacity       Rule
	CapacityTotal  string
	Usage          Rule
}

// ReplicationRules holds the replication rule table.
type ReplicationRules struct {
	Discovery   Rule
	Failed      Rule
	Stale       Rule
	LastSuccess Rule
}

// current returns the latest value of the rule's attribute when the rule can
// see it.
func (r Rule) current(attrs map[string]model.AttributeValue, now time.Time) (model.AttributeValue, bool) {
	v, ok := attrs[r.Attribute]
	if !ok {
		return v, false
	}
	if r.Window > 0 && v.Timestamp.Before(now.Add(-r.Window)) {
		return v, false
	}
	return v, true
}

// matches reports whether the current value equals the threshold.
func (r Rule) matches(attrs map[string]model.AttributeValue, now time.Time) bool {
	v, ok := r.current(attrs, now)
	return ok && v.Value == r.Threshold
}

// exceeds reports whether the current value is above the threshold.
func (r Rule) exceeds(attrs map[string]model.AttributeValue, now time.Time) (float64, bool) {
	v, ok := r.current(attrs, now)
	return v.Value, ok && v.Value > r.Threshold
}

// stale reports whether the epoch timestamp held by the rule's attribute is
// older than MaxAge, and returns how old it is.
func (r Rule) stale(attrs map[string]model.AttributeValue, now time.Time) (time.Duration, bool) {
	v, ok := r.current(attrs, now)
	if !ok {
		return 0, false
	}
	at, ok := epoch(v.Value)
	if !ok {
		return 0, false
	}
	return now.Sub(at), at.Before(now.Add(-r.MaxAge))
}

// maxEpochSeconds bounds epoch values to the range time.Time can compare in
// nanoseconds.
const maxEpochSeconds = float64(math.MaxInt64 / int64(time.Second))

// epoch converts an epoch value in seconds. Values that are not finite or lie
// outside the nanosecond range are rejected.
func epoch(seconds float64) (time.Time, bool) {
	if math.IsNaN(seconds) || seconds > maxEpochSeconds || seconds < -maxEpochSeconds {
		return time.Time{}, false
	}
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

// Rules is the complete classifier rule table.
type Rules struct {
	Disk        DiskRules
	Pool        PoolRules
	Replication ReplicationRules
}

// Replication status values pushed by the collectors.
const (
	replicationFailed  = 0
	replicationSuccess = 2
)

// DefaultRules returns the fixed thresholds and windows used by the dashboard.
func DefaultRules() Rules {
	return Rules{
		Disk: DiskRules{
			Discovery:    24 * time.Hour,
			TempWarning:  Rule{Attribute: "temperature", Window: time.Hour, Threshold: 45},
			TempCritical: Rule{Attribute: "temperature", Window: time.Hour, Threshold: 55},
			SmartFailure: Rule{Attribute: "smart_status", Window: 24 * time.Hour, Threshold: 0},
			Distribution: Rule{Attribute: "temperature", Window: 24 * time.Hour},
			Hottest:      Rule{Attribute: "temperature", Window: time.Hour},
		},
		Pool: PoolRules{
			Discovery:      Rule{Attribute: "total", Window: 24 * time.Hour},
			Degraded:       Rule{Attribute: "state", Window: 24 * time.Hour, Threshold: 0},
			NeedsScrub:     Rule{Attribute: "scrub_last", MaxAge: 7 * 24 * time.Hour},
			ActiveResilver: Rule{Attribute: "resilver_status", Window: time.Hour, Threshold: 1},
			Capacity:       Rule{Attribute: "used", Window: time.Hour, Threshold: 0.8},
			CapacityTotal:  "total",
			Usage:          Rule{Attribute: "used", Window: 24 * time.Hour},
		},
		Replication: ReplicationRules{
			Discovery:   Rule{Attribute: "status", Window: 24 * time.Hour},
			Failed:      Rule{Attribute: "status", Window: 24 * time.Hour, Threshold: replicationFailed},
			Stale:       Rule{Attribute: "last_run", MaxAge: 24 * time.Hour},
			LastSuccess: Rule{Attribute: "status", Window: 7 * 24 * time.Hour, Threshold: replicationSuccess},
		},
	}
}
