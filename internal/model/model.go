// Package model defines all shared domain types for fleetwatch.
package model

import "time"

// Resource kinds known to the decoder and the health classifier. Other kinds
// are accepted and stored but never classified.
const (
	KindPool        = "pool"
	KindPoolHealth  = "pool_health"
	KindDisk        = "disk"
	KindReplication = "replication"
)

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// ValidSeverity reports whether s is one of the accepted alert severities.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// System is a monitored storage appliance. It is created and refreshed only by
// ingestion; LastSeen always advances to the ingestion time.
type System struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Hostname   *string   `json:"hostname,omitempty"`
	Version    *string   `json:"version,omitempty"`
	LastSeen   time.Time `json:"last_seen"`
	ClientName *string   `json:"client_name,omitempty"`
}

// SystemInfo is the system block of an ingestion batch.
type SystemInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Hostname   *string `json:"hostname,omitempty"`
	Version    *string `json:"version,omitempty"`
	ClientName *string `json:"client_name,omitempty"`
}

// MetricFact is a single pushed metric. Legacy collectors send only the
// composite Name ("ada0_temperature"); newer ones may send the typed key
// (EntityID + Attribute) directly.
type MetricFact struct {
	SystemID     string         `json:"system_id,omitempty"`
	ResourceKind string         `json:"metric_type"`
	Name         string         `json:"metric_name"`
	EntityID     string         `json:"entity_id,omitempty"`
	Attribute    string         `json:"attribute,omitempty"`
	Value        float64        `json:"value"`
	Unit         *string        `json:"unit,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    *time.Time     `json:"timestamp,omitempty"`
}

// Typed reports whether the fact carries an explicit entity/attribute key.
func (f MetricFact) Typed() bool {
	return f.EntityID != "" && f.Attribute != ""
}

// AlertFact is a single pushed alert.
type AlertFact struct {
	SystemID string `json:"system_id,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// MetricPoint is an immutable row of the metric log. Seq is the strictly
// increasing insertion sequence used to break timestamp ties.
type MetricPoint struct {
	Seq          int64          `json:"id"`
	SystemID     string         `json:"system_id"`
	ResourceKind string         `json:"metric_type"`
	RawName      string         `json:"metric_name"`
	EntityID     string         `json:"entity_id,omitempty"`
	Attribute    string         `json:"attribute,omitempty"`
	Value        float64        `json:"value"`
	Unit         *string        `json:"unit,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// After reports whether p is ordered after q under (timestamp, seq).
func (p MetricPoint) After(q MetricPoint) bool {
	if !p.Timestamp.Equal(q.Timestamp) {
		return p.Timestamp.After(q.Timestamp)
	}
	return p.Seq > q.Seq
}

// AttributeValue is the current value of one attribute of an entity.
type AttributeValue struct {
	Value     float64        `json:"value"`
	Unit      *string        `json:"unit"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`

	seq int64
}

// NewAttributeValue builds the projected value of a metric point.
func NewAttributeValue(p MetricPoint) AttributeValue {
	return AttributeValue{
		Value:     p.Value,
		Unit:      p.Unit,
		Timestamp: p.Timestamp,
		Metadata:  p.Metadata,
		seq:       p.Seq,
	}
}

// Seq returns the insertion sequence of the point the value was projected from.
func (v AttributeValue) Seq() int64 { return v.seq }

// HistoryPoint is a single entry of an entity's trend history.
type HistoryPoint struct {
	Attribute string    `json:"attribute"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`

	seq int64
}

// NewHistoryPoint builds a history entry for a decoded metric point.
func NewHistoryPoint(attribute string, p MetricPoint) HistoryPoint {
	return HistoryPoint{Attribute: attribute, Value: p.Value, Timestamp: p.Timestamp, seq: p.Seq}
}

// Seq returns the insertion sequence of the underlying point.
func (h HistoryPoint) Seq() int64 { return h.seq }

// EntitySnapshot is the per-entity view served to the dashboard: the latest
// value of every attribute plus the ordered history used for charting.
type EntitySnapshot struct {
	EntityID    string                    `json:"entity_id"`
	SystemID    string                    `json:"system_id"`
	LastUpdated time.Time                 `json:"last_updated"`
	Attributes  map[string]AttributeValue `json:"metrics"`
	History     []HistoryPoint            `json:"history"`
}

// Alert is a stored alert. Acknowledged only ever moves from false to true.
type Alert struct {
	ID           int64     `json:"id"`
	SystemID     string    `json:"system_id"`
	SystemName   string    `json:"system_name,omitempty"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
	TicketID     *string   `json:"ticket_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Ticket is the result of opening a PSA ticket for an alert.
type Ticket struct {
	AlertID  int64  `json:"alert_id"`
	TicketID string `json:"ticket_id"`
	PSA      string `json:"psa"`
	Message  string `json:"message"`
}
