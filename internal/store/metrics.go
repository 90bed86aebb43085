package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
)

// MetricFilter selects rows of the metric log. Zero values mean "no constraint";
// both time bounds are inclusive.
type MetricFilter struct {
	SystemID string
	Kinds    []string
	Since    time.Time
	Until    time.Time
}

func (f MetricFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.SystemID != "" {
		conds = append(conds, "system_id = ?")
		args = append(args, f.SystemID)
	}
	if len(f.Kinds) > 0 {
		conds = append(conds, "resource_kind IN (?"+strings.Repeat(", ?", len(f.Kinds)-1)+")")
		for _, k := range f.Kinds {
			args = append(args, k)
		}
	}
	if !f.Since.IsZero() {
		conds = append(conds, "ts >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if !f.Until.IsZero() {
		conds = append(conds, "ts <= ?")
		args = append(args, f.Until.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const metricColumns = `seq, system_id, resource_kind, raw_name, entity_id, attribute, value, unit, metadata_json, ts`

// ScanMetrics streams every point matching f to fn, newest first under
// (timestamp, seq). Returning an error from fn stops the scan.
func (s *Store) ScanMetrics(ctx context.Context, f MetricFilter, fn func(model.MetricPoint) error) error {
	where, args := f.where()
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+metricColumns+` FROM metrics`+where+` ORDER BY ts DESC, seq DESC`, args...)
	if err != nil {
		return fmt.Errorf("querying metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanMetric(rows)
		if err != nil {
			return fmt.Errorf("scanning metric: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return rows.Err()
}

// RawMetrics returns the points matching f, newest first.
func (s *Store) RawMetrics(ctx context.Context, f MetricFilter) ([]model.MetricPoint, error) {
	var points []model.MetricPoint
	err := s.ScanMetrics(ctx, f, func(p model.MetricPoint) error {
		points = append(points, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// LatestMetrics returns, for every distinct (system, kind, raw name, typed key)
// matching f, the single point that is greatest under (timestamp, seq).
func (s *Store) LatestMetrics(ctx context.Context, f MetricFilter) ([]model.MetricPoint, error) {
	where, args := f.where()
	query := `
		SELECT ` + metricColumns + ` FROM (
			SELECT ` + metricColumns + `,
				ROW_NUMBER() OVER (
					PARTITION BY system_id, resource_kind, raw_name, entity_id, attribute
					ORDER BY ts DESC, seq DESC
				) AS rn
			FROM metrics` + where + `
		) WHERE rn = 1
		ORDER BY ts DESC, seq DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying latest metrics: %w", err)
	}
	defer rows.Close()

	var points []model.MetricPoint
	for rows.Next() {
		p, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning metric: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanMetric(sc scanner) (model.MetricPoint, error) {
	var (
		p                    model.MetricPoint
		entityID, attr, unit sql.NullString
		metaJSON             sql.NullString
		ts                   int64
	)
	if err := sc.Scan(&p.Seq, &p.SystemID, &p.ResourceKind, &p.RawName,
		&entityID, &attr, &p.Value, &unit, &metaJSON, &ts); err != nil {
		return model.MetricPoint{}, err
	}
	p.EntityID = entityID.String
	p.Attribute = attr.String
	p.Unit = nullStr(unit)
	p.Timestamp = fromNanos(ts)
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &p.Metadata); err != nil {
			return model.MetricPoint{}, fmt.Errorf("decoding metadata of metric %d: %w", p.Seq, err)
		}
	}
	return p, nil
}
