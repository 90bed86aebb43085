// Package store provides SQLite persistence for the metric and alert logs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding systems, the metric log and the alert log.
type Store struct {
	db *sql.DB
}

// New opens or creates a SQLite database at the given path and runs migrations.
func New(dbPath string) (*Store, error) {
	dsn := "file:" + dbPath +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Batch is one validated ingestion payload. Every metric timestamp is already
// resolved; ReceivedAt becomes the system's last_seen and the alert timestamp.
type Batch struct {
	System     model.SystemInfo
	Metrics    []model.MetricFact
	Alerts     []model.AlertFact
	ReceivedAt time.Time
}

// BatchResult counts the rows written by IngestBatch.
type BatchResult struct {
	Metrics int
	Alerts  int
}

// IngestBatch records the system upsert, all metrics and all alerts in one
// transaction. Either everything is committed or nothing is; a cancelled
// context rolls the transaction back.
func (s *Store) IngestBatch(ctx context.Context, b Batch) (BatchResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertSystem(ctx, tx, b.System, b.ReceivedAt); err != nil {
		return BatchResult{}, err
	}

	metricStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO metrics (system_id, resource_kind, raw_name, entity_id, attribute, value, unit, metadata_json, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return BatchResult{}, fmt.Errorf("preparing metric insert: %w", err)
	}
	defer metricStmt.Close()

	for i, m := range b.Metrics {
		var metaJSON *string
		if len(m.Metadata) > 0 {
			data, err := json.Marshal(m.Metadata)
			if err != nil {
				return BatchResult{}, fmt.Errorf("marshaling metadata of metric %d: %w", i, err)
			}
			str := string(data)
			metaJSON = &str
		}

		ts := b.ReceivedAt
		if m.Timestamp != nil {
			ts = *m.Timestamp
		}

		var entityID, attribute *string
		rawName := m.Name
		if m.Typed() {
			entityID, attribute = &m.EntityID, &m.Attribute
			if rawName == "" {
				rawName = m.EntityID + "_" + m.Attribute
			}
		}

		if _, err := metricStmt.ExecContext(ctx,
			b.System.ID, m.ResourceKind, rawName, entityID, attribute,
			m.Value, m.Unit, metaJSON, ts.UnixNano(),
		); err != nil {
			return BatchResult{}, fmt.Errorf("inserting metric %d (%s): %w", i, rawName, err)
		}
	}

	for i, a := range b.Alerts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO alerts (system_id, ts, severity, message)
			VALUES (?, ?, ?, ?)`,
			b.System.ID, b.ReceivedAt.UnixNano(), a.Severity, a.Message,
		); err != nil {
			return BatchResult{}, fmt.Errorf("inserting alert %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return BatchResult{}, fmt.Errorf("committing batch: %w", err)
	}
	return BatchResult{Metrics: len(b.Metrics), Alerts: len(b.Alerts)}, nil
}

func upsertSystem(ctx context.Context, tx *sql.Tx, sys model.SystemInfo, seen time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO systems (id, name, hostname, version, last_seen, client_name)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hostname = excluded.hostname,
			version = excluded.version,
			last_seen = excluded.last_seen,
			client_name = excluded.client_name`,
		sys.ID, sys.Name, sys.Hostname, sys.Version, seen.UnixNano(), sys.ClientName,
	)
	if err != nil {
		return fmt.Errorf("upserting system %s: %w", sys.ID, err)
	}
	return nil
}

// GetSystem returns a single system or model.ErrNotFound.
func (s *Store) GetSystem(ctx context.Context, id string) (model.System, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, hostname, version, last_seen, client_name
		FROM systems WHERE id = ?`, id)
	sys, err := scanSystem(row)
	if err == sql.ErrNoRows {
		return model.System{}, model.NotFoundError("system", id)
	}
	if err != nil {
		return model.System{}, fmt.Errorf("querying system %s: %w", id, err)
	}
	return sys, nil
}

// ListSystems returns all systems ordered by name.
func (s *Store) ListSystems(ctx context.Context) ([]model.System, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, hostname, version, last_seen, client_name
		FROM systems ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying systems: %w", err)
	}
	defer rows.Close()

	var systems []model.System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning system: %w", err)
		}
		systems = append(systems, sys)
	}
	return systems, rows.Err()
}

// CountSystems returns the total number of systems and the number seen at or
// after since.
func (s *Store) CountSystems(ctx context.Context, since time.Time) (total, seen int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN last_seen >= ? THEN 1 ELSE 0 END), 0)
		FROM systems`, since.UnixNano()).Scan(&total, &seen)
	if err != nil {
		return 0, 0, fmt.Errorf("counting systems: %w", err)
	}
	return total, seen, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSystem(sc scanner) (model.System, error) {
	var (
		sys                         model.System
		hostname, version, clientNm sql.NullString
		lastSeen                    int64
	)
	if err := sc.Scan(&sys.ID, &sys.Name, &hostname, &version, &lastSeen, &clientNm); err != nil {
		return model.System{}, err
	}
	sys.Hostname = nullStr(hostname)
	sys.Version = nullStr(version)
	sys.ClientName = nullStr(clientNm)
	sys.LastSeen = fromNanos(lastSeen)
	return sys, nil
}

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
