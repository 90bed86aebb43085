package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
)

const alertSelect = `
	SELECT a.id, a.system_id, COALESCE(s.name, ''), a.severity, a.message, a.acknowledged, a.ticket_id, a.ts
	FROM alerts a LEFT JOIN systems s ON s.id = a.system_id`

// AlertFilter selects alerts. A nil Acknowledged matches both states.
type AlertFilter struct {
	SystemID     string
	Acknowledged *bool
	Limit        int
}

// ListAlerts returns alerts matching f, newest first.
func (s *Store) ListAlerts(ctx context.Context, f AlertFilter) ([]model.Alert, error) {
	query := alertSelect + ` WHERE 1=1`
	var args []any
	if f.SystemID != "" {
		query += ` AND a.system_id = ?`
		args = append(args, f.SystemID)
	}
	if f.Acknowledged != nil {
		query += ` AND a.acknowledged = ?`
		args = append(args, *f.Acknowledged)
	}
	query += ` ORDER BY a.ts DESC, a.id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// GetAlert returns a single alert or model.ErrNotFound.
func (s *Store) GetAlert(ctx context.Context, id int64) (model.Alert, error) {
	a, err := scanAlert(s.db.QueryRowContext(ctx, alertSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Alert{}, model.NotFoundError("alert", id)
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("querying alert %d: %w", id, err)
	}
	return a, nil
}

// AcknowledgeAlert marks an alert acknowledged. Acknowledging twice is a no-op.
func (s *Store) AcknowledgeAlert(ctx context.Context, id int64) (model.Alert, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET acknowledged = 1 WHERE id = ?`, id)
	if err != nil {
		return model.Alert{}, fmt.Errorf("acknowledging alert %d: %w", id, err)
	}
	if err := requireRow(res, "alert", id); err != nil {
		return model.Alert{}, err
	}
	return s.GetAlert(ctx, id)
}

// SetAlertTicket records a ticket id on an alert and acknowledges it. A later
// ticket replaces an earlier one.
func (s *Store) SetAlertTicket(ctx context.Context, id int64, ticketID string) (model.Alert, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET ticket_id = ?, acknowledged = 1 WHERE id = ?`, ticketID, id)
	if err != nil {
		return model.Alert{}, fmt.Errorf("setting ticket on alert %d: %w", id, err)
	}
	if err := requireRow(res, "alert", id); err != nil {
		return model.Alert{}, err
	}
	return s.GetAlert(ctx, id)
}

// CountUnacknowledged returns the number of unacknowledged alerts per severity.
func (s *Store) CountUnacknowledged(ctx context.Context) (model.AlertCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, COUNT(*) FROM alerts
		WHERE acknowledged = 0
		GROUP BY severity`)
	if err != nil {
		return model.AlertCounts{}, fmt.Errorf("counting alerts: %w", err)
	}
	defer rows.Close()

	var counts model.AlertCounts
	for rows.Next() {
		var (
			severity string
			n        int
		)
		if err := rows.Scan(&severity, &n); err != nil {
			return model.AlertCounts{}, fmt.Errorf("scanning alert count: %w", err)
		}
		switch severity {
		case model.SeverityCritical:
			counts.Critical = n
		case model.SeverityWarning:
			counts.Warning = n
		case model.SeverityInfo:
			counts.Info = n
		}
	}
	return counts, rows.Err()
}

func requireRow(res sql.Result, what string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.NotFoundError(what, id)
	}
	return nil
}

func scanAlert(sc scanner) (model.Alert, error) {
	var (
		a      model.Alert
		ticket sql.NullString
		ts     int64
	)
	if err := sc.Scan(&a.ID, &a.SystemID, &a.SystemName, &a.Severity, &a.Message,
		&a.Acknowledged, &ticket, &ts); err != nil {
		return model.Alert{}, err
	}
	a.TicketID = nullStr(ticket)
	a.Timestamp = fromNanos(ts)
	return a, nil
}
