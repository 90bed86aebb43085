// Package alerts implements the acknowledgment and ticket transitions of the
// alert log. Alerts start unacknowledged; both transitions end in the
// acknowledged state and nothing moves an alert back.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/darshan-rambhia/fleetwatch/internal/model"
	"github.com/darshan-rambhia/fleetwatch/internal/store"
)

// Log is the persistence the alert service needs.
type Log interface {
	ListAlerts(ctx context.Context, f store.AlertFilter) ([]model.Alert, error)
	GetAlert(ctx context.Context, id int64) (model.Alert, error)
	AcknowledgeAlert(ctx context.Context, id int64) (model.Alert, error)
	SetAlertTicket(ctx context.Context, id int64, ticketID string) (model.Alert, error)
}

// Service applies alert state transitions.
type Service struct {
	log Log
}

// New creates an alert service backed by log.
func New(log Log) *Service {
	return &Service{log: log}
}

// List returns alerts newest first. A nil acknowledged matches both states.
func (s *Service) List(ctx context.Context, systemID string, acknowledged *bool, limit int) ([]model.Alert, error) {
	alerts, err := s.log.ListAlerts(ctx, store.AlertFilter{
		SystemID:     systemID,
		Acknowledged: acknowledged,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []model.Alert{}
	}
	return alerts, nil
}

// Acknowledge marks an alert acknowledged. Acknowledging an acknowledged
// alert returns it unchanged.
func (s *Service) Acknowledge(ctx context.Context, id int64) (model.Alert, error) {
	a, err := s.log.AcknowledgeAlert(ctx, id)
	if err != nil {
		return model.Alert{}, err
	}
	slog.Info("alert acknowledged", "alert_id", id, "system_id", a.SystemID)
	return a, nil
}

// TicketID formats the stub PSA ticket reference for an alert.
func TicketID(psa string, alertID int64) string {
	return fmt.Sprintf("%s-%d-001", strings.ToUpper(psa), alertID)
}

// CreateTicket opens a (stubbed) PSA ticket for an alert and acknowledges it.
// It may be called again on an acknowledged alert; the newest ticket id
// replaces the previous one.
func (s *Service) CreateTicket(ctx context.Context, id int64, psa string) (model.Ticket, error) {
	psa = strings.TrimSpace(psa)
	if psa == "" {
		return model.Ticket{}, model.Invalid("psa", "must not be empty")
	}

	ticketID := TicketID(psa, id)
	a, err := s.log.SetAlertTicket(ctx, id, ticketID)
	if err != nil {
		return model.Ticket{}, err
	}

	slog.Info("ticket created", "alert_id", id, "psa", psa, "ticket_id", ticketID, "system_id", a.SystemID)
	return model.Ticket{
		AlertID:  id,
		TicketID: ticketID,
		PSA:      psa,
		Message:  fmt.Sprintf("Ticket created in %s", psa),
	}, nil
}
