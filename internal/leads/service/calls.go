package service

import (
	"context"
	"errors"
	"time"

	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/leads/domain"
	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/platform/apperr"
)

// RecordCall logs one call attempt: the contact status ladder advances, the
// connect history grows, and an optional note is appended alongside.
func (s *Service) RecordCall(ctx context.Context, leadID string, req transport.RecordCallRequest, kamID string) (repository.Lead, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return repository.Lead{}, err
	}

	outcome := domain.CallOutcome{Connection: domain.Connection(req.Connection)}
	if req.Medium != nil {
		outcome.Medium = domain.Medium(*req.Medium)
	}
	if req.Direction != nil {
		outcome.Direction = domain.Direction(*req.Direction)
	}
	if req.Note != nil {
		outcome.Note = *req.Note
	}
	if err := outcome.Validate(); err != nil {
		return repository.Lead{}, apperr.Validation(err.Error()).WithOp("leads.RecordCall")
	}
	outcome = outcome.WithDefaults()

	next := s.machine.Next(domain.ContactStatus(lead.ContactStatus), outcome.Connection)
	connected := outcome.Connection == domain.ConnectionConnected

	updated, err := s.repo.RecordCall(ctx, repository.RecordCallParams{
		LeadID:        leadID,
		ContactStatus: string(next),
		Connection:    string(outcome.Connection),
		Medium:        string(outcome.Medium),
		Direction:     string(outcome.Direction),
		Connected:     connected,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found").WithOp("leads.RecordCall")
		}
		return repository.Lead{}, err
	}

	if outcome.Note != "" {
		_, err := s.repo.CreateNote(ctx, repository.CreateNoteParams{
			LeadRowID: updated.ID,
			KamID:     kamID,
			Note:      outcome.Note,
			Source:    "call",
		})
		if err != nil {
			// The call itself is recorded; losing the side note is not
			// worth failing the request over.
			s.log.DatabaseError("create call note", err)
		}
	}

	s.bus.Publish(ctx, events.CallLogged{
		BaseEvent:     events.NewBaseEvent(),
		EntityType:    "lead",
		EntityID:      leadID,
		Connection:    string(outcome.Connection),
		ContactStatus: string(next),
		KamID:         kamID,
	})

	return updated, nil
}

// ConnectHistory returns the lead's call attempts, oldest first.
func (s *Service) ConnectHistory(ctx context.Context, leadID string) ([]repository.ConnectEntry, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListConnectHistory(ctx, lead.ID)
}
