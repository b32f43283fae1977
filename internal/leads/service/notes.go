package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/sanitize"
)

// AddNote appends a manual note to a lead.
func (s *Service) AddNote(ctx context.Context, leadID string, req transport.CreateNoteRequest, kamID string) (repository.LeadNote, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return repository.LeadNote{}, err
	}

	return s.repo.CreateNote(ctx, repository.CreateNoteParams{
		LeadRowID: lead.ID,
		KamID:     kamID,
		Note:      sanitize.Text(req.Note),
		Source:    "manual",
	})
}

// Notes returns the lead's non-archived notes, newest first.
func (s *Service) Notes(ctx context.Context, leadID string) ([]repository.LeadNote, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, lead.ID)
}

// ArchiveNote soft deletes a note from a lead.
func (s *Service) ArchiveNote(ctx context.Context, leadID string, noteID uuid.UUID) error {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return err
	}

	if err := s.repo.ArchiveNote(ctx, lead.ID, noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperr.NotFound("note not found").WithOp("leads.ArchiveNote")
		}
		return err
	}
	return nil
}
