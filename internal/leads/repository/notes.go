package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoteNotFound is returned when a note does not exist or is already archived.
var ErrNoteNotFound = errors.New("note not found")

type LeadNote struct {
	ID        uuid.UUID
	LeadRowID uuid.UUID
	KamID     string
	Note      string
	Source    string
	CreatedAt time.Time
	Archived  bool
}

type CreateNoteParams struct {
	LeadRowID uuid.UUID
	KamID     string
	Note      string
	Source    string
}

// CreateNote appends a note to a lead.
func (r *Repository) CreateNote(ctx context.Context, params CreateNoteParams) (LeadNote, error) {
	note := LeadNote{
		ID:        uuid.New(),
		LeadRowID: params.LeadRowID,
		KamID:     params.KamID,
		Note:      params.Note,
		Source:    params.Source,
		CreatedAt: time.Now(),
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_lead_notes (id, lead_row_id, kam_id, note, source, created_at, archived)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, note.ID, note.LeadRowID, note.KamID, note.Note, note.Source, note.CreatedAt)
	if err != nil {
		return LeadNote{}, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}

// ListNotes returns the non-archived notes for a lead, newest first.
// Archived notes stay in the table but never surface in reads.
func (r *Repository) ListNotes(ctx context.Context, leadRowID uuid.UUID) ([]LeadNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_row_id, kam_id, note, source, created_at, archived
		FROM crm_lead_notes
		WHERE lead_row_id = $1 AND NOT archived
		ORDER BY created_at DESC
	`, leadRowID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]LeadNote, 0)
	for rows.Next() {
		var n LeadNote
		if err := rows.Scan(&n.ID, &n.LeadRowID, &n.KamID, &n.Note, &n.Source, &n.CreatedAt, &n.Archived); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return notes, nil
}

// ArchiveNote soft-deletes a note. The row is kept for audit.
func (r *Repository) ArchiveNote(ctx context.Context, leadRowID, noteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE crm_lead_notes SET archived = true
		WHERE id = $1 AND lead_row_id = $2 AND NOT archived
	`, noteID, leadRowID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("archive note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
