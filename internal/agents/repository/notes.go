package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNoteNotFound = errors.New("agent note not found")

type AgentNote struct {
	ID         uuid.UUID
	AgentRowID uuid.UUID
	KamID      string
	Note       string
	Source     string
	CreatedAt  time.Time
	Archived   bool
}

// CreateNote appends a note to an agent.
func (r *Repository) CreateNote(ctx context.Context, note AgentNote) (AgentNote, error) {
	note.ID = uuid.New()
	note.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_agent_notes (id, agent_row_id, kam_id, note, source, created_at, archived)
		VALUES ($1, $2, $3, $4, $5, $6, false)
	`, note.ID, note.AgentRowID, note.KamID, note.Note, note.Source, note.CreatedAt)
	if err != nil {
		return AgentNote{}, fmt.Errorf("create agent note: %w", err)
	}
	return note, nil
}

// ListNotes returns an agent's non-archived notes, newest first.
func (r *Repository) ListNotes(ctx context.Context, agentRowID uuid.UUID) ([]AgentNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, agent_row_id, kam_id, note, source, created_at, archived
		FROM crm_agent_notes
		WHERE agent_row_id = $1 AND NOT archived
		ORDER BY created_at DESC
	`, agentRowID)
	if err != nil {
		return nil, fmt.Errorf("list agent notes: %w", err)
	}
	defer rows.Close()

	notes := make([]AgentNote, 0)
	for rows.Next() {
		var n AgentNote
		if err := rows.Scan(&n.ID, &n.AgentRowID, &n.KamID, &n.Note, &n.Source, &n.CreatedAt, &n.Archived); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ArchiveNote soft deletes a note.
func (r *Repository) ArchiveNote(ctx context.Context, noteID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE crm_agent_notes SET archived = true WHERE id = $1 AND NOT archived`, noteID)
	if err != nil {
		return fmt.Errorf("archive agent note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}
