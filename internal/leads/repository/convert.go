package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MarkConverting stamps phase one of the lead-to-agent conversion: the lead
// is flagged in progress and records the cpId it is becoming. Runs on the
// caller's transaction together with the agent insert.
func (r *Repository) MarkConverting(ctx context.Context, tx pgx.Tx, leadRowID uuid.UUID, cpID string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE crm_leads
		SET converting = true, converting_cp_id = $2, last_modified = now()
		WHERE id = $1 AND NOT converting
	`, leadRowID, cpID)
	if err != nil {
		return fmt.Errorf("mark converting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("lead is already being converted")
	}
	return nil
}

// Delete removes a lead permanently. Phase two of conversion; connect
// history and notes go with it via ON DELETE CASCADE, their copies having
// been written to the agent tables in phase one.
func (r *Repository) Delete(ctx context.Context, leadID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crm_leads WHERE lead_id = $1`, leadID)
	if err != nil {
		return fmt.Errorf("delete lead %s: %w", leadID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListConverting returns leads stuck mid-conversion, oldest first. Used by
// the reconciler to finish or unwind interrupted conversions.
func (r *Repository) ListConverting(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM crm_leads WHERE converting ORDER BY last_modified ASC`)
	if err != nil {
		return nil, fmt.Errorf("list converting leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}

// ClearConverting unwinds the phase-one marker when no agent record exists
// for the recorded cpId, returning the lead to normal circulation.
func (r *Repository) ClearConverting(ctx context.Context, leadRowID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE crm_leads
		SET converting = false, converting_cp_id = NULL, last_modified = now()
		WHERE id = $1
	`, leadRowID)
	if err != nil {
		return fmt.Errorf("clear converting: %w", err)
	}
	return nil
}
