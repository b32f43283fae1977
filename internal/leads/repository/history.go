package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConnectEntry is one immutable record of a call attempt. Entries are only
// ever appended; nothing updates or deletes them short of the lead itself
// being removed at conversion time.
type ConnectEntry struct {
	ID         uuid.UUID
	LeadRowID  uuid.UUID
	OccurredAt time.Time
	Connection string
	Medium     string
	Direction  string
}

type RecordCallParams struct {
	LeadID        string
	ContactStatus string
	Connection    string
	Medium        string
	Direction     string
	Connected     bool
	OccurredAt    time.Time
}

// RecordCall appends a connect-history entry and moves the lead to its next
// contact status in one transaction: last_tried always advances, last_connect
// only when the call connected.
func (r *Repository) RecordCall(ctx context.Context, params RecordCallParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, fmt.Errorf("record call: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE crm_leads SET
			contact_status = $2,
			last_tried     = $3,
			last_connect   = CASE WHEN $4 THEN $3 ELSE last_connect END,
			last_modified  = now()
		WHERE lead_id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(tx.QueryRow(ctx, query,
		params.LeadID,
		params.ContactStatus,
		params.OccurredAt,
		params.Connected,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("record call %s: %w", params.LeadID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO crm_lead_connects (id, lead_row_id, occurred_at, connection, medium, direction)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), lead.ID, params.OccurredAt, params.Connection, params.Medium, params.Direction)
	if err != nil {
		return Lead{}, fmt.Errorf("append connect history %s: %w", params.LeadID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, fmt.Errorf("record call commit: %w", err)
	}

	return lead, nil
}

// ListConnectHistory returns all call attempts for a lead, oldest first.
func (r *Repository) ListConnectHistory(ctx context.Context, leadRowID uuid.UUID) ([]ConnectEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_row_id, occurred_at, connection, medium, direction
		FROM crm_lead_connects
		WHERE lead_row_id = $1
		ORDER BY occurred_at ASC
	`, leadRowID)
	if err != nil {
		return nil, fmt.Errorf("list connect history: %w", err)
	}
	defer rows.Close()

	entries := make([]ConnectEntry, 0)
	for rows.Next() {
		var e ConnectEntry
		if err := rows.Scan(&e.ID, &e.LeadRowID, &e.OccurredAt, &e.Connection, &e.Medium, &e.Direction); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return entries, nil
}
