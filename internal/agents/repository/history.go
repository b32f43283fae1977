package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ConnectEntry is one call attempt against an agent.
type ConnectEntry struct {
	ID         uuid.UUID
	AgentRowID uuid.UUID
	OccurredAt time.Time
	Connection string
	Medium     string
	Direction  string
}

type RecordCallParams struct {
	CpID          string
	ContactStatus string
	Connection    string
	Medium        string
	Direction     string
	Connected     bool
	OccurredAt    time.Time
}

// RecordCall updates the agent's contact status and appends a connect
// history row in one transaction.
func (r *Repository) RecordCall(ctx context.Context, params RecordCallParams) (Agent, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Agent{}, fmt.Errorf("begin record call: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE crm_agents SET
			contact_status = $2,
			last_tried     = $3,
			last_connect   = CASE WHEN $4 THEN $3 ELSE last_connect END,
			last_modified  = now()
		WHERE cp_id = $1
		RETURNING ` + agentColumns

	agent, err := scanAgent(tx.QueryRow(ctx, query,
		params.CpID, params.ContactStatus, params.OccurredAt, params.Connected,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrNotFound
		}
		return Agent{}, fmt.Errorf("record call for agent %s: %w", params.CpID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO crm_agent_connects (id, agent_row_id, occurred_at, connection, medium, direction)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), agent.ID, params.OccurredAt, params.Connection, params.Medium, params.Direction)
	if err != nil {
		return Agent{}, fmt.Errorf("append agent connect history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Agent{}, fmt.Errorf("commit record call: %w", err)
	}
	return agent, nil
}

// ListConnectHistory returns an agent's call attempts, oldest first.
func (r *Repository) ListConnectHistory(ctx context.Context, agentRowID uuid.UUID) ([]ConnectEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, agent_row_id, occurred_at, connection, medium, direction
		FROM crm_agent_connects
		WHERE agent_row_id = $1
		ORDER BY occurred_at ASC
	`, agentRowID)
	if err != nil {
		return nil, fmt.Errorf("list agent connects: %w", err)
	}
	defer rows.Close()

	entries := make([]ConnectEntry, 0)
	for rows.Next() {
		var e ConnectEntry
		if err := rows.Scan(&e.ID, &e.AgentRowID, &e.OccurredAt, &e.Connection, &e.Medium, &e.Direction); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
