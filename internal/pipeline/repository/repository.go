package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no assignment exists for a number.
var ErrNotFound = errors.New("pipeline assignment not found")

// Assignment is a KAM pre-assignment keyed by normalized phone number.
// Bulk intake consults these so leads land with the right account manager
// even when uploaded by someone else.
type Assignment struct {
	PhoneNumber string
	KamID       string
	KamName     string
	UpdatedAt   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert writes or replaces the assignment for a number.
func (r *Repository) Upsert(ctx context.Context, a Assignment) (Assignment, error) {
	a.UpdatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_pipeline_assignments (phone_number, kam_id, kam_name, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (phone_number)
		DO UPDATE SET kam_id = $2, kam_name = $3, updated_at = $4
	`, a.PhoneNumber, a.KamID, a.KamName, a.UpdatedAt)
	if err != nil {
		return Assignment{}, fmt.Errorf("upsert pipeline assignment: %w", err)
	}
	return a, nil
}

// Get returns the assignment for a normalized number.
func (r *Repository) Get(ctx context.Context, phoneNumber string) (Assignment, error) {
	var a Assignment
	err := r.pool.QueryRow(ctx, `
		SELECT phone_number, kam_id, kam_name, updated_at
		FROM crm_pipeline_assignments
		WHERE phone_number = $1
	`, phoneNumber).Scan(&a.PhoneNumber, &a.KamID, &a.KamName, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, ErrNotFound
		}
		return Assignment{}, fmt.Errorf("get pipeline assignment: %w", err)
	}
	return a, nil
}

// Delete removes the assignment for a number.
func (r *Repository) Delete(ctx context.Context, phoneNumber string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM crm_pipeline_assignments WHERE phone_number = $1`, phoneNumber)
	if err != nil {
		return fmt.Errorf("delete pipeline assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
