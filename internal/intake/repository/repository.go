package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"iqol_crm_backend/internal/intake/validate"
)

// ErrNotFound is returned when an upload does not exist.
var ErrNotFound = errors.New("upload not found")

// Upload statuses. Rejected uploads keep their report for the uploader to
// inspect; only validated uploads can be committed, and only once.
const (
	StatusValidated = "validated"
	StatusRejected  = "rejected"
	StatusCommitted = "committed"
)

// Upload is one validated spreadsheet waiting for (or past) commit.
type Upload struct {
	ID             uuid.UUID
	FileName       string
	ObjectKey      *string
	Status         string
	UploaderKamID  string
	UploaderName   string
	UploaderEmail  string
	RowCount       int
	Report         validate.Report
	Committed      int
	Skipped        int
	SkippedNumbers []string
	CreatedAt      time.Time
	CommittedAt    *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create persists a fresh upload with its validation report. The report
// lands in a jsonb column; pgx handles the (un)marshalling.
func (r *Repository) Create(ctx context.Context, upload Upload) (Upload, error) {
	upload.ID = uuid.New()
	upload.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_intake_uploads (
			id, file_name, object_key, status, uploader_kam_id, uploader_name,
			uploader_email, row_count, report, committed, skipped,
			skipped_numbers, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, '{}', $10)
	`,
		upload.ID, upload.FileName, upload.ObjectKey, upload.Status,
		upload.UploaderKamID, upload.UploaderName, upload.UploaderEmail,
		upload.RowCount, upload.Report, upload.CreatedAt,
	)
	if err != nil {
		return Upload{}, fmt.Errorf("create upload: %w", err)
	}
	return upload, nil
}

// Get fetches an upload by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Upload, error) {
	var u Upload
	err := r.pool.QueryRow(ctx, `
		SELECT id, file_name, object_key, status, uploader_kam_id,
			uploader_name, uploader_email, row_count, report, committed,
			skipped, skipped_numbers, created_at, committed_at
		FROM crm_intake_uploads
		WHERE id = $1
	`, id).Scan(
		&u.ID, &u.FileName, &u.ObjectKey, &u.Status, &u.UploaderKamID,
		&u.UploaderName, &u.UploaderEmail, &u.RowCount, &u.Report,
		&u.Committed, &u.Skipped, &u.SkippedNumbers, &u.CreatedAt,
		&u.CommittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Upload{}, ErrNotFound
		}
		return Upload{}, fmt.Errorf("get upload %s: %w", id, err)
	}
	return u, nil
}

// MarkCommitted records the commit result. The status guard makes the
// transition one-way; a replayed commit request hits zero rows.
func (r *Repository) MarkCommitted(ctx context.Context, id uuid.UUID, committed, skipped int, skippedNumbers []string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE crm_intake_uploads
		SET status = $2, committed = $3, skipped = $4, skipped_numbers = $5,
			committed_at = now()
		WHERE id = $1 AND status = $6
	`, id, StatusCommitted, committed, skipped, skippedNumbers, StatusValidated)
	if err != nil {
		return fmt.Errorf("mark upload committed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.New("upload is not in a committable state")
	}
	return nil
}
