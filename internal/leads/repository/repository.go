package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool so services can open transactions that
// span the repository and the counter allocator.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

type Lead struct {
	ID              uuid.UUID
	LeadID          string
	Name            string
	PhoneNumber     string
	Email           *string
	Source          string
	LeadStatus      string
	ContactStatus   string
	KamID           *string
	KamName         *string
	Verified        bool
	BlackListed     bool
	OnBroadcast     bool
	CommunityJoined bool
	Converting      bool
	ConvertingCpID  *string
	LastTried       *time.Time
	LastConnect     *time.Time
	Added           time.Time
	LastModified    time.Time
}

type ListParams struct {
	ContactStatus string
	LeadStatus    string
	KamID         string
	Search        string
	Page          int
	PageSize      int
}

type ListResult struct {
	Items      []Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

const leadColumns = `
	id, lead_id, name, phone_number, email, source, lead_status, contact_status,
	kam_id, kam_name, verified, black_listed, on_broadcast, community_joined,
	converting, converting_cp_id, last_tried, last_connect, added, last_modified
`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID,
		&l.LeadID,
		&l.Name,
		&l.PhoneNumber,
		&l.Email,
		&l.Source,
		&l.LeadStatus,
		&l.ContactStatus,
		&l.KamID,
		&l.KamName,
		&l.Verified,
		&l.BlackListed,
		&l.OnBroadcast,
		&l.CommunityJoined,
		&l.Converting,
		&l.ConvertingCpID,
		&l.LastTried,
		&l.LastConnect,
		&l.Added,
		&l.LastModified,
	)
	return l, err
}

const insertLeadQuery = `
	INSERT INTO crm_leads (
		id, lead_id, name, phone_number, email, source, lead_status,
		contact_status, kam_id, kam_name, verified, black_listed,
		on_broadcast, community_joined, added, last_modified
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16
	)
`

func insertLeadArgs(lead Lead) []any {
	return []any{
		lead.ID, lead.LeadID, lead.Name, lead.PhoneNumber, lead.Email,
		lead.Source, lead.LeadStatus, lead.ContactStatus, lead.KamID,
		lead.KamName, lead.Verified, lead.BlackListed, lead.OnBroadcast,
		lead.CommunityJoined, lead.Added, lead.LastModified,
	}
}

// Create inserts a lead using the provided transaction, so ID allocation and
// the insert commit or roll back together.
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, lead Lead) (Lead, error) {
	_, err := tx.Exec(ctx, insertLeadQuery, insertLeadArgs(lead)...)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// CreateOne inserts a lead outside any caller transaction. The bulk commit
// pipeline uses it after the whole ID block is already reserved.
func (r *Repository) CreateOne(ctx context.Context, lead Lead) (Lead, error) {
	_, err := r.pool.Exec(ctx, insertLeadQuery, insertLeadArgs(lead)...)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: %w", err)
	}
	return lead, nil
}

// GetByLeadID fetches a lead by its human-readable identifier.
func (r *Repository) GetByLeadID(ctx context.Context, leadID string) (Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM crm_leads WHERE lead_id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("get lead %s: %w", leadID, err)
	}
	return lead, nil
}

// List returns a page of leads with optional filters.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}

	where := " WHERE NOT converting"
	args := []any{}
	idx := 1

	if params.ContactStatus != "" {
		where += fmt.Sprintf(" AND contact_status = $%d", idx)
		args = append(args, params.ContactStatus)
		idx++
	}
	if params.LeadStatus != "" {
		where += fmt.Sprintf(" AND lead_status = $%d", idx)
		args = append(args, params.LeadStatus)
		idx++
	}
	if params.KamID != "" {
		where += fmt.Sprintf(" AND kam_id = $%d", idx)
		args = append(args, params.KamID)
		idx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone_number ILIKE $%d)", idx, idx)
		args = append(args, "%"+params.Search+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM crm_leads"+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count leads: %w", err)
	}

	query := "SELECT " + leadColumns + " FROM crm_leads" + where +
		fmt.Sprintf(" ORDER BY added DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, lead)
	}
	if rows.Err() != nil {
		return ListResult{}, rows.Err()
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize

	return ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ExistsByPhoneVariants reports whether any lead is stored under one of the
// given phone number formats. Implements dedupe.PhoneStore.
func (r *Repository) ExistsByPhoneVariants(ctx context.Context, variants []string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM crm_leads WHERE phone_number = ANY($1))`,
		variants,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lead phone lookup: %w", err)
	}
	return exists, nil
}

type LeadPatch struct {
	LeadStatus      *string
	KamID           *string
	KamName         *string
	Verified        *bool
	BlackListed     *bool
	OnBroadcast     *bool
	CommunityJoined *bool
}

// Patch applies partial updates to a lead and bumps last_modified.
func (r *Repository) Patch(ctx context.Context, leadID string, patch LeadPatch) (Lead, error) {
	query := `
		UPDATE crm_leads SET
			lead_status      = COALESCE($2, lead_status),
			kam_id           = COALESCE($3, kam_id),
			kam_name         = COALESCE($4, kam_name),
			verified         = COALESCE($5, verified),
			black_listed     = COALESCE($6, black_listed),
			on_broadcast     = COALESCE($7, on_broadcast),
			community_joined = COALESCE($8, community_joined),
			last_modified    = now()
		WHERE lead_id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		leadID,
		patch.LeadStatus,
		patch.KamID,
		patch.KamName,
		patch.Verified,
		patch.BlackListed,
		patch.OnBroadcast,
		patch.CommunityJoined,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("patch lead %s: %w", leadID, err)
	}
	return lead, nil
}
