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

// ErrNotFound is returned when an agent does not exist.
var ErrNotFound = errors.New("agent not found")

// Repository provides database operations for agents (channel partners).
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new agents repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Pool exposes the underlying pool for cross-repository transactions.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

type Agent struct {
	ID               uuid.UUID
	CpID             string
	Name             string
	PhoneNumber      string
	Email            *string
	Source           string
	FirmName         *string
	FirmSize         *string
	AreaOfOperation  []string
	BusinessCategory []string
	AgentStatus      string
	ContactStatus    string
	KamID            *string
	KamName          *string
	Verified         bool
	VerificationDate *time.Time
	BlackListed      bool
	OnBroadcast      bool
	CommunityJoined  bool
	SourceLeadID     *string
	InventoryCount   int
	CreditBalance    int
	PaymentsCount    int
	LastTried        *time.Time
	LastConnect      *time.Time
	Added            time.Time
	LastModified     time.Time
}

const agentColumns = `
	id, cp_id, name, phone_number, email, source, firm_name, firm_size,
	area_of_operation, business_category, agent_status, contact_status,
	kam_id, kam_name, verified, verification_date, black_listed, on_broadcast,
	community_joined, source_lead_id, inventory_count, credit_balance,
	payments_count, last_tried, last_connect, added, last_modified
`

func scanAgent(row pgx.Row) (Agent, error) {
	var a Agent
	err := row.Scan(
		&a.ID,
		&a.CpID,
		&a.Name,
		&a.PhoneNumber,
		&a.Email,
		&a.Source,
		&a.FirmName,
		&a.FirmSize,
		&a.AreaOfOperation,
		&a.BusinessCategory,
		&a.AgentStatus,
		&a.ContactStatus,
		&a.KamID,
		&a.KamName,
		&a.Verified,
		&a.VerificationDate,
		&a.BlackListed,
		&a.OnBroadcast,
		&a.CommunityJoined,
		&a.SourceLeadID,
		&a.InventoryCount,
		&a.CreditBalance,
		&a.PaymentsCount,
		&a.LastTried,
		&a.LastConnect,
		&a.Added,
		&a.LastModified,
	)
	return a, err
}

const insertAgentQuery = `
	INSERT INTO crm_agents (
		id, cp_id, name, phone_number, email, source, firm_name, firm_size,
		area_of_operation, business_category, agent_status, contact_status,
		kam_id, kam_name, verified, verification_date, black_listed,
		on_broadcast, community_joined, source_lead_id, inventory_count,
		credit_balance, payments_count, last_tried, last_connect, added,
		last_modified
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12,
		$13, $14, $15, $16, $17,
		$18, $19, $20, $21,
		$22, $23, $24, $25, $26,
		$27
	)
`

func insertArgs(a Agent) []any {
	return []any{
		a.ID, a.CpID, a.Name, a.PhoneNumber, a.Email, a.Source, a.FirmName,
		a.FirmSize, a.AreaOfOperation, a.BusinessCategory, a.AgentStatus,
		a.ContactStatus, a.KamID, a.KamName, a.Verified, a.VerificationDate,
		a.BlackListed, a.OnBroadcast, a.CommunityJoined, a.SourceLeadID,
		a.InventoryCount, a.CreditBalance, a.PaymentsCount, a.LastTried,
		a.LastConnect, a.Added, a.LastModified,
	}
}

// Create inserts an agent on the caller's transaction (direct "Add Agent").
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, agent Agent) (Agent, error) {
	if _, err := tx.Exec(ctx, insertAgentQuery, insertArgs(agent)...); err != nil {
		return Agent{}, fmt.Errorf("create agent: %w", err)
	}
	return agent, nil
}

// CreateFromLead inserts an agent and copies the source lead's connect
// history and notes into the agent tables, all on the caller's transaction.
// The lead rows themselves are untouched; they disappear with the lead in
// conversion phase two.
func (r *Repository) CreateFromLead(ctx context.Context, tx pgx.Tx, agent Agent, leadRowID uuid.UUID) (Agent, error) {
	if _, err := tx.Exec(ctx, insertAgentQuery, insertArgs(agent)...); err != nil {
		return Agent{}, fmt.Errorf("create agent from lead: %w", err)
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO crm_agent_connects (id, agent_row_id, occurred_at, connection, medium, direction)
		SELECT gen_random_uuid(), $1, occurred_at, connection, medium, direction
		FROM crm_lead_connects
		WHERE lead_row_id = $2
	`, agent.ID, leadRowID)
	if err != nil {
		return Agent{}, fmt.Errorf("carry over contact history: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO crm_agent_notes (id, agent_row_id, kam_id, note, source, created_at, archived)
		SELECT gen_random_uuid(), $1, kam_id, note, source, created_at, archived
		FROM crm_lead_notes
		WHERE lead_row_id = $2
	`, agent.ID, leadRowID)
	if err != nil {
		return Agent{}, fmt.Errorf("carry over notes: %w", err)
	}

	return agent, nil
}

// GetByCpID fetches an agent by its human-readable identifier.
func (r *Repository) GetByCpID(ctx context.Context, cpID string) (Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM crm_agents WHERE cp_id = $1`

	agent, err := scanAgent(r.pool.QueryRow(ctx, query, cpID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrNotFound
		}
		return Agent{}, fmt.Errorf("get agent %s: %w", cpID, err)
	}
	return agent, nil
}

// ExistsByCpID is used by the conversion reconciler to decide whether phase
// one completed before a crash.
func (r *Repository) ExistsByCpID(ctx context.Context, cpID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM crm_agents WHERE cp_id = $1)`, cpID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("agent existence check: %w", err)
	}
	return exists, nil
}

// ExistsByPhoneVariants reports whether any agent is stored under one of the
// given phone number formats. Implements dedupe.PhoneStore.
func (r *Repository) ExistsByPhoneVariants(ctx context.Context, variants []string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM crm_agents WHERE phone_number = ANY($1))`,
		variants,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("agent phone lookup: %w", err)
	}
	return exists, nil
}

type ListParams struct {
	ContactStatus string
	AgentStatus   string
	KamID         string
	Search        string
	Page          int
	PageSize      int
}

type ListResult struct {
	Items      []Agent
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// List returns a page of agents with optional filters.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}

	where := " WHERE true"
	args := []any{}
	idx := 1

	if params.ContactStatus != "" {
		where += fmt.Sprintf(" AND contact_status = $%d", idx)
		args = append(args, params.ContactStatus)
		idx++
	}
	if params.AgentStatus != "" {
		where += fmt.Sprintf(" AND agent_status = $%d", idx)
		args = append(args, params.AgentStatus)
		idx++
	}
	if params.KamID != "" {
		where += fmt.Sprintf(" AND kam_id = $%d", idx)
		args = append(args, params.KamID)
		idx++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone_number ILIKE $%d OR firm_name ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+params.Search+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM crm_agents"+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count agents: %w", err)
	}

	query := "SELECT " + agentColumns + " FROM crm_agents" + where +
		fmt.Sprintf(" ORDER BY added DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	items := make([]Agent, 0)
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, agent)
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

type AgentPatch struct {
	AgentStatus      *string
	KamID            *string
	KamName          *string
	FirmName         *string
	FirmSize         *string
	AreaOfOperation  []string
	BusinessCategory []string
	BlackListed      *bool
	OnBroadcast      *bool
	CommunityJoined  *bool
}

// Patch applies partial updates to an agent and bumps last_modified.
func (r *Repository) Patch(ctx context.Context, cpID string, patch AgentPatch) (Agent, error) {
	query := `
		UPDATE crm_agents SET
			agent_status      = COALESCE($2, agent_status),
			kam_id            = COALESCE($3, kam_id),
			kam_name          = COALESCE($4, kam_name),
			firm_name         = COALESCE($5, firm_name),
			firm_size         = COALESCE($6, firm_size),
			area_of_operation = COALESCE($7, area_of_operation),
			business_category = COALESCE($8, business_category),
			black_listed      = COALESCE($9, black_listed),
			on_broadcast      = COALESCE($10, on_broadcast),
			community_joined  = COALESCE($11, community_joined),
			last_modified     = now()
		WHERE cp_id = $1
		RETURNING ` + agentColumns

	agent, err := scanAgent(r.pool.QueryRow(ctx, query,
		cpID,
		patch.AgentStatus,
		patch.KamID,
		patch.KamName,
		patch.FirmName,
		patch.FirmSize,
		patch.AreaOfOperation,
		patch.BusinessCategory,
		patch.BlackListed,
		patch.OnBroadcast,
		patch.CommunityJoined,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrNotFound
		}
		return Agent{}, fmt.Errorf("patch agent %s: %w", cpID, err)
	}
	return agent, nil
}
