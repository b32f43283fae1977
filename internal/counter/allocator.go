// Package counter provides sequential human-readable ID allocation backed by
// shared counter rows. Allocation is a single atomic UPDATE so two concurrent
// pipelines can never mint the same identifier.
package counter

import (
	"context"
	"errors"
	"fmt"

	"iqol_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
)

// Counter row names. One row per entity type.
const (
	LeadCounter  = "lastLeadId"
	AgentCounter = "lastCpId"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx. Callers that need the
// allocation tied to a record insert pass their transaction so a rollback
// returns the reservation along with everything else.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Block is a contiguous reservation of identifiers. IDs handed to rows that
// end up skipped are burned; the counter never moves backwards, so density is
// not guaranteed, only uniqueness and monotonicity.
type Block struct {
	prefix string
	label  string
	first  int64
	size   int
}

// ID returns the i-th identifier of the block, formatted label+prefix+number.
func (b Block) ID(i int) string {
	return fmt.Sprintf("%s%s%d", b.label, b.prefix, b.first+int64(i))
}

// Size returns the number of identifiers reserved.
func (b Block) Size() int { return b.size }

// Allocator reserves identifier blocks from the shared counter rows.
type Allocator struct{}

// New creates an Allocator.
func New() *Allocator {
	return &Allocator{}
}

const reserveQuery = `
	UPDATE crm_counters
	SET count = count + $2, updated_at = now()
	WHERE name = $1
	RETURNING count, prefix, label
`

// Reserve atomically advances the named counter by n and returns the reserved
// block. A missing counter row is a fatal precondition: nothing is written
// and the caller must abort its operation.
func (a *Allocator) Reserve(ctx context.Context, q Querier, name string, n int) (Block, error) {
	if n < 1 {
		return Block{}, apperr.BadRequest("reservation size must be positive").WithOp("counter.Reserve")
	}

	var (
		count  int64
		prefix string
		label  string
	)
	err := q.QueryRow(ctx, reserveQuery, name, n).Scan(&count, &prefix, &label)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Block{}, apperr.Precondition("counter document " + name + " is missing").WithOp("counter.Reserve")
		}
		return Block{}, fmt.Errorf("reserve counter %s: %w", name, err)
	}

	return Block{
		prefix: prefix,
		label:  label,
		first:  count - int64(n) + 1,
		size:   n,
	}, nil
}

// NewBlock builds a block directly. Exposed for tests and for the reconciler,
// which replays an identifier recorded during an interrupted conversion.
func NewBlock(label, prefix string, first int64, size int) Block {
	return Block{prefix: prefix, label: label, first: first, size: size}
}
