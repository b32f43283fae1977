package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/intake/sheet"
	"iqol_crm_backend/internal/intake/validate"
	"iqol_crm_backend/internal/leads/domain"
	leadrepo "iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/sanitize"
)

// BlockReserver hands out a contiguous block of lead IDs in one atomic step.
type BlockReserver interface {
	ReserveLeadIDs(ctx context.Context, n int) (counter.Block, error)
}

// LeadWriter persists one lead row.
type LeadWriter interface {
	Insert(ctx context.Context, lead leadrepo.Lead) error
}

// KamLookup resolves a pre-assigned account manager for a number.
type KamLookup interface {
	Lookup(ctx context.Context, normalized string) (kamID, kamName string, ok bool)
}

// CommitResult is what a finished bulk commit reports back.
type CommitResult struct {
	Committed      int      `json:"committed"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	SkippedNumbers []string `json:"skippedNumbers,omitempty"`
	LeadIDs        []string `json:"leadIds,omitempty"`
}

// Committer runs the bulk commit pipeline over a committable row set.
type Committer struct {
	reserver BlockReserver
	detector validate.DupChecker
	kams     KamLookup
	writer   LeadWriter
	log      *logger.Logger
}

func NewCommitter(reserver BlockReserver, detector validate.DupChecker, kams KamLookup, writer LeadWriter, log *logger.Logger) *Committer {
	return &Committer{reserver: reserver, detector: detector, kams: kams, writer: writer, log: log}
}

// Commit persists the committable rows of a validated upload. The whole ID
// block is reserved up front in one atomic increment, so concurrent commits
// can never hand out the same lead ID; IDs positioned on rows that end up
// skipped are burned, which keeps uniqueness and monotonicity at the cost of
// density.
//
// Every row gets a final duplicate check: validate and commit are separate
// user actions, and another upload may have landed the same number in
// between. Rows duplicate by commit time are silently skipped and counted.
// A per-row write failure skips that row only and is reported separately
// from duplicates.
func (c *Committer) Commit(ctx context.Context, rows []validate.RowReport, uploaderKamID, uploaderName string) (CommitResult, error) {
	result := CommitResult{}
	if len(rows) == 0 {
		return result, nil
	}

	block, err := c.reserver.ReserveLeadIDs(ctx, len(rows))
	if err != nil {
		return result, err
	}

	now := time.Now().UTC()
	for i, row := range rows {
		normalized := row.Normalized

		if dup := c.detector.Check(ctx, normalized, row.Row[sheet.ColNumber]); dup.IsDuplicate {
			result.Skipped++
			result.SkippedNumbers = append(result.SkippedNumbers, normalized)
			continue
		}

		lead := leadrepo.Lead{
			ID:            uuid.New(),
			LeadID:        block.ID(i),
			Name:          sanitize.Text(row.Row[sheet.ColName]),
			PhoneNumber:   normalized,
			Source:        row.Row[sheet.ColSource],
			LeadStatus:    string(domain.LeadStatusNotContactYet),
			ContactStatus: string(domain.StatusNotContact),
			Added:         now,
			LastModified:  now,
		}
		if email := row.Row[sheet.ColEmail]; email != "" {
			lead.Email = &email
		}

		kamID, kamName := uploaderKamID, uploaderName
		if preID, preName, ok := c.kams.Lookup(ctx, normalized); ok {
			kamID, kamName = preID, preName
		}
		if kamID != "" {
			lead.KamID = &kamID
			lead.KamName = &kamName
		}

		if err := c.writer.Insert(ctx, lead); err != nil {
			result.Failed++
			c.log.DatabaseError("bulk insert lead", err)
			continue
		}

		result.Committed++
		result.LeadIDs = append(result.LeadIDs, lead.LeadID)
	}

	return result, nil
}
