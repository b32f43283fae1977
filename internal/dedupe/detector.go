// Package dedupe provides duplicate contact-number detection across the lead
// and agent stores, plus the commit lock that keeps a validated batch from
// being committed twice.
package dedupe

import (
	"context"

	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// Type identifies which store a duplicate was found in.
type Type string

const (
	// TypeNone means the number is not a known duplicate.
	TypeNone Type = ""
	// TypeLeads means the number already exists in the lead store.
	TypeLeads Type = "leads"
	// TypeAgents means the number already exists in the agent store.
	TypeAgents Type = "agents"
	// TypeCSV means the number appears more than once inside one upload.
	TypeCSV Type = "csv"
)

// Result is the outcome of a duplicate check.
type Result struct {
	IsDuplicate bool `json:"isDuplicate"`
	Type        Type `json:"duplicateType,omitempty"`
}

// PhoneStore answers whether any record exists under one of the given phone
// number variants. Implemented by the lead and agent repositories.
type PhoneStore interface {
	ExistsByPhoneVariants(ctx context.Context, variants []string) (bool, error)
}

// Detector checks a normalized number against both record stores. Leads are
// checked before agents; a number present in both reports as a lead
// duplicate. That ordering is a convention, not a ranking.
type Detector struct {
	leads  PhoneStore
	agents PhoneStore
	log    *logger.Logger
}

// NewDetector creates a Detector over the two stores.
func NewDetector(leads, agents PhoneStore, log *logger.Logger) *Detector {
	return &Detector{leads: leads, agents: agents, log: log}
}

// Check looks the number up under every historical storage format. A store
// query failure is treated as "not a duplicate" and logged: blocking the
// whole batch on a transient read error costs more than the rare
// double-insert it risks.
func (d *Detector) Check(ctx context.Context, normalized, raw string) Result {
	variants := phone.Variants(normalized, raw)

	// Both stores are queried concurrently; the lead-store answer still wins
	// the tie-break when a number exists in both.
	var inLeads, inAgents bool
	var g errgroup.Group
	g.Go(func() error {
		inLeads = d.exists(ctx, d.leads, "leads", normalized, variants)
		return nil
	})
	g.Go(func() error {
		inAgents = d.exists(ctx, d.agents, "agents", normalized, variants)
		return nil
	})
	_ = g.Wait()

	if inLeads {
		return Result{IsDuplicate: true, Type: TypeLeads}
	}
	if inAgents {
		return Result{IsDuplicate: true, Type: TypeAgents}
	}

	return Result{}
}

func (d *Detector) exists(ctx context.Context, store PhoneStore, name, normalized string, variants []string) bool {
	found, err := store.ExistsByPhoneVariants(ctx, variants)
	if err != nil {
		if d.log != nil {
			d.log.DuplicateLookupFailure(name, normalized, err)
		}
		return false
	}
	return found
}
