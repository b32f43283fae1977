package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	agentrepo "iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/logger"
)

// agentFromLead builds the agent record a conversion inserts. The lead's
// identity, contact history timestamps, flags, and original acquisition date
// carry over; the firm profile comes from the request. The lead's KAM
// assignment wins and the converting user fills in only when the lead was
// never assigned.
func agentFromLead(lead repository.Lead, req transport.ConvertLeadRequest, kamID, kamName string, now time.Time) agentrepo.Agent {
	agent := agentrepo.Agent{
		ID:               uuid.New(),
		Name:             lead.Name,
		PhoneNumber:      lead.PhoneNumber,
		Email:            lead.Email,
		Source:           lead.Source,
		FirmName:         req.FirmName,
		FirmSize:         req.FirmSize,
		AreaOfOperation:  req.AreaOfOperation,
		BusinessCategory: req.BusinessCategory,
		AgentStatus:      "active",
		ContactStatus:    lead.ContactStatus,
		Verified:         true,
		VerificationDate: &now,
		BlackListed:      lead.BlackListed,
		OnBroadcast:      lead.OnBroadcast,
		CommunityJoined:  lead.CommunityJoined,
		SourceLeadID:     &lead.LeadID,
		LastTried:        lead.LastTried,
		LastConnect:      lead.LastConnect,
		Added:            lead.Added,
		LastModified:     now,
	}
	if lead.KamID != nil {
		agent.KamID = lead.KamID
		agent.KamName = lead.KamName
	} else if kamID != "" {
		agent.KamID = &kamID
		agent.KamName = &kamName
	}
	return agent
}

// Convert turns a lead into an agent in two phases.
//
// Phase one is a single transaction: reserve the next cpId, flag the lead as
// converting, and insert the agent carrying over the lead's identity, contact
// history, and notes. Phase two deletes the lead. If the process dies between
// the phases the lead stays flagged and hidden from listings, and the
// reconciler finishes the delete on its next run. At no point can the contact
// exist in neither store.
func (s *Service) Convert(ctx context.Context, leadID string, req transport.ConvertLeadRequest, kamID, kamName string) (transport.ConvertLeadResponse, error) {
	lead, err := s.Get(ctx, leadID)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	if lead.Converting {
		return transport.ConvertLeadResponse{}, apperr.Conflict("lead conversion already in progress").WithOp("leads.Convert")
	}
	if lead.Email == nil || *lead.Email == "" {
		return transport.ConvertLeadResponse{}, apperr.Validation("lead needs an email address before conversion").WithOp("leads.Convert")
	}
	if (lead.KamName == nil || *lead.KamName == "") && kamName == "" {
		return transport.ConvertLeadResponse{}, apperr.Validation("lead needs an assigned KAM before conversion").WithOp("leads.Convert")
	}

	agent := agentFromLead(lead, req, kamID, kamName, time.Now().UTC())

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return transport.ConvertLeadResponse{}, fmt.Errorf("convert lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	block, err := s.allocator.Reserve(ctx, tx, counter.AgentCounter, 1)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	agent.CpID = block.ID(0)

	if err := s.repo.MarkConverting(ctx, tx, lead.ID, agent.CpID); err != nil {
		return transport.ConvertLeadResponse{}, apperr.Conflict(err.Error()).WithOp("leads.Convert")
	}
	if _, err := s.agents.CreateFromLead(ctx, tx, agent, lead.ID); err != nil {
		return transport.ConvertLeadResponse{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return transport.ConvertLeadResponse{}, fmt.Errorf("convert lead: commit: %w", err)
	}

	// Phase two. A failure here leaves the flagged lead for the reconciler.
	if err := s.repo.Delete(ctx, leadID); err != nil {
		s.log.DatabaseError("conversion phase two delete", err)
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		CpID:      agent.CpID,
		KamID:     kamID,
	})

	return transport.ConvertLeadResponse{LeadID: leadID, CpID: agent.CpID}, nil
}

// ConversionLeadStore is the slice of the lead repository the reconciler
// needs.
type ConversionLeadStore interface {
	ListConverting(ctx context.Context) ([]repository.Lead, error)
	Delete(ctx context.Context, leadID string) error
	ClearConverting(ctx context.Context, leadRowID uuid.UUID) error
}

// ConversionAgentLookup answers whether an agent record exists for a cpId.
type ConversionAgentLookup interface {
	ExistsByCpID(ctx context.Context, cpID string) (bool, error)
}

// ReconcileConversions finishes or unwinds conversions interrupted between
// the two phases. A flagged lead whose agent record exists gets its delete
// replayed; one whose agent record is missing is unflagged and returned to
// circulation. Returns how many leads were touched.
func ReconcileConversions(ctx context.Context, leads ConversionLeadStore, agents ConversionAgentLookup, log *logger.Logger) (int, error) {
	stuck, err := leads.ListConverting(ctx)
	if err != nil {
		return 0, err
	}

	touched := 0
	for _, lead := range stuck {
		if lead.ConvertingCpID == nil {
			if err := leads.ClearConverting(ctx, lead.ID); err != nil {
				log.DatabaseError("reconcile clear converting", err)
				continue
			}
			touched++
			continue
		}

		exists, err := agents.ExistsByCpID(ctx, *lead.ConvertingCpID)
		if err != nil {
			log.DatabaseError("reconcile agent lookup", err)
			continue
		}

		if exists {
			err = leads.Delete(ctx, lead.LeadID)
		} else {
			err = leads.ClearConverting(ctx, lead.ID)
		}
		if err != nil {
			log.DatabaseError("reconcile converting lead", err)
			continue
		}
		touched++
	}
	return touched, nil
}

// Reconcile runs ReconcileConversions against the live repositories.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	return ReconcileConversions(ctx, s.repo, s.agents, s.log)
}
