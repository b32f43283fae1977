// Package service implements lead lifecycle operations: creation with
// duplicate detection and sequential ID allocation, call recording through
// the contact status machine, notes, and conversion into agents.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	agentrepo "iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/leads/domain"
	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/phone"
	"iqol_crm_backend/platform/sanitize"
)

type Service struct {
	repo      *repository.Repository
	agents    *agentrepo.Repository
	detector  *dedupe.Detector
	allocator *counter.Allocator
	vocab     vocab.Vocabulary
	machine   domain.StatusMachine
	bus       events.Bus
	log       *logger.Logger
}

func New(
	repo *repository.Repository,
	agents *agentrepo.Repository,
	detector *dedupe.Detector,
	allocator *counter.Allocator,
	voc vocab.Vocabulary,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		agents:    agents,
		detector:  detector,
		allocator: allocator,
		vocab:     voc,
		machine:   domain.StatusMachine{Ceiling: voc.RNRCeiling},
		bus:       bus,
		log:       log,
	}
}

// Create validates, deduplicates, allocates the next lead ID, and persists a
// single lead. The returned warning is non-empty when the number normalized
// fine but does not look like a reachable mobile number.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest, kamID, kamName string) (repository.Lead, string, error) {
	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		return repository.Lead{}, "", apperr.Validation(err.Error()).WithOp("leads.Create")
	}

	if !s.vocab.HasSource(req.Source) {
		return repository.Lead{}, "", apperr.Validation(fmt.Sprintf("unknown lead source %q", req.Source)).WithOp("leads.Create")
	}

	if dup := s.detector.Check(ctx, normalized, req.PhoneNumber); dup.IsDuplicate {
		return repository.Lead{}, "", apperr.Conflict("phone number already exists").
			WithOp("leads.Create").
			WithDetails(dup)
	}

	now := time.Now().UTC()
	lead := repository.Lead{
		ID:            uuid.New(),
		Name:          sanitize.Text(req.Name),
		PhoneNumber:   normalized,
		Email:         req.Email,
		Source:        req.Source,
		LeadStatus:    string(domain.LeadStatusNotContactYet),
		ContactStatus: string(domain.StatusNotContact),
		Added:         now,
		LastModified:  now,
	}
	if kamID != "" {
		lead.KamID = &kamID
	}
	if kamName != "" {
		lead.KamName = &kamName
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return repository.Lead{}, "", fmt.Errorf("create lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	block, err := s.allocator.Reserve(ctx, tx, counter.LeadCounter, 1)
	if err != nil {
		return repository.Lead{}, "", err
	}
	lead.LeadID = block.ID(0)

	if _, err := s.repo.Create(ctx, tx, lead); err != nil {
		return repository.Lead{}, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return repository.Lead{}, "", fmt.Errorf("create lead: commit: %w", err)
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.LeadID,
		Name:        lead.Name,
		PhoneNumber: lead.PhoneNumber,
		Source:      lead.Source,
		KamID:       kamID,
	})

	warning := ""
	if !phone.IsPlausibleMobile(normalized) {
		warning = "number does not look like a reachable mobile number"
	}
	return lead, warning, nil
}

// Get fetches a lead by its human-readable identifier.
func (s *Service) Get(ctx context.Context, leadID string) (repository.Lead, error) {
	lead, err := s.repo.GetByLeadID(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found").WithOp("leads.Get")
		}
		return repository.Lead{}, err
	}
	return lead, nil
}

// List returns a filtered page of leads. Leads mid-conversion are excluded by
// the repository.
func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery) (repository.ListResult, error) {
	if query.ContactStatus != "" {
		if _, err := domain.ParseContactStatus(query.ContactStatus); err != nil {
			return repository.ListResult{}, apperr.Validation(err.Error()).WithOp("leads.List")
		}
	}
	if query.LeadStatus != "" {
		if _, err := domain.ParseLeadStatus(query.LeadStatus); err != nil {
			return repository.ListResult{}, apperr.Validation(err.Error()).WithOp("leads.List")
		}
	}

	return s.repo.List(ctx, repository.ListParams{
		ContactStatus: query.ContactStatus,
		LeadStatus:    query.LeadStatus,
		KamID:         query.KamID,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
	})
}

// Patch applies a partial update to a lead's status and flags.
func (s *Service) Patch(ctx context.Context, leadID string, req transport.PatchLeadRequest) (repository.Lead, error) {
	if req.LeadStatus != nil {
		if _, err := domain.ParseLeadStatus(*req.LeadStatus); err != nil {
			return repository.Lead{}, apperr.Validation(err.Error()).WithOp("leads.Patch")
		}
	}

	lead, err := s.repo.Patch(ctx, leadID, repository.LeadPatch{
		LeadStatus:      req.LeadStatus,
		KamID:           req.KamID,
		KamName:         req.KamName,
		Verified:        req.Verified,
		BlackListed:     req.BlackListed,
		OnBroadcast:     req.OnBroadcast,
		CommunityJoined: req.CommunityJoined,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found").WithOp("leads.Patch")
		}
		return repository.Lead{}, err
	}
	return lead, nil
}
