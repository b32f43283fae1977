// Package service implements agent (channel partner) operations: direct
// registration with duplicate detection and cpId allocation, call recording
// through the shared contact status machine, notes, and profile updates.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/agents/transport"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/leads/domain"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/phone"
	"iqol_crm_backend/platform/sanitize"
)

type Service struct {
	repo      *repository.Repository
	detector  *dedupe.Detector
	allocator *counter.Allocator
	vocab     vocab.Vocabulary
	machine   domain.StatusMachine
	bus       events.Bus
	log       *logger.Logger
}

func New(
	repo *repository.Repository,
	detector *dedupe.Detector,
	allocator *counter.Allocator,
	voc vocab.Vocabulary,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		detector:  detector,
		allocator: allocator,
		vocab:     voc,
		machine:   domain.StatusMachine{Ceiling: voc.RNRCeiling},
		bus:       bus,
		log:       log,
	}
}

// Create registers an agent directly, without going through a lead first.
func (s *Service) Create(ctx context.Context, req transport.CreateAgentRequest, kamID, kamName string) (repository.Agent, string, error) {
	normalized, err := phone.Normalize(req.PhoneNumber)
	if err != nil {
		return repository.Agent{}, "", apperr.Validation(err.Error()).WithOp("agents.Create")
	}

	if !s.vocab.HasSource(req.Source) {
		return repository.Agent{}, "", apperr.Validation(fmt.Sprintf("unknown lead source %q", req.Source)).WithOp("agents.Create")
	}

	if dup := s.detector.Check(ctx, normalized, req.PhoneNumber); dup.IsDuplicate {
		return repository.Agent{}, "", apperr.Conflict("phone number already exists").
			WithOp("agents.Create").
			WithDetails(dup)
	}

	now := time.Now().UTC()
	agent := repository.Agent{
		ID:               uuid.New(),
		Name:             sanitize.Text(req.Name),
		PhoneNumber:      normalized,
		Email:            req.Email,
		Source:           req.Source,
		FirmName:         req.FirmName,
		FirmSize:         req.FirmSize,
		AreaOfOperation:  req.AreaOfOperation,
		BusinessCategory: req.BusinessCategory,
		AgentStatus:      "active",
		ContactStatus:    string(domain.StatusNotContact),
		Added:            now,
		LastModified:     now,
	}
	if kamID != "" {
		agent.KamID = &kamID
	}
	if kamName != "" {
		agent.KamName = &kamName
	}

	tx, err := s.repo.Pool().Begin(ctx)
	if err != nil {
		return repository.Agent{}, "", fmt.Errorf("create agent: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	block, err := s.allocator.Reserve(ctx, tx, counter.AgentCounter, 1)
	if err != nil {
		return repository.Agent{}, "", err
	}
	agent.CpID = block.ID(0)

	if _, err := s.repo.Create(ctx, tx, agent); err != nil {
		return repository.Agent{}, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return repository.Agent{}, "", fmt.Errorf("create agent: commit: %w", err)
	}

	warning := ""
	if !phone.IsPlausibleMobile(normalized) {
		warning = "number does not look like a reachable mobile number"
	}
	return agent, warning, nil
}

// Get fetches an agent by its human-readable identifier.
func (s *Service) Get(ctx context.Context, cpID string) (repository.Agent, error) {
	agent, err := s.repo.GetByCpID(ctx, cpID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Agent{}, apperr.NotFound("agent not found").WithOp("agents.Get")
		}
		return repository.Agent{}, err
	}
	return agent, nil
}

// List returns a filtered page of agents.
func (s *Service) List(ctx context.Context, query transport.ListAgentsQuery) (repository.ListResult, error) {
	if query.ContactStatus != "" {
		if _, err := domain.ParseContactStatus(query.ContactStatus); err != nil {
			return repository.ListResult{}, apperr.Validation(err.Error()).WithOp("agents.List")
		}
	}

	return s.repo.List(ctx, repository.ListParams{
		ContactStatus: query.ContactStatus,
		AgentStatus:   query.AgentStatus,
		KamID:         query.KamID,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
	})
}

// Patch applies a partial update to an agent's profile and flags.
func (s *Service) Patch(ctx context.Context, cpID string, req transport.PatchAgentRequest) (repository.Agent, error) {
	agent, err := s.repo.Patch(ctx, cpID, repository.AgentPatch{
		AgentStatus:      req.AgentStatus,
		KamID:            req.KamID,
		KamName:          req.KamName,
		FirmName:         req.FirmName,
		FirmSize:         req.FirmSize,
		AreaOfOperation:  req.AreaOfOperation,
		BusinessCategory: req.BusinessCategory,
		BlackListed:      req.BlackListed,
		OnBroadcast:      req.OnBroadcast,
		CommunityJoined:  req.CommunityJoined,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Agent{}, apperr.NotFound("agent not found").WithOp("agents.Patch")
		}
		return repository.Agent{}, err
	}
	return agent, nil
}

// RecordCall logs one call attempt against an agent; the contact status
// ladder advances the same way it does for leads.
func (s *Service) RecordCall(ctx context.Context, cpID string, req transport.RecordCallRequest, kamID string) (repository.Agent, error) {
	agent, err := s.Get(ctx, cpID)
	if err != nil {
		return repository.Agent{}, err
	}

	outcome := domain.CallOutcome{Connection: domain.Connection(req.Connection)}
	if req.Medium != nil {
		outcome.Medium = domain.Medium(*req.Medium)
	}
	if req.Direction != nil {
		outcome.Direction = domain.Direction(*req.Direction)
	}
	if req.Note != nil {
		outcome.Note = *req.Note
	}
	if err := outcome.Validate(); err != nil {
		return repository.Agent{}, apperr.Validation(err.Error()).WithOp("agents.RecordCall")
	}
	outcome = outcome.WithDefaults()

	next := s.machine.Next(domain.ContactStatus(agent.ContactStatus), outcome.Connection)
	connected := outcome.Connection == domain.ConnectionConnected

	updated, err := s.repo.RecordCall(ctx, repository.RecordCallParams{
		CpID:          cpID,
		ContactStatus: string(next),
		Connection:    string(outcome.Connection),
		Medium:        string(outcome.Medium),
		Direction:     string(outcome.Direction),
		Connected:     connected,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Agent{}, apperr.NotFound("agent not found").WithOp("agents.RecordCall")
		}
		return repository.Agent{}, err
	}

	if outcome.Note != "" {
		_, err := s.repo.CreateNote(ctx, repository.AgentNote{
			AgentRowID: updated.ID,
			KamID:      kamID,
			Note:       outcome.Note,
			Source:     "call",
		})
		if err != nil {
			s.log.DatabaseError("create agent call note", err)
		}
	}

	s.bus.Publish(ctx, events.CallLogged{
		BaseEvent:     events.NewBaseEvent(),
		EntityType:    "agent",
		EntityID:      cpID,
		Connection:    string(outcome.Connection),
		ContactStatus: string(next),
		KamID:         kamID,
	})

	return updated, nil
}

// ConnectHistory returns the agent's call attempts, oldest first.
func (s *Service) ConnectHistory(ctx context.Context, cpID string) ([]repository.ConnectEntry, error) {
	agent, err := s.Get(ctx, cpID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListConnectHistory(ctx, agent.ID)
}

// AddNote appends a manual note to an agent.
func (s *Service) AddNote(ctx context.Context, cpID string, req transport.CreateNoteRequest, kamID string) (repository.AgentNote, error) {
	agent, err := s.Get(ctx, cpID)
	if err != nil {
		return repository.AgentNote{}, err
	}

	return s.repo.CreateNote(ctx, repository.AgentNote{
		AgentRowID: agent.ID,
		KamID:      kamID,
		Note:       sanitize.Text(req.Note),
		Source:     "manual",
	})
}

// Notes returns the agent's non-archived notes, newest first.
func (s *Service) Notes(ctx context.Context, cpID string) ([]repository.AgentNote, error) {
	agent, err := s.Get(ctx, cpID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, agent.ID)
}

// ArchiveNote soft deletes a note from an agent.
func (s *Service) ArchiveNote(ctx context.Context, cpID string, noteID uuid.UUID) error {
	if _, err := s.Get(ctx, cpID); err != nil {
		return err
	}

	if err := s.repo.ArchiveNote(ctx, noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return apperr.NotFound("note not found").WithOp("agents.ArchiveNote")
		}
		return err
	}
	return nil
}
