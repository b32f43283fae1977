// Package service manages KAM pre-assignments consulted during bulk intake.
package service

import (
	"context"
	"errors"

	"iqol_crm_backend/internal/pipeline/repository"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/phone"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Assign writes the KAM pre-assignment for a number. The number is stored
// normalized so intake lookups hit regardless of how it was typed.
func (s *Service) Assign(ctx context.Context, rawPhone, kamID, kamName string) (repository.Assignment, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return repository.Assignment{}, apperr.Validation(err.Error()).WithOp("pipeline.Assign")
	}
	if kamID == "" || kamName == "" {
		return repository.Assignment{}, apperr.Validation("kamId and kamName are required").WithOp("pipeline.Assign")
	}

	return s.repo.Upsert(ctx, repository.Assignment{
		PhoneNumber: normalized,
		KamID:       kamID,
		KamName:     kamName,
	})
}

// Get returns the assignment for a number.
func (s *Service) Get(ctx context.Context, rawPhone string) (repository.Assignment, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return repository.Assignment{}, apperr.Validation(err.Error()).WithOp("pipeline.Get")
	}

	a, err := s.repo.Get(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Assignment{}, apperr.NotFound("no pipeline assignment for number").WithOp("pipeline.Get")
		}
		return repository.Assignment{}, err
	}
	return a, nil
}

// Remove deletes the assignment for a number.
func (s *Service) Remove(ctx context.Context, rawPhone string) error {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return apperr.Validation(err.Error()).WithOp("pipeline.Remove")
	}

	if err := s.repo.Delete(ctx, normalized); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("no pipeline assignment for number").WithOp("pipeline.Remove")
		}
		return err
	}
	return nil
}

// Lookup is the non-failing variant used by the bulk commit pipeline: a
// missing assignment or a normalization failure just means no inheritance.
func (s *Service) Lookup(ctx context.Context, normalized string) (kamID, kamName string, ok bool) {
	a, err := s.repo.Get(ctx, normalized)
	if err != nil {
		return "", "", false
	}
	return a.KamID, a.KamName, true
}
