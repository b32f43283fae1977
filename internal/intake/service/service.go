// Package service orchestrates bulk intake: spreadsheet upload and
// validation, archival of the original file, and the guarded commit that
// turns a validated batch into lead records.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"iqol_crm_backend/internal/adapters/storage"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	"iqol_crm_backend/internal/intake/repository"
	"iqol_crm_backend/internal/intake/sheet"
	"iqol_crm_backend/internal/intake/validate"
	"iqol_crm_backend/platform/apperr"
	"iqol_crm_backend/platform/logger"
)

// uploadFolder is the object-key prefix for archived spreadsheets.
const uploadFolder = "intake"

type Service struct {
	uploads   *repository.Repository
	engine    *validate.Engine
	committer *Committer
	lock      *dedupe.CommitLock
	store     storage.StorageService
	bucket    string
	bus       events.Bus
	log       *logger.Logger
}

func New(
	uploads *repository.Repository,
	engine *validate.Engine,
	committer *Committer,
	lock *dedupe.CommitLock,
	store storage.StorageService,
	bucket string,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		uploads:   uploads,
		engine:    engine,
		committer: committer,
		lock:      lock,
		store:     store,
		bucket:    bucket,
		bus:       bus,
		log:       log,
	}
}

// UploaderIdentity identifies who performed the upload; leads committed from
// the batch default to this KAM unless a pipeline pre-assignment overrides.
type UploaderIdentity struct {
	KamID   string
	KamName string
	Email   string
}

// Upload archives the spreadsheet, parses and validates it, and persists the
// annotated report. A batch with critical errors is stored as rejected so
// the uploader can inspect the row-level errors, but can never be committed.
func (s *Service) Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64, uploader UploaderIdentity) (repository.Upload, error) {
	if err := s.store.ValidateContentType(contentType); err != nil {
		return repository.Upload{}, apperr.Validation(err.Error()).WithOp("intake.Upload")
	}
	if err := s.store.ValidateFileSize(size); err != nil {
		return repository.Upload{}, apperr.Validation(err.Error()).WithOp("intake.Upload")
	}

	raw, err := io.ReadAll(io.LimitReader(r, size))
	if err != nil {
		return repository.Upload{}, fmt.Errorf("read upload: %w", err)
	}

	objectKey, err := s.store.UploadFile(ctx, s.bucket, uploadFolder, fileName, contentType, bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		// Archival is best effort; validation proceeds on the in-memory copy.
		s.log.Error("archive upload failed", "file", fileName, "error", err)
		objectKey = ""
	}

	records, err := sheet.Parse(fileName, bytes.NewReader(raw))
	if err != nil {
		return repository.Upload{}, apperr.Validation(err.Error()).WithOp("intake.Upload")
	}
	rows, err := sheet.Normalize(records)
	if err != nil {
		return repository.Upload{}, apperr.Validation(err.Error()).WithOp("intake.Upload")
	}

	report := s.engine.Validate(ctx, rows)

	status := repository.StatusValidated
	if report.HasCriticalErrors() {
		status = repository.StatusRejected
	}

	upload := repository.Upload{
		FileName:      fileName,
		Status:        status,
		UploaderKamID: uploader.KamID,
		UploaderName:  uploader.KamName,
		UploaderEmail: uploader.Email,
		RowCount:      len(rows),
		Report:        report,
	}
	if objectKey != "" {
		upload.ObjectKey = &objectKey
	}

	return s.uploads.Create(ctx, upload)
}

// Get returns an upload with its validation report.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Upload, error) {
	upload, err := s.uploads.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Upload{}, apperr.NotFound("upload not found").WithOp("intake.Get")
		}
		return repository.Upload{}, err
	}
	return upload, nil
}

// Commit runs the bulk commit pipeline for a validated upload. A redis lock
// keyed by upload ID absorbs double clicks and replays; the status guard in
// the store makes the commit itself one-way.
func (s *Service) Commit(ctx context.Context, id uuid.UUID) (CommitResult, error) {
	acquired, err := s.lock.Acquire(ctx, id.String())
	if err != nil {
		return CommitResult{}, fmt.Errorf("acquire commit lock: %w", err)
	}
	if !acquired {
		return CommitResult{}, apperr.Conflict("commit already in progress for this upload").WithOp("intake.Commit")
	}
	defer s.lock.Release(ctx, id.String())

	upload, err := s.Get(ctx, id)
	if err != nil {
		return CommitResult{}, err
	}

	switch upload.Status {
	case repository.StatusValidated:
	case repository.StatusCommitted:
		return CommitResult{}, apperr.Conflict("upload has already been committed").WithOp("intake.Commit")
	default:
		return CommitResult{}, apperr.Conflict("upload failed validation and cannot be committed").WithOp("intake.Commit")
	}

	result, err := s.committer.Commit(ctx, upload.Report.Committable(), upload.UploaderKamID, upload.UploaderName)
	if err != nil {
		return CommitResult{}, err
	}

	if err := s.uploads.MarkCommitted(ctx, id, result.Committed, result.Skipped, result.SkippedNumbers); err != nil {
		return CommitResult{}, apperr.Conflict(err.Error()).WithOp("intake.Commit")
	}

	s.log.BulkImport(id.String(), result.Committed, result.Skipped)
	s.bus.Publish(ctx, events.BulkImportCompleted{
		BaseEvent:      events.NewBaseEvent(),
		UploadID:       id.String(),
		FileName:       upload.FileName,
		Committed:      result.Committed,
		Skipped:        result.Skipped,
		SkippedNumbers: result.SkippedNumbers,
		UploaderEmail:  upload.UploaderEmail,
	})

	return result, nil
}
