// Package intake provides the bulk spreadsheet intake bounded context module.
package intake

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"iqol_crm_backend/internal/adapters/storage"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	apphttp "iqol_crm_backend/internal/http"
	"iqol_crm_backend/internal/intake/handler"
	"iqol_crm_backend/internal/intake/repository"
	"iqol_crm_backend/internal/intake/service"
	"iqol_crm_backend/internal/intake/validate"
	leadrepo "iqol_crm_backend/internal/leads/repository"
	pipelinesvc "iqol_crm_backend/internal/pipeline/service"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/logger"
)

// leadIDReserver adapts the shared allocator to the commit pipeline's
// single-purpose interface.
type leadIDReserver struct {
	pool      *pgxpool.Pool
	allocator *counter.Allocator
}

func (r *leadIDReserver) ReserveLeadIDs(ctx context.Context, n int) (counter.Block, error) {
	return r.allocator.Reserve(ctx, r.pool, counter.LeadCounter, n)
}

// leadWriter adapts the leads repository to the commit pipeline.
type leadWriter struct {
	repo *leadrepo.Repository
}

func (w *leadWriter) Insert(ctx context.Context, lead leadrepo.Lead) error {
	_, err := w.repo.CreateOne(ctx, lead)
	return err
}

// Module is the intake bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the intake module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	leads *leadrepo.Repository,
	detector *dedupe.Detector,
	allocator *counter.Allocator,
	voc vocab.Vocabulary,
	lock *dedupe.CommitLock,
	store storage.StorageService,
	bucket string,
	kams *pipelinesvc.Service,
	eventBus events.Bus,
	log *logger.Logger,
) *Module {
	uploads := repository.New(pool)
	engine := validate.NewEngine(detector, voc)
	committer := service.NewCommitter(
		&leadIDReserver{pool: pool, allocator: allocator},
		detector,
		kams,
		&leadWriter{repo: leads},
		log,
	)
	svc := service.New(uploads, engine, committer, lock, store, bucket, eventBus, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts intake routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/intake"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
