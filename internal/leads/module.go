// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	agentrepo "iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	apphttp "iqol_crm_backend/internal/http"
	"iqol_crm_backend/internal/leads/handler"
	"iqol_crm_backend/internal/leads/repository"
	"iqol_crm_backend/internal/leads/service"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	agents *agentrepo.Repository,
	detector *dedupe.Detector,
	allocator *counter.Allocator,
	voc vocab.Vocabulary,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, agents, detector, allocator, voc, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository, used by other modules that share the
// lead store (duplicate detection, bulk intake).
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
