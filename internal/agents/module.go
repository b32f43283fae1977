// Package agents provides the agent (channel partner) bounded context module.
package agents

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"iqol_crm_backend/internal/agents/handler"
	"iqol_crm_backend/internal/agents/repository"
	"iqol_crm_backend/internal/agents/service"
	"iqol_crm_backend/internal/counter"
	"iqol_crm_backend/internal/dedupe"
	"iqol_crm_backend/internal/events"
	apphttp "iqol_crm_backend/internal/http"
	"iqol_crm_backend/internal/vocab"
	"iqol_crm_backend/platform/logger"
	"iqol_crm_backend/platform/validator"
)

// Module is the agents bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the agents module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	detector *dedupe.Detector,
	allocator *counter.Allocator,
	voc vocab.Vocabulary,
	eventBus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, detector, allocator, voc, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "agents"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository, shared with duplicate detection and
// lead conversion.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts agent routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/agents"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
