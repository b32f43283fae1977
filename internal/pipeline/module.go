// Package pipeline provides the KAM pre-assignment bounded context module.
package pipeline

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "iqol_crm_backend/internal/http"
	"iqol_crm_backend/internal/pipeline/handler"
	"iqol_crm_backend/internal/pipeline/repository"
	"iqol_crm_backend/internal/pipeline/service"
	"iqol_crm_backend/platform/validator"
)

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the pipeline module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the service layer, consulted by bulk intake.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/pipeline"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
