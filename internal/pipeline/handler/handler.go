package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"iqol_crm_backend/internal/pipeline/service"
	"iqol_crm_backend/internal/pipeline/transport"
	"iqol_crm_backend/platform/httpkit"
	"iqol_crm_backend/platform/validator"
)

// Handler handles HTTP requests for pipeline assignments.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers pipeline routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:phone", h.Assign)
	rg.GET("/:phone", h.Get)
	rg.DELETE("/:phone", h.Remove)
}

func (h *Handler) Assign(c *gin.Context) {
	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	assignment, err := h.svc.Assign(c.Request.Context(), c.Param("phone"), req.KamID, req.KamName)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAssignmentResponse(assignment))
}

func (h *Handler) Get(c *gin.Context) {
	assignment, err := h.svc.Get(c.Request.Context(), c.Param("phone"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAssignmentResponse(assignment))
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("phone")); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
