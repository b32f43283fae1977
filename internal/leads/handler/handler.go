package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iqol_crm_backend/internal/leads/service"
	"iqol_crm_backend/internal/leads/transport"
	"iqol_crm_backend/platform/httpkit"
	"iqol_crm_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new leads handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers lead routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Patch)

	rg.POST("/:id/calls", h.RecordCall)
	rg.GET("/:id/calls", h.ConnectHistory)

	rg.POST("/:id/notes", h.AddNote)
	rg.GET("/:id/notes", h.ListNotes)
	rg.DELETE("/:id/notes/:noteId", h.ArchiveNote)

	rg.POST("/:id/convert", h.Convert)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, warning, err := h.svc.Create(c.Request.Context(), req, identity.KamID(), identity.KamName())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToLeadResponse(lead, warning))
}

func (h *Handler) Get(c *gin.Context) {
	lead, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead, ""))
}

func (h *Handler) List(c *gin.Context) {
	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.LeadResponse, 0, len(result.Items))
	for _, lead := range result.Items {
		items = append(items, transport.ToLeadResponse(lead, ""))
	}

	httpkit.OK(c, transport.ListLeadsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) Patch(c *gin.Context) {
	var req transport.PatchLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.Patch(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead, ""))
}

func (h *Handler) RecordCall(c *gin.Context) {
	var req transport.RecordCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	lead, err := h.svc.RecordCall(c.Request.Context(), c.Param("id"), req, identity.KamID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToLeadResponse(lead, ""))
}

func (h *Handler) ConnectHistory(c *gin.Context) {
	entries, err := h.svc.ConnectHistory(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToConnectHistoryResponse(entries))
}

func (h *Handler) AddNote(c *gin.Context) {
	var req transport.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	note, err := h.svc.AddNote(c.Request.Context(), c.Param("id"), req, identity.KamID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToNoteResponse(note))
}

func (h *Handler) ListNotes(c *gin.Context) {
	notes, err := h.svc.Notes(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToNotesResponse(notes))
}

func (h *Handler) ArchiveNote(c *gin.Context) {
	noteID, err := uuid.Parse(c.Param("noteId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid note id", nil)
		return
	}

	if err := h.svc.ArchiveNote(c.Request.Context(), c.Param("id"), noteID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Convert(c *gin.Context) {
	var req transport.ConvertLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Convert(c.Request.Context(), c.Param("id"), req, identity.KamID(), identity.KamName())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
