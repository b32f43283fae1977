package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iqol_crm_backend/internal/agents/service"
	"iqol_crm_backend/internal/agents/transport"
	"iqol_crm_backend/platform/httpkit"
	"iqol_crm_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for agents.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new agents handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers agent routes.
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
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAgentRequest
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

	agent, warning, err := h.svc.Create(c.Request.Context(), req, identity.KamID(), identity.KamName())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToAgentResponse(agent, warning))
}

func (h *Handler) Get(c *gin.Context) {
	agent, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAgentResponse(agent, ""))
}

func (h *Handler) List(c *gin.Context) {
	var query transport.ListAgentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.List(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.AgentResponse, 0, len(result.Items))
	for _, agent := range result.Items {
		items = append(items, transport.ToAgentResponse(agent, ""))
	}

	httpkit.OK(c, transport.ListAgentsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

func (h *Handler) Patch(c *gin.Context) {
	var req transport.PatchAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	agent, err := h.svc.Patch(c.Request.Context(), c.Param("id"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAgentResponse(agent, ""))
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

	agent, err := h.svc.RecordCall(c.Request.Context(), c.Param("id"), req, identity.KamID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToAgentResponse(agent, ""))
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
