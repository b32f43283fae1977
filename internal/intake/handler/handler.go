package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"iqol_crm_backend/internal/intake/service"
	"iqol_crm_backend/internal/intake/transport"
	"iqol_crm_backend/platform/httpkit"
)

// Handler handles HTTP requests for bulk intake.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers intake routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.Upload)
	rg.GET("/uploads/:id", h.Get)
	rg.POST("/uploads/:id/commit", h.Commit)
}

// Upload accepts a multipart spreadsheet under the "file" field, validates
// it, and returns the annotated report for preview.
func (h *Handler) Upload(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "multipart field \"file\" is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read uploaded file", nil)
		return
	}
	defer file.Close()

	upload, err := h.svc.Upload(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		fileHeader.Size,
		service.UploaderIdentity{
			KamID:   identity.KamID(),
			KamName: identity.KamName(),
			Email:   identity.Email(),
		},
	)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToUploadResponse(upload))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid upload id", nil)
		return
	}

	upload, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToUploadResponse(upload))
}

func (h *Handler) Commit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid upload id", nil)
		return
	}

	result, err := h.svc.Commit(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
