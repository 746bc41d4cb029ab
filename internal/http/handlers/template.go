package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// POST /api/graph/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req services.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	id, err := h.templates.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"template_id": id})
}

// GET /api/graph/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	t, err := h.templates.GetTemplate(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, t)
}

// GET /api/graph/templates/:id/sections
func (h *TemplateHandler) GetSections(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	sections, err := h.templates.GetTemplateSections(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sections": sections})
}

// POST /api/graph/templates/:id/sections
// body: { "order": 2, "heading": "...", "body": "..." }; order defaults to last+1.
func (h *TemplateHandler) AddSection(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var req services.SectionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	sectionID, err := h.templates.AddTemplateSection(c.Request.Context(), id, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"section_id": sectionID})
}

// POST /api/graph/templates/:id/links
func (h *TemplateHandler) LinkTemplate(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var req services.TemplateLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	req.TemplateID = id
	if err := h.templates.LinkTemplate(c.Request.Context(), req); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ok": true})
}

// POST /api/graph/templates/:id/version
// An empty body is allowed.
func (h *TemplateHandler) CreateVersion(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var req services.TemplateVersionParams
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
	}
	version, err := h.templates.CreateTemplateVersion(c.Request.Context(), id, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"template_id": id, "version": version})
}

// GET /api/graph/templates/:id/versions
func (h *TemplateHandler) ListVersions(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	versions, err := h.templates.GetTemplateVersions(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}

// PUT /api/graph/overlays
func (h *TemplateHandler) UpsertOverlay(c *gin.Context) {
	var req services.OverlayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ref, err := h.templates.UpsertOverlay(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if ref.Created {
		response.RespondCreated(c, ref)
		return
	}
	response.RespondOK(c, ref)
}

// PATCH /api/graph/overlays/:id
// body: { "overlay_text": "..." }
func (h *TemplateHandler) UpdateOverlay(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var req struct {
		OverlayText *string `json:"overlay_text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.OverlayText == nil {
		response.RespondDomainError(c, domain.NewValidationError("overlay_text is required"))
		return
	}
	version, err := h.templates.UpdateOverlay(c.Request.Context(), id, *req.OverlayText)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overlay_id": id, "version": version})
}

// GET /api/graph/sections/:id/overlays
func (h *TemplateHandler) GetOverlays(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	overlays, err := h.templates.GetOverlays(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overlays": overlays})
}
