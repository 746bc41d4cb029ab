package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/platform/ctxutil"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

// GraphHandler exposes the graph write path.
type GraphHandler struct {
	graph      services.GraphService
	propagator services.Propagator
}

func NewGraphHandler(graph services.GraphService, propagator services.Propagator) *GraphHandler {
	return &GraphHandler{graph: graph, propagator: propagator}
}

type addDocumentRequest struct {
	services.LegalDocumentInput
	Module types.Module `json:"module"`
}

// POST /api/graph/documents
func (h *GraphHandler) AddDocument(c *gin.Context) {
	var req addDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Module == "" {
		response.RespondDomainError(c, domain.NewValidationError("module is required"))
		return
	}
	ref, err := h.graph.AddLegalDocument(c.Request.Context(), req.LegalDocumentInput, req.Module)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, ref)
}

// POST /api/graph/obligations
func (h *GraphHandler) AddObligation(c *gin.Context) {
	var req services.ObligationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	id, err := h.graph.AddObligation(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"obligation_id": id})
}

type addRelationshipRequest struct {
	services.RelationshipInput
	Module *types.Module `json:"module,omitempty"`
}

// POST /api/graph/relationships
// An edge is audited only when a module is supplied.
func (h *GraphHandler) AddRelationship(c *gin.Context) {
	var req addRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Module != nil && *req.Module == "" {
		req.Module = nil
	}
	id, err := h.graph.AddRelationship(c.Request.Context(), req.RelationshipInput, req.Module)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"edge_id": id})
}

type documentVersionRequest struct {
	NormalizedText *string      `json:"normalized_text,omitempty"`
	ContentDelta   *string      `json:"content_delta,omitempty"`
	ChangeSummary  *string      `json:"change_summary,omitempty"`
	Module         types.Module `json:"module"`
}

// POST /api/graph/documents/:id/version
// module defaults to the document's own module.
func (h *GraphHandler) UpdateDocumentVersion(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	var req documentVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	version, err := h.graph.UpdateDocumentVersion(c.Request.Context(), services.DocumentVersionUpdate{
		DocumentID:     id,
		NormalizedText: req.NormalizedText,
		ContentDelta:   req.ContentDelta,
		ChangeSummary:  req.ChangeSummary,
		Actor:          ctxutil.Actor(c.Request.Context()),
	}, req.Module)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"document_id": id,
		"version":     version,
		"message":     fmt.Sprintf("document is now at version %d", version),
	})
}

// POST /api/graph/documents/:id/propagate
// Pushes the current version of an EU or international act to its
// dependents, typically after new templates were linked to it.
func (h *GraphHandler) PropagateSupranational(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	report := h.propagator.PropagateSupranational(c.Request.Context(), id)
	if report.Skipped && report.SkipReason == services.SkipDocumentNotFound {
		response.RespondDomainError(c, domain.NotFound("legal document", id))
		return
	}
	response.RespondOK(c, report)
}
