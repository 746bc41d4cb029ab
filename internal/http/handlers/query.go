package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

const defaultScenario = "humanitarian"

// QueryHandler serves the read-only graph queries. Every jurisdiction_ids
// parameter is a comma separated list; omitting it means unscoped.
type QueryHandler struct {
	query services.QueryService
}

func NewQueryHandler(query services.QueryService) *QueryHandler {
	return &QueryHandler{query: query}
}

// GET /api/graph/query/documents/:id
func (h *QueryHandler) GetDocument(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	doc, err := h.query.GetLegalDocument(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, doc)
}

// GET /api/graph/query/obligations?jurisdiction_ids=&limit=&offset=
func (h *QueryHandler) GetObligations(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	opts := services.QueryOptions{
		Limit:  queryInt(c, "limit", services.DefaultObligationsLimit, maxPageLimit),
		Offset: queryOffset(c),
	}
	obligations, err := h.query.GetObligationsByJurisdiction(c.Request.Context(), ids, opts)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"obligations": obligations})
}

// GET /api/graph/query/obligations/:id/trace
func (h *QueryHandler) TraceObligation(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	flow, err := h.query.TraceObligationFlow(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, flow)
}

// GET /api/graph/query/search?q=&jurisdiction_ids=&limit=
func (h *QueryHandler) SearchDocuments(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	opts := services.QueryOptions{Limit: queryInt(c, "limit", services.DefaultSearchLimit, maxPageLimit)}
	docs, err := h.query.SearchLegalDocuments(c.Request.Context(), c.Query("q"), ids, opts)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// GET /api/graph/query/unified-search?q=&jurisdiction_ids=
func (h *QueryHandler) Search(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	res, err := h.query.Search(c.Request.Context(), c.Query("q"), ids)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/graph/query/conflicts?jurisdiction_ids=&limit=
func (h *QueryHandler) DetectConflicts(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	limit := queryInt(c, "limit", services.DefaultConflictsLimit, maxPageLimit)
	conflicts, err := h.query.DetectConflicts(c.Request.Context(), ids, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conflicts": conflicts})
}

// GET /api/graph/query/templates/scenario/:tag?jurisdiction_ids=&limit=&offset=
func (h *QueryHandler) TemplatesForScenario(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	opts := services.QueryOptions{
		Limit:  queryInt(c, "limit", services.DefaultTemplatesLimit, maxPageLimit),
		Offset: queryOffset(c),
	}
	templates, err := h.query.GetTemplatesForScenario(c.Request.Context(), c.Param("tag"), ids, opts)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}

// GET /api/graph/query/templates/ranked?role=&jurisdiction_ids=
func (h *QueryHandler) RankTemplatesForRole(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	role := jurisdiction.Role(strings.TrimSpace(c.DefaultQuery("role", string(jurisdiction.RoleGeneralUser))))
	ranked, err := h.query.RankTemplatesForRole(c.Request.Context(), role, ids)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"role": role, "templates": ranked})
}

// GET /api/graph/query/overlays?jurisdiction_id=&template_id=
func (h *QueryHandler) OverlaysForJurisdiction(c *gin.Context) {
	jid, err := queryOptionalUUID(c, "jurisdiction_id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if jid == nil {
		response.RespondDomainError(c, requiredParam("jurisdiction_id"))
		return
	}
	templateID, err := queryOptionalUUID(c, "template_id")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	overlays, err := h.query.GetOverlaysForJurisdiction(c.Request.Context(), *jid, templateID)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overlays": overlays})
}

// GET /api/graph/query/scenario-guidance?scenario=&jurisdiction_ids=
func (h *QueryHandler) ScenarioGuidance(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	guidance, err := h.query.GetScenarioGuidance(c.Request.Context(), c.DefaultQuery("scenario", defaultScenario), ids)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, guidance)
}

// GET /api/graph/query/recommendations?scenario=&jurisdiction_ids=
func (h *QueryHandler) Recommendations(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	templates, err := h.query.GetTemplateRecommendations(c.Request.Context(), c.DefaultQuery("scenario", defaultScenario), ids)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"templates": templates})
}

// GET /api/legal/graph?jurisdiction_ids=&limit=
func (h *QueryHandler) GraphSnapshot(c *gin.Context) {
	ids, err := queryUUIDs(c, "jurisdiction_ids")
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	limit := queryInt(c, "limit", services.DefaultGraphSnapshotLimit, services.MaxGraphSnapshotLimit)
	snap, err := h.query.GraphSnapshot(c.Request.Context(), ids, limit)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, snap)
}
