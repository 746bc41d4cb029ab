package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lexgraph-backend/internal/http/response"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/services"
)

// LegalHandler serves jurisdiction selection and the research assistant.
type LegalHandler struct {
	jurisdictions services.JurisdictionService
	selector      *jurisdiction.Selector
	classifier    *jurisdiction.Classifier
	research      services.ResearchService
}

func NewLegalHandler(
	jurisdictions services.JurisdictionService,
	selector *jurisdiction.Selector,
	classifier *jurisdiction.Classifier,
	research services.ResearchService,
) *LegalHandler {
	return &LegalHandler{
		jurisdictions: jurisdictions,
		selector:      selector,
		classifier:    classifier,
		research:      research,
	}
}

// GET /api/legal/jurisdictions
func (h *LegalHandler) ListJurisdictions(c *gin.Context) {
	rows, err := h.jurisdictions.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jurisdictions": rows})
}

// POST /api/legal/jurisdictions
func (h *LegalHandler) CreateJurisdiction(c *gin.Context) {
	var req services.JurisdictionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	id, err := h.jurisdictions.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"jurisdiction_id": id})
}

// POST /api/legal/jurisdiction-detect
// body: { "query": "..." }
// Returns the raw classifier ranking next to the selector outcome.
func (h *LegalHandler) Detect(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.selector.Resolve(c.Request.Context(), jurisdiction.SelectorInput{Query: req.Query})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"query":     req.Query,
		"ranked":    h.classifier.Classify(req.Query),
		"selection": res,
	})
}

// POST /api/legal/jurisdiction-selector
// body: { "query": "...", "explicit_jurisdiction_ids": [...] }
// Downstream research must wait until requires_confirmation is false.
func (h *LegalHandler) ResolveSelector(c *gin.Context) {
	var req jurisdiction.SelectorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.selector.Resolve(c.Request.Context(), req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/legal/jurisdiction-selector/confirm
// body: { "selected_jurisdiction_ids": [...], "query": "..." }
func (h *LegalHandler) ConfirmSelector(c *gin.Context) {
	var req struct {
		SelectedJurisdictionIDs []uuid.UUID `json:"selected_jurisdiction_ids"`
		Query                   string      `json:"query,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.selector.Confirm(c.Request.Context(), jurisdiction.ConfirmInput{
		SelectedJurisdictionIDs: req.SelectedJurisdictionIDs,
		Query:                   req.Query,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type researchRequest struct {
	Query       string                `json:"query"`
	Mode        services.ResearchMode `json:"mode"`
	ScenarioTag string                `json:"scenario_tag,omitempty"`
	// Either a settled selector result or explicit ids; ids take the
	// selector's explicit branch.
	Selection       *jurisdiction.Result `json:"selection,omitempty"`
	JurisdictionIDs []uuid.UUID          `json:"jurisdiction_ids,omitempty"`
}

// POST /api/legal/research
// An unsettled jurisdiction selection is rejected with 409.
func (h *LegalHandler) Research(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ctx := c.Request.Context()

	var selection jurisdiction.Result
	switch {
	case req.Selection != nil:
		selection = *req.Selection
	case len(req.JurisdictionIDs) > 0:
		res, err := h.selector.Resolve(ctx, jurisdiction.SelectorInput{ExplicitJurisdictionIDs: req.JurisdictionIDs})
		if err != nil {
			response.RespondDomainError(c, err)
			return
		}
		selection = res
	}

	out, err := h.research.Research(ctx, services.ResearchRequest{
		Query:       req.Query,
		Selection:   selection,
		Mode:        services.ResearchMode(strings.ToLower(strings.TrimSpace(string(req.Mode)))),
		ScenarioTag: req.ScenarioTag,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/roles/jurisdiction-defaults?role=
func (h *LegalHandler) RoleDefaults(c *gin.Context) {
	role := jurisdiction.Role(strings.TrimSpace(c.DefaultQuery("role", string(jurisdiction.RoleGeneralUser))))
	rows, err := h.jurisdictions.DefaultsForRole(c.Request.Context(), role)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, j := range rows {
		ids = append(ids, j.ID)
	}
	response.RespondOK(c, gin.H{
		"role":             role,
		"jurisdiction_ids": ids,
		"jurisdictions":    rows,
		"tag_priorities":   services.TagPrioritiesForRole(role),
	})
}
