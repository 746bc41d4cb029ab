package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type ResearchMode string

const (
	ResearchSummary     ResearchMode = "summary"
	ResearchObligations ResearchMode = "obligations"
	ResearchComparison  ResearchMode = "comparison"
	ResearchConflict    ResearchMode = "conflict"
	ResearchTemplates   ResearchMode = "templates"
	ResearchScenario    ResearchMode = "scenario"
)

const ResearchDisclaimer = "This output is for research and orientation only. It does not constitute legal advice or draft binding documents."

const researchSummaryDocuments = 5

var researchModes = []ResearchMode{
	ResearchSummary, ResearchObligations, ResearchComparison, ResearchConflict, ResearchTemplates, ResearchScenario,
}

func (m ResearchMode) Valid() bool {
	for _, v := range researchModes {
		if v == m {
			return true
		}
	}
	return false
}

type ResearchRequest struct {
	Query       string              `json:"query"`
	Selection   jurisdiction.Result `json:"selection"`
	Mode        ResearchMode        `json:"mode"`
	ScenarioTag string              `json:"scenario_tag,omitempty"`
}

// ResearchResponse carries one populated section per mode.
type ResearchResponse struct {
	Mode          ResearchMode   `json:"mode"`
	Query         string         `json:"query"`
	Disclaimer    string         `json:"disclaimer"`
	Jurisdictions []string       `json:"jurisdictions"`
	Modules       []types.Module `json:"modules"`

	Documents   []*types.LegalDocument            `json:"documents,omitempty"`
	Obligations []ObligationView                  `json:"obligations,omitempty"`
	Comparison  map[string][]*types.LegalDocument `json:"comparison,omitempty"`
	Conflicts   []Conflict                        `json:"conflicts,omitempty"`
	Templates   []*types.LegalTemplate            `json:"templates,omitempty"`
	Guidance    *ScenarioGuidance                 `json:"guidance,omitempty"`
}

type ResearchService interface {
	Research(ctx context.Context, req ResearchRequest) (*ResearchResponse, error)
}

type researchService struct {
	log   *logger.Logger
	repos repos.Set
	query QueryService
}

func NewResearchService(baseLog *logger.Logger, set repos.Set, query QueryService) ResearchService {
	return &researchService{
		log:   baseLog.With("service", "ResearchService"),
		repos: set,
		query: query,
	}
}

// Research only runs against a settled jurisdiction selection.
func (s *researchService) Research(ctx context.Context, req ResearchRequest) (*ResearchResponse, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Mode == "" {
		req.Mode = ResearchSummary
	}
	var problems []string
	if req.Query == "" {
		problems = append(problems, "query is required")
	}
	if !req.Mode.Valid() {
		problems = append(problems, fmt.Sprintf("unknown research mode %q", req.Mode))
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}
	if !jurisdiction.IsComplete(req.Selection) {
		return nil, domain.ErrJurisdictionUnconfirmed
	}

	ids := req.Selection.ConfirmedIDs()
	out := &ResearchResponse{
		Mode:          req.Mode,
		Query:         req.Query,
		Disclaimer:    ResearchDisclaimer,
		Jurisdictions: req.Selection.ConfirmedCodes(),
		Modules:       jurisdiction.ModulesForJurisdictions(req.Selection.Confirmed),
	}

	var err error
	switch req.Mode {
	case ResearchSummary:
		out.Documents, err = s.summaryDocuments(ctx, req.Query, ids)
	case ResearchObligations:
		out.Obligations, err = s.query.GetObligationsByJurisdiction(ctx, ids, QueryOptions{})
	case ResearchComparison:
		out.Comparison, err = s.compare(ctx, req.Selection.Confirmed)
	case ResearchConflict:
		out.Conflicts, err = s.query.DetectConflicts(ctx, ids, 0)
	case ResearchTemplates:
		if req.ScenarioTag != "" {
			out.Templates, err = s.query.GetTemplateRecommendations(ctx, req.ScenarioTag, ids)
		} else {
			out.Templates, err = s.repos.Template.ListActive(dbctx.Context{Ctx: ctx}, ids, DefaultRecommendationsLimit)
		}
	case ResearchScenario:
		if req.ScenarioTag == "" {
			return nil, domain.NewValidationError("scenario_tag is required for scenario research")
		}
		out.Guidance, err = s.query.GetScenarioGuidance(ctx, req.ScenarioTag, ids)
	}
	if err != nil {
		return nil, err
	}
	s.log.Debug("research served", "mode", req.Mode, "jurisdictions", out.Jurisdictions)
	return out, nil
}

// summaryDocuments prefers matches for the query and falls back to the most
// recent documents in scope.
func (s *researchService) summaryDocuments(ctx context.Context, q string, ids []uuid.UUID) ([]*types.LegalDocument, error) {
	docs, err := s.query.SearchLegalDocuments(ctx, q, ids, QueryOptions{Limit: researchSummaryDocuments})
	if err != nil || len(docs) > 0 {
		return docs, err
	}
	return s.repos.Document.ListByJurisdictions(dbctx.Context{Ctx: ctx}, ids, researchSummaryDocuments, 0)
}

func (s *researchService) compare(ctx context.Context, items []jurisdiction.Item) (map[string][]*types.LegalDocument, error) {
	out := make(map[string][]*types.LegalDocument, len(items))
	for _, it := range items {
		docs, err := s.repos.Document.ListByJurisdictions(dbctx.Context{Ctx: ctx}, []uuid.UUID{it.ID}, researchSummaryDocuments, 0)
		if err != nil {
			return nil, err
		}
		out[it.Code] = docs
	}
	return out, nil
}
