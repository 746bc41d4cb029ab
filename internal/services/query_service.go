package services

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/jurisdiction"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

const (
	DefaultObligationsLimit       = 50
	DefaultSearchLimit            = 30
	DefaultTemplatesLimit         = 20
	DefaultConflictsLimit         = 50
	DefaultRecommendationsLimit   = 10
	DefaultGraphSnapshotLimit     = 50
	MaxGraphSnapshotLimit         = 200
	recentDocumentVersions        = 5
	roleRankingCandidateTemplates = 100
)

// AuthorityOrder lists layers from most to least authoritative.
var AuthorityOrder = []types.Layer{
	domain.LayerInternational, domain.LayerRegional, domain.LayerNational, domain.LayerSubnational,
}

// QueryOptions pages a read. Zero Limit means the operation default.
type QueryOptions struct {
	Limit  int `json:"limit,omitempty" form:"limit"`
	Offset int `json:"offset,omitempty" form:"offset"`
}

func (o QueryOptions) limit(def int) int {
	if o.Limit > 0 {
		return o.Limit
	}
	return def
}

// QueryService is read-only. Every jurisdiction filter treats an empty slice
// as unscoped.
type QueryService interface {
	GetLegalDocument(ctx context.Context, documentID uuid.UUID) (*DocumentView, error)
	GetObligationsByJurisdiction(ctx context.Context, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]ObligationView, error)
	TraceObligationFlow(ctx context.Context, obligationID uuid.UUID) (*ObligationTrace, error)
	SearchLegalDocuments(ctx context.Context, q string, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]*types.LegalDocument, error)
	DetectConflicts(ctx context.Context, jurisdictionIDs []uuid.UUID, limit int) ([]Conflict, error)
	GetTemplatesForScenario(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]*types.LegalTemplate, error)
	GetOverlaysForJurisdiction(ctx context.Context, jurisdictionID uuid.UUID, templateID *uuid.UUID) ([]OverlayView, error)
	GetScenarioGuidance(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID) (*ScenarioGuidance, error)

	GetTemplateRecommendations(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID) ([]*types.LegalTemplate, error)
	RankTemplatesForRole(ctx context.Context, role jurisdiction.Role, jurisdictionIDs []uuid.UUID) ([]RankedTemplate, error)
	Search(ctx context.Context, q string, jurisdictionIDs []uuid.UUID) (*SearchResults, error)
	GraphSnapshot(ctx context.Context, jurisdictionIDs []uuid.UUID, limit int) (*GraphSnapshot, error)
}

type DocumentView struct {
	*types.LegalDocument
	Jurisdiction   *types.Jurisdiction           `json:"jurisdiction,omitempty"`
	GraphNode      *types.GraphNode              `json:"graph_node,omitempty"`
	Obligations    []*types.LegalObligation      `json:"obligations"`
	VersionHistory []*types.LegalDocumentVersion `json:"version_history"`
}

type DocumentSummary struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	DocumentType     types.DocumentType `json:"document_type"`
	Version          int                `json:"version"`
	JurisdictionID   uuid.UUID          `json:"jurisdiction_id"`
	JurisdictionCode string             `json:"jurisdiction_code,omitempty"`
	LegalLevel       types.Layer        `json:"legal_level,omitempty"`
}

type ObligationView struct {
	*types.LegalObligation
	Document *DocumentSummary `json:"document,omitempty"`
}

type ObligationTrace struct {
	Obligation    *types.LegalObligation `json:"obligation"`
	Document      *DocumentSummary       `json:"document,omitempty"`
	GraphNodeID   *uuid.UUID             `json:"graph_node_id,omitempty"`
	FlowsTo       []*types.GraphEdge     `json:"flows_to"`
	DocumentEdges []*types.GraphEdge     `json:"document_edges"`
}

type Endpoint struct {
	Type         types.EntityType   `json:"type"`
	ID           uuid.UUID          `json:"id"`
	Label        string             `json:"label,omitempty"`
	DocumentType types.DocumentType `json:"document_type,omitempty"`
	LegalLevel   types.Layer        `json:"legal_level,omitempty"`
}

// Conflict is an overrides/supersedes edge. The source prevails;
// AuthorityInversion flags a source that sits below its target.
type Conflict struct {
	EdgeID             uuid.UUID      `json:"edge_id"`
	EdgeType           types.EdgeType `json:"edge_type"`
	From               Endpoint       `json:"from"`
	To                 Endpoint       `json:"to"`
	AuthorityInversion bool           `json:"authority_inversion"`
}

type OverlayView struct {
	*types.TemplateOverlay
	TemplateID     uuid.UUID `json:"template_id"`
	SectionHeading string    `json:"section_heading,omitempty"`
	SectionOrder   int       `json:"section_order"`
}

type GuidanceLink struct {
	TemplateID  uuid.UUID `json:"template_id"`
	GraphNodeID uuid.UUID `json:"graph_node_id"`
	LinkType    string    `json:"link_type,omitempty"`
}

type ScenarioGuidance struct {
	ScenarioID         string                 `json:"scenario_id"`
	Templates          []*types.LegalTemplate `json:"templates"`
	SectionCounts      map[uuid.UUID]int      `json:"section_counts"`
	LinkedLegalNodeIDs []uuid.UUID            `json:"linked_legal_node_ids"`
	LinkedNodes        []*types.GraphNode     `json:"linked_nodes"`
	Links              []GuidanceLink         `json:"links"`
}

type SearchResults struct {
	Query       string                   `json:"query"`
	Documents   []*types.LegalDocument   `json:"documents"`
	Obligations []*types.LegalObligation `json:"obligations"`
	Templates   []*types.LegalTemplate   `json:"templates"`
}

type GraphSnapshot struct {
	Nodes          []*types.GraphNode `json:"nodes"`
	Edges          []*types.GraphEdge `json:"edges"`
	AuthorityOrder []types.Layer      `json:"authority_order"`
}

type queryService struct {
	db    *gorm.DB
	log   *logger.Logger
	repos repos.Set
}

func NewQueryService(db *gorm.DB, baseLog *logger.Logger, set repos.Set) QueryService {
	return &queryService{
		db:    db,
		log:   baseLog.With("service", "QueryService"),
		repos: set,
	}
}

func (s *queryService) GetLegalDocument(ctx context.Context, documentID uuid.UUID) (*DocumentView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.repos.Document.GetByID(dbc, documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.NotFound("legal document", documentID)
	}
	view := &DocumentView{LegalDocument: doc}

	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		j, err := s.repos.Jurisdiction.GetByID(gdbc, doc.JurisdictionID)
		view.Jurisdiction = j
		return err
	})
	g.Go(func() error {
		n, err := s.repos.GraphNode.GetByDocumentID(gdbc, doc.ID)
		view.GraphNode = n
		return err
	})
	g.Go(func() error {
		obs, err := s.repos.Obligation.GetByDocumentID(gdbc, doc.ID)
		view.Obligations = obs
		return err
	})
	g.Go(func() error {
		versions, err := s.repos.History.ListDocumentVersions(gdbc, doc.ID)
		if err != nil {
			return err
		}
		sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
		if len(versions) > recentDocumentVersions {
			versions = versions[:recentDocumentVersions]
		}
		view.VersionHistory = versions
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if view.Obligations == nil {
		view.Obligations = []*types.LegalObligation{}
	}
	if view.VersionHistory == nil {
		view.VersionHistory = []*types.LegalDocumentVersion{}
	}
	return view, nil
}

func (s *queryService) GetObligationsByJurisdiction(ctx context.Context, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]ObligationView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	obs, err := s.repos.Obligation.ListByJurisdictions(dbc, jurisdictionIDs, opts.limit(DefaultObligationsLimit), opts.Offset)
	if err != nil {
		return nil, err
	}
	docIDs := make([]uuid.UUID, 0, len(obs))
	for _, o := range obs {
		docIDs = append(docIDs, o.DocumentID)
	}
	summaries, err := s.documentSummaries(dbc, docIDs)
	if err != nil {
		return nil, err
	}
	out := make([]ObligationView, 0, len(obs))
	for _, o := range obs {
		out = append(out, ObligationView{LegalObligation: o, Document: summaries[o.DocumentID]})
	}
	return out, nil
}

func (s *queryService) TraceObligationFlow(ctx context.Context, obligationID uuid.UUID) (*ObligationTrace, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ob, err := s.repos.Obligation.GetByID(dbc, obligationID)
	if err != nil {
		return nil, err
	}
	if ob == nil {
		return nil, domain.NotFound("obligation", obligationID)
	}
	trace := &ObligationTrace{Obligation: ob}

	summaries, err := s.documentSummaries(dbc, []uuid.UUID{ob.DocumentID})
	if err != nil {
		return nil, err
	}
	trace.Document = summaries[ob.DocumentID]

	if trace.FlowsTo, err = s.repos.Edge.ListFrom(dbc, domain.EntityObligation, []uuid.UUID{ob.ID}, nil); err != nil {
		return nil, err
	}
	touching := []uuid.UUID{ob.DocumentID}
	node, err := s.repos.GraphNode.GetByDocumentID(dbc, ob.DocumentID)
	if err != nil {
		return nil, err
	}
	if node != nil {
		trace.GraphNodeID = &node.ID
		touching = append(touching, node.ID)
	}
	if trace.DocumentEdges, err = s.repos.Edge.ListTouching(dbc, touching, 0); err != nil {
		return nil, err
	}
	return trace, nil
}

func (s *queryService) SearchLegalDocuments(ctx context.Context, q string, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]*types.LegalDocument, error) {
	if strings.TrimSpace(q) == "" {
		return nil, domain.NewValidationError("query is required")
	}
	return s.repos.Document.Search(dbctx.Context{Ctx: ctx}, q, jurisdictionIDs, opts.limit(DefaultSearchLimit), opts.Offset)
}

func (s *queryService) DetectConflicts(ctx context.Context, jurisdictionIDs []uuid.UUID, limit int) ([]Conflict, error) {
	if limit <= 0 {
		limit = DefaultConflictsLimit
	}
	dbc := dbctx.Context{Ctx: ctx}
	edges, err := s.repos.Edge.ListByTypesForJurisdictions(dbc, domain.ConflictEdgeTypes, jurisdictionIDs, limit, 0)
	if err != nil {
		return nil, err
	}
	endpoints, err := s.resolveEndpoints(dbc, edges)
	if err != nil {
		return nil, err
	}
	out := make([]Conflict, 0, len(edges))
	for _, e := range edges {
		from := endpoints[e.FromID]
		to := endpoints[e.ToID]
		if from.ID == uuid.Nil {
			from = Endpoint{Type: e.FromType, ID: e.FromID}
		}
		if to.ID == uuid.Nil {
			to = Endpoint{Type: e.ToType, ID: e.ToID}
		}
		out = append(out, Conflict{
			EdgeID:             e.ID,
			EdgeType:           e.EdgeType,
			From:               from,
			To:                 to,
			AuthorityInversion: to.LegalLevel.Above(from.LegalLevel),
		})
	}
	return out, nil
}

func (s *queryService) GetTemplatesForScenario(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID, opts QueryOptions) ([]*types.LegalTemplate, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, domain.NewValidationError("scenario tag is required")
	}
	limit := opts.limit(DefaultTemplatesLimit)
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := s.repos.Template.ListActiveByTag(dbctx.Context{Ctx: ctx}, tag, jurisdictionIDs, limit+offset)
	if err != nil {
		return nil, err
	}
	if offset >= len(rows) {
		return []*types.LegalTemplate{}, nil
	}
	return rows[offset:], nil
}

func (s *queryService) GetOverlaysForJurisdiction(ctx context.Context, jurisdictionID uuid.UUID, templateID *uuid.UUID) ([]OverlayView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var overlays []*types.TemplateOverlay
	var err error
	if templateID != nil {
		sections, err := s.repos.Section.ListByTemplateIDs(dbc, []uuid.UUID{*templateID})
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(sections))
		for _, sec := range sections {
			ids = append(ids, sec.ID)
		}
		if overlays, err = s.repos.Overlay.ListBySectionIDs(dbc, ids, []uuid.UUID{jurisdictionID}); err != nil {
			return nil, err
		}
	} else if overlays, err = s.repos.Overlay.ListByJurisdictions(dbc, []uuid.UUID{jurisdictionID}, 0); err != nil {
		return nil, err
	}

	sectionIDs := make([]uuid.UUID, 0, len(overlays))
	for _, ov := range overlays {
		sectionIDs = append(sectionIDs, ov.SectionID)
	}
	sections, err := s.repos.Section.GetByIDs(dbc, sectionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.LegalTemplateSection, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}
	out := make([]OverlayView, 0, len(overlays))
	for _, ov := range overlays {
		v := OverlayView{TemplateOverlay: ov}
		if sec := byID[ov.SectionID]; sec != nil {
			v.TemplateID, v.SectionHeading, v.SectionOrder = sec.TemplateID, sec.Heading, sec.Order
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *queryService) GetScenarioGuidance(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID) (*ScenarioGuidance, error) {
	templates, err := s.GetTemplatesForScenario(ctx, tag, jurisdictionIDs, QueryOptions{Limit: DefaultTemplatesLimit})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}
	out := &ScenarioGuidance{
		ScenarioID:         tag,
		Templates:          templates,
		SectionCounts:      map[uuid.UUID]int{},
		LinkedLegalNodeIDs: []uuid.UUID{},
		LinkedNodes:        []*types.GraphNode{},
		Links:              []GuidanceLink{},
	}
	if len(ids) == 0 {
		return out, nil
	}

	var links []*types.LegalTemplateLink
	var sections []*types.LegalTemplateSection
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		links, err = s.repos.Link.ListByTemplateIDs(gdbc, ids)
		return err
	})
	g.Go(func() error {
		var err error
		sections, err = s.repos.Section.ListByTemplateIDs(gdbc, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, sec := range sections {
		out.SectionCounts[sec.TemplateID]++
	}
	seen := map[uuid.UUID]bool{}
	for _, l := range links {
		out.Links = append(out.Links, GuidanceLink{TemplateID: l.TemplateID, GraphNodeID: l.GraphNodeID, LinkType: l.LinkType})
		if !seen[l.GraphNodeID] {
			seen[l.GraphNodeID] = true
			out.LinkedLegalNodeIDs = append(out.LinkedLegalNodeIDs, l.GraphNodeID)
		}
	}
	nodes, err := s.repos.GraphNode.GetByIDs(dbctx.Context{Ctx: ctx}, out.LinkedLegalNodeIDs)
	if err != nil {
		return nil, err
	}
	out.LinkedNodes = nodes
	return out, nil
}

func (s *queryService) GetTemplateRecommendations(ctx context.Context, tag string, jurisdictionIDs []uuid.UUID) ([]*types.LegalTemplate, error) {
	return s.GetTemplatesForScenario(ctx, tag, jurisdictionIDs, QueryOptions{Limit: DefaultRecommendationsLimit})
}

func (s *queryService) RankTemplatesForRole(ctx context.Context, role jurisdiction.Role, jurisdictionIDs []uuid.UUID) ([]RankedTemplate, error) {
	if !role.Valid() {
		return nil, domain.NewValidationError("unknown role " + string(role))
	}
	rows, err := s.repos.Template.ListActive(dbctx.Context{Ctx: ctx}, jurisdictionIDs, roleRankingCandidateTemplates)
	if err != nil {
		return nil, err
	}
	return RankTemplatesByRole(rows, role), nil
}

// Search runs the three entity searches concurrently.
func (s *queryService) Search(ctx context.Context, q string, jurisdictionIDs []uuid.UUID) (*SearchResults, error) {
	if strings.TrimSpace(q) == "" {
		return nil, domain.NewValidationError("query is required")
	}
	out := &SearchResults{Query: q}
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		out.Documents, err = s.repos.Document.Search(gdbc, q, jurisdictionIDs, DefaultSearchLimit, 0)
		return err
	})
	g.Go(func() error {
		var err error
		out.Obligations, err = s.repos.Obligation.Search(gdbc, q, jurisdictionIDs, DefaultSearchLimit)
		return err
	})
	g.Go(func() error {
		var err error
		out.Templates, err = s.repos.Template.Search(gdbc, q, jurisdictionIDs, DefaultTemplatesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *queryService) GraphSnapshot(ctx context.Context, jurisdictionIDs []uuid.UUID, limit int) (*GraphSnapshot, error) {
	if limit <= 0 {
		limit = DefaultGraphSnapshotLimit
	}
	if limit > MaxGraphSnapshotLimit {
		limit = MaxGraphSnapshotLimit
	}
	out := &GraphSnapshot{AuthorityOrder: append([]types.Layer(nil), AuthorityOrder...)}
	g, gctx := errgroup.WithContext(ctx)
	gdbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		out.Nodes, err = s.repos.GraphNode.ListByJurisdictions(gdbc, jurisdictionIDs, limit)
		return err
	})
	g.Go(func() error {
		var err error
		out.Edges, err = s.repos.Edge.ListByTypesForJurisdictions(gdbc, nil, jurisdictionIDs, limit*2, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *queryService) documentSummaries(dbc dbctx.Context, ids []uuid.UUID) (map[uuid.UUID]*DocumentSummary, error) {
	out := map[uuid.UUID]*DocumentSummary{}
	docs, err := s.repos.Document.GetByIDs(dbc, uniqueIDs(ids))
	if err != nil || len(docs) == 0 {
		return out, err
	}
	jids := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		jids = append(jids, d.JurisdictionID)
	}
	js, err := s.repos.Jurisdiction.GetByIDs(dbc, uniqueIDs(jids))
	if err != nil {
		return nil, err
	}
	codes := make(map[uuid.UUID]string, len(js))
	for _, j := range js {
		codes[j.ID] = j.Code
	}
	for _, d := range docs {
		out[d.ID] = &DocumentSummary{
			ID:               d.ID,
			Title:            d.Title,
			DocumentType:     d.DocumentType,
			Version:          d.Version,
			JurisdictionID:   d.JurisdictionID,
			JurisdictionCode: codes[d.JurisdictionID],
			LegalLevel:       d.LegalLevel,
		}
	}
	return out, nil
}

// resolveEndpoints labels document and graph-node endpoints. Other entity
// types are returned bare.
func (s *queryService) resolveEndpoints(dbc dbctx.Context, edges []*types.GraphEdge) (map[uuid.UUID]Endpoint, error) {
	var docIDs, nodeIDs []uuid.UUID
	for _, e := range edges {
		for _, end := range []struct {
			t  types.EntityType
			id uuid.UUID
		}{{e.FromType, e.FromID}, {e.ToType, e.ToID}} {
			switch end.t {
			case domain.EntityLegalDocument:
				docIDs = append(docIDs, end.id)
			case domain.EntityGraphNode:
				nodeIDs = append(nodeIDs, end.id)
			}
		}
	}
	out := map[uuid.UUID]Endpoint{}
	nodes, err := s.repos.GraphNode.GetByIDs(dbc, uniqueIDs(nodeIDs))
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		out[n.ID] = Endpoint{Type: domain.EntityGraphNode, ID: n.ID, Label: n.Label, DocumentType: n.NodeType, LegalLevel: n.LegalLevel}
	}
	docs, err := s.repos.Document.GetByIDs(dbc, uniqueIDs(docIDs))
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID] = Endpoint{Type: domain.EntityLegalDocument, ID: d.ID, Label: d.Title, DocumentType: d.DocumentType, LegalLevel: d.LegalLevel}
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
