package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/ingestion/pipeline"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

// GraphService is the write path into the legal graph. Writes return ids and
// versions only; callers re-query for full entities.
type GraphService interface {
	AddLegalDocument(ctx context.Context, in LegalDocumentInput, module types.Module) (DocumentRef, error)
	AddObligation(ctx context.Context, in ObligationInput) (uuid.UUID, error)
	AddRelationship(ctx context.Context, in RelationshipInput, module *types.Module) (uuid.UUID, error)
	UpdateDocumentVersion(ctx context.Context, in DocumentVersionUpdate, module types.Module) (int, error)
}

type LegalDocumentInput struct {
	Title            string             `json:"title" validate:"required,max=2000"`
	DocumentType     types.DocumentType `json:"document_type" validate:"required,doctype"`
	JurisdictionID   uuid.UUID          `json:"jurisdiction_id" validate:"required"`
	LegalLevel       types.Layer        `json:"legal_level,omitempty" validate:"omitempty,layer"`
	Authority        string             `json:"authority,omitempty"`
	SourceURL        string             `json:"source_url,omitempty" validate:"max=2048"`
	DateAdopted      *time.Time         `json:"date_adopted,omitempty"`
	DateEffective    *time.Time         `json:"date_effective,omitempty"`
	DateEffectiveTo  *time.Time         `json:"date_effective_to,omitempty"`
	OriginalLanguage string             `json:"original_language,omitempty"`
	OriginalText     string             `json:"original_text,omitempty"`
	NormalizedText   string             `json:"normalized_text,omitempty"`
	Celex            string             `json:"celex,omitempty"`
	Rada             string             `json:"rada,omitempty"`
	UNSymbol         string             `json:"un_symbol,omitempty"`
	CFR              string             `json:"cfr,omitempty"`
	ExternalID       string             `json:"external_id,omitempty"`
	Metadata         map[string]any     `json:"metadata,omitempty"`
}

type DocumentRef struct {
	DocumentID  uuid.UUID `json:"document_id"`
	GraphNodeID uuid.UUID `json:"graph_node_id"`
}

type ObligationInput struct {
	DocumentID     uuid.UUID  `json:"document_id" validate:"required"`
	Text           string     `json:"text" validate:"required"`
	Scope          string     `json:"scope,omitempty"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`
	LegalBasis     string     `json:"legal_basis,omitempty"`
}

type RelationshipInput struct {
	SourceType       types.EntityType `json:"source_type" validate:"required,entitytype"`
	SourceID         uuid.UUID        `json:"source_id" validate:"required"`
	TargetType       types.EntityType `json:"target_type" validate:"required,entitytype"`
	TargetID         uuid.UUID        `json:"target_id" validate:"required"`
	RelationshipType types.EdgeType   `json:"relationship_type" validate:"required,edgetype"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// DocumentVersionUpdate leaves the stored text untouched when NormalizedText is nil.
type DocumentVersionUpdate struct {
	DocumentID     uuid.UUID `json:"document_id" validate:"required"`
	NormalizedText *string   `json:"normalized_text,omitempty"`
	ContentDelta   *string   `json:"content_delta,omitempty"`
	ChangeSummary  *string   `json:"change_summary,omitempty"`
	Actor          string    `json:"actor,omitempty"`
}

type graphService struct {
	db         *gorm.DB
	log        *logger.Logger
	repos      repos.Set
	propagator Propagator
	effects    *SideEffects
	metrics    *observability.Metrics
	maxRetries int
}

func NewGraphService(
	db *gorm.DB,
	baseLog *logger.Logger,
	set repos.Set,
	propagator Propagator,
	effects *SideEffects,
	metrics *observability.Metrics,
	maxRetries int,
) GraphService {
	return &graphService{
		db:         db,
		log:        baseLog.With("service", "GraphService"),
		repos:      set,
		propagator: propagator,
		effects:    effects,
		metrics:    metrics,
		maxRetries: maxRetries,
	}
}

func (s *graphService) AddLegalDocument(ctx context.Context, in LegalDocumentInput, module types.Module) (DocumentRef, error) {
	if err := validateInput(in); err != nil {
		return DocumentRef{}, err
	}
	if !module.Valid() {
		return DocumentRef{}, domain.NewValidationError(fmt.Sprintf("invalid module %q", module))
	}

	meta, err := marshalMetadata(in.Metadata)
	if err != nil {
		return DocumentRef{}, err
	}

	var doc *types.LegalDocument
	var node *types.GraphNode
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		j, err := s.repos.Jurisdiction.GetByID(dbc, in.JurisdictionID)
		if err != nil {
			return err
		}
		if j == nil {
			return domain.NewValidationError(fmt.Sprintf("jurisdiction %s does not exist", in.JurisdictionID))
		}
		level := in.LegalLevel
		if level == "" {
			level = j.Layer
		}

		doc = &types.LegalDocument{
			Title:             strings.TrimSpace(in.Title),
			DocumentType:      in.DocumentType,
			JurisdictionID:    j.ID,
			Module:            module,
			LegalLevel:        level,
			Authority:         in.Authority,
			RawContent:        in.OriginalText,
			NormalizedContent: in.NormalizedText,
			OriginalLanguage:  in.OriginalLanguage,
			SourceURL:         in.SourceURL,
			Version:           1,
			DateAdopted:       in.DateAdopted,
			DateEffective:     in.DateEffective,
			DateEffectiveTo:   in.DateEffectiveTo,
			Celex:             in.Celex,
			Rada:              in.Rada,
			UNSymbol:          in.UNSymbol,
			CFR:               in.CFR,
			ExternalID:        in.ExternalID,
			Metadata:          meta,
		}
		if err := s.repos.Document.Create(dbc, doc); err != nil {
			return err
		}
		node = &types.GraphNode{
			DocumentID:     doc.ID,
			Label:          truncateRunes(doc.Title, 200),
			NodeType:       doc.DocumentType,
			JurisdictionID: doc.JurisdictionID,
			Module:         module,
			LegalLevel:     level,
		}
		if err := s.repos.GraphNode.Create(dbc, node); err != nil {
			return err
		}
		return s.repos.Audit.Create(dbc, &types.UpdateAudit{
			Module:     module,
			Action:     domain.AuditIngest,
			ResourceID: doc.ID.String(),
			Summary:    "Added legal document: " + doc.Title,
			Metadata:   mustJSON(map[string]any{"document_type": doc.DocumentType}),
		})
	})
	if err != nil {
		s.log.Warn("AddLegalDocument failed", "error", err)
		return DocumentRef{}, err
	}

	s.effects.DocumentAdded(ctx, doc, node)
	return DocumentRef{DocumentID: doc.ID, GraphNodeID: node.ID}, nil
}

func (s *graphService) AddObligation(ctx context.Context, in ObligationInput) (uuid.UUID, error) {
	if err := validateInput(in); err != nil {
		return uuid.Nil, err
	}
	var ob *types.LegalObligation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		doc, err := s.repos.Document.GetByID(dbc, in.DocumentID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.NewValidationError(fmt.Sprintf("document %s does not exist", in.DocumentID))
		}
		jid := doc.JurisdictionID
		if in.JurisdictionID != nil && *in.JurisdictionID != uuid.Nil {
			jid = *in.JurisdictionID
		}
		ob = &types.LegalObligation{
			DocumentID:     doc.ID,
			Description:    strings.TrimSpace(in.Text),
			Scope:          in.Scope,
			JurisdictionID: jid,
			LegalBasis:     in.LegalBasis,
			Version:        1,
		}
		return s.repos.Obligation.Create(dbc, ob)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return ob.ID, nil
}

func (s *graphService) AddRelationship(ctx context.Context, in RelationshipInput, module *types.Module) (uuid.UUID, error) {
	if err := validateInput(in); err != nil {
		return uuid.Nil, err
	}
	if !in.RelationshipType.Allows(in.SourceType, in.TargetType) {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf(
			"relationship %q is not allowed from %s to %s", in.RelationshipType, in.SourceType, in.TargetType))
	}
	if module != nil && !module.Valid() {
		return uuid.Nil, domain.NewValidationError(fmt.Sprintf("invalid module %q", *module))
	}
	meta, err := marshalMetadata(in.Metadata)
	if err != nil {
		return uuid.Nil, err
	}

	var edge *types.GraphEdge
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var problems []string
		for _, end := range []struct {
			role string
			typ  types.EntityType
			id   uuid.UUID
		}{{"source", in.SourceType, in.SourceID}, {"target", in.TargetType, in.TargetID}} {
			ok, err := entityExists(dbc, s.repos, end.typ, end.id)
			if err != nil {
				return err
			}
			if !ok {
				problems = append(problems, fmt.Sprintf("%s %s %s does not exist", end.role, end.typ, end.id))
			}
		}
		if len(problems) > 0 {
			return domain.NewValidationError(problems...)
		}
		edge = &types.GraphEdge{
			FromType: in.SourceType,
			FromID:   in.SourceID,
			ToType:   in.TargetType,
			ToID:     in.TargetID,
			EdgeType: in.RelationshipType,
			Metadata: meta,
			Version:  1,
		}
		if err := s.repos.Edge.Create(dbc, edge); err != nil {
			return err
		}
		if module == nil {
			return nil
		}
		return s.repos.Audit.Create(dbc, &types.UpdateAudit{
			Module:     *module,
			Action:     domain.AuditGraphUpdate,
			ResourceID: edge.ID.String(),
			Summary: fmt.Sprintf("Edge: %s:%s --[%s]--> %s:%s",
				in.SourceType, in.SourceID, in.RelationshipType, in.TargetType, in.TargetID),
		})
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.effects.EdgeAdded(ctx, edge)
	return edge.ID, nil
}

func (s *graphService) UpdateDocumentVersion(ctx context.Context, in DocumentVersionUpdate, module types.Module) (int, error) {
	if err := validateInput(in); err != nil {
		return 0, err
	}
	ctx, span := observability.StartSpan(ctx, "graph.update_document_version",
		attribute.String("document_id", in.DocumentID.String()))

	var oldVersion, newVersion int
	var diffData map[string]any
	err := bumpWithRetry(ctx, s.log, s.metrics, domain.EntityLegalDocument, in.DocumentID, s.maxRetries, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			doc, err := s.repos.Document.GetByID(dbc, in.DocumentID)
			if err != nil {
				return err
			}
			if doc == nil {
				return domain.NotFound("legal document", in.DocumentID)
			}
			oldVersion, newVersion = doc.Version, doc.Version+1
			if module == "" {
				module = doc.Module
			}

			updates := map[string]any{}
			if in.NormalizedText != nil {
				updates["normalized_content"] = *in.NormalizedText
			}
			ok, err := s.repos.Document.BumpVersion(dbc, doc.ID, oldVersion, updates)
			if err != nil {
				return err
			}
			if !ok {
				return errStaleVersion
			}

			if err := s.repos.History.CreateDocumentVersion(dbc, &types.LegalDocumentVersion{
				DocumentID:    doc.ID,
				Version:       newVersion,
				ContentDelta:  deref(in.ContentDelta),
				ChangeSummary: deref(in.ChangeSummary),
			}); err != nil {
				return err
			}

			diffData = documentDiff(doc.NormalizedContent, in, oldVersion, newVersion)
			if err := s.repos.Delta.Create(dbc, &types.GraphDelta{
				EntityType: domain.EntityLegalDocument,
				EntityID:   doc.ID,
				OldVersion: oldVersion,
				NewVersion: newVersion,
				Diff:       mustJSON(diffData),
			}); err != nil {
				return err
			}
			return s.repos.Audit.Create(dbc, &types.UpdateAudit{
				Module:     module,
				Action:     domain.AuditGraphUpdate,
				ResourceID: doc.ID.String(),
				Summary:    fmt.Sprintf("Document version %d -> %d", oldVersion, newVersion),
				Actor:      in.Actor,
			})
		})
	})
	observability.EndSpan(span, err)
	if err != nil {
		return 0, err
	}

	s.log.Info("document version bumped", "document_id", in.DocumentID, "old_version", oldVersion, "new_version", newVersion)
	s.effects.VersionChanged(ctx, realtime.EventDocumentVersionChanged, domain.EntityLegalDocument, in.DocumentID, oldVersion, newVersion, module, diffData)

	// Propagation runs exactly once per committed bump, outside the retry loop,
	// and is not tied to the caller's cancellation.
	if s.propagator != nil {
		s.propagator.Propagate(context.WithoutCancel(ctx), in.DocumentID, newVersion)
	}
	return newVersion, nil
}

// documentDiff prefers the caller's delta and otherwise diffs the stored
// normalized text against the replacement sentence by sentence.
func documentDiff(oldText string, in DocumentVersionUpdate, oldVersion, newVersion int) map[string]any {
	out := map[string]any{"old_version": oldVersion, "new_version": newVersion}
	if in.ContentDelta != nil {
		out["content_delta"] = *in.ContentDelta
	}
	if in.ChangeSummary != nil {
		out["change_summary"] = *in.ChangeSummary
	}
	if in.NormalizedText != nil {
		d := pipeline.DiffVersions(oldText, *in.NormalizedText, oldVersion, newVersion)
		ev := pipeline.NewUpdateEvent("", d)
		out["changed_section_indices"] = ev.ChangedSectionIndices
		out["summary"] = d.Summary
	}
	return out
}

// entityExists checks a polymorphic edge endpoint against its table.
func entityExists(dbc dbctx.Context, set repos.Set, typ types.EntityType, id uuid.UUID) (bool, error) {
	switch typ {
	case domain.EntityLegalDocument:
		row, err := set.Document.GetByID(dbc, id)
		return row != nil, err
	case domain.EntityGraphNode:
		row, err := set.GraphNode.GetByID(dbc, id)
		return row != nil, err
	case domain.EntityObligation:
		row, err := set.Obligation.GetByID(dbc, id)
		return row != nil, err
	case domain.EntityTemplate:
		row, err := set.Template.GetByID(dbc, id)
		return row != nil, err
	case domain.EntityTemplateSection:
		row, err := set.Section.GetByID(dbc, id)
		return row != nil, err
	case domain.EntityOverlay:
		row, err := set.Overlay.GetByID(dbc, id)
		return row != nil, err
	}
	return false, domain.NewValidationError(fmt.Sprintf("invalid entity type %q", typ))
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, domain.NewValidationError("metadata is not valid JSON: " + err.Error())
	}
	return raw, nil
}

func mustJSON(v any) []byte {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
