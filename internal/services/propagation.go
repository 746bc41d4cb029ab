package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

// propagationTimeout bounds a detached fan-out.
const propagationTimeout = 2 * time.Minute

// SkipDocumentNotFound is the SkipReason when the document does not exist.
const SkipDocumentNotFound = "document not found"

const (
	PropagationDocument      = "document"
	PropagationLocalAct      = "local_act"
	PropagationSupranational = "supranational"
)

// Propagator fans a document change out to dependent templates. It is not
// idempotent: every call appends overlay annotations and bumps versions, so
// callers trigger it once per committed document version.
type Propagator interface {
	Propagate(ctx context.Context, documentID uuid.UUID, newVersion int) PropagationReport
	PropagateLocalAct(ctx context.Context, documentID uuid.UUID) PropagationReport
	PropagateSupranational(ctx context.Context, documentID uuid.UUID) PropagationReport
}

type PropagationFailure struct {
	TemplateID uuid.UUID `json:"template_id"`
	Error      string    `json:"error"`
}

type PropagationReport struct {
	Kind            string               `json:"kind"`
	DocumentID      uuid.UUID            `json:"document_id"`
	DocumentVersion int                  `json:"document_version"`
	Skipped         bool                 `json:"skipped"`
	SkipReason      string               `json:"skip_reason,omitempty"`
	TemplateIDs     []uuid.UUID          `json:"template_ids"`
	Touched         []uuid.UUID          `json:"touched_template_ids"`
	OverlaysUpdated int                  `json:"overlays_updated"`
	Failures        []PropagationFailure `json:"failures,omitempty"`
}

type propagator struct {
	db         *gorm.DB
	log        *logger.Logger
	repos      repos.Set
	effects    *SideEffects
	metrics    *observability.Metrics
	maxRetries int
}

func NewPropagator(db *gorm.DB, baseLog *logger.Logger, set repos.Set, effects *SideEffects, metrics *observability.Metrics, maxRetries int) Propagator {
	return &propagator{
		db:         db,
		log:        baseLog.With("service", "Propagator"),
		repos:      set,
		effects:    effects,
		metrics:    metrics,
		maxRetries: maxRetries,
	}
}

var errTemplateGone = errors.New("template no longer exists")

// detachPropagation keeps trace values but drops the caller's cancellation.
// Propagation starts after the document version has committed, so a client
// disconnect must not leave dependents un-bumped and the fan-out unaudited.
func detachPropagation(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), propagationTimeout)
}

func (p *propagator) Propagate(ctx context.Context, documentID uuid.UUID, newVersion int) PropagationReport {
	ctx, cancel := detachPropagation(ctx)
	defer cancel()
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "propagation.document",
		attribute.String("document_id", documentID.String()),
		attribute.Int("document_version", newVersion))
	report := PropagationReport{Kind: PropagationDocument, DocumentID: documentID, DocumentVersion: newVersion, TemplateIDs: []uuid.UUID{}, Touched: []uuid.UUID{}}
	defer func() {
		p.metrics.ObservePropagation(report.Kind, len(report.Touched), len(report.Failures), time.Since(start))
		observability.EndSpan(span, nil)
	}()

	dbc := dbctx.Context{Ctx: ctx}
	doc, err := p.repos.Document.GetByID(dbc, documentID)
	if err != nil {
		return p.skip(report, "load document: "+err.Error())
	}
	if doc == nil {
		return p.skip(report, SkipDocumentNotFound)
	}
	node, err := p.repos.GraphNode.GetByDocumentID(dbc, documentID)
	if err != nil {
		return p.skip(report, "load graph node: "+err.Error())
	}
	if node == nil {
		return p.skip(report, "graph node not found")
	}

	templateIDs, err := p.dependentTemplates(dbc, doc, node)
	if err != nil {
		return p.skip(report, "collect dependents: "+err.Error())
	}
	report.TemplateIDs = templateIDs

	p.fanOut(ctx, &report, doc, templateIDs)
	p.audit(ctx, doc, &report, fmt.Sprintf("Propagated document v%d to %d template(s)", newVersion, len(report.Touched)))
	return report
}

func (p *propagator) PropagateLocalAct(ctx context.Context, documentID uuid.UUID) PropagationReport {
	ctx, cancel := detachPropagation(ctx)
	defer cancel()
	start := time.Now()
	report := PropagationReport{Kind: PropagationLocalAct, DocumentID: documentID, TemplateIDs: []uuid.UUID{}, Touched: []uuid.UUID{}}
	defer func() {
		p.metrics.ObservePropagation(report.Kind, len(report.Touched), len(report.Failures), time.Since(start))
	}()

	dbc := dbctx.Context{Ctx: ctx}
	doc, err := p.repos.Document.GetByID(dbc, documentID)
	if err != nil {
		return p.skip(report, "load document: "+err.Error())
	}
	if doc == nil {
		return p.skip(report, SkipDocumentNotFound)
	}
	report.DocumentVersion = doc.Version
	j, err := p.repos.Jurisdiction.GetByID(dbc, doc.JurisdictionID)
	if err != nil {
		return p.skip(report, "load jurisdiction: "+err.Error())
	}
	if j == nil || !isLocalJurisdiction(j) {
		return p.skip(report, "not a local act")
	}

	templates, err := p.repos.Template.ListWithOverlaysInJurisdiction(dbc, j.ID)
	if err != nil {
		return p.skip(report, "list templates: "+err.Error())
	}
	for _, t := range templates {
		report.TemplateIDs = append(report.TemplateIDs, t.ID)
	}
	p.fanOut(ctx, &report, doc, report.TemplateIDs)
	p.audit(ctx, doc, &report, "Local act: updated overlays for jurisdiction "+j.Code)
	return report
}

// PropagateSupranational re-runs document propagation for EU and
// international acts at their current version.
func (p *propagator) PropagateSupranational(ctx context.Context, documentID uuid.UUID) PropagationReport {
	ctx, cancel := detachPropagation(ctx)
	defer cancel()
	doc, err := p.repos.Document.GetByID(dbctx.Context{Ctx: ctx}, documentID)
	report := PropagationReport{Kind: PropagationSupranational, DocumentID: documentID, TemplateIDs: []uuid.UUID{}, Touched: []uuid.UUID{}}
	if err != nil {
		return p.skip(report, "load document: "+err.Error())
	}
	if doc == nil {
		return p.skip(report, SkipDocumentNotFound)
	}
	if doc.Module != domain.ModuleEU && doc.Module != domain.ModuleInternational {
		report.DocumentVersion = doc.Version
		return p.skip(report, "module "+string(doc.Module)+" is not supranational")
	}
	out := p.Propagate(ctx, documentID, doc.Version)
	out.Kind = PropagationSupranational
	return out
}

// dependentTemplates unions link records, updates edges and the
// obligation -> section -> template path, preserving discovery order.
func (p *propagator) dependentTemplates(dbc dbctx.Context, doc *types.LegalDocument, node *types.GraphNode) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	out := []uuid.UUID{}
	add := func(id uuid.UUID) {
		if id == uuid.Nil || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}

	links, err := p.repos.Link.ListByGraphNodeIDs(dbc, []uuid.UUID{node.ID})
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		add(l.TemplateID)
	}

	updates := []types.EdgeType{domain.EdgeUpdates}
	fromDoc, err := p.repos.Edge.ListFrom(dbc, domain.EntityLegalDocument, []uuid.UUID{doc.ID}, updates)
	if err != nil {
		return nil, err
	}
	fromNode, err := p.repos.Edge.ListFrom(dbc, domain.EntityGraphNode, []uuid.UUID{node.ID}, updates)
	if err != nil {
		return nil, err
	}
	for _, e := range append(fromDoc, fromNode...) {
		if e.ToType == domain.EntityTemplate {
			add(e.ToID)
		}
	}

	obligations, err := p.repos.Obligation.GetByDocumentID(dbc, doc.ID)
	if err != nil {
		return nil, err
	}
	if len(obligations) == 0 {
		return out, nil
	}
	obIDs := make([]uuid.UUID, 0, len(obligations))
	for _, o := range obligations {
		obIDs = append(obIDs, o.ID)
	}
	requires, err := p.repos.Edge.ListFrom(dbc, domain.EntityObligation, obIDs, []types.EdgeType{domain.EdgeRequires})
	if err != nil {
		return nil, err
	}
	sectionIDs := make([]uuid.UUID, 0, len(requires))
	for _, e := range requires {
		if e.ToType == domain.EntityTemplateSection {
			sectionIDs = append(sectionIDs, e.ToID)
		}
	}
	sections, err := p.repos.Section.GetByIDs(dbc, sectionIDs)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		add(s.TemplateID)
	}
	return out, nil
}

// fanOut updates each template in its own transaction. A failure on one
// template is recorded and the rest continue.
func (p *propagator) fanOut(ctx context.Context, report *PropagationReport, doc *types.LegalDocument, templateIDs []uuid.UUID) {
	for _, tid := range templateIDs {
		res, err := p.updateTemplate(ctx, tid, doc, report.DocumentVersion)
		if errors.Is(err, errTemplateGone) {
			continue
		}
		if err != nil {
			p.log.Warn("template propagation failed", "template_id", tid, "document_id", doc.ID, "error", err)
			report.Failures = append(report.Failures, PropagationFailure{TemplateID: tid, Error: err.Error()})
			continue
		}
		report.Touched = append(report.Touched, tid)
		report.OverlaysUpdated += len(res.overlays)

		for _, ov := range res.overlays {
			p.effects.VersionChanged(ctx, realtime.EventOverlayVersionChanged, domain.EntityOverlay, ov.id, ov.newVersion-1, ov.newVersion, doc.Module,
				map[string]any{"document_id": doc.ID.String(), "template_id": tid.String()})
		}
		p.effects.VersionChanged(ctx, realtime.EventTemplateVersionChanged, domain.EntityTemplate, tid, res.newVersion-1, res.newVersion, doc.Module,
			map[string]any{"document_id": doc.ID.String(), "document_version": report.DocumentVersion})
	}
}

type overlayBump struct {
	id         uuid.UUID
	newVersion int
}

type templateBump struct {
	newVersion int
	overlays   []overlayBump
}

// updateTemplate annotates the template's overlays in the document's
// jurisdiction and bumps the template, all in one transaction.
func (p *propagator) updateTemplate(ctx context.Context, templateID uuid.UUID, doc *types.LegalDocument, docVersion int) (templateBump, error) {
	var out templateBump
	changeReason := "Linked law updated: document " + doc.ID.String()
	err := bumpWithRetry(ctx, p.log, p.metrics, domain.EntityTemplate, templateID, p.maxRetries, func(ctx context.Context) error {
		out = templateBump{}
		return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			tmpl, err := p.repos.Template.GetByID(dbc, templateID)
			if err != nil {
				return err
			}
			if tmpl == nil {
				return errTemplateGone
			}
			sections, err := p.repos.Section.ListByTemplateIDs(dbc, []uuid.UUID{templateID})
			if err != nil {
				return err
			}
			sectionIDs := make([]uuid.UUID, 0, len(sections))
			for _, s := range sections {
				sectionIDs = append(sectionIDs, s.ID)
			}
			overlays, err := p.repos.Overlay.ListBySectionIDs(dbc, sectionIDs, []uuid.UUID{doc.JurisdictionID})
			if err != nil {
				return err
			}

			annotation := fmt.Sprintf("\n\n[Updated by legal document %s v%d]", doc.ID, docVersion)
			overlayIDs := make([]string, 0, len(overlays))
			for _, ov := range overlays {
				text := ov.OverlayText + annotation
				if err := p.bumpOverlay(dbc, ov, text, changeReason); err != nil {
					return err
				}
				out.overlays = append(out.overlays, overlayBump{id: ov.ID, newVersion: ov.Version + 1})
				overlayIDs = append(overlayIDs, ov.ID.String())
			}

			ok, err := p.repos.Template.BumpVersion(dbc, tmpl.ID, tmpl.Version, nil)
			if err != nil {
				return err
			}
			if !ok {
				return errStaleVersion
			}
			out.newVersion = tmpl.Version + 1
			delta := mustJSON(map[string]any{
				"document_id":      doc.ID.String(),
				"document_version": docVersion,
				"overlay_ids":      overlayIDs,
			})
			if err := p.repos.History.CreateTemplateVersion(dbc, &types.LegalTemplateVersion{
				TemplateID:   tmpl.ID,
				Version:      out.newVersion,
				ChangeReason: changeReason,
				ChangeLog:    fmt.Sprintf("Legal document %s (%s) triggered overlay/template update.", doc.ID, doc.Module),
				Delta:        delta,
			}); err != nil {
				return err
			}
			return p.repos.Delta.Create(dbc, &types.GraphDelta{
				EntityType: domain.EntityTemplate,
				EntityID:   tmpl.ID,
				OldVersion: tmpl.Version,
				NewVersion: out.newVersion,
				Diff:       delta,
			})
		})
	})
	return out, err
}

func (p *propagator) bumpOverlay(dbc dbctx.Context, ov *types.TemplateOverlay, text, reason string) error {
	ok, err := p.repos.Overlay.BumpVersion(dbc, ov.ID, ov.Version, map[string]any{"overlay_text": text})
	if err != nil {
		return err
	}
	if !ok {
		return errStaleVersion
	}
	if err := p.repos.History.CreateOverlayVersion(dbc, &types.TemplateOverlayVersion{
		OverlayID:    ov.ID,
		Version:      ov.Version + 1,
		OverlayText:  text,
		ChangeReason: reason,
	}); err != nil {
		return err
	}
	return p.repos.Delta.Create(dbc, &types.GraphDelta{
		EntityType: domain.EntityOverlay,
		EntityID:   ov.ID,
		OldVersion: ov.Version,
		NewVersion: ov.Version + 1,
		Diff:       mustJSON(map[string]any{"appended": text[len(ov.OverlayText):]}),
	})
}

// audit writes the single template_update entry for a fan-out. A failure
// here is logged; the template updates already committed.
func (p *propagator) audit(ctx context.Context, doc *types.LegalDocument, report *PropagationReport, summary string) {
	touched := make([]string, 0, len(report.Touched))
	for _, id := range report.Touched {
		touched = append(touched, id.String())
	}
	meta := map[string]any{
		"kind":             report.Kind,
		"new_version":      report.DocumentVersion,
		"template_ids":     touched,
		"overlays_updated": report.OverlaysUpdated,
	}
	if len(report.Failures) > 0 {
		meta["failures"] = report.Failures
	}
	err := p.repos.Audit.Create(dbctx.Context{Ctx: ctx}, &types.UpdateAudit{
		Module:     doc.Module,
		Action:     domain.AuditTemplateUpdate,
		ResourceID: doc.ID.String(),
		Summary:    summary,
		Metadata:   mustJSON(meta),
	})
	if err != nil {
		p.log.Error("propagation audit failed", "document_id", doc.ID, "error", err)
	}
}

func (p *propagator) skip(report PropagationReport, reason string) PropagationReport {
	report.Skipped = true
	report.SkipReason = reason
	p.log.Debug("propagation skipped", "document_id", report.DocumentID, "kind", report.Kind, "reason", reason)
	return report
}

func isLocalJurisdiction(j *types.Jurisdiction) bool {
	return j.Layer == domain.LayerSubnational || j.Code == "UA_OBLAST" || j.Code == "UA_CITY"
}
