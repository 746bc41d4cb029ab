package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos"
	types "github.com/yungbote/lexgraph-backend/internal/domain"
	domain "github.com/yungbote/lexgraph-backend/internal/domain/legal"
	"github.com/yungbote/lexgraph-backend/internal/observability"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
	"github.com/yungbote/lexgraph-backend/internal/realtime"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, in TemplateInput) (uuid.UUID, error)
	AddTemplateSection(ctx context.Context, templateID uuid.UUID, in SectionInput) (uuid.UUID, error)
	UpsertOverlay(ctx context.Context, in OverlayInput) (OverlayRef, error)
	LinkTemplate(ctx context.Context, in TemplateLinkInput) error

	UpdateOverlay(ctx context.Context, overlayID uuid.UUID, newText string) (int, error)
	CreateTemplateVersion(ctx context.Context, templateID uuid.UUID, params TemplateVersionParams) (int, error)

	GetTemplate(ctx context.Context, templateID uuid.UUID) (*TemplateDetail, error)
	GetTemplateSections(ctx context.Context, templateID uuid.UUID) ([]SectionWithOverlays, error)
	GetOverlays(ctx context.Context, sectionID uuid.UUID) ([]*types.TemplateOverlay, error)
	GetTemplateVersions(ctx context.Context, templateID uuid.UUID) ([]*types.LegalTemplateVersion, error)
}

type TemplateInput struct {
	Name           string     `json:"name" validate:"required,max=500"`
	Description    string     `json:"description,omitempty"`
	JurisdictionID *uuid.UUID `json:"jurisdiction_id,omitempty"`
	ScenarioTags   []string   `json:"scenario_tags,omitempty"`
	IsActive       *bool      `json:"is_active,omitempty"`
}

type SectionInput struct {
	Order   *int   `json:"order,omitempty" validate:"omitempty,min=1"`
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body"`
}

type OverlayInput struct {
	SectionID      uuid.UUID `json:"section_id" validate:"required"`
	JurisdictionID uuid.UUID `json:"jurisdiction_id" validate:"required"`
	OverlayText    string    `json:"overlay_text"`
}

type OverlayRef struct {
	OverlayID uuid.UUID `json:"overlay_id"`
	Version   int       `json:"version"`
	Created   bool      `json:"created"`
}

type TemplateLinkInput struct {
	TemplateID  uuid.UUID `json:"template_id" validate:"required"`
	GraphNodeID uuid.UUID `json:"graph_node_id" validate:"required"`
	LinkType    string    `json:"link_type,omitempty"`
}

type TemplateVersionParams struct {
	ChangeReason string `json:"change_reason,omitempty"`
	ChangeLog    string `json:"change_log,omitempty"`
	Delta        string `json:"delta,omitempty"`
}

type TemplateDetail struct {
	*types.LegalTemplate
	Jurisdiction *types.Jurisdiction `json:"jurisdiction,omitempty"`
	SectionCount int                 `json:"section_count"`
	LinkCount    int                 `json:"link_count"`
}

type SectionWithOverlays struct {
	*types.LegalTemplateSection
	Overlays []*types.TemplateOverlay `json:"overlays"`
}

type templateService struct {
	db         *gorm.DB
	log        *logger.Logger
	repos      repos.Set
	effects    *SideEffects
	metrics    *observability.Metrics
	maxRetries int
}

func NewTemplateService(
	db *gorm.DB,
	baseLog *logger.Logger,
	set repos.Set,
	effects *SideEffects,
	metrics *observability.Metrics,
	maxRetries int,
) TemplateService {
	return &templateService{
		db:         db,
		log:        baseLog.With("service", "TemplateService"),
		repos:      set,
		effects:    effects,
		metrics:    metrics,
		maxRetries: maxRetries,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, in TemplateInput) (uuid.UUID, error) {
	if err := validateInput(in); err != nil {
		return uuid.Nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	row := &types.LegalTemplate{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Version:      1,
		IsActive:     active,
		ScenarioTags: in.ScenarioTags,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if in.JurisdictionID != nil && *in.JurisdictionID != uuid.Nil {
			j, err := s.repos.Jurisdiction.GetByID(dbc, *in.JurisdictionID)
			if err != nil {
				return err
			}
			if j == nil {
				return domain.NewValidationError(fmt.Sprintf("jurisdiction %s does not exist", *in.JurisdictionID))
			}
			row.JurisdictionID = &j.ID
		}
		return s.repos.Template.Create(dbc, row)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func (s *templateService) AddTemplateSection(ctx context.Context, templateID uuid.UUID, in SectionInput) (uuid.UUID, error) {
	if err := validateInput(in); err != nil {
		return uuid.Nil, err
	}
	var row *types.LegalTemplateSection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		t, err := s.repos.Template.GetByID(dbc, templateID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NotFound("template", templateID)
		}
		order := 0
		if in.Order != nil {
			order = *in.Order
		} else {
			max, err := s.repos.Section.MaxOrder(dbc, templateID)
			if err != nil {
				return err
			}
			order = max + 1
		}
		row = &types.LegalTemplateSection{
			TemplateID: templateID,
			Order:      order,
			Heading:    in.Heading,
			Body:       in.Body,
		}
		return s.repos.Section.Create(dbc, row)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

// UpsertOverlay creates the overlay for (section, jurisdiction) at version 1,
// or routes a text change on an existing one through UpdateOverlay.
func (s *templateService) UpsertOverlay(ctx context.Context, in OverlayInput) (OverlayRef, error) {
	if err := validateInput(in); err != nil {
		return OverlayRef{}, err
	}
	var ref OverlayRef
	var existing *types.TemplateOverlay
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var problems []string
		section, err := s.repos.Section.GetByID(dbc, in.SectionID)
		if err != nil {
			return err
		}
		if section == nil {
			problems = append(problems, fmt.Sprintf("section %s does not exist", in.SectionID))
		}
		j, err := s.repos.Jurisdiction.GetByID(dbc, in.JurisdictionID)
		if err != nil {
			return err
		}
		if j == nil {
			problems = append(problems, fmt.Sprintf("jurisdiction %s does not exist", in.JurisdictionID))
		}
		if len(problems) > 0 {
			return domain.NewValidationError(problems...)
		}

		existing, err = s.repos.Overlay.GetBySectionAndJurisdiction(dbc, in.SectionID, in.JurisdictionID)
		if err != nil || existing != nil {
			return err
		}
		row := &types.TemplateOverlay{
			SectionID:      in.SectionID,
			JurisdictionID: in.JurisdictionID,
			OverlayText:    in.OverlayText,
			Version:        1,
		}
		if err := s.repos.Overlay.Create(dbc, row); err != nil {
			return err
		}
		ref = OverlayRef{OverlayID: row.ID, Version: row.Version, Created: true}
		return nil
	})
	if err != nil {
		return OverlayRef{}, err
	}
	if existing == nil {
		return ref, nil
	}
	if existing.OverlayText == in.OverlayText {
		return OverlayRef{OverlayID: existing.ID, Version: existing.Version}, nil
	}
	v, err := s.UpdateOverlay(ctx, existing.ID, in.OverlayText)
	if err != nil {
		return OverlayRef{}, err
	}
	return OverlayRef{OverlayID: existing.ID, Version: v}, nil
}

func (s *templateService) LinkTemplate(ctx context.Context, in TemplateLinkInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var problems []string
		t, err := s.repos.Template.GetByID(dbc, in.TemplateID)
		if err != nil {
			return err
		}
		if t == nil {
			problems = append(problems, fmt.Sprintf("template %s does not exist", in.TemplateID))
		}
		n, err := s.repos.GraphNode.GetByID(dbc, in.GraphNodeID)
		if err != nil {
			return err
		}
		if n == nil {
			problems = append(problems, fmt.Sprintf("graph node %s does not exist", in.GraphNodeID))
		}
		if len(problems) > 0 {
			return domain.NewValidationError(problems...)
		}
		return s.repos.Link.Upsert(dbc, &types.LegalTemplateLink{
			TemplateID:  in.TemplateID,
			GraphNodeID: in.GraphNodeID,
			LinkType:    in.LinkType,
		})
	})
}

func (s *templateService) UpdateOverlay(ctx context.Context, overlayID uuid.UUID, newText string) (int, error) {
	var oldVersion, newVersion int
	err := bumpWithRetry(ctx, s.log, s.metrics, domain.EntityOverlay, overlayID, s.maxRetries, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			ov, err := s.repos.Overlay.GetByID(dbc, overlayID)
			if err != nil {
				return err
			}
			if ov == nil {
				return domain.NotFound("overlay", overlayID)
			}
			oldVersion, newVersion = ov.Version, ov.Version+1
			ok, err := s.repos.Overlay.BumpVersion(dbc, ov.ID, oldVersion, map[string]any{"overlay_text": newText})
			if err != nil {
				return err
			}
			if !ok {
				return errStaleVersion
			}
			if err := s.repos.History.CreateOverlayVersion(dbc, &types.TemplateOverlayVersion{
				OverlayID:   ov.ID,
				Version:     newVersion,
				OverlayText: newText,
			}); err != nil {
				return err
			}
			return s.repos.Delta.Create(dbc, &types.GraphDelta{
				EntityType: domain.EntityOverlay,
				EntityID:   ov.ID,
				OldVersion: oldVersion,
				NewVersion: newVersion,
				Diff:       mustJSON(map[string]any{"old_text": ov.OverlayText, "new_text": newText}),
			})
		})
	})
	if err != nil {
		return 0, err
	}
	s.effects.VersionChanged(ctx, realtime.EventOverlayVersionChanged, domain.EntityOverlay, overlayID, oldVersion, newVersion, "", nil)
	return newVersion, nil
}

func (s *templateService) CreateTemplateVersion(ctx context.Context, templateID uuid.UUID, params TemplateVersionParams) (int, error) {
	var oldVersion, newVersion int
	delta := deltaJSON(params.Delta)
	err := bumpWithRetry(ctx, s.log, s.metrics, domain.EntityTemplate, templateID, s.maxRetries, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			t, err := s.repos.Template.GetByID(dbc, templateID)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.NotFound("template", templateID)
			}
			oldVersion, newVersion = t.Version, t.Version+1
			ok, err := s.repos.Template.BumpVersion(dbc, t.ID, oldVersion, nil)
			if err != nil {
				return err
			}
			if !ok {
				return errStaleVersion
			}
			if err := s.repos.History.CreateTemplateVersion(dbc, &types.LegalTemplateVersion{
				TemplateID:   t.ID,
				Version:      newVersion,
				ChangeReason: params.ChangeReason,
				ChangeLog:    params.ChangeLog,
				Delta:        delta,
			}); err != nil {
				return err
			}
			return s.repos.Delta.Create(dbc, &types.GraphDelta{
				EntityType: domain.EntityTemplate,
				EntityID:   t.ID,
				OldVersion: oldVersion,
				NewVersion: newVersion,
				Diff:       delta,
			})
		})
	})
	if err != nil {
		return 0, err
	}
	s.effects.VersionChanged(ctx, realtime.EventTemplateVersionChanged, domain.EntityTemplate, templateID, oldVersion, newVersion, "",
		map[string]any{"change_reason": params.ChangeReason})
	return newVersion, nil
}

func (s *templateService) GetTemplate(ctx context.Context, templateID uuid.UUID) (*TemplateDetail, error) {
	dbc := dbctx.Context{Ctx: ctx}
	t, err := s.repos.Template.GetByID(dbc, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("template", templateID)
	}
	out := &TemplateDetail{LegalTemplate: t}
	if t.JurisdictionID != nil {
		if out.Jurisdiction, err = s.repos.Jurisdiction.GetByID(dbc, *t.JurisdictionID); err != nil {
			return nil, err
		}
	}
	sections, err := s.repos.Section.ListByTemplateIDs(dbc, []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	links, err := s.repos.Link.ListByTemplateIDs(dbc, []uuid.UUID{t.ID})
	if err != nil {
		return nil, err
	}
	out.SectionCount, out.LinkCount = len(sections), len(links)
	return out, nil
}

func (s *templateService) GetTemplateSections(ctx context.Context, templateID uuid.UUID) ([]SectionWithOverlays, error) {
	dbc := dbctx.Context{Ctx: ctx}
	sections, err := s.repos.Section.ListByTemplateIDs(dbc, []uuid.UUID{templateID})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(sections))
	for _, sec := range sections {
		ids = append(ids, sec.ID)
	}
	overlays, err := s.repos.Overlay.ListBySectionIDs(dbc, ids, nil)
	if err != nil {
		return nil, err
	}
	bySection := map[uuid.UUID][]*types.TemplateOverlay{}
	for _, ov := range overlays {
		bySection[ov.SectionID] = append(bySection[ov.SectionID], ov)
	}
	out := make([]SectionWithOverlays, 0, len(sections))
	for _, sec := range sections {
		ovs := bySection[sec.ID]
		if ovs == nil {
			ovs = []*types.TemplateOverlay{}
		}
		out = append(out, SectionWithOverlays{LegalTemplateSection: sec, Overlays: ovs})
	}
	return out, nil
}

func (s *templateService) GetOverlays(ctx context.Context, sectionID uuid.UUID) ([]*types.TemplateOverlay, error) {
	return s.repos.Overlay.ListBySectionIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{sectionID}, nil)
}

func (s *templateService) GetTemplateVersions(ctx context.Context, templateID uuid.UUID) ([]*types.LegalTemplateVersion, error) {
	return s.repos.History.ListTemplateVersions(dbctx.Context{Ctx: ctx}, templateID)
}

// deltaJSON keeps caller JSON as-is and wraps anything else as a JSON string.
func deltaJSON(delta string) []byte {
	delta = strings.TrimSpace(delta)
	if delta == "" {
		return nil
	}
	if json.Valid([]byte(delta)) {
		return []byte(delta)
	}
	return mustJSON(delta)
}
