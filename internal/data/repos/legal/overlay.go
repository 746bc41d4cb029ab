package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type TemplateOverlayRepo interface {
	Create(dbc dbctx.Context, row *types.TemplateOverlay) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TemplateOverlay, error)
	GetBySectionAndJurisdiction(dbc dbctx.Context, sectionID, jurisdictionID uuid.UUID) (*types.TemplateOverlay, error)
	ListBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID, jurisdictionIDs []uuid.UUID) ([]*types.TemplateOverlay, error)
	ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.TemplateOverlay, error)

	BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error)
}

type templateOverlayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateOverlayRepo(db *gorm.DB, baseLog *logger.Logger) TemplateOverlayRepo {
	return &templateOverlayRepo{db: db, log: baseLog.With("repo", "TemplateOverlayRepo")}
}

func (r *templateOverlayRepo) Create(dbc dbctx.Context, row *types.TemplateOverlay) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Version == 0 {
		row.Version = 1
	}
	row.CreatedAt, row.UpdatedAt = now, now
	return MapError("template_overlay.create", dbc.DB(r.db).Omit("Section", "Jurisdiction").Create(row).Error)
}

func (r *templateOverlayRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TemplateOverlay, error) {
	var out []*types.TemplateOverlay
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("template_overlay.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *templateOverlayRepo) GetBySectionAndJurisdiction(dbc dbctx.Context, sectionID, jurisdictionID uuid.UUID) (*types.TemplateOverlay, error) {
	var out []*types.TemplateOverlay
	if err := dbc.DB(r.db).
		Where("section_id = ? AND jurisdiction_id = ?", sectionID, jurisdictionID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, MapError("template_overlay.get_by_section_and_jurisdiction", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *templateOverlayRepo) ListBySectionIDs(dbc dbctx.Context, sectionIDs []uuid.UUID, jurisdictionIDs []uuid.UUID) ([]*types.TemplateOverlay, error) {
	var out []*types.TemplateOverlay
	if len(sectionIDs) == 0 {
		return out, nil
	}
	q := scopeJurisdictions(dbc.DB(r.db).Where("section_id IN ?", sectionIDs), "jurisdiction_id", jurisdictionIDs)
	if err := q.Order("section_id ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("template_overlay.list_by_section_ids", err)
	}
	return out, nil
}

func (r *templateOverlayRepo) ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.TemplateOverlay, error) {
	var out []*types.TemplateOverlay
	q := scopeJurisdictions(dbc.DB(r.db), "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("updated_at DESC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("template_overlay.list_by_jurisdictions", err)
	}
	return out, nil
}

func (r *templateOverlayRepo) BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()
	ok, err := bumpVersion(dbc, r.db, types.TemplateOverlay{}.TableName(), id, expected, updates)
	return ok, MapError("template_overlay.bump_version", err)
}
