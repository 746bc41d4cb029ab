package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type TemplateSectionRepo interface {
	Create(dbc dbctx.Context, row *types.LegalTemplateSection) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalTemplateSection, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalTemplateSection, error)
	ListByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.LegalTemplateSection, error)
	MaxOrder(dbc dbctx.Context, templateID uuid.UUID) (int, error)
}

type templateSectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateSectionRepo(db *gorm.DB, baseLog *logger.Logger) TemplateSectionRepo {
	return &templateSectionRepo{db: db, log: baseLog.With("repo", "TemplateSectionRepo")}
}

func (r *templateSectionRepo) Create(dbc dbctx.Context, row *types.LegalTemplateSection) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt, row.UpdatedAt = now, now
	return MapError("legal_template_section.create", dbc.DB(r.db).Omit("Template").Create(row).Error)
}

func (r *templateSectionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalTemplateSection, error) {
	var out []*types.LegalTemplateSection
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("legal_template_section.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *templateSectionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalTemplateSection, error) {
	var out []*types.LegalTemplateSection
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("template_id ASC, sort_order ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template_section.get_by_ids", err)
	}
	return out, nil
}

// ListByTemplateIDs returns sections in rendering order per template.
func (r *templateSectionRepo) ListByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.LegalTemplateSection, error) {
	var out []*types.LegalTemplateSection
	if len(templateIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("template_id IN ?", templateIDs).Order("template_id ASC, sort_order ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template_section.list_by_template_ids", err)
	}
	return out, nil
}

// MaxOrder returns the highest section order for the template, or 0.
func (r *templateSectionRepo) MaxOrder(dbc dbctx.Context, templateID uuid.UUID) (int, error) {
	var max int
	row := dbc.DB(r.db).Model(&types.LegalTemplateSection{}).
		Where("template_id = ?", templateID).
		Select("COALESCE(MAX(sort_order), 0)").
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, MapError("legal_template_section.max_order", err)
	}
	return max, nil
}
