package legal

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type LegalTemplateRepo interface {
	// Create inserts the template and its scenario tags.
	Create(dbc dbctx.Context, row *types.LegalTemplate) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalTemplate, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalTemplate, error)
	// ListActiveByTag returns active templates tagged with tag; an empty
	// jurisdiction filter does not restrict.
	ListActiveByTag(dbc dbctx.Context, tag string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error)
	ListActive(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error)
	Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error)
	// ListWithOverlaysInJurisdiction returns active templates that have at
	// least one section overlay scoped to jurisdictionID.
	ListWithOverlaysInJurisdiction(dbc dbctx.Context, jurisdictionID uuid.UUID) ([]*types.LegalTemplate, error)

	BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error)
}

type legalTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegalTemplateRepo(db *gorm.DB, baseLog *logger.Logger) LegalTemplateRepo {
	return &legalTemplateRepo{db: db, log: baseLog.With("repo", "LegalTemplateRepo")}
}

func (r *legalTemplateRepo) Create(dbc dbctx.Context, row *types.LegalTemplate) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Version == 0 {
		row.Version = 1
	}
	row.CreatedAt, row.UpdatedAt = now, now
	row.ScenarioTags = NormalizeTags(row.ScenarioTags)

	t := dbc.DB(r.db)
	if err := t.Create(row).Error; err != nil {
		return MapError("legal_template.create", err)
	}
	if len(row.ScenarioTags) == 0 {
		return nil
	}
	tags := make([]*types.LegalTemplateTag, 0, len(row.ScenarioTags))
	for _, tag := range row.ScenarioTags {
		tags = append(tags, &types.LegalTemplateTag{ID: uuid.New(), TemplateID: row.ID, Tag: tag})
	}
	err := t.Omit("Template").
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "template_id"}, {Name: "tag"}}, DoNothing: true}).
		Create(&tags).Error
	return MapError("legal_template.create_tags", err)
}

func (r *legalTemplateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalTemplate, error) {
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *legalTemplateRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalTemplate, error) {
	var out []*types.LegalTemplate
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template.get_by_ids", err)
	}
	return out, r.hydrateTags(dbc, out)
}

func (r *legalTemplateRepo) ListActiveByTag(dbc dbctx.Context, tag string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error) {
	var out []*types.LegalTemplate
	tagged := dbc.DB(r.db).Model(&types.LegalTemplateTag{}).Select("template_id").Where("tag = ?", normalizeTag(tag))
	q := dbc.DB(r.db).Where("is_active = ? AND id IN (?)", true, tagged)
	q = scopeJurisdictions(q, "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("name ASC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("legal_template.list_active_by_tag", err)
	}
	return out, r.hydrateTags(dbc, out)
}

func (r *legalTemplateRepo) ListActive(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error) {
	var out []*types.LegalTemplate
	q := scopeJurisdictions(dbc.DB(r.db).Where("is_active = ?", true), "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("name ASC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("legal_template.list_active", err)
	}
	return out, r.hydrateTags(dbc, out)
}

func (r *legalTemplateRepo) Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalTemplate, error) {
	var out []*types.LegalTemplate
	tx := whereContains(dbc.DB(r.db).Where("is_active = ?", true), q, "name", "description")
	tx = scopeJurisdictions(tx, "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(tx.Order("name ASC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("legal_template.search", err)
	}
	return out, r.hydrateTags(dbc, out)
}

func (r *legalTemplateRepo) ListWithOverlaysInJurisdiction(dbc dbctx.Context, jurisdictionID uuid.UUID) ([]*types.LegalTemplate, error) {
	var out []*types.LegalTemplate
	sections := dbc.DB(r.db).Model(&types.LegalTemplateSection{}).
		Select("legal_template_section.template_id").
		Joins("JOIN template_overlay ON template_overlay.section_id = legal_template_section.id").
		Where("template_overlay.jurisdiction_id = ?", jurisdictionID)
	if err := dbc.DB(r.db).Where("is_active = ? AND id IN (?)", true, sections).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template.list_with_overlays_in_jurisdiction", err)
	}
	return out, r.hydrateTags(dbc, out)
}

func (r *legalTemplateRepo) BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()
	ok, err := bumpVersion(dbc, r.db, types.LegalTemplate{}.TableName(), id, expected, updates)
	return ok, MapError("legal_template.bump_version", err)
}

func (r *legalTemplateRepo) hydrateTags(dbc dbctx.Context, rows []*types.LegalTemplate) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
		t.ScenarioTags = []string{}
	}
	var tags []*types.LegalTemplateTag
	if err := dbc.DB(r.db).Where("template_id IN ?", ids).Order("tag ASC").Find(&tags).Error; err != nil {
		return MapError("legal_template.hydrate_tags", err)
	}
	byTemplate := map[uuid.UUID][]string{}
	for _, tg := range tags {
		byTemplate[tg.TemplateID] = append(byTemplate[tg.TemplateID], tg.Tag)
	}
	for _, t := range rows {
		if v := byTemplate[t.ID]; v != nil {
			t.ScenarioTags = v
		}
	}
	return nil
}

// NormalizeTags lower-cases, trims, dedupes and sorts scenario tags.
func NormalizeTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
