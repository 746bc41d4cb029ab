package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type JurisdictionRepo interface {
	Create(dbc dbctx.Context, row *types.Jurisdiction) error
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Jurisdiction) (int, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Jurisdiction, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Jurisdiction, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Jurisdiction, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Jurisdiction, error)
	List(dbc dbctx.Context) ([]*types.Jurisdiction, error)
}

type jurisdictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJurisdictionRepo(db *gorm.DB, baseLog *logger.Logger) JurisdictionRepo {
	return &jurisdictionRepo{db: db, log: baseLog.With("repo", "JurisdictionRepo")}
}

func (r *jurisdictionRepo) Create(dbc dbctx.Context, row *types.Jurisdiction) error {
	stampJurisdiction(row)
	return MapError("jurisdiction.create", dbc.DB(r.db).Create(row).Error)
}

func (r *jurisdictionRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Jurisdiction) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		stampJurisdiction(row)
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return 0, MapError("jurisdiction.create_ignore_duplicates", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (r *jurisdictionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Jurisdiction, error) {
	var out []*types.Jurisdiction
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("jurisdiction.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *jurisdictionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Jurisdiction, error) {
	var out []*types.Jurisdiction
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("code ASC").Find(&out).Error; err != nil {
		return nil, MapError("jurisdiction.get_by_ids", err)
	}
	return out, nil
}

func (r *jurisdictionRepo) GetByCode(dbc dbctx.Context, code string) (*types.Jurisdiction, error) {
	var out []*types.Jurisdiction
	if err := dbc.DB(r.db).Where("code = ?", code).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("jurisdiction.get_by_code", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetByCodes returns rows in the order of codes, skipping unknown codes.
func (r *jurisdictionRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Jurisdiction, error) {
	out := []*types.Jurisdiction{}
	if len(codes) == 0 {
		return out, nil
	}
	var rows []*types.Jurisdiction
	if err := dbc.DB(r.db).Where("code IN ?", codes).Find(&rows).Error; err != nil {
		return nil, MapError("jurisdiction.get_by_codes", err)
	}
	byCode := make(map[string]*types.Jurisdiction, len(rows))
	for _, j := range rows {
		byCode[j.Code] = j
	}
	seen := map[string]bool{}
	for _, c := range codes {
		if j, ok := byCode[c]; ok && !seen[c] {
			seen[c] = true
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *jurisdictionRepo) List(dbc dbctx.Context) ([]*types.Jurisdiction, error) {
	var out []*types.Jurisdiction
	if err := dbc.DB(r.db).Order("code ASC").Find(&out).Error; err != nil {
		return nil, MapError("jurisdiction.list", err)
	}
	return out, nil
}

func stampJurisdiction(row *types.Jurisdiction) {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
}
