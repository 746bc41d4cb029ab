package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type LegalDocumentRepo interface {
	Create(dbc dbctx.Context, row *types.LegalDocument) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalDocument, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalDocument, error)
	ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalDocument, error)
	Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalDocument, error)

	// BumpVersion moves the document from expected to expected+1 and applies
	// updates in the same statement. ok=false means the version moved underneath us.
	BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error)
}

type legalDocumentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegalDocumentRepo(db *gorm.DB, baseLog *logger.Logger) LegalDocumentRepo {
	return &legalDocumentRepo{db: db, log: baseLog.With("repo", "LegalDocumentRepo")}
}

func (r *legalDocumentRepo) Create(dbc dbctx.Context, row *types.LegalDocument) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Version == 0 {
		row.Version = 1
	}
	row.CreatedAt, row.UpdatedAt = now, now
	return MapError("legal_document.create", dbc.DB(r.db).Omit("Jurisdiction").Create(row).Error)
}

func (r *legalDocumentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalDocument, error) {
	var out []*types.LegalDocument
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("legal_document.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *legalDocumentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LegalDocument, error) {
	var out []*types.LegalDocument
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_document.get_by_ids", err)
	}
	return out, nil
}

func (r *legalDocumentRepo) ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalDocument, error) {
	var out []*types.LegalDocument
	q := scopeJurisdictions(dbc.DB(r.db), "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("created_at DESC, id ASC"), limit, offset).Find(&out).Error; err != nil {
		return nil, MapError("legal_document.list_by_jurisdictions", err)
	}
	return out, nil
}

func (r *legalDocumentRepo) Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalDocument, error) {
	var out []*types.LegalDocument
	tx := whereContains(dbc.DB(r.db), q, "title", "normalized_content", "raw_content")
	tx = scopeJurisdictions(tx, "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(tx.Order("updated_at DESC, id ASC"), limit, offset).Find(&out).Error; err != nil {
		return nil, MapError("legal_document.search", err)
	}
	return out, nil
}

func (r *legalDocumentRepo) BumpVersion(dbc dbctx.Context, id uuid.UUID, expected int, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["updated_at"] = time.Now().UTC()
	ok, err := bumpVersion(dbc, r.db, types.LegalDocument{}.TableName(), id, expected, updates)
	return ok, MapError("legal_document.bump_version", err)
}
