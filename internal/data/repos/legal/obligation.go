package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type LegalObligationRepo interface {
	Create(dbc dbctx.Context, row *types.LegalObligation) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalObligation, error)
	GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) ([]*types.LegalObligation, error)
	ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalObligation, error)
	Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalObligation, error)
}

type legalObligationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLegalObligationRepo(db *gorm.DB, baseLog *logger.Logger) LegalObligationRepo {
	return &legalObligationRepo{db: db, log: baseLog.With("repo", "LegalObligationRepo")}
}

func (r *legalObligationRepo) Create(dbc dbctx.Context, row *types.LegalObligation) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Version == 0 {
		row.Version = 1
	}
	row.CreatedAt, row.UpdatedAt = now, now
	return MapError("legal_obligation.create", dbc.DB(r.db).Omit("Document").Create(row).Error)
}

func (r *legalObligationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.LegalObligation, error) {
	var out []*types.LegalObligation
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("legal_obligation.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *legalObligationRepo) GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) ([]*types.LegalObligation, error) {
	var out []*types.LegalObligation
	if err := dbc.DB(r.db).Where("document_id = ?", documentID).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_obligation.get_by_document_id", err)
	}
	return out, nil
}

func (r *legalObligationRepo) ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.LegalObligation, error) {
	var out []*types.LegalObligation
	q := scopeJurisdictions(dbc.DB(r.db), "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("created_at DESC, id ASC"), limit, offset).Find(&out).Error; err != nil {
		return nil, MapError("legal_obligation.list_by_jurisdictions", err)
	}
	return out, nil
}

func (r *legalObligationRepo) Search(dbc dbctx.Context, q string, jurisdictionIDs []uuid.UUID, limit int) ([]*types.LegalObligation, error) {
	var out []*types.LegalObligation
	tx := whereContains(dbc.DB(r.db), q, "description", "legal_basis", "scope")
	tx = scopeJurisdictions(tx, "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(tx.Order("created_at DESC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("legal_obligation.search", err)
	}
	return out, nil
}
