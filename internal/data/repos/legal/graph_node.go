package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type GraphNodeRepo interface {
	Create(dbc dbctx.Context, row *types.GraphNode) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphNode, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.GraphNode, error)
	GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) (*types.GraphNode, error)
	ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.GraphNode, error)
}

type graphNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphNodeRepo(db *gorm.DB, baseLog *logger.Logger) GraphNodeRepo {
	return &graphNodeRepo{db: db, log: baseLog.With("repo", "GraphNodeRepo")}
}

func (r *graphNodeRepo) Create(dbc dbctx.Context, row *types.GraphNode) error {
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt, row.UpdatedAt = now, now
	return MapError("graph_node.create", dbc.DB(r.db).Omit("Document").Create(row).Error)
}

func (r *graphNodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphNode, error) {
	var out []*types.GraphNode
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("graph_node.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *graphNodeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.GraphNode, error) {
	var out []*types.GraphNode
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("label ASC").Find(&out).Error; err != nil {
		return nil, MapError("graph_node.get_by_ids", err)
	}
	return out, nil
}

func (r *graphNodeRepo) GetByDocumentID(dbc dbctx.Context, documentID uuid.UUID) (*types.GraphNode, error) {
	var out []*types.GraphNode
	if err := dbc.DB(r.db).Where("document_id = ?", documentID).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("graph_node.get_by_document_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *graphNodeRepo) ListByJurisdictions(dbc dbctx.Context, jurisdictionIDs []uuid.UUID, limit int) ([]*types.GraphNode, error) {
	var out []*types.GraphNode
	q := scopeJurisdictions(dbc.DB(r.db), "jurisdiction_id", jurisdictionIDs)
	if err := applyPage(q.Order("created_at ASC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("graph_node.list_by_jurisdictions", err)
	}
	return out, nil
}
