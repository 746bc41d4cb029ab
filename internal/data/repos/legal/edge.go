package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type GraphEdgeRepo interface {
	Create(dbc dbctx.Context, row *types.GraphEdge) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphEdge, error)

	// ListFrom returns edges leaving any of fromIDs typed fromType; empty
	// edgeTypes means every edge type.
	ListFrom(dbc dbctx.Context, fromType types.EntityType, fromIDs []uuid.UUID, edgeTypes []types.EdgeType) ([]*types.GraphEdge, error)
	ListTo(dbc dbctx.Context, toType types.EntityType, toIDs []uuid.UUID, edgeTypes []types.EdgeType) ([]*types.GraphEdge, error)
	// ListTouching returns edges with either endpoint in ids.
	ListTouching(dbc dbctx.Context, ids []uuid.UUID, limit int) ([]*types.GraphEdge, error)
	// ListByTypesForJurisdictions returns edges of edgeTypes whose document or
	// graph-node endpoint belongs to one of jurisdictionIDs (all when empty).
	ListByTypesForJurisdictions(dbc dbctx.Context, edgeTypes []types.EdgeType, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.GraphEdge, error)
}

type graphEdgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphEdgeRepo(db *gorm.DB, baseLog *logger.Logger) GraphEdgeRepo {
	return &graphEdgeRepo{db: db, log: baseLog.With("repo", "GraphEdgeRepo")}
}

func (r *graphEdgeRepo) Create(dbc dbctx.Context, row *types.GraphEdge) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Version == 0 {
		row.Version = 1
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("graph_edge.create", dbc.DB(r.db).Create(row).Error)
}

func (r *graphEdgeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.GraphEdge, error) {
	var out []*types.GraphEdge
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, MapError("graph_edge.get_by_id", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *graphEdgeRepo) ListFrom(dbc dbctx.Context, fromType types.EntityType, fromIDs []uuid.UUID, edgeTypes []types.EdgeType) ([]*types.GraphEdge, error) {
	var out []*types.GraphEdge
	if len(fromIDs) == 0 {
		return out, nil
	}
	q := dbc.DB(r.db).Where("from_type = ? AND from_id IN ?", fromType, fromIDs)
	if len(edgeTypes) > 0 {
		q = q.Where("edge_type IN ?", edgeTypes)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("graph_edge.list_from", err)
	}
	return out, nil
}

func (r *graphEdgeRepo) ListTo(dbc dbctx.Context, toType types.EntityType, toIDs []uuid.UUID, edgeTypes []types.EdgeType) ([]*types.GraphEdge, error) {
	var out []*types.GraphEdge
	if len(toIDs) == 0 {
		return out, nil
	}
	q := dbc.DB(r.db).Where("to_type = ? AND to_id IN ?", toType, toIDs)
	if len(edgeTypes) > 0 {
		q = q.Where("edge_type IN ?", edgeTypes)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("graph_edge.list_to", err)
	}
	return out, nil
}

func (r *graphEdgeRepo) ListTouching(dbc dbctx.Context, ids []uuid.UUID, limit int) ([]*types.GraphEdge, error) {
	var out []*types.GraphEdge
	if len(ids) == 0 {
		return out, nil
	}
	q := dbc.DB(r.db).Where("from_id IN ? OR to_id IN ?", ids, ids).Order("created_at ASC, id ASC")
	if err := applyPage(q, limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("graph_edge.list_touching", err)
	}
	return out, nil
}

func (r *graphEdgeRepo) ListByTypesForJurisdictions(dbc dbctx.Context, edgeTypes []types.EdgeType, jurisdictionIDs []uuid.UUID, limit, offset int) ([]*types.GraphEdge, error) {
	var out []*types.GraphEdge
	q := dbc.DB(r.db)
	if len(edgeTypes) > 0 {
		q = q.Where("edge_type IN ?", edgeTypes)
	}
	if len(jurisdictionIDs) > 0 {
		docs := dbc.DB(r.db).Model(&types.LegalDocument{}).Select("id").Where("jurisdiction_id IN ?", jurisdictionIDs)
		nodes := dbc.DB(r.db).Model(&types.GraphNode{}).Select("id").Where("jurisdiction_id IN ?", jurisdictionIDs)
		q = q.Where("from_id IN (?) OR from_id IN (?) OR to_id IN (?) OR to_id IN (?)", docs, nodes, docs, nodes)
	}
	if err := applyPage(q.Order("created_at DESC, id ASC"), limit, offset).Find(&out).Error; err != nil {
		return nil, MapError("graph_edge.list_by_types_for_jurisdictions", err)
	}
	return out, nil
}
