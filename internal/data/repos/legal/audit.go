package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/ctxutil"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type GraphDeltaRepo interface {
	Create(dbc dbctx.Context, row *types.GraphDelta) error
	ListByEntity(dbc dbctx.Context, entityType types.EntityType, entityID uuid.UUID) ([]*types.GraphDelta, error)
	ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.GraphDelta, error)
}

type graphDeltaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphDeltaRepo(db *gorm.DB, baseLog *logger.Logger) GraphDeltaRepo {
	return &graphDeltaRepo{db: db, log: baseLog.With("repo", "GraphDeltaRepo")}
}

func (r *graphDeltaRepo) Create(dbc dbctx.Context, row *types.GraphDelta) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("graph_delta.create", dbc.DB(r.db).Create(row).Error)
}

func (r *graphDeltaRepo) ListByEntity(dbc dbctx.Context, entityType types.EntityType, entityID uuid.UUID) ([]*types.GraphDelta, error) {
	var out []*types.GraphDelta
	if err := dbc.DB(r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("new_version ASC").
		Find(&out).Error; err != nil {
		return nil, MapError("graph_delta.list_by_entity", err)
	}
	return out, nil
}

func (r *graphDeltaRepo) ListSince(dbc dbctx.Context, since time.Time, limit int) ([]*types.GraphDelta, error) {
	var out []*types.GraphDelta
	q := dbc.DB(r.db).Where("created_at >= ?", since).Order("created_at ASC, id ASC")
	if err := applyPage(q, limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("graph_delta.list_since", err)
	}
	return out, nil
}

type UpdateAuditRepo interface {
	Create(dbc dbctx.Context, row *types.UpdateAudit) error
	List(dbc dbctx.Context, action types.AuditAction, resourceID string, limit int) ([]*types.UpdateAudit, error)
}

type updateAuditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUpdateAuditRepo(db *gorm.DB, baseLog *logger.Logger) UpdateAuditRepo {
	return &updateAuditRepo{db: db, log: baseLog.With("repo", "UpdateAuditRepo")}
}

func (r *updateAuditRepo) Create(dbc dbctx.Context, row *types.UpdateAudit) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.Actor == "" {
		row.Actor = ctxutil.Actor(dbc.Ctx)
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("update_audit.create", dbc.DB(r.db).Create(row).Error)
}

// List filters by action and resource when non-empty, newest first.
func (r *updateAuditRepo) List(dbc dbctx.Context, action types.AuditAction, resourceID string, limit int) ([]*types.UpdateAudit, error) {
	var out []*types.UpdateAudit
	q := dbc.DB(r.db)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if resourceID != "" {
		q = q.Where("resource_id = ?", resourceID)
	}
	if err := applyPage(q.Order("created_at DESC, id ASC"), limit, 0).Find(&out).Error; err != nil {
		return nil, MapError("update_audit.list", err)
	}
	return out, nil
}
