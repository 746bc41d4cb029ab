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

type TemplateLinkRepo interface {
	// Upsert is a no-op when the (template, node) pair is already linked.
	Upsert(dbc dbctx.Context, row *types.LegalTemplateLink) error
	ListByGraphNodeIDs(dbc dbctx.Context, nodeIDs []uuid.UUID) ([]*types.LegalTemplateLink, error)
	ListByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.LegalTemplateLink, error)
}

type templateLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateLinkRepo(db *gorm.DB, baseLog *logger.Logger) TemplateLinkRepo {
	return &templateLinkRepo{db: db, log: baseLog.With("repo", "TemplateLinkRepo")}
}

func (r *templateLinkRepo) Upsert(dbc dbctx.Context, row *types.LegalTemplateLink) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	err := dbc.DB(r.db).
		Omit("Template", "GraphNode").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "template_id"}, {Name: "graph_node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"link_type"}),
		}).
		Create(row).Error
	return MapError("legal_template_link.upsert", err)
}

func (r *templateLinkRepo) ListByGraphNodeIDs(dbc dbctx.Context, nodeIDs []uuid.UUID) ([]*types.LegalTemplateLink, error) {
	var out []*types.LegalTemplateLink
	if len(nodeIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("graph_node_id IN ?", nodeIDs).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template_link.list_by_graph_node_ids", err)
	}
	return out, nil
}

func (r *templateLinkRepo) ListByTemplateIDs(dbc dbctx.Context, templateIDs []uuid.UUID) ([]*types.LegalTemplateLink, error) {
	var out []*types.LegalTemplateLink
	if len(templateIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("template_id IN ?", templateIDs).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template_link.list_by_template_ids", err)
	}
	return out, nil
}
