package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/data/repos/legal"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

type JurisdictionRepo = legal.JurisdictionRepo
type LegalDocumentRepo = legal.LegalDocumentRepo
type VersionHistoryRepo = legal.VersionHistoryRepo
type GraphNodeRepo = legal.GraphNodeRepo
type LegalObligationRepo = legal.LegalObligationRepo
type GraphEdgeRepo = legal.GraphEdgeRepo
type LegalTemplateRepo = legal.LegalTemplateRepo
type TemplateSectionRepo = legal.TemplateSectionRepo
type TemplateOverlayRepo = legal.TemplateOverlayRepo
type TemplateLinkRepo = legal.TemplateLinkRepo
type GraphDeltaRepo = legal.GraphDeltaRepo
type UpdateAuditRepo = legal.UpdateAuditRepo

// Set is every legal-graph repo sharing one *gorm.DB.
type Set struct {
	Jurisdiction JurisdictionRepo
	Document     LegalDocumentRepo
	History      VersionHistoryRepo
	GraphNode    GraphNodeRepo
	Obligation   LegalObligationRepo
	Edge         GraphEdgeRepo
	Template     LegalTemplateRepo
	Section      TemplateSectionRepo
	Overlay      TemplateOverlayRepo
	Link         TemplateLinkRepo
	Delta        GraphDeltaRepo
	Audit        UpdateAuditRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Jurisdiction: legal.NewJurisdictionRepo(db, baseLog),
		Document:     legal.NewLegalDocumentRepo(db, baseLog),
		History:      legal.NewVersionHistoryRepo(db, baseLog),
		GraphNode:    legal.NewGraphNodeRepo(db, baseLog),
		Obligation:   legal.NewLegalObligationRepo(db, baseLog),
		Edge:         legal.NewGraphEdgeRepo(db, baseLog),
		Template:     legal.NewLegalTemplateRepo(db, baseLog),
		Section:      legal.NewTemplateSectionRepo(db, baseLog),
		Overlay:      legal.NewTemplateOverlayRepo(db, baseLog),
		Link:         legal.NewTemplateLinkRepo(db, baseLog),
		Delta:        legal.NewGraphDeltaRepo(db, baseLog),
		Audit:        legal.NewUpdateAuditRepo(db, baseLog),
	}
}
