package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lexgraph-backend/internal/domain"
	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
	"github.com/yungbote/lexgraph-backend/internal/platform/logger"
)

// VersionHistoryRepo holds the append-only history tables of every versioned
// entity. Rows are never updated or deleted.
type VersionHistoryRepo interface {
	CreateDocumentVersion(dbc dbctx.Context, row *types.LegalDocumentVersion) error
	CreateTemplateVersion(dbc dbctx.Context, row *types.LegalTemplateVersion) error
	CreateOverlayVersion(dbc dbctx.Context, row *types.TemplateOverlayVersion) error

	ListDocumentVersions(dbc dbctx.Context, documentID uuid.UUID) ([]*types.LegalDocumentVersion, error)
	ListTemplateVersions(dbc dbctx.Context, templateID uuid.UUID) ([]*types.LegalTemplateVersion, error)
	ListOverlayVersions(dbc dbctx.Context, overlayID uuid.UUID) ([]*types.TemplateOverlayVersion, error)
}

type versionHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVersionHistoryRepo(db *gorm.DB, baseLog *logger.Logger) VersionHistoryRepo {
	return &versionHistoryRepo{db: db, log: baseLog.With("repo", "VersionHistoryRepo")}
}

func (r *versionHistoryRepo) CreateDocumentVersion(dbc dbctx.Context, row *types.LegalDocumentVersion) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("legal_document_version.create", dbc.DB(r.db).Omit("Document").Create(row).Error)
}

func (r *versionHistoryRepo) CreateTemplateVersion(dbc dbctx.Context, row *types.LegalTemplateVersion) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("legal_template_version.create", dbc.DB(r.db).Omit("Template").Create(row).Error)
}

func (r *versionHistoryRepo) CreateOverlayVersion(dbc dbctx.Context, row *types.TemplateOverlayVersion) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.CreatedAt = time.Now().UTC()
	return MapError("template_overlay_version.create", dbc.DB(r.db).Omit("Overlay").Create(row).Error)
}

func (r *versionHistoryRepo) ListDocumentVersions(dbc dbctx.Context, documentID uuid.UUID) ([]*types.LegalDocumentVersion, error) {
	var out []*types.LegalDocumentVersion
	if err := dbc.DB(r.db).Where("document_id = ?", documentID).Order("version ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_document_version.list", err)
	}
	return out, nil
}

func (r *versionHistoryRepo) ListTemplateVersions(dbc dbctx.Context, templateID uuid.UUID) ([]*types.LegalTemplateVersion, error) {
	var out []*types.LegalTemplateVersion
	if err := dbc.DB(r.db).Where("template_id = ?", templateID).Order("version ASC").Find(&out).Error; err != nil {
		return nil, MapError("legal_template_version.list", err)
	}
	return out, nil
}

func (r *versionHistoryRepo) ListOverlayVersions(dbc dbctx.Context, overlayID uuid.UUID) ([]*types.TemplateOverlayVersion, error) {
	var out []*types.TemplateOverlayVersion
	if err := dbc.DB(r.db).Where("overlay_id = ?", overlayID).Order("version ASC").Find(&out).Error; err != nil {
		return nil, MapError("template_overlay_version.list", err)
	}
	return out, nil
}
