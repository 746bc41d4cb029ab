package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GraphDelta records every version transition across the graph.
type GraphDelta struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	EntityType EntityType `gorm:"column:entity_type;not null;index:idx_graph_delta_entity,priority:1" json:"entity_type"`
	EntityID   uuid.UUID  `gorm:"type:uuid;column:entity_id;not null;index:idx_graph_delta_entity,priority:2" json:"entity_id"`
	OldVersion int        `gorm:"column:old_version;not null" json:"old_version"`
	NewVersion int        `gorm:"column:new_version;not null" json:"new_version"`

	Diff datatypes.JSON `gorm:"column:diff;type:jsonb" json:"diff,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (GraphDelta) TableName() string { return "graph_delta" }

// UpdateAudit is the operational log; GraphDelta is the data-diff log.
type UpdateAudit struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Module     Module      `gorm:"column:module;not null;index" json:"module"`
	Action     AuditAction `gorm:"column:action;not null;index" json:"action"`
	ResourceID string      `gorm:"column:resource_id;index" json:"resource_id,omitempty"`
	Summary    string      `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Actor      string      `gorm:"column:actor" json:"actor,omitempty"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (UpdateAudit) TableName() string { return "update_audit" }

// Models lists every table in dependency order for migrations.
func Models() []any {
	return []any{
		&Jurisdiction{},
		&LegalDocument{},
		&LegalDocumentVersion{},
		&GraphNode{},
		&LegalObligation{},
		&GraphEdge{},
		&LegalTemplate{},
		&LegalTemplateTag{},
		&LegalTemplateSection{},
		&TemplateOverlay{},
		&TemplateOverlayVersion{},
		&LegalTemplateVersion{},
		&LegalTemplateLink{},
		&GraphDelta{},
		&UpdateAudit{},
	}
}
