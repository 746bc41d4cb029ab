package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GraphEdge is a directed, typed relationship between two graph entities.
// Endpoints are polymorphic, so there is no FK on from_id/to_id; the write
// path checks existence instead.
type GraphEdge struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	FromType EntityType `gorm:"column:from_type;not null;index:idx_legal_edge_from,priority:1" json:"from_type"`
	FromID   uuid.UUID  `gorm:"type:uuid;column:from_id;not null;index:idx_legal_edge_from,priority:2" json:"from_id"`
	ToType   EntityType `gorm:"column:to_type;not null;index:idx_legal_edge_to,priority:1" json:"to_type"`
	ToID     uuid.UUID  `gorm:"type:uuid;column:to_id;not null;index:idx_legal_edge_to,priority:2" json:"to_id"`
	EdgeType EdgeType   `gorm:"column:edge_type;not null;index" json:"edge_type"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	Version  int            `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (GraphEdge) TableName() string { return "legal_graph_edge" }
