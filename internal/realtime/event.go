package realtime

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventDocumentVersionChanged = "document_version_changed"
	EventTemplateVersionChanged = "template_version_changed"
	EventOverlayVersionChanged  = "overlay_version_changed"
)

// GraphEvent is published after a version bump commits. Subscribers must
// tolerate duplicates and gaps; the relational store is the source of truth.
type GraphEvent struct {
	Event      string         `json:"event"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldVersion int            `json:"old_version"`
	NewVersion int            `json:"new_version"`
	Module     string         `json:"module,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	At         time.Time      `json:"at"`
}
