package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type LegalTemplate struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`

	JurisdictionID *uuid.UUID `gorm:"type:uuid;column:jurisdiction_id;index" json:"jurisdiction_id,omitempty"`

	Version  int  `gorm:"column:version;not null" json:"version"`
	IsActive bool `gorm:"column:is_active;not null;index" json:"is_active"`

	// ScenarioTags is hydrated from legal_template_tag by the repo.
	ScenarioTags []string `gorm:"-" json:"scenario_tags"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LegalTemplate) TableName() string { return "legal_template" }

type LegalTemplateTag struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TemplateID uuid.UUID      `gorm:"type:uuid;column:template_id;not null;uniqueIndex:idx_legal_template_tag,priority:1" json:"template_id"`
	Template   *LegalTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:TemplateID;references:ID" json:"-"`
	Tag        string         `gorm:"column:tag;not null;index;uniqueIndex:idx_legal_template_tag,priority:2" json:"tag"`
}

func (LegalTemplateTag) TableName() string { return "legal_template_tag" }

type LegalTemplateSection struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TemplateID uuid.UUID      `gorm:"type:uuid;column:template_id;not null;uniqueIndex:idx_legal_template_section_order,priority:1" json:"template_id"`
	Template   *LegalTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:TemplateID;references:ID" json:"-"`

	Order   int    `gorm:"column:sort_order;not null;uniqueIndex:idx_legal_template_section_order,priority:2" json:"order"`
	Heading string `gorm:"column:heading" json:"heading,omitempty"`
	Body    string `gorm:"column:body;type:text" json:"body"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LegalTemplateSection) TableName() string { return "legal_template_section" }

// TemplateOverlay substitutes one section's text for a single jurisdiction.
type TemplateOverlay struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SectionID uuid.UUID             `gorm:"type:uuid;column:section_id;not null;uniqueIndex:idx_template_overlay_scope,priority:1" json:"section_id"`
	Section   *LegalTemplateSection `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"-"`

	JurisdictionID uuid.UUID     `gorm:"type:uuid;column:jurisdiction_id;not null;index;uniqueIndex:idx_template_overlay_scope,priority:2" json:"jurisdiction_id"`
	Jurisdiction   *Jurisdiction `gorm:"constraint:OnDelete:RESTRICT;foreignKey:JurisdictionID;references:ID" json:"-"`

	OverlayText string `gorm:"column:overlay_text;type:text" json:"overlay_text"`
	Version     int    `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TemplateOverlay) TableName() string { return "template_overlay" }

type TemplateOverlayVersion struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	OverlayID uuid.UUID        `gorm:"type:uuid;column:overlay_id;not null;uniqueIndex:idx_template_overlay_version,priority:1" json:"overlay_id"`
	Overlay   *TemplateOverlay `gorm:"constraint:OnDelete:CASCADE;foreignKey:OverlayID;references:ID" json:"-"`
	Version   int              `gorm:"column:version;not null;uniqueIndex:idx_template_overlay_version,priority:2" json:"version"`

	OverlayText  string `gorm:"column:overlay_text;type:text" json:"overlay_text"`
	ChangeReason string `gorm:"column:change_reason" json:"change_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (TemplateOverlayVersion) TableName() string { return "template_overlay_version" }

type LegalTemplateVersion struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TemplateID uuid.UUID      `gorm:"type:uuid;column:template_id;not null;uniqueIndex:idx_legal_template_version,priority:1" json:"template_id"`
	Template   *LegalTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:TemplateID;references:ID" json:"-"`
	Version    int            `gorm:"column:version;not null;uniqueIndex:idx_legal_template_version,priority:2" json:"version"`

	ChangeReason string         `gorm:"column:change_reason" json:"change_reason,omitempty"`
	ChangeLog    string         `gorm:"column:change_log;type:text" json:"change_log,omitempty"`
	Delta        datatypes.JSON `gorm:"column:delta;type:jsonb" json:"delta,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LegalTemplateVersion) TableName() string { return "legal_template_version" }

// LegalTemplateLink ties a template to the graph node it depends on.
type LegalTemplateLink struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TemplateID  uuid.UUID      `gorm:"type:uuid;column:template_id;not null;uniqueIndex:idx_legal_template_link,priority:1" json:"template_id"`
	Template    *LegalTemplate `gorm:"constraint:OnDelete:CASCADE;foreignKey:TemplateID;references:ID" json:"-"`
	GraphNodeID uuid.UUID      `gorm:"type:uuid;column:graph_node_id;not null;index;uniqueIndex:idx_legal_template_link,priority:2" json:"graph_node_id"`
	GraphNode   *GraphNode     `gorm:"constraint:OnDelete:CASCADE;foreignKey:GraphNodeID;references:ID" json:"-"`

	LinkType string `gorm:"column:link_type" json:"link_type,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LegalTemplateLink) TableName() string { return "legal_template_link" }
