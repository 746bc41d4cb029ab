package legal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LegalDocument is only ever mutated through a version bump once created.
type LegalDocument struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Title        string       `gorm:"column:title;not null" json:"title"`
	DocumentType DocumentType `gorm:"column:document_type;not null;index" json:"document_type"`

	JurisdictionID uuid.UUID     `gorm:"type:uuid;column:jurisdiction_id;not null;index" json:"jurisdiction_id"`
	Jurisdiction   *Jurisdiction `gorm:"constraint:OnDelete:RESTRICT;foreignKey:JurisdictionID;references:ID" json:"-"`

	Module     Module `gorm:"column:module;not null;index" json:"module"`
	LegalLevel Layer  `gorm:"column:legal_level;not null" json:"legal_level"`
	Authority  string `gorm:"column:authority" json:"authority,omitempty"`

	RawContent        string `gorm:"column:raw_content;type:text" json:"raw_content"`
	NormalizedContent string `gorm:"column:normalized_content;type:text" json:"normalized_content"`
	OriginalLanguage  string `gorm:"column:original_language" json:"original_language,omitempty"`
	SourceURL         string `gorm:"column:source_url" json:"source_url,omitempty"`

	Version int `gorm:"column:version;not null" json:"version"`

	DateAdopted     *time.Time `gorm:"column:date_adopted" json:"date_adopted,omitempty"`
	DateEffective   *time.Time `gorm:"column:date_effective" json:"date_effective,omitempty"`
	DateEffectiveTo *time.Time `gorm:"column:date_effective_to" json:"date_effective_to,omitempty"`

	Celex      string `gorm:"column:celex;index" json:"celex,omitempty"`
	Rada       string `gorm:"column:rada;index" json:"rada,omitempty"`
	UNSymbol   string `gorm:"column:un_symbol" json:"un_symbol,omitempty"`
	CFR        string `gorm:"column:cfr" json:"cfr,omitempty"`
	ExternalID string `gorm:"column:external_id;index" json:"external_id,omitempty"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LegalDocument) TableName() string { return "legal_document" }

// LegalDocumentVersion is append-only: one row per version transition.
type LegalDocumentVersion struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DocumentID uuid.UUID      `gorm:"type:uuid;column:document_id;not null;uniqueIndex:idx_legal_document_version,priority:1" json:"document_id"`
	Document   *LegalDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`
	Version    int            `gorm:"column:version;not null;uniqueIndex:idx_legal_document_version,priority:2" json:"version"`

	ContentDelta  string `gorm:"column:content_delta;type:text" json:"content_delta,omitempty"`
	ChangeSummary string `gorm:"column:change_summary;type:text" json:"change_summary,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (LegalDocumentVersion) TableName() string { return "legal_document_version" }

// GraphNode mirrors a LegalDocument's traversal attributes 1:1.
type GraphNode struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DocumentID uuid.UUID      `gorm:"type:uuid;column:document_id;not null;uniqueIndex" json:"document_id"`
	Document   *LegalDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Label          string       `gorm:"column:label;not null" json:"label"`
	NodeType       DocumentType `gorm:"column:node_type;not null" json:"node_type"`
	JurisdictionID uuid.UUID    `gorm:"type:uuid;column:jurisdiction_id;not null;index" json:"jurisdiction_id"`
	Module         Module       `gorm:"column:module;not null" json:"module"`
	LegalLevel     Layer        `gorm:"column:legal_level;not null" json:"legal_level"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (GraphNode) TableName() string { return "legal_graph_node" }
