package legal

import (
	"time"

	"github.com/google/uuid"
)

type LegalObligation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DocumentID uuid.UUID      `gorm:"type:uuid;column:document_id;not null;index" json:"document_id"`
	Document   *LegalDocument `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID;references:ID" json:"-"`

	Description    string    `gorm:"column:description;type:text;not null" json:"description"`
	Scope          string    `gorm:"column:scope" json:"scope,omitempty"`
	JurisdictionID uuid.UUID `gorm:"type:uuid;column:jurisdiction_id;not null;index" json:"jurisdiction_id"`
	LegalBasis     string    `gorm:"column:legal_basis" json:"legal_basis,omitempty"`
	Version        int       `gorm:"column:version;not null" json:"version"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (LegalObligation) TableName() string { return "legal_obligation" }
