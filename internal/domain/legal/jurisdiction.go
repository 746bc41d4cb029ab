package legal

import (
	"time"

	"github.com/google/uuid"
)

type Jurisdiction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Code  string `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name  string `gorm:"column:name;not null" json:"name"`
	Layer Layer  `gorm:"column:layer;not null;index" json:"layer"`

	ParentID *uuid.UUID    `gorm:"type:uuid;column:parent_id;index" json:"parent_id,omitempty"`
	Parent   *Jurisdiction `gorm:"constraint:OnDelete:RESTRICT;foreignKey:ParentID;references:ID" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Jurisdiction) TableName() string { return "jurisdiction" }
