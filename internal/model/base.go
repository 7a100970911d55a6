package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel campos de auditoría comunes
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel auditoría + borrado lógico
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel borrado lógico + bloqueo optimista
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// SetCreator marca creador y último editor
func (b *BaseModel) SetCreator(userID string) {
	b.CreatedBy = &userID
	b.UpdatedBy = &userID
}

// SetUpdater marca el último editor
func (b *BaseModel) SetUpdater(userID string) {
	b.UpdatedBy = &userID
}
