package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
}

// Hook Before Create untuk generate UUID otomatis
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return
}

// Trash is the soft-delete marker shared by the four ledgers. The columns are
// explicit (not gorm.DeletedAt) because trashed rows must stay queryable: the
// trash view lists them, restore clears them, merge-on-restore re-points them.
type Trash struct {
	IsDeleted bool       `gorm:"default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (t *Trash) MarkDeleted(at time.Time) {
	t.IsDeleted = true
	t.DeletedAt = &at
}

func (t *Trash) ClearDeleted() {
	t.IsDeleted = false
	t.DeletedAt = nil
}
