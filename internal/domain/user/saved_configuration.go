package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SavedConfiguration is a named snapshot of a session selection. SelectionJSON
// holds the selection map as served by the API; SceneID is the scene it
// matched when saved, empty when nothing matched.
type SavedConfiguration struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string         `gorm:"not null;column:name" json:"name"`
	SelectionJSON datatypes.JSON `gorm:"column:selection_json;not null" json:"selection"`
	SceneID       string         `gorm:"column:scene_id" json:"scene_id"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SavedConfiguration) TableName() string { return "saved_configuration" }

func (c *SavedConfiguration) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
