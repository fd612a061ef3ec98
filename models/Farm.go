package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Farm is the ownership boundary for every domain record. All reads and
// writes on formulas and stock are scoped by farm id.
type Farm struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Location  string    `gorm:"size:100" json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *Farm) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
