package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock is one inventory line tracked against the baseline quantity it
// was created with.
type Stock struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	FarmID          string    `gorm:"size:36;index;not null" json:"farm_id"`
	ItemType        string    `gorm:"size:100;not null" json:"item_type"`
	Quantity        float64   `gorm:"not null" json:"quantity"`
	InitialQuantity float64   `gorm:"not null" json:"initial_quantity"`
	IsLow           bool      `gorm:"not null;default:false" json:"is_low"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (s *Stock) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave re-derives the low-stock flag on every write. The flag is
// never settable by callers; it only follows quantity.
func (s *Stock) BeforeSave(tx *gorm.DB) error {
	s.IsLow = s.Quantity <= s.InitialQuantity/2
	return nil
}
