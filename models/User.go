package models

import "gorm.io/gorm"

// User represents an application account that can authenticate with the
// platform. Every user belongs to exactly one farm; requests from users
// without a farm are rejected before reaching any domain operation.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string
	FarmID       string `gorm:"size:36;index"`
	Farm         *Farm  `gorm:"foreignKey:FarmID"`
}
