package models

import "time"

// Operator roles
const (
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

// Operator is a fraud analyst allowed to review alerts and manage the
// watchlist.
type Operator struct {
	ID           uint   `gorm:"primarykey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;default:'analyst'"`
	TokenVersion int    `gorm:"default:1"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
