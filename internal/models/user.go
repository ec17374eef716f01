package models

import "time"

// User represents an extension account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Name  string `gorm:"type:text"`                      // Display name.

	APIKey       string `gorm:"type:text;not null;uniqueIndex"` // Extension credential.
	APIKeyActive bool   `gorm:"not null;default:true"`          // Whether the credential is accepted.

	PlanID *uint64 `gorm:"index"`             // Active plan ID.
	Plan   *Plan   `gorm:"foreignKey:PlanID"` // Active plan.

	Usage *Usage `gorm:"foreignKey:UserID"` // Running usage counters.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
