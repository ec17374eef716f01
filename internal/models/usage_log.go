package models

import (
	"time"

	"gorm.io/datatypes"
)

// UsageLog is one append-only record of a metered action.
type UsageLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.

	Action  string         `gorm:"type:varchar(64);not null;index"`  // Action kind.
	Details datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Free-form details payload.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}
