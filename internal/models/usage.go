package models

import "time"

// Usage holds the running usage counters for one user.
type Usage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;uniqueIndex"` // Owning user ID.

	PostsCreated     int `gorm:"not null;default:0"` // Posts generated.
	CommentsEnhanced int `gorm:"not null;default:0"` // Comments enhanced.
	RepliesSuggested int `gorm:"not null;default:0"` // Replies suggested.
	TextsRewritten   int `gorm:"not null;default:0"` // Texts rewritten.
	TotalUsage       int `gorm:"not null;default:0"` // Sum of all counters.

	LastUsedAt  *time.Time `gorm:"type:timestamp"` // Last successful track.
	LastResetAt time.Time  `gorm:"not null"`       // Last administrative reset.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
