package models

import "time"

// Plan represents a subscription plan configuration.
type Plan struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string  `gorm:"type:varchar(255);not null;uniqueIndex"` // Plan name.
	MonthPrice  float64 `gorm:"type:decimal(10,2);not null;default:0"`  // Monthly price.
	Description string  `gorm:"type:text"`                              // Plan description.

	PostsLimit      int `gorm:"not null;default:0"` // Post generations allowed.
	CommentsLimit   int `gorm:"not null;default:0"` // Comment enhancements allowed.
	RepliesLimit    int `gorm:"not null;default:0"` // Reply suggestions allowed.
	RewritesLimit   int `gorm:"not null;default:0"` // Text rewrites allowed.
	TotalUsageLimit int `gorm:"not null;default:0"` // Overall usage ceiling.

	SortOrder int `gorm:"not null;default:0"` // Display ordering weight.

	IsEnabled bool `gorm:"not null;default:true"` // Whether the plan is active.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
