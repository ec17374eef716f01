package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linkcraft-ai/backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tracker enforces plan limits and applies atomic usage increments.
type Tracker struct {
	db *gorm.DB
}

// NewTracker constructs a Tracker backed by GORM.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db}
}

// Snapshot returns the usage counters for a user, zeroed when no row exists.
// It never creates a row; lazy creation happens on the first track call.
func (t *Tracker) Snapshot(ctx context.Context, userID uint64) (models.Usage, error) {
	if t == nil || t.db == nil {
		return models.Usage{}, fmt.Errorf("quota: tracker not initialized")
	}
	var usage models.Usage
	errFind := t.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return models.Usage{UserID: userID}, nil
		}
		return models.Usage{}, fmt.Errorf("quota: load usage: %w", errFind)
	}
	return usage, nil
}

// Track charges one unit of the action against the user's plan. The limit
// check, ledger append, and counter increment run in one transaction; the
// increment is a guarded UPDATE so concurrent calls for the same user can
// never both consume the last unit of quota.
func (t *Tracker) Track(ctx context.Context, user *models.User, action Action, details datatypes.JSON) (models.Usage, error) {
	if t == nil || t.db == nil {
		return models.Usage{}, fmt.Errorf("quota: tracker not initialized")
	}
	if user == nil || user.Plan == nil {
		return models.Usage{}, fmt.Errorf("quota: user has no plan")
	}

	plan := user.Plan
	column := action.Column()
	actionLimit := action.LimitFor(plan)
	now := time.Now().UTC()

	if len(details) == 0 {
		details = datatypes.JSON([]byte("{}"))
	}

	var updated models.Usage
	errTx := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.Usage{UserID: user.ID, LastResetAt: now}
		if errSeed := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; errSeed != nil {
			return fmt.Errorf("quota: seed usage row: %w", errSeed)
		}

		res := tx.Model(&models.Usage{}).
			Where("user_id = ?", user.ID).
			Where("total_usage < ?", plan.TotalUsageLimit).
			Where(fmt.Sprintf("%s < ?", column), actionLimit).
			Updates(map[string]any{
				"total_usage":  gorm.Expr("total_usage + 1"),
				column:         gorm.Expr(fmt.Sprintf("%s + 1", column)),
				"last_used_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return fmt.Errorf("quota: increment usage: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var current models.Usage
			if errFind := tx.Where("user_id = ?", user.ID).First(&current).Error; errFind != nil {
				return fmt.Errorf("quota: load usage after failed increment: %w", errFind)
			}
			if current.TotalUsage >= plan.TotalUsageLimit {
				return &LimitError{LimitName: TotalLimitName, Limit: plan.TotalUsageLimit, Used: current.TotalUsage}
			}
			return &LimitError{LimitName: action.LimitName(), Limit: actionLimit, Used: action.UsedFrom(current)}
		}

		entry := models.UsageLog{
			UserID:    user.ID,
			Action:    string(action),
			Details:   details,
			CreatedAt: now,
		}
		if errLog := tx.Create(&entry).Error; errLog != nil {
			return fmt.Errorf("quota: append usage log: %w", errLog)
		}

		if errFind := tx.Where("user_id = ?", user.ID).First(&updated).Error; errFind != nil {
			return fmt.Errorf("quota: reload usage: %w", errFind)
		}
		return nil
	})
	if errTx != nil {
		return models.Usage{}, errTx
	}
	return updated, nil
}

// Reset zeroes all counters for a user and stamps last_reset_at. Creates
// the row when absent so the reset timestamp is visible either way.
func (t *Tracker) Reset(ctx context.Context, userID uint64) (models.Usage, error) {
	if t == nil || t.db == nil {
		return models.Usage{}, fmt.Errorf("quota: tracker not initialized")
	}
	now := time.Now().UTC()

	var updated models.Usage
	errTx := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.Usage{UserID: userID, LastResetAt: now}
		if errSeed := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; errSeed != nil {
			return fmt.Errorf("quota: seed usage row: %w", errSeed)
		}
		if errReset := tx.Model(&models.Usage{}).
			Where("user_id = ?", userID).
			Updates(map[string]any{
				"posts_created":     0,
				"comments_enhanced": 0,
				"replies_suggested": 0,
				"texts_rewritten":   0,
				"total_usage":       0,
				"last_reset_at":     now,
				"updated_at":        now,
			}).Error; errReset != nil {
			return fmt.Errorf("quota: reset usage: %w", errReset)
		}
		if errFind := tx.Where("user_id = ?", userID).First(&updated).Error; errFind != nil {
			return fmt.Errorf("quota: reload usage: %w", errFind)
		}
		return nil
	})
	if errTx != nil {
		return models.Usage{}, errTx
	}
	return updated, nil
}
