package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/linkcraft-ai/backend/internal/models"

	"gorm.io/gorm"
)

// dbConfigSnapshot is one immutable view of the settings table.
type dbConfigSnapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

var currentSnapshot atomic.Pointer[dbConfigSnapshot]

// StoreDBConfig replaces the in-memory settings snapshot.
func StoreDBConfig(updatedAt time.Time, values map[string]json.RawMessage) {
	copied := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		copied[k] = v
	}
	currentSnapshot.Store(&dbConfigSnapshot{updatedAt: updatedAt.UTC(), values: copied})
}

// DBConfigValue returns the raw JSON value for a settings key.
func DBConfigValue(key string) (json.RawMessage, bool) {
	snapshot := currentSnapshot.Load()
	if snapshot == nil {
		return nil, false
	}
	value, ok := snapshot.values[key]
	return value, ok
}

// DBConfigUpdatedAt returns the newest settings timestamp in the snapshot.
func DBConfigUpdatedAt() time.Time {
	snapshot := currentSnapshot.Load()
	if snapshot == nil {
		return time.Time{}
	}
	return snapshot.updatedAt
}

// Refresh rebuilds the in-memory settings snapshot from the database.
func Refresh(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("settings: nil db")
	}

	var rows []models.Setting
	if errFind := conn.WithContext(ctx).
		Select("key", "value", "updated_at").
		Order("key ASC").
		Find(&rows).Error; errFind != nil {
		return fmt.Errorf("settings: refresh: %w", errFind)
	}

	values := make(map[string]json.RawMessage, len(rows))
	maxUpdatedAt := time.Time{}
	for _, row := range rows {
		key := strings.TrimSpace(row.Key)
		if key == "" {
			continue
		}
		values[key] = json.RawMessage(row.Value)
		if rowUpdatedAt := row.UpdatedAt.UTC(); rowUpdatedAt.After(maxUpdatedAt) {
			maxUpdatedAt = rowUpdatedAt
		}
	}

	StoreDBConfig(maxUpdatedAt, values)
	return nil
}

// StartRefresher reloads the snapshot on an interval until ctx is done.
func StartRefresher(ctx context.Context, conn *gorm.DB, interval time.Duration, onError func(error)) {
	if conn == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if errRefresh := Refresh(ctx, conn); errRefresh != nil && onError != nil {
					onError(errRefresh)
				}
			}
		}
	}()
}
