package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/linkcraft-ai/backend/internal/models"
	internalsettings "github.com/linkcraft-ai/backend/internal/settings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Migrate runs database migrations and seeds default rows.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Plan{},
		&models.User{},
		&models.Usage{},
		&models.UsageLog{},
		&models.Setting{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureSystemSettings(conn); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureSystemSettings seeds the settings rows the runtime reads.
func ensureSystemSettings(conn *gorm.DB) error {
	if errSeed := ensureBoolSetting(conn, internalsettings.MaintenanceModeKey, internalsettings.DefaultMaintenanceMode); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureStringSetting(conn, internalsettings.OpenAIModelKey, internalsettings.DefaultOpenAIModel); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureIntSetting(conn, internalsettings.OpenAIMaxTokensKey, internalsettings.DefaultOpenAIMaxTokens); errSeed != nil {
		return errSeed
	}
	if errSeed := ensureIntSetting(conn, internalsettings.RateLimitKey, internalsettings.DefaultRateLimit); errSeed != nil {
		return errSeed
	}
	return ensureStringSetting(conn, internalsettings.RateLimitRedisPrefixKey, internalsettings.DefaultRateLimitRedisPrefix)
}

// defaultPlans are seeded once so a fresh install has assignable tiers.
var defaultPlans = []models.Plan{
	{
		Name:            "Free",
		Description:     "Try the assistant with a small monthly allowance.",
		PostsLimit:      5,
		CommentsLimit:   10,
		RepliesLimit:    10,
		RewritesLimit:   5,
		TotalUsageLimit: 25,
		SortOrder:       1,
		IsEnabled:       true,
	},
	{
		Name:            "Pro",
		MonthPrice:      19,
		Description:     "Full daily use for active creators.",
		PostsLimit:      100,
		CommentsLimit:   300,
		RepliesLimit:    300,
		RewritesLimit:   100,
		TotalUsageLimit: 800,
		SortOrder:       2,
		IsEnabled:       true,
	},
}

// ensureDefaultPlans inserts the default plan tiers if the table is empty.
func ensureDefaultPlans(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Plan{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count plans: %w", errCount)
	}
	if count > 0 {
		return nil
	}
	plans := make([]models.Plan, len(defaultPlans))
	copy(plans, defaultPlans)
	if errCreate := conn.Create(&plans).Error; errCreate != nil {
		return fmt.Errorf("db: seed plans: %w", errCreate)
	}
	return nil
}

// ensureIntSetting inserts an integer setting if the key is absent.
func ensureIntSetting(conn *gorm.DB, key string, value int) error {
	return ensureSetting(conn, key, json.RawMessage(strconv.Itoa(value)))
}

// ensureBoolSetting inserts a boolean setting if the key is absent.
func ensureBoolSetting(conn *gorm.DB, key string, value bool) error {
	return ensureSetting(conn, key, json.RawMessage(strconv.FormatBool(value)))
}

// ensureStringSetting inserts a string setting if the key is absent.
func ensureStringSetting(conn *gorm.DB, key string, value string) error {
	encoded, errMarshal := json.Marshal(value)
	if errMarshal != nil {
		return fmt.Errorf("db: encode setting %s: %w", key, errMarshal)
	}
	return ensureSetting(conn, key, encoded)
}

func ensureSetting(conn *gorm.DB, key string, value json.RawMessage) error {
	var existing models.Setting
	errFind := conn.Where("key = ?", key).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: lookup setting %s: %w", key, errFind)
	}
	setting := models.Setting{Key: key, Value: datatypes.JSON(value)}
	if errCreate := conn.Create(&setting).Error; errCreate != nil {
		return fmt.Errorf("db: seed setting %s: %w", key, errCreate)
	}
	return nil
}
