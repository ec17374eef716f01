package db

import (
	"path/filepath"
	"testing"

	"github.com/linkcraft-ai/backend/internal/models"
	internalsettings "github.com/linkcraft-ai/backend/internal/settings"
)

func TestMigrate_SeedsSettingsAndPlans(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "lca-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var setting models.Setting
	if errFind := conn.Where("key = ?", internalsettings.OpenAIModelKey).First(&setting).Error; errFind != nil {
		t.Fatalf("find model setting: %v", errFind)
	}
	if string(setting.Value) != `"`+internalsettings.DefaultOpenAIModel+`"` {
		t.Fatalf("unexpected model setting value: %s", setting.Value)
	}

	var planCount int64
	if errCount := conn.Model(&models.Plan{}).Count(&planCount).Error; errCount != nil {
		t.Fatalf("count plans: %v", errCount)
	}
	if planCount == 0 {
		t.Fatalf("expected seeded plans")
	}

	// Second run must be idempotent.
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}
	var afterCount int64
	if errCount := conn.Model(&models.Plan{}).Count(&afterCount).Error; errCount != nil {
		t.Fatalf("count plans: %v", errCount)
	}
	if afterCount != planCount {
		t.Fatalf("expected plan count unchanged, got %d -> %d", planCount, afterCount)
	}
}

func TestOpen_DialectSelection(t *testing.T) {
	conn, err := Open("file::memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %s", DialectName(conn))
	}
}
