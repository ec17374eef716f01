package db

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database selected by the DSN. DSNs that look like
// file paths open SQLite; everything else goes to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: empty dsn")
	}

	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	if isSQLiteDSN(dsn) {
		conn, errOpen := gorm.Open(sqlite.Open(dsn), gormCfg)
		if errOpen != nil {
			return nil, fmt.Errorf("db: open sqlite: %w", errOpen)
		}
		return conn, nil
	}

	conn, errOpen := gorm.Open(postgres.Open(dsn), gormCfg)
	if errOpen != nil {
		return nil, fmt.Errorf("db: open postgres: %w", errOpen)
	}
	return conn, nil
}

// isSQLiteDSN reports whether the DSN targets SQLite.
func isSQLiteDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return false
	}
	if strings.HasPrefix(lower, "file:") || lower == ":memory:" {
		return true
	}
	if strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") {
		return true
	}
	return strings.Contains(lower, "mode=memory")
}
