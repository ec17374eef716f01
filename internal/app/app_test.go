package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/linkcraft-ai/backend/internal/config"
	"github.com/linkcraft-ai/backend/internal/db"
	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/security"
)

func TestEnsureAdminFromEnv_CreatesFirstAdmin(t *testing.T) {
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "app.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	t.Setenv(config.EnvAdminUsername, "bootstrap-admin")
	t.Setenv(config.EnvAdminPassword, "bootstrap-pass")

	if errBootstrap := ensureAdminFromEnv(conn); errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}

	var admin models.Admin
	if errFind := conn.Where("username = ?", "bootstrap-admin").First(&admin).Error; errFind != nil {
		t.Fatalf("load admin: %v", errFind)
	}
	if !admin.Active {
		t.Fatalf("bootstrapped admin should be active")
	}
	if !security.CheckPassword(admin.Password, "bootstrap-pass") {
		t.Fatalf("stored password does not verify")
	}

	// A second boot with different env must not replace the existing admin.
	t.Setenv(config.EnvAdminUsername, "other-admin")
	if errBootstrap := ensureAdminFromEnv(conn); errBootstrap != nil {
		t.Fatalf("second bootstrap: %v", errBootstrap)
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count admins: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("admin count = %d, want 1", count)
	}
}

func TestEnsureAdminFromEnv_NoEnvNoAdmin(t *testing.T) {
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "app-noenv.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	t.Setenv(config.EnvAdminUsername, "")
	t.Setenv(config.EnvAdminPassword, "")

	if errBootstrap := ensureAdminFromEnv(conn); errBootstrap != nil {
		t.Fatalf("bootstrap: %v", errBootstrap)
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count admins: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("admin count = %d, want 0", count)
	}
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "health.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}

	engine := gin.New()
	engine.GET("/healthz", healthHandler(conn))

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", recorder.Code, recorder.Body.String())
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger())
	engine.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"pong": true}) })

	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if recorder.Header().Get(requestIDHeader) == "" {
		t.Fatalf("missing %s header", requestIDHeader)
	}

	// A caller-supplied request ID is echoed back.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "caller-id-1")
	recorder = httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	if got := recorder.Header().Get(requestIDHeader); got != "caller-id-1" {
		t.Fatalf("request id = %q, want caller-id-1", got)
	}
}
