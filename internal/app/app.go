// Package app wires configuration, storage, and HTTP routing into a
// runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/linkcraft-ai/backend/internal/config"
	"github.com/linkcraft-ai/backend/internal/db"
	adminapi "github.com/linkcraft-ai/backend/internal/http/api/admin"
	extensionapi "github.com/linkcraft-ai/backend/internal/http/api/extension"
	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/openai"
	"github.com/linkcraft-ai/backend/internal/ratelimit"
	"github.com/linkcraft-ai/backend/internal/security"
	"github.com/linkcraft-ai/backend/internal/settings"
)

// settingsRefreshInterval drives the periodic snapshot reload; admin
// mutations refresh eagerly, this catches out-of-band edits.
const settingsRefreshInterval = time.Minute

// RunServer boots the backend and blocks until shutdown.
func RunServer(port string) error {
	cfg, errCfg := config.LoadFromEnv()
	if errCfg != nil {
		return fmt.Errorf("load config: %w", errCfg)
	}

	dsn, errDSN := config.LoadDatabaseDSN(cfg.ConfigPath)
	if errDSN != nil {
		return fmt.Errorf("resolve database dsn: %w", errDSN)
	}
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return fmt.Errorf("open database: %w", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate database: %w", errMigrate)
	}
	if errBootstrap := ensureAdminFromEnv(conn); errBootstrap != nil {
		return fmt.Errorf("bootstrap admin: %w", errBootstrap)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if errRefresh := settings.Refresh(ctx, conn); errRefresh != nil {
		return fmt.Errorf("load settings snapshot: %w", errRefresh)
	}
	settings.StartRefresher(ctx, conn, settingsRefreshInterval, func(errRefresh error) {
		log.WithError(errRefresh).Warn("periodic settings refresh failed")
	})

	jwtCfg, errJWT := config.LoadJWTConfig(cfg.ConfigPath)
	if errJWT != nil {
		return fmt.Errorf("load jwt config: %w", errJWT)
	}
	if strings.TrimSpace(jwtCfg.Secret) == "" {
		return errors.New("jwt secret is required (set JWT_SECRET or jwt.secret in config)")
	}

	var cipher *security.Cipher
	if passphrase := config.LoadEncryptionKey(cfg.ConfigPath); passphrase != "" {
		var errCipher error
		cipher, errCipher = security.NewCipher(passphrase)
		if errCipher != nil {
			return fmt.Errorf("init encryption: %w", errCipher)
		}
	} else {
		log.Warn("no encryption key configured, provider credential storage disabled")
	}

	generator := openai.NewClient(providerKeySource(cipher), "")
	limiter := ratelimit.NewManager(nil, nil, nil)

	engine := gin.New()
	engine.Use(RequestLogger(), gin.Recovery())
	engine.GET("/healthz", healthHandler(conn))

	extensionapi.NewHandler(conn, settings.SnapshotProvider{}, generator, limiter).RegisterRoutes(engine)
	adminapi.NewHandler(conn, jwtCfg, cipher).RegisterRoutes(engine)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
		}
	}()

	select {
	case errServe := <-errCh:
		return fmt.Errorf("serve: %w", errServe)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
		return fmt.Errorf("shutdown: %w", errShutdown)
	}
	return nil
}

// providerKeySource resolves the completion provider credential from the
// settings snapshot at request time, decrypting with the configured cipher.
func providerKeySource(cipher *security.Cipher) openai.KeySource {
	return func() (string, error) {
		encrypted, ok := settings.EncryptedProviderKey()
		if !ok {
			return "", errors.New("no provider api key configured")
		}
		if cipher == nil {
			return "", errors.New("encryption key not configured")
		}
		plaintext, errDecrypt := cipher.Decrypt(encrypted)
		if errDecrypt != nil {
			return "", fmt.Errorf("decrypt provider api key: %w", errDecrypt)
		}
		return plaintext, nil
	}
}

// healthHandler pings the database so load balancers see storage loss.
func healthHandler(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, errDB := conn.DB()
		if errDB == nil {
			errDB = sqlDB.PingContext(c.Request.Context())
		}
		if errDB != nil {
			log.WithError(errDB).Error("health check: database ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ensureAdminFromEnv creates the first admin account from ADMIN_USERNAME
// and ADMIN_PASSWORD when the admins table is empty.
func ensureAdminFromEnv(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(os.Getenv(config.EnvAdminUsername))
	password := os.Getenv(config.EnvAdminPassword)
	if username == "" || password == "" {
		log.Warn("no admin accounts and no ADMIN_USERNAME/ADMIN_PASSWORD set, admin api locked out")
		return nil
	}

	hashed, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("hash admin password: %w", errHash)
	}
	admin := models.Admin{Username: username, Password: hashed, Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.Infof("bootstrapped admin account %q", username)
	return nil
}
