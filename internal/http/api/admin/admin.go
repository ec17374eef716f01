// Package admin serves the dashboard management API: admin sessions,
// plan and user management, system settings, and the usage ledger.
package admin

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkcraft-ai/backend/internal/config"
	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/quota"
	"github.com/linkcraft-ai/backend/internal/security"
)

// Handler carries the dependencies of the admin endpoints.
type Handler struct {
	db        *gorm.DB
	jwtSecret string
	jwtExpiry time.Duration
	cipher    *security.Cipher
	tracker   *quota.Tracker
}

// NewHandler constructs a Handler. cipher may be nil; storing the provider
// credential then rejects with a configuration error.
func NewHandler(conn *gorm.DB, jwtCfg config.JWTConfig, cipher *security.Cipher) *Handler {
	return &Handler{
		db:        conn,
		jwtSecret: jwtCfg.Secret,
		jwtExpiry: jwtCfg.Expiry,
		cipher:    cipher,
		tracker:   quota.NewTracker(conn),
	}
}

// RegisterRoutes mounts the admin endpoints under /v0/admin.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	root := router.Group("/v0/admin")
	root.POST("/login", h.Login)

	authed := root.Group("")
	authed.Use(h.authMiddleware())

	authed.POST("/plans", h.CreatePlan)
	authed.GET("/plans", h.ListPlans)
	authed.GET("/plans/:id", h.GetPlan)
	authed.PUT("/plans/:id", h.UpdatePlan)
	authed.DELETE("/plans/:id", h.DeletePlan)
	authed.POST("/plans/:id/enable", h.EnablePlan)
	authed.POST("/plans/:id/disable", h.DisablePlan)

	authed.POST("/users", h.CreateUser)
	authed.GET("/users", h.ListUsers)
	authed.GET("/users/:id", h.GetUser)
	authed.PUT("/users/:id", h.UpdateUser)
	authed.DELETE("/users/:id", h.DeleteUser)
	authed.POST("/users/:id/api-key/rotate", h.RotateAPIKey)
	authed.POST("/users/:id/api-key/enable", h.EnableAPIKey)
	authed.POST("/users/:id/api-key/disable", h.DisableAPIKey)
	authed.POST("/users/:id/usage/reset", h.ResetUsage)

	authed.POST("/settings", h.CreateSetting)
	authed.GET("/settings", h.ListSettings)
	authed.GET("/settings/:key", h.GetSetting)
	authed.PUT("/settings/:key", h.UpdateSetting)
	authed.DELETE("/settings/:key", h.DeleteSetting)

	authed.GET("/usage-logs", h.ListUsageLogs)
}

// authMiddleware validates the Bearer session token and requires an
// active admin account.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, errParse := security.ParseAdminToken(h.jwtSecret, tokenString)
		if errParse != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		errFind := h.db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error
		if errFind != nil || !admin.Active {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found or disabled"})
			return
		}

		c.Set("admin_id", admin.ID)
		c.Next()
	}
}

// parseIDParam reads the numeric :id route parameter.
func parseIDParam(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// isNotFound reports whether err is a GORM record-not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
