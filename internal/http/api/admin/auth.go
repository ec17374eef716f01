package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/security"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a session token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	var admin models.Admin
	errFind := h.db.WithContext(c.Request.Context()).Where("username = ?", username).First(&admin).Error
	if errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.WithError(errFind).Error("admin login: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !admin.Active || !security.CheckPassword(admin.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, errToken := security.CreateAdminToken(h.jwtSecret, h.jwtExpiry, admin.ID, admin.Username)
	if errToken != nil {
		log.WithError(errToken).Error("admin login: token mint failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": time.Now().UTC().Add(h.jwtExpiry).Format(time.RFC3339),
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
		},
	})
}
