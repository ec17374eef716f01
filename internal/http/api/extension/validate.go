package extension

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type validateRequest struct {
	APIKey string `json:"apiKey"`
}

// Validate checks an extension credential and returns the attached plan and
// current usage counters. Read-only: it never creates a usage row.
func (h *Handler) Validate(c *gin.Context) {
	var req validateRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "apiKey is required"})
		return
	}

	user, found, errFind := h.lookupUserByAPIKey(c.Request.Context(), apiKey)
	if errFind != nil {
		log.WithError(errFind).Error("validate: user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid API key"})
		return
	}
	if !user.APIKeyActive {
		c.JSON(http.StatusForbidden, gin.H{"message": "API key is disabled"})
		return
	}
	if user.Plan == nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "no plan assigned"})
		return
	}

	usage, errUsage := h.tracker.Snapshot(c.Request.Context(), user.ID)
	if errUsage != nil {
		log.WithError(errUsage).Error("validate: usage lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
		"plan": gin.H{
			"name":   user.Plan.Name,
			"limits": planLimitsPayload(user.Plan),
		},
		"usage": usagePayload(usage),
	})
}
