package extension

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/linkcraft-ai/backend/internal/quota"
)

type trackRequest struct {
	APIKey  string         `json:"apiKey"`
	Action  string         `json:"action"`
	Details datatypes.JSON `json:"details"`
}

// Track charges one unit of the action against the user's plan and appends
// a ledger entry. This is the only endpoint that mutates usage.
func (h *Handler) Track(c *gin.Context) {
	var req trackRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	action, okAction := quota.ParseAction(req.Action)
	if !okAction {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_action"})
		return
	}

	user, found, errFind := h.lookupUserByAPIKey(c.Request.Context(), apiKey)
	if errFind != nil {
		log.WithError(errFind).Error("track: user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_api_key"})
		return
	}
	if !user.APIKeyActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "api_key_disabled"})
		return
	}
	if user.Plan == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no_plan"})
		return
	}

	usage, errTrack := h.tracker.Track(c.Request.Context(), user, action, req.Details)
	if errTrack != nil {
		if limitErr, okLimit := quota.AsLimitError(errTrack); okLimit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "quota_exceeded",
				"limitName": limitErr.LimitName,
				"limit":     limitErr.Limit,
				"used":      limitErr.Used,
			})
			return
		}
		log.WithError(errTrack).Error("track: increment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"usage":     usagePayload(usage),
		"remaining": quota.RemainingFor(user.Plan, usage),
	})
}
