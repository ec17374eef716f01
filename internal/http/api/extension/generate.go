package extension

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/linkcraft-ai/backend/internal/openai"
	"github.com/linkcraft-ai/backend/internal/ratelimit"
)

type generateRequest struct {
	APIKey      string `json:"apiKey"`
	Action      string `json:"action"`
	Prompt      string `json:"prompt"`
	Tone        string `json:"tone"`
	ContentType string `json:"contentType"`
}

// systemPreamble pins the completion output to a single JSON object so the
// extension can parse it without heuristics.
const systemPreamble = "You are a LinkedIn writing assistant. " +
	"Respond with a single JSON object of the form {\"text\": \"...\"} " +
	"where text is the generated content, and nothing else."

// Generate checks quota and forwards the prompt to the completion provider.
// It never charges usage; the extension confirms application via /v1/track.
func (h *Handler) Generate(c *gin.Context) {
	if h.settings.System().MaintenanceMode {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "maintenance_mode",
			"message": "service is under maintenance, try again later",
		})
		return
	}

	var req generateRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "invalid request body"})
		return
	}
	apiKey := strings.TrimSpace(req.APIKey)
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "apiKey is required"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": "prompt is required"})
		return
	}

	user, found, errFind := h.lookupUserByAPIKey(c.Request.Context(), apiKey)
	if errFind != nil {
		log.WithError(errFind).Error("generate: user lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	if !found || !user.APIKeyActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_api_key"})
		return
	}
	if user.Plan == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no_plan"})
		return
	}

	if h.limiter != nil {
		result, errAllow := h.limiter.Allow(c.Request.Context(), ratelimit.UserKey(user.ID))
		if errAllow != nil {
			log.WithError(errAllow).Error("generate: rate limit check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
			return
		}
		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "too many requests, slow down",
			})
			return
		}
	}

	usage, errUsage := h.tracker.Snapshot(c.Request.Context(), user.ID)
	if errUsage != nil {
		log.WithError(errUsage).Error("generate: usage lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}
	totalLimit := user.Plan.TotalUsageLimit
	if usage.TotalUsage >= totalLimit {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "quota_exceeded",
			"limit": totalLimit,
			"used":  usage.TotalUsage,
		})
		return
	}

	system := h.settings.System()
	content, errGenerate := h.generator.Generate(
		c.Request.Context(),
		system.OpenAIModel,
		buildMessages(req),
		system.OpenAIMaxTokens,
	)
	if errGenerate != nil {
		log.WithError(errGenerate).Error("generate: provider call failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "upstream_error",
			"message": "text generation failed",
		})
		return
	}

	var parsed json.RawMessage
	if errUnmarshal := json.Unmarshal([]byte(content), &parsed); errUnmarshal != nil {
		log.WithField("user_id", user.ID).Error("generate: provider returned non-JSON content")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "invalid_upstream_format",
			"message": "provider returned unparsable content",
		})
		return
	}

	// Projection only: one unit is reserved for the follow-up track call.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"content": parsed,
		"usage": gin.H{
			"remaining": totalLimit - usage.TotalUsage - 1,
			"limit":     totalLimit,
		},
	})
}

// buildMessages assembles the fixed chat shape sent to the provider.
func buildMessages(req generateRequest) []openai.Message {
	var sb strings.Builder
	if action := strings.TrimSpace(req.Action); action != "" {
		fmt.Fprintf(&sb, "Task: %s\n", action)
	}
	if contentType := strings.TrimSpace(req.ContentType); contentType != "" {
		fmt.Fprintf(&sb, "Content type: %s\n", contentType)
	}
	if tone := strings.TrimSpace(req.Tone); tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", tone)
	}
	sb.WriteString(strings.TrimSpace(req.Prompt))
	return []openai.Message{
		{Role: "system", Content: systemPreamble},
		{Role: "user", Content: sb.String()},
	}
}
