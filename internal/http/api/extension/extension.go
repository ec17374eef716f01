// Package extension serves the browser extension API: credential
// validation, text generation, and usage tracking.
package extension

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/openai"
	"github.com/linkcraft-ai/backend/internal/quota"
	"github.com/linkcraft-ai/backend/internal/ratelimit"
	"github.com/linkcraft-ai/backend/internal/settings"
)

// TextGenerator produces completion content for role-tagged messages.
type TextGenerator interface {
	Generate(ctx context.Context, model string, messages []openai.Message, maxTokens int) (string, error)
}

// RateLimiter checks per-user request rates.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (ratelimit.Result, error)
}

// Handler carries the dependencies of the extension endpoints.
type Handler struct {
	db        *gorm.DB
	tracker   *quota.Tracker
	settings  settings.Provider
	generator TextGenerator
	limiter   RateLimiter
}

// NewHandler constructs a Handler. limiter may be nil to disable rate
// limiting (tests, single-tenant deployments).
func NewHandler(db *gorm.DB, provider settings.Provider, generator TextGenerator, limiter RateLimiter) *Handler {
	if provider == nil {
		provider = settings.SnapshotProvider{}
	}
	return &Handler{
		db:        db,
		tracker:   quota.NewTracker(db),
		settings:  provider,
		generator: generator,
		limiter:   limiter,
	}
}

// RegisterRoutes mounts the extension endpoints under /v1.
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/validate", h.Validate)
	group.POST("/generate", h.Generate)
	group.POST("/track", h.Track)
}

// lookupUserByAPIKey loads a user with their plan by extension credential.
// found is false when no user carries the credential.
func (h *Handler) lookupUserByAPIKey(ctx context.Context, apiKey string) (*models.User, bool, error) {
	var user models.User
	errFind := h.db.WithContext(ctx).Preload("Plan").Where("api_key = ?", apiKey).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup user by api key: %w", errFind)
	}
	return &user, true, nil
}

// usagePayload shapes usage counters for JSON responses.
func usagePayload(usage models.Usage) gin.H {
	var lastUsedAt *string
	if usage.LastUsedAt != nil {
		formatted := usage.LastUsedAt.UTC().Format(time.RFC3339)
		lastUsedAt = &formatted
	}
	var lastResetAt *string
	if !usage.LastResetAt.IsZero() {
		formatted := usage.LastResetAt.UTC().Format(time.RFC3339)
		lastResetAt = &formatted
	}
	return gin.H{
		"postsCreated":     usage.PostsCreated,
		"commentsEnhanced": usage.CommentsEnhanced,
		"repliesSuggested": usage.RepliesSuggested,
		"textsRewritten":   usage.TextsRewritten,
		"totalUsage":       usage.TotalUsage,
		"lastUsedAt":       lastUsedAt,
		"lastResetAt":      lastResetAt,
	}
}

// planLimitsPayload shapes plan ceilings for JSON responses.
func planLimitsPayload(plan *models.Plan) gin.H {
	return gin.H{
		"postsLimit":      plan.PostsLimit,
		"commentsLimit":   plan.CommentsLimit,
		"repliesLimit":    plan.RepliesLimit,
		"rewritesLimit":   plan.RewritesLimit,
		"totalUsageLimit": plan.TotalUsageLimit,
	}
}
