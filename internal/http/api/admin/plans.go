package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/linkcraft-ai/backend/internal/models"
)

type planRequest struct {
	Name            *string  `json:"name"`
	MonthPrice      *float64 `json:"monthPrice"`
	Description     *string  `json:"description"`
	PostsLimit      *int     `json:"postsLimit"`
	CommentsLimit   *int     `json:"commentsLimit"`
	RepliesLimit    *int     `json:"repliesLimit"`
	RewritesLimit   *int     `json:"rewritesLimit"`
	TotalUsageLimit *int     `json:"totalUsageLimit"`
	SortOrder       *int     `json:"sortOrder"`
	IsEnabled       *bool    `json:"isEnabled"`
}

func planPayload(plan models.Plan) gin.H {
	return gin.H{
		"id":              plan.ID,
		"name":            plan.Name,
		"monthPrice":      plan.MonthPrice,
		"description":     plan.Description,
		"postsLimit":      plan.PostsLimit,
		"commentsLimit":   plan.CommentsLimit,
		"repliesLimit":    plan.RepliesLimit,
		"rewritesLimit":   plan.RewritesLimit,
		"totalUsageLimit": plan.TotalUsageLimit,
		"sortOrder":       plan.SortOrder,
		"isEnabled":       plan.IsEnabled,
		"createdAt":       plan.CreatedAt,
		"updatedAt":       plan.UpdatedAt,
	}
}

// CreatePlan adds a plan tier.
func (h *Handler) CreatePlan(c *gin.Context) {
	var req planRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	plan := models.Plan{Name: strings.TrimSpace(*req.Name), IsEnabled: true}
	applyPlanRequest(&plan, req)
	if errValidate := validatePlanLimits(plan); errValidate != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate})
		return
	}

	var existing models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).Where("name = ?", plan.Name).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "plan name already exists"})
		return
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&plan).Error; errCreate != nil {
		log.WithError(errCreate).Error("create plan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, planPayload(plan))
}

// ListPlans returns all plans ordered for display.
func (h *Handler) ListPlans(c *gin.Context) {
	var plans []models.Plan
	errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC, id ASC").
		Find(&plans).Error
	if errFind != nil {
		log.WithError(errFind).Error("list plans failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	payload := make([]gin.H, 0, len(plans))
	for _, plan := range plans {
		payload = append(payload, planPayload(plan))
	}
	c.JSON(http.StatusOK, gin.H{"plans": payload})
}

// GetPlan returns one plan by ID.
func (h *Handler) GetPlan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var plan models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		log.WithError(errFind).Error("get plan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, planPayload(plan))
}

// UpdatePlan applies a partial update to a plan.
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req planRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var plan models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		log.WithError(errFind).Error("update plan: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		plan.Name = name
	}
	applyPlanRequest(&plan, req)
	if errValidate := validatePlanLimits(plan); errValidate != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate})
		return
	}

	if errSave := h.db.WithContext(c.Request.Context()).Save(&plan).Error; errSave != nil {
		log.WithError(errSave).Error("update plan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, planPayload(plan))
}

// DeletePlan removes a plan no user references.
func (h *Handler) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var referencing int64
	if errCount := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("plan_id = ?", id).
		Count(&referencing).Error; errCount != nil {
		log.WithError(errCount).Error("delete plan: reference count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if referencing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "plan is assigned to users"})
		return
	}

	res := h.db.WithContext(c.Request.Context()).Delete(&models.Plan{}, id)
	if res.Error != nil {
		log.WithError(res.Error).Error("delete plan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// EnablePlan marks a plan as available.
func (h *Handler) EnablePlan(c *gin.Context) {
	h.setPlanEnabled(c, true)
}

// DisablePlan hides a plan from new assignments.
func (h *Handler) DisablePlan(c *gin.Context) {
	h.setPlanEnabled(c, false)
}

func (h *Handler) setPlanEnabled(c *gin.Context, enabled bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Plan{}).
		Where("id = ?", id).
		Update("is_enabled", enabled)
	if res.Error != nil {
		log.WithError(res.Error).Error("set plan enabled failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "isEnabled": enabled})
}

func applyPlanRequest(plan *models.Plan, req planRequest) {
	if req.MonthPrice != nil {
		plan.MonthPrice = *req.MonthPrice
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.PostsLimit != nil {
		plan.PostsLimit = *req.PostsLimit
	}
	if req.CommentsLimit != nil {
		plan.CommentsLimit = *req.CommentsLimit
	}
	if req.RepliesLimit != nil {
		plan.RepliesLimit = *req.RepliesLimit
	}
	if req.RewritesLimit != nil {
		plan.RewritesLimit = *req.RewritesLimit
	}
	if req.TotalUsageLimit != nil {
		plan.TotalUsageLimit = *req.TotalUsageLimit
	}
	if req.SortOrder != nil {
		plan.SortOrder = *req.SortOrder
	}
	if req.IsEnabled != nil {
		plan.IsEnabled = *req.IsEnabled
	}
}

func validatePlanLimits(plan models.Plan) string {
	if plan.PostsLimit < 0 || plan.CommentsLimit < 0 || plan.RepliesLimit < 0 ||
		plan.RewritesLimit < 0 || plan.TotalUsageLimit < 0 {
		return "limits cannot be negative"
	}
	if plan.MonthPrice < 0 {
		return "monthPrice cannot be negative"
	}
	return ""
}
