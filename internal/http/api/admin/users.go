package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/linkcraft-ai/backend/internal/db"
	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/security"
)

type createUserRequest struct {
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	PlanID *uint64 `json:"planId"`
}

type updateUserRequest struct {
	Email  *string `json:"email"`
	Name   *string `json:"name"`
	PlanID *uint64 `json:"planId"`
}

func userPayload(user models.User) gin.H {
	payload := gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"apiKey":       user.APIKey,
		"apiKeyActive": user.APIKeyActive,
		"planId":       user.PlanID,
		"createdAt":    user.CreatedAt,
		"updatedAt":    user.UpdatedAt,
	}
	if user.Plan != nil {
		payload["plan"] = gin.H{
			"id":     user.Plan.ID,
			"name":   user.Plan.Name,
			"limits": gin.H{
				"postsLimit":      user.Plan.PostsLimit,
				"commentsLimit":   user.Plan.CommentsLimit,
				"repliesLimit":    user.Plan.RepliesLimit,
				"rewritesLimit":   user.Plan.RewritesLimit,
				"totalUsageLimit": user.Plan.TotalUsageLimit,
			},
		}
	}
	if user.Usage != nil {
		payload["usage"] = gin.H{
			"postsCreated":     user.Usage.PostsCreated,
			"commentsEnhanced": user.Usage.CommentsEnhanced,
			"repliesSuggested": user.Usage.RepliesSuggested,
			"textsRewritten":   user.Usage.TextsRewritten,
			"totalUsage":       user.Usage.TotalUsage,
			"lastUsedAt":       user.Usage.LastUsedAt,
			"lastResetAt":      user.Usage.LastResetAt,
		}
	}
	return payload
}

// CreateUser registers an extension account and issues its credential.
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
		return
	}

	if req.PlanID != nil {
		var plan models.Plan
		if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *req.PlanID).Error; errFind != nil {
			if isNotFound(errFind) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "plan not found"})
				return
			}
			log.WithError(errFind).Error("create user: plan lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}

	var existing models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	apiKey, errKey := security.GenerateAPIKey()
	if errKey != nil {
		log.WithError(errKey).Error("create user: api key generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	user := models.User{
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		APIKey:       apiKey,
		APIKeyActive: true,
		PlanID:       req.PlanID,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		log.WithError(errCreate).Error("create user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, userPayload(user))
}

// ListUsers returns a page of users with plan and usage attached.
// Supports ?page, ?pageSize, and ?search over email and name.
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := parsePaging(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.User{})
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + db.NormalizeLikePattern(h.db, search) + "%"
		query = query.Where(
			db.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+db.CaseInsensitiveLikeExpr(h.db, "name"),
			pattern, pattern,
		)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("list users: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var users []models.User
	errFind := query.
		Preload("Plan").
		Preload("Usage").
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if errFind != nil {
		log.WithError(errFind).Error("list users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	payload := make([]gin.H, 0, len(users))
	for _, user := range users {
		payload = append(payload, userPayload(user))
	}
	c.JSON(http.StatusOK, gin.H{
		"users":    payload,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// GetUser returns one user with plan and usage attached.
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Plan").
		Preload("Usage").
		First(&user, id).Error
	if errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.WithError(errFind).Error("get user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

// UpdateUser applies a partial update to a user.
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.WithError(errFind).Error("update user: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
			return
		}
		user.Email = email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.PlanID != nil {
		if *req.PlanID == 0 {
			user.PlanID = nil
		} else {
			var plan models.Plan
			if errFind := h.db.WithContext(c.Request.Context()).First(&plan, *req.PlanID).Error; errFind != nil {
				if isNotFound(errFind) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "plan not found"})
					return
				}
				log.WithError(errFind).Error("update user: plan lookup failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			user.PlanID = req.PlanID
		}
	}

	if errSave := h.db.WithContext(c.Request.Context()).Save(&user).Error; errSave != nil {
		log.WithError(errSave).Error("update user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

// DeleteUser removes a user and their usage counters. Ledger entries are
// kept for audit.
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&models.Usage{}).Error
	})
	if errTx != nil {
		if isNotFound(errTx) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.WithError(errTx).Error("delete user failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RotateAPIKey replaces a user's credential with a fresh one.
func (h *Handler) RotateAPIKey(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	apiKey, errKey := security.GenerateAPIKey()
	if errKey != nil {
		log.WithError(errKey).Error("rotate api key: generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"api_key":        apiKey,
			"api_key_active": true,
		})
	if res.Error != nil {
		log.WithError(res.Error).Error("rotate api key failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "apiKey": apiKey})
}

// EnableAPIKey re-activates a user's credential.
func (h *Handler) EnableAPIKey(c *gin.Context) {
	h.setAPIKeyActive(c, true)
}

// DisableAPIKey deactivates a user's credential without rotating it.
func (h *Handler) DisableAPIKey(c *gin.Context) {
	h.setAPIKeyActive(c, false)
}

func (h *Handler) setAPIKeyActive(c *gin.Context, active bool) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	res := h.db.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("api_key_active", active)
	if res.Error != nil {
		log.WithError(res.Error).Error("set api key active failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "apiKeyActive": active})
}

// ResetUsage zeroes a user's counters and stamps the reset time.
func (h *Handler) ResetUsage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error; errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.WithError(errFind).Error("reset usage: lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	usage, errReset := h.tracker.Reset(c.Request.Context(), user.ID)
	if errReset != nil {
		log.WithError(errReset).Error("reset usage failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"usage": gin.H{
			"postsCreated":     usage.PostsCreated,
			"commentsEnhanced": usage.CommentsEnhanced,
			"repliesSuggested": usage.RepliesSuggested,
			"textsRewritten":   usage.TextsRewritten,
			"totalUsage":       usage.TotalUsage,
			"lastResetAt":      usage.LastResetAt,
		},
	})
}

// parsePaging reads ?page and ?pageSize with sane bounds.
func parsePaging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}
