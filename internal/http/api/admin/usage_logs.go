package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/quota"
)

// ListUsageLogs returns a page of ledger entries, newest first.
// Supports ?page, ?pageSize, ?userId, and ?action filters.
func (h *Handler) ListUsageLogs(c *gin.Context) {
	page, pageSize := parsePaging(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.UsageLog{})
	if rawUserID := strings.TrimSpace(c.Query("userId")); rawUserID != "" {
		userID, errParse := strconv.ParseUint(rawUserID, 10, 64)
		if errParse != nil || userID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}
		query = query.Where("user_id = ?", userID)
	}
	if rawAction := strings.TrimSpace(c.Query("action")); rawAction != "" {
		action, okAction := quota.ParseAction(rawAction)
		if !okAction {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action"})
			return
		}
		query = query.Where("action = ?", string(action))
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		log.WithError(errCount).Error("list usage logs: count failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var rows []models.UsageLog
	errFind := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if errFind != nil {
		log.WithError(errFind).Error("list usage logs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	payload := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, gin.H{
			"id":        row.ID,
			"userId":    row.UserID,
			"action":    row.Action,
			"details":   json.RawMessage(row.Details),
			"createdAt": row.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":     payload,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}
