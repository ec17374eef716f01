package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/linkcraft-ai/backend/internal/models"
	"github.com/linkcraft-ai/backend/internal/settings"
)

type settingRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func settingPayload(row models.Setting) gin.H {
	return gin.H{
		"key":       row.Key,
		"value":     json.RawMessage(row.Value),
		"updatedAt": row.UpdatedAt,
	}
}

// CreateSetting stores a new configuration value.
func (h *Handler) CreateSetting(c *gin.Context) {
	var req settingRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	value, errValidate := h.normalizeSettingValue(key, req.Value)
	if errValidate != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate})
		return
	}

	var existing models.Setting
	if errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&existing).Error; errFind == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "setting already exists"})
		return
	}

	row := models.Setting{Key: key, Value: datatypes.JSON(value)}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&row).Error; errCreate != nil {
		log.WithError(errCreate).Error("create setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	h.refreshSettings(c)
	c.JSON(http.StatusCreated, settingPayload(row))
}

// ListSettings returns every configuration row.
func (h *Handler) ListSettings(c *gin.Context) {
	var rows []models.Setting
	errFind := h.db.WithContext(c.Request.Context()).Order("key ASC").Find(&rows).Error
	if errFind != nil {
		log.WithError(errFind).Error("list settings failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	payload := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, settingPayload(row))
	}
	c.JSON(http.StatusOK, gin.H{"settings": payload})
}

// GetSetting returns one configuration value by key.
func (h *Handler) GetSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var row models.Setting
	errFind := h.db.WithContext(c.Request.Context()).Where("key = ?", key).First(&row).Error
	if errFind != nil {
		if isNotFound(errFind) {
			c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
			return
		}
		log.WithError(errFind).Error("get setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, settingPayload(row))
}

// UpdateSetting replaces one configuration value, validating typed keys.
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var req settingRequest
	if errBindJSON := c.ShouldBindJSON(&req); errBindJSON != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	value, errValidate := h.normalizeSettingValue(key, req.Value)
	if errValidate != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate})
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Model(&models.Setting{}).
		Where("key = ?", key).
		Update("value", datatypes.JSON(value))
	if res.Error != nil {
		log.WithError(res.Error).Error("update setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	h.refreshSettings(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "key": key})
}

// DeleteSetting removes one configuration row.
func (h *Handler) DeleteSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	res := h.db.WithContext(c.Request.Context()).Where("key = ?", key).Delete(&models.Setting{})
	if res.Error != nil {
		log.WithError(res.Error).Error("delete setting failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "setting not found"})
		return
	}
	h.refreshSettings(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// normalizeSettingValue validates a value against its key's expected type
// and returns the JSON to store. The provider credential arrives as a
// plaintext string and is encrypted before it touches the database.
func (h *Handler) normalizeSettingValue(key string, raw json.RawMessage) (json.RawMessage, string) {
	if len(raw) == 0 {
		return nil, "value is required"
	}

	switch key {
	case settings.MaintenanceModeKey, settings.RateLimitRedisEnabledKey:
		if _, ok := settings.ParseBoolValue(raw); !ok {
			return nil, "value must be a boolean"
		}
		return raw, ""
	case settings.OpenAIMaxTokensKey:
		if _, ok := settings.ParsePositiveIntValue(raw); !ok {
			return nil, "value must be a positive integer"
		}
		return raw, ""
	case settings.RateLimitKey, settings.RateLimitRedisDBKey:
		if _, ok := settings.ParseNonNegativeIntValue(raw); !ok {
			return nil, "value must be a non-negative integer"
		}
		return raw, ""
	case settings.OpenAIModelKey:
		model, ok := settings.ParseStringValue(raw)
		if !ok || strings.TrimSpace(model) == "" {
			return nil, "value must be a non-empty string"
		}
		return raw, ""
	case settings.OpenAIAPIKeyKey:
		plaintext, ok := settings.ParseStringValue(raw)
		if !ok || strings.TrimSpace(plaintext) == "" {
			return nil, "value must be a non-empty string"
		}
		if h.cipher == nil {
			return nil, "encryption key not configured"
		}
		encrypted, errEncrypt := h.cipher.Encrypt(strings.TrimSpace(plaintext))
		if errEncrypt != nil {
			log.WithError(errEncrypt).Error("encrypt provider key failed")
			return nil, "failed to encrypt value"
		}
		encoded, errMarshal := json.Marshal(encrypted)
		if errMarshal != nil {
			return nil, "failed to encode value"
		}
		return encoded, ""
	default:
		if !json.Valid(raw) {
			return nil, "value must be valid JSON"
		}
		return raw, ""
	}
}

// refreshSettings rebuilds the in-memory snapshot after a mutation so the
// change takes effect without waiting for the periodic refresher.
func (h *Handler) refreshSettings(c *gin.Context) {
	if errRefresh := settings.Refresh(c.Request.Context(), h.db); errRefresh != nil {
		log.WithError(errRefresh).Warn("settings snapshot refresh failed")
	}
}
