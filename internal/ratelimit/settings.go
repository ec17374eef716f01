package ratelimit

import (
	"strings"

	internalsettings "github.com/linkcraft-ai/backend/internal/settings"
)

// SettingsConfig captures rate limit settings stored in DB config.
type SettingsConfig struct {
	Limit         int
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// LoadSettingsConfig loads the current rate limit settings snapshot.
func LoadSettingsConfig() SettingsConfig {
	cfg := SettingsConfig{
		Limit:       internalsettings.DefaultRateLimit,
		RedisPrefix: internalsettings.DefaultRateLimitRedisPrefix,
	}

	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitKey); ok {
		if limit, okParse := internalsettings.ParseNonNegativeIntValue(raw); okParse {
			cfg.Limit = limit
		}
	}
	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitRedisEnabledKey); ok {
		if enabled, okParse := internalsettings.ParseBoolValue(raw); okParse {
			cfg.RedisEnabled = enabled
		}
	}
	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitRedisAddrKey); ok {
		if addr, okParse := internalsettings.ParseStringValue(raw); okParse {
			cfg.RedisAddr = addr
		}
	}
	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitRedisPasswordKey); ok {
		if password, okParse := internalsettings.ParseStringValue(raw); okParse {
			cfg.RedisPassword = password
		}
	}
	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitRedisDBKey); ok {
		if db, okParse := internalsettings.ParseNonNegativeIntValue(raw); okParse {
			cfg.RedisDB = db
		}
	}
	if raw, ok := internalsettings.DBConfigValue(internalsettings.RateLimitRedisPrefixKey); ok {
		if prefix, okParse := internalsettings.ParseStringValue(raw); okParse {
			cfg.RedisPrefix = prefix
		}
	}
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)
	cfg.RedisPassword = strings.TrimSpace(cfg.RedisPassword)
	cfg.RedisPrefix = strings.TrimSpace(cfg.RedisPrefix)
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = internalsettings.DefaultRateLimitRedisPrefix
	}
	if cfg.RedisDB < 0 {
		cfg.RedisDB = 0
	}
	if cfg.Limit < 0 {
		cfg.Limit = 0
	}
	return cfg
}
