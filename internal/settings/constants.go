package settings

// DB config keys and defaults for settings.
const (
	// MaintenanceModeKey toggles the system-wide maintenance flag.
	MaintenanceModeKey = "MAINTENANCE_MODE"
	// OpenAIModelKey is the model name used for generation requests.
	OpenAIModelKey = "OPENAI_MODEL"
	// OpenAIMaxTokensKey caps the tokens requested per generation.
	OpenAIMaxTokensKey = "OPENAI_MAX_TOKENS"
	// OpenAIAPIKeyKey stores the encrypted provider credential.
	OpenAIAPIKeyKey = "OPENAI_API_KEY"
	// RateLimitKey controls the per-user request rate limit per second.
	RateLimitKey = "RATE_LIMIT"
	// RateLimitRedisEnabledKey toggles Redis-backed rate limiting.
	RateLimitRedisEnabledKey = "RATE_LIMIT_REDIS_ENABLED"
	// RateLimitRedisAddrKey defines the Redis address for rate limiting.
	RateLimitRedisAddrKey = "RATE_LIMIT_REDIS_ADDR"
	// RateLimitRedisPasswordKey defines the Redis password for rate limiting.
	RateLimitRedisPasswordKey = "RATE_LIMIT_REDIS_PASSWORD"
	// RateLimitRedisDBKey defines the Redis DB index for rate limiting.
	RateLimitRedisDBKey = "RATE_LIMIT_REDIS_DB"
	// RateLimitRedisPrefixKey defines the Redis key prefix for rate limiting.
	RateLimitRedisPrefixKey = "RATE_LIMIT_REDIS_PREFIX"

	// DefaultMaintenanceMode keeps the service open unless switched off.
	DefaultMaintenanceMode = false
	// DefaultOpenAIModel is the fallback generation model.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIMaxTokens is the fallback token cap per generation.
	DefaultOpenAIMaxTokens = 1000
	// DefaultRateLimit is the fallback rate limit (0 means unlimited).
	DefaultRateLimit = 0
	// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultRateLimitRedisPrefix = "lca:rl"
)
