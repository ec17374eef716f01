package settings

// SystemConfig captures the generation-related settings read per request.
type SystemConfig struct {
	MaintenanceMode bool
	OpenAIModel     string
	OpenAIMaxTokens int
}

// Provider supplies the latest system settings view. Handlers depend on
// this interface rather than the package-level snapshot directly.
type Provider interface {
	System() SystemConfig
}

// SnapshotProvider serves system settings from the in-memory DB snapshot.
type SnapshotProvider struct{}

// System returns the current system settings with defaults applied.
func (SnapshotProvider) System() SystemConfig {
	return LoadSystemConfig()
}

// LoadSystemConfig loads the current system settings snapshot.
func LoadSystemConfig() SystemConfig {
	cfg := SystemConfig{
		MaintenanceMode: DefaultMaintenanceMode,
		OpenAIModel:     DefaultOpenAIModel,
		OpenAIMaxTokens: DefaultOpenAIMaxTokens,
	}

	if raw, ok := DBConfigValue(MaintenanceModeKey); ok {
		if enabled, okParse := ParseBoolValue(raw); okParse {
			cfg.MaintenanceMode = enabled
		}
	}
	if raw, ok := DBConfigValue(OpenAIModelKey); ok {
		if model, okParse := ParseStringValue(raw); okParse && model != "" {
			cfg.OpenAIModel = model
		}
	}
	if raw, ok := DBConfigValue(OpenAIMaxTokensKey); ok {
		if maxTokens, okParse := ParsePositiveIntValue(raw); okParse {
			cfg.OpenAIMaxTokens = maxTokens
		}
	}
	return cfg
}

// EncryptedProviderKey returns the stored encrypted provider credential.
func EncryptedProviderKey() (string, bool) {
	raw, ok := DBConfigValue(OpenAIAPIKeyKey)
	if !ok {
		return "", false
	}
	value, okParse := ParseStringValue(raw)
	if !okParse || value == "" {
		return "", false
	}
	return value, true
}
