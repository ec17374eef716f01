package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// apiKeyPrefix marks extension credentials issued by this backend.
const apiKeyPrefix = "lc-"

// GenerateAPIKey returns a new random extension credential.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, errRead := rand.Read(buf); errRead != nil {
		return "", fmt.Errorf("security: generate api key: %w", errRead)
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}
