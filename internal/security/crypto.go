package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// Cipher encrypts and decrypts stored provider credentials with AES-GCM.
// The key is derived from a passphrase so operators can rotate it via config.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives an AES-256-GCM cipher from the passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	passphrase = strings.TrimSpace(passphrase)
	if passphrase == "" {
		return nil, fmt.Errorf("security: empty encryption key")
	}
	key := sha256.Sum256([]byte(passphrase))
	block, errBlock := aes.NewCipher(key[:])
	if errBlock != nil {
		return nil, fmt.Errorf("security: init cipher: %w", errBlock)
	}
	aead, errGCM := cipher.NewGCM(block)
	if errGCM != nil {
		return nil, fmt.Errorf("security: init gcm: %w", errGCM)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns a base64 nonce||ciphertext blob.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if c == nil || c.aead == nil {
		return "", fmt.Errorf("security: cipher not initialized")
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, errRead := io.ReadFull(rand.Reader, nonce); errRead != nil {
		return "", fmt.Errorf("security: nonce: %w", errRead)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a blob produced by Encrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	if c == nil || c.aead == nil {
		return "", fmt.Errorf("security: cipher not initialized")
	}
	sealed, errDecode := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if errDecode != nil {
		return "", fmt.Errorf("security: decode ciphertext: %w", errDecode)
	}
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize {
		return "", fmt.Errorf("security: ciphertext too short")
	}
	plaintext, errOpen := c.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if errOpen != nil {
		return "", fmt.Errorf("security: decrypt: %w", errOpen)
	}
	return string(plaintext), nil
}
