package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims carries the admin identity inside a session token.
type AdminClaims struct {
	AdminID  uint64 `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CreateAdminToken mints a signed admin session token.
func CreateAdminToken(secret string, expiry time.Duration, adminID uint64, username string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("security: empty jwt secret")
	}
	now := time.Now().UTC()
	claims := AdminClaims{
		AdminID:  adminID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseAdminToken validates a session token and returns its claims.
func ParseAdminToken(secret, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, errParse := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil {
		return nil, fmt.Errorf("security: parse token: %w", errParse)
	}
	if !token.Valid {
		return nil, fmt.Errorf("security: invalid token")
	}
	return claims, nil
}
