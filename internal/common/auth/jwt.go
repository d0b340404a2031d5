// internal/common/auth/jwt.go

// Package auth validates bearer tokens issued by the external identity
// service. The coordinator never issues credentials; it only extracts
// the caller identity and role from tokens signed with a shared secret.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/models"
)

// TokenValidator checks HS256 bearer tokens.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Validate parses and verifies a token, returning the caller identity.
// Any parse, signature, or expiry problem yields UNAUTHORIZED.
func (v *TokenValidator) Validate(tokenString string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, errors.NewUnauthorizedError(fmt.Sprintf("invalid token: %v", err))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.NewUnauthorizedError("invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, errors.NewUnauthorizedError("token missing user_id claim")
	}

	return &models.Identity{
		UserID: userID,
		Role:   models.Role(role),
	}, nil
}

// GenerateToken mints a token the way the identity service does. Used
// by tests and local tooling.
func GenerateToken(secret, userID string, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
