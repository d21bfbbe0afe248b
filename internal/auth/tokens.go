package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
)

// tokenTTL matches the one-hour sessions issued at login and registration.
const tokenTTL = time.Hour

// TokenManager issues and verifies HS256-signed session tokens with a local
// secret. Keys are symmetric because this service is the only issuer and the
// only verifier.
type TokenManager struct {
	secret []byte
}

// NewTokenManager creates a token manager from the configured secret.
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenManager{secret: []byte(secret)}, nil
}

// Issue signs a token for the user, expiring after one hour.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims. Every failure collapses
// to ErrUnauthorized; callers get no detail about why a token was rejected.
func (m *TokenManager) Verify(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Pin the algorithm to prevent confusion attacks
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
