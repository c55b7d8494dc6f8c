package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttlMinutes int) *TokenManager {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &TokenManager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes JWT payload. The subject claim carries the user id.
type Claims struct {
	TenantID   string            `json:"tenant_id"`
	TenantName string            `json:"tenant_name,omitempty"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Role       domain.SenderRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT for the caller. cmd/tokengen exposes it to operators.
func (tm *TokenManager) GenerateToken(caller domain.Caller) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		TenantID:   caller.TenantID,
		TenantName: caller.TenantName,
		Name:       caller.Name,
		Email:      caller.Email,
		Role:       caller.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TenantID == "" || !claims.Role.Valid() {
		return nil, errors.New("token lacks tenant or role")
	}
	return claims, nil
}

// Caller converts claims into the identity passed to the ticket service.
func (c *Claims) Caller() domain.Caller {
	return domain.Caller{
		TenantID:   c.TenantID,
		TenantName: c.TenantName,
		UserID:     c.Subject,
		Name:       c.Name,
		Email:      c.Email,
		Role:       c.Role,
	}
}
