package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// TenantHeader lets support staff act within a tenant other than their own.
// TenantNameHeader carries that tenant's display name.
const (
	TenantHeader     = "X-Tenant-ID"
	TenantNameHeader = "X-Tenant-Name"
)

// Principal represents the authenticated caller.
type Principal struct {
	Caller domain.Caller
	// HomeTenantID is the tenant named in the token, before any support override.
	HomeTenantID string
}

// IsSupport reports whether the caller is a support responder.
func (p *Principal) IsSupport() bool {
	return p.Caller.Role == domain.SenderSupport
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{Caller: claims.Caller(), HomeTenantID: claims.TenantID}
	if override := strings.TrimSpace(c.Get(TenantHeader)); override != "" && override != claims.TenantID {
		if !principal.IsSupport() {
			return apperrors.NewForbidden("only support may act for another tenant")
		}
		principal.Caller.TenantID = override
		principal.Caller.TenantName = strings.TrimSpace(c.Get(TenantNameHeader))
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
