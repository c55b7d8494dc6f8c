package auth

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	in := domain.Caller{TenantID: "acme", TenantName: "Acme", UserID: "u-1", Name: "Bea", Email: "bea@acme.test", Role: domain.SenderBusiness}

	token, _, err := tm.GenerateToken(in)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Caller() != in {
		t.Errorf("caller = %+v, want %+v", claims.Caller(), in)
	}

	if _, err := NewTokenManager("other", 5).ParseToken(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	noRole, _, _ := tm.GenerateToken(domain.Caller{TenantID: "acme", Name: "x"})
	if _, err := tm.ParseToken(noRole); err == nil {
		t.Error("token without role was accepted")
	}
}

func newTestApp(tm *TokenManager) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	mw := NewAuthMiddleware(tm)
	app.Get("/whoami", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Caller.TenantID)
	})
	app.Get("/tenant-name", mw.Handle, func(c *fiber.Ctx) error {
		p, _ := PrincipalFromContext(c)
		return c.SendString(p.Caller.TenantName)
	})
	app.Get("/support", mw.Handle, RequireSupport(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	app := newTestApp(tm)
	business, _, _ := tm.GenerateToken(domain.Caller{TenantID: "acme", Name: "Bea", Email: "b@a", Role: domain.SenderBusiness})
	support, _, _ := tm.GenerateToken(domain.Caller{TenantID: "desk", TenantName: "Support Desk", Name: "Sam", Email: "s@d", Role: domain.SenderSupport})

	tests := []struct {
		name       string
		path       string
		token      string
		tenant     string
		tenantName string
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", path: "/whoami", wantStatus: 401, wantBody: apperrors.CodeUnauthorized},
		{name: "bad token", path: "/whoami", token: "nope", wantStatus: 401, wantBody: apperrors.CodeUnauthorized},
		{name: "business own tenant", path: "/whoami", token: business, wantStatus: 200, wantBody: "acme"},
		{name: "business cannot switch tenant", path: "/whoami", token: business, tenant: "globex", wantStatus: 403, wantBody: apperrors.CodeForbidden},
		{name: "support switches tenant", path: "/whoami", token: support, tenant: "acme", wantStatus: 200, wantBody: "acme"},
		{name: "support override carries tenant name", path: "/tenant-name", token: support, tenant: "acme", tenantName: " Acme Corp ", wantStatus: 200, wantBody: "Acme Corp"},
		{name: "support keeps own tenant name", path: "/tenant-name", token: support, wantStatus: 200, wantBody: "Support Desk"},
		{name: "business on support route", path: "/support", token: business, wantStatus: 403, wantBody: apperrors.CodeForbidden},
		{name: "support route", path: "/support", token: support, wantStatus: 200, wantBody: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.tenant != "" {
				req.Header.Set(TenantHeader, tt.tenant)
			}
			if tt.tenantName != "" {
				req.Header.Set(TenantNameHeader, tt.tenantName)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.wantStatus || string(body) != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", resp.StatusCode, body, tt.wantStatus, tt.wantBody)
			}
		})
	}
}
