package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWith(scopes []string, roles []string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/claims", nil)
	ctx := req.Context()
	ctx = context.WithValue(ctx, UserScopesKey, scopes)
	ctx = context.WithValue(ctx, UserRolesKey, roles)
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctx), rec)
	return c
}

func TestRequireScope_Allows(t *testing.T) {
	c := contextWith([]string{"edi:read", "edi:write"}, nil)

	called := false
	err := RequireScope("edi:write")(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequireScope_Wildcard(t *testing.T) {
	c := contextWith([]string{"edi:*"}, nil)

	err := RequireScope("edi:write")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireScope_Denies(t *testing.T) {
	c := contextWith([]string{"edi:read"}, nil)

	err := RequireScope("edi:write")(func(c echo.Context) error {
		t.Error("handler should not be called")
		return nil
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_AdminOverride(t *testing.T) {
	c := contextWith(nil, []string{"admin"})

	err := RequireRole("biller")(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireRole_Denies(t *testing.T) {
	c := contextWith(nil, []string{"viewer"})

	err := RequireRole("biller")(func(c echo.Context) error {
		t.Error("handler should not be called")
		return nil
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}
