package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireScope rejects requests whose token does not carry the given scope.
// A wildcard "edi:*" scope satisfies any edi requirement.
func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scopes := ScopesFromContext(c.Request().Context())
			for _, s := range scopes {
				if s == scope || s == "edi:*" {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient scope")
		}
	}
}

// RequireRole rejects requests whose token does not carry the given role.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, r := range RolesFromContext(c.Request().Context()) {
				if r == role || r == "admin" {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		}
	}
}
