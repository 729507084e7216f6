package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mrvvsreddy/school-p1/internal/token"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxClaims   = "claims"
)

// Role tiers used at route registration.
var (
	AdminRoles  = []string{"admin", "super_admin"}
	EditorRoles = []string{"admin", "super_admin", "editor"}
)

// RequireAuth validates the auth token from the auth_token cookie or, when
// the cookie is absent, from a Bearer Authorization header. Cookie wins when
// both are present. Verified claims land in the request context.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated - no token provided")
			}

			claims, err := tokens.Verify(raw)
			switch {
			case err == nil:
			case err == token.ErrExpired:
				return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired. Please login again.")
			case err == token.ErrNotConfigured:
				return echo.NewHTTPError(http.StatusInternalServerError, "Server not configured")
			default:
				return echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxClaims, claims)

			return next(c)
		}
	}
}

// RequireRole gates on the role stored by RequireAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing role")
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights to see this page")
			}
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(token.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
