package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
	"github.com/mrvvsreddy/school-p1/internal/token"
)

var testSecret = []byte("test-secret")

func issueToken(t *testing.T, role string) string {
	t.Helper()
	svc := token.NewService(testSecret, 0)
	raw, err := svc.Issue(token.Claims{Username: "admin", UserID: 1, Role: role}, 0)
	require.NoError(t, err)
	return raw
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"role": c.Get(CtxRole)})
}

func TestRequireAuthNoToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(token.NewService(testSecret, 0))(okHandler)
	err := h(c)

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAuthFromCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: issueToken(t, "admin")})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(token.NewService(testSecret, 0))(okHandler)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint(1), c.Get(CtxUserID))
	require.Equal(t, "admin", c.Get(CtxRole))
}

func TestRequireAuthFromBearerHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueToken(t, "editor"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(token.NewService(testSecret, 0))(okHandler)
	require.NoError(t, h(c))
	require.Equal(t, "editor", c.Get(CtxRole))
}

func TestRequireAuthCookieBeatsHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: issueToken(t, "admin")})
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(token.NewService(testSecret, 0))(okHandler)
	require.NoError(t, h(c))
	require.Equal(t, "admin", c.Get(CtxRole))
}

func TestRequireAuthExpiredToken(t *testing.T) {
	svc := token.NewService(testSecret, 0)
	raw, err := svc.Issue(token.Claims{Username: "admin", UserID: 1, Role: "admin"}, -time.Minute)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: raw})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(svc)(okHandler)
	herr := h(c)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
	require.Contains(t, he.Message, "expired")
}

func TestRequireAuthUnconfiguredSecret(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "anything"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireAuth(token.NewService(nil, 0))(okHandler)
	herr := h(c)
	he, ok := herr.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, he.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(role string, allowed ...string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(CtxRole, role)
		return RequireRole(allowed...)(okHandler)(c)
	}

	require.NoError(t, run("admin", AdminRoles...))
	require.NoError(t, run("super_admin", AdminRoles...))
	require.NoError(t, run("admin", EditorRoles...))
	require.NoError(t, run("editor", EditorRoles...))

	err := run("editor", AdminRoles...)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	guard := ratelimit.New()
	mw := RateLimit(guard, ratelimit.CategoryLogin)

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, mw(okHandler)(c))
		return rec
	}

	for i := 0; i < 5; i++ {
		rec := do("203.0.113.7")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := do("203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = do("203.0.113.8")
	require.Equal(t, http.StatusOK, rec.Code, "other client unaffected")
}

func TestRateLimitMiddlewareBlockedIP(t *testing.T) {
	e := echo.New()
	guard := ratelimit.New()
	guard.Block("203.0.113.9", 0)
	mw := RateLimit(guard, ratelimit.CategoryAPIGeneral)

	req := httptest.NewRequest(http.MethodGet, "/api/students", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw(okHandler)(c))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
