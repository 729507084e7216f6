package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mrvvsreddy/school-p1/internal/logging"
	"github.com/mrvvsreddy/school-p1/internal/ratelimit"
)

// RateLimit enforces the category's sliding-window limit keyed by client IP,
// rejecting outright while the IP is locked out. Echo's RealIP takes the
// first X-Forwarded-For hop when present, so this trusts that header only as
// far as the proxy in front of the service does.
func RateLimit(guard *ratelimit.Limiter, cat ratelimit.Category) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			if d := guard.BlockedFor(ip); d > 0 {
				return tooManyRequests(c, "Too many requests. Please try again later.", d)
			}

			allowed, retryAfter := guard.Check(ip, cat)

			lim := guard.LimitFor(cat)
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(lim.MaxRequests))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(guard.Remaining(ip, cat)))

			if !allowed {
				logging.FromContext(c.Request().Context()).
					Warn("rate limit exceeded", "ip", ip, "category", string(cat))
				return tooManyRequests(c, "Rate limit exceeded. Please wait before making more requests.", retryAfter)
			}

			return next(c)
		}
	}
}

func tooManyRequests(c echo.Context, msg string, retryAfter time.Duration) error {
	secs := int(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"error":       "too_many_requests",
		"message":     msg,
		"retry_after": secs,
	})
}
