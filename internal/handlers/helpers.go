package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mrvvsreddy/school-p1/internal/logging"
	"github.com/mrvvsreddy/school-p1/internal/mykafka"
)

// internalError hides the failure from the client and keeps the detail in
// the server log.
func internalError(c echo.Context, msg string, err error) error {
	logging.FromContext(c.Request().Context()).Error(msg, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func tooManyRequests(c echo.Context, msg string, retryAfter time.Duration) error {
	secs := int(retryAfter.Seconds())
	if secs < 1 {
		secs = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, echo.Map{
		"error":       "too_many_requests",
		"message":     msg,
		"retry_after": secs,
	})
}

// publish sends a domain event without failing the request; broker trouble
// is logged and swallowed.
func publish(c echo.Context, producer *mykafka.Producer, topic, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish failed", "topic", topic, "error", err)
	}
}

// pathID parses the :id route param; a malformed id behaves like a missing
// row instead of surfacing a database error.
func pathID(c echo.Context, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	return id, nil
}

func pathIntID(c echo.Context, notFound string) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseBoolDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return def
}
