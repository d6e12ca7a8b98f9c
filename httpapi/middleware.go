package httpapi

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// requestLogger emits one slog line per request.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			status := c.Response().Status
			attrs := []any{
				"method", req.Method,
				"route", c.Path(),
				"path", req.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			switch {
			case status >= 500:
				slog.Error("request", attrs...)
			case status >= 400:
				slog.Warn("request", attrs...)
			default:
				slog.Debug("request", attrs...)
			}
			return err
		}
	}
}
