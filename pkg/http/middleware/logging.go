package middleware

import (
	"strings"
	"time"

	applogger "FinScope/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// quietRoutes are polled by probes and scrapers; they log at debug.
var quietRoutes = map[string]bool{"/metrics": true, "/api/health": true}

// AccessLog assigns a request id (kept from X-Request-ID when the caller
// sent one) and writes one line per request: error on 5xx, warn when slower
// than slow, debug for probe routes and info otherwise.
func AccessLog(l *applogger.Logger, slow time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := strings.TrimSpace(req.Header.Get(echo.HeaderXRequestID))
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			took := time.Since(start)

			route := c.Path()
			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("request_id", id),
				applogger.String("method", req.Method),
				applogger.String("route", route),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", status),
				applogger.Int64("bytes", c.Response().Size),
				applogger.Duration("took_ms", took),
			}
			if key := c.Response().Header().Get("X-Report-Key"); key != "" {
				fields = append(fields, applogger.String("report_key", key))
			}

			switch {
			case status >= 500:
				l.Error("http request failed", fields...)
			case slow > 0 && took >= slow:
				l.Warn("http request slow", fields...)
			case quietRoutes[route]:
				l.Debug("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
