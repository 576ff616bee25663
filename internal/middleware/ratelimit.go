package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	domrepo "FinScope/internal/domain/repository"
	"FinScope/internal/service/ratelimit"
	xhttp "FinScope/pkg/http"
	applogger "FinScope/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ClientRateLimit throttles expensive endpoints per client IP. Rejected
// requests get 429 with Retry-After instead of queueing.
type ClientRateLimit struct {
	limiter *ratelimit.Limiter
	metrics domrepo.Metrics
	log     *applogger.Logger
	keyFn   func(echo.Context) string
}

type RateLimitOption func(*ClientRateLimit)

// WithKeyFunc overrides how the client key is derived (default: real IP).
func WithKeyFunc(fn func(echo.Context) string) RateLimitOption {
	return func(r *ClientRateLimit) {
		if fn != nil {
			r.keyFn = fn
		}
	}
}

func NewClientRateLimit(limiter *ratelimit.Limiter, metrics domrepo.Metrics, l *applogger.Logger, opts ...RateLimitOption) *ClientRateLimit {
	if l == nil {
		l = applogger.NewNop()
	}
	r := &ClientRateLimit{
		limiter: limiter,
		metrics: metrics,
		log:     l,
		keyFn:   func(c echo.Context) string { return c.RealIP() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Middleware returns the Echo middleware. A nil receiver lets everything through.
func (r *ClientRateLimit) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r == nil || r.limiter == nil {
				return next(c)
			}
			key := r.keyFn(c)
			if r.limiter.Allow(key) {
				return next(c)
			}

			wait := r.limiter.RetryAfter(key)
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			if r.metrics != nil {
				r.metrics.RecordError("rate_limited")
			}
			r.log.Warn("client rate limited",
				applogger.String("client", key),
				applogger.String("path", c.Path()),
				applogger.Int("retry_after_s", secs))

			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
			appErr := xhttp.TooManyRequestsError("Too many report requests, slow down").
				WithParam("retry_after", secs)
			return xhttp.JSONResponse(c, http.StatusTooManyRequests, map[string]interface{}{
				"error":       appErr.Message,
				"code":        appErr.Code,
				"retry_after": secs,
			})
		}
	}
}

// Run drops idle buckets every interval until ctx is done.
func (r *ClientRateLimit) Run(ctx context.Context, interval time.Duration) {
	if r == nil || r.limiter == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.limiter.Sweep(); n > 0 {
				r.log.Debug("rate limit buckets swept", applogger.Int("removed", n))
			}
		}
	}
}
