package market

import (
	"time"

	applogger "FinScope/pkg/logger"

	"golang.org/x/time/rate"
)

type clientConfig struct {
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	log     *applogger.Logger
}

// ClientOption configures a provider client.
type ClientOption func(*clientConfig)

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit caps outbound calls per second. Non-positive disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *clientConfig) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the client logger.
func WithLogger(l *applogger.Logger) ClientOption {
	return func(c *clientConfig) {
		if l != nil {
			c.log = l
		}
	}
}

func newClientConfig(baseURL string, timeout time.Duration, opts []ClientOption) *clientConfig {
	cfg := &clientConfig{
		baseURL: baseURL,
		timeout: timeout,
		log:     applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
