package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/pkg/cache"
)

// ShareConfig bounds share lifetimes.
type ShareConfig struct {
	DefaultTTL time.Duration
	MinTTL     time.Duration
	MaxTTL     time.Duration
	Origin     string
}

// Share is a created share link.
type Share struct {
	Token      string `json:"token"`
	URL        string `json:"url"`
	TTLSeconds int    `json:"ttl_seconds"`
}

// ShareService publishes reports under short-lived public tokens.
type ShareService struct {
	cache cache.Service
	last  *LastReportStore
	cfg   ShareConfig
}

func NewShareService(c cache.Service, last *LastReportStore, cfg ShareConfig) *ShareService {
	if cfg.MinTTL <= 0 {
		cfg.MinTTL = 5 * time.Minute
	}
	if cfg.MaxTTL < cfg.MinTTL {
		cfg.MaxTTL = 24 * time.Hour
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	return &ShareService{cache: c, last: last, cfg: cfg}
}

// TTL clamps a requested lifetime in seconds; zero or less picks the default.
func (s *ShareService) TTL(seconds int) time.Duration {
	ttl := s.cfg.DefaultTTL
	if seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}
	if ttl < s.cfg.MinTTL {
		ttl = s.cfg.MinTTL
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}
	return ttl
}

// Create shares report, or the latest report when report is nil.
func (s *ShareService) Create(ctx context.Context, report *models.Report, ttlSeconds int) (*Share, error) {
	if report == nil && s.last != nil {
		report, _, _ = s.last.Latest()
	}
	if report == nil {
		return nil, ErrNoReport
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	ttl := s.TTL(ttlSeconds)
	if err := s.cache.Set(ctx, shareKey(token), report, ttl); err != nil {
		return nil, fmt.Errorf("store share: %w", err)
	}
	return &Share{
		Token:      token,
		URL:        strings.TrimSuffix(s.cfg.Origin, "/") + "/share/" + token,
		TTLSeconds: int(ttl / time.Second),
	}, nil
}

// Get loads a shared report.
func (s *ShareService) Get(ctx context.Context, token string) (*models.Report, error) {
	if token == "" {
		return nil, ErrShareNotFound
	}
	var r models.Report
	if err := s.cache.Get(ctx, shareKey(token), &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrShareNotFound
		}
		return nil, fmt.Errorf("load share: %w", err)
	}
	return &r, nil
}

func shareKey(token string) string {
	return cache.Key("share", token)
}

func newToken() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
