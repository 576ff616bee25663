package market

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	svcmetrics "FinScope/internal/service/metrics"
	xhttp "FinScope/pkg/http"
	applogger "FinScope/pkg/logger"
	"FinScope/pkg/util"

	"golang.org/x/time/rate"
)

// NewsClient reads market headlines from Finnhub when a key is configured and
// from the free headline feed otherwise or when Finnhub fails. It never
// returns an error: a total failure yields an empty list.
type NewsClient struct {
	finnhubKey  string
	finnhubURL  string
	category    string
	limit       int
	fallbackURL string
	client      *xhttp.Client
	limiter     *rate.Limiter
	log         *applogger.Logger
}

// NewNewsClient creates a news client. fallbackURL is the base URL of the
// service exposing GET /news.
func NewNewsClient(finnhubKey, category string, limit int, fallbackURL string, opts ...ClientOption) *NewsClient {
	cfg := newClientConfig("https://finnhub.io", 8*time.Second, opts)
	if category == "" {
		category = "general"
	}
	if limit <= 0 {
		limit = 50
	}
	return &NewsClient{
		finnhubKey:  finnhubKey,
		finnhubURL:  strings.TrimRight(cfg.baseURL, "/"),
		category:    category,
		limit:       limit,
		fallbackURL: strings.TrimRight(fallbackURL, "/"),
		client:      xhttp.NewClient(xhttp.WithTimeout(cfg.timeout)),
		limiter:     cfg.limiter,
		log:         cfg.log,
	}
}

type finnhubItem struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

type fallbackItem struct {
	Title       string          `json:"title"`
	Headline    string          `json:"headline"`
	Source      json.RawMessage `json:"source"`
	URL         string          `json:"url"`
	PublishedAt string          `json:"publishedAt"`
}

func (c *NewsClient) Headlines(ctx context.Context) ([]models.Headline, error) {
	if c.finnhubKey != "" {
		items, err := c.finnhub(ctx)
		if err == nil {
			return c.trim(items), nil
		}
		c.log.Warn("finnhub news failed, using fallback feed", applogger.Error(err))
	}

	if c.fallbackURL != "" {
		items, err := c.fallback(ctx)
		if err == nil {
			return c.trim(items), nil
		}
		c.log.Warn("fallback news feed failed", applogger.Error(err))
	}
	return []models.Headline{}, nil
}

func (c *NewsClient) finnhub(ctx context.Context) (out []models.Headline, err error) {
	start := time.Now()
	defer func() { svcmetrics.ObserveProvider("finnhub", start, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var items []finnhubItem
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.finnhubURL + "/api/v1/news",
		QueryParams: map[string][]string{
			"category": {c.category},
			"token":    {c.finnhubKey},
		},
	}, &items)
	if err != nil {
		return nil, err
	}

	out = make([]models.Headline, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Headline) == "" {
			continue
		}
		h := models.Headline{Title: it.Headline, Source: it.Source, URL: it.URL}
		if it.Datetime > 0 {
			h.PublishedAt = time.Unix(it.Datetime, 0).UTC().Format(time.RFC3339)
		}
		out = append(out, h)
	}
	return out, nil
}

func (c *NewsClient) fallback(ctx context.Context) (out []models.Headline, err error) {
	start := time.Now()
	defer func() { svcmetrics.ObserveProvider("news", start, err) }()

	var body []byte
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.fallbackURL + "/news",
	}, &body)
	if err != nil {
		return nil, err
	}
	return parseFallbackNews(body)
}

// parseFallbackNews accepts either a bare array or {"headlines"|"articles": [...]}.
// Source may be a string or {"name": "..."}.
func parseFallbackNews(body []byte) ([]models.Headline, error) {
	var items []fallbackItem
	if err := json.Unmarshal(body, &items); err != nil {
		var wrapped struct {
			Headlines []fallbackItem `json:"headlines"`
			Articles  []fallbackItem `json:"articles"`
			Error     string         `json:"error"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, err
		}
		if wrapped.Error != "" {
			return nil, errors.New(wrapped.Error)
		}
		items = append(wrapped.Headlines, wrapped.Articles...)
	}

	out := make([]models.Headline, 0, len(items))
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = it.Headline
		}
		if strings.TrimSpace(title) == "" {
			continue
		}
		h := models.Headline{Title: title, Source: sourceName(it.Source), URL: it.URL}
		if t, ok := util.ParseTime(it.PublishedAt); ok {
			h.PublishedAt = t.UTC().Format(time.RFC3339)
		}
		out = append(out, h)
	}
	return out, nil
}

func sourceName(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func (c *NewsClient) trim(items []models.Headline) []models.Headline {
	if len(items) > c.limit {
		return items[:c.limit]
	}
	return items
}
