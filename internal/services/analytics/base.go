package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	xhttp "FinScope/pkg/http"
)

// HTTPServiceBase is the shared foundation of the analytics HTTP clients.
// It centralizes client construction and JSON request handling.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPServiceBase builds a client against baseURL. Temporary failures are
// retried up to attempts times in total.
func NewHTTPServiceBase(baseURL string, timeout time.Duration, attempts int) *HTTPServiceBase {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithRetry(attempts, 100*time.Millisecond),
		),
	}
}

// PostJSON posts the given payload to `path` under baseURL and decodes JSON into dest.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	return b.send(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, dest)
}

// GetJSON issues a GET to `path` with query and decodes JSON into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	return b.send(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + path,
		QueryParams: query,
	}, dest)
}

func (b *HTTPServiceBase) send(ctx context.Context, opts *xhttp.RequestOptions, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("analytics http client not initialized")
	}
	if err := b.client.SendAndParse(ctx, opts, dest); err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(opts.Method), strings.TrimPrefix(opts.URL, b.baseURL), err)
	}
	return nil
}
