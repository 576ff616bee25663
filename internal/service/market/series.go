package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	svcmetrics "FinScope/internal/service/metrics"
	xhttp "FinScope/pkg/http"
	applogger "FinScope/pkg/logger"

	"golang.org/x/time/rate"
)

// SeriesClient fetches daily closes from the market-data service.
type SeriesClient struct {
	baseURL  string
	period   string
	interval string
	client   *xhttp.Client
	limiter  *rate.Limiter
	log      *applogger.Logger
}

// NewSeriesClient creates a client for GET {baseURL}/market.
func NewSeriesClient(baseURL, period, interval string, opts ...ClientOption) *SeriesClient {
	cfg := newClientConfig(baseURL, 15*time.Second, opts)
	return &SeriesClient{
		baseURL:  strings.TrimRight(cfg.baseURL, "/"),
		period:   period,
		interval: interval,
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.timeout)),
		limiter:  cfg.limiter,
		log:      cfg.log,
	}
}

type marketResp struct {
	models.TimeSeries
	Error string `json:"error"`
}

// Series returns the series for symbol over the configured window, or a
// *FetchError.
func (c *SeriesClient) Series(ctx context.Context, symbol string) (models.TimeSeries, error) {
	return c.SeriesWindow(ctx, symbol, c.period, c.interval)
}

// SeriesWindow is Series with an explicit period and interval.
func (c *SeriesClient) SeriesWindow(ctx context.Context, symbol, period, interval string) (ts models.TimeSeries, err error) {
	start := time.Now()
	defer func() { svcmetrics.ObserveProvider("market", start, err) }()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.TimeSeries{}, fetchErr("market", symbol, err)
		}
	}

	var out marketResp
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/market",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"period":   {period},
			"interval": {interval},
		},
	}, &out)
	if err != nil {
		return models.TimeSeries{}, fetchErr("market", symbol, err)
	}
	if out.Error != "" {
		return models.TimeSeries{}, fetchErr("market", symbol, errors.New(out.Error))
	}
	if err := out.TimeSeries.Validate(); err != nil {
		return models.TimeSeries{}, fetchErr("market", symbol, err)
	}
	if out.TimeSeries.Len() == 0 {
		return models.TimeSeries{}, fetchErr("market", symbol, fmt.Errorf("no data"))
	}

	c.log.Debug("market series fetched",
		applogger.String("symbol", symbol),
		applogger.String("period", period),
		applogger.Int("points", out.TimeSeries.Len()))
	return out.TimeSeries, nil
}
