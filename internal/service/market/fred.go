package market

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	svcmetrics "FinScope/internal/service/metrics"
	xhttp "FinScope/pkg/http"
	applogger "FinScope/pkg/logger"

	"github.com/guregu/null/v6"
	"golang.org/x/time/rate"
)

const fredMissing = "."

// FREDClient reads series observations from the St. Louis Fed API.
type FREDClient struct {
	apiKey  string
	baseURL string
	client  *xhttp.Client
	limiter *rate.Limiter
	log     *applogger.Logger
}

func NewFREDClient(apiKey string, opts ...ClientOption) *FREDClient {
	cfg := newClientConfig("https://api.stlouisfed.org", 15*time.Second, opts)
	return &FREDClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(cfg.baseURL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.timeout)),
		limiter: cfg.limiter,
		log:     cfg.log,
	}
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type fredResp struct {
	Observations []fredObservation `json:"observations"`
	ErrorMessage string            `json:"error_message"`
}

// Observations returns seriesID with the "." marker decoded as invalid values.
// A series with no usable value is a *FetchError.
func (c *FREDClient) Observations(ctx context.Context, seriesID string) (series models.ScalarObservationSeries, err error) {
	start := time.Now()
	defer func() { svcmetrics.ObserveProvider("fred", start, err) }()

	if c.apiKey == "" {
		return models.ScalarObservationSeries{}, fetchErr("fred", seriesID, errors.New("FRED API key not configured"))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.ScalarObservationSeries{}, fetchErr("fred", seriesID, err)
		}
	}

	var body []byte
	err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/fred/series/observations",
		QueryParams: map[string][]string{
			"series_id": {seriesID},
			"api_key":   {c.apiKey},
			"file_type": {"json"},
		},
	}, &body)
	if err != nil {
		return models.ScalarObservationSeries{}, fetchErr("fred", seriesID, err)
	}

	series, err = parseFRED(body)
	if err != nil {
		return models.ScalarObservationSeries{}, fetchErr("fred", seriesID, err)
	}
	c.log.Debug("fred series fetched", applogger.String("series", seriesID), applogger.Int("observations", len(series.Observations)))
	return series, nil
}

func parseFRED(body []byte) (models.ScalarObservationSeries, error) {
	var resp fredResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.ScalarObservationSeries{}, err
	}
	if resp.ErrorMessage != "" {
		return models.ScalarObservationSeries{}, errors.New(resp.ErrorMessage)
	}

	out := models.ScalarObservationSeries{Observations: make([]models.Observation, 0, len(resp.Observations))}
	found := false
	for _, o := range resp.Observations {
		obs := models.Observation{Date: o.Date}
		if o.Value != fredMissing {
			if v, err := strconv.ParseFloat(o.Value, 64); err == nil {
				obs.Value = null.FloatFrom(v)
				out.Last = v
				found = true
			}
		}
		out.Observations = append(out.Observations, obs)
	}
	if !found {
		return models.ScalarObservationSeries{}, errors.New("FRED observations missing")
	}
	return out, nil
}
