package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"FinScope/internal/domain/models"
)

// HTTPForecaster fetches point forecasts from the analytics service.
type HTTPForecaster struct {
	*HTTPServiceBase
}

func NewHTTPForecaster(base *HTTPServiceBase) *HTTPForecaster {
	return &HTTPForecaster{HTTPServiceBase: base}
}

type forecastResp struct {
	models.Forecast
	Error string `json:"error"`
}

func (f *HTTPForecaster) Forecast(ctx context.Context, symbol string, horizon int) (models.Forecast, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("horizon", strconv.Itoa(horizon))

	var out forecastResp
	if err := f.GetJSON(ctx, "/forecast", q, &out); err != nil {
		return models.Forecast{}, err
	}
	if out.Error != "" {
		return models.Forecast{}, errors.New(out.Error)
	}
	if len(out.Forecast.Forecast) == 0 {
		return models.Forecast{}, fmt.Errorf("forecast %s: empty", symbol)
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return out.Forecast, nil
}
