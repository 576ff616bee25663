package analytics

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"FinScope/internal/domain/models"
	xhttp "FinScope/pkg/http"
)

// HTTPPersonalFinance reads the bank summary exposed by the analytics service.
type HTTPPersonalFinance struct {
	*HTTPServiceBase
}

func NewHTTPPersonalFinance(base *HTTPServiceBase) *HTTPPersonalFinance {
	return &HTTPPersonalFinance{HTTPServiceBase: base}
}

type bankSummaryResp struct {
	models.PersonalFinance
	Available *bool `json:"available"`
}

// Summary returns nil, nil when no bank account is linked (404 or
// available=false).
func (p *HTTPPersonalFinance) Summary(ctx context.Context, days int) (*models.PersonalFinance, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))

	var out bankSummaryResp
	if err := p.GetJSON(ctx, "/bank_summary", q, &out); err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, nil
		}
		return nil, err
	}
	if out.Error != "" {
		return nil, errors.New(out.Error)
	}
	if out.Available != nil && !*out.Available {
		return nil, nil
	}
	pf := out.PersonalFinance
	if pf.WindowDays == 0 {
		pf.WindowDays = days
	}
	return &pf, nil
}
