package analytics

import (
	"context"
	"errors"

	"FinScope/internal/domain/models"
)

// HTTPAdvisor requests an investment signal for positions and macro context.
type HTTPAdvisor struct {
	*HTTPServiceBase
}

func NewHTTPAdvisor(base *HTTPServiceBase) *HTTPAdvisor {
	return &HTTPAdvisor{HTTPServiceBase: base}
}

type investReq struct {
	Positions []models.Position `json:"positions"`
	Macro     models.Macro      `json:"macro"`
}

func (a *HTTPAdvisor) Invest(ctx context.Context, positions []models.Position, macro models.Macro) (models.InvestSignal, error) {
	var out models.InvestSignal
	if err := a.PostJSON(ctx, "/invest", investReq{Positions: positions, Macro: macro}, &out); err != nil {
		return models.InvestSignal{}, err
	}
	if out.Error != "" {
		return models.InvestSignal{}, errors.New(out.Error)
	}
	return out, nil
}
