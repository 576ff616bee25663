package usecase

import (
	"context"
	"math"

	"FinScope/internal/domain/models"

	"github.com/guregu/null/v6"
	"golang.org/x/sync/errgroup"
)

// fetchMacro loads the macro indicators, the headlines and the VIX series
// concurrently. Each failure leaves its field null and is reported as a
// failure entry; it never fails the run.
func (o *ReportOrchestrator) fetchMacro(ctx context.Context) (models.Macro, []models.Headline, []models.SymbolFailure) {
	var (
		tenYear, cpi, unemployment models.ScalarObservationSeries
		vix                        models.TimeSeries
		headlines                  []models.Headline
		errs                       = make([]error, 5)
	)

	var g errgroup.Group
	g.Go(func() error {
		tenYear, errs[0] = o.deps.Macro.Observations(ctx, SeriesTenYear)
		return nil
	})
	g.Go(func() error {
		cpi, errs[1] = o.deps.Macro.Observations(ctx, SeriesCPI)
		return nil
	})
	g.Go(func() error {
		unemployment, errs[2] = o.deps.Macro.Observations(ctx, SeriesUnemployment)
		return nil
	})
	g.Go(func() error {
		headlines, errs[3] = o.deps.News.Headlines(ctx)
		return nil
	})
	g.Go(func() error {
		vix, errs[4] = o.deps.Series.Series(ctx, o.cfg.VIXSymbol)
		return nil
	})
	_ = g.Wait()

	var (
		macro    models.Macro
		failures []models.SymbolFailure
	)
	fail := func(id string, err error) {
		failures = append(failures, models.SymbolFailure{Symbol: id, Error: err.Error()})
	}

	if errs[0] == nil {
		macro.TenYearYieldPct = lastObservation(tenYear)
	} else {
		fail(SeriesTenYear, errs[0])
	}
	if errs[1] == nil {
		macro.CPIYoYPct = YearOverYear(cpi)
	} else {
		fail(SeriesCPI, errs[1])
	}
	if errs[2] == nil {
		macro.UnemploymentRatePct = lastObservation(unemployment)
	} else {
		fail(SeriesUnemployment, errs[2])
	}
	if errs[3] != nil {
		fail("news", errs[3])
		headlines = nil
	}
	if headlines == nil {
		headlines = []models.Headline{}
	}
	if errs[4] == nil {
		macro.VIXLast = lastValue(vix)
	} else {
		fail(o.cfg.VIXSymbol, errs[4])
	}
	return macro, headlines, failures
}

// YearOverYear is the percent change between the latest valid observation
// and the one twelve periods earlier. It needs at least 13 valid points and a
// positive base.
func YearOverYear(s models.ScalarObservationSeries) null.Float {
	obs := s.Valid()
	n := len(obs)
	if n < 13 {
		return null.Float{}
	}
	last, base := obs[n-1].Value.Float64, obs[n-13].Value.Float64
	if !(base > 0) {
		return null.Float{}
	}
	return finite((last/base - 1) * 100)
}

func lastObservation(s models.ScalarObservationSeries) null.Float {
	obs := s.Valid()
	if len(obs) == 0 {
		return null.Float{}
	}
	return finite(obs[len(obs)-1].Value.Float64)
}

func lastValue(ts models.TimeSeries) null.Float {
	for i := len(ts.Values) - 1; i >= 0; i-- {
		if v := ts.Values[i]; v.Valid {
			return finite(v.Float64)
		}
	}
	return null.Float{}
}

func finite(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
