package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/service"

	"github.com/guregu/null/v6"
)

type fakeSeries struct {
	data  map[string]models.TimeSeries
	calls atomic.Int32
	gate  chan struct{}
}

func (f *fakeSeries) Series(ctx context.Context, symbol string) (models.TimeSeries, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return models.TimeSeries{}, ctx.Err()
		}
	}
	ts, ok := f.data[symbol]
	if !ok {
		return models.TimeSeries{}, fmt.Errorf("unknown symbol %s", symbol)
	}
	return ts, nil
}

type fakeMacro struct {
	data map[string]models.ScalarObservationSeries
	err  error
}

func (f *fakeMacro) Observations(_ context.Context, id string) (models.ScalarObservationSeries, error) {
	if f.err != nil {
		return models.ScalarObservationSeries{}, f.err
	}
	s, ok := f.data[id]
	if !ok {
		return models.ScalarObservationSeries{}, errors.New("FRED observations missing")
	}
	return s, nil
}

type fakeNews struct {
	items []models.Headline
}

func (f *fakeNews) Headlines(context.Context) ([]models.Headline, error) {
	return f.items, nil
}

type fakeAnalyzer struct {
	got   models.TimeSeries
	err   error
	panic bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, ts models.TimeSeries) (models.Analysis, error) {
	if f.panic {
		panic("analyzer exploded")
	}
	f.got = ts
	if f.err != nil {
		return models.Analysis{}, f.err
	}
	return models.Analysis{Insights: []string{"steady"}}, nil
}

type fakeForecaster struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeForecaster) Forecast(_ context.Context, symbol string, horizon int) (models.Forecast, error) {
	f.calls.Add(1)
	if f.fail[symbol] {
		return models.Forecast{}, errors.New("forecast failed")
	}
	return models.Forecast{Symbol: symbol, Forecast: make([]float64, horizon)}, nil
}

type fakeAdvisor struct {
	mu        sync.Mutex
	called    bool
	macro     models.Macro
	positions []models.Position
}

func (f *fakeAdvisor) Invest(_ context.Context, positions []models.Position, macro models.Macro) (models.InvestSignal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = true
	f.macro = macro
	f.positions = positions
	return models.InvestSignal{Signal: "hold", Confidence: 0.6}, nil
}

type fakeFinance struct {
	summary *models.PersonalFinance
	err     error
}

func (f *fakeFinance) Summary(context.Context, int) (*models.PersonalFinance, error) {
	return f.summary, f.err
}

type fakeExplainer struct {
	calls atomic.Int32
	last  service.ExplainRequest
	out   service.Explanation
}

func (f *fakeExplainer) Explain(_ context.Context, req service.ExplainRequest) service.Explanation {
	f.calls.Add(1)
	f.last = req
	if f.out.Text == "" {
		return service.Explanation{Text: "All good."}
	}
	return f.out
}

type fakeMetrics struct {
	mu    sync.Mutex
	steps []string
	runs  []string
	errs  []string
}

func (m *fakeMetrics) RecordStep(step, status string) {
	m.mu.Lock()
	m.steps = append(m.steps, step+":"+status)
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordRun(outcome string, _ float64) {
	m.mu.Lock()
	m.runs = append(m.runs, outcome)
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordCache(string, bool) {}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs = append(m.errs, kind)
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func ramp(n int, start float64) models.TimeSeries {
	labels := make([]string, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		labels[i] = fmt.Sprintf("2024-01-%02d", i+1)
		values[i] = start + float64(i)
	}
	return models.NewTimeSeries(labels, values)
}

func observations(values ...float64) models.ScalarObservationSeries {
	s := models.ScalarObservationSeries{}
	for i, v := range values {
		s.Observations = append(s.Observations, models.Observation{
			Date:  fmt.Sprintf("2023-%02d-01", i%12+1),
			Value: null.FloatFrom(v),
		})
		s.Last = v
	}
	return s
}
