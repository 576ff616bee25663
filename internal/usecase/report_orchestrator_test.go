package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"FinScope/internal/domain/models"
	"FinScope/internal/service/llm"
	"FinScope/pkg/cache"
	applogger "FinScope/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	series     *fakeSeries
	macro      *fakeMacro
	news       *fakeNews
	analyzer   *fakeAnalyzer
	forecaster *fakeForecaster
	advisor    *fakeAdvisor
	finance    *fakeFinance
	explainer  *fakeExplainer
	metrics    *fakeMetrics
	cache      *cache.MemoryCache
	last       *LastReportStore
}

func newHarness() *harness {
	cpi := make([]float64, 13)
	for i := range cpi {
		cpi[i] = 300 + float64(i)
	}
	return &harness{
		series: &fakeSeries{data: map[string]models.TimeSeries{
			"AAPL": ramp(25, 100),
			"MSFT": ramp(25, 200),
			"^VIX": ramp(5, 15),
		}},
		macro: &fakeMacro{data: map[string]models.ScalarObservationSeries{
			SeriesTenYear:      observations(4.1, 4.2),
			SeriesCPI:          observations(cpi...),
			SeriesUnemployment: observations(3.9),
		}},
		news:       &fakeNews{items: []models.Headline{{Title: "Apple shares surge on record high"}}},
		analyzer:   &fakeAnalyzer{},
		forecaster: &fakeForecaster{},
		advisor:    &fakeAdvisor{},
		finance:    &fakeFinance{summary: &models.PersonalFinance{WindowDays: 30}},
		explainer:  &fakeExplainer{},
		metrics:    &fakeMetrics{},
		cache:      cache.NewMemoryCache(),
		last:       NewLastReportStore(),
	}
}

func (h *harness) orchestrator() *ReportOrchestrator {
	return NewReportOrchestrator(OrchestratorDeps{
		Series:     h.series,
		Macro:      h.macro,
		News:       h.news,
		Analyzer:   h.analyzer,
		Forecaster: h.forecaster,
		Advisor:    h.advisor,
		Finance:    h.finance,
		Explainer:  h.explainer,
		Cache:      h.cache,
		Last:       h.last,
	}, OrchestratorConfig{ChartPoints: 10}, applogger.NewNop(), h.metrics)
}

func stepTypes(steps []models.RunStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.Type
	}
	return out
}

func stepByType(t *testing.T, steps []models.RunStep, typ string) models.RunStep {
	t.Helper()
	for _, s := range steps {
		if s.Type == typ {
			return s
		}
	}
	t.Fatalf("step %s not recorded", typ)
	return models.RunStep{}
}

func TestRun_FullPipeline(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	sel := models.Selection{Symbols: []string{"AAPL", "MSFT"}}
	res, err := h.orchestrator().Run(context.Background(), sel, RunOptions{}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Report)

	assert.Equal(t, []string{
		StepData, StepAnalyze, StepMacro, StepNews, StepPersonalFinance,
		StepForecast, StepTechnicals, StepInvest, StepTeach, StepPublish,
	}, stepTypes(res.Steps))
	for _, s := range res.Steps {
		assert.Equal(t, models.StepOK, s.Status, s.Type)
		assert.NotEmpty(t, s.Name)
	}

	r := res.Report
	assert.NotEmpty(t, r.RunID)
	assert.Equal(t, []string{"AAPL", "MSFT"}, r.InputSymbols)
	assert.Len(t, r.Series["AAPL"].Labels, 10)
	assert.Contains(t, r.Technicals, "AAPL")
	assert.Contains(t, r.AssetOverview, "MSFT")
	assert.Len(t, r.Forecast, 2)
	assert.Equal(t, "All good.", r.Explanation)
	assert.NotEmpty(t, r.ExplanationSimple)
	assert.Equal(t, models.DirectionIncrease, r.NewsImpact["AAPL"].Direction)

	assert.InDelta(t, 4.2, r.Macro.TenYearYieldPct.Float64, 1e-9)
	assert.InDelta(t, (312.0/300.0-1)*100, r.Macro.CPIYoYPct.Float64, 1e-9)
	assert.InDelta(t, 3.9, r.Macro.UnemploymentRatePct.Float64, 1e-9)
	assert.InDelta(t, 19.0, r.Macro.VIXLast.Float64, 1e-9)

	// equal weight across both symbols
	require.Len(t, h.advisor.positions, 2)
	assert.InDelta(t, 0.5, h.advisor.positions[0].Weight, 1e-9)
	assert.Equal(t, llm.PersonaStandard, h.explainer.last.Persona)
	assert.Equal(t, []string{"ok"}, h.metrics.runs)
}

func TestRun_PublishesReport(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	sel := models.Selection{Symbols: []string{"AAPL"}}
	res, err := h.orchestrator().Run(context.Background(), sel, RunOptions{Beginner: true}, nil)
	require.NoError(t, err)

	latest, _, ok := h.last.Latest()
	require.True(t, ok)
	assert.Same(t, res.Report, latest)

	assert.Equal(t, ReportKey(sel, RunOptions{Beginner: true}), res.Key)
	var cached models.Report
	require.NoError(t, h.cache.Get(context.Background(), res.Key, &cached))
	assert.Equal(t, res.Report.RunID, cached.RunID)
	assert.Equal(t, llm.PersonaBeginner, h.explainer.last.Persona)
}

func TestRun_ZeroSymbolsIsFatal(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"NOPE"}}, RunOptions{}, nil)
	assert.Nil(t, res)

	var nmd *NoMarketDataError
	require.ErrorAs(t, err, &nmd)
	require.Len(t, nmd.Failures, 1)
	assert.Equal(t, "NOPE", nmd.Failures[0].Symbol)

	_, _, ok := h.last.Latest()
	assert.False(t, ok)
	assert.Equal(t, []string{"no_data"}, h.metrics.runs)
}

func TestRun_PartialData(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	sel := models.Selection{Symbols: []string{"AAPL", "NOPE"}, Weights: models.WeightMap{"AAPL": 0.25, "NOPE": 0.75}}
	res, err := h.orchestrator().Run(context.Background(), sel, RunOptions{}, nil)
	require.NoError(t, err)

	data := stepByType(t, res.Steps, StepData)
	assert.Equal(t, models.StepPartial, data.Status)
	require.Len(t, data.Failures, 1)
	assert.Equal(t, "NOPE", data.Failures[0].Symbol)

	assert.NotContains(t, res.Report.Series, "NOPE")
	assert.InDelta(t, 1.0, res.Report.InputWeights["AAPL"], 1e-9)
	assert.Equal(t, []models.Position{{Symbol: "AAPL", Weight: 1}}, h.advisor.positions)
}

func TestRun_DegradedMacro(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()
	h.macro.err = errors.New("fred down")

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL"}}, RunOptions{}, nil)
	require.NoError(t, err)

	macro := res.Report.Macro
	assert.False(t, macro.TenYearYieldPct.Valid)
	assert.False(t, macro.CPIYoYPct.Valid)
	assert.False(t, macro.UnemploymentRatePct.Valid)
	assert.True(t, macro.VIXLast.Valid)

	step := stepByType(t, res.Steps, StepMacro)
	assert.Equal(t, models.StepOK, step.Status)
	assert.Len(t, step.Failures, 3)

	assert.True(t, h.advisor.called)
	assert.False(t, h.advisor.macro.TenYearYieldPct.Valid)
	assert.Equal(t, int32(1), h.explainer.calls.Load())
	assert.Equal(t, models.StepOK, stepByType(t, res.Steps, StepInvest).Status)
	assert.Equal(t, models.StepOK, stepByType(t, res.Steps, StepTeach).Status)
}

func TestRun_FastMode(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL"}}, RunOptions{Fast: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StepSkipped, stepByType(t, res.Steps, StepForecast).Status)
	assert.Equal(t, models.StepSkipped, stepByType(t, res.Steps, StepTeach).Status)
	assert.Empty(t, res.Report.Forecast)
	assert.Equal(t, FastModePlaceholder, res.Report.Explanation)
	assert.NotEmpty(t, res.Report.ExplanationSimple)
	assert.Zero(t, h.forecaster.calls.Load())
	assert.Zero(t, h.explainer.calls.Load())
}

func TestRun_DegradedCollaborators(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()
	h.analyzer.err = errors.New("analyze failed")
	h.forecaster.fail = map[string]bool{"MSFT": true}
	h.finance.summary = nil
	h.explainer.out.Text = "LLM failed: boom"
	h.explainer.out.Failed = true

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL", "MSFT"}}, RunOptions{}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StepError, stepByType(t, res.Steps, StepAnalyze).Status)
	assert.Equal(t, "analyze failed", res.Report.Analysis.Error)
	assert.Equal(t, models.StepPartial, stepByType(t, res.Steps, StepForecast).Status)
	assert.Contains(t, res.Report.Forecast, "AAPL")
	assert.NotContains(t, res.Report.Forecast, "MSFT")
	assert.Equal(t, models.StepEmpty, stepByType(t, res.Steps, StepPersonalFinance).Status)
	assert.Nil(t, res.Report.PersonalFinance)
	assert.Equal(t, models.StepError, stepByType(t, res.Steps, StepTeach).Status)
	assert.Equal(t, "LLM failed: boom", res.Report.Explanation)
	assert.Len(t, res.Steps, 10)
}

func TestRun_NoHeadlinesIsEmptyNewsStep(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()
	h.news.items = nil

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL"}}, RunOptions{}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StepEmpty, stepByType(t, res.Steps, StepNews).Status)
	assert.NotNil(t, res.Report.Headlines)
}

func TestRun_PanicBecomesPipelineError(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()
	h.analyzer.panic = true

	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL"}}, RunOptions{}, nil)
	assert.Nil(t, res)

	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, []string{StepData}, stepTypes(pe.Steps))
	assert.Equal(t, []string{"error"}, h.metrics.runs)
}

func TestRun_ObserverSeesStepsInOrder(t *testing.T) {
	h := newHarness()
	defer h.cache.Close()

	var (
		mu   sync.Mutex
		seen []string
	)
	res, err := h.orchestrator().Run(context.Background(), models.Selection{Symbols: []string{"AAPL"}}, RunOptions{Fast: true}, func(s models.RunStep) {
		mu.Lock()
		seen = append(seen, s.Type)
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, stepTypes(res.Steps), seen)
}

func TestYearOverYear(t *testing.T) {
	vals := make([]float64, 13)
	for i := range vals {
		vals[i] = 100
	}
	vals[12] = 103
	got := YearOverYear(observations(vals...))
	require.True(t, got.Valid)
	assert.InDelta(t, 3.0, got.Float64, 1e-9)

	assert.False(t, YearOverYear(observations(vals[:12]...)).Valid)

	vals[0] = 0
	assert.False(t, YearOverYear(observations(vals...)).Valid)
}

func TestReportKey(t *testing.T) {
	sel := models.Selection{Symbols: []string{"AAPL"}}
	assert.Equal(t, ReportKey(sel, RunOptions{}), ReportKey(sel, RunOptions{}))
	assert.NotEqual(t, ReportKey(sel, RunOptions{}), ReportKey(sel, RunOptions{Beginner: true}))
	assert.NotEqual(t, ReportKey(sel, RunOptions{}), ReportKey(sel, RunOptions{Fast: true}))
	assert.NotEqual(t, ReportKey(sel, RunOptions{}), ReportKey(models.Selection{Symbols: []string{"MSFT"}}, RunOptions{}))
}
