package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/repository"
	"FinScope/internal/domain/service"
	"FinScope/internal/service/llm"
	"FinScope/internal/services/portfolio"
	"FinScope/internal/services/sentiment"
	"FinScope/internal/services/technicals"
	"FinScope/pkg/cache"
	applogger "FinScope/pkg/logger"
	"FinScope/pkg/parallel"

	"github.com/google/uuid"
)

// FastModePlaceholder replaces the LLM explanation in fast mode.
const FastModePlaceholder = "Fast mode: detailed AI explanation skipped."

// Macro series ids on FRED.
const (
	SeriesTenYear      = "DGS10"
	SeriesCPI          = "CPIAUCSL"
	SeriesUnemployment = "UNRATE"
)

// Step types in pipeline order.
const (
	StepData            = "data"
	StepAnalyze         = "analyze"
	StepMacro           = "macro"
	StepNews            = "news"
	StepPersonalFinance = "personal_finance"
	StepForecast        = "forecast"
	StepTechnicals      = "technicals"
	StepInvest          = "invest"
	StepTeach           = "teach"
	StepPublish         = "publish"
)

var stepNames = map[string]string{
	StepData:            "DataAgent",
	StepAnalyze:         "AnalyzerAgent",
	StepMacro:           "MacroAgent",
	StepNews:            "NewsAgent",
	StepPersonalFinance: "FinanceAgent",
	StepForecast:        "ForecastAgent",
	StepTechnicals:      "TechnicalsAgent",
	StepInvest:          "InvestAgent",
	StepTeach:           "TeacherAgent",
	StepPublish:         "Publisher",
}

// RunOptions are the per-request mode flags.
type RunOptions struct {
	Fast     bool
	Beginner bool
}

// StepObserver is called after each step is recorded.
type StepObserver func(step models.RunStep)

// Result is a completed run.
type Result struct {
	Key    string           `json:"key"`
	Report *models.Report   `json:"report"`
	Steps  []models.RunStep `json:"steps"`
}

// Archive accepts completed runs without blocking.
type Archive interface {
	Enqueue(ev models.ReportEvent) bool
}

// OrchestratorDeps are the collaborators of a run. Finance, Cache, Last and
// Archive may be nil.
type OrchestratorDeps struct {
	Series     repository.MarketSeriesSource
	Macro      repository.MacroSource
	News       repository.NewsSource
	Analyzer   service.Analyzer
	Forecaster service.Forecaster
	Advisor    service.Advisor
	Finance    service.PersonalFinanceSource
	Explainer  service.Explainer
	Mapper     sentiment.Mapper
	Cache      cache.Service
	Last       *LastReportStore
	Archive    Archive
}

// OrchestratorConfig tunes a run.
type OrchestratorConfig struct {
	Concurrency     int
	ForecastHorizon int
	ChartPoints     int
	VIXSymbol       string
	FinanceDays     int
	ReportTTL       time.Duration
}

// ReportOrchestrator runs the report pipeline.
type ReportOrchestrator struct {
	deps    OrchestratorDeps
	cfg     OrchestratorConfig
	log     *applogger.Logger
	metrics repository.Metrics
	now     func() time.Time
}

func NewReportOrchestrator(deps OrchestratorDeps, cfg OrchestratorConfig, l *applogger.Logger, m repository.Metrics) *ReportOrchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ForecastHorizon <= 0 {
		cfg.ForecastHorizon = 14
	}
	if cfg.ChartPoints <= 0 {
		cfg.ChartPoints = 120
	}
	if cfg.VIXSymbol == "" {
		cfg.VIXSymbol = "^VIX"
	}
	if cfg.FinanceDays <= 0 {
		cfg.FinanceDays = 30
	}
	if deps.Mapper == nil {
		deps.Mapper = sentiment.NewLexicon()
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &ReportOrchestrator{deps: deps, cfg: cfg, log: l, metrics: m, now: time.Now}
}

// trace is the ordered step log of one run.
type trace struct {
	mu      sync.Mutex
	steps   []models.RunStep
	observe StepObserver
	metrics repository.Metrics
}

func (t *trace) record(step models.RunStep) {
	if step.Name == "" {
		step.Name = stepNames[step.Type]
	}
	t.mu.Lock()
	t.steps = append(t.steps, step)
	t.mu.Unlock()
	if t.metrics != nil {
		t.metrics.RecordStep(step.Type, string(step.Status))
	}
	if t.observe != nil {
		t.observe(step)
	}
}

func (t *trace) snapshot() []models.RunStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.RunStep(nil), t.steps...)
}

// Run executes the pipeline for sel. The only fatal outcome is a
// *NoMarketDataError; unexpected faults are returned as *PipelineError.
func (o *ReportOrchestrator) Run(ctx context.Context, sel models.Selection, opts RunOptions, observe StepObserver) (res *Result, err error) {
	start := o.now()
	tr := &trace{observe: observe, metrics: o.metrics}
	log := o.log.With(applogger.Strings("symbols", sel.Symbols), applogger.Bool("fast", opts.Fast))

	defer func() {
		if r := recover(); r != nil {
			log.Error("report pipeline panic", applogger.Any("panic", r), applogger.String("stack", string(debug.Stack())))
			res, err = nil, &PipelineError{Err: fmt.Errorf("panic: %v", r), Steps: tr.snapshot()}
		}
		outcome := "ok"
		var nmd *NoMarketDataError
		switch {
		case errors.As(err, &nmd):
			outcome = "no_data"
		case err != nil:
			outcome = "error"
		}
		if o.metrics != nil {
			o.metrics.RecordRun(outcome, o.now().Sub(start).Seconds())
		}
	}()

	if len(sel.Symbols) == 0 {
		return nil, &NoMarketDataError{}
	}

	// data
	seriesMap, okSymbols, failures := o.fetchSeries(ctx, sel.Symbols)
	dataStatus := models.StepOK
	if len(failures) > 0 {
		dataStatus = models.StepPartial
	}
	tr.record(models.RunStep{Type: StepData, Status: dataStatus, Output: map[string]interface{}{"symbols": sel.Symbols}, Failures: failures})
	if len(okSymbols) == 0 {
		log.Error("no market data for any symbol", applogger.Int("failures", len(failures)))
		return nil, &NoMarketDataError{Failures: failures}
	}
	weights := sel.Weights.Restrict(okSymbols)

	// analyze
	analysis := o.analyze(ctx, seriesMap, weights)
	analyzeStatus := models.StepOK
	if analysis.Error != "" {
		analyzeStatus = models.StepError
		log.Warn("analysis degraded", applogger.String("error", analysis.Error))
	}
	tr.record(models.RunStep{Type: StepAnalyze, Status: analyzeStatus, Output: analysis})

	// macro, headlines and VIX race each other
	macro, headlines, macroFailures := o.fetchMacro(ctx)
	if len(macroFailures) > 0 {
		log.Warn("macro context degraded", applogger.Int("failures", len(macroFailures)))
	}
	tr.record(models.RunStep{Type: StepMacro, Status: models.StepOK, Output: macro, Failures: macroFailures})

	// news
	impact := o.deps.Mapper.Map(headlines, okSymbols)
	newsStatus := models.StepOK
	if len(impact) == 0 {
		newsStatus = models.StepEmpty
	}
	tr.record(models.RunStep{Type: StepNews, Status: newsStatus, Output: impact})

	// personal finance
	finance, financeStatus := o.personalFinance(ctx)
	tr.record(models.RunStep{Type: StepPersonalFinance, Status: financeStatus, Output: finance})

	// forecast
	forecasts := map[string]models.Forecast{}
	if opts.Fast {
		tr.record(models.RunStep{Type: StepForecast, Status: models.StepSkipped})
	} else {
		var fcFailures []models.SymbolFailure
		forecasts, fcFailures = o.forecast(ctx, okSymbols)
		tr.record(models.RunStep{Type: StepForecast, Status: batchStatus(len(forecasts), len(fcFailures)), Output: forecasts, Failures: fcFailures})
	}

	// technicals
	overview := make(map[string]models.AssetOverview, len(okSymbols))
	techs := make(map[string]models.Technicals, len(okSymbols))
	for _, sym := range okSymbols {
		if ov, ok := technicals.Overview(seriesMap[sym]); ok {
			overview[sym] = ov
		}
		if t, ok := technicals.Compute(seriesMap[sym]); ok {
			techs[sym] = t
		}
	}
	techStatus := models.StepOK
	if len(overview) == 0 && len(techs) == 0 {
		techStatus = models.StepEmpty
	}
	tr.record(models.RunStep{Type: StepTechnicals, Status: techStatus, Output: map[string]interface{}{"overview": overview, "technicals": techs}})

	// invest
	invest := o.invest(ctx, weights, okSymbols, macro)
	investStatus := models.StepOK
	if invest.Error != "" {
		investStatus = models.StepError
		log.Warn("invest signal degraded", applogger.String("error", invest.Error))
	}
	tr.record(models.RunStep{Type: StepInvest, Status: investStatus, Output: invest})

	report := &models.Report{
		RunID:           uuid.NewString(),
		GeneratedAt:     o.now().UTC(),
		InputSymbols:    sel.Symbols,
		InputWeights:    weights,
		Fast:            opts.Fast,
		Beginner:        opts.Beginner,
		Series:          make(map[string]models.TimeSeries, len(okSymbols)),
		Technicals:      techs,
		AssetOverview:   overview,
		Macro:           macro,
		Headlines:       headlines,
		NewsImpact:      impact,
		Analysis:        &analysis,
		Forecast:        forecasts,
		Invest:          &invest,
		PersonalFinance: finance,
	}
	for _, sym := range okSymbols {
		report.Series[sym] = seriesMap[sym].Tail(o.cfg.ChartPoints)
	}

	// teach
	if opts.Fast {
		report.Explanation = FastModePlaceholder
		tr.record(models.RunStep{Type: StepTeach, Status: models.StepSkipped, Output: map[string]string{"explanation": FastModePlaceholder}})
	} else {
		exp := o.deps.Explainer.Explain(ctx, service.ExplainRequest{
			Context: explanationContext(report),
			Persona: llm.PersonaFor(opts.Beginner),
		})
		report.Explanation = exp.Text
		teachStatus := models.StepOK
		if exp.Failed {
			teachStatus = models.StepError
			log.Warn("explanation degraded", applogger.String("error", exp.Text))
		}
		tr.record(models.RunStep{Type: StepTeach, Status: teachStatus, Output: map[string]string{"explanation": exp.Text}})
	}
	report.ExplanationSimple = SimpleExplanation(report)

	// publish
	key := ReportKey(sel, opts)
	if o.deps.Last != nil {
		o.deps.Last.Publish(report)
	}
	publishStep := models.RunStep{Type: StepPublish, Status: models.StepOK, Output: map[string]string{"key": key}}
	if o.deps.Cache != nil {
		if err := o.deps.Cache.Set(ctx, key, report, o.cfg.ReportTTL); err != nil {
			publishStep.Status = models.StepError
			publishStep.Failures = []models.SymbolFailure{{Symbol: key, Error: err.Error()}}
			log.Warn("report cache write failed", applogger.Error(err))
		}
	}
	tr.record(publishStep)

	steps := tr.snapshot()
	if o.deps.Archive != nil && !o.deps.Archive.Enqueue(models.NewReportEvent(report, steps)) {
		log.Warn("report archive queue full, run not archived", applogger.String("run_id", report.RunID))
	}

	log.Info("report generated",
		applogger.String("run_id", report.RunID),
		applogger.Int("symbols_ok", len(okSymbols)),
		applogger.Duration("elapsed", o.now().Sub(start)))
	return &Result{Key: key, Report: report, Steps: steps}, nil
}

func (o *ReportOrchestrator) fetchSeries(ctx context.Context, symbols []string) (map[string]models.TimeSeries, []string, []models.SymbolFailure) {
	results := parallel.MapLimit(ctx, symbols, o.cfg.Concurrency, func(ctx context.Context, sym string) (models.TimeSeries, error) {
		ts, err := o.deps.Series.Series(ctx, sym)
		if err != nil {
			return models.TimeSeries{}, err
		}
		if err := ts.Validate(); err != nil {
			return models.TimeSeries{}, err
		}
		if ts.Len() == 0 {
			return models.TimeSeries{}, fmt.Errorf("empty series for %s", sym)
		}
		return ts, nil
	})

	seriesMap := make(map[string]models.TimeSeries, len(symbols))
	okSymbols := make([]string, 0, len(symbols))
	var failures []models.SymbolFailure
	for i, r := range results {
		if !r.OK() {
			failures = append(failures, models.SymbolFailure{Symbol: symbols[i], Error: r.Err.Error()})
			continue
		}
		seriesMap[symbols[i]] = r.Value
		okSymbols = append(okSymbols, symbols[i])
	}
	return seriesMap, okSymbols, failures
}

func (o *ReportOrchestrator) analyze(ctx context.Context, seriesMap map[string]models.TimeSeries, weights models.WeightMap) models.Analysis {
	agg, err := portfolio.Aggregate(seriesMap, weights)
	if err != nil {
		return models.Analysis{Error: err.Error()}
	}
	analysis, err := o.deps.Analyzer.Analyze(ctx, agg)
	if err != nil {
		return models.Analysis{Error: err.Error()}
	}
	return analysis
}

func (o *ReportOrchestrator) personalFinance(ctx context.Context) (*models.PersonalFinance, models.StepStatus) {
	if o.deps.Finance == nil {
		return nil, models.StepEmpty
	}
	pf, err := o.deps.Finance.Summary(ctx, o.cfg.FinanceDays)
	if err != nil {
		o.log.Warn("personal finance degraded", applogger.Error(err))
		return &models.PersonalFinance{WindowDays: o.cfg.FinanceDays, Error: err.Error()}, models.StepError
	}
	if pf == nil {
		return nil, models.StepEmpty
	}
	return pf, models.StepOK
}

func (o *ReportOrchestrator) forecast(ctx context.Context, symbols []string) (map[string]models.Forecast, []models.SymbolFailure) {
	results := parallel.MapLimit(ctx, symbols, o.cfg.Concurrency, func(ctx context.Context, sym string) (models.Forecast, error) {
		return o.deps.Forecaster.Forecast(ctx, sym, o.cfg.ForecastHorizon)
	})
	out := make(map[string]models.Forecast, len(symbols))
	var failures []models.SymbolFailure
	for i, r := range results {
		if !r.OK() {
			failures = append(failures, models.SymbolFailure{Symbol: symbols[i], Error: r.Err.Error()})
			continue
		}
		out[symbols[i]] = r.Value
	}
	return out, failures
}

func (o *ReportOrchestrator) invest(ctx context.Context, weights models.WeightMap, symbols []string, macro models.Macro) models.InvestSignal {
	if weights == nil {
		weights = models.EqualWeights(symbols)
	}
	sig, err := o.deps.Advisor.Invest(ctx, weights.Positions(symbols), macro)
	if err != nil {
		return models.InvestSignal{Error: err.Error()}
	}
	return sig
}

func batchStatus(ok, failed int) models.StepStatus {
	switch {
	case failed == 0 && ok == 0:
		return models.StepEmpty
	case failed == 0:
		return models.StepOK
	case ok == 0:
		return models.StepError
	default:
		return models.StepPartial
	}
}

func explanationContext(r *models.Report) map[string]interface{} {
	headlines := r.Headlines
	if len(headlines) > 10 {
		headlines = headlines[:10]
	}
	return map[string]interface{}{
		"symbols":          r.InputSymbols,
		"weights":          r.InputWeights,
		"overview":         r.AssetOverview,
		"macro":            r.Macro,
		"headlines":        headlines,
		"news_impact":      r.NewsImpact,
		"technicals":       r.Technicals,
		"analysis":         r.Analysis,
		"forecast":         r.Forecast,
		"invest":           r.Invest,
		"personal_finance": r.PersonalFinance,
	}
}

// ReportKey is the content key of a run: the same symbols, weights and mode
// flags map to the same key.
func ReportKey(sel models.Selection, opts RunOptions) string {
	return cache.KeyOf("report", struct {
		Symbols  []string         `json:"symbols"`
		Weights  models.WeightMap `json:"weights"`
		Fast     bool             `json:"fast"`
		Beginner bool             `json:"beginner"`
	}{sel.Symbols, sel.Weights, opts.Fast, opts.Beginner})
}
