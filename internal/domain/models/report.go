package models

import "time"

// StepStatus is the outcome of one pipeline step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepPartial StepStatus = "partial"
	StepError   StepStatus = "error"
	StepEmpty   StepStatus = "empty"
	StepSkipped StepStatus = "skipped"
)

// SymbolFailure records why one item of a step failed.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// RunStep is one entry of the run log.
type RunStep struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Status   StepStatus      `json:"status"`
	Output   interface{}     `json:"output,omitempty"`
	Failures []SymbolFailure `json:"failures,omitempty"`
}

// Report is the pipeline output. It is assembled once per run and never
// mutated afterwards.
type Report struct {
	RunID             string                   `json:"run_id"`
	GeneratedAt       time.Time                `json:"generated_at"`
	InputSymbols      []string                 `json:"input_symbols"`
	InputWeights      WeightMap                `json:"input_weights"`
	Fast              bool                     `json:"fast"`
	Beginner          bool                     `json:"beginner"`
	Series            map[string]TimeSeries    `json:"series"`
	Technicals        map[string]Technicals    `json:"technicals"`
	AssetOverview     map[string]AssetOverview `json:"asset_overview"`
	Macro             Macro                    `json:"macro"`
	Headlines         []Headline               `json:"headlines"`
	NewsImpact        map[string]NewsImpact    `json:"news_impact"`
	Analysis          *Analysis                `json:"analysis"`
	Forecast          map[string]Forecast      `json:"forecast"`
	Invest            *InvestSignal            `json:"invest"`
	PersonalFinance   *PersonalFinance         `json:"personal_finance"`
	Explanation       string                   `json:"explanation"`
	ExplanationSimple string                   `json:"explanation_simple"`
}

// ReportEvent is the archived form of a completed run.
type ReportEvent struct {
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Symbols     []string          `json:"symbols"`
	Fast        bool              `json:"fast"`
	Beginner    bool              `json:"beginner"`
	Steps       map[string]string `json:"steps"`
	Report      *Report           `json:"report"`
}

// NewReportEvent summarises a report and its run log for archiving.
func NewReportEvent(r *Report, steps []RunStep) ReportEvent {
	statuses := make(map[string]string, len(steps))
	for _, s := range steps {
		statuses[s.Name] = string(s.Status)
	}
	return ReportEvent{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		Symbols:     r.InputSymbols,
		Fast:        r.Fast,
		Beginner:    r.Beginner,
		Steps:       statuses,
		Report:      r,
	}
}
