package usecase

import (
	"errors"
	"fmt"

	"FinScope/internal/domain/models"
)

var (
	// ErrNoReport is returned when the last-report slot is empty.
	ErrNoReport = errors.New("no report available")
	// ErrShareNotFound is returned for unknown or expired share tokens.
	ErrShareNotFound = errors.New("share not found or expired")
)

// NoMarketDataError is the fatal outcome of a run in which no symbol
// produced a usable series.
type NoMarketDataError struct {
	Failures []models.SymbolFailure
}

func (e *NoMarketDataError) Error() string {
	return fmt.Sprintf("no market data available for requested symbols (%d failed)", len(e.Failures))
}

// PipelineError wraps an unexpected fault together with the steps recorded
// before it happened.
type PipelineError struct {
	Err   error
	Steps []models.RunStep
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("agent pipeline failed: %v", e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
