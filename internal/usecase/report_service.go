package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinScope/internal/domain/models"
	"FinScope/pkg/cache"
	"FinScope/pkg/dedupe"
	applogger "FinScope/pkg/logger"
)

// ReportService is the entry point for report generation. Concurrent
// identical requests share one run.
type ReportService struct {
	orch          *ReportOrchestrator
	cache         cache.Service
	last          *LastReportStore
	defaultSymbol string
	inflight      dedupe.Group[*Result]
	log           *applogger.Logger
}

func NewReportService(orch *ReportOrchestrator, c cache.Service, last *LastReportStore, defaultSymbol string, l *applogger.Logger) *ReportService {
	if l == nil {
		l = applogger.NewNop()
	}
	return &ReportService{orch: orch, cache: c, last: last, defaultSymbol: defaultSymbol, log: l}
}

// Generate runs the pipeline for in, joining an identical run already in
// flight. The shared run is detached from the caller's cancellation.
func (s *ReportService) Generate(ctx context.Context, in models.ReportInput) (*Result, error) {
	sel := in.Selection(s.defaultSymbol)
	opts := RunOptions{Fast: in.Fast, Beginner: in.Beginner}
	key := ReportKey(sel, opts)

	runCtx := context.WithoutCancel(ctx)
	res, shared, err := s.inflight.Do(ctx, key, func() (*Result, error) {
		return s.orch.Run(runCtx, sel, opts, nil)
	})
	if shared {
		s.log.Debug("report request joined in-flight run", applogger.String("key", key))
	}
	return res, err
}

// Stream runs the pipeline without deduplication, reporting each step to observe.
func (s *ReportService) Stream(ctx context.Context, in models.ReportInput, observe StepObserver) (*Result, error) {
	sel := in.Selection(s.defaultSymbol)
	return s.orch.Run(ctx, sel, RunOptions{Fast: in.Fast, Beginner: in.Beginner}, observe)
}

// Cached returns the report stored under a content key.
func (s *ReportService) Cached(ctx context.Context, key string) (*models.Report, error) {
	if s.cache == nil {
		return nil, ErrNoReport
	}
	var r models.Report
	if err := s.cache.Get(ctx, key, &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("load report %s: %w", key, err)
	}
	return &r, nil
}

// Latest returns the last published report.
func (s *ReportService) Latest() (*models.Report, time.Time, bool) {
	if s.last == nil {
		return nil, time.Time{}, false
	}
	return s.last.Latest()
}
