package usecase

import (
	"sync"
	"time"

	"FinScope/internal/domain/models"
)

// LastReportStore holds the most recently published report. It is empty at
// start and overwritten by every successful run.
type LastReportStore struct {
	mu        sync.RWMutex
	report    *models.Report
	updatedAt time.Time
	now       func() time.Time
}

func NewLastReportStore() *LastReportStore {
	return &LastReportStore{now: time.Now}
}

// Publish replaces the stored report.
func (s *LastReportStore) Publish(r *models.Report) {
	if r == nil {
		return
	}
	s.mu.Lock()
	s.report = r
	s.updatedAt = s.now().UTC()
	s.mu.Unlock()
}

// Latest returns the stored report and when it was published.
func (s *LastReportStore) Latest() (*models.Report, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return nil, time.Time{}, false
	}
	return s.report, s.updatedAt, true
}
