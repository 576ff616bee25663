package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	mu     sync.Mutex
	stored []models.ReportEvent
	failN  int
}

func (f *fakeStorage) Init(context.Context) error { return nil }

func (f *fakeStorage) Store(_ context.Context, ev models.ReportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failN > 0 {
		f.failN--
		return errors.New("insert failed")
	}
	f.stored = append(f.stored, ev)
	return nil
}

func (f *fakeStorage) Recent(context.Context, int) ([]domrepo.RunSummary, error) { return nil, nil }
func (f *fakeStorage) Health(context.Context) error                             { return nil }
func (f *fakeStorage) Close() error                                             { return nil }

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []models.ReportEvent
	closed bool
}

func (f *fakePublisher) Publish(_ context.Context, ev models.ReportEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func event(id string) models.ReportEvent {
	return models.ReportEvent{RunID: id, GeneratedAt: time.Now(), Symbols: []string{"SPY"}}
}

func TestReportArchiver_DeliversBeforeStop(t *testing.T) {
	for _, backend := range []string{"kafka", "redis"} {
		t.Run(backend, func(t *testing.T) {
			pub := &fakePublisher{}
			a := NewReportArchiver(pub, nil, backend, &fakeMetrics{}, nil)
			a.Start(context.Background())

			assert.True(t, a.Enqueue(event("r1")))
			assert.True(t, a.Enqueue(event("r2")))
			require.NoError(t, a.Stop(context.Background()))

			assert.Len(t, pub.events, 2)
			assert.False(t, a.Enqueue(event("r3")), "stopped archiver rejects events")

			a.Close()
			assert.True(t, pub.closed)
		})
	}
}

func TestReportArchiver_RetriesStore(t *testing.T) {
	store := &fakeStorage{failN: 2}
	m := &fakeMetrics{}
	a := NewReportArchiver(nil, store, "clickhouse", m, nil, WithArchiveRetry(3, time.Millisecond))
	a.Start(context.Background())

	a.Enqueue(event("r1"))
	require.NoError(t, a.Stop(context.Background()))

	assert.Equal(t, 1, store.count())
	assert.Equal(t, []string{"archive_attempt", "archive_attempt"}, m.errs)
}

func TestReportArchiver_FullBufferDrops(t *testing.T) {
	m := &fakeMetrics{}
	a := NewReportArchiver(&fakePublisher{}, nil, "kafka", m, nil, WithArchiveBuffer(1))

	assert.True(t, a.Enqueue(event("r1")))
	assert.False(t, a.Enqueue(event("r2")))
	assert.Contains(t, m.errs, "archive_buffer_full")
	require.NoError(t, a.Stop(context.Background()))
}

func TestReportArchiveHandler_Handle(t *testing.T) {
	store := &fakeStorage{}
	h := NewReportArchiveHandler("finscope.reports", store, &fakeMetrics{})
	assert.Equal(t, "finscope.reports", h.Topic())

	b, err := json.Marshal(event("r1"))
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), b))
	assert.Equal(t, 1, store.count())

	assert.Error(t, h.Handle(context.Background(), []byte("{")))
}

func TestReportArchiveJob_Handle(t *testing.T) {
	store := &fakeStorage{}
	m := &fakeMetrics{}
	job := NewReportArchiveJob(store, m)
	assert.Equal(t, ReportEventType, job.Type())

	b, err := json.Marshal(event("r1"))
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), json.RawMessage(b)))
	assert.Equal(t, "r1", store.stored[0].RunID)

	store.failN = 1
	assert.Error(t, job.Handle(context.Background(), json.RawMessage(b)))
	assert.Contains(t, m.errs, "consumer_store")
}
