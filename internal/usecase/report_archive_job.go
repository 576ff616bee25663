package usecase

import (
	"context"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	"FinScope/pkg/queue"
)

// ReportEventType is the queue message type for archived runs.
const ReportEventType = "report.completed"

// ReportArchiveJob drains archived runs from the Redis queue into storage.
type ReportArchiveJob struct {
	storage domrepo.ReportStorage
	metrics domrepo.Metrics
}

func NewReportArchiveJob(storage domrepo.ReportStorage, metrics domrepo.Metrics) *ReportArchiveJob {
	return &ReportArchiveJob{storage: storage, metrics: metrics}
}

func (j *ReportArchiveJob) Name() string { return "report-archive" }

func (j *ReportArchiveJob) Type() string { return ReportEventType }

func (j *ReportArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	ev, err := queue.ParsePayload[models.ReportEvent](payload)
	if err != nil {
		j.metrics.RecordError("queue_unmarshal")
		return err
	}
	return storeEvent(ctx, j.storage, j.metrics, *ev)
}

var _ queue.Job = (*ReportArchiveJob)(nil)
