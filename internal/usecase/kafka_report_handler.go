package usecase

import (
	"context"
	"encoding/json"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	pkgkafka "FinScope/pkg/kafka"
)

// ReportArchiveHandler consumes archived runs from Kafka and writes them to storage.
type ReportArchiveHandler struct {
	topic   string
	storage domrepo.ReportStorage
	metrics domrepo.Metrics
}

func NewReportArchiveHandler(topic string, storage domrepo.ReportStorage, metrics domrepo.Metrics) *ReportArchiveHandler {
	return &ReportArchiveHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *ReportArchiveHandler) Topic() string { return h.topic }

func (h *ReportArchiveHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.ReportEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	return storeEvent(ctx, h.storage, h.metrics, ev)
}

func storeEvent(ctx context.Context, storage domrepo.ReportStorage, m domrepo.Metrics, ev models.ReportEvent) error {
	if !ev.GeneratedAt.IsZero() {
		m.RecordLatency("archive_e2e_seconds", time.Since(ev.GeneratedAt).Seconds())
	}

	start := time.Now()
	err := storage.Store(ctx, ev)
	m.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		m.RecordError("consumer_store")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*ReportArchiveHandler)(nil)
