package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	pkgch "FinScope/pkg/clickhouse"
	pkgkafka "FinScope/pkg/kafka"
	"FinScope/pkg/queue"
	"FinScope/pkg/util"
)

// ClickHouseReportStorage archives runs and their chart series in ClickHouse.
type ClickHouseReportStorage struct {
	ch *pkgch.Client
}

func NewClickHouseReportStorage(ch *pkgch.Client) *ClickHouseReportStorage {
	return &ClickHouseReportStorage{ch: ch}
}

// Init creates the archive tables when missing.
func (s *ClickHouseReportStorage) Init(ctx context.Context) error {
	return s.ch.Migrate(ctx,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id       String,
			generated_at DateTime64(3, 'UTC'),
			symbols      Array(String),
			fast         Bool,
			beginner     Bool,
			steps        Map(String, String),
			payload      String
		) ENGINE = MergeTree
		ORDER BY (generated_at, run_id)`, s.ch.Table("report_runs")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			source    LowCardinality(String),
			metric    String,
			ts        DateTime('UTC'),
			value     Float64,
			ingest_ts DateTime('UTC')
		) ENGINE = MergeTree
		ORDER BY (metric, ts)`, s.ch.Table("timeseries")),
	)
}

// Store writes the run row and one timeseries row per valid series point.
func (s *ClickHouseReportStorage) Store(ctx context.Context, ev models.ReportEvent) error {
	payload, err := json.Marshal(ev.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	ctx, cancel := s.ch.WriteContext(ctx)
	defer cancel()

	db := s.ch.DB()
	if _, err := db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (run_id, generated_at, symbols, fast, beginner, steps, payload) VALUES (?, ?, ?, ?, ?, ?, ?)", s.ch.Table("report_runs")),
		ev.RunID, ev.GeneratedAt.UTC(), nonNil(ev.Symbols), ev.Fast, ev.Beginner, nonNilMap(ev.Steps), string(payload),
	); err != nil {
		return fmt.Errorf("insert report run: %w", err)
	}

	points := seriesPoints(ev)
	if len(points) == 0 {
		return nil
	}

	// clickhouse-go sends a prepared statement inside a tx as one block.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin series batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (source, metric, ts, value, ingest_ts)", s.ch.Table("timeseries")))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare series batch: %w", err)
	}
	defer stmt.Close()

	ingest := time.Now().UTC()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, "report", p.metric, p.ts, p.value, ingest); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append series point: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit series batch: %w", err)
	}
	return nil
}

// Recent lists the newest archived runs.
func (s *ClickHouseReportStorage) Recent(ctx context.Context, limit int) ([]domrepo.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.ch.DB().QueryContext(ctx,
		fmt.Sprintf("SELECT run_id, generated_at, symbols, fast, beginner, steps FROM %s ORDER BY generated_at DESC LIMIT ?", s.ch.Table("report_runs")),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query report runs: %w", err)
	}
	defer rows.Close()

	out := make([]domrepo.RunSummary, 0, limit)
	for rows.Next() {
		var r domrepo.RunSummary
		if err := rows.Scan(&r.RunID, &r.GeneratedAt, &r.Symbols, &r.Fast, &r.Beginner, &r.Steps); err != nil {
			return nil, fmt.Errorf("scan report run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseReportStorage) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close is a no-op; the client is shared and closed by the app.
func (s *ClickHouseReportStorage) Close() error {
	return nil
}

type point struct {
	metric string
	ts     time.Time
	value  float64
}

func seriesPoints(ev models.ReportEvent) []point {
	if ev.Report == nil {
		return nil
	}
	var out []point
	for metric, ts := range ev.Report.Series {
		for i, label := range ts.Labels {
			if i >= len(ts.Values) || !ts.Values[i].Valid {
				continue
			}
			t, err := time.Parse(util.DateLayout, label)
			if err != nil {
				continue
			}
			out = append(out, point{metric: metric, ts: t, value: ts.Values[i].Float64})
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// KafkaReportPublisher publishes runs keyed by run id.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, ev models.ReportEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.RunID), ev)
}

// Close is a no-op; the producer also serves the log collector.
func (p *KafkaReportPublisher) Close() error {
	return nil
}

// QueueReportPublisher pushes runs onto the Redis work queue.
type QueueReportPublisher struct {
	pub     queue.Publisher
	msgType string
}

func NewQueueReportPublisher(pub queue.Publisher, msgType string) *QueueReportPublisher {
	return &QueueReportPublisher{pub: pub, msgType: msgType}
}

func (p *QueueReportPublisher) Publish(ctx context.Context, ev models.ReportEvent) error {
	return p.pub.PublishMessage(ctx, p.msgType, ev)
}

func (p *QueueReportPublisher) Close() error {
	return nil
}

var (
	_ domrepo.ReportStorage   = (*ClickHouseReportStorage)(nil)
	_ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)
	_ domrepo.ReportPublisher = (*QueueReportPublisher)(nil)
)
