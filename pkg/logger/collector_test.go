package logger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu      sync.Mutex
	topics  []string
	batches []LogBatch
}

func (p *recordingPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.batches = append(p.batches, payload.(LogBatch))
	return nil
}

func TestLogCollector_FoldsRepeatedEntries(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "finscope.logs",
		Service:        "finscope",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		c.AddLog("error", "fred fetch failed", map[string]interface{}{"series": "DGS10"}, "market/fred.go:10")
	}
	c.AddLog("error", "news fetch failed", nil, "market/news.go:20")
	c.AddLog("warn", "ignored", nil, "x.go:1")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "finscope.logs", pub.topics[0])

	entries := pub.batches[0].Entries
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Count)
	assert.Equal(t, "fred fetch failed", entries[0].Message)
	assert.Equal(t, "finscope", pub.batches[0].Service)
}

func TestLogCollector_FlushesAtThreshold(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		IncludeWarn:    true,
		Publisher:      pub,
	})

	c.AddLog("warn", "a", nil, "a.go:1")
	c.AddLog("error", "b", nil, "b.go:1")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Len(t, pub.batches[0].Entries, 2)
}

func TestLogger_WithKeepsWorking(t *testing.T) {
	l := NewNop().With(String("component", "report"))
	assert.NotPanics(t, func() {
		l.Info("run started", Int("symbols", 2), Float64("weight", 0.5))
		l.Error("run failed", Error(nil))
	})
}

func TestLogger_ChildrenShareLateCollector(t *testing.T) {
	parent := NewNop()
	child := parent.With(String("run_id", "r1"))

	pub := &recordingPublisher{}
	parent.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})

	child.Error("archive write failed", String("backend", "redis"))
	child.Info("not collected")
	parent.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	entry := pub.batches[0].Entries[0]
	assert.Equal(t, "archive write failed", entry.Message)
	assert.Equal(t, "redis", entry.Fields["backend"])
	assert.Contains(t, entry.Caller, "pkg/logger/collector_test.go:")
}
