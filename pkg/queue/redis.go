package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	applogger "FinScope/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "finscope:queue"

// RedisQueue is a list-backed work queue. Failed messages wait in a sorted
// set until their retry time and end in a dead-letter list once the retry
// limit is spent.
type RedisQueue struct {
	client *redis.Client
	cfg    Config
	log    *applogger.Logger
	prefix string

	mu      sync.RWMutex
	jobs    map[string]Job
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures RedisQueue.
type Option func(*RedisQueue)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(q *RedisQueue) {
		if prefix != "" {
			q.prefix = prefix
		}
	}
}

// WithLogger sets the queue logger.
func WithLogger(l *applogger.Logger) Option {
	return func(q *RedisQueue) {
		if l != nil {
			q.log = l
		}
	}
}

// NewRedisQueue creates a queue over client. It does not start workers.
func NewRedisQueue(client *redis.Client, cfg Config, opts ...Option) *RedisQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 10 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	q := &RedisQueue{
		client: client,
		cfg:    cfg,
		log:    applogger.NewNop(),
		prefix: defaultPrefix,
		jobs:   make(map[string]Job),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Register adds jobs. Registering a second job for a type is ignored.
func (q *RedisQueue) Register(jobs ...Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range jobs {
		if _, ok := q.jobs[job.Type()]; ok {
			q.log.Warn("queue job already registered", applogger.String("type", job.Type()))
			continue
		}
		q.jobs[job.Type()] = job
	}
}

// PublishMessage pushes payload onto the queue.
func (q *RedisQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg := Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key("messages"), b).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Start launches the workers and the retry mover. Publishing does not need Start.
func (q *RedisQueue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return errors.New("queue already running")
	}
	if len(q.jobs) == 0 {
		return errors.New("queue has no jobs registered")
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := q.client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel
	q.running = true

	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work(runCtx)
	}
	q.wg.Add(1)
	go q.moveDueRetries(runCtx)

	q.log.Info("redis queue started",
		applogger.String("prefix", q.prefix),
		applogger.Int("workers", q.cfg.Workers))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.log.Info("redis queue stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("queue stop: %w", ctx.Err())
	}
}

func (q *RedisQueue) work(ctx context.Context) {
	defer q.wg.Done()
	for ctx.Err() == nil {
		res, err := q.client.BRPop(ctx, time.Second, q.key("messages")).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			q.log.Warn("queue pop failed", applogger.Error(err))
			sleep(ctx, time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			q.log.Error("queue message undecodable", applogger.Error(err))
			continue
		}
		q.handle(ctx, msg)
	}
}

func (q *RedisQueue) handle(ctx context.Context, msg Message) {
	q.mu.RLock()
	job, ok := q.jobs[msg.Type]
	q.mu.RUnlock()
	if !ok {
		q.log.Error("queue message has no job", applogger.String("type", msg.Type), applogger.String("id", msg.ID))
		q.push(ctx, q.key("dlq"), msg)
		return
	}

	start := time.Now()
	err := job.Handle(ctx, msg.Payload)
	if err == nil {
		q.log.Debug("queue job done",
			applogger.String("job", job.Name()),
			applogger.String("id", msg.ID),
			applogger.Duration("took", time.Since(start)))
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	if msg.Attempts >= q.cfg.RetryLimit {
		q.log.Error("queue job failed permanently",
			applogger.String("job", job.Name()),
			applogger.String("id", msg.ID),
			applogger.Int("attempts", msg.Attempts+1),
			applogger.Error(err))
		q.push(ctx, q.key("dlq"), msg)
		return
	}

	msg.Attempts++
	at := time.Now().Add(q.cfg.RetryDelay)
	q.log.Warn("queue job failed, retry scheduled",
		applogger.String("job", job.Name()),
		applogger.String("id", msg.ID),
		applogger.Int("attempt", msg.Attempts),
		applogger.Error(err))
	b, _ := json.Marshal(msg)
	if zerr := q.client.ZAdd(ctx, q.key("retry"), redis.Z{Score: float64(at.Unix()), Member: b}).Err(); zerr != nil {
		q.log.Error("queue retry schedule failed", applogger.Error(zerr))
	}
}

func (q *RedisQueue) moveDueRetries(ctx context.Context) {
	defer q.wg.Done()
	ticker := time.NewTicker(q.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		due, err := q.client.ZRangeByScore(ctx, q.key("retry"), &redis.ZRangeBy{
			Min: "0",
			Max: strconv.FormatInt(time.Now().Unix(), 10),
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				q.log.Warn("queue retry scan failed", applogger.Error(err))
			}
			continue
		}
		for _, member := range due {
			pipe := q.client.TxPipeline()
			pipe.ZRem(ctx, q.key("retry"), member)
			pipe.LPush(ctx, q.key("messages"), member)
			if _, err := pipe.Exec(ctx); err != nil && ctx.Err() == nil {
				q.log.Warn("queue retry requeue failed", applogger.Error(err))
			}
		}
	}
}

func (q *RedisQueue) push(ctx context.Context, key string, msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := q.client.LPush(context.WithoutCancel(ctx), key, b).Err(); err != nil {
		q.log.Error("queue push failed", applogger.String("key", key), applogger.Error(err))
	}
}

func (q *RedisQueue) key(suffix string) string {
	return q.prefix + ":" + suffix
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
