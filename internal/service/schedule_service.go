package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-notify/pkg/jobs"
)

const (
	scheduledSetKey = "notify:scheduled"
	dedupeKeyPrefix = "notify:scheduled:dedupe:"
)

// TaskScheduler registers a task to fire at a future instant. Tags identify
// the task for idempotency and operator correlation.
type TaskScheduler interface {
	ScheduleAt(ctx context.Context, at time.Time, kind string, payload []byte, tags []string) error
}

// scheduledEntry is the encoded member stored in the delayed set.
type scheduledEntry struct {
	ID      string   `json:"id"`
	Kind    string   `json:"kind"`
	Payload []byte   `json:"payload"`
	Tags    []string `json:"tags"`
}

// ScheduleService is a redis-backed delayed task scheduler. Due tasks are
// promoted into the in-process worker queue on each poll. Delivery is
// at-least-once; duplicate schedule calls with the same tags collapse via a
// dedupe key.
type ScheduleService struct {
	rdb          *redis.Client
	queue        *jobs.Queue
	pollInterval time.Duration
	dedupeTTL    time.Duration
	logger       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduleService constructs the scheduler.
func NewScheduleService(rdb *redis.Client, queue *jobs.Queue, pollInterval, dedupeTTL time.Duration, logger *zap.Logger) *ScheduleService {
	if pollInterval <= 0 {
		pollInterval = 15 * time.Second
	}
	if dedupeTTL <= 0 {
		dedupeTTL = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		rdb:          rdb,
		queue:        queue,
		pollInterval: pollInterval,
		dedupeTTL:    dedupeTTL,
		logger:       logger,
	}
}

// ScheduleAt registers a task to fire at the given instant. A second call
// with the same tags before the dedupe TTL expires is a no-op.
func (s *ScheduleService) ScheduleAt(ctx context.Context, at time.Time, kind string, payload []byte, tags []string) error {
	var dedupeKey string
	if len(tags) > 0 {
		dedupeKey = dedupeKeyPrefix + strings.Join(tags, ":")
		set, err := s.rdb.SetNX(ctx, dedupeKey, 1, s.dedupeTTL).Result()
		if err != nil {
			return fmt.Errorf("scheduler dedupe check: %w", err)
		}
		if !set {
			s.logger.Debug("task already scheduled", zap.String("kind", kind), zap.Strings("tags", tags))
			return nil
		}
	}

	entry := scheduledEntry{
		ID:      uuid.NewString(),
		Kind:    kind,
		Payload: payload,
		Tags:    tags,
	}
	member, err := json.Marshal(entry)
	if err != nil {
		s.releaseDedupe(ctx, dedupeKey)
		return fmt.Errorf("encode scheduled task: %w", err)
	}

	if err := s.rdb.ZAdd(ctx, scheduledSetKey, redis.Z{
		Score:  float64(at.Unix()),
		Member: string(member),
	}).Err(); err != nil {
		s.releaseDedupe(ctx, dedupeKey)
		return fmt.Errorf("store scheduled task: %w", err)
	}

	s.logger.Info("task scheduled",
		zap.String("kind", kind),
		zap.Time("fire_at", at),
		zap.Strings("tags", tags),
	)
	return nil
}

// releaseDedupe frees the dedupe key when the task was never stored, so a
// retry of the same tags is not swallowed as a duplicate.
func (s *ScheduleService) releaseDedupe(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Warn("failed to release dedupe key", zap.String("key", key), zap.Error(err))
	}
}

// Start launches the polling loop.
func (s *ScheduleService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.poll(pollCtx)
	s.logger.Sugar().Infow("scheduler started", "poll_interval", s.pollInterval)
}

// Stop halts polling and waits for the loop to exit.
func (s *ScheduleService) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *ScheduleService) poll(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.promoteDue(ctx)
		}
	}
}

// promoteDue moves every due member from the delayed set into the worker
// queue. ZREM gates the hand-off so two pollers cannot both enqueue the same
// member.
func (s *ScheduleService) promoteDue(ctx context.Context) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	members, err := s.rdb.ZRangeByScore(ctx, scheduledSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		s.logger.Warn("scheduler poll failed", zap.Error(err))
		return
	}

	for _, member := range members {
		removed, err := s.rdb.ZRem(ctx, scheduledSetKey, member).Result()
		if err != nil {
			s.logger.Warn("failed to claim due task", zap.Error(err))
			continue
		}
		if removed == 0 {
			continue
		}

		var entry scheduledEntry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			s.logger.Error("dropping malformed scheduled task", zap.Error(err))
			continue
		}

		task := jobs.Task{
			ID:      entry.ID,
			Kind:    entry.Kind,
			Payload: entry.Payload,
		}
		if err := s.queue.Enqueue(task); err != nil {
			s.logger.Error("failed to enqueue due task",
				zap.String("task_id", entry.ID),
				zap.String("kind", entry.Kind),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("task fired",
			zap.String("task_id", entry.ID),
			zap.String("kind", entry.Kind),
			zap.Strings("tags", entry.Tags),
		)
	}
}
