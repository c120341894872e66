package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/common"
	"golang-disclosure-watcher/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// BackfillService walks a ticker's disclosure history slice by slice. Each
// slice is imported like a normal batch, and progress is carried by a
// continuation message on its own stream, so a crash mid-history resumes at
// the last enqueued offset instead of restarting from zero.
type BackfillService interface {
	Enqueue(ctx context.Context, continuation dto.BackfillContinuation) error
	ProcessContinuation(ctx context.Context)
}

// NewBackfillService creates a new BackfillService.
func NewBackfillService(
	cfg *config.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	historical repository.HistoricalDisclosureRepository,
	aggregator CandidateAggregator,
	importer DisclosureImporter,
) BackfillService {
	return &backfillService{
		cfg:         cfg,
		logger:      log,
		redisClient: redisClient,
		historical:  historical,
		aggregator:  aggregator,
		importer:    importer,
	}
}

type backfillService struct {
	cfg         *config.Config
	logger      *logger.Logger
	redisClient *redis.Client
	historical  repository.HistoricalDisclosureRepository
	aggregator  CandidateAggregator
	importer    DisclosureImporter
}

// Enqueue publishes a continuation message. Redelivery is harmless: the
// slice it names re-imports idempotently.
func (s *backfillService) Enqueue(ctx context.Context, continuation dto.BackfillContinuation) error {
	payload, err := json.Marshal(continuation)
	if err != nil {
		return fmt.Errorf("failed to marshal backfill continuation: %w", err)
	}
	err = s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamBackfillContinuation,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue backfill continuation: %w", err)
	}
	return nil
}

// ProcessContinuation dequeues and processes a single continuation message.
// Messages are acknowledged only after their slice imported and the next
// offset was enqueued, so a crash mid-slice leaves the message pending for
// redelivery instead of silently halting the backfill.
func (s *backfillService) ProcessContinuation(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamBackfillContinuation, ">"},
		Count:    1,
		Block:    2 * time.Second,
	}).Result()

	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.logger.Error("Failed to read from backfill stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	payload, ok := message.Values["payload"].(string)
	if !ok {
		s.logger.Error("field 'payload' not found or not a string in stream message", logger.Field("message_id", message.ID))
		s.ack(ctx, message.ID)
		return
	}

	var continuation dto.BackfillContinuation
	if err := json.Unmarshal([]byte(payload), &continuation); err != nil {
		s.logger.Error("Failed to unmarshal backfill continuation", logger.ErrorField(err), logger.Field("message_id", message.ID))
		s.ack(ctx, message.ID)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, s.cfg.Executor.RedisStreamBackfillTimeout)
	defer cancel()

	if err := s.processSlice(processCtx, continuation); err != nil {
		s.logger.Error("Backfill slice failed, message left pending",
			logger.ErrorField(err),
			logger.StringField("ticker", continuation.Ticker),
			logger.IntField("offset", continuation.Offset),
		)
		return
	}
	s.ack(ctx, message.ID)
}

// ack acknowledges a continuation message. Malformed messages are acked too:
// redelivering them can never succeed.
func (s *backfillService) ack(ctx context.Context, messageID string) {
	if err := s.redisClient.XAck(ctx, common.RedisStreamBackfillContinuation, common.RedisStreamGroup, messageID).Err(); err != nil {
		s.logger.Error("Failed to ack backfill continuation", logger.ErrorField(err), logger.Field("message_id", messageID))
	}
}

// processSlice imports one historical slice and, when the source returned a
// full page, enqueues the next offset. A non-nil error means the slice should
// be redelivered; the import itself is idempotent, so retries are safe.
func (s *backfillService) processSlice(ctx context.Context, continuation dto.BackfillContinuation) error {
	batchSize := continuation.BatchSize
	if batchSize <= 0 {
		batchSize = s.cfg.Executor.BackfillBatchSize
	}

	s.logger.Info("Processing backfill slice",
		logger.StringField("ticker", continuation.Ticker),
		logger.IntField("offset", continuation.Offset),
		logger.IntField("batch_size", batchSize),
	)

	listed, err := s.historical.ListHistorical(ctx, continuation.Ticker, continuation.Offset, batchSize)
	if err != nil {
		return fmt.Errorf("failed to list historical disclosures: %w", err)
	}
	if len(listed) == 0 {
		s.logger.Info("Backfill complete", logger.StringField("ticker", continuation.Ticker), logger.IntField("offset", continuation.Offset))
		return nil
	}

	candidates := s.aggregator.FilterCandidates(listed)
	result := s.importer.ImportCandidates(ctx, continuation.Ticker, candidates)
	s.logger.Info("Backfill slice imported",
		logger.StringField("ticker", continuation.Ticker),
		logger.IntField("offset", continuation.Offset),
		logger.IntField("stored", result.Stored),
		logger.IntField("existing", result.Existing),
		logger.IntField("failed", result.Failed),
	)

	if len(listed) < batchSize {
		s.logger.Info("Backfill reached end of history", logger.StringField("ticker", continuation.Ticker))
		return nil
	}

	next := dto.BackfillContinuation{
		JobID:     continuation.JobID,
		Ticker:    continuation.Ticker,
		Offset:    continuation.Offset + batchSize,
		BatchSize: batchSize,
	}
	if err := s.Enqueue(ctx, next); err != nil {
		return fmt.Errorf("failed to enqueue next backfill slice: %w", err)
	}
	return nil
}
