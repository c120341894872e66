package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
)

// BackfillEnqueuer mirrors the Enqueue side of service.BackfillService;
// declared locally because service imports this package, so importing it
// back would cycle.
type BackfillEnqueuer interface {
	Enqueue(ctx context.Context, continuation dto.BackfillContinuation) error
}

// HistoricalBackfillStrategy kicks off a full-history import for one ticker.
// The strategy only enqueues the first continuation; the backfill consumer
// walks the rest of the history slice by slice.
type HistoricalBackfillStrategy struct {
	logger   *logger.Logger
	backfill BackfillEnqueuer
}

// NewHistoricalBackfillStrategy creates a new instance of HistoricalBackfillStrategy.
func NewHistoricalBackfillStrategy(log *logger.Logger, backfill BackfillEnqueuer) *HistoricalBackfillStrategy {
	return &HistoricalBackfillStrategy{
		logger:   log,
		backfill: backfill,
	}
}

// GetType returns the job type this strategy handles.
func (s *HistoricalBackfillStrategy) GetType() entity.JobType {
	return entity.JobTypeHistoricalBackfill
}

// HistoricalBackfillPayload defines the payload for the backfill job.
type HistoricalBackfillPayload struct {
	Ticker    string `json:"ticker"`
	BatchSize int    `json:"batch_size"`
}

// Execute enqueues the first backfill slice for the ticker.
func (s *HistoricalBackfillStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload HistoricalBackfillPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.Ticker == "" {
		return "", fmt.Errorf("backfill payload has no ticker")
	}

	continuation := dto.BackfillContinuation{
		JobID:     job.ID,
		Ticker:    payload.Ticker,
		Offset:    0,
		BatchSize: payload.BatchSize,
	}
	if err := s.backfill.Enqueue(ctx, continuation); err != nil {
		return "", err
	}

	s.logger.Info("Backfill started", logger.StringField("ticker", payload.Ticker), logger.Field("job_id", job.ID))

	output, err := json.Marshal(continuation)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(output), nil
}
