package service

import (
	"context"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/scheduler/dto"
	"golang-disclosure-watcher/internal/scheduler/repository"
	"golang-disclosure-watcher/pkg/logger"
)

// ExecutionHistoryService reads the execution records the executor writes.
type ExecutionHistoryService interface {
	GetExecutionHistoryByID(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error)
	GetAllExecutionHistories(ctx context.Context) ([]*dto.ExecutionHistoryResponse, error)
	GetExecutionHistoriesByJobID(ctx context.Context, jobID uint) ([]*dto.ExecutionHistoryResponse, error)
}

// NewExecutionHistoryService creates a new execution history service.
func NewExecutionHistoryService(historyRepo repository.TaskExecutionHistoryRepository, logger *logger.Logger) ExecutionHistoryService {
	return &executionHistoryService{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

type executionHistoryService struct {
	historyRepo repository.TaskExecutionHistoryRepository
	logger      *logger.Logger
}

// GetExecutionHistoryByID returns one execution record.
func (s *executionHistoryService) GetExecutionHistoryByID(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error) {
	history, err := s.historyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return historyResponse(history), nil
}

// GetAllExecutionHistories returns every execution record, newest first.
func (s *executionHistoryService) GetAllExecutionHistories(ctx context.Context) ([]*dto.ExecutionHistoryResponse, error) {
	histories, err := s.historyRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list execution histories", logger.ErrorField(err))
		return nil, err
	}
	return historyResponses(histories), nil
}

// GetExecutionHistoriesByJobID returns one job's execution records, newest first.
func (s *executionHistoryService) GetExecutionHistoriesByJobID(ctx context.Context, jobID uint) ([]*dto.ExecutionHistoryResponse, error) {
	histories, err := s.historyRepo.FindAllByJobID(ctx, jobID)
	if err != nil {
		s.logger.Error("Failed to list execution histories for job", logger.ErrorField(err), logger.Field("job_id", jobID))
		return nil, err
	}
	return historyResponses(histories), nil
}

func historyResponses(histories []entity.TaskExecutionHistory) []*dto.ExecutionHistoryResponse {
	responses := make([]*dto.ExecutionHistoryResponse, 0, len(histories))
	for i := range histories {
		responses = append(responses, historyResponse(&histories[i]))
	}
	return responses
}

// historyResponse flattens a history row; the duration stays zero while the
// execution is still running.
func historyResponse(history *entity.TaskExecutionHistory) *dto.ExecutionHistoryResponse {
	var duration int64
	if history.CompletedAt.Valid {
		duration = history.CompletedAt.Time.Sub(history.StartedAt).Milliseconds()
	}

	return &dto.ExecutionHistoryResponse{
		ID:         history.ID,
		JobID:      history.JobID,
		ScheduleID: history.ScheduleID,
		Status:     history.Status,
		ExecutedAt: history.StartedAt,
		Duration:   duration,
		Output:     history.Output.String,
	}
}
