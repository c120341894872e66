package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/telegram"
)

// AnalysisRegenerator mirrors service.AnalysisRegenerator; declared locally
// because service imports this package, so importing it back would cycle.
type AnalysisRegenerator interface {
	Regenerate(ctx context.Context, userID uint, ticker string) (*dto.RegenerationResult, error)
}

// AnalysisRegenerationStrategy reconciles one subscriber's analyses with
// their current custom prompt after a prompt change.
type AnalysisRegenerationStrategy struct {
	logger           *logger.Logger
	regenerator      AnalysisRegenerator
	telegramNotifier telegram.Notifier
}

// NewAnalysisRegenerationStrategy creates a new instance of AnalysisRegenerationStrategy.
func NewAnalysisRegenerationStrategy(
	log *logger.Logger,
	regenerator AnalysisRegenerator,
	telegramNotifier telegram.Notifier,
) *AnalysisRegenerationStrategy {
	return &AnalysisRegenerationStrategy{
		logger:           log,
		regenerator:      regenerator,
		telegramNotifier: telegramNotifier,
	}
}

// GetType returns the job type this strategy handles.
func (s *AnalysisRegenerationStrategy) GetType() entity.JobType {
	return entity.JobTypeAnalysisRegeneration
}

// AnalysisRegenerationPayload defines the payload for the regeneration job.
type AnalysisRegenerationPayload struct {
	UserID uint   `json:"user_id"`
	Ticker string `json:"ticker"`
}

// Execute runs the regeneration job for one subscriber and ticker.
func (s *AnalysisRegenerationStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload AnalysisRegenerationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.UserID == 0 || payload.Ticker == "" {
		return "", fmt.Errorf("regeneration payload needs user_id and ticker")
	}

	result, err := s.regenerator.Regenerate(ctx, payload.UserID, payload.Ticker)
	if err != nil {
		return "", err
	}

	if err := s.telegramNotifier.SendMessage(telegram.FormatRegenerationResultForTelegram(result)); err != nil {
		s.logger.Error("Failed to send Telegram notification", logger.ErrorField(err))
	}

	output, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(output), nil
}
