package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/telegram"
	"golang-disclosure-watcher/pkg/utils"
)

// DisclosureImporter mirrors service.DisclosureImporter; declared locally
// because service imports this package, so importing it back would cycle.
type DisclosureImporter interface {
	ImportTicker(ctx context.Context, ticker string) dto.ImportResult
	ImportCandidates(ctx context.Context, ticker string, candidates []dto.DocumentCandidate) dto.ImportResult
}

// DisclosureImportStrategy runs the scheduled disclosure import across all
// tracked tickers.
type DisclosureImportStrategy struct {
	logger           *logger.Logger
	importer         DisclosureImporter
	userStockRepo    repository.UserStockRepository
	telegramNotifier telegram.Notifier
}

// NewDisclosureImportStrategy creates a new instance of DisclosureImportStrategy.
func NewDisclosureImportStrategy(
	log *logger.Logger,
	importer DisclosureImporter,
	userStockRepo repository.UserStockRepository,
	telegramNotifier telegram.Notifier,
) *DisclosureImportStrategy {
	return &DisclosureImportStrategy{
		logger:           log,
		importer:         importer,
		userStockRepo:    userStockRepo,
		telegramNotifier: telegramNotifier,
	}
}

// GetType returns the job type this strategy handles.
func (s *DisclosureImportStrategy) GetType() entity.JobType {
	return entity.JobTypeDisclosureImport
}

// DisclosureImportPayload defines the payload for the disclosure import job.
// With no explicit tickers the job covers every subscribed ticker.
type DisclosureImportPayload struct {
	Tickers       []string `json:"tickers"`
	MaxConcurrent int      `json:"max_concurrent"`
}

// Execute runs the disclosure import job. Tickers are processed concurrently;
// one ticker failing is reported in its result and never aborts the batch.
func (s *DisclosureImportStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	var payload DisclosureImportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
	}

	tickers := payload.Tickers
	if len(tickers) == 0 {
		subscribed, err := s.userStockRepo.DistinctTickers(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list subscribed tickers: %w", err)
		}
		tickers = subscribed
	}

	maxConcurrent := payload.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []dto.ImportResult
	)
	semaphore := make(chan struct{}, maxConcurrent)

	for _, ticker := range tickers {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		ticker := ticker
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			s.logger.Info("Importing disclosures", logger.StringField("ticker", ticker))
			result := s.importer.ImportTicker(ctx, ticker)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		})
	}
	wg.Wait()

	s.notify(results)

	resultJSON, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(resultJSON), nil
}

func (s *DisclosureImportStrategy) notify(results []dto.ImportResult) {
	for _, message := range telegram.FormatImportResultsForTelegram(results) {
		if err := s.telegramNotifier.SendMessage(message); err != nil {
			s.logger.Error("Failed to send Telegram notification", logger.ErrorField(err))
		}
	}
}
