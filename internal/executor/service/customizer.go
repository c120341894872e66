package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"
)

// CustomizeOutcome counts the per-subscriber results of customizing one release.
type CustomizeOutcome struct {
	Customized int
	Failed     int
}

// AnalysisCustomizer produces per-subscriber analyses of a release for every
// user tracking its ticker.
type AnalysisCustomizer interface {
	CustomizeRelease(ctx context.Context, release *entity.Release) CustomizeOutcome
}

// NewAnalysisCustomizer creates a new AnalysisCustomizer.
func NewAnalysisCustomizer(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	analyzer ReleaseAnalyzer,
	userStockRepo repository.UserStockRepository,
	userAnalysisRepo repository.UserAnalysisRepository,
	historyRepo repository.AnalysisHistoryRepository,
) AnalysisCustomizer {
	return &analysisCustomizer{
		cfg:              cfg,
		logger:           log,
		aiRepo:           aiRepo,
		analyzer:         analyzer,
		userStockRepo:    userStockRepo,
		userAnalysisRepo: userAnalysisRepo,
		historyRepo:      historyRepo,
	}
}

type analysisCustomizer struct {
	cfg              *config.Config
	logger           *logger.Logger
	aiRepo           repository.AIRepository
	analyzer         ReleaseAnalyzer
	userStockRepo    repository.UserStockRepository
	userAnalysisRepo repository.UserAnalysisRepository
	historyRepo      repository.AnalysisHistoryRepository
}

// CustomizeRelease fans out over the release ticker's subscribers, bounded by
// the shared model-call limit. One subscriber failing never blocks the rest.
// Documents are prepared once and shared across all model calls.
func (c *analysisCustomizer) CustomizeRelease(ctx context.Context, release *entity.Release) CustomizeOutcome {
	var outcome CustomizeOutcome

	subscriptions, err := c.userStockRepo.FindByTicker(ctx, release.Ticker)
	if err != nil {
		c.logger.Error("Failed to load subscribers", logger.ErrorField(err), logger.StringField("ticker", release.Ticker))
		outcome.Failed++
		return outcome
	}
	if len(subscriptions) == 0 {
		return outcome
	}

	docs, err := c.analyzer.PrepareDocuments(ctx, release)
	if err != nil {
		c.logger.Error("Failed to prepare documents for customization", logger.ErrorField(err), logger.Field("release_id", release.ID))
		outcome.Failed = len(subscriptions)
		return outcome
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, c.cfg.Executor.MaxConcurrentModelCalls)

	for _, sub := range subscriptions {
		if !utils.ShouldContinue(ctx, c.logger) {
			break
		}
		sub := sub
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			err := c.customizeForSubscriber(ctx, release, sub, docs)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Error("Customization failed",
					logger.ErrorField(err),
					logger.Field("user_id", sub.UserID),
					logger.Field("release_id", release.ID),
				)
				outcome.Failed++
				return
			}
			outcome.Customized++
		})
	}
	wg.Wait()

	return outcome
}

// customizeForSubscriber writes the subscriber's analysis row for the
// release. Subscribers without a custom prompt still get a row so the release
// counts as considered for them; a later prompt change regenerates from there.
func (c *analysisCustomizer) customizeForSubscriber(ctx context.Context, release *entity.Release, sub entity.UserStock, docs []dto.PDFDocument) error {
	existing, err := c.userAnalysisRepo.FindByUserAndRelease(ctx, sub.UserID, release.ID)
	if err != nil {
		return fmt.Errorf("failed to load existing analysis: %w", err)
	}

	if sub.CustomPrompt == "" {
		if existing != nil {
			return nil
		}
		return c.userAnalysisRepo.Upsert(ctx, &entity.UserAnalysis{
			UserID:    sub.UserID,
			ReleaseID: release.ID,
		})
	}

	if existing != nil && existing.CustomPromptUsed != nil && *existing.CustomPromptUsed == sub.CustomPrompt && existing.CustomAnalysis != nil {
		return nil
	}

	result, err := c.aiRepo.GenerateCustomAnalysis(ctx, release.Ticker, sub.CustomPrompt, docs)
	if err != nil {
		return fmt.Errorf("failed to generate custom analysis: %w", err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal custom analysis: %w", err)
	}

	if err := archiveSupersededAnalysis(ctx, c.historyRepo, existing); err != nil {
		return err
	}

	prompt := sub.CustomPrompt
	return c.userAnalysisRepo.Upsert(ctx, &entity.UserAnalysis{
		UserID:           sub.UserID,
		ReleaseID:        release.ID,
		CustomAnalysis:   payload,
		CustomPromptUsed: &prompt,
	})
}

// archiveSupersededAnalysis appends the current analysis to the history log
// before it is overwritten. Rows without a generated analysis have nothing to
// preserve.
func archiveSupersededAnalysis(ctx context.Context, historyRepo repository.AnalysisHistoryRepository, existing *entity.UserAnalysis) error {
	if existing == nil || existing.CustomAnalysis == nil || existing.CustomPromptUsed == nil {
		return nil
	}
	err := historyRepo.Create(ctx, &entity.AnalysisHistory{
		UserID:       existing.UserID,
		ReleaseID:    existing.ReleaseID,
		CustomPrompt: *existing.CustomPromptUsed,
		Analysis:     existing.CustomAnalysis,
	})
	if err != nil {
		return fmt.Errorf("failed to archive superseded analysis: %w", err)
	}
	return nil
}
