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

// AnalysisRegenerator reworks one subscriber's analyses across every release
// of a ticker after their custom prompt changed.
type AnalysisRegenerator interface {
	Regenerate(ctx context.Context, userID uint, ticker string) (*dto.RegenerationResult, error)
}

// NewAnalysisRegenerator creates a new AnalysisRegenerator.
func NewAnalysisRegenerator(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	analyzer ReleaseAnalyzer,
	releaseRepo repository.ReleaseRepository,
	earningsRepo repository.EarningsRepository,
	userStockRepo repository.UserStockRepository,
	userAnalysisRepo repository.UserAnalysisRepository,
	historyRepo repository.AnalysisHistoryRepository,
) AnalysisRegenerator {
	return &analysisRegenerator{
		cfg:              cfg,
		logger:           log,
		aiRepo:           aiRepo,
		analyzer:         analyzer,
		releaseRepo:      releaseRepo,
		earningsRepo:     earningsRepo,
		userStockRepo:    userStockRepo,
		userAnalysisRepo: userAnalysisRepo,
		historyRepo:      historyRepo,
	}
}

type analysisRegenerator struct {
	cfg              *config.Config
	logger           *logger.Logger
	aiRepo           repository.AIRepository
	analyzer         ReleaseAnalyzer
	releaseRepo      repository.ReleaseRepository
	earningsRepo     repository.EarningsRepository
	userStockRepo    repository.UserStockRepository
	userAnalysisRepo repository.UserAnalysisRepository
	historyRepo      repository.AnalysisHistoryRepository
}

// Regenerate walks every release of the ticker, bounded by the shared
// model-call limit, and reconciles the subscriber's analysis with their
// current prompt. Cached results are reused
// at two levels: the live analysis row when it was already produced under the
// current prompt, and the history log when the subscriber switched back to a
// prompt they used before. Only genuinely new (prompt, release) pairs cost a
// model call.
func (r *analysisRegenerator) Regenerate(ctx context.Context, userID uint, ticker string) (*dto.RegenerationResult, error) {
	subscription, err := r.userStockRepo.FindByUserAndTicker(ctx, userID, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if subscription == nil {
		return nil, fmt.Errorf("user %d does not subscribe to ticker %s", userID, ticker)
	}

	releases, err := r.releaseRepo.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to load releases: %w", err)
	}

	result := &dto.RegenerationResult{
		UserID: userID,
		Ticker: ticker,
		Total:  len(releases),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, r.cfg.Executor.MaxConcurrentModelCalls)

	for i := range releases {
		if !utils.ShouldContinue(ctx, r.logger) {
			break
		}
		release := &releases[i]
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcome, err := r.regenerateForRelease(ctx, release, subscription)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Error("Regeneration failed for release",
					logger.ErrorField(err),
					logger.Field("release_id", release.ID),
					logger.Field("user_id", userID),
				)
				result.Skipped++
				return
			}
			switch outcome {
			case regenOutcomeRegenerated:
				result.Regenerated++
			case regenOutcomeCached:
				result.Cached++
			default:
				result.Skipped++
			}
		})
	}
	wg.Wait()

	return result, nil
}

type regenOutcome int

const (
	regenOutcomeSkipped regenOutcome = iota
	regenOutcomeCached
	regenOutcomeRegenerated
)

func (r *analysisRegenerator) regenerateForRelease(ctx context.Context, release *entity.Release, sub *entity.UserStock) (regenOutcome, error) {
	if sub.CustomPrompt == "" {
		return regenOutcomeSkipped, nil
	}

	existing, err := r.userAnalysisRepo.FindByUserAndRelease(ctx, sub.UserID, release.ID)
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to load existing analysis: %w", err)
	}

	// Tier 1: the live row already reflects the current prompt.
	if existing != nil && existing.CustomPromptUsed != nil && *existing.CustomPromptUsed == sub.CustomPrompt && existing.CustomAnalysis != nil {
		return regenOutcomeCached, nil
	}

	// Tier 2: the subscriber used this prompt before and the result is
	// archived. Copy it forward instead of paying for a model call.
	archived, err := r.historyRepo.FindByPrompt(ctx, sub.UserID, release.ID, sub.CustomPrompt)
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to check analysis history: %w", err)
	}
	if archived != nil {
		if err := archiveSupersededAnalysis(ctx, r.historyRepo, existing); err != nil {
			return regenOutcomeSkipped, err
		}
		prompt := sub.CustomPrompt
		err := r.userAnalysisRepo.Upsert(ctx, &entity.UserAnalysis{
			UserID:           sub.UserID,
			ReleaseID:        release.ID,
			CustomAnalysis:   archived.Analysis,
			CustomPromptUsed: &prompt,
		})
		if err != nil {
			return regenOutcomeSkipped, fmt.Errorf("failed to restore archived analysis: %w", err)
		}
		return regenOutcomeCached, nil
	}

	// Releases without stored documents cannot be analyzed; skip terminally
	// rather than calling the model with nothing attached.
	docCount, err := r.earningsRepo.CountByReleaseID(ctx, release.ID)
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to count release documents: %w", err)
	}
	if docCount == 0 {
		return regenOutcomeSkipped, nil
	}

	docs, err := r.analyzer.PrepareDocuments(ctx, release)
	if err != nil {
		return regenOutcomeSkipped, err
	}
	if len(docs) == 0 {
		return regenOutcomeSkipped, nil
	}

	generated, err := r.aiRepo.GenerateCustomAnalysis(ctx, release.Ticker, sub.CustomPrompt, docs)
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to generate custom analysis: %w", err)
	}
	payload, err := json.Marshal(generated)
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to marshal custom analysis: %w", err)
	}

	if err := archiveSupersededAnalysis(ctx, r.historyRepo, existing); err != nil {
		return regenOutcomeSkipped, err
	}

	prompt := sub.CustomPrompt
	err = r.userAnalysisRepo.Upsert(ctx, &entity.UserAnalysis{
		UserID:           sub.UserID,
		ReleaseID:        release.ID,
		CustomAnalysis:   payload,
		CustomPromptUsed: &prompt,
	})
	if err != nil {
		return regenOutcomeSkipped, fmt.Errorf("failed to persist regenerated analysis: %w", err)
	}
	return regenOutcomeRegenerated, nil
}
