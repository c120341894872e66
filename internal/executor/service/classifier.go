package service

import (
	"context"
	"sync"
	"time"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"
)

// ClassificationBatch is the outcome of classifying one candidate batch.
// Skipped counts candidates with a terminal, non-retryable reason (type
// "other", unresolvable fiscal period); Failed counts model errors.
type ClassificationBatch struct {
	Classified []dto.ClassifiedDocument
	Skipped    int
	Failed     int
}

// DocumentClassifier resolves the document type and fiscal period of
// disclosure candidates from their titles.
type DocumentClassifier interface {
	ClassifyBatch(ctx context.Context, candidates []dto.DocumentCandidate) ClassificationBatch
}

// NewDocumentClassifier creates a new DocumentClassifier.
func NewDocumentClassifier(cfg *config.Config, log *logger.Logger, aiRepo repository.AIRepository) DocumentClassifier {
	return &documentClassifier{
		cfg:    cfg,
		logger: log,
		aiRepo: aiRepo,
	}
}

type documentClassifier struct {
	cfg    *config.Config
	logger *logger.Logger
	aiRepo repository.AIRepository
}

// ClassifyBatch classifies candidates group by group: candidates are chunked
// into fixed-size groups, classified with bounded parallelism within each
// group. Per-candidate failures degrade to counters.
func (c *documentClassifier) ClassifyBatch(ctx context.Context, candidates []dto.DocumentCandidate) ClassificationBatch {
	var batch ClassificationBatch

	groupSize := c.cfg.Executor.ClassifierBatchSize
	if groupSize <= 0 {
		groupSize = len(candidates)
	}

	for start := 0; start < len(candidates); start += groupSize {
		if !utils.ShouldContinue(ctx, c.logger) {
			break
		}
		end := start + groupSize
		if end > len(candidates) {
			end = len(candidates)
		}
		c.classifyGroup(ctx, candidates[start:end], &batch)
	}

	return batch
}

func (c *documentClassifier) classifyGroup(ctx context.Context, candidates []dto.DocumentCandidate, batch *ClassificationBatch) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	semaphore := make(chan struct{}, c.cfg.Executor.MaxConcurrentModelCalls)

	for _, candidate := range candidates {
		if !utils.ShouldContinue(ctx, c.logger) {
			break
		}
		candidate := candidate
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			classified, skipReason, err := c.classifyOne(ctx, candidate)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				c.logger.Error("Classification failed", logger.ErrorField(err), logger.StringField("title", candidate.Title))
				batch.Failed++
			case skipReason != "":
				c.logger.Info("Candidate skipped",
					logger.StringField("reason", skipReason),
					logger.StringField("title", candidate.Title),
				)
				batch.Skipped++
			default:
				batch.Classified = append(batch.Classified, *classified)
			}
		})
	}
	wg.Wait()
}

// classifyOne runs the model on one candidate and validates its output. A
// non-empty skip reason is terminal: retrying the same title cannot help.
func (c *documentClassifier) classifyOne(ctx context.Context, candidate dto.DocumentCandidate) (*dto.ClassifiedDocument, string, error) {
	result, err := c.aiRepo.ClassifyDisclosure(ctx, candidate.Title, candidate.PublicationDate.Format(time.RFC3339))
	if err != nil {
		return nil, "", err
	}

	docType, err := entity.ParseDocumentType(result.DocumentType)
	if err != nil {
		return nil, "unknown document type: " + result.DocumentType, nil
	}
	if docType == entity.DocumentTypeOther {
		return nil, "not a tracked disclosure type", nil
	}

	year, quarter := c.resolveFiscalPeriod(candidate.Title, result)
	if year == "" {
		return nil, "fiscal year unresolvable", nil
	}
	if docType.IsPeriodic() && quarter == entity.QuarterNone {
		return nil, "periodic document without a fiscal quarter", nil
	}
	if !docType.IsPeriodic() {
		quarter = entity.QuarterNone
	}

	return &dto.ClassifiedDocument{
		DocumentCandidate: candidate,
		DocumentType:      docType,
		FiscalYear:        year,
		FiscalQuarter:     quarter,
		Confidence:        result.Confidence,
		Reasoning:         result.Reasoning,
	}, "", nil
}

// resolveFiscalPeriod prefers the model's answer and falls back to parsing
// the title directly when the model left the year or quarter open.
func (c *documentClassifier) resolveFiscalPeriod(title string, result *dto.ClassificationResult) (string, int) {
	var (
		year    string
		quarter = entity.QuarterNone
	)
	if result.FiscalYear != nil {
		year = *result.FiscalYear
	}
	if result.FiscalQuarter != nil {
		quarter = *result.FiscalQuarter
	}

	if year == "" || quarter == entity.QuarterNone {
		if parsed, ok := utils.ParseFiscalPeriod(title); ok {
			if year == "" {
				year = parsed.Year
			}
			if quarter == entity.QuarterNone {
				quarter = parsed.Quarter
			}
		}
	}
	if quarter < 0 || quarter > 4 {
		quarter = entity.QuarterNone
	}
	return year, quarter
}
