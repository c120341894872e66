package service

import (
	"context"
	"errors"
	"testing"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestClassifyBatchValidDocument(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{
				DocumentType:  "summary",
				FiscalYear:    strPtr("2025"),
				FiscalQuarter: intPtr(1),
				Confidence:    0.95,
			}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "2026年3月期 第1四半期決算短信"),
	})

	require.Len(t, batch.Classified, 1)
	got := batch.Classified[0]
	assert.Equal(t, entity.DocumentTypeSummary, got.DocumentType)
	assert.Equal(t, "2025", got.FiscalYear)
	assert.Equal(t, 1, got.FiscalQuarter)
	assert.Zero(t, batch.Skipped)
	assert.Zero(t, batch.Failed)
}

func TestClassifyBatchSkipsOtherType(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{DocumentType: "other"}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "自己株式の取得状況に関するお知らせ"),
	})

	assert.Empty(t, batch.Classified)
	assert.Equal(t, 1, batch.Skipped)
}

func TestClassifyBatchFallsBackToTitleForFiscalPeriod(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{DocumentType: "summary"}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "2026年3月期 第２四半期決算短信"),
	})

	require.Len(t, batch.Classified, 1)
	assert.Equal(t, "2025", batch.Classified[0].FiscalYear)
	assert.Equal(t, 2, batch.Classified[0].FiscalQuarter)
}

func TestClassifyBatchSkipsPeriodicWithoutQuarter(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{
				DocumentType: "presentation",
				FiscalYear:   strPtr("2025"),
			}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	// No quarter in the title either, so the fallback cannot rescue it.
	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "説明会資料"),
	})

	assert.Empty(t, batch.Classified)
	assert.Equal(t, 1, batch.Skipped)
}

func TestClassifyBatchSkipsUnresolvableFiscalYear(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{DocumentType: "mid_term_plan"}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "中期経営計画"),
	})

	assert.Empty(t, batch.Classified)
	assert.Equal(t, 1, batch.Skipped)
}

func TestClassifyBatchClearsQuarterForPlanDocuments(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{
				DocumentType:  "mid_term_plan",
				FiscalYear:    strPtr("2025"),
				FiscalQuarter: intPtr(2),
			}, nil
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "中期経営計画 2025年度"),
	})

	require.Len(t, batch.Classified, 1)
	assert.Equal(t, entity.QuarterNone, batch.Classified[0].FiscalQuarter)
}

func TestClassifyBatchSpansMultipleGroups(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return &dto.ClassificationResult{
				DocumentType:  "summary",
				FiscalYear:    strPtr("2025"),
				FiscalQuarter: intPtr(1),
			}, nil
		},
	}
	cfg := testConfig()
	cfg.Executor.ClassifierBatchSize = 2
	c := NewDocumentClassifier(cfg, testLogger(), ai)

	var candidates []dto.DocumentCandidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, candidate(
			"https://example.com/"+string(rune('a'+i))+".pdf",
			"2026年3月期 第1四半期決算短信",
		))
	}

	batch := c.ClassifyBatch(context.Background(), candidates)
	assert.Len(t, batch.Classified, 5)
	assert.Equal(t, 5, ai.classifyCalls)
}

func TestClassifyBatchCountsModelErrors(t *testing.T) {
	ai := &fakeAIRepository{
		classifyFn: func(title string) (*dto.ClassificationResult, error) {
			return nil, errors.New("rate limited")
		},
	}
	c := NewDocumentClassifier(testConfig(), testLogger(), ai)

	batch := c.ClassifyBatch(context.Background(), []dto.DocumentCandidate{
		candidate("https://example.com/1.pdf", "2026年3月期 決算短信"),
		candidate("https://example.com/2.pdf", "2026年3月期 決算説明資料"),
	})

	assert.Empty(t, batch.Classified)
	assert.Equal(t, 2, batch.Failed)
}
