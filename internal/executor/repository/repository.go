package repository

import (
	"context"

	"golang-disclosure-watcher/internal/executor/dto"
)

type AIRepository interface {
	ClassifyDisclosure(ctx context.Context, title string, publicationDate string) (*dto.ClassificationResult, error)
	GenerateReleaseSummary(ctx context.Context, ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error)
	GenerateCustomAnalysis(ctx context.Context, ticker, customPrompt string, docs []dto.PDFDocument) (*dto.CustomAnalysisResult, error)
}
