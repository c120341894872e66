package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/blobstore"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/pdfutil"
)

// ReleaseAnalyzer produces the canonical summary of a release from its stored
// documents, and prepares those documents for any model call.
type ReleaseAnalyzer interface {
	AnalyzeRelease(ctx context.Context, release *entity.Release) error
	PrepareDocuments(ctx context.Context, release *entity.Release) ([]dto.PDFDocument, error)
}

// NewReleaseAnalyzer creates a new ReleaseAnalyzer.
func NewReleaseAnalyzer(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	earningsRepo repository.EarningsRepository,
	releaseRepo repository.ReleaseRepository,
	blobs blobstore.Store,
) ReleaseAnalyzer {
	return &releaseAnalyzer{
		cfg:          cfg,
		logger:       log,
		aiRepo:       aiRepo,
		earningsRepo: earningsRepo,
		releaseRepo:  releaseRepo,
		blobs:        blobs,
	}
}

type releaseAnalyzer struct {
	cfg          *config.Config
	logger       *logger.Logger
	aiRepo       repository.AIRepository
	earningsRepo repository.EarningsRepository
	releaseRepo  repository.ReleaseRepository
	blobs        blobstore.Store
}

// AnalyzeRelease generates and persists the release summary. The multi
// document call is attempted first; when it fails, each selected document is
// tried alone in priority order and the first success wins. Only when every
// attempt fails does the release stay unsummarized.
func (a *releaseAnalyzer) AnalyzeRelease(ctx context.Context, release *entity.Release) error {
	docs, err := a.PrepareDocuments(ctx, release)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		// Terminal no-op until a new document arrives; retrying now cannot
		// produce a different outcome.
		a.logger.Warn("Release has no usable documents, skipping analysis", logger.Field("release_id", release.ID))
		return nil
	}

	result, err := a.aiRepo.GenerateReleaseSummary(ctx, release.Ticker, docs)
	if err != nil && len(docs) > 1 {
		a.logger.Warn("Multi-document summary failed, degrading to single documents",
			logger.ErrorField(err),
			logger.Field("release_id", release.ID),
		)
		for _, doc := range docs {
			result, err = a.aiRepo.GenerateReleaseSummary(ctx, release.Ticker, []dto.PDFDocument{doc})
			if err == nil {
				break
			}
			a.logger.Warn("Single-document summary failed",
				logger.ErrorField(err),
				logger.Field("release_id", release.ID),
				logger.StringField("title", doc.Title),
			)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to generate release summary: %w", err)
	}

	keyMetrics, err := json.Marshal(result.KeyMetrics)
	if err != nil {
		return fmt.Errorf("failed to marshal key metrics: %w", err)
	}

	release.Summary = &result.Overview
	release.Highlights = result.Highlights
	release.Lowlights = result.Lowlights
	release.KeyMetrics = keyMetrics
	if err := a.releaseRepo.UpdateSummary(ctx, release); err != nil {
		return fmt.Errorf("failed to persist release summary: %w", err)
	}

	a.logger.Info("Release summarized",
		logger.Field("release_id", release.ID),
		logger.StringField("ticker", release.Ticker),
		logger.IntField("documents", len(docs)),
	)
	return nil
}

// PrepareDocuments selects the release's documents for a model call: one
// document per type in analysis priority order, capped at the document limit,
// each loaded from the blob store and trimmed to the page budget.
func (a *releaseAnalyzer) PrepareDocuments(ctx context.Context, release *entity.Release) ([]dto.PDFDocument, error) {
	stored, err := a.earningsRepo.FindByReleaseID(ctx, release.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load release documents: %w", err)
	}

	selected := selectByPriority(stored, a.cfg.Executor.AnalysisMaxDocuments)

	docs := make([]dto.PDFDocument, 0, len(selected))
	for _, doc := range selected {
		data, err := a.blobs.Get(ctx, doc.BlobKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load blob %s: %w", doc.BlobKey, err)
		}
		if data == nil {
			a.logger.Warn("Blob missing for stored document", logger.StringField("blob_key", doc.BlobKey), logger.Field("document_id", doc.ID))
			continue
		}

		trimmed, originalPages, err := pdfutil.TrimPages(data, a.cfg.Executor.AnalysisMaxPages)
		if err != nil {
			a.logger.Warn("Failed to trim PDF, skipping document", logger.ErrorField(err), logger.StringField("blob_key", doc.BlobKey))
			continue
		}
		pages := originalPages
		if pages > a.cfg.Executor.AnalysisMaxPages {
			pages = a.cfg.Executor.AnalysisMaxPages
		}

		docs = append(docs, dto.PDFDocument{
			Title:        doc.Title,
			DocumentType: doc.DocumentType,
			Data:         trimmed,
			Pages:        pages,
		})
	}
	return docs, nil
}

// selectByPriority keeps the newest document of each type, orders types by
// analysis priority, and caps the result.
func selectByPriority(stored []entity.Earnings, maxDocuments int) []entity.Earnings {
	newestByType := make(map[entity.DocumentType]entity.Earnings)
	for _, doc := range stored {
		current, ok := newestByType[doc.DocumentType]
		if !ok || doc.AnnouncementDate.After(current.AnnouncementDate) {
			newestByType[doc.DocumentType] = doc
		}
	}

	selected := make([]entity.Earnings, 0, len(newestByType))
	for _, doc := range newestByType {
		selected = append(selected, doc)
	}
	sort.Slice(selected, func(i, j int) bool {
		pi, pj := selected[i].DocumentType.AnalysisPriority(), selected[j].DocumentType.AnalysisPriority()
		if pi != pj {
			return pi < pj
		}
		return selected[i].AnnouncementDate.Before(selected[j].AnnouncementDate)
	})

	if maxDocuments > 0 && len(selected) > maxDocuments {
		selected = selected[:maxDocuments]
	}
	return selected
}
