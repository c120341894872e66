package service

import (
	"context"
	"fmt"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
)

// ReleaseResolver maps a classified document onto the release row it belongs
// to, creating the release on first sight.
type ReleaseResolver interface {
	Resolve(ctx context.Context, ticker string, doc dto.ClassifiedDocument) (*entity.Release, error)
}

// NewReleaseResolver creates a new ReleaseResolver.
func NewReleaseResolver(log *logger.Logger, releaseRepo repository.ReleaseRepository) ReleaseResolver {
	return &releaseResolver{
		logger:      log,
		releaseRepo: releaseRepo,
	}
}

type releaseResolver struct {
	logger      *logger.Logger
	releaseRepo repository.ReleaseRepository
}

// Resolve returns the release identified by the document's (ticker, kind,
// fiscal year, fiscal quarter). The release's announcement date only ever
// moves earlier, so the earliest attached document defines it.
func (r *releaseResolver) Resolve(ctx context.Context, ticker string, doc dto.ClassifiedDocument) (*entity.Release, error) {
	kind, err := doc.DocumentType.ReleaseKind()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve release kind: %w", err)
	}

	announcementDate := doc.PublicationDate
	release, err := r.releaseRepo.GetOrCreate(ctx, &entity.Release{
		ReleaseKind:      kind,
		Ticker:           ticker,
		FiscalYear:       doc.FiscalYear,
		FiscalQuarter:    doc.FiscalQuarter,
		AnnouncementDate: &announcementDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get or create release: %w", err)
	}

	if err := r.releaseRepo.LowerAnnouncementDate(ctx, release.ID, doc.PublicationDate); err != nil {
		r.logger.Warn("Failed to lower release announcement date", logger.ErrorField(err), logger.Field("release_id", release.ID))
	}
	return release, nil
}
