package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-disclosure-watcher/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReleaseRepository defines the interface for interacting with releases.
type ReleaseRepository interface {
	GetOrCreate(ctx context.Context, release *entity.Release) (*entity.Release, error)
	FindByID(ctx context.Context, id uint) (*entity.Release, error)
	FindByTicker(ctx context.Context, ticker string) ([]entity.Release, error)
	UpdateSummary(ctx context.Context, release *entity.Release) error
	LowerAnnouncementDate(ctx context.Context, releaseID uint, date time.Time) error
}

// NewReleaseRepository creates a new instance of ReleaseRepository.
func NewReleaseRepository(db *gorm.DB) ReleaseRepository {
	return &releaseRepository{
		db: db,
	}
}

type releaseRepository struct {
	db *gorm.DB
}

// GetOrCreate returns the release identified by (ticker, release_kind,
// fiscal_year, fiscal_quarter), creating it when it does not exist yet.
// Concurrent callers racing on the same identity all end up with the same
// row: the insert is conflict-tolerant and losers re-read.
func (r *releaseRepository) GetOrCreate(ctx context.Context, release *entity.Release) (*entity.Release, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "ticker"},
			{Name: "release_kind"},
			{Name: "fiscal_year"},
			{Name: "fiscal_quarter"},
		},
		DoNothing: true,
	}).Create(release)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected > 0 {
		return release, nil
	}

	var existing entity.Release
	err := r.db.WithContext(ctx).
		Where("ticker = ? AND release_kind = ? AND fiscal_year = ? AND fiscal_quarter = ?",
			release.Ticker, release.ReleaseKind, release.FiscalYear, release.FiscalQuarter).
		First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch existing release: %w", err)
	}
	return &existing, nil
}

// FindByID returns a release by primary key, or nil when it does not exist.
func (r *releaseRepository) FindByID(ctx context.Context, id uint) (*entity.Release, error) {
	var release entity.Release
	err := r.db.WithContext(ctx).First(&release, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// FindByTicker returns every release for a ticker, newest fiscal period first.
func (r *releaseRepository) FindByTicker(ctx context.Context, ticker string) ([]entity.Release, error) {
	var releases []entity.Release
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Order("fiscal_year DESC, fiscal_quarter DESC").
		Find(&releases).Error
	return releases, err
}

// UpdateSummary persists the generated summary fields of a release.
func (r *releaseRepository) UpdateSummary(ctx context.Context, release *entity.Release) error {
	return r.db.WithContext(ctx).Model(release).
		Select("summary", "highlights", "lowlights", "key_metrics").
		Updates(release).Error
}

// LowerAnnouncementDate moves a release's announcement date earlier when a
// newly attached document predates the current value. Later dates never win.
func (r *releaseRepository) LowerAnnouncementDate(ctx context.Context, releaseID uint, date time.Time) error {
	return r.db.WithContext(ctx).Model(&entity.Release{}).
		Where("id = ?", releaseID).
		Update("announcement_date", gorm.Expr("LEAST(COALESCE(announcement_date, ?), ?)", date, date)).Error
}
