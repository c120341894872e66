package repository

import (
	"context"
	"errors"

	"golang-disclosure-watcher/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningsRepository defines the interface for interacting with stored
// disclosure documents.
type EarningsRepository interface {
	CreateIgnoreConflict(ctx context.Context, doc *entity.Earnings) (bool, error)
	FindBySourceURL(ctx context.Context, sourceURL string) (*entity.Earnings, error)
	FindByContentHash(ctx context.Context, contentHash string) (*entity.Earnings, error)
	FindByReleaseID(ctx context.Context, releaseID uint) ([]entity.Earnings, error)
	CountByReleaseID(ctx context.Context, releaseID uint) (int64, error)
}

// NewEarningsRepository creates a new instance of EarningsRepository.
func NewEarningsRepository(db *gorm.DB) EarningsRepository {
	return &earningsRepository{
		db: db,
	}
}

type earningsRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts a document unless its source URL or content
// hash already exists. Returns whether a row was actually created.
func (r *earningsRepository) CreateIgnoreConflict(ctx context.Context, doc *entity.Earnings) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoNothing: true,
	}).Create(doc)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// FindBySourceURL returns the document stored for a source URL, or nil when
// the URL has never been ingested.
func (r *earningsRepository) FindBySourceURL(ctx context.Context, sourceURL string) (*entity.Earnings, error) {
	var doc entity.Earnings
	err := r.db.WithContext(ctx).Where("source_url = ?", sourceURL).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByContentHash returns the document stored for a content hash, or nil.
func (r *earningsRepository) FindByContentHash(ctx context.Context, contentHash string) (*entity.Earnings, error) {
	var doc entity.Earnings
	err := r.db.WithContext(ctx).Where("content_hash = ?", contentHash).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByReleaseID returns every document attached to a release.
func (r *earningsRepository) FindByReleaseID(ctx context.Context, releaseID uint) ([]entity.Earnings, error) {
	var docs []entity.Earnings
	err := r.db.WithContext(ctx).
		Where("release_id = ?", releaseID).
		Order("announcement_date ASC, id ASC").
		Find(&docs).Error
	return docs, err
}

// CountByReleaseID returns the number of documents attached to a release.
func (r *earningsRepository) CountByReleaseID(ctx context.Context, releaseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Earnings{}).
		Where("release_id = ?", releaseID).
		Count(&count).Error
	return count, err
}
