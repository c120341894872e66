package repository

import (
	"context"
	"errors"

	"golang-disclosure-watcher/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserAnalysisRepository defines the interface for interacting with
// per-subscriber release analyses.
type UserAnalysisRepository interface {
	FindByUserAndRelease(ctx context.Context, userID, releaseID uint) (*entity.UserAnalysis, error)
	Upsert(ctx context.Context, analysis *entity.UserAnalysis) error
}

// NewUserAnalysisRepository creates a new instance of UserAnalysisRepository.
func NewUserAnalysisRepository(db *gorm.DB) UserAnalysisRepository {
	return &userAnalysisRepository{
		db: db,
	}
}

type userAnalysisRepository struct {
	db *gorm.DB
}

// FindByUserAndRelease returns the subscriber's analysis for a release, or
// nil when the subscriber has never been considered for it.
func (r *userAnalysisRepository) FindByUserAndRelease(ctx context.Context, userID, releaseID uint) (*entity.UserAnalysis, error) {
	var analysis entity.UserAnalysis
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND release_id = ?", userID, releaseID).
		First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Upsert inserts or replaces the subscriber's analysis for a release, keyed
// on (user_id, release_id).
func (r *userAnalysisRepository) Upsert(ctx context.Context, analysis *entity.UserAnalysis) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "release_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"custom_analysis", "custom_prompt_used", "notified_at", "updated_at"}),
	}).Create(analysis).Error
}
