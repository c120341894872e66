package repository

import (
	"context"
	"errors"

	"golang-disclosure-watcher/internal/entity"

	"gorm.io/gorm"
)

// AnalysisHistoryRepository defines the interface for the append-only log of
// superseded analyses.
type AnalysisHistoryRepository interface {
	Create(ctx context.Context, history *entity.AnalysisHistory) error
	FindByPrompt(ctx context.Context, userID, releaseID uint, customPrompt string) (*entity.AnalysisHistory, error)
}

// NewAnalysisHistoryRepository creates a new instance of AnalysisHistoryRepository.
func NewAnalysisHistoryRepository(db *gorm.DB) AnalysisHistoryRepository {
	return &analysisHistoryRepository{
		db: db,
	}
}

type analysisHistoryRepository struct {
	db *gorm.DB
}

// Create appends a superseded analysis to the log.
func (r *analysisHistoryRepository) Create(ctx context.Context, history *entity.AnalysisHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

// FindByPrompt returns the most recent archived analysis produced for this
// subscriber, release, and exact prompt text, or nil when none exists.
func (r *analysisHistoryRepository) FindByPrompt(ctx context.Context, userID, releaseID uint, customPrompt string) (*entity.AnalysisHistory, error) {
	var history entity.AnalysisHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND release_id = ? AND custom_prompt = ?", userID, releaseID, customPrompt).
		Order("created_at DESC").
		First(&history).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &history, nil
}
