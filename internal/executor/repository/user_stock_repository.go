package repository

import (
	"context"
	"errors"

	"golang-disclosure-watcher/internal/entity"

	"gorm.io/gorm"
)

// UserStockRepository defines the interface for interacting with ticker
// subscriptions.
type UserStockRepository interface {
	FindByTicker(ctx context.Context, ticker string) ([]entity.UserStock, error)
	FindByUserAndTicker(ctx context.Context, userID uint, ticker string) (*entity.UserStock, error)
	DistinctTickers(ctx context.Context) ([]string, error)
}

// NewUserStockRepository creates a new instance of UserStockRepository.
func NewUserStockRepository(db *gorm.DB) UserStockRepository {
	return &userStockRepository{
		db: db,
	}
}

type userStockRepository struct {
	db *gorm.DB
}

// FindByTicker returns every subscription to a ticker.
func (r *userStockRepository) FindByTicker(ctx context.Context, ticker string) ([]entity.UserStock, error) {
	var subscriptions []entity.UserStock
	err := r.db.WithContext(ctx).Where("ticker = ?", ticker).Find(&subscriptions).Error
	return subscriptions, err
}

// FindByUserAndTicker returns one user's subscription to a ticker, or nil.
func (r *userStockRepository) FindByUserAndTicker(ctx context.Context, userID uint, ticker string) (*entity.UserStock, error) {
	var subscription entity.UserStock
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND ticker = ?", userID, ticker).
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// DistinctTickers returns every ticker at least one user subscribes to.
func (r *userStockRepository) DistinctTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := r.db.WithContext(ctx).Model(&entity.UserStock{}).
		Distinct("ticker").
		Order("ticker").
		Pluck("ticker", &tickers).Error
	return tickers, err
}
