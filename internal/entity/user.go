package entity

import (
	"time"

	"gorm.io/gorm"
)

// User is a dashboard subscriber. Authentication lives outside this service;
// only the identity and tracked tickers matter here.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserStock subscribes a user to one ticker, optionally with a custom
// analysis prompt. Unique per (user_id, ticker).
type UserStock struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Ticker       string    `gorm:"type:varchar(10);not null" json:"ticker"`
	CustomPrompt string    `gorm:"type:text" json:"custom_prompt"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the UserStock model.
func (UserStock) TableName() string {
	return "user_stocks"
}
