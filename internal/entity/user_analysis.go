package entity

import (
	"time"

	"gorm.io/datatypes"
)

// UserAnalysis holds one subscriber's personalized analysis of one release.
// Unique per (user_id, release_id); created lazily the first time a
// subscriber is considered for customization, even when no custom prompt is
// set, so "already considered" is persisted state.
type UserAnalysis struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	ReleaseID        uint           `gorm:"not null;index" json:"release_id"`
	CustomAnalysis   datatypes.JSON `json:"custom_analysis,omitempty"`
	CustomPromptUsed *string        `gorm:"type:text" json:"custom_prompt_used,omitempty"`
	NotifiedAt       *time.Time     `json:"notified_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the UserAnalysis model.
func (UserAnalysis) TableName() string {
	return "user_analyses"
}

// AnalysisHistory is the append-only log of superseded personalized analyses.
// A row is written whenever a UserAnalysis value produced under one prompt is
// about to be overwritten by a result produced under a different prompt.
type AnalysisHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	ReleaseID    uint           `gorm:"not null;index" json:"release_id"`
	CustomPrompt string         `gorm:"type:text;not null" json:"custom_prompt"`
	Analysis     datatypes.JSON `gorm:"not null" json:"analysis"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the AnalysisHistory model.
func (AnalysisHistory) TableName() string {
	return "analysis_histories"
}
