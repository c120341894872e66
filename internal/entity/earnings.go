package entity

import (
	"fmt"
	"time"
)

// Earnings represents one stored disclosure document attached to a release.
// content_hash is globally unique: two URLs resolving to byte-identical PDFs
// collapse to a single row.
type Earnings struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	ReleaseID        uint         `gorm:"not null;index" json:"release_id"`
	DocumentType     DocumentType `gorm:"type:varchar(30);not null" json:"document_type"`
	Ticker           string       `gorm:"type:varchar(10);not null;index" json:"ticker"`
	FiscalYear       string       `gorm:"type:varchar(4);not null" json:"fiscal_year"`
	FiscalQuarter    int          `gorm:"not null;default:0" json:"fiscal_quarter"`
	AnnouncementDate time.Time    `gorm:"not null" json:"announcement_date"`
	SourceURL        string       `gorm:"unique;not null" json:"source_url"`
	ContentHash      string       `gorm:"unique;not null" json:"content_hash"`
	BlobKey          string       `gorm:"not null" json:"blob_key"`
	Title            string       `gorm:"not null" json:"title"`
	FileSize         int64        `json:"file_size"`
	CreatedAt        time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Earnings model.
func (Earnings) TableName() string {
	return "earnings"
}

// BlobKeyFor derives the deterministic blob store key for a document.
func BlobKeyFor(ticker, contentHash string) string {
	return fmt.Sprintf("%s/%s.pdf", ticker, contentHash)
}
