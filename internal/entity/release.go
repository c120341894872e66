package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// QuarterNone is the fiscal_quarter sentinel for non-periodic releases
// (mid-term plans, growth potential documents). The storage layer keeps the
// quarter NOT NULL so the composite uniqueness constraint treats "no quarter"
// as its own distinct value.
const QuarterNone = 0

// Release aggregates all documents belonging to one fiscal disclosure event.
// At most one row exists per (ticker, release_kind, fiscal_year, fiscal_quarter).
type Release struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ReleaseKind      ReleaseKind    `gorm:"type:varchar(30);not null" json:"release_kind"`
	Ticker           string         `gorm:"type:varchar(10);not null" json:"ticker"`
	FiscalYear       string         `gorm:"type:varchar(4);not null" json:"fiscal_year"`
	FiscalQuarter    int            `gorm:"not null;default:0" json:"fiscal_quarter"`
	Summary          *string        `gorm:"type:text" json:"summary,omitempty"`
	Highlights       pq.StringArray `gorm:"type:text[]" json:"highlights,omitempty"`
	Lowlights        pq.StringArray `gorm:"type:text[]" json:"lowlights,omitempty"`
	KeyMetrics       datatypes.JSON `json:"key_metrics,omitempty"`
	AnnouncementDate *time.Time     `json:"announcement_date,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Release model.
func (Release) TableName() string {
	return "releases"
}

// HasQuarter reports whether the release belongs to a specific fiscal quarter.
func (r *Release) HasQuarter() bool {
	return r.FiscalQuarter != QuarterNone
}
