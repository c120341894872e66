package repository

import (
	"context"

	"golang-disclosure-watcher/internal/executor/dto"
)

// DisclosureSourceRepository is one upstream feed of disclosure documents.
// Implementations return raw candidates; deduplication and filtering happen
// downstream, so overlapping sources are fine.
type DisclosureSourceRepository interface {
	Name() string
	ListRecent(ctx context.Context, ticker string) ([]dto.DocumentCandidate, error)
}

// HistoricalDisclosureRepository is a source that can page backward through a
// company's full disclosure history. Used by the backfill job.
type HistoricalDisclosureRepository interface {
	DisclosureSourceRepository
	ListHistorical(ctx context.Context, ticker string, offset, limit int) ([]dto.DocumentCandidate, error)
}
