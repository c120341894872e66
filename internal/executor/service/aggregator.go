package service

import (
	"context"
	"strings"
	"sync"

	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"
)

// Titles must contain one of these fragments to be worth a classification
// call. Everything else (dividends, personnel, governance notices) is dropped
// before the model ever sees it.
var disclosureKeywords = []string{
	"決算短信",
	"決算説明",
	"説明会資料",
	"説明資料",
	"補足資料",
	"成長可能性",
	"中期経営計画",
	"中期計画",
	"決算補足",
}

// CandidateAggregator merges disclosure listings from every configured source
// into one candidate batch per ticker.
type CandidateAggregator interface {
	CollectCandidates(ctx context.Context, ticker string) []dto.DocumentCandidate
	FilterCandidates(candidates []dto.DocumentCandidate) []dto.DocumentCandidate
}

// NewCandidateAggregator creates a new CandidateAggregator over the given sources.
func NewCandidateAggregator(log *logger.Logger, sources []repository.DisclosureSourceRepository) CandidateAggregator {
	return &candidateAggregator{
		logger:  log,
		sources: sources,
	}
}

type candidateAggregator struct {
	logger  *logger.Logger
	sources []repository.DisclosureSourceRepository
}

// CollectCandidates queries all sources concurrently and merges their
// listings in configured source order, so the primary source wins URL-dedup
// ties regardless of which listing returned first. A failing source is logged
// and contributes nothing; the others still produce a batch. Candidates whose
// title matches no disclosure keyword are dropped.
func (a *candidateAggregator) CollectCandidates(ctx context.Context, ticker string) []dto.DocumentCandidate {
	var wg sync.WaitGroup
	listings := make([][]dto.DocumentCandidate, len(a.sources))

	for i, source := range a.sources {
		i, source := i, source
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			candidates, err := source.ListRecent(ctx, ticker)
			if err != nil {
				a.logger.Error("Source listing failed",
					logger.ErrorField(err),
					logger.StringField("source", source.Name()),
					logger.StringField("ticker", ticker),
				)
				return
			}
			listings[i] = candidates
		})
	}
	wg.Wait()

	var collected []dto.DocumentCandidate
	for _, listing := range listings {
		collected = append(collected, listing...)
	}
	return a.FilterCandidates(collected)
}

// FilterCandidates applies URL deduplication and the keyword pre-filter to an
// already-collected batch. Exposed separately for the backfill path, which
// lists candidates itself.
func (a *candidateAggregator) FilterCandidates(candidates []dto.DocumentCandidate) []dto.DocumentCandidate {
	seen := make(map[string]struct{}, len(candidates))
	filtered := make([]dto.DocumentCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.PDFURL]; ok {
			continue
		}
		seen[c.PDFURL] = struct{}{}

		if !matchesDisclosureKeyword(c.Title) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func matchesDisclosureKeyword(title string) bool {
	for _, keyword := range disclosureKeywords {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}
