package service

import (
	"context"
	"errors"
	"testing"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAggregator struct {
	candidates []dto.DocumentCandidate
}

func (s *stubAggregator) CollectCandidates(ctx context.Context, ticker string) []dto.DocumentCandidate {
	return s.candidates
}

func (s *stubAggregator) FilterCandidates(candidates []dto.DocumentCandidate) []dto.DocumentCandidate {
	return candidates
}

type stubClassifier struct {
	batch ClassificationBatch
}

func (s *stubClassifier) ClassifyBatch(ctx context.Context, candidates []dto.DocumentCandidate) ClassificationBatch {
	return s.batch
}

type stubFetcher struct {
	outcomes map[string]FetchStatus
	releases map[string]*entity.Release
}

func (s *stubFetcher) Fetch(ctx context.Context, run *ImportRun, ticker string, doc dto.ClassifiedDocument) (FetchStatus, *entity.Release, error) {
	status := s.outcomes[doc.PDFURL]
	if status == FetchFailed {
		return FetchFailed, nil, errors.New("download failed")
	}
	return status, s.releases[doc.PDFURL], nil
}

type stubCustomizer struct {
	outcome CustomizeOutcome
	calls   int
}

func (s *stubCustomizer) CustomizeRelease(ctx context.Context, release *entity.Release) CustomizeOutcome {
	s.calls++
	return s.outcome
}

func TestImportCandidatesCountsOutcomes(t *testing.T) {
	releaseQ1 := quarterlyRelease(1)

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/stored.pdf", "2026年3月期 第1四半期決算短信", entity.DocumentTypeSummary, "2025", 1),
		classifiedDoc("https://example.com/existing.pdf", "2026年3月期 第1四半期決算説明資料", entity.DocumentTypePresentation, "2025", 1),
		classifiedDoc("https://example.com/broken.pdf", "2026年3月期 決算短信", entity.DocumentTypeSummary, "2025", 4),
	}

	analyzer := &fakeAnalyzer{}
	customizer := &stubCustomizer{outcome: CustomizeOutcome{Customized: 2, Failed: 1}}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{candidates: make([]dto.DocumentCandidate, 4)},
		&stubClassifier{batch: ClassificationBatch{Classified: classified, Skipped: 1}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{
				"https://example.com/stored.pdf":   FetchStored,
				"https://example.com/existing.pdf": FetchExisting,
				"https://example.com/broken.pdf":   FetchFailed,
			},
			releases: map[string]*entity.Release{
				"https://example.com/stored.pdf": releaseQ1,
			},
		},
		analyzer,
		customizer,
	)

	result := importer.ImportTicker(context.Background(), "7203")

	assert.Equal(t, "7203", result.Ticker)
	assert.Equal(t, 4, result.Candidates)
	assert.Equal(t, 3, result.Classified)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Stored)
	assert.Equal(t, 1, result.Existing)
	assert.Equal(t, 1, result.Failed)

	// Only the release that gained a document is analyzed and customized.
	require.Equal(t, []uint{1}, analyzer.analyzedIDs)
	assert.Equal(t, 1, customizer.calls)
	assert.Equal(t, 1, result.Analyzed)
	assert.Equal(t, 2, result.Customized)
	assert.Equal(t, 1, result.CustomizeFailed)
	assert.False(t, result.IsSuccess)
}

func TestImportCandidatesAnalyzesAffectedReleaseOnce(t *testing.T) {
	releaseQ1 := quarterlyRelease(1)

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/a.pdf", "2026年3月期 第1四半期決算短信", entity.DocumentTypeSummary, "2025", 1),
		classifiedDoc("https://example.com/b.pdf", "2026年3月期 第1四半期決算説明資料", entity.DocumentTypePresentation, "2025", 1),
	}

	analyzer := &fakeAnalyzer{}
	customizer := &stubCustomizer{}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{},
		&stubClassifier{batch: ClassificationBatch{Classified: classified}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{
				"https://example.com/a.pdf": FetchStored,
				"https://example.com/b.pdf": FetchStored,
			},
			releases: map[string]*entity.Release{
				"https://example.com/a.pdf": releaseQ1,
				"https://example.com/b.pdf": releaseQ1,
			},
		},
		analyzer,
		customizer,
	)

	result := importer.ImportCandidates(context.Background(), "7203", make([]dto.DocumentCandidate, 2))

	assert.Equal(t, 2, result.Stored)
	assert.Equal(t, []uint{1}, analyzer.analyzedIDs, "two documents in the same release trigger one analysis")
	assert.Equal(t, 1, result.Analyzed)
	assert.True(t, result.IsSuccess)
}

func TestImportSkipsCustomizationWhenAnalysisFails(t *testing.T) {
	releaseQ1 := quarterlyRelease(1)

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/a.pdf", "2026年3月期 第1四半期決算短信", entity.DocumentTypeSummary, "2025", 1),
	}

	analyzer := &fakeAnalyzer{analyzeErr: errors.New("model unavailable")}
	customizer := &stubCustomizer{}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{},
		&stubClassifier{batch: ClassificationBatch{Classified: classified}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{"https://example.com/a.pdf": FetchStored},
			releases: map[string]*entity.Release{"https://example.com/a.pdf": releaseQ1},
		},
		analyzer,
		customizer,
	)

	result := importer.ImportCandidates(context.Background(), "7203", make([]dto.DocumentCandidate, 1))

	assert.Equal(t, 1, result.AnalysisFailed)
	assert.Zero(t, customizer.calls, "a release without a summary has nothing to customize yet")
	assert.Zero(t, result.Customized)
}

func TestImportCustomizesDespiteAnalysisFailureWhenSummaryExists(t *testing.T) {
	releaseQ1 := quarterlyRelease(1)
	summary := "summary from a prior run"
	releaseQ1.Summary = &summary

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/a.pdf", "2026年3月期 第1四半期決算説明資料", entity.DocumentTypePresentation, "2025", 1),
	}

	analyzer := &fakeAnalyzer{analyzeErr: errors.New("model unavailable")}
	customizer := &stubCustomizer{outcome: CustomizeOutcome{Customized: 1}}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{},
		&stubClassifier{batch: ClassificationBatch{Classified: classified}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{"https://example.com/a.pdf": FetchStored},
			releases: map[string]*entity.Release{"https://example.com/a.pdf": releaseQ1},
		},
		analyzer,
		customizer,
	)

	result := importer.ImportCandidates(context.Background(), "7203", make([]dto.DocumentCandidate, 1))

	assert.Equal(t, 1, result.AnalysisFailed)
	assert.Equal(t, 1, customizer.calls, "the prior summary still supports customization")
	assert.Equal(t, 1, result.Customized)
}

func TestImportReanalyzesExistingReleaseWithoutSummary(t *testing.T) {
	pending := quarterlyRelease(1)
	done := quarterlyRelease(2)
	summary := "already summarized"
	done.Summary = &summary

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/pending.pdf", "2026年3月期 第1四半期決算短信", entity.DocumentTypeSummary, "2025", 1),
		classifiedDoc("https://example.com/done.pdf", "2026年3月期 第2四半期決算短信", entity.DocumentTypeSummary, "2025", 2),
	}

	analyzer := &fakeAnalyzer{}
	customizer := &stubCustomizer{}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{},
		&stubClassifier{batch: ClassificationBatch{Classified: classified}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{
				"https://example.com/pending.pdf": FetchExisting,
				"https://example.com/done.pdf":    FetchExisting,
			},
			releases: map[string]*entity.Release{
				"https://example.com/pending.pdf": pending,
				"https://example.com/done.pdf":    done,
			},
		},
		analyzer,
		customizer,
	)

	result := importer.ImportCandidates(context.Background(), "7203", make([]dto.DocumentCandidate, 2))

	assert.Equal(t, 2, result.Existing)
	assert.Zero(t, result.Stored)
	// Only the release whose earlier analysis never produced a summary is
	// picked up again; the summarized one stays untouched.
	require.Equal(t, []uint{1}, analyzer.analyzedIDs)
	assert.Equal(t, 1, customizer.calls)
	assert.Equal(t, 1, result.Analyzed)
}

func TestImportCandidatesAnalysisFailureIsCounted(t *testing.T) {
	releaseQ1 := quarterlyRelease(1)

	classified := []dto.ClassifiedDocument{
		classifiedDoc("https://example.com/a.pdf", "2026年3月期 第1四半期決算短信", entity.DocumentTypeSummary, "2025", 1),
	}

	analyzer := &fakeAnalyzer{analyzeErr: errors.New("model unavailable")}
	importer := NewDisclosureImporter(
		testLogger(),
		&stubAggregator{},
		&stubClassifier{batch: ClassificationBatch{Classified: classified}},
		&stubFetcher{
			outcomes: map[string]FetchStatus{"https://example.com/a.pdf": FetchStored},
			releases: map[string]*entity.Release{"https://example.com/a.pdf": releaseQ1},
		},
		analyzer,
		&stubCustomizer{},
	)

	result := importer.ImportCandidates(context.Background(), "7203", make([]dto.DocumentCandidate, 1))

	assert.Equal(t, 1, result.AnalysisFailed)
	assert.Zero(t, result.Analyzed)
	assert.False(t, result.IsSuccess)
}
