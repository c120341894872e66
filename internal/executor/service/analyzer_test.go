package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.Cell(40, 10, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func storeDoc(t *testing.T, earnings *fakeEarningsRepo, blobs *fakeBlobStore, releaseID uint, docType entity.DocumentType, title string, pdf []byte, announced time.Time) {
	t.Helper()
	hash := fmt.Sprintf("%s-%s", docType, title)
	key := entity.BlobKeyFor("7203", hash)
	require.NoError(t, blobs.Put(context.Background(), key, pdf))
	created, err := earnings.CreateIgnoreConflict(context.Background(), &entity.Earnings{
		ReleaseID:        releaseID,
		DocumentType:     docType,
		Ticker:           "7203",
		FiscalYear:       "2025",
		FiscalQuarter:    1,
		AnnouncementDate: announced,
		SourceURL:        "https://example.com/" + hash + ".pdf",
		ContentHash:      hash,
		BlobKey:          key,
		Title:            title,
	})
	require.NoError(t, err)
	require.True(t, created)
}

func newAnalyzerFixture(t *testing.T, ai *fakeAIRepository) (ReleaseAnalyzer, *fakeEarningsRepo, *fakeReleaseRepo, *fakeBlobStore, *entity.Release) {
	t.Helper()
	earnings := newFakeEarningsRepo()
	releases := newFakeReleaseRepo()
	blobs := newFakeBlobStore()
	release, err := releases.GetOrCreate(context.Background(), &entity.Release{
		ReleaseKind:   entity.ReleaseKindQuarterlyEarnings,
		Ticker:        "7203",
		FiscalYear:    "2025",
		FiscalQuarter: 1,
	})
	require.NoError(t, err)
	analyzer := NewReleaseAnalyzer(testConfig(), testLogger(), ai, earnings, releases, blobs)
	return analyzer, earnings, releases, blobs, release
}

func TestAnalyzeReleasePersistsSummary(t *testing.T) {
	ai := &fakeAIRepository{
		summaryFn: func(ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error) {
			return &dto.ReleaseSummaryResult{
				Overview:   "solid quarter",
				Highlights: []string{"revenue up"},
				Lowlights:  []string{"margin pressure"},
				KeyMetrics: map[string]string{"売上高": "1,234億円"},
			}, nil
		},
	}
	analyzer, earnings, releases, blobs, release := newAnalyzerFixture(t, ai)
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "tanshin", makePDF(t, 3), time.Now())

	require.NoError(t, analyzer.AnalyzeRelease(context.Background(), release))

	updated, err := releases.FindByID(context.Background(), release.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Summary)
	assert.Equal(t, "solid quarter", *updated.Summary)
	assert.Equal(t, []string{"revenue up"}, []string(updated.Highlights))
	assert.NotEmpty(t, updated.KeyMetrics)
}

func TestPrepareDocumentsOrdersByPriorityAndCaps(t *testing.T) {
	ai := &fakeAIRepository{}
	cfg := testConfig()
	cfg.Executor.AnalysisMaxDocuments = 2

	earnings := newFakeEarningsRepo()
	releases := newFakeReleaseRepo()
	blobs := newFakeBlobStore()
	release, err := releases.GetOrCreate(context.Background(), &entity.Release{
		ReleaseKind:   entity.ReleaseKindQuarterlyEarnings,
		Ticker:        "7203",
		FiscalYear:    "2025",
		FiscalQuarter: 1,
	})
	require.NoError(t, err)
	analyzer := NewReleaseAnalyzer(cfg, testLogger(), ai, earnings, releases, blobs)

	pdf := makePDF(t, 2)
	now := time.Now()
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeMidTermPlan, "plan", pdf, now)
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypePresentation, "slides", pdf, now)
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "tanshin", pdf, now)

	docs, err := analyzer.PrepareDocuments(context.Background(), release)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, entity.DocumentTypeSummary, docs[0].DocumentType)
	assert.Equal(t, entity.DocumentTypePresentation, docs[1].DocumentType)
}

func TestPrepareDocumentsKeepsNewestOfEachType(t *testing.T) {
	ai := &fakeAIRepository{}
	analyzer, earnings, _, blobs, release := newAnalyzerFixture(t, ai)

	pdf := makePDF(t, 2)
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "old", pdf, time.Now().Add(-24*time.Hour))
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "corrected", pdf, time.Now())

	docs, err := analyzer.PrepareDocuments(context.Background(), release)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "corrected", docs[0].Title)
}

func TestPrepareDocumentsTrimsToPageBudget(t *testing.T) {
	ai := &fakeAIRepository{}
	cfg := testConfig()
	cfg.Executor.AnalysisMaxPages = 2

	earnings := newFakeEarningsRepo()
	releases := newFakeReleaseRepo()
	blobs := newFakeBlobStore()
	release, err := releases.GetOrCreate(context.Background(), &entity.Release{
		ReleaseKind:   entity.ReleaseKindQuarterlyEarnings,
		Ticker:        "7203",
		FiscalYear:    "2025",
		FiscalQuarter: 1,
	})
	require.NoError(t, err)
	analyzer := NewReleaseAnalyzer(cfg, testLogger(), ai, earnings, releases, blobs)

	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "long", makePDF(t, 6), time.Now())

	docs, err := analyzer.PrepareDocuments(context.Background(), release)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].Pages)
}

func TestAnalyzeReleaseDegradesToSingleDocuments(t *testing.T) {
	ai := &fakeAIRepository{
		summaryFn: func(ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error) {
			if len(docs) > 1 {
				return nil, errors.New("payload too large")
			}
			return &dto.ReleaseSummaryResult{Overview: "from " + docs[0].Title}, nil
		},
	}
	analyzer, earnings, releases, blobs, release := newAnalyzerFixture(t, ai)

	pdf := makePDF(t, 2)
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypeSummary, "tanshin", pdf, time.Now())
	storeDoc(t, earnings, blobs, release.ID, entity.DocumentTypePresentation, "slides", pdf, time.Now())

	require.NoError(t, analyzer.AnalyzeRelease(context.Background(), release))

	updated, err := releases.FindByID(context.Background(), release.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.Summary)
	// Degradation walks documents in priority order, so the summary comes
	// from the earnings summary PDF.
	assert.Equal(t, "from tanshin", *updated.Summary)
	assert.Equal(t, []int{2, 1}, ai.summaryDocLens)
}

func TestAnalyzeReleaseIsNoOpWithoutDocuments(t *testing.T) {
	ai := &fakeAIRepository{}
	analyzer, _, releases, _, release := newAnalyzerFixture(t, ai)

	require.NoError(t, analyzer.AnalyzeRelease(context.Background(), release))
	assert.Zero(t, ai.summaryCalls)

	updated, err := releases.FindByID(context.Background(), release.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Summary, "a release without documents stays unsummarized")
}
