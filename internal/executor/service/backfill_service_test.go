package service

import (
	"context"
	"errors"
	"testing"

	"golang-disclosure-watcher/internal/executor/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHistoricalSource struct {
	fakeSource
	pages   map[int][]dto.DocumentCandidate
	listErr error
	offsets []int
}

func (s *stubHistoricalSource) ListHistorical(ctx context.Context, ticker string, offset, limit int) ([]dto.DocumentCandidate, error) {
	s.offsets = append(s.offsets, offset)
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.pages[offset], nil
}

type stubImporter struct {
	calls   int
	tickers []string
}

func (s *stubImporter) ImportTicker(ctx context.Context, ticker string) dto.ImportResult {
	s.calls++
	s.tickers = append(s.tickers, ticker)
	return dto.ImportResult{Ticker: ticker}
}

func (s *stubImporter) ImportCandidates(ctx context.Context, ticker string, candidates []dto.DocumentCandidate) dto.ImportResult {
	s.calls++
	s.tickers = append(s.tickers, ticker)
	return dto.ImportResult{Ticker: ticker, Candidates: len(candidates)}
}

func newBackfillFixture(source *stubHistoricalSource, importer *stubImporter) *backfillService {
	return &backfillService{
		cfg:        testConfig(),
		logger:     testLogger(),
		historical: source,
		aggregator: &stubAggregator{},
		importer:   importer,
	}
}

func TestProcessSliceSurfacesListingErrorForRedelivery(t *testing.T) {
	source := &stubHistoricalSource{listErr: errors.New("upstream 502")}
	importer := &stubImporter{}
	svc := newBackfillFixture(source, importer)

	err := svc.processSlice(context.Background(), dto.BackfillContinuation{Ticker: "7203", Offset: 100, BatchSize: 50})

	// A failed slice leaves its continuation unacked, so nothing downstream
	// of the listing may run.
	require.Error(t, err)
	assert.Equal(t, []int{100}, source.offsets)
	assert.Zero(t, importer.calls)
}

func TestProcessSliceImportsShortPageWithoutContinuation(t *testing.T) {
	source := &stubHistoricalSource{pages: map[int][]dto.DocumentCandidate{
		0: make([]dto.DocumentCandidate, 3),
	}}
	importer := &stubImporter{}
	svc := newBackfillFixture(source, importer)

	// A page shorter than the batch size ends the walk; no next offset is
	// enqueued (the nil stream client would panic if it were).
	err := svc.processSlice(context.Background(), dto.BackfillContinuation{Ticker: "7203", Offset: 0, BatchSize: 50})

	require.NoError(t, err)
	assert.Equal(t, 1, importer.calls)
	assert.Equal(t, []string{"7203"}, importer.tickers)
}

func TestProcessSliceCompletesOnEmptyPage(t *testing.T) {
	source := &stubHistoricalSource{pages: map[int][]dto.DocumentCandidate{}}
	importer := &stubImporter{}
	svc := newBackfillFixture(source, importer)

	err := svc.processSlice(context.Background(), dto.BackfillContinuation{Ticker: "7203", Offset: 500, BatchSize: 50})

	require.NoError(t, err)
	assert.Zero(t, importer.calls)
}
