package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/logger"
)

func testLogger() *logger.Logger {
	log, err := logger.New("error", "json")
	if err != nil {
		panic(err)
	}
	return log
}

func testConfig() *config.Config {
	return &config.Config{
		Executor: config.Executor{
			MaxConcurrentTasks:      2,
			MaxConcurrentModelCalls: 2,
			ClassifierBatchSize:     10,
			AnalysisMaxDocuments:    3,
			AnalysisMaxPages:        20,
			BackfillBatchSize:       50,
		},
	}
}

// fakeSource is an in-memory DisclosureSourceRepository.
type fakeSource struct {
	name       string
	candidates []dto.DocumentCandidate
	err        error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) ListRecent(ctx context.Context, ticker string) ([]dto.DocumentCandidate, error) {
	return f.candidates, f.err
}

// fakeAIRepository lets each test script the model's behavior.
type fakeAIRepository struct {
	mu             sync.Mutex
	classifyFn     func(title string) (*dto.ClassificationResult, error)
	summaryFn      func(ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error)
	customFn       func(ticker, prompt string, docs []dto.PDFDocument) (*dto.CustomAnalysisResult, error)
	classifyCalls  int
	summaryCalls   int
	customCalls    int
	summaryDocLens []int
}

func (f *fakeAIRepository) ClassifyDisclosure(ctx context.Context, title, publicationDate string) (*dto.ClassificationResult, error) {
	f.mu.Lock()
	f.classifyCalls++
	f.mu.Unlock()
	if f.classifyFn == nil {
		return &dto.ClassificationResult{DocumentType: "other"}, nil
	}
	return f.classifyFn(title)
}

func (f *fakeAIRepository) GenerateReleaseSummary(ctx context.Context, ticker string, docs []dto.PDFDocument) (*dto.ReleaseSummaryResult, error) {
	f.mu.Lock()
	f.summaryCalls++
	f.summaryDocLens = append(f.summaryDocLens, len(docs))
	f.mu.Unlock()
	if f.summaryFn == nil {
		return &dto.ReleaseSummaryResult{Overview: "ok"}, nil
	}
	return f.summaryFn(ticker, docs)
}

func (f *fakeAIRepository) GenerateCustomAnalysis(ctx context.Context, ticker, customPrompt string, docs []dto.PDFDocument) (*dto.CustomAnalysisResult, error) {
	f.mu.Lock()
	f.customCalls++
	f.mu.Unlock()
	if f.customFn == nil {
		return &dto.CustomAnalysisResult{Analysis: "analysis for " + customPrompt}, nil
	}
	return f.customFn(ticker, customPrompt, docs)
}

// fakeEarningsRepo is an in-memory EarningsRepository with the same
// uniqueness behavior as the real table.
type fakeEarningsRepo struct {
	mu     sync.Mutex
	nextID uint
	docs   []entity.Earnings
}

func newFakeEarningsRepo() *fakeEarningsRepo { return &fakeEarningsRepo{nextID: 1} }

func (f *fakeEarningsRepo) CreateIgnoreConflict(ctx context.Context, doc *entity.Earnings) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.docs {
		if existing.SourceURL == doc.SourceURL || existing.ContentHash == doc.ContentHash {
			return false, nil
		}
	}
	doc.ID = f.nextID
	f.nextID++
	f.docs = append(f.docs, *doc)
	return true, nil
}

func (f *fakeEarningsRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*entity.Earnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].SourceURL == sourceURL {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeEarningsRepo) FindByContentHash(ctx context.Context, contentHash string) (*entity.Earnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.docs {
		if f.docs[i].ContentHash == contentHash {
			doc := f.docs[i]
			return &doc, nil
		}
	}
	return nil, nil
}

func (f *fakeEarningsRepo) FindByReleaseID(ctx context.Context, releaseID uint) ([]entity.Earnings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Earnings
	for _, doc := range f.docs {
		if doc.ReleaseID == releaseID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeEarningsRepo) CountByReleaseID(ctx context.Context, releaseID uint) (int64, error) {
	docs, _ := f.FindByReleaseID(ctx, releaseID)
	return int64(len(docs)), nil
}

// fakeReleaseRepo is an in-memory ReleaseRepository keyed on the release identity.
type fakeReleaseRepo struct {
	mu       sync.Mutex
	nextID   uint
	releases map[string]*entity.Release
	updated  []uint
}

func newFakeReleaseRepo() *fakeReleaseRepo {
	return &fakeReleaseRepo{nextID: 1, releases: make(map[string]*entity.Release)}
}

func releaseKey(r *entity.Release) string {
	return fmt.Sprintf("%s|%s|%s|%d", r.Ticker, r.ReleaseKind, r.FiscalYear, r.FiscalQuarter)
}

func (f *fakeReleaseRepo) GetOrCreate(ctx context.Context, release *entity.Release) (*entity.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := releaseKey(release)
	if existing, ok := f.releases[key]; ok {
		copied := *existing
		return &copied, nil
	}
	release.ID = f.nextID
	f.nextID++
	stored := *release
	f.releases[key] = &stored
	copied := stored
	return &copied, nil
}

func (f *fakeReleaseRepo) FindByID(ctx context.Context, id uint) (*entity.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.releases {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeReleaseRepo) FindByTicker(ctx context.Context, ticker string) ([]entity.Release, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Release
	for _, r := range f.releases {
		if r.Ticker == ticker {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReleaseRepo) UpdateSummary(ctx context.Context, release *entity.Release) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, release.ID)
	for _, r := range f.releases {
		if r.ID == release.ID {
			r.Summary = release.Summary
			r.Highlights = release.Highlights
			r.Lowlights = release.Lowlights
			r.KeyMetrics = release.KeyMetrics
		}
	}
	return nil
}

func (f *fakeReleaseRepo) LowerAnnouncementDate(ctx context.Context, releaseID uint, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.releases {
		if r.ID == releaseID {
			if r.AnnouncementDate == nil || date.Before(*r.AnnouncementDate) {
				d := date
				r.AnnouncementDate = &d
			}
		}
	}
	return nil
}

// fakeUserStockRepo is an in-memory UserStockRepository.
type fakeUserStockRepo struct {
	subscriptions []entity.UserStock
}

func (f *fakeUserStockRepo) FindByTicker(ctx context.Context, ticker string) ([]entity.UserStock, error) {
	var out []entity.UserStock
	for _, s := range f.subscriptions {
		if s.Ticker == ticker {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeUserStockRepo) FindByUserAndTicker(ctx context.Context, userID uint, ticker string) (*entity.UserStock, error) {
	for i := range f.subscriptions {
		if f.subscriptions[i].UserID == userID && f.subscriptions[i].Ticker == ticker {
			s := f.subscriptions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStockRepo) DistinctTickers(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range f.subscriptions {
		if _, ok := seen[s.Ticker]; ok {
			continue
		}
		seen[s.Ticker] = struct{}{}
		out = append(out, s.Ticker)
	}
	return out, nil
}

// fakeUserAnalysisRepo is an in-memory UserAnalysisRepository.
type fakeUserAnalysisRepo struct {
	mu       sync.Mutex
	nextID   uint
	analyses map[string]*entity.UserAnalysis
}

func newFakeUserAnalysisRepo() *fakeUserAnalysisRepo {
	return &fakeUserAnalysisRepo{nextID: 1, analyses: make(map[string]*entity.UserAnalysis)}
}

func userAnalysisKey(userID, releaseID uint) string {
	return fmt.Sprintf("%d|%d", userID, releaseID)
}

func (f *fakeUserAnalysisRepo) FindByUserAndRelease(ctx context.Context, userID, releaseID uint) (*entity.UserAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.analyses[userAnalysisKey(userID, releaseID)]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeUserAnalysisRepo) Upsert(ctx context.Context, analysis *entity.UserAnalysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userAnalysisKey(analysis.UserID, analysis.ReleaseID)
	if existing, ok := f.analyses[key]; ok {
		analysis.ID = existing.ID
	} else {
		analysis.ID = f.nextID
		f.nextID++
	}
	stored := *analysis
	f.analyses[key] = &stored
	return nil
}

// fakeHistoryRepo is an in-memory AnalysisHistoryRepository.
type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []entity.AnalysisHistory
}

func (f *fakeHistoryRepo) Create(ctx context.Context, history *entity.AnalysisHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	history.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, *history)
	return nil
}

func (f *fakeHistoryRepo) FindByPrompt(ctx context.Context, userID, releaseID uint, customPrompt string) (*entity.AnalysisHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.UserID == userID && e.ReleaseID == releaseID && e.CustomPrompt == customPrompt {
			return &e, nil
		}
	}
	return nil, nil
}

// fakeBlobStore is an in-memory blobstore.Store.
type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blobs[key], nil
}

func (f *fakeBlobStore) Close() error { return nil }

// fakeAnalyzer is a scriptable ReleaseAnalyzer for customizer and importer tests.
type fakeAnalyzer struct {
	mu           sync.Mutex
	docs         []dto.PDFDocument
	analyzeErr   error
	analyzedIDs  []uint
	prepareCalls int
}

func (f *fakeAnalyzer) AnalyzeRelease(ctx context.Context, release *entity.Release) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzedIDs = append(f.analyzedIDs, release.ID)
	return f.analyzeErr
}

func (f *fakeAnalyzer) PrepareDocuments(ctx context.Context, release *entity.Release) ([]dto.PDFDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prepareCalls++
	return f.docs, nil
}

var (
	_ repository.DisclosureSourceRepository = (*fakeSource)(nil)
	_ repository.AIRepository               = (*fakeAIRepository)(nil)
	_ repository.EarningsRepository         = (*fakeEarningsRepo)(nil)
	_ repository.ReleaseRepository          = (*fakeReleaseRepo)(nil)
	_ repository.UserStockRepository        = (*fakeUserStockRepo)(nil)
	_ repository.UserAnalysisRepository     = (*fakeUserAnalysisRepo)(nil)
	_ repository.AnalysisHistoryRepository  = (*fakeHistoryRepo)(nil)
	_ ReleaseAnalyzer                       = (*fakeAnalyzer)(nil)
)
