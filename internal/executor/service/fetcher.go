package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang-disclosure-watcher/internal/entity"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/internal/executor/repository"
	"golang-disclosure-watcher/pkg/blobstore"
	"golang-disclosure-watcher/pkg/logger"
)

// FetchStatus is the terminal outcome of fetching one classified document.
type FetchStatus string

const (
	FetchStored   FetchStatus = "STORED"
	FetchExisting FetchStatus = "EXISTING"
	FetchFailed   FetchStatus = "FAILED"
)

// ImportRun tracks content hashes seen within a single import batch, so two
// URLs in the same run resolving to identical bytes dedup without a second
// database round trip.
type ImportRun struct {
	mu         sync.Mutex
	seenHashes map[string]struct{}
}

// NewImportRun creates the per-batch dedup context.
func NewImportRun() *ImportRun {
	return &ImportRun{seenHashes: make(map[string]struct{})}
}

// isSeen reports whether the hash was already stored earlier in this run.
func (r *ImportRun) isSeen(hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seenHashes[hash]
	return ok
}

// markSeen records a hash. Callers mark only after the document is stored,
// so a failed store does not shadow a later URL carrying the same bytes.
func (r *ImportRun) markSeen(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seenHashes[hash] = struct{}{}
}

// DocumentFetcher downloads classified documents, deduplicates them by source
// URL and content hash, and persists new ones to the blob store and database.
type DocumentFetcher interface {
	Fetch(ctx context.Context, run *ImportRun, ticker string, doc dto.ClassifiedDocument) (FetchStatus, *entity.Release, error)
}

// NewDocumentFetcher creates a new DocumentFetcher.
func NewDocumentFetcher(
	log *logger.Logger,
	earningsRepo repository.EarningsRepository,
	releaseRepo repository.ReleaseRepository,
	resolver ReleaseResolver,
	blobs blobstore.Store,
) DocumentFetcher {
	return &documentFetcher{
		logger:       log,
		earningsRepo: earningsRepo,
		releaseRepo:  releaseRepo,
		resolver:     resolver,
		blobs:        blobs,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

type documentFetcher struct {
	logger       *logger.Logger
	earningsRepo repository.EarningsRepository
	releaseRepo  repository.ReleaseRepository
	resolver     ReleaseResolver
	blobs        blobstore.Store
	client       *http.Client
}

// Fetch runs the full ingestion path for one document. The URL index is
// checked before downloading; the content hash after. Either hit makes the
// document EXISTING and leaves stored state untouched, so redelivered batches
// are harmless. The release is returned for STORED documents and for EXISTING
// documents already indexed in the database, so callers can revisit releases
// whose earlier analysis never produced a summary.
func (f *documentFetcher) Fetch(ctx context.Context, run *ImportRun, ticker string, doc dto.ClassifiedDocument) (FetchStatus, *entity.Release, error) {
	existing, err := f.earningsRepo.FindBySourceURL(ctx, doc.PDFURL)
	if err != nil {
		return FetchFailed, nil, fmt.Errorf("failed to check source URL index: %w", err)
	}
	if existing != nil {
		return f.existingDocument(ctx, existing)
	}

	data, err := f.download(ctx, doc.PDFURL)
	if err != nil {
		return FetchFailed, nil, err
	}

	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	if run.isSeen(contentHash) {
		f.logger.Info("Duplicate content within batch", logger.StringField("url", doc.PDFURL), logger.StringField("hash", contentHash))
		return FetchExisting, nil, nil
	}
	byHash, err := f.earningsRepo.FindByContentHash(ctx, contentHash)
	if err != nil {
		return FetchFailed, nil, fmt.Errorf("failed to check content hash index: %w", err)
	}
	if byHash != nil {
		return f.existingDocument(ctx, byHash)
	}

	release, err := f.resolver.Resolve(ctx, ticker, doc)
	if err != nil {
		return FetchFailed, nil, err
	}

	blobKey := entity.BlobKeyFor(ticker, contentHash)
	if err := f.blobs.Put(ctx, blobKey, data); err != nil {
		return FetchFailed, nil, fmt.Errorf("failed to store PDF blob: %w", err)
	}

	created, err := f.earningsRepo.CreateIgnoreConflict(ctx, &entity.Earnings{
		ReleaseID:        release.ID,
		DocumentType:     doc.DocumentType,
		Ticker:           ticker,
		FiscalYear:       doc.FiscalYear,
		FiscalQuarter:    doc.FiscalQuarter,
		AnnouncementDate: doc.PublicationDate,
		SourceURL:        doc.PDFURL,
		ContentHash:      contentHash,
		BlobKey:          blobKey,
		Title:            doc.Title,
		FileSize:         int64(len(data)),
	})
	if err != nil {
		return FetchFailed, nil, fmt.Errorf("failed to store document row: %w", err)
	}
	run.markSeen(contentHash)
	if !created {
		// A concurrent run won the insert race. The blob write above was
		// an idempotent overwrite of identical bytes.
		return FetchExisting, release, nil
	}

	return FetchStored, release, nil
}

// existingDocument resolves the release an already-stored document belongs
// to, so the import can pick up releases that still await analysis.
func (f *documentFetcher) existingDocument(ctx context.Context, doc *entity.Earnings) (FetchStatus, *entity.Release, error) {
	release, err := f.releaseRepo.FindByID(ctx, doc.ReleaseID)
	if err != nil {
		return FetchFailed, nil, fmt.Errorf("failed to load release of existing document: %w", err)
	}
	return FetchExisting, release, nil
}

func (f *documentFetcher) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Error("Failed to download PDF", logger.ErrorField(err), logger.StringField("url", pdfURL))
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download PDF, status code: %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.Contains(contentType, "application/pdf") {
		return nil, fmt.Errorf("response is not a PDF (content-type %q): %s", contentType, pdfURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("downloaded PDF is empty: %s", pdfURL)
	}
	return data, nil
}
