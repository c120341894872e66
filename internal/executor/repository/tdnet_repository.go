package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const tdnetSourceName = "tdnet"

// tdnetRepository lists disclosures from the TDnet JSON API. Listings are
// cached in memory so the import and backfill jobs do not hammer the API when
// several tickers resolve to the same page.
type tdnetRepository struct {
	cfg           *config.Config
	logger        *logger.Logger
	client        *http.Client
	inmemoryCache *cache.Cache
}

// NewTDnetRepository creates a new TDnet source client.
func NewTDnetRepository(cfg *config.Config, log *logger.Logger) HistoricalDisclosureRepository {
	return &tdnetRepository{
		cfg:           cfg,
		logger:        log,
		client:        &http.Client{Timeout: 30 * time.Second},
		inmemoryCache: cache.New(cfg.Sources.ListingCacheTTL, 2*cfg.Sources.ListingCacheTTL),
	}
}

func (r *tdnetRepository) Name() string {
	return tdnetSourceName
}

// ListRecent returns the most recent disclosures for a ticker.
func (r *tdnetRepository) ListRecent(ctx context.Context, ticker string) ([]dto.DocumentCandidate, error) {
	return r.ListHistorical(ctx, ticker, 0, 30)
}

// ListHistorical pages backward through a ticker's disclosure history,
// newest first.
func (r *tdnetRepository) ListHistorical(ctx context.Context, ticker string, offset, limit int) ([]dto.DocumentCandidate, error) {
	cacheKey := fmt.Sprintf("tdnet:%s:%d:%d", ticker, offset, limit)
	if cached, found := r.inmemoryCache.Get(cacheKey); found {
		return cached.([]dto.DocumentCandidate), nil
	}

	apiURL := fmt.Sprintf("%s/%s.json?limit=%d&offset=%d", r.cfg.Sources.TDnetBaseURL, ticker, limit, offset)
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create TDnet request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to fetch TDnet listing", logger.ErrorField(err), logger.StringField("url", apiURL))
		return nil, fmt.Errorf("failed to fetch TDnet listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from TDnet", logger.IntField("status_code", resp.StatusCode), logger.StringField("url", apiURL))
		return nil, fmt.Errorf("received non-OK response from TDnet: %d - %s", resp.StatusCode, string(body))
	}

	var listResp dto.TDnetListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode TDnet listing: %w", err)
	}

	candidates := make([]dto.DocumentCandidate, 0, len(listResp.Items))
	for _, item := range listResp.Items {
		doc := item.TDnet
		if doc.DocumentURL == "" {
			continue
		}
		pubDate, err := time.ParseInLocation("2006-01-02 15:04:05", doc.PubDate, utils.GetJSTLocation())
		if err != nil {
			r.logger.Warn("Failed to parse TDnet publication date", logger.StringField("pubdate", doc.PubDate), logger.StringField("title", doc.Title))
			continue
		}
		candidates = append(candidates, dto.DocumentCandidate{
			PDFURL:          doc.DocumentURL,
			Title:           utils.CleanToValidUTF8(doc.Title),
			PublicationDate: pubDate,
			SourceName:      tdnetSourceName,
		})
	}

	r.inmemoryCache.Set(cacheKey, candidates, cache.DefaultExpiration)
	return candidates, nil
}
