package repository

import (
	"context"
	"fmt"
	"strings"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"

	"github.com/mmcdole/gofeed"
)

const irbankSourceName = "irbank_rss"

// irbankRSSRepository lists disclosures from a per-company RSS feed. Items
// without a PDF link or a parseable publication date are dropped here; they
// can never become stored documents.
type irbankRSSRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	parser *gofeed.Parser
}

// NewIRBankRSSRepository creates a new RSS source client.
func NewIRBankRSSRepository(cfg *config.Config, log *logger.Logger) DisclosureSourceRepository {
	return &irbankRSSRepository{
		cfg:    cfg,
		logger: log,
		parser: gofeed.NewParser(),
	}
}

func (r *irbankRSSRepository) Name() string {
	return irbankSourceName
}

// ListRecent returns the candidates currently present in the ticker's feed.
func (r *irbankRSSRepository) ListRecent(ctx context.Context, ticker string) ([]dto.DocumentCandidate, error) {
	feedURL := fmt.Sprintf(r.cfg.Sources.RSSURLTemplate, ticker)

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.logger.Error("Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("url", feedURL))
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	var candidates []dto.DocumentCandidate
	for _, item := range feed.Items {
		pdfURL := pdfLinkFromItem(item)
		if pdfURL == "" {
			continue
		}
		if item.PublishedParsed == nil {
			r.logger.Warn("RSS item has no parseable publication date", logger.StringField("title", item.Title))
			continue
		}
		candidates = append(candidates, dto.DocumentCandidate{
			PDFURL:          pdfURL,
			Title:           utils.CleanToValidUTF8(item.Title),
			PublicationDate: item.PublishedParsed.In(utils.GetJSTLocation()),
			SourceName:      irbankSourceName,
		})
	}

	return candidates, nil
}

// pdfLinkFromItem prefers an explicit PDF enclosure over the item link.
func pdfLinkFromItem(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc.Type == "application/pdf" || strings.HasSuffix(strings.ToLower(enc.URL), ".pdf") {
			return enc.URL
		}
	}
	if strings.HasSuffix(strings.ToLower(item.Link), ".pdf") {
		return item.Link
	}
	return ""
}
