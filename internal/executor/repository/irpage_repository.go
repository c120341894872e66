package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-disclosure-watcher/internal/executor/config"
	"golang-disclosure-watcher/internal/executor/dto"
	"golang-disclosure-watcher/pkg/logger"
	"golang-disclosure-watcher/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

const irpageSourceName = "ir_page"

// Date formats companies commonly use on IR pages.
var irpageDateFormats = []string{
	"2006年1月2日",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02",
}

// irpageRepository scrapes a company's IR library page for PDF links. It is
// the weakest source: dates come from text near the anchor and some pages
// yield nothing, so it only supplements the structured feeds.
type irpageRepository struct {
	cfg    *config.Config
	logger *logger.Logger
	client *http.Client
}

// NewIRPageRepository creates a new IR page scraper.
func NewIRPageRepository(cfg *config.Config, log *logger.Logger) DisclosureSourceRepository {
	return &irpageRepository{
		cfg:    cfg,
		logger: log,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *irpageRepository) Name() string {
	return irpageSourceName
}

// ListRecent scrapes the ticker's IR page and returns every dated PDF link.
func (r *irpageRepository) ListRecent(ctx context.Context, ticker string) ([]dto.DocumentCandidate, error) {
	pageURL := fmt.Sprintf(r.cfg.Sources.IRPageURLTemplate, ticker)

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create IR page request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to fetch IR page", logger.ErrorField(err), logger.StringField("url", pageURL))
		return nil, fmt.Errorf("failed to fetch IR page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch IR page, status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse IR page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse IR page URL: %w", err)
	}

	var candidates []dto.DocumentCandidate
	doc.Find(`a[href]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		pdfURL := base.ResolveReference(ref).String()

		title := strings.TrimSpace(sel.Text())
		if title == "" {
			title, _ = sel.Attr("title")
		}
		if title == "" {
			return
		}

		pubDate, ok := r.dateNearAnchor(sel)
		if !ok {
			r.logger.Debug("No publication date found near PDF link", logger.StringField("url", pdfURL))
			return
		}

		candidates = append(candidates, dto.DocumentCandidate{
			PDFURL:          pdfURL,
			Title:           utils.CleanToValidUTF8(title),
			PublicationDate: pubDate,
			SourceName:      irpageSourceName,
		})
	})

	return candidates, nil
}

// dateNearAnchor looks for a publication date in the anchor's own row or
// list item, then in its immediate parent.
func (r *irpageRepository) dateNearAnchor(sel *goquery.Selection) (time.Time, bool) {
	for _, scope := range []*goquery.Selection{sel.Closest("tr"), sel.Closest("li"), sel.Parent()} {
		if scope.Length() == 0 {
			continue
		}
		if t, ok := parseIRPageDate(scope.Text()); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseIRPageDate(text string) (time.Time, bool) {
	for _, field := range strings.Fields(strings.TrimSpace(text)) {
		for _, format := range irpageDateFormats {
			if t, err := time.ParseInLocation(format, field, utils.GetJSTLocation()); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
