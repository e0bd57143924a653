package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/incident-watch/backend/internal/model"
	"github.com/incident-watch/backend/pkg/logger"
)

const (
	minTitleLength  = 15
	maxItemsPerPage = 50
	maxBodyChars    = 5000

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Source describes one monitored news portal.
type Source struct {
	Name string
	URL  string
	Kind string
}

// Scraper harvests candidate items from news portals. Network failures are
// logged and converted to empty results, never surfaced to the pipeline.
type Scraper struct {
	httpClient *http.Client
}

func New(timeoutSec int) *Scraper {
	if timeoutSec <= 0 {
		timeoutSec = 15
	}
	return &Scraper{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

// Scrape returns the candidate items currently listed on a source's front
// page. An unreachable or unparseable page yields an empty list.
func (s *Scraper) Scrape(ctx context.Context, source Source) []model.CandidateItem {
	doc, err := s.fetchDocument(ctx, source.URL)
	if err != nil {
		logger.Warn("Failed to fetch source",
			zap.String("source", source.Name),
			zap.Error(err),
		)
		return nil
	}

	items := s.harvestHeadlines(doc, source)

	logger.Info("Source scraped",
		zap.String("source", source.Name),
		zap.Int("items", len(items)),
	)

	return items
}

// ArticleContent fetches the body text of a single article, or "" when the
// page cannot be fetched or parsed.
func (s *Scraper) ArticleContent(ctx context.Context, url string) string {
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		logger.Warn("Failed to fetch article", zap.String("url", url), zap.Error(err))
		return ""
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	text := doc.Find("article").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Find("body").Text()
	}

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	return truncateUTF8(text, maxBodyChars)
}

// truncateUTF8 caps s at max bytes without splitting a multi-byte rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}

// harvestHeadlines extracts headline/link pairs. The primary strategy
// walks h2/h3 headers with an anchor; when that yields too little, a
// card-div fallback covers grid layouts.
func (s *Scraper) harvestHeadlines(doc *goquery.Document, source Source) []model.CandidateItem {
	var items []model.CandidateItem
	seen := make(map[string]struct{})

	doc.Find("h2, h3").EachWithBreak(func(i int, header *goquery.Selection) bool {
		if len(items) >= maxItemsPerPage {
			return false
		}

		link := header.Find("a").First()
		if link.Length() == 0 {
			link = header.ParentsFiltered("a").First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		title := strings.TrimSpace(header.Text())
		if len(title) < minTitleLength {
			return true
		}
		if _, dup := seen[title]; dup {
			return true
		}
		seen[title] = struct{}{}

		body := title
		if desc := header.NextAllFiltered("p").First(); desc.Length() > 0 {
			if text := strings.TrimSpace(desc.Text()); text != "" {
				body = text
			}
		}

		items = append(items, model.CandidateItem{
			Title:  title,
			Body:   body,
			URL:    absoluteURL(source.URL, href),
			Source: source.Name,
		})
		return true
	})

	if len(items) < 5 {
		doc.Find("div[class*=card], div[class*=Card]").EachWithBreak(func(i int, card *goquery.Selection) bool {
			if len(items) >= maxItemsPerPage {
				return false
			}

			titleElem := card.Find("h2, h3, h4").First()
			link := card.Find("a[href]").First()
			if titleElem.Length() == 0 || link.Length() == 0 {
				return true
			}

			title := strings.TrimSpace(titleElem.Text())
			if len(title) < minTitleLength {
				return true
			}
			if _, dup := seen[title]; dup {
				return true
			}
			seen[title] = struct{}{}

			href, _ := link.Attr("href")
			items = append(items, model.CandidateItem{
				Title:  title,
				Body:   title,
				URL:    absoluteURL(source.URL, href),
				Source: source.Name,
			})
			return true
		})
	}

	return items
}

func absoluteURL(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
