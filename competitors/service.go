// Package competitors discovers plausible competitor storefronts for a
// brand through a public search interface and runs the full insights
// extraction against each one that resolves to a Shopify store.
package competitors

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopify-insights/insights"
	"shopify-insights/internal/types"
	"shopify-insights/utils"
)

// The HTML (non-JS) DuckDuckGo endpoint tolerates plain GET scraping.
const defaultSearchURL = "https://html.duckduckgo.com/html/"

var (
	tldSuffixRe   = regexp.MustCompile(`\.[a-z]{2,}$`)
	indicatorRe   = regexp.MustCompile(`\s+(?:vs|versus|alternative|competitor|similar|like|compare)\s+`)
	indicatorWord = []string{"vs", "versus", "alternative", "competitor", "similar", "like", "compare"}
)

// Service discovers competitor storefronts for one target store.
type Service struct {
	storeURL  string
	searchURL string
	config    *types.Config
	logger    types.Logger
	http      *utils.HTTPClient
}

// NewService creates a competitor discovery service for the given store URL.
func NewService(storeURL string, config *types.Config, logger types.Logger) *Service {
	return &Service{
		storeURL:  storeURL,
		searchURL: defaultSearchURL,
		config:    config,
		logger:    logger,
		http:      utils.NewHTTPClient(config, logger),
	}
}

// CompetitorInsights discovers up to limit competitor storefronts and
// assembles insights for each. Any single candidate's resolution or
// extraction failure is logged and skipped; the result may be shorter than
// requested but discovery itself never fails.
func (s *Service) CompetitorInsights(ctx context.Context, limit int) []*types.StoreInsights {
	brand := brandToken(s.storeURL)
	names := s.searchCompetitors(ctx, brand, limit)
	s.logger.Infof("Found %d competitor candidates for %q", len(names), brand)

	var results []*types.StoreInsights
	for _, name := range names {
		storeURL, ok := s.resolveStorefront(ctx, name)
		if !ok {
			s.logger.Debugf("No storefront resolved for candidate %q", name)
			continue
		}

		svc := insights.NewService(storeURL, s.config, s.logger)
		ins, err := svc.Insights(ctx)
		svc.Close()
		if err != nil {
			s.logger.Warnf("Failed to extract insights for competitor %s: %v", storeURL, err)
			continue
		}

		results = append(results, ins)
		if len(results) >= limit {
			break
		}
	}
	return results
}

// brandToken derives a searchable brand name from the store URL's host:
// the leading www. label and the trailing TLD-like suffix are stripped.
func brandToken(storeURL string) string {
	parsed, err := url.Parse(insights.NormalizeURL(storeURL))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	return tldSuffixRe.ReplaceAllString(host, "")
}

// searchCompetitors issues phrased queries and harvests candidate names
// from result titles that contain a competitor-indicator word. Candidates
// are deduplicated and capped at limit; their order is not a contract.
func (s *Service) searchCompetitors(ctx context.Context, brand string, limit int) []string {
	queries := []string{
		brand + " competitors",
		"brands like " + brand,
		"alternatives to " + brand,
	}

	var candidates []string
	for _, query := range queries {
		doc, err := s.searchPage(ctx, query)
		if err != nil {
			s.logger.Warnf("Competitor search %q failed: %v", query, err)
			continue
		}

		doc.Find(".result__title").Each(func(_ int, res *goquery.Selection) {
			title := strings.TrimSpace(res.Find("a").First().Text())
			if title == "" {
				return
			}
			lower := strings.ToLower(title)
			if strings.Contains(lower, strings.ToLower(brand)) {
				return
			}
			if !containsIndicator(lower) {
				return
			}
			for _, part := range indicatorRe.Split(lower, -1) {
				part = strings.TrimSpace(part)
				if part != "" && part != strings.ToLower(brand) {
					candidates = append(candidates, part)
				}
			}
		})

		if len(candidates) >= limit {
			break
		}
	}

	return dedupeCap(candidates, limit)
}

// resolveStorefront issues one "<name> official website" query and accepts
// the first result URL exhibiting the Shopify fingerprint.
func (s *Service) resolveStorefront(ctx context.Context, name string) (string, bool) {
	doc, err := s.searchPage(ctx, name+" official website")
	if err != nil {
		s.logger.Warnf("Storefront search for %q failed: %v", name, err)
		return "", false
	}

	var storeURL string
	doc.Find(".result__url").EachWithBreak(func(_ int, res *goquery.Selection) bool {
		candidate := strings.TrimSpace(res.Text())
		if candidate == "" {
			return true
		}
		if resolved, ok := insights.Storefront(ctx, s.http, candidate); ok {
			storeURL = resolved
			return false
		}
		return true
	})

	return storeURL, storeURL != ""
}

func (s *Service) searchPage(ctx context.Context, query string) (*goquery.Document, error) {
	body, err := s.http.Get(ctx, s.searchURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(string(body)))
}

func containsIndicator(title string) bool {
	for _, word := range indicatorWord {
		if strings.Contains(title, word) {
			return true
		}
	}
	return false
}

func dedupeCap(values []string, limit int) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// Close releases the search transport.
func (s *Service) Close() {
	if s.http != nil {
		s.http.Close()
	}
}
