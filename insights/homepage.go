package insights

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopify-insights/internal/types"
)

var (
	titleSuffixRe   = regexp.MustCompile(`\s*\|\s*.*$`)
	productHandleRe = regexp.MustCompile(`/products/([a-zA-Z0-9-]+)`)
)

// socialPlatforms maps platforms to URL patterns, evaluated top to bottom.
// The first platform that matches a link wins, so a link is never counted
// for two platforms.
var socialPlatforms = []struct {
	platform string
	pattern  *regexp.Regexp
}{
	{"instagram", regexp.MustCompile(`(instagram\.com|instagr\.am)/[^/?]+`)},
	{"facebook", regexp.MustCompile(`(facebook\.com|fb\.com)/[^/?]+`)},
	{"twitter", regexp.MustCompile(`(twitter\.com|x\.com)/[^/?]+`)},
	{"youtube", regexp.MustCompile(`youtube\.com/@?[^/?]+`)},
	{"tiktok", regexp.MustCompile(`tiktok\.com/@?[^/?]+`)},
	{"pinterest", regexp.MustCompile(`pinterest\.com/[^/?]+`)},
	{"linkedin", regexp.MustCompile(`linkedin\.com/company/[^/?]+`)},
}

// importantLinkPatterns classifies navigational links by href or anchor
// text, first match wins. Kept as data so the table is testable on its own.
var importantLinkPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Order Tracking", regexp.MustCompile(`(?i)(track|tracking|order-status)`)},
	{"Contact Us", regexp.MustCompile(`(?i)(contact|contact-us)`)},
	{"Blog", regexp.MustCompile(`(?i)(blog|articles|news)`)},
	{"Shipping", regexp.MustCompile(`(?i)(shipping|delivery)`)},
	{"FAQ", regexp.MustCompile(`(?i)(faq|help|support)`)},
	{"Terms", regexp.MustCompile(`(?i)(terms|terms-of-service|terms-conditions)`)},
	{"Careers", regexp.MustCompile(`(?i)(careers|jobs)`)},
	{"Stores", regexp.MustCompile(`(?i)(stores|locations|find-us)`)},
}

// storeName derives the store's display name from the homepage: the
// og:site_name meta tag, then the page title stripped of a trailing
// "| suffix", then the capitalized first label of the domain.
func storeName(home *goquery.Document, storeURL string) string {
	if content, ok := home.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		if name := strings.TrimSpace(content); name != "" {
			return name
		}
	}

	if title := strings.TrimSpace(home.Find("title").First().Text()); title != "" {
		return strings.TrimSpace(titleSuffixRe.ReplaceAllString(title, ""))
	}

	parsed, err := url.Parse(storeURL)
	if err != nil {
		return ""
	}
	domain := strings.TrimPrefix(parsed.Hostname(), "www.")
	label := strings.Split(domain, ".")[0]
	if label == "" {
		return ""
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// heroProducts selects catalog products featured on the homepage: every
// anchor pointing at a product detail page whose handle exists in the
// catalog, in order of first appearance, duplicates collapsed.
func heroProducts(home *goquery.Document, products []types.Product) []types.Product {
	byHandle := make(map[string]types.Product, len(products))
	for _, p := range products {
		byHandle[p.Handle] = p
	}

	var hero []types.Product
	seen := make(map[string]bool)

	home.Find(`a[href*="/products/"]`).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := productHandleRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		handle := m[1]
		if seen[handle] {
			return
		}
		product, inCatalog := byHandle[handle]
		if !inCatalog {
			return
		}
		seen[handle] = true
		hero = append(hero, product)
	})

	return hero
}

// socialHandles scans homepage anchors against the platform table. Matched
// URLs are lowercased and deduplicated, first occurrence wins.
func socialHandles(home *goquery.Document) []types.SocialHandle {
	var handles []types.SocialHandle
	seen := make(map[string]bool)

	home.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.ToLower(strings.TrimSpace(href))
		if href == "" || seen[href] {
			return
		}

		for _, entry := range socialPlatforms {
			if entry.pattern.MatchString(href) {
				seen[href] = true
				handles = append(handles, types.SocialHandle{Platform: entry.platform, URL: href})
				break
			}
		}
	})

	return handles
}

// importantLinks collects same-domain navigational links from the homepage.
// Links matching the classification table get a canonical name; the rest
// keep their anchor text. Foreign-domain links are discarded, and URLs are
// deduplicated with the first occurrence winning.
func importantLinks(home *goquery.Document, storeURL string) []types.ImportantLink {
	base, err := url.Parse(storeURL)
	if err != nil {
		return nil
	}

	var links []types.ImportantLink
	seen := make(map[string]bool)

	home.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		text := strings.TrimSpace(a.Text())

		if text == "" || href == "" || href == "#" || strings.HasPrefix(href, "javascript:") {
			return
		}

		target, err := base.Parse(href)
		if err != nil {
			return
		}
		abs := target.String()
		if seen[abs] {
			return
		}

		for _, entry := range importantLinkPatterns {
			if entry.pattern.MatchString(abs) || entry.pattern.MatchString(text) {
				seen[abs] = true
				links = append(links, types.ImportantLink{Name: entry.name, URL: abs})
				return
			}
		}

		// Unclassified links are still worth keeping when they stay on the
		// store's own domain.
		if target.Hostname() == base.Hostname() {
			seen[abs] = true
			links = append(links, types.ImportantLink{Name: text, URL: abs})
		}
	})

	return links
}
