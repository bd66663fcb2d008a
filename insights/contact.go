package insights

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopify-insights/internal/types"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// Phone formats tried in order: international, US-style, bare digit runs.
var phoneRes = []*regexp.Regexp{
	regexp.MustCompile(`\+\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}`),
	regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	regexp.MustCompile(`\d{10,12}`),
}

const (
	addressSelector = ".address, .contact-address, .store-address"
	minAddressLen   = 10
)

// ContactInfo scans the homepage and every contact-page candidate,
// accumulating emails and phone numbers across pages (insertion order,
// deduplicated). The address is taken from the first container, in scan
// order, whose text exceeds the minimum length and is never overwritten.
func (s *Service) ContactInfo(ctx context.Context) types.ContactInfo {
	info := types.ContactInfo{
		Emails:       []string{},
		PhoneNumbers: []string{},
	}

	pages := []string{s.storeURL}
	for _, path := range contactPaths {
		pages = append(pages, s.pageURL(path))
	}

	for _, pageURL := range pages {
		doc, err := s.fetcher.Page(ctx, pageURL)
		if err != nil {
			s.logger.Debugf("No contact candidate at %s: %v", pageURL, err)
			continue
		}
		s.scanContactPage(doc, &info)
	}

	return info
}

func (s *Service) scanContactPage(doc *goquery.Document, info *types.ContactInfo) {
	text := doc.Text()

	info.Emails = mergeMatches(info.Emails, emailRe.FindAllString(text, -1))
	for _, re := range phoneRes {
		info.PhoneNumbers = mergeMatches(info.PhoneNumbers, re.FindAllString(text, -1))
	}

	if info.Address != "" {
		return
	}
	doc.Find(addressSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		address := flattenText(sel)
		if len(address) > minAddressLen {
			info.Address = address
			return false
		}
		return true
	})
}

// mergeMatches appends newly seen values, preserving first-seen order.
func mergeMatches(existing, found []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range found {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		existing = append(existing, v)
	}
	return existing
}
