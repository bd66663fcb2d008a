// Package insights extracts structured storefront data (catalog, policies,
// FAQs, contact details, social presence, navigation links) from a Shopify
// store by fetching well-known page paths and applying layered heuristics.
package insights

import (
	"context"
	"fmt"
	"strings"

	"shopify-insights/fetch"
	"shopify-insights/internal/types"
)

// Candidate relative paths tried, in order, for each page-backed fact.
var (
	privacyPaths = []string{
		"policies/privacy-policy",
		"pages/privacy-policy",
		"pages/privacy",
		"policies/privacy",
	}
	refundPaths = []string{
		"policies/refund-policy",
		"pages/refund-policy",
		"pages/returns",
		"policies/returns",
		"pages/return-policy",
		"pages/shipping-returns",
	}
	aboutPaths = []string{
		"pages/about",
		"pages/about-us",
		"about",
		"about-us",
		"pages/our-story",
		"pages/story",
	}
	faqPaths = []string{
		"pages/faq",
		"pages/faqs",
		"pages/frequently-asked-questions",
		"pages/help",
	}
	contactPaths = []string{
		"pages/contact",
		"pages/contact-us",
		"contact",
		"contact-us",
	}
)

// Service extracts insights for a single storefront. Create one per
// extraction run; the underlying fetch client caches pages for the run's
// lifetime.
type Service struct {
	storeURL string
	config   *types.Config
	logger   types.Logger
	fetcher  *fetch.Client
}

// NewService creates an insights service for the given store root URL.
func NewService(storeURL string, config *types.Config, logger types.Logger) *Service {
	return &Service{
		storeURL: strings.TrimRight(storeURL, "/") + "/",
		config:   config,
		logger:   logger,
		fetcher:  fetch.NewClient(config, logger),
	}
}

// StoreURL returns the normalized store root URL.
func (s *Service) StoreURL() string {
	return s.storeURL
}

func (s *Service) pageURL(path string) string {
	return s.storeURL + strings.TrimLeft(path, "/")
}

// Insights assembles the complete StoreInsights record. Only a failure to
// fetch the homepage is fatal; every other extractor degrades to an empty
// or absent value.
func (s *Service) Insights(ctx context.Context) (*types.StoreInsights, error) {
	s.logger.Infof("Extracting insights for %s", s.storeURL)

	home, err := s.fetcher.Page(ctx, s.storeURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch homepage %s: %w", s.storeURL, err)
	}

	name := storeName(home, s.storeURL)
	products := s.Products(ctx)
	hero := heroProducts(home, products)
	s.logger.Infof("Found %d products (%d featured on homepage)", len(products), len(hero))

	insights := &types.StoreInsights{
		StoreURL:           s.storeURL,
		StoreName:          name,
		Products:           products,
		HeroProducts:       hero,
		PrivacyPolicy:      s.bodyText(ctx, privacyPaths, policySelectors),
		ReturnRefundPolicy: s.bodyText(ctx, refundPaths, policySelectors),
		FAQs:               s.FAQs(ctx),
		SocialHandles:      socialHandles(home),
		ContactInfo:        s.ContactInfo(ctx),
		AboutBrand:         s.bodyText(ctx, aboutPaths, aboutSelectors),
		ImportantLinks:     importantLinks(home, s.storeURL),
	}

	s.logger.Infof("Extraction for %s complete: %d FAQs, %d social handles, %d links",
		s.storeURL, len(insights.FAQs), len(insights.SocialHandles), len(insights.ImportantLinks))
	return insights, nil
}

// Close releases the fetch client's resources.
func (s *Service) Close() {
	if s.fetcher != nil {
		s.fetcher.Close()
	}
}
