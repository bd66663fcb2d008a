package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"shopify-insights/utils"
)

var (
	// ErrUnreachable means the site did not answer at all.
	ErrUnreachable = errors.New("website not reachable")
	// ErrNotShopify means the site answered but carries no Shopify
	// platform fingerprint.
	ErrNotShopify = errors.New("not a shopify storefront")
)

// ValidateStore checks that rawURL fronts a Shopify storefront and returns
// the canonical URL to scrape. The fingerprint is either a Server header
// mentioning Shopify, or a products.json endpoint at the site root that
// answers 200 with a products key.
func ValidateStore(ctx context.Context, client *utils.HTTPClient, rawURL string) (string, error) {
	rawURL = NormalizeURL(rawURL)

	head, err := client.Head(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnreachable, rawURL)
	}
	if strings.Contains(strings.ToLower(head.Headers.Get("Server")), "shopify") {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrNotShopify, rawURL)
	}
	base := parsed.Scheme + "://" + parsed.Host

	resp, err := client.GetResponse(ctx, base+"/products.json")
	if err == nil && resp.Status == 200 {
		var feed map[string]json.RawMessage
		if json.Unmarshal(resp.Body, &feed) == nil {
			if _, ok := feed["products"]; ok {
				return base, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotShopify, rawURL)
}

// Storefront is the boolean form of ValidateStore, for callers that discard
// non-matching candidates silently.
func Storefront(ctx context.Context, client *utils.HTTPClient, rawURL string) (string, bool) {
	storeURL, err := ValidateStore(ctx, client, rawURL)
	return storeURL, err == nil
}

// NormalizeURL prepends an https scheme when rawURL has none.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
