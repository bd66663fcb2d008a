// Package fetch retrieves storefront pages and parses them into navigable
// documents, memoizing per client so the handful of extractors that all
// want the homepage cost one network round trip between them.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"shopify-insights/internal/types"
	"shopify-insights/utils"
)

// Client fetches and parses pages for a single extraction run. The document
// cache is keyed by exact URL string and never invalidated; create one
// Client per run and discard it afterwards.
type Client struct {
	config  *types.Config
	logger  types.Logger
	http    *utils.HTTPClient
	browser *utils.BrowserClient
	cache   map[string]*goquery.Document
}

// NewClient creates a fetch client with its own HTTP and browser transports.
func NewClient(config *types.Config, logger types.Logger) *Client {
	return &Client{
		config:  config,
		logger:  logger,
		http:    utils.NewHTTPClient(config, logger),
		browser: utils.NewBrowserClient(config, logger),
		cache:   make(map[string]*goquery.Document),
	}
}

// HTTP exposes the underlying transport for probe-style callers (HEAD
// fingerprinting, raw status checks).
func (c *Client) HTTP() *utils.HTTPClient {
	return c.http
}

// Page fetches a URL and parses it into a goquery document. Repeated calls
// for the same URL within one run are served from the cache.
func (c *Client) Page(ctx context.Context, url string) (*goquery.Document, error) {
	if doc, ok := c.cache[url]; ok {
		c.logger.Debugf("Cache hit for %s", url)
		return doc, nil
	}

	html, err := c.pageContent(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	c.cache[url] = doc
	return doc, nil
}

func (c *Client) pageContent(ctx context.Context, url string) (string, error) {
	// Headless browser for JavaScript-heavy themes, plain HTTP otherwise.
	if c.config.UseHeadlessBrowser {
		return c.browser.GetPageContent(ctx, url)
	}

	body, err := c.http.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// JSON fetches a URL and decodes the response body into v.
func (c *Client) JSON(ctx context.Context, url string, v any) error {
	body, err := c.http.Get(ctx, url)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON from %s: %w", url, err)
	}
	return nil
}

// Close releases the underlying transports.
func (c *Client) Close() {
	if c.http != nil {
		c.http.Close()
	}
}
