package insights

import (
	"context"
	"encoding/json"
	"fmt"

	"shopify-insights/internal/types"
)

// catalogPageSize is the feed page size. Termination is detected by a short
// page; the feed does not reliably expose a total count.
const catalogPageSize = 250

type productsPage struct {
	Products []json.RawMessage `json:"products"`
}

type rawProduct struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Handle   string      `json:"handle"`
	BodyHTML string      `json:"body_html"`
	Tags     []string    `json:"tags"`
	Images   []struct {
		Src string `json:"src"`
	} `json:"images"`
	Variants []map[string]any `json:"variants"`
}

// Products paginates the store's products.json feed into a normalized
// product list. Extraction is best-effort: a fetch failure mid-pagination
// returns the products gathered so far, and a malformed entry is skipped
// without aborting its page.
func (s *Service) Products(ctx context.Context) []types.Product {
	var products []types.Product

	for page := 1; ; page++ {
		url := fmt.Sprintf("%sproducts.json?page=%d&limit=%d", s.storeURL, page, catalogPageSize)

		var feed productsPage
		if err := s.fetcher.JSON(ctx, url, &feed); err != nil {
			s.logger.Warnf("Catalog pagination stopped at page %d: %v", page, err)
			return products
		}

		if len(feed.Products) == 0 {
			return products
		}

		for _, raw := range feed.Products {
			product, ok := s.parseProduct(raw)
			if !ok {
				continue
			}
			products = append(products, product)
		}

		if len(feed.Products) < catalogPageSize {
			return products
		}
	}
}

func (s *Service) parseProduct(data json.RawMessage) (types.Product, bool) {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Debugf("Skipping malformed catalog entry: %v", err)
		return types.Product{}, false
	}
	if raw.Handle == "" {
		s.logger.Debugf("Skipping catalog entry without handle (id %s)", raw.ID.String())
		return types.Product{}, false
	}

	var images []string
	for _, img := range raw.Images {
		if img.Src != "" {
			images = append(images, img.Src)
		}
	}

	product := types.Product{
		ID:          raw.ID.String(),
		Title:       raw.Title,
		Handle:      raw.Handle,
		Description: raw.BodyHTML,
		Tags:        raw.Tags,
		Images:      images,
		Variants:    raw.Variants,
		URL:         s.pageURL("products/" + raw.Handle),
	}

	// Price fields come from the first variant only; availability is true
	// when any variant is in stock.
	if len(raw.Variants) > 0 {
		product.Price = variantString(raw.Variants[0], "price")
		product.CompareAtPrice = variantString(raw.Variants[0], "compare_at_price")
		for _, v := range raw.Variants {
			if avail, ok := v["available"].(bool); ok && avail {
				product.Available = true
				break
			}
		}
	}

	return product, true
}

func variantString(variant map[string]any, key string) string {
	switch v := variant[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
