// Package storage persists extraction results in SQLite, one record per
// store URL with full replace-on-update semantics.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	_ "embed"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"shopify-insights/internal/types"
)

//go:embed schema.sql
var schema string

// ErrNotFound is returned when no insights exist for a store URL.
var ErrNotFound = errors.New("store not found")

// Repository stores and retrieves StoreInsights records.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// Save creates or fully replaces the insights for insights.StoreURL inside
// one transaction.
func (r *Repository) Save(ctx context.Context, insights *types.StoreInsights) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var storeID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM stores WHERE url = ?`, insights.StoreURL).Scan(&storeID)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO stores (url, name, about, privacy_policy, return_refund_policy) VALUES (?, ?, ?, ?, ?)`,
			insights.StoreURL, insights.StoreName, insights.AboutBrand,
			insights.PrivacyPolicy, insights.ReturnRefundPolicy)
		if err != nil {
			return fmt.Errorf("failed to insert store: %w", err)
		}
		storeID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read store id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to look up store: %w", err)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE stores SET name = ?, about = ?, privacy_policy = ?, return_refund_policy = ? WHERE id = ?`,
			insights.StoreName, insights.AboutBrand, insights.PrivacyPolicy,
			insights.ReturnRefundPolicy, storeID)
		if err != nil {
			return fmt.Errorf("failed to update store: %w", err)
		}
		for _, table := range []string{"products", "hero_products", "faqs", "social_handles", "contact_info", "important_links"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE store_id = ?`, storeID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	for _, p := range insights.Products {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (store_id, product_id, title, handle, description, price, compare_at_price, available, tags, images, variants, url)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			storeID, p.ID, p.Title, p.Handle, p.Description, p.Price, p.CompareAtPrice,
			p.Available, mustJSON(p.Tags), mustJSON(p.Images), mustJSON(p.Variants), p.URL)
		if err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.Handle, err)
		}
	}

	for _, p := range insights.HeroProducts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hero_products (store_id, product_id) VALUES (?, ?)`, storeID, p.ID); err != nil {
			return fmt.Errorf("failed to insert hero product %s: %w", p.ID, err)
		}
	}

	for _, f := range insights.FAQs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO faqs (store_id, question, answer) VALUES (?, ?, ?)`,
			storeID, f.Question, f.Answer); err != nil {
			return fmt.Errorf("failed to insert faq: %w", err)
		}
	}

	for _, h := range insights.SocialHandles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO social_handles (store_id, platform, url) VALUES (?, ?, ?)`,
			storeID, h.Platform, h.URL); err != nil {
			return fmt.Errorf("failed to insert social handle: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO contact_info (store_id, emails, phone_numbers, address) VALUES (?, ?, ?, ?)`,
		storeID, mustJSON(insights.ContactInfo.Emails),
		mustJSON(insights.ContactInfo.PhoneNumbers), insights.ContactInfo.Address); err != nil {
		return fmt.Errorf("failed to insert contact info: %w", err)
	}

	for _, l := range insights.ImportantLinks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO important_links (store_id, name, url) VALUES (?, ?, ?)`,
			storeID, l.Name, l.URL); err != nil {
			return fmt.Errorf("failed to insert important link: %w", err)
		}
	}

	return tx.Commit()
}

// GetByURL reconstructs the persisted insights for a store URL.
func (r *Repository) GetByURL(ctx context.Context, storeURL string) (*types.StoreInsights, error) {
	insights := &types.StoreInsights{StoreURL: storeURL}

	var storeID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, about, privacy_policy, return_refund_policy FROM stores WHERE url = ?`,
		storeURL).Scan(&storeID, &insights.StoreName, &insights.AboutBrand,
		&insights.PrivacyPolicy, &insights.ReturnRefundPolicy)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, title, handle, description, price, compare_at_price, available, tags, images, variants, url
		 FROM products WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]types.Product)
	for rows.Next() {
		var p types.Product
		var tags, images, variants string
		if err := rows.Scan(&p.ID, &p.Title, &p.Handle, &p.Description, &p.Price,
			&p.CompareAtPrice, &p.Available, &tags, &images, &variants, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		json.Unmarshal([]byte(tags), &p.Tags)
		json.Unmarshal([]byte(images), &p.Images)
		json.Unmarshal([]byte(variants), &p.Variants)
		insights.Products = append(insights.Products, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	heroRows, err := r.db.QueryContext(ctx,
		`SELECT product_id FROM hero_products WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hero products: %w", err)
	}
	defer heroRows.Close()
	for heroRows.Next() {
		var id string
		if err := heroRows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hero product: %w", err)
		}
		if p, ok := byID[id]; ok {
			insights.HeroProducts = append(insights.HeroProducts, p)
		}
	}

	faqRows, err := r.db.QueryContext(ctx,
		`SELECT question, answer FROM faqs WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load faqs: %w", err)
	}
	defer faqRows.Close()
	for faqRows.Next() {
		var f types.FAQ
		if err := faqRows.Scan(&f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		insights.FAQs = append(insights.FAQs, f)
	}

	socialRows, err := r.db.QueryContext(ctx,
		`SELECT platform, url FROM social_handles WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load social handles: %w", err)
	}
	defer socialRows.Close()
	for socialRows.Next() {
		var h types.SocialHandle
		if err := socialRows.Scan(&h.Platform, &h.URL); err != nil {
			return nil, fmt.Errorf("failed to scan social handle: %w", err)
		}
		insights.SocialHandles = append(insights.SocialHandles, h)
	}

	var emails, phones string
	err = r.db.QueryRowContext(ctx,
		`SELECT emails, phone_numbers, address FROM contact_info WHERE store_id = ?`,
		storeID).Scan(&emails, &phones, &insights.ContactInfo.Address)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load contact info: %w", err)
	}
	if err == nil {
		json.Unmarshal([]byte(emails), &insights.ContactInfo.Emails)
		json.Unmarshal([]byte(phones), &insights.ContactInfo.PhoneNumbers)
	}

	linkRows, err := r.db.QueryContext(ctx,
		`SELECT name, url FROM important_links WHERE store_id = ? ORDER BY id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load important links: %w", err)
	}
	defer linkRows.Close()
	for linkRows.Next() {
		var l types.ImportantLink
		if err := linkRows.Scan(&l.Name, &l.URL); err != nil {
			return nil, fmt.Errorf("failed to scan important link: %w", err)
		}
		insights.ImportantLinks = append(insights.ImportantLinks, l)
	}

	return insights, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func mustJSON(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
