package types

import "time"

// Product is one catalog entry normalized from the store's products.json feed.
// Price fields come from the first variant only; Available is true when any
// variant is purchasable.
type Product struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Handle         string           `json:"handle"`
	Description    string           `json:"description,omitempty"`
	Price          string           `json:"price,omitempty"`
	CompareAtPrice string           `json:"compare_at_price,omitempty"`
	Available      bool             `json:"available"`
	Tags           []string         `json:"tags,omitempty"`
	Images         []string         `json:"images,omitempty"`
	Variants       []map[string]any `json:"variants,omitempty"`
	URL            string           `json:"url,omitempty"`
}

// FAQ is a question/answer pair extracted from a help or FAQ page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SocialHandle pairs a recognized platform with the matched link URL.
type SocialHandle struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ContactInfo accumulates contact details across the homepage and contact
// page candidates. Emails and PhoneNumbers keep insertion order without
// duplicates; Address is set by the first page that yields one.
type ContactInfo struct {
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
	Address      string   `json:"address,omitempty"`
}

// ImportantLink is a navigational link worth surfacing (order tracking,
// blog, terms, ...). Name is either a canonical label or the anchor text.
type ImportantLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StoreInsights is the complete extraction result for one storefront.
// StoreURL is the identity key used by the persistence layer.
type StoreInsights struct {
	StoreURL           string          `json:"store_url"`
	StoreName          string          `json:"store_name"`
	Products           []Product       `json:"products"`
	HeroProducts       []Product       `json:"hero_products"`
	PrivacyPolicy      string          `json:"privacy_policy,omitempty"`
	ReturnRefundPolicy string          `json:"return_refund_policy,omitempty"`
	FAQs               []FAQ           `json:"faqs"`
	SocialHandles      []SocialHandle  `json:"social_handles"`
	ContactInfo        ContactInfo     `json:"contact_info"`
	AboutBrand         string          `json:"about_brand,omitempty"`
	ImportantLinks     []ImportantLink `json:"important_links"`
}

// Config holds the configuration for an extraction run
type Config struct {
	RequestDelay       time.Duration
	MaxRetries         int
	Timeout            time.Duration
	UseHeadlessBrowser bool
	UserAgent          string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		RequestDelay:       200 * time.Millisecond,
		MaxRetries:         2,
		Timeout:            10 * time.Second,
		UseHeadlessBrowser: false,
		UserAgent:          "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Logger defines the logging interface
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
