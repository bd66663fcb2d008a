package insights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-insights/internal/types"
)

func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.RequestDelay = time.Millisecond
	config.MaxRetries = 0
	return config
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	service := NewService(server.URL, testConfig(), testLogger())
	t.Cleanup(service.Close)
	return service
}

const testHomepage = `<html>
<head>
	<meta property="og:site_name" content="Acme Goods">
	<title>Acme Goods | Official Site</title>
</head>
<body>
	<a href="/products/tee">Classic Tee</a>
	<a href="/products/mug">Mug</a>
	<a href="https://instagram.com/acmegoods">Instagram</a>
	<a href="/pages/contact">Contact Us</a>
	<footer>support@acmegoods.com</footer>
</body>
</html>`

const testCatalogJSON = `{"products":[
	{"id":123,"title":"Tee","handle":"tee",
	 "variants":[{"price":"19.99","compare_at_price":"29.99","available":true}],
	 "images":[{"src":"https://x/i.jpg"}],"tags":["a","b"]}
]}`

func testStoreHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(testHomepage))
	})
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			w.Write([]byte(`{"products":[]}`))
			return
		}
		w.Write([]byte(testCatalogJSON))
	})
	mux.HandleFunc("/policies/privacy-policy", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><main>We respect your privacy.</main></body></html>`))
	})
	return mux
}

func TestInsights_AssemblesCompleteRecord(t *testing.T) {
	service := newTestService(t, testStoreHandler())

	insights, err := service.Insights(context.Background())

	require.NoError(t, err)
	assert.Equal(t, service.StoreURL(), insights.StoreURL)
	assert.Equal(t, "Acme Goods", insights.StoreName)
	require.Len(t, insights.Products, 1)
	assert.Equal(t, "tee", insights.Products[0].Handle)
	require.Len(t, insights.HeroProducts, 1)
	assert.Equal(t, "tee", insights.HeroProducts[0].Handle)
	assert.Equal(t, "We respect your privacy.", insights.PrivacyPolicy)
	require.Len(t, insights.SocialHandles, 1)
	assert.Equal(t, "instagram", insights.SocialHandles[0].Platform)
	assert.Contains(t, insights.ContactInfo.Emails, "support@acmegoods.com")
}

func TestInsights_MissingPagesYieldEmptyFields(t *testing.T) {
	// A store with no policy, FAQ, about, or contact pages on any
	// candidate path still assembles without error.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><head><title>Bare Store</title></head><body></body></html>`))
	})
	service := newTestService(t, mux)

	insights, err := service.Insights(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bare Store", insights.StoreName)
	assert.Empty(t, insights.PrivacyPolicy)
	assert.Empty(t, insights.ReturnRefundPolicy)
	assert.Empty(t, insights.AboutBrand)
	assert.Empty(t, insights.FAQs)
	assert.Empty(t, insights.Products)
	assert.Empty(t, insights.HeroProducts)
}

func TestInsights_HomepageFailureIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	service := newTestService(t, mux)

	_, err := service.Insights(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch homepage")
}
