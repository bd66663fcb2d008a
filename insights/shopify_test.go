package insights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopify-insights/utils"
)

func probeClient(t *testing.T) *utils.HTTPClient {
	t.Helper()
	client := utils.NewHTTPClient(testConfig(), logrus.New())
	t.Cleanup(client.Close)
	return client
}

func TestValidateStore_ServerHeaderFingerprint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "Shopify")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	storeURL, err := ValidateStore(context.Background(), probeClient(t), server.URL)

	require.NoError(t, err)
	assert.Equal(t, server.URL, storeURL)
}

func TestValidateStore_ProductsEndpointFingerprint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[]}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	storeURL, err := ValidateStore(context.Background(), probeClient(t), server.URL+"/some/page")

	require.NoError(t, err)
	// The canonical storefront URL is the site root.
	assert.Equal(t, server.URL, storeURL)
}

func TestValidateStore_NotShopify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products.json" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := ValidateStore(context.Background(), probeClient(t), server.URL)

	assert.ErrorIs(t, err, ErrNotShopify)
}

func TestValidateStore_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := ValidateStore(context.Background(), probeClient(t), url)

	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://acme.com", NormalizeURL("acme.com"))
	assert.Equal(t, "http://acme.com", NormalizeURL("http://acme.com"))
	assert.Equal(t, "https://acme.com", NormalizeURL("  https://acme.com"))
}
