package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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

func TestClient_Page_CachesByURL(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<html><head><title>Cache Me</title></head><body></body></html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(), logrus.New())
	defer client.Close()

	ctx := context.Background()
	first, err := client.Page(ctx, server.URL)
	require.NoError(t, err)
	second, err := client.Page(ctx, server.URL)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, "Cache Me", first.Find("title").Text())
}

func TestClient_Page_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(), logrus.New())
	defer client.Close()

	_, err := client.Page(context.Background(), server.URL+"/missing")
	assert.Error(t, err)
}

func TestClient_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{"handle":"tee"}]}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(), logrus.New())
	defer client.Close()

	var feed struct {
		Products []struct {
			Handle string `json:"handle"`
		} `json:"products"`
	}
	err := client.JSON(context.Background(), server.URL, &feed)

	require.NoError(t, err)
	require.Len(t, feed.Products, 1)
	assert.Equal(t, "tee", feed.Products[0].Handle)
}

func TestClient_JSON_Invalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(), logrus.New())
	defer client.Close()

	var v map[string]any
	err := client.JSON(context.Background(), server.URL, &v)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}
