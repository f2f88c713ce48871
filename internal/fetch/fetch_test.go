package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vecapi/internal/config"
)

// 1x1 png
var testPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func newTestClient(t *testing.T, cfg config.FetchConfig) *Client {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5
	}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	return client
}

func TestFetch_Image(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{})
	data, err := client.Fetch(context.Background(), srv.URL+"/cat.png")
	require.NoError(t, err)
	require.Equal(t, testPNG, data)
}

func TestFetch_NonImageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{})
	_, err := client.Fetch(context.Background(), srv.URL)
	require.ErrorContains(t, err, "does not point to an image")
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{})
	_, err := client.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{})
	data, err := client.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, testPNG, data)
	require.Equal(t, int32(2), hits.Load())
}

func TestFetch_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{MaxBytes: 8})
	_, err := client.Fetch(context.Background(), srv.URL)
	require.ErrorContains(t, err, "exceeds")
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	client := newTestClient(t, config.FetchConfig{})
	_, err := client.Fetch(context.Background(), "ftp://example.com/a.png")
	require.ErrorContains(t, err, "unsupported url scheme")

	// s3 fetcher is only registered when configured
	_, err = client.Fetch(context.Background(), "s3://bucket/a.png")
	require.ErrorContains(t, err, "unsupported url scheme")
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{MaxConcurrency: 2})
	results, err := client.FetchAll(context.Background(), []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, data := range results {
		require.Equal(t, testPNG, data)
	}
}

func TestFetchAll_FailsWhole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(testPNG)
	}))
	defer srv.Close()

	client := newTestClient(t, config.FetchConfig{})
	_, err := client.FetchAll(context.Background(), []string{srv.URL + "/ok", srv.URL + "/missing"})
	require.Error(t, err)
}
