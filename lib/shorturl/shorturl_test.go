package shorturl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShorten(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "https://example.com/very/long", r.URL.Query().Get("url"))
		fmt.Fprint(w, "https://tinyurl.com/abc123\n")
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	short, err := client.Shorten(context.Background(), "https://example.com/very/long")
	require.NoError(t, err)
	require.Equal(t, "https://tinyurl.com/abc123", short)
}

func TestShortenUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(server.URL)
	_, err := client.Shorten(context.Background(), "https://example.com")
	require.Error(t, err)
}
