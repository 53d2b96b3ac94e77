package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  snake   near\tthe well ", "snake near the well"},
		{"markup", "<b>Cobra</b> in <i>garden</i>", "Cobra in garden"},
		{"script dropped", "monkey<script>alert(1)</script> on roof", "monkey on roof"},
		{"entities", "dog &amp; puppies", "dog & puppies"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "WildAware", NormalizeUserAgent("WildAware/0.1 (+https://example.org)"))
	assert.Equal(t, "bot", NormalizeUserAgent("bot"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func TestNewProxyFunc(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://catalog.example.org/data/species.json", nil)

	proxy := NewProxyFunc("http://proxy.local:3128", "", "")
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)

	bypass := NewProxyFunc("http://proxy.local:3128", "", "catalog.example.org")
	u, err = bypass(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRobotsChecker_CanFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: WildAware\nDisallow: /private/\nCrawl-delay: 2\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	checker := NewRobotsChecker("WildAware/test", 5*time.Second, time.Minute)
	ctx := context.Background()

	ok, delay, err := checker.CanFetch(ctx, srv.URL+"/data/species.json")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, delay)

	ok, _, err = checker.CanFetch(ctx, srv.URL+"/private/orgs.json")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker("WildAware/test", time.Second, time.Minute)
	ok, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/data/species.json")
	require.NoError(t, err)
	assert.True(t, ok)
}
