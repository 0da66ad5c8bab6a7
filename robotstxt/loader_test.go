package robotstxt_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/robotstxt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRobotsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_LoadPolicy(t *testing.T) {
	t.Parallel()

	t.Run("parses rules from a 200 response", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusOK, `User-agent: *
Disallow: /private/
Disallow: /*?print=

User-agent: sitecrawl
Disallow: /
`)
		loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()))

		policy, err := loader.LoadPolicy(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.True(t, policy.Allowed("/news/1", "*"))
		assert.False(t, policy.Allowed("/private/a", "*"))
		assert.False(t, policy.Allowed("/news/1?print=1", "*"))
		assert.False(t, policy.Allowed("/news/1", "sitecrawl"))
		assert.True(t, policy.Allowed("/news/1", "otherbot"), "unknown agents use the * group")
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("User-agent: *\nAllow: /\n"))
		}))
		defer srv.Close()
		loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()), robotstxt.WithUserAgent("sitecrawl/1.0"))

		_, err := loader.LoadPolicy(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, "sitecrawl/1.0", got)
	})

	t.Run("treats client errors as allow all", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusNotFound, http.StatusForbidden, http.StatusGone} {
			srv := newRobotsServer(t, status, "User-agent: *\nDisallow: /\n")
			loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()))

			policy, err := loader.LoadPolicy(context.Background(), srv.URL)

			require.NoError(t, err, "status %d", status)
			assert.True(t, policy.Allowed("/anything", "*"), "status %d", status)
		}
	})

	t.Run("server errors are unavailable", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusServiceUnavailable, "")
		loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()))

		policy, err := loader.LoadPolicy(context.Background(), srv.URL)

		assert.Nil(t, policy)
		assert.Equal(t, sitecrawl.EUNAVAILABLE, sitecrawl.ErrorCode(err))
	})

	t.Run("transport failures are unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		origin := srv.URL
		srv.Close()
		loader := robotstxt.NewLoader()

		_, err := loader.LoadPolicy(context.Background(), origin)

		assert.Equal(t, sitecrawl.EUNAVAILABLE, sitecrawl.ErrorCode(err))
	})

	t.Run("returns context errors as is", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusOK, "")
		loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := loader.LoadPolicy(ctx, srv.URL)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("accepts an origin with a trailing slash", func(t *testing.T) {
		t.Parallel()

		srv := newRobotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /x\n")
		loader := robotstxt.NewLoader(robotstxt.WithHTTPClient(srv.Client()))

		policy, err := loader.LoadPolicy(context.Background(), srv.URL+"/")

		require.NoError(t, err)
		assert.False(t, policy.Allowed("/x", "*"))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	policy, err := robotstxt.Parse([]byte(`User-agent: *
Disallow: /tag/
Sitemap: https://example.com/sitemap-news.xml
Sitemap: https://example.com/sitemap.xml
`))

	require.NoError(t, err)
	assert.False(t, policy.Allowed("/tag/football", "*"))
	assert.True(t, policy.Allowed("", "*"), "empty request URI means the root")
	assert.Equal(t, []string{
		"https://example.com/sitemap-news.xml",
		"https://example.com/sitemap.xml",
	}, policy.Sitemaps())
}

func TestAllowAll(t *testing.T) {
	t.Parallel()

	policy := robotstxt.AllowAll()

	assert.True(t, policy.Allowed("/private", "*"))
	assert.Empty(t, policy.Sitemaps())
}
