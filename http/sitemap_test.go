package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/sitecrawl"
	sitecrawlhttp "github.com/fwojciec/sitecrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs_FromRobotsTxt(t *testing.T) {
	t.Parallel()

	robotsTxt := `User-agent: *
Disallow: /private/
Sitemap: {{BASE}}/sitemap-news.xml
`
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/bong-da/1</loc></url>
  <url><loc>{{BASE}}/bong-da/2</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":       robotsTxt,
		"/sitemap-news.xml": sitemapXML,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/some/page", nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/bong-da/1", srv.URL + "/bong-da/2"}, urls)
}

func TestSitemapService_DiscoverURLs_FallbackToSitemapXML(t *testing.T) {
	t.Parallel()

	// No robots.txt, should fallback to /sitemap.xml
	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/page1"}, urls)
}

func TestSitemapService_DiscoverURLs_SitemapIndex(t *testing.T) {
	t.Parallel()

	sitemapIndex := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/sitemap-news.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-tags.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/sitemap-news.xml</loc></sitemap>
</sitemapindex>`

	sitemapNews := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/news/1</loc></url>
  <url><loc>{{BASE}}/shared</loc></url>
</urlset>`

	sitemapTags := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/tag/football</loc></url>
  <url><loc>{{BASE}}/shared</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml":      sitemapIndex,
		"/sitemap-news.xml": sitemapNews,
		"/sitemap-tags.xml": sitemapTags,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + "/news/1",
		srv.URL + "/shared",
		srv.URL + "/tag/football",
	}, urls)
}

func TestSitemapService_DiscoverURLs_NamespacePrefix(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<sm:urlset xmlns:sm="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sm:url><sm:loc> {{BASE}}/page1 </sm:loc></sm:url>
</sm:urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/page1"}, urls)
}

func TestSitemapService_DiscoverURLs_WithFilter(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/news/intro</loc></url>
  <url><loc>{{BASE}}/blog/post1</loc></url>
  <url><loc>{{BASE}}/news/internal/debug</loc></url>
  <url><loc>{{BASE}}/news/guide</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	filter := &sitecrawl.URLFilter{
		Include: []*regexp.Regexp{regexp.MustCompile(`/news/`)},
		Exclude: []*regexp.Regexp{regexp.MustCompile(`/internal/`)},
	}

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/news/intro", srv.URL + "/news/guide"}, urls)
}

func TestSitemapService_DiscoverURLs_SkipsBrokenSitemaps(t *testing.T) {
	t.Parallel()

	robotsTxt := `Sitemap: {{BASE}}/broken.xml
Sitemap: {{BASE}}/missing.xml
Sitemap: {{BASE}}/good.xml
`
	good := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt": robotsTxt,
		"/broken.xml": "<urlset><url><loc>",
		"/good.xml":   good,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/page1"}, urls)
}

func TestSitemapService_DiscoverURLs_MaxSitemaps(t *testing.T) {
	t.Parallel()

	robotsTxt := `Sitemap: {{BASE}}/sitemap1.xml
Sitemap: {{BASE}}/sitemap2.xml
`
	sitemap1 := `<urlset><url><loc>{{BASE}}/page1</loc></url></urlset>`
	sitemap2 := `<urlset><url><loc>{{BASE}}/page2</loc></url></urlset>`

	srv := newTestServer(t, map[string]string{
		"/robots.txt":   robotsTxt,
		"/sitemap1.xml": sitemap1,
		"/sitemap2.xml": sitemap2,
	})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client(), sitecrawlhttp.WithMaxSitemaps(1))
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/page1"}, urls)
}

func TestSitemapService_DiscoverURLs_UserAgent(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		http.NotFound(w, r)
	}))
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client(), sitecrawlhttp.WithSitemapUserAgent("sitecrawl-test"))
	_, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"sitecrawl-test", "sitecrawl-test"}, agents)
}

func TestSitemapService_DiscoverURLs_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	svc := sitecrawlhttp.NewSitemapService(nil)
	_, err := svc.DiscoverURLs(context.Background(), "/relative", nil)

	assert.Equal(t, sitecrawl.EINVALID, sitecrawl.ErrorCode(err))
}

func TestSitemapService_DiscoverURLs_ContextCancellation(t *testing.T) {
	t.Parallel()

	sitemapXML := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>{{BASE}}/page1</loc></url>
</urlset>`

	srv := newTestServer(t, map[string]string{
		"/sitemap.xml": sitemapXML,
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	_, err := svc.DiscoverURLs(ctx, srv.URL, nil)

	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSitemapService_DiscoverURLs_NoSitemapFound(t *testing.T) {
	t.Parallel()

	// No robots.txt, no sitemap.xml
	srv := newTestServer(t, map[string]string{})
	defer srv.Close()

	svc := sitecrawlhttp.NewSitemapService(srv.Client())
	urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

// newTestServer creates a test HTTP server with the given path->content mapping.
// Content strings may contain {{BASE}} which is replaced with the server URL.
func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		body = strings.ReplaceAll(body, "{{BASE}}", srv.URL)

		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(body))
	}))

	return srv
}
