package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/robotstxt"
)

// DefaultMaxSitemaps bounds how many sitemap documents one discovery reads,
// counting every nested index entry.
const DefaultMaxSitemaps = 50

// maxSitemapBytes caps a single sitemap document.
const maxSitemapBytes = 50 << 20

// Ensure SitemapService implements sitecrawl.SitemapService.
var _ sitecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService discovers page URLs from a site's sitemaps via HTTP.
type SitemapService struct {
	client      *http.Client
	userAgent   string
	maxSitemaps int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapUserAgent sets the User-Agent header for sitemap requests.
func WithSitemapUserAgent(ua string) SitemapOption {
	return func(s *SitemapService) {
		s.userAgent = ua
	}
}

// WithMaxSitemaps sets how many sitemap documents are read at most.
func WithMaxSitemaps(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxSitemaps = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{
		client:      client,
		userAgent:   DefaultUserAgent,
		maxSitemaps: DefaultMaxSitemaps,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's
// origin, in document order without duplicates. Returns an empty slice (not
// nil) if the site has no sitemap.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *sitecrawl.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() || base.Host == "" {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "invalid base URL %q", baseURL)
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemapURLs, err := s.findSitemapURLs(ctx, origin)
	if err != nil {
		return nil, err
	}

	w := &sitemapWalk{
		svc:     s,
		seen:    make(map[string]bool),
		seenURL: make(map[string]bool),
		filter:  filter,
		urls:    []string{},
	}
	for _, sitemapURL := range sitemapURLs {
		if err := w.visit(ctx, sitemapURL); err != nil {
			return nil, err
		}
	}
	return w.urls, nil
}

// findSitemapURLs reads Sitemap: directives from robots.txt and falls back
// to /sitemap.xml when there are none.
func (s *SitemapService) findSitemapURLs(ctx context.Context, origin *url.URL) ([]string, error) {
	robotsURL := origin.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if body, err := s.get(ctx, robotsURL, robotstxt.MaxBodyBytes); err == nil {
		if policy, err := robotstxt.Parse(body); err == nil {
			if sitemaps := policy.Sitemaps(); len(sitemaps) > 0 {
				return sitemaps, nil
			}
		}
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return []string{origin.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}, nil
}

// sitemapWalk holds the state of one discovery.
type sitemapWalk struct {
	svc     *SitemapService
	seen    map[string]bool
	seenURL map[string]bool
	filter  *sitecrawl.URLFilter
	urls    []string
}

// visit reads one sitemap document. Missing or malformed documents are
// skipped; only cancellation aborts the walk.
func (w *sitemapWalk) visit(ctx context.Context, sitemapURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.seen[sitemapURL] || len(w.seen) >= w.svc.maxSitemaps {
		return nil
	}
	w.seen[sitemapURL] = true

	body, err := w.svc.get(ctx, sitemapURL, maxSitemapBytes)
	if err != nil {
		return ctx.Err()
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	switch root.Tag {
	case "sitemapindex":
		for _, loc := range locs(root, "sitemap") {
			if err := w.visit(ctx, loc); err != nil {
				return err
			}
		}
	case "urlset":
		for _, loc := range locs(root, "url") {
			if w.seenURL[loc] || !w.filter.Match(loc) {
				continue
			}
			w.seenURL[loc] = true
			w.urls = append(w.urls, loc)
		}
	}
	return nil
}

// locs returns the trimmed <loc> text of each child element named tag.
// Namespace prefixes are ignored.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.ChildElements() {
		if el.Tag != tag {
			continue
		}
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// get fetches targetURL and returns at most limit bytes of a 200 response.
func (s *SitemapService) get(ctx context.Context, targetURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}
