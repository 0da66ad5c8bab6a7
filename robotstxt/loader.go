// Package robotstxt loads robots-exclusion policies over HTTP and evaluates
// them with github.com/temoto/robotstxt.
package robotstxt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/sitecrawl"
	"github.com/temoto/robotstxt"
)

// MaxBodyBytes caps how much of a robots.txt response is read.
const MaxBodyBytes = 512 * 1024

// DefaultTimeout bounds a single robots.txt request.
const DefaultTimeout = 10 * time.Second

var _ sitecrawl.PolicyLoader = (*Loader)(nil)

// Loader fetches /robots.txt for an origin.
//
// A 2xx response is parsed into a Policy. Any 4xx response means the site
// publishes no rules and yields a policy that allows everything. Server
// errors and transport failures are EUNAVAILABLE; a body that cannot be
// parsed is EINVALID.
type Loader struct {
	client    *http.Client
	userAgent string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for requests.
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = c
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) LoaderOption {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: DefaultTimeout}
	}
	return l
}

// LoadPolicy fetches and parses origin + "/robots.txt".
func (l *Loader) LoadPolicy(ctx context.Context, origin string) (sitecrawl.Policy, error) {
	robotsURL := strings.TrimSuffix(origin, "/") + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, http.NoBody)
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "robots.txt request for %q: %v", origin, err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, sitecrawl.Errorf(sitecrawl.EUNAVAILABLE, "fetch %s: %v", robotsURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, sitecrawl.Errorf(sitecrawl.EUNAVAILABLE, "fetch %s: HTTP %d", robotsURL, resp.StatusCode)
	case resp.StatusCode >= 400:
		return AllowAll(), nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, sitecrawl.Errorf(sitecrawl.EUNAVAILABLE, "fetch %s: HTTP %d", robotsURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, sitecrawl.Errorf(sitecrawl.EUNAVAILABLE, "read %s: %v", robotsURL, err)
	}

	return Parse(body)
}

// Parse parses a robots.txt body.
func Parse(body []byte) (*Policy, error) {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "parse robots.txt: %v", err)
	}
	return &Policy{data: data}, nil
}

// AllowAll returns a policy without any rules.
func AllowAll() *Policy {
	data, _ := robotstxt.FromStatusAndBytes(http.StatusNotFound, nil)
	return &Policy{data: data}
}

var _ sitecrawl.Policy = (*Policy)(nil)

// Policy is a parsed robots.txt file.
type Policy struct {
	data *robotstxt.RobotsData
}

// Allowed reports whether userAgent may fetch requestURI. Agents without a
// group of their own fall back to the "*" group.
func (p *Policy) Allowed(requestURI, userAgent string) bool {
	if requestURI == "" {
		requestURI = "/"
	}
	return p.data.TestAgent(requestURI, userAgent)
}

// Sitemaps returns the Sitemap: directives in declaration order.
func (p *Policy) Sitemaps() []string {
	return append([]string(nil), p.data.Sitemaps...)
}
