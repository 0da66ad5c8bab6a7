package crawl

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/sitecrawl"
)

// Filter decides whether a raw link is an in-scope, fetchable candidate.
// It performs no I/O; results depend only on the link and the configuration.
type Filter struct {
	domains    []string
	extensions map[string]struct{}
	patterns   *sitecrawl.URLFilter
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithExcludedExtensions replaces the excluded resource extensions.
// Extensions are matched case-insensitively; a leading dot is optional.
func WithExcludedExtensions(exts []string) FilterOption {
	return func(f *Filter) {
		f.extensions = extensionSet(exts)
	}
}

// WithURLFilter applies operator include/exclude patterns after the
// structural checks.
func WithURLFilter(patterns *sitecrawl.URLFilter) FilterOption {
	return func(f *Filter) {
		f.patterns = patterns
	}
}

// NewFilter creates a Filter admitting links whose host is one of
// allowedDomains or a subdomain of one. An empty list admits any host.
// Excluded extensions default to sitecrawl.DefaultExcludedExtensions().
func NewFilter(allowedDomains []string, opts ...FilterOption) *Filter {
	f := &Filter{
		extensions: extensionSet(sitecrawl.DefaultExcludedExtensions()),
	}
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(d), "."))
		if d != "" {
			f.domains = append(f.domains, d)
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Classify checks rawLink, found on sourceURL, and returns the candidate or
// the reason it was rejected. The candidate URL is rawLink unchanged.
func (f *Filter) Classify(rawLink, sourceURL string) (sitecrawl.Candidate, sitecrawl.Reason) {
	if strings.TrimSpace(rawLink) == "" {
		return sitecrawl.Candidate{}, sitecrawl.ReasonMalformed
	}

	u, err := url.Parse(rawLink)
	if err != nil {
		return sitecrawl.Candidate{}, sitecrawl.ReasonMalformed
	}
	if !u.IsAbs() {
		return sitecrawl.Candidate{}, sitecrawl.ReasonNotAbsolute
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return sitecrawl.Candidate{}, sitecrawl.ReasonScheme
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return sitecrawl.Candidate{}, sitecrawl.ReasonMalformed
	}
	if !f.allowedHost(host) {
		return sitecrawl.Candidate{}, sitecrawl.ReasonDomain
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		if _, ok := f.extensions[ext]; ok {
			return sitecrawl.Candidate{}, sitecrawl.ReasonExtension
		}
	}

	if !f.patterns.Match(rawLink) {
		return sitecrawl.Candidate{}, sitecrawl.ReasonPattern
	}

	return sitecrawl.Candidate{URL: rawLink, Source: sourceURL}, sitecrawl.ReasonNone
}

// Domains returns the allowed domains.
func (f *Filter) Domains() []string {
	return append([]string(nil), f.domains...)
}

func (f *Filter) allowedHost(host string) bool {
	if len(f.domains) == 0 {
		return true
	}
	for _, d := range f.domains {
		if hostMatches(host, d) {
			return true
		}
	}
	return false
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
