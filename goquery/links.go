// Package goquery implements sitecrawl.LinkExtractor on top of
// github.com/PuerkitoBio/goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecrawl"
)

// DefaultSelector matches the elements whose href is followed.
const DefaultSelector = "a[href]"

var _ sitecrawl.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor returns the href attributes of anchors in document order.
// Values are trimmed but otherwise returned as written: relative links are
// not resolved against the page, so classification sees exactly what the
// page links to.
type LinkExtractor struct {
	selector string
}

// Option configures a LinkExtractor.
type Option func(*LinkExtractor)

// WithSelector replaces DefaultSelector.
func WithSelector(selector string) Option {
	return func(e *LinkExtractor) {
		e.selector = selector
	}
}

// NewLinkExtractor creates a LinkExtractor.
func NewLinkExtractor(opts ...Option) *LinkExtractor {
	e := &LinkExtractor{selector: DefaultSelector}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks returns the distinct non-empty href values in html. baseURL
// is only used in error messages.
func (e *LinkExtractor) ExtractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "failed to parse HTML from %s: %v", baseURL, err)
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find(e.selector).Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links, nil
}
