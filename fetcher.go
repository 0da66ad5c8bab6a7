package sitecrawl

import "context"

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch retrieves the URL and returns the response body.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// LinkExtractor pulls raw hyperlink targets out of HTML.
type LinkExtractor interface {
	// ExtractLinks returns the href values found in html, in document order.
	// Values are returned as written; relative links are not resolved.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
