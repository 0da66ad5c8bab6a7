package sitecrawl

import "context"

// Policy is a parsed robots-exclusion policy for a single origin.
type Policy interface {
	// Allowed reports whether userAgent may fetch the request URI
	// (path plus optional query) under this policy.
	Allowed(requestURI, userAgent string) bool
}

// PolicyLoader retrieves the robots-exclusion policy for an origin.
type PolicyLoader interface {
	// LoadPolicy fetches and parses the policy for origin ("scheme://host").
	// Returns EUNAVAILABLE if the policy source cannot be reached and
	// EINVALID if it cannot be parsed.
	LoadPolicy(ctx context.Context, origin string) (Policy, error)
}

// PolitenessGate answers allow/deny for a URL and user agent.
type PolitenessGate interface {
	// Allowed reports whether rawURL may be crawled by userAgent.
	// The first call for an origin may block while its policy loads.
	Allowed(ctx context.Context, rawURL, userAgent string) bool
}
