package mock

import (
	"context"

	"github.com/fwojciec/sitecrawl"
)

var _ sitecrawl.Policy = (*Policy)(nil)

// Policy is a mock implementation of sitecrawl.Policy.
type Policy struct {
	AllowedFn func(requestURI, userAgent string) bool
}

func (p *Policy) Allowed(requestURI, userAgent string) bool {
	return p.AllowedFn(requestURI, userAgent)
}

var _ sitecrawl.PolicyLoader = (*PolicyLoader)(nil)

// PolicyLoader is a mock implementation of sitecrawl.PolicyLoader.
type PolicyLoader struct {
	LoadPolicyFn func(ctx context.Context, origin string) (sitecrawl.Policy, error)
}

func (l *PolicyLoader) LoadPolicy(ctx context.Context, origin string) (sitecrawl.Policy, error) {
	return l.LoadPolicyFn(ctx, origin)
}

var _ sitecrawl.PolitenessGate = (*PolitenessGate)(nil)

// PolitenessGate is a mock implementation of sitecrawl.PolitenessGate.
type PolitenessGate struct {
	AllowedFn func(ctx context.Context, rawURL, userAgent string) bool
}

func (g *PolitenessGate) Allowed(ctx context.Context, rawURL, userAgent string) bool {
	return g.AllowedFn(ctx, rawURL, userAgent)
}

var _ sitecrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of sitecrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
