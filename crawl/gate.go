package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/sitecrawl"
	"golang.org/x/sync/singleflight"
)

var _ sitecrawl.PolitenessGate = (*Gate)(nil)

// Gate answers robots.txt allow/deny questions. Policies are loaded lazily,
// once per origin, and cached for the lifetime of the Gate. Concurrent first
// lookups of the same origin share a single load.
//
// When a policy cannot be loaded the Gate denies every URL of that origin
// unless it was created WithFailOpen(true).
type Gate struct {
	loader   sitecrawl.PolicyLoader
	failOpen bool
	logger   *slog.Logger

	mu       sync.RWMutex
	policies map[string]gateEntry
	loads    singleflight.Group
}

// gateEntry is a cached lookup; a nil policy means the origin was unavailable.
type gateEntry struct {
	policy sitecrawl.Policy
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithFailOpen sets whether URLs are allowed when an origin's policy is
// unavailable. Defaults to false (deny).
func WithFailOpen(failOpen bool) GateOption {
	return func(g *Gate) {
		g.failOpen = failOpen
	}
}

// WithGateLogger sets the logger used for unavailable-policy warnings.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a Gate that loads policies through loader.
func NewGate(loader sitecrawl.PolicyLoader, opts ...GateOption) *Gate {
	g := &Gate{
		loader:   loader,
		logger:   discardLogger(),
		policies: make(map[string]gateEntry),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allowed reports whether userAgent may crawl rawURL.
// Relative or malformed URLs are never allowed.
func (g *Gate) Allowed(ctx context.Context, rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return false
	}

	origin := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	entry := g.entry(ctx, origin)
	if entry.policy == nil {
		return g.failOpen
	}
	return entry.policy.Allowed(u.RequestURI(), userAgent)
}

func (g *Gate) entry(ctx context.Context, origin string) gateEntry {
	if e, ok := g.cached(origin); ok {
		return e
	}

	v, _, _ := g.loads.Do(origin, func() (any, error) {
		if e, ok := g.cached(origin); ok {
			return e, nil
		}

		policy, err := g.loader.LoadPolicy(ctx, origin)
		if err != nil {
			g.logger.Warn("robots policy unavailable",
				"origin", origin,
				"fail_open", g.failOpen,
				"err", err,
			)
			// A canceled crawl is not evidence about the origin.
			if ctx.Err() != nil {
				return gateEntry{}, nil
			}
			policy = nil
		}

		e := gateEntry{policy: policy}
		g.mu.Lock()
		g.policies[origin] = e
		g.mu.Unlock()
		return e, nil
	})
	e, _ := v.(gateEntry)
	return e
}

func (g *Gate) cached(origin string) (gateEntry, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.policies[origin]
	return e, ok
}

// AllowAll is a PolitenessGate that allows every URL. It is used when robots
// compliance is turned off.
type AllowAll struct{}

// Allowed always returns true.
func (AllowAll) Allowed(context.Context, string, string) bool { return true }
