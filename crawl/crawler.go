// Package crawl provides the crawl frontier and traversal engine: link
// classification, deduplication, the page budget, robots.txt gating, the
// worker pool that drives fetching, and the final export of visited URLs.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/sitecrawl"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of simultaneous fetches when unset.
const DefaultConcurrency = 8

// Crawler drives a Scheduler with a pool of fetch workers. Workers report
// back through the Scheduler's callbacks, so the Scheduler is the only place
// where crawl state changes.
type Crawler struct {
	Fetcher     sitecrawl.Fetcher
	Extractor   sitecrawl.LinkExtractor
	RateLimiter sitecrawl.DomainLimiter
	Concurrency int
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// Run seeds s and crawls until the budget is exhausted, the frontier drains
// or ctx is canceled, then flushes. Fetch and policy failures are contained;
// the returned error is either an invalid seed or a persistence failure.
func (c *Crawler) Run(ctx context.Context, s *Scheduler, seeds []string) (*Result, error) {
	if len(seeds) == 0 {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "at least one seed URL is required")
	}
	for _, seed := range seeds {
		if _, err := s.Seed(ctx, seed); err != nil {
			return nil, err
		}
	}

	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	logger := c.logger().With("run", s.RunID())
	logger.Info("crawl started", "domain", s.Domain(), "seeds", len(seeds), "concurrency", concurrency)

	// kick wakes the coordinator when a worker finishes. It holds at most one
	// pending wake-up; a dropped send means one is already queued.
	kick := make(chan struct{}, 1)

	var g errgroup.Group
	g.SetLimit(concurrency)

coordinatorLoop:
	for ctx.Err() == nil {
		t, ok, done := s.Next()
		if ok {
			g.Go(func() error {
				c.visit(ctx, s, t, logger)
				select {
				case kick <- struct{}{}:
				default:
				}
				return nil
			})
			continue
		}
		if done {
			break
		}

		// Every worker sends its kick after reporting back, so a fetch that
		// queues more targets always wakes the loop again.
		select {
		case <-kick:
		case <-ctx.Done():
			break coordinatorLoop
		}
	}

	// In-flight fetches are allowed to complete.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn("crawl interrupted", "err", err)
		return s.Finish(ctx)
	}

	if _, err := s.OnFrontierEmpty(ctx); err != nil {
		return s.Result(), err
	}
	return s.Finish(ctx)
}

// visit fetches one target and reports the outcome to the scheduler.
func (c *Crawler) visit(ctx context.Context, s *Scheduler, t sitecrawl.Target, logger *slog.Logger) {
	html, err := c.fetch(ctx, t.URL, logger)
	if err != nil {
		s.OnFetchFailed(t, err)
		return
	}

	links, err := c.Extractor.ExtractLinks(html, t.URL)
	if err != nil {
		s.OnFetchFailed(t, fmt.Errorf("extract links: %w", err))
		return
	}

	s.OnPageFetched(ctx, t, links)
}

func (c *Crawler) fetch(ctx context.Context, rawURL string, logger *slog.Logger) (string, error) {
	if c.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", err
		}
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	fetchFn := func(ctx context.Context, url string) (string, error) {
		return c.Fetcher.Fetch(ctx, url)
	}
	return FetchWithRetryDelays(ctx, rawURL, fetchFn, logger, c.RetryDelays)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return discardLogger()
	}
	return c.Logger
}
