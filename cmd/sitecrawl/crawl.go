package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/crawl"
)

// CrawlCmd crawls from the seeds and writes the visited URLs.
type CrawlCmd struct {
	Seeds       []string
	Domains     []string
	MaxPages    int
	MaxDepth    int
	ExcludeExt  []string
	Filter      *sitecrawl.URLFilter
	Concurrency int
	Retries     int
	Sitemap     bool
	Out         string
}

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	domains, err := allowedDomains(c.Seeds, c.Domains)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		return err
	}

	filterOpts := []crawl.FilterOption{crawl.WithURLFilter(c.Filter)}
	if len(c.ExcludeExt) > 0 {
		filterOpts = append(filterOpts, crawl.WithExcludedExtensions(c.ExcludeExt))
	}
	filter := crawl.NewFilter(domains, filterOpts...)

	seeds := c.Seeds
	if c.Sitemap && deps.Sitemaps != nil {
		seeds = append(seeds, c.sitemapSeeds(deps, filter)...)
	}

	opts := []crawl.SchedulerOption{
		crawl.WithFilter(filter),
		crawl.WithSink(crawl.NewSink(deps.Writer, c.Out)),
		crawl.WithMaxDepth(c.MaxDepth),
		crawl.WithLogger(logger),
	}
	if deps.Gate != nil {
		opts = append(opts, crawl.WithGate(deps.Gate))
	}
	s := crawl.NewScheduler(domains[0], c.MaxPages, opts...)

	crawler := &crawl.Crawler{
		Fetcher:     deps.Fetcher,
		Extractor:   deps.Extractor,
		RateLimiter: deps.RateLimiter,
		Concurrency: c.Concurrency,
		RetryDelays: crawl.RetryDelays(c.Retries),
		Logger:      logger,
	}

	res, err := crawler.Run(deps.Ctx, s, seeds)
	if res != nil {
		fmt.Fprintf(deps.Stdout, "Visited %d URLs (%s, %d fetched, %d failed, %d blocked by robots.txt)\n",
			res.Pages, res.Reason, res.Fetched, res.Failed, res.Denied)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitecrawl.ErrorMessage(err))
		return err
	}

	if res.Location == "" {
		fmt.Fprintln(deps.Stdout, "No URLs saved")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "Saved %s\n", res.Location)
	return nil
}

// sitemapSeeds returns the sitemap URLs of the first seed that pass filter.
// Discovery failures only cost the extra seeds.
func (c *CrawlCmd) sitemapSeeds(deps *Dependencies, filter *crawl.Filter) []string {
	urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Seeds[0], c.Filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "skip sitemap: %v\n", err)
		return nil
	}

	var seeds []string
	for _, u := range urls {
		if _, reason := filter.Classify(u, c.Seeds[0]); reason == sitecrawl.ReasonNone {
			seeds = append(seeds, u)
		}
	}
	fmt.Fprintf(deps.Stdout, "Found %d URLs in sitemap\n", len(seeds))
	return seeds
}

// allowedDomains returns explicit when given, otherwise the registrable
// domain of each seed in seed order without duplicates.
func allowedDomains(seeds, explicit []string) ([]string, error) {
	if len(seeds) == 0 {
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "at least one seed URL is required")
	}

	var domains []string
	seen := make(map[string]bool)
	add := func(d string) {
		d = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(d), "."))
		if d != "" && !seen[d] {
			seen[d] = true
			domains = append(domains, d)
		}
	}

	for _, d := range explicit {
		add(d)
	}
	if len(domains) > 0 {
		return domains, nil
	}

	for _, seed := range seeds {
		u, err := url.Parse(seed)
		if err != nil || !u.IsAbs() || u.Hostname() == "" {
			return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "invalid seed URL %q: must be absolute", seed)
		}
		add(crawl.RegistrableDomain(u.Hostname()))
	}
	return domains, nil
}
