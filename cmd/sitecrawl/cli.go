package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Seeds          []string      `arg:"" name:"seed" help:"URL(s) to start crawling from"`
	Domain         []string      `short:"d" help:"Allowed domains; subdomains are included (default: registrable domain of each seed)"`
	MaxPages       int           `short:"m" default:"400" help:"Maximum number of URLs to collect"`
	ExcludeExt     []string      `name:"exclude-ext" help:"File extensions never followed (default: .jpg,.jpeg,.png,.gif,.bmp,.svg,.webp)"`
	Include        []string      `sep:"none" help:"Only follow URLs matching this regexp (repeatable)"`
	Exclude        []string      `sep:"none" help:"Never follow URLs matching this regexp (repeatable)"`
	MaxDepth       int           `default:"0" help:"Maximum number of links away from a seed, 0 for unlimited"`
	NoRobots       bool          `help:"Ignore robots.txt"`
	RobotsFailOpen bool          `help:"Crawl URLs whose robots.txt cannot be loaded"`
	UserAgent      string        `short:"A" default:"sitecrawl/1.0" help:"User-Agent header sent with every request"`
	Concurrency    int           `short:"c" default:"8" help:"Concurrent fetch limit"`
	RPS            float64       `name:"rps" default:"4" help:"Requests per second per host, 0 for unlimited"`
	Timeout        time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	Retries        int           `default:"0" help:"Retries per failed fetch with 1s, 2s, 4s... backoff"`
	Sitemap        bool          `help:"Also seed from the site's sitemap"`
	Format         string        `short:"f" default:"xlsx" enum:"xlsx,csv,sqlite" help:"Output format (xlsx, csv, sqlite)"`
	Out            string        `short:"o" default:"." help:"Output directory"`
	Verbose        bool          `short:"v" help:"Log every fetch, robots load and write to stderr"`
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Fetcher     sitecrawl.Fetcher
	Extractor   sitecrawl.LinkExtractor
	RateLimiter sitecrawl.DomainLimiter
	Writer      sitecrawl.TableWriter
	Sitemaps    sitecrawl.SitemapService

	// Gate is nil when robots.txt is ignored.
	Gate sitecrawl.PolitenessGate
}
