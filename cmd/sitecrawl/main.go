package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/crawl"
	"github.com/fwojciec/sitecrawl/excelize"
	"github.com/fwojciec/sitecrawl/fs"
	"github.com/fwojciec/sitecrawl/goquery"
	sitecrawlhttp "github.com/fwojciec/sitecrawl/http"
	"github.com/fwojciec/sitecrawl/robotstxt"
	scslog "github.com/fwojciec/sitecrawl/slog"
	"github.com/fwojciec/sitecrawl/sqlite"
)

func main() {
	// An interrupt stops the crawl; what was found so far is still written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitecrawl"),
		kong.Description("Crawl a website breadth-first and export the URLs it links to"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	filter, err := sitecrawl.CompileURLFilter(cli.Include, cli.Exclude)
	if err != nil {
		return err
	}

	writer, err := newTableWriter(cli.Format)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Verbose)

	httpFetcher := sitecrawlhttp.NewFetcher(
		sitecrawlhttp.WithTimeout(cli.Timeout),
		sitecrawlhttp.WithUserAgent(cli.UserAgent),
	)
	defer httpFetcher.Close()

	var loader sitecrawl.PolicyLoader = robotstxt.NewLoader(
		robotstxt.WithHTTPClient(httpFetcher.Client()),
		robotstxt.WithUserAgent(cli.UserAgent),
	)
	var sitemaps sitecrawl.SitemapService = sitecrawlhttp.NewSitemapService(
		httpFetcher.Client(),
		sitecrawlhttp.WithSitemapUserAgent(cli.UserAgent),
	)

	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
		Fetcher:     httpFetcher,
		Extractor:   goquery.NewLinkExtractor(),
		RateLimiter: crawl.NewDomainLimiter(cli.RPS),
		Writer:      writer,
		Sitemaps:    sitemaps,
	}

	if cli.Verbose {
		deps.Fetcher = scslog.NewLoggingFetcher(deps.Fetcher, logger)
		deps.Writer = scslog.NewLoggingTableWriter(deps.Writer, logger)
		deps.Sitemaps = scslog.NewLoggingSitemapService(deps.Sitemaps, logger)
		loader = scslog.NewLoggingPolicyLoader(loader, logger)
	}

	if !cli.NoRobots {
		deps.Gate = crawl.NewGate(loader,
			crawl.WithFailOpen(cli.RobotsFailOpen),
			crawl.WithGateLogger(logger),
		)
	}

	cmd := &CrawlCmd{
		Seeds:       cli.Seeds,
		Domains:     cli.Domain,
		MaxPages:    cli.MaxPages,
		MaxDepth:    cli.MaxDepth,
		ExcludeExt:  cli.ExcludeExt,
		Filter:      filter,
		Concurrency: cli.Concurrency,
		Retries:     cli.Retries,
		Sitemap:     cli.Sitemap,
		Out:         cli.Out,
	}

	return cmd.Run(deps)
}

// newTableWriter returns the writer for an output format.
func newTableWriter(format string) (sitecrawl.TableWriter, error) {
	switch format {
	case "", "xlsx":
		return excelize.NewWriter(), nil
	case "csv":
		return fs.NewCSVWriter(), nil
	case "sqlite":
		return sqlite.NewTableWriter(), nil
	default:
		return nil, sitecrawl.Errorf(sitecrawl.EINVALID, "unknown format %q", format)
	}
}

// newLogger logs warnings to stderr, or everything down to debug when
// verbose is set.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}
