package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/sitecrawl"
	"github.com/fwojciec/sitecrawl/bloom"
	"github.com/google/uuid"
)

// DefaultPolicyAgent is the user agent checked against robots.txt rules.
const DefaultPolicyAgent = "*"

// deniedFalsePositiveRate sizes the filter that remembers denied URLs.
// A false positive only suppresses a repeated log line.
const deniedFalsePositiveRate = 0.001

// Result summarizes a crawl run.
type Result struct {
	RunID  string
	Domain string

	// Reason is the state that ended the run: StateExhausted, StateDrained,
	// or StateRunning when the run was interrupted.
	Reason sitecrawl.State

	Pages    int // admitted URLs, equal to len(URLs)
	Fetched  int
	Failed   int
	Denied   int // distinct URLs denied by the politeness gate
	Rejected int // links rejected by the filter
	URLs     []string
	Location string // file written by the sink, empty when nothing was written
}

// Scheduler is the frontier scheduler for a single crawl run. It decides
// which URLs are admitted, hands them out for fetching in breadth-first
// order, enforces the page budget and runs the single flush at the end.
//
// All mutations of the visited set, the page counter and the state happen
// under one lock, so concurrent callbacks from fetch workers can never admit
// the same URL twice or overshoot the budget. A Scheduler must not be reused
// across runs.
type Scheduler struct {
	domain    string
	maxPages  int
	maxDepth  int
	userAgent string
	gate      sitecrawl.PolitenessGate
	filter    *Filter
	sink      sitecrawl.ResultSink
	logger    *slog.Logger
	runID     string

	mu           sync.Mutex
	visited      *VisitedSet
	frontier     *Frontier
	currentPages int
	state        sitecrawl.State
	flushing     bool
	inflight     int
	denied       *bloom.Filter
	stats        Result
	result       *Result

	flushOnce sync.Once
	flushErr  error
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithGate sets the politeness gate consulted before every admission.
// Without a gate every URL is allowed.
func WithGate(gate sitecrawl.PolitenessGate) SchedulerOption {
	return func(s *Scheduler) {
		s.gate = gate
	}
}

// WithFilter sets the filter applied to extracted links.
// Defaults to NewFilter with the scheduler's domain.
func WithFilter(f *Filter) SchedulerOption {
	return func(s *Scheduler) {
		s.filter = f
	}
}

// WithSink sets where the visited URLs are written when the run ends.
func WithSink(sink sitecrawl.ResultSink) SchedulerOption {
	return func(s *Scheduler) {
		s.sink = sink
	}
}

// WithUserAgent sets the agent name matched against robots.txt groups.
// Defaults to DefaultPolicyAgent.
func WithUserAgent(agent string) SchedulerOption {
	return func(s *Scheduler) {
		s.userAgent = agent
	}
}

// WithMaxDepth limits how many links away from a seed a URL may be.
// Zero, the default, means unlimited.
func WithMaxDepth(depth int) SchedulerOption {
	return func(s *Scheduler) {
		s.maxDepth = depth
	}
}

// WithLogger sets the logger for lifecycle and denial events.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler for a crawl of domain admitting at most
// maxPages URLs. A non-positive maxPages uses sitecrawl.DefaultMaxPages.
func NewScheduler(domain string, maxPages int, opts ...SchedulerOption) *Scheduler {
	if maxPages <= 0 {
		maxPages = sitecrawl.DefaultMaxPages
	}
	s := &Scheduler{
		domain:    domain,
		maxPages:  maxPages,
		userAgent: DefaultPolicyAgent,
		logger:    discardLogger(),
		runID:     uuid.New().String(),
		visited:   NewVisitedSet(),
		frontier:  NewFrontier(),
		state:     sitecrawl.StateRunning,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.filter == nil {
		var domains []string
		if domain != "" {
			domains = []string{domain}
		}
		s.filter = NewFilter(domains)
	}
	s.denied = bloom.NewFilter(uint(max(maxPages*10, 1000)), deniedFalsePositiveRate)
	s.logger = s.logger.With("run", s.runID)
	s.stats = Result{RunID: s.runID, Domain: domain}
	return s
}

// RunID returns the identifier attached to every log line of this run.
func (s *Scheduler) RunID() string {
	return s.runID
}

// Domain returns the primary domain of the run.
func (s *Scheduler) Domain() string {
	return s.domain
}

// Seed classifies and admits a seed URL at depth 0. A seed that fails
// classification is an EINVALID error; a seed that is denied or already
// admitted returns false.
func (s *Scheduler) Seed(ctx context.Context, rawURL string) (bool, error) {
	c, reason := s.filter.Classify(rawURL, "")
	if reason != sitecrawl.ReasonNone {
		return false, sitecrawl.Errorf(sitecrawl.EINVALID, "seed %q rejected: %s", rawURL, reason)
	}
	return s.Enqueue(ctx, sitecrawl.Target{URL: c.URL}), nil
}

// Enqueue admits t if the run is still running, the URL has not been seen,
// the depth limit allows it and the politeness gate allows it. Admission
// inserts the URL into the visited set, updates the page counter, queues the
// target for fetching and moves the run to StateExhausted when the counter
// reaches the budget. It reports whether t was admitted.
func (s *Scheduler) Enqueue(ctx context.Context, t sitecrawl.Target) bool {
	if s.maxDepth > 0 && t.Depth > s.maxDepth {
		return false
	}

	s.mu.Lock()
	open := s.admittingLocked() && !s.visited.Contains(t.URL)
	s.mu.Unlock()
	if !open {
		return false
	}

	// The gate may load a policy over the network; never hold the lock here.
	if s.gate != nil && !s.gate.Allowed(ctx, t.URL, s.userAgent) {
		s.recordDenied(t.URL)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.admittingLocked() || !s.visited.Insert(t.URL) {
		return false
	}
	s.currentPages = s.visited.Len()
	s.frontier.Push(t)

	if s.currentPages >= s.maxPages {
		s.state = sitecrawl.StateExhausted
		s.logger.Info("page budget reached", "pages", s.currentPages, "max_pages", s.maxPages)
	}
	return true
}

// Next returns the next target to fetch and counts it as in flight until
// OnPageFetched or OnFetchFailed is called for it. Targets admitted before
// the budget was reached are still handed out; nothing is handed out once
// the flush has started.
//
// When no target is returned, done reports whether the run has nothing
// left to dispatch: the flush has started, or the frontier is empty with
// nothing in flight. Otherwise an in-flight fetch may still queue more
// targets. Both answers come from one observation under the lock.
func (s *Scheduler) Next() (t sitecrawl.Target, ok, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flushing || s.state == sitecrawl.StateTerminated {
		return sitecrawl.Target{}, false, true
	}
	t, ok = s.frontier.Pop()
	if ok {
		s.inflight++
		return t, true, false
	}
	return sitecrawl.Target{}, false, s.inflight == 0
}

// OnPageFetched is called once per successfully fetched target with the raw
// links found on the page. While running, each link is classified and
// enqueued one level deeper. Once the budget is exhausted the callback
// flushes and stops instead; links of late pages are discarded.
func (s *Scheduler) OnPageFetched(ctx context.Context, t sitecrawl.Target, links []string) {
	// In-flight accounting is released last so that an observer never sees
	// an idle scheduler while this page's links are still being enqueued.
	defer s.release()

	s.mu.Lock()
	s.stats.Fetched++
	state, flushing := s.state, s.flushing
	s.mu.Unlock()

	switch {
	case flushing || state == sitecrawl.StateTerminated:
		return
	case state == sitecrawl.StateExhausted:
		// The error is kept and returned by Finish.
		_, _ = s.Finish(ctx)
		return
	}

	rejected := 0
	for _, link := range links {
		c, reason := s.filter.Classify(link, t.URL)
		if reason != sitecrawl.ReasonNone {
			rejected++
			s.logger.Debug("link rejected", "url", link, "source", t.URL, "reason", reason)
			continue
		}
		s.Enqueue(ctx, sitecrawl.Target{URL: c.URL, Depth: t.Depth + 1})
	}

	if rejected > 0 {
		s.mu.Lock()
		s.stats.Rejected += rejected
		s.mu.Unlock()
	}
}

// OnFetchFailed is called when fetching t failed. The URL stays visited and
// is not retried.
func (s *Scheduler) OnFetchFailed(t sitecrawl.Target, err error) {
	defer s.release()

	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()

	s.logger.Warn("fetch failed", "url", t.URL, "err", err)
}

// OnFrontierEmpty checks for natural termination: nothing queued and nothing
// in flight. A running crawl then becomes drained; a drained or exhausted
// crawl is flushed. It reports whether the run has terminated.
func (s *Scheduler) OnFrontierEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.flushing && s.state != sitecrawl.StateTerminated {
		if s.frontier.Len() > 0 || s.inflight > 0 {
			s.mu.Unlock()
			return false, nil
		}
		if s.state == sitecrawl.StateRunning {
			s.state = sitecrawl.StateDrained
			s.logger.Info("frontier drained", "pages", s.currentPages)
		}
	}
	s.mu.Unlock()

	_, err := s.Finish(ctx)
	return true, err
}

// Finish flushes the visited URLs to the sink and terminates the run.
// Only the first call writes; later calls wait for it and return the same
// result and error. The flush is not bound to ctx's cancellation so that
// interrupted runs still persist what they found.
func (s *Scheduler) Finish(ctx context.Context) (*Result, error) {
	s.flushOnce.Do(func() {
		ctx = context.WithoutCancel(ctx)

		s.mu.Lock()
		s.flushing = true
		res := s.stats
		res.Reason = s.state
		res.Pages = s.currentPages
		res.URLs = s.visited.Snapshot()
		s.mu.Unlock()

		if s.sink != nil {
			location, err := s.sink.Flush(ctx, s.domain, res.URLs)
			if err != nil {
				s.flushErr = fmt.Errorf("flush results: %w", err)
				s.logger.Error("flush failed", "err", err)
			}
			res.Location = location
		}

		s.logger.Info("crawl finished",
			"reason", res.Reason,
			"pages", res.Pages,
			"fetched", res.Fetched,
			"failed", res.Failed,
			"denied", res.Denied,
			"location", res.Location,
		)

		s.mu.Lock()
		s.state = sitecrawl.StateTerminated
		s.result = &res
		s.mu.Unlock()
	})
	return s.Result(), s.flushErr
}

// Result returns the run summary, or nil before Finish has completed.
func (s *Scheduler) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// State returns the current lifecycle state.
func (s *Scheduler) State() sitecrawl.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentPages returns the page counter.
func (s *Scheduler) CurrentPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPages
}

// Budget returns the page counter and the visited set size as one
// consistent observation.
func (s *Scheduler) Budget() (currentPages, visited int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPages, s.visited.Len()
}

// Visited returns the admitted URLs in admission order.
func (s *Scheduler) Visited() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visited.Snapshot()
}

// InFlight returns the number of targets handed out by Next whose fetch has
// not been reported yet.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

// Pending returns the number of queued and in-flight targets.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frontier.Len() + s.inflight
}

func (s *Scheduler) admittingLocked() bool {
	return s.state == sitecrawl.StateRunning && !s.flushing
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

// recordDenied counts and logs a denied URL the first time it is seen.
func (s *Scheduler) recordDenied(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.denied.TestOrAdd(url) {
		return
	}
	s.stats.Denied++
	s.logger.Info("blocked by robots.txt", "url", url)
}
