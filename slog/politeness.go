package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitecrawl"
)

// Ensure LoggingPolicyLoader implements sitecrawl.PolicyLoader.
var _ sitecrawl.PolicyLoader = (*LoggingPolicyLoader)(nil)

// LoggingPolicyLoader wraps a PolicyLoader with debug logging.
type LoggingPolicyLoader struct {
	next   sitecrawl.PolicyLoader
	logger *slog.Logger
}

// NewLoggingPolicyLoader creates a new LoggingPolicyLoader.
func NewLoggingPolicyLoader(next sitecrawl.PolicyLoader, logger *slog.Logger) *LoggingPolicyLoader {
	return &LoggingPolicyLoader{next: next, logger: logger}
}

// LoadPolicy delegates to the wrapped loader and logs the origin and outcome.
func (l *LoggingPolicyLoader) LoadPolicy(ctx context.Context, origin string) (policy sitecrawl.Policy, err error) {
	defer func(begin time.Time) {
		l.logger.Info("robots load",
			"origin", origin,
			"code", sitecrawl.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return l.next.LoadPolicy(ctx, origin)
}
