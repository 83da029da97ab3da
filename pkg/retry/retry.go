// Package retry reruns retryable scrape outcomes with exponential backoff.
package retry

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/dtnitsch/hrscrape/models"
)

// Func produces one scrape outcome per invocation.
type Func func(ctx context.Context) models.ScrapeOutcome

// Run invokes fn up to cfg.MaxAttempts times. Only outcomes that are
// both failed and marked RetryRecommended are rerun; a success or a
// non-retryable failure returns immediately. The returned outcome is
// the last one produced, annotated with the attempt count when more
// than one attempt ran.
func Run(ctx context.Context, cfg models.RetryConfig, log *slog.Logger, fn Func) models.ScrapeOutcome {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = models.Duration(2 * time.Second)
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = models.Duration(30 * time.Second)
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var outcome models.ScrapeOutcome
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return withAttempts(outcome, attempt-1)
		}

		outcome = fn(ctx)
		if outcome.Success || !outcome.RetryRecommended {
			return withAttempts(outcome, attempt)
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(cfg, attempt)
		log.Warn("scrape failed, retrying",
			"attempt", attempt,
			"max_attempts", cfg.MaxAttempts,
			"delay", delay,
			"error", outcome.Error)

		select {
		case <-ctx.Done():
			return withAttempts(outcome, attempt)
		case <-time.After(delay):
		}
	}

	return withAttempts(outcome, cfg.MaxAttempts)
}

// backoffDelay grows the initial delay exponentially per attempt,
// capped at MaxDelay.
func backoffDelay(cfg models.RetryConfig, attempt int) time.Duration {
	delay := time.Duration(float64(cfg.InitialDelay.Std()) * math.Pow(cfg.Multiplier, float64(attempt-1)))
	if delay > cfg.MaxDelay.Std() {
		delay = cfg.MaxDelay.Std()
	}
	return delay
}

func withAttempts(outcome models.ScrapeOutcome, attempts int) models.ScrapeOutcome {
	if attempts <= 1 {
		return outcome
	}
	if outcome.Debug == nil {
		outcome.Debug = &models.DebugInfo{}
	}
	outcome.Debug.Attempts = attempts
	return outcome
}
