package tool

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
	metricsx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/pkg/metrics"
)

type RetryConfig struct {
	MaxAttempts       int           `envconfig:"MAX_ATTEMPTS" split_words:"true" default:"3"`
	InitialBackoff    time.Duration `envconfig:"INITIAL_BACKOFF" split_words:"true" default:"100ms"`
	MaxBackoff        time.Duration `envconfig:"MAX_BACKOFF" split_words:"true" default:"5s"`
	BackoffMultiplier float64       `envconfig:"BACKOFF_MULTIPLIER" split_words:"true" default:"2.0"`
	Jitter            bool          `envconfig:"JITTER" split_words:"true" default:"true"`
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = 2.0
	}
	return c
}

// RetryingTool wraps an inner Tool with a bounded retry budget. Transient
// failures (Unavailable, Timeout) are retried with exponential backoff and
// jitter; InvalidArgument fails fast. It satisfies the Tool contract, so
// routing never knows about retry policy.
type RetryingTool struct {
	inner contractx.Tool
	conf  RetryConfig
}

func WithRetry(inner contractx.Tool, conf RetryConfig) *RetryingTool {
	return &RetryingTool{inner: inner, conf: conf.normalized()}
}

func (r *RetryingTool) Name() string        { return r.inner.Name() }
func (r *RetryingTool) Description() string { return r.inner.Description() }

func (r *RetryingTool) Execute(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("%w: tool input is empty", contractx.ErrInvalidArgument)
	}

	var lastErr error
	backoff := r.conf.InitialBackoff

	for attempt := 1; attempt <= r.conf.MaxAttempts; attempt++ {
		if attempt > 1 {
			metricsx.RecordRetry(r.Name())
		}

		started := time.Now()
		out, err := r.inner.Execute(ctx, input)
		elapsed := time.Since(started)

		if err == nil {
			metricsx.RecordToolAttempt(r.Name(), "ok", elapsed)
			log.Debug().
				Str("tool", r.Name()).
				Int("attempt", attempt).
				Dur("latency", elapsed).
				Msg("tool attempt succeeded")
			return out, nil
		}

		lastErr = err
		metricsx.RecordToolAttempt(r.Name(), classify(err), elapsed)
		log.Warn().
			Err(err).
			Str("tool", r.Name()).
			Int("attempt", attempt).
			Dur("latency", elapsed).
			Msg("tool attempt failed")

		// Permanent failures are not worth a second attempt.
		if !contractx.IsTransient(err) {
			return "", err
		}
		if attempt == r.conf.MaxAttempts {
			break
		}

		if err := r.wait(ctx, withJitter(backoff, r.conf.Jitter)); err != nil {
			return "", err
		}
		backoff = time.Duration(float64(backoff) * r.conf.BackoffMultiplier)
		if backoff > r.conf.MaxBackoff {
			backoff = r.conf.MaxBackoff
		}
	}

	return "", fmt.Errorf("%w: tool=%s attempts=%d last error: %v",
		contractx.ErrRetriesExhausted, r.Name(), r.conf.MaxAttempts, lastErr)
}

// wait is a scheduled sleep, never a busy loop, and honors cancellation.
func (r *RetryingTool) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withJitter spreads concurrent sessions' retries by up to 25% of the delay.
func withJitter(d time.Duration, enabled bool) time.Duration {
	if !enabled {
		return d
	}
	return d + time.Duration(rand.Float64()*0.25*float64(d))
}

func classify(err error) string {
	switch {
	case errors.Is(err, contractx.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, contractx.ErrTimeout):
		return "timeout"
	case errors.Is(err, contractx.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
