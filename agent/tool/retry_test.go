package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

type scriptedTool struct {
	name     string
	errs     []error
	output   string
	attempts int
}

func (s *scriptedTool) Name() string        { return s.name }
func (s *scriptedTool) Description() string { return "scripted test tool" }

func (s *scriptedTool) Execute(ctx context.Context, input string) (string, error) {
	idx := s.attempts
	s.attempts++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return "", s.errs[idx]
	}
	return s.output, nil
}

func fastRetryConfig(maxAttempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       maxAttempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            false,
	}
}

func TestRetryingToolSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	inner := &scriptedTool{name: "stock.predict", output: "120 units"}
	wrapped := WithRetry(inner, fastRetryConfig(3))

	out, err := wrapped.Execute(context.Background(), "SKU-42 next week")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "120 units" {
		t.Fatalf("unexpected output: %q", out)
	}
	if inner.attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", inner.attempts)
	}
}

func TestRetryingToolRecoversFromTransientFailures(t *testing.T) {
	t.Parallel()

	inner := &scriptedTool{
		name: "stock.predict",
		errs: []error{
			fmt.Errorf("%w: http status=503", contractx.ErrUnavailable),
			fmt.Errorf("%w: deadline", contractx.ErrTimeout),
		},
		output: "120 units",
	}
	wrapped := WithRetry(inner, fastRetryConfig(3))

	out, err := wrapped.Execute(context.Background(), "SKU-42 next week")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "120 units" {
		t.Fatalf("unexpected output: %q", out)
	}
	if inner.attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.attempts)
	}
}

func TestRetryingToolExhaustsBudget(t *testing.T) {
	t.Parallel()

	transient := fmt.Errorf("%w: http status=500", contractx.ErrUnavailable)
	inner := &scriptedTool{
		name: "stock.predict",
		errs: []error{transient, transient, transient, transient},
	}
	wrapped := WithRetry(inner, fastRetryConfig(3))

	_, err := wrapped.Execute(context.Background(), "SKU-42 next week")
	if !errors.Is(err, contractx.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if inner.attempts != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", inner.attempts)
	}
}

func TestRetryingToolNeverRetriesInvalidArgument(t *testing.T) {
	t.Parallel()

	inner := &scriptedTool{
		name: "inventory.query",
		errs: []error{fmt.Errorf("%w: bad input", contractx.ErrInvalidArgument)},
	}
	wrapped := WithRetry(inner, fastRetryConfig(3))

	_, err := wrapped.Execute(context.Background(), "???")
	if !errors.Is(err, contractx.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if inner.attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", inner.attempts)
	}
}

func TestRetryingToolRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	inner := &scriptedTool{name: "web.search"}
	wrapped := WithRetry(inner, fastRetryConfig(3))

	_, err := wrapped.Execute(context.Background(), "   ")
	if !errors.Is(err, contractx.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if inner.attempts != 0 {
		t.Fatalf("inner tool must not run on empty input, got %d attempts", inner.attempts)
	}
}

func TestRetryingToolStopsOnCancellation(t *testing.T) {
	t.Parallel()

	transient := fmt.Errorf("%w: connection refused", contractx.ErrUnavailable)
	inner := &scriptedTool{
		name: "web.search",
		errs: []error{transient, transient, transient},
	}
	wrapped := WithRetry(inner, RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Hour,
		MaxBackoff:        time.Hour,
		BackoffMultiplier: 2.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := wrapped.Execute(ctx, "anything")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.attempts != 1 {
		t.Fatalf("expected backoff wait to be cancelled after 1 attempt, got %d", inner.attempts)
	}
}
