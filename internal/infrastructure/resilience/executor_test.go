package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2.0,
		BreakerEnabled:      false,
	}
}

func retryableClassifier(error) ErrorClassification {
	return ErrorClassification{Retryable: true, RecordFailure: true}
}

func TestExecutorRetriesRetryableErrors(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, retryableClassifier)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecutorStopsOnNonRetryableError(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	wantErr := errors.New("permanent")
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return wantErr
	}, func(error) ErrorClassification {
		return ErrorClassification{Retryable: false, RecordFailure: true}
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestExecutorReturnsAfterMaxAttempts(t *testing.T) {
	e := NewExecutor(fastConfig())

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errors.New("always failing")
	}, retryableClassifier)
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecutorRespectsCancelledContext(t *testing.T) {
	e := NewExecutor(fastConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := e.Execute(ctx, "op", func(context.Context) error {
		calls++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("cancelled context must not invoke the call, got %d calls", calls)
	}
}

func TestExecutorBreakerOpensAfterFailureRatio(t *testing.T) {
	cfg := fastConfig()
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 2
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.RetryMaxAttempts = 1
	e := NewExecutor(cfg)

	fail := func(context.Context) error { return errors.New("down") }
	for i := 0; i < 2; i++ {
		_ = e.Execute(context.Background(), "op", fail, retryableClassifier)
	}

	err := e.Execute(context.Background(), "op", fail, retryableClassifier)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
