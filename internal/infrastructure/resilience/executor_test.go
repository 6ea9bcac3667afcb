package resilience

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func retryOnly(attempts int, backoff time.Duration) Policy {
	return Policy{
		Retry: RetryPolicy{Attempts: attempts, Initial: backoff, Max: 2 * backoff, Multiplier: 2},
	}
}

func TestDoRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(retryOnly(3, time.Millisecond), WithLogger(discardLogger()))

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Do(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) Verdict {
		return Verdict{Retry: errors.Is(err, errTemp), Failure: true}
	})
	if err != nil {
		t.Fatalf("Do() error = %v, want success after retries", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestDoDoesNotRetryPermanentFailure(t *testing.T) {
	exec := NewExecutor(retryOnly(3, time.Millisecond), WithLogger(discardLogger()))

	attempts := 0
	errBadSubject := errors.New("nats: invalid subject")
	err := exec.Do(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		return errBadSubject
	}, nil)
	if !errors.Is(err, errBadSubject) {
		t.Fatalf("Do() error = %v, want %v", err, errBadSubject)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestDoOpensCircuitAfterFailures(t *testing.T) {
	var transitions []gobreaker.State
	exec := NewExecutor(Policy{
		Retry: RetryPolicy{Attempts: 1, Initial: time.Millisecond},
		Breaker: BreakerPolicy{
			Enabled:       true,
			MinRequests:   2,
			FailureRatio:  0.5,
			OpenTimeout:   time.Minute,
			HalfOpenCalls: 1,
		},
	}, WithLogger(discardLogger()), WithStateObserver(func(_ string, _, to gobreaker.State) {
		transitions = append(transitions, to)
	}))

	errDown := errors.New("nats: no servers available for connection")
	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "nats.publish", func(context.Context) error {
			return errDown
		}, Permanent)
		if !errors.Is(err, errDown) {
			t.Fatalf("Do() iteration %d error = %v, want %v", i, err, errDown)
		}
	}

	err := exec.Do(context.Background(), "nats.publish", func(context.Context) error {
		t.Fatalf("call must not run while the circuit is open")
		return nil
	}, Permanent)
	if !IsCircuitOpen(err) {
		t.Fatalf("Do() error = %v, want open circuit", err)
	}
	if got := exec.State("nats.publish"); got != gobreaker.StateOpen {
		t.Fatalf("State() = %s, want open", got)
	}
	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Fatalf("transitions = %v, want [open]", transitions)
	}
}

func TestDoIgnoresFailuresTheClassifierExcuses(t *testing.T) {
	exec := NewExecutor(Policy{
		Retry:   RetryPolicy{Attempts: 1},
		Breaker: BreakerPolicy{Enabled: true, MinRequests: 1, FailureRatio: 0.1, OpenTimeout: time.Minute},
	}, WithLogger(discardLogger()))

	for i := 0; i < 5; i++ {
		_ = exec.Do(context.Background(), "nats.publish", func(context.Context) error {
			return context.Canceled
		}, func(error) Verdict { return Verdict{} })
	}
	if got := exec.State("nats.publish"); got != gobreaker.StateClosed {
		t.Fatalf("State() = %s, want closed", got)
	}
}

func TestDoStopsRetryingOnCanceledContext(t *testing.T) {
	exec := NewExecutor(retryOnly(5, 50*time.Millisecond), WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	errTemp := errors.New("nats: timeout")
	err := exec.Do(ctx, "nats.publish", func(context.Context) error {
		attempts++
		cancel()
		return errTemp
	}, func(error) Verdict {
		return Verdict{Retry: true, Failure: true}
	})
	if !errors.Is(err, errTemp) {
		t.Fatalf("Do() error = %v, want last call error", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestStateOfUnknownOperationIsClosed(t *testing.T) {
	if got := NewExecutor(DefaultPolicy()).State("never"); got != gobreaker.StateClosed {
		t.Fatalf("State() = %s, want closed", got)
	}
}

func TestRetryDelayGrowsUpToMax(t *testing.T) {
	p := RetryPolicy{Attempts: 5, Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond, Multiplier: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Fatalf("Delay(%d) = %s, want %s", i+1, got, w)
		}
	}
}

func TestPublishPolicyKeepsDefaultsForZeroKnobs(t *testing.T) {
	got := PublishPolicy(0, 0, 0)
	if got != DefaultPolicy() {
		t.Fatalf("PublishPolicy(0, 0, 0) = %+v, want defaults", got)
	}

	got = PublishPolicy(5, 2*time.Second, time.Minute)
	if got.Retry.Attempts != 5 || got.Retry.Initial != 2*time.Second || got.Retry.Max != 2*time.Second {
		t.Fatalf("retry = %+v", got.Retry)
	}
	if got.Breaker.OpenTimeout != time.Minute {
		t.Fatalf("open timeout = %s, want 1m", got.Breaker.OpenTimeout)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
