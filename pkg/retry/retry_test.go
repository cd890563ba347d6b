package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	transient := errors.New("connection reset")
	calls := 0

	type retryCall struct {
		attempt int
		delay   time.Duration
	}
	var retries []retryCall

	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	}, WithOnRetry(func(attempt int, err error, delay time.Duration) {
		if !errors.Is(err, transient) {
			t.Errorf("onRetry got error %v, want %v", err, transient)
		}
		retries = append(retries, retryCall{attempt: attempt, delay: delay})
	}))

	if err != nil {
		t.Fatalf("Do returned %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("operation ran %d times, want 3", calls)
	}
	if len(retries) != 2 {
		t.Fatalf("onRetry fired %d times, want 2", len(retries))
	}
	if retries[0].attempt != 1 || retries[0].delay != time.Millisecond {
		t.Errorf("first retry = %+v, want attempt 1 delay 1ms", retries[0])
	}
	if retries[1].attempt != 2 || retries[1].delay != 2*time.Millisecond {
		t.Errorf("second retry = %+v, want attempt 2 delay 2ms", retries[1])
	}
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	var last error

	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		last = errors.New("attempt failed")
		return last
	})

	if calls != 3 {
		t.Errorf("operation ran %d times, want 3", calls)
	}
	if err != last {
		t.Errorf("Do returned %v, want the last attempt's error unchanged", err)
	}
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	terminal := errors.New("card declined")
	calls := 0
	retried := 0

	err := Do(context.Background(), fastPolicy(), func(ctx context.Context) error {
		calls++
		return terminal
	},
		WithRetryable(func(err error) bool { return !errors.Is(err, terminal) }),
		WithOnRetry(func(int, error, time.Duration) { retried++ }),
	)

	if calls != 1 {
		t.Errorf("operation ran %d times, want 1", calls)
	}
	if retried != 0 {
		t.Errorf("onRetry fired %d times, want 0", retried)
	}
	if !errors.Is(err, terminal) {
		t.Errorf("Do returned %v, want %v", err, terminal)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 3, BaseDelay: time.Minute}

	errCh := make(chan error, 1)
	go func() {
		errCh <- Do(ctx, policy, func(ctx context.Context) error {
			return errors.New("slow gateway")
		})
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Do returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoSingleAttemptNeverSleeps(t *testing.T) {
	policy := Policy{MaxAttempts: 1, BaseDelay: time.Hour}
	boom := errors.New("boom")

	start := time.Now()
	err := Do(context.Background(), policy, func(ctx context.Context) error {
		return boom
	})
	if time.Since(start) > time.Second {
		t.Error("single-attempt policy slept before returning")
	}
	if err != boom {
		t.Errorf("Do returned %v, want %v", err, boom)
	}
}
