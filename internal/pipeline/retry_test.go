package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-title-enrich/internal/source"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, RetryDelay: 0, RateLimitCooldown: 0}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	var gate cooldownGate
	calls := 0
	retries, err := fastPolicy().Do(context.Background(), &gate, func() error {
		calls++
		return nil
	})
	if err != nil || retries != 0 || calls != 1 {
		t.Errorf("retries=%d calls=%d err=%v", retries, calls, err)
	}
}

func TestDoRetriesTransientUpToLimit(t *testing.T) {
	var gate cooldownGate
	calls := 0
	retries, err := fastPolicy().Do(context.Background(), &gate, func() error {
		calls++
		return &source.TransientError{Err: errors.New("timeout")}
	})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if retries != 3 || calls != 4 {
		t.Errorf("retries=%d calls=%d, want 3 retries over 4 calls", retries, calls)
	}
}

func TestDoTransientRecovers(t *testing.T) {
	var gate cooldownGate
	calls := 0
	retries, err := fastPolicy().Do(context.Background(), &gate, func() error {
		calls++
		if calls < 3 {
			return &source.TransientError{Err: errors.New("flaky")}
		}
		return nil
	})
	if err != nil || retries != 2 {
		t.Errorf("retries=%d err=%v, want recovery after 2 retries", retries, err)
	}
}

func TestDoPermanentFailsImmediately(t *testing.T) {
	var gate cooldownGate
	calls := 0
	_, err := fastPolicy().Do(context.Background(), &gate, func() error {
		calls++
		return &source.PermanentError{Err: errors.New("bad page")}
	})
	if err == nil || calls != 1 {
		t.Errorf("calls=%d err=%v, want one call and an error", calls, err)
	}
}

func TestDoRateLimitedPausesGate(t *testing.T) {
	var gate cooldownGate
	policy := RetryPolicy{MaxRetries: 1, RetryDelay: 0, RateLimitCooldown: 20 * time.Millisecond}

	calls := 0
	start := time.Now()
	_, err := policy.Do(context.Background(), &gate, func() error {
		calls++
		if calls == 1 {
			return &source.RateLimitedError{URL: "x", StatusCode: 429}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("second attempt ran after %v, before the cooldown passed", elapsed)
	}

	// The pause is shared: an unrelated caller waiting on the same gate
	// during the cooldown would have blocked too.
	gate.pause(30 * time.Millisecond)
	waitStart := time.Now()
	if err := gate.wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if time.Since(waitStart) < 25*time.Millisecond {
		t.Error("gate.wait returned before the pause expired")
	}
}

func TestDoRespectsCancelledContext(t *testing.T) {
	var gate cooldownGate
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxRetries: 3, RetryDelay: time.Hour}
	_, err := policy.Do(ctx, &gate, func() error {
		return &source.TransientError{Err: errors.New("timeout")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
