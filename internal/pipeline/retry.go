package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-title-enrich/internal/source"
)

// RetryPolicy is the single retry behaviour wrapped around every external
// source call. Transient failures retry the same request after a fixed
// delay; rate limiting pauses every in-flight worker through the shared
// gate; permanent failures return immediately.
type RetryPolicy struct {
	MaxRetries        int
	RetryDelay        time.Duration
	RateLimitCooldown time.Duration
}

// DefaultRetryPolicy matches the pacing the external sources tolerate.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:        3,
	RetryDelay:        4 * time.Second,
	RateLimitCooldown: 30 * time.Second,
}

// cooldownGate pauses a whole batch when any worker gets rate limited.
// pause extends the shared resume time; wait blocks until it has passed.
type cooldownGate struct {
	mu       sync.Mutex
	resumeAt time.Time
}

func (g *cooldownGate) pause(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until := time.Now().Add(d)
	if until.After(g.resumeAt) {
		g.resumeAt = until
	}
}

func (g *cooldownGate) wait(ctx context.Context) error {
	g.mu.Lock()
	resumeAt := g.resumeAt
	g.mu.Unlock()

	d := time.Until(resumeAt)
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Do runs fn under the policy. The returned error is the last failure,
// already classified by the source package. attempts reported back via the
// second return value feed the error partition's retry count.
func (p RetryPolicy) Do(ctx context.Context, gate *cooldownGate, fn func() error) (int, error) {
	retries := 0
	for {
		if err := gate.wait(ctx); err != nil {
			return retries, err
		}

		err := fn()
		if err == nil {
			return retries, nil
		}

		switch source.Classify(err) {
		case source.KindTransient:
			if retries >= p.MaxRetries {
				return retries, err
			}
			retries++
			fmt.Printf("🔄 Transient failure, retry %d/%d in %s: %v\n", retries, p.MaxRetries, p.RetryDelay, err)
			select {
			case <-ctx.Done():
				return retries, ctx.Err()
			case <-time.After(p.RetryDelay):
			}
		case source.KindRateLimited:
			if retries >= p.MaxRetries {
				return retries, err
			}
			retries++
			fmt.Printf("🚦 Rate limited, pausing batch for %s: %v\n", p.RateLimitCooldown, err)
			gate.pause(p.RateLimitCooldown)
		default:
			return retries, err
		}
	}
}
