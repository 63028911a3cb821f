package thresholdrsa

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// throttle lets each user through at most once per interval.
// A user holds a single token. Taking it schedules its return after the
// interval; users do not wait on each other.
type throttle struct {
	interval time.Duration

	mu     sync.Mutex
	tokens map[string]*semaphore.Weighted
}

func newThrottle(interval time.Duration) *throttle {
	return &throttle{
		interval: interval,
		tokens:   make(map[string]*semaphore.Weighted),
	}
}

func (t *throttle) token(user string) *semaphore.Weighted {
	t.mu.Lock()
	defer t.mu.Unlock()

	sem, ok := t.tokens[user]
	if !ok {
		sem = semaphore.NewWeighted(1)
		t.tokens[user] = sem
	}
	return sem
}

// wait blocks until user's token is available or ctx is done
func (t *throttle) wait(ctx context.Context, user string) error {
	sem := t.token(user)
	if err := sem.Acquire(ctx, 1); err != nil {
		return err
	}
	time.AfterFunc(t.interval, func() {
		sem.Release(1)
	})
	return nil
}
