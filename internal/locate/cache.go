package locate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/nao1215/zonecheck/internal/model"
)

// CachingLocator wraps a Locator, reusing the last fix while it is younger
// than Options.MaximumAge and bounding fresh requests by Options.Timeout.
type CachingLocator struct {
	inner Locator
	clock clockwork.Clock

	mu        sync.Mutex
	last      Position
	fetchedAt time.Time
	hasLast   bool
}

// NewCachingLocator creates a cache decorator around a locator.
func NewCachingLocator(inner Locator, clock clockwork.Clock) *CachingLocator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachingLocator{inner: inner, clock: clock}
}

// CurrentPosition implements Locator.
func (c *CachingLocator) CurrentPosition(ctx context.Context, opts Options) (Position, error) {
	if pos, ok := c.cached(opts.MaximumAge); ok {
		return pos, nil
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	type result struct {
		pos Position
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		pos, err := c.inner.CurrentPosition(ctx, opts)
		resultCh <- result{pos, err}
	}()

	var res result
	select {
	case res = <-resultCh:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && !model.IsLocationError(res.err) {
			return Position{}, fmt.Errorf("%w after %s", model.ErrLocationTimeout, opts.Timeout)
		}
		return Position{}, res.err
	}

	c.mu.Lock()
	c.last = res.pos
	c.fetchedAt = c.clock.Now()
	c.hasLast = true
	c.mu.Unlock()

	return res.pos, nil
}

func (c *CachingLocator) cached(maxAge time.Duration) (Position, bool) {
	if maxAge <= 0 {
		return Position{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasLast || c.clock.Since(c.fetchedAt) > maxAge {
		return Position{}, false
	}
	return c.last, true
}
