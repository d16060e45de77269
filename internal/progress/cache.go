package progress

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/studypulse/internal/identity"
)

// StatsCache holds the client-side copy of users' aggregate stats. Only
// successful reads are cached; a degraded read is always retried.
type StatsCache struct {
	env *env
	agg *Aggregator

	mu      sync.Mutex
	entries map[string]UserProgressStats
	// gen is bumped by every invalidation; a read-through started under an
	// older generation is returned but not stored.
	gen uint64
}

// Get returns the cached stats for userID, reading through on a miss.
func (c *StatsCache) Get(ctx context.Context, userID string) Outcome[UserProgressStats] {
	c.mu.Lock()
	s, ok := c.entries[userID]
	gen := c.gen
	c.mu.Unlock()
	if ok {
		return Ok(s)
	}

	out := c.agg.Stats(ctx, userID)
	if !out.Degraded {
		c.mu.Lock()
		if c.gen == gen {
			c.entries[userID] = out.Value
		}
		c.mu.Unlock()
	}
	return out
}

// Invalidate drops the cached entry for userID.
func (c *StatsCache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.gen++
	c.mu.Unlock()
}

// Clear drops every cached entry.
func (c *StatsCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.gen++
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *StatsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Subscriber delivers identity state changes.
type Subscriber interface {
	Subscribe(fn func(identity.Event)) (unsubscribe func())
}

// Watch keeps the cache in step with the identity session: sign-out
// discards every entry, sign-in lazily initializes and warms the user's
// stats.
func (c *StatsCache) Watch(src Subscriber) (stop func()) {
	return src.Subscribe(func(ev identity.Event) {
		switch ev.Type {
		case identity.SignedOut:
			c.Clear()
		case identity.SignedIn:
			c.Clear()
			c.warm(ev.UserID)
		}
	})
}

func (c *StatsCache) warm(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.env.authTimeout)
	defer cancel()

	if _, err := c.agg.Ensure(ctx, userID); err != nil {
		c.env.log.Warn("lazy stats initialization failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	c.Get(ctx, userID)
}
