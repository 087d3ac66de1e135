package ledger

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
)

// DefaultCacheTTL is how long a client list snapshot is served before the
// Clients collection is read again.
const DefaultCacheTTL = 30 * time.Second

// ClientCache holds one snapshot of the Clients collection and the time it
// was captured. The cache is process-local: writes made by other instances
// become visible once the snapshot expires.
type ClientCache struct {
	mu          sync.RWMutex
	clients     []domain.Client
	refreshedAt time.Time
	loaded      bool
	generation  uint64
	ttl         time.Duration
	clock       clockwork.Clock
	metrics     *metrics.CacheMetrics
}

// NewClientCache creates an empty cache. m may be nil.
func NewClientCache(ttl time.Duration, clock clockwork.Clock, m *metrics.CacheMetrics) *ClientCache {
	return &ClientCache{
		ttl:     ttl,
		clock:   clock,
		metrics: m,
	}
}

// Get returns a copy of the snapshot if one is present and younger than the TTL.
func (c *ClientCache) Get() ([]domain.Client, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded || c.clock.Since(c.refreshedAt) >= c.ttl {
		c.metrics.Miss()
		return nil, false
	}

	c.metrics.Hit()
	return slices.Clone(c.clients), true
}

// Set replaces the snapshot and restarts its TTL.
func (c *ClientCache) Set(clients []domain.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = slices.Clone(clients)
	c.refreshedAt = c.clock.Now()
	c.loaded = true
}

// Generation identifies the current contents of the store as far as this
// cache knows. Every Invalidate advances it.
func (c *ClientCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfCurrent stores clients only if no Invalidate happened since gen was
// read. A load that raced a write must not become the snapshot.
func (c *ClientCache) SetIfCurrent(clients []domain.Client, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}
	c.clients = slices.Clone(clients)
	c.refreshedAt = c.clock.Now()
	c.loaded = true
	return true
}

// Invalidate drops the snapshot so the next Get misses, and discards any
// load started before it.
func (c *ClientCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = nil
	c.loaded = false
	c.generation++
	c.metrics.Invalidated()
}

// Age returns how old the snapshot is, or false when there is none.
func (c *ClientCache) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return 0, false
	}
	return c.clock.Since(c.refreshedAt), true
}

// EvictExpired drops an expired snapshot and reports whether it did.
func (c *ClientCache) EvictExpired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded || c.clock.Since(c.refreshedAt) < c.ttl {
		return false
	}
	c.clients = nil
	c.loaded = false
	c.metrics.Evicted()
	return true
}

// StartEvictionTimer starts a background goroutine that periodically drops an
// expired snapshot so an idle process does not hold the whole client list.
// Returns a stop function that should be called to clean up the goroutine.
func (c *ClientCache) StartEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if c.EvictExpired() {
					slog.Debug("Evicted expired client list snapshot")
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
