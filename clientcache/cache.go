// Package clientcache keeps live authenticated Reddit client handles keyed
// by credential identity, so repeated requests with the same bearer don't
// rebuild and re-authenticate a session every time.
//
// Entries carry no TTL or health field. Liveness is re-probed on every use
// and entries leave the map reactively, the moment a probe fails.
package clientcache

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
)

// ProbeFunc checks that a cached handle is still usable. Injectable so tests
// can simulate liveness failure without a network dependency.
type ProbeFunc func(ctx context.Context, client *reddit.Client) error

// FactoryFunc constructs a new handle on a cache miss.
type FactoryFunc func(ctx context.Context) (*reddit.Client, error)

// Cache is a mutex-guarded key → handle map. Construction is serialized per
// key with singleflight, so two concurrent first requests for the same
// credential converge on a single handle instead of leaking one.
type Cache struct {
	mu      sync.Mutex
	clients map[string]*reddit.Client
	probe   ProbeFunc
	group   singleflight.Group
}

// Option modifies a Cache instance.
type Option func(*Cache)

// WithProbe overrides the liveness probe (primarily for testing).
func WithProbe(probe ProbeFunc) Option {
	return func(c *Cache) {
		c.probe = probe
	}
}

// New creates an empty cache. The default probe fetches the authenticated
// identity.
func New(options ...Option) *Cache {
	c := &Cache{
		clients: make(map[string]*reddit.Client),
		probe: func(ctx context.Context, client *reddit.Client) error {
			_, err := client.Me(ctx)
			return err
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetOrCreate returns the cached handle for key if it is still live, or
// builds one via factory, probes it, caches it and returns it. A handle that
// fails its liveness probe is closed and evicted before falling through to
// construction. A freshly built handle that fails its probe is closed and
// the error returned.
func (c *Cache) GetOrCreate(ctx context.Context, key string, factory FactoryFunc) (*reddit.Client, error) {
	if client, ok := c.lookup(key); ok {
		if err := c.probe(ctx, client); err == nil {
			return client, nil
		}
		log.Debug().Str("cache_key", key).Msg("evicting stale reddit client")
		c.evict(key, client)
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have filled the entry while this caller
		// was waiting on the singleflight lock.
		if client, ok := c.lookup(key); ok {
			return client, nil
		}

		client, err := factory(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "[GetOrCreate] building reddit client")
		}
		if err := c.probe(ctx, client); err != nil {
			_ = client.Close()
			return nil, errors.Wrapf(err, "[GetOrCreate] new reddit client failed liveness probe")
		}

		c.mu.Lock()
		c.clients[key] = client
		c.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*reddit.Client), nil
}

// Invalidate removes and closes the entry for key, if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	client, ok := c.clients[key]
	delete(c.clients, key)
	c.mu.Unlock()
	if ok {
		_ = client.Close()
	}
}

// InvalidateAll clears the cache, closing every handle. Used by tests and
// operators.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	clients := c.clients
	c.clients = make(map[string]*reddit.Client)
	c.mu.Unlock()
	for _, client := range clients {
		_ = client.Close()
	}
}

// Size reports the number of cached handles.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *Cache) lookup(key string) (*reddit.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	client, ok := c.clients[key]
	return client, ok
}

// evict removes key only if it still maps to the probed handle, so a
// concurrent replacement isn't discarded.
func (c *Cache) evict(key string, client *reddit.Client) {
	c.mu.Lock()
	if current, ok := c.clients[key]; ok && current == client {
		delete(c.clients, key)
	}
	c.mu.Unlock()
	_ = client.Close()
}
