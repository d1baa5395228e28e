package settings

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/storage/model"
)

// Cache slot keys
const (
	SlotAll    = "settings.all"
	SlotPublic = "settings.public"
)

// DefaultCacheLifetime is the time a populated slot stays valid
const DefaultCacheLifetime = time.Hour

// Entry is the cached raw form of a single setting; it is decoded on read.
type Entry struct {
	Value  *string           `msgpack:"v"`
	Type   model.SettingType `msgpack:"t"`
	Group  string            `msgpack:"g"`
	Public bool              `msgpack:"p"`
}

// Snapshot maps setting keys to their cached entries. Snapshots returned by a
// Cache are shared and must not be modified.
type Snapshot map[string]Entry

// publicOnly returns the subset of the snapshot flagged as public
func (s Snapshot) publicOnly() Snapshot {
	pub := make(Snapshot)
	for k, e := range s {
		if e.Public {
			pub[k] = e
		}
	}
	return pub
}

func snapshotOf(list []model.Setting) Snapshot {
	snap := make(Snapshot, len(list))
	for _, s := range list {
		snap[s.Key] = Entry{
			Value:  s.Value,
			Type:   s.Type,
			Group:  s.Group,
			Public: s.IsPublic,
		}
	}
	return snap
}

// CacheBackend stores snapshots under slot keys
type CacheBackend interface {
	// Get returns the snapshot stored under key and whether it was present
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	// Set stores the snapshot under key for ttl
	Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error
	// Delete evicts the passed keys
	Delete(ctx context.Context, keys ...string) error
}

// Cache memoizes the "all" and "public" views of the settings store.
//
// A miss on the all slot loads the store once and populates both slots; a
// miss on the public slot alone is derived from the all slot. Concurrent
// misses may load more than once, which is harmless.
type Cache struct {
	store   model.SettingsStore
	backend CacheBackend
	ttl     time.Duration

	// generation is bumped on every invalidation so a load that started
	// before it does not leave its snapshot behind.
	generation atomic.Uint64
}

// NewCache creates a Cache in front of store. A nil backend disables caching;
// a non-positive ttl falls back to DefaultCacheLifetime.
func NewCache(store model.SettingsStore, backend CacheBackend, ttl time.Duration) *Cache {
	if backend == nil {
		backend = NoopBackend{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheLifetime
	}
	return &Cache{
		store:   store,
		backend: backend,
		ttl:     ttl,
	}
}

// All returns the snapshot of every stored setting
func (c *Cache) All(ctx context.Context) (Snapshot, error) {
	if snap, ok := c.lookup(ctx, SlotAll); ok {
		return snap, nil
	}
	gen := c.generation.Load()
	list, err := c.store.List(ctx, model.SettingsFilter{})
	if err != nil {
		return nil, err
	}
	snap := snapshotOf(list)
	c.populate(ctx, gen, SlotAll, snap)
	c.populate(ctx, gen, SlotPublic, snap.publicOnly())
	return snap, nil
}

// Public returns the snapshot of the public settings
func (c *Cache) Public(ctx context.Context) (Snapshot, error) {
	if snap, ok := c.lookup(ctx, SlotPublic); ok {
		return snap, nil
	}
	gen := c.generation.Load()
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	pub := all.publicOnly()
	c.populate(ctx, gen, SlotPublic, pub)
	return pub, nil
}

// Invalidate evicts both slots
func (c *Cache) Invalidate(ctx context.Context) error {
	c.generation.Add(1)
	if err := c.backend.Delete(ctx, SlotAll, SlotPublic); err != nil {
		return errors.Wrap(err, "settings: cache eviction failed")
	}
	log.Debug("settings cache invalidated")
	return nil
}

// lookup treats backend errors as misses so that reads fall through to the store
func (c *Cache) lookup(ctx context.Context, key string) (Snapshot, bool) {
	snap, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		log.WithError(err).WithField("slot", key).Warn("settings cache read failed")
		return nil, false
	}
	return snap, ok
}

func (c *Cache) populate(ctx context.Context, gen uint64, key string, snap Snapshot) {
	if c.generation.Load() != gen {
		return
	}
	if err := c.backend.Set(ctx, key, snap, c.ttl); err != nil {
		log.WithError(err).WithField("slot", key).Warn("settings cache write failed")
		return
	}
	if c.generation.Load() != gen {
		// an invalidation raced with the write above
		if err := c.backend.Delete(ctx, key); err != nil {
			log.WithError(err).WithField("slot", key).Warn("settings cache eviction failed")
		}
	}
}

// MemoryBackend is an in-process CacheBackend. Entries expire ttl after they
// were stored; reads do not extend their lifetime.
type MemoryBackend struct {
	cache *ttlcache.Cache[string, Snapshot]
}

// NewMemoryBackend creates a MemoryBackend; call Start to run the expiry janitor
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		cache: ttlcache.New[string, Snapshot](
			ttlcache.WithDisableTouchOnHit[string, Snapshot](),
		),
	}
}

// Start runs the removal of expired entries in the background until Stop is called
func (m *MemoryBackend) Start() {
	go m.cache.Start()
}

// Stop stops the background removal of expired entries
func (m *MemoryBackend) Stop() {
	m.cache.Stop()
}

// Get implements the CacheBackend interface
func (m *MemoryBackend) Get(_ context.Context, key string) (Snapshot, bool, error) {
	item := m.cache.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

// Set implements the CacheBackend interface
func (m *MemoryBackend) Set(_ context.Context, key string, snap Snapshot, ttl time.Duration) error {
	m.cache.Set(key, snap, ttl)
	return nil
}

// Delete implements the CacheBackend interface
func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.cache.Delete(k)
	}
	return nil
}

// NoopBackend never stores anything; every read goes to the settings store
type NoopBackend struct{}

// Get implements the CacheBackend interface
func (NoopBackend) Get(context.Context, string) (Snapshot, bool, error) {
	return nil, false, nil
}

// Set implements the CacheBackend interface
func (NoopBackend) Set(context.Context, string, Snapshot, time.Duration) error {
	return nil
}

// Delete implements the CacheBackend interface
func (NoopBackend) Delete(context.Context, ...string) error {
	return nil
}
