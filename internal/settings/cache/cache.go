// Package cache gives ordinary application code cheap, read-only access to current settings.
//
// The cache is filled by a single Lister call on first access and is only refreshed
// after Invalidate. Values are merged over settings.Defaults, so a missing key or a
// failed load still yields a usable default.
package cache

import (
	"context"
	"maps"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/sitesettings/sitesettings/internal/settings"
)

const snapshotKey = "settings"

type snapshot = map[string]settings.Value

// Lister returns all current settings, implemented by settings.Service.
type Lister interface {
	List(ctx context.Context) ([]settings.Setting, error)
}

// Cache is a read-through view of all settings.
type Cache struct {
	lister Lister
	cache  *ttlcache.Cache[string, snapshot]
	group  singleflight.Group

	// generation counts Invalidate calls. A load only stores its result when
	// no Invalidate happened while it was running.
	generation atomic.Uint64
	mu         sync.Mutex
}

// New creates a Cache on top of lister.
func New(lister Lister) *Cache {
	if lister == nil {
		panic("settings lister cannot be nil")
	}

	return &Cache{
		lister: lister,
		cache: ttlcache.New[string, snapshot](
			ttlcache.WithDisableTouchOnHit[string, snapshot](),
		),
	}
}

func (c *Cache) load(ctx context.Context) snapshot {
	if item := c.cache.Get(snapshotKey); item != nil {
		return item.Value()
	}

	gen := c.generation.Load()

	// readers arriving after an Invalidate start a new load instead of joining a stale one
	v, _, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		list, err := c.lister.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to load settings, serving defaults")
			return settings.Defaults(), nil
		}

		merged := settings.Defaults()
		for _, s := range list {
			merged[s.Key] = s.Value
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.generation.Load() != gen {
			log.Debug().Msg("settings changed during load, result not cached")
			return merged, nil
		}

		c.cache.Set(snapshotKey, merged, ttlcache.NoTTL)
		log.Debug().Int("settings", len(list)).Msg("settings cache loaded")

		return merged, nil
	})

	return v.(snapshot) //nolint:forcetypeassert
}

// Snapshot returns a copy of all values, defaults included.
func (c *Cache) Snapshot(ctx context.Context) map[string]settings.Value {
	return maps.Clone(c.load(ctx))
}

// Public returns all values as plain JSON-ready values.
func (c *Cache) Public(ctx context.Context) map[string]any {
	values := c.load(ctx)

	out := make(map[string]any, len(values))
	for key, v := range values {
		out[key] = v.Interface()
	}

	return out
}

// Get returns the value of key and whether it is known.
func (c *Cache) Get(ctx context.Context, key string) (settings.Value, bool) {
	v, ok := c.load(ctx)[key]
	return v, ok
}

// Bool returns the value of a boolean setting, false for unknown keys and other types.
func (c *Cache) Bool(ctx context.Context, key string) bool {
	v, ok := c.Get(ctx, key)
	return ok && v.Type == settings.TypeBoolean && v.Bool
}

// String returns the text of a text or image setting, empty for unknown keys and booleans.
func (c *Cache) String(ctx context.Context, key string) string {
	v, ok := c.Get(ctx, key)
	if !ok || v.Type == settings.TypeBoolean {
		return ""
	}

	return v.Text
}

// Invalidate drops the loaded values, the next access loads them again.
// A load running concurrently still answers its callers but is not kept.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation.Add(1)
	c.cache.Delete(snapshotKey)
}

// OnCommit invalidates the cache, it is meant to be registered with settings.Service.OnCommit.
func (c *Cache) OnCommit(_ context.Context, updated *settings.Setting) {
	log.Debug().Str("key", updated.Key).Msg("settings cache invalidated")
	c.Invalidate()
}
