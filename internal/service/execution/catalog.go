package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/vovakirdan/coderoom-server/internal/execengine"
	"github.com/vovakirdan/coderoom-server/internal/language"
)

const (
	// DefaultCatalogTTL is how long a fetched runtime list stays fresh.
	DefaultCatalogTTL = 600 * time.Second
	// DefaultRefreshTimeout bounds a single runtime list fetch.
	DefaultRefreshTimeout = 10 * time.Second
)

// ErrNoRuntimes is returned when the engine reports an empty runtime list.
var ErrNoRuntimes = errors.New("engine reported no runtimes")

// Catalog caches the engine's runtimes for a fixed TTL. Concurrent refreshes
// are coalesced into a single engine call.
type Catalog struct {
	engine         execengine.Engine
	ttl            time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
	log            *zerolog.Logger

	mu        sync.RWMutex
	entries   []execengine.Runtime
	fetchedAt time.Time

	refresh singleflight.Group
}

// NewCatalog creates a catalog over engine. Zero durations take the defaults.
func NewCatalog(engine execengine.Engine, ttl, refreshTimeout time.Duration, logger *zerolog.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Catalog{
		engine:         engine,
		ttl:            ttl,
		refreshTimeout: refreshTimeout,
		now:            time.Now,
		log:            logger,
	}
}

// Runtimes returns the cached runtimes, refreshing first when the cache is
// empty or at least ttl old.
func (c *Catalog) Runtimes(ctx context.Context) ([]execengine.Runtime, error) {
	c.mu.RLock()
	entries, fetchedAt := c.entries, c.fetchedAt
	c.mu.RUnlock()

	if len(entries) > 0 && c.now().Sub(fetchedAt) < c.ttl {
		return entries, nil
	}

	v, err, _ := c.refresh.Do("runtimes", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]execengine.Runtime), nil
}

func (c *Catalog) fetch(ctx context.Context) ([]execengine.Runtime, error) {
	// Another caller may have refreshed while we waited for the flight.
	c.mu.RLock()
	if len(c.entries) > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	// The flight is shared, so it must not die with the first caller.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	entries, err := c.engine.ListRuntimes(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("runtime catalog refresh failed")
		return nil, fmt.Errorf("list runtimes: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoRuntimes
	}

	c.mu.Lock()
	c.entries = entries
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.log.Info().Int("runtimes", len(entries)).Msg("runtime catalog refreshed")
	return entries, nil
}

// Resolve maps a user supplied language name to a concrete runtime. It
// reports false when the name is unknown or the catalog cannot be loaded.
func (c *Catalog) Resolve(ctx context.Context, name string) (execengine.Runtime, bool) {
	entries, err := c.Runtimes(ctx)
	if err != nil {
		return execengine.Runtime{}, false
	}
	return resolve(entries, name, true)
}

// resolve tries canonical names, then aliases, then one retry through the
// shorthand table.
func resolve(entries []execengine.Runtime, name string, retry bool) (execengine.Runtime, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return execengine.Runtime{}, false
	}

	if rt, ok := lo.Find(entries, func(rt execengine.Runtime) bool {
		return strings.EqualFold(rt.Language, key)
	}); ok {
		return rt, true
	}
	if rt, ok := lo.Find(entries, func(rt execengine.Runtime) bool {
		return lo.ContainsBy(rt.Aliases, func(alias string) bool { return strings.EqualFold(alias, key) })
	}); ok {
		return rt, true
	}

	if retry {
		if canonical, ok := language.Fallback(key); ok {
			return resolve(entries, canonical, false)
		}
	}
	return execengine.Runtime{}, false
}
