package fetch

import (
	"context"
	"time"

	"github.com/matzehuels/taxotree/pkg/cache"
	"github.com/matzehuels/taxotree/pkg/observability"
	"github.com/matzehuels/taxotree/pkg/record"
)

// Cached serves entries from a cache and fetches only the misses.
// Entries that could not be found are not cached.
type Cached struct {
	inner Fetcher
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps inner. A nil keyer means the default one.
func NewCached(inner Fetcher, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

func (c *Cached) Fetch(ctx context.Context, refs []record.Ref) (map[record.Ref][]byte, error) {
	hooks := observability.Cache()
	out := make(map[record.Ref][]byte, len(refs))
	var misses []record.Ref
	for _, r := range refs {
		data, ok, err := c.cache.Get(ctx, c.keyer.RecordKey(r.DB, r.Accession))
		if err != nil || !ok {
			hooks.OnCacheMiss(ctx, observability.KeyRecord)
			misses = append(misses, r)
			continue
		}
		hooks.OnCacheHit(ctx, observability.KeyRecord)
		out[r] = data
	}
	if len(misses) == 0 {
		return out, nil
	}

	fetched, err := c.inner.Fetch(ctx, misses)
	if err != nil {
		return nil, err
	}
	for r, data := range fetched {
		out[r] = data
		// a failed write only costs a refetch next run
		if c.cache.Set(ctx, c.keyer.RecordKey(r.DB, r.Accession), data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, observability.KeyRecord, len(data))
		}
	}
	return out, nil
}

var _ Fetcher = (*Cached)(nil)
