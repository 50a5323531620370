// Package catalog turns raw object store listings into parsed archive
// records, one calendar day at a time.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goesfetch/internal/goes"
)

// Lister enumerates archive days over an ObjectStore. Listings are cached
// per (bucket, day prefix) so nearby queries in one invocation do not repeat
// network round-trips; a refresh replaces the cached entry.
type Lister struct {
	store  goes.ObjectStore
	logger goes.Logger

	mu    sync.Mutex
	cache map[string][]goes.FileRecord
}

// NewLister creates a Lister over the given store.
func NewLister(store goes.ObjectStore, logger goes.Logger) *Lister {
	return &Lister{
		store:  store,
		logger: logger,
		cache:  make(map[string][]goes.FileRecord),
	}
}

// ListDay returns every record for one archive day. Keys that do not follow
// the naming convention (directory markers, stray index files) are skipped
// with a debug log, not treated as errors. An empty day is an empty slice.
// Listing failure wraps ErrCatalogUnavailable; the store has already
// exhausted its retries by then.
func (l *Lister) ListDay(ctx context.Context, sat goes.Satellite, product string, day time.Time, refresh bool) ([]goes.FileRecord, error) {
	prefix := goes.DayPrefix(product, day)
	cacheKey := sat.Bucket() + "/" + prefix

	if !refresh {
		l.mu.Lock()
		cached, ok := l.cache[cacheKey]
		l.mu.Unlock()
		if ok {
			l.logger.Debug("listing served from cache", "prefix", cacheKey, "count", len(cached))
			return copyRecords(cached), nil
		}
	}

	objects, err := l.store.List(ctx, sat.Bucket(), prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", goes.ErrCatalogUnavailable, cacheKey, err)
	}

	records := make([]goes.FileRecord, 0, len(objects))
	for _, obj := range objects {
		rec, err := goes.DecodeKey(obj.Key)
		if err != nil {
			l.logger.Debug("skipping non-conforming key", "key", obj.Key)
			continue
		}
		rec.Size = obj.Size
		rec.LastModified = obj.LastModified
		records = append(records, rec)
	}

	l.mu.Lock()
	l.cache[cacheKey] = records
	l.mu.Unlock()

	l.logger.Debug("listed archive day", "prefix", cacheKey, "objects", len(objects), "records", len(records))
	return copyRecords(records), nil
}

// copyRecords hands callers their own slice; downstream filters rearrange
// in place and must not disturb the cache.
func copyRecords(records []goes.FileRecord) []goes.FileRecord {
	out := make([]goes.FileRecord, len(records))
	copy(out, records)
	return out
}

// Compile-time check that Lister implements goes.Lister.
var _ goes.Lister = (*Lister)(nil)
