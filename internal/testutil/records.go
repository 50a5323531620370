package testutil

import (
	"testing"
	"time"

	"goesfetch/internal/bucket"
	"goesfetch/internal/catalog"
	"goesfetch/internal/goes"
)

// ScanRecord builds a conforming file record for one scan. End and Created
// trail the start by typical CONUS offsets; the scan mode is 6.
func ScanRecord(satellite goes.Satellite, product string, domain goes.Domain, band int, start time.Time) goes.FileRecord {
	r := goes.FileRecord{
		Satellite: satellite,
		Product:   product,
		Domain:    domain,
		Mode:      6,
		Band:      band,
		Start:     start.UTC(),
		End:       start.UTC().Add(4*time.Minute + 54*time.Second),
		Created:   start.UTC().Add(5*time.Minute + 10*time.Second),
	}
	r.Key = goes.EncodeKey(r)
	return r
}

// Cadence builds count records starting at start, one every step.
func Cadence(satellite goes.Satellite, product string, domain goes.Domain, start time.Time, step time.Duration, count int) []goes.FileRecord {
	records := make([]goes.FileRecord, count)
	for i := range records {
		records[i] = ScanRecord(satellite, product, domain, 0, start.Add(time.Duration(i)*step))
	}
	return records
}

// SeedStore puts one synthetic object per record into store. Object bodies
// are short and distinct so byte counts can be asserted on.
func SeedStore(t *testing.T, store *bucket.MemoryStore, records ...goes.FileRecord) {
	t.Helper()
	for _, r := range records {
		store.Put(r.Satellite.Bucket(), r.Key, []byte("netcdf:"+r.Key), r.Created)
	}
}

// NewTestLister seeds a memory store with the records and returns a lister
// over it, plus the store for fault injection and counters.
func NewTestLister(t *testing.T, records ...goes.FileRecord) (*catalog.Lister, *bucket.MemoryStore) {
	t.Helper()
	store := bucket.NewMemoryStore()
	SeedStore(t, store, records...)
	return catalog.NewLister(store, goes.NewNopLogger()), store
}
