// Package download materializes archive records onto local disk.
package download

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"goesfetch/internal/goes"
)

// Materializer fetches records to the local save directory, optionally
// across a bounded worker pool. Work partitions by record, and distinct
// records never share a destination file, so workers need no coordination
// beyond the shared progress counter.
type Materializer struct {
	store  goes.ObjectStore
	logger goes.Logger
}

// NewMaterializer creates a Materializer over the given store.
func NewMaterializer(store goes.ObjectStore, logger goes.Logger) *Materializer {
	return &Materializer{store: store, logger: logger}
}

// Materialize fetches every record, skipping files already on disk unless
// overwrite is set. Results line up with the input order regardless of which
// worker finished first. A record's failure is recorded in its result and
// never aborts the batch; the returned error is reserved for an unreachable
// store, detected before any fetch is attempted.
func (m *Materializer) Materialize(ctx context.Context, records []goes.FileRecord, opts goes.MaterializeOptions) ([]goes.DownloadResult, error) {
	if len(records) == 0 {
		return nil, nil
	}

	for _, bucket := range distinctBuckets(records) {
		if err := m.store.Ping(ctx, bucket); err != nil {
			return nil, fmt.Errorf("%w: %v", goes.ErrStoreUnreachable, err)
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}

	results := make([]goes.DownloadResult, len(records))
	var done atomic.Int64
	var progressMu sync.Mutex
	report := func(i int, res goes.DownloadResult) {
		results[i] = res
		n := done.Add(1)
		if opts.Progress != nil {
			progressMu.Lock()
			opts.Progress(int(n), len(records), res)
			progressMu.Unlock()
		}
	}

	if workers == 1 {
		for i, r := range records {
			report(i, m.one(ctx, r, opts))
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					report(i, m.one(ctx, records[i], opts))
				}
			}()
		}
		for i := range records {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	m.logger.Info("materialize finished", "count", len(records), "workers", workers)
	return results, nil
}

// one fetches a single record, or reports it already present.
func (m *Materializer) one(ctx context.Context, r goes.FileRecord, opts goes.MaterializeOptions) goes.DownloadResult {
	dst := r.LocalPath(opts.SaveDir)
	res := goes.DownloadResult{Record: r, LocalPath: dst}

	if !opts.Overwrite {
		if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
			res.Status = goes.StatusAlreadyPresent
			res.Bytes = info.Size()
			m.logger.Debug("file already present", "path", dst)
			return res
		}
	}

	n, err := m.store.Fetch(ctx, r.Satellite.Bucket(), r.Key, dst)
	if err != nil {
		res.Status = goes.StatusFailed
		res.Err = fmt.Errorf("fetching %s: %w", r.Key, err)
		m.logger.Warn("download failed", "key", r.Key, "error", err)
		return res
	}
	res.Status = goes.StatusFetched
	res.Bytes = n
	m.logger.Debug("file downloaded", "key", r.Key, "bytes", n)
	return res
}

func distinctBuckets(records []goes.FileRecord) []string {
	seen := make(map[string]bool, 1)
	var buckets []string
	for _, r := range records {
		b := r.Satellite.Bucket()
		if !seen[b] {
			seen[b] = true
			buckets = append(buckets, b)
		}
	}
	return buckets
}

// Compile-time check that Materializer implements goes.Materializer.
var _ goes.Materializer = (*Materializer)(nil)
