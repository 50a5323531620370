package goes

import (
	"context"
	"time"
)

// ObjectInfo is one entry of a raw store listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is read-only access to a bucketed object store. Implementations
// handle pagination and bounded retries internally; errors they return are
// already terminal.
type ObjectStore interface {
	// List enumerates every object under prefix. A valid prefix with no
	// objects yields an empty slice and no error.
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)

	// Fetch writes the object's bytes to the local file at dst, creating
	// parent directories as needed.
	Fetch(ctx context.Context, bucket, key, dst string) (int64, error)

	// Read returns the object's bytes in memory.
	Read(ctx context.Context, bucket, key string) ([]byte, error)

	// Ping probes whether the store and bucket are reachable at all.
	Ping(ctx context.Context, bucket string) error
}

// Lister produces FileRecords for one archive day. Implementations may cache
// listings until refresh is requested.
type Lister interface {
	ListDay(ctx context.Context, sat Satellite, product string, day time.Time, refresh bool) ([]FileRecord, error)
}

// MaterializeOptions control one Materialize call.
type MaterializeOptions struct {
	SaveDir   string
	Overwrite bool
	// Workers bounds the download pool; values below 1 mean sequential.
	Workers int
	// Progress, when set, is called once per finished record. done counts
	// finished records including this one; calls may arrive from concurrent
	// workers but never two at once.
	Progress func(done, total int, res DownloadResult)
}

// Materializer fetches records to local disk. Per-record failures are
// reported in the corresponding DownloadResult, never as the returned error;
// the error is reserved for store-level failures that abort the batch before
// it starts.
type Materializer interface {
	Materialize(ctx context.Context, records []FileRecord, opts MaterializeOptions) ([]DownloadResult, error)
}

// DownloadStatus classifies the outcome of materializing one record.
type DownloadStatus string

const (
	StatusFetched        DownloadStatus = "fetched"
	StatusAlreadyPresent DownloadStatus = "already_present"
	StatusFailed         DownloadStatus = "failed"
)

// DownloadResult is the outcome of materializing one FileRecord.
type DownloadResult struct {
	Record    FileRecord
	LocalPath string
	Status    DownloadStatus
	Bytes     int64
	Err       error // set only when Status is StatusFailed
}
