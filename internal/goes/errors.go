package goes

import (
	"errors"

	"goesfetch/internal/dataset"
)

// Sentinel errors for the query/download pipeline. Callers match them with
// errors.Is; lower layers wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrMalformedKey indicates an object key that does not follow the GOES
	// naming convention. Listing skips such keys; an explicit decode reports it.
	ErrMalformedKey = errors.New("malformed object key")

	// ErrCatalogUnavailable indicates a listing call failed after the store's
	// retries were exhausted. No partial result is useful without a listing,
	// so the whole query aborts.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrStoreUnreachable indicates the object store itself could not be
	// reached before any downloads were attempted.
	ErrStoreUnreachable = errors.New("object store unreachable")

	// ErrNoFileInWindow indicates a nearest-time query found no scan within
	// the tolerance window.
	ErrNoFileInWindow = errors.New("no file within time window")

	// ErrNoRecentFile indicates a latest query found nothing for today or
	// yesterday.
	ErrNoRecentFile = errors.New("no recent file")

	// ErrUnreadableFile indicates a downloaded file could not be parsed.
	// Re-fetching with overwrite enabled usually repairs a truncated
	// download. Aliased from the dataset package, which owns the parse.
	ErrUnreadableFile = dataset.ErrUnreadable
)
