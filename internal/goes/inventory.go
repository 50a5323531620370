package goes

import (
	"context"
	"time"
)

// InventoryEntry is one remembered materialization.
type InventoryEntry struct {
	ID        int64
	Session   string
	Key       string
	Satellite string
	Product   string
	LocalPath string
	Bytes     int64
	ScanStart time.Time
	Status    string
	CreatedAt time.Time
}

// Inventory remembers what has been downloaded where, so past fetches can
// be inspected without touching the store. Implementations must tolerate
// repeated entries for the same key (re-downloads are normal).
type Inventory interface {
	Record(ctx context.Context, session string, res DownloadResult) error
	List(ctx context.Context, limit int) ([]InventoryEntry, error)
	Close() error
}

// NopInventory discards everything. Used when the inventory is configured
// off and in tests.
type NopInventory struct{}

func (NopInventory) Record(context.Context, string, DownloadResult) error { return nil }
func (NopInventory) List(context.Context, int) ([]InventoryEntry, error) { return nil, nil }
func (NopInventory) Close() error                                        { return nil }
