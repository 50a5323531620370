package testutil

import (
	"testing"

	"goesfetch/internal/goes"
	"goesfetch/internal/inventory"
)

// NewTestInventory creates an in-memory SQLite inventory with the schema
// applied. It is automatically closed when the test completes.
func NewTestInventory(t *testing.T) goes.Inventory {
	t.Helper()

	inv, err := inventory.NewSQLiteInventory(":memory:")
	if err != nil {
		t.Fatalf("failed to open inventory: %v", err)
	}

	t.Cleanup(func() {
		inv.Close()
	})

	return inv
}
