package inventory

import (
	"fmt"
	"os"
	"path/filepath"

	"goesfetch/internal/config"
	"goesfetch/internal/goes"
)

// NewInventoryFromConfig creates an Inventory implementation based on the inventory config type.
func NewInventoryFromConfig(cfg config.InventoryConfig) (goes.Inventory, error) {
	switch cfg.Type {
	case "", "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite inventory")
		}
		dir := config.ExpandPath(cfg.DataDir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating inventory directory: %w", err)
		}
		return NewSQLiteInventory(filepath.Join(dir, "inventory.db"))
	case "off":
		return goes.NopInventory{}, nil
	default:
		return nil, fmt.Errorf("unknown inventory type: %s", cfg.Type)
	}
}
