package bucket

import (
	"context"
	"fmt"

	"goesfetch/internal/config"
	"goesfetch/internal/goes"
)

// NewStoreFromConfig creates an ObjectStore implementation based on the
// store config type. The default is the public S3 archive.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig, logger goes.Logger) (goes.ObjectStore, error) {
	switch cfg.Type {
	case "", "s3":
		return NewS3Store(ctx, S3Options{
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			UsePathStyle:    cfg.UsePathStyle,
			MaxAttempts:     cfg.MaxAttempts,
		}, logger)
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem store requires root to be set")
		}
		return NewFilesystemStore(cfg.Root)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
