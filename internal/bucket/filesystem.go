package bucket

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"goesfetch/internal/goes"
)

// FilesystemStore serves the archive from a local mirror directory laid out
// as <root>/<bucket>/<key>. It backs offline use and most tests.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates a store over an existing mirror directory.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("mirror root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mirror root is not a directory: %s", root)
	}
	return &FilesystemStore{root: root}, nil
}

// List walks the mirror under prefix. A missing prefix directory is an
// empty listing, matching remote semantics for prefixes with no objects.
func (s *FilesystemStore) List(ctx context.Context, bucket, prefix string) ([]goes.ObjectInfo, error) {
	base := filepath.Join(s.root, bucket)
	if _, err := os.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", bucket, err)
	}

	var objects []goes.ObjectInfo
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, goes.ObjectInfo{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
	}
	return objects, nil
}

// Fetch copies one mirrored object to dst.
func (s *FilesystemStore) Fetch(ctx context.Context, bucket, key, dst string) (int64, error) {
	src, err := os.Open(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return 0, fmt.Errorf("opening %s/%s: %w", bucket, key, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dst, err)
	}
	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("copying %s/%s: %w", bucket, key, err)
	}
	return n, nil
}

// Read returns one mirrored object's bytes.
func (s *FilesystemStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := os.ReadFile(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
		}
		return nil, fmt.Errorf("reading %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Ping checks the bucket directory exists.
func (s *FilesystemStore) Ping(ctx context.Context, bucket string) error {
	info, err := os.Stat(filepath.Join(s.root, bucket))
	if err != nil {
		return fmt.Errorf("bucket %s not reachable: %w", bucket, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("bucket %s is not a directory", bucket)
	}
	return nil
}

func (s *FilesystemStore) objectPath(bucket, key string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(key))
}

// Compile-time check that FilesystemStore implements goes.ObjectStore.
var _ goes.ObjectStore = (*FilesystemStore)(nil)
