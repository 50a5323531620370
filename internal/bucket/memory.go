package bucket

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"goesfetch/internal/goes"
)

// MemoryStore is an in-memory object store for tests. It counts operations
// so tests can assert how many listing and fetch calls a code path made.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]map[string][]byte // bucket -> key -> bytes
	mtimes  map[string]time.Time         // bucket/key -> last modified

	lists   int
	fetches int
	reads   int

	// FailList and FailFetch, when set, make the corresponding operation
	// fail. FailPing makes Ping fail.
	FailList  error
	FailFetch error
	FailPing  error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]map[string][]byte),
		mtimes:  make(map[string]time.Time),
	}
}

// Put seeds one object.
func (m *MemoryStore) Put(bucket, key string, data []byte, mtime time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects[bucket] == nil {
		m.objects[bucket] = make(map[string][]byte)
	}
	m.objects[bucket][key] = data
	m.mtimes[bucket+"/"+key] = mtime
}

// List returns every seeded object under prefix, sorted by key.
func (m *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]goes.ObjectInfo, error) {
	m.mu.Lock()
	m.lists++
	failErr := m.FailList
	m.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var objects []goes.ObjectInfo
	for key, data := range m.objects[bucket] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, goes.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: m.mtimes[bucket+"/"+key],
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Fetch writes a seeded object to dst.
func (m *MemoryStore) Fetch(ctx context.Context, bucket, key, dst string) (int64, error) {
	m.mu.Lock()
	m.fetches++
	failErr := m.FailFetch
	data, ok := m.objects[bucket][key]
	m.mu.Unlock()
	if failErr != nil {
		return 0, failErr
	}
	if !ok {
		return 0, fmt.Errorf("object not found: %s/%s", bucket, key)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", dst, err)
	}
	return int64(len(data)), nil
}

// Read returns a seeded object's bytes.
func (m *MemoryStore) Read(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	data, ok := m.objects[bucket][key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Ping succeeds unless FailPing is set.
func (m *MemoryStore) Ping(ctx context.Context, bucket string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FailPing
}

// Lists returns how many List calls were made.
func (m *MemoryStore) Lists() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lists
}

// Fetches returns how many Fetch calls were made.
func (m *MemoryStore) Fetches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fetches
}

// Reads returns how many Read calls were made.
func (m *MemoryStore) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Compile-time check that MemoryStore implements goes.ObjectStore.
var _ goes.ObjectStore = (*MemoryStore)(nil)
