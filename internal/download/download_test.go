package download

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"goesfetch/internal/bucket"
	"goesfetch/internal/goes"
	"goesfetch/internal/testutil"
)

func newMaterializer(t *testing.T, records ...goes.FileRecord) (*Materializer, *bucket.MemoryStore) {
	t.Helper()
	store := bucket.NewMemoryStore()
	testutil.SeedStore(t, store, records...)
	return NewMaterializer(store, goes.NewNopLogger()), store
}

func cadence(count int) []goes.FileRecord {
	start := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)
	return testutil.Cadence(goes.GOES16, "ABI-L2-MCMIPC", goes.DomainCONUS, start, 10*time.Minute, count)
}

func TestMaterializer_Materialize(t *testing.T) {
	ctx := context.Background()

	t.Run("no records is a no-op", func(t *testing.T) {
		m, store := newMaterializer(t)

		results, err := m.Materialize(ctx, nil, goes.MaterializeOptions{SaveDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if len(results) != 0 {
			t.Errorf("Materialize() returned %d results, want 0", len(results))
		}
		if store.Fetches() != 0 {
			t.Errorf("store fetches = %d, want 0", store.Fetches())
		}
	})

	t.Run("mirrors the archive layout under the save dir", func(t *testing.T) {
		records := cadence(1)
		m, _ := newMaterializer(t, records...)
		saveDir := t.TempDir()

		results, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: saveDir})
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if results[0].Status != goes.StatusFetched {
			t.Fatalf("status = %q, want %q", results[0].Status, goes.StatusFetched)
		}
		if want := records[0].LocalPath(saveDir); results[0].LocalPath != want {
			t.Errorf("LocalPath = %q, want %q", results[0].LocalPath, want)
		}
		data, err := os.ReadFile(results[0].LocalPath)
		if err != nil {
			t.Fatalf("reading downloaded file: %v", err)
		}
		if got, want := string(data), "netcdf:"+records[0].Key; got != want {
			t.Errorf("file content = %q, want %q", got, want)
		}
		if results[0].Bytes != int64(len(data)) {
			t.Errorf("Bytes = %d, want %d", results[0].Bytes, len(data))
		}
	})

	t.Run("skips files already on disk", func(t *testing.T) {
		records := cadence(2)
		m, store := newMaterializer(t, records...)
		saveDir := t.TempDir()

		if _, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: saveDir}); err != nil {
			t.Fatalf("first Materialize() error = %v", err)
		}
		results, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: saveDir})
		if err != nil {
			t.Fatalf("second Materialize() error = %v", err)
		}
		for _, res := range results {
			if res.Status != goes.StatusAlreadyPresent {
				t.Errorf("status = %q, want %q", res.Status, goes.StatusAlreadyPresent)
			}
			if res.Bytes == 0 {
				t.Error("present file reported zero bytes")
			}
		}
		if got := store.Fetches(); got != 2 {
			t.Errorf("store fetches = %d, want 2", got)
		}
	})

	t.Run("overwrite fetches regardless", func(t *testing.T) {
		records := cadence(1)
		m, store := newMaterializer(t, records...)
		saveDir := t.TempDir()

		opts := goes.MaterializeOptions{SaveDir: saveDir, Overwrite: true}
		if _, err := m.Materialize(ctx, records, opts); err != nil {
			t.Fatalf("first Materialize() error = %v", err)
		}
		if _, err := m.Materialize(ctx, records, opts); err != nil {
			t.Fatalf("second Materialize() error = %v", err)
		}
		if got := store.Fetches(); got != 2 {
			t.Errorf("store fetches = %d, want 2", got)
		}
	})

	t.Run("results line up with input order across workers", func(t *testing.T) {
		records := cadence(8)
		m, _ := newMaterializer(t, records...)

		results, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: t.TempDir(), Workers: 4})
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if len(results) != len(records) {
			t.Fatalf("Materialize() returned %d results, want %d", len(results), len(records))
		}
		for i, res := range results {
			if res.Record.Key != records[i].Key {
				t.Errorf("results[%d] = %q, want %q", i, res.Record.Key, records[i].Key)
			}
		}
	})

	t.Run("unreachable store fails the batch up front", func(t *testing.T) {
		records := cadence(2)
		m, store := newMaterializer(t, records...)
		store.FailPing = errors.New("no route to host")

		_, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: t.TempDir()})
		if !errors.Is(err, goes.ErrStoreUnreachable) {
			t.Fatalf("Materialize() error = %v, want ErrStoreUnreachable", err)
		}
		if store.Fetches() != 0 {
			t.Errorf("store fetches = %d, want 0", store.Fetches())
		}
	})

	t.Run("a failing fetch marks only its record", func(t *testing.T) {
		records := cadence(2)
		m, store := newMaterializer(t, records...)
		store.FailFetch = errors.New("throttled")

		results, err := m.Materialize(ctx, records, goes.MaterializeOptions{SaveDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		for _, res := range results {
			if res.Status != goes.StatusFailed {
				t.Errorf("status = %q, want %q", res.Status, goes.StatusFailed)
			}
			if res.Err == nil {
				t.Error("failed result carries no error")
			}
		}
	})

	t.Run("progress is reported once per record", func(t *testing.T) {
		records := cadence(5)
		m, _ := newMaterializer(t, records...)

		// Progress calls are serialized but may arrive out of done order, so
		// track the count and the high-water mark rather than the last value.
		var calls, maxDone int
		opts := goes.MaterializeOptions{
			SaveDir: t.TempDir(),
			Workers: 3,
			Progress: func(done, total int, res goes.DownloadResult) {
				calls++
				if done > maxDone {
					maxDone = done
				}
				if total != 5 {
					t.Errorf("progress total = %d, want 5", total)
				}
			},
		}
		if _, err := m.Materialize(ctx, records, opts); err != nil {
			t.Fatalf("Materialize() error = %v", err)
		}
		if calls != 5 {
			t.Errorf("progress called %d times, want 5", calls)
		}
		if maxDone != 5 {
			t.Errorf("progress high-water mark = %d, want 5", maxDone)
		}
	})
}
