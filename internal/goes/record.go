package goes

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileRecord describes one object in the archive. Every field except Size
// and LastModified is recoverable from the key alone; records are built
// per listing call and never mutated afterwards.
type FileRecord struct {
	Key          string
	Satellite    Satellite
	Product      string
	Domain       Domain
	Mode         int // instrument scan mode flag, e.g. 6; 0 when the name carries none
	Band         int // spectral band for single-band products; 0 otherwise
	Start        time.Time
	End          time.Time
	Created      time.Time
	Size         int64
	LastModified time.Time
}

// FileName returns the bare object file name.
func (r FileRecord) FileName() string { return path.Base(r.Key) }

// LocalPath returns where this record lands under saveDir: bucket name then
// object key, so the local tree mirrors the remote archive.
func (r FileRecord) LocalPath(saveDir string) string {
	return filepath.Join(saveDir, r.Satellite.Bucket(), filepath.FromSlash(r.Key))
}

// SortRecords orders records by scan start ascending, breaking ties by key
// so ordering is total and stable across runs.
func SortRecords(records []FileRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Start.Equal(records[j].Start) {
			return records[i].Start.Before(records[j].Start)
		}
		return records[i].Key < records[j].Key
	})
}

// DedupeRecords removes records sharing a key, keeping the first. The input
// must already be sorted; merging per-day listings around a midnight
// boundary is the only expected source of duplicates.
func DedupeRecords(records []FileRecord) []FileRecord {
	out := records[:0]
	var last string
	for i, r := range records {
		if i > 0 && r.Key == last {
			continue
		}
		out = append(out, r)
		last = r.Key
	}
	return out
}

// FilterSector keeps only the records in the mesoscale sector the domain
// names. Domains other than M1 and M2 pass everything through.
func FilterSector(records []FileRecord, domain Domain) []FileRecord {
	fragment := domain.SectorFilter()
	if fragment == "" {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if strings.Contains(r.Key, fragment) {
			out = append(out, r)
		}
	}
	return out
}

// FilterBands keeps only the records carrying one of the wanted spectral
// bands. An empty band list passes everything through.
func FilterBands(records []FileRecord, bands []int) []FileRecord {
	if len(bands) == 0 {
		return records
	}
	want := make(map[int]bool, len(bands))
	for _, b := range bands {
		want[b] = true
	}
	out := records[:0]
	for _, r := range records {
		if want[r.Band] {
			out = append(out, r)
		}
	}
	return out
}
