package goes

import (
	"fmt"
	"time"
)

// Nearest returns the record whose scan start has minimum absolute distance
// to target, provided that distance does not exceed within. Ties prefer the
// earlier scan, then the lexically smaller key. A within of zero demands an
// exact match. Fails with ErrNoFileInWindow when no candidate qualifies.
func Nearest(records []FileRecord, target time.Time, within time.Duration) (FileRecord, error) {
	var best FileRecord
	bestDiff := time.Duration(-1)
	for _, r := range records {
		diff := r.Start.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		switch {
		case bestDiff < 0 || diff < bestDiff:
			best, bestDiff = r, diff
		case diff == bestDiff && (r.Start.Before(best.Start) ||
			(r.Start.Equal(best.Start) && r.Key < best.Key)):
			best = r
		}
	}
	if bestDiff < 0 || bestDiff > within {
		return FileRecord{}, fmt.Errorf("%w: no scan within %s of %s",
			ErrNoFileInWindow, within, target.UTC().Format(time.RFC3339))
	}
	return best, nil
}

// Latest returns the record with the maximum scan start, ties broken by the
// lexically smaller key. Fails with ErrNoRecentFile when records is empty.
func Latest(records []FileRecord) (FileRecord, error) {
	if len(records) == 0 {
		return FileRecord{}, ErrNoRecentFile
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Start.After(best.Start) || (r.Start.Equal(best.Start) && r.Key < best.Key) {
			best = r
		}
	}
	return best, nil
}

// Range returns the records whose scan start falls within [start, end],
// both ends inclusive, sorted ascending and deduplicated by key. An empty
// result is not an error. The input is left untouched.
func Range(records []FileRecord, start, end time.Time) []FileRecord {
	out := make([]FileRecord, 0, len(records))
	for _, r := range records {
		if r.Start.Before(start) || r.Start.After(end) {
			continue
		}
		out = append(out, r)
	}
	SortRecords(out)
	return DedupeRecords(out)
}
