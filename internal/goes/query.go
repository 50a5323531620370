package goes

import (
	"fmt"
	"time"

	"goesfetch/internal/dataset"
)

// DefaultWithin is the nearest-time tolerance used when a query does not
// set one.
const DefaultWithin = time.Hour

// ReturnMode selects what a query hands back alongside the file records.
type ReturnMode string

const (
	ReturnFilelist ReturnMode = "filelist"
	ReturnDataset  ReturnMode = "dataset"
)

// ParseReturnMode resolves a return_as value. "xarray" is accepted as a
// compatibility alias for "dataset".
func ParseReturnMode(s string) (ReturnMode, error) {
	switch s {
	case "", string(ReturnFilelist):
		return ReturnFilelist, nil
	case string(ReturnDataset), "xarray":
		return ReturnDataset, nil
	}
	return "", fmt.Errorf("unknown return mode %q: want filelist or dataset", s)
}

// Options carries the settings shared by every query mode. The config layer
// resolves defaults and mode-section values before a call reaches the
// service, so fields here are already concrete; the caller-facing merge
// order is call override, then mode section, then defaults.
type Options struct {
	Satellite Satellite
	Product   string
	Domain    Domain
	// Bands narrows band-separated products (e.g. ABI-L1b-Rad) to specific
	// spectral channels. Ignored for single-file products.
	Bands []int

	Download  bool
	ReturnAs  ReturnMode
	SaveDir   string
	Overwrite bool
	Workers   int
	// Refresh bypasses the day-listing cache.
	Refresh bool
	// Within is the nearest-time tolerance; zero means DefaultWithin.
	Within time.Duration
}

// Result is what a query returns. Records is always populated; Downloads
// when downloading was requested; Datasets when ReturnAs is ReturnDataset.
// All three are ordered by scan start, matching each other index for index.
type Result struct {
	Records   []FileRecord
	Downloads []DownloadResult
	Datasets  []*dataset.Dataset
}

// DatasetLoader opens materialized or in-memory files as datasets.
type DatasetLoader interface {
	Open(path string) (*dataset.Dataset, error)
	OpenBytes(name string, data []byte) (*dataset.Dataset, error)
}
