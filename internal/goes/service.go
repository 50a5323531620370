package goes

import (
	"context"
	"fmt"
	"os"
	"time"

	"goesfetch/internal/dataset"
)

// Service is the orchestration layer that coordinates listing, selection,
// download, and dataset loading for the high-level query operations the CLI
// exposes.
type Service struct {
	lister  Lister
	fetcher Materializer
	store   ObjectStore
	loader  DatasetLoader
	inv     Inventory
	logger  Logger
	clock   Clock
	idgen   IDGenerator

	session  string
	progress func(done, total int, res DownloadResult)
}

// NewService creates a Service with the provided dependencies. A fresh
// session ID is drawn per Service; it tags inventory rows so one invocation's
// downloads can be told apart later.
func NewService(lister Lister, fetcher Materializer, store ObjectStore, loader DatasetLoader, inv Inventory, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		lister:  lister,
		fetcher: fetcher,
		store:   store,
		loader:  loader,
		inv:     inv,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		session: idgen.New(),
	}
}

// Session returns this service's session ID.
func (s *Service) Session() string { return s.session }

// SetProgress installs a per-file progress callback forwarded to the
// downloader. Pass nil to disable.
func (s *Service) SetProgress(f func(done, total int, res DownloadResult)) {
	s.progress = f
}

// Latest returns the most recent available file. Today's listing is tried
// first; an empty today falls back to yesterday, so a query just after
// midnight still finds the last scans of the previous day. Both days empty
// fails with ErrNoRecentFile.
func (s *Service) Latest(ctx context.Context, opts Options) (*Result, error) {
	product, domain, err := s.normalize(&opts)
	if err != nil {
		return nil, err
	}

	today := s.clock.Now().UTC()
	records, err := s.listSpan(ctx, opts, product, domain, today, today)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		yesterday := today.AddDate(0, 0, -1)
		records, err = s.listSpan(ctx, opts, product, domain, yesterday, yesterday)
		if err != nil {
			return nil, err
		}
	}

	latest, err := Latest(records)
	if err != nil {
		return nil, fmt.Errorf("%w: nothing for %s %s today or yesterday", ErrNoRecentFile, opts.Satellite, product)
	}
	s.logger.Debug("latest scan selected", "key", latest.Key, "start", latest.Start)
	return s.finish(ctx, []FileRecord{latest}, opts)
}

// NearestTime returns the single file whose scan start is closest to target,
// within the tolerance window. The listing spans every day touched by
// [target-within, target+within].
func (s *Service) NearestTime(ctx context.Context, target time.Time, opts Options) (*Result, error) {
	if target.IsZero() {
		return nil, fmt.Errorf("target time is required")
	}
	product, domain, err := s.normalize(&opts)
	if err != nil {
		return nil, err
	}
	within := opts.Within
	if within <= 0 {
		within = DefaultWithin
	}

	records, err := s.listSpan(ctx, opts, product, domain, target.Add(-within), target.Add(within))
	if err != nil {
		return nil, err
	}
	nearest, err := Nearest(records, target, within)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("nearest scan selected", "key", nearest.Key, "start", nearest.Start, "target", target)
	return s.finish(ctx, []FileRecord{nearest}, opts)
}

// TimeRange returns every file whose scan start falls within [start, end],
// both ends inclusive, in ascending scan order. An empty range is an empty
// Result, not an error.
func (s *Service) TimeRange(ctx context.Context, start, end time.Time, opts Options) (*Result, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("start and end times are required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	product, domain, err := s.normalize(&opts)
	if err != nil {
		return nil, err
	}

	records, err := s.listSpan(ctx, opts, product, domain, start, end)
	if err != nil {
		return nil, err
	}
	selected := Range(records, start, end)
	s.logger.Debug("range selected", "count", len(selected), "start", start, "end", end)
	return s.finish(ctx, selected, opts)
}

// Recent is TimeRange over the trailing window [now-d, now].
func (s *Service) Recent(ctx context.Context, d time.Duration, opts Options) (*Result, error) {
	if d <= 0 {
		return nil, fmt.Errorf("recent window must be positive, got %s", d)
	}
	now := s.clock.Now().UTC()
	return s.TimeRange(ctx, now.Add(-d), now, opts)
}

// normalize validates the satellite and folds product shorthands and the
// domain into their canonical forms, updating opts in place.
func (s *Service) normalize(opts *Options) (product string, domain Domain, err error) {
	if opts.Satellite == "" {
		return "", "", fmt.Errorf("satellite is required")
	}
	if opts.Satellite.Number() == 0 {
		return "", "", fmt.Errorf("unknown satellite %q", opts.Satellite)
	}
	product, domain, err = ResolveProduct(opts.Product, opts.Domain)
	if err != nil {
		return "", "", err
	}
	if !KnownProduct(product) {
		// The table is a static snapshot of a growing archive, so unknown
		// codes are worth a warning but not a rejection.
		s.logger.Warn("product not in the known product table", "product", product)
	}
	opts.Product, opts.Domain = product, domain
	return product, domain, nil
}

// listSpan merges the day listings covering [start, end] and applies the
// sector and band filters. The remote prefix is day-scoped, so a span
// crossing midnight costs one listing per calendar day.
func (s *Service) listSpan(ctx context.Context, opts Options, product string, domain Domain, start, end time.Time) ([]FileRecord, error) {
	var records []FileRecord
	for _, day := range daysSpanned(start, end) {
		dayRecords, err := s.lister.ListDay(ctx, opts.Satellite, product, day, opts.Refresh)
		if err != nil {
			return nil, err
		}
		records = append(records, dayRecords...)
	}
	records = FilterSector(records, domain)
	records = FilterBands(records, opts.Bands)
	SortRecords(records)
	return DedupeRecords(records), nil
}

// finish materializes and opens the selected records per the query options.
func (s *Service) finish(ctx context.Context, records []FileRecord, opts Options) (*Result, error) {
	res := &Result{Records: records}
	if len(records) == 0 {
		return res, nil
	}

	if opts.Download {
		if opts.SaveDir == "" {
			return nil, fmt.Errorf("save directory is required for downloads")
		}
		downloads, err := s.fetcher.Materialize(ctx, records, MaterializeOptions{
			SaveDir:   opts.SaveDir,
			Overwrite: opts.Overwrite,
			Workers:   opts.Workers,
			Progress:  s.progress,
		})
		if err != nil {
			return nil, err
		}
		res.Downloads = downloads
		for _, dl := range downloads {
			if err := s.inv.Record(ctx, s.session, dl); err != nil {
				s.logger.Warn("inventory record failed", "key", dl.Record.Key, "error", err)
			}
		}
	}

	if opts.ReturnAs == ReturnDataset {
		datasets, err := s.open(ctx, records, opts)
		if err != nil {
			return nil, err
		}
		res.Datasets = datasets
	}
	return res, nil
}

// open loads each record as a dataset, preferring a local copy and falling
// back to reading the object straight into memory.
func (s *Service) open(ctx context.Context, records []FileRecord, opts Options) ([]*dataset.Dataset, error) {
	datasets := make([]*dataset.Dataset, 0, len(records))
	for _, r := range records {
		local := r.LocalPath(opts.SaveDir)
		if opts.SaveDir != "" && fileExists(local) {
			s.logger.Debug("reading local copy", "path", local)
			ds, err := s.loader.Open(local)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", local, err)
			}
			s.annotate(ds, r)
			datasets = append(datasets, ds)
			continue
		}

		s.logger.Debug("reading object into memory", "key", r.Key)
		data, err := s.store.Read(ctx, r.Satellite.Bucket(), r.Key)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", r.Key, err)
		}
		ds, err := s.loader.OpenBytes(r.FileName(), data)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", r.Key, err)
		}
		s.annotate(ds, r)
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

func (s *Service) annotate(ds *dataset.Dataset, r FileRecord) {
	ds.SetMeta("satellite", r.Satellite.Bucket())
	ds.SetMeta("product", r.Product)
	if r.Domain != "" {
		ds.SetMeta("domain", string(r.Domain))
	}
	ds.SetMeta("key", r.Key)
}

// daysSpanned returns the UTC midnights of every calendar day touched by
// [start, end].
func daysSpanned(start, end time.Time) []time.Time {
	start, end = start.UTC(), end.UTC()
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	var days []time.Time
	for !day.After(last) {
		days = append(days, day)
		day = day.AddDate(0, 0, 1)
	}
	return days
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
