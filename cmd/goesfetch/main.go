package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"goesfetch/internal/app"
	"goesfetch/internal/config"
	"goesfetch/internal/dataset"
	"goesfetch/internal/goes"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "goesfetch",
	Short: "Find and fetch GOES satellite data from the NOAA archive",
}

// queryEnv bundles what a query command needs: the wired app and the
// options merged from config sections and flags.
type queryEnv struct {
	app  *app.App
	opts goes.Options
}

// newQueryEnv loads the config, layers the mode section and flag overrides
// over the defaults, and wires the app.
func newQueryEnv(cmd *cobra.Command, mode config.Mode) (*queryEnv, error) {
	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	s := cfg.ForMode(mode)
	applyFlagOverrides(cmd, &s)

	opts, verbose, err := buildOptions(s)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags(); f.Lookup("band") != nil && f.Changed("band") {
		opts.Bands, _ = f.GetIntSlice("band")
	}

	a, err := app.NewApp(cmd.Context(), cfg, verbose)
	if err != nil {
		return nil, err
	}
	return &queryEnv{app: a, opts: opts}, nil
}

// applyFlagOverrides copies changed flags onto the merged settings, so the
// precedence is flags over mode section over defaults.
func applyFlagOverrides(cmd *cobra.Command, s *config.Settings) {
	f := cmd.Flags()
	if f.Changed("satellite") {
		v, _ := f.GetString("satellite")
		s.Satellite = &v
	}
	if f.Changed("product") {
		v, _ := f.GetString("product")
		s.Product = &v
	}
	if f.Changed("domain") {
		v, _ := f.GetString("domain")
		s.Domain = &v
	}
	if f.Changed("save-dir") {
		v, _ := f.GetString("save-dir")
		s.SaveDir = &v
	}
	if f.Changed("download") {
		v, _ := f.GetBool("download")
		s.Download = &v
	}
	if f.Changed("overwrite") {
		v, _ := f.GetBool("overwrite")
		s.Overwrite = &v
	}
	if f.Changed("workers") {
		v, _ := f.GetInt("workers")
		s.MaxCPUs = &v
	}
	if f.Changed("refresh") {
		v, _ := f.GetBool("refresh")
		s.S3Refresh = &v
	}
	if f.Changed("return") {
		v, _ := f.GetString("return")
		s.ReturnAs = &v
	}
	if f.Changed("verbose") {
		v, _ := f.GetBool("verbose")
		s.Verbose = &v
	}
	if f.Lookup("within") != nil && f.Changed("within") {
		d, _ := f.GetDuration("within")
		s.Within = config.Ptr(config.Duration(d))
	}
}

// buildOptions turns merged settings into concrete query options.
func buildOptions(s config.Settings) (goes.Options, bool, error) {
	sat, err := goes.ParseSatellite(config.Or(s.Satellite, ""))
	if err != nil {
		return goes.Options{}, false, err
	}
	dom, err := goes.ParseDomain(config.Or(s.Domain, ""))
	if err != nil {
		return goes.Options{}, false, err
	}
	ret, err := goes.ParseReturnMode(config.Or(s.ReturnAs, ""))
	if err != nil {
		return goes.Options{}, false, err
	}
	opts := goes.Options{
		Satellite: sat,
		Product:   config.Or(s.Product, ""),
		Domain:    dom,
		Download:  config.Or(s.Download, true),
		ReturnAs:  ret,
		SaveDir:   config.ResolveSaveDir(config.Or(s.SaveDir, "~/data")),
		Overwrite: config.Or(s.Overwrite, false),
		Workers:   config.Or(s.MaxCPUs, 1),
		Refresh:   config.Or(s.S3Refresh, true),
		Within:    time.Duration(config.Or(s.Within, 0)),
	}
	return opts, config.Or(s.Verbose, false), nil
}

// addQueryFlags registers the flags every query command shares.
func addQueryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("satellite", "s", "", "satellite: 16/17/18, GOES-16, east, west")
	f.StringP("product", "p", "", "product code or alias (ABI, GLM, ABI-L2-MCMIPC, ...)")
	f.StringP("domain", "d", "", "ABI domain: C, F, M, M1, M2")
	f.String("save-dir", "", "directory downloads are materialized under")
	f.Bool("download", true, "download matched files")
	f.Bool("overwrite", false, "re-fetch files that already exist locally")
	f.Int("workers", 0, "parallel downloads")
	f.Bool("refresh", true, "bypass the listing cache")
	f.String("return", "", "filelist or dataset")
	f.IntSlice("band", nil, "restrict band-separated products to these channels")
	f.Bool("verbose", false, "debug logging")
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts a handful of common stamp layouts, read as UTC when no
// zone is given.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q: try a layout like 2022-06-01T18:00", s)
}

// noticeOr downgrades empty-result errors to a printed notice so the
// command still exits 0; anything else stays an error.
func noticeOr(err error) error {
	if errors.Is(err, goes.ErrNoRecentFile) || errors.Is(err, goes.ErrNoFileInWindow) {
		fmt.Println(err)
		return nil
	}
	return err
}

func printResult(res *goes.Result) {
	if len(res.Records) == 0 {
		fmt.Println("No files matched.")
		return
	}

	byKey := make(map[string]goes.DownloadResult, len(res.Downloads))
	for _, d := range res.Downloads {
		byKey[d.Record.Key] = d
	}

	for _, r := range res.Records {
		line := fmt.Sprintf("%s  %s", r.Start.Format("2006-01-02 15:04:05"), r.FileName())
		if d, ok := byKey[r.Key]; ok {
			if d.Err != nil {
				line += fmt.Sprintf("  failed: %v", d.Err)
			} else {
				line += "  " + string(d.Status)
			}
		}
		fmt.Println(line)
	}

	if len(res.Downloads) > 0 {
		var fetched, present, failed int
		for _, d := range res.Downloads {
			switch d.Status {
			case goes.StatusFetched:
				fetched++
			case goes.StatusAlreadyPresent:
				present++
			case goes.StatusFailed:
				failed++
			}
		}
		fmt.Printf("%d file(s): %d fetched, %d already present, %d failed\n",
			len(res.Downloads), fetched, present, failed)
	}

	for _, ds := range res.Datasets {
		if start, end, err := ds.TimeCoverage(); err == nil {
			fmt.Printf("dataset %s: %d variables, scan %s to %s\n",
				ds.Name(), len(ds.Variables()),
				start.Format("15:04:05"), end.Format("15:04:05"))
		} else {
			fmt.Printf("dataset %s: %d variables\n", ds.Name(), len(ds.Variables()))
		}
	}
}

// latest command
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Fetch the most recent scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newQueryEnv(cmd, config.ModeLatest)
		if err != nil {
			return err
		}
		defer env.app.Close()

		res, err := env.app.Service().Latest(cmd.Context(), env.opts)
		if err != nil {
			return noticeOr(err)
		}
		printResult(res)
		return nil
	},
}

// nearest command
var nearestCmd = &cobra.Command{
	Use:   "nearest TIME",
	Short: "Fetch the scan nearest a point in time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTime(args[0])
		if err != nil {
			return err
		}

		env, err := newQueryEnv(cmd, config.ModeNearestTime)
		if err != nil {
			return err
		}
		defer env.app.Close()

		res, err := env.app.Service().NearestTime(cmd.Context(), target, env.opts)
		if err != nil {
			return noticeOr(err)
		}
		printResult(res)
		return nil
	},
}

// timerange command
var timerangeCmd = &cobra.Command{
	Use:   "timerange",
	Short: "Fetch every scan in a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newQueryEnv(cmd, config.ModeTimeRange)
		if err != nil {
			return err
		}
		defer env.app.Close()

		f := cmd.Flags()
		var res *goes.Result
		if f.Changed("recent") {
			d, _ := f.GetDuration("recent")
			res, err = env.app.Service().Recent(cmd.Context(), d, env.opts)
		} else {
			startStr, _ := f.GetString("start")
			endStr, _ := f.GetString("end")
			if startStr == "" || endStr == "" {
				return fmt.Errorf("timerange needs --start and --end, or --recent")
			}
			var start, end time.Time
			if start, err = parseTime(startStr); err != nil {
				return err
			}
			if end, err = parseTime(endStr); err != nil {
				return err
			}
			res, err = env.app.Service().TimeRange(cmd.Context(), start, end, env.opts)
		}
		if err != nil {
			return noticeOr(err)
		}
		printResult(res)
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		if err := config.Init(path, config.NewConfig()); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		fmt.Printf("Configuration initialized at %s\n", path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Update a default setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.WriteToFile(path, cfg); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

// products command
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List known product codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		search = strings.ToLower(search)

		shown := 0
		for _, p := range goes.Products() {
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Code), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) {
				continue
			}
			fmt.Printf("%-22s %s\n", p.Code, p.Description)
			shown++
		}
		if shown == 0 {
			fmt.Println("No products matched.")
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View download history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		path, err := config.Path()
		if err != nil {
			return err
		}
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a, err := app.NewApp(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No downloads recorded.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("#%d  %s  %-15s  %s  %d bytes\n",
				e.ID,
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Status,
				e.Key,
				e.Bytes,
			)
		}
		return nil
	},
}

// fov command
var fovCmd = &cobra.Command{
	Use:   "fov FILE",
	Short: "Show a file's instrument field of view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.Open(args[0])
		if err != nil {
			return err
		}
		view, err := ds.FieldOfView()
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("geojson")
		if out != "" {
			data, err := view.GeoJSON()
			if err != nil {
				return err
			}
			if out == "-" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("writing geojson: %w", err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		}

		b := view.Bound()
		fmt.Printf("Instrument: %s\n", view.Instrument)
		fmt.Printf("Nadir:      %.2f, %.2f\n", view.NadirLon, view.NadirLat)
		fmt.Printf("Height:     %.0f m\n", view.Height)
		fmt.Printf("Footprint:  %.0f x %.0f km, %.2e km2\n",
			(b.Max[0]-b.Min[0])/1000, (b.Max[1]-b.Min[1])/1000, view.Area()/1e6)
		return nil
	},
}

func init() {
	addQueryFlags(latestCmd)
	addQueryFlags(nearestCmd)
	nearestCmd.Flags().Duration("within", 0, "tolerance around TIME")
	addQueryFlags(timerangeCmd)
	timerangeCmd.Flags().String("start", "", "window start")
	timerangeCmd.Flags().String("end", "", "window end")
	timerangeCmd.Flags().Duration("recent", 0, "window ending now, e.g. 6h")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configSetCmd)

	productsCmd.Flags().String("search", "", "filter by code or description")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of downloads to show")
	fovCmd.Flags().String("geojson", "", "write the footprint as GeoJSON to this path (- for stdout)")

	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(nearestCmd)
	rootCmd.AddCommand(timerangeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(fovCmd)
}
