package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// EnvConfigPath overrides the configuration file location.
	EnvConfigPath = "GOESFETCH_CONFIG_PATH"
	// EnvSaveDir overrides the configured save directory.
	EnvSaveDir = "GOESFETCH_SAVE_DIR"
)

// Duration decodes TOML strings like "1h" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Settings is one section of query options. Nil fields mean "not set in
// this section", so sections can be layered without trampling each other.
type Settings struct {
	SaveDir   *string   `toml:"save_dir,omitempty"`
	Satellite *string   `toml:"satellite,omitempty"`
	Product   *string   `toml:"product,omitempty"`
	Domain    *string   `toml:"domain,omitempty"`
	Download  *bool     `toml:"download,omitempty"`
	ReturnAs  *string   `toml:"return_as,omitempty"` // "filelist" or "dataset"
	Overwrite *bool     `toml:"overwrite,omitempty"`
	MaxCPUs   *int      `toml:"max_cpus,omitempty"`
	S3Refresh *bool     `toml:"s3_refresh,omitempty"`
	Verbose   *bool     `toml:"verbose,omitempty"`
	Within    *Duration `toml:"within,omitempty"`
}

// Merge copies over's set fields onto s.
func (s *Settings) Merge(over Settings) {
	if over.SaveDir != nil {
		s.SaveDir = over.SaveDir
	}
	if over.Satellite != nil {
		s.Satellite = over.Satellite
	}
	if over.Product != nil {
		s.Product = over.Product
	}
	if over.Domain != nil {
		s.Domain = over.Domain
	}
	if over.Download != nil {
		s.Download = over.Download
	}
	if over.ReturnAs != nil {
		s.ReturnAs = over.ReturnAs
	}
	if over.Overwrite != nil {
		s.Overwrite = over.Overwrite
	}
	if over.MaxCPUs != nil {
		s.MaxCPUs = over.MaxCPUs
	}
	if over.S3Refresh != nil {
		s.S3Refresh = over.S3Refresh
	}
	if over.Verbose != nil {
		s.Verbose = over.Verbose
	}
	if over.Within != nil {
		s.Within = over.Within
	}
}

// StoreConfig selects the object store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "s3" (default), "filesystem", or "memory"

	// S3-specific fields (only used when Type == "s3")
	Region          string `toml:"region,omitempty"`
	Endpoint        string `toml:"endpoint,omitempty"`
	AccessKeyID     string `toml:"access_key_id,omitempty"`
	SecretAccessKey string `toml:"secret_access_key,omitempty"`
	UsePathStyle    bool   `toml:"use_path_style,omitempty"`
	MaxAttempts     int    `toml:"max_attempts,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`
}

// InventoryConfig selects the download inventory backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type InventoryConfig struct {
	Type    string `toml:"type"`               // "sqlite" (default) or "off"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// Config is the full configuration file: a default section, one section
// per query mode layered over it, and backend sections.
type Config struct {
	Default     Settings        `toml:"default"`
	Latest      Settings        `toml:"latest"`
	NearestTime Settings        `toml:"nearesttime"`
	TimeRange   Settings        `toml:"timerange"`
	Store       StoreConfig     `toml:"store"`
	Inventory   InventoryConfig `toml:"inventory"`
	LogDir      string          `toml:"log_dir,omitempty"`
}

// Mode names the per-command sections.
type Mode string

const (
	ModeLatest      Mode = "latest"
	ModeNearestTime Mode = "nearesttime"
	ModeTimeRange   Mode = "timerange"
)

// ForMode returns the default section with the named mode section merged
// over it. Call-supplied overrides belong on top of the result.
func (c *Config) ForMode(mode Mode) Settings {
	merged := c.Default
	switch mode {
	case ModeLatest:
		merged.Merge(c.Latest)
	case ModeNearestTime:
		merged.Merge(c.NearestTime)
	case ModeTimeRange:
		merged.Merge(c.TimeRange)
	}
	return merged
}

// NewConfig returns the documented default configuration.
func NewConfig() *Config {
	return &Config{
		Default: Settings{
			SaveDir:   Ptr("~/data"),
			Satellite: Ptr("noaa-goes16"),
			Product:   Ptr("ABI-L2-MCMIP"),
			Domain:    Ptr("C"),
			Download:  Ptr(true),
			ReturnAs:  Ptr("filelist"),
			Overwrite: Ptr(false),
			MaxCPUs:   Ptr(1),
			S3Refresh: Ptr(true),
			Verbose:   Ptr(true),
		},
		Latest:      Settings{ReturnAs: Ptr("dataset")},
		NearestTime: Settings{ReturnAs: Ptr("dataset"), Within: Ptr(Duration(time.Hour))},
		TimeRange:   Settings{S3Refresh: Ptr(false)},
		Store:       StoreConfig{Type: "s3", Region: "us-east-1"},
		Inventory:   InventoryConfig{Type: "sqlite"},
	}
}

var knownKeys = []string{
	"save_dir", "satellite", "product", "domain", "download", "return_as",
	"overwrite", "max_cpus", "s3_refresh", "verbose", "within",
}

// Set updates one option in the default section. Keys match the TOML
// names.
func (c *Config) Set(key, value string) error {
	switch key {
	case "save_dir":
		c.Default.SaveDir = &value
	case "satellite":
		c.Default.Satellite = &value
	case "product":
		c.Default.Product = &value
	case "domain":
		c.Default.Domain = &value
	case "return_as":
		c.Default.ReturnAs = &value
	case "download":
		return setBool(&c.Default.Download, key, value)
	case "overwrite":
		return setBool(&c.Default.Overwrite, key, value)
	case "s3_refresh":
		return setBool(&c.Default.S3Refresh, key, value)
	case "verbose":
		return setBool(&c.Default.Verbose, key, value)
	case "max_cpus":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		c.Default.MaxCPUs = &n
	case "within":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		c.Default.Within = Ptr(Duration(d))
	default:
		return fmt.Errorf("unknown config key %q: known keys are %s", key, strings.Join(knownKeys, ", "))
	}
	return nil
}

func setBool(dst **bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = &b
	return nil
}

// Ptr returns a pointer to v, for building Settings literals.
func Ptr[T any](v T) *T { return &v }

// Or returns the pointed-to value, or def when p is nil.
func Or[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// WriteToFile writes a Config to the specified file path, creating parent
// directories as needed.
func WriteToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := WriteToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Load reads the config file at path, writing the defaults there first
// when no file exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := WriteToFile(path, NewConfig()); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
	}
	return ReadFromFile(path)
}

// Path returns the config file location: $GOESFETCH_CONFIG_PATH when set,
// otherwise ~/.config/goesfetch.toml.
func Path() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandPath(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "goesfetch.toml"), nil
}

// ExpandPath expands a leading ~ and any $VAR references in p.
func ExpandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return filepath.Clean(p)
}

// ResolveSaveDir applies the environment override and expands the result.
func ResolveSaveDir(configured string) string {
	if env := os.Getenv(EnvSaveDir); env != "" {
		configured = env
	}
	return ExpandPath(configured)
}
