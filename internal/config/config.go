package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/keepblock/keepblock/internal/errors"
	"github.com/keepblock/keepblock/pkg/boundary"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "keepblock.yaml"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "keepblock"

	// DefaultAddr is the default HTTP service address.
	DefaultAddr = "127.0.0.1:7457"

	// DefaultOutput is the default artifact directory.
	DefaultOutput = "."

	// DefaultBackupDir is the default snapshot directory.
	DefaultBackupDir = ".keepblock/backups"

	// DefaultInterval is the default watch polling interval.
	DefaultInterval = "250ms"
)

// Config represents keepblock.yaml.
type Config struct {
	// Language is the default target language.
	Language string `mapstructure:"language" yaml:"language"`

	// Output is the directory (or key prefix) artifacts are written to.
	Output string `mapstructure:"output" yaml:"output"`

	// Forms are glob patterns of form definitions to generate.
	Forms []string `mapstructure:"forms" yaml:"forms"`

	// CreateDirs creates missing output folders.
	CreateDirs bool `mapstructure:"create_dirs" yaml:"create_dirs"`

	// Workers bounds concurrent artifact writes.
	Workers int `mapstructure:"workers" yaml:"workers"`

	Backup  BackupConfig  `mapstructure:"backup" yaml:"backup"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Watch   WatchConfig   `mapstructure:"watch" yaml:"watch"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BackupConfig controls snapshots taken before user code is rewritten.
type BackupConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// StoreConfig selects the artifact backend.
type StoreConfig struct {
	// Kind is "fs" or "s3".
	Kind     string `mapstructure:"kind" yaml:"kind"`
	Root     string `mapstructure:"root" yaml:"root,omitempty"`
	Bucket   string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Region   string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`

	// PathStyle addresses the bucket by path, as MinIO expects.
	PathStyle bool `mapstructure:"path_style" yaml:"path_style,omitempty"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	// Textfile is where a node-exporter textfile is written after a run.
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// WatchConfig configures the form watcher.
type WatchConfig struct {
	// Interval is a Go duration string, e.g. "250ms".
	Interval string `mapstructure:"interval" yaml:"interval"`
}

// IntervalDuration parses Interval, falling back to the default.
func (w WatchConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultInterval)
	}
	return d
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Language: "python",
		Output:   DefaultOutput,
		Forms:    []string{"forms/*.yaml"},
		Workers:  4,
		Backup: BackupConfig{
			Enabled: true,
			Dir:     DefaultBackupDir,
		},
		Store: StoreConfig{
			Kind: "fs",
			Root: ".",
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Watch: WatchConfig{
			Interval: DefaultInterval,
		},
	}
}

// Defaults returns the default values keyed the way viper sees them.
func Defaults() map[string]any {
	d := New()
	return map[string]any{
		"language":         d.Language,
		"output":           d.Output,
		"forms":            d.Forms,
		"create_dirs":      d.CreateDirs,
		"workers":          d.Workers,
		"backup.enabled":   d.Backup.Enabled,
		"backup.dir":       d.Backup.Dir,
		"store.kind":       d.Store.Kind,
		"store.root":       d.Store.Root,
		"store.bucket":     "",
		"store.prefix":     "",
		"store.region":     "",
		"store.endpoint":   "",
		"store.path_style": false,
		"metrics.textfile": "",
		"server.addr":      d.Server.Addr,
		"watch.interval":   d.Watch.Interval,
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"lang":        "language",
	"output":      "output",
	"create-dirs": "create_dirs",
	"workers":     "workers",
	"backup":      "backup.enabled",
	"store":       "store.kind",
	"bucket":      "store.bucket",
	"addr":        "server.addr",
	"textfile":    "metrics.textfile",
	"interval":    "watch.interval",
}

// Load layers defaults, the configuration file, the environment, and the
// flags of cmd. With an explicit path the file must exist; otherwise
// keepblock.yaml is looked up in the working directory and is optional.
func Load(cmd *cobra.Command, path string) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(strings.TrimSuffix(ConfigFileName, filepath.Ext(ConfigFileName)))
	v.SetConfigType("yaml")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("K302").
				WithDetail("No configuration file at " + path).
				WithSuggestion("Run 'keepblock init' to create one").
				Wrap(err)
		}
		v.SetConfigFile(path)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.New("K301").
				WithDetail("Failed to parse " + v.ConfigFileUsed() + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, errors.New("K301").Wrap(err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("K301").WithDetail(err.Error())
	}
	if used := v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			cfg.configPath = used
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	invalid := func(detail, hint string) error {
		if c.configPath != "" {
			detail = c.configPath + ": " + detail
		}
		return errors.New("K301").WithDetail(detail).WithSuggestion(hint)
	}

	if c.Language != "" {
		if _, err := boundary.ParseLanguage(c.Language); err != nil {
			return invalid("Unknown language "+strings.TrimSpace(c.Language)+".",
				"Use one of: "+languageList())
		}
	}
	switch c.Store.Kind {
	case "", "fs":
	case "s3":
		if c.Store.Bucket == "" {
			return invalid("store.kind is s3 but store.bucket is empty.", "Set store.bucket")
		}
	default:
		return invalid("Unknown store kind "+c.Store.Kind+".", "Use fs or s3")
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative.", "Set workers to 0 for the default")
	}
	if c.Watch.Interval != "" {
		if d, err := time.ParseDuration(c.Watch.Interval); err != nil || d <= 0 {
			return invalid("watch.interval "+c.Watch.Interval+" is not a positive duration.", "Use a value such as 250ms or 1s")
		}
	}
	return nil
}

func languageList() string {
	var names []string
	for _, l := range boundary.Languages() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}

// Lang returns the configured language, or boundary.Unknown.
func (c *Config) Lang() boundary.Language {
	lang, err := boundary.ParseLanguage(c.Language)
	if err != nil {
		return boundary.Unknown
	}
	return lang
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("K301").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("K202").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file, or "." when the
// configuration came from defaults only.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// OutputPath returns the artifact directory relative to the config file.
func (c *Config) OutputPath() string {
	return c.resolve(c.Output)
}

// StoreRoot returns the file store root relative to the config file.
func (c *Config) StoreRoot() string {
	return c.resolve(c.Store.Root)
}

// ArtifactKey returns the store key for an artifact named name.
func (c *Config) ArtifactKey(name string) string {
	return filepath.ToSlash(filepath.Join(c.Output, name))
}

// BackupPath returns the snapshot directory, or "" when backups are off.
func (c *Config) BackupPath() string {
	if !c.Backup.Enabled {
		return ""
	}
	return c.resolve(c.Backup.Dir)
}

// FormPaths expands the form globs relative to the config file. The
// result is sorted and free of duplicates.
func (c *Config) FormPaths() ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range c.Forms {
		matches, err := filepath.Glob(c.resolve(pattern))
		if err != nil {
			return nil, errors.New("K301").WithDetail("Bad forms pattern " + pattern + ": " + err.Error())
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// FormDirs returns the directories holding the form globs, for watching.
func (c *Config) FormDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, pattern := range c.Forms {
		dir := filepath.Dir(c.resolve(pattern))
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing keepblock.yaml, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("K302").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'keepblock init' to create one")
		}
		dir = parent
	}
}
