// Package config loads fnfixture CLI settings.
//
// Settings are resolved in order of precedence: command-line flags, then
// FNFIXTURE_* environment variables (a .env file in the working directory
// fills in unset ones), then .fnfixture.yaml, then defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project configuration file looked up in the working directory.
	FileName = ".fnfixture.yaml"
	// EnvFileName is the dotenv file looked up in the working directory.
	EnvFileName = ".env"
	// EnvPrefix prefixes every environment variable.
	EnvPrefix = "FNFIXTURE_"
)

// Flag names read by ApplyFlags.
const (
	FlagExclude = "exclude"
	FlagNoColor = "no-color"
	FlagPattern = "pattern"
	FlagSkipDir = "skip-dir"
	FlagTimeout = "timeout"
	FlagWorkers = "workers"
)

// Config holds all CLI settings.
type Config struct {
	// Exclude holds doublestar patterns for fixture subdirectories to skip.
	Exclude []string `yaml:"exclude"`

	// NoColor disables colored output.
	NoColor bool `yaml:"no_color"`

	// Patterns filters the test files scan parses.
	Patterns []string `yaml:"patterns"`

	// SkipDirs holds directory names scan does not descend into.
	SkipDirs []string `yaml:"skip_dirs"`

	// Timeout bounds a whole scan.
	Timeout time.Duration `yaml:"timeout"`

	// Workers is the number of concurrent scan workers. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Timeout: DefaultTimeout,
		Workers: DefaultWorkers,
	}
}

// Load resolves settings for dir from the config file, the .env file and
// the environment. lookup reads the process environment; nil means os.LookupEnv.
func Load(dir string, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()
	if err := loadFile(filepath.Join(dir, FileName), &cfg); err != nil {
		return cfg, err
	}

	dotenv, err := readDotEnv(filepath.Join(dir, EnvFileName))
	if err != nil {
		return cfg, err
	}

	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(&cfg, env); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// ApplyFlags overrides settings with flags that were set explicitly.
// Flags missing from the set are ignored.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	if changed(flags, FlagExclude) {
		if c.Exclude, err = flags.GetStringSlice(FlagExclude); err != nil {
			return err
		}
	}
	if changed(flags, FlagNoColor) {
		if c.NoColor, err = flags.GetBool(FlagNoColor); err != nil {
			return err
		}
	}
	if changed(flags, FlagPattern) {
		if c.Patterns, err = flags.GetStringSlice(FlagPattern); err != nil {
			return err
		}
	}
	if changed(flags, FlagSkipDir) {
		if c.SkipDirs, err = flags.GetStringSlice(FlagSkipDir); err != nil {
			return err
		}
	}
	if changed(flags, FlagTimeout) {
		if c.Timeout, err = flags.GetDuration(FlagTimeout); err != nil {
			return err
		}
	}
	if changed(flags, FlagWorkers) {
		if c.Workers, err = flags.GetInt(FlagWorkers); err != nil {
			return err
		}
	}
	return c.Validate()
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	if v, ok := env(EnvPrefix + "EXCLUDE"); ok {
		cfg.Exclude = splitList(v)
	}
	if v, ok := env(EnvPrefix + "PATTERNS"); ok {
		cfg.Patterns = splitList(v)
	}
	if v, ok := env(EnvPrefix + "SKIP_DIRS"); ok {
		cfg.SkipDirs = splitList(v)
	}
	if v, ok := env(EnvPrefix + "NO_COLOR"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %sNO_COLOR: %w", EnvPrefix, err)
		}
		cfg.NoColor = b
	}
	if _, ok := env("NO_COLOR"); ok {
		cfg.NoColor = true
	}
	if v, ok := env(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := env(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Workers = n
	}
	return nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func changed(flags *pflag.FlagSet, name string) bool {
	f := flags.Lookup(name)
	return f != nil && f.Changed
}
