// Package config loads desk-calc configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// DESK_CALC_* environment variables, explicitly set command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment overrides: DESK_CALC_DB -> db.
const EnvPrefix = "DESK_CALC_"

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config is the resolved configuration.
type Config struct {
	DB          string `koanf:"db"`
	BackupDir   string `koanf:"backup_dir"`
	BackupKeep  int    `koanf:"backup_keep"`
	NoBackup    bool   `koanf:"no_backup"`
	LogLevel    string `koanf:"log_level"`
	Format      string `koanf:"format"`
	HistoryFile string `koanf:"history_file"`

	// File is the config file that was read, empty when none was.
	File string `koanf:"-"`
}

// Dir returns the per-user data directory, ~/.desk-calc.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".desk-calc"
	}
	return filepath.Join(home, ".desk-calc")
}

func defaults() map[string]interface{} {
	dir := Dir()
	return map[string]interface{}{
		"db":           filepath.Join(dir, "calculator.db"),
		"backup_dir":   "",
		"backup_keep":  7,
		"no_backup":    false,
		"log_level":    "warn",
		"format":       FormatJSON,
		"history_file": filepath.Join(dir, "repl_history"),
	}
}

// Load resolves configuration. cfgFile may be empty, in which case
// ~/.desk-calc/config.yaml is read when present. flags may be nil; only
// flags the user actually set take part.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		candidate := filepath.Join(Dir(), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			used = candidate
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// DESK_CALC_BACKUP_KEEP -> backup_keep
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.DB = expandHome(cfg.DB)
	cfg.BackupDir = expandHome(cfg.BackupDir)
	cfg.HistoryFile = expandHome(cfg.HistoryFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db path is empty")
	}
	if c.Format != FormatJSON && c.Format != FormatText {
		return fmt.Errorf("unknown format %q (want json or text)", c.Format)
	}
	if c.BackupKeep < 1 {
		return fmt.Errorf("backup_keep must be at least 1, got %d", c.BackupKeep)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
