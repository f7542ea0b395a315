package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const FileName = "itemstore.toml"

const (
	defaultStatsInterval  = 60 * time.Second
	defaultBackupInterval = 5 * time.Minute

	// maxIntervalSeconds is the largest whole-second interval a time.Duration
	// can hold.
	maxIntervalSeconds = math.MaxInt64 / int64(time.Second)
)

var ErrNoConfigFile = errors.New("config file not found in current directory or home config directory")

type FileConfig struct {
	PeriodicDBLogEnabled  bool         `toml:"periodic_db_log_enabled"`
	PeriodicDBLogInterval int          `toml:"periodic_db_log_interval"`
	Backup                BackupConfig `toml:"backup"`
}

type BackupConfig struct {
	Enabled         bool   `toml:"enabled"`
	Driver          string `toml:"driver"`
	DSN             string `toml:"dsn"`
	IntervalSeconds int    `toml:"interval_seconds"`
	RestoreOnStart  bool   `toml:"restore_on_start"`
}

func (f FileConfig) StatsInterval() time.Duration {
	if f.PeriodicDBLogInterval <= 0 {
		return defaultStatsInterval
	}
	return time.Duration(f.PeriodicDBLogInterval) * time.Second
}

func (b BackupConfig) Interval() time.Duration {
	if b.IntervalSeconds <= 0 {
		return defaultBackupInterval
	}
	return time.Duration(b.IntervalSeconds) * time.Second
}

// FindFile looks for FileName in the working directory, then in
// $HOME/.config.
func FindFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}
	if p := filepath.Join(cwd, FileName); exists(p) {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	if p := filepath.Join(home, ".config", FileName); exists(p) {
		return p, nil
	}
	return "", ErrNoConfigFile
}

// LoadFile decodes path. Keys the schema does not know are reported as an
// error so typos do not silently fall back to defaults.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return FileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return FileConfig{}, fmt.Errorf("decode %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := checkInterval("periodic_db_log_interval", fc.PeriodicDBLogInterval); err != nil {
		return FileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := checkInterval("backup.interval_seconds", fc.Backup.IntervalSeconds); err != nil {
		return FileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := fc.Backup.validate(); err != nil {
		return FileConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

func checkInterval(key string, seconds int) error {
	if int64(seconds) > maxIntervalSeconds {
		return fmt.Errorf("%s: %d seconds exceeds the maximum of %d", key, seconds, maxIntervalSeconds)
	}
	return nil
}

func (b BackupConfig) validate() error {
	if !b.Enabled {
		return nil
	}
	switch b.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("backup: unsupported driver %q", b.Driver)
	}
	if b.DSN == "" {
		return errors.New("backup: dsn is required")
	}
	return nil
}

func exists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
