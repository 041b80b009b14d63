package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/harrisonrobin/habitask/pkg/matrix"
)

const (
	xdgAppName = "habitask"
	configFile = "config.json"
	dataFile   = "data.json"

	// DirEnv overrides the configuration directory.
	DirEnv = "HABITASK_CONFIG_DIR"

	DefaultCalendar      = "Habitask"
	DefaultCheckInWindow = 7
)

type Config struct {
	Calendar          string                                `json:"calendar"`
	Store             string                                `json:"store"`
	DataFile          string                                `json:"data_file,omitempty"`
	RedisURL          string                                `json:"redis_url,omitempty"`
	RedisPrefix       string                                `json:"redis_prefix,omitempty"`
	Timezone          string                                `json:"timezone,omitempty"`
	CheckInWindowDays int                                   `json:"checkin_window_days"`
	Sort              map[matrix.Quadrant]matrix.SortOption `json:"sort,omitempty"`
}

// Default is the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Calendar:          DefaultCalendar,
		Store:             "file",
		CheckInWindowDays: DefaultCheckInWindow,
	}
}

// Dir returns the configuration directory, honoring HABITASK_CONFIG_DIR.
func Dir() (string, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file, falling back to defaults when it is missing,
// and then applies environment overrides.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	f, err := os.Open(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.CheckInWindowDays <= 0 {
		cfg.CheckInWindowDays = DefaultCheckInWindow
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// DataPath is where the file store keeps its document. A relative
// data_file is resolved against the config directory.
func (c *Config) DataPath() (string, error) {
	if filepath.IsAbs(c.DataFile) {
		return c.DataFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	name := c.DataFile
	if name == "" {
		name = dataFile
	}
	return filepath.Join(dir, name), nil
}

// Location resolves the configured timezone. Empty means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MatrixConfig layers the configured per-quadrant sorts over the defaults.
func (c *Config) MatrixConfig() matrix.Config {
	return matrix.DefaultConfig().With(c.Sort)
}

func (c *Config) applyEnvOverrides() {
	c.Store = getenv("HABITASK_STORE", c.Store)
	c.RedisURL = getenv("HABITASK_REDIS_URL", c.RedisURL)
	c.Calendar = getenv("HABITASK_CALENDAR", c.Calendar)
	c.Timezone = getenv("HABITASK_TIMEZONE", c.Timezone)
	c.CheckInWindowDays = getenvInt("HABITASK_CHECKIN_WINDOW_DAYS", c.CheckInWindowDays)
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
