// ABOUTME: HealHub configuration management with backend selection.
// ABOUTME: Handles settings, environment overrides, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harperreed/healhub/internal/kv"
)

const (
	DefaultTickInterval  = 30 * time.Second
	DefaultClearInterval = 10 * time.Minute
	DefaultToastDuration = 5 * time.Second
	DefaultPersistDelay  = 250 * time.Millisecond
	DefaultServeAddr     = "127.0.0.1:8737"

	envPrefix          = "HEALHUB_"
	telegramSecretFile = "/run/secrets/telegram_bot_token"
)

// Duration is a time.Duration stored as a string like "30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Config stores healhub configuration.
type Config struct {
	// Backend selects the storage backend: "badger" (default), "sqlite", or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/healhub.
	DataDir string `json:"data_dir,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
	LogJSON  bool   `json:"log_json,omitempty"`

	// Timezone is an IANA name used for reminder matching and daily totals.
	Timezone string `json:"timezone,omitempty"`

	TickInterval  Duration `json:"tick_interval,omitempty"`
	ClearInterval Duration `json:"clear_interval,omitempty"`
	ToastDuration Duration `json:"toast_duration,omitempty"`
	PersistDelay  Duration `json:"persist_delay,omitempty"`

	TelegramToken  string `json:"telegram_token,omitempty"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty"`

	ServeAddr string `json:"serve_addr,omitempty"`
}

// GetBackend returns the configured backend, defaulting to badger.
func (c *Config) GetBackend() kv.Kind {
	k, err := kv.ParseKind(c.Backend)
	if err != nil {
		return kv.Kind(c.Backend)
	}
	return k
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return kv.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetTickInterval() time.Duration {
	return durationOr(c.TickInterval, DefaultTickInterval)
}

func (c *Config) GetClearInterval() time.Duration {
	return durationOr(c.ClearInterval, DefaultClearInterval)
}

func (c *Config) GetToastDuration() time.Duration {
	return durationOr(c.ToastDuration, DefaultToastDuration)
}

func (c *Config) GetPersistDelay() time.Duration {
	if c.PersistDelay < 0 {
		return 0
	}
	return durationOr(c.PersistDelay, DefaultPersistDelay)
}

func (c *Config) GetServeAddr() string {
	if c.ServeAddr == "" {
		return DefaultServeAddr
	}
	return c.ServeAddr
}

func durationOr(d Duration, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return time.Duration(d)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenBackend creates the key-value backend selected by the config.
func (c *Config) OpenBackend(logger *log.Logger) (kv.Backend, error) {
	return c.OpenBackendKind(c.GetBackend(), logger)
}

// OpenBackendKind opens a specific backend under the configured data dir.
func (c *Config) OpenBackendKind(kind kv.Kind, logger *log.Logger) (kv.Backend, error) {
	dataDir := c.GetDataDir()

	switch kind {
	case kv.KindBadger:
		return kv.OpenBadger(filepath.Join(dataDir, "badger"), logger)
	case kv.KindSQLite:
		return kv.OpenSQLite(filepath.Join(dataDir, "healhub.db"))
	case kv.KindCharm:
		return kv.OpenCharm(kv.DefaultStoreName)
	default:
		return nil, fmt.Errorf("unknown backend: %q", kind)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healhub", "config.json")
}

// Load reads config from disk, then applies .env and HEALHUB_* overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + name)); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) error {
		v := strings.TrimSpace(getenv(envPrefix + name))
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = Duration(d)
		return nil
	}

	str("BACKEND", &c.Backend)
	str("DATA_DIR", &c.DataDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("TIMEZONE", &c.Timezone)
	str("SERVE_ADDR", &c.ServeAddr)
	str("TELEGRAM_TOKEN", &c.TelegramToken)

	if v := strings.TrimSpace(getenv(envPrefix + "LOG_JSON")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sLOG_JSON: %w", envPrefix, err)
		}
		c.LogJSON = b
	}
	if v := strings.TrimSpace(getenv(envPrefix + "TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sTELEGRAM_CHAT_ID: %w", envPrefix, err)
		}
		c.TelegramChatID = id
	}

	for name, dst := range map[string]*Duration{
		"TICK_INTERVAL":  &c.TickInterval,
		"CLEAR_INTERVAL": &c.ClearInterval,
		"TOAST_DURATION": &c.ToastDuration,
		"PERSIST_DELAY":  &c.PersistDelay,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}

	if c.TelegramToken == "" {
		if data, err := os.ReadFile(telegramSecretFile); err == nil {
			c.TelegramToken = strings.TrimSpace(string(data))
		}
	}
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
