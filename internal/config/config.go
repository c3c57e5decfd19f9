// Package config loads procview settings from an optional YAML file and
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file
// (~/.config/procview/config.yaml or $PROCVIEW_CONFIG), environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "procview"

// Config holds all configuration values.
type Config struct {
	// Backend
	BackendURL  string
	HTTPTimeout time.Duration // 0 waits indefinitely

	// Local storage
	StoreDriver string // sqlite, surreal or memory
	StorePath   string

	// SurrealDB connection, used by the surreal driver
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Logging
	LogFile  string
	LogLevel slog.Level

	// Viewer
	LoadingDelay time.Duration
	BarcodeDir   string

	// Fixture backend
	FixturesDir  string
	FixturesPort int

	// Path of the config file that was read, empty if none.
	Source string
}

// fileConfig is the on-disk shape. Durations are Go duration strings.
type fileConfig struct {
	BackendURL  string `yaml:"backend_url,omitempty"`
	HTTPTimeout string `yaml:"http_timeout,omitempty"`

	Store struct {
		Driver string `yaml:"driver,omitempty"`
		Path   string `yaml:"path,omitempty"`
	} `yaml:"store,omitempty"`

	SurrealDB struct {
		URL       string `yaml:"url,omitempty"`
		Namespace string `yaml:"namespace,omitempty"`
		Database  string `yaml:"database,omitempty"`
		User      string `yaml:"user,omitempty"`
		Pass      string `yaml:"pass,omitempty"`
		AuthLevel string `yaml:"auth_level,omitempty"`
	} `yaml:"surrealdb,omitempty"`

	Log struct {
		File  string `yaml:"file,omitempty"`
		Level string `yaml:"level,omitempty"`
	} `yaml:"log,omitempty"`

	LoadingDelay string `yaml:"loading_delay,omitempty"`
	BarcodeDir   string `yaml:"barcode_dir,omitempty"`

	Fixtures struct {
		Dir  string `yaml:"dir,omitempty"`
		Port int    `yaml:"port,omitempty"`
	} `yaml:"fixtures,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BackendURL:  "http://localhost:8485",
		StoreDriver: "sqlite",
		StorePath:   filepath.Join(DataDir(), "procview.db"),

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "procview",
		SurrealDBDatabase:  "cache",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		LogFile:  filepath.Join(os.TempDir(), "procview.log"),
		LogLevel: slog.LevelInfo,

		LoadingDelay: 1500 * time.Millisecond,
		BarcodeDir:   ".",

		FixturesDir:  "fixtures",
		FixturesPort: 8485,
	}
}

// ConfigDir returns the XDG config directory for procview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the XDG data directory for procview.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}

// ConfigPath returns the config file location, honoring PROCVIEW_CONFIG.
func ConfigPath() string {
	if p := os.Getenv("PROCVIEW_CONFIG"); p != "" {
		return p
	}
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file, if present, then applies environment
// overrides.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit config file path. A missing file is not
// an error.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := fc.apply(&cfg); err != nil {
				return cfg, fmt.Errorf("config %s: %w", path, err)
			}
			cfg.Source = path
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.BackendURL, fc.BackendURL)
	setString(&cfg.StoreDriver, fc.Store.Driver)
	setString(&cfg.StorePath, fc.Store.Path)
	setString(&cfg.SurrealDBURL, fc.SurrealDB.URL)
	setString(&cfg.SurrealDBNamespace, fc.SurrealDB.Namespace)
	setString(&cfg.SurrealDBDatabase, fc.SurrealDB.Database)
	setString(&cfg.SurrealDBUser, fc.SurrealDB.User)
	setString(&cfg.SurrealDBPass, fc.SurrealDB.Pass)
	setString(&cfg.SurrealDBAuthLevel, fc.SurrealDB.AuthLevel)
	setString(&cfg.LogFile, fc.Log.File)
	setString(&cfg.BarcodeDir, fc.BarcodeDir)
	setString(&cfg.FixturesDir, fc.Fixtures.Dir)
	if fc.Log.Level != "" {
		cfg.LogLevel = parseLogLevel(fc.Log.Level)
	}
	if fc.Fixtures.Port != 0 {
		cfg.FixturesPort = fc.Fixtures.Port
	}

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"loading_delay", fc.LoadingDelay, &cfg.LoadingDelay},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.BackendURL = getEnv("PROCVIEW_BACKEND_URL", cfg.BackendURL)
	cfg.HTTPTimeout = getEnvDuration("PROCVIEW_HTTP_TIMEOUT", cfg.HTTPTimeout)

	cfg.StoreDriver = getEnv("PROCVIEW_STORE_DRIVER", cfg.StoreDriver)
	cfg.StorePath = getEnv("PROCVIEW_STORE_PATH", cfg.StorePath)

	cfg.SurrealDBURL = getEnv("SURREALDB_URL", cfg.SurrealDBURL)
	cfg.SurrealDBNamespace = getEnv("SURREALDB_NAMESPACE", cfg.SurrealDBNamespace)
	cfg.SurrealDBDatabase = getEnv("SURREALDB_DATABASE", cfg.SurrealDBDatabase)
	cfg.SurrealDBUser = getEnv("SURREALDB_USER", cfg.SurrealDBUser)
	cfg.SurrealDBPass = getEnv("SURREALDB_PASS", cfg.SurrealDBPass)
	cfg.SurrealDBAuthLevel = getEnv("SURREALDB_AUTH_LEVEL", cfg.SurrealDBAuthLevel)

	cfg.LogFile = getEnv("PROCVIEW_LOG_FILE", cfg.LogFile)
	if lvl := os.Getenv("PROCVIEW_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = parseLogLevel(lvl)
	}

	cfg.LoadingDelay = getEnvDuration("PROCVIEW_LOADING_DELAY", cfg.LoadingDelay)
	cfg.BarcodeDir = getEnv("PROCVIEW_BARCODE_DIR", cfg.BarcodeDir)

	cfg.FixturesDir = getEnv("PROCVIEW_FIXTURES_DIR", cfg.FixturesDir)
	cfg.FixturesPort = getEnvInt("PROCVIEW_FIXTURES_PORT", cfg.FixturesPort)
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend url %q must be an http(s) URL", c.BackendURL))
	}
	switch c.StoreDriver {
	case "sqlite":
		if c.StorePath == "" {
			errs = append(errs, errors.New("store path is required for the sqlite driver"))
		}
	case "surreal":
		if c.SurrealDBURL == "" {
			errs = append(errs, errors.New("surrealdb url is required for the surreal driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q (want sqlite, surreal or memory)", c.StoreDriver))
	}
	if c.HTTPTimeout < 0 || c.LoadingDelay < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if c.FixturesPort <= 0 || c.FixturesPort > 65535 {
		errs = append(errs, fmt.Errorf("fixtures port %d out of range", c.FixturesPort))
	}
	return errors.Join(errs...)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
