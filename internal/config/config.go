// Package config handles the configuration directory, config file and environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"taskmgr/internal/session"
)

const (
	// AppName is the application directory name.
	AppName = "taskmgr"

	// ConfigFile is the optional YAML settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the stored credentials filename.
	SessionFile = "session.json"

	// EnvFile is the optional dotenv file, read from the config dir
	// and then from the working directory.
	EnvFile = ".env"

	// DefaultAPIURL is used when nothing else sets the API base URL.
	DefaultAPIURL = "http://localhost:8081"

	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second
)

// Environment variables.
const (
	EnvAPIURL   = "TASKMGR_API_URL"
	EnvTimeout  = "TASKMGR_TIMEOUT"
	EnvPassword = "TASKMGR_PASSWORD"
)

// Settings are the values read from config.yaml.
type Settings struct {
	APIURL         string        `yaml:"api_url"`
	DefaultProject string        `yaml:"default_project"`
	DefaultFilter  string        `yaml:"default_filter"`
	Timeout        time.Duration `yaml:"timeout"`

	// ServerPercentage treats the server's progressPercentage as
	// authoritative. When false it is always recomputed from the counts.
	ServerPercentage *bool `yaml:"server_percentage"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings

	// Logger receives debug output. Never nil after New.
	Logger *slog.Logger

	// Session holds the stored credentials. Set by the dispatcher.
	Session *session.Store

	// Now returns the current time. Tests replace it.
	Now func() time.Time
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskmgr or $HOME/.config/taskmgr.
// Settings are not loaded; call Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:    dir,
		Logger: NewLogger(io.Discard, false),
		Now:    time.Now,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load reads .env files and config.yaml, then applies environment overrides.
// Missing files are not an error.
func (c *Config) Load() error {
	// godotenv.Load never overrides variables already set
	for _, p := range []string{filepath.Join(c.Dir, EnvFile), EnvFile} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
	}

	data, err := os.ReadFile(c.ConfigPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	default:
		if err := yaml.Unmarshal(data, &c.Settings); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Config) BaseURL() string {
	u := c.APIURL
	if u == "" {
		u = DefaultAPIURL
	}
	return strings.TrimRight(u, "/")
}

// RequestTimeout returns the per-call timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// TrustServerPercentage reports whether server percentages are authoritative.
// Defaults to true.
func (c *Config) TrustServerPercentage() bool {
	return c.ServerPercentage == nil || *c.ServerPercentage
}

// Clock returns the current time from Now, or time.Now when unset.
func (c *Config) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Log returns the configured logger or a discarding one.
func (c *Config) Log() *slog.Logger {
	if c.Logger == nil {
		return NewLogger(io.Discard, false)
	}
	return c.Logger
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored credentials file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// NewLogger returns a text logger on w. Debug enables debug level.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
