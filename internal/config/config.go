// Package config loads client configuration from a YAML file, an optional
// .env file and CODELADDER_* environment variables, in that order.
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
	"gopkg.in/yaml.v3"

	"codeladder/internal/api"
	"codeladder/internal/ladder"
)

const (
	defaultTimeout = 15 * time.Second
	dirName        = ".codeladder"
)

type Config struct {
	// Backend REST API.
	BaseURL string `yaml:"base_url"`
	// Origin serving problemset.json and contest.json.
	StaticURL string `yaml:"static_url"`
	Timeout   string `yaml:"timeout"`

	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// SessionConfig can pin credentials; when empty the persisted session is used.
type SessionConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	DBPath   string `yaml:"db_path"`
}

type UIConfig struct {
	PageSize int  `yaml:"page_size"`
	NoColor  bool `yaml:"no_color"`
}

type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

func Default() Config {
	return Config{
		BaseURL: api.DefaultBaseURL,
		Timeout: defaultTimeout.String(),
		Session: SessionConfig{DBPath: defaultSessionPath()},
		UI:      UIConfig{PageSize: ladder.DefaultPageSize},
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(dirName, "session.db")
	}
	return filepath.Join(home, dirName, "session.db")
}

// DefaultPath is ~/.codeladder/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(dirName, "config.yaml")
	}
	return filepath.Join(home, dirName, "config.yaml")
}

// Load reads path (a missing file is not an error), then .env from the
// working directory, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("CODELADDER_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("CODELADDER_STATIC_URL"); v != "" {
		c.StaticURL = v
	}
	if v := os.Getenv("CODELADDER_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("CODELADDER_USERNAME"); v != "" {
		c.Session.Username = v
	}
	if v := os.Getenv("CODELADDER_TOKEN"); v != "" {
		c.Session.Token = v
	}
	if v := os.Getenv("CODELADDER_SESSION_DB"); v != "" {
		c.Session.DBPath = v
	}
	if v := os.Getenv("CODELADDER_PAGE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CODELADDER_PAGE_SIZE: %w", err)
		}
		c.UI.PageSize = size
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		c.UI.NoColor = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = api.DefaultBaseURL
	}
	if strings.TrimSpace(c.Timeout) == "" {
		c.Timeout = defaultTimeout.String()
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = ladder.DefaultPageSize
	}
	if strings.TrimSpace(c.Session.DBPath) == "" {
		c.Session.DBPath = defaultSessionPath()
	}
}

func (c Config) Validate() error {
	if _, err := c.HTTPTimeout(); err != nil {
		return err
	}
	return nil
}

func (c Config) HTTPTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", timeout)
	}
	return timeout, nil
}

// CatalogURL is where the static catalog lives; it falls back to the API
// base URL when no separate origin is configured.
func (c Config) CatalogURL() string {
	if strings.TrimSpace(c.StaticURL) != "" {
		return c.StaticURL
	}
	return c.BaseURL
}
