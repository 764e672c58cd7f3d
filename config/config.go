// ABOUTME: Application configuration loaded from defaults, YAML, .env, and environment
// ABOUTME: Handles XDG default paths and DEALDESK_* overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName names the XDG directories.
	AppName = "dealdesk"

	ConfigFileName = "config.yaml"
	DBFileName     = "dealdesk.db"

	BackendMock   = "mock"
	BackendHosted = "hosted"
	BackendLocal  = "local"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Backend selects the data source: mock, hosted, or local.
	Backend string     `yaml:"backend"`
	API     APIConfig  `yaml:"api"`
	DBPath  string     `yaml:"db_path"`
	Mock    MockConfig `yaml:"mock"`
	Log     LogConfig  `yaml:"log"`
	Listen  string     `yaml:"listen"`
}

// APIConfig holds hosted backend credentials.
type APIConfig struct {
	URL       string        `yaml:"url"`
	ProjectID string        `yaml:"project_id"`
	PublicKey string        `yaml:"public_key"`
	Timeout   time.Duration `yaml:"timeout"`
}

type MockConfig struct {
	MinLatency time.Duration `yaml:"min_latency"`
	MaxLatency time.Duration `yaml:"max_latency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendMock,
		API:     APIConfig{Timeout: 15 * time.Second},
		DBPath:  filepath.Join(xdg.DataHome, AppName, DBFileName),
		Mock: MockConfig{
			MinLatency: 200 * time.Millisecond,
			MaxLatency: 400 * time.Millisecond,
		},
		Log:    LogConfig{Level: "info", Format: "console"},
		Listen: "127.0.0.1:8080",
	}
}

// DefaultPath returns the XDG config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads configuration. An empty path means the XDG default, which may
// be absent; an explicit path must exist. A .env file in the working
// directory is loaded before environment overrides are applied.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DEALDESK_* environment variables:
// - DEALDESK_BACKEND
// - DEALDESK_API_URL
// - DEALDESK_PROJECT_ID
// - DEALDESK_PUBLIC_KEY
// - DEALDESK_TIMEOUT
// - DEALDESK_DB_PATH
// - DEALDESK_LOG_LEVEL
// - DEALDESK_LOG_FORMAT
// - DEALDESK_LATENCY (e.g. "200ms-400ms" or "0")
// - DEALDESK_LISTEN.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DEALDESK_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("DEALDESK_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("DEALDESK_PROJECT_ID"); v != "" {
		cfg.API.ProjectID = v
	}
	if v := os.Getenv("DEALDESK_PUBLIC_KEY"); v != "" {
		cfg.API.PublicKey = v
	}
	if v := os.Getenv("DEALDESK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: DEALDESK_TIMEOUT: %v", ErrInvalid, err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("DEALDESK_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DEALDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DEALDESK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("DEALDESK_LATENCY"); v != "" {
		lo, hi, err := ParseLatency(v)
		if err != nil {
			return fmt.Errorf("%w: DEALDESK_LATENCY: %v", ErrInvalid, err)
		}
		cfg.Mock.MinLatency, cfg.Mock.MaxLatency = lo, hi
	}
	if v := os.Getenv("DEALDESK_LISTEN"); v != "" {
		cfg.Listen = v
	}
	return nil
}

// ParseLatency parses "min-max" or a single duration used for both bounds.
// A bare "0" disables latency.
func ParseLatency(s string) (time.Duration, time.Duration, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	minLatency, err := parseDuration(lo)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return minLatency, minLatency, nil
	}
	maxLatency, err := parseDuration(hi)
	if err != nil {
		return 0, 0, err
	}
	return minLatency, maxLatency, nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMock:
		if c.Mock.MinLatency < 0 || c.Mock.MaxLatency < c.Mock.MinLatency {
			return fmt.Errorf("%w: mock latency bounds %s-%s", ErrInvalid, c.Mock.MinLatency, c.Mock.MaxLatency)
		}
	case BackendHosted:
		var missing []string
		if c.API.URL == "" {
			missing = append(missing, "api.url")
		}
		if c.API.ProjectID == "" {
			missing = append(missing, "api.project_id")
		}
		if c.API.PublicKey == "" {
			missing = append(missing, "api.public_key")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: hosted backend requires %s", ErrInvalid, strings.Join(missing, ", "))
		}
	case BackendLocal:
		if c.DBPath == "" {
			return fmt.Errorf("%w: local backend requires db_path", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// EnsureDBDir creates the parent directory of the database file.
func (c *Config) EnsureDBDir() error {
	if c.DBPath == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
