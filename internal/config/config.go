// Package config handles the configuration directory, .env files and
// backend settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "taskdash"

	// EnvFile is the dotenv filename read from the config dir and the working dir.
	EnvFile = ".env"

	// DefaultBackendURL is where the task backend listens in development.
	DefaultBackendURL = "http://localhost:4000"

	// DefaultAPIBase is the path prefix of the task endpoints.
	DefaultAPIBase = "/api"

	// DefaultFrontendURL is where the web frontend is served in development.
	DefaultFrontendURL = "http://localhost:3000"
)

// Environment variables, first match wins.
var (
	backendEnv  = []string{"TASKDASH_BACKEND_URL", "E2E_BACKEND_URL", "E2E_BASE_URL"}
	apiBaseEnv  = []string{"TASKDASH_API_BASE", "VITE_API_BASE"}
	frontendEnv = []string{"TASKDASH_FRONTEND_URL", "E2E_FRONTEND_URL"}
	tokenEnv    = []string{"TASKDASH_API_TOKEN"}
	timeoutEnv  = []string{"TASKDASH_TIMEOUT"}
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// BackendURL is the scheme and host of the task backend.
	BackendURL string

	// APIBase is the path prefix of the task endpoints, or an absolute URL.
	APIBase string

	// FrontendURL is probed by the smoke command.
	FrontendURL string

	// Token, when set, is sent as a bearer token on every backend request.
	Token string

	// Timeout bounds each backend request. Zero means no deadline.
	Timeout time.Duration

	// Stdin is read for interactive confirmations. Nil means no input.
	Stdin io.Reader
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdash or $HOME/.config/taskdash.
// .env files in the config dir and the working dir are loaded first; they
// never override variables already set in the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if err := loadEnvFiles(filepath.Join(dir, EnvFile), EnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		Dir:         dir,
		BackendURL:  lookup(backendEnv, DefaultBackendURL),
		APIBase:     lookup(apiBaseEnv, DefaultAPIBase),
		FrontendURL: lookup(frontendEnv, DefaultFrontendURL),
		Token:       lookup(tokenEnv, ""),
	}
	if raw := lookup(timeoutEnv, ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", timeoutEnv[0], err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// loadEnvFiles loads each existing dotenv file; missing files are skipped.
func loadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func lookup(keys []string, fallback string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return fallback
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

// APIURL returns the absolute URL of the task API root, without a trailing slash.
// An APIBase that already carries a scheme is used as is.
func (c *Config) APIURL() (string, error) {
	base := strings.TrimSpace(c.APIBase)
	if base == "" {
		base = DefaultAPIBase
	}
	if u, err := url.Parse(base); err == nil && u.Scheme != "" && u.Host != "" {
		return strings.TrimRight(base, "/"), nil
	}

	backend := strings.TrimSpace(c.BackendURL)
	if backend == "" {
		backend = DefaultBackendURL
	}
	u, err := url.Parse(backend)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid backend url: %q", c.BackendURL)
	}
	return strings.TrimRight(backend, "/") + "/" + strings.Trim(base, "/"), nil
}

// HealthURLs returns the backend health endpoints probed by the smoke command.
func (c *Config) HealthURLs() []string {
	backend := strings.TrimRight(c.BackendURL, "/")
	return []string{backend + "/health", backend + "/actuator/health"}
}
