// Package config resolves application configuration from the
// environment, with an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	envDBPath    = "METRICS_DB_PATH"
	envGitHubPAT = "GITHUB_PAT"
	envUserID    = "METRICS_USER_ID"

	// DefaultUserID is the user identity used when none is given. The
	// tool is single-user in practice; the store supports many.
	DefaultUserID = "user1"
)

// Config is the resolved application configuration. The config store
// itself never reads the environment; everything it needs is passed in
// from here as plain strings.
type Config struct {
	DBPath      string
	GitHubToken string
	UserID      string
}

// Load reads the environment (and a .env file when present) and fills
// in defaults. A missing .env file is not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	return &Config{
		DBPath:      getEnv(envDBPath, defaultDBPath()),
		GitHubToken: os.Getenv(envGitHubPAT),
		UserID:      getEnv(envUserID, DefaultUserID),
	}, nil
}

// EnsureDataDir creates the parent directory of the database path.
func (c *Config) EnsureDataDir() error {
	if err := os.MkdirAll(filepath.Dir(c.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("data", "metrics_db.sqlite")
	}
	return filepath.Join(home, ".devops-metrics", "metrics_db.sqlite")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
