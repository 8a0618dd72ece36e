package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors t.Chdir (testing.T.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env here
	t.Setenv("METRICS_DB_PATH", "")
	t.Setenv("GITHUB_PAT", "")
	t.Setenv("METRICS_USER_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Empty(t, cfg.GitHubToken)
	assert.Contains(t, cfg.DBPath, "metrics_db.sqlite")
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("METRICS_DB_PATH", "/tmp/custom.sqlite")
	t.Setenv("GITHUB_PAT", "tok123")
	t.Setenv("METRICS_USER_ID", "alice")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.sqlite", cfg.DBPath)
	assert.Equal(t, "tok123", cfg.GitHubToken)
	assert.Equal(t, "alice", cfg.UserID)
}
