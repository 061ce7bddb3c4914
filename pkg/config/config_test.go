package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Parse.HeaderScanLines)
	assert.Equal(t, 0, cfg.Parse.DefaultYear)
	assert.False(t, cfg.Recon.PersistRuns)
	assert.Equal(t, 90, cfg.Vendor.AcceptThreshold)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PARSE_HEADER_SCAN_LINES", "100")
	t.Setenv("RECON_PERSIST_RUNS", "true")
	t.Setenv("VENDOR_ACCEPT_THRESHOLD", "75")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Parse.HeaderScanLines)
	assert.True(t, cfg.Recon.PersistRuns)
	assert.Equal(t, 75, cfg.Vendor.AcceptThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "VENDOR_ACCEPT_THRESHOLD=75\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Chdir(dir)
	// godotenv writes into the process environment; undo after the test so
	// sibling tests keep seeing the defaults.
	t.Cleanup(func() {
		os.Unsetenv("VENDOR_ACCEPT_THRESHOLD")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.Vendor.AcceptThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidThreshold(t *testing.T) {
	t.Setenv("VENDOR_ACCEPT_THRESHOLD", "150")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VENDOR_ACCEPT_THRESHOLD")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "recon",
		Password: "secret", Database: "runs", SSLMode: "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=recon password=secret dbname=runs sslmode=require",
		c.DSN(),
	)
}
