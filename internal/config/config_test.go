package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PROVISORS_EMAIL", "PROVISORS_PASSWORD", "PROVISORS_BASE_URL",
		"HEADLESS", "SLOW_MO", "SCREENSHOT_DIR", "BROWSER_PROFILE_DIR",
		"CHROME_BIN", "CHROME_CONTROL_URL", "HUBSYNC_ADDR", "HUBSYNC_SNAPSHOT",
		"HUBSYNC_INDEX", "HUBSYNC_CONTACTS", "HUBSYNC_CONTACTS_PAGE",
	} {
		if value, ok := os.LookupEnv(key); ok {
			require.NoError(t, os.Unsetenv(key))
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestDefaultsWithoutFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := LoadFrom(filepath.Join(dir, "config.json5"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	hubCfg := cfg.Hub()
	require.Equal(t, "https://hub.provisors.com", hubCfg.BaseURL)
	require.Equal(t, 30*time.Second, hubCfg.NavigationTimeout)
	require.Equal(t, 15*time.Second, hubCfg.PaginationTimeout)
	require.Equal(t, 5*time.Second, hubCfg.Settle.DynamicPage)
	require.Equal(t, 500*time.Millisecond, hubCfg.Settle.Select)
	require.Equal(t, 10*time.Minute, hubCfg.ReverifyAfter)

	opts := cfg.Browser()
	require.True(t, opts.Headless)
	require.Equal(t, ".browser-profile", opts.ProfileDir)
	require.Equal(t, 1280, opts.ViewportWidth)
	require.Equal(t, 900, opts.ViewportHeight)
	require.Zero(t, opts.SlowMotion)
	require.Equal(t, 30*time.Second, opts.NavigationTimeout)
}

func TestFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	require.NoError(t, os.WriteFile(name, []byte(`{
		// checked in
		email: "team@example.com",
		screenshot_dir: "shots",
		settle: { navigate_ms: 100 },
		server: { addr: ":9000" },
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		server: { addr: ":9100" },
	}`), 0644))

	t.Setenv("PROVISORS_PASSWORD", "hunter2")
	t.Setenv("HEADLESS", "false")
	t.Setenv("SLOW_MO", "250")

	cfg, err := LoadFrom(name, "")
	require.NoError(t, err)

	require.Equal(t, "team@example.com", cfg.Email)
	require.Equal(t, "hunter2", cfg.Password)
	require.Equal(t, "shots", cfg.ScreenshotDir)
	require.Equal(t, ":9100", cfg.Server.Addr)
	require.Equal(t, "hub_sync_data.json", cfg.Server.SnapshotPath)

	hubCfg := cfg.Hub()
	require.Equal(t, 100*time.Millisecond, hubCfg.Settle.Navigate)
	require.Equal(t, 3*time.Second, hubCfg.Settle.Login)
	require.Equal(t, "hunter2", hubCfg.Credentials.Password)

	opts := cfg.Browser()
	require.False(t, opts.Headless)
	require.Equal(t, 250*time.Millisecond, opts.SlowMotion)
}

func TestDotenvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("PROVISORS_EMAIL=dot@example.com\nSCREENSHOT_DIR=dotshots\n"), 0644))
	t.Cleanup(func() {
		os.Unsetenv("PROVISORS_EMAIL")
		os.Unsetenv("SCREENSHOT_DIR")
	})

	cfg, err := LoadFrom(filepath.Join(dir, "config.json5"), dotenv)
	require.NoError(t, err)
	require.Equal(t, "dot@example.com", cfg.Email)
	require.Equal(t, "dotshots", cfg.ScreenshotDir)
}

func TestSyncLocation(t *testing.T) {
	cfg := Default()
	location, err := cfg.SyncLocation()
	require.NoError(t, err)
	require.Equal(t, "America/Los_Angeles", location.String())

	cfg.Server.SyncTimezone = "Not/AZone"
	_, err = cfg.SyncLocation()
	require.Error(t, err)
}
