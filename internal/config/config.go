// Package config assembles the settings shared by the server and the CLI.
package config

import (
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/lib/configutil"
	"time"
)

// SettleConfig holds settle delays in milliseconds.
type SettleConfig struct {
	NavigateMs    int `json:"navigate_ms"`
	DynamicPageMs int `json:"dynamic_page_ms"`
	LoginPageMs   int `json:"login_page_ms"`
	LoginMs       int `json:"login_ms"`
	PaginationMs  int `json:"pagination_ms"`
	ClickMs       int `json:"click_ms"`
	SearchMs      int `json:"search_ms"`
	SelectMs      int `json:"select_ms"`
}

type ServerConfig struct {
	Addr         string `json:"addr" env:"HUBSYNC_ADDR"`
	SnapshotPath string `json:"snapshot_path" env:"HUBSYNC_SNAPSHOT"`
	IndexPath    string `json:"index_path" env:"HUBSYNC_INDEX"`
	// SyncSchedule is a cron spec for background syncs, empty disables them.
	SyncSchedule string `json:"sync_schedule" env:"HUBSYNC_SYNC_SCHEDULE"`
	// SyncTimezone is the IANA zone SyncSchedule is read in.
	SyncTimezone string `json:"sync_timezone" env:"HUBSYNC_SYNC_TIMEZONE"`
	// SyncTimeoutSeconds bounds one background sync.
	SyncTimeoutSeconds int `json:"sync_timeout_seconds"`
}

type ContactsConfig struct {
	Path string `json:"path" env:"HUBSYNC_CONTACTS"`
	Page string `json:"page" env:"HUBSYNC_CONTACTS_PAGE"`
}

// Config is read from config.json5 (plus config.local.json5) and then
// overlaid with the environment.
//
// note: mergo skips zero values, so turning headless off only works through
// the HEADLESS variable.
type Config struct {
	Email    string `json:"email" env:"PROVISORS_EMAIL"`
	Password string `json:"password" env:"PROVISORS_PASSWORD"`
	BaseURL  string `json:"base_url" env:"PROVISORS_BASE_URL"`

	Headless       bool   `json:"headless" env:"HEADLESS"`
	SlowMoMs       int    `json:"slow_mo_ms" env:"SLOW_MO"`
	ScreenshotDir  string `json:"screenshot_dir" env:"SCREENSHOT_DIR"`
	ProfileDir     string `json:"profile_dir" env:"BROWSER_PROFILE_DIR"`
	ChromeBin      string `json:"chrome_bin" env:"CHROME_BIN"`
	ControlURL     string `json:"control_url" env:"CHROME_CONTROL_URL"`
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`

	NavigationTimeoutMs  int          `json:"navigation_timeout_ms"`
	PaginationTimeoutMs  int          `json:"pagination_timeout_ms"`
	ReverifyAfterSeconds int          `json:"reverify_after_seconds"`
	Settle               SettleConfig `json:"settle"`

	Server   ServerConfig   `json:"server"`
	Contacts ContactsConfig `json:"contacts"`
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func toMs(d time.Duration) int {
	return int(d / time.Millisecond)
}

func Default() Config {
	hubDefaults := hub.DefaultConfig()
	browserDefaults := browser.DefaultOptions()
	settle := hubDefaults.Settle

	return Config{
		BaseURL:              hubDefaults.BaseURL,
		Headless:             browserDefaults.Headless,
		ScreenshotDir:        hubDefaults.ScreenshotDir,
		ProfileDir:           browserDefaults.ProfileDir,
		ViewportWidth:        browserDefaults.ViewportWidth,
		ViewportHeight:       browserDefaults.ViewportHeight,
		NavigationTimeoutMs:  toMs(hubDefaults.NavigationTimeout),
		PaginationTimeoutMs:  toMs(hubDefaults.PaginationTimeout),
		ReverifyAfterSeconds: int(hubDefaults.ReverifyAfter / time.Second),
		Settle: SettleConfig{
			NavigateMs:    toMs(settle.Navigate),
			DynamicPageMs: toMs(settle.DynamicPage),
			LoginPageMs:   toMs(settle.LoginPage),
			LoginMs:       toMs(settle.Login),
			PaginationMs:  toMs(settle.Pagination),
			ClickMs:       toMs(settle.Click),
			SearchMs:      toMs(settle.Search),
			SelectMs:      toMs(settle.Select),
		},
		Server: ServerConfig{
			Addr:               "127.0.0.1:3002",
			SnapshotPath:       "hub_sync_data.json",
			IndexPath:          "index.html",
			SyncTimezone:       "America/Los_Angeles",
			SyncTimeoutSeconds: 600,
		},
		Contacts: ContactsConfig{
			Path: "data/contacts.json",
			Page: "index.html",
		},
	}
}

// Load layers defaults, config.json5 files and the environment (with .env
// loaded first when present).
func Load() (Config, error) {
	return LoadFrom("config.json5", ".env")
}

func LoadFrom(name, dotenv string) (Config, error) {
	return configutil.ReadLayered(Default(), name, dotenv)
}

func (c Config) Hub() hub.Config {
	out := hub.DefaultConfig()
	out.BaseURL = c.BaseURL
	out.Credentials = hub.Credentials{
		Email:    c.Email,
		Password: c.Password,
	}
	out.ScreenshotDir = c.ScreenshotDir
	out.NavigationTimeout = ms(c.NavigationTimeoutMs)
	out.PaginationTimeout = ms(c.PaginationTimeoutMs)
	out.ReverifyAfter = time.Duration(c.ReverifyAfterSeconds) * time.Second
	out.Settle = hub.Settle{
		Navigate:    ms(c.Settle.NavigateMs),
		DynamicPage: ms(c.Settle.DynamicPageMs),
		LoginPage:   ms(c.Settle.LoginPageMs),
		Login:       ms(c.Settle.LoginMs),
		Pagination:  ms(c.Settle.PaginationMs),
		Click:       ms(c.Settle.ClickMs),
		Search:      ms(c.Settle.SearchMs),
		Select:      ms(c.Settle.SelectMs),
	}
	return out
}

// SyncLocation resolves SyncTimezone, an empty zone is the local one.
func (c Config) SyncLocation() (*time.Location, error) {
	if c.Server.SyncTimezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Server.SyncTimezone)
}

func (c Config) Browser() browser.Options {
	out := browser.DefaultOptions()
	out.Bin = c.ChromeBin
	out.ControlURL = c.ControlURL
	out.Headless = c.Headless
	out.SlowMotion = ms(c.SlowMoMs)
	out.ProfileDir = c.ProfileDir
	out.ViewportWidth = c.ViewportWidth
	out.ViewportHeight = c.ViewportHeight
	if c.NavigationTimeoutMs > 0 {
		out.NavigationTimeout = ms(c.NavigationTimeoutMs)
	}
	return out
}
