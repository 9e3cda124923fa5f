package hub

import (
	"net/url"
	"strings"
	"time"
)

const (
	PathLogin           = "/NC__Login"
	PathMyRegistrations = "/nc__myregistrations"
	PathUpcomingEvents  = "/upcoming-events"
	PathEventSearch     = "/event-search"
	PathMyGroups        = "/myaffiliations"
	PathSnapshot        = "/personalsnapshot"
	PathMemberSearch    = "/NC__MemberSearch"
	PathDirectory       = "/membersearch"
)

type Credentials struct {
	Email    string
	Password string
}

// Settle is how long to wait after an action for the portal's scripts to
// finish rendering, network idle alone fires too early on this portal.
type Settle struct {
	Navigate    time.Duration
	DynamicPage time.Duration
	LoginPage   time.Duration
	Login       time.Duration
	Pagination  time.Duration
	Click       time.Duration
	Search      time.Duration
	Select      time.Duration
}

func DefaultSettle() Settle {
	return Settle{
		Navigate:    3 * time.Second,
		DynamicPage: 5 * time.Second,
		LoginPage:   2 * time.Second,
		Login:       3 * time.Second,
		Pagination:  2 * time.Second,
		Click:       3 * time.Second,
		Search:      3 * time.Second,
		Select:      500 * time.Millisecond,
	}
}

type Config struct {
	BaseURL     string
	Credentials Credentials
	// ScreenshotDir is where diagnostic screenshots go, empty disables them.
	ScreenshotDir     string
	NavigationTimeout time.Duration
	PaginationTimeout time.Duration
	// ReverifyAfter is how long a successful login is trusted before the
	// login flow runs again, zero trusts it for the session lifetime.
	ReverifyAfter time.Duration
	Settle        Settle

	MaxRegistrationPages int
	MaxMemberPages       int
	MaxDirectoryPages    int
}

func DefaultConfig() Config {
	return Config{
		BaseURL:              "https://hub.provisors.com",
		ScreenshotDir:        "screenshots",
		NavigationTimeout:    30 * time.Second,
		PaginationTimeout:    15 * time.Second,
		ReverifyAfter:        10 * time.Minute,
		Settle:               DefaultSettle(),
		MaxRegistrationPages: 20,
		MaxMemberPages:       5,
		MaxDirectoryPages:    50,
	}
}

func (c Config) url(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}

// isLoginURL checks if raw points at the portal login page, query and case
// are ignored.
func (c Config) isLoginURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.Contains(strings.ToLower(raw), strings.ToLower(PathLogin))
	}
	return strings.Contains(strings.ToLower(u.Path), strings.ToLower(PathLogin))
}
