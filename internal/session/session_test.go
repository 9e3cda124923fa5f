package session

import (
	"context"
	"errors"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/browser/browsertest"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const base = "https://hub.test"

var syncTime = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func portalScreens() map[string]*browsertest.Screen {
	return map[string]*browsertest.Screen{
		base + hub.PathLogin: {RedirectTo: base + "/home"},
		base + "/home":       {},
		base + hub.PathSnapshot: {
			HTML: `<p>Next meeting Tuesday</p><a href="/m/1">Meeting</a>`,
		},
		base + hub.PathMyRegistrations: {
			Text: "Acme Mixer, Virtual - June 2024\nMonday, June 3, 2024 9:00 AM\nMonday, June 3, 2024 10:00 AM\nPacific\nChapter Meeting\nMember",
		},
		base + hub.PathUpcomingEvents: {
			HTML: `<div class="event-card">Acme Mixer Breakfast Meeting <a href="/event?id=7">Acme Mixer</a></div>`,
		},
		base + hub.PathEventSearch: {
			HTML: `<div class="result">Quarterly Summit in Irvine <a href="/event?id=9">Quarterly Summit</a></div>`,
		},
		base + hub.PathMyGroups: {
			HTML: `<div class="group">Westside Breakfast Group</div>`,
		},
	}
}

type harness struct {
	session *Session
	screens map[string]*browsertest.Screen
	opens   int32

	mu   sync.Mutex
	last *browsertest.Page
}

// page is the most recently opened page.
func (h *harness) page() *browsertest.Page {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

func newHarness(t testing.TB, screens map[string]*browsertest.Screen) *harness {
	t.Helper()
	h := &harness{screens: screens}
	open := func(ctx context.Context) (browser.Page, error) {
		atomic.AddInt32(&h.opens, 1)
		page := browsertest.NewPage(screens)
		h.mu.Lock()
		h.last = page
		h.mu.Unlock()
		return page, nil
	}

	cfg := hub.DefaultConfig()
	cfg.BaseURL = base
	cfg.Credentials = hub.Credentials{Email: "member@example.com", Password: "hunter2"}
	cfg.Settle = hub.Settle{}
	cfg.ScreenshotDir = ""

	h.session = New(open, cfg, telemetry.NewRecorderAPI(), chrono.FixedImpl{Time: syncTime})
	return h
}

func TestFullSync(t *testing.T) {
	h := newHarness(t, portalScreens())

	snap, err := h.session.FullSync(context.Background())
	require.NoError(t, err)
	require.True(t, snap.LoggedIn)
	require.Equal(t, syncTime, snap.Timestamp)
	require.Equal(t, 1, snap.Registrations.Total)
	require.Len(t, snap.UpcomingEvents.Events, 1)
	require.Len(t, snap.EventSearch.Events, 1)
	require.Len(t, snap.MyGroups.Groups, 1)
	require.Equal(t, []string{
		base + hub.PathLogin,
		base + hub.PathSnapshot,
		base + hub.PathMyRegistrations,
		base + hub.PathUpcomingEvents,
		base + hub.PathEventSearch,
		base + hub.PathMyGroups,
	}, h.page().Navigations)
}

func TestFullSyncAbortsOnFirstError(t *testing.T) {
	screens := portalScreens()
	screens[base+hub.PathLogin] = &browsertest.Screen{
		Elements: []*browsertest.Element{
			{Selector: "input[type='email']"},
			{Selector: "input[type='password']"},
			{Selector: "input[type='submit'][value*='Log']", Goto: base + "/home"},
		},
	}
	// the portal keeps dropping the session on registrations
	screens[base+hub.PathMyRegistrations].RedirectTo = base + hub.PathLogin
	h := newHarness(t, screens)

	_, err := h.session.FullSync(context.Background())
	require.ErrorIs(t, err, hub.ErrSessionExpired)
	require.NotContains(t, h.page().Navigations, base+hub.PathUpcomingEvents)
}

func TestSessionOpensBrowserOnce(t *testing.T) {
	h := newHarness(t, portalScreens())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.session.Registrations(ctx)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), atomic.LoadInt32(&h.opens))

	require.NoError(t, h.session.Close(ctx))
	_, err := h.session.MyGroups(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&h.opens))
}

func TestSessionGateHonorsContext(t *testing.T) {
	h := newHarness(t, portalScreens())
	require.NoError(t, h.session.acquire(context.Background()))
	defer h.session.release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.session.Login(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int32(0), atomic.LoadInt32(&h.opens))
}

func TestSessionOpenFailure(t *testing.T) {
	cfg := hub.DefaultConfig()
	s := New(func(ctx context.Context) (browser.Page, error) {
		return nil, errors.New("chrome not found")
	}, cfg, telemetry.NewRecorderAPI(), chrono.StandardImpl{})

	_, err := s.Login(context.Background())
	require.ErrorContains(t, err, "chrome not found")
}

func TestResolveEvent(t *testing.T) {
	listing := hub.EventListing{
		Links: []hub.Link{{Name: "Home", Href: base + "/home"}},
		Events: []hub.Card{
			{Links: []hub.Link{{Name: "Quarterly Summit - Irvine", Href: base + "/event?id=9"}}},
			{Links: []hub.Link{{Name: "Acme Mixer", Href: base + "/event?id=7"}}},
		},
	}

	link, _, ok := ResolveEvent(listing, "acme mixer")
	require.True(t, ok)
	require.Equal(t, base+"/event?id=7", link.Href)

	_, _, ok = ResolveEvent(listing, "Golf Tournament Fundraiser")
	require.False(t, ok)
}

func TestRegisterByName(t *testing.T) {
	screens := portalScreens()
	screens[base+hub.PathEventSearch].Elements = []*browsertest.Element{
		{Selector: `input[type="search"]`},
	}
	screens[base+"/event?id=9"] = &browsertest.Screen{
		Elements: []*browsertest.Element{
			{Selector: "button", Label: "Register", Goto: base + "/done"},
		},
	}
	screens[base+"/done"] = &browsertest.Screen{HTML: "<p>You are registered</p>"}
	h := newHarness(t, screens)

	result, err := h.session.RegisterByName(context.Background(), "Quarterly Summit")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "Quarterly Summit", h.page().Fills[`input[type="search"]`])
}
