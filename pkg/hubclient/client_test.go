package hubclient

import (
	"context"
	"errors"
	"fmt"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/internal/server"
	"hubsync-backend/internal/snapshot"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type stubPortal struct {
	err  error
	snap hub.SyncSnapshot
}

func (s *stubPortal) Login(context.Context) (bool, error) { return s.err == nil, s.err }

func (s *stubPortal) FullSync(context.Context) (hub.SyncSnapshot, error) { return s.snap, s.err }

func (s *stubPortal) Registrations(context.Context) (hub.Registrations, error) {
	return s.snap.Registrations, s.err
}

func (s *stubPortal) UpcomingEvents(context.Context) (hub.EventListing, error) {
	return s.snap.UpcomingEvents, s.err
}

func (s *stubPortal) PersonalSnapshot(context.Context) (hub.PersonalSnapshot, error) {
	return s.snap.Snapshot, s.err
}

func (s *stubPortal) SearchEvents(_ context.Context, term string) (hub.EventListing, error) {
	return hub.EventListing{PageText: "results for " + term}, s.err
}

func (s *stubPortal) MyGroups(context.Context) (hub.GroupListing, error) {
	return s.snap.MyGroups, s.err
}

func (s *stubPortal) Register(_ context.Context, eventURL string) (hub.RegisterResult, error) {
	return hub.RegisterResult{Success: true, URL: eventURL}, s.err
}

func (s *stubPortal) SearchMembers(_ context.Context, query, region string) ([]hub.MemberRecord, error) {
	return []hub.MemberRecord{{Name: query, Company: region}}, s.err
}

func setup(t *testing.T) (*Client, *stubPortal) {
	gin.SetMode(gin.TestMode)
	portal := &stubPortal{snap: hub.SyncSnapshot{
		LoggedIn:  true,
		Timestamp: time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		Registrations: hub.Registrations{
			Events: []hub.EventRecord{{EventName: "Acme Mixer", StartDate: "Monday, June 3, 2024 9:00 AM"}},
			Total:  1,
		},
	}}
	store := snapshot.NewStore(filepath.Join(t.TempDir(), "hub_sync_data.json"))
	srv := httptest.NewServer(server.New(portal, store, "", telemetry.NewRecorderAPI()).Handler())
	t.Cleanup(srv.Close)

	return New(Options{BaseURL: srv.URL + "/"}, telemetry.NewRecorderAPI()), portal
}

func TestSyncThenCached(t *testing.T) {
	client, portal := setup(t)
	ctx := context.Background()

	_, err := client.Cached(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	snap, err := client.Sync(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(portal.snap, snap); diff != "" {
		t.Fatalf("sync mismatch (-want +got):\n%s", diff)
	}

	cached, err := client.Cached(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(portal.snap, cached); diff != "" {
		t.Fatalf("cached mismatch (-want +got):\n%s", diff)
	}
}

func TestCalls(t *testing.T) {
	client, _ := setup(t)
	ctx := context.Background()

	login, err := client.Login(ctx)
	require.NoError(t, err)
	require.Equal(t, LoginResult{Success: true, Message: "Logged in"}, login)

	regs, err := client.Registrations(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, regs.Total)

	listing, err := client.SearchEvents(ctx, "summit & co")
	require.NoError(t, err)
	require.Equal(t, "results for summit & co", listing.PageText)

	members, err := client.SearchMembers(ctx, "Pat", "Irvine")
	require.NoError(t, err)
	require.Equal(t, []hub.MemberRecord{{Name: "Pat", Company: "Irvine"}}, members)

	result, err := client.Register(ctx, "https://hub.test/event?id=7")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "https://hub.test/event?id=7", result.URL)
}

func TestAPIErrors(t *testing.T) {
	client, portal := setup(t)
	ctx := context.Background()

	portal.err = fmt.Errorf("%w: still on login page", hub.ErrSession)
	_, err := client.Registrations(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.True(t, apiErr.Unauthorized())
	require.Contains(t, apiErr.Detail, "failed to log into ProVisors Hub")

	portal.err = errors.New("page crashed")
	_, err = client.MyGroups(ctx)
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 500, apiErr.Status)
	require.Equal(t, "page crashed", apiErr.Detail)
}
