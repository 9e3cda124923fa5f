// Package session owns the single portal browser session and serializes
// every caller through it.
package session

import (
	"context"
	"fmt"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/components/assert"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/lib/textutil"

	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("internal/session")

const (
	report_open      = "open"
	report_full_sync = "full-sync"
	report_close     = "close"
	report_resolve   = "resolve-event"
)

// MinEventSimilarity is how close an event link must be to the requested
// name for RegisterByName to act on it.
const MinEventSimilarity = 0.85

type Session struct {
	gate chan struct{}

	open  browser.Opener
	cfg   hub.Config
	tel   telemetry.API
	clock chrono.API

	page    browser.Page
	scraper *hub.Scraper
}

func New(open browser.Opener, cfg hub.Config, tel telemetry.API, clock chrono.API) *Session {
	assert.NotNil(open, "opener")
	assert.NotNil(tel, "telemetry")
	assert.NotNil(clock, "clock")

	return &Session{
		gate:  make(chan struct{}, 1),
		open:  open,
		cfg:   cfg,
		tel:   telemetry.NewScopedAPI("session", tel),
		clock: clock,
	}
}

func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() {
	<-s.gate
}

// scraperLocked returns the scraper, launching the browser on first use. The
// gate must be held.
func (s *Session) scraperLocked(ctx context.Context) (*hub.Scraper, error) {
	if s.scraper != nil {
		return s.scraper, nil
	}
	page, err := s.open(ctx)
	if err != nil {
		s.tel.ReportBroken(report_open, err)
		return nil, fmt.Errorf("open browser: %w", err)
	}
	s.page = page
	s.scraper = hub.NewScraper(page, s.cfg, s.tel, s.clock)
	return s.scraper, nil
}

// with runs fn with exclusive access to the scraper.
func with[T any](ctx context.Context, s *Session, name string, fn func(ctx context.Context, scraper *hub.Scraper) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()

	var zero T
	err := s.acquire(ctx)
	if err != nil {
		return zero, err
	}
	defer s.release()

	scraper, err := s.scraperLocked(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	out, err := fn(ctx, scraper)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}
	return out, nil
}

func (s *Session) Login(ctx context.Context) (bool, error) {
	return with(ctx, s, "Login", func(ctx context.Context, scraper *hub.Scraper) (bool, error) {
		return scraper.Login(ctx)
	})
}

// FullSync logs in and reads every portal page in a fixed order, the first
// failure aborts the whole sync.
func (s *Session) FullSync(ctx context.Context) (hub.SyncSnapshot, error) {
	return with(ctx, s, "FullSync", func(ctx context.Context, scraper *hub.Scraper) (hub.SyncSnapshot, error) {
		err := scraper.EnsureLoggedIn(ctx)
		if err != nil {
			return hub.SyncSnapshot{}, err
		}

		snapshot, err := scraper.PersonalSnapshot(ctx)
		if err != nil {
			s.tel.ReportBroken(report_full_sync, "snapshot", err)
			return hub.SyncSnapshot{}, err
		}
		registrations, err := scraper.Registrations(ctx)
		if err != nil {
			s.tel.ReportBroken(report_full_sync, "registrations", err)
			return hub.SyncSnapshot{}, err
		}
		upcoming, err := scraper.UpcomingEvents(ctx)
		if err != nil {
			s.tel.ReportBroken(report_full_sync, "upcoming events", err)
			return hub.SyncSnapshot{}, err
		}
		search, err := scraper.SearchEvents(ctx, "")
		if err != nil {
			s.tel.ReportBroken(report_full_sync, "event search", err)
			return hub.SyncSnapshot{}, err
		}
		groups, err := scraper.MyGroups(ctx)
		if err != nil {
			s.tel.ReportBroken(report_full_sync, "groups", err)
			return hub.SyncSnapshot{}, err
		}

		return hub.SyncSnapshot{
			LoggedIn:       true,
			Timestamp:      s.clock.Now(),
			Snapshot:       snapshot,
			Registrations:  registrations,
			UpcomingEvents: upcoming,
			EventSearch:    search,
			MyGroups:       groups,
		}, nil
	})
}

func (s *Session) Registrations(ctx context.Context) (hub.Registrations, error) {
	return with(ctx, s, "Registrations", func(ctx context.Context, scraper *hub.Scraper) (hub.Registrations, error) {
		return scraper.Registrations(ctx)
	})
}

func (s *Session) UpcomingEvents(ctx context.Context) (hub.EventListing, error) {
	return with(ctx, s, "UpcomingEvents", func(ctx context.Context, scraper *hub.Scraper) (hub.EventListing, error) {
		return scraper.UpcomingEvents(ctx)
	})
}

func (s *Session) SearchEvents(ctx context.Context, term string) (hub.EventListing, error) {
	return with(ctx, s, "SearchEvents", func(ctx context.Context, scraper *hub.Scraper) (hub.EventListing, error) {
		return scraper.SearchEvents(ctx, term)
	})
}

func (s *Session) MyGroups(ctx context.Context) (hub.GroupListing, error) {
	return with(ctx, s, "MyGroups", func(ctx context.Context, scraper *hub.Scraper) (hub.GroupListing, error) {
		return scraper.MyGroups(ctx)
	})
}

func (s *Session) PersonalSnapshot(ctx context.Context) (hub.PersonalSnapshot, error) {
	return with(ctx, s, "PersonalSnapshot", func(ctx context.Context, scraper *hub.Scraper) (hub.PersonalSnapshot, error) {
		return scraper.PersonalSnapshot(ctx)
	})
}

func (s *Session) SearchMembers(ctx context.Context, query, region string) ([]hub.MemberRecord, error) {
	return with(ctx, s, "SearchMembers", func(ctx context.Context, scraper *hub.Scraper) ([]hub.MemberRecord, error) {
		return scraper.SearchMembers(ctx, query, region)
	})
}

func (s *Session) HarvestProfession(ctx context.Context, profession string) ([]hub.DirectoryMember, error) {
	return with(ctx, s, "HarvestProfession", func(ctx context.Context, scraper *hub.Scraper) ([]hub.DirectoryMember, error) {
		return scraper.HarvestProfession(ctx, profession)
	})
}

func (s *Session) Register(ctx context.Context, eventURL string) (hub.RegisterResult, error) {
	return with(ctx, s, "Register", func(ctx context.Context, scraper *hub.Scraper) (hub.RegisterResult, error) {
		return scraper.Register(ctx, eventURL)
	})
}

// ResolveEvent picks the link most similar to name out of an event listing.
func ResolveEvent(listing hub.EventListing, name string) (hub.Link, float64, bool) {
	var candidates []hub.Link
	candidates = append(candidates, listing.Links...)
	for _, card := range listing.Events {
		candidates = append(candidates, card.Links...)
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	idx, score := textutil.BestMatch(name, names)
	if idx < 0 || score < MinEventSimilarity {
		return hub.Link{}, score, false
	}
	return candidates[idx], score, true
}

// RegisterByName searches events for name and registers for the closest
// match, it fails when nothing is similar enough.
func (s *Session) RegisterByName(ctx context.Context, name string) (hub.RegisterResult, error) {
	return with(ctx, s, "RegisterByName", func(ctx context.Context, scraper *hub.Scraper) (hub.RegisterResult, error) {
		listing, err := scraper.SearchEvents(ctx, name)
		if err != nil {
			return hub.RegisterResult{}, err
		}
		link, score, ok := ResolveEvent(listing, name)
		if !ok {
			s.tel.ReportWarning(report_resolve, name, score)
			return hub.RegisterResult{}, fmt.Errorf("no event link matches %q (best similarity %.2f)", name, score)
		}
		s.tel.ReportDebug("resolved event", name, link.Name, link.Href, score)
		return scraper.Register(ctx, link.Href)
	})
}

// Close shuts the browser down, the next operation launches a new one.
func (s *Session) Close(ctx context.Context) error {
	err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer s.release()

	if s.page == nil {
		return nil
	}
	err = s.page.Close()
	if err != nil {
		s.tel.ReportWarning(report_close, err)
	}
	s.page = nil
	s.scraper = nil
	return err
}
