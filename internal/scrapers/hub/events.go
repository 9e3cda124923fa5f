package hub

import (
	"context"
	"hubsync-backend/internal/browser"
	"hubsync-backend/lib/textutil"
)

const (
	report_extract_events = "extract.events"
	report_search_input   = "search.input"
)

var eventSearchInputChain = browser.Chain{
	browser.Sel(`input[type="search"]`),
	browser.Sel(`input[type="text"][placeholder*="search" i]`),
	browser.Sel(`input[name*="search" i]`),
	browser.Sel(`input[class*="search" i]`),
}

func (s *Scraper) eventListing(ctx context.Context, sweep containerSweep) (EventListing, error) {
	doc, base, err := s.document(ctx)
	if err != nil {
		return EventListing{}, err
	}
	text, err := s.innerText(ctx)
	if err != nil {
		return EventListing{}, err
	}
	listing := EventListing{
		Events:   sweep.cards(doc, base),
		Links:    pageLinks(doc, base),
		PageText: textutil.Truncate(text, pageTextCap),
	}
	if len(listing.Events) == 0 {
		s.tel.ReportWarning(report_extract_events, "no event containers matched")
	}
	s.tel.ReportCount(report_extract_events, int64(len(listing.Events)))
	return listing, nil
}

// UpcomingEvents sweeps the upcoming events page for event-like containers.
func (s *Scraper) UpcomingEvents(ctx context.Context) (EventListing, error) {
	ctx, span := tracer.Start(ctx, "UpcomingEvents")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathUpcomingEvents), s.cfg.Settle.DynamicPage)
	if err != nil {
		recordErr(span, err)
		return EventListing{}, err
	}
	s.screenshot(ctx, "upcoming_events")

	listing, err := s.eventListing(ctx, upcomingEventsSweep)
	if err != nil {
		recordErr(span, err)
	}
	return listing, err
}

// SearchEvents opens event search, enters term when it is not empty and
// sweeps the results.
func (s *Scraper) SearchEvents(ctx context.Context, term string) (EventListing, error) {
	ctx, span := tracer.Start(ctx, "SearchEvents")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathEventSearch), s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return EventListing{}, err
	}

	if term != "" {
		input, _, ok, err := eventSearchInputChain.First(ctx, s.page)
		if err != nil {
			recordErr(span, err)
			return EventListing{}, err
		}
		if ok {
			err = s.submitQuery(ctx, input, term)
			if err != nil {
				recordErr(span, err)
				return EventListing{}, err
			}
		} else {
			s.tel.ReportWarning(report_search_input, "event search has no search input", term)
		}
	}
	s.screenshot(ctx, "event_search")

	listing, err := s.eventListing(ctx, eventSearchSweep)
	if err != nil {
		recordErr(span, err)
	}
	return listing, err
}

// submitQuery fills input, presses enter and waits for results to render.
func (s *Scraper) submitQuery(ctx context.Context, input browser.Element, query string) error {
	err := input.Fill(ctx, query)
	if err != nil {
		return err
	}
	err = input.PressEnter(ctx)
	if err != nil {
		return err
	}
	return browser.Sleep(ctx, s.cfg.Settle.Search)
}
