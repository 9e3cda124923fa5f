package hub

import (
	"context"
	"hubsync-backend/internal/browser/browsertest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const acmeBlock = `My Registrations
Acme Mixer, Virtual - June 2024
Monday, June 3, 2024 9:00 AM
Monday, June 3, 2024 10:00 AM
Pacific
Chapter Meeting
Member`

func TestParseRegistrations(t *testing.T) {
	events := ParseRegistrations(acmeBlock)
	diff := cmp.Diff([]EventRecord{{
		EventName:   "Acme Mixer",
		Location:    LocationVirtual,
		MonthYear:   "June 2024",
		StartDate:   "Monday, June 3, 2024 9:00 AM",
		EndDate:     "Monday, June 3, 2024 10:00 AM",
		Timezone:    "Pacific",
		EventType:   "Chapter Meeting",
		GuestStatus: "Member",
	}}, events)
	if diff != "" {
		t.Fatal(diff)
	}
	require.True(t, strings.HasPrefix(events[0].StartDate, "Monday"))
}

func TestParseRegistrationsRequiresWeekday(t *testing.T) {
	text := strings.ReplaceAll(acmeBlock, "Monday, June 3", "June 3")
	require.Empty(t, ParseRegistrations(text))
}

func TestParseRegistrationsLocations(t *testing.T) {
	text := `Quarterly Summit, In-Person & Virtual - July 2024
  Thursday, July 11, 2024 8:00 AM  
Thursday, July 11, 2024 11:00 AM
Pacific
Summit
Guest
Board Lunch, In-Person - August 2024
Friday, August 2, 2024 12:00 PM`

	events := ParseRegistrations(text)
	require.Len(t, events, 2)
	require.Equal(t, LocationHybrid, events[0].Location)
	require.Equal(t, "Thursday, July 11, 2024 8:00 AM", events[0].StartDate)
	require.Equal(t, LocationInPerson, events[1].Location)
	// the block is cut short by the end of the page
	require.Equal(t, "", events[1].EndDate)
	require.Equal(t, "", events[1].GuestStatus)
}

func TestParsePageInfo(t *testing.T) {
	require.Equal(t, PageInfo{Current: 2, Total: 5}, ParsePageInfo("Results\nPage 2  of 5\n"))
	require.Equal(t, PageInfo{Current: 1, Total: 1}, ParsePageInfo("no pagination here"))
	require.False(t, ParsePageInfo("Page 3 of 3").HasNext())
}

func TestRegistrationsDedupeAcrossPages(t *testing.T) {
	first := testBase + PathMyRegistrations
	second := first + "?page=2"
	f := newFixture(t, authed(map[string]*browsertest.Screen{
		first: {
			HTML: `<div>` + acmeBlock + `</div>
				<a href="/viewregistration?id=1">View</a>
				<a href="/addtocalendar?id=1">Add to Calendar</a>
				<a href="/elsewhere">Elsewhere</a>`,
			Text: acmeBlock + "\nPage 1 of 2",
			Elements: []*browsertest.Element{
				{Selector: "a", Label: "Next >", Goto: second},
			},
		},
		second: {
			HTML: `<a href="/viewregistration?id=1">View</a>`,
			Text: acmeBlock + "\nAcme Mixer, Virtual - July 2024\nMonday, July 1, 2024 9:00 AM\n\n\n\n\nPage 2 of 2",
		},
	}))

	result, err := f.scraper.Registrations(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Equal(t, 2, result.PagesScraped)
	require.Equal(t, "Monday, June 3, 2024 9:00 AM", result.Events[0].StartDate)
	require.Equal(t, "Monday, July 1, 2024 9:00 AM", result.Events[1].StartDate)
	require.Equal(t, []Link{
		{Name: "View", Href: testBase + "/viewregistration?id=1"},
		{Name: "Add to Calendar", Href: testBase + "/addtocalendar?id=1"},
	}, result.ActionLinks)
}

func TestPaginationStopsAtBound(t *testing.T) {
	registrations := testBase + PathMyRegistrations
	f := newFixture(t, authed(map[string]*browsertest.Screen{
		registrations: {
			Text: acmeBlock + "\nPage 1 of 99",
			Elements: []*browsertest.Element{
				{Selector: "a", Label: "Next"},
			},
		},
	}))

	result, err := f.scraper.Registrations(context.Background())
	require.NoError(t, err)
	require.Equal(t, f.scraper.cfg.MaxRegistrationPages, result.PagesScraped)
	require.Equal(t, f.scraper.cfg.MaxRegistrationPages-1, f.page.ClickCount("a"))
	require.Equal(t, 1, result.Total)
}

func TestPaginationStopsWithoutNextControl(t *testing.T) {
	registrations := testBase + PathMyRegistrations
	f := newFixture(t, authed(map[string]*browsertest.Screen{
		registrations: {Text: acmeBlock + "\nPage 1 of 3"},
	}))

	result, err := f.scraper.Registrations(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.PagesScraped)
	require.True(t, f.recorder.HasReport("warning", report_paginate))
}

func TestPaginationFollowsPageNumber(t *testing.T) {
	first := testBase + PathMyRegistrations
	second := first + "?p=2"
	f := newFixture(t, authed(map[string]*browsertest.Screen{
		first: {
			Text: "Page 1 of 2",
			Elements: []*browsertest.Element{
				{Selector: "a", Label: "12"},
				{Selector: "a", Label: "2", Goto: second},
			},
		},
		second: {Text: "Page 2 of 2"},
	}))

	result, err := f.scraper.Registrations(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, result.PagesScraped)
	require.Equal(t, second, f.page.CurrentURL())
	require.NotNil(t, result.Events)
}
