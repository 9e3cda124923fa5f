package commands

import (
	"bytes"
	"hubsync-backend/internal/scrapers/hub"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintSync(t *testing.T) {
	var out bytes.Buffer
	printSync(&out, hub.SyncSnapshot{
		Snapshot: hub.PersonalSnapshot{PageText: strings.Repeat("x", 400)},
		Registrations: hub.Registrations{
			Events:       []hub.EventRecord{{EventName: "Acme Mixer", Location: hub.LocationVirtual, StartDate: "Monday, June 3, 2024 9:00 AM"}},
			Total:        1,
			PagesScraped: 2,
		},
		UpcomingEvents: hub.EventListing{
			Links: []hub.Link{{Name: "Acme Mixer", Href: "https://hub.test/event?id=7"}},
		},
		MyGroups: hub.GroupListing{
			Groups: []hub.Card{{Text: "Westside"}},
			Links:  []hub.Link{{Name: "Westside", Href: "https://hub.test/g/1"}},
		},
	})
	text := out.String()

	require.Contains(t, text, "MY REGISTRATIONS")
	require.Contains(t, text, "Total events: 1 across 2 pages")
	require.Contains(t, text, "Acme Mixer")
	require.Contains(t, text, "https://hub.test/event?id=7")
	require.Contains(t, text, "Group cards found: 1")
	require.NotContains(t, text, "https://hub.test/g/1")
	require.NotContains(t, text, strings.Repeat("x", 301))
}

func TestPrintRegisterResult(t *testing.T) {
	var out bytes.Buffer
	printRegisterResult(&out, hub.RegisterResult{URL: "https://hub.test/e", Error: "registration was not confirmed"})
	require.Contains(t, out.String(), "Registration not confirmed: https://hub.test/e")
	require.Contains(t, out.String(), "Reason: registration was not confirmed")
}
