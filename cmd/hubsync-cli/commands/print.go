package commands

import (
	"fmt"
	"hubsync-backend/internal/contacts"
	"hubsync-backend/internal/scrapers/hub"
	"hubsync-backend/lib/textutil"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func heading(w io.Writer, title string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}

func printLinks(w io.Writer, links []hub.Link, limit int) {
	if len(links) == 0 || limit == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Link", "Href"})
	for i, link := range links {
		if i == limit {
			break
		}
		t.AppendRow(table.Row{textutil.Truncate(link.Name, 60), link.Href})
	}
	t.Render()
}

func printRegistrations(w io.Writer, regs hub.Registrations) {
	fmt.Fprintf(w, "Total events: %d across %d pages\n", regs.Total, regs.PagesScraped)
	if len(regs.Events) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Location", "Event", "Start", "Type", "Status"})
	for _, e := range regs.Events {
		t.AppendRow(table.Row{e.Location, e.EventName, e.StartDate, e.EventType, e.GuestStatus})
	}
	t.Render()
}

func printListing(w io.Writer, noun string, cards int, links []hub.Link, pageText string, textLimit, linkLimit int) {
	fmt.Fprintf(w, "%s cards found: %d\n", noun, cards)
	fmt.Fprintf(w, "Links found: %d\n", len(links))
	fmt.Fprintf(w, "Page text (first %d chars):\n%s\n", textLimit, textutil.Truncate(pageText, textLimit))
	printLinks(w, links, linkLimit)
}

func printSync(w io.Writer, snap hub.SyncSnapshot) {
	heading(w, "PERSONAL SNAPSHOT")
	fmt.Fprintf(w, "Page text (first 300 chars):\n%s\n", textutil.Truncate(snap.Snapshot.PageText, 300))

	heading(w, "MY REGISTRATIONS")
	printRegistrations(w, snap.Registrations)

	heading(w, "UPCOMING EVENTS")
	printListing(w, "Event", len(snap.UpcomingEvents.Events), snap.UpcomingEvents.Links, snap.UpcomingEvents.PageText, 500, 15)

	heading(w, "EVENT SEARCH")
	printListing(w, "Event", len(snap.EventSearch.Events), snap.EventSearch.Links, snap.EventSearch.PageText, 800, 20)

	heading(w, "MY GROUPS")
	printListing(w, "Group", len(snap.MyGroups.Groups), snap.MyGroups.Links, snap.MyGroups.PageText, 500, 0)
}

func printMembers(w io.Writer, members []hub.MemberRecord) {
	fmt.Fprintf(w, "Members found: %d\n", len(members))
	if len(members) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Company", "Profession", "Groups", "Email", "Phone"})
	for _, m := range members {
		t.AppendRow(table.Row{m.Name, m.Company, m.Profession, strings.Join(m.Groups, ", "), m.Email, m.Phone})
	}
	t.Render()
}

func printContacts(w io.Writer, list []contacts.Contact) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Name", "Company", "Profession", "Groups"})
	for _, c := range list {
		t.AppendRow(table.Row{c.Name, c.Company, c.Profession, textutil.Truncate(c.Groups, 40)})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(list)})
	t.Render()
}

func printRegisterResult(w io.Writer, result hub.RegisterResult) {
	if result.Success {
		fmt.Fprintf(w, "Registered: %s\n", result.URL)
	} else {
		fmt.Fprintf(w, "Registration not confirmed: %s\n", result.URL)
		if result.Error != "" {
			fmt.Fprintf(w, "Reason: %s\n", result.Error)
		}
	}
	fmt.Fprintf(w, "Page text (first 300 chars):\n%s\n", textutil.Truncate(result.PageText, 300))
}
