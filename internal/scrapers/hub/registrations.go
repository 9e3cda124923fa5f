package hub

import (
	"context"
	"hubsync-backend/lib/htmlutil"
	"regexp"
	"strings"
)

const report_extract_registrations = "extract.registrations"

var (
	registrationHeaderRegex = regexp.MustCompile(`^(.+?),\s*(Virtual|In-Person|In-Person & Virtual)\s*-\s*(.+)$`)
	weekdayRegex            = regexp.MustCompile(`^(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`)
)

const registrationActionSelector = `a[href*="viewregistration"], a[href*="addtocalendar"]`

// ParseRegistrations reads registration blocks out of rendered page text.
// A block is a header line "<name>, <location> - <month year>" followed by
// start date, end date, timezone, event type and guest status lines. Headers
// whose next line does not start with a weekday are not registrations.
func ParseRegistrations(text string) []EventRecord {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	at := func(i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	var events []EventRecord
	for i, line := range lines {
		match := registrationHeaderRegex.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		startDate := at(i + 1)
		if !weekdayRegex.MatchString(startDate) {
			continue
		}
		events = append(events, EventRecord{
			EventName:   strings.TrimSpace(match[1]),
			Location:    LocationMode(match[2]),
			MonthYear:   strings.TrimSpace(match[3]),
			StartDate:   startDate,
			EndDate:     at(i + 2),
			Timezone:    at(i + 3),
			EventType:   at(i + 4),
			GuestStatus: at(i + 5),
		})
	}
	return events
}

// dedupeEvents keeps the first record of every (name, start date).
func dedupeEvents(events []EventRecord) []EventRecord {
	seen := map[string]struct{}{}
	out := make([]EventRecord, 0, len(events))
	for _, e := range events {
		key := e.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func dedupeLinks(links []Link) []Link {
	seen := map[string]struct{}{}
	out := make([]Link, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l.Href]; ok {
			continue
		}
		seen[l.Href] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Registrations reads every page of the member's registered meetings.
func (s *Scraper) Registrations(ctx context.Context) (Registrations, error) {
	ctx, span := tracer.Start(ctx, "Registrations")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathMyRegistrations), s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return Registrations{}, err
	}
	s.screenshot(ctx, "my_registrations")

	var actionLinks []Link
	events, pages, err := paginate(
		ctx, s, "registrations", s.cfg.MaxRegistrationPages,
		func(ctx context.Context) ([]EventRecord, PageInfo, error) {
			text, err := s.innerText(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			doc, base, err := s.document(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			actionLinks = append(actionLinks, htmlutil.GetAnchors(base, doc.Find(registrationActionSelector))...)

			parsed := ParseRegistrations(text)
			if len(parsed) == 0 {
				s.tel.ReportWarning(report_extract_registrations, "no registrations on page")
			}
			return parsed, ParsePageInfo(text), nil
		},
	)
	if err != nil {
		recordErr(span, err)
		return Registrations{}, err
	}

	events = dedupeEvents(events)
	s.tel.ReportCount(report_extract_registrations, int64(len(events)))
	return Registrations{
		Events:       events,
		Total:        len(events),
		PagesScraped: pages,
		ActionLinks:  dedupeLinks(actionLinks),
	}, nil
}
