package hub

import (
	"context"
	"hubsync-backend/internal/browser"
	"hubsync-backend/lib/htmlutil"
	"hubsync-backend/lib/textutil"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const report_extract_members = "extract.members"

const memberRowSelector = `table tbody tr, [class*="member"], [class*="Member"], [class*="contact"], [class*="result"]`

var (
	memberSearchInputChain = browser.Chain{
		browser.Sel(`input[type="search"]`),
		browser.Sel(`input[type="text"][placeholder*="search" i]`),
		browser.Sel(`input[name*="search" i]`),
		browser.Sel(`input[class*="search" i]`),
		browser.Sel(`input[placeholder*="keyword" i]`),
		browser.Sel(`input[placeholder*="name" i]`),
	}
	memberSearchButtonChain = browser.Chain{
		browser.HasText("button", "Search"),
		browser.Sel(`input[value*="Search"]`),
		browser.Sel(`button[type="submit"]`),
	}

	phoneLineRegex   = regexp.MustCompile(`^\(?\d{3}`)
	leadingDigitLine = regexp.MustCompile(`^\d`)
)

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(htmlutil.InnerText(cells.Get(i)))
}

// parseMemberRow reads a table row positionally (name, company, profession,
// groups) or, for card layouts, line by line.
func parseMemberRow(row *goquery.Selection, text string, links []Link) MemberRecord {
	cells := row.Find("td")
	if cells.Length() >= 2 {
		return MemberRecord{
			Name:       cellText(cells, 0),
			Company:    cellText(cells, 1),
			Profession: cellText(cells, 2),
			Groups:     textutil.Lines(cellText(cells, 3)),
			Links:      links,
		}
	}

	lines := textutil.Lines(text)
	member := MemberRecord{Groups: []string{}, Links: links}
	fields := []*string{&member.Name, &member.Company, &member.Profession}
	for i, f := range fields {
		if i < len(lines) {
			*f = lines[i]
		}
	}
	for _, line := range lines {
		if member.Email == "" && strings.Contains(line, "@") {
			member.Email = line
		}
		if member.Phone == "" && phoneLineRegex.MatchString(line) {
			member.Phone = line
		}
	}
	if len(lines) > 3 {
		for _, line := range lines[3:] {
			if strings.Contains(line, "@") || leadingDigitLine.MatchString(line) || phoneLineRegex.MatchString(line) {
				continue
			}
			member.Groups = append(member.Groups, line)
		}
	}
	return member
}

// ParseMembers extracts member rows from a directory result page in
// document order, duplicates included.
func ParseMembers(doc *goquery.Document, base *url.URL) []MemberRecord {
	members := []MemberRecord{}
	doc.Find(memberRowSelector).Each(func(_ int, row *goquery.Selection) {
		text := htmlutil.InnerText(row.Nodes[0])
		n := textutil.RuneLen(text)
		if n < 5 || n > cardMaxLen {
			return
		}
		links := htmlutil.GetAnchors(base, row.Find("a[href]"))
		members = append(members, parseMemberRow(row, text, links))
	})
	return members
}

// DedupeMembers keeps the first member of every identity key and drops
// members without a name.
func DedupeMembers(members []MemberRecord) []MemberRecord {
	seen := map[string]struct{}{}
	out := make([]MemberRecord, 0, len(members))
	for _, m := range members {
		key := textutil.IdentityKey(m.Name)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// filterRegion keeps members with region somewhere in their details.
func filterRegion(members []MemberRecord, region string) []MemberRecord {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return members
	}
	out := make([]MemberRecord, 0, len(members))
	for _, m := range members {
		haystack := strings.Join(append([]string{m.Name, m.Company, m.Profession}, m.Groups...), "\n")
		if strings.Contains(strings.ToLower(haystack), region) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Scraper) submitMemberQuery(ctx context.Context, query string) error {
	input, _, ok, err := memberSearchInputChain.First(ctx, s.page)
	if err != nil {
		return err
	}
	if ok {
		return s.submitQuery(ctx, input, query)
	}

	input, ok, err = s.page.Find(ctx, browser.Sel(`input[type="text"]`))
	if err != nil {
		return err
	}
	if !ok {
		s.tel.ReportWarning(report_search_input, "member search has no text input", query)
		return nil
	}
	err = input.Fill(ctx, query)
	if err != nil {
		return err
	}

	button, _, ok, err := memberSearchButtonChain.First(ctx, s.page)
	if err != nil {
		return err
	}
	if ok {
		err = button.Click(ctx)
	} else {
		err = input.PressEnter(ctx)
	}
	if err != nil {
		return err
	}
	return browser.Sleep(ctx, s.cfg.Settle.Search)
}

// SearchMembers searches the member directory by keyword and reads up to
// MaxMemberPages result pages. A non-empty region narrows the results to
// members mentioning it. Region is a case-insensitive filter over the records
// already read, the portal search itself ignores it.
func (s *Scraper) SearchMembers(ctx context.Context, query, region string) ([]MemberRecord, error) {
	ctx, span := tracer.Start(ctx, "SearchMembers")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathMemberSearch), s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	if query != "" {
		err = s.submitMemberQuery(ctx, query)
		if err != nil {
			recordErr(span, err)
			return nil, err
		}
	}
	s.screenshot(ctx, "member_search_"+textutil.Truncate(query, 20))

	members, _, err := paginate(
		ctx, s, "members", s.cfg.MaxMemberPages,
		func(ctx context.Context) ([]MemberRecord, PageInfo, error) {
			doc, base, err := s.document(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			text, err := s.innerText(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			return ParseMembers(doc, base), ParsePageInfo(text), nil
		},
	)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	members = filterRegion(DedupeMembers(members), region)
	s.tel.ReportCount(report_extract_members, int64(len(members)))
	return members, nil
}
