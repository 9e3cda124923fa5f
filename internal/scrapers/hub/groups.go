package hub

import (
	"context"
	"hubsync-backend/lib/htmlutil"
	"hubsync-backend/lib/textutil"
)

const report_extract_groups = "extract.groups"

// MyGroups sweeps the affiliations page for group containers.
func (s *Scraper) MyGroups(ctx context.Context) (GroupListing, error) {
	ctx, span := tracer.Start(ctx, "MyGroups")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathMyGroups), s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return GroupListing{}, err
	}
	s.screenshot(ctx, "my_groups")

	doc, base, err := s.document(ctx)
	if err != nil {
		recordErr(span, err)
		return GroupListing{}, err
	}
	text, err := s.innerText(ctx)
	if err != nil {
		recordErr(span, err)
		return GroupListing{}, err
	}

	listing := GroupListing{
		Groups:   groupsSweep.cards(doc, base),
		Links:    pageLinks(doc, base),
		PageText: textutil.Truncate(text, groupsTextCap),
	}
	s.tel.ReportCount(report_extract_groups, int64(len(listing.Groups)))
	return listing, nil
}

// PersonalSnapshot reads the member dashboard: its text and every link that
// has text.
func (s *Scraper) PersonalSnapshot(ctx context.Context) (PersonalSnapshot, error) {
	ctx, span := tracer.Start(ctx, "PersonalSnapshot")
	defer span.End()

	err := s.visit(ctx, s.cfg.url(PathSnapshot), s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return PersonalSnapshot{}, err
	}
	s.screenshot(ctx, "personal_snapshot")

	doc, base, err := s.document(ctx)
	if err != nil {
		recordErr(span, err)
		return PersonalSnapshot{}, err
	}
	text, err := s.innerText(ctx)
	if err != nil {
		recordErr(span, err)
		return PersonalSnapshot{}, err
	}

	links := []Link{}
	for _, a := range htmlutil.GetAnchors(base, doc.Find("a[href]")) {
		if a.Name == "" {
			continue
		}
		a.Name = textutil.Truncate(a.Name, pageLinkTextCap)
		links = append(links, a)
	}
	return PersonalSnapshot{
		PageText: textutil.Truncate(text, pageTextCap),
		Links:    links,
	}, nil
}
