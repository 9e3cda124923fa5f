package hub

import (
	"context"
	"fmt"
	"hubsync-backend/internal/browser"
	"hubsync-backend/lib/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const report_directory = "directory"

// Professions are the directory filters a contact harvest walks through.
var Professions = []string{
	"Real Estate",
	"Banking & Finance",
	"Attorney",
	"Accountant",
	"Insurance",
}

var directorySubmitChain = browser.Chain{
	browser.Sel(`input[type="submit"][value="Search"]`),
	browser.Sel(`input[type="submit"]`),
}

func trimmedText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(htmlutil.InnerText(sel.Nodes[0]))
}

// ParseDirectoryCards reads the labelled card-detail lists of a directory
// results page. Cards without a member name are skipped.
func ParseDirectoryCards(doc *goquery.Document) []DirectoryMember {
	members := []DirectoryMember{}
	doc.Find("ul.card-detail").Each(func(_ int, card *goquery.Selection) {
		fields := map[string]string{}
		card.Find("li").Each(func(_ int, li *goquery.Selection) {
			label := li.Find("label.card-detail-label").First()
			value := li.Find("span.card-detail-value").First()
			if label.Length() == 0 || value.Length() == 0 {
				return
			}
			// the member name is a link to the profile
			link := value.Find("a").First()
			if link.Length() > 0 {
				fields[trimmedText(label)] = trimmedText(link)
				return
			}
			fields[trimmedText(label)] = trimmedText(value)
		})
		if fields["Member Info"] == "" {
			return
		}
		members = append(members, DirectoryMember{
			Name:       fields["Member Info"],
			Profession: fields["Profession"],
			Focus:      fields["Professional Focus"],
			Email:      fields["Email"],
			Company:    fields["Company"],
			HomeGroup:  fields["Home Group"],
			Groups:     fields["Groups"],
			Bio:        fields["Short Bio"],
			Phone:      fields["Account Phone"],
		})
	})
	return members
}

// openDirectoryForm gets past the directory landing page to the search form.
func (s *Scraper) openDirectoryForm(ctx context.Context) error {
	err := s.visit(ctx, s.cfg.url(PathDirectory), s.cfg.Settle.Navigate)
	if err != nil {
		return err
	}
	landing, ok, err := s.page.Find(ctx, browser.Sel(`input[type="submit"][value="Member Search"]`))
	if err != nil {
		return err
	}
	if !ok {
		// already on the form
		return nil
	}
	err = landing.Click(ctx)
	if err != nil {
		return err
	}
	return s.waitSettled(ctx, s.cfg.NavigationTimeout, s.cfg.Settle.Click, "directory form")
}

// HarvestProfession runs a directory search filtered by profession and reads
// every result page.
func (s *Scraper) HarvestProfession(ctx context.Context, profession string) ([]DirectoryMember, error) {
	ctx, span := tracer.Start(ctx, "HarvestProfession")
	defer span.End()

	err := s.openDirectoryForm(ctx)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	filter, ok, err := s.page.Find(ctx, browser.Sel("select"))
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	if ok {
		err = filter.SelectOption(ctx, profession)
		if err != nil {
			recordErr(span, err)
			return nil, err
		}
		err = browser.Sleep(ctx, s.cfg.Settle.Select)
		if err != nil {
			return nil, err
		}
	} else {
		s.tel.ReportWarning(report_directory, "no profession filter", profession)
	}

	submit, _, ok, err := directorySubmitChain.First(ctx, s.page)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	if !ok {
		err = fmt.Errorf("%w: directory search button", ErrElementNotFound)
		s.tel.ReportBroken(report_directory, err, profession)
		recordErr(span, err)
		return nil, err
	}
	err = submit.Click(ctx)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	err = s.waitSettled(ctx, s.cfg.NavigationTimeout, s.cfg.Settle.Click, "directory search")
	if err != nil {
		recordErr(span, err)
		return nil, err
	}

	members, _, err := paginate(
		ctx, s, "directory", s.cfg.MaxDirectoryPages,
		func(ctx context.Context) ([]DirectoryMember, PageInfo, error) {
			doc, _, err := s.document(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			text, err := s.innerText(ctx)
			if err != nil {
				return nil, PageInfo{}, err
			}
			return ParseDirectoryCards(doc), ParsePageInfo(text), nil
		},
	)
	if err != nil {
		recordErr(span, err)
		return nil, err
	}
	return members, nil
}
