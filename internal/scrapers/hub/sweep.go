package hub

import (
	"hubsync-backend/lib/htmlutil"
	"hubsync-backend/lib/textutil"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// containerSweep collects every element matching a broad selector set whose
// text length falls strictly between minLen and maxLen. The portal renders
// lists with shifting class names, so the sweep casts a wide net and leaves
// interpretation to the consumer.
type containerSweep struct {
	selectors []string
	minLen    int
	maxLen    int
	textCap   int
}

func (c containerSweep) cards(doc *goquery.Document, base *url.URL) []Card {
	cards := []Card{}
	doc.Find(strings.Join(c.selectors, ", ")).Each(func(_ int, sel *goquery.Selection) {
		text := htmlutil.InnerText(sel.Nodes[0])
		n := textutil.RuneLen(text)
		if n <= c.minLen || n >= c.maxLen {
			return
		}
		cards = append(cards, Card{
			Text:  textutil.Truncate(text, c.textCap),
			Links: htmlutil.GetAnchors(base, sel.Find("a[href]")),
		})
	})
	return cards
}

const (
	pageLinkMinLen  = 2
	pageLinkTextCap = 200
	pageTextCap     = 10000
	groupsTextCap   = 8000
	cardTextCap     = 800
	cardMaxLen      = 2000
)

// pageLinks lists every anchor on the page with meaningful text.
func pageLinks(doc *goquery.Document, base *url.URL) []Link {
	links := []Link{}
	for _, a := range htmlutil.GetAnchors(base, doc.Find("a[href]")) {
		if textutil.RuneLen(a.Name) <= pageLinkMinLen {
			continue
		}
		a.Name = textutil.Truncate(a.Name, pageLinkTextCap)
		links = append(links, a)
	}
	return links
}

var upcomingEventsSweep = containerSweep{
	selectors: []string{
		`[class*="event"]`, `[class*="Event"]`, `[class*="card"]`, `[class*="Card"]`,
		`[class*="tile"]`, `[class*="Tile"]`, `[class*="list-item"]`, `[class*="ListItem"]`,
		`table tbody tr`, `.slds-card`, `.slds-tile`, `article`,
		`[class*="upcoming"]`, `[class*="Upcoming"]`, `[class*="row"]`,
	},
	minLen:  20,
	maxLen:  cardMaxLen,
	textCap: cardTextCap,
}

var eventSearchSweep = containerSweep{
	selectors: []string{
		`[class*="event"]`, `[class*="Event"]`, `[class*="card"]`, `[class*="Card"]`,
		`[class*="tile"]`, `[class*="Tile"]`, `[class*="list-item"]`, `[class*="ListItem"]`,
		`table tbody tr`, `.slds-card`, `.slds-tile`, `article`,
		`[class*="result"]`, `[class*="Result"]`,
	},
	minLen:  20,
	maxLen:  cardMaxLen,
	textCap: cardTextCap,
}

var groupsSweep = containerSweep{
	selectors: []string{
		`[class*="group"]`, `[class*="Group"]`, `[class*="affiliation"]`,
		`[class*="card"]`, `[class*="Card"]`, `[class*="tile"]`, `[class*="Tile"]`,
		`table tbody tr`, `.slds-card`, `.slds-tile`, `article`,
	},
	minLen:  10,
	maxLen:  cardMaxLen,
	textCap: cardTextCap,
}
