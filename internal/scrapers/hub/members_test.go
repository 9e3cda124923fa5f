package hub

import (
	"context"
	"hubsync-backend/internal/browser/browsertest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, raw string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestParseMembersTableRows(t *testing.T) {
	doc := parseHTML(t, `<table><tbody>
		<tr><td><a href="/p/1">Jane Doe</a></td><td>Doe LLP</td><td>Attorney</td><td>Group A<br>Group B</td></tr>
		<tr><td>x</td></tr>
	</tbody></table>`)
	base, _ := url.Parse(testBase + PathMemberSearch)

	members := ParseMembers(doc, base)
	diff := cmp.Diff([]MemberRecord{{
		Name:       "Jane Doe",
		Company:    "Doe LLP",
		Profession: "Attorney",
		Groups:     []string{"Group A", "Group B"},
		Links:      []Link{{Name: "Jane Doe", Href: testBase + "/p/1"}},
	}}, members)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseMembersCards(t *testing.T) {
	doc := parseHTML(t, `<div class="member-card">
		<div>John Smith</div>
		<div>Smith Realty</div>
		<div>Real Estate</div>
		<div>john@smith.example</div>
		<div>(555) 123-4567</div>
		<div>Westside Group</div>
	</div>`)

	members := ParseMembers(doc, nil)
	require.Len(t, members, 1)
	diff := cmp.Diff(MemberRecord{
		Name:       "John Smith",
		Company:    "Smith Realty",
		Profession: "Real Estate",
		Groups:     []string{"Westside Group"},
		Email:      "john@smith.example",
		Phone:      "(555) 123-4567",
		Links:      []Link{},
	}, members[0])
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestDedupeMembers(t *testing.T) {
	members := DedupeMembers([]MemberRecord{
		{Name: "Jane Doe", Company: "first"},
		{Name: "  jane   DOE ", Company: "second"},
		{Name: "   "},
		{Name: "John Smith"},
	})
	require.Len(t, members, 2)
	require.Equal(t, "first", members[0].Company)
	require.Equal(t, "John Smith", members[1].Name)
}

func TestFilterRegion(t *testing.T) {
	members := []MemberRecord{
		{Name: "Jane", Groups: []string{"Orange County Breakfast"}},
		{Name: "John", Groups: []string{"San Diego Lunch"}},
	}
	require.Len(t, filterRegion(members, "orange county"), 1)
	require.Len(t, filterRegion(members, "  SAN DIEGO "), 1)
	require.Len(t, filterRegion(members, ""), 2)
}

func TestSearchMembersFallsBackToTextInput(t *testing.T) {
	f := newFixture(t, authed(map[string]*browsertest.Screen{
		testBase + PathMemberSearch: {
			HTML: `<table><tbody>
				<tr><td>Jane Doe</td><td>Doe LLP</td></tr>
				<tr><td>JANE DOE</td><td>Duplicate LLP</td></tr>
			</tbody></table>`,
			Elements: []*browsertest.Element{
				{Selector: `input[type="text"]`},
				{Selector: "button", Label: "Search"},
			},
		},
	}))

	members, err := f.scraper.SearchMembers(context.Background(), "doe", "")
	require.NoError(t, err)
	require.Equal(t, "doe", f.page.Fills[`input[type="text"]`])
	require.Equal(t, 1, f.page.ClickCount("button"))
	require.Len(t, members, 1)
	require.Equal(t, "Doe LLP", members[0].Company)
}
