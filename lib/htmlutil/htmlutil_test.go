package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestInnerText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<html><head><title>x</title><style>.a{}</style></head><body>
			<div class="card">
				<h3>Acme   Mixer</h3>
				<p>Monday,<br>June 3</p>
				<script>var hidden = 1;</script>
				<span>inline</span> <b>text</b>
			</div>
		</body></html>`))
	require.NoError(t, err)

	text := InnerText(doc.Find(".card").Nodes[0])
	require.Equal(t, "Acme Mixer\nMonday,\nJune 3\ninline text", text)
	require.Equal(t, "", InnerText(nil))
}

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<a href="/event?id=1">  View
			Event </a>
		<a>no href</a>
		<a href="https://other.example/x">Other</a>`))
	require.NoError(t, err)

	base, _ := url.Parse("https://hub.example.com/upcoming-events")
	anchors := GetAnchors(base, doc.Find("a"))
	require.Equal(t, []Anchor{
		{Name: "View Event", Href: "https://hub.example.com/event?id=1"},
		{Name: "Other", Href: "https://other.example/x"},
	}, anchors)
}
