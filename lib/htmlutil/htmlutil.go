package htmlutil

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetText concatenates every text node under node verbatim.
func GetText(node *html.Node) string {
	var buffer strings.Builder
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *strings.Builder) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Tbody: true, atom.Td: true, atom.Tfoot: true,
	atom.Th: true, atom.Thead: true, atom.Tr: true, atom.Ul: true,
}

var hiddenElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
	atom.Template: true, atom.Iframe: true, atom.Head: true,
}

type textWriter struct {
	out          strings.Builder
	pendingSpace bool
	pendingBreak bool
}

func (w *textWriter) atLineStart() bool {
	s := w.out.String()
	return len(s) == 0 || s[len(s)-1] == '\n'
}

func (w *textWriter) lineBreak() {
	if w.out.Len() > 0 {
		w.pendingBreak = true
	}
}

func (w *textWriter) text(s string) {
	for _, r := range s {
		if unicode.IsSpace(r) {
			w.pendingSpace = true
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		if w.pendingBreak {
			w.out.WriteByte('\n')
			w.pendingBreak = false
		} else if w.pendingSpace && !w.atLineStart() {
			w.out.WriteByte(' ')
		}
		w.pendingSpace = false
		w.out.WriteRune(r)
	}
}

func (w *textWriter) walk(node *html.Node) {
	switch node.Type {
	case html.TextNode:
		w.text(node.Data)
		return
	case html.ElementNode:
		if hiddenElements[node.DataAtom] {
			return
		}
		if node.DataAtom == atom.Br {
			w.lineBreak()
			w.pendingSpace = false
			return
		}
	}

	block := node.Type == html.ElementNode && blockElements[node.DataAtom]
	if block {
		w.lineBreak()
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		w.walk(child)
	}
	if block {
		w.lineBreak()
	}
}

// InnerText approximates what a browser renders as the innerText of node:
// block elements and <br> start new lines, runs of whitespace collapse to a
// single space, and every line is trimmed. Empty lines are dropped so that
// line offsets stay stable regardless of how deeply the markup is nested.
func InnerText(node *html.Node) string {
	if node == nil {
		return ""
	}
	w := &textWriter{}
	w.walk(node)
	return w.out.String()
}

// SelectionText is InnerText over every node in sel, joined by newlines.
func SelectionText(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	for _, n := range sel.Nodes {
		text := InnerText(n)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

type Anchor struct {
	Name string `json:"text"`
	Href string `json:"href"`
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' {
			return r
		}
		return -1
	}, s)
}

// GetAnchors resolves the href of every node in sel against base, anchors
// whose href is missing or unparsable are skipped.
func GetAnchors(base *url.URL, sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		hasHref := false
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				hasHref = true
				break
			}
		}
		if !hasHref {
			continue
		}

		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := InnerText(n)
		name = removeNonPrintable(name)
		name = strings.Trim(name, " \t\n")
		name = innerWhitespace.ReplaceAllString(name, " ")

		anchors = append(anchors, Anchor{
			Name: name,
			Href: link.String(),
		})
	}
	return anchors
}
