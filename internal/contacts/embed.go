package contacts

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	StartMarker = "// ── Embedded Contacts (auto-generated) ──"
	EndMarker   = "// ── End Embedded Contacts ──"
	Anchor      = "// ── Groups Data ──"
)

var ErrNoAnchor = errors.New("no embedded contacts block or groups data anchor in page")

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
)

// Escape makes s safe inside a single quoted script string.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func contactLiteral(c Contact) string {
	source := c.Source
	if source == "" {
		source = SourceHub
	}
	return fmt.Sprintf(
		"  {name:'%s',company:'%s',profession:'%s',groups:'%s',notes:'%s',source:'%s',added:'%s'}",
		Escape(c.Name),
		Escape(c.Company),
		Escape(c.Profession),
		Escape(c.Groups),
		Escape(c.Notes),
		Escape(source),
		Escape(c.Added),
	)
}

// ArrayLiteral renders contacts as the EMBEDDED_CONTACTS constant.
func ArrayLiteral(contacts []Contact) string {
	rows := make([]string, len(contacts))
	for i, c := range contacts {
		rows[i] = contactLiteral(c)
	}
	return "const EMBEDDED_CONTACTS = [\n" + strings.Join(rows, ",\n") + "\n];"
}

// Embed replaces every marked contacts block in page, or inserts one before
// the groups data anchor when the page has no block yet.
func Embed(page string, contacts []Contact) (string, error) {
	block := StartMarker + "\n" + ArrayLiteral(contacts) + "\n" + EndMarker

	var b strings.Builder
	rest, replaced := page, false
	for {
		start := strings.Index(rest, StartMarker)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start:], EndMarker)
		if end < 0 {
			break
		}
		end += start + len(EndMarker)
		b.WriteString(rest[:start])
		b.WriteString(block)
		rest = rest[end:]
		replaced = true
	}
	if replaced {
		b.WriteString(rest)
		return b.String(), nil
	}

	anchor := strings.Index(page, Anchor)
	if anchor < 0 {
		return "", ErrNoAnchor
	}
	return page[:anchor] + block + "\n\n" + page[anchor:], nil
}

// EmbedFile rewrites the page at pagePath with the contacts from
// contactsPath and returns how many were embedded.
func EmbedFile(pagePath, contactsPath string) (int, error) {
	contacts, err := ReadJSON(contactsPath)
	if err != nil {
		return 0, err
	}
	page, err := os.ReadFile(pagePath)
	if err != nil {
		return 0, err
	}
	out, err := Embed(string(page), contacts)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", pagePath, err)
	}
	err = os.WriteFile(pagePath, []byte(out), 0644)
	if err != nil {
		return 0, err
	}
	return len(contacts), nil
}
