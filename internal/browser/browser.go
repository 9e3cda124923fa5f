// Package browser is the narrow surface the portal scrapers drive a real
// browser through: navigation, network idle waits, element lookup by
// descriptor, click/fill, rendered text and screenshots.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hubsync-backend/lib/textutil"
)

var (
	// ErrTimeout is returned when a bounded wait runs out.
	ErrTimeout = errors.New("browser: timed out")
	// ErrClosed is returned by any operation on a closed page.
	ErrClosed = errors.New("browser: page closed")
)

// Element is a handle to one located DOM element.
type Element interface {
	Click(ctx context.Context) error
	// Fill replaces the current value of an input.
	Fill(ctx context.Context, value string) error
	PressEnter(ctx context.Context) error
	// SelectOption selects the <option> of a <select> whose label is label.
	SelectOption(ctx context.Context, label string) error
	Text(ctx context.Context) (string, error)
}

// Page is a single browser tab, every method must be called sequentially.
type Page interface {
	// Navigate returns ErrTimeout when the page does not start loading in
	// time.
	Navigate(ctx context.Context, url string) error
	// WaitIdle blocks until the document has loaded and the page's scripts
	// have gone idle, or timeout elapses, the latter returns ErrTimeout. It
	// does not watch network traffic.
	WaitIdle(ctx context.Context, timeout time.Duration) error
	URL(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	// InnerText is the rendered text of the document body.
	InnerText(ctx context.Context) (string, error)
	// Find returns the first element matching d without waiting for one to
	// appear, the boolean is false when nothing matches.
	Find(ctx context.Context, d Descriptor) (Element, bool, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Opener creates the single page a session drives.
type Opener func(ctx context.Context) (Page, error)

// Descriptor locates an element by CSS selector and an optional text filter.
// Without Exact the element text must contain Text (case-insensitive),
// with Exact the trimmed text must equal it.
type Descriptor struct {
	Selector string
	Text     string
	Exact    bool
}

func (d Descriptor) String() string {
	switch {
	case d.Text == "":
		return d.Selector
	case d.Exact:
		return fmt.Sprintf("%s[text=%q]", d.Selector, d.Text)
	default:
		return fmt.Sprintf("%s[text~%q]", d.Selector, d.Text)
	}
}

// MatchText applies the text filter of d to the rendered text of an element.
func (d Descriptor) MatchText(text string) bool {
	if d.Text == "" {
		return true
	}
	text = textutil.CollapseSpace(text)
	if d.Exact {
		return text == d.Text
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(d.Text))
}

// Chain is an ordered list of descriptors, earlier entries win.
type Chain []Descriptor

// First returns the element located by the first descriptor in the chain
// that matches anything, along with that descriptor.
func (c Chain) First(ctx context.Context, page Page) (Element, Descriptor, bool, error) {
	for _, d := range c {
		el, ok, err := page.Find(ctx, d)
		if err != nil {
			return nil, d, false, err
		}
		if ok {
			return el, d, true, nil
		}
	}
	return nil, Descriptor{}, false, nil
}

// Sel is a descriptor with only a selector.
func Sel(selector string) Descriptor {
	return Descriptor{Selector: selector}
}

// HasText is a descriptor whose element text must contain text.
func HasText(selector, text string) Descriptor {
	return Descriptor{Selector: selector, Text: text}
}

// TextIs is a descriptor whose element text must equal text.
func TextIs(selector, text string) Descriptor {
	return Descriptor{Selector: selector, Text: text, Exact: true}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
