// Package browsertest provides a scripted in-memory browser.Page.
package browsertest

import (
	"context"
	"hubsync-backend/internal/browser"
	"hubsync-backend/lib/htmlutil"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Screen is what the fake renders for one URL.
type Screen struct {
	HTML string
	// Text overrides the innerText derived from HTML.
	Text string
	// RedirectTo makes navigating here land on another URL.
	RedirectTo string
	Elements   []*Element
}

// Element is a scripted control, it is matched against a descriptor by
// exact selector string and the descriptor's text rule.
type Element struct {
	Selector string
	// Label is the rendered text of the element.
	Label string
	// OnClick runs when the element is clicked, Goto is applied after it.
	OnClick func(p *Page)
	Goto    string
	// OnEnter runs when enter is pressed inside the element.
	OnEnter func(p *Page)

	page *Page
}

type Page struct {
	mu      sync.Mutex
	Screens map[string]*Screen
	current string
	closed  bool

	// NavigateErr, if set, is returned by every Navigate.
	NavigateErr error
	// NavigateBlocks makes Navigate hang like a stalled page load until ctx
	// is done.
	NavigateBlocks bool
	// WaitErr, if set, is returned by every WaitIdle.
	WaitErr error
	// URLErr, if set, is returned by every URL.
	URLErr error
	// OnScreenshot runs after a screenshot is recorded, with the page
	// locked like OnClick.
	OnScreenshot func(p *Page, path string)

	Navigations []string
	Clicks      []string
	Fills       map[string]string
	Selected    map[string]string
	Enters      []string
	Screenshots []string
}

func NewPage(screens map[string]*Screen) *Page {
	return &Page{
		Screens:  screens,
		Fills:    map[string]string{},
		Selected: map[string]string{},
	}
}

// Goto switches the current screen without recording a navigation.
func (p *Page) Goto(url string) {
	p.current = url
	if s, ok := p.Screens[url]; ok && s.RedirectTo != "" {
		p.current = s.RedirectTo
	}
}

func (p *Page) screen() *Screen {
	s, ok := p.Screens[p.current]
	if !ok {
		return &Screen{}
	}
	return s
}

func (p *Page) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Page) ClickCount(selector string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.Clicks {
		if c == selector {
			n++
		}
	}
	return n
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	blocks := p.NavigateBlocks && !p.closed
	p.mu.Unlock()
	if blocks {
		<-ctx.Done()
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.Navigations = append(p.Navigations, url)
	p.Goto(url)
	return nil
}

func (p *Page) WaitIdle(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.WaitErr
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.URLErr != nil {
		return "", p.URLErr
	}
	return p.current, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screen().HTML, nil
}

func (p *Page) InnerText(ctx context.Context) (string, error) {
	p.mu.Lock()
	s := p.screen()
	p.mu.Unlock()
	if s.Text != "" {
		return s.Text, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.HTML))
	if err != nil {
		return "", err
	}
	return htmlutil.SelectionText(doc.Find("body")), nil
}

func (p *Page) Find(ctx context.Context, d browser.Descriptor) (browser.Element, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, false, browser.ErrClosed
	}
	for _, el := range p.screen().Elements {
		if el.Selector != d.Selector || !d.MatchText(el.Label) {
			continue
		}
		el.page = p
		return el, true, nil
	}
	return nil, false, nil
}

func (p *Page) Screenshot(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Screenshots = append(p.Screenshots, path)
	if p.OnScreenshot != nil {
		p.OnScreenshot(p, path)
	}
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Clicks = append(p.Clicks, e.Selector)
	if e.OnClick != nil {
		e.OnClick(p)
	}
	if e.Goto != "" {
		p.Goto(e.Goto)
	}
	return nil
}

func (e *Element) Fill(ctx context.Context, value string) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Fills[e.Selector] = value
	return nil
}

func (e *Element) PressEnter(ctx context.Context) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Enters = append(p.Enters, e.Selector)
	if e.OnEnter != nil {
		e.OnEnter(p)
	}
	return nil
}

func (e *Element) SelectOption(ctx context.Context, label string) error {
	p := e.page
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Selected[e.Selector] = label
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.Label, nil
}
