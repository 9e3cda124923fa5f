// scraper.go holds the portal session and the navigation helpers every
// extractor in this package shares.

package hub

import (
	"context"
	"errors"
	"fmt"
	"hubsync-backend/internal/browser"
	"hubsync-backend/internal/components/assert"
	"hubsync-backend/internal/components/chrono"
	"hubsync-backend/internal/components/telemetry"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = telemetry.Tracer("internal/scrapers/hub")

const (
	report_navigate       = "navigate"
	report_session_bounce = "session.bounce"
	report_screenshot     = "screenshot"
	report_page_read      = "page.read"
)

// Scraper drives one authenticated portal page. It is not safe for
// concurrent use, callers serialize access to it.
type Scraper struct {
	page  browser.Page
	cfg   Config
	tel   telemetry.API
	clock chrono.API

	authenticated   bool
	authenticatedAt time.Time
}

func NewScraper(page browser.Page, cfg Config, tel telemetry.API, clock chrono.API) *Scraper {
	assert.NotNil(page, "page")
	assert.NotNil(tel, "telemetry")
	assert.NotNil(clock, "clock")
	assert.NotEmptyStr(cfg.BaseURL, "base url")

	return &Scraper{
		page:  page,
		cfg:   cfg,
		tel:   telemetry.NewScopedAPI("hub_scraper", tel),
		clock: clock,
	}
}

// Authenticated reports the cached login flag, it does not verify anything.
func (s *Scraper) Authenticated() bool {
	return s.authenticated
}

func (s *Scraper) Config() Config {
	return s.cfg
}

func (s *Scraper) Page() browser.Page {
	return s.page
}

func timeoutErr(err error, what string) error {
	if errors.Is(err, browser.ErrTimeout) {
		return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, what, err)
	}
	return err
}

func recordErr(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// waitSettled waits for the page to go idle, then the fixed settle delay.
func (s *Scraper) waitSettled(ctx context.Context, timeout, settle time.Duration, what string) error {
	err := s.page.WaitIdle(ctx, timeout)
	if err != nil {
		return timeoutErr(err, what)
	}
	return browser.Sleep(ctx, settle)
}

// goTo navigates without any login checks. The navigation itself is bounded
// by NavigationTimeout whatever deadline ctx carries.
func (s *Scraper) goTo(ctx context.Context, target string, settle time.Duration) error {
	navCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.cfg.NavigationTimeout > 0 {
		navCtx, cancel = context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	}
	defer cancel()
	err := s.page.Navigate(navCtx, target)
	if err != nil {
		s.tel.ReportBroken(report_navigate, err, target)
		if ctx.Err() == nil && errors.Is(navCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: %w", ErrNavigationTimeout, target, err)
		}
		return timeoutErr(err, target)
	}
	return s.waitSettled(ctx, s.cfg.NavigationTimeout, settle, target)
}

// visit navigates to a page behind the login. When the portal bounces to the
// login page the session logs in again and retries once.
func (s *Scraper) visit(ctx context.Context, target string, settle time.Duration) error {
	err := s.EnsureLoggedIn(ctx)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		err = s.goTo(ctx, target, settle)
		if err != nil {
			return err
		}
		current, err := s.page.URL(ctx)
		if err != nil {
			return err
		}
		if !s.cfg.isLoginURL(current) || s.cfg.isLoginURL(target) {
			return nil
		}

		s.authenticated = false
		if attempt > 0 {
			return fmt.Errorf("%w: %s redirected to login", ErrSessionExpired, target)
		}
		s.tel.ReportWarning(report_session_bounce, target)
		err = s.EnsureLoggedIn(ctx)
		if err != nil {
			return err
		}
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)

// screenshot saves a full page capture named <name>_<timestamp>.png, failing
// to take one is only worth a warning.
func (s *Scraper) screenshot(ctx context.Context, name string) string {
	if s.cfg.ScreenshotDir == "" {
		return ""
	}
	name = unsafeFilename.ReplaceAllString(name, "_")
	path := filepath.Join(
		s.cfg.ScreenshotDir,
		fmt.Sprintf("%s_%s.png", name, s.clock.Now().Format("20060102_150405")),
	)
	err := s.page.Screenshot(ctx, path)
	if err != nil {
		s.tel.ReportWarning(report_screenshot, name, err)
		return ""
	}
	return path
}

// document parses the current page, the returned url is the base for
// resolving relative links.
func (s *Scraper) document(ctx context.Context) (*goquery.Document, *url.URL, error) {
	raw, err := s.page.HTML(ctx)
	if err != nil {
		s.tel.ReportBroken(report_page_read, err)
		return nil, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		s.tel.ReportBroken(report_page_read, err)
		return nil, nil, err
	}

	current, err := s.page.URL(ctx)
	if err != nil {
		return nil, nil, err
	}
	base, err := url.Parse(current)
	if err != nil {
		base = nil
	}
	return doc, base, nil
}

func (s *Scraper) innerText(ctx context.Context) (string, error) {
	text, err := s.page.InnerText(ctx)
	if err != nil {
		s.tel.ReportBroken(report_page_read, err)
	}
	return text, err
}
