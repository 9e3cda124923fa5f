package browser

import (
	"context"
	"errors"
	"fmt"
	"hubsync-backend/internal/components/assert"
	"hubsync-backend/internal/components/telemetry"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"
)

const (
	report_rod_launch     = "rod.launch"
	report_rod_navigate   = "rod.navigate"
	report_rod_viewport   = "rod.viewport"
	report_rod_close      = "rod.close"
	report_rod_screenshot = "rod.screenshot"
)

type Options struct {
	// Bin is the chrome executable, empty lets rod find or download one.
	Bin string
	// ControlURL connects to an already running browser instead of
	// launching one, it accepts anything launcher.ResolveURL does.
	ControlURL string
	Headless   bool
	SlowMotion time.Duration
	// ProfileDir keeps cookies between runs so a session survives restarts.
	ProfileDir     string
	ViewportWidth  int
	ViewportHeight int
	// Flags are chrome switches of the form "name" or "name=value".
	Flags []string
	// ActionInterval is the minimum spacing between navigations and clicks.
	ActionInterval time.Duration
	// NavigationTimeout bounds a single navigation.
	NavigationTimeout time.Duration
	// ActionTimeout bounds every single element interaction and page read.
	ActionTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Headless:          true,
		ProfileDir:        ".browser-profile",
		ViewportWidth:     1280,
		ViewportHeight:    900,
		Flags:             []string{"disable-blink-features=AutomationControlled"},
		ActionInterval:    250 * time.Millisecond,
		NavigationTimeout: 30 * time.Second,
		ActionTimeout:     15 * time.Second,
	}
}

type RodPage struct {
	browser *rod.Browser
	page    *rod.Page
	limiter *rate.Limiter
	opts    Options
	tel     telemetry.API
}

// NewRodOpener returns an Opener that launches (or connects to) chrome with
// opts every time it is called.
func NewRodOpener(opts Options, tel telemetry.API) Opener {
	return func(ctx context.Context) (Page, error) {
		return Launch(ctx, opts, tel)
	}
}

func resolveControlURL(opts Options) (string, error) {
	if opts.ControlURL != "" {
		return launcher.ResolveURL(opts.ControlURL)
	}

	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.ProfileDir != "" {
		err := os.MkdirAll(opts.ProfileDir, 0700)
		if err != nil {
			return "", err
		}
		l = l.UserDataDir(opts.ProfileDir)
	}
	for _, raw := range opts.Flags {
		name, val, hasVal := strings.Cut(strings.TrimLeft(raw, "-"), "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}
	return l.Launch()
}

// Launch starts the browser and returns its first tab. The browser is not
// bound to ctx, it lives until Close is called.
func Launch(ctx context.Context, opts Options, tel telemetry.API) (*RodPage, error) {
	assert.NotNil(tel, "telemetry")
	tel = telemetry.NewScopedAPI("browser", tel)

	controlURL, err := resolveControlURL(opts)
	if err != nil {
		tel.ReportBroken(report_rod_launch, err)
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if opts.SlowMotion > 0 {
		browser = browser.SlowMotion(opts.SlowMotion)
	}
	err = browser.Connect()
	if err != nil {
		tel.ReportBroken(report_rod_launch, err)
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	var page *rod.Page
	pages, err := browser.Pages()
	if err == nil && len(pages) > 0 {
		page = pages[0]
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			_ = browser.Close()
			return nil, fmt.Errorf("create page: %w", err)
		}
	}

	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		err = proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.ViewportWidth,
			Height:            opts.ViewportHeight,
			DeviceScaleFactor: 1,
			Mobile:            false,
		}.Call(page)
		if err != nil {
			tel.ReportWarning(report_rod_viewport, err)
		}
	}

	limit := rate.Inf
	if opts.ActionInterval > 0 {
		limit = rate.Every(opts.ActionInterval)
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = DefaultOptions().NavigationTimeout
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = DefaultOptions().ActionTimeout
	}

	tel.ReportDebug("browser ready", controlURL, opts.Headless)
	return &RodPage{
		browser: browser,
		page:    page,
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
		tel:     tel,
	}, nil
}

func mapErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// bounded returns the page bound to ctx with ActionTimeout on top. Callers
// release it with CancelTimeout.
func (p *RodPage) bounded(ctx context.Context) *rod.Page {
	return p.page.Context(ctx).Timeout(p.opts.ActionTimeout)
}

func (p *RodPage) Navigate(ctx context.Context, url string) error {
	err := p.limiter.Wait(ctx)
	if err != nil {
		return err
	}
	p.tel.ReportDebug(report_rod_navigate, url)
	page := p.page.Context(ctx).Timeout(p.opts.NavigationTimeout)
	defer page.CancelTimeout()
	return mapErr(ctx, page.Navigate(url))
}

func (p *RodPage) WaitIdle(ctx context.Context, timeout time.Duration) error {
	page := p.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()
	err := page.WaitLoad()
	if err == nil {
		err = page.WaitIdle(timeout)
	}
	return mapErr(ctx, err)
}

func (p *RodPage) URL(ctx context.Context) (string, error) {
	page := p.bounded(ctx)
	defer page.CancelTimeout()
	info, err := page.Info()
	if err != nil {
		return "", mapErr(ctx, err)
	}
	return info.URL, nil
}

func (p *RodPage) HTML(ctx context.Context) (string, error) {
	page := p.bounded(ctx)
	defer page.CancelTimeout()
	html, err := page.HTML()
	return html, mapErr(ctx, err)
}

func (p *RodPage) InnerText(ctx context.Context) (string, error) {
	page := p.bounded(ctx)
	defer page.CancelTimeout()
	res, err := page.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return "", mapErr(ctx, err)
	}
	return res.Value.Str(), nil
}

func (p *RodPage) Find(ctx context.Context, d Descriptor) (Element, bool, error) {
	page := p.bounded(ctx)
	defer page.CancelTimeout()
	els, err := page.Elements(d.Selector)
	if err != nil {
		return nil, false, mapErr(ctx, err)
	}
	for _, el := range els {
		if d.Text != "" {
			text, err := el.Context(ctx).Text()
			if err != nil {
				continue
			}
			if !d.MatchText(text) {
				continue
			}
		}
		return rodElement{el: el, page: p}, true, nil
	}
	return nil, false, nil
}

func (p *RodPage) Screenshot(ctx context.Context, path string) error {
	page := p.bounded(ctx)
	defer page.CancelTimeout()
	data, err := page.Screenshot(true, nil)
	if err != nil {
		p.tel.ReportWarning(report_rod_screenshot, path, err)
		return mapErr(ctx, err)
	}
	err = os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (p *RodPage) Close() error {
	var errs []error
	if p.opts.ControlURL != "" {
		// a browser we did not launch stays up, only our tab goes away
		errs = append(errs, p.page.Close())
	} else {
		errs = append(errs, p.browser.Close())
	}
	err := errors.Join(errs...)
	if err != nil {
		p.tel.ReportWarning(report_rod_close, err)
	}
	return err
}

type rodElement struct {
	el   *rod.Element
	page *RodPage
}

// bounded returns the element bound to ctx with ActionTimeout on top.
// Callers release it with CancelTimeout.
func (e rodElement) bounded(ctx context.Context) *rod.Element {
	return e.el.Context(ctx).Timeout(e.page.opts.ActionTimeout)
}

func (e rodElement) Click(ctx context.Context) error {
	err := e.page.limiter.Wait(ctx)
	if err != nil {
		return err
	}
	el := e.bounded(ctx)
	defer el.CancelTimeout()
	return mapErr(ctx, el.Click(proto.InputMouseButtonLeft, 1))
}

func (e rodElement) Fill(ctx context.Context, value string) error {
	el := e.bounded(ctx)
	defer el.CancelTimeout()
	err := el.SelectAllText()
	if err != nil {
		return mapErr(ctx, err)
	}
	return mapErr(ctx, el.Input(value))
}

func (e rodElement) PressEnter(ctx context.Context) error {
	el := e.bounded(ctx)
	defer el.CancelTimeout()
	return mapErr(ctx, el.Type(input.Enter))
}

func (e rodElement) SelectOption(ctx context.Context, label string) error {
	el := e.bounded(ctx)
	defer el.CancelTimeout()
	return mapErr(ctx, el.Select([]string{label}, true, rod.SelectorTypeText))
}

func (e rodElement) Text(ctx context.Context) (string, error) {
	el := e.bounded(ctx)
	defer el.CancelTimeout()
	text, err := el.Text()
	return text, mapErr(ctx, err)
}
