package hub

import (
	"context"
	"errors"
	"hubsync-backend/internal/browser"
	"hubsync-backend/lib/textutil"
)

const report_register = "register"

const (
	registerTextCap = 3000
	resultTextCap   = 500
)

var (
	registerChain = browser.Chain{
		browser.HasText("button", "Register"),
		browser.HasText("a", "Register"),
		browser.Sel(`input[value*="Register"]`),
		browser.Sel(`[class*="register"] button`),
		browser.Sel(`a[href*="register"]`),
		browser.HasText("button", "RSVP"),
		browser.HasText("a", "RSVP"),
	}
	confirmChain = browser.Chain{
		browser.HasText("button", "Confirm"),
		browser.HasText("button", "Submit"),
		browser.HasText("button", "Complete"),
		browser.Sel(`input[value*="Confirm"]`),
		browser.HasText("button", "Checkout"),
		browser.HasText("a", "Confirm"),
	}
	confirmationVocabulary = []string{
		"confirmed",
		"registered",
		"registration complete",
		"success",
		"thank you",
		"you are registered",
	}
)

const noRegisterControl = "No Register/RSVP button found on page"

var errEmptyEventURL = errors.New("event url is required")

// clickAndRead clicks el, waits for the page to settle and returns the
// beginning of its text.
func (s *Scraper) clickAndRead(ctx context.Context, el browser.Element, what string) (string, error) {
	err := el.Click(ctx)
	if err != nil {
		return "", timeoutErr(err, what)
	}
	err = s.waitSettled(ctx, s.cfg.NavigationTimeout, s.cfg.Settle.Click, what)
	if err != nil {
		return "", err
	}
	text, err := s.innerText(ctx)
	if err != nil {
		return "", err
	}
	return textutil.Truncate(text, registerTextCap), nil
}

// Register opens an event page and clicks through its registration. It
// clicks the register control once and, when the page does not confirm, a
// confirm control at most once more. Not finding a control is a failed
// result, not an error.
func (s *Scraper) Register(ctx context.Context, eventURL string) (RegisterResult, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	if eventURL == "" {
		return RegisterResult{}, errEmptyEventURL
	}

	err := s.visit(ctx, eventURL, s.cfg.Settle.Navigate)
	if err != nil {
		recordErr(span, err)
		return RegisterResult{}, err
	}
	s.screenshot(ctx, "event_page")

	cta, d, ok, err := registerChain.First(ctx, s.page)
	if err != nil {
		recordErr(span, err)
		return RegisterResult{}, err
	}
	if !ok {
		s.screenshot(ctx, "no_register_button")
		s.tel.ReportWarning(report_register, noRegisterControl, eventURL)
		current, err := s.page.URL(ctx)
		if err != nil {
			recordErr(span, err)
			return RegisterResult{}, err
		}
		return RegisterResult{Success: false, Error: noRegisterControl, URL: current}, nil
	}
	s.tel.ReportDebug("clicking register control", d.String())

	text, err := s.clickAndRead(ctx, cta, "register click")
	if err != nil {
		recordErr(span, err)
		return RegisterResult{}, err
	}
	s.screenshot(ctx, "after_register_click")
	confirmed := textutil.ContainsAny(text, confirmationVocabulary)

	if !confirmed {
		confirm, _, ok, err := confirmChain.First(ctx, s.page)
		if err != nil {
			recordErr(span, err)
			return RegisterResult{}, err
		}
		if ok {
			text, err = s.clickAndRead(ctx, confirm, "confirm click")
			if err != nil {
				recordErr(span, err)
				return RegisterResult{}, err
			}
			s.screenshot(ctx, "after_confirm")
			confirmed = textutil.ContainsAny(text, confirmationVocabulary)
		}
	}

	current, err := s.page.URL(ctx)
	if err != nil {
		recordErr(span, err)
		return RegisterResult{}, err
	}
	result := RegisterResult{
		Success:  confirmed,
		PageText: textutil.Truncate(text, resultTextCap),
		URL:      current,
	}
	if !confirmed {
		s.tel.ReportWarning(report_register, "no confirmation after registering", eventURL)
		result.Error = "registration was not confirmed"
	}
	return result, nil
}
