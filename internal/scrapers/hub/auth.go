package hub

import (
	"context"
	"fmt"
	"hubsync-backend/internal/browser"

	"go.opentelemetry.io/otel/trace"
)

const (
	report_login          = "login"
	report_login_no_field = "login.no-field"
)

var (
	loginIdentifierChain = browser.Chain{
		browser.Sel("input[type='email']"),
		browser.Sel("input[name*='email']"),
		browser.Sel("input[id*='email']"),
		// visualforce login form without typed inputs
		browser.Sel("input.loginInput"),
	}
	loginSecretChain = browser.Chain{
		browser.Sel("input[type='password']"),
	}
	loginSubmitChain = browser.Chain{
		browser.Sel("input[type='submit'][value*='Log']"),
		browser.HasText("button", "Log In"),
		browser.Sel("input.loginButton"),
	}
)

func (s *Scraper) markAuthenticated() {
	s.authenticated = true
	s.authenticatedAt = s.clock.Now()
}

func (s *Scraper) fillField(ctx context.Context, chain browser.Chain, value, field string) (browser.Element, bool, error) {
	el, _, ok, err := chain.First(ctx, s.page)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		s.tel.ReportWarning(report_login_no_field, field)
		return nil, false, nil
	}
	err = el.Fill(ctx, value)
	if err != nil {
		return nil, false, fmt.Errorf("fill %s: %w", field, err)
	}
	return el, true, nil
}

// Login submits the portal login form. It returns false (and no error) when
// the portal keeps showing the login page afterwards.
func (s *Scraper) Login(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	creds := s.cfg.Credentials
	if creds.Email == "" || creds.Password == "" {
		err := fmt.Errorf("%w: PROVISORS_EMAIL and PROVISORS_PASSWORD must be set", ErrConfiguration)
		recordErr(span, err)
		return false, err
	}

	loginURL := s.cfg.url(PathLogin)
	err := s.goTo(ctx, loginURL, s.cfg.Settle.LoginPage)
	if err != nil {
		recordErr(span, err)
		return false, err
	}

	current, err := s.page.URL(ctx)
	if err != nil {
		recordErr(span, err)
		return false, err
	}
	if !s.cfg.isLoginURL(current) {
		s.tel.ReportDebug("already authenticated, portal redirected", current)
		s.markAuthenticated()
		return true, nil
	}

	_, ok, err := s.fillField(ctx, loginIdentifierChain, creds.Email, "identifier")
	if err != nil || !ok {
		return s.loginFailed(ctx, span, err, "login form has no identifier field")
	}
	secret, ok, err := s.fillField(ctx, loginSecretChain, creds.Password, "secret")
	if err != nil || !ok {
		return s.loginFailed(ctx, span, err, "login form has no password field")
	}

	submit, _, ok, err := loginSubmitChain.First(ctx, s.page)
	if err != nil {
		return s.loginFailed(ctx, span, err, "")
	}
	if ok {
		err = submit.Click(ctx)
	} else {
		s.tel.ReportWarning(report_login_no_field, "submit")
		err = secret.PressEnter(ctx)
	}
	if err != nil {
		return s.loginFailed(ctx, span, err, "")
	}

	err = s.waitSettled(ctx, s.cfg.NavigationTimeout, s.cfg.Settle.Login, "login submit")
	if err != nil {
		recordErr(span, err)
		return false, err
	}

	current, err = s.page.URL(ctx)
	if err != nil {
		recordErr(span, err)
		return false, err
	}
	if s.cfg.isLoginURL(current) {
		return s.loginFailed(ctx, span, nil, "portal kept showing the login page")
	}

	s.markAuthenticated()
	s.screenshot(ctx, "login_success")
	return true, nil
}

// loginFailed marks the span failed either way. A rejection without err is
// still reported to the caller as (false, nil).
func (s *Scraper) loginFailed(ctx context.Context, span trace.Span, err error, reason string) (bool, error) {
	s.authenticated = false
	s.screenshot(ctx, "login_failed")
	if err != nil {
		s.tel.ReportBroken(report_login, err)
		recordErr(span, err)
		return false, err
	}
	s.tel.ReportWarning(report_login, reason)
	recordErr(span, fmt.Errorf("%w: %s", ErrSession, reason))
	return false, nil
}

// EnsureLoggedIn is a no-op while the login is fresh, otherwise it runs the
// login flow and fails with ErrSession when the portal rejects it.
func (s *Scraper) EnsureLoggedIn(ctx context.Context) error {
	if s.authenticated {
		if s.cfg.ReverifyAfter <= 0 || s.clock.Now().Sub(s.authenticatedAt) < s.cfg.ReverifyAfter {
			return nil
		}
		s.tel.ReportDebug("login is stale, verifying again")
	}
	ok, err := s.Login(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSession
	}
	return nil
}
