package hub

import "errors"

var (
	// ErrConfiguration means credentials or settings are missing, retrying
	// will not help.
	ErrConfiguration = errors.New("configuration error")
	// ErrSession means the portal rejected the login.
	ErrSession = errors.New("failed to log into ProVisors Hub")
	// ErrNavigationTimeout means a page did not settle within its bound.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrElementNotFound is the hard form of a missing control, only used
	// where no fallback meaning exists.
	ErrElementNotFound = errors.New("element not found")
	// ErrSessionExpired means the portal bounced to the login page even
	// right after logging in again.
	ErrSessionExpired = errors.New("session expired")
)
