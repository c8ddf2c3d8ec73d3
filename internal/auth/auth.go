// package auth owns the sign-in state machine and its collaborators
package auth

import (
	"context"

	"github.com/desertthunder/grabbit/internal/models"
)

// CredentialStore persists the active session between runs.
type CredentialStore interface {
	// Get returns the stored session, or nil when signed out.
	Get() (*models.Session, error)

	// Put stores the session, replacing any previous one.
	Put(session *models.Session) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear() error
}

// OAuthClient drives the authorization-code flow against the identity provider.
type OAuthClient interface {
	// StartLogin prepares a login attempt and returns the authorization URL
	// to open in the user's browser along with the CSRF state token.
	StartLogin() (authURL, state string, err error)

	// AwaitCallback blocks until the provider redirects back with an
	// authorization code. There is exactly one callback per login attempt.
	AwaitCallback(ctx context.Context) (code string, err error)

	// CancelLogin releases whatever a started login attempt still holds,
	// so the next attempt starts clean. Safe to call at any point.
	CancelLogin()

	// ExchangeCode trades the authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*models.Session, error)

	// RefreshToken trades the session's refresh token for a new session.
	RefreshToken(ctx context.Context, session *models.Session) (*models.Session, error)
}

// LicenseClient queries the license service.
type LicenseClient interface {
	// CheckLicense returns the license verdict for the given email, or the
	// anonymous device-only status when email is empty. It never fails:
	// transport problems degrade to a status of [models.LicenseError].
	CheckLicense(ctx context.Context, email string) models.LicenseStatus

	// DeviceUUID returns this installation's stable device identifier.
	DeviceUUID() string

	// RegistrationURL returns the web address where this device can be registered.
	RegistrationURL() string
}

// BrowserOpener opens a URL in an external browser context.
type BrowserOpener func(url string) error
