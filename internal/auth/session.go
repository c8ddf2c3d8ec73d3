package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

// State is the sign-in lifecycle position of the [Manager].
type State int

const (
	SignedOut State = iota
	LoggingIn
	AwaitingCallback
	ExchangingCode
	SignedIn
	RefreshingToken
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed_out"
	case LoggingIn:
		return "logging_in"
	case AwaitingCallback:
		return "awaiting_callback"
	case ExchangingCode:
		return "exchanging_code"
	case SignedIn:
		return "signed_in"
	case RefreshingToken:
		return "refreshing_token"
	default:
		return "unknown"
	}
}

// refreshGrace is how close to expiry a session may get before Initialize
// tries to renew it instead of treating it as current.
const refreshGrace = 5 * time.Minute

// Manager is the single owner of session and license state. All surfaces
// read through its accessors and react to its change notifications; only
// the manager talks to the store, the OAuth client, and the license service.
type Manager struct {
	store       CredentialStore
	oauth       OAuthClient
	licenses    LicenseClient
	openBrowser BrowserOpener
	logger      *log.Logger

	mu      sync.Mutex
	state   State
	session *models.Session
	license *models.LicenseStatus
	nextSub int
	subs    map[int]func(State)
}

func NewManager(store CredentialStore, oauth OAuthClient, licenses LicenseClient, openBrowser BrowserOpener, logger *log.Logger) *Manager {
	return &Manager{
		store:       store,
		oauth:       oauth,
		licenses:    licenses,
		openBrowser: openBrowser,
		logger:      logger,
		state:       SignedOut,
		subs:        make(map[int]func(State)),
	}
}

// Initialize restores the persisted session, renewing it when it is at or
// near expiry, then refreshes the license verdict. It never returns an
// error: any failure degrades to the signed-out state so the app always
// starts.
func (m *Manager) Initialize(ctx context.Context) {
	session, err := m.store.Get()
	if err != nil {
		m.logger.Warn("could not read stored session", "error", err)
	}

	if session != nil && !session.Valid(time.Now(), refreshGrace) {
		refreshed, err := m.oauth.RefreshToken(ctx, session)
		if err != nil {
			m.logger.Warn("stored session could not be renewed", "email", session.Email, "error", err)
			_ = m.store.Clear()
			session = nil
		} else {
			if err := m.store.Put(refreshed); err != nil {
				m.logger.Warn("could not persist renewed session", "error", err)
			}
			session = refreshed
		}
	}

	m.mu.Lock()
	m.session = session
	if session != nil {
		m.state = SignedIn
	} else {
		m.state = SignedOut
	}
	m.mu.Unlock()

	m.CheckLicense(ctx)

	if session != nil {
		m.logger.Info("restored session", "email", session.Email)
	}
	m.notify()
}

// BeginLogin runs one full interactive login: it opens the provider's
// consent page in a browser, waits for the redirect on the loopback server,
// exchanges the code, and persists the session. A second call while a login
// is outstanding fails with [shared.ErrLoginInProgress]. Any step failing
// returns the manager to the signed-out state with nothing persisted.
func (m *Manager) BeginLogin(ctx context.Context) error {
	if err := m.enterLogin(); err != nil {
		return err
	}

	authURL, _, err := m.oauth.StartLogin()
	if err != nil {
		m.abortLogin()
		return err
	}

	if err := m.openBrowser(authURL); err != nil {
		m.abortLogin()
		return fmt.Errorf("%w: could not open browser: %v", shared.ErrAuthFailed, err)
	}

	m.setState(AwaitingCallback)

	code, err := m.oauth.AwaitCallback(ctx)
	if err != nil {
		m.abortLogin()
		return err
	}

	m.setState(ExchangingCode)

	session, err := m.oauth.ExchangeCode(ctx, code)
	if err != nil {
		m.abortLogin()
		return err
	}

	if err := m.store.Put(session); err != nil {
		m.abortLogin()
		return err
	}

	m.mu.Lock()
	m.session = session
	m.state = SignedIn
	m.mu.Unlock()

	m.CheckLicense(ctx)
	m.logger.Info("signed in", "email", session.Email)
	m.notify()

	return nil
}

// Refresh renews the active session's tokens. A refresh failure is the one
// path that forces a logout: the stored session is cleared and the manager
// drops to signed-out.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.state != SignedIn {
		m.mu.Unlock()
		return shared.ErrNotAuthenticated
	}
	current := m.session
	m.state = RefreshingToken
	m.mu.Unlock()
	m.notify()

	refreshed, err := m.oauth.RefreshToken(ctx, current)
	if err != nil {
		m.logger.Warn("token refresh failed, signing out", "email", current.Email, "error", err)
		m.Logout()
		return err
	}

	if err := m.store.Put(refreshed); err != nil {
		m.logger.Warn("could not persist refreshed session", "error", err)
	}

	m.mu.Lock()
	m.session = refreshed
	m.state = SignedIn
	m.mu.Unlock()

	m.CheckLicense(ctx)
	m.notify()

	return nil
}

// Logout clears the persisted session and cached license. Valid from any state.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("could not clear stored session", "error", err)
	}

	m.mu.Lock()
	m.session = nil
	m.license = nil
	m.state = SignedOut
	m.mu.Unlock()

	m.logger.Info("signed out")
	m.notify()
}

// CheckLicense re-queries the license service for the active session's email
// (or the anonymous device status when signed out) and replaces the cached
// verdict wholesale.
func (m *Manager) CheckLicense(ctx context.Context) models.LicenseStatus {
	m.mu.Lock()
	email := ""
	if m.session != nil {
		email = m.session.Email
	}
	m.mu.Unlock()

	status := m.licenses.CheckLicense(ctx, email)

	m.mu.Lock()
	m.license = &status
	m.mu.Unlock()

	return status
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or nil when signed out.
func (m *Manager) Session() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// License returns the most recent license verdict, or nil before the first check.
func (m *Manager) License() *models.LicenseStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.license == nil {
		return nil
	}
	copied := *m.license
	return &copied
}

// LicenseValid reports whether downloads are currently allowed.
func (m *Manager) LicenseValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.license != nil && m.license.IsValid
}

// Subscription is a handle on a state-change registration.
type Subscription struct {
	id      int
	manager *Manager
}

func (s *Subscription) Unsubscribe() {
	s.manager.mu.Lock()
	defer s.manager.mu.Unlock()
	delete(s.manager.subs, s.id)
}

// Subscribe registers fn to run after every state change. Callbacks run on
// the goroutine that caused the change and must not block.
func (m *Manager) Subscribe(fn func(State)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	id := m.nextSub
	m.subs[id] = fn

	return &Subscription{id: id, manager: m}
}

func (m *Manager) enterLogin() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case LoggingIn, AwaitingCallback, ExchangingCode:
		return shared.ErrLoginInProgress
	case SignedIn, RefreshingToken:
		return fmt.Errorf("%w: already signed in", shared.ErrInvalidArgument)
	}

	m.state = LoggingIn
	return nil
}

func (m *Manager) abortLogin() {
	m.oauth.CancelLogin()

	m.mu.Lock()
	m.session = nil
	m.state = SignedOut
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	state := m.state
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
