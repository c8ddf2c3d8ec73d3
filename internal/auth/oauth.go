package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/server"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Flow implements [OAuthClient] with the authorization-code + PKCE flow,
// receiving the redirect on a loopback HTTP server.
type Flow struct {
	config   *oauth2.Config
	deviceID func() string
	logger   *log.Logger

	host string
	port int

	// per-attempt state, reset by StartLogin
	verifier   string
	state      string
	handler    *server.CallbackHandler
	httpServer *http.Server
	serverErr  chan error
}

func NewFlow(cfg *shared.Config, deviceID func() string, logger *log.Logger) *Flow {
	redirect := fmt.Sprintf("http://%s:%d/callback", cfg.Server.Host, cfg.Server.Port)

	return &Flow{
		config: &oauth2.Config{
			ClientID:     cfg.Credentials.Google.ClientID,
			ClientSecret: cfg.Credentials.Google.ClientSecret,
			RedirectURL:  redirect,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		deviceID: deviceID,
		logger:   logger,
		host:     cfg.Server.Host,
		port:     cfg.Server.Port,
	}
}

func (f *Flow) StartLogin() (string, string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	f.verifier = oauth2.GenerateVerifier()
	f.state = state
	f.handler = server.NewCallbackHandler(state)
	f.serverErr = make(chan error, 1)

	router := server.NewBasicRouter()
	router.Handler(f.handler)

	addr := net.JoinHostPort(f.host, fmt.Sprintf("%d", f.port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", "", fmt.Errorf("%w: callback server on %s: %v", shared.ErrAuthFailed, addr, err)
	}

	f.httpServer = &http.Server{Handler: router}
	go func() {
		if err := f.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			f.serverErr <- err
		}
	}()

	authURL := f.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(f.verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	f.logger.Debug("started login attempt", "redirect", f.config.RedirectURL)

	return authURL, state, nil
}

func (f *Flow) AwaitCallback(ctx context.Context) (string, error) {
	if f.handler == nil {
		return "", fmt.Errorf("%w: no login in progress", shared.ErrAuthFailed)
	}

	defer f.shutdownServer()

	select {
	case result := <-f.handler.Result():
		if result.Error() != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}

		return result.Code, nil
	case err := <-f.serverErr:
		return "", fmt.Errorf("%w: callback server: %v", shared.ErrAuthFailed, err)
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, ctx.Err())
	}
}

// CancelLogin shuts down the callback server of an attempt that will never
// reach AwaitCallback, freeing the loopback port for the next attempt.
func (f *Flow) CancelLogin() {
	f.shutdownServer()
	f.handler = nil
}

func (f *Flow) ExchangeCode(ctx context.Context, code string) (*models.Session, error) {
	token, err := f.config.Exchange(ctx, code, oauth2.VerifierOption(f.verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}

	return f.sessionFromToken(token)
}

func (f *Flow) RefreshToken(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", shared.ErrRefreshFailed)
	}

	source := f.config.TokenSource(ctx, &oauth2.Token{RefreshToken: session.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	refreshed, err := f.sessionFromToken(token)
	if err != nil {
		return nil, err
	}

	// providers often omit the refresh token on renewal
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = session.RefreshToken
	}
	if refreshed.Email == "" {
		refreshed.Email = session.Email
	}

	return refreshed, nil
}

func (f *Flow) sessionFromToken(token *oauth2.Token) (*models.Session, error) {
	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("%w: provider returned no id token", shared.ErrAuthFailed)
	}

	email, err := emailFromIDToken(idToken)
	if err != nil {
		return nil, err
	}

	expiresAt := token.Expiry.Unix()
	if token.Expiry.IsZero() {
		expiresAt = time.Now().Add(time.Hour).Unix()
	}

	return &models.Session{
		Email:        email,
		IDToken:      idToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiresAt,
		DeviceID:     f.deviceID(),
	}, nil
}

func (f *Flow) shutdownServer() {
	if f.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = f.httpServer.Shutdown(ctx)
	f.httpServer = nil
}

// emailFromIDToken pulls the email claim out of the ID token payload. The
// token was just minted over TLS so the signature is not re-verified here.
func emailFromIDToken(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return "", fmt.Errorf("%w: id token: %v", shared.ErrAuthFailed, err)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("%w: id token missing email claim", shared.ErrAuthFailed)
	}

	return email, nil
}
