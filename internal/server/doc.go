// Package server provides the loopback HTTP routing and OAuth callback
// handling used during login.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [CallbackHandler] terminates the OAuth2 authorization-code redirect.
//
// The handler validates the state parameter (CSRF protection) and sends the
// raw authorization code through a one-shot channel. It deliberately does not
// exchange the code itself: the auth session manager performs the exchange so
// that the state machine's ExchangingCode step stays observable in one place.
//
// It only processes one callback per login attempt to prevent replay.
//
// # Usage
//
// During login a temporary HTTP server starts on the configured loopback
// address, serves exactly one callback, and is shut down by the caller once
// the result channel fires.
package server
