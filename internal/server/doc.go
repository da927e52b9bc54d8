// Package server provides HTTP routing, middleware, and OAuth handling.
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
// OAuthHandler implements the OAuth2 authorization code callback flow used
// when authorizing the Spotify account from the CLI. The handler validates
// the state parameter (CSRF protection), exchanges the authorization code
// for tokens, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks. A temporary
// HTTP server starts on the configured loopback address, handles the
// callback, and shuts down after receiving the token.
//
// # Status API
//
// PlaylistHandler exposes the generated playlist records as JSON so a
// cron-driven deployment can be checked without opening the database.
package server
