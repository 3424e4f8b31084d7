// Package middleware holds the echo middleware shared by every route and the
// per-route guards: session authentication and rate limiting.
package middleware
