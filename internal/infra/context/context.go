// Package context holds the request-scoped values shared between the
// transport layer, services and log handlers.
package context

type contextKey string
