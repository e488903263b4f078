// Package server exposes the catalog over HTTP.
//
// # Routing
//
// [Server.Handler] builds a chi router. Every API route is mounted under /api; /healthz
// reports liveness outside it. [Middleware] values are applied in the order they are added,
// so the first one wraps all later ones.
//
// # Errors
//
// Handlers return a JSON body with a message on every failure:
//   - 400 for a [shared.ValidationError], with per-field detail under "errors"
//   - 404 when the store reports a record wrapping [shared.ErrNotFound]
//   - 500 otherwise; the cause is logged and never sent to the client
//
// Request bodies must be single JSON objects without unknown fields.
package server
