// Package services defines the [Provider] interface for external music search and implements it for YouTube, Spotify and Last.fm.
//
// # Provider Interface
//
// Every provider turns a free-text query into at most [MaxResults] [models.Track] values
// tagged with its platform name. Ids are prefixed per platform (yt_, sp_, lfm_) so they
// never collide with catalog ids.
//
// # Transport
//
// Outbound calls go through a [Transport]: a go-retryablehttp client, a gobreaker circuit
// breaker and an x/time/rate limiter, one of each per provider.
//
// # Spotify Implementation
//
// [SpotifyService] uses the OAuth2 client-credentials flow with HTTP Basic client auth.
// The token is cached until expiry.
//
// # Aggregation
//
// [Aggregator] resolves credentials on every call, skips providers whose credentials are
// absent and runs the rest concurrently. Results keep registration order (youtube, spotify,
// lastfm) regardless of completion order.
//
// # Error Handling
//
// Providers return typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : provider built without credentials
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrServiceUnavailable] : the provider's circuit breaker is open
//
// The aggregator logs these and drops the provider's results.
package services
