package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// MaxResults caps the tracks each provider contributes to a search.
const MaxResults = 5

// Provider searches one external catalog and normalizes its results into [models.Track] values.
type Provider interface {
	// Name returns the platform tag (e.g., "youtube") used for filtering and id prefixes.
	Name() string

	// Search returns at most [MaxResults] tracks for query.
	Search(ctx context.Context, query string) ([]models.Track, error)
}

// Transport is the outbound HTTP stack shared by the calls of one provider:
// retries with backoff, a circuit breaker and a rate limiter.
type Transport struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// TransportOpts configures [NewTransport]. Zero values disable retries and rate limiting.
type TransportOpts struct {
	Name              string
	RetryMax          int
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client // base client wrapped by the retrying client
}

// NewTransport builds a [Transport] for the named provider.
func NewTransport(opts TransportOpts) *Transport {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	}

	limit, burst := rate.Inf, opts.Burst
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Transport{
		client:  rc.StandardClient(),
		breaker: breaker,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Client returns the retrying [http.Client], for libraries that issue their own requests.
func (t *Transport) Client() *http.Client {
	return t.client
}

// GetJSON sends a GET to endpoint and decodes a 2xx JSON body into result.
//
// Failures wrap [shared.ErrAPIRequest]; an open breaker wraps [shared.ErrServiceUnavailable].
func (t *Transport) GetJSON(ctx context.Context, endpoint string, header http.Header, result any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %v", shared.ErrAPIRequest, err)
	}

	_, err := t.breaker.Execute(func() (any, error) {
		return nil, t.do(ctx, endpoint, header, result)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return err
}

func (t *Transport) do(ctx context.Context, endpoint string, header http.Header, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %s", redact(err.Error(), endpoint))
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, redact(err.Error(), endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// secretParams are query parameters that carry provider credentials.
var secretParams = []string{"key", "api_key"}

// redact masks the credential values found in endpoint's query wherever they appear in msg.
func redact(msg, endpoint string) string {
	_, rawQuery, _ := strings.Cut(endpoint, "?")
	query, _ := url.ParseQuery(rawQuery)
	for _, name := range secretParams {
		for _, v := range query[name] {
			if v == "" {
				continue
			}
			msg = strings.ReplaceAll(msg, url.QueryEscape(v), "REDACTED")
			msg = strings.ReplaceAll(msg, v, "REDACTED")
		}
	}
	return msg
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func truncate(tracks []models.Track) []models.Track {
	if len(tracks) > MaxResults {
		return tracks[:MaxResults]
	}
	return tracks
}
