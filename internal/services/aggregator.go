package services

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"golang.org/x/sync/errgroup"
)

// PlatformAll selects every registered provider.
const PlatformAll = "all"

const cacheKeyPrefix = "melodi:search:"

// CacheKey is the key under which a provider's results for query are cached.
func CacheKey(provider, query string) string {
	return cacheKeyPrefix + provider + ":" + shared.NormalizeQuery(query)
}

// SearchCache stores provider results. A miss is (nil, false, nil).
type SearchCache interface {
	Get(ctx context.Context, key string) ([]models.Track, bool, error)
	Set(ctx context.Context, key string, tracks []models.Track, ttl time.Duration) error
}

// Registration describes how to build one provider from resolved credentials.
type Registration struct {
	Name string
	// Key identifies the credentials the provider depends on. An empty key means
	// the credentials are absent and the provider is skipped.
	Key   func(shared.ProviderCredentials) string
	Build func(shared.ProviderCredentials) (Provider, error)
}

// DefaultRegistrations returns the YouTube, Spotify and Last.fm providers in result order.
func DefaultRegistrations(cfg shared.ProvidersConfig) []Registration {
	transport := func(name string) *Transport {
		return NewTransport(TransportOpts{
			Name:              name,
			RetryMax:          cfg.RetryMax,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		})
	}

	return []Registration{
		{
			Name: models.PlatformYouTube,
			Key:  func(c shared.ProviderCredentials) string { return c.YouTubeAPIKey },
			Build: func(c shared.ProviderCredentials) (Provider, error) {
				return NewYouTubeService(c.YouTubeAPIKey, cfg.YouTubeBaseURL, transport(models.PlatformYouTube)), nil
			},
		},
		{
			Name: models.PlatformSpotify,
			Key: func(c shared.ProviderCredentials) string {
				if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
					return ""
				}
				return c.SpotifyClientID + ":" + c.SpotifyClientSecret
			},
			Build: func(c shared.ProviderCredentials) (Provider, error) {
				return NewSpotifyService(c.SpotifyClientID, c.SpotifyClientSecret,
					cfg.SpotifyBaseURL, cfg.SpotifyTokenURL, transport(models.PlatformSpotify))
			},
		},
		{
			Name: models.PlatformLastFM,
			Key:  func(c shared.ProviderCredentials) string { return c.LastFMAPIKey },
			Build: func(c shared.ProviderCredentials) (Provider, error) {
				return NewLastFMService(c.LastFMAPIKey, cfg.LastFMBaseURL, transport(models.PlatformLastFM)), nil
			},
		},
	}
}

// AggregatorOpts configures [NewAggregator].
type AggregatorOpts struct {
	Registrations []Registration
	Credentials   func() shared.ProviderCredentials // called once per search
	Cache         SearchCache                       // optional
	CacheTTL      time.Duration
	Timeout       time.Duration // per provider call, zero for none
	Logger        *log.Logger
}

type builtProvider struct {
	key      string
	provider Provider
}

// Aggregator fans a query out to the configured providers and concatenates their results.
type Aggregator struct {
	opts   AggregatorOpts
	logger *log.Logger

	mu    sync.Mutex
	built map[string]builtProvider
}

// NewAggregator creates an [Aggregator]. A nil Credentials func resolves nothing.
func NewAggregator(opts AggregatorOpts) *Aggregator {
	if opts.Credentials == nil {
		opts.Credentials = func() shared.ProviderCredentials { return shared.ProviderCredentials{} }
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Aggregator{
		opts:   opts,
		logger: shared.WithLogger(logger, "component", "search"),
		built:  make(map[string]builtProvider),
	}
}

// Providers returns the registered provider names in result order.
func (a *Aggregator) Providers() []string {
	names := make([]string, 0, len(a.opts.Registrations))
	for _, r := range a.opts.Registrations {
		names = append(names, r.Name)
	}
	return names
}

// provider returns the memoized provider for reg, rebuilding it when the credentials change.
func (a *Aggregator) provider(reg Registration, creds shared.ProviderCredentials) (Provider, error) {
	key := reg.Key(creds)
	if key == "" {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if b, ok := a.built[reg.Name]; ok && b.key == key {
		return b.provider, nil
	}
	p, err := reg.Build(creds)
	if err != nil {
		return nil, err
	}
	a.built[reg.Name] = builtProvider{key: key, provider: p}
	return p, nil
}

// Search queries every selected provider whose credentials are present.
//
// platform is [PlatformAll], empty, or a provider name; an unknown name selects nothing.
// Provider failures are logged and contribute no results, so Search never fails.
func (a *Aggregator) Search(ctx context.Context, query, platform string) []models.Track {
	if platform == "" {
		platform = PlatformAll
	}
	creds := a.opts.Credentials()
	results := make([][]models.Track, len(a.opts.Registrations))

	var g errgroup.Group
	for i, reg := range a.opts.Registrations {
		if platform != PlatformAll && platform != reg.Name {
			continue
		}

		p, err := a.provider(reg, creds)
		if err != nil {
			a.logger.Warn("provider unavailable", "provider", reg.Name, "error", err)
			continue
		}
		if p == nil {
			continue
		}

		g.Go(func() error {
			results[i] = a.searchOne(ctx, p, query)
			return nil
		})
	}
	_ = g.Wait()

	tracks := []models.Track{}
	for _, r := range results {
		tracks = append(tracks, r...)
	}
	return tracks
}

func (a *Aggregator) searchOne(ctx context.Context, p Provider, query string) []models.Track {
	logger := a.logger.With("provider", p.Name())
	key := CacheKey(p.Name(), query)

	if a.opts.Cache != nil {
		cached, ok, err := a.opts.Cache.Get(ctx, key)
		if err != nil {
			logger.Warn("cache read failed", "error", err)
		} else if ok {
			logger.Debug("cache hit", "key", key)
			return cached
		}
	}

	callCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	tracks, err := p.Search(callCtx, query)
	if err != nil {
		logger.Warn("search failed", "error", err)
		return nil
	}
	tracks = truncate(tracks)

	if a.opts.Cache != nil && len(tracks) > 0 {
		if err := a.opts.Cache.Set(ctx, key, tracks, a.opts.CacheTTL); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return tracks
}
