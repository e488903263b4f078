package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
	Database    DatabaseConfig    `toml:"database"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Providers   ProvidersConfig   `toml:"providers"`
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
	Recommend   RecommendConfig   `toml:"recommend"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host                string `toml:"host"`
	Port                int    `toml:"port"`
	ReadTimeoutSeconds  int    `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `toml:"write_timeout_seconds"`
}

// Addr joins host and port into a listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig selects the record store backend.
//
// Driver is "memory" (default) or "sqlite"; Path is only read by the sqlite driver.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// CatalogConfig controls the sample catalog loaded into an empty store.
type CatalogConfig struct {
	Seed bool `toml:"seed"`
}

// ProvidersConfig tunes outbound calls to the external search providers.
type ProvidersConfig struct {
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RetryMax          int     `toml:"retry_max"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	YouTubeBaseURL    string  `toml:"youtube_base_url"`
	SpotifyBaseURL    string  `toml:"spotify_base_url"`
	SpotifyTokenURL   string  `toml:"spotify_token_url"`
	LastFMBaseURL     string  `toml:"lastfm_base_url"`
}

// Timeout is the per-provider call bound, zero meaning unbounded.
func (p ProvidersConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
	LastFM  LastFMConfig  `toml:"lastfm"`
}

// SpotifyConfig contains Spotify client credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// YouTubeConfig contains the YouTube Data API key.
type YouTubeConfig struct {
	APIKey string `toml:"api_key"`
}

// LastFMConfig contains the Last.fm API key.
type LastFMConfig struct {
	APIKey string `toml:"api_key"`
}

// CacheConfig points at an optional Redis instance for search results.
type CacheConfig struct {
	RedisURL   string `toml:"redis_url"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RecommendConfig overrides the built-in recommendation categories when non-empty.
type RecommendConfig struct {
	Categories []CategoryConfig `toml:"categories"`
}

// CategoryConfig describes one keyword category.
//
// A category without keywords is the fallback. A rule matches when any configured criterion matches;
// a category with no criteria takes tracks unfiltered. Popular orders by play count before truncating.
type CategoryConfig struct {
	Name         string   `toml:"name"`
	Keywords     []string `toml:"keywords"`
	Response     string   `toml:"response"`
	Limit        int      `toml:"limit"`
	Artists      []string `toml:"artists"`
	Titles       []string `toml:"titles"`
	Platforms    []string `toml:"platforms"`
	MinPlayCount int      `toml:"min_play_count"`
	MinDuration  int      `toml:"min_duration"`
	MaxDuration  int      `toml:"max_duration"`
	Popular      bool     `toml:"popular"`
}

// ProviderCredentials is the credential set resolved for one search call.
type ProviderCredentials struct {
	YouTubeAPIKey       string
	SpotifyClientID     string
	SpotifyClientSecret string
	LastFMAPIKey        string
}

// Resolve overlays provider credentials from the environment onto the configured values.
//
// It reads the environment on every call so keys exported after startup take effect.
func (c CredentialsConfig) Resolve() ProviderCredentials {
	return ProviderCredentials{
		YouTubeAPIKey:       firstNonEmpty(os.Getenv("YOUTUBE_API_KEY"), os.Getenv("YT_API_KEY"), c.YouTube.APIKey),
		SpotifyClientID:     firstNonEmpty(os.Getenv("SPOTIFY_CLIENT_ID"), c.Spotify.ClientID),
		SpotifyClientSecret: firstNonEmpty(os.Getenv("SPOTIFY_CLIENT_SECRET"), c.Spotify.ClientSecret),
		LastFMAPIKey:        firstNonEmpty(os.Getenv("LASTFM_API_KEY"), c.LastFM.APIKey),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their values from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFiles loads each existing dotenv file without overriding variables already set.
func LoadEnvFiles(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides server, database and cache settings from MELODI_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("MELODI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MELODI_PORT=%q", ErrInvalidConfig, v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MELODI_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MELODI_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	return nil
}
