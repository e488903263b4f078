// Spotify Web API implementation of [Provider]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	PreviewURL *string         `json:"preview_url"`
	Popularity int             `json:"popularity"`
}

// SpotifySearchResponse is the track page of a search response.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyService searches the Spotify catalog with an app token from the client-credentials flow.
//
// The token is cached until it expires and fetched with the caller's context, so the
// search deadline also bounds the token request.
type SpotifyService struct {
	config    *clientcredentials.Config
	baseURL   string
	transport *Transport

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotifyService creates a Spotify provider. Empty URLs select the public endpoints.
func NewSpotifyService(clientID, clientSecret, baseURL, tokenURL string, transport *Transport) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}
	if transport == nil {
		transport = NewTransport(TransportOpts{Name: models.PlatformSpotify})
	}

	return &SpotifyService{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		baseURL:   baseURL,
		transport: transport,
	}, nil
}

func (s *SpotifyService) Name() string { return models.PlatformSpotify }

// accessToken returns the cached token or requests a new one.
func (s *SpotifyService) accessToken(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token, nil
	}

	token, err := s.config.Token(context.WithValue(ctx, oauth2.HTTPClient, s.transport.Client()))
	if err != nil {
		return nil, fmt.Errorf("%w: spotify token: %v", shared.ErrAPIRequest, err)
	}
	s.token = token
	return token, nil
}

// Search queries tracks.
func (s *SpotifyService) Search(ctx context.Context, query string) ([]models.Track, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(MaxResults))

	header := http.Header{}
	header.Set("Authorization", token.Type()+" "+token.AccessToken)

	var resp SpotifySearchResponse
	if err := s.transport.GetJSON(ctx, s.baseURL+"/search?"+params.Encode(), header, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		tracks = append(tracks, item.Track())
	}
	return truncate(tracks), nil
}

// Track maps a Spotify track onto a catalog track.
func (t SpotifyTrack) Track() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	var image *string
	if len(t.Album.Images) > 1 {
		image = optional(t.Album.Images[1].URL)
	}

	return models.Track{
		ID:         "sp_" + t.ID,
		Title:      t.Name,
		Artist:     strings.Join(names, ", "),
		Album:      optional(t.Album.Name),
		Duration:   models.Ptr(t.DurationMS / 1000),
		ImageURL:   image,
		PreviewURL: t.PreviewURL,
		ExternalID: optional(t.ID),
		Platform:   models.PlatformSpotify,
		PlayCount:  t.Popularity,
	}
}
