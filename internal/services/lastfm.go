// Last.fm implementation of [Provider]
//
// Response types based on https://www.last.fm/api/show/track.search
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

const defaultLastFMBaseURL = "https://ws.audioscrobbler.com/2.0/"

// LastFMImage is one sized artwork entry.
type LastFMImage struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

// LastFMTrack is one track.search match.
type LastFMTrack struct {
	Name      string        `json:"name"`
	Artist    string        `json:"artist"`
	MBID      string        `json:"mbid"`
	Listeners string        `json:"listeners"`
	Image     []LastFMImage `json:"image"`
}

// LastFMTracks accepts both the list form and the single-object form Last.fm emits for one match.
type LastFMTracks []LastFMTrack

func (l *LastFMTracks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)):
		*l = nil
		return nil
	case data[0] == '{':
		var one LastFMTrack
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = LastFMTracks{one}
		return nil
	}

	var many []LastFMTrack
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// LastFMSearchResponse is the track.search envelope. Error and Message are set on API errors.
type LastFMSearchResponse struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
	Results struct {
		TrackMatches struct {
			Track LastFMTracks `json:"track"`
		} `json:"trackmatches"`
	} `json:"results"`
}

// LastFMService searches tracks with an API key.
type LastFMService struct {
	apiKey    string
	baseURL   string
	transport *Transport
}

// NewLastFMService creates a Last.fm provider. An empty baseURL selects the public API.
func NewLastFMService(apiKey, baseURL string, transport *Transport) *LastFMService {
	if baseURL == "" {
		baseURL = defaultLastFMBaseURL
	}
	if transport == nil {
		transport = NewTransport(TransportOpts{Name: models.PlatformLastFM})
	}
	return &LastFMService{apiKey: apiKey, baseURL: baseURL, transport: transport}
}

func (l *LastFMService) Name() string { return models.PlatformLastFM }

// Search runs track.search.
func (l *LastFMService) Search(ctx context.Context, query string) ([]models.Track, error) {
	params := url.Values{}
	params.Set("method", "track.search")
	params.Set("track", query)
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(MaxResults))

	var resp LastFMSearchResponse
	if err := l.transport.GetJSON(ctx, l.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Error != 0 {
		return nil, fmt.Errorf("%w: lastfm error %d: %s", shared.ErrAPIRequest, resp.Error, resp.Message)
	}

	matches := resp.Results.TrackMatches.Track
	tracks := make([]models.Track, 0, len(matches))
	for _, m := range matches {
		tracks = append(tracks, m.Track())
	}
	return truncate(tracks), nil
}

// Track maps a match onto a catalog track. Matches without an MBID get a generated id.
func (t LastFMTrack) Track() models.Track {
	id := t.MBID
	if id == "" {
		id = shared.GenerateID()
	}

	var image *string
	for _, img := range t.Image {
		if img.Size == "medium" {
			image = optional(img.URL)
			break
		}
	}

	listeners, _ := strconv.Atoi(t.Listeners)

	return models.Track{
		ID:         "lfm_" + id,
		Title:      t.Name,
		Artist:     t.Artist,
		ImageURL:   image,
		ExternalID: optional(t.MBID),
		Platform:   models.PlatformLastFM,
		PlayCount:  listeners,
	}
}
