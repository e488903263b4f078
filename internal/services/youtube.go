// YouTube Data API implementation of [Provider]
//
// Response types based on https://developers.google.com/youtube/v3/docs/search/list
package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/desertthunder/melodi/internal/models"
)

const (
	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"
	ytMusicCategory  = "10"
)

// YouTubeSearchResponse is the subset of search.list used for track search.
type YouTubeSearchResponse struct {
	Items []YouTubeSearchItem `json:"items"`
}

// YouTubeSearchItem is one search hit.
type YouTubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet YouTubeSnippet `json:"snippet"`
}

// YouTubeSnippet carries the display metadata of a video.
type YouTubeSnippet struct {
	Title        string                      `json:"title"`
	ChannelTitle string                      `json:"channelTitle"`
	Thumbnails   map[string]YouTubeThumbnail `json:"thumbnails"`
}

type YouTubeThumbnail struct {
	URL string `json:"url"`
}

// YouTubeService searches music videos with an API key.
type YouTubeService struct {
	apiKey    string
	baseURL   string
	transport *Transport
}

// NewYouTubeService creates a YouTube provider. An empty baseURL selects the public API.
func NewYouTubeService(apiKey, baseURL string, transport *Transport) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if transport == nil {
		transport = NewTransport(TransportOpts{Name: models.PlatformYouTube})
	}
	return &YouTubeService{apiKey: apiKey, baseURL: baseURL, transport: transport}
}

func (y *YouTubeService) Name() string { return models.PlatformYouTube }

// Search queries the music video category.
func (y *YouTubeService) Search(ctx context.Context, query string) ([]models.Track, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("videoCategoryId", ytMusicCategory)
	params.Set("key", y.apiKey)
	params.Set("maxResults", strconv.Itoa(MaxResults))

	var resp YouTubeSearchResponse
	if err := y.transport.GetJSON(ctx, y.baseURL+"/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		tracks = append(tracks, item.Track())
	}
	return truncate(tracks), nil
}

// Track maps a search hit onto a catalog track.
func (i YouTubeSearchItem) Track() models.Track {
	return models.Track{
		ID:         "yt_" + i.ID.VideoID,
		Title:      i.Snippet.Title,
		Artist:     i.Snippet.ChannelTitle,
		ImageURL:   optional(i.Snippet.Thumbnails["medium"].URL),
		ExternalID: optional(i.ID.VideoID),
		Platform:   models.PlatformYouTube,
	}
}
