package models

import (
	"slices"
	"time"
)

// Platform tags used by the built-in providers. The set is open.
const (
	PlatformYouTube = "youtube"
	PlatformSpotify = "spotify"
	PlatformLastFM  = "lastfm"
)

// Track is a catalog entry.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      *string `json:"album"`
	Duration   *int    `json:"duration"` // seconds
	ImageURL   *string `json:"imageUrl"`
	PreviewURL *string `json:"previewUrl"`
	ExternalID *string `json:"externalId"`
	Platform   string  `json:"platform"`
	PlayCount  int     `json:"playCount"`
	IsLiked    bool    `json:"isLiked"`
}

// Clone returns a deep copy that shares no pointer targets with t.
func (t Track) Clone() Track {
	t.Album = copyPtr(t.Album)
	t.Duration = copyPtr(t.Duration)
	t.ImageURL = copyPtr(t.ImageURL)
	t.PreviewURL = copyPtr(t.PreviewURL)
	t.ExternalID = copyPtr(t.ExternalID)
	return t
}

// Playlist is a named ordered collection of track ids. Ids are not checked against the catalog.
type Playlist struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	ImageURL      *string   `json:"imageUrl"`
	IsAiGenerated bool      `json:"isAiGenerated"`
	CreatedAt     time.Time `json:"createdAt"`
	TrackIDs      []string  `json:"trackIds"`
}

// Clone returns a deep copy that shares neither TrackIDs nor pointer targets with p.
func (p Playlist) Clone() Playlist {
	p.Description = copyPtr(p.Description)
	p.ImageURL = copyPtr(p.ImageURL)
	p.TrackIDs = cloneList(p.TrackIDs)
	return p
}

// AiInteraction records one recommendation request.
type AiInteraction struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	Response        string    `json:"response"`
	Recommendations []string  `json:"recommendations"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Clone returns a copy whose Recommendations can be modified independently.
func (a AiInteraction) Clone() AiInteraction {
	a.Recommendations = cloneList(a.Recommendations)
	return a
}

// DefaultPreferencesID is reported when no preferences record has been written yet.
const DefaultPreferencesID = "default"

// UserPreferences is the singleton preferences record.
type UserPreferences struct {
	ID             string   `json:"id"`
	FavoriteGenres []string `json:"favoriteGenres"`
	RecentSearches []string `json:"recentSearches"`
	LikedTracks    []string `json:"likedTracks"`
	PlayHistory    []string `json:"playHistory"`
}

// NewUserPreferences returns a record with the given id and every list empty.
func NewUserPreferences(id string) UserPreferences {
	return UserPreferences{
		ID:             id,
		FavoriteGenres: []string{},
		RecentSearches: []string{},
		LikedTracks:    []string{},
		PlayHistory:    []string{},
	}
}

// Clone returns a deep copy.
func (u UserPreferences) Clone() UserPreferences {
	u.FavoriteGenres = cloneList(u.FavoriteGenres)
	u.RecentSearches = cloneList(u.RecentSearches)
	u.LikedTracks = cloneList(u.LikedTracks)
	u.PlayHistory = cloneList(u.PlayHistory)
	return u
}

// cloneList copies s, mapping nil to an empty list so JSON output is [] never null.
func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
