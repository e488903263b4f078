package models

import (
	"errors"
	"strings"

	"github.com/desertthunder/melodi/internal/shared"
)

// NewTrack is the input for creating a [Track]. An empty ID asks the store to generate one.
type NewTrack struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title" validate:"required"`
	Artist     string  `json:"artist" validate:"required"`
	Album      *string `json:"album,omitempty"`
	Duration   *int    `json:"duration,omitempty" validate:"omitnil,gte=0"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	PreviewURL *string `json:"previewUrl,omitempty"`
	ExternalID *string `json:"externalId,omitempty"`
	Platform   string  `json:"platform" validate:"required"`
	PlayCount  int     `json:"playCount,omitempty" validate:"gte=0"`
	IsLiked    bool    `json:"isLiked,omitempty"`
}

// Validate checks required fields, reporting failures as a [shared.ValidationError].
func (n NewTrack) Validate() error {
	n.Title, n.Artist, n.Platform = strings.TrimSpace(n.Title), strings.TrimSpace(n.Artist), strings.TrimSpace(n.Platform)
	return shared.Validate(n, "Invalid track data")
}

// Track builds the stored record for id.
func (n NewTrack) Track(id string) Track {
	return Track{
		ID:         id,
		Title:      n.Title,
		Artist:     n.Artist,
		Album:      copyPtr(n.Album),
		Duration:   copyPtr(n.Duration),
		ImageURL:   copyPtr(n.ImageURL),
		PreviewURL: copyPtr(n.PreviewURL),
		ExternalID: copyPtr(n.ExternalID),
		Platform:   n.Platform,
		PlayCount:  n.PlayCount,
		IsLiked:    n.IsLiked,
	}
}

// TrackPatch lists the mutable fields of a [Track]. The nullable fields can be cleared with an explicit
// null; a null for any other field counts as not supplied.
type TrackPatch struct {
	Title      *string          `json:"title,omitempty" validate:"omitnil,min=1"`
	Artist     *string          `json:"artist,omitempty" validate:"omitnil,min=1"`
	Album      Nullable[string] `json:"album,omitzero"`
	Duration   Nullable[int]    `json:"duration,omitzero"`
	ImageURL   Nullable[string] `json:"imageUrl,omitzero"`
	PreviewURL Nullable[string] `json:"previewUrl,omitzero"`
	ExternalID Nullable[string] `json:"externalId,omitzero"`
	Platform   *string          `json:"platform,omitempty" validate:"omitnil,min=1"`
	PlayCount  *int             `json:"playCount,omitempty" validate:"omitnil,gte=0"`
	IsLiked    *bool            `json:"isLiked,omitempty"`
}

func (p TrackPatch) Validate() error {
	err := shared.Validate(p, "Invalid track data")
	if p.Duration.Value == nil || *p.Duration.Value >= 0 {
		return err
	}

	field := shared.FieldError{Field: "duration", Message: "must be greater than or equal to 0"}
	var verr *shared.ValidationError
	switch {
	case errors.As(err, &verr):
		verr.Fields = append(verr.Fields, field)
		return verr
	case err != nil:
		return err
	}
	return shared.NewValidationError("Invalid track data", field)
}

// Apply replaces each supplied field of t.
func (p TrackPatch) Apply(t *Track) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Artist != nil {
		t.Artist = *p.Artist
	}
	p.Album.applyTo(&t.Album)
	p.Duration.applyTo(&t.Duration)
	p.ImageURL.applyTo(&t.ImageURL)
	p.PreviewURL.applyTo(&t.PreviewURL)
	p.ExternalID.applyTo(&t.ExternalID)
	if p.Platform != nil {
		t.Platform = *p.Platform
	}
	if p.PlayCount != nil {
		t.PlayCount = *p.PlayCount
	}
	if p.IsLiked != nil {
		t.IsLiked = *p.IsLiked
	}
}

// NewPlaylist is the input for creating a [Playlist]. Id and creation time are always assigned by the store.
type NewPlaylist struct {
	Name          string   `json:"name" validate:"required"`
	Description   *string  `json:"description,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
	IsAiGenerated bool     `json:"isAiGenerated,omitempty"`
	TrackIDs      []string `json:"trackIds,omitempty"`
}

func (n NewPlaylist) Validate() error {
	n.Name = strings.TrimSpace(n.Name)
	return shared.Validate(n, "Invalid playlist data")
}

// PlaylistPatch lists the mutable fields of a [Playlist]. Description and ImageURL can be cleared with null.
type PlaylistPatch struct {
	Name          *string          `json:"name,omitempty" validate:"omitnil,min=1"`
	Description   Nullable[string] `json:"description,omitzero"`
	ImageURL      Nullable[string] `json:"imageUrl,omitzero"`
	IsAiGenerated *bool            `json:"isAiGenerated,omitempty"`
	TrackIDs      *[]string        `json:"trackIds,omitempty"`
}

func (p PlaylistPatch) Validate() error {
	return shared.Validate(p, "Invalid playlist data")
}

// Apply replaces each supplied field of pl.
func (p PlaylistPatch) Apply(pl *Playlist) {
	if p.Name != nil {
		pl.Name = *p.Name
	}
	p.Description.applyTo(&pl.Description)
	p.ImageURL.applyTo(&pl.ImageURL)
	if p.IsAiGenerated != nil {
		pl.IsAiGenerated = *p.IsAiGenerated
	}
	if p.TrackIDs != nil {
		pl.TrackIDs = cloneList(*p.TrackIDs)
	}
}

// NewAiInteraction is the input for logging a recommendation.
type NewAiInteraction struct {
	Query           string   `json:"query"`
	Response        string   `json:"response"`
	Recommendations []string `json:"recommendations"`
}

// PreferencesPatch lists the fields of [UserPreferences]. Supplied lists replace the stored lists in full.
//
// ID names the record when the update creates the singleton and is ignored otherwise; empty means generated.
type PreferencesPatch struct {
	ID             string    `json:"-"`
	FavoriteGenres *[]string `json:"favoriteGenres,omitempty"`
	RecentSearches *[]string `json:"recentSearches,omitempty"`
	LikedTracks    *[]string `json:"likedTracks,omitempty"`
	PlayHistory    *[]string `json:"playHistory,omitempty"`
}

// Apply replaces each supplied list of u.
func (p PreferencesPatch) Apply(u *UserPreferences) {
	if p.FavoriteGenres != nil {
		u.FavoriteGenres = cloneList(*p.FavoriteGenres)
	}
	if p.RecentSearches != nil {
		u.RecentSearches = cloneList(*p.RecentSearches)
	}
	if p.LikedTracks != nil {
		u.LikedTracks = cloneList(*p.LikedTracks)
	}
	if p.PlayHistory != nil {
		u.PlayHistory = cloneList(*p.PlayHistory)
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
