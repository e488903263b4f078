// Package store defines the record store contract and its in-memory implementation.
//
// Lookups that find nothing return the not-found sentinels from the shared package; every other
// operation is total. The store performs no field validation: callers validate inputs and patches first.
package store

import (
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

// Store is the catalog persistence contract shared by the memory and SQLite backends.
type Store interface {
	GetTrack(id string) (*models.Track, error)
	ListTracks() ([]models.Track, error)
	CreateTrack(in models.NewTrack) (*models.Track, error)
	UpdateTrack(id string, patch models.TrackPatch) (*models.Track, error)
	SearchTracks(query string) ([]models.Track, error)
	ListTrendingTracks() ([]models.Track, error)

	GetPlaylist(id string) (*models.Playlist, error)
	ListPlaylists() ([]models.Playlist, error)
	CreatePlaylist(in models.NewPlaylist) (*models.Playlist, error)
	UpdatePlaylist(id string, patch models.PlaylistPatch) (*models.Playlist, error)
	DeletePlaylist(id string) (bool, error)

	GetAiInteraction(id string) (*models.AiInteraction, error)
	ListAiInteractions() ([]models.AiInteraction, error)
	CreateAiInteraction(in models.NewAiInteraction) (*models.AiInteraction, error)

	GetUserPreferences() (*models.UserPreferences, error)
	UpdateUserPreferences(patch models.PreferencesPatch) (*models.UserPreferences, error)
}

// Options carries the clock and id source used by a store.
type Options struct {
	Now   func() time.Time
	NewID func() string
}

// Option configures [Options].
type Option func(*Options)

// WithClock overrides the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithIDGenerator overrides the id source used for generated ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *Options) { o.NewID = fn }
}

// ResolveOptions applies opts over the defaults ([time.Now], [shared.GenerateID]).
func ResolveOptions(opts ...Option) Options {
	o := Options{Now: time.Now, NewID: shared.GenerateID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// MemoryStore keeps every collection in process behind a single lock, making each operation atomic.
type MemoryStore struct {
	mu   sync.RWMutex
	opts Options

	tracks     map[string]models.Track
	trackOrder []string

	playlists     map[string]models.Playlist
	playlistOrder []string

	interactions []models.AiInteraction
	preferences  *models.UserPreferences
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:      ResolveOptions(opts...),
		tracks:    make(map[string]models.Track),
		playlists: make(map[string]models.Playlist),
	}
}

func (s *MemoryStore) GetTrack(id string) (*models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, shared.ErrTrackNotFound
	}
	t = t.Clone()
	return &t, nil
}

// ListTracks returns every track in insertion order.
func (s *MemoryStore) ListTracks() ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listTracks(), nil
}

func (s *MemoryStore) listTracks() []models.Track {
	out := make([]models.Track, 0, len(s.trackOrder))
	for _, id := range s.trackOrder {
		out = append(out, s.tracks[id].Clone())
	}
	return out
}

// CreateTrack stores in under its own id, or a generated one. A reused id replaces the existing record in place.
func (s *MemoryStore) CreateTrack(in models.NewTrack) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if id == "" {
		id = s.opts.NewID()
	}

	t := in.Track(id)
	if _, exists := s.tracks[id]; !exists {
		s.trackOrder = append(s.trackOrder, id)
	}
	s.tracks[id] = t

	out := t.Clone()
	return &out, nil
}

func (s *MemoryStore) UpdateTrack(id string, patch models.TrackPatch) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tracks[id]
	if !ok {
		return nil, shared.ErrTrackNotFound
	}
	t = t.Clone()
	patch.Apply(&t)
	s.tracks[id] = t

	out := t.Clone()
	return &out, nil
}

func (s *MemoryStore) SearchTracks(query string) ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterTracks(s.listTracks(), query), nil
}

func (s *MemoryStore) ListTrendingTracks() ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Trending(s.listTracks()), nil
}

func (s *MemoryStore) GetPlaylist(id string) (*models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	p = p.Clone()
	return &p, nil
}

func (s *MemoryStore) ListPlaylists() ([]models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Playlist, 0, len(s.playlistOrder))
	for _, id := range s.playlistOrder {
		out = append(out, s.playlists[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) CreatePlaylist(in models.NewPlaylist) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Playlist{
		ID:            s.opts.NewID(),
		Name:          in.Name,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		IsAiGenerated: in.IsAiGenerated,
		CreatedAt:     s.opts.Now(),
		TrackIDs:      in.TrackIDs,
	}.Clone()

	s.playlists[p.ID] = p
	s.playlistOrder = append(s.playlistOrder, p.ID)

	out := p.Clone()
	return &out, nil
}

func (s *MemoryStore) UpdatePlaylist(id string, patch models.PlaylistPatch) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.playlists[id]
	if !ok {
		return nil, shared.ErrPlaylistNotFound
	}
	p = p.Clone()
	patch.Apply(&p)
	s.playlists[id] = p

	out := p.Clone()
	return &out, nil
}

// DeletePlaylist removes the playlist and reports whether it existed.
func (s *MemoryStore) DeletePlaylist(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.playlists[id]; !ok {
		return false, nil
	}
	delete(s.playlists, id)
	s.playlistOrder = slices.DeleteFunc(s.playlistOrder, func(v string) bool { return v == id })
	return true, nil
}

func (s *MemoryStore) GetAiInteraction(id string) (*models.AiInteraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.interactions {
		if a.ID == id {
			a = a.Clone()
			return &a, nil
		}
	}
	return nil, shared.ErrInteractionNotFound
}

// ListAiInteractions returns interactions newest first.
func (s *MemoryStore) ListAiInteractions() ([]models.AiInteraction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AiInteraction, 0, len(s.interactions))
	for _, a := range s.interactions {
		out = append(out, a.Clone())
	}
	models.SortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) CreateAiInteraction(in models.NewAiInteraction) (*models.AiInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := models.AiInteraction{
		ID:              s.opts.NewID(),
		Query:           in.Query,
		Response:        in.Response,
		Recommendations: in.Recommendations,
		CreatedAt:       s.opts.Now(),
	}.Clone()
	s.interactions = append(s.interactions, a)

	out := a.Clone()
	return &out, nil
}

func (s *MemoryStore) GetUserPreferences() (*models.UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.preferences == nil {
		return nil, shared.ErrPreferencesNotFound
	}
	out := s.preferences.Clone()
	return &out, nil
}

// UpdateUserPreferences merges patch into the singleton, creating it with empty lists first if absent.
func (s *MemoryStore) UpdateUserPreferences(patch models.PreferencesPatch) (*models.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs models.UserPreferences
	if s.preferences == nil {
		id := patch.ID
		if id == "" {
			id = s.opts.NewID()
		}
		prefs = models.NewUserPreferences(id)
	} else {
		prefs = s.preferences.Clone()
	}
	patch.Apply(&prefs)
	s.preferences = &prefs

	out := prefs.Clone()
	return &out, nil
}
