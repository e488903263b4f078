// Package storetest holds the behavioural suite every [store.Store] implementation must pass.
package storetest

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
)

// Factory builds a fresh, empty store for one subtest.
type Factory func(t *testing.T, opts ...store.Option) store.Store

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.now }

// Set moves the clock to base plus d.
func (c *Clock) Set(d time.Duration) {
	c.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(d)
}

// Sequential returns an id generator yielding prefix-1, prefix-2, ...
func Sequential(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func mustCreateTrack(t *testing.T, s store.Store, in models.NewTrack) *models.Track {
	t.Helper()
	track, err := s.CreateTrack(in)
	if err != nil {
		t.Fatalf("failed to create track: %v", err)
	}
	return track
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func trackID(t models.Track) string { return t.ID }

// Run exercises newStore against the record store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("Tracks", func(t *testing.T) {
		t.Run("create then get returns an equal record", func(t *testing.T) {
			s := newStore(t)
			created := mustCreateTrack(t, s, models.NewTrack{
				ID: "tr_x", Title: "Gemiler", Artist: "Ceza", Album: models.Ptr("Rapstar"),
				Duration: models.Ptr(278), Platform: models.PlatformYouTube, PlayCount: 10, IsLiked: true,
			})

			got, err := s.GetTrack("tr_x")
			if err != nil {
				t.Fatalf("failed to get track: %v", err)
			}
			if !reflect.DeepEqual(created, got) {
				t.Errorf("expected %+v, got %+v", created, got)
			}
		})

		t.Run("generates id and defaults optionals", func(t *testing.T) {
			s := newStore(t, store.WithIDGenerator(Sequential("gen")))
			created := mustCreateTrack(t, s, models.NewTrack{Title: "t", Artist: "a", Platform: "spotify"})

			if created.ID != "gen-1" {
				t.Errorf("expected generated id gen-1, got %s", created.ID)
			}
			if created.Album != nil || created.Duration != nil || created.ImageURL != nil || created.PreviewURL != nil || created.ExternalID != nil {
				t.Errorf("expected absent optionals to be nil, got %+v", created)
			}
			if created.PlayCount != 0 || created.IsLiked {
				t.Errorf("expected zero play count and unliked, got %+v", created)
			}
		})

		t.Run("unknown id is not found", func(t *testing.T) {
			s := newStore(t)
			if _, err := s.GetTrack("missing"); !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}
		})

		t.Run("list keeps insertion order", func(t *testing.T) {
			s := newStore(t)
			for _, id := range []string{"c", "a", "b"} {
				mustCreateTrack(t, s, models.NewTrack{ID: id, Title: id, Artist: id, Platform: "youtube"})
			}
			tracks, err := s.ListTracks()
			if err != nil {
				t.Fatalf("failed to list tracks: %v", err)
			}
			if got := ids(tracks, trackID); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
				t.Errorf("expected insertion order, got %v", got)
			}
		})

		t.Run("update merges supplied fields", func(t *testing.T) {
			s := newStore(t)
			mustCreateTrack(t, s, models.NewTrack{ID: "tr_1", Title: "Old", Artist: "Artist", Platform: "youtube", PlayCount: 3})

			updated, err := s.UpdateTrack("tr_1", models.TrackPatch{Title: models.Ptr("New"), IsLiked: models.Ptr(true)})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}
			if updated.Title != "New" || !updated.IsLiked || updated.Artist != "Artist" || updated.PlayCount != 3 {
				t.Errorf("unexpected merge result %+v", updated)
			}

			got, _ := s.GetTrack("tr_1")
			if !reflect.DeepEqual(updated, got) {
				t.Errorf("expected stored record to match update result")
			}
		})

		t.Run("update clears nullable fields", func(t *testing.T) {
			s := newStore(t)
			mustCreateTrack(t, s, models.NewTrack{ID: "tr_1", Title: "t", Artist: "a", Platform: "youtube",
				Album: models.Ptr("Album"), Duration: models.Ptr(200), PreviewURL: models.Ptr("p")})

			updated, err := s.UpdateTrack("tr_1", models.TrackPatch{Album: models.Null[string](), Duration: models.Null[int]()})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}
			if updated.Album != nil || updated.Duration != nil {
				t.Errorf("expected album and duration cleared, got %+v", updated)
			}

			got, _ := s.GetTrack("tr_1")
			if got.Album != nil || got.Duration != nil || got.PreviewURL == nil || *got.PreviewURL != "p" {
				t.Errorf("unexpected stored track %+v", got)
			}
		})

		t.Run("returned tracks do not alias stored values", func(t *testing.T) {
			s := newStore(t)
			created := mustCreateTrack(t, s, models.NewTrack{ID: "tr_1", Title: "t", Artist: "a", Platform: "youtube",
				Album: models.Ptr("Album"), Duration: models.Ptr(200)})
			*created.Album = "changed"

			got, _ := s.GetTrack("tr_1")
			*got.Duration = 1
			updated, _ := s.UpdateTrack("tr_1", models.TrackPatch{IsLiked: models.Ptr(true)})
			*updated.Album = "again"
			listed, _ := s.ListTracks()
			*listed[0].Duration = 2

			got, _ = s.GetTrack("tr_1")
			if *got.Album != "Album" || *got.Duration != 200 {
				t.Errorf("expected stored track unchanged, got album %q duration %d", *got.Album, *got.Duration)
			}
		})

		t.Run("update on unknown id mutates nothing", func(t *testing.T) {
			s := newStore(t)
			mustCreateTrack(t, s, models.NewTrack{ID: "tr_1", Title: "t", Artist: "a", Platform: "youtube"})
			before, _ := s.ListTracks()

			if _, err := s.UpdateTrack("nope", models.TrackPatch{Title: models.Ptr("x")}); !errors.Is(err, shared.ErrTrackNotFound) {
				t.Errorf("expected ErrTrackNotFound, got %v", err)
			}

			after, _ := s.ListTracks()
			if !reflect.DeepEqual(before, after) {
				t.Error("expected tracks unchanged")
			}
		})

		t.Run("search matches title, artist or album case-insensitively", func(t *testing.T) {
			s := newStore(t)
			mustCreateTrack(t, s, models.NewTrack{ID: "1", Title: "Yalnızlık", Artist: "Tarkan", Album: models.Ptr("Metamorfoz"), Platform: "spotify"})
			mustCreateTrack(t, s, models.NewTrack{ID: "2", Title: "Gemiler", Artist: "Ceza", Platform: "youtube"})
			mustCreateTrack(t, s, models.NewTrack{ID: "3", Title: "Kırmızı", Artist: "Haluk Levent", Album: models.Ptr("Yollarda"), Platform: "youtube"})

			tc := []struct {
				query string
				want  []string
			}{
				{"TARKAN", []string{"1"}},
				{"metamorfoz", []string{"1"}},
				{"ge", []string{"2"}},
				{"l", []string{"1", "2", "3"}},
				{"", []string{"1", "2", "3"}},
				{"yok", []string{}},
			}
			for _, tt := range tc {
				got, err := s.SearchTracks(tt.query)
				if err != nil {
					t.Fatalf("search failed: %v", err)
				}
				if gotIDs := ids(got, trackID); !reflect.DeepEqual(gotIDs, tt.want) {
					t.Errorf("SearchTracks(%q) = %v, want %v", tt.query, gotIDs, tt.want)
				}
			}
		})

		t.Run("trending is capped, sorted and stable", func(t *testing.T) {
			s := newStore(t)
			plays := []int{5, 50, 5, 500, 50, 1, 1, 1, 1, 1, 1, 1}
			for i, p := range plays {
				id := fmt.Sprintf("t%02d", i)
				mustCreateTrack(t, s, models.NewTrack{ID: id, Title: id, Artist: "a", Platform: "youtube", PlayCount: p})
			}

			got, err := s.ListTrendingTracks()
			if err != nil {
				t.Fatalf("trending failed: %v", err)
			}
			if len(got) != 10 {
				t.Fatalf("expected 10 tracks, got %d", len(got))
			}
			want := []string{"t03", "t01", "t04", "t00", "t02", "t05", "t06", "t07", "t08", "t09"}
			if gotIDs := ids(got, trackID); !reflect.DeepEqual(gotIDs, want) {
				t.Errorf("expected %v, got %v", want, gotIDs)
			}
		})
	})

	t.Run("Playlists", func(t *testing.T) {
		t.Run("create assigns id and timestamp", func(t *testing.T) {
			clock := NewClock()
			s := newStore(t, store.WithClock(clock.Now), store.WithIDGenerator(Sequential("pl")))

			created, err := s.CreatePlaylist(models.NewPlaylist{Name: "Mix", TrackIDs: []string{"dangling"}})
			if err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
			if created.ID != "pl-1" {
				t.Errorf("expected id pl-1, got %s", created.ID)
			}
			if !created.CreatedAt.Equal(clock.Now()) {
				t.Errorf("expected createdAt %v, got %v", clock.Now(), created.CreatedAt)
			}
			if created.IsAiGenerated || created.Description != nil {
				t.Errorf("unexpected defaults %+v", created)
			}

			got, err := s.GetPlaylist("pl-1")
			if err != nil {
				t.Fatalf("failed to get playlist: %v", err)
			}
			if got.Name != "Mix" || !reflect.DeepEqual(got.TrackIDs, []string{"dangling"}) || !got.CreatedAt.Equal(created.CreatedAt) {
				t.Errorf("unexpected playlist %+v", got)
			}
		})

		t.Run("empty track list is never nil", func(t *testing.T) {
			s := newStore(t)
			created, _ := s.CreatePlaylist(models.NewPlaylist{Name: "Empty"})
			got, _ := s.GetPlaylist(created.ID)
			if got.TrackIDs == nil {
				t.Error("expected empty, non-nil track ids")
			}
		})

		t.Run("update merges and keeps createdAt", func(t *testing.T) {
			clock := NewClock()
			s := newStore(t, store.WithClock(clock.Now))
			created, _ := s.CreatePlaylist(models.NewPlaylist{Name: "Old", TrackIDs: []string{"a"}})

			clock.Set(time.Hour)
			updated, err := s.UpdatePlaylist(created.ID, models.PlaylistPatch{Name: models.Ptr("New"), IsAiGenerated: models.Ptr(true)})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}
			if updated.Name != "New" || !updated.IsAiGenerated || !reflect.DeepEqual(updated.TrackIDs, []string{"a"}) {
				t.Errorf("unexpected update %+v", updated)
			}
			if !updated.CreatedAt.Equal(created.CreatedAt) {
				t.Error("expected createdAt to be immutable")
			}

			cleared, err := s.UpdatePlaylist(created.ID, models.PlaylistPatch{Description: models.Some("d")})
			if err != nil || cleared.Description == nil {
				t.Fatalf("failed to set description: %+v %v", cleared, err)
			}
			cleared, err = s.UpdatePlaylist(created.ID, models.PlaylistPatch{Description: models.Null[string]()})
			if err != nil || cleared.Description != nil {
				t.Errorf("expected description cleared, got %+v %v", cleared, err)
			}

			if _, err := s.UpdatePlaylist("missing", models.PlaylistPatch{}); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("delete twice", func(t *testing.T) {
			s := newStore(t)
			created, _ := s.CreatePlaylist(models.NewPlaylist{Name: "Gone"})

			if ok, err := s.DeletePlaylist(created.ID); err != nil || !ok {
				t.Fatalf("expected first delete to succeed, got %v %v", ok, err)
			}
			if ok, err := s.DeletePlaylist(created.ID); err != nil || ok {
				t.Errorf("expected second delete to report false, got %v %v", ok, err)
			}
			if _, err := s.GetPlaylist(created.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
			list, _ := s.ListPlaylists()
			if len(list) != 0 {
				t.Errorf("expected no playlists, got %d", len(list))
			}
		})

		t.Run("returned playlists are copies", func(t *testing.T) {
			s := newStore(t)
			created, _ := s.CreatePlaylist(models.NewPlaylist{Name: "Mix", TrackIDs: []string{"a", "b"}})
			created.TrackIDs[0] = "mutated"

			got, _ := s.GetPlaylist(created.ID)
			if got.TrackIDs[0] != "a" {
				t.Error("expected stored playlist to be unaffected by caller mutation")
			}
		})
	})

	t.Run("AiInteractions", func(t *testing.T) {
		t.Run("newest first for any insertion order", func(t *testing.T) {
			clock := NewClock()
			s := newStore(t, store.WithClock(clock.Now), store.WithIDGenerator(Sequential("ai")))

			offsets := []time.Duration{2 * time.Minute, 0, 5 * time.Minute, time.Minute, 5 * time.Minute}
			for i, d := range offsets {
				clock.Set(d)
				if _, err := s.CreateAiInteraction(models.NewAiInteraction{Query: fmt.Sprint(i), Response: "r", Recommendations: []string{"tr_1"}}); err != nil {
					t.Fatalf("failed to create interaction: %v", err)
				}
			}

			got, err := s.ListAiInteractions()
			if err != nil {
				t.Fatalf("failed to list: %v", err)
			}
			want := []string{"ai-5", "ai-3", "ai-1", "ai-4", "ai-2"}
			if gotIDs := ids(got, func(a models.AiInteraction) string { return a.ID }); !reflect.DeepEqual(gotIDs, want) {
				t.Errorf("expected %v, got %v", want, gotIDs)
			}
			for i := 1; i < len(got); i++ {
				if got[i].CreatedAt.After(got[i-1].CreatedAt) {
					t.Errorf("interactions not sorted descending at %d", i)
				}
			}
		})

		t.Run("get by id", func(t *testing.T) {
			s := newStore(t)
			created, _ := s.CreateAiInteraction(models.NewAiInteraction{Query: "q", Response: "r", Recommendations: []string{"a", "b"}})

			got, err := s.GetAiInteraction(created.ID)
			if err != nil {
				t.Fatalf("failed to get interaction: %v", err)
			}
			if got.Query != "q" || !reflect.DeepEqual(got.Recommendations, []string{"a", "b"}) {
				t.Errorf("unexpected interaction %+v", got)
			}
			if _, err := s.GetAiInteraction("missing"); !errors.Is(err, shared.ErrInteractionNotFound) {
				t.Errorf("expected ErrInteractionNotFound, got %v", err)
			}
		})
	})

	t.Run("UserPreferences", func(t *testing.T) {
		t.Run("absent until first update", func(t *testing.T) {
			s := newStore(t)
			if _, err := s.GetUserPreferences(); !errors.Is(err, shared.ErrPreferencesNotFound) {
				t.Errorf("expected ErrPreferencesNotFound, got %v", err)
			}
		})

		t.Run("first update creates with empty defaults", func(t *testing.T) {
			s := newStore(t, store.WithIDGenerator(Sequential("pref")))
			prefs, err := s.UpdateUserPreferences(models.PreferencesPatch{FavoriteGenres: &[]string{"Rock"}})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}
			if prefs.ID != "pref-1" {
				t.Errorf("expected generated id, got %s", prefs.ID)
			}
			if !reflect.DeepEqual(prefs.FavoriteGenres, []string{"Rock"}) {
				t.Errorf("unexpected genres %v", prefs.FavoriteGenres)
			}
			if prefs.RecentSearches == nil || len(prefs.RecentSearches) != 0 || len(prefs.LikedTracks) != 0 || len(prefs.PlayHistory) != 0 {
				t.Errorf("expected empty defaults, got %+v", prefs)
			}
		})

		t.Run("supplied id names a created record only", func(t *testing.T) {
			s := newStore(t)
			prefs, err := s.UpdateUserPreferences(models.PreferencesPatch{ID: "user_1"})
			if err != nil || prefs.ID != "user_1" {
				t.Fatalf("expected id user_1, got %+v %v", prefs, err)
			}
			prefs, err = s.UpdateUserPreferences(models.PreferencesPatch{ID: "other", LikedTracks: &[]string{"tr_1"}})
			if err != nil || prefs.ID != "user_1" {
				t.Errorf("expected existing id kept, got %+v %v", prefs, err)
			}
		})

		t.Run("later updates shallow merge", func(t *testing.T) {
			s := newStore(t)
			first, _ := s.UpdateUserPreferences(models.PreferencesPatch{FavoriteGenres: &[]string{"Rock"}, LikedTracks: &[]string{"tr_1"}})
			second, err := s.UpdateUserPreferences(models.PreferencesPatch{LikedTracks: &[]string{"tr_2", "tr_3"}})
			if err != nil {
				t.Fatalf("failed to update: %v", err)
			}
			if second.ID != first.ID {
				t.Error("expected singleton id to be stable")
			}
			if !reflect.DeepEqual(second.FavoriteGenres, []string{"Rock"}) {
				t.Errorf("expected genres preserved, got %v", second.FavoriteGenres)
			}
			if !reflect.DeepEqual(second.LikedTracks, []string{"tr_2", "tr_3"}) {
				t.Errorf("expected liked tracks replaced, got %v", second.LikedTracks)
			}

			got, _ := s.GetUserPreferences()
			if !reflect.DeepEqual(got, second) {
				t.Errorf("expected stored preferences to match, got %+v", got)
			}
		})
	})

	t.Run("Seed", func(t *testing.T) {
		s := newStore(t)
		seeded, err := store.Seed(s)
		if err != nil || !seeded {
			t.Fatalf("expected seed to run, got %v %v", seeded, err)
		}

		tracks, _ := s.ListTracks()
		if len(tracks) != 8 || tracks[0].ID != "tr_1" || tracks[7].ID != "tr_8" {
			t.Errorf("unexpected sample tracks %v", ids(tracks, trackID))
		}
		playlists, _ := s.ListPlaylists()
		if len(playlists) != 2 || !playlists[0].IsAiGenerated {
			t.Errorf("unexpected sample playlists %+v", playlists)
		}
		prefs, err := s.GetUserPreferences()
		if err != nil || len(prefs.FavoriteGenres) != 3 || prefs.ID != store.SamplePreferencesID {
			t.Errorf("unexpected sample preferences %+v %v", prefs, err)
		}

		if seeded, _ := store.Seed(s); seeded {
			t.Error("expected second seed to be skipped")
		}
	})
}
