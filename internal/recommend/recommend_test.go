package recommend

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
)

func sampleCatalog(t *testing.T) []models.Track {
	t.Helper()
	s := store.NewMemoryStore()
	if _, err := store.Seed(s); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	tracks, _ := s.ListTracks()
	return tracks
}

func TestSelector(t *testing.T) {
	selector, err := NewSelector(DefaultCategories())
	if err != nil {
		t.Fatalf("failed to build selector: %v", err)
	}
	tracks := sampleCatalog(t)

	tc := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{name: "melancholic", query: "hüzünlü şarkılar", category: "melancholic", want: []string{"tr_3", "tr_7"}},
		{name: "melancholic upper case", query: "HÜZÜNLÜ bir gece", category: "melancholic", want: []string{"tr_3", "tr_7"}},
		{name: "energetic", query: "mutlu dans", category: "energetic", want: []string{"tr_1", "tr_2", "tr_6"}},
		{name: "turkish pop", query: "türkçe pop öner", category: "turkish-pop", want: []string{"tr_1", "tr_5", "tr_8"}},
		{name: "rock", query: "biraz rock", category: "rock", want: []string{"tr_1", "tr_4", "tr_6"}},
		{name: "focus", query: "çalışma müziği", category: "focus", want: []string{"tr_1", "tr_3", "tr_4"}},
		{name: "playlist", query: "bana bir liste yap", category: "playlist", want: []string{"tr_1", "tr_2", "tr_3", "tr_4", "tr_5"}},
		{name: "first category wins", query: "hüzünlü ama dans", category: "melancholic", want: []string{"tr_3", "tr_7"}},
		{name: "fallback", query: "random xyz", category: "popular", want: []string{"tr_1", "tr_6", "tr_2", "tr_8"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			result := selector.Select(tt.query, tracks)
			if result.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, result.Category)
			}
			if !reflect.DeepEqual(result.TrackIDs, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, result.TrackIDs)
			}
			if result.Response == "" {
				t.Error("expected a response")
			}
		})
	}

	t.Run("fallback response quotes the query", func(t *testing.T) {
		result := selector.Select("random xyz", tracks)
		if !strings.Contains(result.Response, `"random xyz"`) {
			t.Errorf("expected quoted query in %q", result.Response)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		result := selector.Select("hüzünlü", nil)
		if len(result.TrackIDs) != 0 {
			t.Errorf("expected no ids, got %v", result.TrackIDs)
		}
	})

	t.Run("tracks without duration never match focus", func(t *testing.T) {
		result := selector.Select("odaklanma", []models.Track{{ID: "x", Title: "t", Artist: "a"}})
		if len(result.TrackIDs) != 0 {
			t.Errorf("expected no ids, got %v", result.TrackIDs)
		}
	})
}

func TestRule(t *testing.T) {
	track := models.Track{ID: "x", Title: "Ayrılık", Artist: "Müslüm Gürses", Platform: "lastfm", PlayCount: 900, Duration: models.Ptr(300)}

	tc := []struct {
		name string
		rule Rule
		want bool
	}{
		{name: "empty rule", rule: Rule{}, want: true},
		{name: "artist substring", rule: Rule{Artists: []string{"müslüm"}}, want: true},
		{name: "title substring", rule: Rule{Titles: []string{"Ayrı"}}, want: true},
		{name: "platform", rule: Rule{Platforms: []string{"lastfm"}}, want: true},
		{name: "play count strictly above", rule: Rule{MinPlayCount: 900}, want: false},
		{name: "duration upper bound exclusive", rule: Rule{MinDuration: 200, MaxDuration: 300}, want: false},
		{name: "duration open upper bound", rule: Rule{MinDuration: 200}, want: true},
		{name: "no criterion matches", rule: Rule{Artists: []string{"Tarkan"}, Platforms: []string{"spotify"}}, want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Match(track); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSelector(t *testing.T) {
	t.Run("rejects unnamed category", func(t *testing.T) {
		if _, err := NewSelector([]Category{{Keywords: []string{"x"}, Limit: 1}}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		if _, err := NewSelector([]Category{{Name: "x", Keywords: []string{"x"}}}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects two fallbacks", func(t *testing.T) {
		_, err := NewSelector([]Category{{Name: "a", Limit: 1}, {Name: "b", Limit: 1}})
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("uses built-in fallback when none configured", func(t *testing.T) {
		selector, err := NewSelector([]Category{{Name: "only", Keywords: []string{"only"}, Limit: 1}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := selector.Select("nothing", sampleCatalog(t)); got.Category != "popular" || len(got.TrackIDs) != 4 {
			t.Errorf("unexpected fallback result %+v", got)
		}
		if len(selector.Categories()) != 1 {
			t.Errorf("expected 1 keyword category, got %d", len(selector.Categories()))
		}
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("defaults when empty", func(t *testing.T) {
		selector, err := FromConfig(shared.RecommendConfig{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(selector.Categories()) != 6 {
			t.Errorf("expected 6 keyword categories, got %d", len(selector.Categories()))
		}
	})

	t.Run("configured categories replace defaults", func(t *testing.T) {
		selector, err := FromConfig(shared.RecommendConfig{Categories: []shared.CategoryConfig{
			{Name: "arabesk", Keywords: []string{"arabesk"}, Response: "Arabesk: {query}", Artists: []string{"Orhan Gencebay"}},
			{Name: "rest", Response: "Liste", Limit: 2},
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tracks := sampleCatalog(t)
		got := selector.Select("arabesk lütfen", tracks)
		if got.Category != "arabesk" || !reflect.DeepEqual(got.TrackIDs, []string{"tr_7"}) {
			t.Errorf("unexpected result %+v", got)
		}
		if got.Response != "Arabesk: arabesk lütfen" {
			t.Errorf("unexpected response %q", got.Response)
		}

		// "hüzünlü" is no longer a keyword, so the configured fallback takes the first two tracks.
		got = selector.Select("hüzünlü", tracks)
		if got.Category != "rest" || !reflect.DeepEqual(got.TrackIDs, []string{"tr_1", "tr_2"}) {
			t.Errorf("unexpected fallback result %+v", got)
		}
	})
}

func TestAssistant(t *testing.T) {
	newAssistant := func(t *testing.T) (*Assistant, store.Store) {
		t.Helper()
		s := store.NewMemoryStore()
		if _, err := store.Seed(s); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		selector, _ := NewSelector(DefaultCategories())
		return NewAssistant(s, selector, nil), s
	}

	t.Run("persists the interaction", func(t *testing.T) {
		assistant, s := newAssistant(t)

		interaction, err := assistant.Ask("mutlu dans")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if interaction.ID == "" || interaction.Query != "mutlu dans" || len(interaction.Recommendations) != 3 {
			t.Errorf("unexpected interaction %+v", interaction)
		}

		logged, _ := s.ListAiInteractions()
		if len(logged) != 1 || logged[0].ID != interaction.ID {
			t.Errorf("expected interaction to be logged, got %+v", logged)
		}
	})

	t.Run("answers a whitespace query with the fallback", func(t *testing.T) {
		assistant, _ := newAssistant(t)

		interaction, err := assistant.Ask("   ")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(interaction.Recommendations) == 0 {
			t.Error("expected fallback recommendations")
		}
	})

	t.Run("rejects empty query", func(t *testing.T) {
		assistant, s := newAssistant(t)

		_, err := assistant.Ask("")
		var verr *shared.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if logged, _ := s.ListAiInteractions(); len(logged) != 0 {
			t.Error("expected nothing to be logged")
		}
	})
}
