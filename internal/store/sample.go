package store

import (
	"fmt"

	"github.com/desertthunder/melodi/internal/models"
)

func sampleTrack(id, title, artist, album string, duration int, image, platform string, plays int, liked bool) models.NewTrack {
	return models.NewTrack{
		ID:        id,
		Title:     title,
		Artist:    artist,
		Album:     models.Ptr(album),
		Duration:  models.Ptr(duration),
		ImageURL:  models.Ptr("https://images.unsplash.com/" + image + "?w=400&h=400"),
		Platform:  platform,
		PlayCount: plays,
		IsLiked:   liked,
	}
}

// SampleTracks is the demo catalog loaded into an empty store.
func SampleTracks() []models.NewTrack {
	return []models.NewTrack{
		sampleTrack("tr_1", "Gel Gör Beni Aşk Neyledi", "Sezen Aksu", "Gülümse", 245, "photo-1493225457124-a3eb161ffa5f", models.PlatformYouTube, 1250000, false),
		sampleTrack("tr_2", "Yalnızlık", "Tarkan", "Metamorfoz", 198, "photo-1511671782779-c97d3d27a1d4", models.PlatformSpotify, 890000, true),
		sampleTrack("tr_3", "Ayrılık", "Müslüm Gürses", "Klasikler", 267, "photo-1514320291840-2e0a9bf2a9ae", models.PlatformLastFM, 567000, false),
		sampleTrack("tr_4", "Kırmızı", "Haluk Levent", "Yollarda", 289, "photo-1493225457124-a3eb161ffa5f", models.PlatformYouTube, 234000, false),
		sampleTrack("tr_5", "Cesaretin Var mı Aşka", "Sertab Erener", "Lal", 321, "photo-1470225620780-dba8ba36b745", models.PlatformSpotify, 445000, true),
		sampleTrack("tr_6", "Gemiler", "Ceza", "Rapstar", 278, "photo-1506905925346-21bda4d32df4", models.PlatformYouTube, 1100000, false),
		sampleTrack("tr_7", "Adını Feriha Koydum", "Orhan Gencebay", "Klasikler", 245, "photo-1493225457124-a3eb161ffa5f", models.PlatformLastFM, 678000, false),
		sampleTrack("tr_8", "İstanbul'da Sonbahar", "Ajda Pekkan", "Süperstar", 213, "photo-1459749411175-04bf5292ceea", models.PlatformSpotify, 789000, true),
	}
}

// SamplePlaylists returns the demo AI playlists referencing [SampleTracks].
func SamplePlaylists() []models.NewPlaylist {
	return []models.NewPlaylist{
		{
			Name:          "AI Önerisi: Türkçe Pop Klasikleri",
			Description:   models.Ptr("Yapay zeka tarafından seçilen zamansız Türkçe pop şarkıları"),
			IsAiGenerated: true,
			TrackIDs:      []string{"tr_1", "tr_2", "tr_5", "tr_8"},
		},
		{
			Name:          "Melankolik Anlar",
			Description:   models.Ptr("Hüzünlü ve duygusal şarkılar"),
			IsAiGenerated: true,
			TrackIDs:      []string{"tr_3", "tr_7"},
		},
	}
}

// SamplePreferencesID names the seeded preferences record.
const SamplePreferencesID = "user_1"

// SamplePreferences returns the demo preferences.
func SamplePreferences() models.PreferencesPatch {
	return models.PreferencesPatch{
		ID:             SamplePreferencesID,
		FavoriteGenres: &[]string{"Türkçe Pop", "Arabesk", "Rock"},
		RecentSearches: &[]string{"Sezen Aksu", "Tarkan", "melankolik şarkılar"},
		LikedTracks:    &[]string{"tr_2", "tr_5", "tr_8"},
		PlayHistory:    &[]string{"tr_1", "tr_2", "tr_3", "tr_5"},
	}
}

// Seed loads the sample catalog into s. It does nothing and returns false when s already holds tracks.
func Seed(s Store) (bool, error) {
	existing, err := s.ListTracks()
	if err != nil {
		return false, fmt.Errorf("failed to inspect store: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, t := range SampleTracks() {
		if _, err := s.CreateTrack(t); err != nil {
			return false, fmt.Errorf("failed to seed track %s: %w", t.ID, err)
		}
	}
	for _, p := range SamplePlaylists() {
		if _, err := s.CreatePlaylist(p); err != nil {
			return false, fmt.Errorf("failed to seed playlist %q: %w", p.Name, err)
		}
	}
	if _, err := s.UpdateUserPreferences(SamplePreferences()); err != nil {
		return false, fmt.Errorf("failed to seed preferences: %w", err)
	}
	return true, nil
}
