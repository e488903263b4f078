package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

func lastfmServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("method") != "track.search" || q.Get("format") != "json" || q.Get("limit") != "5" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("api_key") != "lfm-key" {
			t.Errorf("expected api_key lfm-key, got %s", q.Get("api_key"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestLastFMService(t *testing.T) {
	t.Run("Name", func(t *testing.T) {
		if svc := NewLastFMService("k", "", nil); svc.Name() != models.PlatformLastFM {
			t.Errorf("expected name %q, got %s", models.PlatformLastFM, svc.Name())
		}
		if svc := NewLastFMService("k", "", nil); svc.baseURL != defaultLastFMBaseURL {
			t.Errorf("expected default base URL, got %s", svc.baseURL)
		}
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("maps a track list", func(t *testing.T) {
			server := lastfmServer(t, `{"results":{"trackmatches":{"track":[
				{"name":"Gülpembe","artist":"Barış Manço","mbid":"m-1","listeners":"12345",
				 "image":[{"#text":"http://img/s.png","size":"small"},{"#text":"http://img/m.png","size":"medium"}]},
				{"name":"Dönence","artist":"Barış Manço","mbid":"","listeners":"n/a","image":[]}
			]}}}`)
			defer server.Close()

			tracks, err := NewLastFMService("lfm-key", server.URL, nil).Search(context.Background(), "barış")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}

			first := tracks[0]
			if first.ID != "lfm_m-1" {
				t.Errorf("expected id lfm_m-1, got %s", first.ID)
			}
			if first.ImageURL == nil || *first.ImageURL != "http://img/m.png" {
				t.Errorf("expected medium image, got %v", first.ImageURL)
			}
			if first.ExternalID == nil || *first.ExternalID != "m-1" {
				t.Errorf("expected externalId m-1, got %v", first.ExternalID)
			}
			if first.PlayCount != 12345 {
				t.Errorf("expected playCount 12345, got %d", first.PlayCount)
			}

			second := tracks[1]
			if !strings.HasPrefix(second.ID, "lfm_") || second.ID == "lfm_" {
				t.Errorf("expected generated id, got %s", second.ID)
			}
			if second.ExternalID != nil {
				t.Errorf("expected nil externalId, got %s", *second.ExternalID)
			}
			if second.ImageURL != nil || second.PlayCount != 0 {
				t.Errorf("expected empty image and playCount, got %v / %d", second.ImageURL, second.PlayCount)
			}
		})

		t.Run("accepts a single match object", func(t *testing.T) {
			server := lastfmServer(t, `{"results":{"trackmatches":{"track":
				{"name":"Only","artist":"One","mbid":"m-2","listeners":"7","image":[]}}}}`)
			defer server.Close()

			tracks, err := NewLastFMService("lfm-key", server.URL, nil).Search(context.Background(), "only")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 || tracks[0].ID != "lfm_m-2" {
				t.Errorf("expected single track lfm_m-2, got %+v", tracks)
			}
		})

		t.Run("accepts no matches", func(t *testing.T) {
			server := lastfmServer(t, `{"results":{"trackmatches":{"track":[]}}}`)
			defer server.Close()

			tracks, err := NewLastFMService("lfm-key", server.URL, nil).Search(context.Background(), "none")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 0 {
				t.Errorf("expected no tracks, got %d", len(tracks))
			}
		})

		t.Run("surfaces API error envelope", func(t *testing.T) {
			server := lastfmServer(t, `{"error":10,"message":"Invalid API key"}`)
			defer server.Close()

			_, err := NewLastFMService("lfm-key", server.URL, nil).Search(context.Background(), "x")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "Invalid API key") {
				t.Errorf("expected message in error, got %v", err)
			}
		})
	})

	t.Run("LastFMTracks", func(t *testing.T) {
		var tracks LastFMTracks
		if err := json.Unmarshal([]byte(`null`), &tracks); err != nil || tracks != nil {
			t.Errorf("expected nil for null, got %v (%v)", tracks, err)
		}
		if err := json.Unmarshal([]byte(`"bad"`), &tracks); err == nil {
			t.Error("expected error for a string value")
		}
	})
}
