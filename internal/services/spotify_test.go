package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

func newSpotifyServer(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			t.Errorf("expected basic auth client:secret, got %s:%s (%v)", id, secret, ok)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
			t.Errorf("expected grant_type client_credentials, got %s", gt)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", auth)
		}
		q := r.URL.Query()
		if q.Get("q") != "duman" || q.Get("type") != "track" || q.Get("limit") != "5" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{
					{
						"id":   "sp1",
						"name": "Bu Akşam",
						"artists": []map[string]string{
							{"id": "a1", "name": "Duman"},
							{"id": "a2", "name": "Guest"},
						},
						"album": map[string]any{
							"name": "Seni Kendime Sakladım",
							"images": []map[string]any{
								{"url": "http://img/640.jpg", "height": 640, "width": 640},
								{"url": "http://img/300.jpg", "height": 300, "width": 300},
							},
						},
						"duration_ms": 245500,
						"preview_url": "http://preview/sp1.mp3",
						"popularity":  71,
					},
					{
						"id":          "sp2",
						"name":        "No Images",
						"artists":     []map[string]string{{"id": "a1", "name": "Duman"}},
						"album":       map[string]any{"name": "X", "images": []map[string]any{{"url": "http://img/only.jpg"}}},
						"duration_ms": 1000,
						"preview_url": nil,
						"popularity":  3,
					},
				},
			},
		})
	})
	return httptest.NewServer(mux)
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService("client", "secret", "", "", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != models.PlatformSpotify {
				t.Errorf("expected service name %q, got %s", models.PlatformSpotify, srv.Name())
			}
			if srv.baseURL != spotifyBaseURL || srv.config.TokenURL != spotifyTokenURL {
				t.Errorf("expected default URLs, got %s and %s", srv.baseURL, srv.config.TokenURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			if _, err := NewSpotifyService("", "secret", "", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			if _, err := NewSpotifyService("client", "", "", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		var tokenCalls atomic.Int32
		server := newSpotifyServer(t, &tokenCalls)
		defer server.Close()

		svc, err := NewSpotifyService("client", "secret", server.URL+"/v1", server.URL+"/api/token", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tracks, err := svc.Search(context.Background(), "duman")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}

		t.Run("maps track fields", func(t *testing.T) {
			track := tracks[0]
			if track.ID != "sp_sp1" {
				t.Errorf("expected id sp_sp1, got %s", track.ID)
			}
			if track.Artist != "Duman, Guest" {
				t.Errorf("expected joined artists, got %s", track.Artist)
			}
			if track.Album == nil || *track.Album != "Seni Kendime Sakladım" {
				t.Errorf("unexpected album %v", track.Album)
			}
			if track.Duration == nil || *track.Duration != 245 {
				t.Errorf("expected duration 245, got %v", track.Duration)
			}
			if track.ImageURL == nil || *track.ImageURL != "http://img/300.jpg" {
				t.Errorf("expected second album image, got %v", track.ImageURL)
			}
			if track.PreviewURL == nil || *track.PreviewURL != "http://preview/sp1.mp3" {
				t.Errorf("unexpected preview %v", track.PreviewURL)
			}
			if track.PlayCount != 71 {
				t.Errorf("expected playCount 71, got %d", track.PlayCount)
			}
			if track.ExternalID == nil || *track.ExternalID != "sp1" {
				t.Errorf("unexpected externalId %v", track.ExternalID)
			}
		})

		t.Run("leaves image unset with a single album image", func(t *testing.T) {
			if tracks[1].ImageURL != nil {
				t.Errorf("expected nil image, got %s", *tracks[1].ImageURL)
			}
			if tracks[1].PreviewURL != nil {
				t.Errorf("expected nil preview, got %s", *tracks[1].PreviewURL)
			}
		})

		t.Run("reuses the cached token", func(t *testing.T) {
			if _, err := svc.Search(context.Background(), "duman"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if n := tokenCalls.Load(); n != 1 {
				t.Errorf("expected 1 token request, got %d", n)
			}
		})
	})

	t.Run("Token Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client"}`))
		}))
		defer server.Close()

		svc, _ := NewSpotifyService("client", "secret", server.URL, server.URL+"/token", nil)
		if _, err := svc.Search(context.Background(), "x"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
