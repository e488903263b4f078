package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
	th "github.com/desertthunder/melodi/internal/testing"
)

func sampleExport() *PlaylistExport {
	return &PlaylistExport{
		Playlist: models.Playlist{
			ID:            "pl_1",
			Name:          "Test Playlist",
			Description:   models.Ptr("A test playlist"),
			IsAiGenerated: true,
			CreatedAt:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			TrackIDs:      []string{"tr_1", "tr_2", "tr_x"},
		},
		Tracks: []models.Track{
			{
				ID:        "tr_1",
				Title:     "Song One",
				Artist:    "Artist One",
				Album:     models.Ptr("Album One"),
				Duration:  models.Ptr(185),
				Platform:  models.PlatformYouTube,
				PlayCount: 1200,
			},
			{
				ID:       "tr_2",
				Title:    "Song, Two",
				Artist:   "Artist Two",
				Platform: models.PlatformSpotify,
			},
		},
		Missing: []string{"tr_x"},
	}
}

func TestNewPlaylistExport(t *testing.T) {
	s := store.NewMemoryStore()
	if _, err := store.Seed(s); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	playlist, err := s.CreatePlaylist(models.NewPlaylist{Name: "Mixed", TrackIDs: []string{"tr_2", "gone", "tr_1"}})
	if err != nil {
		t.Fatalf("create playlist failed: %v", err)
	}

	t.Run("resolves tracks in playlist order", func(t *testing.T) {
		export, err := NewPlaylistExport(s, playlist.ID)
		if err != nil {
			t.Fatalf("NewPlaylistExport failed: %v", err)
		}
		if len(export.Tracks) != 2 || export.Tracks[0].ID != "tr_2" || export.Tracks[1].ID != "tr_1" {
			t.Errorf("unexpected tracks: %+v", export.Tracks)
		}
		if len(export.Missing) != 1 || export.Missing[0] != "gone" {
			t.Errorf("expected missing [gone], got %v", export.Missing)
		}
	})

	t.Run("unknown playlist", func(t *testing.T) {
		if _, err := NewPlaylistExport(s, "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleExport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "ID,Title,Artist,Album,Duration,Platform,PlayCount" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[1] != "tr_1,Song One,Artist One,Album One,185,youtube,1200" {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if lines[2] != `tr_2,"Song, Two",Artist Two,,,spotify,0` {
			t.Errorf("unexpected second row: %s", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleExport(), "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			output := string(data)

			expected := []string{
				"# Test Playlist",
				"**Description**: A test playlist",
				"**Tracks**: 2",
				"**Source**: AI generated",
				"**Created**: 2024-05-01",
				"## Tracks",
				"1. Artist One - Song One (Album One) [3:05]",
				"2. Artist Two - Song, Two [--:--]",
				"## Missing",
				"- `tr_x`",
			}
			for _, want := range expected {
				if !strings.Contains(output, want) {
					t.Errorf("Markdown missing %q, got:\n%s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("Markdown should not include a cover without an image")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(sampleExport(), "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Error("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		export := sampleExport()
		export.Playlist.Description = nil

		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		output := string(data)

		if !strings.HasPrefix(output, "Playlist: Test Playlist\nTracks: 2\n\n") {
			t.Errorf("unexpected text header:\n%s", output)
		}
		if !strings.Contains(output, "1. Artist One - Song One [3:05]") {
			t.Errorf("text missing first track:\n%s", output)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(sampleExport().Playlist)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var decoded models.Playlist
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if decoded.ID != "pl_1" || decoded.Name != "Test Playlist" || len(decoded.TrackIDs) != 3 {
			t.Errorf("unexpected metadata: %+v", decoded)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Error("expected indented JSON")
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegbytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(server.Client(), server.URL)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != "jpegbytes" {
			t.Errorf("unexpected data %q", data)
		}
	})

	t.Run("NonOKStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		if _, err := DownloadImage(nil, server.URL); err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected status error, got %v", err)
		}
	})

	t.Run("TransportError", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(nil, errors.New("connection refused"))}
		if _, err := DownloadImage(client, "http://images.invalid/cover.jpg"); err == nil {
			t.Error("expected transport error")
		}
	})

	t.Run("ReadError", func(t *testing.T) {
		client := &http.Client{Transport: th.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       &th.FCloser{},
		}, nil)}
		if _, err := DownloadImage(client, "http://images.invalid/cover.jpg"); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(sampleExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.TracksFile != "pl_1_tracks.csv" || result.MetadataFile != "pl_1_metadata.json" {
				t.Errorf("unexpected file names: %+v", result)
			}

			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)

			if csvContent := th.MustReadFile(t, result.TracksFile); !strings.Contains(csvContent, "Song One") {
				t.Error("CSV file missing track data")
			}
			if metadata := th.MustReadFile(t, result.MetadataFile); !strings.Contains(metadata, `"name": "Test Playlist"`) {
				t.Errorf("metadata file missing playlist name:\n%s", metadata)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")
			result, err := WriteCSVExport(sampleExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			th.AssertFileExists(t, base+"_tracks.csv")
			th.AssertFileExists(t, result.MetadataFile)
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			if _, err := WriteCSVExport(sampleExport(), filepath.Join(t.TempDir(), "missing", "dir", "x")); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithDefaultDirectory", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteMarkdownExport(sampleExport(), "", nil, nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.Directory != "pl_1" {
				t.Errorf("expected directory pl_1, got %s", result.Directory)
			}

			th.AssertDirExists(t, result.Directory)
			readme := filepath.Join(result.Directory, "README.md")
			th.AssertFileExists(t, readme)
			if content := th.MustReadFile(t, readme); !strings.Contains(content, "# Test Playlist") {
				t.Error("README missing title")
			}
			if result.CoverImage != "" {
				t.Errorf("expected no cover, got %s", result.CoverImage)
			}
		})

		t.Run("WithCoverImage", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpegbytes"))
			}))
			defer server.Close()

			export := sampleExport()
			export.Playlist.ImageURL = models.Ptr(server.URL + "/cover.jpg")
			dir := filepath.Join(t.TempDir(), "out")

			result, err := WriteMarkdownExport(export, dir, server.Client(), nil)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %s", result.CoverImage)
			}
			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if content := th.MustReadFile(t, filepath.Join(dir, "README.md")); !strings.Contains(content, "![Cover](cover.jpg)") {
				t.Error("README missing cover reference")
			}
		})

		t.Run("WithBrokenCoverImage", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			var logs bytes.Buffer
			export := sampleExport()
			export.Playlist.ImageURL = models.Ptr(server.URL)

			result, err := WriteMarkdownExport(export, filepath.Join(t.TempDir(), "out"), server.Client(), shared.NewLogger(&logs))
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverImage != "" || len(result.Files) != 1 {
				t.Errorf("expected README only, got %+v", result)
			}
			if !strings.Contains(logs.String(), "failed to download cover image") {
				t.Errorf("expected warning to be logged, got %q", logs.String())
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			path, err := WriteTextExport(sampleExport(), "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != "pl_1_tracks.txt" {
				t.Errorf("expected pl_1_tracks.txt, got %s", path)
			}
			if content := th.MustReadFile(t, path); !strings.Contains(content, "Playlist: Test Playlist") {
				t.Error("text file missing playlist name")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "list.txt")
			if _, err := WriteTextExport(sampleExport(), path); err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected file at %s: %v", path, err)
			}
		})
	})
}
