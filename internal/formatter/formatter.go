// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
)

// PlaylistExport is a playlist with its track ids resolved against the catalog.
//
// Playlist track ids are not checked on write, so ids without a catalog entry are kept in Missing.
type PlaylistExport struct {
	Playlist models.Playlist
	Tracks   []models.Track
	Missing  []string
}

// NewPlaylistExport loads playlist id and resolves its tracks in playlist order.
func NewPlaylistExport(s store.Store, id string) (*PlaylistExport, error) {
	playlist, err := s.GetPlaylist(id)
	if err != nil {
		return nil, err
	}

	export := &PlaylistExport{Playlist: *playlist, Tracks: []models.Track{}, Missing: []string{}}
	for _, trackID := range playlist.TrackIDs {
		track, err := s.GetTrack(trackID)
		switch {
		case errors.Is(err, shared.ErrTrackNotFound):
			export.Missing = append(export.Missing, trackID)
		case err != nil:
			return nil, fmt.Errorf("failed to resolve track %s: %w", trackID, err)
		default:
			export.Tracks = append(export.Tracks, *track)
		}
	}
	return export, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExportToCSV converts a PlaylistExport to CSV format with columns: ID, Title, Artist, Album, Duration, Platform, PlayCount
func ExportToCSV(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Platform", "PlayCount"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		duration := ""
		if track.Duration != nil {
			duration = strconv.Itoa(*track.Duration)
		}
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			deref(track.Album),
			duration,
			track.Platform,
			strconv.Itoa(track.PlayCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a PlaylistExport to Markdown format with optional cover image
func ExportToMarkdown(export *PlaylistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	p := export.Playlist

	fmt.Fprintf(&buf, "# %s\n\n", p.Name)

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if desc := deref(p.Description); desc != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", desc)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(export.Tracks))
	if p.IsAiGenerated {
		buf.WriteString("**Source**: AI generated\n")
	}
	fmt.Fprintf(&buf, "**Created**: %s\n\n", p.CreatedAt.Format(time.DateOnly))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		albumPart := ""
		if album := deref(track.Album); album != "" {
			albumPart = fmt.Sprintf(" (%s)", album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, shared.FormatDuration(track.Duration))
	}

	if len(export.Missing) > 0 {
		buf.WriteString("\n## Missing\n\n")
		for _, id := range export.Missing {
			fmt.Fprintf(&buf, "- `%s`\n", id)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a PlaylistExport to plain text format
func ExportToText(export *PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist.Name)
	if desc := deref(export.Playlist.Description); desc != "" {
		fmt.Fprintf(&buf, "Description: %s\n", desc)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes. A nil client uses a 30s timeout.
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(export *PlaylistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Playlist.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID. When the playlist has an image URL the cover is
// downloaded with client; download failures are logged and the export continues without it.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *PlaylistExport, outputDir string, client *http.Client, logger *log.Logger) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Playlist.ID
	}
	if logger == nil {
		logger = log.Default()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL := deref(export.Playlist.ImageURL); imageURL != "" {
		imageData, err := DownloadImage(client, imageURL)
		if err != nil {
			logger.Warn("failed to download cover image", "url", imageURL, "error", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				logger.Warn("failed to save cover image", "path", coverImagePath, "error", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(export *PlaylistExport, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_tracks.txt", export.Playlist.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}
