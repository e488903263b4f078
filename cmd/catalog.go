package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/melodi/internal/formatter"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeTracks(tracks []models.Track) error {
	for i, t := range tracks {
		if err := r.writePlain("%2d. %s - %s [%s] %s\n", i+1, t.Artist, t.Title,
			shared.FormatDuration(t.Duration), mutedStyle.Render(t.Platform)); err != nil {
			return err
		}
	}
	return nil
}

// Chat sends a query to the assistant and prints the recommended tracks.
func (r *Runner) Chat(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	assistant, err := r.Assistant()
	if err != nil {
		return err
	}
	interaction, err := assistant.Ask(query)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(interaction, cmd.Bool("pretty"))
	}

	s, err := r.Store()
	if err != nil {
		return err
	}
	tracks := make([]models.Track, 0, len(interaction.Recommendations))
	for _, id := range interaction.Recommendations {
		track, err := s.GetTrack(id)
		if err != nil {
			return fmt.Errorf("failed to load recommended track %s: %w", id, err)
		}
		tracks = append(tracks, *track)
	}

	if err := r.writePlainHeader(interaction.Response); err != nil {
		return err
	}
	return r.writeTracks(tracks)
}

// SearchExternal queries the external providers.
func (r *Runner) SearchExternal(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	platform := cmd.String("platform")
	tracks := r.Search().Search(ctx, query, platform)
	r.logger.Debug("external search", "query", query, "platform", platform, "results", len(tracks))

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if err := r.writePlainHeader(fmt.Sprintf("Results for %q (%s)", query, platform)); err != nil {
		return err
	}
	if len(tracks) == 0 {
		return r.writeMuted("No results (providers without credentials are skipped).")
	}
	return r.writeTracks(tracks)
}

// Trending prints the most played catalog tracks.
func (r *Runner) Trending(ctx context.Context, cmd *cli.Command) error {
	s, err := r.Store()
	if err != nil {
		return err
	}
	tracks, err := s.ListTrendingTracks()
	if err != nil {
		return fmt.Errorf("failed to fetch trending tracks: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if err := r.writePlainHeader("Trending"); err != nil {
		return err
	}
	for i, t := range tracks {
		if err := r.writePlain("%2d. %s - %s %s\n", i+1, t.Artist, t.Title,
			mutedStyle.Render(fmt.Sprintf("%d plays", t.PlayCount))); err != nil {
			return err
		}
	}
	return nil
}

// ListPlaylists prints every playlist.
func (r *Runner) ListPlaylists(ctx context.Context, cmd *cli.Command) error {
	s, err := r.Store()
	if err != nil {
		return err
	}
	playlists, err := s.ListPlaylists()
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if err := r.writePlainHeader("Playlists"); err != nil {
		return err
	}
	for _, p := range playlists {
		if err := r.writePlain("%s  %s %s\n", p.ID, p.Name, mutedStyle.Render(fmt.Sprintf("(%d tracks)", len(p.TrackIDs)))); err != nil {
			return err
		}
	}
	return nil
}

// ExportPlaylist writes a playlist and its resolved tracks in the chosen format.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	s, err := r.Store()
	if err != nil {
		return err
	}
	export, err := formatter.NewPlaylistExport(s, id)
	if errors.Is(err, shared.ErrPlaylistNotFound) {
		return fmt.Errorf("%w: playlist %s", shared.ErrInvalidArgument, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}
	if len(export.Missing) > 0 {
		r.logger.Warn("playlist references unknown tracks", "playlist", id, "missing", export.Missing)
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d tracks to %s (metadata: %s)\n", len(export.Tracks), result.TracksFile, result.MetadataFile)
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(export, output, r.httpClient, r.logger)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d tracks to %s\n", len(export.Tracks), result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d tracks to %s\n", len(export.Tracks), path)
	default:
		return fmt.Errorf("%w: format %q (want csv, markdown or text)", shared.ErrInvalidFlag, format)
	}
}
