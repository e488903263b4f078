package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

const trackColumns = `id, title, artist, album, duration, image_url, preview_url, external_id, platform, play_count, is_liked`

// GetTrack retrieves a track by id
func (s *Store) GetTrack(id string) (*models.Track, error) {
	return getTrack(s.db, id)
}

func getTrack(q querier, id string) (*models.Track, error) {
	row := q.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, err
	}
	return track, nil
}

// ListTracks returns all tracks in insertion order
func (s *Store) ListTracks() ([]models.Track, error) {
	rows, err := s.db.Query(`SELECT ` + trackColumns + ` FROM tracks ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// CreateTrack inserts a track, generating its id when none is supplied.
//
// A reused id overwrites the existing row and keeps its position.
func (s *Store) CreateTrack(in models.NewTrack) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if id == "" {
		id = s.opts.NewID()
	}
	track := in.Track(id)

	err := s.withTx(func(tx *sql.Tx) error {
		sequence, err := NextSequence(tx, "tracks")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO tracks (sequence, ` + trackColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title, artist = excluded.artist, album = excluded.album,
				duration = excluded.duration, image_url = excluded.image_url, preview_url = excluded.preview_url,
				external_id = excluded.external_id, platform = excluded.platform,
				play_count = excluded.play_count, is_liked = excluded.is_liked
		`
		_, err = tx.Exec(query, append([]any{sequence}, trackArgs(track)...)...)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &track, nil
}

// UpdateTrack merges patch into the stored track
func (s *Store) UpdateTrack(id string, patch models.TrackPatch) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var track *models.Track
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		if track, err = getTrack(tx, id); err != nil {
			return err
		}
		patch.Apply(track)

		query := `
			UPDATE tracks
			SET title = ?, artist = ?, album = ?, duration = ?, image_url = ?, preview_url = ?,
				external_id = ?, platform = ?, play_count = ?, is_liked = ?
			WHERE id = ?
		`
		args := append(trackArgs(*track)[1:], track.ID)
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to update track: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return track, nil
}

// SearchTracks filters the ordered track list by a case-insensitive substring
func (s *Store) SearchTracks(query string) ([]models.Track, error) {
	tracks, err := s.ListTracks()
	if err != nil {
		return nil, err
	}
	return models.FilterTracks(tracks, query), nil
}

// ListTrendingTracks returns the most played tracks
func (s *Store) ListTrendingTracks() ([]models.Track, error) {
	tracks, err := s.ListTracks()
	if err != nil {
		return nil, err
	}
	return models.Trending(tracks), nil
}

// trackArgs returns column values in trackColumns order.
func trackArgs(t models.Track) []any {
	return []any{
		t.ID, t.Title, t.Artist, nullable(t.Album), nullable(t.Duration), nullable(t.ImageURL),
		nullable(t.PreviewURL), nullable(t.ExternalID), t.Platform, t.PlayCount, t.IsLiked,
	}
}

func scanTrack(row scanner) (*models.Track, error) {
	var (
		t          models.Track
		album      sql.NullString
		duration   sql.NullInt64
		imageURL   sql.NullString
		previewURL sql.NullString
		externalID sql.NullString
	)

	err := row.Scan(&t.ID, &t.Title, &t.Artist, &album, &duration, &imageURL, &previewURL, &externalID, &t.Platform, &t.PlayCount, &t.IsLiked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	t.Album = stringPtr(album)
	t.Duration = intPtr(duration)
	t.ImageURL = stringPtr(imageURL)
	t.PreviewURL = stringPtr(previewURL)
	t.ExternalID = stringPtr(externalID)
	return &t, nil
}
