package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

const playlistColumns = `id, name, description, image_url, is_ai_generated, created_at, track_ids`

// GetPlaylist retrieves a playlist by id
func (s *Store) GetPlaylist(id string) (*models.Playlist, error) {
	return getPlaylist(s.db, id)
}

func getPlaylist(q querier, id string) (*models.Playlist, error) {
	playlist, err := scanPlaylist(q.QueryRow(`SELECT `+playlistColumns+` FROM playlists WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	return playlist, err
}

// ListPlaylists returns all playlists in creation order
func (s *Store) ListPlaylists() ([]models.Playlist, error) {
	rows, err := s.db.Query(`SELECT ` + playlistColumns + ` FROM playlists ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// CreatePlaylist inserts a playlist with a generated id and the current time
func (s *Store) CreatePlaylist(in models.NewPlaylist) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist := models.Playlist{
		ID:            s.opts.NewID(),
		Name:          in.Name,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		IsAiGenerated: in.IsAiGenerated,
		CreatedAt:     s.opts.Now(),
		TrackIDs:      in.TrackIDs,
	}.Clone()

	trackIDs, err := encodeList(playlist.TrackIDs)
	if err != nil {
		return nil, err
	}

	err = s.withTx(func(tx *sql.Tx) error {
		sequence, err := NextSequence(tx, "playlists")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `INSERT INTO playlists (sequence, ` + playlistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = tx.Exec(query, sequence, playlist.ID, playlist.Name, nullable(playlist.Description),
			nullable(playlist.ImageURL), playlist.IsAiGenerated, playlist.CreatedAt, trackIDs)
		if err != nil {
			return fmt.Errorf("failed to insert playlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &playlist, nil
}

// UpdatePlaylist merges patch into the stored playlist
func (s *Store) UpdatePlaylist(id string, patch models.PlaylistPatch) (*models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var playlist *models.Playlist
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		if playlist, err = getPlaylist(tx, id); err != nil {
			return err
		}
		patch.Apply(playlist)

		trackIDs, err := encodeList(playlist.TrackIDs)
		if err != nil {
			return err
		}

		query := `
			UPDATE playlists
			SET name = ?, description = ?, image_url = ?, is_ai_generated = ?, track_ids = ?
			WHERE id = ?
		`
		_, err = tx.Exec(query, playlist.Name, nullable(playlist.Description), nullable(playlist.ImageURL),
			playlist.IsAiGenerated, trackIDs, id)
		if err != nil {
			return fmt.Errorf("failed to update playlist: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return playlist, nil
}

// DeletePlaylist hard-deletes a playlist and reports whether a row was removed
func (s *Store) DeletePlaylist(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

func scanPlaylist(row scanner) (*models.Playlist, error) {
	var (
		p           models.Playlist
		description sql.NullString
		imageURL    sql.NullString
		createdAt   time.Time
		trackIDs    string
	)

	err := row.Scan(&p.ID, &p.Name, &description, &imageURL, &p.IsAiGenerated, &createdAt, &trackIDs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if p.TrackIDs, err = decodeList(trackIDs); err != nil {
		return nil, err
	}
	p.Description = stringPtr(description)
	p.ImageURL = stringPtr(imageURL)
	p.CreatedAt = createdAt
	return &p, nil
}
