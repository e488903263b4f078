package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

// GetUserPreferences returns the singleton preferences row
func (s *Store) GetUserPreferences() (*models.UserPreferences, error) {
	prefs, err := getPreferences(s.db)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPreferencesNotFound
	}
	return prefs, err
}

// UpdateUserPreferences merges patch into the singleton row, inserting it first when absent
func (s *Store) UpdateUserPreferences(patch models.PreferencesPatch) (*models.UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prefs *models.UserPreferences
	err := s.withTx(func(tx *sql.Tx) error {
		current, err := getPreferences(tx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			id := patch.ID
			if id == "" {
				id = s.opts.NewID()
			}
			fresh := models.NewUserPreferences(id)
			current = &fresh
		case err != nil:
			return err
		}
		patch.Apply(current)
		prefs = current

		lists := make([]any, 0, 4)
		for _, l := range [][]string{prefs.FavoriteGenres, prefs.RecentSearches, prefs.LikedTracks, prefs.PlayHistory} {
			encoded, err := encodeList(l)
			if err != nil {
				return err
			}
			lists = append(lists, encoded)
		}

		query := `
			INSERT INTO user_preferences (slot, id, favorite_genres, recent_searches, liked_tracks, play_history)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(slot) DO UPDATE SET
				favorite_genres = excluded.favorite_genres, recent_searches = excluded.recent_searches,
				liked_tracks = excluded.liked_tracks, play_history = excluded.play_history
		`
		if _, err := tx.Exec(query, append([]any{prefs.ID}, lists...)...); err != nil {
			return fmt.Errorf("failed to save preferences: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prefs, nil
}

func getPreferences(q querier) (*models.UserPreferences, error) {
	var (
		p   models.UserPreferences
		raw [4]string
	)

	row := q.QueryRow(`SELECT id, favorite_genres, recent_searches, liked_tracks, play_history FROM user_preferences WHERE slot = 1`)
	if err := row.Scan(&p.ID, &raw[0], &raw[1], &raw[2], &raw[3]); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan preferences: %w", err)
	}

	targets := []*[]string{&p.FavoriteGenres, &p.RecentSearches, &p.LikedTracks, &p.PlayHistory}
	for i, target := range targets {
		list, err := decodeList(raw[i])
		if err != nil {
			return nil, err
		}
		*target = list
	}
	return &p, nil
}
