package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
)

// GetAiInteraction retrieves an interaction by id
func (s *Store) GetAiInteraction(id string) (*models.AiInteraction, error) {
	row := s.db.QueryRow(`SELECT id, query, response, recommendations, created_at FROM ai_interactions WHERE id = ?`, id)
	interaction, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrInteractionNotFound
	}
	return interaction, err
}

// ListAiInteractions returns interactions newest first, latest insertion winning ties
func (s *Store) ListAiInteractions() ([]models.AiInteraction, error) {
	rows, err := s.db.Query(`SELECT id, query, response, recommendations, created_at FROM ai_interactions ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer rows.Close()

	interactions := []models.AiInteraction{}
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, *interaction)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	models.SortNewestFirst(interactions)
	return interactions, nil
}

// CreateAiInteraction appends an interaction to the log
func (s *Store) CreateAiInteraction(in models.NewAiInteraction) (*models.AiInteraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	interaction := models.AiInteraction{
		ID:              s.opts.NewID(),
		Query:           in.Query,
		Response:        in.Response,
		Recommendations: in.Recommendations,
		CreatedAt:       s.opts.Now(),
	}.Clone()

	recommendations, err := encodeList(interaction.Recommendations)
	if err != nil {
		return nil, err
	}

	err = s.withTx(func(tx *sql.Tx) error {
		sequence, err := NextSequence(tx, "ai_interactions")
		if err != nil {
			return fmt.Errorf("failed to generate sequence: %w", err)
		}

		query := `
			INSERT INTO ai_interactions (id, sequence, query, response, recommendations, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, interaction.ID, sequence, interaction.Query, interaction.Response, recommendations, interaction.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert interaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &interaction, nil
}

func scanInteraction(row scanner) (*models.AiInteraction, error) {
	var (
		a               models.AiInteraction
		recommendations string
	)

	err := row.Scan(&a.ID, &a.Query, &a.Response, &recommendations, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan interaction: %w", err)
	}

	if a.Recommendations, err = decodeList(recommendations); err != nil {
		return nil, err
	}
	return &a, nil
}
