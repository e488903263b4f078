package recommend

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
)

// Assistant answers chat queries from the catalog and logs every exchange as an [models.AiInteraction].
type Assistant struct {
	store    store.Store
	selector *Selector
	logger   *log.Logger
}

// NewAssistant wires a selector to a store; a nil logger falls back to the default one.
func NewAssistant(s store.Store, selector *Selector, logger *log.Logger) *Assistant {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Assistant{store: s, selector: selector, logger: logger}
}

// Ask selects recommendations for query and persists the exchange.
func (a *Assistant) Ask(query string) (*models.AiInteraction, error) {
	if query == "" {
		return nil, shared.NewValidationError("Query is required", shared.FieldError{Field: "query", Message: "is required"})
	}

	tracks, err := a.store.ListTracks()
	if err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}

	result := a.selector.Select(query, tracks)
	a.logger.Debug("selected recommendations", "category", result.Category, "count", len(result.TrackIDs))

	interaction, err := a.store.CreateAiInteraction(models.NewAiInteraction{
		Query:           query,
		Response:        result.Response,
		Recommendations: result.TrackIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	return interaction, nil
}
