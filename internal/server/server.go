// package server contains middleware & handlers for the melodi HTTP API
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/melodi/internal/models"
	"github.com/desertthunder/melodi/internal/recommend"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Searcher runs external catalog searches. Failures are absorbed, so it never errors.
type Searcher interface {
	Search(ctx context.Context, query, platform string) []models.Track
}

// Chatter answers recommendation queries.
type Chatter interface {
	Ask(query string) (*models.AiInteraction, error)
}

// Opts holds the dependencies of a [Server]. Assistant defaults to one built on Store with the default categories.
type Opts struct {
	Store     store.Store
	Assistant Chatter
	Search    Searcher
	Logger    *log.Logger
}

// Server serves the catalog, playlist, assistant, search and preference endpoints.
type Server struct {
	store     store.Store
	assistant Chatter
	search    Searcher
	logger    *log.Logger
}

// New creates a [Server].
func New(opts Opts) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	assistant := opts.Assistant
	if assistant == nil {
		selector, _ := recommend.NewSelector(recommend.DefaultCategories())
		assistant = recommend.NewAssistant(opts.Store, selector, logger)
	}
	return &Server{
		store:     opts.Store,
		assistant: assistant,
		search:    opts.Search,
		logger:    shared.WithLogger(logger, "component", "server"),
	}
}
