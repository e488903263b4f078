package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/melodi/internal/cache"
	"github.com/desertthunder/melodi/internal/recommend"
	"github.com/desertthunder/melodi/internal/repositories"
	"github.com/desertthunder/melodi/internal/server"
	"github.com/desertthunder/melodi/internal/services"
	"github.com/desertthunder/melodi/internal/shared"
	"github.com/desertthunder/melodi/internal/store"
	"github.com/urfave/cli/v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store, assistant and search aggregator are built on first use so that commands like
// setup never open a database they do not need.
type Runner struct {
	config     *shared.Config
	store      store.Store
	assistant  server.Chatter
	search     server.Searcher
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	closers []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner. Store and Search
// are built from Config when nil.
type RunnerOpts struct {
	Config     *shared.Config
	Store      store.Store
	Search     server.Searcher
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		store:      opts.Store,
		search:     opts.Search,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, chatCommand, searchCommand, trendingCommand, playlistsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database and cache connections opened by the runner.
func (r *Runner) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil {
			r.logger.Warn("close failed", "error", err)
		}
	}
	r.closers = nil
}

// Store returns the configured record store, opening and seeding it on first call.
func (r *Runner) Store() (store.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	var s store.Store
	switch r.config.Database.Driver {
	case "", "memory":
		s = store.NewMemoryStore()
	case "sqlite":
		sqlStore, err := repositories.Open(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		r.closers = append(r.closers, sqlStore)
		s = sqlStore
	default:
		return nil, fmt.Errorf("%w: database driver %q", shared.ErrInvalidConfig, r.config.Database.Driver)
	}

	if r.config.Catalog.Seed {
		seeded, err := store.Seed(s)
		if err != nil {
			return nil, err
		}
		if seeded {
			r.logger.Debug("seeded sample catalog", "driver", r.config.Database.Driver)
		}
	}

	r.store = s
	return s, nil
}

// Assistant returns the recommendation assistant over [Runner.Store].
func (r *Runner) Assistant() (server.Chatter, error) {
	if r.assistant != nil {
		return r.assistant, nil
	}

	s, err := r.Store()
	if err != nil {
		return nil, err
	}
	selector, err := recommend.FromConfig(r.config.Recommend)
	if err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}

	r.assistant = recommend.NewAssistant(s, selector, shared.WithLogger(r.logger, "component", "assistant"))
	return r.assistant, nil
}

// Search returns the external search aggregator, with a Redis cache when one is configured.
func (r *Runner) Search() server.Searcher {
	if r.search != nil {
		return r.search
	}

	opts := services.AggregatorOpts{
		Registrations: services.DefaultRegistrations(r.config.Providers),
		Credentials:   r.config.Credentials.Resolve,
		Timeout:       r.config.Providers.Timeout(),
		CacheTTL:      r.config.Cache.TTL(),
		Logger:        r.logger,
	}

	if url := r.config.Cache.RedisURL; url != "" {
		c, err := cache.NewRedisCache(url)
		if err != nil {
			r.logger.Warn("search cache disabled", "error", err)
		} else {
			r.closers = append(r.closers, c)
			opts.Cache = c
		}
	}

	r.search = services.NewAggregator(opts)
	return r.search
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) error {
	return r.writePlain("%s\n", headerStyle.Render(title))
}

func (r *Runner) writeMuted(format string, args ...any) error {
	return r.writePlain("%s\n", mutedStyle.Render(fmt.Sprintf(format, args...)))
}
