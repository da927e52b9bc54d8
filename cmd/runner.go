package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dohyun-p/aircue/internal/catalog"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/radio"
	"github.com/dohyun-p/aircue/internal/repositories"
	"github.com/dohyun-p/aircue/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
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
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, fetchCommand, resolveCommand, dailyCommand, playlistsCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// programs converts the configured program entries into models.
func (r *Runner) programs() []models.Program {
	programs := make([]models.Program, 0, len(r.config.Programs))
	for _, p := range r.config.Programs {
		programs = append(programs, models.Program{
			Name:     p.Name,
			Source:   models.SourceKind(p.Source),
			ProgCode: p.ProgCode,
			BBSID:    p.BBSID,
		})
	}
	return programs
}

// findProgram looks up a configured program by prog_code or name.
func (r *Runner) findProgram(key string) (models.Program, error) {
	for _, p := range r.programs() {
		if p.ProgCode == key || p.Name == key {
			return p, nil
		}
	}
	return models.Program{}, fmt.Errorf("%w: no program configured as %q", shared.ErrInvalidInput, key)
}

// newFetcher constructs the radio fetcher from runner dependencies.
func (r *Runner) newFetcher() *radio.Fetcher {
	return radio.NewFetcher(radio.FetcherOpts{
		Client: r.httpClient,
		Logger: r.logger,
	})
}

// newCatalogClient constructs a Spotify client and installs the stored token.
func (r *Runner) newCatalogClient(ctx context.Context) (*catalog.Client, error) {
	client, err := catalog.NewClient(r.config.Credentials.Spotify.Map())
	if err != nil {
		return nil, err
	}

	token, err := shared.LoadToken(r.tokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: run 'aircue auth' first", shared.ErrNotAuthenticated)
	}
	client.SetToken(ctx, token)

	return client, nil
}

func (r *Runner) tokenPath() string {
	if p := r.config.Credentials.Spotify.TokenPath; p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "aircue_token.json"
	}
	return home + "/.aircue/token.json"
}

// openDatabase opens the configured SQLite database.
func (r *Runner) openDatabase() (*sql.DB, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, nil
}

// openRepositories opens the database and wraps it with repositories.
func (r *Runner) openRepositories() (*sql.DB, *repositories.SongCacheRepository, *repositories.PlaylistRepository, error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, nil, err
	}
	return db, repositories.NewSongCacheRepository(db), repositories.NewPlaylistRepository(db), nil
}

// parseDate parses a --date flag value, defaulting to today.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD: %v", shared.ErrInvalidInput, err)
	}
	return date, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
