package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dohyun-p/aircue/internal/catalog"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
	"golang.org/x/time/rate"
)

// SongMatchResult represents the result of resolving a single listed song.
type SongMatchResult struct {
	Song       models.Song       // Original song from the listing
	Resolution models.Resolution // Catalog resolution (Matched false on a miss)
}

// ProgramRunResult contains all data from building one program's playlist.
type ProgramRunResult struct {
	Program       models.Program         // Program that was processed
	Date          string                 // Broadcast date (YYYY-MM-DD)
	Skipped       bool                   // True when a playlist already existed
	FromCache     bool                   // True when the listing came from the cache
	SongMatches   []SongMatchResult      // Per-song resolution results
	TotalSongs    int                    // Songs in the listing
	SongsAdded    int                    // Songs resolved and added
	SongsNotFound int                    // Songs that missed every search tier
	Record        *models.PlaylistRecord // Persisted playlist record (nil when skipped)
}

// DailyRunResult aggregates one day's run across every configured program.
type DailyRunResult struct {
	Date     string             // Broadcast date (YYYY-MM-DD)
	Programs []ProgramRunResult // Per-program results, in config order
	Failures map[string]error   // Program name -> error for programs that failed
}

// Engine defines operations for building playlists from broadcast listings.
type Engine interface {
	// RunDaily builds a playlist for each configured program for one date.
	// Per-program failures are collected, never aborting the other programs.
	RunDaily(ctx context.Context, date time.Time, progress chan<- ProgressUpdate) (*DailyRunResult, error)

	// RunProgram builds the playlist for a single program and date.
	RunProgram(ctx context.Context, program models.Program, date time.Time, progress chan<- ProgressUpdate) (*ProgramRunResult, error)
}

// ListingFetcher fetches a program's song listing for one broadcast date.
type ListingFetcher interface {
	FetchSongs(ctx context.Context, program models.Program, date time.Time) ([]models.Song, error)
}

// TrackResolver maps a raw (title, artist) pair to a catalog track.
type TrackResolver interface {
	ResolveTrack(ctx context.Context, title, artist string) models.Resolution
}

// CatalogService is the playlist surface of the streaming catalog.
// This abstraction allows for easier testing and decoupling from the
// concrete Spotify client.
type CatalogService interface {
	CurrentUser(ctx context.Context) (*catalog.SpotifyUser, error)
	FindPlaylist(ctx context.Context, name string) (*catalog.SpotifyPlaylist, error)
	CreatePlaylist(ctx context.Context, userID, name, description string) (*catalog.SpotifyPlaylist, error)
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// SongCache is the read-through cache over fetched listings.
type SongCache interface {
	Get(programCode, date string) (*models.CachedSongs, error)
	Put(programCode, date string, songs []models.Song) error
}

// PlaylistStore persists the record of each generated playlist.
type PlaylistStore interface {
	Create(record *models.PlaylistRecord) error
	GetByProgramDate(programCode, date string) (*models.PlaylistRecord, error)
}

// PlaylistEngine implements Engine. Contains dependencies on the radio
// fetcher, the catalog, and the persistence layer.
type PlaylistEngine struct {
	programs  []models.Program
	fetcher   ListingFetcher
	resolver  TrackResolver
	catalog   CatalogService
	cache     SongCache
	playlists PlaylistStore
	limiter   *rate.Limiter
	logger    *log.Logger
}

// PlaylistEngineOpts configures a PlaylistEngine.
type PlaylistEngineOpts struct {
	Programs  []models.Program
	Fetcher   ListingFetcher
	Resolver  TrackResolver
	Catalog   CatalogService
	Cache     SongCache
	Playlists PlaylistStore
	Limiter   *rate.Limiter
	Logger    *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
// A nil Limiter defaults to 5 catalog searches per second.
func NewPlaylistEngine(opts PlaylistEngineOpts) *PlaylistEngine {
	limiter := opts.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(5), 1)
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		programs:  opts.Programs,
		fetcher:   opts.Fetcher,
		resolver:  opts.Resolver,
		catalog:   opts.Catalog,
		cache:     opts.Cache,
		playlists: opts.Playlists,
		limiter:   limiter,
		logger:    logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// RunDaily builds playlists for every configured program for one date.
func (e *PlaylistEngine) RunDaily(ctx context.Context, date time.Time, progress chan<- ProgressUpdate) (*DailyRunResult, error) {
	if len(e.programs) == 0 {
		return nil, fmt.Errorf("%w: no programs configured", shared.ErrMissingConfig)
	}

	result := &DailyRunResult{
		Date:     date.Format("2006-01-02"),
		Failures: map[string]error{},
	}

	for _, program := range e.programs {
		runResult, err := e.RunProgram(ctx, program, date, progress)
		if err != nil {
			e.logger.Error("program run failed", "program", program.Name, "error", err)
			result.Failures[program.Name] = err
			continue
		}
		result.Programs = append(result.Programs, *runResult)
	}

	return result, nil
}

// RunProgram builds the playlist for a single program and date.
//
// A listing that cannot be fetched or contains no songs skips the program
// without error. A playlist record already existing for the key marks the
// run as skipped; the day's work was done earlier.
func (e *PlaylistEngine) RunProgram(ctx context.Context, program models.Program, date time.Time, progress chan<- ProgressUpdate) (*ProgramRunResult, error) {
	if e.fetcher == nil || e.resolver == nil || e.catalog == nil {
		return nil, fmt.Errorf("%w: engine not fully initialized", shared.ErrServiceUnavailable)
	}
	if err := program.Validate(); err != nil {
		return nil, err
	}

	dateKey := date.Format("2006-01-02")
	result := &ProgramRunResult{Program: program, Date: dateKey}

	if e.playlists != nil {
		existing, err := e.playlists.GetByProgramDate(program.ProgCode, dateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing playlist: %w", err)
		}
		if existing != nil {
			e.sendProgress(progress, skipProgramUpdate(program, "playlist already exists"))
			result.Skipped = true
			result.Record = existing
			return result, nil
		}
	}

	songs, fromCache, err := e.listSongs(ctx, program, date, progress)
	if err != nil {
		if errors.Is(err, shared.ErrSongsNotFound) {
			e.sendProgress(progress, skipProgramUpdate(program, "no songs listed"))
			return result, nil
		}
		return nil, err
	}
	result.FromCache = fromCache
	result.TotalSongs = len(songs)

	matches := make([]SongMatchResult, len(songs))
	trackIDs := make([]string, 0, len(songs))
	for i, song := range songs {
		e.sendProgress(progress, resolveTrackUpdate(i+1, len(songs), song))

		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resolution := e.resolver.ResolveTrack(ctx, song.Title, song.Artist)
		matches[i] = SongMatchResult{Song: song, Resolution: resolution}
		if resolution.Matched {
			trackIDs = append(trackIDs, resolution.TrackID)
		}
	}
	result.SongMatches = matches
	result.SongsAdded = len(trackIDs)
	result.SongsNotFound = result.TotalSongs - result.SongsAdded

	if len(trackIDs) == 0 {
		e.sendProgress(progress, skipProgramUpdate(program, "no songs resolved"))
		return result, nil
	}

	name := catalog.PlaylistName(program.Name, date)
	e.sendProgress(progress, ensurePlaylistUpdate(name))

	playlist, err := e.ensurePlaylist(ctx, program, name, dateKey)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, addTracksUpdate(len(trackIDs), name))
	if err := e.catalog.AddTracks(ctx, playlist.ID, trackIDs); err != nil {
		return nil, fmt.Errorf("%w: failed to add tracks: %v", shared.ErrAPIRequest, err)
	}

	record := &models.PlaylistRecord{
		ProgramCode:   program.ProgCode,
		Date:          dateKey,
		SpotifyID:     playlist.ID,
		SpotifyURL:    playlist.URL(),
		Name:          name,
		TotalSongs:    result.TotalSongs,
		SongsAdded:    result.SongsAdded,
		SongsNotFound: result.SongsNotFound,
	}
	if e.playlists != nil {
		if err := e.playlists.Create(record); err != nil {
			return nil, fmt.Errorf("failed to persist playlist record: %w", err)
		}
	}
	result.Record = record

	e.logger.Info("playlist built",
		"program", program.Name,
		"date", dateKey,
		"added", result.SongsAdded,
		"missed", result.SongsNotFound)

	return result, nil
}

// listSongs returns the program's listing for the date, reading through the
// cache. Cache read and write failures are logged and the listing is fetched
// fresh; the cache never blocks a run.
func (e *PlaylistEngine) listSongs(ctx context.Context, program models.Program, date time.Time, progress chan<- ProgressUpdate) ([]models.Song, bool, error) {
	dateKey := date.Format("2006-01-02")

	if e.cache != nil {
		entry, err := e.cache.Get(program.ProgCode, dateKey)
		if err != nil {
			e.logger.Warn("song cache read failed", "program", program.ProgCode, "error", err)
		} else if entry != nil && len(entry.Songs) > 0 {
			e.sendProgress(progress, listingCachedUpdate(program, len(entry.Songs)))
			return entry.Songs, true, nil
		}
	}

	e.sendProgress(progress, fetchListingUpdate(program, dateKey))
	songs, err := e.fetcher.FetchSongs(ctx, program, date)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		if err := e.cache.Put(program.ProgCode, dateKey, songs); err != nil {
			e.logger.Warn("song cache write failed", "program", program.ProgCode, "error", err)
		}
	}

	return songs, false, nil
}

// ensurePlaylist finds an existing catalog playlist by name or creates one.
func (e *PlaylistEngine) ensurePlaylist(ctx context.Context, program models.Program, name, dateKey string) (*catalog.SpotifyPlaylist, error) {
	playlist, err := e.catalog.FindPlaylist(ctx, name)
	if err == nil {
		return playlist, nil
	}
	if !errors.Is(err, shared.ErrPlaylistNotFound) {
		return nil, fmt.Errorf("%w: failed to look up playlist: %v", shared.ErrAPIRequest, err)
	}

	user, err := e.catalog.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get current user: %v", shared.ErrAPIRequest, err)
	}

	description := fmt.Sprintf("%s selections for %s", program.Name, dateKey)
	playlist, err = e.catalog.CreatePlaylist(ctx, user.ID, name, description)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create playlist: %v", shared.ErrAPIRequest, err)
	}

	return playlist, nil
}
