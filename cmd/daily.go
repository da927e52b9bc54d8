package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dohyun-p/aircue/internal/catalog"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/server"
	"github.com/dohyun-p/aircue/internal/shared"
	"github.com/dohyun-p/aircue/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Fetch retrieves a program's song listing for one broadcast date.
func (r *Runner) Fetch(ctx context.Context, cmd *cli.Command) error {
	programKey := cmd.StringArg("program")
	if programKey == "" {
		return fmt.Errorf("%w: program argument is required", shared.ErrMissingArgument)
	}

	program, err := r.findProgram(programKey)
	if err != nil {
		return err
	}

	date, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	dateKey := date.Format("2006-01-02")

	songs, cached, err := r.fetchSongs(ctx, program, date, cmd.Bool("no-cache"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"program": program.ProgCode,
			"date":    dateKey,
			"cached":  cached,
			"songs":   songs,
		}, cmd.Bool("pretty"))
	}

	r.writePlain("%s on %s: %d songs\n\n", program.Name, dateKey, len(songs))
	for i, song := range songs {
		if song.Artist != "" {
			r.writePlain("%d. %s - %s\n", i+1, song.Artist, song.Title)
		} else {
			r.writePlain("%d. %s\n", i+1, song.Title)
		}
	}

	return nil
}

// fetchSongs reads the listing through the song cache unless bypassed.
// A database that cannot be opened downgrades to a direct fetch.
func (r *Runner) fetchSongs(ctx context.Context, program models.Program, date time.Time, noCache bool) ([]models.Song, bool, error) {
	fetcher := r.newFetcher()
	dateKey := date.Format("2006-01-02")

	if noCache {
		songs, err := fetcher.FetchSongs(ctx, program, date)
		return songs, false, err
	}

	db, cache, _, err := r.openRepositories()
	if err != nil {
		r.logger.Warn("cache unavailable, fetching directly", "error", err)
		songs, err := fetcher.FetchSongs(ctx, program, date)
		return songs, false, err
	}
	defer db.Close()

	if entry, err := cache.Get(program.ProgCode, dateKey); err != nil {
		r.logger.Warn("song cache read failed", "error", err)
	} else if entry != nil {
		return entry.Songs, true, nil
	}

	songs, err := fetcher.FetchSongs(ctx, program, date)
	if err != nil {
		return nil, false, err
	}

	if err := cache.Put(program.ProgCode, dateKey, songs); err != nil {
		r.logger.Warn("song cache write failed", "error", err)
	}

	return songs, false, nil
}

// Resolve resolves a single (title, artist) pair against the catalog.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	if title == "" {
		return fmt.Errorf("%w: title argument is required", shared.ErrMissingArgument)
	}
	artist := cmd.String("artist")

	client, err := r.newCatalogClient(ctx)
	if err != nil {
		return err
	}

	resolver := catalog.NewResolver(client, r.logger)
	resolution := resolver.ResolveTrack(ctx, title, artist)

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"matched":  resolution.Matched,
			"track_id": resolution.TrackID,
			"tier":     resolution.Tier,
		}, true)
	}

	if !resolution.Matched {
		r.writePlain("✗ No match for %q (last tier: %s)\n", title, resolution.Tier)
		return nil
	}

	r.writePlain("✓ Matched via %s tier\n", resolution.Tier)
	r.writePlain("  Track ID: %s\n", resolution.TrackID)
	r.writePlain("  URL: https://open.spotify.com/track/%s\n", resolution.TrackID)
	return nil
}

// Daily runs the full pipeline for one broadcast date.
func (r *Runner) Daily(ctx context.Context, cmd *cli.Command) error {
	date, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}

	programs := r.programs()
	if key := cmd.String("program"); key != "" {
		program, err := r.findProgram(key)
		if err != nil {
			return err
		}
		programs = []models.Program{program}
	}

	client, err := r.newCatalogClient(ctx)
	if err != nil {
		return err
	}

	db, cache, playlists, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewPlaylistEngine(tasks.PlaylistEngineOpts{
		Programs:  programs,
		Fetcher:   r.newFetcher(),
		Resolver:  catalog.NewResolver(client, r.logger),
		Catalog:   client,
		Cache:     cache,
		Playlists: playlists,
		Logger:    r.logger,
	})

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.RunDaily(ctx, date, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Run complete for %s", result.Date)
	for _, program := range result.Programs {
		switch {
		case program.Skipped:
			r.writePlain("  %s: skipped (already built)\n", program.Program.Name)
		case program.Record == nil:
			r.writePlain("  %s: no playlist (%d songs listed, %d resolved)\n",
				program.Program.Name, program.TotalSongs, program.SongsAdded)
		default:
			r.writePlain("  %s: %d/%d songs → %s\n",
				program.Program.Name, program.SongsAdded, program.TotalSongs, program.Record.SpotifyURL)
		}
	}
	for name, failure := range result.Failures {
		r.writePlain("  %s: failed: %v\n", name, failure)
	}

	return nil
}

// Playlists lists persisted playlist records.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	db, _, playlists, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	var records []*models.PlaylistRecord
	if dateValue := cmd.String("date"); dateValue != "" {
		date, err := parseDate(dateValue)
		if err != nil {
			return err
		}
		records, err = playlists.ListByDate(date.Format("2006-01-02"))
		if err != nil {
			return err
		}
	} else {
		records, err = playlists.ListRecent(int(cmd.Int("limit")))
		if err != nil {
			return err
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(records))
	for i, record := range records {
		r.writePlain("%d. %s\n", i+1, record.Name)
		r.writePlain("   Date: %s\n", record.Date)
		r.writePlain("   Songs: %d added, %d not found\n", record.SongsAdded, record.SongsNotFound)
		r.writePlain("   URL: %s\n\n", record.SpotifyURL)
	}

	return nil
}

// Serve exposes playlist records over HTTP.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	db, _, playlists, err := r.openRepositories()
	if err != nil {
		return err
	}
	defer db.Close()

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(server.NewPlaylistHandler(playlists))

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	r.logger.Info("serving playlist records", "addr", addr)

	httpServer := &http.Server{Addr: addr, Handler: router}

	errs := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
		return httpServer.Shutdown(context.Background())
	case err := <-errs:
		return err
	}
}
