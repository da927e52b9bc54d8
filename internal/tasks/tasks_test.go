package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dohyun-p/aircue/internal/catalog"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
	"golang.org/x/time/rate"
)

var testDate = time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

type fakeFetcher struct {
	songs map[string][]models.Song // prog code -> listing
	calls int
}

func (f *fakeFetcher) FetchSongs(_ context.Context, program models.Program, _ time.Time) ([]models.Song, error) {
	f.calls++
	songs, ok := f.songs[program.ProgCode]
	if !ok || len(songs) == 0 {
		return nil, shared.ErrSongsNotFound
	}
	return songs, nil
}

type fakeResolver struct {
	tracks map[string]string // title -> track id
}

func (r *fakeResolver) ResolveTrack(_ context.Context, title, _ string) models.Resolution {
	if id, ok := r.tracks[title]; ok {
		return models.Resolution{TrackID: id, Tier: "fielded", Matched: true}
	}
	return models.Resolution{Tier: "title-only", Matched: false}
}

type fakeCatalog struct {
	existing map[string]*catalog.SpotifyPlaylist // name -> playlist
	created  []string
	added    map[string][]string // playlist id -> track ids
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		existing: map[string]*catalog.SpotifyPlaylist{},
		added:    map[string][]string{},
	}
}

func (c *fakeCatalog) CurrentUser(context.Context) (*catalog.SpotifyUser, error) {
	return &catalog.SpotifyUser{ID: "u1"}, nil
}

func (c *fakeCatalog) FindPlaylist(_ context.Context, name string) (*catalog.SpotifyPlaylist, error) {
	if pl, ok := c.existing[name]; ok {
		return pl, nil
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
}

func (c *fakeCatalog) CreatePlaylist(_ context.Context, _, name, _ string) (*catalog.SpotifyPlaylist, error) {
	c.created = append(c.created, name)
	pl := &catalog.SpotifyPlaylist{ID: fmt.Sprintf("pl-%d", len(c.created)), Name: name}
	c.existing[name] = pl
	return pl, nil
}

func (c *fakeCatalog) AddTracks(_ context.Context, playlistID string, trackIDs []string) error {
	c.added[playlistID] = append(c.added[playlistID], trackIDs...)
	return nil
}

type fakeCache struct {
	entries map[string][]models.Song
	puts    int
}

func cacheKey(progCode, date string) string { return progCode + "|" + date }

func (c *fakeCache) Get(progCode, date string) (*models.CachedSongs, error) {
	if songs, ok := c.entries[cacheKey(progCode, date)]; ok {
		return &models.CachedSongs{ProgramCode: progCode, Date: date, Songs: songs}, nil
	}
	return nil, nil
}

func (c *fakeCache) Put(progCode, date string, songs []models.Song) error {
	c.puts++
	if c.entries == nil {
		c.entries = map[string][]models.Song{}
	}
	c.entries[cacheKey(progCode, date)] = songs
	return nil
}

type fakeStore struct {
	records map[string]*models.PlaylistRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*models.PlaylistRecord{}}
}

func (s *fakeStore) Create(record *models.PlaylistRecord) error {
	record.ID = "rec-1"
	s.records[cacheKey(record.ProgramCode, record.Date)] = record
	return nil
}

func (s *fakeStore) GetByProgramDate(progCode, date string) (*models.PlaylistRecord, error) {
	return s.records[cacheKey(progCode, date)], nil
}

func testProgram() models.Program {
	return models.Program{Name: "세상의 모든 음악", Source: models.SourceAPI, ProgCode: "p1"}
}

func testEngine(fetcher *fakeFetcher, resolver *fakeResolver, cat *fakeCatalog, cache *fakeCache, store *fakeStore) *PlaylistEngine {
	return NewPlaylistEngine(PlaylistEngineOpts{
		Programs:  []models.Program{testProgram()},
		Fetcher:   fetcher,
		Resolver:  resolver,
		Catalog:   cat,
		Cache:     cache,
		Playlists: store,
		Limiter:   rate.NewLimiter(rate.Inf, 1),
	})
}

func TestRunProgram(t *testing.T) {
	ctx := context.Background()

	t.Run("builds a playlist and records stats", func(t *testing.T) {
		fetcher := &fakeFetcher{songs: map[string][]models.Song{
			"p1": {
				{Title: "Nocturne", Artist: "Pianist Z"},
				{Title: "Unknown Piece", Artist: "Nobody"},
				{Title: "Arirang", Artist: "Sumi Jo"},
			},
		}}
		resolver := &fakeResolver{tracks: map[string]string{
			"Nocturne": "t1",
			"Arirang":  "t2",
		}}
		cat := newFakeCatalog()
		cache := &fakeCache{}
		store := newFakeStore()

		engine := testEngine(fetcher, resolver, cat, cache, store)
		result, err := engine.RunProgram(ctx, testProgram(), testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalSongs != 3 || result.SongsAdded != 2 || result.SongsNotFound != 1 {
			t.Errorf("stats = %d/%d/%d", result.TotalSongs, result.SongsAdded, result.SongsNotFound)
		}

		wantName := "세상의 모든 음악 2026.0305(목)"
		if len(cat.created) != 1 || cat.created[0] != wantName {
			t.Errorf("created = %v, want %q", cat.created, wantName)
		}

		added := cat.added["pl-1"]
		if len(added) != 2 || added[0] != "t1" || added[1] != "t2" {
			t.Errorf("added = %v", added)
		}

		record, _ := store.GetByProgramDate("p1", "2026-03-05")
		if record == nil {
			t.Fatal("expected a persisted record")
		}
		if record.Name != wantName || record.SongsAdded != 2 {
			t.Errorf("record = %+v", record)
		}

		if cache.puts != 1 {
			t.Errorf("cache puts = %d", cache.puts)
		}
	})

	t.Run("existing record skips the run", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		store := newFakeStore()
		store.Create(&models.PlaylistRecord{ProgramCode: "p1", Date: "2026-03-05"})

		engine := testEngine(fetcher, &fakeResolver{}, newFakeCatalog(), &fakeCache{}, store)
		result, err := engine.RunProgram(ctx, testProgram(), testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Skipped {
			t.Error("expected run to be skipped")
		}
		if fetcher.calls != 0 {
			t.Errorf("fetcher called %d times", fetcher.calls)
		}
	})

	t.Run("cached listing skips the fetch", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		cache := &fakeCache{entries: map[string][]models.Song{
			cacheKey("p1", "2026-03-05"): {{Title: "Nocturne", Artist: "Pianist Z"}},
		}}
		resolver := &fakeResolver{tracks: map[string]string{"Nocturne": "t1"}}

		engine := testEngine(fetcher, resolver, newFakeCatalog(), cache, newFakeStore())
		result, err := engine.RunProgram(ctx, testProgram(), testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fetcher.calls != 0 {
			t.Errorf("fetcher called %d times", fetcher.calls)
		}
		if !result.FromCache {
			t.Error("expected FromCache")
		}
	})

	t.Run("no songs listed is not an error", func(t *testing.T) {
		fetcher := &fakeFetcher{}

		engine := testEngine(fetcher, &fakeResolver{}, newFakeCatalog(), &fakeCache{}, newFakeStore())
		result, err := engine.RunProgram(ctx, testProgram(), testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TotalSongs != 0 || result.Record != nil {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("nothing resolved creates no playlist", func(t *testing.T) {
		fetcher := &fakeFetcher{songs: map[string][]models.Song{
			"p1": {{Title: "Unknown Piece", Artist: "Nobody"}},
		}}
		cat := newFakeCatalog()

		engine := testEngine(fetcher, &fakeResolver{}, cat, &fakeCache{}, newFakeStore())
		result, err := engine.RunProgram(ctx, testProgram(), testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cat.created) != 0 {
			t.Errorf("created = %v", cat.created)
		}
		if result.SongsNotFound != 1 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("existing playlist is reused", func(t *testing.T) {
		fetcher := &fakeFetcher{songs: map[string][]models.Song{
			"p1": {{Title: "Nocturne", Artist: "Pianist Z"}},
		}}
		resolver := &fakeResolver{tracks: map[string]string{"Nocturne": "t1"}}
		cat := newFakeCatalog()
		cat.existing["세상의 모든 음악 2026.0305(목)"] = &catalog.SpotifyPlaylist{ID: "existing"}

		engine := testEngine(fetcher, resolver, cat, &fakeCache{}, newFakeStore())
		if _, err := engine.RunProgram(ctx, testProgram(), testDate, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cat.created) != 0 {
			t.Errorf("created = %v, want reuse", cat.created)
		}
		if len(cat.added["existing"]) != 1 {
			t.Errorf("added = %v", cat.added)
		}
	})

	t.Run("invalid program is rejected", func(t *testing.T) {
		engine := testEngine(&fakeFetcher{}, &fakeResolver{}, newFakeCatalog(), &fakeCache{}, newFakeStore())
		program := models.Program{Name: "x", Source: "rss", ProgCode: "p9"}

		_, err := engine.RunProgram(ctx, program, testDate, nil)
		if !errors.Is(err, shared.ErrUnknownSource) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestRunDaily(t *testing.T) {
	ctx := context.Background()

	t.Run("one failing program never aborts the rest", func(t *testing.T) {
		good := testProgram()
		bad := models.Program{Name: "고장난 프로그램", Source: "rss", ProgCode: "p2"}

		fetcher := &fakeFetcher{songs: map[string][]models.Song{
			"p1": {{Title: "Nocturne", Artist: "Pianist Z"}},
		}}
		resolver := &fakeResolver{tracks: map[string]string{"Nocturne": "t1"}}

		engine := NewPlaylistEngine(PlaylistEngineOpts{
			Programs:  []models.Program{bad, good},
			Fetcher:   fetcher,
			Resolver:  resolver,
			Catalog:   newFakeCatalog(),
			Cache:     &fakeCache{},
			Playlists: newFakeStore(),
			Limiter:   rate.NewLimiter(rate.Inf, 1),
		})

		result, err := engine.RunDaily(ctx, testDate, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Programs) != 1 {
			t.Errorf("programs = %+v", result.Programs)
		}
		if _, ok := result.Failures["고장난 프로그램"]; !ok {
			t.Errorf("failures = %v", result.Failures)
		}
	})

	t.Run("no programs configured is an error", func(t *testing.T) {
		engine := NewPlaylistEngine(PlaylistEngineOpts{
			Fetcher:  &fakeFetcher{},
			Resolver: &fakeResolver{},
			Catalog:  newFakeCatalog(),
		})
		_, err := engine.RunDaily(ctx, testDate, nil)
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("progress updates flow without blocking", func(t *testing.T) {
		fetcher := &fakeFetcher{songs: map[string][]models.Song{
			"p1": {{Title: "Nocturne", Artist: "Pianist Z"}},
		}}
		resolver := &fakeResolver{tracks: map[string]string{"Nocturne": "t1"}}

		engine := testEngine(fetcher, resolver, newFakeCatalog(), &fakeCache{}, newFakeStore())

		// Unbuffered and unread: sendProgress must drop updates, not hang.
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if _, err := engine.RunDaily(ctx, testDate, progress); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("RunDaily blocked on progress channel")
		}
	})
}
