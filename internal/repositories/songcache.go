package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
)

// SongCacheRepository persists fetched song listings keyed by
// (program_code, cache_date).
type SongCacheRepository struct {
	db *sql.DB
}

// NewSongCacheRepository creates a new SongCacheRepository with the given database connection
func NewSongCacheRepository(db *sql.DB) *SongCacheRepository {
	return &SongCacheRepository{db: db}
}

// Get retrieves the cached song list for a program and date. A cache miss
// returns (nil, nil); reads are side-effect free.
func (r *SongCacheRepository) Get(programCode, date string) (*models.CachedSongs, error) {
	query := `
		SELECT id, program_code, cache_date, songs_json, fetched_at, updated_at
		FROM song_cache
		WHERE program_code = ? AND cache_date = ?
	`

	var entry models.CachedSongs
	var songsJSON string
	err := r.db.QueryRow(query, programCode, date).Scan(
		&entry.ID,
		&entry.ProgramCode,
		&entry.Date,
		&songsJSON,
		&entry.FetchedAt,
		&entry.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query song cache: %w", err)
	}

	if err := json.Unmarshal([]byte(songsJSON), &entry.Songs); err != nil {
		return nil, fmt.Errorf("failed to decode cached songs for %s on %s: %w", programCode, date, err)
	}

	return &entry, nil
}

// Put stores a song list for a program and date, replacing any existing
// entry for the same key (last write wins). Songs keep broadcast order.
func (r *SongCacheRepository) Put(programCode, date string, songs []models.Song) error {
	entry := models.CachedSongs{
		ProgramCode: programCode,
		Date:        date,
		Songs:       songs,
	}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	songsJSON, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("failed to encode songs: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO song_cache (id, program_code, cache_date, songs_json, fetched_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (program_code, cache_date)
		DO UPDATE SET songs_json = excluded.songs_json, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, shared.GenerateID(), programCode, date, string(songsJSON), now, now); err != nil {
		return fmt.Errorf("failed to upsert song cache: %w", err)
	}

	return nil
}

// Delete removes the cache entry for a program and date, if present.
func (r *SongCacheRepository) Delete(programCode, date string) error {
	if _, err := r.db.Exec("DELETE FROM song_cache WHERE program_code = ? AND cache_date = ?", programCode, date); err != nil {
		return fmt.Errorf("failed to delete song cache entry: %w", err)
	}
	return nil
}
