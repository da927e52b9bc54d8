package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
)

// PlaylistRepository persists generated playlist records, one per program
// per broadcast date.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist record with a generated ID.
func (r *PlaylistRepository) Create(record *models.PlaylistRecord) error {
	record.ID = shared.GenerateID()
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, program_code, playlist_date, spotify_playlist_id,
			spotify_playlist_url, name, total_songs, songs_added, songs_not_found,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID,
		record.ProgramCode,
		record.Date,
		record.SpotifyID,
		record.SpotifyURL,
		record.Name,
		record.TotalSongs,
		record.SongsAdded,
		record.SongsNotFound,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist record: %w", err)
	}

	return nil
}

// GetByProgramDate retrieves the playlist record for a program and date.
// Returns (nil, nil) when none exists.
func (r *PlaylistRepository) GetByProgramDate(programCode, date string) (*models.PlaylistRecord, error) {
	query := `
		SELECT id, program_code, playlist_date, spotify_playlist_id, spotify_playlist_url,
			name, total_songs, songs_added, songs_not_found, created_at, updated_at
		FROM playlists
		WHERE program_code = ? AND playlist_date = ?
	`

	return r.scanOne(r.db.QueryRow(query, programCode, date))
}

// ListByDate retrieves all playlist records for one broadcast date.
func (r *PlaylistRepository) ListByDate(date string) ([]*models.PlaylistRecord, error) {
	query := `
		SELECT id, program_code, playlist_date, spotify_playlist_id, spotify_playlist_url,
			name, total_songs, songs_added, songs_not_found, created_at, updated_at
		FROM playlists
		WHERE playlist_date = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist records: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListRecent retrieves the most recently created playlist records.
func (r *PlaylistRepository) ListRecent(limit int) ([]*models.PlaylistRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, program_code, playlist_date, spotify_playlist_id, spotify_playlist_url,
			name, total_songs, songs_added, songs_not_found, created_at, updated_at
		FROM playlists
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist records: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PlaylistRecord, error) {
	var record models.PlaylistRecord
	err := row.Scan(
		&record.ID,
		&record.ProgramCode,
		&record.Date,
		&record.SpotifyID,
		&record.SpotifyURL,
		&record.Name,
		&record.TotalSongs,
		&record.SongsAdded,
		&record.SongsNotFound,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist record: %w", err)
	}
	return &record, nil
}

func (r *PlaylistRepository) scanAll(rows *sql.Rows) ([]*models.PlaylistRecord, error) {
	var records []*models.PlaylistRecord
	for rows.Next() {
		var record models.PlaylistRecord
		err := rows.Scan(
			&record.ID,
			&record.ProgramCode,
			&record.Date,
			&record.SpotifyID,
			&record.SpotifyURL,
			&record.Name,
			&record.TotalSongs,
			&record.SongsAdded,
			&record.SongsNotFound,
			&record.CreatedAt,
			&record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist records: %w", err)
	}
	return records, nil
}
