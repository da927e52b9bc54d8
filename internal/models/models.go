package models

import (
	"fmt"
	"time"

	"github.com/dohyun-p/aircue/internal/shared"
)

// SourceKind selects which adapter fetches a program's daily song listing.
type SourceKind string

const (
	// SourceTable is a paginated HTML listing with per-day detail pages.
	SourceTable SourceKind = "table"
	// SourceAPI is a JSON song-list endpoint.
	SourceAPI SourceKind = "api"
	// SourceBoard is a free-text bulletin board post per broadcast day.
	SourceBoard SourceKind = "board"
)

// Program identifies a tracked radio show.
type Program struct {
	Name     string
	Source   SourceKind
	ProgCode string
	BBSID    string // only set for SourceBoard programs
}

// Validate checks that the program carries everything its adapter needs.
func (p Program) Validate() error {
	if p.ProgCode == "" {
		return fmt.Errorf("program is missing prog_code")
	}
	switch p.Source {
	case SourceTable, SourceAPI:
		return nil
	case SourceBoard:
		if p.BBSID == "" {
			return fmt.Errorf("board program %s is missing bbs_id", p.ProgCode)
		}
		return nil
	default:
		return fmt.Errorf("%w: program %s has source %q", shared.ErrUnknownSource, p.ProgCode, p.Source)
	}
}

// Song is a (title, artist) pair exactly as scraped, before normalization.
// Slices of Song preserve broadcast order.
type Song struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Query holds normalized search terms for one song. Composer is only set
// when the title carried a "Composer / Title" prefix.
type Query struct {
	Title    string
	Artist   string
	Composer string
}

// Resolution is the outcome of a tiered catalog lookup.
type Resolution struct {
	TrackID string // empty when Matched is false
	Tier    string // name of the last tier attempted
	Matched bool
}

// CachedSongs is a persisted song cache entry keyed by (program, date).
type CachedSongs struct {
	ID          string
	ProgramCode string
	Date        string // YYYY-MM-DD
	Songs       []Song
	FetchedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks cache entry invariants before persistence.
func (c CachedSongs) Validate() error {
	if c.ProgramCode == "" {
		return fmt.Errorf("cache entry is missing program code")
	}
	if c.Date == "" {
		return fmt.Errorf("cache entry is missing date")
	}
	if len(c.Songs) == 0 {
		return fmt.Errorf("cache entry for %s on %s has no songs", c.ProgramCode, c.Date)
	}
	return nil
}

// PlaylistRecord is a generated playlist for one program on one broadcast
// date, with resolution statistics for reporting.
type PlaylistRecord struct {
	ID            string    `json:"id"`
	ProgramCode   string    `json:"program_code"`
	Date          string    `json:"date"` // YYYY-MM-DD
	SpotifyID     string    `json:"spotify_playlist_id"`
	SpotifyURL    string    `json:"spotify_playlist_url"`
	Name          string    `json:"name"`
	TotalSongs    int       `json:"total_songs"`
	SongsAdded    int       `json:"songs_added"`
	SongsNotFound int       `json:"songs_not_found"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks playlist record invariants before persistence.
func (p PlaylistRecord) Validate() error {
	if p.ProgramCode == "" {
		return fmt.Errorf("playlist record is missing program code")
	}
	if p.Date == "" {
		return fmt.Errorf("playlist record is missing date")
	}
	if p.SpotifyID == "" {
		return fmt.Errorf("playlist record for %s on %s is missing spotify id", p.ProgramCode, p.Date)
	}
	if p.Name == "" {
		return fmt.Errorf("playlist record for %s on %s is missing a name", p.ProgramCode, p.Date)
	}
	return nil
}
