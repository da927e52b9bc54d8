// Package catalog resolves normalized song queries against the Spotify Web
// API and manages the generated playlists.
//
// The two halves are deliberately separate: [Searcher] is the minimal search
// capability the tiered [Resolver] consumes, while [Client] is the concrete
// Spotify implementation that also carries the playlist and profile
// operations the daily job needs.
package catalog

import (
	"context"
	"time"
)

// Searcher is the catalog search capability consumed by the resolver.
//
// Implementations return results in the catalog's relevance order; the
// resolver re-ranks within a tier but never across tiers.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Track, error)
}

// Track is a catalog search result.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	URI      string
	Duration int // seconds
}

// weekday abbreviations for playlist names, indexed by [time.Weekday].
var dayNames = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// PlaylistName formats the canonical name for a program's daily playlist:
// "{program} {yyyy.mmdd}({요일})", e.g. "세상의 모든 음악 2026.0825(화)".
func PlaylistName(programName string, date time.Time) string {
	return programName + " " + date.Format("2006.0102") + "(" + dayNames[date.Weekday()] + ")"
}
