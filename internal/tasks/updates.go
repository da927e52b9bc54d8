package tasks

import (
	"fmt"

	"github.com/dohyun-p/aircue/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	FetchListing Phase = iota
	ResolveTracks
	EnsurePlaylist
	AddTracks
	SkipProgram
)

func (p Phase) String() string {
	switch p {
	case FetchListing:
		return "fetch_listing"
	case ResolveTracks:
		return "resolve_tracks"
	case EnsurePlaylist:
		return "ensure_playlist"
	case AddTracks:
		return "add_tracks"
	case SkipProgram:
		return "skip_program"
	default:
		return ""
	}
}

func fetchListingUpdate(program models.Program, date string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchListing,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s listing for %s...", program.Name, date),
	}
}

func listingCachedUpdate(program models.Program, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchListing,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Using cached listing for %s (%d songs)", program.Name, count),
	}
}

func resolveTrackUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, song.Artist, song.Title),
	}
}

func ensurePlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnsurePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Ensuring playlist: %s", name),
	}
}

func addTracksUpdate(count int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d tracks to %s...", count, name),
	}
}

func skipProgramUpdate(program models.Program, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SkipProgram,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Skipping %s: %s", program.Name, reason),
	}
}
