package catalog

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/log"
	"github.com/dohyun-p/aircue/internal/metadata"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
)

// tier is one ranked attempt of the fallback search strategy: a predicate
// deciding whether the tier applies to a query, and a query builder.
type tier struct {
	name    string
	applies func(q models.Query) bool
	build   func(q models.Query) string
	limit   int
}

// tiers are tried in order; the first tier returning results wins. Searches
// that fail are treated as empty and the next tier proceeds, so a flaky
// catalog degrades match quality instead of erroring.
var tiers = []tier{
	{
		name:    "fielded",
		applies: func(q models.Query) bool { return q.Artist != "" },
		build:   func(q models.Query) string { return "track:" + q.Title + " artist:" + q.Artist },
		limit:   3,
	},
	{
		name:    "combined",
		applies: func(q models.Query) bool { return q.Artist != "" },
		build:   func(q models.Query) string { return q.Title + " " + q.Artist },
		limit:   3,
	},
	{
		name:    "composer",
		applies: func(q models.Query) bool { return q.Composer != "" },
		build:   func(q models.Query) string { return q.Title + " " + q.Composer },
		limit:   3,
	},
	{
		name:    "title-only",
		applies: func(q models.Query) bool { return true },
		build:   func(q models.Query) string { return q.Title },
		limit:   5,
	},
}

// Resolver maps raw (title, artist) pairs to catalog track IDs using the
// tiered strategy. It is stateless beyond its collaborators, so concurrent
// resolution is safe.
type Resolver struct {
	searcher Searcher
	logger   *log.Logger
}

// NewResolver creates a Resolver backed by the given search capability.
func NewResolver(searcher Searcher, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{searcher: searcher, logger: logger}
}

// ResolveTrack normalizes a raw song and tries each applicable tier in order,
// stopping at the first one that returns results.
//
// Exhausting every tier is a miss, not an error: the returned resolution has
// Matched false and the error is nil. The caller counts misses.
func (r *Resolver) ResolveTrack(ctx context.Context, title, artist string) models.Resolution {
	query := metadata.Normalize(models.Song{Title: title, Artist: artist})

	r.logger.Debug("resolving track",
		"title", query.Title, "artist", query.Artist, "composer", query.Composer)

	last := ""
	for _, t := range tiers {
		if !t.applies(query) {
			continue
		}
		last = t.name

		tracks, err := r.searcher.Search(ctx, t.build(query), t.limit)
		if err != nil {
			r.logger.Debug("tier search failed", "tier", t.name, "error", err)
			continue
		}
		if len(tracks) == 0 {
			continue
		}

		best := bestMatch(query.Title, tracks)
		r.logger.Debug("matched track", "tier", t.name, "track", best.ID)
		return models.Resolution{TrackID: best.ID, Tier: t.name, Matched: true}
	}

	r.logger.Debug("no match", "title", query.Title, "artist", query.Artist)
	return models.Resolution{Tier: last, Matched: false}
}

// bestMatch picks the result whose title is closest to the cleaned title by
// edit distance. The catalog's own ranking breaks ties, i.e. the earliest of
// equally distant results wins.
func bestMatch(title string, tracks []Track) Track {
	want := strings.ToLower(title)

	best := tracks[0]
	bestDist := levenshtein.ComputeDistance(want, strings.ToLower(best.Title))
	for _, track := range tracks[1:] {
		if d := levenshtein.ComputeDistance(want, strings.ToLower(track.Title)); d < bestDist {
			best, bestDist = track, d
		}
	}
	return best
}
