// Package metadata rewrites scraped song metadata into canonical catalog
// search terms.
//
// Broadcast listings mix Korean translations, request-code prefixes,
// instrument markers and multi-song continuation text into single title and
// artist fields. Cleaning runs lazily at resolution time so a policy change
// here never requires re-scraping cached songs.
package metadata

import (
	"regexp"
	"strings"

	"github.com/dohyun-p/aircue/internal/models"
)

var (
	requestCodeRe  = regexp.MustCompile(`\[[^\]]*(?:신청곡|사연)[^\]]*\]\s*`)
	plusSplitRe    = regexp.MustCompile(`\s*\+\s+`)
	numberSplitRe  = regexp.MustCompile(`\s*&\s+\d+번`)
	ostRe          = regexp.MustCompile(`^영화\s*[<《].*?[>》]\s*OST\s*[-–:]\s*(.+)$`)
	composerRe     = regexp.MustCompile(`^([A-Za-z][A-Za-z.\s]+?)\s*/\s*(.+)$`)
	movementRe     = regexp.MustCompile(`\s*중\s+\d+악장\s*`)
	koreanRe       = regexp.MustCompile(`[가-힣]`)
	latinRe        = regexp.MustCompile(`[A-Za-z]`)
	westernParenRe = regexp.MustCompile(`\(([A-Za-z][A-Za-z\s',\-\.&:]+)\)`)
	koreanParenRe  = regexp.MustCompile(`\([가-힣\s,·]+\)`)
	numberMarkerRe = regexp.MustCompile(`\d+번`)
	koreanRunRe    = regexp.MustCompile(`[가-힣]+`)
	parenRe        = regexp.MustCompile(`\s*\([^)]*\)\s*`)
	featSplitRe    = regexp.MustCompile(`(?i)\s+feat\.?\s+`)
	ofSplitRe      = regexp.MustCompile(`(?i)\s+of\s+`)
	spaceRe        = regexp.MustCompile(`\s+`)
	strayEdgeRe    = regexp.MustCompile(`^[\s,&]+|[\s,&]+$`)
)

// Normalize derives catalog search terms from a scraped song. The artist is
// only cleaned when present; an empty artist stays empty and is a valid
// low-confidence result.
func Normalize(song models.Song) models.Query {
	title, composer := CleanTitle(song.Title)

	var artist string
	if song.Artist != "" {
		artist = CleanArtist(song.Artist)
	}

	return models.Query{Title: title, Artist: artist, Composer: composer}
}

// CleanTitle rewrites a raw broadcast title into a canonical search term and
// extracts a composer when the title carried a "Composer / Title" prefix.
//
// The transforms run in a fixed order; each step feeds the next. Cleaning is
// idempotent: running the result through again yields the same string.
func CleanTitle(title string) (string, string) {
	// 1. Request/dedication code prefixes: "[5080/신청곡] ..."
	title = requestCodeRe.ReplaceAllString(title, "")

	// 2. Multi-song continuations: keep only the first sub-song.
	title = strings.TrimSpace(plusSplitRe.Split(title, 2)[0])
	title = strings.TrimSpace(numberSplitRe.Split(title, 2)[0])

	// 3. "영화 <Name> OST - Title" wrappers
	if m := ostRe.FindStringSubmatch(title); m != nil {
		title = strings.TrimSpace(m[1])
	}

	// 4. "Composer / Title" prefixes; the composer is a leading Latin run.
	var composer string
	if m := composerRe.FindStringSubmatch(title); m != nil {
		composer = strings.TrimSpace(m[1])
		title = strings.TrimSpace(m[2])
	}

	// 5. Korean movement markers: "중 2악장"
	title = movementRe.ReplaceAllString(title, " ")

	// 6. Korean title with a Western parenthetical: the Western run is the
	// canonical name, e.g. "비엔나풍의 작은 행진곡 (Marche Miniature Viennoise)".
	if koreanRe.MatchString(title) {
		if m := westernParenRe.FindStringSubmatch(title); m != nil {
			title = strings.TrimSpace(m[1])
		}
	}

	// 7. Korean-only parenthetical translations: "(회상)"
	title = koreanParenRe.ReplaceAllString(title, "")

	// 8. Mixed Korean/Latin remainder: keep the Latin text.
	if koreanRe.MatchString(title) && latinRe.MatchString(title) {
		title = numberMarkerRe.ReplaceAllString(title, "")
		title = koreanRunRe.ReplaceAllString(title, " ")
	}

	// 9. Collapse whitespace and trim stray punctuation.
	title = strings.TrimSpace(spaceRe.ReplaceAllString(title, " "))
	title = strayEdgeRe.ReplaceAllString(title, "")

	return title, composer
}

// CleanArtist rewrites a raw performer string into a catalog search term.
//
// Instrument markers, secondary performers, ensemble names after a comma,
// parenthetical annotations and featured-artist tails all get dropped; only
// the primary performer survives.
func CleanArtist(artist string) string {
	artist = StripLeadingMarker(artist)

	// Secondary performers introduced by another marker after a comma:
	// "Christian Lindberg, pf: Per Lundberg" -> "Christian Lindberg"
	if loc := secondaryMarkerRe.FindStringIndex(artist); loc != nil {
		artist = artist[:loc[0]]
	}
	artist = strings.TrimSpace(artist)

	// Korean ensemble name after a Latin performer: keep the head.
	if head, tail, ok := strings.Cut(artist, ","); ok {
		if koreanRe.MatchString(tail) && latinRe.MatchString(head) {
			artist = strings.TrimSpace(head)
		}
	}

	artist = parenRe.ReplaceAllString(artist, " ")
	artist = featSplitRe.Split(artist, 2)[0]
	artist = ofSplitRe.Split(artist, 2)[0]

	return strings.TrimSpace(artist)
}
