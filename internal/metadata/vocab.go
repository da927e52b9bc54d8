package metadata

import (
	"regexp"
	"sort"
	"strings"
)

// instrumentMarkers is the fixed vocabulary of instrument/role markers that
// prefix performer names in broadcast listings ("pf: Pianist", "지휘: ...").
// Matching is case-insensitive and always requires the trailing colon.
var instrumentMarkers = []string{
	"pf", "vn", "vc", "gt", "bar", "sop", "ten", "bass",
	"fl", "ob", "cl", "hrn", "perc", "org", "hp",
	"voc", "e-vn", "voc&e-vn",
	"trombone", "trumpet", "tuba", "cello", "violin", "piano", "soprano",
	"baroque harp", "viola da gamba", "nyckelharpa", "accordion",
	"conductor", "지휘", "pf&지휘",
}

var (
	markerRe        = regexp.MustCompile(`(?i)(?:` + markerAlternation() + `):\s*`)
	leadingMarkerRe = regexp.MustCompile(`^(?i:` + markerAlternation() + `):\s*`)
	// secondaryMarkerRe matches a second performer clause after a comma,
	// e.g. "Christian Lindberg, pf: Per Lundberg".
	secondaryMarkerRe = regexp.MustCompile(`,\s*(?i:` + markerAlternation() + `):`)
	conductorTailRe   = regexp.MustCompile(`,\s*지휘:`)
)

// markerAlternation builds the alternation for the marker vocabulary, longest
// first so compound markers ("pf&지휘") win over their prefixes ("pf").
func markerAlternation() string {
	sorted := make([]string, len(instrumentMarkers))
	copy(sorted, instrumentMarkers)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, m := range sorted {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return strings.Join(quoted, "|")
}

// FindMarker returns the start and end byte offsets of the first instrument
// marker (including its colon and trailing space) in s, or (-1, -1).
func FindMarker(s string) (int, int) {
	loc := markerRe.FindStringIndex(s)
	if loc == nil {
		return -1, -1
	}
	return loc[0], loc[1]
}

// StripLeadingMarker removes one instrument marker prefix from s, if present.
func StripLeadingMarker(s string) string {
	return leadingMarkerRe.ReplaceAllString(s, "")
}

// DropConductorTail removes a trailing ", 지휘: ..." clause from an artist
// string. Conductors are never useful catalog search terms.
func DropConductorTail(s string) string {
	if loc := conductorTailRe.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimRight(strings.TrimSpace(s), ",")
}
