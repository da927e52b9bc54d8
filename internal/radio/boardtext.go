package radio

import (
	"regexp"
	"strings"

	"github.com/dohyun-p/aircue/internal/metadata"
	"github.com/dohyun-p/aircue/internal/models"
)

var (
	// entryRe matches a numbered entry start: "3. Nocturne ..."
	entryRe = regexp.MustCompile(`^(\d+)\.\s*(.+)`)
	// durationRe matches a playing-time marker: 3'14
	durationRe = regexp.MustCompile(`\d+'\d+`)
	// pureDurationStripRe removes everything a duration-only line may
	// contain besides the durations themselves.
	pureDurationStripRe = regexp.MustCompile(`[/\s]`)
)

// entryStart records one numbered entry found in the first pass.
type entryStart struct {
	line  int
	title string
}

// ParseBoardText converts the plain-text lines of a bulletin post into an
// ordered song list.
//
// The parser runs two passes: first it indexes every numbered entry start,
// then it resolves each entry against its block, the lines strictly between
// it and the next entry. No state carries across entries beyond that index.
//
// Two entry shapes exist. Inline entries carry a duration marker in the
// numbered line itself ("2. Nocturne 3'14 pf: Pianist Z"); the instrument
// marker splits title from artist. Block entries list the artist and a
// duration-only line below the title, possibly with extra title lines in
// between ("5. Title Part1" / "Title Part2" / "vn: Violinist Y" / "3'14").
//
// Entries whose resolved title is empty are dropped. A resolved title with
// an empty artist is kept: a low-confidence result beats losing the song.
func ParseBoardText(lines []string) []models.Song {
	var starts []entryStart
	for i, line := range lines {
		if isBannerLine(line) {
			continue
		}
		if m := entryRe.FindStringSubmatch(line); m != nil {
			starts = append(starts, entryStart{line: i, title: strings.TrimSpace(m[2])})
		}
	}

	var songs []models.Song
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1].line
		}

		var block []string
		for _, line := range lines[start.line+1 : end] {
			line = strings.TrimSpace(line)
			if line == "" || isBannerLine(line) {
				continue
			}
			block = append(block, line)
		}

		title, artist := resolveEntry(start.title, block)
		if title == "" {
			continue
		}
		songs = append(songs, models.Song{Title: title, Artist: artist})
	}

	return songs
}

// resolveEntry derives (title, artist) for one entry from its numbered line
// text and its block.
func resolveEntry(titleText string, block []string) (string, string) {
	// Inline shape: the numbered line is self-contained.
	if durationRe.MatchString(titleText) {
		if s, e := metadata.FindMarker(titleText); s >= 0 {
			title := stripDurations(titleText[:s])
			artist := metadata.DropConductorTail(stripDurations(titleText[e:]))
			return title, artist
		}
		return stripDurations(titleText), ""
	}

	// Block shape: locate the last duration-only line.
	durLine := -1
	for j := len(block) - 1; j >= 0; j-- {
		if isPureDurationLine(block[j]) {
			durLine = j
			break
		}
	}

	switch {
	case durLine == 0:
		// Duration directly under the entry: no artist was listed.
		return titleText, ""

	case durLine > 0:
		artistLine := durLine - 1
		for artistLine >= 0 && (isNoteLine(block[artistLine]) || isContinuationLine(block[artistLine])) {
			artistLine--
		}
		if artistLine < 0 {
			return titleText, ""
		}

		title := titleText
		for _, line := range block[:artistLine] {
			if isContinuationLine(line) || isNoteLine(line) {
				continue
			}
			title += " " + line
		}
		return strings.TrimSpace(title), artistFromLine(block[artistLine])

	default:
		// No duration line at all: the first block line is the artist.
		if len(block) == 0 || isContinuationLine(block[0]) || isNoteLine(block[0]) {
			return titleText, ""
		}
		return titleText, artistFromLine(block[0])
	}
}

// artistFromLine turns a block artist line into an artist string: leading
// instrument marker and stray durations removed, conductor suffix dropped.
func artistFromLine(line string) string {
	line = metadata.StripLeadingMarker(strings.TrimSpace(line))
	line = stripDurations(line)
	return metadata.DropConductorTail(line)
}

// isPureDurationLine reports whether a line holds nothing but durations and
// slash/space separators, e.g. "3'14 / 3'29".
func isPureDurationLine(line string) bool {
	if !durationRe.MatchString(line) {
		return false
	}
	rest := durationRe.ReplaceAllString(line, "")
	return pureDurationStripRe.ReplaceAllString(rest, "") == ""
}

func stripDurations(s string) string {
	return strings.TrimSpace(durationRe.ReplaceAllString(s, ""))
}
