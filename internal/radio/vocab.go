package radio

import "strings"

// bannerLines are decorative section headers pasted into bulletin posts.
// They are filtering noise: never an entry start, never block content.
var bannerLines = []string{
	"뮤직 인사이드",
	"세상의 모든 음악 Logo",
	"저녁에 쉼표",
}

const (
	// notePrefix marks editorial remarks inside an entry block.
	notePrefix = "※"
	// continuationPrefix marks additional sub-songs of a multi-song entry.
	// Continuation lines never contribute title, artist or duration.
	continuationPrefix = "+"
)

// isBannerLine reports whether a line is decorative noise. A numbered line is
// never a banner, even when it quotes a banner string.
func isBannerLine(line string) bool {
	if entryRe.MatchString(line) {
		return false
	}
	for _, banner := range bannerLines {
		if strings.Contains(line, banner) {
			return true
		}
	}
	return false
}

func isNoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), notePrefix)
}

func isContinuationLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), continuationPrefix)
}
