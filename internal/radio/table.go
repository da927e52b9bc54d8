package radio

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dohyun-p/aircue/internal/models"
)

var seqIDRe = regexp.MustCompile(`seqID=(\d+)`)

// fetchTableSongs scans the paginated miniweb listing for a row whose date
// cell contains the target date, then follows that row's detail link to the
// [time, title, artist] table.
//
// The first matching row in document order decides the outcome: if its link
// is missing or carries no numeric id, the day is treated as absent rather
// than trying later rows.
func (f *Fetcher) fetchTableSongs(ctx context.Context, progCode string, date time.Time) ([]models.Song, error) {
	dateStr := date.Format("2006-01-02")

	for page := 1; page <= maxListingPages; page++ {
		listURL := fmt.Sprintf("%s/Music?page=%d&progCode=%s", f.tableURL, page, url.QueryEscape(progCode))
		doc, err := f.getDocument(ctx, listURL)
		if err != nil {
			return nil, err
		}

		var href string
		found := false
		doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return true
			}
			if !strings.Contains(strings.TrimSpace(cells.First().Text()), dateStr) {
				return true
			}
			found = true
			href, _ = row.Find("a").First().Attr("href")
			return false
		})

		if !found {
			continue
		}

		m := seqIDRe.FindStringSubmatch(href)
		if m == nil {
			return nil, fmt.Errorf("listing row for %s has no usable detail link", dateStr)
		}

		viewURL := fmt.Sprintf("%s/Music/View?seqID=%s&progCode=%s&page=1", f.tableURL, m[1], url.QueryEscape(progCode))
		detail, err := f.getDocument(ctx, viewURL)
		if err != nil {
			return nil, err
		}

		var songs []models.Song
		detail.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 3 {
				return
			}
			title := strings.TrimSpace(cells.Eq(1).Text())
			artist := strings.TrimSpace(cells.Eq(2).Text())
			if title != "" && artist != "" {
				songs = append(songs, models.Song{Title: title, Artist: artist})
			}
		})

		return songs, nil
	}

	return nil, fmt.Errorf("no listing row matched %s within %d pages", dateStr, maxListingPages)
}
