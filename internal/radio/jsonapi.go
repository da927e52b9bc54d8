package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dohyun-p/aircue/internal/models"
)

// fetchAPISongs queries the song-list JSON endpoint for one program and day.
// A single request with a fixed page size covers a full broadcast.
func (f *Fetcher) fetchAPISongs(ctx context.Context, progCode string, date time.Time) ([]models.Song, error) {
	params := url.Values{
		"program_code": {progCode},
		"rtype":        {"json"},
		"request_date": {date.Format("20060102")},
		"page":         {"1"},
		"page_size":    {"100"},
	}

	body, err := f.get(ctx, f.apiURL+"/api/mobile/select_song_list?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []struct {
			SongTitle string `json:"song_title"`
			Artist    string `json:"artist"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode song list: %w", err)
	}

	var songs []models.Song
	for _, item := range payload.Items {
		title := strings.TrimSpace(item.SongTitle)
		artist := strings.TrimSpace(item.Artist)
		if title == "" || artist == "" {
			continue
		}
		songs = append(songs, models.Song{Title: title, Artist: artist})
	}

	return songs, nil
}
