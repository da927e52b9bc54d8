package radio

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/dohyun-p/aircue/internal/models"
)

var (
	blockCloseRe = regexp.MustCompile(`(?i)</(?:div|p|li|tr)>`)
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
)

// fetchBoardSongs fetches a day's song listing from a bulletin board in two
// steps: pick the first post whose title carries the localized "{month}월
// {day}일" marker for the target date, then fetch the post body and parse it
// as free text.
func (f *Fetcher) fetchBoardSongs(ctx context.Context, bbsID string, date time.Time) ([]models.Song, error) {
	headers := map[string]string{
		"Referer": f.boardURL + "/",
		"Origin":  f.boardURL,
	}

	listParams := url.Values{
		"bbs_id":      {bbsID},
		"page":        {"1"},
		"page_size":   {"15"},
		"contents_yn": {"N"},
		"notice_yn":   {"N"},
	}
	body, err := f.get(ctx, f.boardURL+"/board/v1/list?"+listParams.Encode(), headers)
	if err != nil {
		return nil, err
	}

	var list struct {
		Data []struct {
			ID        json.Number `json:"id"`
			PostNo    json.Number `json:"post_no"`
			PostTitle string      `json:"post_title"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode post list: %w", err)
	}

	// Post titles carry the broadcast day without zero padding: "3월 5일".
	marker := fmt.Sprintf("%d월 %d일", int(date.Month()), date.Day())

	postID, postNo := "", ""
	for _, post := range list.Data {
		if strings.Contains(post.PostTitle, marker) {
			postID = post.ID.String()
			postNo = post.PostNo.String()
			break
		}
	}
	if postID == "" {
		return nil, fmt.Errorf("no post matched %q", marker)
	}

	readParams := url.Values{
		"bbs_id":  {bbsID},
		"id":      {postID},
		"post_no": {postNo},
	}
	body, err = f.get(ctx, f.boardURL+"/board/v1/read_post?"+readParams.Encode(), headers)
	if err != nil {
		return nil, err
	}

	var read struct {
		Post struct {
			PostContents string `json:"post_contents"`
		} `json:"post"`
	}
	if err := json.Unmarshal(body, &read); err != nil {
		return nil, fmt.Errorf("failed to decode post: %w", err)
	}
	if read.Post.PostContents == "" {
		return nil, fmt.Errorf("post %s has no contents", postID)
	}

	return ParseBoardText(htmlToLines(read.Post.PostContents)), nil
}

// htmlToLines flattens a post body into trimmed, non-empty plain-text lines.
// Block-level closing tags and <br> become newlines, remaining tags are
// stripped and entities unescaped.
func htmlToLines(content string) []string {
	text := blockCloseRe.ReplaceAllString(content, "\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
