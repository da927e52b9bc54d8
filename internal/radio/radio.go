// Package radio fetches daily song listings from broadcaster websites.
//
// Three incompatible upstream formats are supported, one adapter each: a
// paginated HTML table listing with per-day detail pages, a JSON song-list
// API, and free-text bulletin board posts (parsed by the board text parser
// in boardtext.go). The dispatcher in [Fetcher.FetchSongs] selects the
// adapter from the program's source kind.
//
// Upstream sources are frequently off-air or silently restructured, so every
// transport and parse failure is logged and downgraded to
// [shared.ErrSongsNotFound]; one program's failure must never abort
// processing of others. The only hard error is an unknown source kind.
package radio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/dohyun-p/aircue/internal/models"
	"github.com/dohyun-p/aircue/internal/shared"
)

const (
	defaultTimeout = 15 * time.Second

	// maxListingPages bounds the table listing scan.
	maxListingPages = 4

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	defaultTableBaseURL = "https://miniweb.imbc.com"
	defaultAPIBaseURL   = "https://kong2017.kbs.co.kr"
	defaultBoardBaseURL = "https://cfpbbsapi.kbs.co.kr"
)

// FetcherOpts contains configuration options for creating a Fetcher.
// Base URLs default to the live broadcaster endpoints; tests point them at
// httptest servers.
type FetcherOpts struct {
	Client       *http.Client
	Logger       *log.Logger
	TableBaseURL string
	APIBaseURL   string
	BoardBaseURL string
}

// Fetcher maps a program and target date to that day's ordered song listing.
//
// Fetcher holds no mutable state beyond its HTTP client, so fetching multiple
// programs concurrently is safe.
type Fetcher struct {
	client   *http.Client
	logger   *log.Logger
	tableURL string
	apiURL   string
	boardURL string
}

// NewFetcher creates a Fetcher with the provided options.
func NewFetcher(opts FetcherOpts) *Fetcher {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.TableBaseURL == "" {
		opts.TableBaseURL = defaultTableBaseURL
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = defaultAPIBaseURL
	}
	if opts.BoardBaseURL == "" {
		opts.BoardBaseURL = defaultBoardBaseURL
	}

	return &Fetcher{
		client:   opts.Client,
		logger:   opts.Logger,
		tableURL: opts.TableBaseURL,
		apiURL:   opts.APIBaseURL,
		boardURL: opts.BoardBaseURL,
	}
}

// FetchSongs returns the ordered song listing for a program on the given
// date, routed through the adapter matching the program's source kind.
//
// Transport and parse failures are logged and reported as
// [shared.ErrSongsNotFound]. An unrecognized source kind returns
// [shared.ErrUnknownSource] and is the only condition treated as a hard
// failure.
func (f *Fetcher) FetchSongs(ctx context.Context, program models.Program, date time.Time) ([]models.Song, error) {
	var songs []models.Song
	var err error

	switch program.Source {
	case models.SourceTable:
		songs, err = f.fetchTableSongs(ctx, program.ProgCode, date)
	case models.SourceAPI:
		songs, err = f.fetchAPISongs(ctx, program.ProgCode, date)
	case models.SourceBoard:
		songs, err = f.fetchBoardSongs(ctx, program.BBSID, date)
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownSource, program.Source)
	}

	if err != nil {
		f.logger.Warn("fetch failed, treating as not found",
			"program", program.ProgCode, "source", program.Source, "error", err)
		return nil, shared.ErrSongsNotFound
	}
	if len(songs) == 0 {
		return nil, shared.ErrSongsNotFound
	}

	return songs, nil
}

// get performs a GET request with browser-like headers and returns the body.
func (f *Fetcher) get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*;q=0.8")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d for %s", shared.ErrAPIRequest, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return body, nil
}

// getDocument performs a GET request and parses the body as an HTML document.
func (f *Fetcher) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := f.get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
