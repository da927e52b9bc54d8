package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dohyun-p/aircue/internal/shared"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	client, err := NewClient(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	srv := httptest.NewServer(handler)
	client.baseURL = srv.URL
	client.SetToken(context.Background(), &oauth2.Token{AccessToken: "test-token"})

	return client, srv
}

func TestNewClient(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		_, err := NewClient(map[string]string{"client_id": "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Fatalf("err = %v", err)
		}
	})

	t.Run("unauthenticated requests rejected", func(t *testing.T) {
		client, err := NewClient(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		})
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}

		_, err = client.Search(context.Background(), "anything", 3)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestClientSearch(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("type"); got != "track" {
			t.Errorf("type = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "3" {
			t.Errorf("limit = %q", got)
		}
		fmt.Fprint(w, `{"tracks": {"items": [
			{
				"id": "t1",
				"name": "Nocturne",
				"artists": [{"id": "a1", "name": "Pianist Z"}, {"id": "a2", "name": "Someone Else"}],
				"album": {"id": "al1", "name": "Nocturnes"},
				"duration_ms": 194000,
				"uri": "spotify:track:t1"
			}
		]}}`)
	}))
	defer srv.Close()

	tracks, err := client.Search(context.Background(), "Nocturne", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("got %d tracks", len(tracks))
	}

	track := tracks[0]
	if track.ID != "t1" || track.Title != "Nocturne" {
		t.Errorf("track = %+v", track)
	}
	if track.Artist != "Pianist Z" {
		t.Errorf("artist = %q, want first artist", track.Artist)
	}
	if track.Album != "Nocturnes" {
		t.Errorf("album = %q", track.Album)
	}
	if track.Duration != 194 {
		t.Errorf("duration = %d", track.Duration)
	}
}

func TestClientFindPlaylist(t *testing.T) {
	t.Run("found on a later page", func(t *testing.T) {
		client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next := "next-page"
			switch r.URL.Query().Get("offset") {
			case "0", "":
				fmt.Fprintf(w, `{"items": [{"id": "p1", "name": "Other"}], "total": 2, "next": %q}`, next)
			default:
				fmt.Fprint(w, `{"items": [{"id": "p2", "name": "Wanted"}], "total": 2, "next": null}`)
			}
		}))
		defer srv.Close()

		playlist, err := client.FindPlaylist(context.Background(), "Wanted")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if playlist.ID != "p2" {
			t.Errorf("playlist = %+v", playlist)
		}
	})

	t.Run("not found", func(t *testing.T) {
		client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items": [], "total": 0, "next": null}`)
		}))
		defer srv.Close()

		_, err := client.FindPlaylist(context.Background(), "Nothing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestClientCreatePlaylist(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/playlists" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["name"] != "My Playlist" {
			t.Errorf("name = %v", body["name"])
		}
		if body["public"] != false {
			t.Errorf("public = %v", body["public"])
		}
		fmt.Fprint(w, `{"id": "new", "name": "My Playlist", "external_urls": {"spotify": "https://open.spotify.com/playlist/new"}}`)
	}))
	defer srv.Close()

	playlist, err := client.CreatePlaylist(context.Background(), "u1", "My Playlist", "desc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if playlist.ID != "new" {
		t.Errorf("playlist = %+v", playlist)
	}
	if playlist.URL() != "https://open.spotify.com/playlist/new" {
		t.Errorf("url = %q", playlist.URL())
	}
}

func TestClientAddTracks(t *testing.T) {
	var chunks [][]any
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/pl1/tracks" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string][]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		chunks = append(chunks, body["uris"])
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}

	if err := client.AddTracks(context.Background(), "pl1", ids); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("got %d requests, want 2", len(chunks))
	}
	if len(chunks[0]) != 100 || len(chunks[1]) != 50 {
		t.Errorf("chunk sizes = %d, %d", len(chunks[0]), len(chunks[1]))
	}
	if chunks[0][0] != "spotify:track:t0" {
		t.Errorf("first uri = %v", chunks[0][0])
	}
}

func TestPlaylistURLFallback(t *testing.T) {
	p := &SpotifyPlaylist{ID: "p9"}
	if got := p.URL(); got != "https://open.spotify.com/playlist/p9" {
		t.Errorf("url = %q", got)
	}
}
