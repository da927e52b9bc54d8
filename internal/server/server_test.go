package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dohyun-p/aircue/internal/models"
	"golang.org/x/oauth2"
)

func TestBasicRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("GET = %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST = %d", rec.Code)
		}
	})

	t.Run("middleware wraps in reverse order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/x", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
		if len(order) != 2 || order[0] != "first" || order[1] != "second" {
			t.Errorf("order = %v", order)
		}
	})
}

type stubLister struct {
	byDate map[string][]*models.PlaylistRecord
	recent []*models.PlaylistRecord
}

func (s *stubLister) ListByDate(date string) ([]*models.PlaylistRecord, error) {
	return s.byDate[date], nil
}

func (s *stubLister) ListRecent(int) ([]*models.PlaylistRecord, error) {
	return s.recent, nil
}

func TestPlaylistHandler(t *testing.T) {
	record := &models.PlaylistRecord{
		ID:          "r1",
		ProgramCode: "p1",
		Date:        "2026-03-05",
		SpotifyID:   "sp1",
		Name:        "세상의 모든 음악 2026.0305(목)",
	}
	handler := NewPlaylistHandler(&stubLister{
		byDate: map[string][]*models.PlaylistRecord{"2026-03-05": {record}},
		recent: []*models.PlaylistRecord{record},
	})

	router := NewBasicRouter()
	router.Handler(handler)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"ok"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("list by date", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists?date=2026-03-05", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}

		var body struct {
			Count     int                      `json:"count"`
			Playlists []*models.PlaylistRecord `json:"playlists"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if body.Count != 1 || body.Playlists[0].ID != "r1" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("empty date returns empty list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists?date=1999-01-01", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"count":0`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("post rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlists", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	config := &oauth2.Config{
		ClientID:    "id",
		RedirectURL: "http://localhost:8080/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: "http://example.invalid/auth", TokenURL: "http://example.invalid/token"},
	}

	t.Run("state mismatch rejected", func(t *testing.T) {
		handler := NewOAuthHandler(config, "expected-state")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong&code=abc", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected a state error")
		}
	})

	t.Run("provider error forwarded", func(t *testing.T) {
		handler := NewOAuthHandler(config, "s")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("error = %v", result.Error())
		}
	})

	t.Run("second callback rejected", func(t *testing.T) {
		handler := NewOAuthHandler(config, "s")

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "already processed") {
			t.Errorf("body = %s", rec.Body.String())
		}
	})
}
