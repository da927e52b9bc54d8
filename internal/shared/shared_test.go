package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses a config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "cid"
client_secret = "secret"
redirect_uri = "http://localhost:9999/callback"

[database]
path = "test.db"

[server]
host = "127.0.0.1"
port = 9999

[[programs]]
name = "테스트 프로그램"
source = "board"
prog_code = "R0000-0001"
bbs_id = "R0000-0001-03-000001"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "cid" {
			t.Errorf("client_id = %q", config.Credentials.Spotify.ClientID)
		}
		if config.Server.Port != 9999 {
			t.Errorf("port = %d", config.Server.Port)
		}
		if len(config.Programs) != 1 {
			t.Fatalf("programs = %+v", config.Programs)
		}
		if config.Programs[0].BBSID != "R0000-0001-03-000001" {
			t.Errorf("bbs_id = %q", config.Programs[0].BBSID)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Fatal("expected an error")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("created config does not parse: %v", err)
	}

	t.Run("refuses to overwrite", func(t *testing.T) {
		err := CreateConfigFile(path)
		if err == nil {
			t.Fatal("expected an error")
		}
		if strings.Contains(err.Error(), "%!") {
			t.Errorf("malformed error message: %v", err)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path == "" {
		t.Error("default database path should be set")
	}
	if config.Server.Port == 0 {
		t.Error("default server port should be set")
	}
	if len(config.Programs) == 0 {
		t.Error("default config should carry example programs")
	}
	for _, program := range config.Programs {
		switch program.Source {
		case "table", "api", "board":
		default:
			t.Errorf("program %s has source %q", program.ProgCode, program.Source)
		}
	}
}

func TestCredentialsMap(t *testing.T) {
	creds := SpotifyConfig{ClientID: "a", ClientSecret: "b", RedirectURI: "c"}.Map()
	if creds["client_id"] != "a" || creds["client_secret"] != "b" || creds["redirect_uri"] != "c" {
		t.Errorf("map = %v", creds)
	}
}

func TestGenerateState(t *testing.T) {
	first, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != 32 {
		t.Errorf("state length = %d", len(first))
	}
	if first == second {
		t.Error("states should differ")
	}
}

func TestMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, table := range []string{"song_cache", "playlists"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
	})

	t.Run("rollback drops tables", func(t *testing.T) {
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='song_cache'").Scan(&name)
		if err == nil {
			t.Error("song_cache should be dropped")
		}
	})
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer"}

	if err := SaveToken(path, token); err != nil {
		t.Fatalf("failed to save token: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("token file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("token file mode = %v", info.Mode().Perm())
	}

	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("failed to load token: %v", err)
	}
	if loaded.AccessToken != "at" || loaded.RefreshToken != "rt" {
		t.Errorf("token = %+v", loaded)
	}

	t.Run("missing token file", func(t *testing.T) {
		if _, err := LoadToken(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Fatal("expected an error")
		}
	})
}
