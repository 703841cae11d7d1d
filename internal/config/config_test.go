package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/roomkit/roomkit/internal/errdef"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roomkit.toml")
	body := `
[tiers]
recently = 5
alot = 100
tons = 1000

[chat]
clear_on_start = false

[script]
timeout = "2s"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, envMap(map[string]string{
		"ROOMKIT_TIER_TONS":  "2000",
		"ROOMKIT_ROOM_OWNER": "hostess",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tiers.Recently != 5 || cfg.Tiers.ALot != 100 || cfg.Tiers.Tons != 2000 {
		t.Fatalf("unexpected tiers %+v", cfg.Tiers)
	}
	if cfg.Chat.ClearOnStart {
		t.Fatalf("expected clear_on_start false from file")
	}
	if cfg.Script.Timeout.Std() != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %v", cfg.Script.Timeout.Std())
	}
	if cfg.Room.Owner != "hostess" {
		t.Fatalf("expected env owner override, got %q", cfg.Room.Owner)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
		env  map[string]string
		code errdef.Code
	}{
		{name: "unknown key", body: "[chat]\ncolour = true\n", code: errdef.CodeConfig},
		{name: "non monotonic tiers", body: "[tiers]\nrecently = 10\nalot = 5\ntons = 20\n", code: errdef.CodeConfig},
		{name: "bad env int", env: map[string]string{"ROOMKIT_TIER_ALOT": "many"}, code: errdef.CodeConfig},
		{name: "bad env bool", env: map[string]string{"ROOMKIT_CLEAR_ON_START": "maybe"}, code: errdef.CodeConfig},
		{name: "bad timeout", body: "[script]\ntimeout = \"whenever\"\n", code: errdef.CodeConfig},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".toml")
			if tc.body != "" {
				if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
					t.Fatalf("write %d: %v", i, err)
				}
			}
			_, err := Load(path, envMap(tc.env))
			if !errdef.Is(err, tc.code) {
				t.Fatalf("expected %s error, got %v", tc.code, err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(buf.String(), "timeout = '5s'") && !strings.Contains(buf.String(), `timeout = "5s"`) {
		t.Fatalf("expected timeout in output:\n%s", buf.String())
	}
	path := filepath.Join(t.TempDir(), "roomkit.toml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected round trip to defaults, got %+v", cfg)
	}
}

func TestLoadDotenvSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("ROOMKIT_TEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ROOMKIT_TEST_DOTENV", "")
	os.Unsetenv("ROOMKIT_TEST_DOTENV")
	if err := LoadDotenv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("ROOMKIT_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}
}

func TestResolveApp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ROOMKIT_APPS_DIR", dir)
	if got := ResolveApp("tipgoal"); got != filepath.Join(dir, "tipgoal.js") {
		t.Fatalf("unexpected resolution %q", got)
	}
	if got := ResolveApp("./some/app.js"); got != "./some/app.js" {
		t.Fatalf("paths must pass through, got %q", got)
	}
}
