package config

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	storenum "github.com/krau/ocw-saver/pkg/enums/storage"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func testContext() context.Context {
	return log.WithContext(context.Background(), log.NewWithOptions(io.Discard, log.Options{}))
}

func TestInit(t *testing.T) {
	p := writeConfig(t, `
workers = 2
flag = "resources/"
fail_fast = true

[log]
level = "DEBUG"

[[storages]]
name = "nas"
type = "webdav"
enable = true
url = "http://nas.local/dav"
base_path = "/MIT_OCW"

[[storages]]
name = "disabled"
type = "local"
enable = false
`)
	t.Setenv("OCW_THREADS", "3")
	if err := Init(testContext(), p); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	c := C()
	if c.Workers != 2 || c.Threads != 3 || c.Retry != 1 {
		t.Errorf("workers=%d threads=%d retry=%d", c.Workers, c.Threads, c.Retry)
	}
	if c.Flag != "resources/" || c.MatchKind != "substring" || !c.FailFast {
		t.Errorf("flag=%q match_kind=%q fail_fast=%v", c.Flag, c.MatchKind, c.FailFast)
	}
	if c.MultiAsset != MultiAssetOverwrite {
		t.Errorf("multi_asset = %q", c.MultiAsset)
	}
	if c.Log.Level != "DEBUG" {
		t.Errorf("log.level = %q", c.Log.Level)
	}
	if len(c.Storages) != 1 {
		t.Fatalf("expected 1 enabled storage, got %d", len(c.Storages))
	}
	if s := c.GetStorageByName("nas"); s == nil || s.GetType() != storenum.Webdav {
		t.Errorf("GetStorageByName(nas) = %v", s)
	}
	if c.GetStorageByName("disabled") != nil {
		t.Error("disabled storage must not be loaded")
	}
}

func TestInitInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"zero workers", "workers = 0", "workers"},
		{"bad multi asset", `multi_asset = "rename"`, "multi_asset"},
		{"empty flag", `flag = ""`, "invalid flag"},
		{"bad regexp", "match_kind = \"regexp\"\nflag = \"(\"", "invalid flag"},
		{"unknown storage", `storage = "nowhere"`, "nowhere"},
		{"duplicate storage", `
[[storages]]
name = "a"
type = "local"
enable = true
base_path = "x"

[[storages]]
name = "a"
type = "local"
enable = true
base_path = "y"
`, "duplicate storage name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Init(testContext(), writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Init() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestInitMissingFile(t *testing.T) {
	if err := Init(testContext(), filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for an explicit missing config file")
	}
}

func TestDefaultDest(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := DefaultDest()
	if err != nil {
		t.Fatalf("DefaultDest() error = %v", err)
	}
	if want := filepath.Join(home, "Downloads", "MIT_OCW"); got != want {
		t.Errorf("DefaultDest() = %q, want %q", got, want)
	}
}
