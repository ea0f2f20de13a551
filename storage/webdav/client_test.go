package webdav

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	config "github.com/krau/ocw-saver/config/storage"
	"golang.org/x/net/webdav"
)

func setupWebDAVServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	tempDir := t.TempDir()

	handler := &webdav.Handler{
		Prefix:     "/",
		FileSystem: webdav.Dir(tempDir),
		LockSystem: webdav.NewMemLS(),
	}

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, tempDir
}

func TestMkDirAndExists(t *testing.T) {
	server, _ := setupWebDAVServer(t)
	client := NewClient(server.URL, "", "", nil)
	ctx := context.Background()

	testpaths := []string{"course", "course/assignments", "course/lecture notes", "/course/àèìòù/esercizi"}
	for _, p := range testpaths {
		exists, err := client.Exists(ctx, p)
		if err != nil {
			t.Fatalf("Exists(%q) error = %v", p, err)
		}
		if exists {
			t.Fatalf("%q should not exist yet", p)
		}

		created, err := client.MkDir(ctx, p)
		if err != nil {
			t.Fatalf("MkDir(%q) error = %v", p, err)
		}
		if !created {
			t.Fatalf("MkDir(%q) created = false on first call", p)
		}

		exists, err = client.Exists(ctx, p)
		if err != nil {
			t.Fatalf("Exists(%q) error = %v", p, err)
		}
		if !exists {
			t.Fatalf("%q should exist", p)
		}

		created, err = client.MkDir(ctx, p)
		if err != nil || created {
			t.Fatalf("second MkDir(%q) = %v, %v, want false, nil", p, created, err)
		}
	}
}

func TestWriteFile(t *testing.T) {
	server, tempDir := setupWebDAVServer(t)
	client := NewClient(server.URL, "", "", nil)
	ctx := context.Background()

	testCases := []struct {
		remotePath string
		content    string
	}{
		{remotePath: "Link_corso.txt", content: "Link al corso:\nhttps://ocw.mit.edu/courses/x/"},
		{remotePath: "//course/assignments/ha1.pdf", content: "%PDF-1.4"},
		{remotePath: "course/assignments/ha1.pdf", content: "%PDF-1.4"},
		{remotePath: "empty.pdf", content: ""},
		{remotePath: "course/appunti/àè.pdf", content: "unicode"},
	}

	for _, tc := range testCases {
		t.Run(tc.remotePath, func(t *testing.T) {
			if dir := path.Dir(tc.remotePath); dir != "." {
				if _, err := client.MkDir(ctx, dir); err != nil {
					t.Fatalf("MkDir(%q) error = %v", dir, err)
				}
			}

			if err := client.WriteFile(ctx, tc.remotePath, strings.NewReader(tc.content)); err != nil {
				t.Fatalf("WriteFile(%q) error = %v", tc.remotePath, err)
			}

			localPath := filepath.Join(tempDir, tc.remotePath)
			data, err := os.ReadFile(localPath)
			if err != nil {
				t.Fatalf("ReadFile(%q) error = %v", localPath, err)
			}
			if string(data) != tc.content {
				t.Fatalf("content = %q, want %q", data, tc.content)
			}

			overwritten := tc.content + " overwritten"
			if err := client.WriteFile(ctx, tc.remotePath, strings.NewReader(overwritten)); err != nil {
				t.Fatalf("WriteFile(%q) overwrite error = %v", tc.remotePath, err)
			}
			data, err = os.ReadFile(localPath)
			if err != nil {
				t.Fatalf("ReadFile(%q) error = %v", localPath, err)
			}
			if string(data) != overwritten {
				t.Fatalf("content after overwrite = %q, want %q", data, overwritten)
			}
		})
	}
}

func TestWebdavStorage(t *testing.T) {
	server, tempDir := setupWebDAVServer(t)
	ctx := log.WithContext(context.Background(), log.NewWithOptions(io.Discard, log.Options{}))

	w := new(Webdav)
	err := w.Init(ctx, &config.WebdavStorageConfig{
		BaseConfig: config.BaseConfig{Name: "dav", Type: "webdav", Enable: true},
		URL:        server.URL,
		BasePath:   "/MIT_OCW/",
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	dir := w.JoinStoragePath("course/assignments")
	if dir != "MIT_OCW/course/assignments" {
		t.Fatalf("JoinStoragePath() = %q", dir)
	}
	created, err := w.MkDir(ctx, dir)
	if err != nil || !created {
		t.Fatalf("MkDir() = %v, %v, want true, nil", created, err)
	}

	file := path.Join(dir, "ha1.pdf")
	if err := w.Save(ctx, strings.NewReader("%PDF-1.4"), file); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if exists, err := w.client.Exists(ctx, file); err != nil || !exists {
		t.Errorf("client.Exists() = %v, %v after Save", exists, err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "MIT_OCW", "course", "assignments", "ha1.pdf")); err != nil {
		t.Errorf("file not on the server: %v", err)
	}
}
