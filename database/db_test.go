package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestDownloads(t *testing.T) {
	ctx := log.WithContext(context.Background(), log.NewWithOptions(io.Discard, log.Options{}))
	if err := Init(ctx, filepath.Join(t.TempDir(), "data", "history.db")); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { Close() })

	resource := "https://ocw.mit.edu/courses/x/resources/ha1/"
	for _, d := range []*Download{
		{Resource: resource, Source: "https://ocw.mit.edu/courses/x/ha1.pdf", Storage: "local", Path: "x/assignments/ha1.pdf", Bytes: 10, MimeType: "application/pdf"},
		{Resource: "https://ocw.mit.edu/courses/x/resources/ha2/", Source: "https://ocw.mit.edu/courses/x/ha2.pdf", Storage: "local", Path: "x/assignments/ha2.pdf", Bytes: 20},
		{Resource: resource, Source: "https://ocw.mit.edu/courses/x/ha1-sol.pdf", Storage: "local", Path: "x/assignments/ha1.pdf", Bytes: 30},
	} {
		if err := CreateDownload(ctx, d); err != nil {
			t.Fatalf("CreateDownload() error = %v", err)
		}
	}

	n, err := CountDownloads(ctx)
	if err != nil || n != 3 {
		t.Fatalf("CountDownloads() = %d, %v", n, err)
	}

	recent, err := GetRecentDownloads(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecentDownloads() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Bytes != 30 || recent[1].Bytes != 20 {
		t.Errorf("GetRecentDownloads() = %+v", recent)
	}

	byResource, err := GetDownloadsByResource(ctx, resource)
	if err != nil {
		t.Fatalf("GetDownloadsByResource() error = %v", err)
	}
	if len(byResource) != 2 || byResource[0].Source != "https://ocw.mit.edu/courses/x/ha1.pdf" {
		t.Errorf("GetDownloadsByResource() = %+v", byResource)
	}
}
