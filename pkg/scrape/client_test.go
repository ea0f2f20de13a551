package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/krau/ocw-saver/pkg/ocw"
)

func TestClientGetStatus(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/flaky":
			if hits.Load() < 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		case "/ua":
			w.Write([]byte(r.UserAgent()))
		}
	}))
	defer ts.Close()
	c := NewClient(ts.Client(), WithRetry(3, time.Millisecond), WithUserAgent("ocw-test"))
	ctx := context.Background()

	t.Run("4xx is not retried", func(t *testing.T) {
		hits.Store(0)
		_, err := c.Get(ctx, ts.URL+"/missing")
		var fetchErr *ocw.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("Get() error = %v, want *ocw.FetchError", err)
		}
		if fetchErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d", fetchErr.StatusCode)
		}
		if hits.Load() != 1 {
			t.Errorf("attempts = %d, want 1", hits.Load())
		}
	})

	t.Run("5xx is retried", func(t *testing.T) {
		hits.Store(0)
		resp, err := c.Get(ctx, ts.URL+"/flaky")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
		if hits.Load() != 2 {
			t.Errorf("attempts = %d, want 2", hits.Load())
		}
	})

	t.Run("no retry by default", func(t *testing.T) {
		hits.Store(0)
		_, err := NewClient(ts.Client(), WithRetry(0, 0)).Get(ctx, ts.URL+"/flaky")
		var fetchErr *ocw.FetchError
		if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("Get() error = %v, want 503 *ocw.FetchError", err)
		}
		if hits.Load() != 1 {
			t.Errorf("attempts = %d, want 1", hits.Load())
		}
	})

	t.Run("user agent", func(t *testing.T) {
		doc, err := c.Document(ctx, ts.URL+"/ua")
		if err != nil {
			t.Fatalf("Document() error = %v", err)
		}
		if got := doc.Text(); got != "ocw-test" {
			t.Errorf("user agent = %q", got)
		}
	})
}

func TestClientTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()
	_, err := NewClient(nil).Get(context.Background(), url)
	var fetchErr *ocw.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Get() error = %v, want *ocw.FetchError", err)
	}
	if fetchErr.Err == nil || fetchErr.StatusCode != 0 {
		t.Errorf("FetchError = %+v, want a transport error", fetchErr)
	}
}

func TestDocumentCharset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html><body><a href=\"/x\">Universit\xe8</a></body></html>"))
	}))
	defer ts.Close()
	doc, err := NewClient(ts.Client()).Document(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if got := doc.Find("a").Text(); got != "Universitè" {
		t.Errorf("text = %q", got)
	}
}
